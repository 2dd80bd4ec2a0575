package main

import (
	"context"
	"database/sql"
	"fmt"
	"io/fs"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/goliatone/go-persistence-bun"
	"github.com/goliatone/go-print"
	"github.com/heritagehq/heritage"
	"github.com/joho/godotenv"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
)

// persistenceConfig adapts the flat service config to the getter
// interface the persistence client expects.
type persistenceConfig struct {
	cfg heritage.Config
}

func (p persistenceConfig) GetDebug() bool    { return p.cfg.Debug }
func (p persistenceConfig) GetDriver() string { return sqliteshim.ShimName }
func (p persistenceConfig) GetServer() string { return p.cfg.DatabaseDSN }

// GetOtelIdentifier returns empty so the persistence client leaves its
// otel query hook disabled.
func (p persistenceConfig) GetOtelIdentifier() string { return "" }

func (p persistenceConfig) GetPingTimeout() time.Duration {
	return 5 * time.Second
}

func main() {
	// Local .env overrides are optional; missing file is not an error.
	_ = godotenv.Load()

	cfg := heritage.ConfigFromEnv()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	if cfg.Debug {
		fmt.Println("============")
		fmt.Println(print.MaybeHighlightJSON(cfg))
		fmt.Println("============")
	}

	ctx := context.Background()

	db, err := setupPersistence(ctx, cfg)
	if err != nil {
		log.Fatalf("persistence setup: %v", err)
	}

	srv := heritage.NewServer(cfg, db)

	go func() {
		if err := srv.Listen(); err != nil {
			log.Fatalf("server: %v", err)
		}
	}()

	waitExitSignal()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown: %v", err)
	}
}

func setupPersistence(ctx context.Context, cfg heritage.Config) (*bun.DB, error) {
	db, err := sql.Open(sqliteshim.ShimName, cfg.DatabaseDSN)
	if err != nil {
		return nil, err
	}

	persistence.RegisterModel((*heritage.User)(nil))
	persistence.RegisterModel((*heritage.Token)(nil))
	persistence.RegisterModel((*heritage.PasswordReset)(nil))
	persistence.RegisterModel((*heritage.CulturalItem)(nil))
	persistence.RegisterModel((*heritage.Tag)(nil))
	persistence.RegisterModel((*heritage.ItemTag)(nil))
	persistence.RegisterModel((*heritage.Media)(nil))
	persistence.RegisterModel((*heritage.Category)(nil))
	persistence.RegisterModel((*heritage.BlogPost)(nil))
	persistence.RegisterModel((*heritage.Event)(nil))
	persistence.RegisterModel((*heritage.EventRegistration)(nil))
	persistence.RegisterModel((*heritage.Comment)(nil))
	persistence.RegisterModel((*heritage.UserFavorite)(nil))
	persistence.RegisterModel((*heritage.Notification)(nil))
	persistence.RegisterModel((*heritage.Contribution)(nil))

	client, err := persistence.New(persistenceConfig{cfg: cfg}, db, sqlitedialect.New())
	if err != nil {
		return nil, err
	}

	migrationsFS, err := fs.Sub(heritage.GetMigrationsFS(), "data/sql/migrations")
	if err != nil {
		return nil, err
	}
	client.RegisterDialectMigrations(
		migrationsFS,
		persistence.WithDialectSourceLabel("data/sql/migrations"),
		persistence.WithValidationTargets("postgres", "sqlite"),
	)
	if err := client.ValidateDialects(ctx); err != nil {
		return nil, err
	}

	if err := client.Migrate(ctx); err != nil {
		return nil, err
	}

	return client.DB(), nil
}

func waitExitSignal() os.Signal {
	ch := make(chan os.Signal, 3)
	signal.Notify(ch,
		syscall.SIGINT,
		syscall.SIGQUIT,
		syscall.SIGTERM,
	)
	return <-ch
}

package heritage

import (
	"context"
	"fmt"
	"strings"
)

type Logger interface {
	Debug(format string, args ...any)
	Info(format string, args ...any)
	Error(format string, args ...any)
}

// Authenticator holds methods to deal with authentication
type Authenticator interface {
	Login(ctx context.Context, identifier, password string) (string, error)
	UserFromToken(ctx context.Context, raw string) (*User, error)
	Logout(ctx context.Context, raw string) error
}

// Identity holds the attributes of an identity
type Identity interface {
	ID() string
	Username() string
	Email() string
	Role() string
}

// IdentityProvider ensure we have a store to retrieve auth identity
type IdentityProvider interface {
	VerifyIdentity(ctx context.Context, identifier, password string) (Identity, error)
	FindIdentityByIdentifier(ctx context.Context, identifier string) (Identity, error)
}

// PasswordAuthenticator authenticates passwords
type PasswordAuthenticator interface {
	HashPassword(password string) (string, error)
	ComparePasswordAndHash(password, hash string) error
}

type defLogger struct{}

func (d defLogger) Error(format string, args ...any) {
	fmt.Print("[ERR] HERITAGE " + newline(logLine(format, args)))
}

func (d defLogger) Info(format string, args ...any) {
	fmt.Print("[INF] HERITAGE " + newline(logLine(format, args)))
}

func (d defLogger) Debug(format string, args ...any) {
	fmt.Print("[DBG] HERITAGE " + newline(logLine(format, args)))
}

// logLine accepts either a printf format or a bare message followed by
// key-value pairs, so call sites can attach structured fields without a
// verb for every one of them.
func logLine(format string, args []any) string {
	if len(args) == 0 {
		return format
	}

	if strings.ContainsRune(format, '%') {
		return fmt.Sprintf(format, args...)
	}

	var b strings.Builder
	b.WriteString(format)
	for i := 0; i < len(args); i += 2 {
		if i+1 < len(args) {
			fmt.Fprintf(&b, " %v=%v", args[i], args[i+1])
		} else {
			fmt.Fprintf(&b, " %v", args[i])
		}
	}

	return b.String()
}

func newline(s string) string {
	if len(s) > 0 && s[len(s)-1] != '\n' {
		s += "\n"
	}
	return s
}

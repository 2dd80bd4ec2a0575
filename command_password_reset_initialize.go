package heritage

import (
	"context"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-repository-bun"
	"github.com/uptrace/bun"
)

type InitializePasswordResetMessage struct {
	Email      string `json:"email"`
	OnResponse func(resp *InitializePasswordResetResponse)
}

func (p InitializePasswordResetMessage) Type() string { return "user.password_reset" }

type InitializePasswordResetResponse struct {
	Reset *PasswordReset
	// Link carries the signed reset token. It goes into the email, and
	// never into the HTTP response: the endpoint answers the same way
	// whether the address exists or not.
	Link    string
	Success bool
}

type InitializePasswordResetHandler struct {
	repo       RepositoryManager
	signingKey string
	tokenTTL   time.Duration
	baseURL    string
	logger     Logger
}

func NewInitializePasswordResetHandler(repo RepositoryManager, cfg Config) *InitializePasswordResetHandler {
	return &InitializePasswordResetHandler{
		repo:       repo,
		signingKey: cfg.ResetSigningKey,
		tokenTTL:   cfg.ResetTokenTTL,
		baseURL:    cfg.AppBaseURL,
		logger:     defLogger{},
	}
}

func (h *InitializePasswordResetHandler) WithLogger(l Logger) *InitializePasswordResetHandler {
	if l != nil {
		h.logger = l
	}
	return h
}

func (h *InitializePasswordResetHandler) Execute(ctx context.Context, event InitializePasswordResetMessage) error {
	select {
	case <-ctx.Done():
		return goerrors.Wrap(
			ctx.Err(),
			goerrors.CategoryOperation,
			"context cancelled during password reset initialization",
		)
	default:
		return h.execute(ctx, event)
	}
}

func (h *InitializePasswordResetHandler) execute(ctx context.Context, event InitializePasswordResetMessage) error {
	reset := &PasswordReset{}
	resp := &InitializePasswordResetResponse{}

	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	var err error

	err = h.repo.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		user, err := h.repo.Users().GetByIdentifierTx(ctx, tx, event.Email)
		if err != nil {
			if repository.IsRecordNotFound(err) {
				// Unknown address: succeed without a record so the
				// endpoint cannot be used to enumerate accounts.
				resp.Success = true
				return nil
			}
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to retrieve user for password reset")
		}

		reset.UserID = &user.ID
		reset.Email = user.Email
		reset.Status = ResetRequestedStatus
		createdReset, err := h.repo.PasswordResets().CreateTx(ctx, tx, reset)
		if err != nil {
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to create password reset record")
		}
		resp.Reset = createdReset

		signed, _, err := MintResetToken(h.signingKey, createdReset.ID, user.Email, h.tokenTTL)
		if err != nil {
			return err
		}

		resp.Link = h.baseURL + "/password-reset/" + signed
		resp.Success = true

		// TODO: hand off to a real mailer once the SMTP relay lands
		h.logger.Info("password reset link issued", "email", user.Email, "link", resp.Link)

		return nil
	})

	if err != nil {
		var richErr *goerrors.Error
		if goerrors.As(err, &richErr) {
			return richErr
		}
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to initialize password reset")
	}

	if event.OnResponse != nil {
		event.OnResponse(resp)
	}

	return nil
}

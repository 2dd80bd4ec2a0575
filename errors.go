package heritage

import (
	goerrors "github.com/goliatone/go-errors"
)

// Text codes surfaced to API clients alongside the HTTP status. Kept
// stable so clients can switch on them.
const (
	TextCodeInvalidCreds       = "INVALID_CREDENTIALS"
	TextCodeEmptyPassword      = "EMPTY_PASSWORD"
	TextCodeInvalidToken       = "INVALID_TOKEN"
	TextCodeMissingBearerToken = "MISSING_BEARER_TOKEN"
	TextCodeTooManyAttempts    = "TOO_MANY_LOGIN_ATTEMPTS"
	TextCodeInactiveUser       = "INACTIVE_USER"
	TextCodeAdminRequired      = "ADMIN_REQUIRED"
	TextCodeEmailTaken         = "EMAIL_TAKEN"
	TextCodeUsernameTaken      = "USERNAME_TAKEN"
	TextCodeResetInvalid       = "RESET_INVALID"
)

// ErrIdentityNotFound is returned when no user matches an identifier.
// Callers on the login path must collapse it into
// ErrMismatchedHashAndPassword before it reaches a client.
var ErrIdentityNotFound = goerrors.New("identity not found", goerrors.CategoryNotFound).
	WithCode(goerrors.CodeNotFound)

// ErrMismatchedHashAndPassword collapses every credential failure, wrong
// password and unknown identifier alike, into one generic error so a
// caller cannot probe which part was wrong.
var ErrMismatchedHashAndPassword = goerrors.New("the credentials provided are invalid", goerrors.CategoryAuth).
	WithCode(goerrors.CodeUnauthorized).
	WithTextCode(TextCodeInvalidCreds)

// ErrNoEmptyString rejects empty passwords before they reach the hasher.
var ErrNoEmptyString = goerrors.New("password must not be empty", goerrors.CategoryValidation).
	WithCode(goerrors.CodeBadRequest).
	WithTextCode(TextCodeEmptyPassword)

// Token validation failures all carry the same client-facing message.
// The distinct internal reasons only show up in logs.
var (
	ErrTokenNotFound = goerrors.New("token invalid or expired", goerrors.CategoryAuth).
				WithCode(goerrors.CodeUnauthorized).
				WithTextCode(TextCodeInvalidToken)

	ErrTokenRevoked = goerrors.New("token invalid or expired", goerrors.CategoryAuth).
			WithCode(goerrors.CodeUnauthorized).
			WithTextCode(TextCodeInvalidToken)

	ErrTokenExpired = goerrors.New("token invalid or expired", goerrors.CategoryAuth).
			WithCode(goerrors.CodeUnauthorized).
			WithTextCode(TextCodeInvalidToken)

	ErrSessionTooOld = goerrors.New("token invalid or expired", goerrors.CategoryAuth).
				WithCode(goerrors.CodeUnauthorized).
				WithTextCode(TextCodeInvalidToken)
)

// ErrMissingBearerToken means the Authorization header was absent or
// did not carry a Bearer scheme.
var ErrMissingBearerToken = goerrors.New("missing or malformed bearer token", goerrors.CategoryAuth).
	WithCode(goerrors.CodeUnauthorized).
	WithTextCode(TextCodeMissingBearerToken)

// ErrTooManyLoginAttempts is returned while the login cooldown window
// is still active.
var ErrTooManyLoginAttempts = goerrors.New("too many login attempts, try again later", goerrors.CategoryRateLimit).
	WithTextCode(TextCodeTooManyAttempts)

// ErrInactiveUser is returned by the active guard for suspended accounts.
var ErrInactiveUser = goerrors.New("inactive user", goerrors.CategoryAuthz).
	WithCode(goerrors.CodeForbidden).
	WithTextCode(TextCodeInactiveUser)

// ErrAdminRequired is returned by the admin guard for non-admin callers.
var ErrAdminRequired = goerrors.New("not authorized, admin privileges required", goerrors.CategoryAuthz).
	WithCode(goerrors.CodeForbidden).
	WithTextCode(TextCodeAdminRequired)

// Registration conflicts are deliberately field specific. Registration
// is not the enumeration surface login is, and a client needs to know
// which input to correct.
var (
	ErrEmailTaken = goerrors.New("email already registered", goerrors.CategoryConflict).
			WithCode(goerrors.CodeConflict).
			WithTextCode(TextCodeEmailTaken)

	ErrUsernameTaken = goerrors.New("username already registered", goerrors.CategoryConflict).
				WithCode(goerrors.CodeConflict).
				WithTextCode(TextCodeUsernameTaken)
)

// ErrResetInvalid covers every password-reset link failure with one
// client-facing message.
var ErrResetInvalid = goerrors.New("reset link is invalid or expired", goerrors.CategoryAuth).
	WithCode(goerrors.CodeUnauthorized).
	WithTextCode(TextCodeResetInvalid)

// IsAuthError reports whether err belongs to the authentication
// category, meaning it should surface as a 401 with a WWW-Authenticate
// challenge.
func IsAuthError(err error) bool {
	if err == nil {
		return false
	}
	var richErr *goerrors.Error
	if !goerrors.As(err, &richErr) {
		return false
	}
	return richErr.Category == goerrors.CategoryAuth
}

// IsConflictError reports whether err is a uniqueness conflict.
func IsConflictError(err error) bool {
	if err == nil {
		return false
	}
	var richErr *goerrors.Error
	if !goerrors.As(err, &richErr) {
		return false
	}
	return richErr.Category == goerrors.CategoryConflict
}

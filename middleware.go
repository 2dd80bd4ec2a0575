package heritage

import (
	"strings"

	"github.com/gofiber/fiber/v2"
)

const (
	authHeaderName = "Authorization"
	bearerScheme   = "Bearer"
)

// BearerFromHeader pulls the raw token out of the Authorization
// header. Scheme matching is case-insensitive per RFC 6750.
func BearerFromHeader(c *fiber.Ctx) (string, error) {
	header := c.Get(authHeaderName)
	if header == "" {
		return "", ErrMissingBearerToken
	}

	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], bearerScheme) {
		return "", ErrMissingBearerToken
	}

	raw := strings.TrimSpace(parts[1])
	if raw == "" {
		return "", ErrMissingBearerToken
	}

	return raw, nil
}

// Guard builds the middleware chain protecting API routes. The chain
// is ordered: Authenticated resolves the credential, Active layers an
// account check on top, Admin layers a role check on top of that.
type Guard struct {
	auth   Authenticator
	logger Logger
}

func NewGuard(auth Authenticator) *Guard {
	return &Guard{
		auth:   auth,
		logger: defLogger{},
	}
}

func (g *Guard) WithLogger(l Logger) *Guard {
	if l != nil {
		g.logger = l
	}
	return g
}

// Authenticated requires a valid bearer token. Infrastructure failures
// during resolution fail closed: the client sees the same 401 as a bad
// token while the real cause lands in the log.
func (g *Guard) Authenticated() fiber.Handler {
	return func(c *fiber.Ctx) error {
		raw, err := BearerFromHeader(c)
		if err != nil {
			return err
		}

		user, err := g.auth.UserFromToken(c.UserContext(), raw)
		if err != nil {
			if !IsAuthError(err) {
				g.logger.Error("token resolution failed closed", "path", c.Path(), "error", err)
				return ErrTokenNotFound
			}
			return err
		}

		c.Locals(LocalsUserKey, user)
		c.Locals(LocalsTokenKey, raw)
		c.SetUserContext(WithToken(WithUser(c.UserContext(), user), raw))

		return c.Next()
	}
}

// Active requires the authenticated account to be in good standing.
// Must run after Authenticated.
func (g *Guard) Active() fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, ok := CurrentUser(c)
		if !ok {
			return ErrMissingBearerToken
		}

		if !user.IsActive() {
			return ErrInactiveUser
		}

		return c.Next()
	}
}

// Admin requires the admin role. Must run after Authenticated and
// Active.
func (g *Guard) Admin() fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, ok := CurrentUser(c)
		if !ok {
			return ErrMissingBearerToken
		}

		if !user.IsAdmin() {
			return ErrAdminRequired
		}

		return c.Next()
	}
}

// Optional resolves a bearer token when one is present but never
// rejects the request. Handlers behind it render public content with
// a personalized layer when CurrentUser reports a caller.
func (g *Guard) Optional() fiber.Handler {
	return func(c *fiber.Ctx) error {
		raw, err := BearerFromHeader(c)
		if err != nil {
			return c.Next()
		}

		user, err := g.auth.UserFromToken(c.UserContext(), raw)
		if err != nil {
			if !IsAuthError(err) {
				g.logger.Error("optional token resolution failed", "path", c.Path(), "error", err)
			}
			return c.Next()
		}

		c.Locals(LocalsUserKey, user)
		c.Locals(LocalsTokenKey, raw)
		c.SetUserContext(WithToken(WithUser(c.UserContext(), user), raw))

		return c.Next()
	}
}

// CurrentUser retrieves the user a guard resolved for this request.
func CurrentUser(c *fiber.Ctx) (*User, bool) {
	user, ok := c.Locals(LocalsUserKey).(*User)
	if !ok || user == nil {
		return nil, false
	}
	return user, true
}

// CurrentToken retrieves the raw bearer value for this request.
func CurrentToken(c *fiber.Ctx) (string, bool) {
	raw, ok := c.Locals(LocalsTokenKey).(string)
	if !ok || raw == "" {
		return "", false
	}
	return raw, true
}

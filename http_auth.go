package heritage

import (
	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"github.com/gofiber/fiber/v2"
	goerrors "github.com/goliatone/go-errors"
)

// AuthController owns the credential endpoints: login, logout,
// registration and the password-reset flow.
type AuthController struct {
	Logger Logger
	Repo   RepositoryManager
	Auth   Authenticator
	Config Config
}

type AuthControllerOption func(*AuthController) *AuthController

func NewAuthController(opts ...AuthControllerOption) *AuthController {
	c := &AuthController{
		Logger: defLogger{},
	}

	for _, opt := range opts {
		c = opt(c)
	}

	if c.Repo == nil {
		panic("Missing RepositoryManager in auth controller...")
	}

	if c.Auth == nil {
		panic("Missing Authenticator in auth controller...")
	}

	return c
}

// RegisterAuthRoutes mounts the auth surface under the given router.
func RegisterAuthRoutes(api fiber.Router, c *AuthController, guard *Guard) {
	api.Post("/auth/token", c.Token)
	api.Post("/auth/register", c.Register)
	api.Post("/auth/logout", guard.Authenticated(), c.Logout)
	api.Post("/auth/password-reset", c.PasswordResetRequest)
	api.Post("/auth/password-reset/confirm", c.PasswordResetConfirm)
}

// LoginRequest payload
type LoginRequest struct {
	Identifier string `form:"identifier" json:"identifier"`
	Password   string `form:"password" json:"password"`
}

// Validate will run validation rules
func (r LoginRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(
			&r.Identifier,
			validation.Required,
		),
		validation.Field(
			&r.Password,
			validation.Required,
		),
	)
}

// TokenResponse is the login payload handed to clients.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// Token exchanges credentials for an opaque bearer token.
func (a *AuthController) Token(c *fiber.Ctx) error {
	payload := new(LoginRequest)

	if err := c.BodyParser(payload); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryBadInput, "could not parse login payload")
	}

	if err := payload.Validate(); err != nil {
		return ValidationError(err)
	}

	token, err := a.Auth.Login(c.UserContext(), payload.Identifier, payload.Password)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusOK).JSON(TokenResponse{
		AccessToken: token,
		TokenType:   "bearer",
	})
}

// Logout revokes the credential that authenticated this request.
func (a *AuthController) Logout(c *fiber.Ctx) error {
	raw, ok := CurrentToken(c)
	if !ok {
		return ErrMissingBearerToken
	}

	if err := a.Auth.Logout(c.UserContext(), raw); err != nil {
		return err
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// RegistrationPayload is the signup body
type RegistrationPayload struct {
	FirstName       string `form:"first_name" json:"first_name"`
	LastName        string `form:"last_name" json:"last_name"`
	Username        string `form:"username" json:"username"`
	Email           string `form:"email" json:"email"`
	Phone           string `form:"phone_number" json:"phone_number"`
	Password        string `form:"password" json:"password"`
	ConfirmPassword string `form:"confirm_password" json:"confirm_password"`
}

// Validate will validate the payload
func (r RegistrationPayload) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.FirstName, validation.Length(0, 200)),
		validation.Field(&r.LastName, validation.Length(0, 200)),
		validation.Field(&r.Username, validation.Length(3, 60)),
		validation.Field(&r.Email, validation.Required, validation.Length(6, 100), is.Email),
		validation.Field(&r.Password, validation.Required, validation.Length(10, 100)),
		validation.Field(
			&r.ConfirmPassword,
			validation.Required,
			validation.Length(10, 100),
			validation.By(ValidateStringEquals(r.Password)),
		),
	)
}

// Register creates an account and returns the stored profile.
func (a *AuthController) Register(c *fiber.Ctx) error {
	payload := new(RegistrationPayload)

	if err := c.BodyParser(payload); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryBadInput, "could not parse registration payload")
	}

	if err := payload.Validate(); err != nil {
		return ValidationError(err)
	}

	var created *User

	req := RegisterUserMessage{
		FirstName: payload.FirstName,
		LastName:  payload.LastName,
		Username:  payload.Username,
		Email:     payload.Email,
		Phone:     payload.Phone,
		Password:  payload.Password,
		UseHashid: true,
		OnResponse: func(u *User) {
			created = u
		},
	}

	registerUser := NewRegisterUserHandler(a.Repo, a.Config.BcryptCost)
	if err := registerUser.Execute(c.UserContext(), req); err != nil {
		a.Logger.Error("user registration failed", "error", err)
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(NewUserDTO(created))
}

// PasswordResetRequestPayload holds values for password reset
type PasswordResetRequestPayload struct {
	Email string `form:"email" json:"email"`
}

// Validate will validate the payload
func (r PasswordResetRequestPayload) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(
			&r.Email,
			validation.Required,
			is.Email,
		),
	)
}

// PasswordResetRequest kicks off the reset flow. The response is the
// same whether or not the address exists.
func (a *AuthController) PasswordResetRequest(c *fiber.Ctx) error {
	payload := new(PasswordResetRequestPayload)

	if err := c.BodyParser(payload); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryBadInput, "could not parse reset payload")
	}

	if err := payload.Validate(); err != nil {
		return ValidationError(err)
	}

	req := InitializePasswordResetMessage{
		Email: payload.Email,
	}

	initPwdReset := NewInitializePasswordResetHandler(a.Repo, a.Config).
		WithLogger(a.Logger)

	if err := initPwdReset.Execute(c.UserContext(), req); err != nil {
		a.Logger.Error("password reset initialization failed", "error", err)
		return err
	}

	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{
		"message": "if the address exists, a reset link is on its way",
	})
}

// PasswordResetConfirmPayload holds values for password reset
type PasswordResetConfirmPayload struct {
	Token           string `form:"token" json:"token"`
	Password        string `form:"password" json:"password"`
	ConfirmPassword string `form:"confirm_password" json:"confirm_password"`
}

// Validate will validate the payload
func (r PasswordResetConfirmPayload) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Token, validation.Required),
		validation.Field(
			&r.Password,
			validation.Required,
			validation.Length(10, 100),
		),
		validation.Field(
			&r.ConfirmPassword,
			validation.Required,
			validation.Length(10, 100),
			validation.By(ValidateStringEquals(r.Password)),
		),
	)
}

// PasswordResetConfirm consumes a signed link token and sets the new
// password.
func (a *AuthController) PasswordResetConfirm(c *fiber.Ctx) error {
	payload := new(PasswordResetConfirmPayload)

	if err := c.BodyParser(payload); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryBadInput, "could not parse reset payload")
	}

	if err := payload.Validate(); err != nil {
		return ValidationError(err)
	}

	input := FinalizePasswordResetMessage{
		Token:    payload.Token,
		Password: payload.Password,
	}

	finalizePwdReset := NewFinalizePasswordResetHandler(a.Repo, a.Config).
		WithLogger(a.Logger)

	if err := finalizePwdReset.Execute(c.UserContext(), input); err != nil {
		return err
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// PasswordResetForm renders the browser-facing form behind an emailed
// link. The template posts to the confirm endpoint.
func (a *AuthController) PasswordResetForm(c *fiber.Ctx) error {
	raw := c.Params("token")

	if _, err := ParseResetToken(a.Config.ResetSigningKey, raw); err != nil {
		return c.Render("password_reset", fiber.Map{
			"valid": false,
		})
	}

	return c.Render("password_reset", fiber.Map{
		"valid": true,
		"token": raw,
	})
}

// ValidateStringEquals will check that both values match
func ValidateStringEquals(str string) validation.RuleFunc {
	return func(value any) error {
		s, _ := value.(string)
		if s != str {
			return goerrors.New("values must match", goerrors.CategoryValidation)
		}
		return nil
	}
}

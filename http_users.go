package heritage

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/gofiber/fiber/v2"
	goerrors "github.com/goliatone/go-errors"
	"github.com/google/uuid"
)

// UserDTO is the public projection of an account. The password hash
// and throttling counters never leave the server.
type UserDTO struct {
	ID             uuid.UUID  `json:"id"`
	Role           UserRole   `json:"user_role"`
	Status         UserStatus `json:"status"`
	FirstName      string     `json:"first_name,omitempty"`
	LastName       string     `json:"last_name,omitempty"`
	Username       string     `json:"username"`
	Email          string     `json:"email"`
	Phone          string     `json:"phone_number,omitempty"`
	ProfilePicture string     `json:"profile_picture,omitempty"`
	Bio            string     `json:"bio,omitempty"`
	EmailValidated bool       `json:"is_email_verified"`
	CreatedAt      *time.Time `json:"created_at,omitempty"`
}

func NewUserDTO(user *User) UserDTO {
	if user == nil {
		return UserDTO{}
	}

	user.EnsureStatus()

	return UserDTO{
		ID:             user.ID,
		Role:           user.Role,
		Status:         user.Status,
		FirstName:      user.FirstName,
		LastName:       user.LastName,
		Username:       user.Username,
		Email:          user.Email,
		Phone:          user.Phone,
		ProfilePicture: user.ProfilePicture,
		Bio:            user.Bio,
		EmailValidated: user.EmailValidated,
		CreatedAt:      user.CreatedAt,
	}
}

// UsersController serves the profile surface and the admin account
// operations.
type UsersController struct {
	Logger Logger
	Repo   RepositoryManager
	Store  *TokenStore
}

// RegisterUserRoutes mounts profile and admin endpoints.
func RegisterUserRoutes(api fiber.Router, c *UsersController, guard *Guard) {
	me := api.Group("/users/me", guard.Authenticated(), guard.Active())
	me.Get("/", c.Me)
	me.Patch("/", c.UpdateMe)
	me.Put("/password", c.ChangeMyPassword)
	me.Delete("/", c.DeleteMe)

	api.Get("/users/:id", guard.Optional(), c.PublicProfile)

	admin := api.Group("/admin/users", guard.Authenticated(), guard.Active(), guard.Admin())
	admin.Get("/", c.AdminList)
	admin.Post("/:id/suspend", c.AdminSuspend)
	admin.Post("/:id/reinstate", c.AdminReinstate)
}

// Me returns the caller's profile.
func (u *UsersController) Me(c *fiber.Ctx) error {
	user, ok := CurrentUser(c)
	if !ok {
		return ErrMissingBearerToken
	}

	return c.JSON(NewUserDTO(user))
}

// ProfileUpdatePayload carries the editable profile fields.
type ProfileUpdatePayload struct {
	FirstName      string `form:"first_name" json:"first_name"`
	LastName       string `form:"last_name" json:"last_name"`
	ProfilePicture string `form:"profile_picture" json:"profile_picture"`
	Bio            string `form:"bio" json:"bio"`
	Phone          string `form:"phone_number" json:"phone_number"`
}

// Validate will run validation rules
func (r ProfileUpdatePayload) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.FirstName, validation.Length(0, 200)),
		validation.Field(&r.LastName, validation.Length(0, 200)),
		validation.Field(&r.Bio, validation.Length(0, 2000)),
	)
}

// UpdateMe edits the caller's profile.
func (u *UsersController) UpdateMe(c *fiber.Ctx) error {
	user, ok := CurrentUser(c)
	if !ok {
		return ErrMissingBearerToken
	}

	payload := new(ProfileUpdatePayload)
	if err := c.BodyParser(payload); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryBadInput, "could not parse profile payload")
	}

	if err := payload.Validate(); err != nil {
		return ValidationError(err)
	}

	phone, err := NormalizePhone(payload.Phone)
	if err != nil {
		return err
	}

	record := &User{
		ID:             user.ID,
		FirstName:      payload.FirstName,
		LastName:       payload.LastName,
		ProfilePicture: payload.ProfilePicture,
		Bio:            payload.Bio,
		Phone:          phone,
	}

	updated, err := u.Repo.Users().Update(c.UserContext(), record)
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to update profile")
	}

	return c.JSON(NewUserDTO(updated))
}

// PasswordChangePayload rotates a password for a signed-in caller.
type PasswordChangePayload struct {
	CurrentPassword string `form:"current_password" json:"current_password"`
	NewPassword     string `form:"new_password" json:"new_password"`
}

// Validate will run validation rules
func (r PasswordChangePayload) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.CurrentPassword, validation.Required),
		validation.Field(&r.NewPassword, validation.Required, validation.Length(10, 100)),
	)
}

// ChangeMyPassword verifies the current password, stores a new hash and
// tears down every other session for the account.
func (u *UsersController) ChangeMyPassword(c *fiber.Ctx) error {
	user, ok := CurrentUser(c)
	if !ok {
		return ErrMissingBearerToken
	}

	payload := new(PasswordChangePayload)
	if err := c.BodyParser(payload); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryBadInput, "could not parse password payload")
	}

	if err := payload.Validate(); err != nil {
		return ValidationError(err)
	}

	if err := ComparePasswordAndHash(payload.CurrentPassword, user.PasswordHash); err != nil {
		return ErrMismatchedHashAndPassword
	}

	hash, err := HashPassword(payload.NewPassword)
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to hash password")
	}

	if err := u.Repo.Users().ChangePassword(c.UserContext(), user.ID, hash); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to store password")
	}

	if raw, ok := CurrentToken(c); ok {
		if _, err := u.Store.RevokeOtherSessions(c.UserContext(), user.ID, raw); err != nil {
			u.Logger.Error("failed to revoke other sessions", "user_id", user.ID.String(), "error", err)
		}
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// DeleteMe removes the caller's account and every session it holds.
func (u *UsersController) DeleteMe(c *fiber.Ctx) error {
	user, ok := CurrentUser(c)
	if !ok {
		return ErrMissingBearerToken
	}

	if _, err := u.Store.RevokeAllForUser(c.UserContext(), user.ID); err != nil {
		u.Logger.Error("failed to revoke sessions for deleted user", "user_id", user.ID.String(), "error", err)
	}

	if err := u.Repo.Users().SoftDelete(c.UserContext(), user.ID); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to delete account")
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// PublicProfileDTO is what anonymous callers see of an account.
type PublicProfileDTO struct {
	ID             uuid.UUID  `json:"id"`
	Username       string     `json:"username"`
	FirstName      string     `json:"first_name,omitempty"`
	LastName       string     `json:"last_name,omitempty"`
	ProfilePicture string     `json:"profile_picture,omitempty"`
	Bio            string     `json:"bio,omitempty"`
	CreatedAt      *time.Time `json:"created_at,omitempty"`
}

// PublicProfile returns a member's profile. Admin callers get the full
// account projection.
func (u *UsersController) PublicProfile(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return goerrors.New("invalid user id", goerrors.CategoryBadInput)
	}

	record, err := u.Repo.Users().GetByID(c.UserContext(), id.String())
	if err != nil {
		return err
	}

	if caller, ok := CurrentUser(c); ok && caller.IsAdmin() {
		return c.JSON(NewUserDTO(record))
	}

	return c.JSON(PublicProfileDTO{
		ID:             record.ID,
		Username:       record.Username,
		FirstName:      record.FirstName,
		LastName:       record.LastName,
		ProfilePicture: record.ProfilePicture,
		Bio:            record.Bio,
		CreatedAt:      record.CreatedAt,
	})
}

// AdminList pages through accounts.
func (u *UsersController) AdminList(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 25)
	offset := c.QueryInt("offset", 0)

	records, total, err := u.Repo.Users().ListPage(c.UserContext(), limit, offset)
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to list users")
	}

	out := make([]UserDTO, 0, len(records))
	for _, record := range records {
		out = append(out, NewUserDTO(record))
	}

	return c.JSON(fiber.Map{
		"items":  out,
		"total":  total,
		"limit":  limit,
		"offset": offset,
	})
}

// AdminSuspend disables an account and tears down its sessions so the
// change takes effect on the next request, not the next login.
func (u *UsersController) AdminSuspend(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return goerrors.New("invalid user id", goerrors.CategoryBadInput)
	}

	record, err := u.Repo.Users().UpdateStatus(c.UserContext(), id, UserStatusSuspended)
	if err != nil {
		return err
	}

	if _, err := u.Store.RevokeAllForUser(c.UserContext(), id); err != nil {
		u.Logger.Error("failed to revoke sessions for suspended user", "user_id", id.String(), "error", err)
	}

	return c.JSON(NewUserDTO(record))
}

// AdminReinstate returns a suspended account to active.
func (u *UsersController) AdminReinstate(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return goerrors.New("invalid user id", goerrors.CategoryBadInput)
	}

	record, err := u.Repo.Users().UpdateStatus(c.UserContext(), id, UserStatusActive)
	if err != nil {
		return err
	}

	return c.JSON(NewUserDTO(record))
}

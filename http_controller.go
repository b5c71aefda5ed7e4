package auth

import (
	"sort"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"github.com/gofiber/fiber/v2"
	"github.com/goliatone/go-errors"
)

// RegisterAuthRoutes mounts the credential endpoints under /auth. The
// protected handler runs before any route that needs a resolved session
// user. Static routes go first so the social :provider route cannot
// shadow them.
func RegisterAuthRoutes(app fiber.Router, protected fiber.Handler, opts ...AuthControllerOption) {
	controller := NewAuthController(opts...)

	group := app.Group(controller.Routes.Prefix)

	group.Post(controller.Routes.Signup, controller.SignupPost).Name("signup.post")
	group.Post(controller.Routes.Login, controller.LoginPost).Name("login.post")
	group.Get(controller.Routes.Ping, controller.Ping).Name("ping.get")
	group.Get(controller.Routes.Me, protected, controller.MeShow).Name("me.get")
}

type AuthControllerRoutes struct {
	Prefix string
	Signup string
	Login  string
	Me     string
	Ping   string
}

type AuthController struct {
	Debug  bool
	Logger Logger
	Routes *AuthControllerRoutes
	Auther Authenticator
}

type AuthControllerOption func(*AuthController) *AuthController

func NewAuthController(opts ...AuthControllerOption) *AuthController {
	c := &AuthController{
		Logger: defLogger{},
		Routes: &AuthControllerRoutes{
			Prefix: "/auth",
			Signup: "/signup",
			Login:  "/login",
			Me:     "/me",
			Ping:   "/ping",
		},
	}

	for _, opt := range opts {
		c = opt(c)
	}

	if c.Auther == nil {
		panic("Missing Authenticator in auth controller...")
	}

	return c
}

func WithControllerLogger(logger Logger) AuthControllerOption {
	return func(c *AuthController) *AuthController {
		c.Logger = logger
		return c
	}
}

func WithControllerAuther(auther Authenticator) AuthControllerOption {
	return func(c *AuthController) *AuthController {
		c.Auther = auther
		return c
	}
}

func WithControllerRoutes(routes *AuthControllerRoutes) AuthControllerOption {
	return func(c *AuthController) *AuthController {
		c.Routes = routes
		return c
	}
}

// SignupPayload is the registration request body
type SignupPayload struct {
	Username string `form:"username" json:"username"`
	Email    string `form:"email" json:"email"`
	Password string `form:"password" json:"password"`
}

// Validate will run validation rules
func (r SignupPayload) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Username, validation.Required, validation.Length(3, 100)),
		validation.Field(&r.Email, validation.Required, is.Email),
		validation.Field(&r.Password, validation.Required, validation.Length(6, 100)),
	)
}

// LoginPayload is the credential verification request body
type LoginPayload struct {
	Email    string `form:"email" json:"email"`
	Password string `form:"password" json:"password"`
}

// GetIdentifier returns the identifier
func (r LoginPayload) GetIdentifier() string {
	return r.Email
}

// GetPassword will return the password
func (r LoginPayload) GetPassword() string {
	return r.Password
}

// Validate will run validation rules
func (r LoginPayload) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, is.Email),
		validation.Field(&r.Password, validation.Required),
	)
}

func (a *AuthController) SignupPost(c *fiber.Ctx) error {
	payload := new(SignupPayload)

	if err := c.BodyParser(payload); err != nil {
		a.Logger.Error("signup parse payload: %s", err)
		return renderParseError(c)
	}

	if err := payload.Validate(); err != nil {
		return renderValidationError(c, err)
	}

	token, user, err := a.Auther.Register(c.UserContext(), RegisterUserMessage{
		Username: payload.Username,
		Email:    payload.Email,
		Password: payload.Password,
	})

	if err != nil {
		a.Logger.Error("signup register: %s", err)
		return a.renderError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"token":   token,
		"user":    user.Public(),
	})
}

func (a *AuthController) LoginPost(c *fiber.Ctx) error {
	payload := new(LoginPayload)

	if err := c.BodyParser(payload); err != nil {
		a.Logger.Error("login parse payload: %s", err)
		return renderParseError(c)
	}

	if err := payload.Validate(); err != nil {
		return renderValidationError(c, err)
	}

	token, user, err := a.Auther.Login(c.UserContext(), payload.GetIdentifier(), payload.GetPassword())
	if err != nil {
		a.Logger.Error("login: %s", err)
		return a.renderError(c, err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"token":   token,
		"user":    user.Public(),
	})
}

func (a *AuthController) MeShow(c *fiber.Ctx) error {
	user, ok := FromContext(c.UserContext())
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"success": false,
			"error":   ErrIdentityNotFound.Message,
		})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"user":    user.Public(),
	})
}

func (a *AuthController) Ping(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"message": "pong",
	})
}

// renderError maps domain errors to HTTP responses. Anything without a
// known category leaks no detail to the client.
func (a *AuthController) renderError(c *fiber.Ctx, err error) error {
	var rich *errors.Error
	if errors.As(err, &rich) {
		status := fiber.StatusBadRequest

		switch rich.Category {
		case errors.CategoryAuth:
			status = fiber.StatusBadRequest
		case errors.CategoryConflict, errors.CategoryValidation, errors.CategoryBadInput:
			status = fiber.StatusBadRequest
		case errors.CategoryNotFound:
			status = fiber.StatusNotFound
		default:
			return renderServerError(c)
		}

		return c.Status(status).JSON(fiber.Map{
			"success": false,
			"error":   rich.Message,
		})
	}

	return renderServerError(c)
}

func renderParseError(c *fiber.Ctx) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"success": false,
		"error":   "unable to parse request body",
	})
}

func renderValidationError(c *fiber.Ctx, err error) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"success": false,
		"error":   "validation failed",
		"errors":  FormatValidationErrors(err),
	})
}

func renderServerError(c *fiber.Ctx) error {
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"success": false,
		"error":   "server error",
	})
}

// FieldError pairs a payload field with its validation message.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// FormatValidationErrorToMap flattens an ozzo validation error into a
// field to message map.
func FormatValidationErrorToMap(err error) map[string]string {
	out := map[string]string{}

	if err == nil {
		return out
	}

	if verrs, ok := err.(validation.Errors); ok {
		for field, ferr := range verrs {
			out[field] = ferr.Error()
		}
		return out
	}

	out["payload"] = err.Error()

	return out
}

// FormatValidationErrors returns field errors in a stable order so
// clients can rely on deterministic output.
func FormatValidationErrors(err error) []FieldError {
	mapped := FormatValidationErrorToMap(err)

	fields := make([]string, 0, len(mapped))
	for field := range mapped {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	out := make([]FieldError, 0, len(fields))
	for _, field := range fields {
		out = append(out, FieldError{Field: field, Message: mapped[field]})
	}

	return out
}

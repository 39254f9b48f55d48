package auth

import (
	"fmt"
	"net/http"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"github.com/goliatone/go-print"
	"github.com/goliatone/go-router"
)

// RegisterAuthRoutes mounts the wire surface: sign-up, sign-in, refresh,
// and logout. The mounting app decides the base path, e.g. /api/v1/auth.
func RegisterAuthRoutes[T any](app router.Router[T], opts ...AuthControllerOption) {

	controller := NewAuthController(opts...)

	app.Post(controller.Routes.SignUp, controller.SignUpPost).
		SetName("auth.sign-up.post")

	app.Post(controller.Routes.SignIn, controller.SignInPost).
		SetName("auth.sign-in.post")

	app.Post(controller.Routes.Refresh, controller.RefreshPost).
		SetName("auth.refresh.post")

	app.Post(controller.Routes.Logout, controller.LogoutPost).
		SetName("auth.logout.post")
}

type AuthControllerRoutes struct {
	SignUp  string
	SignIn  string
	Refresh string
	Logout  string
}

type AuthController struct {
	Debug  bool
	Logger Logger
	Auther Authenticator
	Routes *AuthControllerRoutes
}

type AuthControllerOption func(*AuthController) *AuthController

func NewAuthController(opts ...AuthControllerOption) *AuthController {
	c := &AuthController{
		Logger: defLogger{},
		Routes: &AuthControllerRoutes{
			SignUp:  "/signup",
			SignIn:  "/signin",
			Refresh: "/refresh-token",
			Logout:  "/logout",
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

func WithAuthenticator(auther Authenticator) AuthControllerOption {
	return func(c *AuthController) *AuthController {
		c.Auther = auther
		return c
	}
}

func WithControllerLogger(logger Logger) AuthControllerOption {
	return func(c *AuthController) *AuthController {
		if logger != nil {
			c.Logger = logger
		}
		return c
	}
}

func WithControllerRoutes(routes *AuthControllerRoutes) AuthControllerOption {
	return func(c *AuthController) *AuthController {
		if routes != nil {
			c.Routes = routes
		}
		return c
	}
}

func WithControllerDebug(debug bool) AuthControllerOption {
	return func(c *AuthController) *AuthController {
		c.Debug = debug
		return c
	}
}

// AuthRequest is the sign-up and sign-in payload
type AuthRequest struct {
	Email    string `form:"email" json:"email"`
	Password string `form:"password" json:"password"`
}

// Validate will run validation rules
func (r AuthRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(
			&r.Email,
			validation.Required,
			is.Email,
		),
		validation.Field(
			&r.Password,
			validation.Required,
		),
	)
}

func (a *AuthController) SignUpPost(ctx router.Context) error {
	payload := new(AuthRequest)

	if err := ctx.Bind(payload); err != nil {
		a.Logger.Error("sign-up parse payload", "error", err)
		return ctx.JSON(router.StatusBadRequest, map[string]string{
			"error": "invalid request body",
		})
	}

	if err := payload.Validate(); err != nil {
		return ctx.JSON(router.StatusBadRequest, map[string]string{
			"error": err.Error(),
		})
	}

	if a.Debug {
		fmt.Println("======= AUTH SIGNUP =====")
		fmt.Println(print.MaybePrettyJSON(payload))
		fmt.Println("=========================")
	}

	if _, err := a.Auther.SignUp(ctx.Context(), payload.Email, payload.Password); err != nil {
		if IsEmailTakenError(err) {
			return ctx.JSON(http.StatusConflict, map[string]string{
				"error": "email already registered",
			})
		}
		a.Logger.Error("sign-up error", "error", err)
		return ctx.JSON(http.StatusInternalServerError, map[string]string{
			"error": "registration failed",
		})
	}

	return ctx.Status(router.StatusOK).SendString("")
}

func (a *AuthController) SignInPost(ctx router.Context) error {
	payload := new(AuthRequest)

	if err := ctx.Bind(payload); err != nil {
		a.Logger.Error("sign-in parse payload", "error", err)
		return ctx.JSON(router.StatusBadRequest, map[string]string{
			"error": "invalid request body",
		})
	}

	if err := payload.Validate(); err != nil {
		return ctx.JSON(router.StatusBadRequest, map[string]string{
			"error": err.Error(),
		})
	}

	pair, err := a.Auther.SignIn(ctx.Context(), payload.Email, payload.Password)
	if err != nil {
		if IsAuthenticationFailedError(err) {
			// Uniform rejection: no hint about which factor failed.
			return ctx.JSON(router.StatusUnauthorized, map[string]string{
				"error": "authentication failed",
			})
		}
		a.Logger.Error("sign-in error", "error", err)
		return ctx.JSON(http.StatusInternalServerError, map[string]string{
			"error": "authentication failed",
		})
	}

	return ctx.JSON(router.StatusOK, pair)
}

// RefreshPost exchanges a refresh token presented as a Bearer credential.
// A rejected refresh writes nothing: the empty 200 is the rejection signal.
func (a *AuthController) RefreshPost(ctx router.Context) error {
	authorization := ctx.GetString(router.HeaderAuthorization, "")

	pair, err := a.Auther.Refresh(ctx.Context(), authorization)
	if err != nil {
		a.Logger.Error("refresh error", "error", err)
		return ctx.JSON(http.StatusInternalServerError, map[string]string{
			"error": "refresh failed",
		})
	}

	if pair == nil {
		return ctx.Status(router.StatusOK).SendString("")
	}

	return ctx.JSON(router.StatusOK, pair)
}

func (a *AuthController) LogoutPost(ctx router.Context) error {
	authorization := ctx.GetString(router.HeaderAuthorization, "")

	if err := a.Auther.Logout(ctx.Context(), authorization); err != nil {
		a.Logger.Error("logout error", "error", err)
	}

	return ctx.Status(http.StatusNoContent).SendString("")
}

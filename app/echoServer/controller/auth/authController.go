// app/echoServer/controller/auth/authController.go
package auth

import (
	"log/slog"
	"net/http"

	"libraryapi/apperr"
	"libraryapi/model"
	authsvc "libraryapi/service/auth"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

type Controller struct {
	Svc authsvc.Service
	V   *validator.Validate
	Log *slog.Logger
}

// Register a new user (admin only)
// @Summary      Register user
// @Description  Register a new user with a username, password and role set
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        payload  body  model.RegisterReq  true  "Register payload"
// @Success      201  {object}  map[string]any
// @Failure      400  {object}  map[string]any
// @Failure      409  {object}  map[string]any "username already taken"
// @Failure      500  {object}  map[string]any
// @Security     BearerAuth
// @Router       /auth/register [post]
func (ct *Controller) Register(c echo.Context) error {
	var req model.RegisterReq

	if err := c.Bind(&req); err != nil {
		ct.Log.Warn("bind failed", "path", c.Path(), "err", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if err := ct.V.Struct(req); err != nil {
		ct.Log.Warn("validation failed", "path", c.Path(), "err", err)
		return echo.NewHTTPError(http.StatusBadRequest, "validation error")
	}

	u, err := ct.Svc.Register(c.Request().Context(), req)
	if err != nil {
		switch apperr.Code(err) {
		case apperr.ErrConflict:
			return echo.NewHTTPError(http.StatusConflict, "username already taken")
		case apperr.ErrValidation:
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		default:
			rid := c.Response().Header().Get(echo.HeaderXRequestID)
			ct.Log.Error("register failed",
				"err", err,
				"req_id", rid,
				"path", c.Path(),
				"method", c.Request().Method,
			)
			return echo.NewHTTPError(http.StatusInternalServerError, "register failed")
		}
	}

	return c.JSON(http.StatusCreated, echo.Map{
		"message": "registered",
		"user":    u,
	})
}

// Login
// @Summary      Login
// @Description  Login with username + password, returns a bearer token
// @Tags         auth
// @Accept       json
// @Produce      plain
// @Param        payload  body  model.LoginReq  true  "Login payload"
// @Success      200  {string}  string "token"
// @Failure      400  {object}  map[string]any
// @Failure      401  {object}  map[string]any "bad credentials"
// @Failure      403  {object}  map[string]any "account expired"
// @Failure      404  {object}  map[string]any "unknown user"
// @Failure      423  {object}  map[string]any "account disabled"
// @Router       /auth/login [post]
func (ct *Controller) Login(c echo.Context) error {
	var req model.LoginReq

	if err := c.Bind(&req); err != nil {
		ct.Log.Warn("bind failed", "path", c.Path(), "err", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if err := ct.V.Struct(req); err != nil {
		ct.Log.Warn("validation failed", "path", c.Path(), "err", err)
		return echo.NewHTTPError(http.StatusBadRequest, "validation error")
	}

	token, err := ct.Svc.Verify(c.Request().Context(), req)
	if err != nil {
		switch apperr.Code(err) {
		case apperr.ErrNotFound:
			return echo.NewHTTPError(http.StatusNotFound, "user not found")
		case apperr.ErrAuthentication:
			return echo.NewHTTPError(http.StatusUnauthorized, "invalid username or password")
		case apperr.ErrLocked:
			return echo.NewHTTPError(http.StatusLocked, "account is disabled")
		case apperr.ErrExpired:
			return echo.NewHTTPError(http.StatusForbidden, "account is expired")
		default:
			rid := c.Response().Header().Get(echo.HeaderXRequestID)
			ct.Log.Error("login failed",
				"err", err,
				"req_id", rid,
				"path", c.Path(),
				"method", c.Request().Method,
			)
			return echo.NewHTTPError(http.StatusInternalServerError, "login failed")
		}
	}

	return c.String(http.StatusOK, token)
}

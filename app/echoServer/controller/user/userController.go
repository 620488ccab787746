// app/echoServer/controller/user/userController.go
package user

import (
	"log/slog"
	"net/http"
	"strconv"

	"libraryapi/apperr"
	"libraryapi/app/echoServer/authctx"
	usersvc "libraryapi/service/user"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

type Controller struct {
	Svc usersvc.Service
	V   *validator.Validate
	Log *slog.Logger
}

type passwordReq struct {
	Password string `json:"password"`
}

// GET /users (admin), paginated, username ascending
func (ct *Controller) List(c echo.Context) error {
	page, size, err := pageQuery(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid pagination parameters")
	}

	users, total, err := ct.Svc.List(c.Request().Context(), size, page*size)
	if err != nil {
		ct.Log.Error("user list error", "err", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}
	if len(users) == 0 {
		return c.NoContent(http.StatusNoContent)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"content":        users,
		"page":           page,
		"size":           size,
		"total_elements": total,
	})
}

// GET /users/search?name= (admin)
func (ct *Controller) Search(c echo.Context) error {
	page, size, err := pageQuery(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid pagination parameters")
	}

	users, total, err := ct.Svc.Search(c.Request().Context(), c.QueryParam("name"), size, page*size)
	if err != nil {
		if apperr.Is(err, apperr.ErrValidation) {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		ct.Log.Error("user search error", "err", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}
	if len(users) == 0 {
		return c.NoContent(http.StatusNoContent)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"content":        users,
		"page":           page,
		"size":           size,
		"total_elements": total,
	})
}

// GET /users/user?id=|username= (self or admin)
func (ct *Controller) Get(c echo.Context) error {
	idStr := c.QueryParam("id")
	username := c.QueryParam("username")

	if idStr == "" && username == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "either 'id' or 'username' parameter must be provided")
	}

	if idStr != "" {
		id, err := strconv.ParseInt(idStr, 10, 64)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
		}
		u, err := ct.Svc.ByID(c.Request().Context(), id)
		if err != nil {
			return ct.mapUserErr(c, err)
		}
		return c.JSON(http.StatusOK, u)
	}

	u, err := ct.Svc.ByUsername(c.Request().Context(), username)
	if err != nil {
		return ct.mapUserErr(c, err)
	}
	return c.JSON(http.StatusOK, u)
}

// GET /users/user/current (any authenticated caller)
func (ct *Controller) Current(c echo.Context) error {
	ident := authctx.User(c)
	if ident == nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	return c.JSON(http.StatusOK, ident)
}

// PUT /users/:id/updateName?username= (self or admin)
func (ct *Controller) UpdateName(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	username := c.QueryParam("username")
	if username == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "username parameter must be provided")
	}

	u, err := ct.Svc.Rename(c.Request().Context(), id, username)
	if err != nil {
		switch apperr.Code(err) {
		case apperr.ErrConflict:
			return echo.NewHTTPError(http.StatusConflict, "username already exists")
		case apperr.ErrValidation:
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		default:
			return ct.mapUserErr(c, err)
		}
	}
	return c.JSON(http.StatusOK, u)
}

// PATCH /users/:id/password (self or admin)
func (ct *Controller) UpdatePassword(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var req passwordReq
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	if err := ct.Svc.ChangePassword(c.Request().Context(), id, req.Password); err != nil {
		if apperr.Is(err, apperr.ErrValidation) {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		return ct.mapUserErr(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "password updated"})
}

// PATCH /users/:id/disable (admin)
func (ct *Controller) Disable(c echo.Context) error {
	return ct.setEnabled(c, false)
}

// PATCH /users/:id/enable (admin)
func (ct *Controller) Enable(c echo.Context) error {
	return ct.setEnabled(c, true)
}

func (ct *Controller) setEnabled(c echo.Context, enabled bool) error {
	id, err := pathID(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	u, err := ct.Svc.SetEnabled(c.Request().Context(), id, enabled)
	if err != nil {
		return ct.mapUserErr(c, err)
	}
	return c.JSON(http.StatusOK, u)
}

// PATCH /users/:id/expire (admin)
func (ct *Controller) Expire(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	u, err := ct.Svc.Expire(c.Request().Context(), id)
	if err != nil {
		return ct.mapUserErr(c, err)
	}
	return c.JSON(http.StatusOK, u)
}

// DELETE /users/:id (admin)
func (ct *Controller) Delete(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	if err := ct.Svc.Delete(c.Request().Context(), id); err != nil {
		return ct.mapUserErr(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (ct *Controller) mapUserErr(c echo.Context, err error) error {
	if apperr.Is(err, apperr.ErrNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, "user not found")
	}
	rid := c.Response().Header().Get(echo.HeaderXRequestID)
	ct.Log.Error("user operation failed",
		"err", err,
		"req_id", rid,
		"path", c.Path(),
		"method", c.Request().Method,
	)
	return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
}

func pathID(c echo.Context) (int64, error) {
	return strconv.ParseInt(c.Param("id"), 10, 64)
}

func pageQuery(c echo.Context) (page, size int, err error) {
	page, size = 0, 10
	if v := c.QueryParam("page"); v != "" {
		if page, err = strconv.Atoi(v); err != nil || page < 0 {
			return 0, 0, echo.ErrBadRequest
		}
	}
	if v := c.QueryParam("size"); v != "" {
		if size, err = strconv.Atoi(v); err != nil || size <= 0 {
			return 0, 0, echo.ErrBadRequest
		}
	}
	return page, size, nil
}

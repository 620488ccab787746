// app/echoServer/authctx/identity.go
//
// Request-scoped identity helpers. The guard stores the resolved user here;
// controllers read it back instead of consulting any global state.
package authctx

import (
	"libraryapi/model"

	"github.com/labstack/echo/v4"
)

const key = "identity"

// Set attaches the authenticated identity to the request scope.
func Set(c echo.Context, u *model.User) {
	c.Set(key, u)
}

// User returns the authenticated identity, or nil for anonymous requests.
func User(c echo.Context) *model.User {
	u, _ := c.Get(key).(*model.User)
	return u
}

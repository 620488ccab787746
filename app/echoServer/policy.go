// app/echoServer/policy.go
//
// The access policy is a plain ordered table evaluated top to bottom, first
// match wins. A rule matches on (HTTP method, registered route pattern).
// Routes with no matching rule require an authenticated identity.
package echoServer

import (
	"net/http"
	"strconv"

	"libraryapi/model"
)

type access int

const (
	accessPublic access = iota
	accessAuthenticated
	accessAdmin
	accessSelfOrAdmin
)

// decision is the policy verdict for one request.
type decision int

const (
	decisionAllow decision = iota
	decisionUnauthorized
	decisionForbidden
)

type rule struct {
	method string
	path   string
	access access

	// owns decides the "self" half of a self-or-admin rule. Only consulted
	// when the caller is not an admin.
	owns func(c paramSource, u *model.User) bool
}

// paramSource is the slice of echo.Context the ownership checks read.
type paramSource interface {
	Param(name string) string
	QueryParam(name string) string
}

var rules = []rule{
	{http.MethodPost, "/auth/login", accessPublic, nil},
	{http.MethodGet, "/health", accessPublic, nil},
	{http.MethodGet, "/swagger/*", accessPublic, nil},

	{http.MethodPost, "/auth/register", accessAdmin, nil},

	{http.MethodGet, "/users/user", accessSelfOrAdmin, ownsQueriedUser},
	{http.MethodGet, "/users/user/current", accessAuthenticated, nil},
	{http.MethodGet, "/users/search", accessAdmin, nil},
	{http.MethodGet, "/users", accessAdmin, nil},
	{http.MethodPut, "/users/:id/updateName", accessSelfOrAdmin, ownsPathID("id")},
	{http.MethodPatch, "/users/:id/password", accessSelfOrAdmin, ownsPathID("id")},
	{http.MethodPatch, "/users/:id/disable", accessAdmin, nil},
	{http.MethodPatch, "/users/:id/enable", accessAdmin, nil},
	{http.MethodPatch, "/users/:id/expire", accessAdmin, nil},
	{http.MethodDelete, "/users/:id", accessAdmin, nil},

	{http.MethodGet, "/api/books/borrowed", accessAdmin, nil},
	{http.MethodGet, "/api/books/borrowed/:userId", accessSelfOrAdmin, ownsPathID("userId")},
	{http.MethodPost, "/api/books", accessAdmin, nil},
	{http.MethodPut, "/api/books/:id", accessAdmin, nil},
	{http.MethodDelete, "/api/books/:id", accessAdmin, nil},
}

// Evaluate applies the rule table to (method, route pattern, identity).
// A nil identity on a non-public route is unauthorized; a present identity
// that fails the role or ownership check is forbidden.
func Evaluate(method, routePath string, params paramSource, u *model.User) decision {
	matched := rule{access: accessAuthenticated}
	for _, r := range rules {
		if r.method == method && r.path == routePath {
			matched = r
			break
		}
	}

	if matched.access == accessPublic {
		return decisionAllow
	}
	if u == nil {
		return decisionUnauthorized
	}

	switch matched.access {
	case accessAuthenticated:
		return decisionAllow
	case accessAdmin:
		if u.IsAdmin() {
			return decisionAllow
		}
		return decisionForbidden
	case accessSelfOrAdmin:
		if u.IsAdmin() {
			return decisionAllow
		}
		if matched.owns != nil && matched.owns(params, u) {
			return decisionAllow
		}
		return decisionForbidden
	}
	return decisionForbidden
}

// ownsPathID matches the caller's id against an int64 path parameter.
func ownsPathID(name string) func(paramSource, *model.User) bool {
	return func(c paramSource, u *model.User) bool {
		id, err := strconv.ParseInt(c.Param(name), 10, 64)
		if err != nil {
			return false
		}
		return id == u.ID
	}
}

// ownsQueriedUser covers GET /users/user, whose subject arrives as an id or
// username query parameter. When neither is present the request is let
// through so the handler can answer 400.
func ownsQueriedUser(c paramSource, u *model.User) bool {
	if idStr := c.QueryParam("id"); idStr != "" {
		id, err := strconv.ParseInt(idStr, 10, 64)
		return err == nil && id == u.ID
	}
	if username := c.QueryParam("username"); username != "" {
		return username == u.Username
	}
	return true
}

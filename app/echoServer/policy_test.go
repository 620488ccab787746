package echoServer

import (
	"net/http"
	"testing"

	"libraryapi/model"
)

type fakeParams struct {
	params map[string]string
	query  map[string]string
}

func (f fakeParams) Param(name string) string      { return f.params[name] }
func (f fakeParams) QueryParam(name string) string { return f.query[name] }

var (
	admin = &model.User{ID: 1, Username: "admin", Roles: []model.Role{model.RoleAdmin, model.RoleUser}}
	alice = &model.User{ID: 2, Username: "alice", Roles: []model.Role{model.RoleUser}}
)

func TestEvaluate(t *testing.T) {
	cases := []struct {
		name    string
		method  string
		path    string
		params  fakeParams
		user    *model.User
		want    decision
	}{
		{"login is public", http.MethodPost, "/auth/login", fakeParams{}, nil, decisionAllow},
		{"health is public", http.MethodGet, "/health", fakeParams{}, nil, decisionAllow},
		{"login ignores identity", http.MethodPost, "/auth/login", fakeParams{}, alice, decisionAllow},

		{"register needs admin", http.MethodPost, "/auth/register", fakeParams{}, admin, decisionAllow},
		{"register rejects user", http.MethodPost, "/auth/register", fakeParams{}, alice, decisionForbidden},
		{"register rejects anonymous", http.MethodPost, "/auth/register", fakeParams{}, nil, decisionUnauthorized},

		{"unlisted route needs identity", http.MethodGet, "/api/books", fakeParams{}, nil, decisionUnauthorized},
		{"unlisted route allows any identity", http.MethodGet, "/api/books", fakeParams{}, alice, decisionAllow},

		{"list users is admin only", http.MethodGet, "/users", fakeParams{}, alice, decisionForbidden},
		{"search users is admin only", http.MethodGet, "/users/search", fakeParams{}, alice, decisionForbidden},

		{"current user is any identity", http.MethodGet, "/users/user/current", fakeParams{}, alice, decisionAllow},

		{"lookup self by id", http.MethodGet, "/users/user",
			fakeParams{query: map[string]string{"id": "2"}}, alice, decisionAllow},
		{"lookup other by id", http.MethodGet, "/users/user",
			fakeParams{query: map[string]string{"id": "1"}}, alice, decisionForbidden},
		{"lookup self by username", http.MethodGet, "/users/user",
			fakeParams{query: map[string]string{"username": "alice"}}, alice, decisionAllow},
		{"lookup other by username", http.MethodGet, "/users/user",
			fakeParams{query: map[string]string{"username": "admin"}}, alice, decisionForbidden},
		{"lookup anyone as admin", http.MethodGet, "/users/user",
			fakeParams{query: map[string]string{"id": "2"}}, admin, decisionAllow},
		{"lookup without subject reaches handler", http.MethodGet, "/users/user",
			fakeParams{}, alice, decisionAllow},

		{"rename self", http.MethodPut, "/users/:id/updateName",
			fakeParams{params: map[string]string{"id": "2"}}, alice, decisionAllow},
		{"rename other", http.MethodPut, "/users/:id/updateName",
			fakeParams{params: map[string]string{"id": "1"}}, alice, decisionForbidden},
		{"rename other as admin", http.MethodPut, "/users/:id/updateName",
			fakeParams{params: map[string]string{"id": "2"}}, admin, decisionAllow},
		{"rename with junk id", http.MethodPut, "/users/:id/updateName",
			fakeParams{params: map[string]string{"id": "abc"}}, alice, decisionForbidden},

		{"password self", http.MethodPatch, "/users/:id/password",
			fakeParams{params: map[string]string{"id": "2"}}, alice, decisionAllow},
		{"password other", http.MethodPatch, "/users/:id/password",
			fakeParams{params: map[string]string{"id": "1"}}, alice, decisionForbidden},

		{"disable is admin only", http.MethodPatch, "/users/:id/disable",
			fakeParams{params: map[string]string{"id": "2"}}, alice, decisionForbidden},
		{"delete user is admin only", http.MethodDelete, "/users/:id",
			fakeParams{params: map[string]string{"id": "2"}}, alice, decisionForbidden},

		{"all borrowed is admin only", http.MethodGet, "/api/books/borrowed", fakeParams{}, alice, decisionForbidden},
		{"own borrowed list", http.MethodGet, "/api/books/borrowed/:userId",
			fakeParams{params: map[string]string{"userId": "2"}}, alice, decisionAllow},
		{"other's borrowed list", http.MethodGet, "/api/books/borrowed/:userId",
			fakeParams{params: map[string]string{"userId": "1"}}, alice, decisionForbidden},

		{"create book is admin only", http.MethodPost, "/api/books", fakeParams{}, alice, decisionForbidden},
		{"update book is admin only", http.MethodPut, "/api/books/:id",
			fakeParams{params: map[string]string{"id": "3"}}, alice, decisionForbidden},

		{"borrow needs only an identity", http.MethodPost, "/api/books/:id/borrow",
			fakeParams{params: map[string]string{"id": "3"}}, alice, decisionAllow},
		{"borrow rejects anonymous", http.MethodPost, "/api/books/:id/borrow",
			fakeParams{params: map[string]string{"id": "3"}}, nil, decisionUnauthorized},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Evaluate(tc.method, tc.path, tc.params, tc.user)
			if got != tc.want {
				t.Errorf("Evaluate(%s %s) = %v, want %v", tc.method, tc.path, got, tc.want)
			}
		})
	}
}

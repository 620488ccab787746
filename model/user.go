package model

// Role is a user authority. Every user holds at least one.
type Role string

const (
	RoleUser  Role = "USER"
	RoleAdmin Role = "ADMIN"
)

func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAdmin
}

type User struct {
	ID           int64  `json:"id"`
	Username     string `json:"username"`
	PasswordHash string `json:"-"`
	Enabled      bool   `json:"enabled"`
	Expired      bool   `json:"expired"`
	Roles        []Role `json:"roles"`
}

// HasRole reports whether the user holds the given role.
func (u *User) HasRole(r Role) bool {
	for _, have := range u.Roles {
		if have == r {
			return true
		}
	}
	return false
}

func (u *User) IsAdmin() bool { return u.HasRole(RoleAdmin) }

// RegisterReq is the admin-only registration payload
// swagger:model RegisterReq
type RegisterReq struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required,min=6"`
	Roles    []Role `json:"roles" validate:"required,min=1"`
}

// LoginReq is the login payload
// swagger:model LoginReq
type LoginReq struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

package model

import "time"

// Role is the closed set of actor kinds the API recognizes.
type Role string

const (
	RolePatron    Role = "patron"
	RoleLibrarian Role = "librarian"
	RoleAdmin     Role = "admin"
)

// CanManageCatalog reports whether the role may mutate catalog entities.
func (r Role) CanManageCatalog() bool { return r == RoleLibrarian || r == RoleAdmin }

// CanResolveLending reports whether the role may accept/cancel extension
// requests and close orders.
func (r Role) CanResolveLending() bool { return r == RoleLibrarian || r == RoleAdmin }

// CanSeeForeignOrders reports whether the role may read orders and
// extension requests belonging to other users.
func (r Role) CanSeeForeignOrders() bool { return r == RoleLibrarian || r == RoleAdmin }

type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	FirstName    string    `json:"first_name"`
	LastName     string    `json:"last_name"`
	Email        string    `json:"email"`
	Phone        string    `json:"phone"`
	PasswordHash string    `json:"-"`
	IsLibrarian  bool      `json:"is_librarian"`
	IsSuperuser  bool      `json:"is_superuser"`
	IsActive     bool      `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
}

// Role folds the boolean flags into the closed role set.
func (u *User) Role() Role {
	switch {
	case u.IsSuperuser:
		return RoleAdmin
	case u.IsLibrarian:
		return RoleLibrarian
	default:
		return RolePatron
	}
}

// Actor identifies the authenticated caller of a workflow operation.
// Services take it explicitly and never reach into request context.
type Actor struct {
	ID    int64
	Email string
	Role  Role
}

// RegisterReq represents user registration payload
// swagger:model RegisterReq
type RegisterReq struct {
	Username  string `json:"username" validate:"required"`
	FirstName string `json:"first_name" validate:"required"`
	LastName  string `json:"last_name" validate:"required"`
	Email     string `json:"email" validate:"required,email"`
	Phone     string `json:"phone" validate:"required,e164"`
	Password  string `json:"password" validate:"required,min=6"`
}

// LoginReq represents login payload
// swagger:model LoginReq
type LoginReq struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// UpdateUserReq is a partial profile update.
type UpdateUserReq struct {
	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`
	Phone     *string `json:"phone" validate:"omitempty,e164"`
	Password  *string `json:"password" validate:"omitempty,min=6"`
}

package model

import "time"

type Role string

const (
	RoleNormal    Role = "normal"
	RoleLibrarian Role = "librarian"
)

func (r Role) Valid() bool { return r == RoleNormal || r == RoleLibrarian }

type Plan string

const (
	PlanNone    Plan = "none"
	PlanNormal  Plan = "normal"
	PlanPremium Plan = "premium"
)

func (p Plan) Valid() bool { return p == PlanNone || p == PlanNormal || p == PlanPremium }

type User struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	Phone        string    `json:"phone"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         Role      `json:"role"`
	Plan         Plan      `json:"plan"`
	CreatedAt    time.Time `json:"created_at"`
}

// RegisterReq represents user registration payload
// swagger:model RegisterReq
type RegisterReq struct {
	Name     string `json:"name" validate:"required"`
	Phone    string `json:"phone" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	Plan     Plan   `json:"plan"`
}

// LoginReq represents login payload
// swagger:model LoginReq
type LoginReq struct {
	Phone    string `json:"phone" validate:"required"`
	Password string `json:"password" validate:"required"`
}

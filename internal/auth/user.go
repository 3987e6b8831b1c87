package auth

import "time"

const (
	RoleBuyer  = "buyer"
	RoleSeller = "seller"
)

type User struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

func ValidRole(r string) bool { return r == RoleBuyer || r == RoleSeller }

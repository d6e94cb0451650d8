package auth

import (
	"time"

	"github.com/gymops/gymops/internal/roles"
)

// User represents an authenticated console account.
type User struct {
	ID           int64
	Email        string
	PasswordHash string
	// Role is stored as read; values outside the enumeration get no access.
	Role      roles.Role
	BranchID  *int64
	IsActive  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

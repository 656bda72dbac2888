package models

// User represents a user account in the system.
type User struct {
	ID           int64  `json:"id"`
	Email        string `json:"email"`
	PasswordHash string `json:"-"` // Never expose this to the client
	IsActive     bool   `json:"is_active"`
	Items        []Item `json:"items"`
}

// UserUpdate carries the fields of a partial user update. A nil field means
// "leave unchanged".
type UserUpdate struct {
	Email    *string `json:"email" validate:"omitempty,email"`
	Password *string `json:"password" validate:"omitempty,min=1"`
	IsActive *bool   `json:"is_active"`
}

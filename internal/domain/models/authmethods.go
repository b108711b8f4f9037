// internal/domain/models/authmethods.go
package models

// Auth methods for staff accounts. Password accounts carry a bcrypt
// hash; google accounts sign in through OAuth and have no hash.
const (
	AuthPassword = "password"
	AuthGoogle   = "google"
)

// IsValidAuthMethod checks if a value is a supported auth method.
func IsValidAuthMethod(value string) bool {
	return value == AuthPassword || value == AuthGoogle
}

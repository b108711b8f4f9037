// internal/domain/models/user.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User represents staff accounts: admins, managers, call-center agents,
// and grooming drivers.
type User struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	FullName   string             `bson:"full_name" json:"full_name"`
	FullNameCI string             `bson:"full_name_ci" json:"full_name_ci"` // lowercase, diacritics-stripped
	Email      string             `bson:"email" json:"email"`
	AuthMethod string             `bson:"auth_method,omitempty" json:"auth_method,omitempty"` // password | google

	// PasswordHash is a bcrypt hash; empty for Google-only accounts.
	PasswordHash string `bson:"password_hash,omitempty" json:"-"`

	Role   string `bson:"role" json:"role"` // superadmin | admin | manager | agent | driver
	Status string `bson:"status,omitempty" json:"status,omitempty"`

	// AgentNumber links an agent account to its telephony line.
	AgentNumber string `bson:"agent_number,omitempty" json:"agent_number,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

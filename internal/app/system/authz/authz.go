// internal/app/system/authz/authz.go
package authz

import (
	"net/http"
	"strings"

	"github.com/dalemusser/groomhub/internal/app/system/auth"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// UserCtx returns the user's role (lowercased), name, Mongo ObjectID, and a found flag.
// If no user is present in context or the user ID is malformed, it returns
// "visitor", "", NilObjectID, false. This ensures callers can trust that
// ok=true means a valid, authenticated user with a valid ObjectID.
func UserCtx(r *http.Request) (role string, name string, userID primitive.ObjectID, ok bool) {
	user, ok := auth.CurrentUser(r)
	if !ok {
		return "visitor", "", primitive.NilObjectID, false
	}
	userID, err := primitive.ObjectIDFromHex(user.ID)
	if err != nil {
		// Malformed user ID in session - fail closed.
		return "visitor", "", primitive.NilObjectID, false
	}
	return strings.ToLower(user.Role), user.Name, userID, true
}

// IsSuperAdmin reports whether the current request's user is a superadmin.
func IsSuperAdmin(r *http.Request) bool {
	role, _, _, ok := UserCtx(r)
	return ok && role == "superadmin"
}

// IsAdmin reports whether the current request's user is an admin.
// Superadmins are also considered admins for permission purposes.
func IsAdmin(r *http.Request) bool {
	role, _, _, ok := UserCtx(r)
	return ok && (role == "admin" || role == "superadmin")
}

// IsManager reports whether the current request's user is a manager.
func IsManager(r *http.Request) bool {
	role, _, _, ok := UserCtx(r)
	return ok && role == "manager"
}

// IsAgent reports whether the current request's user is a call-center agent.
func IsAgent(r *http.Request) bool {
	role, _, _, ok := UserCtx(r)
	return ok && role == "agent"
}

// IsDriver reports whether the current request's user is a grooming driver.
func IsDriver(r *http.Request) bool {
	role, _, _, ok := UserCtx(r)
	return ok && role == "driver"
}

// CanViewAllRequests reports whether the user may see every service
// request rather than only their own assignments.
func CanViewAllRequests(r *http.Request) bool {
	role, _, _, ok := UserCtx(r)
	return ok && (role == "admin" || role == "superadmin" || role == "manager")
}

// AgentNumber returns the telephony line linked to the current user,
// or "" when the account has none.
func AgentNumber(r *http.Request) string {
	user, ok := auth.CurrentUser(r)
	if !ok {
		return ""
	}
	return user.AgentNumber
}

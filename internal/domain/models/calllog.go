// internal/domain/models/calllog.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Call directions as recorded by the telephony provider.
const (
	CallIncoming = "incoming"
	CallOutgoing = "outgoing"
)

// Call statuses that count as a successful connection.
const (
	CallStatusAnswer    = "ANSWER"
	CallStatusCompleted = "Completed"
)

// CallSucceeded reports whether a call status counts as successful.
func CallSucceeded(status string) bool {
	return status == CallStatusAnswer || status == CallStatusCompleted
}

// CallLog is one call record synced from the telephony provider.
// AgentNumber may be empty when the provider could not attribute the
// call to a line; those calls are grouped under a "No Agent" bucket.
type CallLog struct {
	ID primitive.ObjectID `bson:"_id,omitempty" json:"id"`

	AgentNumber    string `bson:"agent_number,omitempty" json:"agent_number,omitempty"`
	CustomerNumber string `bson:"customer_number" json:"customer_number"`
	CustomerName   string `bson:"customer_name,omitempty" json:"customer_name,omitempty"`

	Direction string `bson:"direction" json:"direction"` // incoming | outgoing
	Status    string `bson:"status" json:"status"`

	StartTime       time.Time `bson:"start_time" json:"start_time"`
	DurationSeconds int       `bson:"duration_seconds" json:"duration_seconds"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}

// Agent maps a telephony line number to a display name for the call
// center dashboard.
type Agent struct {
	ID     primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Number string             `bson:"number" json:"number"`
	Name   string             `bson:"name" json:"name"`
	Active bool               `bson:"active" json:"active"`
}

// internal/domain/models/servicerequest.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Service request statuses. Transitions are validated in the dispatch
// feature; Completed stamps CompletedDate.
const (
	StatusPendingAssignment = "Pending Assignment"
	StatusAwaitingSchedule  = "Awaiting Scheduling"
	StatusScheduled         = "Scheduled"
	StatusCompleted         = "Completed"
	StatusCancelled         = "Cancelled"
)

// ValidStatuses lists the statuses a service request may be set to.
var ValidStatuses = []string{
	StatusPendingAssignment,
	StatusAwaitingSchedule,
	StatusScheduled,
	StatusCompleted,
	StatusCancelled,
}

// IsValidStatus reports whether s is one of the allowed statuses.
func IsValidStatus(s string) bool {
	for _, v := range ValidStatuses {
		if s == v {
			return true
		}
	}
	return false
}

// ServiceRequest is a scheduled grooming visit. Service items, pet
// photos, and the driver's suggestion are embedded child documents.
type ServiceRequest struct {
	ID primitive.ObjectID `bson:"_id,omitempty" json:"id"`

	CustomerID   primitive.ObjectID `bson:"customer_id" json:"customer_id"`
	CustomerName string             `bson:"customer_name" json:"customer_name"`

	DriverID   *primitive.ObjectID `bson:"driver_id,omitempty" json:"driver_id,omitempty"`
	DriverName string              `bson:"driver_name,omitempty" json:"driver_name,omitempty"`

	Status        string     `bson:"status" json:"status"`
	ScheduledDate time.Time  `bson:"scheduled_date" json:"scheduled_date"`
	CompletedDate *time.Time `bson:"completed_date,omitempty" json:"completed_date,omitempty"`

	Territory   string  `bson:"territory,omitempty" json:"territory,omitempty"`
	TotalAmount float64 `bson:"total_amount" json:"total_amount"`

	ServiceItems []ServiceItem `bson:"service_items,omitempty" json:"service_items,omitempty"`
	PetPhotos    []PetPhoto    `bson:"pet_photos,omitempty" json:"pet_photos,omitempty"`

	DriverSuggestion *DriverSuggestion `bson:"driver_suggestion,omitempty" json:"driver_suggestion,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// ServiceItem is one billed line on a request.
type ServiceItem struct {
	ServiceName string  `bson:"service_name" json:"service_name"`
	PetName     string  `bson:"pet_name,omitempty" json:"pet_name,omitempty"`
	Amount      float64 `bson:"amount" json:"amount"`
}

// PetPhoto is a photo taken during a visit. ID lets individual photos
// be deleted without positional updates. StoragePath keeps the backing
// object reachable for cleanup when the row is removed.
type PetPhoto struct {
	ID          string    `bson:"id" json:"id"`
	PetName     string    `bson:"pet_name,omitempty" json:"pet_name,omitempty"`
	PhotoURL    string    `bson:"photo_url" json:"photo_url"`
	StoragePath string    `bson:"storage_path,omitempty" json:"storage_path,omitempty"`
	UploadedAt  time.Time `bson:"uploaded_at" json:"uploaded_at"`
}

// DriverSuggestion holds the driver's notes for a visit. Draft marks an
// in-progress save that has not been submitted yet.
type DriverSuggestion struct {
	Notes     string                   `bson:"notes,omitempty" json:"notes,omitempty"`
	Pets      map[string]PetSuggestion `bson:"pets,omitempty" json:"pets,omitempty"`
	Draft     bool                     `bson:"draft" json:"draft"`
	UpdatedAt time.Time                `bson:"updated_at" json:"updated_at"`
}

// PetSuggestion is the per-pet portion of a driver suggestion.
type PetSuggestion struct {
	Condition  string `bson:"condition,omitempty" json:"condition,omitempty"`
	Suggestion string `bson:"suggestion,omitempty" json:"suggestion,omitempty"`
}

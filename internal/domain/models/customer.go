// internal/domain/models/customer.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Customer is a grooming customer (pet owner) with contact, lead, and
// location details. Pets are embedded; a customer rarely has more than
// a handful.
type Customer struct {
	ID     primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name   string             `bson:"name" json:"name"`
	NameCI string             `bson:"name_ci" json:"name_ci"` // lowercase, diacritics-stripped
	Phone  string             `bson:"phone,omitempty" json:"phone,omitempty"`
	Email  string             `bson:"email,omitempty" json:"email,omitempty"`

	LeadStatus string `bson:"lead_status,omitempty" json:"lead_status,omitempty"` // Lead | Open | Converted | Lost
	Territory  string `bson:"territory,omitempty" json:"territory,omitempty"`

	Address        string `bson:"address,omitempty" json:"address,omitempty"`
	CurrentParking string `bson:"current_parking,omitempty" json:"current_parking,omitempty"`

	// Coordinates may be absent; GoogleMapsURL is the fallback source.
	Latitude      *float64 `bson:"latitude,omitempty" json:"latitude,omitempty"`
	Longitude     *float64 `bson:"longitude,omitempty" json:"longitude,omitempty"`
	GoogleMapsURL string   `bson:"google_maps_url,omitempty" json:"google_maps_url,omitempty"`

	Pets []Pet `bson:"pets,omitempty" json:"pets,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// Pet is a customer's animal.
type Pet struct {
	Name    string `bson:"name" json:"name"`
	Species string `bson:"species,omitempty" json:"species,omitempty"`
	Breed   string `bson:"breed,omitempty" json:"breed,omitempty"`
	Notes   string `bson:"notes,omitempty" json:"notes,omitempty"`
}

// HasCoordinates reports whether both latitude and longitude are stored.
func (c *Customer) HasCoordinates() bool {
	return c.Latitude != nil && c.Longitude != nil
}

// internal/app/features/groomingentry/types.go
package groomingentry

import (
	"github.com/dalemusser/groomhub/internal/app/system/viewdata"
)

// petVM is one pet's row on an entry form, pre-filled from any saved
// suggestion.
type petVM struct {
	Name       string
	Breed      string
	Condition  string
	Suggestion string
}

// serviceItemVM is one billed line on a request.
type serviceItemVM struct {
	ServiceName string
	PetName     string
	Amount      string
}

// photoVM is one pet photo row.
type photoVM struct {
	ID         string
	PetName    string
	URL        string
	UploadedAt string
}

// photosVM backs the photo fragment on its own so uploads can
// re-render just that region.
type photosVM struct {
	RequestID string
	Photos    []photoVM
	Failures  []string
}

// entryVM is one service request's data-entry card.
type entryVM struct {
	ID             string
	CustomerName   string
	CurrentParking string
	Status         string
	ScheduledDate  string
	Notes          string
	Draft          bool
	Saved          bool
	Pets           []petVM
	ServiceItems   []serviceItemVM
	Photos         photosVM
}

// pageData is the grooming entry page view model.
type pageData struct {
	viewdata.BaseVM
	DateRaw string
	Entries []entryVM
}

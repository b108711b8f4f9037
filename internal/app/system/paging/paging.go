// internal/app/system/paging/paging.go
package paging

import (
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
)

// PageSize is the number of rows shown in paged call tables.
// Kept as an int because call sites add one and cast to int64 for
// Mongo Find().SetLimit().
const PageSize = 50

// LimitPlusOne returns PageSize+1 as int64 for look-ahead pagination
// (fetch one extra document to detect hasNext).
func LimitPlusOne() int64 { return int64(PageSize + 1) }

// Result holds the output of TrimPage for keyset pagination.
type Result struct {
	HasPrev bool
	HasNext bool
}

// TrimPage trims a fetched slice for keyset pagination. Call this
// after fetching PageSize+1 rows. It modifies the slice in place and
// returns pagination indicators.
//
// When going backwards (before != ""):
//   - If len > PageSize, trim the first element (an earlier page exists)
//   - HasNext is always true (we came from somewhere)
//
// When going forwards or on the first page:
//   - If len > PageSize, trim to PageSize (a next page exists)
//   - HasPrev is true only if after != ""
func TrimPage[T any](rows *[]T, before, after string) Result {
	orig := len(*rows)
	var hasPrev, hasNext bool

	if before != "" {
		if orig > PageSize {
			*rows = (*rows)[1:]
			hasPrev = true
		}
		hasNext = true
	} else {
		if orig > PageSize {
			*rows = (*rows)[:PageSize]
			hasNext = true
		}
		hasPrev = after != ""
	}

	return Result{HasPrev: hasPrev, HasNext: hasNext}
}

// Direction indicates the pagination direction.
type Direction int

const (
	Forward  Direction = iota // default: sort ascending, cursor moves forward
	Backward                  // sort descending, cursor moves back
)

// KeysetConfig holds the decoded cursor and direction for one page fetch.
type KeysetConfig struct {
	Direction Direction
	SortOrder int // 1 for ascending, -1 for descending
	Cursor    *wafflemongo.Cursor
}

// ConfigureKeyset determines pagination direction and decodes the
// cursor. A "before" cursor wins when both are supplied.
func ConfigureKeyset(before, after string) KeysetConfig {
	cfg := KeysetConfig{
		Direction: Forward,
		SortOrder: 1,
	}

	if before != "" {
		cfg.Direction = Backward
		cfg.SortOrder = -1
		if c, ok := wafflemongo.DecodeCursor(before); ok {
			cfg.Cursor = &c
		}
	} else if after != "" {
		if c, ok := wafflemongo.DecodeCursor(after); ok {
			cfg.Cursor = &c
		}
	}

	return cfg
}

// Reverse reverses a slice in place. Use this after fetching results
// when paging backwards to restore the display order.
func Reverse[T any](rows []T) {
	for i, j := 0, len(rows)-1; i < j; i, j = i+1, j-1 {
		rows[i], rows[j] = rows[j], rows[i]
	}
}

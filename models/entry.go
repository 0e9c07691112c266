package models

import "time"

// EntryType is the kind of catalog entry. Only the two declared values are valid.
type EntryType string

const (
	EntryTypeMovie  EntryType = "Movie"
	EntryTypeTVShow EntryType = "TV Show"
)

// EntryTypes lists every valid EntryType in display order.
var EntryTypes = []EntryType{EntryTypeMovie, EntryTypeTVShow}

// Valid reports whether t is one of the declared entry types.
func (t EntryType) Valid() bool {
	for _, v := range EntryTypes {
		if t == v {
			return true
		}
	}
	return false
}

// Entry represents a row in the "entries" table.
// Fields map 1-to-1 with columns.
type Entry struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	Type      EntryType `json:"type"`
	Director  string    `json:"director"`
	Budget    float64   `json:"budget"`
	Location  string    `json:"location"`
	Duration  string    `json:"duration"`
	Year      int       `json:"year"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// CreateEntryParams holds every user-supplied field of a new entry. The id and
// timestamps are assigned by the store.
type CreateEntryParams struct {
	Title    string
	Type     EntryType
	Director string
	Budget   float64
	Location string
	Duration string
	Year     int
}

// UpdateEntryParams holds fields that can be updated. All fields are pointers
// so callers only set what needs changing; nil fields are left untouched.
type UpdateEntryParams struct {
	Title    *string
	Type     *EntryType
	Director *string
	Budget   *float64
	Location *string
	Duration *string
	Year     *int
}

// IsEmpty reports whether no field is set.
func (p UpdateEntryParams) IsEmpty() bool {
	return p.Title == nil && p.Type == nil && p.Director == nil && p.Budget == nil &&
		p.Location == nil && p.Duration == nil && p.Year == nil
}

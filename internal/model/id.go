package model

import (
	"time"

	"github.com/oklog/ulid/v2"
)

// NewID generates a new ULID string for use as a record identifier.
func NewID() string {
	return ulid.Make().String()
}

// IDTime returns the creation time encoded in a ULID, or the zero time when id
// is not a valid ULID.
func IDTime(id string) time.Time {
	u, err := ulid.ParseStrict(id)
	if err != nil {
		return time.Time{}
	}
	return ulid.Time(u.Time())
}

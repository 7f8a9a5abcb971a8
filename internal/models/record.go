package models

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"prospector/internal/utils"
)

// Location is the geo point attached to a crawled place.
type Location struct {
	Lat *float64 `json:"lat,omitempty"`
	Lng *float64 `json:"lng,omitempty"`
}

// RawRecord is one place as returned by the location-search crawler. Every
// field is optional and the same place may appear in several searches.
type RawRecord struct {
	Title            string    `json:"title"`
	CategoryName     string    `json:"categoryName"`
	Phone            string    `json:"phone"`
	PhoneUnformatted string    `json:"phoneUnformatted"`
	Address          string    `json:"address"`
	Street           string    `json:"street"`
	Neighborhood     string    `json:"neighborhood"`
	City             string    `json:"city"`
	State            string    `json:"state"`
	PostalCode       string    `json:"postalCode"`
	CountryCode      string    `json:"countryCode"`
	Website          string    `json:"website"`
	URL              string    `json:"url"`
	Location         *Location `json:"location,omitempty"`
}

// RawPhone returns the formatted phone, falling back to the unformatted one.
func (r RawRecord) RawPhone() string {
	if r.Phone != "" {
		return r.Phone
	}
	return r.PhoneUnformatted
}

// HasCoordinates reports whether at least one of lat/lng is present.
func (r RawRecord) HasCoordinates() bool {
	return r.Location != nil && (r.Location.Lat != nil || r.Location.Lng != nil)
}

// Key identifies the record by content (dispatch phone + title) so that it
// stays stable when the crawler returns places in a different order.
func (r RawRecord) Key() string {
	sum := sha256.Sum256([]byte(utils.ToDispatchForm(r.RawPhone()) + "|" + strings.TrimSpace(r.Title)))
	return hex.EncodeToString(sum[:16])
}

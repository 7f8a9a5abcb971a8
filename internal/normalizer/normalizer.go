// Package normalizer turns crawler records into contact drafts.
package normalizer

import (
	"net/url"
	"strconv"

	"prospector/internal/models"
	"prospector/internal/utils"
)

const (
	mapsSearchURL = "https://maps.google.com/?q="
	mapsRouteURL  = "https://www.google.com/maps/dir/?api=1&destination="
)

// Normalize maps every record with a usable phone to a draft, keeping input
// order. Records without a phone are dropped without error. Records are not
// merged even when they share a phone; the backend skips known phones.
func Normalize(records []models.RawRecord) []models.ContactDraft {
	drafts := make([]models.ContactDraft, 0, len(records))
	for _, r := range records {
		if d, ok := Draft(r); ok {
			drafts = append(drafts, d)
		}
	}
	return drafts
}

// Draft converts a single record. ok is false when the record has no phone
// digits in either phone field.
func Draft(r models.RawRecord) (models.ContactDraft, bool) {
	phone := utils.ToDispatchForm(r.RawPhone())
	if phone == "" {
		return models.ContactDraft{}, false
	}
	return models.ContactDraft{
		Name:           r.Title,
		Phone:          phone,
		Address:        r.Address,
		Category:       r.CategoryName,
		GoogleMapsLink: MapLink(r),
	}, true
}

// MapLink prefers the record's website, then a link to its coordinates,
// then a search for its address. It is empty when none of those exist.
func MapLink(r models.RawRecord) string {
	switch {
	case r.Website != "":
		return r.Website
	case r.HasCoordinates():
		return mapsSearchURL + coordinates(r.Location)
	case r.Address != "":
		return mapsSearchURL + url.QueryEscape(r.Address)
	}
	return ""
}

// Links are the row actions offered for a crawled record.
type Links struct {
	Route    string
	Dial     string
	Dispatch string
}

// RowLinks builds the route, tel: and wa.me links for r. Dial and Dispatch
// are empty when the record has no phone.
func RowLinks(r models.RawRecord) Links {
	var l Links
	if r.Location != nil && r.Location.Lat != nil && r.Location.Lng != nil {
		l.Route = mapsRouteURL + coordinates(r.Location)
	} else {
		l.Route = mapsRouteURL + url.QueryEscape(r.Address)
	}
	if dial := utils.ToDialForm(r.RawPhone()); dial != "" {
		l.Dial = "tel:" + dial
	}
	if wa := utils.ToDispatchForm(r.RawPhone()); wa != "" {
		l.Dispatch = "https://wa.me/" + wa
	}
	return l
}

func coordinates(loc *models.Location) string {
	return formatCoord(loc.Lat) + "," + formatCoord(loc.Lng)
}

func formatCoord(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

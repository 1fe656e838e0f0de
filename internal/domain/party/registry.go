package party

import (
	"strings"

	"github.com/google/uuid"
)

// Country is an ISO 3166-1 country
type Country struct {
	ID   uuid.UUID
	Code string
	Name string
}

// Subdivision is an ISO 3166-2 subdivision of a country. Code carries the
// country prefix, e.g. "US-NY".
type Subdivision struct {
	ID          uuid.UUID
	CountryCode string
	Code        string
	Name        string
}

// ShortCode returns the code without its country prefix
func (s Subdivision) ShortCode() string {
	if i := strings.IndexByte(s.Code, '-'); i >= 0 {
		return s.Code[i+1:]
	}
	return s.Code
}

// ResolveSubdivision finds the subdivision a free-text state refers to.
// Names are compared case-insensitively first; codes, with or without the
// country prefix, are tried after that.
func ResolveSubdivision(subdivisions []Subdivision, input string) (*Subdivision, bool) {
	key := FoldKey(input)
	if key == "" {
		return nil, false
	}
	for i := range subdivisions {
		if FoldKey(subdivisions[i].Name) == key {
			return &subdivisions[i], true
		}
	}
	for i := range subdivisions {
		s := &subdivisions[i]
		if FoldKey(s.Code) == key || FoldKey(s.ShortCode()) == key {
			return s, true
		}
	}
	return nil, false
}

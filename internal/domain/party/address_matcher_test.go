package party

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	countryIN = &Country{ID: uuid.New(), Code: "IN", Name: "India"}
	countryUS = &Country{ID: uuid.New(), Code: "US", Name: "United States"}

	subdivisionsIN = []Subdivision{
		{ID: uuid.New(), CountryCode: "IN", Code: "IN-DL", Name: "New Delhi"},
		{ID: uuid.New(), CountryCode: "IN", Code: "IN-GA", Name: "Goa"},
	}
	subdivisionsUS = []Subdivision{
		{ID: uuid.New(), CountryCode: "US", Code: "US-NY", Name: "New York"},
	}
)

func candidate(t *testing.T, in AddressInput) *Address {
	t.Helper()
	country, subs := countryIN, subdivisionsIN
	if in.CountryCode == "US" {
		country, subs = countryUS, subdivisionsUS
	}
	sub, _ := ResolveSubdivision(subs, in.StateOrProvince)
	a, err := NewAddressCandidate(in, country, sub)
	require.NoError(t, err)
	return a
}

func baseInput() AddressInput {
	return AddressInput{
		Name:            "Shalabh Aggarwal",
		StreetLines:     []string{"B-1/23 Lajpat Nagar", ""},
		PostalCode:      "110024",
		City:            "New Delhi",
		CountryCode:     "IN",
		StateOrProvince: "New Delhi",
	}
}

func TestAddressesEquivalent(t *testing.T) {
	stored := candidate(t, baseInput())

	tests := []struct {
		name   string
		mutate func(in *AddressInput)
		want   bool
	}{
		{"same address", func(in *AddressInput) {}, true},
		{"state casing differs", func(in *AddressInput) { in.StateOrProvince = "NEW delhi" }, true},
		{"state given as code", func(in *AddressInput) { in.StateOrProvince = "DL" }, true},
		{"street whitespace and casing differ", func(in *AddressInput) { in.StreetLines = []string{"  b-1/23   LAJPAT nagar "} }, true},
		{"name and postal code ignored", func(in *AddressInput) { in.Name = "S. Aggarwal"; in.PostalCode = "110025" }, true},
		{"different country and state", func(in *AddressInput) { in.CountryCode = "US"; in.StateOrProvince = "New York" }, false},
		{"different state", func(in *AddressInput) { in.StateOrProvince = "Goa" }, false},
		{"different city", func(in *AddressInput) { in.City = "Gurgaon" }, false},
		{"different street", func(in *AddressInput) { in.StreetLines = []string{"C-4 Defence Colony"} }, false},
		{"extra street line", func(in *AddressInput) { in.StreetLines = append(in.StreetLines, "Near Metro") }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := baseInput()
			tt.mutate(&in)
			assert.Equal(t, tt.want, AddressesEquivalent(stored, candidate(t, in)))
		})
	}
}

func TestMatchAddress(t *testing.T) {
	first := candidate(t, baseInput())
	first.AttachTo(uuid.New())

	otherIn := baseInput()
	otherIn.City = "Gurgaon"
	other := candidate(t, otherIn)
	other.AttachTo(first.PartyID)

	existing := []Address{*other, *first}

	t.Run("returns first equivalent", func(t *testing.T) {
		in := baseInput()
		in.StateOrProvince = "new delhi"
		got := MatchAddress(candidate(t, in), existing)
		require.NotNil(t, got)
		assert.Equal(t, first.ID, got.ID)
	})

	t.Run("no match", func(t *testing.T) {
		in := baseInput()
		in.City = "Mumbai"
		assert.Nil(t, MatchAddress(candidate(t, in), existing))
	})

	t.Run("empty set", func(t *testing.T) {
		assert.Nil(t, MatchAddress(candidate(t, baseInput()), nil))
	})
}

func TestResolveSubdivision(t *testing.T) {
	tests := []struct {
		input string
		want  string
		found bool
	}{
		{"New York", "US-NY", true},
		{"new york", "US-NY", true},
		{"NY", "US-NY", true},
		{"us-ny", "US-NY", true},
		{"Nowhere", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, ok := ResolveSubdivision(subdivisionsUS, tt.input)
			assert.Equal(t, tt.found, ok)
			if tt.found {
				assert.Equal(t, tt.want, got.Code)
			}
		})
	}
}

func TestNewAddressCandidate_UnresolvedState(t *testing.T) {
	in := baseInput()
	in.StateOrProvince = "  Some   Province "
	a, err := NewAddressCandidate(in, countryIN, nil)
	require.NoError(t, err)
	assert.Nil(t, a.SubdivisionID)
	assert.Equal(t, "Some Province", a.SubdivisionName)

	_, err = NewAddressCandidate(in, nil, nil)
	assert.ErrorIs(t, err, ErrInvalidAddress)
}

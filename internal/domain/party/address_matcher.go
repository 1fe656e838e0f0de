package party

// AddressesEquivalent reports whether two addresses denote the same place.
// Country code, subdivision name, city and street must all match
// case-insensitively. Name and postal code are ignored.
func AddressesEquivalent(a, b *Address) bool {
	return FoldKey(a.CountryCode) == FoldKey(b.CountryCode) &&
		FoldKey(a.SubdivisionName) == FoldKey(b.SubdivisionName) &&
		FoldKey(a.City) == FoldKey(b.City) &&
		FoldKey(a.Street) == FoldKey(b.Street)
}

// MatchAddress returns the first existing address equivalent to the
// candidate, or nil.
func MatchAddress(candidate *Address, existing []Address) *Address {
	for i := range existing {
		if AddressesEquivalent(candidate, &existing[i]) {
			return &existing[i]
		}
	}
	return nil
}

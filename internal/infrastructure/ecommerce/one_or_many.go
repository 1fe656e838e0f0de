package ecommerce

import (
	"bytes"
	"encoding/json"
	"encoding/xml"
)

// OneOrMany holds a repeated element of a marketplace payload. eBay
// returns a lone child as a single object and several as a list; both
// decode to a slice.
type OneOrMany[T any] []T

// UnmarshalJSON accepts an object, an array or null
func (m *OneOrMany[T]) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case len(data) == 0 || bytes.Equal(data, []byte("null")):
		*m = nil
		return nil
	case data[0] == '[':
		var items []T
		if err := json.Unmarshal(data, &items); err != nil {
			return err
		}
		*m = items
		return nil
	default:
		var item T
		if err := json.Unmarshal(data, &item); err != nil {
			return err
		}
		*m = OneOrMany[T]{item}
		return nil
	}
}

// UnmarshalXML appends one occurrence of the repeated element
func (m *OneOrMany[T]) UnmarshalXML(d *xml.Decoder, start xml.StartElement) error {
	var item T
	if err := d.DecodeElement(&item, &start); err != nil {
		return err
	}
	*m = append(*m, item)
	return nil
}

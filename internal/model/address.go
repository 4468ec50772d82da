package model

import (
	"fmt"
	"strings"
)

// addressSeparator separates the subfields of an encoded address.
const addressSeparator = "|"

// addressFieldCount is the number of subfields in an encoded address.
const addressFieldCount = 5

// Address is a structured postal address. It is an immutable value object:
// every subfield is guaranteed to be non-empty once constructed through
// NewAddress or ParseAddress.
type Address struct {
	Number  string `json:"number"`
	Street  string `json:"street"`
	City    string `json:"city"`
	State   string `json:"state"`
	Zipcode string `json:"zipcode"`
}

// NewAddress creates an Address from its subfields.
// Surrounding whitespace is trimmed and every subfield must be non-empty.
func NewAddress(number, street, city, state, zipcode string) (Address, error) {
	a := Address{
		Number:  strings.TrimSpace(number),
		Street:  strings.TrimSpace(street),
		City:    strings.TrimSpace(city),
		State:   strings.TrimSpace(state),
		Zipcode: strings.TrimSpace(zipcode),
	}
	if err := a.Validate(); err != nil {
		return Address{}, err
	}
	return a, nil
}

// ParseAddress decodes a pipe-delimited address ("number|street|city|state|zipcode").
func ParseAddress(s string) (Address, error) {
	parts := strings.Split(s, addressSeparator)
	if len(parts) != addressFieldCount {
		return Address{}, fmt.Errorf("%w: expected %d fields, got %d", ErrInvalidAddress, addressFieldCount, len(parts))
	}
	return NewAddress(parts[0], parts[1], parts[2], parts[3], parts[4])
}

// Validate reports whether all five subfields are non-empty.
func (a Address) Validate() error {
	fields := []struct {
		name  string
		value string
	}{
		{"number", a.Number},
		{"street", a.Street},
		{"city", a.City},
		{"state", a.State},
		{"zipcode", a.Zipcode},
	}
	for _, f := range fields {
		if strings.TrimSpace(f.value) == "" {
			return fmt.Errorf("%w: %s is empty", ErrInvalidAddress, f.name)
		}
		if strings.Contains(f.value, addressSeparator) {
			return fmt.Errorf("%w: %s contains %q", ErrInvalidAddress, f.name, addressSeparator)
		}
	}
	return nil
}

// Encode returns the pipe-delimited storage form of the address.
func (a Address) Encode() string {
	return strings.Join([]string{a.Number, a.Street, a.City, a.State, a.Zipcode}, addressSeparator)
}

// String implements fmt.Stringer and returns the encoded form.
func (a Address) String() string {
	return a.Encode()
}

// Display renders the address the way it is shown to the user,
// e.g. "221 Baker Street, London, LN 00000".
func (a Address) Display() string {
	return fmt.Sprintf("%s %s, %s, %s %s", a.Number, a.Street, a.City, a.State, a.Zipcode)
}

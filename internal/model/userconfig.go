package model

import (
	"fmt"
	"slices"
	"strings"
)

// UserConfig is the locally held user configuration: the home addresses
// used as safe reference points and the email that receives alerts.
//
// UserConfig is a value type. The With* methods return modified copies
// (drafts) and never touch storage; only configstore.Store.Save persists one.
type UserConfig struct {
	HomeAddresses []Address `json:"homeAddresses"`
	AlertEmail    string    `json:"alertEmail"`
}

// IsComplete reports whether the configuration allows a security check:
// at least one home address and a non-empty alert email.
func (c UserConfig) IsComplete() bool {
	return len(c.HomeAddresses) >= 1 && c.AlertEmail != ""
}

// Missing lists the requirements a configuration does not yet satisfy.
// It returns nil for a complete configuration.
func (c UserConfig) Missing() []string {
	var missing []string
	if len(c.HomeAddresses) == 0 {
		missing = append(missing, "at least one home address")
	}
	if c.AlertEmail == "" {
		missing = append(missing, "an alert email")
	}
	return missing
}

// EncodedAddresses returns the pipe-delimited form of every home address,
// in order. The result is never nil.
func (c UserConfig) EncodedAddresses() []string {
	encoded := make([]string, 0, len(c.HomeAddresses))
	for _, a := range c.HomeAddresses {
		encoded = append(encoded, a.Encode())
	}
	return encoded
}

// WithAddress returns a copy of the configuration with addr appended.
func (c UserConfig) WithAddress(addr Address) (UserConfig, error) {
	if err := addr.Validate(); err != nil {
		return c, err
	}
	out := c.Clone()
	out.HomeAddresses = append(out.HomeAddresses, addr)
	return out, nil
}

// WithoutAddress returns a copy of the configuration with the address at
// index removed.
func (c UserConfig) WithoutAddress(index int) (UserConfig, error) {
	if index < 0 || index >= len(c.HomeAddresses) {
		return c, fmt.Errorf("%w: %d (have %d)", ErrAddressIndex, index, len(c.HomeAddresses))
	}
	out := c.Clone()
	out.HomeAddresses = slices.Delete(out.HomeAddresses, index, index+1)
	return out, nil
}

// WithEmail returns a copy of the configuration with the alert email replaced.
// The email is only trimmed here; its syntax is validated by the service.
func (c UserConfig) WithEmail(email string) UserConfig {
	out := c.Clone()
	out.AlertEmail = strings.TrimSpace(email)
	return out
}

// Clone returns a deep copy of the configuration.
func (c UserConfig) Clone() UserConfig {
	out := UserConfig{AlertEmail: c.AlertEmail}
	if c.HomeAddresses != nil {
		out.HomeAddresses = slices.Clone(c.HomeAddresses)
	}
	return out
}

// Equal reports whether two configurations hold the same addresses, in the
// same order, and the same email.
func (c UserConfig) Equal(other UserConfig) bool {
	return c.AlertEmail == other.AlertEmail && slices.Equal(c.HomeAddresses, other.HomeAddresses)
}

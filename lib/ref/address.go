// Copyright 2026 The Luckee Authors
// SPDX-License-Identifier: Apache-2.0

package ref

import "fmt"

// maxAddressLength bounds the stored form of an address. Bech32
// account addresses on Cosmos chains are well under this; the bound
// exists so that a hostile caller cannot inflate index keys.
const maxAddressLength = 128

// allowedChars is the set of bytes permitted in an address: lowercase
// ASCII letters, digits, and the separators . _ -
var allowedChars [256]bool

func init() {
	for c := byte('a'); c <= 'z'; c++ {
		allowedChars[c] = true
	}
	for c := byte('0'); c <= '9'; c++ {
		allowedChars[c] = true
	}
	allowedChars['.'] = true
	allowedChars['_'] = true
	allowedChars['-'] = true
}

// Address identifies an account that can own tokens or hold a role
// (admin, minter, spender, operator). Examples: "luckee1qy3k8v",
// "reward-distributor", "alice".
//
// Address is an immutable value type. The zero value is not valid;
// use IsZero to check.
type Address struct {
	value string
}

// ParseAddress validates and wraps a raw address string. Returns an
// error if the string is empty, longer than 128 bytes, or contains a
// byte outside a-z, 0-9, '.', '_', '-'.
func ParseAddress(raw string) (Address, error) {
	if err := validateAddress(raw); err != nil {
		return Address{}, err
	}
	return Address{value: raw}, nil
}

// MustParseAddress is like ParseAddress but panics on invalid input.
// Intended for constants in tests and default configuration.
func MustParseAddress(raw string) Address {
	address, err := ParseAddress(raw)
	if err != nil {
		panic(fmt.Sprintf("ref.MustParseAddress(%q): %v", raw, err))
	}
	return address
}

// String returns the address string.
func (a Address) String() string { return a.value }

// IsZero reports whether the Address is the zero value (unset).
func (a Address) IsZero() bool { return a.value == "" }

// MarshalText implements encoding.TextMarshaler.
func (a Address) MarshalText() ([]byte, error) {
	return []byte(a.value), nil
}

// UnmarshalText implements encoding.TextUnmarshaler. An empty input
// produces the zero value; anything else must pass ParseAddress.
func (a *Address) UnmarshalText(data []byte) error {
	if len(data) == 0 {
		*a = Address{}
		return nil
	}
	parsed, err := ParseAddress(string(data))
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}

func validateAddress(raw string) error {
	if raw == "" {
		return fmt.Errorf("address is empty")
	}
	if len(raw) > maxAddressLength {
		return fmt.Errorf("address is %d bytes, maximum is %d", len(raw), maxAddressLength)
	}
	for i := 0; i < len(raw); i++ {
		if !allowedChars[raw[i]] {
			return fmt.Errorf("address: invalid character %q at position %d (allowed: a-z, 0-9, ., _, -)", raw[i], i)
		}
	}
	return nil
}

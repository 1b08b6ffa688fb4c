// Package base62 converts between non-negative integers and short strings
// over a fixed 62-symbol alphabet.
package base62

import (
	"errors"
	"fmt"
	"strings"
)

// Alphabet is the ordered symbol set. Digits, then uppercase, then lowercase.
// Changing the order changes every produced slug.
const Alphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"

const base = uint64(len(Alphabet))

// maxLen is the longest encoding of a uint64 (62^11 > 2^64).
const maxLen = 11

var (
	ErrInvalidCharacter = errors.New("invalid base62 character")
	ErrEmpty            = errors.New("empty base62 string")
	ErrOverflow         = errors.New("base62 value overflows uint64")
)

// Encode returns the base62 representation of n, most significant symbol first.
// Encode(0) is "0".
func Encode(n uint64) string {
	if n == 0 {
		return Alphabet[:1]
	}

	var buf [maxLen]byte

	i := len(buf)
	for n > 0 {
		i--
		buf[i] = Alphabet[n%base]
		n /= base
	}

	return string(buf[i:])
}

// Decode interprets s as a base62 numeral.
func Decode(s string) (uint64, error) {
	if s == "" {
		return 0, ErrEmpty
	}

	var n uint64

	for i, r := range s {
		idx := strings.IndexRune(Alphabet, r)
		if idx < 0 {
			return 0, fmt.Errorf("%w: %q at position %d", ErrInvalidCharacter, r, i)
		}

		if n > (^uint64(0)-uint64(idx))/base {
			return 0, fmt.Errorf("%w: %q", ErrOverflow, s)
		}

		n = n*base + uint64(idx)
	}

	return n, nil
}

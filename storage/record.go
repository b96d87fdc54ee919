package storage

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// Pair is a single key/value pair. A []Pair is an ordered mapping: the
// slice order is the order values are written in.
type Pair struct {
	Key   string
	Value string
}

// ValidateKey checks that key can be stored in a table: it must be
// non-empty and contain only ASCII letters and digits.
func ValidateKey(key string) error {
	if len(key) == 0 {
		return fmt.Errorf("%w: key is empty", ErrInvalidKey)
	}
	for i := 0; i < len(key); i++ {
		if !isAlnum(key[i]) {
			return fmt.Errorf("%w: key=%q has non-alphanumeric byte at %d", ErrInvalidKey, key, i)
		}
	}
	return nil
}

// ValidateValue checks that value can be stored in a table: it must be
// valid UTF-8 and must not contain the zero byte.
func ValidateValue(value string) error {
	if i := strings.IndexByte(value, 0); i >= 0 {
		return fmt.Errorf("%w: value contains a zero byte at %d", ErrInvalidValue, i)
	}
	if !utf8.ValidString(value) {
		return fmt.Errorf("%w: value is not valid utf-8", ErrInvalidValue)
	}
	return nil
}

func isAlnum(c byte) bool {
	return ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z') || ('0' <= c && c <= '9')
}

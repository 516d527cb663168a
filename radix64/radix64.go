// Package radix64 converts raw bytes to and from a printable 64 symbol
// alphabet (A-Z a-z 0-9 + /). Every 3 bytes become 4 symbols; a final group
// of 1 or 2 bytes becomes 2 or 3 symbols followed by "==" or "=".
package radix64

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
)

const (
	alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789+/"
	padding  = '='
)

var (
	ErrInvalidCharacter = errors.New("invalid character")
	ErrTruncated        = errors.New("truncated input")
)

// Encode returns the padded encoding of data.
func Encode(data []byte) string {
	return base64.StdEncoding.EncodeToString(data)
}

// Decode reverses Encode. The first '=' ends the data and may only be
// followed by more '='. Input is rejected as a whole: on error no bytes
// are returned.
func Decode(code string) ([]byte, error) {
	end := strings.IndexByte(code, padding)
	if end < 0 {
		end = len(code)
	}
	for i := 0; i < len(code); i++ {
		c := code[i]
		if i >= end {
			if c != padding {
				return nil, fmt.Errorf("%w %q at offset %d", ErrInvalidCharacter, c, i)
			}
			continue
		}
		if strings.IndexByte(alphabet, c) < 0 {
			return nil, fmt.Errorf("%w %q at offset %d", ErrInvalidCharacter, c, i)
		}
	}
	if end%4 == 1 {
		return nil, fmt.Errorf("%w: dangling symbol at offset %d", ErrTruncated, end-1)
	}
	data, err := base64.RawStdEncoding.DecodeString(code[:end])
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTruncated, err)
	}
	return data, nil
}

package radix64

import (
	"bytes"
	"errors"
	"math/rand"
	"testing"
)

func TestEncodeKnown(t *testing.T) {
	cases := map[string]string{
		"":       "",
		"f":      "Zg==",
		"fo":     "Zm8=",
		"foo":    "Zm9v",
		"foob":   "Zm9vYg==",
		"fooba":  "Zm9vYmE=",
		"foobar": "Zm9vYmFy",
	}
	for in, want := range cases {
		if got := Encode([]byte(in)); got != want {
			t.Errorf("Encode(%q) = %q, want %q", in, got, want)
		}
		got, err := Decode(want)
		if err != nil {
			t.Errorf("Decode(%q): %v", want, err)
			continue
		}
		if string(got) != in {
			t.Errorf("Decode(%q) = %q, want %q", want, got, in)
		}
	}
}

func TestRoundTrip(t *testing.T) {
	rnd := rand.New(rand.NewSource(1))
	for _, n := range []int{0, 1, 2, 3, 4, 5, 10, 64, 1000} {
		data := make([]byte, n)
		rnd.Read(data)
		got, err := Decode(Encode(data))
		if err != nil {
			t.Fatalf("length %d: %v", n, err)
		}
		if !bytes.Equal(got, data) {
			t.Fatalf("length %d: round trip gave %x, want %x", n, got, data)
		}
	}
}

func TestDecodeTerminator(t *testing.T) {
	got, err := Decode("Zm8=")
	if err != nil || string(got) != "fo" {
		t.Fatalf("Decode(Zm8=) = %q, %v", got, err)
	}
	// padding is optional, and the first '=' ends the data
	got, err = Decode("Zm8")
	if err != nil || string(got) != "fo" {
		t.Fatalf("Decode(Zm8) = %q, %v", got, err)
	}
	got, err = Decode("Zg===")
	if err != nil || string(got) != "f" {
		t.Fatalf("Decode(Zg===) = %q, %v", got, err)
	}
}

func TestDecodeInvalid(t *testing.T) {
	for _, code := range []string{"Zm9v!", "Zm 9v", "Zm9v\n", "Zg==Zg==", "Zm-_", "é"} {
		got, err := Decode(code)
		if !errors.Is(err, ErrInvalidCharacter) {
			t.Errorf("Decode(%q): expected ErrInvalidCharacter, got %v", code, err)
		}
		if got != nil {
			t.Errorf("Decode(%q) returned partial output %q", code, got)
		}
	}
	if _, err := Decode("Zm9vY"); !errors.Is(err, ErrTruncated) {
		t.Errorf("expected ErrTruncated, got %v", err)
	}
}

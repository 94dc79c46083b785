package pixel

import (
	"errors"
	"testing"
)

func TestEncodeDecodeTimestampIDRoundTrip(t *testing.T) {
	cases := []int64{0, 1, 1727740800000000, 1727740800123456, 9223372036854775807}
	for _, ts := range cases {
		id := EncodeTimestampID(ts)
		if len(id) != idLength {
			t.Fatalf("EncodeTimestampID(%d) = %q, want length %d", ts, id, idLength)
		}
		got, err := DecodeTimestampID(id)
		if err != nil {
			t.Fatalf("DecodeTimestampID(%q) returned error: %v", id, err)
		}
		if got != ts {
			t.Errorf("round trip for %d: got %d via id %q", ts, got, id)
		}
	}
}

func TestDecodeTimestampIDRejectsWrongLength(t *testing.T) {
	_, err := DecodeTimestampID("ABC")
	if !errors.Is(err, ErrDecodeError) {
		t.Fatalf("expected ErrDecodeError, got %v", err)
	}
}

func TestDecodeTimestampIDRejectsInvalidCharacter(t *testing.T) {
	_, err := DecodeTimestampID("UUUUUUUUUUUUU")
	if !errors.Is(err, ErrDecodeError) {
		t.Fatalf("expected ErrDecodeError for U, got %v", err)
	}
}

func TestDecodeTimestampIDAliasesILO(t *testing.T) {
	id := EncodeTimestampID(12345)
	aliased := make([]byte, len(id))
	copy(aliased, id)
	for i, c := range aliased {
		switch c {
		case '1':
			aliased[i] = 'I'
		case '0':
			aliased[i] = 'O'
		}
	}
	got, err := DecodeTimestampID(string(aliased))
	if err != nil {
		t.Fatalf("unexpected error decoding aliased id: %v", err)
	}
	if got != 12345 {
		t.Errorf("aliased decode = %d, want 12345", got)
	}

	withL := []byte(id)
	for i, c := range withL {
		if c == '1' {
			withL[i] = 'L'
		}
	}
	gotL, err := DecodeTimestampID(string(withL))
	if err != nil {
		t.Fatalf("unexpected error decoding L-aliased id: %v", err)
	}
	if gotL != 12345 {
		t.Errorf("L-aliased decode = %d, want 12345", gotL)
	}
}

func TestDecodeTimestampIDLowercase(t *testing.T) {
	id := EncodeTimestampID(555)
	lower := ""
	for _, c := range id {
		if c >= 'A' && c <= 'Z' {
			c += 'a' - 'A'
		}
		lower += string(c)
	}
	got, err := DecodeTimestampID(lower)
	if err != nil {
		t.Fatalf("unexpected error decoding lowercase id: %v", err)
	}
	if got != 555 {
		t.Errorf("lowercase decode = %d, want 555", got)
	}
}

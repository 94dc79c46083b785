package pixel

import (
	"fmt"
	"strings"
)

// PICO8Palette is the fixed 16-color palette pixel payloads index into.
// Ordering and hex values are canonical; color index N renders as
// PICO8Palette[N].
var PICO8Palette = [16]string{
	"#000000", // 0: Black
	"#1D2B53", // 1: Dark Blue
	"#7E2553", // 2: Dark Purple
	"#008751", // 3: Dark Green
	"#AB5236", // 4: Brown
	"#5F574F", // 5: Dark Grey
	"#C2C3C7", // 6: Light Grey
	"#FFF1E8", // 7: White
	"#FF004D", // 8: Red
	"#FFA300", // 9: Orange
	"#FFEC27", // 10: Yellow
	"#00E436", // 11: Green
	"#29ADFF", // 12: Blue
	"#83769C", // 13: Lavender
	"#FF77A8", // 14: Pink
	"#FFCCAA", // 15: Peach
}

const idLength = 13

// crockfordValue maps an uppercased Crockford-Base32 character to its 5-bit
// value. I and L alias to 1, O aliases to 0; U is never valid.
func crockfordValue(c byte) (uint64, bool) {
	switch c {
	case '0', 'O':
		return 0, true
	case '1', 'I', 'L':
		return 1, true
	case '2':
		return 2, true
	case '3':
		return 3, true
	case '4':
		return 4, true
	case '5':
		return 5, true
	case '6':
		return 6, true
	case '7':
		return 7, true
	case '8':
		return 8, true
	case '9':
		return 9, true
	case 'A':
		return 10, true
	case 'B':
		return 11, true
	case 'C':
		return 12, true
	case 'D':
		return 13, true
	case 'E':
		return 14, true
	case 'F':
		return 15, true
	case 'G':
		return 16, true
	case 'H':
		return 17, true
	case 'J':
		return 18, true
	case 'K':
		return 19, true
	case 'M':
		return 20, true
	case 'N':
		return 21, true
	case 'P':
		return 22, true
	case 'Q':
		return 23, true
	case 'R':
		return 24, true
	case 'S':
		return 25, true
	case 'T':
		return 26, true
	case 'V':
		return 27, true
	case 'W':
		return 28, true
	case 'X':
		return 29, true
	case 'Y':
		return 30, true
	case 'Z':
		return 31, true
	default:
		return 0, false
	}
}

// crockfordChar is the canonical encode-side alphabet: 32 characters, index
// == value, excluding I, L, O, U.
const crockfordChar = "0123456789ABCDEFGHJKMNPQRSTVWXYZ"

// DecodeTimestampID decodes a 13-character Crockford-Base32 pixel event ID
// into the signed 64-bit microsecond timestamp it encodes. The 64-bit value
// is read big-endian, five bits per character, then reinterpreted as signed.
func DecodeTimestampID(id string) (int64, error) {
	if len(id) != idLength {
		return 0, fmt.Errorf("%w: length %d (want %d)", ErrDecodeError, len(id), idLength)
	}
	upper := strings.ToUpper(id)
	var value uint64
	for i := 0; i < len(upper); i++ {
		v, ok := crockfordValue(upper[i])
		if !ok {
			return 0, fmt.Errorf("%w: invalid character %q", ErrDecodeError, upper[i])
		}
		value = (value << 5) | v
	}
	return int64(value), nil
}

// EncodeTimestampID encodes a microsecond timestamp into its canonical
// 13-character Crockford-Base32 ID. It is the left inverse of
// DecodeTimestampID for values produced by EncodeTimestampID itself; decode
// accepts additional aliased spellings that never round-trip back through
// EncodeTimestampID (I/L/O).
func EncodeTimestampID(microseconds int64) string {
	value := uint64(microseconds)
	buf := make([]byte, idLength)
	for i := idLength - 1; i >= 0; i-- {
		buf[i] = crockfordChar[value&0x1F]
		value >>= 5
	}
	return string(buf)
}

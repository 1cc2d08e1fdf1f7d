package override

import (
	"strconv"
	"strings"
)

// parseNumber accepts signed integer and fractional forms without an
// exponent ("12", "-3.5", ".5", "+2."). integral reports the absence of a
// decimal point.
func parseNumber(s string) (v float64, integral, ok bool) {
	i := 0
	if i < len(s) && (s[i] == '+' || s[i] == '-') {
		i++
	}
	digits := 0
	for i < len(s) && isDigit(s[i]) {
		i++
		digits++
	}
	integral = true
	if i < len(s) && s[i] == '.' {
		integral = false
		i++
		for i < len(s) && isDigit(s[i]) {
			i++
			digits++
		}
	}
	if digits == 0 || i != len(s) {
		return 0, false, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false, false
	}
	return v, integral, true
}

// parseHex parses the &H..& notation used by color and alpha tags. Both
// ampersands are optional.
func parseHex(s string) (uint32, bool) {
	s = strings.TrimSuffix(strings.TrimPrefix(s, "&"), "&")
	if len(s) < 2 || (s[0] != 'H' && s[0] != 'h') {
		return 0, false
	}
	s = s[1:]
	if len(s) > 8 {
		return 0, false
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return 0, false
	}
	return uint32(v), true
}

func isDigit(b byte) bool {
	return b >= '0' && b <= '9'
}

func isLetter(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}

func isSpace(b byte) bool {
	return b == ' ' || b == '\t'
}

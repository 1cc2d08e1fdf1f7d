package script

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// ErrInvalidValue is wrapped by every typed value parse failure.
var ErrInvalidValue = errors.New("invalid value")

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidValue, fmt.Sprintf(format, args...))
}

// ParseInt parses a decimal integer field.
func ParseInt(s string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, invalid("%q is not an integer", s)
	}
	return n, nil
}

// ParseFloat parses a decimal number field.
func ParseFloat(s string) (float64, error) {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, invalid("%q is not a number", s)
	}
	return f, nil
}

// ParseBool accepts -1/0 (and any other integer, non-zero meaning true) as
// written in styles, and yes/no or true/false as written in script info.
func ParseBool(s string) (bool, error) {
	t := strings.TrimSpace(s)
	switch strings.ToLower(t) {
	case "yes", "true":
		return true, nil
	case "no", "false":
		return false, nil
	}
	n, err := strconv.Atoi(t)
	if err != nil {
		return false, invalid("%q is not a boolean", s)
	}
	return n != 0, nil
}

// ParseTime parses an H:MM:SS.cc time code. Hours may have any number of
// digits, the fraction up to nine.
func ParseTime(s string) (time.Duration, error) {
	t := strings.TrimSpace(s)
	neg := false
	if rest, ok := strings.CutPrefix(t, "-"); ok {
		neg, t = true, rest
	}
	h, rest, ok1 := strings.Cut(t, ":")
	m, sec, ok2 := strings.Cut(rest, ":")
	if !ok1 || !ok2 {
		return 0, invalid("time %q is not H:MM:SS.cc", s)
	}
	whole, frac, _ := strings.Cut(sec, ".")
	hours, ok1 := digits(h)
	minutes, ok2 := digits(m)
	seconds, ok3 := digits(whole)
	if !ok1 || !ok2 || !ok3 || minutes >= 60 || seconds >= 60 || len(frac) > 9 {
		return 0, invalid("time %q is not H:MM:SS.cc", s)
	}
	var nanos int64
	if frac != "" {
		f, ok := digits(frac)
		if !ok {
			return 0, invalid("time %q has a bad fraction", s)
		}
		nanos = int64(f) * int64(math.Pow10(9-len(frac)))
	}
	d := time.Duration(hours)*time.Hour +
		time.Duration(minutes)*time.Minute +
		time.Duration(seconds)*time.Second +
		time.Duration(nanos)
	if neg {
		d = -d
	}
	return d, nil
}

// FormatTime renders d as H:MM:SS.cc, rounding to centiseconds.
func FormatTime(d time.Duration) string {
	sign := ""
	if d < 0 {
		sign, d = "-", -d
	}
	cs := int64((d + 5*time.Millisecond) / (10 * time.Millisecond))
	return fmt.Sprintf("%s%d:%02d:%02d.%02d", sign,
		cs/360000, cs/6000%60, cs/100%60, cs%100)
}

func digits(s string) (int, bool) {
	if s == "" {
		return 0, false
	}
	n := 0
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return 0, false
		}
		n = n*10 + int(s[i]-'0')
		if n > math.MaxInt32 {
			return 0, false
		}
	}
	return n, true
}

// Color is an RGBA color. A is transparency as the format stores it:
// 0 is opaque, 255 fully transparent.
type Color struct {
	R, G, B, A uint8
}

// ColorFromUint32 unpacks the 0xAABBGGRR layout used by the format.
func ColorFromUint32(v uint32) Color {
	return Color{R: uint8(v), G: uint8(v >> 8), B: uint8(v >> 16), A: uint8(v >> 24)}
}

// Uint32 packs the color as 0xAABBGGRR.
func (c Color) Uint32() uint32 {
	return uint32(c.A)<<24 | uint32(c.B)<<16 | uint32(c.G)<<8 | uint32(c.R)
}

// String renders the color as &HAABBGGRR.
func (c Color) String() string {
	return fmt.Sprintf("&H%08X", c.Uint32())
}

// ParseColor accepts &HAABBGGRR and &HBBGGRR& hex forms and the signed
// decimal form older SSA scripts use.
func ParseColor(s string) (Color, error) {
	t := strings.TrimSpace(s)
	if hex, ok := cutHexPrefix(t); ok {
		hex = strings.TrimSuffix(hex, "&")
		if hex == "" || len(hex) > 8 {
			return Color{}, invalid("color %q is not &HAABBGGRR", s)
		}
		v, err := strconv.ParseUint(hex, 16, 32)
		if err != nil {
			return Color{}, invalid("color %q is not &HAABBGGRR", s)
		}
		return ColorFromUint32(uint32(v)), nil
	}
	n, err := strconv.ParseInt(t, 10, 64)
	if err != nil || n < math.MinInt32 || n > math.MaxUint32 {
		return Color{}, invalid("color %q is neither hex nor decimal", s)
	}
	return ColorFromUint32(uint32(n)), nil
}

func cutHexPrefix(s string) (string, bool) {
	s = strings.TrimPrefix(s, "&")
	if len(s) > 0 && (s[0] == 'H' || s[0] == 'h') {
		return s[1:], true
	}
	return s, false
}

// Alignment is a numpad position: 1-3 bottom, 4-6 middle, 7-9 top, each
// row left to right.
type Alignment int

// LegacyAlignment converts the SSA alignment numbering (1-3 bottom,
// +4 top, +8 middle) to numpad.
func LegacyAlignment(n int) (Alignment, bool) {
	switch {
	case n >= 1 && n <= 3:
		return Alignment(n), true
	case n >= 5 && n <= 7:
		return Alignment(n + 2), true
	case n >= 9 && n <= 11:
		return Alignment(n - 5), true
	}
	return 0, false
}

// ParseAlignment parses an alignment field. legacy selects SSA numbering.
func ParseAlignment(s string, legacy bool) (Alignment, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, invalid("alignment %q is not an integer", s)
	}
	if legacy {
		if a, ok := LegacyAlignment(n); ok {
			return a, nil
		}
		return 0, invalid("legacy alignment %d is not one of 1-3, 5-7, 9-11", n)
	}
	if n < 1 || n > 9 {
		return 0, invalid("alignment %d is outside 1-9", n)
	}
	return Alignment(n), nil
}

// Row returns 0 for bottom, 1 for middle and 2 for top.
func (a Alignment) Row() int { return (int(a) - 1) / 3 }

// Column returns 0 for left, 1 for center and 2 for right.
func (a Alignment) Column() int { return (int(a) - 1) % 3 }

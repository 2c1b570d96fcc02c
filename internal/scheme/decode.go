package scheme

import (
	"fmt"
	"strconv"
	"strings"

	"hcsgrid/pkg/coords"
)

// Decoder converts a raw capture into a typed axis value.
type Decoder func(raw string) (coords.Value, error)

// Int parses a base-10 integer; leading zeros are dropped.
func Int(raw string) (coords.Value, error) {
	if raw == "" {
		return coords.Value{}, fmt.Errorf("empty integer")
	}
	for _, c := range raw {
		if c < '0' || c > '9' {
			return coords.Value{}, fmt.Errorf("%q is not a base-10 integer", raw)
		}
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return coords.Value{}, err
	}
	return coords.Int(n), nil
}

// RowLetter accepts plate row letters (A=1 ... Z=26, AA=27) or digits.
func RowLetter(raw string) (coords.Value, error) {
	if raw != "" && raw[0] >= '0' && raw[0] <= '9' {
		return Int(raw)
	}
	n, err := letterOrdinal(raw)
	if err != nil {
		return coords.Value{}, err
	}
	return coords.Int(n), nil
}

// Token keeps the capture verbatim.
func Token(raw string) (coords.Value, error) { return coords.String(raw), nil }

// Elapsed converts an IncuCyte style "03d06h40m" offset into minutes.
func Elapsed(raw string) (coords.Value, error) {
	rest := strings.ToLower(raw)
	total := 0
	for _, unit := range []struct {
		suffix byte
		scale  int
	}{{'d', 24 * 60}, {'h', 60}, {'m', 1}} {
		i := strings.IndexByte(rest, unit.suffix)
		if i <= 0 {
			return coords.Value{}, fmt.Errorf("%q is not a dNNhNNm offset", raw)
		}
		v, err := Int(rest[:i])
		if err != nil {
			return coords.Value{}, fmt.Errorf("%q is not a dNNhNNm offset", raw)
		}
		n, _ := v.AsInt()
		total += n * unit.scale
		rest = rest[i+1:]
	}
	if rest != "" {
		return coords.Value{}, fmt.Errorf("%q has trailing %q", raw, rest)
	}
	return coords.Int(total), nil
}

func letterOrdinal(s string) (int, error) {
	if s == "" {
		return 0, fmt.Errorf("empty row letter")
	}
	n := 0
	for _, c := range strings.ToUpper(s) {
		if c < 'A' || c > 'Z' {
			return 0, fmt.Errorf("%q is not a row letter", s)
		}
		n = n*26 + int(c-'A'+1)
	}
	return n, nil
}

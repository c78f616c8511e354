package domain

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// scoreNaN is the JSON form of a score that could not be read as a number.
const scoreNaN = "NaN"

// Score is a bureau score. It may hold NaN when the source field was not
// numeric; JSON has no NaN literal so that case is encoded as the string "NaN".
type Score float64

// ParseScore converts the raw score text. Missing text yields 0. Anything that
// is not a finite number yields NaN, including "inf", "NaN" and values out of
// float64 range, so every score survives the JSON round trip unchanged.
// Unsigned 0x, 0o and 0b integers are accepted.
func ParseScore(raw *string) Score {
	if raw == nil {
		return 0
	}
	s := strings.TrimSpace(*raw)
	if s == "" {
		return 0
	}
	if base := radixPrefix(s); base != 0 {
		u, err := strconv.ParseUint(s[2:], base, 64)
		if err != nil {
			return Score(math.NaN())
		}
		return Score(float64(u))
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsInf(f, 0) || math.IsNaN(f) {
		return Score(math.NaN())
	}
	return Score(f)
}

func radixPrefix(s string) int {
	if len(s) < 2 || s[0] != '0' {
		return 0
	}
	switch s[1] {
	case 'x', 'X':
		return 16
	case 'o', 'O':
		return 8
	case 'b', 'B':
		return 2
	}
	return 0
}

// IsNaN reports whether the score is the not-a-number sentinel.
func (s Score) IsNaN() bool {
	return math.IsNaN(float64(s))
}

// MarshalJSON implements json.Marshaler. Non-finite values are all written as
// "NaN"; ParseScore never produces an infinity.
func (s Score) MarshalJSON() ([]byte, error) {
	f := float64(s)
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return json.Marshal(scoreNaN)
	}
	return json.Marshal(f)
}

// UnmarshalJSON implements json.Unmarshaler.
func (s *Score) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err == nil {
		if str == scoreNaN {
			*s = Score(math.NaN())
			return nil
		}
		return fmt.Errorf("invalid score %q", str)
	}
	var f *float64
	if err := json.Unmarshal(data, &f); err != nil {
		return err
	}
	if f == nil {
		*s = 0
		return nil
	}
	*s = Score(*f)
	return nil
}

// Value implements driver.Valuer. Postgres double precision accepts NaN.
func (s Score) Value() (driver.Value, error) {
	return float64(s), nil
}

// Scan implements sql.Scanner.
func (s *Score) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		*s = 0
	case float64:
		*s = Score(v)
	case float32:
		*s = Score(v)
	case int64:
		*s = Score(v)
	case []byte:
		f, err := strconv.ParseFloat(string(v), 64)
		if err != nil {
			return fmt.Errorf("scanning score: %w", err)
		}
		*s = Score(f)
	case string:
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("scanning score: %w", err)
		}
		*s = Score(f)
	default:
		return fmt.Errorf("scanning score: unsupported type %T", src)
	}
	return nil
}

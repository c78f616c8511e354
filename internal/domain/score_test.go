package domain_test

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"creditlens/internal/domain"
)

func strp(s string) *string { return &s }

func TestParseScore(t *testing.T) {
	tests := []struct {
		name    string
		raw     *string
		want    float64
		wantNaN bool
	}{
		{name: "absent", raw: nil, want: 0},
		{name: "empty", raw: strp(""), want: 0},
		{name: "blank", raw: strp("   "), want: 0},
		{name: "padded number", raw: strp(" 750 "), want: 750},
		{name: "decimal", raw: strp("712.5"), want: 712.5},
		{name: "exponent", raw: strp("7.5e2"), want: 750},
		{name: "hex", raw: strp("0x1A"), want: 26},
		{name: "binary", raw: strp("0b101"), want: 5},
		{name: "not available", raw: strp("NA"), wantNaN: true},
		{name: "inf", raw: strp("inf"), wantNaN: true},
		{name: "Infinity", raw: strp("Infinity"), wantNaN: true},
		{name: "negative infinity", raw: strp("-Infinity"), wantNaN: true},
		{name: "nan text", raw: strp("nan"), wantNaN: true},
		{name: "out of range", raw: strp("1e400"), wantNaN: true},
		{name: "signed hex", raw: strp("-0x1A"), wantNaN: true},
		{name: "hex float", raw: strp("0x1Ap0"), wantNaN: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := domain.ParseScore(tt.raw)
			if tt.wantNaN {
				assert.True(t, got.IsNaN(), "got %v", float64(got))
				return
			}
			assert.Equal(t, tt.want, float64(got))
		})
	}
}

func TestParseScore_SurvivesJSONRoundTrip(t *testing.T) {
	inputs := []string{"NA", "inf", "Infinity", "-inf", "1e400", "nan", "", " 750 ", "0x1A", "-12.25"}

	for _, raw := range inputs {
		t.Run(raw, func(t *testing.T) {
			parsed := domain.ParseScore(strp(raw))
			require.False(t, math.IsInf(float64(parsed), 0), "parse must never yield an infinity")

			data, err := json.Marshal(domain.BasicDetails{CreditScore: parsed})
			require.NoError(t, err)

			var back domain.BasicDetails
			require.NoError(t, json.Unmarshal(data, &back))

			if parsed.IsNaN() {
				assert.True(t, back.CreditScore.IsNaN())
				assert.Contains(t, string(data), `"NaN"`)
				return
			}
			assert.Equal(t, float64(parsed), float64(back.CreditScore))
		})
	}
}

func TestParseScore_NilScore(t *testing.T) {
	assert.Equal(t, domain.Score(0), domain.ParseScore(nil))
}

func TestScore_UnmarshalRejectsUnknownString(t *testing.T) {
	var s domain.Score
	assert.Error(t, json.Unmarshal([]byte(`"Infinity"`), &s))
}

package formatting

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFormatters(t *testing.T) {
	tests := []struct {
		name string
		fn   func(float64) string
		in   float64
		want string
	}{
		{"price", FormatPrice, 250, "250.00"},
		{"price rounds", FormatPrice, 12.3456, "12.35"},
		{"price NaN", FormatPrice, math.NaN(), Missing},
		{"change positive", FormatPercentChange, 2.5, "+2.50%"},
		{"change negative", FormatPercentChange, -1.2, "-1.20%"},
		{"change zero", FormatPercentChange, 0, "0.00%"},
		{"change NaN", FormatPercentChange, math.NaN(), Missing},
		{"percent1", FormatPercent1, 12, "12.0%"},
		{"percent1 rounds", FormatPercent1, 33.36, "33.4%"},
		{"percent1 Inf", FormatPercent1, math.Inf(1), Missing},
		{"one decimal", FormatOneDecimal, 1.15, "1.2"},
		{"one decimal NaN", FormatOneDecimal, math.NaN(), Missing},
		{"score", FormatScore, 27.8, "28"},
		{"score zero", FormatScore, 0, "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.fn(tt.in))
		})
	}
}

func TestFormat_Dispatch(t *testing.T) {
	assert.Equal(t, "3.10", Format("price", 3.1))
	assert.Equal(t, "+3.10%", Format("percentChange", 3.1))
	assert.Equal(t, "3.1%", Format("percent1", 3.1))
	assert.Equal(t, "3", Format("score", 3.1))
	assert.Equal(t, "3.1", Format("oneDecimal", 3.1))
	assert.Equal(t, "3.1", Format("", 3.1))
}

func TestFormatVolume(t *testing.T) {
	assert.Equal(t, "950", FormatVolume(950))
	assert.Equal(t, "12.3K", FormatVolume(12_345))
	assert.Equal(t, "4.5M", FormatVolume(4_500_000))
	assert.Equal(t, "1.2B", FormatVolume(1_234_000_000))
}

func TestSeparator(t *testing.T) {
	assert.Equal(t, "=====", Separator(5))
	assert.Equal(t, "", Separator(-1))
}

func TestParseDate(t *testing.T) {
	assert.Equal(t, time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC), ParseDate("2024-03-15"))
	assert.True(t, ParseDate("not a date").IsZero())
}

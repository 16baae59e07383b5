package caltable

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		expected []Point
	}{
		{
			name:     "Well-formed table",
			text:     "0:0,50:5.5,100:10",
			expected: []Point{{0, 0}, {50, 5.5}, {100, 10}},
		},
		{
			name:     "Whitespace tolerated",
			text:     " 0 : 0 , 50 : 5 ",
			expected: []Point{{0, 0}, {50, 5}},
		},
		{
			name:     "Unsorted input is sorted by duty",
			text:     "100:10,0:0,50:5",
			expected: []Point{{0, 0}, {50, 5}, {100, 10}},
		},
		{
			name:     "Malformed pairs dropped individually",
			text:     "abc,0:0,50,100:10,60:x",
			expected: []Point{{0, 0}, {100, 10}},
		},
		{
			name:     "Out-of-range pairs dropped",
			text:     "-5:1,0:0,50:25,101:5,100:10",
			expected: []Point{{0, 0}, {100, 10}},
		},
		{
			name:     "Duplicate duty keeps the later pair",
			text:     "0:0,50:5,50:6,100:10",
			expected: []Point{{0, 0}, {50, 6}, {100, 10}},
		},
		{
			name:     "Empty text",
			text:     "",
			expected: nil,
		},
		{
			name:     "Garbage only",
			text:     "not,a,table",
			expected: nil,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			table := Parse(tc.text)

			points := table.Points()
			require.Len(t, points, len(tc.expected))
			for i, p := range tc.expected {
				assert.Equal(t, p, points[i])
			}
		})
	}
}

func TestUsable(t *testing.T) {
	assert.False(t, Parse("").Usable())
	assert.False(t, Parse("50:5").Usable())
	assert.True(t, Parse("0:0,100:10").Usable())
}

func TestString_RoundTrip(t *testing.T) {
	text := "0:0,50:5.5,100:10"
	table := Parse(text)

	assert.Equal(t, text, table.String())

	// Reparsing the serialized form yields the same table.
	assert.Equal(t, table.Points(), Parse(table.String()).Points())
}

func TestDutyForVoltage(t *testing.T) {
	linear := Parse("0:0,50:5,100:10")

	tests := []struct {
		name     string
		table    Table
		voltage  float64
		expected int
	}{
		{"Exact point", linear, 5, 50},
		{"Midpoint interpolation", linear, 2.5, 25},
		{"Upper segment interpolation", linear, 7.5, 75},
		{"Clamped below range", Parse("10:2,90:8"), 0, 10},
		{"Clamped above range", Parse("10:2,90:8"), 10, 90},
		{"Non-linear lower segment", Parse("0:0,50:8,100:10"), 5, 31},
		{"Degenerate duplicate voltages", Parse("20:5,80:5,100:10"), 5, 80},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			require.True(t, tc.table.Usable())
			assert.Equal(t, tc.expected, tc.table.DutyForVoltage(tc.voltage))
		})
	}
}

func TestPoints_ReturnsACopy(t *testing.T) {
	table := Parse("0:0,100:10")

	points := table.Points()
	points[0].Voltage = 99

	assert.Equal(t, 0.0, table.Points()[0].Voltage)
}

// Package caltable maps PWM duty cycles to measured output voltages and
// inverts that mapping for calibration. Tables arrive as compact text
// ("duty:voltage,duty:voltage,...") produced by the calibration workflow.
package caltable

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"
)

// FullScaleVoltage is the output voltage corresponding to a 100% target.
const FullScaleVoltage = 10.0

// voltageEpsilon is the bracket width below which two calibration points are
// treated as measuring the same voltage.
const voltageEpsilon = 0.001

// Point is one calibration measurement.
type Point struct {
	Duty    int     // PWM duty cycle, 0-100
	Voltage float64 // measured output, 0-20V
}

// Table is a set of calibration points, unique by duty and sorted by duty.
// A table with fewer than two points carries no calibration information and
// interpolation degrades to identity.
type Table struct {
	points []Point
}

// New builds a table from points, dropping out-of-range entries and keeping
// the last point for a duplicated duty cycle.
func New(points []Point) Table {
	byDuty := make(map[int]float64, len(points))
	for _, p := range points {
		if p.Duty < 0 || p.Duty > 100 || p.Voltage < 0 || p.Voltage > 20 {
			continue
		}
		byDuty[p.Duty] = p.Voltage
	}

	sorted := make([]Point, 0, len(byDuty))
	for duty, voltage := range byDuty {
		sorted = append(sorted, Point{Duty: duty, Voltage: voltage})
	}
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Duty < sorted[j].Duty })
	return Table{points: sorted}
}

// Parse reads the "duty:voltage,duty:voltage" text form. Malformed or
// out-of-range pairs are dropped individually; they are never an error. A
// text that yields fewer than two valid points simply produces a table with
// no usable calibration.
func Parse(text string) Table {
	var points []Point
	for _, pair := range strings.Split(text, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		parts := strings.Split(pair, ":")
		if len(parts) != 2 {
			log.Warn().Str("pair", pair).Msg("Dropping malformed calibration pair")
			continue
		}
		duty, err := strconv.Atoi(strings.TrimSpace(parts[0]))
		if err != nil {
			log.Warn().Str("pair", pair).Msg("Dropping calibration pair with bad duty cycle")
			continue
		}
		voltage, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
		if err != nil {
			log.Warn().Str("pair", pair).Msg("Dropping calibration pair with bad voltage")
			continue
		}
		if duty < 0 || duty > 100 || voltage < 0 || voltage > 20 {
			log.Warn().Str("pair", pair).Msg("Dropping out-of-range calibration pair")
			continue
		}
		points = append(points, Point{Duty: duty, Voltage: voltage})
	}
	return New(points)
}

// Usable reports whether the table has enough points to interpolate.
func (t Table) Usable() bool {
	return len(t.points) >= 2
}

// Len returns the number of valid points.
func (t Table) Len() int {
	return len(t.points)
}

// Points returns a copy of the sorted calibration points.
func (t Table) Points() []Point {
	out := make([]Point, len(t.points))
	copy(out, t.points)
	return out
}

// String re-serializes the table in the text form accepted by Parse.
func (t Table) String() string {
	pairs := make([]string, 0, len(t.points))
	for _, p := range t.points {
		pairs = append(pairs, fmt.Sprintf("%d:%s", p.Duty, strconv.FormatFloat(p.Voltage, 'f', -1, 64)))
	}
	return strings.Join(pairs, ",")
}

// DutyForVoltage answers "what duty cycle produces targetVoltage". The target
// is clamped to the table's voltage range, then the tightest bracketing pair
// is interpolated linearly. Callers must check Usable first; an unusable
// table has no meaningful answer.
func (t Table) DutyForVoltage(targetVoltage float64) int {
	minV, maxV := t.points[0].Voltage, t.points[0].Voltage
	for _, p := range t.points[1:] {
		minV = math.Min(minV, p.Voltage)
		maxV = math.Max(maxV, p.Voltage)
	}
	targetVoltage = math.Max(minV, math.Min(maxV, targetVoltage))

	// Tightest bracket: the largest voltage not exceeding the target and the
	// smallest voltage not below it. Points are sorted by duty, not voltage,
	// so scan the whole table.
	var lower, upper *Point
	for i := range t.points {
		p := t.points[i]
		if p.Voltage <= targetVoltage {
			if lower == nil || p.Voltage >= lower.Voltage {
				lower = &t.points[i]
			}
		}
		if p.Voltage >= targetVoltage {
			if upper == nil || p.Voltage < upper.Voltage {
				upper = &t.points[i]
			}
		}
	}

	if lower == nil {
		return t.points[0].Duty
	}
	if upper == nil {
		return t.points[len(t.points)-1].Duty
	}
	if math.Abs(upper.Voltage-lower.Voltage) < voltageEpsilon {
		return lower.Duty
	}

	ratio := (targetVoltage - lower.Voltage) / (upper.Voltage - lower.Voltage)
	return int(math.Round(float64(lower.Duty) + ratio*float64(upper.Duty-lower.Duty)))
}

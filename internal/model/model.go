package model

import "github.com/homehab/hrv-controller/internal/caltable"

// GpioSource selects which logical signal drives a physical PWM channel.
type GpioSource string

const (
	SourceBasePower GpioSource = "base_power"
	SourceIntake    GpioSource = "intake"
	SourceExhaust   GpioSource = "exhaust"
	SourceRawTest   GpioSource = "raw_test"
	SourceOff       GpioSource = "off"
)

// Valid reports whether s is one of the known routing sources.
func (s GpioSource) Valid() bool {
	switch s {
	case SourceBasePower, SourceIntake, SourceExhaust, SourceRawTest, SourceOff:
		return true
	}
	return false
}

// BypassState is the position of the heat-exchanger bypass valve.
type BypassState string

const (
	BypassOpen   BypassState = "open"   // air skips the heat exchanger
	BypassClosed BypassState = "closed" // air passes through the exchanger
)

const PowerOff = 0

// ControlState is one immutable snapshot per evaluation tick. Pipeline stages
// take it by value and return a copy with only their own output fields
// changed; nothing mutates a snapshot in place.
type ControlState struct {
	// Control modes
	ManualMode          bool
	TemporaryManualMode bool
	TemporaryBoostMode  bool

	// Thresholds
	HumidityThreshold int
	CO2ThresholdLow   int
	CO2ThresholdMid   int
	CO2ThresholdHigh  int

	// Power levels (0-100)
	ManualPower int
	PowerLow    int
	PowerMid    int
	PowerHigh   int

	// Sensor aggregates
	AirHumidity        int
	CO2                int
	Smoke              bool
	Gas                bool
	InsideTemperature  float64
	OutsideTemperature float64

	// Bypass configuration; Bypass is the one value carried across ticks.
	PreferredTemperature float64
	BypassHysteresis     float64
	Bypass               BypassState

	// Balance configuration
	IntakeExhaustRatio int

	// Routing configuration
	SourceGpioA  GpioSource
	SourceGpioB  GpioSource
	RawTestValue int

	// Calibration tables
	CalibrationTableA caltable.Table
	CalibrationTableB caltable.Table

	// Computed outputs, written in pipeline order.
	OutputPower   int
	OutputIntake  int
	OutputExhaust int
	OutputGpioA   int
	OutputGpioB   int
}

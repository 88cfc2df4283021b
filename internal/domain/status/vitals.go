package status

import (
	"fmt"
	"time"
)

// Level is the classification of a vital sign against its normal range.
type Level string

const (
	LevelLow    Level = "low"
	LevelNormal Level = "normal"
	LevelHigh   Level = "high"
)

// Vital sign names used as keys into the normal range table.
const (
	VitalTemperature      = "temperature"
	VitalHeartRate        = "heartRate"
	VitalSystolic         = "systolic"
	VitalDiastolic        = "diastolic"
	VitalRespiratoryRate  = "respiratoryRate"
	VitalOxygenSaturation = "oxygenSaturation"
)

// Range is an inclusive [Low, High] normal range.
type Range struct {
	Low  float64 `json:"low"`
	High float64 `json:"high"`
}

var normalRanges = map[string]Range{
	VitalTemperature:      {Low: 97, High: 99},
	VitalHeartRate:        {Low: 60, High: 100},
	VitalSystolic:         {Low: 90, High: 140},
	VitalDiastolic:        {Low: 60, High: 90},
	VitalRespiratoryRate:  {Low: 12, High: 20},
	VitalOxygenSaturation: {Low: 95, High: 100},
}

// NormalRange returns the normal range for the named vital sign.
func NormalRange(name string) (Range, bool) {
	r, ok := normalRanges[name]
	return r, ok
}

// ClassifyVital compares value against the normal range of the named vital.
// Names without a range classify as normal.
func ClassifyVital(name string, value float64) Level {
	r, ok := normalRanges[name]
	if !ok {
		return LevelNormal
	}
	switch {
	case value < r.Low:
		return LevelLow
	case value > r.High:
		return LevelHigh
	default:
		return LevelNormal
	}
}

// Snapshot is one set of vital signs captured at TakenAt.
type Snapshot struct {
	Temperature      float64   `json:"temperature" yaml:"temperature"`
	HeartRate        float64   `json:"heart_rate" yaml:"heart_rate"`
	Systolic         float64   `json:"systolic" yaml:"systolic"`
	Diastolic        float64   `json:"diastolic" yaml:"diastolic"`
	RespiratoryRate  float64   `json:"respiratory_rate" yaml:"respiratory_rate"`
	OxygenSaturation float64   `json:"oxygen_saturation" yaml:"oxygen_saturation"`
	PainLevel        int       `json:"pain_level" yaml:"pain_level"`
	TakenAt          time.Time `json:"taken_at" yaml:"-"`
}

// Reading is a single classified vital sign.
type Reading struct {
	Name   string  `json:"name"`
	Value  float64 `json:"value"`
	Level  Level   `json:"level"`
	Normal Range   `json:"normal"`
}

// Readings classifies every ranged field of the snapshot, in display order.
func (s Snapshot) Readings() []Reading {
	values := []struct {
		name string
		v    float64
	}{
		{VitalTemperature, s.Temperature},
		{VitalHeartRate, s.HeartRate},
		{VitalSystolic, s.Systolic},
		{VitalDiastolic, s.Diastolic},
		{VitalRespiratoryRate, s.RespiratoryRate},
		{VitalOxygenSaturation, s.OxygenSaturation},
	}
	out := make([]Reading, 0, len(values))
	for _, x := range values {
		out = append(out, Reading{
			Name:   x.name,
			Value:  x.v,
			Level:  ClassifyVital(x.name, x.v),
			Normal: normalRanges[x.name],
		})
	}
	return out
}

// Abnormal reports whether any ranged field falls outside its normal range.
func (s Snapshot) Abnormal() bool {
	for _, r := range s.Readings() {
		if r.Level != LevelNormal {
			return true
		}
	}
	return false
}

// Validate checks the pain scale and rejects negative measurements.
func (s Snapshot) Validate() error {
	if s.PainLevel < 0 || s.PainLevel > 10 {
		return fmt.Errorf("pain_level must be between 0 and 10, got %d", s.PainLevel)
	}
	for _, f := range []float64{s.Temperature, s.HeartRate, s.Systolic, s.Diastolic, s.RespiratoryRate, s.OxygenSaturation} {
		if f < 0 {
			return fmt.Errorf("vital sign values must not be negative")
		}
	}
	return nil
}

// String formats the snapshot the way it is charted, e.g.
// "Temperature 98.6°F, BP 120/80, HR 72, RR 16, O2 Sat 98%".
func (s Snapshot) String() string {
	return fmt.Sprintf("Temperature %g°F, BP %g/%g, HR %g, RR %g, O2 Sat %g%%",
		s.Temperature, s.Systolic, s.Diastolic, s.HeartRate, s.RespiratoryRate, s.OxygenSaturation)
}

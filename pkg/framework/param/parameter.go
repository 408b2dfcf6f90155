// Package param declares the automatable parameters a plugin exposes to its
// host and gives the audio thread lock-free access to their values.
package param

import (
	"fmt"
	"math"
	"strconv"
	"sync/atomic"
)

// Parameter represents a plugin parameter. The value is stored normalized
// (0-1) and may be read from the audio thread while the host writes it.
type Parameter struct {
	ID           uint32
	Name         string
	ShortName    string
	Unit         string
	Min          float64
	Max          float64
	DefaultValue float64 // normalized
	StepCount    int32   // 0 for continuous, otherwise number of steps between Min and Max
	Flags        uint32

	value atomic.Uint64

	formatFunc func(float64) string
	parseFunc  func(string) (float64, error)
}

// Parameter flags, with the bit values VST3 hosts expect.
const (
	CanAutomate uint32 = 1 << 0
	IsList      uint32 = 1 << 3
	IsBypass    uint32 = 1 << 16
)

// GetValue returns the normalized value.
func (p *Parameter) GetValue() float64 {
	return math.Float64frombits(p.value.Load())
}

// SetValue sets the normalized value, clamped to 0-1. Discrete parameters
// snap to the nearest step.
func (p *Parameter) SetValue(value float64) {
	if math.IsNaN(value) || value < 0 {
		value = 0
	} else if value > 1 {
		value = 1
	}
	if p.StepCount > 0 {
		steps := float64(p.StepCount)
		value = math.Round(value*steps) / steps
	}
	p.value.Store(math.Float64bits(value))
}

// GetPlainValue returns the value in the parameter's own range.
func (p *Parameter) GetPlainValue() float64 {
	return p.Denormalize(p.GetValue())
}

// SetPlainValue sets the value in the parameter's own range.
func (p *Parameter) SetPlainValue(plain float64) {
	p.SetValue(p.Normalize(plain))
}

// GetIntValue returns the plain value rounded to the nearest integer, for
// discrete parameters such as note numbers and list indexes.
func (p *Parameter) GetIntValue() int {
	return int(math.Round(p.GetPlainValue()))
}

// ResetToDefault restores the default value.
func (p *Parameter) ResetToDefault() {
	p.SetValue(p.DefaultValue)
}

// FormatValue renders a normalized value for display.
func (p *Parameter) FormatValue(normalized float64) string {
	plain := p.Denormalize(normalized)

	if p.formatFunc != nil {
		return p.formatFunc(plain)
	}
	if p.StepCount > 0 {
		return fmt.Sprintf("%.0f", plain)
	}
	return fmt.Sprintf("%.2f", plain)
}

// ParseValue reads a displayed value back into a normalized one.
func (p *Parameter) ParseValue(str string) (float64, error) {
	parse := p.parseFunc
	if parse == nil {
		parse = func(s string) (float64, error) { return strconv.ParseFloat(s, 64) }
	}
	plain, err := parse(str)
	if err != nil {
		return 0, fmt.Errorf("parameter %q: %w", p.Name, err)
	}
	return p.Normalize(plain), nil
}

// Normalize maps a plain value into 0-1, clamping.
func (p *Parameter) Normalize(plain float64) float64 {
	if p.Max <= p.Min {
		return 0
	}
	normalized := (plain - p.Min) / (p.Max - p.Min)
	if normalized < 0 {
		return 0
	}
	if normalized > 1 {
		return 1
	}
	return normalized
}

// Denormalize converts normalized (0-1) to plain value. Discrete parameters
// land exactly on a step.
func (p *Parameter) Denormalize(normalized float64) float64 {
	if p.StepCount > 0 {
		steps := float64(p.StepCount)
		return p.Min + math.Round(normalized*steps)*(p.Max-p.Min)/steps
	}
	return p.Min + normalized*(p.Max-p.Min)
}

// Package pulse simulates light pulses traveling along a tube.
//
// A pulse is a scalar position along its tube. It advances a fixed speed per
// frame and, once it has fully left the tube, restarts at a random negative
// position with freshly sampled speed, length and intensity. Visibility is a
// pure function of position; there is no separate active flag.
package pulse

import (
	"fmt"
	"math"
)

// Source is the randomness a Simulator draws from. *math/rand.Rand satisfies it.
type Source interface {
	// Float64 returns a value in [0, 1).
	Float64() float64
}

// Pulse is a bright span moving along a tube.
type Pulse struct {
	Position  float64 `json:"position"`  // Distance of the tail from the tube start; negative before entry
	Speed     float64 `json:"speed"`     // Distance per frame
	Length    float64 `json:"length"`    // Visible span
	Intensity float64 `json:"intensity"` // Brightness multiplier
}

// Expired reports whether the pulse has completely left a tube of the given length.
func (p Pulse) Expired(totalLength float64) bool {
	return p.Position > totalLength+p.Length
}

// Visible reports whether [Position, Position+Length] touches [0, totalLength].
func (p Pulse) Visible(totalLength float64) bool {
	return p.Position+p.Length >= 0 && p.Position <= totalLength
}

// Span returns the lit part of the tube, clipped to [0, totalLength].
// ok is false when the clipped span is empty.
func (p Pulse) Span(totalLength float64) (from, to float64, ok bool) {
	from = math.Max(0, p.Position)
	to = math.Min(totalLength, p.Position+p.Length)
	if from >= to {
		return 0, 0, false
	}
	return from, to, true
}

// Params holds the sampling ranges. Each range is [Min, Max).
type Params struct {
	SpeedMin, SpeedMax         float64
	LengthMin, LengthMax       float64
	IntensityMin, IntensityMax float64

	// A reset pulse restarts in [-(ResetMin+ResetRange+extra), -(ResetMin+extra)]
	// with extra = index*ResetStagger, so later tubes restart further back.
	ResetMin, ResetRange, ResetStagger float64

	// A spawned pulse starts at -(rand*InitialJitter) - index*InitialStagger.
	InitialJitter, InitialStagger float64
}

// DefaultParams are the stock ranges.
var DefaultParams = Params{
	SpeedMin: 1.5, SpeedMax: 3.5,
	LengthMin: 80, LengthMax: 120,
	IntensityMin: 0.8, IntensityMax: 1.0,
	ResetMin: 100, ResetRange: 400, ResetStagger: 10,
	InitialJitter: 500, InitialStagger: 30,
}

// Validate checks that every range is ordered and resets land strictly before the tube.
func (p Params) Validate() error {
	switch {
	case p.SpeedMin <= 0 || p.SpeedMax < p.SpeedMin:
		return fmt.Errorf("pulse: speed range [%v, %v] invalid", p.SpeedMin, p.SpeedMax)
	case p.LengthMin <= 0 || p.LengthMax < p.LengthMin:
		return fmt.Errorf("pulse: length range [%v, %v] invalid", p.LengthMin, p.LengthMax)
	case p.IntensityMax < p.IntensityMin:
		return fmt.Errorf("pulse: intensity range [%v, %v] invalid", p.IntensityMin, p.IntensityMax)
	case p.ResetMin <= 0:
		return fmt.Errorf("pulse: reset minimum %v must be positive", p.ResetMin)
	case p.ResetRange < 0 || p.ResetStagger < 0 || p.InitialJitter < 0 || p.InitialStagger < 0:
		return fmt.Errorf("pulse: reset and initial offsets must not be negative")
	}
	return nil
}

// Simulator samples and advances pulses.
type Simulator struct {
	params Params
	rng    Source
}

// NewSimulator creates a simulator drawing from rng.
func NewSimulator(params Params, rng Source) (*Simulator, error) {
	if rng == nil {
		return nil, fmt.Errorf("pulse: nil random source")
	}
	if err := params.Validate(); err != nil {
		return nil, err
	}
	return &Simulator{params: params, rng: rng}, nil
}

// Params returns the sampling ranges.
func (s *Simulator) Params() Params {
	return s.params
}

// Spawn creates the first pulse of the tube at index. Its start is pushed back
// proportionally to the index so neighbouring tubes do not fire in sync.
func (s *Simulator) Spawn(index int) Pulse {
	p := s.sample()
	p.Position = -s.rng.Float64()*s.params.InitialJitter - float64(index)*s.params.InitialStagger
	return p
}

// Advance moves p one frame along a tube of totalLength. When the pulse has
// left the tube it is resampled instead and Advance returns true.
func (s *Simulator) Advance(p *Pulse, totalLength float64, index int) (reset bool) {
	p.Position += p.Speed
	if !p.Expired(totalLength) {
		return false
	}
	s.Reset(p, index)
	return true
}

// Reset resamples p to a new strictly negative position.
func (s *Simulator) Reset(p *Pulse, index int) {
	*p = s.sample()
	extra := float64(index) * s.params.ResetStagger
	p.Position = -(s.params.ResetMin + extra) - s.rng.Float64()*s.params.ResetRange
}

// sample draws speed, length and intensity.
func (s *Simulator) sample() Pulse {
	return Pulse{
		Speed:     s.between(s.params.SpeedMin, s.params.SpeedMax),
		Length:    s.between(s.params.LengthMin, s.params.LengthMax),
		Intensity: s.between(s.params.IntensityMin, s.params.IntensityMax),
	}
}

func (s *Simulator) between(lo, hi float64) float64 {
	return lo + s.rng.Float64()*(hi-lo)
}

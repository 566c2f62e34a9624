package world

import "math"

// Terrain is a procedural height field: a flat base with optional
// sinusoidal relief.
type Terrain struct {
	Base       float64 `yaml:"base"`
	Amplitude  float64 `yaml:"amplitude"`
	Wavelength float64 `yaml:"wavelength"`
}

// SampleHeight implements HeightSampler.
func (t Terrain) SampleHeight(x, z float64) float64 {
	if t.Amplitude == 0 || t.Wavelength <= 0 {
		return t.Base
	}
	return t.Base + t.Amplitude*math.Sin(x/t.Wavelength)*math.Cos(z/t.Wavelength)
}

package phosphor

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
)

// EffectConfig holds the tunables of one compositor. A copy is taken at the
// start of every frame, so passes always see a consistent snapshot.
type EffectConfig struct {
	ScanlineIntensity float64 `json:"scanlineIntensity"` // 0..1
	ScanlineCount     int     `json:"scanlineCount"`     // > 0
	Curvature         float64 `json:"curvature"`         // 0..1
	VignetteIntensity float64 `json:"vignetteIntensity"` // 0..1
	GlowIntensity     float64 `json:"glowIntensity"`     // >= 0, 0 disables the glow pass
	FlickerSpeed      float64 `json:"flickerSpeed"`      // > 0
	ChromaAberration  float64 `json:"chromaAberration"`  // >= 0
	Enabled           bool    `json:"enabled"`
}

// DefaultEffectConfig returns the stock green-screen tuning
func DefaultEffectConfig() EffectConfig {
	return EffectConfig{
		ScanlineIntensity: 0.15,
		ScanlineCount:     800,
		Curvature:         0.05,
		VignetteIntensity: 0.3,
		GlowIntensity:     0.4,
		FlickerSpeed:      0.03,
		ChromaAberration:  0.002,
		Enabled:           true,
	}
}

// EffectPatch names a subset of EffectConfig fields to replace.
// Nil fields are left untouched by Merge.
type EffectPatch struct {
	ScanlineIntensity *float64 `json:"scanlineIntensity,omitempty"`
	ScanlineCount     *int     `json:"scanlineCount,omitempty"`
	Curvature         *float64 `json:"curvature,omitempty"`
	VignetteIntensity *float64 `json:"vignetteIntensity,omitempty"`
	GlowIntensity     *float64 `json:"glowIntensity,omitempty"`
	FlickerSpeed      *float64 `json:"flickerSpeed,omitempty"`
	ChromaAberration  *float64 `json:"chromaAberration,omitempty"`
	Enabled           *bool    `json:"enabled,omitempty"`
}

// Float and Int are helpers for building an EffectPatch literal
func Float(v float64) *float64 { return &v }
func Int(v int) *int           { return &v }
func Bool(v bool) *bool        { return &v }

// Merge returns c with every non-nil field of p applied, then normalized.
func (c EffectConfig) Merge(p EffectPatch) EffectConfig {
	prev := c
	if p.ScanlineIntensity != nil {
		c.ScanlineIntensity = *p.ScanlineIntensity
	}
	if p.ScanlineCount != nil {
		c.ScanlineCount = *p.ScanlineCount
	}
	if p.Curvature != nil {
		c.Curvature = *p.Curvature
	}
	if p.VignetteIntensity != nil {
		c.VignetteIntensity = *p.VignetteIntensity
	}
	if p.GlowIntensity != nil {
		c.GlowIntensity = *p.GlowIntensity
	}
	if p.FlickerSpeed != nil {
		c.FlickerSpeed = *p.FlickerSpeed
	}
	if p.ChromaAberration != nil {
		c.ChromaAberration = *p.ChromaAberration
	}
	if p.Enabled != nil {
		c.Enabled = *p.Enabled
	}
	return c.normalize(prev)
}

// Normalize clamps every field into its documented range. Fields that cannot
// be clamped meaningfully (a non-positive count or speed) fall back to the
// defaults.
func (c EffectConfig) Normalize() EffectConfig {
	return c.normalize(DefaultEffectConfig())
}

// normalize clamps unit-range fields and restores count/speed from fallback
// when the new value is out of range.
func (c EffectConfig) normalize(fallback EffectConfig) EffectConfig {
	c.ScanlineIntensity = clamp01(c.ScanlineIntensity)
	c.Curvature = clamp01(c.Curvature)
	c.VignetteIntensity = clamp01(c.VignetteIntensity)
	c.GlowIntensity = nonNegative(c.GlowIntensity)
	c.ChromaAberration = nonNegative(c.ChromaAberration)
	if c.ScanlineCount <= 0 {
		c.ScanlineCount = fallback.ScanlineCount
	}
	if !(c.FlickerSpeed > 0) || math.IsInf(c.FlickerSpeed, 0) {
		c.FlickerSpeed = fallback.FlickerSpeed
	}
	return c
}

func nonNegative(v float64) float64 {
	if v < 0 || math.IsNaN(v) {
		return 0
	}
	return v
}

// LoadConfig reads a JSON effect configuration. Keys missing from the file
// keep their default values; out-of-range values are clamped.
func LoadConfig(path string) (EffectConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return EffectConfig{}, fmt.Errorf("phosphor: reading config: %w", err)
	}
	var patch EffectPatch
	if err := json.Unmarshal(data, &patch); err != nil {
		return EffectConfig{}, fmt.Errorf("phosphor: parsing config %s: %w", path, err)
	}
	return DefaultEffectConfig().Merge(patch), nil
}

package phosphor

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultEffectConfig(t *testing.T) {
	cfg := DefaultEffectConfig()
	if cfg.ScanlineIntensity != 0.15 || cfg.ScanlineCount != 800 || cfg.Curvature != 0.05 {
		t.Errorf("Unexpected scanline/curvature defaults: %+v", cfg)
	}
	if cfg.VignetteIntensity != 0.3 || cfg.GlowIntensity != 0.4 {
		t.Errorf("Unexpected vignette/glow defaults: %+v", cfg)
	}
	if cfg.FlickerSpeed != 0.03 || cfg.ChromaAberration != 0.002 || !cfg.Enabled {
		t.Errorf("Unexpected flicker/aberration/enabled defaults: %+v", cfg)
	}
	if cfg.Normalize() != cfg {
		t.Error("Defaults should already be normalized")
	}
}

func TestMergeClamps(t *testing.T) {
	tests := []struct {
		name  string
		patch EffectPatch
		check func(EffectConfig) bool
	}{
		{"intensity above range", EffectPatch{ScanlineIntensity: Float(5)}, func(c EffectConfig) bool { return c.ScanlineIntensity == 1 }},
		{"intensity below range", EffectPatch{ScanlineIntensity: Float(-2)}, func(c EffectConfig) bool { return c.ScanlineIntensity == 0 }},
		{"curvature above range", EffectPatch{Curvature: Float(1.5)}, func(c EffectConfig) bool { return c.Curvature == 1 }},
		{"vignette below range", EffectPatch{VignetteIntensity: Float(-0.1)}, func(c EffectConfig) bool { return c.VignetteIntensity == 0 }},
		{"glow negative", EffectPatch{GlowIntensity: Float(-3)}, func(c EffectConfig) bool { return c.GlowIntensity == 0 }},
		{"glow unbounded above", EffectPatch{GlowIntensity: Float(7)}, func(c EffectConfig) bool { return c.GlowIntensity == 7 }},
		{"aberration negative", EffectPatch{ChromaAberration: Float(-1)}, func(c EffectConfig) bool { return c.ChromaAberration == 0 }},
		{"count zero keeps previous", EffectPatch{ScanlineCount: Int(0)}, func(c EffectConfig) bool { return c.ScanlineCount == 400 }},
		{"speed zero keeps previous", EffectPatch{FlickerSpeed: Float(0)}, func(c EffectConfig) bool { return c.FlickerSpeed == 0.05 }},
		{"disable", EffectPatch{Enabled: Bool(false)}, func(c EffectConfig) bool { return !c.Enabled }},
	}

	base := DefaultEffectConfig().Merge(EffectPatch{ScanlineCount: Int(400), FlickerSpeed: Float(0.05)})
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := base.Merge(tc.patch)
			if !tc.check(got) {
				t.Errorf("Merge produced %+v", got)
			}
		})
	}
}

func TestMergeLeavesUnsetFields(t *testing.T) {
	base := DefaultEffectConfig()
	got := base.Merge(EffectPatch{GlowIntensity: Float(0)})
	want := base
	want.GlowIntensity = 0
	if got != want {
		t.Errorf("Expected only glow to change, got %+v", got)
	}
}

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "crt.json")
	data := `{"scanlineCount": 400, "scanlineIntensity": 5, "enabled": false}`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.ScanlineCount != 400 {
		t.Errorf("Expected scanlineCount 400, got %d", cfg.ScanlineCount)
	}
	if cfg.ScanlineIntensity != 1 {
		t.Errorf("Expected clamped intensity 1, got %v", cfg.ScanlineIntensity)
	}
	if cfg.Enabled {
		t.Error("Expected enabled=false from file")
	}
	if cfg.VignetteIntensity != DefaultEffectConfig().VignetteIntensity {
		t.Errorf("Expected default vignette, got %v", cfg.VignetteIntensity)
	}
}

func TestLoadConfigErrors(t *testing.T) {
	dir := t.TempDir()
	if _, err := LoadConfig(filepath.Join(dir, "missing.json")); err == nil {
		t.Error("Expected error for missing file")
	}

	bad := filepath.Join(dir, "bad.json")
	if err := os.WriteFile(bad, []byte("{scanlineCount"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadConfig(bad); err == nil {
		t.Error("Expected error for malformed JSON")
	}
}

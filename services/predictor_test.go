package services

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"

	"campus-facilities-api/config"
)

type fakeModel struct {
	nh3 float64
	h2s float64
}

func (m fakeModel) Predict(temperature, humidity float64) (float64, float64) {
	return m.nh3, m.h2s
}

func (m fakeModel) Version() string { return "fake" }

func testAlertConfig() config.AlertConfig {
	return config.AlertConfig{
		SustainSeconds:     60,
		AmmoniaMaxPPM:      5.0,
		H2SMaxPPM:          0.1,
		ModerateMultiplier: 1.5,
		StrongMultiplier:   2.0,
	}
}

func TestNormalize(t *testing.T) {
	cases := []struct {
		name  string
		value float64
		max   float64
		want  float64
	}{
		{"zero", 0, 5.0, 0},
		{"negative clamps to zero", -1.2, 5.0, 0},
		{"midpoint", 2.5, 5.0, 50},
		{"at max", 5.0, 5.0, 100},
		{"above max clamps to hundred", 9.3, 5.0, 100},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Normalize(tc.value, tc.max); got != tc.want {
				t.Errorf("Normalize(%v, %v) = %v, want %v", tc.value, tc.max, got, tc.want)
			}
		})
	}
}

func TestFusedScore(t *testing.T) {
	p := NewThresholdPredictor(fakeModel{}, testAlertConfig())

	// 2.5/5.0 -> 50, 0.05/0.1 -> 50, fused 50
	if got := p.FusedScore(2.5, 0.05); got != 50 {
		t.Errorf("FusedScore(2.5, 0.05) = %v, want 50", got)
	}

	// Both gases past their maxima clamp to 100
	if got := p.FusedScore(12.0, 0.5); got != 100 {
		t.Errorf("FusedScore(12, 0.5) = %v, want 100", got)
	}
}

func TestFusedScoreIdempotent(t *testing.T) {
	p := NewThresholdPredictor(fakeModel{}, testAlertConfig())

	first := p.FusedScore(1.7, 0.033)
	second := p.FusedScore(1.7, 0.033)
	if first != second {
		t.Errorf("same inputs produced %v then %v", first, second)
	}
}

func TestPredictThresholds(t *testing.T) {
	p := NewThresholdPredictor(fakeModel{nh3: 1.0, h2s: 0.02}, testAlertConfig())

	got := p.PredictThresholds(25.0, 60.0)

	// norm NH3 = 20, norm H2S = 20, fused 20, moderate 30, strong 40
	if got.BaselineFused != 20 {
		t.Errorf("BaselineFused = %v, want 20", got.BaselineFused)
	}
	if got.ScoreModerate != 30 {
		t.Errorf("ScoreModerate = %v, want 30", got.ScoreModerate)
	}
	if got.ScoreStrong != 40 {
		t.Errorf("ScoreStrong = %v, want 40", got.ScoreStrong)
	}
}

func TestPredictThresholdsOrderingAndClamp(t *testing.T) {
	cases := []struct {
		name  string
		model fakeModel
	}{
		{"low baseline", fakeModel{nh3: 0.4, h2s: 0.005}},
		{"mid baseline", fakeModel{nh3: 2.5, h2s: 0.05}},
		{"saturated baseline", fakeModel{nh3: 5.0, h2s: 0.1}},
		{"beyond maxima", fakeModel{nh3: 20.0, h2s: 3.0}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := NewThresholdPredictor(tc.model, testAlertConfig())
			got := p.PredictThresholds(30.0, 70.0)

			if got.BaselineFused < 0 || got.BaselineFused > 100 {
				t.Errorf("BaselineFused %v outside [0, 100]", got.BaselineFused)
			}
			if got.ScoreModerate < got.BaselineFused {
				t.Errorf("ScoreModerate %v < BaselineFused %v", got.ScoreModerate, got.BaselineFused)
			}
			if got.ScoreStrong < got.ScoreModerate {
				t.Errorf("ScoreStrong %v < ScoreModerate %v", got.ScoreStrong, got.ScoreModerate)
			}
			if got.ScoreStrong > 100 {
				t.Errorf("ScoreStrong %v exceeds 100", got.ScoreStrong)
			}
		})
	}
}

func TestLoadRidgeModel(t *testing.T) {
	path := filepath.Join(t.TempDir(), "model.json")
	artifact := `{
		"version": "ridge-2026-01",
		"weights": [[0.1, 0.02], [0.001, 0.0005]],
		"intercepts": [0.5, 0.01]
	}`
	if err := os.WriteFile(path, []byte(artifact), 0o600); err != nil {
		t.Fatalf("write artifact: %v", err)
	}

	model, err := LoadRidgeModel(path)
	if err != nil {
		t.Fatalf("LoadRidgeModel failed: %v", err)
	}
	if model.Version() != "ridge-2026-01" {
		t.Errorf("Version() = %q, want %q", model.Version(), "ridge-2026-01")
	}

	nh3, h2s := model.Predict(25.0, 60.0)
	if math.Abs(nh3-4.2) > 1e-9 {
		t.Errorf("nh3 = %v, want 4.2", nh3)
	}
	if math.Abs(h2s-0.065) > 1e-9 {
		t.Errorf("h2s = %v, want 0.065", h2s)
	}
}

func TestLoadRidgeModelMissingFile(t *testing.T) {
	_, err := LoadRidgeModel(filepath.Join(t.TempDir(), "nope.json"))
	if !errors.Is(err, ErrModelUnavailable) {
		t.Errorf("expected ErrModelUnavailable, got %v", err)
	}
}

func TestLoadRidgeModelBadShape(t *testing.T) {
	path := filepath.Join(t.TempDir(), "model.json")
	artifact := `{"weights": [[0.1]], "intercepts": [0.5, 0.01]}`
	if err := os.WriteFile(path, []byte(artifact), 0o600); err != nil {
		t.Fatalf("write artifact: %v", err)
	}

	_, err := LoadRidgeModel(path)
	if !errors.Is(err, ErrModelUnavailable) {
		t.Errorf("expected ErrModelUnavailable, got %v", err)
	}
}

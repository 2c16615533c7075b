package services

import (
	"encoding/json"
	"fmt"
	"log"
	"math"
	"os"

	"campus-facilities-api/config"

	"gonum.org/v1/gonum/mat"
)

// RegressionModel maps environmental conditions to expected gas baselines.
// The production implementation is a ridge regression trained offline; tests
// substitute a fixed-output fake.
type RegressionModel interface {
	// Predict returns (baseline_nh3, baseline_h2s) in ppm for the given
	// temperature (Celsius) and relative humidity (percent).
	Predict(temperature, humidity float64) (float64, float64)
	Version() string
}

type ridgeModel struct {
	weights    *mat.Dense    // 2x2: rows = outputs (nh3, h2s), cols = features (temp, humidity)
	intercepts *mat.VecDense // length 2
	version    string
}

type modelArtifact struct {
	Version    string      `json:"version"`
	Weights    [][]float64 `json:"weights"`
	Intercepts []float64   `json:"intercepts"`
}

// LoadRidgeModel reads the regression artifact from disk. The artifact is
// loaded once at startup and shared read-only afterwards. Any failure is
// reported as ErrModelUnavailable.
func LoadRidgeModel(path string) (RegressionModel, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %v", ErrModelUnavailable, path, err)
	}

	var artifact modelArtifact
	if err := json.Unmarshal(data, &artifact); err != nil {
		return nil, fmt.Errorf("%w: parse %s: %v", ErrModelUnavailable, path, err)
	}
	if len(artifact.Weights) != 2 || len(artifact.Weights[0]) != 2 || len(artifact.Weights[1]) != 2 {
		return nil, fmt.Errorf("%w: expected 2x2 weight matrix in %s", ErrModelUnavailable, path)
	}
	if len(artifact.Intercepts) != 2 {
		return nil, fmt.Errorf("%w: expected 2 intercepts in %s", ErrModelUnavailable, path)
	}

	weights := mat.NewDense(2, 2, []float64{
		artifact.Weights[0][0], artifact.Weights[0][1],
		artifact.Weights[1][0], artifact.Weights[1][1],
	})
	intercepts := mat.NewVecDense(2, []float64{artifact.Intercepts[0], artifact.Intercepts[1]})

	version := artifact.Version
	if version == "" {
		version = "ridge-v1"
	}

	log.Printf("regression model %s loaded from %s", version, path)
	return &ridgeModel{weights: weights, intercepts: intercepts, version: version}, nil
}

func (m *ridgeModel) Predict(temperature, humidity float64) (float64, float64) {
	features := mat.NewVecDense(2, []float64{temperature, humidity})

	var out mat.VecDense
	out.MulVec(m.weights, features)
	out.AddVec(&out, m.intercepts)

	return out.AtVec(0), out.AtVec(1)
}

func (m *ridgeModel) Version() string { return m.version }

// ThresholdPrediction holds the predicted odor baseline and the derived
// alert thresholds, all on the fused 0-100 scale.
type ThresholdPrediction struct {
	BaselineFused float64 `json:"baseline_fused"`
	ScoreModerate float64 `json:"score_moderate"`
	ScoreStrong   float64 `json:"score_strong"`
}

// ThresholdPredictor turns model baselines into fused-score thresholds and
// scores raw readings on the same scale.
type ThresholdPredictor struct {
	model RegressionModel
	cfg   config.AlertConfig
}

func NewThresholdPredictor(model RegressionModel, cfg config.AlertConfig) *ThresholdPredictor {
	return &ThresholdPredictor{model: model, cfg: cfg}
}

// Normalize maps a raw sensor value onto a 0-100 scale against a fixed
// maximum, clamping at both ends.
func Normalize(value, maxValue float64) float64 {
	if value <= 0 {
		return 0
	}
	if value >= maxValue {
		return 100
	}
	return (value / maxValue) * 100
}

// PredictThresholds predicts the odor baseline for the given conditions and
// derives the moderate and strong alert thresholds from it.
func (p *ThresholdPredictor) PredictThresholds(temperature, humidity float64) ThresholdPrediction {
	baselineNH3, baselineH2S := p.model.Predict(temperature, humidity)

	normNH3 := Normalize(baselineNH3, p.cfg.AmmoniaMaxPPM)
	normH2S := Normalize(baselineH2S, p.cfg.H2SMaxPPM)
	fused := normNH3*0.5 + normH2S*0.5

	return ThresholdPrediction{
		BaselineFused: round2(fused),
		ScoreModerate: round2(math.Min(100, fused*p.cfg.ModerateMultiplier)),
		ScoreStrong:   round2(math.Min(100, fused*p.cfg.StrongMultiplier)),
	}
}

// FusedScore combines the raw gas readings into the 0-100 odor score using
// the same normalization and weighting as the thresholds.
func (p *ThresholdPredictor) FusedScore(ammoniaPPM, h2sPPM float64) float64 {
	normNH3 := Normalize(ammoniaPPM, p.cfg.AmmoniaMaxPPM)
	normH2S := Normalize(h2sPPM, p.cfg.H2SMaxPPM)
	return round2(normNH3*0.5 + normH2S*0.5)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

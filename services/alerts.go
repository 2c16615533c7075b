package services

import (
	"fmt"
	"log"
	"sync"
	"time"

	"campus-facilities-api/models"
)

// Alert levels. Level 1 is the normal/terminal state.
const (
	LevelNormal   = 1
	LevelModerate = 2
	LevelStrong   = 3
)

// DefaultDeviceID pins the single deployed sensor unit. Alert state is keyed
// by device id so adding more units later means plumbing an id through the
// ingest path, not reshaping the state store.
const DefaultDeviceID = "esp32-washroom-1"

// AlertDecision is returned from every evaluation, fired or not, so callers
// can always display the current score against the thresholds.
type AlertDecision struct {
	Alert            bool                `json:"alert"`
	Level            int                 `json:"level"`
	Message          string              `json:"message"`
	Score            float64             `json:"score"`
	Thresholds       ThresholdPrediction `json:"thresholds"`
	SustainedSeconds float64             `json:"sustained_seconds"`
}

// deviceState tracks one device's exceedance. Guarded by AlertService.mu:
// concurrent ingests for the same device must serialize their
// read-modify-write or two near-simultaneous readings could both fire.
type deviceState struct {
	level        int
	since        time.Time
	lastNotified int
}

// AlertService decides when a threshold exceedance has persisted long enough
// to be a real alert and dispatches notifications on level escalation.
type AlertService struct {
	mu        sync.Mutex
	devices   map[string]*deviceState
	sustain   time.Duration
	predictor *ThresholdPredictor
	notifier  Notifier
	now       func() time.Time
}

func NewAlertService(predictor *ThresholdPredictor, notifier Notifier, sustainSeconds int) *AlertService {
	return &AlertService{
		devices:   make(map[string]*deviceState),
		sustain:   time.Duration(sustainSeconds) * time.Second,
		predictor: predictor,
		notifier:  notifier,
		now:       time.Now,
	}
}

// Reset returns a device to the initial normal state.
func (s *AlertService) Reset(deviceID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.devices, deviceID)
}

// Evaluate scores a reading against the predicted thresholds and advances the
// device's sustained-alert state machine.
//
// A notification fires only when the instantaneous level is above normal, has
// held for at least the sustain duration, and is higher than the last level
// notified for this device. Returning to normal resets the notified level, so
// a full recovery re-arms every level; a partial drop (3 to 2) does not
// re-notify at 2.
func (s *AlertService) Evaluate(deviceID string, reading *models.SensorReading, thresholds ThresholdPrediction) AlertDecision {
	score := s.predictor.FusedScore(reading.AmmoniaPPM, reading.H2SPPM)

	level := LevelNormal
	switch {
	case score >= thresholds.ScoreStrong:
		level = LevelStrong
	case score >= thresholds.ScoreModerate:
		level = LevelModerate
	}

	now := s.now()

	s.mu.Lock()
	st, ok := s.devices[deviceID]
	if !ok {
		st = &deviceState{level: LevelNormal, since: now}
		s.devices[deviceID] = st
	}

	if level != st.level {
		if level == LevelNormal {
			log.Printf("device %s returned to normal, re-arming alerts", deviceID)
		} else {
			log.Printf("device %s crossed to level %d, sustain timer started", deviceID, level)
		}
		st.level = level
		st.since = now
	}
	if level == LevelNormal {
		st.lastNotified = 0
	}

	sustained := now.Sub(st.since)
	fire := level > LevelNormal && sustained >= s.sustain && level > st.lastNotified
	if fire {
		st.lastNotified = level
	}
	s.mu.Unlock()

	decision := AlertDecision{
		Alert:            fire,
		Level:            level,
		Message:          levelMessage(level, score),
		Score:            score,
		Thresholds:       thresholds,
		SustainedSeconds: sustained.Seconds(),
	}

	if fire {
		s.dispatch(decision, reading)
	}
	return decision
}

func levelMessage(level int, score float64) string {
	switch level {
	case LevelStrong:
		return fmt.Sprintf("Level-3 STRONG odour! Fused score=%.2f. Immediate cleaning needed!", score)
	case LevelModerate:
		return fmt.Sprintf("Level-2 MODERATE odour detected (score=%.2f). Please attend soon.", score)
	default:
		return "Normal conditions"
	}
}

// dispatch sends the notification outside the state lock. Failures are
// logged and swallowed; they never roll back the reading or the state.
func (s *AlertService) dispatch(d AlertDecision, reading *models.SensorReading) {
	body := fmt.Sprintf(
		"Washroom Odour Alert\n\n%s\nNH3=%.2f ppm, H2S=%.2f ppm\nSustained for %.1f seconds",
		d.Message, reading.AmmoniaPPM, reading.H2SPPM, d.SustainedSeconds,
	)

	if err := s.notifier.Send("Washroom Odour Alert", body); err != nil {
		log.Printf("alert notification dispatch failed: %v", err)
		return
	}
	log.Printf("alert notification sent for level %d (score=%.2f)", d.Level, d.Score)
}

package services

import (
	"context"
	"errors"
	"log"
	"time"

	"campus-facilities-api/models"

	"gorm.io/gorm"
)

// Reading list pagination bounds.
const (
	DefaultReadingLimit = 100
	MaxReadingLimit     = 1000
)

// ReadingService owns sensor reading persistence and drives alert
// evaluation as an ingest side effect. Persistence always comes first:
// scoring, alerting and publishing failures never fail the write.
type ReadingService struct {
	db        *gorm.DB
	cache     *CacheService
	predictor *ThresholdPredictor
	alerts    *AlertService
}

// NewReadingService wires the ingest pipeline. predictor and alerts are nil
// when the regression artifact failed to load; ingestion then degrades to
// persist-only.
func NewReadingService(db *gorm.DB, cache *CacheService, predictor *ThresholdPredictor, alerts *AlertService) *ReadingService {
	return &ReadingService{db: db, cache: cache, predictor: predictor, alerts: alerts}
}

// CanEvaluate reports whether the regression model is loaded.
func (s *ReadingService) CanEvaluate() bool {
	return s.predictor != nil && s.alerts != nil
}

// CreateReading persists a reading and then evaluates it best-effort.
func (s *ReadingService) CreateReading(ctx context.Context, ammoniaPPM, h2sPPM, temperature, humidity float64) (*models.SensorReading, error) {
	reading := &models.SensorReading{
		AmmoniaPPM:  ammoniaPPM,
		H2SPPM:      h2sPPM,
		Temperature: temperature,
		Humidity:    humidity,
		CreatedAt:   time.Now(),
	}

	if err := s.db.WithContext(ctx).Create(reading).Error; err != nil {
		return nil, err
	}

	go s.publishReading(reading)

	if _, err := s.evaluateStored(reading); err != nil {
		log.Printf("alert evaluation for reading %d skipped: %v", reading.ID, err)
	}

	return reading, nil
}

// GetReading fetches a stored reading by id.
func (s *ReadingService) GetReading(ctx context.Context, id uint) (*models.SensorReading, error) {
	var reading models.SensorReading
	if err := s.db.WithContext(ctx).First(&reading, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &reading, nil
}

// ListReadings returns stored readings newest first. Limit defaults to 100
// and is capped at 1000.
func (s *ReadingService) ListReadings(ctx context.Context, limit, offset int) ([]models.SensorReading, error) {
	if limit <= 0 {
		limit = DefaultReadingLimit
	}
	if limit > MaxReadingLimit {
		limit = MaxReadingLimit
	}
	if offset < 0 {
		offset = 0
	}

	var readings []models.SensorReading
	err := s.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&readings).Error
	if err != nil {
		return nil, err
	}
	return readings, nil
}

// PredictThresholds exposes the threshold prediction for the HTTP surface.
func (s *ReadingService) PredictThresholds(temperature, humidity float64) (ThresholdPrediction, error) {
	if s.predictor == nil {
		return ThresholdPrediction{}, ErrModelUnavailable
	}
	return s.predictor.PredictThresholds(temperature, humidity), nil
}

// EvaluateReading runs a full alert evaluation over a stored reading.
func (s *ReadingService) EvaluateReading(ctx context.Context, id uint) (AlertDecision, error) {
	reading, err := s.GetReading(ctx, id)
	if err != nil {
		return AlertDecision{}, err
	}
	return s.evaluateStored(reading)
}

func (s *ReadingService) evaluateStored(reading *models.SensorReading) (AlertDecision, error) {
	if !s.CanEvaluate() {
		return AlertDecision{}, ErrModelUnavailable
	}

	thresholds := s.predictor.PredictThresholds(reading.Temperature, reading.Humidity)
	return s.alerts.Evaluate(DefaultDeviceID, reading, thresholds), nil
}

func (s *ReadingService) publishReading(reading *models.SensorReading) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := s.cache.Publish(ctx, LiveReadingsChannel, reading); err != nil {
		log.Printf("publish reading %d to live channel failed: %v", reading.ID, err)
	}
}

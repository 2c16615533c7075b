package models

import "time"

// SensorReading is one telemetry sample from the washroom gas sensor unit.
type SensorReading struct {
	ID          uint      `gorm:"column:id;primaryKey" json:"id"`
	AmmoniaPPM  float64   `gorm:"column:ammonia_ppm;not null" json:"ammonia_ppm"`
	H2SPPM      float64   `gorm:"column:h2s_ppm;not null" json:"h2s_ppm"`
	Temperature float64   `gorm:"column:temperature;not null" json:"temperature"`
	Humidity    float64   `gorm:"column:humidity;not null" json:"humidity"`
	CreatedAt   time.Time `gorm:"column:created_at;not null;index" json:"created_at"`
}

func (SensorReading) TableName() string { return "sensor_readings" }

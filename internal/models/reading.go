package models

import "time"

// Reading is one temperature sample reported by a sensor
type Reading struct {
	BaseModel
	Sensor  string    `json:"sensor" gorm:"size:64;index"`
	Celsius float64   `json:"celsius"`
	TakenAt time.Time `json:"takenAt" gorm:"index"`
}

func (Reading) TableName() string {
	return "readings"
}

func (r Reading) Fahrenheit() float64 {
	return CelsiusToFahrenheit(r.Celsius)
}

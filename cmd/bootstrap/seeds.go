package bootstrap

import (
	"math"
	"time"

	"github.com/code-100-precent/LingRx/internal/models"
	"gorm.io/gorm"
)

var demoSensors = []struct {
	name string
	base float64
}{
	{"kitchen", 21.5},
	{"garage", 11},
	{"greenhouse", 26},
}

type SeedService struct {
	db  *gorm.DB
	now func() time.Time
}

// NewSeedService seeds db using the wall clock
func NewSeedService(db *gorm.DB) *SeedService {
	return &SeedService{db: db, now: time.Now}
}

func (s *SeedService) SeedAll() error {
	return s.seedReadings()
}

// seedReadings writes a day of hourly readings per demo sensor into an empty table
func (s *SeedService) seedReadings() error {
	var count int64
	if err := s.db.Model(&models.Reading{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	now := time.Now
	if s.now != nil {
		now = s.now
	}
	end := now().UTC().Truncate(time.Hour)
	readings := make([]models.Reading, 0, 24*len(demoSensors))
	for _, sensor := range demoSensors {
		for h := 23; h >= 0; h-- {
			swing := 3 * math.Sin(float64(h)*math.Pi/12)
			readings = append(readings, models.Reading{
				Sensor:  sensor.name,
				Celsius: math.Round((sensor.base+swing)*10) / 10,
				TakenAt: end.Add(-time.Duration(h) * time.Hour),
			})
		}
	}
	return s.db.CreateInBatches(readings, 100).Error
}

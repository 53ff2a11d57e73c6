package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/gymclass/service-booking/internal/domain/gymclass"
	"github.com/gymclass/service-booking/internal/platform/apperr"
)

// GormClassRepository reads the class catalogue.
type GormClassRepository struct {
	db *gorm.DB
}

// NewGormClassRepository creates a new GormClassRepository.
func NewGormClassRepository(db *gorm.DB) *GormClassRepository {
	return &GormClassRepository{db: db}
}

// Get resolves a class by ID.
func (r *GormClassRepository) Get(ctx context.Context, id uuid.UUID) (*gymclass.Class, error) {
	var model GymClassModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NewNotFoundError("Class", id.String())
		}
		return nil, fmt.Errorf("failed to find class by ID: %w", err)
	}
	return toDomainClass(&model)
}

var weekdays = map[string]time.Weekday{
	"sunday":    time.Sunday,
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
}

func toDomainClass(m *GymClassModel) (*gymclass.Class, error) {
	start, err := gymclass.ParseClock(m.StartTime)
	if err != nil {
		return nil, err
	}

	state := gymclass.PublicationState(m.PublicationState)
	if !state.IsValid() {
		return nil, fmt.Errorf("invalid publication state %q for class %s", m.PublicationState, m.ID)
	}

	days := make([]time.Weekday, 0, len(m.DaysOfWeek))
	for _, name := range m.DaysOfWeek {
		d, ok := weekdays[strings.ToLower(strings.TrimSpace(name))]
		if !ok {
			return nil, fmt.Errorf("invalid weekday %q for class %s", name, m.ID)
		}
		days = append(days, d)
	}

	return &gymclass.Class{
		ID:          m.ID,
		Name:        m.Name,
		Instructor:  m.Instructor,
		StartTime:   start,
		DaysOfWeek:  days,
		MaxCapacity: m.MaxCapacity,
		State:       state,
		PublishDate: m.PublishDate,
		EndDate:     m.EndDate,
	}, nil
}

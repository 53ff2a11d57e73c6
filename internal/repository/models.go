package repository

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// BookingModel is the GORM model for the bookings table. The session
// uniqueness index only covers bookings that still hold a place, so a member
// may rebook after cancelling.
type BookingModel struct {
	ID                 uuid.UUID  `gorm:"type:uuid;primaryKey"`
	UserID             uuid.UUID  `gorm:"type:uuid;not null;index;uniqueIndex:uq_bookings_active_session,where:status <> 'cancelled' AND status <> 'late_cancelled'"`
	ClassID            uuid.UUID  `gorm:"type:uuid;not null;index:idx_bookings_session;uniqueIndex:uq_bookings_active_session"`
	BookingDate        time.Time  `gorm:"type:date;not null;index:idx_bookings_session;uniqueIndex:uq_bookings_active_session"`
	Status             string     `gorm:"not null;size:20;index"`
	UsedConcession     bool       `gorm:"not null;default:false"`
	IsLateCancellation bool       `gorm:"not null;default:false"`
	CreatedAt          time.Time  `gorm:"not null"`
	CancelledAt        *time.Time `gorm:""`
	UpdatedAt          time.Time  `gorm:"not null"`
}

// TableName returns the table name for the GORM model.
func (BookingModel) TableName() string {
	return "bookings"
}

// UserModel maps the columns of the users table this service reads or
// writes. The table belongs to the user service.
type UserModel struct {
	ID                uuid.UUID `gorm:"type:uuid;primaryKey"`
	Role              string    `gorm:"not null;size:20;default:'member'"`
	ConcessionBalance int       `gorm:"not null;default:0;check:chk_users_concession_floor,concession_balance >= -5"`
	CreatedAt         time.Time `gorm:"not null"`
	UpdatedAt         time.Time `gorm:"not null"`
}

// TableName returns the table name for the GORM model.
func (UserModel) TableName() string {
	return "users"
}

// GymClassModel maps the class catalogue table owned by the class service.
type GymClassModel struct {
	ID               uuid.UUID      `gorm:"type:uuid;primaryKey"`
	Name             string         `gorm:"not null;size:200"`
	Instructor       string         `gorm:"size:200"`
	StartTime        string         `gorm:"not null;size:8"`
	DaysOfWeek       pq.StringArray `gorm:"type:text[]"`
	MaxCapacity      int            `gorm:"not null"`
	PublicationState string         `gorm:"not null;size:20;default:'draft'"`
	PublishDate      *time.Time     `gorm:""`
	EndDate          *time.Time     `gorm:"type:date"`
	CreatedAt        time.Time      `gorm:"not null"`
	UpdatedAt        time.Time      `gorm:"not null"`
}

// TableName returns the table name for the GORM model.
func (GymClassModel) TableName() string {
	return "gym_classes"
}

package main

import (
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/gymclass/service-booking/internal/domain/gymclass"
	"github.com/gymclass/service-booking/internal/repository/memory"
)

// Fixed identifiers for the in-memory demo data, so tokens can be minted
// against them ahead of time.
var (
	demoMemberID = uuid.MustParse("6f1c2a9e-8d3b-4c1e-9a57-0b2f4e6d8c11")
	demoClassID  = uuid.MustParse("b3d7e0f2-1a4c-4e8b-8f26-5c9a7d1e3b42")
)

// seedDemoData loads one member and one published class into the memory
// store. The user and class services own this data in a real deployment.
func seedDemoData(store *memory.Store, classes *memory.ClassRepository, loc *time.Location, log *zap.Logger) {
	store.PutUser(demoMemberID, 5)
	classes.Put(gymclass.Class{
		ID:          demoClassID,
		Name:        "Morning Conditioning",
		Instructor:  "Demo Instructor",
		StartTime:   gymclass.Clock{Hour: 7, Minute: 0},
		DaysOfWeek:  []time.Weekday{time.Monday, time.Wednesday, time.Friday},
		MaxCapacity: 12,
		State:       gymclass.StatePublished,
	})

	log.Info("seeded in-memory demo data",
		zap.String("member_id", demoMemberID.String()),
		zap.String("class_id", demoClassID.String()),
		zap.String("timezone", loc.String()),
	)
}

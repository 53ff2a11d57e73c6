//go:build integration

package main_test

import (
	"context"
	"fmt"
	"net"
	"testing"
	"time"

	"github.com/google/uuid"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	kafkamodule "github.com/testcontainers/testcontainers-go/modules/kafka"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/gymclass/service-booking/internal/application"
	"github.com/gymclass/service-booking/internal/events"
	"github.com/gymclass/service-booking/internal/platform/database"
	"github.com/gymclass/service-booking/internal/platform/kafka"
	"github.com/gymclass/service-booking/internal/repository"
	"github.com/gymclass/service-booking/migrations"
)

const bookingTopic = "booking.events"

// integrationNow is the fixed clock used by every integration test.
var integrationNow = time.Date(2026, 6, 1, 6, 0, 0, 0, time.UTC)

// testInfra holds shared test infrastructure.
type testInfra struct {
	DB           *gorm.DB
	KafkaBrokers []string
	Cleanup      func()
}

// setupPostgres starts a PostgreSQL container, applies the SQL migrations and
// returns a connected GORM DB.
func setupPostgres(t *testing.T) (*gorm.DB, func()) {
	t.Helper()
	ctx := context.Background()

	pgReq := testcontainers.ContainerRequest{
		Image:        "postgres:16-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "test",
			"POSTGRES_PASSWORD": "test",
			"POSTGRES_DB":       "test_booking",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(60 * time.Second),
	}
	pgContainer, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: pgReq,
		Started:          true,
	})
	require.NoError(t, err, "failed to start PostgreSQL container")

	pgHost, err := pgContainer.Host(ctx)
	require.NoError(t, err)
	pgPort, err := pgContainer.MappedPort(ctx, "5432")
	require.NoError(t, err)

	dsn := fmt.Sprintf("host=%s port=%s user=test password=test dbname=test_booking sslmode=disable", pgHost, pgPort.Port())
	url := fmt.Sprintf("postgres://test:test@%s:%s/test_booking?sslmode=disable", pgHost, pgPort.Port())

	log := zap.NewNop()
	db, err := database.Connect(dsn, log)
	require.NoError(t, err, "PostgreSQL not ready for connections")
	require.NoError(t, database.RunMigrations(url, migrations.FS, log))

	cleanup := func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
		_ = pgContainer.Terminate(ctx)
	}
	return db, cleanup
}

// setupContainers starts PostgreSQL and Kafka testcontainers.
func setupContainers(t *testing.T) *testInfra {
	t.Helper()
	ctx := context.Background()

	db, pgCleanup := setupPostgres(t)

	// confluent-local supports KRaft natively.
	kafkaContainer, err := kafkamodule.Run(ctx, "confluentinc/confluent-local:7.5.0")
	require.NoError(t, err, "failed to start Kafka container")

	kafkaBrokers, err := kafkaContainer.Brokers(ctx)
	require.NoError(t, err, "failed to get Kafka brokers")

	createTopics(t, kafkaBrokers, bookingTopic)

	return &testInfra{
		DB:           db,
		KafkaBrokers: kafkaBrokers,
		Cleanup: func() {
			_ = kafkaContainer.Terminate(ctx)
			pgCleanup()
		},
	}
}

// newService wires a BookingService over the GORM store.
func newService(db *gorm.DB, publisher application.EventPublisher) *application.BookingService {
	return application.NewBookingService(
		repository.NewGormBookingStore(db),
		repository.NewGormClassRepository(db),
		publisher,
		time.UTC,
		zap.NewNop(),
		application.WithClock(func() time.Time { return integrationNow }),
	)
}

// newKafkaPublisher returns a publisher on the booking topic and its cleanup.
func newKafkaPublisher(brokers []string) (*events.KafkaPublisher, func()) {
	producer := kafka.NewProducer(brokers, zap.NewNop())
	return events.NewKafkaPublisher(producer, bookingTopic, zap.NewNop()), func() { _ = producer.Close() }
}

// seedUser inserts a member row with the given balance.
func seedUser(t *testing.T, db *gorm.DB, balance int) uuid.UUID {
	t.Helper()
	id := uuid.New()
	require.NoError(t, db.Create(&repository.UserModel{
		ID:                id,
		Role:              "member",
		ConcessionBalance: balance,
		CreatedAt:         integrationNow,
		UpdatedAt:         integrationNow,
	}).Error)
	return id
}

// seedClass inserts a published class starting at 07:00.
func seedClass(t *testing.T, db *gorm.DB, capacity int) uuid.UUID {
	t.Helper()
	id := uuid.New()
	require.NoError(t, db.Create(&repository.GymClassModel{
		ID:               id,
		Name:             "Integration Bootcamp",
		Instructor:       "Robin",
		StartTime:        "07:00",
		DaysOfWeek:       []string{"monday", "wednesday", "friday"},
		MaxCapacity:      capacity,
		PublicationState: "published",
		CreatedAt:        integrationNow,
		UpdatedAt:        integrationNow,
	}).Error)
	return id
}

// balanceOf reads a member's balance straight from the users table.
func balanceOf(t *testing.T, db *gorm.DB, userID uuid.UUID) int {
	t.Helper()
	var user repository.UserModel
	require.NoError(t, db.Where("id = ?", userID).First(&user).Error)
	return user.ConcessionBalance
}

// consumeOneEvent reads from a Kafka topic until it finds an event of the expected type.
func consumeOneEvent(t *testing.T, brokers []string, topic, expectedType string, timeout time.Duration) kafka.CloudEvent {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	groupID := fmt.Sprintf("test-assert-%s", uuid.New().String()[:8])
	reader := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:     brokers,
		GroupID:     groupID,
		Topic:       topic,
		MinBytes:    1,
		MaxBytes:    10e6,
		StartOffset: kafkago.FirstOffset,
	})
	defer func() { _ = reader.Close() }()

	for {
		msg, err := reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				t.Fatalf("timed out waiting for event type %q on topic %q", expectedType, topic)
			}
			continue
		}
		ce, err := kafka.ParseCloudEvent(msg.Value)
		if err != nil {
			continue
		}
		if ce.Type == expectedType {
			return ce
		}
	}
}

// createTopics pre-creates Kafka topics so producers don't fail with "Unknown Topic".
func createTopics(t *testing.T, brokers []string, topics ...string) {
	t.Helper()
	conn, err := kafkago.Dial("tcp", brokers[0])
	require.NoError(t, err, "failed to dial Kafka for topic creation")
	defer conn.Close()

	controller, err := conn.Controller()
	require.NoError(t, err, "failed to get Kafka controller")

	controllerConn, err := kafkago.Dial("tcp", net.JoinHostPort(controller.Host, fmt.Sprintf("%d", controller.Port)))
	require.NoError(t, err, "failed to connect to Kafka controller")
	defer controllerConn.Close()

	topicConfigs := make([]kafkago.TopicConfig, len(topics))
	for i, topic := range topics {
		topicConfigs[i] = kafkago.TopicConfig{
			Topic:             topic,
			NumPartitions:     1,
			ReplicationFactor: 1,
		}
	}
	err = controllerConn.CreateTopics(topicConfigs...)
	require.NoError(t, err, "failed to create Kafka topics")

	// Give Kafka a moment to propagate topic metadata.
	time.Sleep(1 * time.Second)
}

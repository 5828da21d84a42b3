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
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/hostelhub/service-booking/internal/allocation"
	"github.com/hostelhub/service-booking/internal/application"
	bookingEvents "github.com/hostelhub/service-booking/internal/events"
	"github.com/hostelhub/service-booking/internal/kafka"
	"github.com/hostelhub/service-booking/internal/repository"
)

// testInfra holds shared test infrastructure.
type testInfra struct {
	DB           *gorm.DB
	KafkaBrokers []string
	Cleanup      func()
}

// bookingStack holds wired-up booking service components.
type bookingStack struct {
	Service         *application.BookingService
	Consumer        *bookingEvents.PaymentEventConsumer
	CleanupProducer func()
}

// stubPayments satisfies the payment checker without a payment service; the
// push path marks the booking paid before confirmation ever consults it.
type stubPayments struct{}

func (stubPayments) IsComplete(ctx context.Context, bookingID uuid.UUID) (bool, error) {
	return false, nil
}

// setupContainers starts PostgreSQL and Kafka testcontainers and returns a connected GORM DB.
func setupContainers(t *testing.T) *testInfra {
	t.Helper()
	ctx := context.Background()

	// Start PostgreSQL container with log-based wait strategy.
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

	// Poll until GORM can actually connect and ping.
	var db *gorm.DB
	require.Eventually(t, func() bool {
		var err error
		db, err = gorm.Open(postgres.Open(dsn), &gorm.Config{})
		if err != nil {
			return false
		}
		sqlDB, err := db.DB()
		if err != nil {
			return false
		}
		return sqlDB.Ping() == nil
	}, 30*time.Second, 1*time.Second, "PostgreSQL not ready for connections")

	require.NoError(t, db.AutoMigrate(
		&repository.HostelModel{},
		&repository.RoomModel{},
		&repository.BedModel{},
		&repository.BookingModel{},
	))

	// Start Kafka container using confluent-local (supports KRaft natively).
	kafkaContainer, err := kafkamodule.Run(ctx, "confluentinc/confluent-local:7.5.0")
	require.NoError(t, err, "failed to start Kafka container")

	kafkaBrokers, err := kafkaContainer.Brokers(ctx)
	require.NoError(t, err, "failed to get Kafka brokers")

	// Pre-create required topics.
	createTopics(t, kafkaBrokers,
		bookingEvents.TopicBookingEvents,
		bookingEvents.TopicAllocationEvents,
		bookingEvents.TopicPaymentEvents,
	)

	cleanup := func() {
		if err := kafkaContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate Kafka container: %v", err)
		}
		if err := pgContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate PostgreSQL container: %v", err)
		}
	}

	return &testInfra{
		DB:           db,
		KafkaBrokers: kafkaBrokers,
		Cleanup:      cleanup,
	}
}

// setupBookingStack wires up the full booking service stack.
func setupBookingStack(t *testing.T, db *gorm.DB, brokers []string) *bookingStack {
	t.Helper()
	logger, _ := zap.NewDevelopment()

	bookingRepo := repository.NewGormBookingRepository(db)
	inventoryRepo := repository.NewGormInventoryRepository(db)
	engine := allocation.NewEngine(inventoryRepo, allocation.NewPreferredTypePolicy(), logger)
	producer := kafka.NewProducer(brokers, logger)
	bookingSvc := application.NewBookingService(
		bookingRepo, inventoryRepo, engine, stubPayments{}, producer, nil, logger)

	groupID := fmt.Sprintf("test-booking-%s", uuid.New().String()[:8])
	consumer := bookingEvents.NewPaymentEventConsumer(brokers, groupID, bookingSvc, logger)

	return &bookingStack{
		Service:         bookingSvc,
		Consumer:        consumer,
		CleanupProducer: func() { _ = producer.Close() },
	}
}

// seedHostelWithBeds inserts a hostel with one room and the given number of
// free beds, returning the hostel and room IDs.
func seedHostelWithBeds(t *testing.T, db *gorm.DB, ownerID uuid.UUID, bedCount int) (uuid.UUID, uuid.UUID) {
	t.Helper()
	now := time.Now().UTC()

	hostel := repository.HostelModel{
		ID:        uuid.New(),
		OwnerID:   ownerID,
		Name:      "Integration Hostel",
		City:      "Pune",
		Version:   1,
		CreatedAt: now,
		UpdatedAt: now,
	}
	require.NoError(t, db.Create(&hostel).Error, "failed to seed hostel")

	room := repository.RoomModel{
		ID:        uuid.New(),
		HostelID:  hostel.ID,
		Number:    1,
		RoomType:  "double",
		CreatedAt: now,
		UpdatedAt: now,
	}
	require.NoError(t, db.Create(&room).Error, "failed to seed room")

	for i := 1; i <= bedCount; i++ {
		bed := repository.BedModel{
			ID:        uuid.New(),
			RoomID:    room.ID,
			Number:    i,
			UpdatedAt: now,
		}
		require.NoError(t, db.Create(&bed).Error, "failed to seed bed")
	}

	return hostel.ID, room.ID
}

// seedApprovedBooking inserts a booking in "approved" state awaiting payment.
func seedApprovedBooking(t *testing.T, db *gorm.DB, bookingID, studentID, hostelID uuid.UUID) {
	t.Helper()
	now := time.Now().UTC()
	approved := now.Add(-10 * time.Minute)
	checkIn := now.Add(14 * 24 * time.Hour)

	model := repository.BookingModel{
		ID:            bookingID,
		BookingNumber: fmt.Sprintf("HB-INT%s", uuid.New().String()[:4]),
		StudentID:     studentID,
		HostelID:      hostelID,
		RoomTypePref:  "double",
		CheckIn:       checkIn,
		CheckOut:      checkIn.Add(120 * 24 * time.Hour),
		Occupants:     1,
		Status:        "approved",
		Version:       2,
		CreatedAt:     now.Add(-time.Hour),
		ApprovedAt:    &approved,
		UpdatedAt:     now,
	}
	require.NoError(t, db.Create(&model).Error, "failed to seed booking")
}

// publishTestEvent publishes a CloudEvent to Kafka.
func publishTestEvent(t *testing.T, brokers []string, topic, source, eventType string, data interface{}) {
	t.Helper()
	logger, _ := zap.NewDevelopment()
	producer := kafka.NewProducer(brokers, logger)
	defer func() { _ = producer.Close() }()

	ce, err := kafka.NewCloudEvent(source, eventType, data)
	require.NoError(t, err, "failed to create cloud event")

	err = producer.PublishEvent(context.Background(), topic, ce)
	require.NoError(t, err, "failed to publish event")
}

// waitForBookingStatus polls the bookings table until the status matches.
func waitForBookingStatus(t *testing.T, db *gorm.DB, bookingID uuid.UUID, expectedStatus string, timeout time.Duration) repository.BookingModel {
	t.Helper()
	var result repository.BookingModel
	require.Eventually(t, func() bool {
		var model repository.BookingModel
		err := db.Where("id = ?", bookingID).First(&model).Error
		if err != nil {
			return false
		}
		if model.Status == expectedStatus {
			result = model
			return true
		}
		return false
	}, timeout, 200*time.Millisecond, "booking did not transition to %s", expectedStatus)
	return result
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

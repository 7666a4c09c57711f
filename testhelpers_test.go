//go:build integration

package main_test

import (
	"context"
	"fmt"
	"net"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	kafkamodule "github.com/testcontainers/testcontainers-go/modules/kafka"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/holidaze/service-booking/internal/application"
	"github.com/holidaze/service-booking/internal/cache"
	"github.com/holidaze/service-booking/internal/common/database"
	"github.com/holidaze/service-booking/internal/common/kafka"
	"github.com/holidaze/service-booking/internal/domain/availability"
	bookingDomain "github.com/holidaze/service-booking/internal/domain/booking"
	bookingEvents "github.com/holidaze/service-booking/internal/events"
	"github.com/holidaze/service-booking/internal/repository"
)

// testInfra holds shared test infrastructure.
type testInfra struct {
	DB           *gorm.DB
	Redis        *redis.Client
	KafkaBrokers []string
	Cleanup      func()
}

// bookingStack is one replica of the service wired against the shared infra.
type bookingStack struct {
	Service  *application.BookingService
	Venues   *application.VenueService
	Consumer *bookingEvents.BookingEventConsumer
	Engine   *availability.Engine
	Cleanup  func()
}

// setupContainers starts PostgreSQL, Redis and Kafka testcontainers and
// applies the SQL migrations.
func setupContainers(t *testing.T) *testInfra {
	t.Helper()
	ctx := context.Background()
	logger := zap.NewNop()

	pgContainer, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
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
		},
		Started: true,
	})
	require.NoError(t, err, "failed to start PostgreSQL container")

	pgHost, err := pgContainer.Host(ctx)
	require.NoError(t, err)
	pgPort, err := pgContainer.MappedPort(ctx, "5432")
	require.NoError(t, err)

	pgCfg := database.PostgresConfig{
		Host:     pgHost,
		Port:     pgPort.Int(),
		User:     "test",
		Password: "test",
		DBName:   "test_booking",
		SSLMode:  "disable",
	}

	var db *gorm.DB
	require.Eventually(t, func() bool {
		db, err = database.Connect(pgCfg, logger)
		return err == nil
	}, 30*time.Second, time.Second, "PostgreSQL not ready for connections")
	require.NoError(t, database.RunMigrations(pgCfg.DatabaseURL(), "migrations", logger))

	redisContainer, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForLog("Ready to accept connections"),
		},
		Started: true,
	})
	require.NoError(t, err, "failed to start Redis container")
	redisEndpoint, err := redisContainer.Endpoint(ctx, "")
	require.NoError(t, err)
	redisClient, err := cache.NewClient(ctx, redisEndpoint, "", 0, logger)
	require.NoError(t, err)

	kafkaContainer, err := kafkamodule.Run(ctx, "confluentinc/confluent-local:7.5.0")
	require.NoError(t, err, "failed to start Kafka container")
	kafkaBrokers, err := kafkaContainer.Brokers(ctx)
	require.NoError(t, err, "failed to get Kafka brokers")

	createTopics(t, kafkaBrokers, bookingEvents.TopicBookingEvents)

	cleanup := func() {
		_ = redisClient.Close()
		for name, c := range map[string]testcontainers.Container{
			"Kafka": kafkaContainer, "Redis": redisContainer, "PostgreSQL": pgContainer,
		} {
			if err := c.Terminate(ctx); err != nil {
				t.Logf("failed to terminate %s container: %v", name, err)
			}
		}
	}

	return &testInfra{
		DB:           db,
		Redis:        redisClient,
		KafkaBrokers: kafkaBrokers,
		Cleanup:      cleanup,
	}
}

// setupBookingStack wires up one replica. withCache controls whether the
// replica reads through the shared Redis cache.
func setupBookingStack(t *testing.T, infra *testInfra, withCache bool) *bookingStack {
	t.Helper()
	logger, _ := zap.NewDevelopment()

	engine := availability.NewEngine(availability.WithLogger(logger))
	bookingRepo := repository.NewGormBookingRepository(infra.DB, engine)
	venueRepo := repository.NewGormVenueRepository(infra.DB)
	producer := kafka.NewProducer(infra.KafkaBrokers, logger)

	var snapshotCache application.SnapshotCache
	if withCache {
		snapshotCache = cache.NewSnapshotCache(infra.Redis, time.Minute, logger)
	}

	svc := application.NewBookingService(
		bookingRepo, venueRepo, engine,
		bookingDomain.NewNightlyPricingStrategy(),
		application.NewSnapshotRegistry(), snapshotCache, producer,
		logger,
	)

	groupID := fmt.Sprintf("test-booking-%s", uuid.New().String()[:8])
	// Read from the start so events published while the group joins still arrive.
	consumer := bookingEvents.NewBookingEventConsumer(infra.KafkaBrokers, groupID, svc, logger,
		kafka.WithStartOffset(kafkago.FirstOffset))

	return &bookingStack{
		Service:  svc,
		Venues:   application.NewVenueService(venueRepo, logger),
		Consumer: consumer,
		Engine:   engine,
		Cleanup: func() {
			_ = consumer.Close()
			_ = producer.Close()
		},
	}
}

// day returns the key of today plus offset days.
func day(engine *availability.Engine, offset int) string {
	return engine.Key(engine.Today().AddDate(0, 0, offset))
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
	require.NoError(t, controllerConn.CreateTopics(topicConfigs...), "failed to create Kafka topics")

	// Give Kafka a moment to propagate topic metadata.
	time.Sleep(1 * time.Second)
}

func zapNop() *zap.Logger { return zap.NewNop() }

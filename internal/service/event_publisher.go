package service

import (
	"context"
	"encoding/json"
	"fmt"

	"medical-slot-booking/internal/domain/entity"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// AppointmentEventsChannel is the pub/sub channel appointment events go to.
const AppointmentEventsChannel = "appointments.events"

// RedisEventPublisher publishes appointment events over Redis pub/sub.
type RedisEventPublisher struct {
	redisClient *redis.Client
	channel     string
	log         *logrus.Logger
}

func NewRedisEventPublisher(redisClient *redis.Client, log *logrus.Logger) *RedisEventPublisher {
	return &RedisEventPublisher{
		redisClient: redisClient,
		channel:     AppointmentEventsChannel,
		log:         log,
	}
}

func (p *RedisEventPublisher) Publish(ctx context.Context, event entity.AppointmentEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	receivers, err := p.redisClient.Publish(ctx, p.channel, payload).Result()
	if err != nil {
		return fmt.Errorf("publish %s: %w", event.Type, err)
	}

	p.log.Debugf("Published %s for appointment %s to %d subscribers", event.Type, event.AppointmentID, receivers)
	return nil
}

// LogEventPublisher writes events to the log. Used when Redis is disabled.
type LogEventPublisher struct {
	log *logrus.Logger
}

func NewLogEventPublisher(log *logrus.Logger) *LogEventPublisher {
	return &LogEventPublisher{log: log}
}

func (p *LogEventPublisher) Publish(_ context.Context, event entity.AppointmentEvent) error {
	p.log.WithFields(logrus.Fields{
		"event":          event.Type,
		"appointment_id": event.AppointmentID,
		"status":         event.Status,
	}).Info("Appointment event")
	return nil
}

package claimqueue

import (
	"context"
	"fmt"
	"sync"

	"claimlens-service/internal/app/contracts"
	"claimlens-service/internal/pkg/constvars"
	"claimlens-service/internal/pkg/dto/requests"
	"claimlens-service/internal/pkg/exceptions"

	"github.com/goccy/go-json"
	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// Service manages the durable claim processing queue. Publishes wait for
// broker confirms; QoS caps unacked deliveries at the worker's oracle
// concurrency bound.
type Service struct {
	ch        *amqp.Channel
	log       *zap.Logger
	queueName string
	confirms  chan amqp.Confirmation
	mu        sync.Mutex
}

func NewService(conn *amqp.Connection, log *zap.Logger, queueName string, prefetch int) (*Service, error) {
	ch, err := conn.Channel()
	if err != nil {
		return nil, err
	}

	_, err = ch.QueueDeclare(
		queueName, // name
		true,      // durable
		false,     // autoDelete
		false,     // exclusive
		false,     // noWait
		nil,       // args
	)
	if err != nil {
		return nil, err
	}

	if prefetch <= 0 {
		prefetch = 1
	}
	if err := ch.Qos(prefetch, 0, false); err != nil {
		return nil, err
	}

	if err := ch.Confirm(false); err != nil {
		return nil, err
	}

	svc := &Service{
		ch:        ch,
		log:       log,
		queueName: queueName,
		confirms:  ch.NotifyPublish(make(chan amqp.Confirmation, 1)),
	}
	return svc, nil
}

var _ contracts.ClaimQueue = (*Service)(nil)

// Enqueue publishes a claim message with persistence and waits for confirm.
func (s *Service) Enqueue(ctx context.Context, message *requests.ProcessClaim) error {
	s.log.Info("ClaimQueue.Enqueue called", zap.String(constvars.LoggingClaimIDKey, message.ClaimID))

	body, err := json.Marshal(message)
	if err != nil {
		return exceptions.ErrCannotMarshalJSON(err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	msg := amqp.Publishing{
		ContentType:  constvars.MIMEApplicationJSON,
		Body:         body,
		DeliveryMode: amqp.Persistent,
	}

	if err := s.ch.PublishWithContext(ctx, "", s.queueName, false, false, msg); err != nil {
		return exceptions.ErrRabbitMQPublishMessage(err, s.queueName)
	}

	select {
	case confirmed := <-s.confirms:
		if !confirmed.Ack {
			return exceptions.ErrRabbitMQPublishMessage(fmt.Errorf("message not confirmed"), s.queueName)
		}
	case <-ctx.Done():
		return exceptions.ErrRabbitMQPublishMessage(ctx.Err(), s.queueName)
	}
	return nil
}

// Consume delivers queued claims to handler until ctx is cancelled. A nil
// return acks the delivery; an error nacks it without requeue so a poison
// message cannot loop forever.
func (s *Service) Consume(ctx context.Context, handler func(ctx context.Context, message *requests.ProcessClaim) error) error {
	deliveries, err := s.ch.Consume(
		s.queueName, // queue
		"",          // consumer
		false,       // autoAck
		false,       // exclusive
		false,       // noLocal
		false,       // noWait
		nil,         // args
	)
	if err != nil {
		return exceptions.ErrRabbitMQConsume(err, s.queueName)
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case d, ok := <-deliveries:
			if !ok {
				return nil
			}
			var message requests.ProcessClaim
			if err := json.Unmarshal(d.Body, &message); err != nil {
				s.log.Error("ClaimQueue.Consume dropping undecodable message", zap.Error(err))
				_ = d.Nack(false, false)
				continue
			}
			if err := handler(ctx, &message); err != nil {
				s.log.Error("ClaimQueue.Consume handler failed",
					zap.String(constvars.LoggingClaimIDKey, message.ClaimID),
					zap.Error(err),
				)
				_ = d.Nack(false, false)
				continue
			}
			_ = d.Ack(false)
		}
	}
}

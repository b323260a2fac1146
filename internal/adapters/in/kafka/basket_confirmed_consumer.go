// Package kafka turns BasketConfirmed events into orders.
package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"courier-dispatch/internal/core/application/usecases/commands"
	"courier-dispatch/internal/core/domain/model/kernel"
	"courier-dispatch/internal/metrics"
	"courier-dispatch/internal/pkg/errs"

	"github.com/segmentio/kafka-go"
)

const defaultRetryDelay = time.Second

// MessageReader is the part of *kafka.Reader the consumer uses.
type MessageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type CreateOrderHandler interface {
	Handle(ctx context.Context, cmd commands.CreateOrderCommand) error
}

type ConsumeRecorder interface {
	RecordConsumed(topic, result string)
}

type basketConfirmed struct {
	BasketID string `json:"basketId"`
	Address  struct {
		Country   string `json:"country"`
		City      string `json:"city"`
		Street    string `json:"street"`
		House     string `json:"house"`
		Apartment string `json:"apartment"`
	} `json:"address"`
	Volume int `json:"volume"`
}

type BasketConfirmedConsumer struct {
	reader     MessageReader
	handler    CreateOrderHandler
	recorder   ConsumeRecorder
	topic      string
	retryDelay time.Duration
	logger     *slog.Logger
}

func NewBasketConfirmedConsumer(brokers []string, groupID, topic string, handler CreateOrderHandler,
	recorder ConsumeRecorder, logger *slog.Logger) *BasketConfirmedConsumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        brokers,
		GroupID:        groupID,
		Topic:          topic,
		MinBytes:       1,
		MaxBytes:       10e6,
		MaxWait:        500 * time.Millisecond,
		StartOffset:    kafka.FirstOffset,
		CommitInterval: 0,
	})
	return NewBasketConfirmedConsumerWithReader(reader, topic, handler, recorder, logger)
}

func NewBasketConfirmedConsumerWithReader(reader MessageReader, topic string, handler CreateOrderHandler,
	recorder ConsumeRecorder, logger *slog.Logger) *BasketConfirmedConsumer {
	return &BasketConfirmedConsumer{
		reader:     reader,
		handler:    handler,
		recorder:   recorder,
		topic:      topic,
		retryDelay: defaultRetryDelay,
		logger:     logger.With("component", "basket_confirmed_consumer", "topic", topic),
	}
}

// WithRetryDelay sets the pause between attempts at an infrastructure failure.
func (c *BasketConfirmedConsumer) WithRetryDelay(d time.Duration) *BasketConfirmedConsumer {
	c.retryDelay = d
	return c
}

// Run consumes until ctx is cancelled. Poison messages are committed and
// dropped. A message whose handling fails for infrastructure reasons is
// retried in place and is never committed before it succeeds, so the
// partition does not move past it.
func (c *BasketConfirmedConsumer) Run(ctx context.Context) error {
	c.logger.InfoContext(ctx, "consumer started")
	for {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				c.logger.Info("consumer stopped")
				return nil
			}
			c.logger.ErrorContext(ctx, "fetch message", "error", err)
			if !c.sleep(ctx) {
				return nil
			}
			continue
		}

		if !c.process(ctx, msg) {
			return nil
		}

		if err := c.reader.CommitMessages(ctx, msg); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			c.logger.ErrorContext(ctx, "commit message", "offset", msg.Offset, "error", err)
		}
	}
}

// process reports false only when ctx was cancelled mid-retry.
func (c *BasketConfirmedConsumer) process(ctx context.Context, msg kafka.Message) bool {
	cmd, err := parse(msg.Value)
	if err != nil {
		c.logger.WarnContext(ctx, "poison message dropped",
			"partition", msg.Partition, "offset", msg.Offset, "error", err)
		c.record(metrics.OutcomePoison)
		return true
	}

	for {
		err = c.handler.Handle(ctx, cmd)
		switch {
		case err == nil:
			c.logger.InfoContext(ctx, "order created from basket", "order_id", cmd.OrderID().String())
			c.record(metrics.OutcomeOK)
			return true
		case isPoison(err):
			c.logger.WarnContext(ctx, "basket rejected",
				"order_id", cmd.OrderID().String(), "offset", msg.Offset, "error", err)
			c.record(metrics.OutcomePoison)
			return true
		}

		c.logger.ErrorContext(ctx, "create order from basket",
			"order_id", cmd.OrderID().String(), "offset", msg.Offset, "error", err)
		c.record(metrics.OutcomeFailed)
		if !c.sleep(ctx) {
			return false
		}
	}
}

func (c *BasketConfirmedConsumer) record(result string) {
	if c.recorder != nil {
		c.recorder.RecordConsumed(c.topic, result)
	}
}

func (c *BasketConfirmedConsumer) sleep(ctx context.Context) bool {
	timer := time.NewTimer(c.retryDelay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}

func (c *BasketConfirmedConsumer) Close() error {
	return c.reader.Close()
}

func parse(value []byte) (commands.CreateOrderCommand, error) {
	var event basketConfirmed
	if err := json.Unmarshal(value, &event); err != nil {
		return commands.CreateOrderCommand{}, fmt.Errorf("decode basket: %w", err)
	}
	orderID, err := kernel.UUIDFromString(event.BasketID)
	if err != nil {
		return commands.CreateOrderCommand{}, fmt.Errorf("basket id: %w", err)
	}
	return commands.NewCreateOrderCommand(orderID, event.Address.Street, event.Volume)
}

func isPoison(err error) bool {
	if errors.Is(err, context.Canceled) {
		return false
	}
	switch errs.KindOf(err) {
	case errs.KindValidation, errs.KindConflict:
		return true
	default:
		return false
	}
}

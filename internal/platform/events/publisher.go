package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	otelkafka "github.com/Trendyol/otel-kafka-konsumer"
	"github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.uber.org/zap"

	"github.com/mamadbah2/bikestore/internal/config"
	"github.com/mamadbah2/bikestore/internal/domain/models"
)

// SaleRecordedType is the event type of SaleRecorded messages.
const SaleRecordedType = "sale.recorded"

// SaleRecorded is published once a sale has been committed.
type SaleRecorded struct {
	Type           string          `json:"type"`
	SaleID         string          `json:"sale_id"`
	BikeID         string          `json:"bike_id"`
	CustomerID     string          `json:"customer_id"`
	Quantity       int             `json:"quantity"`
	SalePrice      decimal.Decimal `json:"sale_price"`
	TotalAmount    decimal.Decimal `json:"total_amount"`
	RemainingStock int             `json:"remaining_stock"`
	OccurredAt     time.Time       `json:"occurred_at"`
}

// NewSaleRecorded builds the event from the committed sale and bike.
func NewSaleRecorded(sale models.Sale, bike models.Bike) SaleRecorded {
	return SaleRecorded{
		Type:           SaleRecordedType,
		SaleID:         sale.ID,
		BikeID:         sale.BikeID,
		CustomerID:     sale.CustomerID,
		Quantity:       sale.Quantity,
		SalePrice:      sale.SalePrice,
		TotalAmount:    sale.TotalAmount(),
		RemainingStock: bike.StockQuantity,
		OccurredAt:     sale.SaleDate,
	}
}

// Publisher emits domain events.
type Publisher interface {
	PublishSale(ctx context.Context, event SaleRecorded) error
	Close() error
}

// Nop discards every event.
type Nop struct{}

func (Nop) PublishSale(context.Context, SaleRecorded) error { return nil }

func (Nop) Close() error { return nil }

type messageWriter interface {
	WriteMessage(ctx context.Context, msg kafka.Message) error
	Close() error
}

// KafkaPublisher writes events as JSON, keyed by bike id so that the events
// of one bike stay ordered within a partition.
type KafkaPublisher struct {
	writer messageWriter
	logger *zap.Logger
}

// NewKafkaPublisher creates a traced writer for cfg.Topic on cfg.Brokers.
// Each message gets a producer span whose context travels in the headers.
func NewKafkaPublisher(cfg config.KafkaConfig, serviceName string, logger *zap.Logger) (*KafkaPublisher, error) {
	base := &kafka.Writer{
		Addr:                   kafka.TCP(cfg.Brokers...),
		Topic:                  cfg.Topic,
		Balancer:               &kafka.Hash{},
		BatchTimeout:           50 * time.Millisecond,
		RequiredAcks:           kafka.RequireAll,
		AllowAutoTopicCreation: true,
	}

	writer, err := otelkafka.NewWriter(base,
		otelkafka.WithTracerProvider(otel.GetTracerProvider()),
		otelkafka.WithPropagator(otel.GetTextMapPropagator()),
		otelkafka.WithAttributes([]attribute.KeyValue{
			semconv.MessagingDestinationNameKey.String(cfg.Topic),
			attribute.String("messaging.kafka.client_id", serviceName),
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("create traced kafka writer: %w", err)
	}
	return newKafkaPublisher(writer, logger), nil
}

func newKafkaPublisher(writer messageWriter, logger *zap.Logger) *KafkaPublisher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &KafkaPublisher{writer: writer, logger: logger}
}

func (p *KafkaPublisher) PublishSale(ctx context.Context, event SaleRecorded) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal %s event: %w", event.Type, err)
	}

	msg := kafka.Message{
		Key:   []byte(event.BikeID),
		Value: payload,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(event.Type)},
		},
		Time: event.OccurredAt,
	}

	if err := p.writer.WriteMessage(ctx, msg); err != nil {
		return fmt.Errorf("publish %s event for sale %s: %w", event.Type, event.SaleID, err)
	}

	p.logger.Debug("event published", zap.String("type", event.Type), zap.String("sale_id", event.SaleID))
	return nil
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

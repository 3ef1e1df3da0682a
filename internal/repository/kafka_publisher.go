package repository

import (
	"context"

	"CorrNet/internal/domain/models"
	"CorrNet/internal/domain/repository"
	pkgkafka "CorrNet/pkg/kafka"
)

// KafkaCandlePublisher implements CandlePublisher for Kafka.
type KafkaCandlePublisher struct {
	producer *pkgkafka.Producer
	topic    string
}

// NewKafkaCandlePublisher creates a Kafka candle publisher.
func NewKafkaCandlePublisher(producer *pkgkafka.Producer, topic string) repository.CandlePublisher {
	return &KafkaCandlePublisher{producer: producer, topic: topic}
}

func candleMessage(c *models.Candle) map[string]interface{} {
	return map[string]interface{}{
		"symbol": c.Symbol,
		"i":      c.Interval,
		"t":      c.Timestamp,
		"o":      c.Open,
		"h":      c.High,
		"l":      c.Low,
		"c":      c.Close,
		"v":      c.Volume,
	}
}

func (p *KafkaCandlePublisher) PublishCandle(ctx context.Context, c *models.Candle) error {
	return p.producer.Publish(ctx, p.topic, []byte(c.Symbol), candleMessage(c))
}

func (p *KafkaCandlePublisher) PublishCandleBatch(ctx context.Context, candles []*models.Candle) error {
	if len(candles) == 0 {
		return nil
	}
	msgs := make([]pkgkafka.Message, len(candles))
	for i, c := range candles {
		msgs[i] = pkgkafka.Message{
			Key:   []byte(c.Symbol),
			Value: candleMessage(c),
		}
	}
	return p.producer.PublishBatch(ctx, p.topic, msgs)
}

func (p *KafkaCandlePublisher) Close() error {
	if p.producer != nil {
		return p.producer.Close()
	}
	return nil
}

// KafkaSummaryPublisher implements Publisher for completed analysis runs.
type KafkaSummaryPublisher struct {
	producer *pkgkafka.Producer
	topic    string
}

// NewKafkaSummaryPublisher creates a Kafka run-summary publisher.
func NewKafkaSummaryPublisher(producer *pkgkafka.Producer, topic string) repository.Publisher {
	return &KafkaSummaryPublisher{producer: producer, topic: topic}
}

func (p *KafkaSummaryPublisher) PublishSummary(ctx context.Context, res *models.AnalysisResult) error {
	return p.producer.Publish(ctx, p.topic, []byte(res.RunID), res)
}

func (p *KafkaSummaryPublisher) Close() error {
	if p.producer != nil {
		return p.producer.Close()
	}
	return nil
}

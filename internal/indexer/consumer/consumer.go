// Package consumer feeds documents from the ingest topic into the engine.
package consumer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	apperrors "github.com/Adithya-Monish-Kumar-K/tfidf-search/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/tfidf-search/pkg/kafka"
	"github.com/Adithya-Monish-Kumar-K/tfidf-search/pkg/resilience"
)

// IngestEvent is the JSON payload on the ingest topic.
type IngestEvent struct {
	Text       *string   `json:"text"`
	Source     string    `json:"source,omitempty"`
	IngestedAt time.Time `json:"ingested_at"`
}

// Inserter is the write side of the engine.
type Inserter interface {
	Insert(ctx context.Context, text string) (int, error)
}

type IndexConsumer struct {
	consumer *kafka.Consumer
	logger   *slog.Logger
}

func New(kafkaConsumer *kafka.Consumer) *IndexConsumer {
	return &IndexConsumer{
		consumer: kafkaConsumer,
		logger:   slog.Default().With("component", "index-consumer"),
	}
}

// Start blocks until ctx is cancelled.
func (ic *IndexConsumer) Start(ctx context.Context) error {
	ic.logger.Info("index consumer starting")
	return ic.consumer.Start(ctx)
}

// HandleMessage inserts the text of each ingest event. Malformed events and
// a closed engine fail permanently; store errors are retried by the
// consumer.
func HandleMessage(engine Inserter) kafka.MessageHandler {
	logger := slog.Default().With("component", "index-consumer")
	return func(ctx context.Context, key []byte, value []byte) error {
		event, err := kafka.DecodeJSON[IngestEvent](value)
		if err != nil {
			logger.Error("failed to decode ingest event", "error", err, "key", string(key))
			return resilience.Permanent(err)
		}
		if event.Text == nil {
			logger.Error("ingest event without text", "key", string(key))
			return resilience.Permanent(fmt.Errorf("ingest event %q: %w", key, apperrors.ErrInvalidInput))
		}

		id, err := engine.Insert(ctx, *event.Text)
		if err != nil {
			if errors.Is(err, apperrors.ErrClosed) {
				return resilience.Permanent(err)
			}
			return fmt.Errorf("indexing event from %q: %w", event.Source, err)
		}
		attrs := []any{"doc_id", id, "source", event.Source}
		if !event.IngestedAt.IsZero() {
			attrs = append(attrs, "lag", time.Since(event.IngestedAt).Round(time.Millisecond))
		}
		logger.Info("document indexed", attrs...)
		return nil
	}
}

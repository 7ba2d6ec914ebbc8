// Command ingest publishes documents to the Kafka ingest topic, one per
// input line, for a running searcher to index.
//
// Usage:
//
//	go run ./cmd/ingest [-config configs/development.yaml] [-file build.log]
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/Adithya-Monish-Kumar-K/tfidf-search/internal/indexer/consumer"
	"github.com/Adithya-Monish-Kumar-K/tfidf-search/pkg/config"
	"github.com/Adithya-Monish-Kumar-K/tfidf-search/pkg/kafka"
	"github.com/Adithya-Monish-Kumar-K/tfidf-search/pkg/logger"
)

const batchSize = 100

func main() {
	configPath := flag.String("config", "", "path to config file (defaults apply when empty)")
	file := flag.String("file", "", "file to read documents from (stdin when empty)")
	skipBlank := flag.Bool("skip-blank", true, "do not publish empty lines")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	logger.Setup(cfg.Logging.Level, cfg.Logging.Format)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	in, source := io.Reader(os.Stdin), "stdin"
	if *file != "" {
		f, err := os.Open(*file)
		if err != nil {
			slog.Error("failed to open input", "file", *file, "error", err)
			os.Exit(1)
		}
		defer f.Close()
		in, source = f, filepath.Base(*file)
	}

	producer := kafka.NewProducer(cfg.Kafka, cfg.Kafka.Topics.DocumentIngest)
	defer producer.Close()

	n, err := publishLines(ctx, producer, in, source, *skipBlank)
	if err != nil {
		slog.Error("ingest failed", "published", n, "error", err)
		os.Exit(1)
	}
	slog.Info("ingest complete", "published", n, "source", source, "topic", cfg.Kafka.Topics.DocumentIngest)
}

type publisher interface {
	PublishBatch(ctx context.Context, events []kafka.Event) error
}

// publishLines sends each line of r as an ingest event, in batches, and
// returns how many were published.
func publishLines(ctx context.Context, p publisher, r io.Reader, source string, skipBlank bool) (int, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 1<<20)

	published := 0
	batch := make([]kafka.Event, 0, batchSize)
	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		if err := p.PublishBatch(ctx, batch); err != nil {
			return err
		}
		published += len(batch)
		batch = batch[:0]
		return nil
	}

	for scanner.Scan() {
		text := scanner.Text()
		if skipBlank && text == "" {
			continue
		}
		batch = append(batch, kafka.Event{
			Key: source,
			Value: consumer.IngestEvent{
				Text:       &text,
				Source:     source,
				IngestedAt: time.Now().UTC(),
			},
		})
		if len(batch) == batchSize {
			if err := flush(); err != nil {
				return published, err
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return published, fmt.Errorf("reading input: %w", err)
	}
	return published, flush()
}

package main

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/Adithya-Monish-Kumar-K/tfidf-search/internal/indexer/consumer"
	"github.com/Adithya-Monish-Kumar-K/tfidf-search/pkg/kafka"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingPublisher struct {
	batches [][]kafka.Event
	err     error
}

func (r *recordingPublisher) PublishBatch(_ context.Context, events []kafka.Event) error {
	if r.err != nil {
		return r.err
	}
	r.batches = append(r.batches, append([]kafka.Event(nil), events...))
	return nil
}

func TestPublishLines(t *testing.T) {
	p := &recordingPublisher{}
	input := "[ERROR] one\n\n[ERROR] two\n"

	n, err := publishLines(context.Background(), p, strings.NewReader(input), "build.log", true)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	require.Len(t, p.batches, 1)

	ev := p.batches[0][1]
	assert.Equal(t, "build.log", ev.Key)
	payload := ev.Value.(consumer.IngestEvent)
	assert.Equal(t, "[ERROR] two", *payload.Text)
	assert.Equal(t, "build.log", payload.Source)
}

func TestPublishLinesKeepsBlankWhenAsked(t *testing.T) {
	p := &recordingPublisher{}
	n, err := publishLines(context.Background(), p, strings.NewReader("a\n\nb\n"), "stdin", false)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}

func TestPublishLinesBatches(t *testing.T) {
	p := &recordingPublisher{}
	input := strings.Repeat("line\n", batchSize+1)
	n, err := publishLines(context.Background(), p, strings.NewReader(input), "stdin", true)
	require.NoError(t, err)
	assert.Equal(t, batchSize+1, n)
	require.Len(t, p.batches, 2)
	assert.Len(t, p.batches[0], batchSize)
	assert.Len(t, p.batches[1], 1)
}

func TestPublishLinesError(t *testing.T) {
	boom := errors.New("broker down")
	n, err := publishLines(context.Background(), &recordingPublisher{err: boom}, strings.NewReader("a\n"), "stdin", true)
	assert.ErrorIs(t, err, boom)
	assert.Zero(t, n)
}

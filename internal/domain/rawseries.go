package domain

import (
	"context"
	"time"
)

// RawSeries is an unprocessed observation export from the source topic: the
// value is the full POWER-format text blob, one ingestion event per message.
// Optional "base_lat"/"target_lat" headers request a relocation.
type RawSeries struct {
	Key       []byte
	Value     []byte
	Headers   map[string]string
	Topic     string
	Partition int
	Offset    int64
	Timestamp time.Time
	Commit    func(ctx context.Context) error
}

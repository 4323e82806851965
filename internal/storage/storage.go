package storage

import (
	"context"

	"contractScope/internal/model"
)

// EventSink receives decoded event records from a scan.
type EventSink interface {
	PutEventBatch(ctx context.Context, events []model.EventRecord) error
}

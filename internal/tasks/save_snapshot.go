package tasks

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/mikestefanello/backlite"

	"github.com/mrlokans/librarian/internal/catalog"
)

// SnapshotSource produces the catalog state to persist.
type SnapshotSource interface {
	Snapshot() catalog.Snapshot
}

// SnapshotSaver writes a snapshot to durable storage.
type SnapshotSaver interface {
	SaveSnapshot(ctx context.Context, snap catalog.Snapshot) error
}

// SaveSnapshotTask persists the catalog as it is when the task runs, not as
// it was when the task was queued. Reason is only logged.
type SaveSnapshotTask struct {
	Reason string `json:"reason"`
}

func (t SaveSnapshotTask) Config() backlite.QueueConfig {
	return backlite.QueueConfig{
		Name:        "save_snapshot",
		MaxAttempts: 3,
		Backoff:     10 * time.Second,
		Timeout:     time.Minute,
		Retention: &backlite.Retention{
			Duration:   24 * time.Hour,
			OnlyFailed: false,
			Data:       &backlite.RetainData{OnlyFailed: true},
		},
	}
}

func SaveSnapshotProcessor(source SnapshotSource, saver SnapshotSaver) backlite.QueueProcessor[SaveSnapshotTask] {
	return func(ctx context.Context, task SaveSnapshotTask) error {
		if source == nil || saver == nil {
			return fmt.Errorf("snapshot saving not configured")
		}

		if err := saver.SaveSnapshot(ctx, source.Snapshot()); err != nil {
			return fmt.Errorf("save snapshot (%s): %w", task.Reason, err)
		}

		log.Printf("[TASK] Saved catalog snapshot (%s)", task.Reason)
		return nil
	}
}

func NewSaveSnapshotQueue(source SnapshotSource, saver SnapshotSaver) backlite.Queue {
	return backlite.NewQueue(SaveSnapshotProcessor(source, saver))
}

// EnqueueSnapshot queues a snapshot write.
func (c *Client) EnqueueSnapshot(reason string) error {
	if _, err := c.Add(SaveSnapshotTask{Reason: reason}).Save(); err != nil {
		return fmt.Errorf("failed to enqueue snapshot: %w", err)
	}
	return nil
}

// Package worker mirrors appended movements into the local SQLite audit
// copy. The mirror is a convenience for offline reporting and recovery;
// the spreadsheet remains the source of truth.
package worker

import (
	"context"
	"fmt"
	"log/slog"

	"primanota/internal/amqp"
	"primanota/internal/storage"
)

type MirrorWorker struct {
	storage *storage.SQLiteRepository
}

func NewMirrorWorker(storage *storage.SQLiteRepository) *MirrorWorker {
	return &MirrorWorker{storage: storage}
}

// HandleAppendedMessage processes one movement-appended message. Messages
// with an unusable payload are dropped, not requeued: requeueing them
// would loop forever.
func (w *MirrorWorker) HandleAppendedMessage(ctx context.Context, msg *amqp.MovementAppendedMessage) error {
	t, err := msg.Transaction()
	if err != nil {
		slog.WarnContext(ctx, "Dropping movement message with bad payload",
			"date", msg.Date,
			"error", err)
		return nil
	}

	id, err := w.storage.InsertMirrorMovement(ctx, t)
	if err != nil {
		return fmt.Errorf("mirror movement: %w", err)
	}

	slog.InfoContext(ctx, "Movement mirrored from queue",
		"id", id,
		"date", msg.Date,
		"amount_cents", msg.AmountCents)
	return nil
}

// LogMirrorStats reports the mirror size; called periodically so the
// worker's liveness is visible in the logs.
func (w *MirrorWorker) LogMirrorStats(ctx context.Context) error {
	n, err := w.storage.CountMirrorMovements(ctx)
	if err != nil {
		return fmt.Errorf("mirror stats: %w", err)
	}
	slog.InfoContext(ctx, "Mirror status", "movements", n)
	return nil
}

package ledger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"primanota/internal/cache"
	"primanota/internal/core"
	"primanota/internal/sheets"
)

// sourceFetchTimeout bounds one raw snapshot read so a stuck source
// cannot hang a request.
const sourceFetchTimeout = 15 * time.Second

var (
	// ErrSourceUnavailable signals that the external source could not be
	// reached or the worksheet is missing. Callers degrade to an empty
	// ledger instead of crashing.
	ErrSourceUnavailable = errors.New("ledger source unavailable")

	// ErrWriteFailed signals a failed append. The movement is assumed
	// lost unless the caller retries.
	ErrWriteFailed = errors.New("movement write failed")

	// ErrNotAllowed signals that the user's role may not submit movements.
	ErrNotAllowed = errors.New("role not allowed to append movements")
)

// Publisher announces appended movements, best-effort. A publish failure
// never fails the append.
type Publisher interface {
	PublishMovementAppended(ctx context.Context, t core.Transaction) error
}

// Service loads the normalized ledger from a movement source, memoizing
// the raw snapshot per source identity. The cache key carries nothing but
// the source identity; role scoping is applied after retrieval so every
// role shares one snapshot.
type Service struct {
	source    sheets.MovementSource
	writer    sheets.MovementWriter
	publisher Publisher
	opts      Options
	snapshots *cache.LRU[[]sheets.Record]
}

// NewService wires a ledger service around a source. writer and publisher
// may be nil for read-only sessions.
func NewService(source sheets.MovementSource, writer sheets.MovementWriter, opts Options, ttl time.Duration) *Service {
	return &Service{
		source:    source,
		writer:    writer,
		opts:      opts,
		snapshots: cache.NewLRU[[]sheets.Record](4, ttl),
	}
}

// WithPublisher attaches a movement-appended publisher.
func (s *Service) WithPublisher(p Publisher) *Service {
	s.publisher = p
	return s
}

// Load returns the scoped, normalized ledger for the user. The raw
// snapshot is fetched at most once per TTL window; call Refresh to force
// a re-read.
func (s *Service) Load(ctx context.Context, user core.UserContext) ([]core.Transaction, Stats, error) {
	key := s.source.ID()
	records, ok := s.snapshots.Get(key)
	if !ok {
		fctx, cancel := context.WithTimeout(ctx, sourceFetchTimeout)
		defer cancel()
		var err error
		records, err = s.source.Records(fctx)
		if err != nil {
			return nil, Stats{}, fmt.Errorf("%w: %v", ErrSourceUnavailable, err)
		}
		s.snapshots.Set(key, records)
	}

	txs, stats := Normalize(records, user, s.opts)
	if stats.InvalidDates > 0 || stats.UnparseableAmounts > 0 {
		slog.InfoContext(ctx, "Ledger normalized with dropped or coerced rows",
			"loaded", stats.Loaded,
			"invalid_dates", stats.InvalidDates,
			"unparseable_amounts", stats.UnparseableAmounts)
	}
	return txs, stats, nil
}

// Refresh invalidates the memoized snapshot for this source.
func (s *Service) Refresh() {
	s.snapshots.Delete(s.source.ID())
}

// Append submits one movement to the external store. The write is a
// single, non-atomic append; a concurrently running session observes it
// only after its own refresh. On success the local snapshot is
// invalidated and the appended movement is announced to the publisher.
func (s *Service) Append(ctx context.Context, user core.UserContext, t core.Transaction) error {
	if !user.CanAppend() {
		return fmt.Errorf("%w: %s", ErrNotAllowed, user.Role)
	}
	if s.writer == nil {
		return fmt.Errorf("%w: no writer configured", ErrWriteFailed)
	}
	if err := t.Validate(); err != nil {
		return err
	}

	if err := s.writer.Append(ctx, t); err != nil {
		return fmt.Errorf("%w: %v", ErrWriteFailed, err)
	}
	s.Refresh()

	if s.publisher != nil {
		if err := s.publisher.PublishMovementAppended(ctx, t); err != nil {
			slog.WarnContext(ctx, "Failed to publish appended movement",
				"error", err,
				"date", t.Date.Format("2006-01-02"))
		}
	}
	return nil
}

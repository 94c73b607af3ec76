package inventory

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"

	"github.com/ramonehamilton/carddex/internal/apperrors"
	"github.com/ramonehamilton/carddex/internal/events"
)

// Failure describes one card that BulkAdd could not add.
type Failure struct {
	CardID string `json:"card_id"`
	Error  string `json:"error"`
}

// BulkResult reports the outcome of BulkAdd. Succeeded keeps input order.
type BulkResult struct {
	Succeeded []string  `json:"succeeded"`
	Failed    []Failure `json:"failed"`
}

// SuccessCount returns the number of cards added.
func (r *BulkResult) SuccessCount() int { return len(r.Succeeded) }

// FailureCount returns the number of cards that failed.
func (r *BulkResult) FailureCount() int { return len(r.Failed) }

// BulkAdd acquires quantity copies of each card. Catalog fetches run in
// parallel; each card then commits on its own, so one failure never undoes
// or blocks the others. Cancelling ctx skips cards that have not started;
// a card already being recorded finishes.
func (s *Service) BulkAdd(ctx context.Context, cardIDs []string, quantity int) (*BulkResult, error) {
	if quantity <= 0 {
		return nil, apperrors.Validation("quantity must be positive")
	}

	start := time.Now()
	errs := make([]error, len(cardIDs))

	var g errgroup.Group
	g.SetLimit(s.cfg.BulkConcurrency)
	for i, id := range cardIDs {
		g.Go(func() error {
			errs[i] = s.addOne(ctx, id, quantity)
			return nil
		})
	}
	_ = g.Wait()

	result := &BulkResult{Succeeded: []string{}, Failed: []Failure{}}
	var combined error
	for i, err := range errs {
		if err == nil {
			result.Succeeded = append(result.Succeeded, cardIDs[i])
			continue
		}
		result.Failed = append(result.Failed, Failure{CardID: cardIDs[i], Error: err.Error()})
		combined = multierr.Append(combined, fmt.Errorf("%s: %w", cardIDs[i], err))
	}

	if combined != nil {
		s.log.Warnf(ctx, "bulk add: %d of %d cards failed: %v", len(result.Failed), len(cardIDs), combined)
	}
	s.metrics.ObserveBulk(len(result.Succeeded), len(result.Failed), time.Since(start))
	s.events.Dispatch(events.New(ctx, events.TypeBulkAddCompleted, events.BulkAddCompletedEvent{
		Succeeded: len(result.Succeeded),
		Failed:    len(result.Failed),
	}))
	return result, nil
}

func (s *Service) addOne(ctx context.Context, cardID string, quantity int) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("not attempted: %w", err)
	}

	raw, set, err := s.fetchIfNew(ctx, cardID)
	if err != nil {
		return err
	}

	// Once fetched, the card commits even if ctx is cancelled meanwhile.
	_, err = s.recordAcquisition(context.WithoutCancel(ctx), cardID, raw, set, quantity)
	return err
}

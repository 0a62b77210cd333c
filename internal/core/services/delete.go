package services

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/custodia-labs/sercha-library/internal/core/domain"
	"github.com/custodia-labs/sercha-library/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-library/internal/logger"
)

// DeleteOrchestrator removes every leaf of a group from the backend and only
// mutates the record cache once all leaf calls have settled successfully.
type DeleteOrchestrator struct {
	backend        driven.ContentBackend
	sync           *SyncController
	notifier       driven.Notifier
	maxConcurrency int
}

// NewDeleteOrchestrator creates a delete orchestrator.
// maxConcurrency bounds in-flight removal calls; values below 1 use the default.
func NewDeleteOrchestrator(
	backend driven.ContentBackend,
	controller *SyncController,
	notifier driven.Notifier,
	maxConcurrency int,
) *DeleteOrchestrator {
	if maxConcurrency < 1 {
		maxConcurrency = domain.DefaultDeleteConcurrency
	}
	return &DeleteOrchestrator{
		backend:        backend,
		sync:           controller,
		notifier:       notifier,
		maxConcurrency: maxConcurrency,
	}
}

// DeleteGroup issues one removal per leaf concurrently and joins the results.
//
// When every leaf succeeds the leaves are removed from the cache and a success
// notification names the count. When any leaf fails the cache is left
// untouched, an error notification reports deleted/total, and the returned
// error wraps domain.ErrPartialDelete. The outcome is returned either way.
func (d *DeleteOrchestrator) DeleteGroup(ctx context.Context, group domain.Group) (domain.DeleteOutcome, error) {
	leaves := group.Leaves()
	if len(leaves) == 0 {
		return domain.DeleteOutcome{}, fmt.Errorf("delete %q: %w", group.Key, domain.ErrEmptyGroup)
	}

	logger.Section("Delete")
	logger.Debug("deleting group %s (%s, %d leaves)", group.Key, group.Kind, len(leaves))

	release := d.sync.BeginRemoval(group.LeafIDs())
	defer release()

	var deleted, failed atomic.Int64
	var g errgroup.Group
	g.SetLimit(d.maxConcurrency)
	for i := range leaves {
		leaf := leaves[i]
		g.Go(func() error {
			if err := d.removeLeaf(ctx, &leaf); err != nil {
				logger.Debug("remove %s: %v", leaf.ID, err)
				failed.Add(1)
				return nil
			}
			deleted.Add(1)
			return nil
		})
	}
	// Leaf failures are counted, never returned, so Wait is the join barrier.
	_ = g.Wait()

	outcome := domain.DeleteOutcome{Deleted: int(deleted.Load()), Failed: int(failed.Load())}
	if outcome.Failed > 0 {
		d.notify(domain.SeverityError, fmt.Sprintf(
			"Deleted %d/%d %s of %q; refresh to reconcile",
			outcome.Deleted, outcome.Total(), itemNoun(outcome.Total()), group.Title))
		return outcome, fmt.Errorf("delete %q: %w: %d of %d failed",
			group.Key, domain.ErrPartialDelete, outcome.Failed, outcome.Total())
	}

	if _, err := d.sync.ApplyRemoval(ctx, group.LeafIDs()); err != nil {
		return outcome, err
	}
	d.notify(domain.SeveritySuccess, fmt.Sprintf("Deleted %d %s", outcome.Deleted, itemNoun(outcome.Deleted)))
	return outcome, nil
}

// removeLeaf routes the removal to the content-type specific endpoint.
func (d *DeleteOrchestrator) removeLeaf(ctx context.Context, leaf *domain.Record) error {
	var (
		res *domain.RemovalResult
		err error
	)
	if leaf.ContentType == domain.ContentTypeImage {
		res, err = d.backend.RemoveImage(ctx, leaf.ID)
	} else {
		res, err = d.backend.RemoveDocument(ctx, leaf.ID)
	}
	if err != nil {
		return err
	}
	if res == nil || !res.OK() {
		msg := "no result"
		if res != nil {
			msg = res.Message
		}
		return fmt.Errorf("%w: %s", domain.ErrBackendRejected, msg)
	}
	return nil
}

func (d *DeleteOrchestrator) notify(sev domain.Severity, msg string) {
	if sev == domain.SeverityError {
		logger.Error("%s", msg)
	} else {
		logger.Info("%s", msg)
	}
	if d.notifier == nil {
		return
	}
	d.notifier.Notify(domain.Notification{Severity: sev, Message: msg, At: time.Now()})
}

func itemNoun(n int) string {
	if n == 1 {
		return "item"
	}
	return "items"
}

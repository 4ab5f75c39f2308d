package enrich

import (
	"context"
	"log/slog"

	"fermata/internal/library"
	"fermata/internal/logging"
	"fermata/internal/match"
	"fermata/internal/providers"
)

// processBatch resolves all of a matched parent's pending children from a
// single provider lookup. Children are matched locally against the
// listing, greedily in provider order with first match winning; children
// the listing cannot account for become not_found. A failed fetch sweeps
// every pending child to error so the batch never strands them.
func (w *Worker) processBatch(ctx context.Context, logger *slog.Logger, item *library.WorkItem) {
	batcher, ok := w.source.(providers.BatchProvider)
	if !ok {
		logger.Warn("batch item for non-batch provider", logging.String("kind", string(item.Kind)))
		return
	}

	var (
		parentKind library.Kind
		childKind  library.Kind
		candidates []providers.Candidate
		err        error
	)
	switch item.Kind {
	case library.KindAlbumBatch:
		parentKind, childKind = library.KindArtist, library.KindAlbum
		candidates, err = batcher.ArtistDiscography(ctx, item.ParentProviderID)
	case library.KindTrackBatch:
		parentKind, childKind = library.KindAlbum, library.KindTrack
		candidates, err = batcher.AlbumTracks(ctx, item.ParentProviderID)
	default:
		logger.Warn("unexpected batch kind", logging.String("kind", string(item.Kind)))
		return
	}
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		swept, sweepErr := w.store.MarkChildrenError(ctx, w.provider, parentKind, item.EntityID)
		if sweepErr != nil {
			logger.Error("failed to sweep children after batch failure", logging.Error(sweepErr))
			w.addErrors(1)
			return
		}
		w.addErrors(swept)
		logger.Error("batch fetch failed; swept pending children to error",
			logging.Error(err),
			logging.Int64("swept", swept),
			logging.String(logging.FieldEventType, "batch_fetch_failed"))
		return
	}

	children, err := w.store.PendingChildren(ctx, w.provider, parentKind, item.EntityID)
	if err != nil {
		logger.Error("failed to list pending children", logging.Error(err))
		return
	}

	used := make([]bool, len(candidates))
	for _, child := range children {
		index := w.pickCandidate(child, candidates, used, item.Kind)
		if index < 0 {
			if err := w.store.MarkStatus(ctx, w.provider, childKind, child.ID, library.StatusNotFound); err != nil {
				logger.Error("failed to persist child not_found", logging.Error(err))
				w.addErrors(1)
				continue
			}
			w.addNotFound(1)
			continue
		}
		used[index] = true
		candidate := &candidates[index]
		fields := w.fieldsFor(childKind, candidate)
		if err := w.store.UpdateMatchedFields(ctx, w.provider, childKind, child.ID, candidate.ID, fields); err != nil {
			logger.Error("failed to persist child match", logging.Error(err))
			w.addErrors(1)
			continue
		}
		w.addMatched(1)
	}
	logger.Info("batch processed",
		logging.String("parent", item.Name),
		logging.Int("children", len(children)),
		logging.Int("listing", len(candidates)),
		logging.String(logging.FieldEventType, "batch_processed"))
}

// pickCandidate finds the first unused listing entry for a child. Track
// batches prefer a track-number-and-name agreement, falling back to
// name-only when numbering disagrees or is absent.
func (w *Worker) pickCandidate(child library.ChildRow, candidates []providers.Candidate, used []bool, batchKind library.Kind) int {
	if batchKind == library.KindTrackBatch && child.TrackNo > 0 {
		for i := range candidates {
			if used[i] {
				continue
			}
			if candidates[i].TrackNo == child.TrackNo && match.Matches(child.Name, candidates[i].Name) {
				return i
			}
		}
	}
	for i := range candidates {
		if used[i] {
			continue
		}
		if match.Matches(child.Name, candidates[i].Name) {
			return i
		}
	}
	return -1
}

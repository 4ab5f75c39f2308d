package enrich

import (
	"context"
	"errors"
	"log/slog"

	"fermata/internal/library"
	"fermata/internal/logging"
	"fermata/internal/providers"
)

// processItem runs one search-and-persist cycle for an individual entity.
// Every outcome ends in exactly one terminal status write; failures are
// classified through the sentinel taxonomy and never propagate.
func (w *Worker) processItem(ctx context.Context, logger *slog.Logger, item *library.WorkItem) {
	var (
		candidate *providers.Candidate
		err       error
	)
	switch item.Kind {
	case library.KindArtist:
		candidate, err = w.source.SearchArtist(ctx, item.Name)
	case library.KindAlbum:
		candidate, err = w.source.SearchAlbum(ctx, item.ArtistName, item.Name)
	case library.KindTrack:
		candidate, err = w.source.SearchTrack(ctx, item.ArtistName, item.Name)
	default:
		logger.Warn("unexpected item kind", logging.String("kind", string(item.Kind)))
		return
	}
	if err == nil {
		if validator, ok := w.source.(providers.IDValidator); ok && !validator.ValidID(candidate.ID) {
			err = providers.Wrap(providers.ErrDataIntegrity, w.source.Name(), "validate id",
				"candidate id "+candidate.ID+" outside provider namespace", nil)
		}
	}
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		w.recordFailure(ctx, logger, item, err)
		return
	}

	fields := w.fieldsFor(item.Kind, candidate)
	if err := w.store.UpdateMatchedFields(ctx, w.provider, item.Kind, item.EntityID, candidate.ID, fields); err != nil {
		logger.Error("failed to persist match", logging.Error(err))
		w.addErrors(1)
		return
	}
	w.addMatched(1)
	logger.Info("matched",
		logging.String("name", item.Name),
		logging.String("provider_id", candidate.ID),
		logging.String(logging.FieldEventType, "entity_matched"))

	w.maybeCorrectParent(ctx, logger, item, candidate)
}

// maybeCorrectParent reconciles the parent artist's stored provider ID
// with the one the child candidate reports. The child-scoped search is
// more specific, so its view of the parent wins.
func (w *Worker) maybeCorrectParent(ctx context.Context, logger *slog.Logger, item *library.WorkItem, candidate *providers.Candidate) {
	if item.Kind != library.KindAlbum && item.Kind != library.KindTrack {
		return
	}
	parentID := w.source.ParentID(candidate)
	if parentID == "" || item.ParentProviderID == "" || parentID == item.ParentProviderID {
		return
	}
	if err := w.store.CorrectParentID(ctx, w.provider, item.Kind, item.EntityID, parentID); err != nil {
		logger.Error("failed to correct parent id", logging.Error(err))
		return
	}
	logger.Warn("corrected parent provider id",
		logging.String("stored_id", item.ParentProviderID),
		logging.String("corrected_id", parentID),
		logging.String(logging.FieldEventType, "parent_id_corrected"))
}

func (w *Worker) recordFailure(ctx context.Context, logger *slog.Logger, item *library.WorkItem, err error) {
	status := providers.FailureStatus(err)
	if markErr := w.store.MarkStatus(ctx, w.provider, item.Kind, item.EntityID, status); markErr != nil {
		logger.Error("failed to persist failure status", logging.Error(markErr))
		w.addErrors(1)
		return
	}
	switch {
	case errors.Is(err, providers.ErrNoMatch):
		w.addNotFound(1)
		logger.Info("no acceptable match",
			logging.String("name", item.Name),
			logging.String(logging.FieldEventType, "entity_not_found"))
	case errors.Is(err, providers.ErrDataIntegrity):
		w.addErrors(1)
		logger.Warn("rejected untrustworthy result",
			logging.String("name", item.Name),
			logging.Error(err),
			logging.String(logging.FieldEventType, "entity_integrity_rejected"))
	default:
		w.addErrors(1)
		logger.Error("enrichment failed",
			logging.String("name", item.Name),
			logging.Error(err),
			logging.String(logging.FieldEventType, "entity_error"))
	}
}

func (w *Worker) fieldsFor(kind library.Kind, candidate *providers.Candidate) map[string]any {
	switch kind {
	case library.KindArtist:
		return w.source.ArtistFields(candidate)
	case library.KindAlbum:
		return w.source.AlbumFields(candidate)
	case library.KindTrack:
		return w.source.TrackFields(candidate)
	}
	return nil
}

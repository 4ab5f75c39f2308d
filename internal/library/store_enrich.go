package library

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"
)

// backfillColumns is the allowlist of writable metadata columns per entity
// kind. Provider field maps are filtered against it before any SQL is
// composed.
var backfillColumns = map[Kind]map[string]struct{}{
	KindArtist: columnSet("sort_name", "genre", "style", "mood", "biography", "formed_year", "thumb_url", "banner_url"),
	KindAlbum:  columnSet("year", "genre", "style", "mood", "label", "description", "thumb_url"),
	KindTrack:  columnSet("track_no", "duration_secs", "genre", "bpm", "explicit", "thumb_url"),
}

func columnSet(names ...string) map[string]struct{} {
	set := make(map[string]struct{}, len(names))
	for _, name := range names {
		set[name] = struct{}{}
	}
	return set
}

func tableForKind(kind Kind) (string, error) {
	switch kind {
	case KindArtist:
		return "artists", nil
	case KindAlbum:
		return "albums", nil
	case KindTrack:
		return "tracks", nil
	}
	return "", fmt.Errorf("no table for kind %q", kind)
}

func validateProvider(p Provider) error {
	if !p.Valid() {
		return fmt.Errorf("unknown provider %q", p)
	}
	return nil
}

// NextUnmatched returns the lowest-id entity of the given kind that the
// provider has never attempted, nil when none remain. Album and track
// items carry their parent artist's name and stored provider ID.
func (s *Store) NextUnmatched(ctx context.Context, provider Provider, kind Kind) (*WorkItem, error) {
	if err := validateProvider(provider); err != nil {
		return nil, err
	}
	ctx = ensureContext(ctx)

	switch kind {
	case KindArtist:
		row := s.db.QueryRowContext(ctx,
			`SELECT id, name FROM artists WHERE `+provider.statusColumn()+` IS NULL ORDER BY id LIMIT 1`)
		var item WorkItem
		if err := row.Scan(&item.EntityID, &item.Name); err != nil {
			return nilOnNoRows(err, "next unmatched artist")
		}
		item.Kind = KindArtist
		return &item, nil

	case KindAlbum:
		row := s.db.QueryRowContext(ctx,
			`SELECT al.id, al.title, ar.name, COALESCE(ar.`+provider.idColumn()+`, '')
             FROM albums al JOIN artists ar ON ar.id = al.artist_id
             WHERE al.`+provider.statusColumn()+` IS NULL
             ORDER BY al.id LIMIT 1`)
		var item WorkItem
		if err := row.Scan(&item.EntityID, &item.Name, &item.ArtistName, &item.ParentProviderID); err != nil {
			return nilOnNoRows(err, "next unmatched album")
		}
		item.Kind = KindAlbum
		return &item, nil

	case KindTrack:
		row := s.db.QueryRowContext(ctx,
			`SELECT t.id, t.title, COALESCE(t.track_no, 0), ar.name, COALESCE(ar.`+provider.idColumn()+`, '')
             FROM tracks t JOIN artists ar ON ar.id = t.artist_id
             WHERE t.`+provider.statusColumn()+` IS NULL
             ORDER BY t.id LIMIT 1`)
		var item WorkItem
		if err := row.Scan(&item.EntityID, &item.Name, &item.TrackNo, &item.ArtistName, &item.ParentProviderID); err != nil {
			return nilOnNoRows(err, "next unmatched track")
		}
		item.Kind = KindTrack
		return &item, nil
	}
	return nil, fmt.Errorf("kind %q cannot be selected individually", kind)
}

// NextBatch returns a batch item for a matched parent with pending
// children: first an artist whose albums await matching, then an album
// whose tracks do. Used by providers that can resolve a parent's whole
// child listing in one call.
func (s *Store) NextBatch(ctx context.Context, provider Provider) (*WorkItem, error) {
	if err := validateProvider(provider); err != nil {
		return nil, err
	}
	ctx = ensureContext(ctx)

	row := s.db.QueryRowContext(ctx,
		`SELECT ar.id, ar.name, ar.`+provider.idColumn()+`
         FROM artists ar
         WHERE ar.`+provider.statusColumn()+` = ? AND ar.`+provider.idColumn()+` IS NOT NULL
           AND EXISTS (SELECT 1 FROM albums al WHERE al.artist_id = ar.id AND al.`+provider.statusColumn()+` IS NULL)
         ORDER BY ar.id LIMIT 1`,
		StatusMatched)
	var item WorkItem
	err := row.Scan(&item.EntityID, &item.Name, &item.ParentProviderID)
	switch {
	case err == nil:
		item.Kind = KindAlbumBatch
		item.ArtistName = item.Name
		return &item, nil
	case !errors.Is(err, sql.ErrNoRows):
		return nil, fmt.Errorf("next album batch: %w", err)
	}

	row = s.db.QueryRowContext(ctx,
		`SELECT al.id, al.title, ar.name, al.`+provider.idColumn()+`
         FROM albums al JOIN artists ar ON ar.id = al.artist_id
         WHERE al.`+provider.statusColumn()+` = ? AND al.`+provider.idColumn()+` IS NOT NULL
           AND EXISTS (SELECT 1 FROM tracks t WHERE t.album_id = al.id AND t.`+provider.statusColumn()+` IS NULL)
         ORDER BY al.id LIMIT 1`,
		StatusMatched)
	if err := row.Scan(&item.EntityID, &item.Name, &item.ArtistName, &item.ParentProviderID); err != nil {
		return nilOnNoRows(err, "next track batch")
	}
	item.Kind = KindTrackBatch
	return &item, nil
}

// NextRetryEligible returns the stalest failed entity whose retry window
// has elapsed: not_found rows attempted before notFoundCutoff, error rows
// attempted before errorCutoff. Parents are considered before children.
func (s *Store) NextRetryEligible(ctx context.Context, provider Provider, notFoundCutoff, errorCutoff time.Time) (*WorkItem, error) {
	if err := validateProvider(provider); err != nil {
		return nil, err
	}
	ctx = ensureContext(ctx)
	// RFC3339Nano trims trailing fractional zeros, so raw string
	// comparison can misorder timestamps: compare via datetime().
	nfCut := notFoundCutoff.UTC().Format(time.RFC3339Nano)
	errCut := errorCutoff.UTC().Format(time.RFC3339Nano)
	status := provider.statusColumn()
	attempted := provider.attemptedColumn()
	condition := `((` + status + ` = ? AND datetime(` + attempted + `) < datetime(?)) OR (` + status + ` = ? AND datetime(` + attempted + `) < datetime(?)))`
	args := []any{StatusNotFound, nfCut, StatusError, errCut}

	row := s.db.QueryRowContext(ctx,
		`SELECT id, name FROM artists WHERE `+condition+` ORDER BY `+attempted+` LIMIT 1`, args...)
	var item WorkItem
	err := row.Scan(&item.EntityID, &item.Name)
	switch {
	case err == nil:
		item.Kind = KindArtist
		return &item, nil
	case !errors.Is(err, sql.ErrNoRows):
		return nil, fmt.Errorf("next retry artist: %w", err)
	}

	row = s.db.QueryRowContext(ctx,
		`SELECT al.id, al.title, ar.name, COALESCE(ar.`+provider.idColumn()+`, '')
         FROM albums al JOIN artists ar ON ar.id = al.artist_id
         WHERE (al.`+status+` = ? AND datetime(al.`+attempted+`) < datetime(?)) OR (al.`+status+` = ? AND datetime(al.`+attempted+`) < datetime(?))
         ORDER BY al.`+attempted+` LIMIT 1`, args...)
	err = row.Scan(&item.EntityID, &item.Name, &item.ArtistName, &item.ParentProviderID)
	switch {
	case err == nil:
		item.Kind = KindAlbum
		return &item, nil
	case !errors.Is(err, sql.ErrNoRows):
		return nil, fmt.Errorf("next retry album: %w", err)
	}

	row = s.db.QueryRowContext(ctx,
		`SELECT t.id, t.title, COALESCE(t.track_no, 0), ar.name, COALESCE(ar.`+provider.idColumn()+`, '')
         FROM tracks t JOIN artists ar ON ar.id = t.artist_id
         WHERE (t.`+status+` = ? AND datetime(t.`+attempted+`) < datetime(?)) OR (t.`+status+` = ? AND datetime(t.`+attempted+`) < datetime(?))
         ORDER BY t.`+attempted+` LIMIT 1`, args...)
	if err := row.Scan(&item.EntityID, &item.Name, &item.TrackNo, &item.ArtistName, &item.ParentProviderID); err != nil {
		return nilOnNoRows(err, "next retry track")
	}
	item.Kind = KindTrack
	return &item, nil
}

// MarkStatus records a terminal status and attempt timestamp for one
// entity. A not_found or error mark clears any previously stored provider
// ID from an older match.
func (s *Store) MarkStatus(ctx context.Context, provider Provider, kind Kind, id int64, status MatchStatus) error {
	if err := validateProvider(provider); err != nil {
		return err
	}
	table, err := tableForKind(kind)
	if err != nil {
		return err
	}
	now := nowTimestamp()
	query := `UPDATE ` + table + ` SET ` +
		provider.statusColumn() + ` = ?, ` +
		provider.attemptedColumn() + ` = ?, updated_at = ?`
	args := []any{status, now, now}
	if status != StatusMatched {
		query += `, ` + provider.idColumn() + ` = NULL`
	}
	query += ` WHERE id = ?`
	args = append(args, id)

	res, err := s.execWithRetry(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("mark %s %s: %w", kind, status, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("mark %s rows affected: %w", kind, err)
	}
	if affected == 0 {
		return fmt.Errorf("%s %d not found", kind, id)
	}
	return nil
}

// UpdateMatchedFields records a match in a single transaction: the
// provider ID, matched status, attempt timestamp, and backfill-only
// metadata writes. Existing non-empty values are never overwritten.
func (s *Store) UpdateMatchedFields(ctx context.Context, provider Provider, kind Kind, id int64, providerID string, fields map[string]any) error {
	if err := validateProvider(provider); err != nil {
		return err
	}
	table, err := tableForKind(kind)
	if err != nil {
		return err
	}
	if strings.TrimSpace(providerID) == "" {
		return errors.New("provider id is required for a match")
	}
	allowed := backfillColumns[kind]

	assignments := []string{
		provider.idColumn() + " = ?",
		provider.statusColumn() + " = ?",
		provider.attemptedColumn() + " = ?",
		"updated_at = ?",
	}
	now := nowTimestamp()
	args := []any{providerID, StatusMatched, now, now}

	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if _, ok := allowed[name]; !ok {
			return fmt.Errorf("column %q is not writable for %s", name, kind)
		}
		value := fields[name]
		if value == nil || value == "" || value == 0 {
			continue
		}
		assignments = append(assignments,
			name+" = CASE WHEN "+name+" IS NULL OR "+name+" = '' OR "+name+" = 0 THEN ? ELSE "+name+" END")
		args = append(args, value)
	}
	args = append(args, id)

	ctx = ensureContext(ctx)
	return retryOnBusy(ctx, func() error {
		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("begin match tx: %w", err)
		}
		defer func() { _ = tx.Rollback() }()

		res, err := tx.ExecContext(ctx,
			`UPDATE `+table+` SET `+strings.Join(assignments, ", ")+` WHERE id = ?`, args...)
		if err != nil {
			return fmt.Errorf("update matched %s: %w", kind, err)
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("matched rows affected: %w", err)
		}
		if affected == 0 {
			return fmt.Errorf("%s %d not found", kind, id)
		}
		return tx.Commit()
	})
}

// CorrectParentID overwrites the parent artist's stored provider ID with
// the one observed on a child match. Child-scoped queries are more
// specific, so the child's view of the parent wins.
func (s *Store) CorrectParentID(ctx context.Context, provider Provider, childKind Kind, childID int64, parentProviderID string) error {
	if err := validateProvider(provider); err != nil {
		return err
	}
	if strings.TrimSpace(parentProviderID) == "" {
		return errors.New("parent provider id is required")
	}
	var subquery string
	switch childKind {
	case KindAlbum:
		subquery = `SELECT artist_id FROM albums WHERE id = ?`
	case KindTrack:
		subquery = `SELECT artist_id FROM tracks WHERE id = ?`
	default:
		return fmt.Errorf("kind %q has no parent to correct", childKind)
	}
	res, err := s.execWithRetry(ctx,
		`UPDATE artists SET `+provider.idColumn()+` = ?, updated_at = ? WHERE id = (`+subquery+`)`,
		parentProviderID, nowTimestamp(), childID)
	if err != nil {
		return fmt.Errorf("correct parent id: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("correct parent rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("no parent artist found for %s %d", childKind, childID)
	}
	return nil
}

// PendingChildren lists a parent's children the provider has not yet
// attempted, for local matching during a batch cascade.
func (s *Store) PendingChildren(ctx context.Context, provider Provider, parentKind Kind, parentID int64) ([]ChildRow, error) {
	if err := validateProvider(provider); err != nil {
		return nil, err
	}
	ctx = ensureContext(ctx)

	var query string
	switch parentKind {
	case KindArtist:
		query = `SELECT id, title, 0 FROM albums WHERE artist_id = ? AND ` + provider.statusColumn() + ` IS NULL ORDER BY id`
	case KindAlbum:
		query = `SELECT id, title, COALESCE(track_no, 0) FROM tracks WHERE album_id = ? AND ` + provider.statusColumn() + ` IS NULL ORDER BY id`
	default:
		return nil, fmt.Errorf("kind %q has no children", parentKind)
	}

	rows, err := s.db.QueryContext(ctx, query, parentID)
	if err != nil {
		return nil, fmt.Errorf("pending children: %w", err)
	}
	defer rows.Close()

	var children []ChildRow
	for rows.Next() {
		var child ChildRow
		if err := rows.Scan(&child.ID, &child.Name, &child.TrackNo); err != nil {
			return nil, fmt.Errorf("scan pending child: %w", err)
		}
		children = append(children, child)
	}
	return children, rows.Err()
}

// MarkChildrenError sweeps all of a parent's unattempted children to
// error in one statement, used when a batch fetch fails so the children
// are not stranded as unattempted forever.
func (s *Store) MarkChildrenError(ctx context.Context, provider Provider, parentKind Kind, parentID int64) (int64, error) {
	if err := validateProvider(provider); err != nil {
		return 0, err
	}
	var table, parentColumn string
	switch parentKind {
	case KindArtist:
		table, parentColumn = "albums", "artist_id"
	case KindAlbum:
		table, parentColumn = "tracks", "album_id"
	default:
		return 0, fmt.Errorf("kind %q has no children", parentKind)
	}
	now := nowTimestamp()
	res, err := s.execWithRetry(ctx,
		`UPDATE `+table+` SET `+provider.statusColumn()+` = ?, `+provider.attemptedColumn()+` = ?, updated_at = ?
         WHERE `+parentColumn+` = ? AND `+provider.statusColumn()+` IS NULL`,
		StatusError, now, now, parentID)
	if err != nil {
		return 0, fmt.Errorf("mark children error: %w", err)
	}
	return res.RowsAffected()
}

// CountPending returns how many entities the provider has never
// attempted, across all three tables.
func (s *Store) CountPending(ctx context.Context, provider Provider) (int64, error) {
	if err := validateProvider(provider); err != nil {
		return 0, err
	}
	status := provider.statusColumn()
	row := s.db.QueryRowContext(ensureContext(ctx),
		`SELECT
            (SELECT COUNT(1) FROM artists WHERE `+status+` IS NULL) +
            (SELECT COUNT(1) FROM albums WHERE `+status+` IS NULL) +
            (SELECT COUNT(1) FROM tracks WHERE `+status+` IS NULL)`)
	var count int64
	if err := row.Scan(&count); err != nil {
		return 0, fmt.Errorf("count pending: %w", err)
	}
	return count, nil
}

// ProgressBreakdown reports matched/total per entity kind for one provider.
func (s *Store) ProgressBreakdown(ctx context.Context, provider Provider) (map[Kind]Progress, error) {
	if err := validateProvider(provider); err != nil {
		return nil, err
	}
	ctx = ensureContext(ctx)
	status := provider.statusColumn()
	breakdown := make(map[Kind]Progress, 3)
	for _, kind := range []Kind{KindArtist, KindAlbum, KindTrack} {
		table, err := tableForKind(kind)
		if err != nil {
			return nil, err
		}
		row := s.db.QueryRowContext(ctx,
			`SELECT COUNT(1), COALESCE(SUM(CASE WHEN `+status+` = ? THEN 1 ELSE 0 END), 0) FROM `+table,
			StatusMatched)
		var progress Progress
		if err := row.Scan(&progress.Total, &progress.Matched); err != nil {
			return nil, fmt.Errorf("progress for %s: %w", table, err)
		}
		breakdown[kind] = progress
	}
	return breakdown, nil
}

func nilOnNoRows(err error, operation string) (*WorkItem, error) {
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return nil, fmt.Errorf("%s: %w", operation, err)
}

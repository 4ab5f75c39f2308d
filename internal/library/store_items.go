package library

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
)

func matchColumns() string {
	cols := make([]string, 0, len(AllProviders)*3)
	for _, p := range AllProviders {
		cols = append(cols, p.idColumn(), p.statusColumn(), p.attemptedColumn())
	}
	return strings.Join(cols, ", ")
}

var (
	artistColumns = "id, name, sort_name, genre, style, mood, biography, formed_year, thumb_url, banner_url, created_at, updated_at, " + matchColumns()
	albumColumns  = "id, artist_id, title, year, genre, style, mood, label, description, thumb_url, created_at, updated_at, " + matchColumns()
	trackColumns  = "id, album_id, artist_id, title, track_no, duration_secs, genre, bpm, explicit, thumb_url, created_at, updated_at, " + matchColumns()
)

// AddArtist inserts a new artist with no match state.
func (s *Store) AddArtist(ctx context.Context, name string) (*Artist, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, errors.New("artist name is required")
	}
	now := nowTimestamp()
	res, err := s.execWithRetry(
		ctx,
		`INSERT INTO artists (name, created_at, updated_at) VALUES (?, ?, ?)`,
		name, now, now,
	)
	if err != nil {
		return nil, fmt.Errorf("insert artist: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetArtist(ctx, id)
}

// AddAlbum inserts a new album under an existing artist.
func (s *Store) AddAlbum(ctx context.Context, artistID int64, title string, year int) (*Album, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, errors.New("album title is required")
	}
	now := nowTimestamp()
	res, err := s.execWithRetry(
		ctx,
		`INSERT INTO albums (artist_id, title, year, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`,
		artistID, title, nullableInt(year), now, now,
	)
	if err != nil {
		return nil, fmt.Errorf("insert album: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetAlbum(ctx, id)
}

// AddTrack inserts a new track under an existing album. The album's artist
// is denormalized onto the track row.
func (s *Store) AddTrack(ctx context.Context, albumID int64, title string, trackNo int) (*Track, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, errors.New("track title is required")
	}
	album, err := s.GetAlbum(ctx, albumID)
	if err != nil {
		return nil, err
	}
	if album == nil {
		return nil, fmt.Errorf("album %d not found", albumID)
	}
	now := nowTimestamp()
	res, err := s.execWithRetry(
		ctx,
		`INSERT INTO tracks (album_id, artist_id, title, track_no, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?)`,
		albumID, album.ArtistID, title, nullableInt(trackNo), now, now,
	)
	if err != nil {
		return nil, fmt.Errorf("insert track: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetTrack(ctx, id)
}

// GetArtist fetches an artist by identifier, nil when absent.
func (s *Store) GetArtist(ctx context.Context, id int64) (*Artist, error) {
	row := s.db.QueryRowContext(ensureContext(ctx), `SELECT `+artistColumns+` FROM artists WHERE id = ?`, id)
	artist, err := scanArtist(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get artist: %w", err)
	}
	return artist, nil
}

// GetAlbum fetches an album by identifier, nil when absent.
func (s *Store) GetAlbum(ctx context.Context, id int64) (*Album, error) {
	row := s.db.QueryRowContext(ensureContext(ctx), `SELECT `+albumColumns+` FROM albums WHERE id = ?`, id)
	album, err := scanAlbum(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get album: %w", err)
	}
	return album, nil
}

// GetTrack fetches a track by identifier, nil when absent.
func (s *Store) GetTrack(ctx context.Context, id int64) (*Track, error) {
	row := s.db.QueryRowContext(ensureContext(ctx), `SELECT `+trackColumns+` FROM tracks WHERE id = ?`, id)
	track, err := scanTrack(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get track: %w", err)
	}
	return track, nil
}

// ListArtists returns all artists ordered by id.
func (s *Store) ListArtists(ctx context.Context) ([]*Artist, error) {
	rows, err := s.db.QueryContext(ensureContext(ctx), `SELECT `+artistColumns+` FROM artists ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list artists: %w", err)
	}
	defer rows.Close()

	var artists []*Artist
	for rows.Next() {
		artist, err := scanArtist(rows)
		if err != nil {
			return nil, fmt.Errorf("scan artist: %w", err)
		}
		artists = append(artists, artist)
	}
	return artists, rows.Err()
}

// ListAlbums returns an artist's albums ordered by id; artistID 0 lists all.
func (s *Store) ListAlbums(ctx context.Context, artistID int64) ([]*Album, error) {
	query := `SELECT ` + albumColumns + ` FROM albums ORDER BY id`
	args := []any{}
	if artistID > 0 {
		query = `SELECT ` + albumColumns + ` FROM albums WHERE artist_id = ? ORDER BY id`
		args = append(args, artistID)
	}
	rows, err := s.db.QueryContext(ensureContext(ctx), query, args...)
	if err != nil {
		return nil, fmt.Errorf("list albums: %w", err)
	}
	defer rows.Close()

	var albums []*Album
	for rows.Next() {
		album, err := scanAlbum(rows)
		if err != nil {
			return nil, fmt.Errorf("scan album: %w", err)
		}
		albums = append(albums, album)
	}
	return albums, rows.Err()
}

// ListTracks returns an album's tracks ordered by track number; albumID 0
// lists all.
func (s *Store) ListTracks(ctx context.Context, albumID int64) ([]*Track, error) {
	query := `SELECT ` + trackColumns + ` FROM tracks ORDER BY id`
	args := []any{}
	if albumID > 0 {
		query = `SELECT ` + trackColumns + ` FROM tracks WHERE album_id = ? ORDER BY track_no, id`
		args = append(args, albumID)
	}
	rows, err := s.db.QueryContext(ensureContext(ctx), query, args...)
	if err != nil {
		return nil, fmt.Errorf("list tracks: %w", err)
	}
	defer rows.Close()

	var tracks []*Track
	for rows.Next() {
		track, err := scanTrack(rows)
		if err != nil {
			return nil, fmt.Errorf("scan track: %w", err)
		}
		tracks = append(tracks, track)
	}
	return tracks, rows.Err()
}

type rowScanner interface{ Scan(dest ...any) error }

func scanMatchDests(matches *[]matchScan) []any {
	*matches = make([]matchScan, len(AllProviders))
	dests := make([]any, 0, len(AllProviders)*3)
	for i := range *matches {
		m := &(*matches)[i]
		dests = append(dests, &m.id, &m.status, &m.attempted)
	}
	return dests
}

type matchScan struct {
	id        sql.NullString
	status    sql.NullString
	attempted sql.NullString
}

func buildMatches(scans []matchScan) map[Provider]MatchInfo {
	matches := make(map[Provider]MatchInfo, len(AllProviders))
	for i, p := range AllProviders {
		scan := scans[i]
		info := MatchInfo{
			ProviderID:  scan.id.String,
			AttemptedAt: parseTimestamp(scan.attempted),
		}
		if scan.status.Valid {
			if status, ok := ParseStatus(scan.status.String); ok {
				info.Status = status
			}
		}
		matches[p] = info
	}
	return matches
}

func scanArtist(scanner rowScanner) (*Artist, error) {
	var (
		artist     Artist
		sortName   sql.NullString
		genre      sql.NullString
		style      sql.NullString
		mood       sql.NullString
		biography  sql.NullString
		formedYear sql.NullInt64
		thumbURL   sql.NullString
		bannerURL  sql.NullString
		createdRaw sql.NullString
		updatedRaw sql.NullString
		matches    []matchScan
	)
	dests := []any{
		&artist.ID, &artist.Name, &sortName, &genre, &style, &mood,
		&biography, &formedYear, &thumbURL, &bannerURL, &createdRaw, &updatedRaw,
	}
	dests = append(dests, scanMatchDests(&matches)...)
	if err := scanner.Scan(dests...); err != nil {
		return nil, err
	}
	artist.SortName = sortName.String
	artist.Genre = genre.String
	artist.Style = style.String
	artist.Mood = mood.String
	artist.Biography = biography.String
	artist.FormedYear = int(formedYear.Int64)
	artist.ThumbURL = thumbURL.String
	artist.BannerURL = bannerURL.String
	artist.CreatedAt = parseTimestamp(createdRaw)
	artist.UpdatedAt = parseTimestamp(updatedRaw)
	artist.Matches = buildMatches(matches)
	return &artist, nil
}

func scanAlbum(scanner rowScanner) (*Album, error) {
	var (
		album       Album
		year        sql.NullInt64
		genre       sql.NullString
		style       sql.NullString
		mood        sql.NullString
		label       sql.NullString
		description sql.NullString
		thumbURL    sql.NullString
		createdRaw  sql.NullString
		updatedRaw  sql.NullString
		matches     []matchScan
	)
	dests := []any{
		&album.ID, &album.ArtistID, &album.Title, &year, &genre, &style,
		&mood, &label, &description, &thumbURL, &createdRaw, &updatedRaw,
	}
	dests = append(dests, scanMatchDests(&matches)...)
	if err := scanner.Scan(dests...); err != nil {
		return nil, err
	}
	album.Year = int(year.Int64)
	album.Genre = genre.String
	album.Style = style.String
	album.Mood = mood.String
	album.Label = label.String
	album.Description = description.String
	album.ThumbURL = thumbURL.String
	album.CreatedAt = parseTimestamp(createdRaw)
	album.UpdatedAt = parseTimestamp(updatedRaw)
	album.Matches = buildMatches(matches)
	return &album, nil
}

func scanTrack(scanner rowScanner) (*Track, error) {
	var (
		track      Track
		trackNo    sql.NullInt64
		duration   sql.NullInt64
		genre      sql.NullString
		bpm        sql.NullInt64
		explicit   sql.NullInt64
		thumbURL   sql.NullString
		createdRaw sql.NullString
		updatedRaw sql.NullString
		matches    []matchScan
	)
	dests := []any{
		&track.ID, &track.AlbumID, &track.ArtistID, &track.Title, &trackNo,
		&duration, &genre, &bpm, &explicit, &thumbURL, &createdRaw, &updatedRaw,
	}
	dests = append(dests, scanMatchDests(&matches)...)
	if err := scanner.Scan(dests...); err != nil {
		return nil, err
	}
	track.TrackNo = int(trackNo.Int64)
	track.DurationSecs = int(duration.Int64)
	track.Genre = genre.String
	track.BPM = int(bpm.Int64)
	track.Explicit = explicit.Int64 != 0
	track.ThumbURL = thumbURL.String
	track.CreatedAt = parseTimestamp(createdRaw)
	track.UpdatedAt = parseTimestamp(updatedRaw)
	track.Matches = buildMatches(matches)
	return &track, nil
}

package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"fermata/internal/library"
)

func newLibraryCommand(ctx *commandContext) *cobra.Command {
	libraryCmd := &cobra.Command{
		Use:   "library",
		Short: "Seed and inspect the local library",
	}

	libraryCmd.AddCommand(newAddArtistCommand(ctx))
	libraryCmd.AddCommand(newAddAlbumCommand(ctx))
	libraryCmd.AddCommand(newAddTrackCommand(ctx))
	libraryCmd.AddCommand(newLibraryListCommand(ctx))

	return libraryCmd
}

func (c *commandContext) withStore(fn func(*library.Store) error) error {
	cfg, err := c.ensureConfig()
	if err != nil {
		return err
	}
	store, err := library.Open(cfg)
	if err != nil {
		return err
	}
	defer store.Close()
	return fn(store)
}

func newAddArtistCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "add-artist <name>",
		Short: "Add an artist to the library",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(store *library.Store) error {
				artist, err := store.AddArtist(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Added artist %d: %s\n", artist.ID, artist.Name)
				return nil
			})
		},
	}
}

func newAddAlbumCommand(ctx *commandContext) *cobra.Command {
	var year int
	cmd := &cobra.Command{
		Use:   "add-album <artist-id> <title>",
		Short: "Add an album under an artist",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			artistID, err := parseID(args[0])
			if err != nil {
				return err
			}
			return ctx.withStore(func(store *library.Store) error {
				album, err := store.AddAlbum(cmd.Context(), artistID, args[1], year)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Added album %d: %s\n", album.ID, album.Title)
				return nil
			})
		},
	}
	cmd.Flags().IntVar(&year, "year", 0, "Release year when known")
	return cmd
}

func newAddTrackCommand(ctx *commandContext) *cobra.Command {
	var trackNo int
	cmd := &cobra.Command{
		Use:   "add-track <album-id> <title>",
		Short: "Add a track under an album",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			albumID, err := parseID(args[0])
			if err != nil {
				return err
			}
			return ctx.withStore(func(store *library.Store) error {
				track, err := store.AddTrack(cmd.Context(), albumID, args[1], trackNo)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Added track %d: %s\n", track.ID, track.Title)
				return nil
			})
		},
	}
	cmd.Flags().IntVar(&trackNo, "no", 0, "Track number when known")
	return cmd
}

func newLibraryListCommand(ctx *commandContext) *cobra.Command {
	var artistID int64
	var albumID int64
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List artists, one artist's albums, or one album's tracks",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(store *library.Store) error {
				stdout := cmd.OutOrStdout()
				switch {
				case albumID > 0:
					tracks, err := store.ListTracks(cmd.Context(), albumID)
					if err != nil {
						return err
					}
					if len(tracks) == 0 {
						fmt.Fprintln(stdout, "No tracks")
						return nil
					}
					rows := make([][]string, 0, len(tracks))
					for _, t := range tracks {
						rows = append(rows, []string{
							strconv.FormatInt(t.ID, 10),
							strconv.Itoa(t.TrackNo),
							t.Title,
							formatDuration(t.DurationSecs),
							summarizeMatches(t.Matches),
						})
					}
					fmt.Fprintln(stdout, renderTable([]column{
						{title: "ID", numeric: true},
						{title: "No", numeric: true},
						{title: "Title"},
						{title: "Duration", numeric: true},
						{title: "Matches"},
					}, rows))
				case artistID > 0:
					albums, err := store.ListAlbums(cmd.Context(), artistID)
					if err != nil {
						return err
					}
					if len(albums) == 0 {
						fmt.Fprintln(stdout, "No albums")
						return nil
					}
					rows := make([][]string, 0, len(albums))
					for _, a := range albums {
						year := ""
						if a.Year > 0 {
							year = strconv.Itoa(a.Year)
						}
						rows = append(rows, []string{
							strconv.FormatInt(a.ID, 10),
							a.Title,
							year,
							a.Genre,
							summarizeMatches(a.Matches),
						})
					}
					fmt.Fprintln(stdout, renderTable([]column{
						{title: "ID", numeric: true},
						{title: "Title"},
						{title: "Year", numeric: true},
						{title: "Genre"},
						{title: "Matches"},
					}, rows))
				default:
					artists, err := store.ListArtists(cmd.Context())
					if err != nil {
						return err
					}
					if len(artists) == 0 {
						fmt.Fprintln(stdout, "Library is empty")
						return nil
					}
					rows := make([][]string, 0, len(artists))
					for _, a := range artists {
						rows = append(rows, []string{
							strconv.FormatInt(a.ID, 10),
							a.Name,
							a.Genre,
							summarizeMatches(a.Matches),
						})
					}
					fmt.Fprintln(stdout, renderTable([]column{
						{title: "ID", numeric: true},
						{title: "Name"},
						{title: "Genre"},
						{title: "Matches"},
					}, rows))
				}
				return nil
			})
		},
	}
	cmd.Flags().Int64Var(&artistID, "artist", 0, "List albums for this artist ID")
	cmd.Flags().Int64Var(&albumID, "album", 0, "List tracks for this album ID")
	return cmd
}

func parseID(value string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64)
	if err != nil || id < 1 {
		return 0, fmt.Errorf("invalid id %q", value)
	}
	return id, nil
}

func formatDuration(secs int) string {
	if secs <= 0 {
		return "-"
	}
	return fmt.Sprintf("%d:%02d", secs/60, secs%60)
}

// summarizeMatches renders per-provider state as e.g. "musicbrainz:matched".
func summarizeMatches(matches map[library.Provider]library.MatchInfo) string {
	if len(matches) == 0 {
		return "-"
	}
	parts := make([]string, 0, len(matches))
	for _, provider := range library.AllProviders {
		info, ok := matches[provider]
		if !ok || !info.Attempted() {
			continue
		}
		parts = append(parts, fmt.Sprintf("%s:%s", provider, info.Status))
	}
	if len(parts) == 0 {
		return "-"
	}
	return strings.Join(parts, " ")
}

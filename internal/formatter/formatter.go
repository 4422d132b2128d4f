// package formatter renders unified playlists to various formats (JSON, CSV, Markdown, plain text)
package formatter

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/desertthunder/listenx/internal/models"
	"github.com/desertthunder/listenx/internal/shared"
)

// Format is an export format name.
type Format string

const (
	JSON     Format = "json"
	CSV      Format = "csv"
	Markdown Format = "markdown"
	Text     Format = "txt"
)

// Formats lists the supported formats.
func Formats() []Format {
	return []Format{JSON, CSV, Markdown, Text}
}

// ParseFormat accepts a format name or a common alias ("md", "text").
func ParseFormat(name string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "json":
		return JSON, nil
	case "csv":
		return CSV, nil
	case "markdown", "md":
		return Markdown, nil
	case "txt", "text":
		return Text, nil
	default:
		return "", fmt.Errorf("%w: unknown format %q", shared.ErrInvalidArgument, name)
	}
}

// Render encodes pl in the given format.
func Render(pl *models.Playlist, f Format) ([]byte, error) {
	switch f {
	case CSV:
		return ExportToCSV(pl)
	case Markdown:
		return ExportToMarkdown(pl, pl.CoverURL)
	case Text:
		return ExportToText(pl)
	case JSON:
		return ExportToJSON(pl)
	default:
		return nil, fmt.Errorf("%w: unknown format %q", shared.ErrInvalidArgument, f)
	}
}

// ExportToJSON encodes the full playlist, tracks and failures included.
func ExportToJSON(pl *models.Playlist) ([]byte, error) {
	return shared.MarshalJSON(pl, true)
}

// ExportToCSV converts a Playlist to CSV format with columns: ID, Title, Artist, Album, Source, URL
func ExportToCSV(pl *models.Playlist) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"ID", "Title", "Artist", "Album", "Source", "URL"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, track := range pl.Tracks {
		record := []string{
			track.ID,
			track.Title,
			track.Artist,
			track.Album,
			string(track.Source),
			track.SourceURL,
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// ExportToMarkdown converts a Playlist to Markdown format with an optional cover image reference
func ExportToMarkdown(pl *models.Playlist, image string) ([]byte, error) {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "# %s\n\n", pl.Title)

	if image != "" {
		fmt.Fprintf(&buf, "![Cover](%s)\n\n", image)
	}

	if pl.SourceURL != "" {
		fmt.Fprintf(&buf, "**Source**: <%s>\n", pl.SourceURL)
	}
	fmt.Fprintf(&buf, "**Tracks**: %d\n\n", len(pl.Tracks))

	buf.WriteString("## Tracks\n\n")
	for i, track := range pl.Tracks {
		albumPart := ""
		if track.Album != "" && track.Album != models.UnknownAlbum {
			albumPart = fmt.Sprintf(" (%s)", track.Album)
		}
		fmt.Fprintf(&buf, "%d. [%s - %s%s](%s)\n", i+1, track.Artist, track.Title, albumPart, track.SourceURL)
	}

	if len(pl.Failed) > 0 {
		fmt.Fprintf(&buf, "\n## Unresolved (%d)\n\n", len(pl.Failed))
		for _, f := range pl.Failed {
			fmt.Fprintf(&buf, "- `%s`: %s\n", f.NativeID, f.Error)
		}
	}

	return buf.Bytes(), nil
}

// ExportToText converts a Playlist to plain text format
func ExportToText(pl *models.Playlist) ([]byte, error) {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "Playlist: %s\n", pl.Title)
	if pl.SourceURL != "" {
		fmt.Fprintf(&buf, "Source: %s\n", pl.SourceURL)
	}
	fmt.Fprintf(&buf, "Tracks: %d\n\n", len(pl.Tracks))

	for i, track := range pl.Tracks {
		fmt.Fprintf(&buf, "%d. %s - %s\n", i+1, track.Artist, track.Title)
	}
	for _, f := range pl.Failed {
		fmt.Fprintf(&buf, "!! %s: %s\n", f.NativeID, f.Error)
	}

	return buf.Bytes(), nil
}

// ExportPlaylists renders one listing page as a bordered table followed by a paging line.
func ExportPlaylists(page *models.PagedResult[models.Playlist]) []byte {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("#", "ID", "Title", "URL")
	for i, pl := range page.Items {
		t.Row(strconv.Itoa(i+1), pl.ID, pl.Title, pl.SourceURL)
	}

	var buf bytes.Buffer
	buf.WriteString(t.Render())
	buf.WriteString("\n")
	if page.Paginated() {
		fmt.Fprintf(&buf, "page %d (size %d), %d total\n", page.Page, page.PageSize, page.Total)
	} else {
		fmt.Fprintf(&buf, "%d playlists\n", len(page.Items))
	}
	return buf.Bytes()
}

// DownloadImage downloads an image from the given URL and returns the raw bytes
func DownloadImage(ctx context.Context, url string) ([]byte, error) {
	if url == "" {
		return nil, fmt.Errorf("empty URL provided")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to download image: %w", err)
	}

	client := &http.Client{Timeout: 30 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to download image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to download image: status %d", resp.StatusCode)
	}

	imageData, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read image data: %w", err)
	}

	return imageData, nil
}

// ToMetadataJSON generates a JSON representation of playlist metadata (without tracks)
func ToMetadataJSON(pl *models.Playlist) ([]byte, error) {
	meta := struct {
		models.PlaylistSummary
		TrackCount int                  `json:"track_count"`
		Failed     []models.FailedTrack `json:"failed,omitempty"`
	}{pl.PlaylistSummary, len(pl.Tracks), pl.Failed}
	return shared.MarshalJSON(meta, true)
}

// WriteJSONExport writes the playlist as JSON. Defaults to {playlist.ID}.json as the filename.
func WriteJSONExport(pl *models.Playlist, path string) (string, error) {
	if path == "" {
		path = pl.ID + ".json"
	}

	data, err := ExportToJSON(pl)
	if err != nil {
		return "", fmt.Errorf("failed to generate JSON: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write JSON file: %w", err)
	}
	return path, nil
}

// CSVExportResult contains the paths of files created by WriteCSVExport
type CSVExportResult struct {
	TracksFile   string
	MetadataFile string
}

// WriteCSVExport exports a playlist to CSV format with accompanying metadata JSON file.
//
// Defaults to playlist ID as the base filename & creates {base}_tracks.csv and {base}_metadata.json
func WriteCSVExport(pl *models.Playlist, baseFilepath string) (*CSVExportResult, error) {
	if baseFilepath == "" {
		baseFilepath = pl.ID
	}

	csvData, err := ExportToCSV(pl)
	if err != nil {
		return nil, fmt.Errorf("failed to generate CSV: %w", err)
	}

	tracksFile := baseFilepath + "_tracks.csv"
	if err := os.WriteFile(tracksFile, csvData, 0644); err != nil {
		return nil, fmt.Errorf("failed to write CSV file: %w", err)
	}

	metadataJSON, err := ToMetadataJSON(pl)
	if err != nil {
		return nil, fmt.Errorf("failed to generate metadata JSON: %w", err)
	}

	metadataFile := baseFilepath + "_metadata.json"
	if err := os.WriteFile(metadataFile, metadataJSON, 0644); err != nil {
		return nil, fmt.Errorf("failed to write metadata file: %w", err)
	}

	return &CSVExportResult{
		TracksFile:   tracksFile,
		MetadataFile: metadataFile,
	}, nil
}

// MarkdownExportResult contains information about files created by WriteMarkdownExport
type MarkdownExportResult struct {
	Directory  string
	Files      []string
	CoverImage string
}

// WriteMarkdownExport exports a playlist to Markdown format in a dedicated directory.
//
// Directory name defaults to the playlist ID.
// When download is set the cover is saved next to the README, otherwise the README links the remote cover.
// A failed download falls back to the remote link.
func WriteMarkdownExport(ctx context.Context, pl *models.Playlist, outputDir string, download bool) (*MarkdownExportResult, error) {
	if outputDir == "" {
		outputDir = pl.ID
	}

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	result := &MarkdownExportResult{
		Directory: outputDir,
		Files:     []string{},
	}

	image := pl.CoverURL
	if download && pl.CoverURL != "" {
		if data, err := DownloadImage(ctx, pl.CoverURL); err == nil {
			coverPath := filepath.Join(outputDir, "cover.jpg")
			if err := os.WriteFile(coverPath, data, 0644); err == nil {
				image = "cover.jpg"
				result.CoverImage = coverPath
				result.Files = append(result.Files, coverPath)
			}
		}
	}

	mdData, err := ExportToMarkdown(pl, image)
	if err != nil {
		return nil, fmt.Errorf("failed to generate Markdown: %w", err)
	}

	mdFile := filepath.Join(outputDir, "README.md")
	if err := os.WriteFile(mdFile, mdData, 0644); err != nil {
		return nil, fmt.Errorf("failed to write Markdown file: %w", err)
	}

	result.Files = append(result.Files, mdFile)

	return result, nil
}

// WriteTextExport exports a playlist to plain text format.
//
// Defaults to {playlist.ID}_tracks.txt as the filename.
func WriteTextExport(pl *models.Playlist, path string) (string, error) {
	if path == "" {
		path = fmt.Sprintf("%s_tracks.txt", pl.ID)
	}

	textData, err := ExportToText(pl)
	if err != nil {
		return "", fmt.Errorf("failed to generate text: %w", err)
	}

	if err := os.WriteFile(path, textData, 0644); err != nil {
		return "", fmt.Errorf("failed to write text file: %w", err)
	}

	return path, nil
}

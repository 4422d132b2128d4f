package ui

import (
	"cmp"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/desertthunder/listenx/internal/formatter"
	"github.com/desertthunder/listenx/internal/models"
	"github.com/desertthunder/listenx/internal/tasks"
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	PlaylistListView ViewState = iota
	LoadingView
	TrackListView
	ConfirmView
	ResultView
)

// Aggregator is the part of [tasks.Aggregator] the TUI drives.
type Aggregator interface {
	GetPlaylists(ctx context.Context, name string, params models.ListParams, progress chan<- tasks.ProgressUpdate) (*models.PagedResult[models.Playlist], error)
	GetPlaylistWithTracks(ctx context.Context, name, nativeID string, progress chan<- tasks.ProgressUpdate) (*models.Playlist, error)
}

// Options selects what the TUI browses and where exports go.
type Options struct {
	Provider  models.Provider
	FilterID  string
	Format    formatter.Format // defaults to JSON
	OutputDir string           // defaults to the working directory
}

// Model represents the TUI application state.
type Model struct {
	ctx          context.Context
	view         ViewState
	agg          Aggregator
	opts         Options
	width        int
	height       int
	offset       int
	page         *models.PagedResult[models.Playlist]
	playlistList list.Model
	trackList    list.Model
	selected     *models.Playlist
	progressChan chan tasks.ProgressUpdate
	done         chan Msg
	progress     tasks.ProgressUpdate
	export       *formatter.ManifestEntry
	err          error
	help         help.Model
	keys         keyMap
}

// NewModel creates a new TUI model with the provided dependencies.
func NewModel(ctx context.Context, agg Aggregator, opts Options) *Model {
	opts.Format = cmp.Or(opts.Format, formatter.JSON)
	opts.OutputDir = cmp.Or(opts.OutputDir, ".")

	playlists := list.New(nil, list.NewDefaultDelegate(), 0, 0)
	playlists.Title = fmt.Sprintf("%s playlists", opts.Provider)
	tracks := list.New(nil, list.NewDefaultDelegate(), 0, 0)

	return &Model{
		ctx:          ctx,
		view:         PlaylistListView,
		agg:          agg,
		opts:         opts,
		playlistList: playlists,
		trackList:    tracks,
		help:         help.New(),
		keys:         newKeyMap(),
	}
}

// ViewState returns the active view.
func (m *Model) ViewState() ViewState { return m.view }

// Init initializes the TUI by fetching the first listing page.
func (m *Model) Init() tea.Cmd {
	return m.fetchPlaylists(0)
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.playlistList.SetSize(msg.Width-4, msg.Height-8)
		m.trackList.SetSize(msg.Width-4, msg.Height-8)
		return m, nil

	case tea.KeyMsg:
		switch m.view {
		case PlaylistListView:
			return m.handlePlaylistListKeys(msg)
		case LoadingView:
			if key.Matches(msg, m.keys.quit) {
				return m, tea.Quit
			}
			return m, nil
		case TrackListView:
			return m.handleTrackListKeys(msg)
		case ConfirmView:
			return m.handleConfirmKeys(msg)
		case ResultView:
			return m.handleResultKeys(msg)
		}

	case Msg:
		return m.handleMsg(msg)
	}

	return m.updateLists(msg)
}

func (m *Model) handleMsg(msg Msg) (tea.Model, tea.Cmd) {
	switch msg.kind {
	case MsgPlaylistsFetched:
		res := msg.data.(playlistsFetched)
		if res.err != nil {
			m.err = res.err
			return m, nil
		}
		m.err = nil
		m.page = res.page
		m.offset = res.offset
		cmd := m.playlistList.SetItems(playlistItems(res.page.Items))
		m.playlistList.ResetSelected()
		return m, cmd

	case MsgTracksFetched:
		res := msg.data.(tracksFetched)
		m.progressChan, m.done = nil, nil
		if res.err != nil {
			m.err = res.err
			m.view = PlaylistListView
			return m, nil
		}
		m.selected = res.playlist
		cmd := m.trackList.SetItems(trackItems(res.playlist))
		m.trackList.ResetSelected()
		m.trackList.Title = fmt.Sprintf("Tracks in '%s'", res.playlist.Title)
		m.view = TrackListView
		return m, cmd

	case MsgProgressUpdate:
		m.progress = msg.data.(tasks.ProgressUpdate)
		return m, m.waitForProgress()

	case MsgExportComplete:
		entry := msg.data.(formatter.ManifestEntry)
		m.export = &entry
		m.view = ResultView
		return m, nil
	}
	return m, nil
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	if m.err != nil && m.view != ResultView {
		return styles.Err.Render(fmt.Sprintf("Error: %v\n\nPress esc to dismiss, r to reload, q to quit", m.err))
	}

	switch m.view {
	case PlaylistListView:
		return m.renderPlaylistList()
	case LoadingView:
		return m.renderLoading()
	case TrackListView:
		return m.renderTrackList()
	case ConfirmView:
		return m.renderConfirm()
	case ResultView:
		return m.renderResult()
	default:
		return ""
	}
}

func (m *Model) handlePlaylistListKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.playlistList.FilterState() == list.Filtering {
		return m.updateLists(msg)
	}

	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.back) && m.err != nil:
		m.err = nil
		return m, nil
	case key.Matches(msg, m.keys.restart):
		m.err = nil
		return m, m.fetchPlaylists(m.offset)
	case key.Matches(msg, m.keys.next):
		if m.page == nil || len(m.page.Items) == 0 {
			return m, nil
		}
		return m, m.fetchPlaylists(m.offset + len(m.page.Items))
	case key.Matches(msg, m.keys.prev):
		if m.page == nil || m.offset == 0 {
			return m, nil
		}
		step := cmp.Or(m.page.PageSize, len(m.page.Items), 1)
		return m, m.fetchPlaylists(max(m.offset-step, 0))
	case key.Matches(msg, m.keys.enter):
		if pl, ok := m.playlistList.SelectedItem().(playlistItem); ok {
			nativeID := strings.TrimPrefix(pl.playlist.ID, models.Prefix(m.opts.Provider, models.KindPlaylist))
			m.view = LoadingView
			m.progress = tasks.ProgressUpdate{Message: fmt.Sprintf("Fetching %s...", pl.playlist.Title)}
			return m, m.fetchTracks(nativeID)
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.playlistList, cmd = m.playlistList.Update(msg)
	return m, cmd
}

func (m *Model) handleTrackListKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.trackList.FilterState() == list.Filtering {
		return m.updateLists(msg)
	}

	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.back):
		m.view = PlaylistListView
		return m, nil
	case key.Matches(msg, m.keys.export):
		m.view = ConfirmView
		return m, nil
	}

	var cmd tea.Cmd
	m.trackList, cmd = m.trackList.Update(msg)
	return m, cmd
}

func (m *Model) handleConfirmKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.yes):
		return m, m.exportPlaylist()
	case key.Matches(msg, m.keys.no, m.keys.back):
		m.view = TrackListView
		return m, nil
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	}
	return m, nil
}

func (m *Model) handleResultKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.restart):
		m.view = PlaylistListView
		m.selected = nil
		m.export = nil
		m.err = nil
		return m, nil
	}
	return m, nil
}

func (m *Model) updateLists(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.view {
	case PlaylistListView:
		m.playlistList, cmd = m.playlistList.Update(msg)
	case TrackListView:
		m.trackList, cmd = m.trackList.Update(msg)
	}
	return m, cmd
}

func (m *Model) fetchPlaylists(offset int) tea.Cmd {
	ctx, agg, opts := m.ctx, m.agg, m.opts
	return func() tea.Msg {
		page, err := agg.GetPlaylists(ctx, string(opts.Provider), models.ListParams{FilterID: opts.FilterID, Offset: offset}, nil)
		return playlistsFetchedMsg(page, offset, err)
	}
}

// fetchTracks resolves a playlist in the background. Progress is drained by [Model.waitForProgress]
// and the result arrives on done once the progress channel is closed.
func (m *Model) fetchTracks(nativeID string) tea.Cmd {
	progress := make(chan tasks.ProgressUpdate, 50)
	done := make(chan Msg, 1)
	m.progressChan, m.done = progress, done

	go func() {
		pl, err := m.agg.GetPlaylistWithTracks(m.ctx, string(m.opts.Provider), nativeID, progress)
		close(progress)
		done <- tracksFetchedMsg(pl, err)
	}()

	return m.waitForProgress()
}

func (m *Model) waitForProgress() tea.Cmd {
	progress, done := m.progressChan, m.done
	if progress == nil {
		return nil
	}
	return func() tea.Msg {
		if update, ok := <-progress; ok {
			return progressUpdateMsg(update)
		}
		return <-done
	}
}

func (m *Model) exportPlaylist() tea.Cmd {
	ctx, pl := m.ctx, m.selected
	opts := tasks.BulkExportOpts{Format: m.opts.Format, OutputDir: m.opts.OutputDir}
	return func() tea.Msg {
		if err := os.MkdirAll(opts.OutputDir, 0755); err != nil {
			return exportCompleteMsg(formatter.ManifestEntry{PlaylistID: pl.ID, Title: pl.Title, Error: err.Error()})
		}
		entry := tasks.ExportPlaylist(ctx, pl, opts)
		entry.PlaylistID = pl.ID
		return exportCompleteMsg(entry)
	}
}

func (m *Model) pagingLine() string {
	if m.page == nil {
		return styles.Help.Render("loading...")
	}
	if m.page.Paginated() {
		return styles.Help.Render(fmt.Sprintf("page %d (%d per page, %d total)", m.page.Page, m.page.PageSize, m.page.Total))
	}
	return styles.Help.Render(fmt.Sprintf("offset %d, %d playlists", m.offset, len(m.page.Items)))
}

func (m *Model) renderPlaylistList() string {
	return fmt.Sprintf("%s\n%s\n\n%s", m.playlistList.View(), m.pagingLine(), m.helpLine())
}

func (m *Model) renderLoading() string {
	title := styles.Title.Render("Fetching Playlist")

	var phase string
	switch m.progress.Phase {
	case tasks.FetchPlaylist:
		phase = "Fetching playlist envelope..."
	case tasks.FetchTracks:
		phase = fmt.Sprintf("Resolving tracks (%d/%d)", m.progress.Step, m.progress.Total)
	default:
		phase = "Processing..."
	}
	return fmt.Sprintf("%s\n\n%s\n%s\n\n%s", title, phase, m.progress.Message, m.helpLine())
}

func (m *Model) renderTrackList() string {
	summary := fmt.Sprintf("%d tracks", len(m.selected.Tracks))
	if n := len(m.selected.Failed); n > 0 {
		summary += ", " + styles.Warn.Render(fmt.Sprintf("%d unresolved", n))
	}
	return fmt.Sprintf("%s\n%s\n\n%s", m.trackList.View(), summary, m.helpLine())
}

func (m *Model) renderConfirm() string {
	title := styles.Title.Render(fmt.Sprintf("Export '%s' as %s?", m.selected.Title, m.opts.Format))
	info := fmt.Sprintf("\nDirectory: %s\nTracks: %d\nUnresolved: %d\n", m.opts.OutputDir, len(m.selected.Tracks), len(m.selected.Failed))
	return fmt.Sprintf("%s\n%s\n%s", title, info, m.helpLine())
}

func (m *Model) renderResult() string {
	if m.export == nil {
		return styles.Err.Render("No result available\n\nPress r to restart, q to quit")
	}
	if m.export.Error != "" {
		return fmt.Sprintf("%s\n\n%s", styles.Err.Render("Export failed: "+m.export.Error), m.helpLine())
	}

	title := styles.OK.Render("✓ Export Complete!")
	var b strings.Builder
	fmt.Fprintf(&b, "\nPlaylist: %s (%d tracks)", m.export.Title, m.export.Tracks)
	if m.export.FailedTracks > 0 {
		b.WriteString("\n" + styles.Warn.Render(fmt.Sprintf("%d tracks could not be resolved", m.export.FailedTracks)))
	}
	for _, f := range m.export.Files {
		fmt.Fprintf(&b, "\n  • %s", f)
	}
	return fmt.Sprintf("%s\n%s\n\n%s", title, b.String(), m.helpLine())
}

func (m *Model) helpLine() string {
	return m.help.ShortHelpView(m.keys.forView(m.view))
}

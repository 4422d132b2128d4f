package services

import (
	"bytes"
	"cmp"
	"context"
	"fmt"
	"net"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/net/publicsuffix"

	"github.com/desertthunder/listenx/internal/models"
	"github.com/desertthunder/listenx/internal/scrape"
	"github.com/desertthunder/listenx/internal/shared"
	"github.com/desertthunder/listenx/internal/weapi"
)

const (
	neteaseSuccess     = 200
	neteaseDetailLimit = 1000
	neteaseCookieTTL   = 100 * 365 * 24 * time.Hour
	neteaseCanonical   = "https://music.163.com"
)

type neteaseArtist struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type neteaseSong struct {
	ID   int64           `json:"id"`
	Name string          `json:"name"`
	Ar   []neteaseArtist `json:"ar"`
	Al   *struct {
		ID     int64  `json:"id"`
		Name   string `json:"name"`
		PicURL string `json:"picUrl"`
	} `json:"al"`
}

type neteaseStatus struct {
	Code    *int   `json:"code"`
	Message string `json:"message"`
	Msg     string `json:"msg"`
}

func (s neteaseStatus) err() error {
	if *s.Code == neteaseSuccess {
		return nil
	}
	return &shared.ProviderError{Provider: string(models.Netease), Code: *s.Code, Message: cmp.Or(s.Message, s.Msg)}
}

func (s neteaseStatus) validate() error {
	if s.Code == nil {
		return missing("code")
	}
	return nil
}

type neteasePlaylistResponse struct {
	neteaseStatus
	Playlist *struct {
		ID          int64  `json:"id"`
		Name        string `json:"name"`
		CoverImgURL string `json:"coverImgUrl"`
		Description string `json:"description"`
		TrackIDs    []struct {
			ID int64 `json:"id"`
		} `json:"trackIds"`
	} `json:"playlist"`
}

func (r *neteasePlaylistResponse) validate() error {
	if err := r.neteaseStatus.validate(); err != nil {
		return err
	}
	if *r.Code == neteaseSuccess && r.Playlist == nil {
		return missing("playlist")
	}
	return nil
}

type neteaseSongsResponse struct {
	neteaseStatus
	Songs []neteaseSong `json:"songs"`
}

func (r *neteaseSongsResponse) validate() error {
	return r.neteaseStatus.validate()
}

type neteaseLyricResponse struct {
	neteaseStatus
	Lrc *struct {
		Lyric string `json:"lyric"`
	} `json:"lrc"`
	TLyric *struct {
		Lyric string `json:"lyric"`
	} `json:"tlyric"`
}

func (r *neteaseLyricResponse) validate() error {
	return r.neteaseStatus.validate()
}

// Lyric is the LRC text of a Netease song and its translation when one exists.
type Lyric struct {
	TrackID    string `json:"track_id"`
	Lyric      string `json:"lyric"`
	Translated string `json:"translated,omitempty"`
}

// NeteaseService implements [Service] for music.163.com.
type NeteaseService struct {
	host  string
	order string
	limit int
	src   weapi.Source
	req   *requester
}

// NewNeteaseService creates a Netease client with a cookie jar seeded for cfg.Host.
func NewNeteaseService(cfg shared.NeteaseConfig, opts ServiceOpts) (*NeteaseService, error) {
	host := strings.TrimRight(cfg.Host, "/")
	src := opts.Source
	if src == nil {
		src = weapi.NewSource()
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}

	jar, err := newNeteaseJar(host, src, now())
	if err != nil {
		return nil, err
	}

	var client *http.Client
	if opts.HTTPClient != nil {
		c := *opts.HTTPClient
		if c.Jar == nil {
			c.Jar = jar
		}
		client = &c
	} else {
		client = newHTTPClient(defaultHeaders(cfg.UserAgent, host), jar, opts.Timeout)
	}

	logger := opts.Logger
	if logger == nil {
		logger = shared.DiscardLogger()
	}

	return &NeteaseService{
		host:  host,
		order: cfg.Order,
		limit: cfg.Limit,
		src:   src,
		req:   &requester{provider: models.Netease, client: client, logger: logger.WithPrefix("netease")},
	}, nil
}

// newNeteaseJar seeds the _ntes_nuid and _ntes_nnid cookies for host.
func newNeteaseJar(host string, src weapi.Source, now time.Time) (http.CookieJar, error) {
	u, err := url.Parse(host)
	if err != nil || u.Host == "" {
		return nil, fmt.Errorf("%w: netease host %q", shared.ErrInvalidConfig, host)
	}
	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return nil, err
	}

	uid := weapi.SecretKey(src, 32)
	nid := uid + "," + strconv.FormatInt(now.UnixMilli(), 10)
	expires := now.Add(neteaseCookieTTL)

	jar.SetCookies(u, []*http.Cookie{
		{Name: "_ntes_nuid", Value: uid, Path: "/", Domain: cookieDomain(u), Expires: expires},
		{Name: "_ntes_nnid", Value: nid, Path: "/", Domain: cookieDomain(u), Expires: expires},
	})
	return jar, nil
}

// cookieDomain is empty for IP hosts, which only take host-only cookies.
func cookieDomain(u *url.URL) string {
	h := u.Hostname()
	if net.ParseIP(h) != nil || h == "localhost" {
		return ""
	}
	return h
}

func (s *NeteaseService) Name() models.Provider { return models.Netease }

// ListPlaylists scrapes one discover/playlist page. Netease does not report totals,
// so the result carries Page, PageSize and Total as zero.
func (s *NeteaseService) ListPlaylists(ctx context.Context, params models.ListParams) (*models.PagedResult[models.PlaylistSummary], error) {
	if params.Offset < 0 {
		return nil, fmt.Errorf("%w: offset %d", shared.ErrInvalidArgument, params.Offset)
	}
	q := url.Values{
		"order":  {s.order},
		"limit":  {strconv.Itoa(s.limit)},
		"offset": {strconv.Itoa(params.Offset)},
	}
	if params.FilterID != "" {
		q.Set("cat", params.FilterID)
	}

	body, err := s.req.get(ctx, s.host+"/discover/playlist?"+q.Encode())
	if err != nil {
		return nil, err
	}

	records, err := scrape.Records(bytes.NewReader(body), scrape.NeteasePlaylists)
	if err != nil {
		return nil, &shared.DecodeError{Provider: string(models.Netease), What: "playlist listing", Err: err}
	}

	items := make([]models.PlaylistSummary, 0, len(records))
	for _, r := range records {
		items = append(items, models.PlaylistSummary{
			ID:        models.ID(models.Netease, models.KindPlaylist, r.ID),
			Title:     r.Title,
			CoverURL:  r.ImageURL,
			SourceURL: neteaseCanonical + "/#/playlist?id=" + r.ID,
		})
	}
	return &models.PagedResult[models.PlaylistSummary]{Items: items}, nil
}

// GetPlaylist fetches playlist detail through weapi.
func (s *NeteaseService) GetPlaylist(ctx context.Context, nativeID string) (*PlaylistEnvelope, error) {
	id, err := parseNeteaseID(nativeID, "playlist")
	if err != nil {
		return nil, err
	}
	payload := map[string]any{
		"id":         id,
		"offset":     0,
		"total":      true,
		"limit":      neteaseDetailLimit,
		"n":          neteaseDetailLimit,
		"csrf_token": "",
	}

	var resp neteasePlaylistResponse
	if err := s.call(ctx, "/weapi/v3/playlist/detail", "playlist detail", payload, &resp); err != nil {
		return nil, err
	}
	if err := resp.err(); err != nil {
		if *resp.Code == http.StatusNotFound {
			return nil, fmt.Errorf("%w: netease %s: %w", shared.ErrPlaylistNotFound, nativeID, err)
		}
		return nil, err
	}

	pl := resp.Playlist
	native := strconv.FormatInt(pl.ID, 10)
	env := &PlaylistEnvelope{
		Summary: models.PlaylistSummary{
			ID:        models.ID(models.Netease, models.KindPlaylist, native),
			Title:     pl.Name,
			CoverURL:  pl.CoverImgURL,
			SourceURL: neteaseCanonical + "/#/playlist?id=" + native,
		},
		TrackIDs: make([]string, 0, len(pl.TrackIDs)),
	}
	for _, t := range pl.TrackIDs {
		env.TrackIDs = append(env.TrackIDs, strconv.FormatInt(t.ID, 10))
	}
	return env, nil
}

// GetTrack fetches song detail through weapi.
func (s *NeteaseService) GetTrack(ctx context.Context, nativeTrackID string) (*models.Track, error) {
	id, err := parseNeteaseID(nativeTrackID, "track")
	if err != nil {
		return nil, err
	}
	payload := map[string]any{
		"c":   fmt.Sprintf(`[{"id":%d}]`, id),
		"ids": strconv.FormatInt(id, 10),
	}

	var resp neteaseSongsResponse
	if err := s.call(ctx, "/weapi/v3/song/detail", "song detail", payload, &resp); err != nil {
		return nil, err
	}
	if err := resp.err(); err != nil {
		return nil, err
	}
	for _, song := range resp.Songs {
		if song.ID == id {
			t := s.track(song)
			return &t, nil
		}
	}
	return nil, fmt.Errorf("%w: netease %s", shared.ErrTrackNotFound, nativeTrackID)
}

// Lyric fetches the lyric of a song and its translation.
func (s *NeteaseService) Lyric(ctx context.Context, nativeTrackID string) (*Lyric, error) {
	id, err := parseNeteaseID(nativeTrackID, "track")
	if err != nil {
		return nil, err
	}
	payload := map[string]any{"id": id, "lv": -1, "tv": -1, "csrf_token": ""}

	var resp neteaseLyricResponse
	if err := s.call(ctx, "/weapi/song/lyric", "lyric", payload, &resp); err != nil {
		return nil, err
	}
	if err := resp.err(); err != nil {
		if *resp.Code == http.StatusNotFound {
			return nil, fmt.Errorf("%w: netease %s: %w", shared.ErrTrackNotFound, nativeTrackID, err)
		}
		return nil, err
	}

	l := &Lyric{TrackID: models.ID(models.Netease, models.KindTrack, nativeTrackID)}
	if resp.Lrc != nil {
		l.Lyric = resp.Lrc.Lyric
	}
	if resp.TLyric != nil {
		l.Translated = resp.TLyric.Lyric
	}
	return l, nil
}

// call signs payload and posts it to a weapi endpoint.
func (s *NeteaseService) call(ctx context.Context, path, what string, payload, v any) error {
	form, err := weapi.EncryptJSON(payload, s.src)
	if err != nil {
		return err
	}
	return s.req.postJSON(ctx, s.host+path, form.Values(), what, v)
}

func (s *NeteaseService) track(song neteaseSong) models.Track {
	native := strconv.FormatInt(song.ID, 10)
	t := models.Track{
		ID:        models.ID(models.Netease, models.KindTrack, native),
		Title:     song.Name,
		Artist:    models.UnknownArtist,
		Album:     models.UnknownAlbum,
		Source:    models.Netease,
		SourceURL: neteaseCanonical + "/#/song?id=" + native,
		LyricURL:  s.host + "/api/song/lyric?id=" + native + "&lv=-1&tv=-1",
	}
	if len(song.Ar) > 0 {
		t.Artist = models.OrPlaceholder(song.Ar[0].Name, models.UnknownArtist)
		t.ArtistID = models.ID(models.Netease, models.KindArtist, strconv.FormatInt(song.Ar[0].ID, 10))
	}
	if song.Al != nil {
		t.Album = models.OrPlaceholder(song.Al.Name, models.UnknownAlbum)
		t.AlbumID = models.ID(models.Netease, models.KindAlbum, strconv.FormatInt(song.Al.ID, 10))
		t.ImageURL = song.Al.PicURL
	}
	return t
}

func parseNeteaseID(nativeID, what string) (int64, error) {
	id, err := strconv.ParseInt(nativeID, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: netease %s id %q", shared.ErrInvalidArgument, what, nativeID)
	}
	return id, nil
}

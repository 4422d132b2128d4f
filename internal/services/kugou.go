package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/desertthunder/listenx/internal/models"
	"github.com/desertthunder/listenx/internal/shared"
)

// KugouPageSize is the fixed page size of the Kugou listing.
const KugouPageSize = 30

type kugouSpecial struct {
	SpecialID   json.Number `json:"specialid"`
	SpecialName string      `json:"specialname"`
	ImgURL      string      `json:"imgurl"`
	Intro       string      `json:"intro"`
}

func (s *kugouSpecial) validate() error {
	if s.SpecialID == "" {
		return missing("specialid")
	}
	return nil
}

type kugouListResponse struct {
	PageSize int `json:"pagesize"`
	Plist    *struct {
		List *struct {
			Total   int            `json:"total"`
			HasNext int            `json:"has_next"`
			Info    []kugouSpecial `json:"info"`
		} `json:"list"`
	} `json:"plist"`
}

func (r *kugouListResponse) validate() error {
	if r.Plist == nil || r.Plist.List == nil {
		return missing("plist.list")
	}
	for i := range r.Plist.List.Info {
		if err := r.Plist.List.Info[i].validate(); err != nil {
			return fmt.Errorf("plist.list.info[%d]: %w", i, err)
		}
	}
	return nil
}

type kugouPlaylistResponse struct {
	List *struct {
		List *struct {
			Info []struct {
				Hash     string `json:"hash"`
				FileName string `json:"filename"`
			} `json:"info"`
		} `json:"list"`
	} `json:"list"`
	Info *struct {
		List *kugouSpecial `json:"list"`
	} `json:"info"`
}

func (r *kugouPlaylistResponse) validate() error {
	if r.List == nil || r.List.List == nil {
		return missing("list.list")
	}
	if r.Info == nil || r.Info.List == nil {
		return missing("info.list")
	}
	for i, s := range r.List.List.Info {
		if s.Hash == "" {
			return fmt.Errorf("list.list.info[%d]: %w", i, missing("hash"))
		}
	}
	return r.Info.List.validate()
}

type kugouSongResponse struct {
	Status     *int   `json:"status"`
	Error      string `json:"error"`
	ErrCode    int    `json:"errcode"`
	ReqHash    string `json:"req_hash"`
	AlbumID    int64  `json:"albumid"`
	SongName   string `json:"songName"`
	SingerID   int64  `json:"singerId"`
	SingerName string `json:"singerName"`
	ImgURL     string `json:"imgUrl"`
	AlbumImg   string `json:"album_img"`
}

func (r *kugouSongResponse) failed() bool {
	return r.Status != nil && *r.Status == 0
}

// validate skips failed payloads; they carry only status and error.
func (r *kugouSongResponse) validate() error {
	if r.failed() {
		return nil
	}
	if r.ReqHash == "" {
		return missing("req_hash")
	}
	return nil
}

type kugouAlbumResponse struct {
	Status  int             `json:"status"`
	ErrCode int             `json:"errcode"`
	Data    json.RawMessage `json:"data"`
}

type kugouAlbum struct {
	AlbumID   int64  `json:"albumid"`
	AlbumName string `json:"albumname"`
	ImgURL    string `json:"imgurl"`
}

// KugouService implements [Service] for the Kugou mobile API.
type KugouService struct {
	webURL string
	h5URL  string
	cdnURL string
	req    *requester
}

// NewKugouService creates a Kugou client for the hosts in cfg.
func NewKugouService(cfg shared.KugouConfig, opts ServiceOpts) *KugouService {
	client := opts.HTTPClient
	if client == nil {
		client = newHTTPClient(defaultHeaders(cfg.UserAgent, cfg.H5URL), nil, opts.Timeout)
	}
	logger := opts.Logger
	if logger == nil {
		logger = shared.DiscardLogger()
	}
	return &KugouService{
		webURL: strings.TrimRight(cfg.WebURL, "/"),
		h5URL:  strings.TrimRight(cfg.H5URL, "/"),
		cdnURL: strings.TrimRight(cfg.CDNURL, "/"),
		req:    &requester{provider: models.Kugou, client: client, logger: logger.WithPrefix("kugou")},
	}
}

func (s *KugouService) Name() models.Provider { return models.Kugou }

// ListPlaylists fetches the page containing params.Offset. Kugou has no category filter,
// so params.FilterID is ignored.
func (s *KugouService) ListPlaylists(ctx context.Context, params models.ListParams) (*models.PagedResult[models.PlaylistSummary], error) {
	if params.Offset < 0 {
		return nil, fmt.Errorf("%w: offset %d", shared.ErrInvalidArgument, params.Offset)
	}
	page := params.Offset/KugouPageSize + 1
	q := url.Values{"page": {strconv.Itoa(page)}, "json": {"true"}}

	var resp kugouListResponse
	if err := s.req.getJSON(ctx, s.h5URL+"/plist/index?"+q.Encode(), "playlist list", &resp); err != nil {
		return nil, err
	}

	items := make([]models.PlaylistSummary, 0, len(resp.Plist.List.Info))
	for _, sp := range resp.Plist.List.Info {
		items = append(items, s.playlistSummary(sp))
	}
	return &models.PagedResult[models.PlaylistSummary]{
		Items:    items,
		Page:     page,
		PageSize: resp.PageSize,
		Total:    resp.Plist.List.Total,
	}, nil
}

// GetPlaylist fetches the playlist summary and its song hashes.
func (s *KugouService) GetPlaylist(ctx context.Context, nativeID string) (*PlaylistEnvelope, error) {
	if _, err := strconv.ParseUint(nativeID, 10, 64); err != nil {
		return nil, fmt.Errorf("%w: kugou playlist id %q", shared.ErrInvalidArgument, nativeID)
	}

	var resp kugouPlaylistResponse
	u := s.h5URL + "/plist/list/" + nativeID + "?json=true"
	if err := s.req.getJSON(ctx, u, "playlist", &resp); err != nil {
		var status *shared.HTTPStatusError
		if errors.As(err, &status) && status.StatusCode == http.StatusNotFound {
			return nil, fmt.Errorf("%w: kugou %s: %w", shared.ErrPlaylistNotFound, nativeID, err)
		}
		return nil, err
	}

	env := &PlaylistEnvelope{
		Summary:  s.playlistSummary(*resp.Info.List),
		TrackIDs: make([]string, 0, len(resp.List.List.Info)),
	}
	for _, song := range resp.List.List.Info {
		env.TrackIDs = append(env.TrackIDs, song.Hash)
	}
	return env, nil
}

// GetTrack resolves a song hash: song info first, then album info when the song has an album.
func (s *KugouService) GetTrack(ctx context.Context, hash string) (*models.Track, error) {
	if hash == "" {
		return nil, fmt.Errorf("%w: empty kugou hash", shared.ErrInvalidArgument)
	}
	q := url.Values{"cmd": {"playInfo"}, "hash": {hash}}

	var song kugouSongResponse
	if err := s.req.getJSON(ctx, s.h5URL+"/app/i/getSongInfo.php?"+q.Encode(), "song info", &song); err != nil {
		return nil, err
	}
	if song.failed() {
		return nil, &shared.ProviderError{Provider: string(models.Kugou), Code: song.ErrCode, Message: song.Error}
	}

	album := models.UnknownAlbum
	if song.AlbumID != 0 {
		name, err := s.albumName(ctx, song.AlbumID)
		if err != nil {
			return nil, err
		}
		album = name
	}

	t := s.track(song, album)
	return &t, nil
}

// albumName returns the album's name, or the placeholder when Kugou has no data for it.
func (s *KugouService) albumName(ctx context.Context, albumID int64) (string, error) {
	q := url.Values{"albumid": {strconv.FormatInt(albumID, 10)}}

	var resp kugouAlbumResponse
	if err := s.req.getJSON(ctx, s.cdnURL+"/api/v3/album/info?"+q.Encode(), "album info", &resp); err != nil {
		return "", err
	}
	if resp.Status != 1 || len(resp.Data) == 0 || resp.Data[0] != '{' {
		s.req.logger.Debug("album not found", "album_id", albumID, "status", resp.Status)
		return models.UnknownAlbum, nil
	}

	var album kugouAlbum
	if err := json.Unmarshal(resp.Data, &album); err != nil {
		return "", &shared.DecodeError{Provider: string(models.Kugou), What: "album info", Err: err}
	}
	return models.OrPlaceholder(album.AlbumName, models.UnknownAlbum), nil
}

func (s *KugouService) playlistSummary(sp kugouSpecial) models.PlaylistSummary {
	id := sp.SpecialID.String()
	return models.PlaylistSummary{
		ID:        models.ID(models.Kugou, models.KindPlaylist, id),
		Title:     sp.SpecialName,
		CoverURL:  models.ResizeImage(sp.ImgURL, models.SizeToken, models.KugouCoverSize),
		SourceURL: s.webURL + "/yy/special/single/" + id + ".html",
	}
}

func (s *KugouService) track(song kugouSongResponse, album string) models.Track {
	albumID := strconv.FormatInt(song.AlbumID, 10)
	t := models.Track{
		ID:        models.ID(models.Kugou, models.KindTrack, song.ReqHash),
		Title:     song.SongName,
		Artist:    models.UnknownArtist,
		Album:     album,
		Source:    models.Kugou,
		SourceURL: s.webURL + "/song/#hash=" + song.ReqHash + "&album_id=" + albumID,
		ImageURL:  models.ResizeImage(song.ImgURL, models.SizeToken, models.KugouCoverSize),
	}
	if song.AlbumID != 0 {
		t.AlbumID = models.ID(models.Kugou, models.KindAlbum, albumID)
	}
	if song.SingerID != 0 {
		t.Artist = models.OrPlaceholder(song.SingerName, models.UnknownArtist)
		t.ArtistID = models.ID(models.Kugou, models.KindArtist, strconv.FormatInt(song.SingerID, 10))
	}
	if song.AlbumImg != "" {
		t.ImageURL = models.ResizeImage(song.AlbumImg, models.SizeToken, models.KugouCoverSize)
	}
	return t
}

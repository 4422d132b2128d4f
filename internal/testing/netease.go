package testing

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"

	"github.com/desertthunder/listenx/internal/weapi"
)

// NeteaseSong is one song/detail fixture.
type NeteaseSong struct {
	Title      string
	ArtistID   int
	Artist     string
	AlbumID    int
	Album      string
	CoverURL   string
	Lyric      string
	TransLyric string
}

// NeteaseFixture is the dataset served by [NewNeteaseServer].
type NeteaseFixture struct {
	ListingSize int           // playlists rendered on the discover page
	Playlists   map[int][]int // playlist id -> ordered song ids
	Songs       map[int]NeteaseSong
}

// NeteaseServer is a fake of music.163.com. Signed requests must use [ZeroKey].
type NeteaseServer struct {
	*httptest.Server
	LastQuery   chan string // discover/playlist raw queries, buffered
	LastCookies chan []*http.Cookie
}

// NewNeteaseServer serves f. The caller closes the server.
func NewNeteaseServer(f NeteaseFixture) *NeteaseServer {
	s := &NeteaseServer{
		LastQuery:   make(chan string, 16),
		LastCookies: make(chan []*http.Cookie, 64),
	}
	mux := http.NewServeMux()

	mux.HandleFunc("/discover/playlist", func(w http.ResponseWriter, r *http.Request) {
		offer(s.LastQuery, r.URL.RawQuery)
		offer(s.LastCookies, r.Cookies())
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		fmt.Fprint(w, NeteasePlaylistPage(f.ListingSize))
	})

	mux.HandleFunc("/weapi/v3/playlist/detail", func(w http.ResponseWriter, r *http.Request) {
		offer(s.LastCookies, r.Cookies())
		var req struct {
			ID json.Number `json:"id"`
		}
		if !decodeSigned(w, r, &req) {
			return
		}
		id, _ := strconv.Atoi(req.ID.String())
		songs, ok := f.Playlists[id]
		if !ok {
			writeJSON(w, map[string]any{"code": 404, "message": "歌单不存在"})
			return
		}
		trackIDs := []map[string]any{}
		for _, sid := range songs {
			trackIDs = append(trackIDs, map[string]any{"id": sid})
		}
		writeJSON(w, map[string]any{
			"code": 200,
			"playlist": map[string]any{
				"id":          id,
				"name":        fmt.Sprintf("Playlist %d", id),
				"coverImgUrl": fmt.Sprintf("http://p1.music.126.net/cover%d.jpg", id),
				"description": "fixture",
				"trackIds":    trackIDs,
			},
		})
	})

	mux.HandleFunc("/weapi/v3/song/detail", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			IDs string `json:"ids"`
		}
		if !decodeSigned(w, r, &req) {
			return
		}
		songs := []map[string]any{}
		for _, raw := range strings.Split(req.IDs, ",") {
			id, _ := strconv.Atoi(raw)
			song, ok := f.Songs[id]
			if !ok {
				continue
			}
			artists := []map[string]any{}
			if song.Artist != "" {
				artists = append(artists, map[string]any{"id": song.ArtistID, "name": song.Artist})
			}
			songs = append(songs, map[string]any{
				"id":   id,
				"name": song.Title,
				"ar":   artists,
				"al":   map[string]any{"id": song.AlbumID, "name": song.Album, "picUrl": song.CoverURL},
			})
		}
		writeJSON(w, map[string]any{"code": 200, "songs": songs})
	})

	mux.HandleFunc("/weapi/song/lyric", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			ID json.Number `json:"id"`
		}
		if !decodeSigned(w, r, &req) {
			return
		}
		id, _ := strconv.Atoi(req.ID.String())
		song, ok := f.Songs[id]
		if !ok {
			writeJSON(w, map[string]any{"code": 404})
			return
		}
		resp := map[string]any{
			"code": 200,
			"lrc":  map[string]any{"version": 1, "lyric": song.Lyric},
		}
		if song.TransLyric != "" {
			resp["tlyric"] = map[string]any{"version": 1, "lyric": song.TransLyric}
		}
		writeJSON(w, resp)
	})

	s.Server = httptest.NewServer(mux)
	return s
}

// decodeSigned checks the form has exactly params and encSecKey, then decrypts params into v.
func decodeSigned(w http.ResponseWriter, r *http.Request, v any) bool {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return false
	}
	if err := r.ParseForm(); err != nil || len(r.PostForm) != 2 {
		http.Error(w, "bad form", http.StatusBadRequest)
		return false
	}
	if len(r.PostForm.Get("encSecKey")) != 256 {
		http.Error(w, "bad encSecKey", http.StatusBadRequest)
		return false
	}
	inner, err := weapi.Decrypt(r.PostForm.Get("params"), ZeroKey)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return false
	}
	plain, err := weapi.Decrypt(string(inner), weapi.PresetKey)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return false
	}
	if err := json.Unmarshal(plain, v); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return false
	}
	return true
}

func offer[T any](ch chan T, v T) {
	select {
	case ch <- v:
	default:
	}
}

// NeteasePlaylistPage renders a discover/playlist page holding n playlists with ids 1000..1000+n-1.
func NeteasePlaylistPage(n int) string {
	var b strings.Builder
	b.WriteString(`<!DOCTYPE html><html><head><title>歌单</title></head><body><div class="g-bd"><div class="g-wrap p-pl f-pr">`)
	b.WriteString(`<ul class="m-cvrlst f-cb" id="m-pl-container">`)
	for i := range n {
		id := 1000 + i
		fmt.Fprintf(&b, `<li><div class="u-cover u-cover-1"><img class="j-flag" src="http://p1.music.126.net/cover%d.jpg?param=140y140"/>`, id)
		fmt.Fprintf(&b, `<a title="Playlist %d" href="/playlist?id=%d" class="msk"></a>`, id, id)
		fmt.Fprintf(&b, `<div class="bottom"><a class="icon-play f-fr" title="播放" href="javascript:;" data-res-id="%d"></a><span class="nb">1万</span></div></div>`, id)
		fmt.Fprintf(&b, `<p class="dec"><a title="Playlist %d" href="/playlist?id=%d" class="tit f-thide s-fc0">Playlist %d</a></p></li>`, id, id, id)
	}
	b.WriteString(`</ul></div></div></body></html>`)
	return b.String()
}

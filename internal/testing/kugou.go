package testing

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync/atomic"
)

// KugouSong is one getSongInfo fixture.
type KugouSong struct {
	Title      string
	SingerID   int
	SingerName string
	AlbumID    int
	AlbumImg   string
}

// KugouFixture is the dataset served by [NewKugouServer].
type KugouFixture struct {
	Total     int                  // playlists across all pages
	PageSize  int                  // defaults to 30
	Playlists map[int][]string     // playlist id -> ordered song hashes
	Songs     map[string]KugouSong // hash -> song
	Albums    map[int]string       // album id -> name; missing ids get an empty data list
	FailSongs map[string]bool      // hashes answered with HTTP 500
}

// KugouServer is a fake of the m.kugou.com and mobilecdn hosts on one listener.
type KugouServer struct {
	*httptest.Server
	Requests atomic.Int64
}

// NewKugouServer serves f. The caller closes the server.
func NewKugouServer(f KugouFixture) *KugouServer {
	if f.PageSize == 0 {
		f.PageSize = 30
	}
	s := &KugouServer{}
	mux := http.NewServeMux()

	mux.HandleFunc("/plist/index", func(w http.ResponseWriter, r *http.Request) {
		page, _ := strconv.Atoi(r.URL.Query().Get("page"))
		if page < 1 {
			page = 1
		}
		start := (page - 1) * f.PageSize
		end := min(start+f.PageSize, f.Total)
		info := []map[string]any{}
		for i := start; i < end; i++ {
			info = append(info, map[string]any{
				"specialid":   100000 + i,
				"specialname": fmt.Sprintf("Special %d", i),
				"imgurl":      fmt.Sprintf("http://imge.kugou.com/soft/collection/{size}/%d.jpg", i),
				"intro":       "",
				"songs":       []any{},
			})
		}
		writeJSON(w, map[string]any{
			"src":         "",
			"ver":         "v2",
			"kg_domain":   "http://m.kugou.com",
			"JS_CSS_DATE": 20130320,
			"pagesize":    f.PageSize,
			"plist": map[string]any{
				"pagesize": f.PageSize,
				"list": map[string]any{
					"total":     f.Total,
					"has_next":  boolInt(end < f.Total),
					"timestamp": 1700000000,
					"info":      info,
				},
			},
		})
	})

	mux.HandleFunc("/plist/list/", func(w http.ResponseWriter, r *http.Request) {
		id, err := strconv.Atoi(strings.TrimPrefix(r.URL.Path, "/plist/list/"))
		hashes, ok := f.Playlists[id]
		if err != nil || !ok {
			http.NotFound(w, r)
			return
		}
		songs := []map[string]any{}
		for i, h := range hashes {
			songs = append(songs, map[string]any{
				"hash":     h,
				"album_id": strconv.Itoa(f.Songs[h].AlbumID),
				"extname":  "mp3",
				"filename": fmt.Sprintf("Song %d", i),
				"audio_id": i + 1,
				"duration": 200,
			})
		}
		writeJSON(w, map[string]any{
			"pagesize":    len(hashes),
			"src":         "",
			"ver":         "v2",
			"kg_domain":   "http://m.kugou.com",
			"JS_CSS_DATE": 20130320,
			"list": map[string]any{
				"list":     map[string]any{"total": len(hashes), "timestamp": 1700000000, "info": songs},
				"page":     1,
				"pagesize": len(hashes),
			},
			"info": map[string]any{
				"list": map[string]any{
					"specialid":   id,
					"specialname": fmt.Sprintf("Special %d", id),
					"imgurl":      "http://imge.kugou.com/soft/collection/{size}/cover.jpg",
				},
			},
		})
	})

	mux.HandleFunc("/app/i/getSongInfo.php", func(w http.ResponseWriter, r *http.Request) {
		s.Requests.Add(1)
		hash := r.URL.Query().Get("hash")
		if f.FailSongs[hash] {
			http.Error(w, "upstream failure", http.StatusInternalServerError)
			return
		}
		song, ok := f.Songs[hash]
		if !ok {
			writeJSON(w, map[string]any{"status": 0, "error": "歌曲不存在", "errcode": 30020})
			return
		}
		writeJSON(w, map[string]any{
			"status":         1,
			"req_hash":       hash,
			"albumid":        song.AlbumID,
			"songName":       song.Title,
			"singerId":       song.SingerID,
			"singerName":     song.SingerName,
			"authors":        []any{},
			"audio_id":       1,
			"album_audio_id": 1,
			"audio_group_id": 1,
			"ctype":          1,
			"stype":          1,
			"album_category": 1,
			"imgUrl":         "http://singerimg.kugou.com/uploadpic/softhead/{size}/singer.jpg",
			"album_img":      song.AlbumImg,
			"extra":          map[string]any{"sqhash": "", "128hash": hash, "320hash": ""},
		})
	})

	mux.HandleFunc("/api/v3/album/info", func(w http.ResponseWriter, r *http.Request) {
		s.Requests.Add(1)
		id, _ := strconv.Atoi(r.URL.Query().Get("albumid"))
		name, ok := f.Albums[id]
		if !ok {
			writeJSON(w, map[string]any{"status": 1, "error": "", "errcode": 0, "data": []any{}})
			return
		}
		writeJSON(w, map[string]any{
			"status":  1,
			"error":   "",
			"errcode": 0,
			"data": map[string]any{
				"albumid":     id,
				"singerid":    1,
				"songcount":   10,
				"category":    1,
				"singername":  "",
				"publishtime": "2020-01-01 00:00:00",
				"albumname":   name,
				"imgurl":      "http://imge.kugou.com/stdmusic/{size}/album.jpg",
			},
		})
	})

	s.Server = httptest.NewServer(mux)
	return s
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

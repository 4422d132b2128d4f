package models

import (
	"strings"
	"testing"
)

func TestID(t *testing.T) {
	tc := []struct {
		name     string
		provider Provider
		kind     Kind
		native   string
		want     string
	}{
		{name: "kugou playlist", provider: Kugou, kind: KindPlaylist, native: "4025095", want: "kgplaylist_4025095"},
		{name: "kugou track hash", provider: Kugou, kind: KindTrack, native: "8FD5DE7E1BFF24219DFF7700E7B4A0EB", want: "kgtrack_8FD5DE7E1BFF24219DFF7700E7B4A0EB"},
		{name: "kugou album", provider: Kugou, kind: KindAlbum, native: "1552283", want: "kgalbum_1552283"},
		{name: "netease playlist", provider: Netease, kind: KindPlaylist, native: "26467411", want: "neplaylist_26467411"},
		{name: "netease artist", provider: Netease, kind: KindArtist, native: "12094419", want: "neartist_12094419"},
		{name: "unknown provider falls back to kugou tag", provider: Provider("qq"), kind: KindPlaylist, native: "1", want: "kgplaylist_1"},
	}

	for _, tt := range tc {
		t.Run(tt.name, func(t *testing.T) {
			got := ID(tt.provider, tt.kind, tt.native)
			if got != tt.want {
				t.Errorf("ID() = %v, want %v", got, tt.want)
			}
			if !strings.HasPrefix(got, Prefix(tt.provider, tt.kind)) {
				t.Errorf("ID() = %v does not start with %v", got, Prefix(tt.provider, tt.kind))
			}
		})
	}

	t.Run("injective within a provider and kind", func(t *testing.T) {
		seen := make(map[string]string)
		for _, native := range []string{"1", "10", "100", "01", "a", "A", "1_0", "10_"} {
			id := ID(Netease, KindTrack, native)
			if prev, ok := seen[id]; ok {
				t.Fatalf("native ids %q and %q both map to %q", prev, native, id)
			}
			seen[id] = native
		}
	})

	t.Run("no collision across providers or kinds", func(t *testing.T) {
		seen := make(map[string]bool)
		for _, p := range Providers() {
			for _, k := range []Kind{KindPlaylist, KindTrack, KindAlbum, KindArtist} {
				id := ID(p, k, "42")
				if seen[id] {
					t.Fatalf("duplicate id %q", id)
				}
				seen[id] = true
			}
		}
	})
}

func TestParseProvider(t *testing.T) {
	for _, name := range []string{"kugou", "KuGou", "  kugou "} {
		if p, ok := ParseProvider(name); !ok || p != Kugou {
			t.Errorf("ParseProvider(%q) = %v, %v", name, p, ok)
		}
	}
	if p, ok := ParseProvider("netease"); !ok || p != Netease {
		t.Errorf("ParseProvider(netease) = %v, %v", p, ok)
	}
	if _, ok := ParseProvider("kuwo"); ok {
		t.Error("kuwo should not parse")
	}
}

func TestNormalize(t *testing.T) {
	t.Run("OrPlaceholder", func(t *testing.T) {
		if got := OrPlaceholder("", UnknownArtist); got != UnknownArtist {
			t.Errorf("got %q", got)
		}
		if got := OrPlaceholder("   ", UnknownAlbum); got != UnknownAlbum {
			t.Errorf("got %q", got)
		}
		if got := OrPlaceholder("周杰伦", UnknownArtist); got != "周杰伦" {
			t.Errorf("got %q", got)
		}
	})

	t.Run("ResizeImage", func(t *testing.T) {
		kg := ResizeImage("http://imge.kugou.com/soft/collection/{size}/20200101/x.jpg", SizeToken, KugouCoverSize)
		if kg != "http://imge.kugou.com/soft/collection/400/20200101/x.jpg" {
			t.Errorf("got %q", kg)
		}
		ne := ResizeImage("http://p1.music.126.net/x.jpg?param=140y140", NeteaseThumb, NeteaseCoverRes)
		if ne != "http://p1.music.126.net/x.jpg?param=512y512" {
			t.Errorf("got %q", ne)
		}
		if ResizeImage("", SizeToken, KugouCoverSize) != "" {
			t.Error("empty url should stay empty")
		}
	})
}

func TestMapPage(t *testing.T) {
	in := &PagedResult[PlaylistSummary]{
		Items:    []PlaylistSummary{{ID: "kgplaylist_1"}, {ID: "kgplaylist_2"}},
		Page:     2,
		PageSize: 30,
		Total:    600,
	}
	out := MapPage(in, NewPlaylist)
	if out.Page != 2 || out.PageSize != 30 || out.Total != 600 {
		t.Errorf("pagination not carried through: %+v", out)
	}
	if len(out.Items) != 2 || out.Items[1].ID != "kgplaylist_2" {
		t.Errorf("unexpected items: %+v", out.Items)
	}
	if out.Items[0].Tracks == nil || len(out.Items[0].Tracks) != 0 {
		t.Error("listing playlists should have an empty track list")
	}
	if !out.Paginated() {
		t.Error("page 2 should report pagination")
	}
	if (&PagedResult[Playlist]{}).Paginated() {
		t.Error("page 0 should not report pagination")
	}
}

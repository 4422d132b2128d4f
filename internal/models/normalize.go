package models

import "strings"

// Placeholders substituted for fields missing from upstream payloads.
const (
	UnknownArtist = "未知"
	UnknownAlbum  = "未知专辑"
)

// Image size templates and the resolutions they are rewritten to.
const (
	SizeToken       = "{size}"
	KugouCoverSize  = "400"
	NeteaseThumb    = "140y140"
	NeteaseCoverRes = "512y512"
)

// OrPlaceholder returns v, or placeholder when v is blank.
func OrPlaceholder(v, placeholder string) string {
	if strings.TrimSpace(v) == "" {
		return placeholder
	}
	return v
}

// ResizeImage rewrites every occurrence of token in u with size.
func ResizeImage(u, token, size string) string {
	if u == "" || token == "" {
		return u
	}
	return strings.ReplaceAll(u, token, size)
}

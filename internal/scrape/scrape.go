// Package scrape extracts listing records from rendered HTML pages.
//
// A [Contract] fixes the structure a page must have: one container element whose
// direct item children each hold an image and an anchor. Pages that break the
// contract fail as a whole; there is no partial-record recovery here.
package scrape

import (
	"errors"
	"fmt"
	"io"
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/desertthunder/listenx/internal/models"
)

// ErrContract is wrapped by every structural failure.
var ErrContract = errors.New("html contract violated")

// IDFunc extracts a native numeric id from an anchor href.
type IDFunc func(href string) (string, error)

// Contract describes where a listing lives in a page.
type Contract struct {
	Container  string // selector of the single list container
	Item       string // selector of the container's direct children
	Image      string // selector of the cover image within an item
	ImageAttr  string // attribute holding the image URL
	Anchor     string // selector of the title anchor within an item
	SizeToken  string // resolution template inside image URLs
	TargetSize string // replacement for SizeToken
	ID         IDFunc
}

// Record is one listing entry.
type Record struct {
	ID       string
	Title    string
	ImageURL string
	Href     string
}

// Records parses r as HTML and extracts one [Record] per item of c.Container.
func Records(r io.Reader, c Contract) ([]Record, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}
	return FromDocument(doc, c)
}

// FromDocument is [Records] for an already parsed document.
func FromDocument(doc *goquery.Document, c Contract) ([]Record, error) {
	container := doc.Find(c.Container).First()
	if container.Length() == 0 {
		return nil, fmt.Errorf("%w: container %q not found", ErrContract, c.Container)
	}

	var (
		records []Record
		err     error
	)
	container.ChildrenFiltered(c.Item).EachWithBreak(func(i int, s *goquery.Selection) bool {
		var rec Record
		rec, err = record(s, c)
		if err != nil {
			err = fmt.Errorf("item %d: %w", i, err)
			return false
		}
		records = append(records, rec)
		return true
	})
	if err != nil {
		return nil, err
	}
	return records, nil
}

func record(s *goquery.Selection, c Contract) (Record, error) {
	img := s.Find(c.Image).First()
	if img.Length() == 0 {
		return Record{}, fmt.Errorf("%w: image %q not found", ErrContract, c.Image)
	}
	src, ok := img.Attr(c.ImageAttr)
	if !ok {
		return Record{}, fmt.Errorf("%w: image has no %s attribute", ErrContract, c.ImageAttr)
	}
	if c.SizeToken != "" {
		src = strings.ReplaceAll(src, c.SizeToken, c.TargetSize)
	}

	a := s.Find(c.Anchor).First()
	if a.Length() == 0 {
		return Record{}, fmt.Errorf("%w: anchor %q not found", ErrContract, c.Anchor)
	}
	title, ok := a.Attr("title")
	if !ok {
		return Record{}, fmt.Errorf("%w: anchor has no title attribute", ErrContract)
	}
	href, ok := a.Attr("href")
	if !ok {
		return Record{}, fmt.Errorf("%w: anchor has no href attribute", ErrContract)
	}

	id, err := c.ID(href)
	if err != nil {
		return Record{}, err
	}

	return Record{ID: id, Title: title, ImageURL: src, Href: href}, nil
}

var digits = regexp.MustCompile(`^\d+$`)

// QueryParam reads the id from the query parameter name of the href.
func QueryParam(name string) IDFunc {
	return func(href string) (string, error) {
		u, err := url.Parse(strings.TrimSpace(href))
		if err != nil {
			return "", fmt.Errorf("%w: href %q: %v", ErrContract, href, err)
		}
		id := u.Query().Get(name)
		if !digits.MatchString(id) {
			return "", fmt.Errorf("%w: href %q has no numeric %s parameter", ErrContract, href, name)
		}
		return id, nil
	}
}

// NeteasePlaylists is the contract of music.163.com/discover/playlist.
var NeteasePlaylists = Contract{
	Container:  ".m-cvrlst",
	Item:       "li",
	Image:      "img",
	ImageAttr:  "src",
	Anchor:     "div a",
	SizeToken:  models.NeteaseThumb,
	TargetSize: models.NeteaseCoverRes,
	ID:         QueryParam("id"),
}

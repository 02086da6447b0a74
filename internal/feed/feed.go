// Package feed serializes an ordered list of posts into RSS 2.0 and Atom
// 1.0 documents. It performs no I/O: callers pass the posts, their
// rendered HTML and the build time.
package feed

import (
	"encoding/xml"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"zsblog/internal/models"
)

const (
	// ExcerptLength is the number of characters kept when a post has no
	// description.
	ExcerptLength = 200

	// Content types of the serialized documents.
	RSSContentType  = "application/rss+xml; charset=utf-8"
	AtomContentType = "application/atom+xml; charset=utf-8"
)

// Site describes the channel a feed is published for.
type Site struct {
	Title       string
	Description string
	URL         string
	Language    string
	Generator   string
}

// PostURL returns the public URL of a post.
func (s Site) PostURL(slug string) string {
	return strings.TrimRight(s.URL, "/") + "/posts/" + slug
}

// Item is one feed entry: a post and its rendered body.
type Item struct {
	Post models.Post
	HTML string
}

// markup matches the markdown punctuation stripped from excerpts.
var markup = regexp.MustCompile("[#*`\\[\\]]")

// Excerpt returns a plain-text summary of a markdown body.
func Excerpt(body string) string {
	text := strings.TrimSpace(markup.ReplaceAllString(body, ""))
	if utf8.RuneCountInString(text) <= ExcerptLength {
		return text
	}
	runes := []rune(text)
	return string(runes[:ExcerptLength]) + "..."
}

func summary(p models.Post) string {
	if p.Description != "" {
		return p.Description
	}
	return Excerpt(p.Content)
}

// published returns the date a post is announced with: its resolved
// creation date, else its modification time, else the build time.
func published(p models.Post, now time.Time) time.Time {
	if p.CreatedAt != nil {
		return *p.CreatedAt
	}
	if p.UpdatedAt != nil {
		return *p.UpdatedAt
	}
	return now
}

func updated(p models.Post, now time.Time) time.Time {
	if p.UpdatedAt != nil {
		return *p.UpdatedAt
	}
	return published(p, now)
}

type cdata struct {
	Text string `xml:",cdata"`
}

type rssDocument struct {
	XMLName   xml.Name   `xml:"rss"`
	Version   string     `xml:"version,attr"`
	AtomNS    string     `xml:"xmlns:atom,attr"`
	ContentNS string     `xml:"xmlns:content,attr"`
	Channel   rssChannel `xml:"channel"`
}

type rssChannel struct {
	Title         cdata     `xml:"title"`
	Description   cdata     `xml:"description"`
	Link          string    `xml:"link"`
	Self          rssSelf   `xml:"atom:link"`
	Language      string    `xml:"language,omitempty"`
	LastBuildDate string    `xml:"lastBuildDate"`
	Generator     string    `xml:"generator,omitempty"`
	Items         []rssItem `xml:"item"`
}

type rssSelf struct {
	Href string `xml:"href,attr"`
	Rel  string `xml:"rel,attr"`
	Type string `xml:"type,attr"`
}

type rssItem struct {
	Title       cdata    `xml:"title"`
	Description cdata    `xml:"description"`
	Link        string   `xml:"link"`
	GUID        string   `xml:"guid"`
	PubDate     string   `xml:"pubDate"`
	Author      cdata    `xml:"author"`
	Categories  []string `xml:"category"`
	Content     cdata    `xml:"content:encoded"`
}

// RSS renders an RSS 2.0 document with full HTML in content:encoded.
func RSS(site Site, items []Item, now time.Time) ([]byte, error) {
	doc := rssDocument{
		Version:   "2.0",
		AtomNS:    "http://www.w3.org/2005/Atom",
		ContentNS: "http://purl.org/rss/1.0/modules/content/",
		Channel: rssChannel{
			Title:         cdata{site.Title},
			Description:   cdata{site.Description},
			Link:          site.URL,
			Self:          rssSelf{Href: strings.TrimRight(site.URL, "/") + "/rss", Rel: "self", Type: "application/rss+xml"},
			Language:      site.Language,
			LastBuildDate: now.UTC().Format(time.RFC1123Z),
			Generator:     site.Generator,
			Items:         make([]rssItem, 0, len(items)),
		},
	}

	for _, it := range items {
		link := site.PostURL(it.Post.Slug)
		doc.Channel.Items = append(doc.Channel.Items, rssItem{
			Title:       cdata{it.Post.Title},
			Description: cdata{summary(it.Post)},
			Link:        link,
			GUID:        link,
			PubDate:     published(it.Post, now).UTC().Format(time.RFC1123Z),
			Author:      cdata{it.Post.Author},
			Categories:  it.Post.Categories,
			Content:     cdata{it.HTML},
		})
	}

	return marshal(doc)
}

type atomFeed struct {
	XMLName  xml.Name    `xml:"http://www.w3.org/2005/Atom feed"`
	Title    string      `xml:"title"`
	Subtitle string      `xml:"subtitle,omitempty"`
	Links    []atomLink  `xml:"link"`
	ID       string      `xml:"id"`
	Updated  string      `xml:"updated"`
	Entries  []atomEntry `xml:"entry"`
}

type atomLink struct {
	Href string `xml:"href,attr"`
	Rel  string `xml:"rel,attr,omitempty"`
}

type atomText struct {
	Type string `xml:"type,attr"`
	Body string `xml:",cdata"`
}

type atomAuthor struct {
	Name string `xml:"name"`
}

type atomCategory struct {
	Term string `xml:"term,attr"`
}

type atomEntry struct {
	Title      atomText       `xml:"title"`
	Link       atomLink       `xml:"link"`
	ID         string         `xml:"id"`
	Published  string         `xml:"published"`
	Updated    string         `xml:"updated"`
	Author     atomAuthor     `xml:"author"`
	Categories []atomCategory `xml:"category"`
	Summary    atomText       `xml:"summary"`
	Content    atomText       `xml:"content"`
}

// Atom renders an Atom 1.0 feed.
func Atom(site Site, items []Item, now time.Time) ([]byte, error) {
	base := strings.TrimRight(site.URL, "/")
	feed := atomFeed{
		Title:    site.Title,
		Subtitle: site.Description,
		Links: []atomLink{
			{Href: base},
			{Href: base + "/atom.xml", Rel: "self"},
		},
		ID:      base,
		Updated: now.UTC().Format(time.RFC3339),
		Entries: make([]atomEntry, 0, len(items)),
	}

	for _, it := range items {
		link := site.PostURL(it.Post.Slug)
		entry := atomEntry{
			Title:     atomText{Type: "html", Body: it.Post.Title},
			Link:      atomLink{Href: link},
			ID:        link,
			Published: published(it.Post, now).UTC().Format(time.RFC3339),
			Updated:   updated(it.Post, now).UTC().Format(time.RFC3339),
			Author:    atomAuthor{Name: it.Post.Author},
			Summary:   atomText{Type: "text", Body: summary(it.Post)},
			Content:   atomText{Type: "html", Body: it.HTML},
		}
		for _, c := range it.Post.Categories {
			entry.Categories = append(entry.Categories, atomCategory{Term: c})
		}
		feed.Entries = append(feed.Entries, entry)
	}

	return marshal(feed)
}

func marshal(v any) ([]byte, error) {
	out, err := xml.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, err
	}
	return append([]byte(xml.Header), out...), nil
}

package wp

import (
	"github.com/alburninet/publisher/app/store"
)

// Rendered is WordPress's rendered-text envelope.
type Rendered struct {
	Rendered string `json:"rendered"`
}

// Post is the subset of a WordPress post the UI lists.
type Post struct {
	ID       int      `json:"id"`
	Date     string   `json:"date"`
	Modified string   `json:"modified"`
	Status   string   `json:"status"`
	Link     string   `json:"link"`
	Title    Rendered `json:"title"`
}

// PostsPage is one page of posts with pagination totals taken from the
// X-WP-Total / X-WP-TotalPages response headers.
type PostsPage struct {
	Items      []Post `json:"items"`
	Total      int    `json:"total"`
	TotalPages int    `json:"total_pages"`
	Page       int    `json:"page"`
	PerPage    int    `json:"per_page"`
}

// Media is the subset of a WordPress attachment the media grid shows.
type Media struct {
	ID        int      `json:"id"`
	Date      string   `json:"date"`
	Title     Rendered `json:"title"`
	AltText   string   `json:"alt_text"`
	MimeType  string   `json:"mime_type"`
	MediaType string   `json:"media_type"`
	SourceURL string   `json:"source_url"`
}

// MediaPage is one page of attachments.
type MediaPage struct {
	Items   []Media `json:"items"`
	Page    int     `json:"page"`
	PerPage int     `json:"per_page"`
	HasMore bool    `json:"has_more"`
}

// DeleteResult is what WordPress returns for a forced delete.
type DeleteResult struct {
	Deleted  bool   `json:"deleted"`
	Previous *Media `json:"previous,omitempty"`
}

// Term is a taxonomy term (category or tag).
type Term struct {
	ID     int    `json:"id"`
	Name   string `json:"name"`
	Slug   string `json:"slug"`
	Parent int    `json:"parent,omitempty"`
	Count  int    `json:"count,omitempty"`
}

// Taxonomy selects the term collection to operate on.
type Taxonomy string

// supported taxonomies
const (
	Categories Taxonomy = "categories"
	Tags       Taxonomy = "tags"
)

// Valid reports whether the taxonomy is supported.
func (t Taxonomy) Valid() bool { return t == Categories || t == Tags }

// PostRequest is the payload for creating a post.
type PostRequest struct {
	Title         string         `json:"title"`
	Content       string         `json:"content"`
	Status        string         `json:"status"`
	Excerpt       string         `json:"excerpt,omitempty"`
	Slug          string         `json:"slug,omitempty"`
	Author        int            `json:"author,omitempty"`
	Categories    []int          `json:"categories,omitempty"`
	Tags          []int          `json:"tags,omitempty"`
	FeaturedMedia int            `json:"featured_media,omitempty"`
	Meta          map[string]any `json:"meta,omitempty"`
}

// PostRequestFromDraft maps a draft onto the WordPress payload,
// including the Yoast meta fields. WordPress installs that did not
// register the meta keys for the REST API simply ignore them.
func PostRequestFromDraft(d store.ArticleDraft, author int) PostRequest {
	req := PostRequest{
		Title:         d.Title,
		Content:       d.ContentHTML,
		Status:        d.Status,
		Excerpt:       d.Excerpt,
		Slug:          d.Slug,
		Author:        author,
		Categories:    d.Categories,
		Tags:          d.Tags,
		FeaturedMedia: d.FeaturedMedia,
	}
	if req.Status == "" {
		req.Status = "draft"
	}

	meta := map[string]any{}
	if d.SeoTitle != "" {
		meta["_yoast_wpseo_title"] = d.SeoTitle
	}
	if d.SeoDescription != "" {
		meta["_yoast_wpseo_metadesc"] = d.SeoDescription
	}
	if d.FocusKeyword != "" {
		meta["_yoast_wpseo_focuskw"] = d.FocusKeyword
	}
	if d.Canonical != "" {
		meta["_yoast_wpseo_canonical"] = d.Canonical
	}
	if d.NoIndex {
		meta["_yoast_wpseo_meta-robots-noindex"] = "1"
	}
	if d.NoFollow {
		meta["_yoast_wpseo_meta-robots-nofollow"] = "1"
	}
	if d.Cornerstone {
		meta["_yoast_wpseo_is_cornerstone"] = "1"
	}
	if len(meta) > 0 {
		req.Meta = meta
	}

	return req
}

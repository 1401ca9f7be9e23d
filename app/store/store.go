// Package store contains entities and services to process and contain them.
package store

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is an error that is returned when the requested entity is not found.
var ErrNotFound = errors.New("not found")

// Interface defines methods for the preferences store.
type Interface interface {
	PutSource(ctx context.Context, src FeedSource) error
	GetSource(ctx context.Context, key string) (FeedSource, error)
	ListSources(ctx context.Context) ([]FeedSource, error)
	DeleteSource(ctx context.Context, key string) error

	PutPrefs(ctx context.Context, profileID string, p Prefs) error
	GetPrefs(ctx context.Context, profileID string) (Prefs, error)
}

// SourceGroup is a dashboard column a feed source belongs to.
type SourceGroup string

// known source groups
const (
	GroupLocale   SourceGroup = "locale"
	GroupNational SourceGroup = "national"
	GroupWorld    SourceGroup = "world"
	GroupCustom   SourceGroup = "custom"
)

// Valid reports whether the group is one of the known ones.
func (g SourceGroup) Valid() bool {
	switch g {
	case GroupLocale, GroupNational, GroupWorld, GroupCustom:
		return true
	}
	return false
}

// FeedSource is a configured RSS/Atom source.
type FeedSource struct {
	Key   string      `json:"key"   yaml:"key"`
	Name  string      `json:"name"  yaml:"name"`
	URL   string      `json:"url"   yaml:"url"`
	Group SourceGroup `json:"group" yaml:"group"`
}

// NewsItem is a single entry extracted from a feed. Published is nil when
// the feed carried no parseable date.
type NewsItem struct {
	Title     string     `json:"title"`
	Link      string     `json:"link"`
	Published *time.Time `json:"published,omitempty"`
	Category  string     `json:"category,omitempty"`
	ImageURL  string     `json:"image_url,omitempty"`
}

// FeedPayload is the parsed outcome for one source. A source that failed
// to fetch or parse yields an empty Items slice, never an error.
type FeedPayload struct {
	Key   string      `json:"key"`
	Name  string      `json:"name"`
	Group SourceGroup `json:"group"`
	Items []NewsItem  `json:"items"`
}

// Cluster is a group of near-duplicate headlines collapsed to one
// representative for display.
type Cluster struct {
	Head    NewsItem   `json:"head"`
	Others  []NewsItem `json:"others,omitempty"`
	Fresh30 bool       `json:"fresh_30"`
	Fresh60 bool       `json:"fresh_60"`
}

// Size returns the number of items collapsed into the cluster.
func (c Cluster) Size() int { return 1 + len(c.Others) }

// CheckStatus is an outcome of a single SEO check.
type CheckStatus string

// check statuses
const (
	StatusGood    CheckStatus = "good"
	StatusBad     CheckStatus = "bad"
	StatusNeutral CheckStatus = "neutral"
)

// SeoCheck is a single row of the SEO checklist.
type SeoCheck struct {
	Label  string      `json:"label"`
	Status CheckStatus `json:"status"`
	Note   string      `json:"note,omitempty"`
}

// ArticleDraft holds the compose form state submitted for scoring or
// publishing. WordPress is the sole system of record, the draft itself
// is never persisted here.
type ArticleDraft struct {
	Title          string `json:"title"`
	Slug           string `json:"slug"`
	Excerpt        string `json:"excerpt"`
	ContentHTML    string `json:"content_html"`
	SeoTitle       string `json:"seo_title"`
	SeoDescription string `json:"seo_description"`
	FocusKeyword   string `json:"focus_kw"`

	Status        string `json:"status"`
	Categories    []int  `json:"categories,omitempty"`
	Tags          []int  `json:"tags,omitempty"`
	FeaturedMedia int    `json:"featured_media,omitempty"`

	// TagNames are suggested tags not yet resolved to term IDs.
	TagNames []string `json:"tag_names,omitempty"`

	Canonical   string `json:"canonical,omitempty"`
	NoIndex     bool   `json:"noindex,omitempty"`
	NoFollow    bool   `json:"nofollow,omitempty"`
	Cornerstone bool   `json:"cornerstone,omitempty"`
}

// Article is the extracted readable content of a linked page, used to
// prefill a draft.
type Article struct {
	URL      string `json:"url"`
	Title    string `json:"title"`
	Excerpt  string `json:"excerpt"`
	Content  string `json:"content"`
	Author   string `json:"author"`
	ImageURL string `json:"image_url"`
}

// ProfileRole is an editorial role of a profile.
type ProfileRole string

// profile roles
const (
	RoleAdmin  ProfileRole = "admin"
	RoleEditor ProfileRole = "editor"
	RoleViewer ProfileRole = "viewer"
)

// Profile is an editorial identity mapped to a WordPress author.
type Profile struct {
	ID       string      `json:"id"         yaml:"id"`
	Label    string      `json:"label"      yaml:"label"`
	WPUserID int         `json:"wp_user_id" yaml:"wp_user_id"`
	Role     ProfileRole `json:"role"       yaml:"role"`
}

// Prefs is per-profile dashboard state: which sources are enabled in
// each group, and pinned items.
type Prefs struct {
	Enabled map[SourceGroup][]string `json:"enabled"`
	Pinned  []NewsItem               `json:"pinned,omitempty"`
}

// DefaultSources returns the sources the dashboard starts with when the
// store has no custom ones.
func DefaultSources() []FeedSource {
	return []FeedSource{
		{Key: "salernotoday", Name: "SalernoToday", URL: "https://www.salernotoday.it/rss", Group: GroupLocale},
		{Key: "ansa-top", Name: "ANSA", URL: "https://www.ansa.it/sito/ansait_rss.xml", Group: GroupNational},
		{Key: "bbc-world", Name: "BBC World", URL: "https://feeds.bbci.co.uk/news/world/rss.xml", Group: GroupWorld},
	}
}

// Package wp is a typed client for the WordPress REST API.
package wp

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

// ErrInvalidResponse is returned when WordPress answers with a body
// that is not the JSON the endpoint promises.
var ErrInvalidResponse = errors.New("invalid response from wordpress")

// ErrStatus is returned on a non-2xx answer. Operations are never
// retried, every failure is terminal for the triggering action.
type ErrStatus struct {
	Code int
	Body string
}

// Error returns the string representation of the error.
func (e *ErrStatus) Error() string {
	return fmt.Sprintf("wordpress status %d: %s", e.Code, e.Body)
}

// Client calls the WordPress REST API with application-password Basic
// Auth. Responses are decoded into explicit schemas at this boundary.
type Client struct {
	log     *slog.Logger
	cl      *http.Client
	baseURL string
	auth    string
}

// NewClient creates new Client. baseURL is the site root, without the
// /wp-json suffix.
func NewClient(lg *slog.Logger, cl *http.Client, baseURL, user, appPassword string) *Client {
	return &Client{
		log:     lg,
		cl:      cl,
		baseURL: strings.TrimRight(baseURL, "/"),
		auth:    "Basic " + base64.StdEncoding.EncodeToString([]byte(user+":"+appPassword)),
	}
}

// ListPostsRequest defines parameters for listing posts.
type ListPostsRequest struct {
	Page    int
	PerPage int
	Search  string
	Status  string // publish | draft | any
}

// ListPosts returns a page of posts, newest first, drafts included.
func (c *Client) ListPosts(ctx context.Context, req ListPostsRequest) (PostsPage, error) {
	if req.Page < 1 {
		req.Page = 1
	}
	if req.PerPage < 1 {
		req.PerPage = 20
	}

	q := url.Values{}
	q.Set("page", strconv.Itoa(req.Page))
	q.Set("per_page", strconv.Itoa(req.PerPage))
	q.Set("_fields", "id,date,modified,status,link,title")
	q.Set("orderby", "date")
	q.Set("order", "desc")
	// context=edit is needed to see drafts with auth
	q.Set("context", "edit")
	if req.Search != "" {
		q.Set("search", req.Search)
	}
	// WordPress rejects "any": pass the status through only when it is
	// an actual one, omit it otherwise
	if s := strings.ToLower(req.Status); s == "publish" || s == "draft" {
		q.Set("status", s)
	}

	var items []Post
	hdr, err := c.do(ctx, http.MethodGet, "/wp/v2/posts", q, nil, "", &items)
	if err != nil {
		return PostsPage{}, fmt.Errorf("list posts: %w", err)
	}

	return PostsPage{
		Items:      items,
		Total:      headerInt(hdr, "X-WP-Total"),
		TotalPages: headerInt(hdr, "X-WP-TotalPages"),
		Page:       req.Page,
		PerPage:    req.PerPage,
	}, nil
}

// CreatePost creates a post (draft or published) with the Yoast meta.
func (c *Client) CreatePost(ctx context.Context, req PostRequest) (Post, error) {
	bts, err := json.Marshal(req)
	if err != nil {
		return Post{}, fmt.Errorf("marshal post: %w", err)
	}

	var post Post
	if _, err = c.do(ctx, http.MethodPost, "/wp/v2/posts", nil,
		bytes.NewReader(bts), "application/json", &post); err != nil {
		return Post{}, fmt.Errorf("create post: %w", err)
	}
	return post, nil
}

// ListMediaRequest defines parameters for listing attachments.
type ListMediaRequest struct {
	Page      int
	PerPage   int
	Search    string
	MediaType string
}

// ListMedia returns a page of attachments.
func (c *Client) ListMedia(ctx context.Context, req ListMediaRequest) (MediaPage, error) {
	if req.Page < 1 {
		req.Page = 1
	}
	if req.PerPage < 1 || req.PerPage > 100 {
		req.PerPage = 24
	}
	if req.MediaType == "" {
		req.MediaType = "image"
	}

	q := url.Values{}
	q.Set("page", strconv.Itoa(req.Page))
	q.Set("per_page", strconv.Itoa(req.PerPage))
	q.Set("media_type", req.MediaType)
	if req.Search != "" {
		q.Set("search", req.Search)
	}

	var items []Media
	hdr, err := c.do(ctx, http.MethodGet, "/wp/v2/media", q, nil, "", &items)
	if err != nil {
		return MediaPage{}, fmt.Errorf("list media: %w", err)
	}

	hasMore := len(items) == req.PerPage
	if totalPages := headerInt(hdr, "X-WP-TotalPages"); totalPages > 0 {
		hasMore = req.Page < totalPages
	}

	return MediaPage{Items: items, Page: req.Page, PerPage: req.PerPage, HasMore: hasMore}, nil
}

// UploadMedia uploads a file as a new attachment.
func (c *Client) UploadMedia(ctx context.Context, filename, contentType string, rd io.Reader) (Media, error) {
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/wp-json/wp/v2/media", rd)
	if err != nil {
		return Media{}, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", c.auth)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Content-Disposition", `attachment; filename="`+filename+`"`)

	var media Media
	if err := c.send(req, &media); err != nil {
		return Media{}, fmt.Errorf("upload media: %w", err)
	}
	return media, nil
}

// DeleteMedia permanently removes an attachment.
func (c *Client) DeleteMedia(ctx context.Context, id int) (DeleteResult, error) {
	q := url.Values{}
	q.Set("force", "true")

	var res DeleteResult
	path := fmt.Sprintf("/wp/v2/media/%d", id)
	if _, err := c.do(ctx, http.MethodDelete, path, q, nil, "", &res); err != nil {
		return DeleteResult{}, fmt.Errorf("delete media %d: %w", id, err)
	}
	return res, nil
}

// Categories returns the site categories.
func (c *Client) Categories(ctx context.Context) ([]Term, error) {
	return c.SearchTaxonomy(ctx, Categories, "", 100)
}

// SearchTaxonomy searches terms of a taxonomy by name.
func (c *Client) SearchTaxonomy(ctx context.Context, taxonomy Taxonomy, search string, perPage int) ([]Term, error) {
	if !taxonomy.Valid() {
		return nil, fmt.Errorf("unsupported taxonomy %q", taxonomy)
	}
	if perPage < 1 || perPage > 100 {
		perPage = 100
	}

	q := url.Values{}
	q.Set("per_page", strconv.Itoa(perPage))
	if search != "" {
		q.Set("search", search)
	}

	var terms []Term
	if _, err := c.do(ctx, http.MethodGet, "/wp/v2/"+string(taxonomy), q, nil, "", &terms); err != nil {
		return nil, fmt.Errorf("search %s: %w", taxonomy, err)
	}
	return terms, nil
}

// CreateTaxonomy creates a term, optionally under a parent.
func (c *Client) CreateTaxonomy(ctx context.Context, taxonomy Taxonomy, name string, parent int) (Term, error) {
	if !taxonomy.Valid() {
		return Term{}, fmt.Errorf("unsupported taxonomy %q", taxonomy)
	}

	payload := map[string]any{"name": name}
	if parent > 0 {
		payload["parent"] = parent
	}
	bts, err := json.Marshal(payload)
	if err != nil {
		return Term{}, fmt.Errorf("marshal term: %w", err)
	}

	var term Term
	if _, err = c.do(ctx, http.MethodPost, "/wp/v2/"+string(taxonomy), nil,
		bytes.NewReader(bts), "application/json", &term); err != nil {
		return Term{}, fmt.Errorf("create %s: %w", taxonomy, err)
	}
	return term, nil
}

func (c *Client) do(ctx context.Context, method, path string, q url.Values, body io.Reader, contentType string, out any) (http.Header, error) {
	u := c.baseURL + "/wp-json" + path
	if len(q) > 0 {
		u += "?" + q.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", c.auth)
	req.Header.Set("Accept", "application/json")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := c.cl.Do(req)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			c.log.WarnContext(ctx, "failed to close response body", slog.Any("err", err))
		}
	}()

	if err := decode(resp, out); err != nil {
		return nil, err
	}
	return resp.Header, nil
}

func (c *Client) send(req *http.Request, out any) error {
	resp, err := c.cl.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			c.log.WarnContext(req.Context(), "failed to close response body", slog.Any("err", err))
		}
	}()

	return decode(resp, out)
}

func decode(resp *http.Response, out any) error {
	bts, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read body: %w", err)
	}

	ok := resp.StatusCode >= http.StatusOK && resp.StatusCode < http.StatusMultipleChoices
	if !ok {
		return &ErrStatus{Code: resp.StatusCode, Body: strings.TrimSpace(string(bts))}
	}

	if out == nil || len(bts) == 0 {
		return nil
	}
	if err := json.Unmarshal(bts, out); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}
	return nil
}

func headerInt(hdr http.Header, name string) int {
	n, _ := strconv.Atoi(hdr.Get(name))
	return n
}

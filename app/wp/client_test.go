package wp

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alburninet/publisher/app/store"
)

// expects Basic base64("editor:s3cret")
const wantAuth = "Basic ZWRpdG9yOnMzY3JldA=="

func newTestClient(t *testing.T, h http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()
	ts := httptest.NewServer(h)
	t.Cleanup(ts.Close)
	return NewClient(slog.Default(), ts.Client(), ts.URL+"/", "editor", "s3cret"), ts
}

func TestClient_ListPosts(t *testing.T) {
	cl, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/wp-json/wp/v2/posts", r.URL.Path)
		assert.Equal(t, wantAuth, r.Header.Get("Authorization"))

		q := r.URL.Query()
		assert.Equal(t, "2", q.Get("page"))
		assert.Equal(t, "10", q.Get("per_page"))
		assert.Equal(t, "edit", q.Get("context"))
		assert.Equal(t, "draft", q.Get("status"))
		assert.Equal(t, "tartufo", q.Get("search"))
		assert.Equal(t, "date", q.Get("orderby"))
		assert.Equal(t, "desc", q.Get("order"))

		w.Header().Set("X-WP-Total", "35")
		w.Header().Set("X-WP-TotalPages", "4")
		err := json.NewEncoder(w).Encode([]Post{
			{ID: 7, Status: "draft", Title: Rendered{Rendered: "Bozza"}},
		})
		require.NoError(t, err)
	})

	page, err := cl.ListPosts(context.Background(), ListPostsRequest{
		Page: 2, PerPage: 10, Search: "tartufo", Status: "draft",
	})
	require.NoError(t, err)

	assert.Equal(t, 35, page.Total)
	assert.Equal(t, 4, page.TotalPages)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "Bozza", page.Items[0].Title.Rendered)
}

func TestClient_ListPosts_AnyStatusOmitted(t *testing.T) {
	cl, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.False(t, r.URL.Query().Has("status"))
		_, err := w.Write([]byte(`[]`))
		require.NoError(t, err)
	})

	_, err := cl.ListPosts(context.Background(), ListPostsRequest{Status: "any"})
	require.NoError(t, err)
}

func TestClient_CreatePost_YoastMeta(t *testing.T) {
	cl, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var got PostRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		assert.Equal(t, "Titolo", got.Title)
		assert.Equal(t, "draft", got.Status)
		assert.Equal(t, 23, got.Author)
		assert.Equal(t, "Titolo SEO", got.Meta["_yoast_wpseo_title"])
		assert.Equal(t, "tartufo", got.Meta["_yoast_wpseo_focuskw"])
		assert.Equal(t, "1", got.Meta["_yoast_wpseo_meta-robots-noindex"])

		w.WriteHeader(http.StatusCreated)
		err := json.NewEncoder(w).Encode(Post{ID: 101, Status: "draft"})
		require.NoError(t, err)
	})

	req := PostRequestFromDraft(store.ArticleDraft{
		Title:        "Titolo",
		ContentHTML:  "<p>testo</p>",
		SeoTitle:     "Titolo SEO",
		FocusKeyword: "tartufo",
		NoIndex:      true,
	}, 23)

	post, err := cl.CreatePost(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, 101, post.ID)
}

func TestClient_ListMedia_HasMore(t *testing.T) {
	cl, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "image", r.URL.Query().Get("media_type"))
		w.Header().Set("X-WP-TotalPages", "3")
		_, err := w.Write([]byte(`[{"id":1,"source_url":"https://example.com/a.jpg"}]`))
		require.NoError(t, err)
	})

	page, err := cl.ListMedia(context.Background(), ListMediaRequest{Page: 2, PerPage: 24})
	require.NoError(t, err)
	assert.True(t, page.HasMore)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "https://example.com/a.jpg", page.Items[0].SourceURL)
}

func TestClient_UploadMedia(t *testing.T) {
	cl, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/wp-json/wp/v2/media", r.URL.Path)
		assert.Equal(t, wantAuth, r.Header.Get("Authorization"))
		assert.Equal(t, `attachment; filename="foto.jpg"`, r.Header.Get("Content-Disposition"))
		assert.Equal(t, "image/jpeg", r.Header.Get("Content-Type"))

		bts, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		assert.Equal(t, "fake-jpeg-bytes", string(bts))

		w.WriteHeader(http.StatusCreated)
		err = json.NewEncoder(w).Encode(Media{ID: 55, SourceURL: "https://example.com/foto.jpg"})
		require.NoError(t, err)
	})

	media, err := cl.UploadMedia(context.Background(), "foto.jpg", "image/jpeg",
		strings.NewReader("fake-jpeg-bytes"))
	require.NoError(t, err)
	assert.Equal(t, 55, media.ID)
}

func TestClient_DeleteMedia(t *testing.T) {
	cl, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		assert.Equal(t, "/wp-json/wp/v2/media/55", r.URL.Path)
		assert.Equal(t, "true", r.URL.Query().Get("force"))
		_, err := w.Write([]byte(`{"deleted":true,"previous":{"id":55}}`))
		require.NoError(t, err)
	})

	res, err := cl.DeleteMedia(context.Background(), 55)
	require.NoError(t, err)
	assert.True(t, res.Deleted)
	require.NotNil(t, res.Previous)
	assert.Equal(t, 55, res.Previous.ID)
}

func TestClient_Taxonomy(t *testing.T) {
	cl, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			assert.Equal(t, "/wp-json/wp/v2/tags", r.URL.Path)
			assert.Equal(t, "sagra", r.URL.Query().Get("search"))
			_, err := w.Write([]byte(`[{"id":3,"name":"Sagra","slug":"sagra"}]`))
			require.NoError(t, err)
		case http.MethodPost:
			var payload map[string]any
			require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
			assert.Equal(t, "Eventi", payload["name"])
			assert.EqualValues(t, 7, payload["parent"])
			w.WriteHeader(http.StatusCreated)
			_, err := w.Write([]byte(`{"id":9,"name":"Eventi","slug":"eventi","parent":7}`))
			require.NoError(t, err)
		}
	})

	terms, err := cl.SearchTaxonomy(context.Background(), Tags, "sagra", 100)
	require.NoError(t, err)
	require.Len(t, terms, 1)
	assert.Equal(t, "Sagra", terms[0].Name)

	term, err := cl.CreateTaxonomy(context.Background(), Categories, "Eventi", 7)
	require.NoError(t, err)
	assert.Equal(t, 9, term.ID)

	_, err = cl.SearchTaxonomy(context.Background(), Taxonomy("users"), "", 10)
	assert.Error(t, err)
}

func TestClient_ErrStatus(t *testing.T) {
	cl, _ := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, err := w.Write([]byte(`{"code":"rest_forbidden"}`))
		require.NoError(t, err)
	})

	_, err := cl.ListPosts(context.Background(), ListPostsRequest{})
	var statusErr *ErrStatus
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusForbidden, statusErr.Code)
	assert.Contains(t, statusErr.Body, "rest_forbidden")
}

func TestClient_InvalidResponse(t *testing.T) {
	cl, _ := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, err := w.Write([]byte("<html>manutenzione in corso</html>"))
		require.NoError(t, err)
	})

	_, err := cl.ListPosts(context.Background(), ListPostsRequest{})
	assert.ErrorIs(t, err, ErrInvalidResponse)
}

func TestTaxonomyCreate_Unsupported(t *testing.T) {
	cl := NewClient(slog.Default(), http.DefaultClient, "https://example.com", "u", "p")
	_, err := cl.CreateTaxonomy(context.Background(), Taxonomy("menus"), "x", 0)
	assert.Error(t, err)
}

// Package ai generates article drafts through an OpenAI-compatible
// chat completion endpoint.
package ai

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"regexp"
	"strings"
	"text/template"

	cache "github.com/go-pkgz/expirable-cache/v2"
	"github.com/microcosm-cc/bluemonday"
	"github.com/sashabaranov/go-openai"

	"github.com/alburninet/publisher/app/seo"
	"github.com/alburninet/publisher/app/store"
)

//go:embed data/prompt.tmpl
var prompt string

var promptTmpl = template.Must(template.New("prompt").Parse(prompt))

const systemPrompt = `Sei un assistente editoriale in italiano ottimizzato per Yoast SEO.
Restituisci SOLO un JSON con: title, seoTitle, excerpt, focusKw, tags, contentHtml.
contentHtml: solo H2/H3, paragrafi, liste, 1–2 link esterni autorevoli. Nessun H1.`

// DefaultModel is used when no model is configured.
const DefaultModel = "meta-llama/Meta-Llama-3.1-70B-Instruct-Turbo"

const maxTags = 12

// ErrEmptyTopic is returned when the requested topic is blank.
var ErrEmptyTopic = errors.New("empty topic")

// ErrInvalidResponse is returned when the model answer cannot be
// parsed as the draft JSON, not even after stripping the prose the
// model sometimes wraps it in.
var ErrInvalidResponse = errors.New("model response is not valid JSON")

// models tend to prepend prose before the JSON object, take the
// object at the tail of the answer
var reTrailingJSON = regexp.MustCompile(`(?s)\{.*\}\s*$`)

//go:generate moq -out mock_openai_client.go . OpenAIClient
// OpenAIClient is interface for OpenAI client with the possibility to mock it
type OpenAIClient interface {
	CreateChatCompletion(context.Context, openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// Generator builds article drafts from a topic. Without an API key it
// degrades to a locally built draft so the composer keeps working.
type Generator struct {
	log       *slog.Logger
	cl        OpenAIClient
	model     string
	maxTokens int
	sanitizer *bluemonday.Policy
	cache     cache.Cache[string, store.ArticleDraft]
}

// NewGenerator creates new Generator. baseURL points at any
// OpenAI-compatible provider, an empty token leaves the generator in
// local fallback mode.
func NewGenerator(lg *slog.Logger, cl *http.Client, baseURL, token, model string, maxTokens int) *Generator {
	if model == "" {
		model = DefaultModel
	}
	if maxTokens <= 0 {
		maxTokens = 3000
	}

	g := &Generator{
		log:       lg,
		model:     model,
		maxTokens: maxTokens,
		sanitizer: bluemonday.UGCPolicy(),
		cache: cache.NewCache[string, store.ArticleDraft]().
			WithLRU().
			WithMaxKeys(100),
	}

	if token == "" {
		return g
	}

	config := openai.DefaultConfig(token)
	config.HTTPClient = cl
	if baseURL != "" {
		config.BaseURL = strings.TrimRight(baseURL, "/")
	}
	g.cl = &loggingClient{log: lg, cl: openai.NewClientWithConfig(config)}

	return g
}

// Remote reports whether drafts come from the model rather than the
// local fallback.
func (g *Generator) Remote() bool { return g.cl != nil }

// CacheStat returns cache stats.
func (g *Generator) CacheStat() cache.Stats { return g.cache.Stat() }

// Generate returns a draft for the topic.
func (g *Generator) Generate(ctx context.Context, topic string) (store.ArticleDraft, error) {
	topic = strings.TrimSpace(topic)
	if topic == "" {
		return store.ArticleDraft{}, ErrEmptyTopic
	}

	key := strings.ToLower(topic)
	if draft, ok := g.cache.Get(key); ok {
		return draft, nil
	}

	if g.cl == nil {
		draft := g.fallbackDraft(topic)
		g.cache.Set(key, draft, 0)
		return draft, nil
	}

	buf := &strings.Builder{}
	if err := promptTmpl.Execute(buf, struct{ Topic string }{Topic: topic}); err != nil {
		return store.ArticleDraft{}, fmt.Errorf("build request: %w", err)
	}

	req := openai.ChatCompletionRequest{
		Model:       g.model,
		MaxTokens:   g.maxTokens,
		Temperature: 0.7,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: buf.String()},
		},
	}

	resp, err := g.cl.CreateChatCompletion(ctx, req)
	if err != nil {
		return store.ArticleDraft{}, fmt.Errorf("create chat completion: %w", err)
	}

	if len(resp.Choices) == 0 {
		return store.ArticleDraft{}, fmt.Errorf("no choices in response")
	}

	draft, err := g.parseDraft(resp.Choices[0].Message.Content)
	if err != nil {
		return store.ArticleDraft{}, err
	}

	g.cache.Set(key, draft, 0)
	return draft, nil
}

// draftPayload is the schema the model is asked to answer with.
type draftPayload struct {
	Title       string   `json:"title"`
	SeoTitle    string   `json:"seoTitle"`
	Excerpt     string   `json:"excerpt"`
	FocusKw     string   `json:"focusKw"`
	Tags        []string `json:"tags"`
	ContentHTML string   `json:"contentHtml"`
}

func (g *Generator) parseDraft(content string) (store.ArticleDraft, error) {
	var payload draftPayload
	if err := json.Unmarshal([]byte(content), &payload); err != nil {
		m := reTrailingJSON.FindString(content)
		if m == "" {
			return store.ArticleDraft{}, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
		}
		if err = json.Unmarshal([]byte(m), &payload); err != nil {
			return store.ArticleDraft{}, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
		}
	}

	title := strings.TrimSpace(payload.Title)
	seoTitle := strings.TrimSpace(payload.SeoTitle)
	if seoTitle == "" {
		seoTitle = title
	}

	tags := payload.Tags
	if len(tags) > maxTags {
		tags = tags[:maxTags]
	}

	return store.ArticleDraft{
		Title:          title,
		Slug:           seo.Slugify(title),
		Excerpt:        strings.TrimSpace(payload.Excerpt),
		ContentHTML:    g.sanitizer.Sanitize(payload.ContentHTML),
		SeoTitle:       seoTitle,
		SeoDescription: strings.TrimSpace(payload.Excerpt),
		FocusKeyword:   strings.TrimSpace(payload.FocusKw),
		TagNames:       tags,
	}, nil
}

// fallbackDraft mirrors what the model would answer, built locally.
func (g *Generator) fallbackDraft(topic string) store.ArticleDraft {
	words := strings.Fields(strings.ToLower(topic))
	if len(words) > 3 {
		words = words[:3]
	}

	excerpt := "Anteprima automatica (manca la chiave API). " +
		"Modifica questo testo per la meta description."

	return store.ArticleDraft{
		Title:          "Bozza: " + topic,
		Slug:           seo.Slugify("Bozza: " + topic),
		Excerpt:        excerpt,
		ContentHTML:    "<h2>" + topic + "</h2><p>Contenuto generato localmente. Configura la chiave API per usare il modello.</p>",
		SeoTitle:       "SEO: " + topic,
		SeoDescription: excerpt,
		FocusKeyword:   strings.Join(words, " "),
		TagNames:       []string{"alburni", "news", "editoriale"},
	}
}

type loggingClient struct {
	log *slog.Logger
	cl  OpenAIClient
}

func (l *loggingClient) CreateChatCompletion(
	ctx context.Context,
	req openai.ChatCompletionRequest,
) (openai.ChatCompletionResponse, error) {
	l.log.DebugContext(ctx, "sending request to the model")
	resp, err := l.cl.CreateChatCompletion(ctx, req)
	l.log.DebugContext(ctx, "response received from the model")
	return resp, err
}

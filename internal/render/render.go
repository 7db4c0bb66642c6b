// Package render turns service answers into safe HTML for the page.
package render

import (
	"bytes"
	"html/template"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/golang/groupcache/lru"
	"github.com/jdkato/prose/v2"
	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

// Renderer converts markdown answers to sanitised HTML. Rendered output is
// cached by source text, which is safe because history entries never change.
type Renderer struct {
	md     goldmark.Markdown
	policy *bluemonday.Policy

	mu    sync.Mutex
	cache *lru.Cache
}

// NewRenderer creates a renderer keeping up to cacheSize rendered answers.
// A cacheSize of zero or less disables caching.
func NewRenderer(cacheSize int) *Renderer {
	r := &Renderer{
		md:     goldmark.New(goldmark.WithExtensions(extension.GFM)),
		policy: bluemonday.UGCPolicy(),
	}
	if cacheSize > 0 {
		r.cache = lru.New(cacheSize)
	}
	return r
}

// Markdown renders src as sanitised HTML. If conversion fails the text is
// shown escaped instead.
func (r *Renderer) Markdown(src string) template.HTML {
	if r.cache != nil {
		r.mu.Lock()
		cached, ok := r.cache.Get(src)
		r.mu.Unlock()
		if ok {
			return cached.(template.HTML)
		}
	}

	var buf bytes.Buffer
	var out template.HTML
	if err := r.md.Convert([]byte(src), &buf); err != nil {
		out = template.HTML(template.HTMLEscapeString(src))
	} else {
		out = template.HTML(r.policy.SanitizeBytes(buf.Bytes()))
	}

	if r.cache != nil {
		r.mu.Lock()
		r.cache.Add(src, out)
		r.mu.Unlock()
	}
	return out
}

// CacheLen returns the number of cached renders
func (r *Renderer) CacheLen() int {
	if r.cache == nil {
		return 0
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.cache.Len()
}

// Preview returns the first sentence of a source snippet, cut to maxRunes.
// It is the collapsed label of a source in the history list.
func Preview(snippet string, maxRunes int) string {
	text := strings.Join(strings.Fields(snippet), " ")
	if text == "" {
		return ""
	}

	doc, err := prose.NewDocument(text,
		prose.WithTokenization(false),
		prose.WithTagging(false),
		prose.WithExtraction(false))
	if err == nil {
		if sentences := doc.Sentences(); len(sentences) > 0 && sentences[0].Text != "" {
			text = sentences[0].Text
		}
	}

	return truncate(text, maxRunes)
}

func truncate(s string, maxRunes int) string {
	if maxRunes <= 0 || utf8.RuneCountInString(s) <= maxRunes {
		return s
	}
	runes := []rune(s)
	return strings.TrimRight(string(runes[:maxRunes]), " ") + "…"
}

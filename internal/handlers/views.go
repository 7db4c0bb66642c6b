package handlers

import (
	"html/template"
	"time"

	"docqa/internal/models"
	"docqa/internal/render"
	"docqa/internal/session"
)

const sourcePreviewRunes = 120

// PageView is everything the page template renders
type PageView struct {
	Status    StatusView
	Upload    UploadView
	Questions QuestionsView
	Notice    string
}

// StatusView feeds the status strip
type StatusView struct {
	Ready       bool
	Chunks      int
	SizeMB      float64
	Health      *models.HealthStatus
	HealthError string
}

// UploadView feeds the upload widget
type UploadView struct {
	Uploading   bool
	Result      *models.UploadResult
	Error       string
	MaxUploadMB float64
}

// QuestionsView feeds the question interface
type QuestionsView struct {
	Asking   bool
	Disabled bool
	Error    string
	Entries  []EntryView
}

// EntryView is one rendered history entry
type EntryView struct {
	ID        string
	Question  string
	Answer    template.HTML
	RawAnswer string
	Sources   []SourceView
	Timestamp time.Time
}

// SourceView is one cited snippet with its collapsed label
type SourceView struct {
	Preview string
	Text    string
}

func buildPageView(s *session.Session, renderer *render.Renderer, maxUploadMB float64, health *models.HealthStatus, healthErr string) PageView {
	chunks, sizeMB := s.Metrics()
	ready := s.DocumentReady()
	asking := s.Questions.Asking()

	history := s.Questions.History()
	entries := make([]EntryView, 0, len(history))
	for _, h := range history {
		sources := make([]SourceView, 0, len(h.SourceDocuments))
		for _, src := range h.SourceDocuments {
			sources = append(sources, SourceView{
				Preview: render.Preview(src, sourcePreviewRunes),
				Text:    src,
			})
		}
		entries = append(entries, EntryView{
			ID:        h.ID,
			Question:  h.Question,
			Answer:    renderer.Markdown(h.Answer),
			RawAnswer: h.Answer,
			Sources:   sources,
			Timestamp: h.Timestamp,
		})
	}

	return PageView{
		Status: StatusView{
			Ready:       ready,
			Chunks:      chunks,
			SizeMB:      sizeMB,
			Health:      health,
			HealthError: healthErr,
		},
		Upload: UploadView{
			Uploading:   s.Upload.Uploading(),
			Result:      s.Upload.Result(),
			Error:       s.Upload.Error(),
			MaxUploadMB: maxUploadMB,
		},
		Questions: QuestionsView{
			Asking:   asking,
			Disabled: !ready || asking,
			Error:    s.Questions.Error(),
			Entries:  entries,
		},
		Notice: s.TakeNotice(),
	}
}

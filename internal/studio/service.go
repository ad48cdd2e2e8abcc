// StudyBuddy - Focus Scoring and Study Content Services
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/studybuddy

package studio

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/tomtom215/studybuddy/internal/cache"
	"github.com/tomtom215/studybuddy/internal/logging"
	"github.com/tomtom215/studybuddy/internal/metrics"
	"github.com/tomtom215/studybuddy/internal/validation"
)

var (
	// ErrMalformedOutput means the model replied with something that does
	// not decode into the requested shape.
	ErrMalformedOutput = errors.New("model output is not in the expected format")

	// ErrUpstream means the model could not be reached or refused the call.
	ErrUpstream = errors.New("language model request failed")

	// ErrEmptyInput is returned for a missing document or text.
	ErrEmptyInput = errors.New("no input provided")
)

// Generation kinds, used as metric labels.
const (
	KindSummary    = "summary"
	KindFlashcards = "flashcards"
	KindQuiz       = "quiz"
	KindMindmap    = "mindmap"
	KindMiniGame   = "mini_game"
)

// DefaultDocumentMIME is assumed for uploads without a usable content type.
const DefaultDocumentMIME = "application/pdf"

// idPrefixes are prepended to the generated content IDs.
var idPrefixes = map[string]string{
	KindSummary:    "text-",
	KindFlashcards: "flashcard-",
	KindQuiz:       "quiz-",
	KindMindmap:    "mindmap-",
	KindMiniGame:   "mini-game-",
}

// Service generates study content.
type Service struct {
	completer Completer
	validate  *validator.Validate
	newID     func() string
	logger    zerolog.Logger
	results   *cache.LRU[*Content]
}

// Option configures a Service.
type Option func(*Service)

// WithCache reuses results for inputs seen within the cache TTL. A hit
// returns the cached content under a fresh ID.
func WithCache(c *cache.LRU[*Content]) Option {
	return func(s *Service) { s.results = c }
}

// NewService returns a service backed by completer.
func NewService(completer Completer, opts ...Option) *Service {
	s := &Service{
		completer: completer,
		validate:  validation.GetValidator(),
		newID:     uuid.NewString,
		logger:    logging.WithComponent("studio"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Summarize produces a Markdown summary of a document.
func (s *Service) Summarize(ctx context.Context, filename, mimeType string, data []byte) (*Content, error) {
	if len(data) == 0 {
		return nil, ErrEmptyInput
	}
	if mimeType == "" {
		mimeType = DefaultDocumentMIME
	}
	key := cache.Key(KindSummary, []byte(filename), []byte(mimeType), data)
	return s.cached(KindSummary, key, func() (*Content, error) {
		return s.summarize(ctx, filename, mimeType, data)
	})
}

// Flashcards generates a flip card deck from text.
func (s *Service) Flashcards(ctx context.Context, text string) (*Content, error) {
	return s.cachedText(KindFlashcards, text, func() (*Content, error) { return s.flashcards(ctx, text) })
}

// Quiz generates a multiple choice quiz from text.
func (s *Service) Quiz(ctx context.Context, text string) (*Content, error) {
	return s.cachedText(KindQuiz, text, func() (*Content, error) { return s.quiz(ctx, text) })
}

// Mindmap generates a topic tree from text.
func (s *Service) Mindmap(ctx context.Context, text string) (*Content, error) {
	return s.cachedText(KindMindmap, text, func() (*Content, error) { return s.mindmap(ctx, text) })
}

// MiniGame generates a drag-and-drop matching game from text.
func (s *Service) MiniGame(ctx context.Context, text string) (*Content, error) {
	return s.cachedText(KindMiniGame, text, func() (*Content, error) { return s.miniGame(ctx, text) })
}

func (s *Service) cachedText(kind, text string, build func() (*Content, error)) (*Content, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrEmptyInput
	}
	return s.cached(kind, cache.Key(kind, []byte(text)), build)
}

// cached serves kind from the result cache or builds and stores it. Only
// successful results are stored.
func (s *Service) cached(kind, key string, build func() (*Content, error)) (*Content, error) {
	if s.results == nil {
		return build()
	}
	if c, ok := s.results.Get(key); ok {
		metrics.RecordStudioCache(true)
		metrics.RecordStudioRequest(kind, "cached")
		return &Content{ID: idPrefixes[kind] + s.newID(), Type: c.Type, Data: c.Data}, nil
	}
	metrics.RecordStudioCache(false)

	c, err := build()
	if err != nil {
		return nil, err
	}
	s.results.Add(key, c)
	return c, nil
}

func (s *Service) summarize(ctx context.Context, filename, mimeType string, data []byte) (*Content, error) {
	reply, err := s.generate(ctx, KindSummary, []Part{InlinePart(mimeType, data), TextPart(summaryPrompt)})
	if err != nil {
		return nil, err
	}
	summary := strings.TrimSpace(reply)
	if summary == "" {
		return nil, s.malformed(KindSummary, errors.New("empty summary"))
	}

	s.logger.Info().Str("filename", filename).Int("bytes", len(data)).Msg("Document summarized")
	return s.done(KindSummary, &Content{
		ID:   idPrefixes[KindSummary] + s.newID(),
		Type: TypeText,
		Data: TextData{Title: documentTitle(filename), Content: summary},
	}), nil
}

func (s *Service) flashcards(ctx context.Context, text string) (*Content, error) {
	var cards []Flashcard
	if err := s.generateJSON(ctx, KindFlashcards, flashcardsPrompt, text, &cards); err != nil {
		return nil, err
	}
	if len(cards) == 0 {
		return nil, s.malformed(KindFlashcards, errors.New("no cards"))
	}
	for i := range cards {
		if err := s.validate.Struct(cards[i]); err != nil {
			return nil, s.malformed(KindFlashcards, err)
		}
		cards[i].ID = strconv.Itoa(i + 1)
	}

	return s.done(KindFlashcards, &Content{
		ID:   idPrefixes[KindFlashcards] + s.newID(),
		Type: TypeFlipcard,
		Data: FlashcardSet{Title: "Generated Flashcards", Cards: cards},
	}), nil
}

func (s *Service) quiz(ctx context.Context, text string) (*Content, error) {
	var questions []QuizQuestion
	if err := s.generateJSON(ctx, KindQuiz, quizPrompt, text, &questions); err != nil {
		return nil, err
	}
	if len(questions) == 0 {
		return nil, s.malformed(KindQuiz, errors.New("no questions"))
	}
	for i := range questions {
		if err := s.validate.Struct(questions[i]); err != nil {
			return nil, s.malformed(KindQuiz, err)
		}
		questions[i].ID = "q" + strconv.Itoa(i+1)
	}

	return s.done(KindQuiz, &Content{
		ID:   idPrefixes[KindQuiz] + s.newID(),
		Type: TypeQuiz,
		Data: Quiz{
			Title:       "Generated Quiz",
			Description: "Quiz to test your understanding!",
			Questions:   questions,
		},
	}), nil
}

func (s *Service) mindmap(ctx context.Context, text string) (*Content, error) {
	var env envelope
	if err := s.generateJSON(ctx, KindMindmap, mindmapPrompt, text, &env); err != nil {
		return nil, err
	}
	var m Mindmap
	if err := env.decode(&m); err != nil {
		return nil, s.malformed(KindMindmap, err)
	}
	if err := s.validate.Struct(m.Root); err != nil {
		return nil, s.malformed(KindMindmap, err)
	}
	normalizeNode(&m.Root)
	if m.Title == "" {
		m.Title = m.Root.Title
	}

	return s.done(KindMindmap, &Content{
		ID:   idPrefixes[KindMindmap] + s.newID(),
		Type: TypeMindmap,
		Data: m,
	}), nil
}

func (s *Service) miniGame(ctx context.Context, text string) (*Content, error) {
	var env envelope
	if err := s.generateJSON(ctx, KindMiniGame, miniGamePrompt, text, &env); err != nil {
		return nil, err
	}
	var g MiniGame
	if err := env.decode(&g); err != nil {
		return nil, s.malformed(KindMiniGame, err)
	}
	if len(g.Challenges) == 0 {
		return nil, s.malformed(KindMiniGame, errors.New("no challenges"))
	}
	for i := range g.Challenges {
		if err := s.validate.Struct(g.Challenges[i]); err != nil {
			return nil, s.malformed(KindMiniGame, err)
		}
		g.Challenges[i].UIType = UITypeDragDrop
	}

	return s.done(KindMiniGame, &Content{
		ID:   idPrefixes[KindMiniGame] + s.newID(),
		Type: TypeMiniGame,
		Data: g,
	}), nil
}

func (s *Service) generate(ctx context.Context, kind string, parts []Part) (string, error) {
	reply, err := s.completer.Complete(ctx, parts)
	if err != nil {
		outcome := "upstream_error"
		if errors.Is(err, ErrMalformedOutput) {
			outcome = "malformed"
		}
		metrics.RecordStudioRequest(kind, outcome)
		s.logger.Error().Err(err).Str("kind", kind).Msg("Model call failed")
		if errors.Is(err, ErrUpstream) || errors.Is(err, ErrMalformedOutput) || errors.Is(err, context.Canceled) {
			return "", err
		}
		return "", fmt.Errorf("%w: %w", ErrUpstream, err)
	}
	return reply, nil
}

func (s *Service) generateJSON(ctx context.Context, kind, template, text string, out interface{}) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return ErrEmptyInput
	}
	reply, err := s.generate(ctx, kind, []Part{TextPart(textPrompt(template, text))})
	if err != nil {
		return err
	}
	if err := json.Unmarshal([]byte(StripCodeFence(reply)), out); err != nil {
		return s.malformed(kind, err)
	}
	return nil
}

func (s *Service) malformed(kind string, cause error) error {
	metrics.RecordStudioRequest(kind, "malformed")
	s.logger.Warn().Err(cause).Str("kind", kind).Msg("Discarding malformed model output")
	return fmt.Errorf("%w: %s: %v", ErrMalformedOutput, kind, cause)
}

func (s *Service) done(kind string, c *Content) *Content {
	metrics.RecordStudioRequest(kind, "ok")
	return c
}

// envelope accepts either {"data": {...}} as requested from the model or
// the inner object on its own.
type envelope struct {
	Data json.RawMessage `json:"data"`
	raw  []byte
}

func (e *envelope) UnmarshalJSON(b []byte) error {
	type plain envelope
	var p plain
	if err := json.Unmarshal(b, &p); err != nil {
		return err
	}
	*e = envelope(p)
	e.raw = append([]byte(nil), b...)
	return nil
}

func (e *envelope) decode(out interface{}) error {
	src := e.raw
	if len(e.Data) > 0 && string(e.Data) != "null" {
		src = e.Data
	}
	return json.Unmarshal(src, out)
}

func normalizeNode(n *MindmapNode) {
	if n.Children == nil {
		n.Children = []MindmapNode{}
	}
	for i := range n.Children {
		normalizeNode(&n.Children[i])
	}
}

// StripCodeFence removes a Markdown code fence around a model reply.
func StripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	if nl := strings.IndexByte(s, '\n'); nl >= 0 {
		s = s[nl+1:]
	} else {
		s = strings.TrimPrefix(s, "```")
	}
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

// documentTitle is the file name without its extension.
func documentTitle(filename string) string {
	return strings.TrimSuffix(filename, filepath.Ext(filename))
}

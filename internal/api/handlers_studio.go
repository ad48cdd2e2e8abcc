// StudyBuddy - Focus Scoring and Study Content Services
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/studybuddy

package api

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"

	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/tomtom215/studybuddy/internal/logging"
	"github.com/tomtom215/studybuddy/internal/models"
	"github.com/tomtom215/studybuddy/internal/studio"
)

// multipartMemory is how much of an upload is held in memory before
// spilling to a temporary file.
const multipartMemory = 8 << 20

// jsonOverhead is added to the text limit to allow for the JSON wrapping
// and escaping around it.
const jsonOverhead = 64 << 10

// UploadDocument summarizes an uploaded document (multipart field "file").
func (h *Handler) UploadDocument(w http.ResponseWriter, r *http.Request) {
	if h.studio == nil {
		respondError(w, http.StatusServiceUnavailable, codeUnavailable, "Study content services are not configured", ErrStudioUnavailable)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		if isBodyTooLarge(err) {
			respondError(w, http.StatusRequestEntityTooLarge, codeTooLarge,
				fmt.Sprintf("Upload exceeds %d bytes", h.maxUploadBytes), nil)
			return
		}
		respondError(w, http.StatusBadRequest, codeValidation, "Expected a multipart form with a file", nil)
		return
	}
	defer func() {
		if r.MultipartForm != nil {
			_ = r.MultipartForm.RemoveAll()
		}
	}()

	file, header, err := r.FormFile("file")
	if err != nil {
		respondError(w, http.StatusBadRequest, codeValidation, "No file part", nil)
		return
	}
	defer file.Close()

	if header.Filename == "" {
		respondError(w, http.StatusBadRequest, codeValidation, "No selected file", nil)
		return
	}

	data, err := io.ReadAll(file)
	if err != nil {
		respondError(w, http.StatusInternalServerError, codeInternal, "Could not read upload", err)
		return
	}
	if len(data) == 0 {
		respondError(w, http.StatusBadRequest, codeValidation, "Uploaded file is empty", nil)
		return
	}

	logging.Ctx(r.Context()).Info().
		Str("filename", sanitizeLogValue(header.Filename)).
		Int("bytes", len(data)).
		Msg("Summarizing uploaded document")

	content, err := h.studio.Summarize(r.Context(), header.Filename, uploadMIME(header.Header.Get("Content-Type")), data)
	if err != nil {
		respondStudioError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, content)
}

// isBodyTooLarge reports whether err came from an http.MaxBytesReader.
// Some multipart paths return the error text without wrapping it.
func isBodyTooLarge(err error) bool {
	var maxErr *http.MaxBytesError
	return errors.As(err, &maxErr) || strings.Contains(err.Error(), "request body too large")
}

// uploadMIME returns the declared media type, or "" when the client sent
// none or a generic one.
func uploadMIME(contentType string) string {
	if contentType == "" {
		return ""
	}
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil || mediaType == "application/octet-stream" {
		return ""
	}
	return mediaType
}

// generator is one of the text based content operations.
type generator func(ctx context.Context, text string) (*studio.Content, error)

// GenerateFlashcards handles POST /generate-flashcards.
func (h *Handler) GenerateFlashcards(w http.ResponseWriter, r *http.Request) {
	h.generate(w, r, func(s StudyService) generator { return s.Flashcards })
}

// GenerateQuiz handles POST /generate-quiz.
func (h *Handler) GenerateQuiz(w http.ResponseWriter, r *http.Request) {
	h.generate(w, r, func(s StudyService) generator { return s.Quiz })
}

// GenerateMindmap handles POST /generate-mindmap.
func (h *Handler) GenerateMindmap(w http.ResponseWriter, r *http.Request) {
	h.generate(w, r, func(s StudyService) generator { return s.Mindmap })
}

// GenerateMiniGame handles POST /generate-mini-game.
func (h *Handler) GenerateMiniGame(w http.ResponseWriter, r *http.Request) {
	h.generate(w, r, func(s StudyService) generator { return s.MiniGame })
}

func (h *Handler) generate(w http.ResponseWriter, r *http.Request, pick func(StudyService) generator) {
	if h.studio == nil {
		respondError(w, http.StatusServiceUnavailable, codeUnavailable, "Study content services are not configured", ErrStudioUnavailable)
		return
	}

	var req models.StudyTextRequest
	if !decodeJSONBody(w, r, int64(h.maxTextBytes)+jsonOverhead, &req) {
		return
	}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondError(w, http.StatusBadRequest, apiErr.Code, "No text provided", nil)
		return
	}
	if len(req.Text) > h.maxTextBytes {
		respondError(w, http.StatusRequestEntityTooLarge, codeTooLarge,
			fmt.Sprintf("Text exceeds %d bytes", h.maxTextBytes), nil)
		return
	}

	content, err := pick(h.studio)(r.Context(), req.Text)
	if err != nil {
		respondStudioError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, content)
}

// respondStudioError maps content generation errors to HTTP responses. The
// model's own error text is logged but never returned to the client.
func respondStudioError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, studio.ErrEmptyInput):
		respondError(w, http.StatusBadRequest, codeValidation, "No text provided", nil)
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		respondError(w, http.StatusServiceUnavailable, codeUnavailable, "The language model is temporarily unavailable", err)
	case errors.Is(err, studio.ErrMalformedOutput):
		respondError(w, http.StatusBadGateway, codeUpstream, "The language model returned an unexpected response", err)
	case errors.Is(err, context.DeadlineExceeded):
		respondError(w, http.StatusGatewayTimeout, codeUpstream, "The language model did not answer in time", err)
	case errors.Is(err, studio.ErrUpstream):
		respondError(w, http.StatusBadGateway, codeUpstream, "The language model request failed", err)
	default:
		respondError(w, http.StatusInternalServerError, codeInternal, "Content generation failed", err)
	}
}

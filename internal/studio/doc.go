// StudyBuddy - Focus Scoring and Study Content Services
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/studybuddy

// Package studio turns study material into content cards with a hosted
// language model: a Markdown summary of an uploaded document, and
// flashcards, a quiz, a mind map or a drag-and-drop mini game generated from
// text.
//
// The model is reached through the Completer interface; Gemini is the only
// implementation. Model output is untrusted: code fences are stripped, the
// JSON is decoded into fixed shapes and validated, and anything that does not
// fit is reported as ErrMalformedOutput.
package studio

// StudyBuddy - Focus Scoring and Study Content Services
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/studybuddy

package studio

import "fmt"

const summaryPrompt = `You are a study assistant.

Summarize the attached document as Markdown for a college-level reader.
Use ## headings, bullet points and bold for the key ideas.
Output only the Markdown text.`

const flashcardsPrompt = `Source material:

"""
%s
"""

Write 5 to 7 flashcards about this material. Each card has a "front" (a
question or term) and a "back" (the answer).

Reply with a bare JSON array and nothing else:
[{"front": "...", "back": "..."}]`

const quizPrompt = `Source material:

"""
%s
"""

Write 5 to 7 multiple choice questions about this material. Each question
has "question", exactly four "options", "correctOptionIndex" (0 to 3) and a
short "explanation".

Reply with a bare JSON array and nothing else:
[{"question": "...", "options": ["...", "...", "...", "..."], "correctOptionIndex": 0, "explanation": "..."}]`

const mindmapPrompt = `Source material:

"""
%s
"""

Build a mind map of this material. The root node is the main topic; each
node has a "title" and a "children" array of subtopics, nested as deep as
useful.

Reply with JSON only, in this shape:
{"type": "mindmap", "data": {"title": "...", "root": {"title": "...", "children": [{"title": "...", "children": []}]}}}`

const miniGamePrompt = `Source material:

"""
%s
"""

Design a drag-and-drop matching game from this material: 4 or 5 challenges,
each pairing a "task" (a key term) with its "solution" (the matching
definition), and "uiType" set to "drag-drop".

Reply with plain JSON, no Markdown fences, in this shape:
{"type": "mini-game", "data": {"title": "...", "challenges": [{"task": "...", "solution": "...", "uiType": "drag-drop"}]}}`

func textPrompt(template, text string) string {
	return fmt.Sprintf(template, text)
}

// StudyBuddy - Focus Scoring and Study Content Services
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/studybuddy

package studio

// Content types understood by the study dashboard.
const (
	TypeText       = "text"
	TypeFlipcard   = "flipcard"
	TypeQuiz       = "quiz"
	TypeMindmap    = "mindmap"
	TypeMiniGame   = "mini-game"
	UITypeDragDrop = "drag-drop"
)

// Content is one card on the dashboard.
type Content struct {
	ID   string      `json:"id"`
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

// TextData is a summarized document.
type TextData struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

// FlashcardSet is a deck of flip cards.
type FlashcardSet struct {
	Title string      `json:"title"`
	Cards []Flashcard `json:"cards"`
}

// Flashcard is one card. ID is its 1-based position.
type Flashcard struct {
	ID    string `json:"id"`
	Front string `json:"front" validate:"required"`
	Back  string `json:"back" validate:"required"`
}

// Quiz is a multiple choice quiz.
type Quiz struct {
	Title       string         `json:"title"`
	Description string         `json:"description"`
	Questions   []QuizQuestion `json:"questions"`
}

// QuizQuestion has exactly four options.
type QuizQuestion struct {
	ID                 string   `json:"id"`
	Question           string   `json:"question" validate:"required"`
	Options            []string `json:"options" validate:"len=4,dive,required"`
	CorrectOptionIndex int      `json:"correctOptionIndex" validate:"min=0,max=3"`
	Explanation        string   `json:"explanation"`
}

// Mindmap is a titled topic tree.
type Mindmap struct {
	Title string      `json:"title"`
	Root  MindmapNode `json:"root"`
}

// MindmapNode is one topic. Children may nest to any depth.
type MindmapNode struct {
	Title    string        `json:"title" validate:"required"`
	Children []MindmapNode `json:"children" validate:"dive"`
}

// MiniGame is a set of term/definition pairs to match.
type MiniGame struct {
	Title      string      `json:"title"`
	Challenges []Challenge `json:"challenges"`
}

// Challenge pairs a task with its solution.
type Challenge struct {
	Task     string `json:"task" validate:"required"`
	Solution string `json:"solution" validate:"required"`
	UIType   string `json:"uiType"`
}

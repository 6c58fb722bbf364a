package domain

import (
	"fmt"
	"strings"
	"time"
)

// TaskType identifies which study artifact an analysis run produces.
type TaskType string

const (
	TaskSummary     TaskType = "summary"
	TaskExplanation TaskType = "explanation"
	TaskQuiz        TaskType = "quiz"
	TaskKeywords    TaskType = "keywords"
	TaskFlashcards  TaskType = "flashcards"
)

// AllTaskTypes lists the supported task types in a stable order.
var AllTaskTypes = []TaskType{TaskSummary, TaskExplanation, TaskQuiz, TaskKeywords, TaskFlashcards}

// ParseTaskType normalizes a user supplied task type.
func ParseTaskType(raw string) (TaskType, error) {
	t := TaskType(strings.ToLower(strings.TrimSpace(raw)))
	for _, known := range AllTaskTypes {
		if t == known {
			return t, nil
		}
	}
	return "", NewInvalidFormatError("type", raw)
}

// IsStructured reports whether results of this task type are parsed into records.
func (t TaskType) IsStructured() bool {
	return t == TaskQuiz || t == TaskFlashcards
}

func (t TaskType) String() string {
	return string(t)
}

// Segment is a bounded slice of the input text. Separator holds the whitespace that
// followed the segment in the source, so joining Text+Separator restores the content.
type Segment struct {
	// Leading is the whitespace before the first word; set on the first segment only.
	Leading   string
	Text      string
	Separator string
	Index     int // 1-based
	Total     int
}

// SegmentPlan is the result of segmenting one document.
type SegmentPlan struct {
	Segments       []Segment
	SizeLimit      int
	Ceiling        int
	EstimatedPages int
	Produced       int // segments produced before the ceiling was applied
	Truncated      bool
}

// Warning returns the caller-facing truncation warning, or "" when nothing was dropped.
func (p *SegmentPlan) Warning() string {
	if !p.Truncated {
		return ""
	}
	return fmt.Sprintf("document too large: only the first %d of %d sections were analyzed", len(p.Segments), p.Produced)
}

// AnalysisArtifact is the single output of one orchestration run.
type AnalysisArtifact struct {
	ID        string    `json:"id"`
	TaskType  TaskType  `json:"type"`
	Result    string    `json:"result"`
	WordCount int       `json:"word_count"`
	CharCount int       `json:"char_count"`
	Segments  int       `json:"segments"`
	CreatedAt time.Time `json:"created_at"`
	Warnings  []string  `json:"warnings,omitempty"`
}

// QuizQuestion is a multiple-choice question parsed from generated text.
type QuizQuestion struct {
	Question           string   `json:"question"`
	Options            []string `json:"options"`
	CorrectOptionIndex int      `json:"correct_option_index"`
	Explanation        string   `json:"explanation,omitempty"`
	// AnswerDetermined is false when no correct-answer marker was found and the
	// index fell back to the first option.
	AnswerDetermined bool `json:"answer_determined"`
}

// Valid checks the structural invariants of a question.
func (q QuizQuestion) Valid() bool {
	return len(q.Options) == 4 && q.CorrectOptionIndex >= 0 && q.CorrectOptionIndex < 4
}

// FlashCard is a front/back study card.
type FlashCard struct {
	Front string `json:"front"`
	Back  string `json:"back"`
}

// Valid reports whether both sides carry text.
func (c FlashCard) Valid() bool {
	return strings.TrimSpace(c.Front) != "" && strings.TrimSpace(c.Back) != ""
}

// RejectReason names why a parser dropped a block.
type RejectReason string

const (
	RejectNoOptions          RejectReason = "no_option_lines"
	RejectEmptyQuestion      RejectReason = "empty_question"
	RejectOptionOrder        RejectReason = "option_letter_out_of_order"
	RejectTooFewOptions      RejectReason = "fewer_than_four_options"
	RejectTooShort           RejectReason = "block_too_short"
	RejectInvalidQuestion    RejectReason = "invalid_question"
	RejectEmptyFront         RejectReason = "empty_front"
	RejectEmptyBack          RejectReason = "empty_back"
	RejectNoCardContent      RejectReason = "no_card_content"
	RejectAnswerUndetermined RejectReason = "answer_undetermined"
)

// Rejection records a block that did not become a record, or a record that
// needed a best-effort default.
type Rejection struct {
	BlockIndex int          `json:"block_index"`
	Pass       string       `json:"pass"`
	Reason     RejectReason `json:"reason"`
	Detail     string       `json:"detail,omitempty"`
}

// QuizParseResult is the outcome of parsing a quiz artifact.
type QuizParseResult struct {
	Questions    []QuizQuestion `json:"questions"`
	Diagnostics  []Rejection    `json:"diagnostics"`
	UsedFallback bool           `json:"used_fallback"`
}

// FlashCardParseResult is the outcome of parsing a flashcard artifact.
type FlashCardParseResult struct {
	Cards        []FlashCard `json:"flashcards"`
	Diagnostics  []Rejection `json:"diagnostics"`
	UsedFallback bool        `json:"used_fallback"`
}

// Package prompt builds the instruction strings sent to the text generation service.
package prompt

import (
	"fmt"
	"strings"

	"edugenie/internal/domain"
)

// AggregationSeparator joins partial results when they are concatenated locally.
const AggregationSeparator = "\n\n---\n\n"

const quizFormat = `Use EXACTLY this format for every question and nothing else:

Question 1: <question text>
a) <option>
b) <option>
c) <option>
d) <option>
**Correct Answer: <a, b, c or d>**
Explanation: <one sentence explaining why the answer is correct>

Rules:
- Number the questions "Question 1:", "Question 2:" and so on.
- Every question has exactly four options labelled a), b), c), d) in that order.
- Exactly one option is correct.
- Do not add a title, introduction, headers, summary or conclusion.`

const flashcardFormat = `Use EXACTLY this format for every card and nothing else:

Card 1:
Front: <term, concept or question>
Back: <definition, explanation or answer>

Rules:
- Number the cards "Card 1:", "Card 2:" and so on.
- Front is short; Back is one to three sentences.
- Do not add a title, introduction, headers, summary or conclusion.`

var taskInstructions = map[domain.TaskType]string{
	domain.TaskSummary: `Summarize the following text for a student. Cover the main ideas, key arguments and
important details in clear paragraphs. Do not invent information that is not in the text.`,

	domain.TaskExplanation: `Explain the following text to a student who is new to the topic. Break down difficult
concepts, define technical terms and use simple examples where they help.`,

	domain.TaskQuiz: "Create 5 multiple-choice questions that test understanding of the following text.\n\n" + quizFormat,

	domain.TaskKeywords: `Extract the most important keywords and key phrases from the following text.
Return one keyword per line as "- <keyword>: <short definition>". Do not add headers or commentary.`,

	domain.TaskFlashcards: "Create 8 flashcards that help a student memorize the following text.\n\n" + flashcardFormat,
}

var aggregationInstructions = map[domain.TaskType]string{
	domain.TaskSummary: `The following are summaries of consecutive parts of one document. Merge them into a
single coherent summary of the whole document. Remove repetition and keep the original order of ideas.`,

	domain.TaskQuiz: "The following are quiz questions generated from consecutive parts of one document. " +
		"Merge them into one quiz of up to 10 questions: drop duplicates and near-duplicates, keep the " +
		"questions that cover the most important ideas, and renumber them from 1.\n\n" + quizFormat,

	domain.TaskKeywords: `The following are keyword lists extracted from consecutive parts of one document. Merge
them into a single list: remove duplicates, reconcile definitions of the same keyword and keep the
most important 30 entries. Return one keyword per line as "- <keyword>: <short definition>".`,

	domain.TaskFlashcards: "The following are flashcards generated from consecutive parts of one document. " +
		"Merge them into one deck of up to 15 cards: drop duplicates, reconcile overlapping cards and " +
		"renumber them from 1.\n\n" + flashcardFormat,
}

// Build returns the prompt for one segment. Segments of a multi-part document
// carry a "[Part i of N] " prefix.
func Build(task domain.TaskType, seg domain.Segment) string {
	instruction, ok := taskInstructions[task]
	if !ok {
		instruction = taskInstructions[domain.TaskSummary]
	}

	var b strings.Builder
	if seg.Total > 1 {
		fmt.Fprintf(&b, "[Part %d of %d] ", seg.Index, seg.Total)
		b.WriteString("This is one part of a longer document; work only with this part.\n\n")
	}
	b.WriteString(instruction)
	b.WriteString("\n\nText:\n")
	b.WriteString(seg.Text)
	return b.String()
}

// MergesRemotely reports whether partial results of this task type are merged by
// the oracle. Other task types are concatenated locally.
func MergesRemotely(task domain.TaskType) bool {
	_, ok := aggregationInstructions[task]
	return ok
}

// BuildAggregation returns the merge prompt for the given partial results and
// false when the task type has no merge semantics.
func BuildAggregation(task domain.TaskType, partials []string) (string, bool) {
	instruction, ok := aggregationInstructions[task]
	if !ok {
		return "", false
	}

	var b strings.Builder
	b.WriteString(instruction)
	for i, partial := range partials {
		fmt.Fprintf(&b, "\n\n=== Part %d of %d ===\n", i+1, len(partials))
		b.WriteString(strings.TrimSpace(partial))
	}
	return b.String(), true
}

// Concatenate joins partial results with AggregationSeparator.
func Concatenate(partials []string) string {
	trimmed := make([]string, len(partials))
	for i, p := range partials {
		trimmed[i] = strings.TrimSpace(p)
	}
	return strings.Join(trimmed, AggregationSeparator)
}

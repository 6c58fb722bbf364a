package prompt

import (
	"strings"
	"testing"

	"edugenie/internal/domain"

	"github.com/stretchr/testify/assert"
)

func TestBuild_SinglePartHasNoPrefix(t *testing.T) {
	p := Build(domain.TaskSummary, domain.Segment{Text: "Photosynthesis converts light.", Index: 1, Total: 1})

	assert.False(t, strings.HasPrefix(p, "[Part"))
	assert.True(t, strings.HasSuffix(p, "Photosynthesis converts light."))
}

func TestBuild_MultiPartPrefix(t *testing.T) {
	p := Build(domain.TaskKeywords, domain.Segment{Text: "cells", Index: 2, Total: 5})

	assert.True(t, strings.HasPrefix(p, "[Part 2 of 5] "))
	assert.Contains(t, p, "keywords")
}

func TestBuild_StructuredTasksEmbedGrammar(t *testing.T) {
	seg := domain.Segment{Text: "text", Index: 1, Total: 1}

	quiz := Build(domain.TaskQuiz, seg)
	assert.Contains(t, quiz, "Question 1:")
	assert.Contains(t, quiz, "a) <option>")
	assert.Contains(t, quiz, "d) <option>")
	assert.Contains(t, quiz, "**Correct Answer:")
	assert.Contains(t, quiz, "Explanation:")
	assert.Contains(t, quiz, "Do not add a title")

	cards := Build(domain.TaskFlashcards, seg)
	assert.Contains(t, cards, "Card 1:")
	assert.Contains(t, cards, "Front:")
	assert.Contains(t, cards, "Back:")
}

func TestBuildAggregation(t *testing.T) {
	p, ok := BuildAggregation(domain.TaskSummary, []string{" first ", "second"})

	assert.True(t, ok)
	assert.Contains(t, p, "=== Part 1 of 2 ===\nfirst")
	assert.Contains(t, p, "=== Part 2 of 2 ===\nsecond")
	assert.Less(t, strings.Index(p, "first"), strings.Index(p, "second"))
}

func TestBuildAggregation_ExplanationIsLocal(t *testing.T) {
	p, ok := BuildAggregation(domain.TaskExplanation, []string{"a", "b"})

	assert.False(t, ok)
	assert.Empty(t, p)
	assert.False(t, MergesRemotely(domain.TaskExplanation))
	assert.True(t, MergesRemotely(domain.TaskQuiz))
}

func TestConcatenate(t *testing.T) {
	assert.Equal(t, "a\n\n---\n\nb\n\n---\n\nc", Concatenate([]string{"a\n", " b", "c"}))
}

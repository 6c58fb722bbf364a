package parser

import (
	"testing"

	"edugenie/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFlashCardParser_StrictRoundTrip(t *testing.T) {
	text := "Card 1:\nFront: What is X?\nBack: X is Y.\n\nCard 2:\nFront: Q2\nBack: A2"

	result := NewFlashCardParser().Parse(text)

	assert.False(t, result.UsedFallback)
	assert.Empty(t, result.Diagnostics)
	assert.Equal(t, []domain.FlashCard{
		{Front: "What is X?", Back: "X is Y."},
		{Front: "Q2", Back: "A2"},
	}, result.Cards)
}

func TestFlashCardParser_StrictMultilineBackAndBold(t *testing.T) {
	text := "**Card 1:**\n**Front:** Osmosis\n**Back:** Movement of water\nacross a membrane.\n\n" +
		"Card 2:\nFront: Diffusion\nBack:\n\nCard 3:\nFront: Feedback loop\nBack: A cycle."

	result := NewFlashCardParser().Parse(text)

	require.Len(t, result.Cards, 2)
	assert.Equal(t, domain.FlashCard{Front: "Osmosis", Back: "Movement of water\nacross a membrane."}, result.Cards[0])
	assert.Equal(t, domain.FlashCard{Front: "Feedback loop", Back: "A cycle."}, result.Cards[1])

	require.Len(t, result.Diagnostics, 1)
	assert.Equal(t, 2, result.Diagnostics[0].BlockIndex)
	assert.Equal(t, domain.RejectEmptyBack, result.Diagnostics[0].Reason)
}

func TestFlashCardParser_FallbackLabelSynonyms(t *testing.T) {
	text := "1. Term: Photosynthesis\nDefinition: Converting light into chemical energy.\n\n" +
		"2. Question: What is ATP?\nAnswer: The energy currency of the cell."

	result := NewFlashCardParser().Parse(text)

	assert.True(t, result.UsedFallback)
	assert.Equal(t, []domain.FlashCard{
		{Front: "Photosynthesis", Back: "Converting light into chemical energy."},
		{Front: "What is ATP?", Back: "The energy currency of the cell."},
	}, result.Cards)
}

func TestFlashCardParser_FallbackBoldHeadingsWithoutLabels(t *testing.T) {
	text := "**Card 1**\nMitosis\nCell division producing two identical cells.\n\n" +
		"**Card 2**\nMeiosis\nCell division producing gametes.\nHalves the chromosome count."

	result := NewFlashCardParser().Parse(text)

	assert.True(t, result.UsedFallback)
	require.Len(t, result.Cards, 2)
	assert.Equal(t, domain.FlashCard{Front: "Mitosis", Back: "Cell division producing two identical cells."}, result.Cards[0])
	assert.Equal(t, "Meiosis", result.Cards[1].Front)
	assert.Equal(t, "Cell division producing gametes.\nHalves the chromosome count.", result.Cards[1].Back)
}

func TestFlashCardParser_FallbackNumberedListIgnoresDecimals(t *testing.T) {
	text := "1. Speed of sound\nAbout 343 m/s in air.\n2. Pi\n3.14159 approximately."

	result := NewFlashCardParser().Parse(text)

	assert.True(t, result.UsedFallback)
	require.Len(t, result.Cards, 2)
	assert.Equal(t, domain.FlashCard{Front: "Speed of sound", Back: "About 343 m/s in air."}, result.Cards[0])
	assert.Equal(t, domain.FlashCard{Front: "Pi", Back: "3.14159 approximately."}, result.Cards[1])
}

func TestFlashCardParser_FallbackParagraphs(t *testing.T) {
	text := "Entropy\nA measure of disorder.\n\nLonely line\n\nEnthalpy\nHeat content of a system."

	result := NewFlashCardParser().Parse(text)

	require.Len(t, result.Cards, 2)
	assert.Equal(t, "Entropy", result.Cards[0].Front)
	assert.Equal(t, "Enthalpy", result.Cards[1].Front)

	require.Len(t, result.Diagnostics, 1)
	assert.Equal(t, domain.Rejection{BlockIndex: 2, Pass: PassLegacy, Reason: domain.RejectEmptyBack}, result.Diagnostics[0])
}

func TestFlashCardParser_StrictFailureRecordsDiagnostics(t *testing.T) {
	text := "Card 1: Mitochondria\nPowerhouse of the cell."

	result := NewFlashCardParser().Parse(text)

	assert.True(t, result.UsedFallback)
	require.Len(t, result.Cards, 1)
	assert.Equal(t, domain.FlashCard{Front: "Mitochondria", Back: "Powerhouse of the cell."}, result.Cards[0])
	require.NotEmpty(t, result.Diagnostics)
	assert.Equal(t, PassStrict, result.Diagnostics[0].Pass)
	assert.Equal(t, domain.RejectNoCardContent, result.Diagnostics[0].Reason)
}

func TestFlashCardParser_Empty(t *testing.T) {
	result := NewFlashCardParser().Parse("   ")

	assert.Empty(t, result.Cards)
	assert.NotNil(t, result.Cards)
	for _, c := range result.Cards {
		assert.True(t, c.Valid())
	}
}

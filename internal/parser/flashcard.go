package parser

import (
	"regexp"
	"strings"

	"edugenie/internal/domain"
	"edugenie/internal/logger"

	"go.uber.org/zap"
)

var (
	cardMarker = regexp.MustCompile(`(?i)card\s*(\d+)\s*:`)
	frontBack  = regexp.MustCompile(`(?is)front\s*\**\s*:(.*?)\bback\s*\**\s*:(.*)`)

	// "1." / "2)" list items, "Card 3" headings and "**Card 4**" headings. A list
	// number must be followed by a blank or end the line so "3.14" stays text.
	looseCardMarker = regexp.MustCompile(
		`(?im)^[ \t]*(?:\*\*[ \t]*card[ \t]*(\d+)[ \t]*:?[ \t]*\*\*:?|card[ \t]*(\d+)[ \t]*[:.)-]?|(\d+)[.)](?:[ \t]|$))[ \t]*`)

	sideLabel = regexp.MustCompile(`(?i)^[*_]*\s*(front|question|term|back|answer|definition)\s*[*_]*\s*:\s*(.*)$`)
)

// FlashCardParser extracts front/back study cards.
type FlashCardParser struct{}

func NewFlashCardParser() *FlashCardParser {
	return &FlashCardParser{}
}

// Parse never fails: a response with no usable card yields an empty result.
func (p *FlashCardParser) Parse(text string) *domain.FlashCardParseResult {
	result := &domain.FlashCardParseResult{Cards: []domain.FlashCard{}, Diagnostics: []domain.Rejection{}}

	for _, b := range splitOnMarker(text, cardMarker) {
		m := frontBack.FindStringSubmatch(b.text)
		if m == nil {
			result.Diagnostics = append(result.Diagnostics, reject(PassStrict, b, domain.RejectNoCardContent, "missing Front:/Back: labels"))
			continue
		}
		p.add(result, PassStrict, b, domain.FlashCard{Front: cleanSide(m[1]), Back: cleanSide(m[2])})
	}
	if len(result.Cards) > 0 {
		return result
	}

	result.UsedFallback = true
	blocks := splitOnMarker(text, looseCardMarker)
	if len(blocks) == 0 {
		blocks = splitParagraphs(text)
	}
	for _, b := range blocks {
		card, ok := extractLooseCard(b.text)
		if !ok {
			result.Diagnostics = append(result.Diagnostics, reject(PassLegacy, b, domain.RejectNoCardContent, ""))
			continue
		}
		p.add(result, PassLegacy, b, card)
	}

	logger.Get().Debug("Flashcard parser fell back to legacy pass",
		zap.Int("cards", len(result.Cards)),
		zap.Int("diagnostics", len(result.Diagnostics)))
	return result
}

func (p *FlashCardParser) add(result *domain.FlashCardParseResult, pass string, b block, card domain.FlashCard) {
	switch {
	case strings.TrimSpace(card.Front) == "":
		result.Diagnostics = append(result.Diagnostics, reject(pass, b, domain.RejectEmptyFront, ""))
	case strings.TrimSpace(card.Back) == "":
		result.Diagnostics = append(result.Diagnostics, reject(pass, b, domain.RejectEmptyBack, ""))
	default:
		result.Cards = append(result.Cards, card)
	}
}

// extractLooseCard prefers labelled sides and otherwise reads the first line as
// the front and the remaining lines as the back.
func extractLooseCard(text string) (domain.FlashCard, bool) {
	lines := nonEmptyLines(text)
	if len(lines) == 0 {
		return domain.FlashCard{}, false
	}

	var lead, front, back []string
	var side *[]string
	labelled := false
	for _, line := range lines {
		if m := sideLabel.FindStringSubmatch(line); m != nil {
			labelled = true
			switch strings.ToLower(m[1]) {
			case "front", "question", "term":
				side = &front
			default:
				side = &back
			}
			if v := trimDecoration(m[2]); v != "" {
				*side = append(*side, v)
			}
			continue
		}
		if side == nil {
			lead = append(lead, line)
			continue
		}
		*side = append(*side, line)
	}

	if !labelled {
		return domain.FlashCard{
			Front: trimDecoration(lines[0]),
			Back:  trimDecoration(strings.Join(lines[1:], "\n")),
		}, true
	}
	if len(front) == 0 {
		front = lead
	}
	return domain.FlashCard{
		Front: trimDecoration(strings.Join(front, "\n")),
		Back:  trimDecoration(strings.Join(back, "\n")),
	}, true
}

func cleanSide(s string) string {
	lines := nonEmptyLines(s)
	return trimDecoration(strings.Join(lines, "\n"))
}

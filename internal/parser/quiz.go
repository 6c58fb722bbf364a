// Package parser turns generated quiz and flashcard text into structured records.
//
// Each parser runs a strict pass keyed to the output grammar requested in the
// prompts and, only when that pass yields nothing, a legacy pass built on looser
// heuristics. Every dropped block is reported as a domain.Rejection.
package parser

import (
	"fmt"
	"regexp"
	"strings"

	"edugenie/internal/domain"
	"edugenie/internal/logger"

	"go.uber.org/zap"
)

const (
	PassStrict = "strict"
	PassLegacy = "legacy"

	// DefaultMinLegacyBlockLen is the shortest legacy block considered a question.
	DefaultMinLegacyBlockLen = 20

	optionCount = 4
)

var (
	questionMarker = regexp.MustCompile(`(?i)question\s*(\d+)\s*:`)
	numericMarker  = regexp.MustCompile(`(?m)^[ \t]*(\d+)[.)][ \t]+`)
	blankLine      = regexp.MustCompile(`\n[ \t]*\n`)
	optionLine     = regexp.MustCompile(`^\(?([a-dA-D])[).]\s*(.*)$`)
	explanationRe  = regexp.MustCompile(`(?im)^[ \t*]*explanation[ \t*]*:[ \t*]*(.+)$`)

	// Checked in order; the first hit wins.
	answerSentinels = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\*\*\s*correct\s+answer\s*:\s*(?:\*\*)?\s*\(?([a-d])\b`),
		regexp.MustCompile(`(?i)answer\s*:\s+(?:\*\*)?\(?([a-d])\b`),
		regexp.MustCompile(`(?i)the\s+answer\s+is\s+\(?([a-d])\b`),
		regexp.MustCompile(`(?i)answer:\(?([a-d])\b`),
	}
)

// block is one candidate region of the response text.
type block struct {
	index  int // 1-based within its pass
	marker string
	text   string
}

// QuizParser extracts multiple-choice questions.
type QuizParser struct {
	minLegacyBlockLen int
}

// NewQuizParser creates a parser. minLegacyBlockLen <= 0 selects the default.
func NewQuizParser(minLegacyBlockLen int) *QuizParser {
	if minLegacyBlockLen <= 0 {
		minLegacyBlockLen = DefaultMinLegacyBlockLen
	}
	return &QuizParser{minLegacyBlockLen: minLegacyBlockLen}
}

// Parse never fails: a response with no usable question yields an empty result.
func (p *QuizParser) Parse(text string) *domain.QuizParseResult {
	result := &domain.QuizParseResult{Questions: []domain.QuizQuestion{}, Diagnostics: []domain.Rejection{}}

	p.runPass(result, PassStrict, splitOnMarker(text, questionMarker), 0)
	if len(result.Questions) > 0 {
		return result
	}

	result.UsedFallback = true
	blocks := splitOnMarker(text, numericMarker)
	if len(blocks) == 0 {
		blocks = splitParagraphs(text)
	}
	p.runPass(result, PassLegacy, blocks, p.minLegacyBlockLen)

	logger.Get().Debug("Quiz parser fell back to legacy pass",
		zap.Int("questions", len(result.Questions)),
		zap.Int("diagnostics", len(result.Diagnostics)))
	return result
}

func (p *QuizParser) runPass(result *domain.QuizParseResult, pass string, blocks []block, minLen int) {
	for _, b := range blocks {
		if minLen > 0 && len([]rune(strings.TrimSpace(b.text))) < minLen {
			result.Diagnostics = append(result.Diagnostics, reject(pass, b, domain.RejectTooShort, ""))
			continue
		}

		q, rejection := extractQuestion(b.text)
		if rejection != nil {
			result.Diagnostics = append(result.Diagnostics, reject(pass, b, rejection.Reason, rejection.Detail))
			continue
		}
		if !q.Valid() {
			result.Diagnostics = append(result.Diagnostics, reject(pass, b, domain.RejectInvalidQuestion, ""))
			continue
		}
		if !q.AnswerDetermined {
			result.Diagnostics = append(result.Diagnostics,
				reject(pass, b, domain.RejectAnswerUndetermined, "correct option defaulted to a"))
		}
		result.Questions = append(result.Questions, q)
	}
}

// extractQuestion reads one block. The returned Rejection carries only the
// reason and detail; the caller fills in the position.
func extractQuestion(text string) (domain.QuizQuestion, *domain.Rejection) {
	lines := nonEmptyLines(text)

	first := -1
	for i, line := range lines {
		if optionLine.MatchString(line) {
			first = i
			break
		}
	}
	if first < 0 {
		return domain.QuizQuestion{}, &domain.Rejection{Reason: domain.RejectNoOptions}
	}

	question := trimDecoration(strings.Join(lines[:first], " "))
	if question == "" {
		return domain.QuizQuestion{}, &domain.Rejection{Reason: domain.RejectEmptyQuestion}
	}

	options := make([]string, 0, optionCount)
	for _, line := range lines[first:] {
		if len(options) == optionCount {
			break
		}
		m := optionLine.FindStringSubmatch(line)
		if m == nil {
			break
		}
		want := rune('a' + len(options))
		got := []rune(strings.ToLower(m[1]))[0]
		if got != want {
			return domain.QuizQuestion{}, &domain.Rejection{
				Reason: domain.RejectOptionOrder,
				Detail: fmt.Sprintf("expected %c, got %c", want, got),
			}
		}
		options = append(options, trimDecoration(m[2]))
	}
	if len(options) < optionCount {
		return domain.QuizQuestion{}, &domain.Rejection{
			Reason: domain.RejectTooFewOptions,
			Detail: fmt.Sprintf("found %d", len(options)),
		}
	}

	rest := strings.Join(lines[first+optionCount:], "\n")
	q := domain.QuizQuestion{
		Question: question,
		Options:  options,
	}
	// explanations often quote "the answer: ..." and must not set the key
	if idx, ok := findAnswer(explanationRe.ReplaceAllString(rest, "")); ok && idx < len(options) {
		q.CorrectOptionIndex = idx
		q.AnswerDetermined = true
	}
	if m := explanationRe.FindStringSubmatch(rest); m != nil {
		q.Explanation = trimDecoration(m[1])
	}
	return q, nil
}

func findAnswer(text string) (int, bool) {
	for _, re := range answerSentinels {
		if m := re.FindStringSubmatch(text); m != nil {
			return int(strings.ToLower(m[1])[0] - 'a'), true
		}
	}
	return 0, false
}

// splitOnMarker returns the text between consecutive marker matches. Text
// before the first marker is a preamble and is ignored.
func splitOnMarker(text string, marker *regexp.Regexp) []block {
	locs := marker.FindAllStringSubmatchIndex(text, -1)
	blocks := make([]block, 0, len(locs))
	for i, loc := range locs {
		end := len(text)
		if i+1 < len(locs) {
			end = locs[i+1][0]
		}
		b := block{index: i + 1, text: text[loc[1]:end]}
		// the item number sits in whichever alternative matched
		for g := 2; g+1 < len(loc); g += 2 {
			if loc[g] >= 0 {
				b.marker = text[loc[g]:loc[g+1]]
				break
			}
		}
		blocks = append(blocks, b)
	}
	return blocks
}

func splitParagraphs(text string) []block {
	var blocks []block
	for _, part := range blankLine.Split(text, -1) {
		if strings.TrimSpace(part) == "" {
			continue
		}
		blocks = append(blocks, block{index: len(blocks) + 1, text: part})
	}
	return blocks
}

func nonEmptyLines(text string) []string {
	raw := strings.Split(text, "\n")
	lines := make([]string, 0, len(raw))
	for _, line := range raw {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}

// trimDecoration strips whitespace and markdown emphasis around a field.
func trimDecoration(s string) string {
	return strings.Trim(s, " \t\r\n*_")
}

func reject(pass string, b block, reason domain.RejectReason, detail string) domain.Rejection {
	logger.Get().Debug("Parser rejected block",
		zap.String("pass", pass),
		zap.Int("block_index", b.index),
		zap.String("marker", b.marker),
		zap.String("reason", string(reason)),
		zap.String("detail", detail))
	return domain.Rejection{BlockIndex: b.index, Pass: pass, Reason: reason, Detail: detail}
}

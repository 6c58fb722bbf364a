// Package segmenter splits document text into bounded, ordered segments.
package segmenter

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"edugenie/internal/config"
	"edugenie/internal/domain"
)

// Options controls adaptive segment sizing. All lengths are in characters (runes).
type Options struct {
	CharsPerPage       int
	DefaultLimit       int
	DefaultCeiling     int
	LargeDocumentPages int
	LargeLimit         int
	LargeCeiling       int
}

// Segmenter chooses a segment size and count ceiling from the document size and
// packs whole words into segments.
type Segmenter struct {
	opts Options
}

// New creates a Segmenter. Zero-valued options fall back to the package defaults.
func New(opts Options) *Segmenter {
	d := OptionsFromConfig(config.DefaultAnalysisConfig())
	if opts.CharsPerPage <= 0 {
		opts.CharsPerPage = d.CharsPerPage
	}
	if opts.DefaultLimit <= 0 {
		opts.DefaultLimit = d.DefaultLimit
	}
	if opts.DefaultCeiling <= 0 {
		opts.DefaultCeiling = d.DefaultCeiling
	}
	if opts.LargeDocumentPages <= 0 {
		opts.LargeDocumentPages = d.LargeDocumentPages
	}
	if opts.LargeLimit <= 0 {
		opts.LargeLimit = d.LargeLimit
	}
	if opts.LargeCeiling <= 0 {
		opts.LargeCeiling = d.LargeCeiling
	}
	return &Segmenter{opts: opts}
}

// OptionsFromConfig maps the analysis config section onto segmenter options.
func OptionsFromConfig(cfg config.AnalysisConfig) Options {
	return Options{
		CharsPerPage:       cfg.CharsPerPage,
		DefaultLimit:       cfg.DefaultSegmentLimit,
		DefaultCeiling:     cfg.DefaultCeiling,
		LargeDocumentPages: cfg.LargeDocumentPages,
		LargeLimit:         cfg.LargeSegmentLimit,
		LargeCeiling:       cfg.LargeCeiling,
	}
}

// EstimatePages returns ceil(chars / CharsPerPage).
func (s *Segmenter) EstimatePages(content string) int {
	chars := utf8.RuneCountInString(content)
	return (chars + s.opts.CharsPerPage - 1) / s.opts.CharsPerPage
}

// Limits returns the per-segment character limit and the segment-count ceiling
// for a document of the given size.
func (s *Segmenter) Limits(content string) (limit, ceiling int) {
	if s.EstimatePages(content) > s.opts.LargeDocumentPages {
		return s.opts.LargeLimit, s.opts.LargeCeiling
	}
	return s.opts.DefaultLimit, s.opts.DefaultCeiling
}

// Segment splits content into at most ceiling segments. A positive sizeHint
// overrides the per-segment limit; the ceiling is always size-derived.
func (s *Segmenter) Segment(content string, sizeHint int) *domain.SegmentPlan {
	limit, ceiling := s.Limits(content)
	if sizeHint > 0 {
		limit = sizeHint
	}

	segments := Split(content, limit)
	plan := &domain.SegmentPlan{
		SizeLimit:      limit,
		Ceiling:        ceiling,
		EstimatedPages: s.EstimatePages(content),
		Produced:       len(segments),
	}
	if len(segments) > ceiling {
		segments = segments[:ceiling]
		plan.Truncated = true
		for i := range segments {
			segments[i].Total = ceiling
		}
	}
	plan.Segments = segments
	return plan
}

// Split greedily packs whitespace-delimited words into segments of at most limit
// characters. A word longer than limit becomes a segment of its own. The
// whitespace between two segments is kept on the earlier segment's Separator
// and whitespace before the first word on the first segment's Leading.
func Split(content string, limit int) []domain.Segment {
	if limit <= 0 {
		limit = 1
	}

	var (
		segments []domain.Segment
		buf      strings.Builder
		bufLen   int
		gap      string
	)
	flush := func(sep string) {
		segments = append(segments, domain.Segment{
			Text:      buf.String(),
			Separator: sep,
			Index:     len(segments) + 1,
		})
		buf.Reset()
		bufLen = 0
	}

	i := skipSpace(content, 0)
	leading := content[:i]
	for i < len(content) {
		wordStart := i
		wordLen := 0
		for i < len(content) {
			r, size := utf8.DecodeRuneInString(content[i:])
			if unicode.IsSpace(r) {
				break
			}
			i += size
			wordLen++
		}
		word := content[wordStart:i]
		gapStart := i
		i = skipSpace(content, i)
		nextGap := content[gapStart:i]

		gapLen := utf8.RuneCountInString(gap)
		switch {
		case bufLen == 0:
			buf.WriteString(word)
			bufLen = wordLen
		case bufLen+gapLen+wordLen > limit:
			flush(gap)
			buf.WriteString(word)
			bufLen = wordLen
		default:
			buf.WriteString(gap)
			buf.WriteString(word)
			bufLen += gapLen + wordLen
		}
		gap = nextGap
	}
	if bufLen > 0 {
		flush(gap)
	}

	if len(segments) > 0 {
		segments[0].Leading = leading
	}
	for i := range segments {
		segments[i].Total = len(segments)
	}
	return segments
}

// Chunk splits content into retrieval chunks of about size characters where
// each chunk after the first repeats up to overlap characters of whole words
// from the end of the previous one.
func Chunk(content string, size, overlap int) []string {
	if overlap < 0 || overlap >= size {
		overlap = 0
	}
	segments := Split(content, size-overlap)

	chunks := make([]string, len(segments))
	for i, seg := range segments {
		if i == 0 || overlap == 0 {
			chunks[i] = seg.Text
			continue
		}
		prev := segments[i-1]
		if tail := wordTail(prev.Text, overlap); tail != "" {
			chunks[i] = tail + prev.Separator + seg.Text
		} else {
			chunks[i] = seg.Text
		}
	}
	return chunks
}

// wordTail returns the longest suffix of s of at most n runes that starts at a
// word boundary.
func wordTail(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	start := len(runes) - n
	if !unicode.IsSpace(runes[start-1]) {
		for start < len(runes) && !unicode.IsSpace(runes[start]) {
			start++
		}
	}
	for start < len(runes) && unicode.IsSpace(runes[start]) {
		start++
	}
	return string(runes[start:])
}

// Reassemble joins segments with their original separators.
func Reassemble(segments []domain.Segment) string {
	var b strings.Builder
	for _, seg := range segments {
		b.WriteString(seg.Leading)
		b.WriteString(seg.Text)
		b.WriteString(seg.Separator)
	}
	return b.String()
}

func skipSpace(s string, i int) int {
	for i < len(s) {
		r, size := utf8.DecodeRuneInString(s[i:])
		if !unicode.IsSpace(r) {
			break
		}
		i += size
	}
	return i
}

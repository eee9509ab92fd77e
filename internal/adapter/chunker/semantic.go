// Package chunker splits raw document text into bounded fragments for
// embedding and retrieval. The semantic chunker respects section headers,
// paragraphs and sentence boundaries and carries a word-aligned overlap
// between consecutive chunks; the simple chunker is a legacy word
// accumulator kept for embedding workflows that depend on its output.
package chunker

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"ragassist/internal/domain"
)

// SemanticChunker splits text into semantically coherent chunks.
//
// Chunk boundaries never fall mid-sentence. Sections detected via heading
// patterns are chunked independently so a chunk never spans two sections.
type SemanticChunker struct {
	chunkSize    int
	overlap      int
	minChunkSize int
}

// NewSemanticChunker creates a semantic chunker. chunkSize and overlap are
// in characters; fragments below minChunkSize are dropped mid-stream but
// the final chunk of a section is always kept to avoid silent data loss.
func NewSemanticChunker(chunkSize, overlap, minChunkSize int) *SemanticChunker {
	return &SemanticChunker{
		chunkSize:    chunkSize,
		overlap:      overlap,
		minChunkSize: minChunkSize,
	}
}

var (
	tabSpaceRun = regexp.MustCompile(`[ \t]+`)
	newlineRun  = regexp.MustCompile(`\n{3,}`)
	paragraphRe = regexp.MustCompile(`\n\s*\n`)

	// Common numbered heading markers in Spanish course and policy
	// documents, with and without diacritics.
	sectionRe = regexp.MustCompile(`(?im)^(?:UNIDAD|CAP[IÍ]TULO|SECCI[OÓ]N|TEMA|M[OÓ]DULO|PARTE)\s*(?:N[º°]?)?\s*\d+`)
)

// piece is an intermediate chunk before index/total stamping.
type piece struct {
	text         string
	start, end   int
	hasOverlap   bool
	sectionTitle string
}

// Chunk splits text into chunks for docID. Index and total are stamped in
// a second pass because the total is unknown while splitting.
func (c *SemanticChunker) Chunk(text, docID string) ([]domain.TextChunk, error) {
	if strings.TrimSpace(text) == "" {
		return nil, nil
	}

	text = normalizeText(text)

	var pieces []piece
	sections := extractSections(text)
	if len(sections) > 0 {
		for _, s := range sections {
			pieces = append(pieces, c.chunkSection(s.text, s.title, s.start)...)
		}
	} else {
		pieces = c.chunkSection(text, "", 0)
	}

	total := len(pieces)
	chunks := make([]domain.TextChunk, 0, total)
	for i, p := range pieces {
		chunks = append(chunks, domain.NewTextChunk(p.text, domain.ChunkMetadata{
			DocID:        docID,
			ChunkIndex:   i,
			TotalChunks:  total,
			StartChar:    p.start,
			EndChar:      p.end,
			HasOverlap:   p.hasOverlap,
			SectionTitle: p.sectionTitle,
		}))
	}
	return chunks, nil
}

// normalizeText collapses space/tab runs, normalizes line endings and
// reduces 3+ newlines to exactly 2.
func normalizeText(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	text = tabSpaceRun.ReplaceAllString(text, " ")
	text = newlineRun.ReplaceAllString(text, "\n\n")
	return strings.TrimSpace(text)
}

type section struct {
	title string
	text  string
	start int
}

// extractSections splits the document at heading markers. Fewer than two
// headers is not meaningful structure, so the caller falls back to treating
// the whole document as one section.
func extractSections(text string) []section {
	locs := sectionRe.FindAllStringIndex(text, -1)
	if len(locs) < 2 {
		return nil
	}

	sections := make([]section, 0, len(locs))
	for i, loc := range locs {
		end := len(text)
		if i+1 < len(locs) {
			end = locs[i+1][0]
		}
		sections = append(sections, section{
			title: strings.TrimSpace(text[loc[0]:loc[1]]),
			text:  strings.TrimSpace(text[loc[0]:end]),
			start: loc[0],
		})
	}
	return sections
}

// chunkSection greedily accumulates paragraphs into chunks, carrying a
// word-aligned overlap tail between consecutive chunks. Offsets describe
// the span of new content only, so concatenated spans cover the section
// without gaps.
func (c *SemanticChunker) chunkSection(text, title string, offset int) []piece {
	if len(text) <= c.chunkSize {
		// Small sections stay whole even below the minimum size.
		return []piece{{
			text:         text,
			start:        offset,
			end:          offset + len(text),
			sectionTitle: title,
		}}
	}

	paras := splitParagraphs(text)

	var (
		pieces     []piece
		cur        strings.Builder
		curStart   = -1
		curEnd     int
		hasOverlap bool
	)

	flush := func(keepUndersized bool) {
		if cur.Len() == 0 {
			return
		}
		if keepUndersized || cur.Len() >= c.minChunkSize {
			pieces = append(pieces, piece{
				text:         cur.String(),
				start:        offset + curStart,
				end:          offset + curEnd,
				hasOverlap:   hasOverlap,
				sectionTitle: title,
			})
		}
		cur.Reset()
		curStart = -1
		hasOverlap = false
	}

	for _, p := range paras {
		if p.text == "" {
			continue
		}

		// A paragraph that alone exceeds the chunk size is force-split at
		// sentence boundaries; the running chunk is closed first.
		if len(p.text) > c.chunkSize {
			flush(false)
			pieces = append(pieces, c.chunkSentences(p.text, title, offset+p.start)...)
			continue
		}

		if cur.Len() == 0 || cur.Len()+len(p.text)+2 <= c.chunkSize {
			if cur.Len() > 0 {
				cur.WriteString("\n\n")
			}
			if curStart == -1 {
				curStart = p.start
			}
			cur.WriteString(p.text)
			curEnd = p.end
			continue
		}

		tail := c.overlapTail(cur.String())
		flush(false)

		if tail != "" {
			cur.WriteString(tail)
			cur.WriteString("\n\n")
			hasOverlap = true
		}
		cur.WriteString(p.text)
		curStart = p.start
		curEnd = p.end
	}

	// The trailing chunk is kept regardless of size: it may be the only
	// place its content exists.
	flush(true)

	return pieces
}

// chunkSentences applies the same greedy accumulation and overlap strategy
// at sentence granularity, for paragraphs too long to chunk whole.
func (c *SemanticChunker) chunkSentences(text, title string, offset int) []piece {
	sentences := splitSentences(text)

	var (
		pieces     []piece
		cur        strings.Builder
		curStart   = -1
		curEnd     int
		hasOverlap bool
	)

	flush := func(keepUndersized bool) {
		if cur.Len() == 0 {
			return
		}
		if keepUndersized || cur.Len() >= c.minChunkSize {
			pieces = append(pieces, piece{
				text:         cur.String(),
				start:        offset + curStart,
				end:          offset + curEnd,
				hasOverlap:   hasOverlap,
				sectionTitle: title,
			})
		}
		cur.Reset()
		curStart = -1
		hasOverlap = false
	}

	for _, s := range sentences {
		if s.text == "" {
			continue
		}

		if cur.Len() == 0 || cur.Len()+len(s.text)+1 <= c.chunkSize {
			if cur.Len() > 0 {
				cur.WriteString(" ")
			}
			if curStart == -1 {
				curStart = s.start
			}
			cur.WriteString(s.text)
			curEnd = s.end
			continue
		}

		tail := c.overlapTail(cur.String())
		flush(false)

		if tail != "" {
			cur.WriteString(tail)
			cur.WriteString(" ")
			hasOverlap = true
		}
		cur.WriteString(s.text)
		curStart = s.start
		curEnd = s.end
	}

	flush(true)

	return pieces
}

// overlapTail returns the longest word-aligned suffix of text not exceeding
// the configured overlap, or "" when overlap is disabled.
func (c *SemanticChunker) overlapTail(text string) string {
	if c.overlap <= 0 {
		return ""
	}
	if len(text) <= c.overlap {
		return text
	}

	region := text
	if len(region) > c.overlap*2 {
		region = region[len(region)-c.overlap*2:]
	}

	words := strings.Fields(region)
	var tail []string
	count := 0
	for i := len(words) - 1; i >= 0; i-- {
		w := words[i]
		if count+len(w)+1 > c.overlap {
			break
		}
		tail = append([]string{w}, tail...)
		count += len(w) + 1
	}
	return strings.Join(tail, " ")
}

type span struct {
	text       string
	start, end int
}

// splitParagraphs returns blank-line separated paragraphs with their
// offsets in text, trimmed.
func splitParagraphs(text string) []span {
	seps := paragraphRe.FindAllStringIndex(text, -1)

	var paras []span
	pos := 0
	for _, sep := range seps {
		paras = append(paras, trimSpan(text, pos, sep[0]))
		pos = sep[1]
	}
	paras = append(paras, trimSpan(text, pos, len(text)))
	return paras
}

func trimSpan(text string, start, end int) span {
	raw := text[start:end]
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return span{start: start, end: start}
	}
	lead := strings.Index(raw, trimmed)
	return span{text: trimmed, start: start + lead, end: start + lead + len(trimmed)}
}

// splitSentences splits at a sentence end followed by whitespace and an
// uppercase letter, or a sentence end followed by a newline. Locale aware:
// Spanish accented capitals count as uppercase.
func splitSentences(text string) []span {
	var spans []span
	start := 0
	i := 0
	for i < len(text) {
		ch := text[i]
		if ch != '.' && ch != '!' && ch != '?' {
			i++
			continue
		}

		j := i + 1
		sawNewline := false
		for j < len(text) {
			r, size := utf8.DecodeRuneInString(text[j:])
			if !unicode.IsSpace(r) {
				break
			}
			if r == '\n' {
				sawNewline = true
			}
			j += size
		}

		if j == i+1 {
			// No whitespace after the punctuation; not a boundary.
			i++
			continue
		}

		boundary := sawNewline
		if !boundary && j < len(text) {
			r, _ := utf8.DecodeRuneInString(text[j:])
			boundary = unicode.IsUpper(r)
		}

		if boundary {
			spans = append(spans, trimSpan(text, start, i+1))
			start = j
			i = j
			continue
		}
		i = j
	}

	if start < len(text) {
		spans = append(spans, trimSpan(text, start, len(text)))
	}
	return spans
}

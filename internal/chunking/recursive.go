package chunking

import (
	"strings"
)

// defaultSeparators is the priority-ordered separator list: paragraph break,
// line break, space, then raw character windows as a last resort.
var defaultSeparators = []string{"\n\n", "\n", " ", ""}

// recursiveChunker splits text on the coarsest separator that appears,
// recursively subdividing pieces that still exceed the target size and
// merging small pieces back together with overlap.
type recursiveChunker struct {
	chunkSize    int
	chunkOverlap int
	separators   []string
}

func newRecursiveChunker(chunkSize, chunkOverlap int) *recursiveChunker {
	return &recursiveChunker{
		chunkSize:    chunkSize,
		chunkOverlap: chunkOverlap,
		separators:   defaultSeparators,
	}
}

func (c *recursiveChunker) Chunk(text string) ([]Chunk, error) {
	pieces := c.splitText(text, c.separators)
	chunks := make([]Chunk, 0, len(pieces))
	for _, p := range pieces {
		chunks = append(chunks, Chunk{Index: len(chunks), Content: p})
	}
	return chunks, nil
}

func (c *recursiveChunker) splitText(text string, separators []string) []string {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	if tokenLen(text) <= c.chunkSize {
		return []string{strings.TrimSpace(text)}
	}

	// Pick the coarsest separator present in the text.
	sep := ""
	var rest []string
	for i, s := range separators {
		if s == "" {
			sep = s
			break
		}
		if strings.Contains(text, s) {
			sep = s
			rest = separators[i+1:]
			break
		}
	}
	if sep == "" {
		return c.splitByWindow(text)
	}

	splits := strings.Split(text, sep)

	var final []string
	var pending []string
	for _, s := range splits {
		if tokenLen(s) <= c.chunkSize {
			pending = append(pending, s)
			continue
		}
		// Flush accumulated small pieces, then recurse into the oversized one.
		final = append(final, c.mergeSplits(pending, sep)...)
		pending = nil
		final = append(final, c.splitText(s, rest)...)
	}
	final = append(final, c.mergeSplits(pending, sep)...)
	return final
}

// mergeSplits greedily packs consecutive pieces into chunks up to the target
// size, then carries the trailing pieces forward so adjacent chunks overlap
// by roughly chunkOverlap units.
func (c *recursiveChunker) mergeSplits(splits []string, sep string) []string {
	var docs []string
	var current []string
	sepLen := tokenLen(sep)
	total := 0

	for _, s := range splits {
		l := tokenLen(s)
		if len(current) > 0 && total+l+sepLen > c.chunkSize {
			if doc := strings.TrimSpace(strings.Join(current, sep)); doc != "" {
				docs = append(docs, doc)
			}
			// Retain a tail of the current window for overlap.
			for total > c.chunkOverlap || (total+l+sepLen > c.chunkSize && total > 0) {
				total -= tokenLen(current[0]) + sepLen
				current = current[1:]
			}
		}
		current = append(current, s)
		total += l + sepLen
	}

	if doc := strings.TrimSpace(strings.Join(current, sep)); doc != "" {
		docs = append(docs, doc)
	}
	return docs
}

// splitByWindow is the last-resort splitter: fixed-size rune windows with
// overlap, used when no separator exists in an oversized piece.
func (c *recursiveChunker) splitByWindow(text string) []string {
	runes := []rune(text)
	window := c.chunkSize * charsPerToken
	step := (c.chunkSize - c.chunkOverlap) * charsPerToken

	var out []string
	for start := 0; start < len(runes); start += step {
		end := start + window
		if end > len(runes) {
			end = len(runes)
		}
		piece := strings.TrimSpace(string(runes[start:end]))
		if piece != "" {
			out = append(out, piece)
		}
		if end == len(runes) {
			break
		}
	}
	return out
}

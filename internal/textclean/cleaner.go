// Package textclean removes PDF-extraction artifacts from report text before
// chunking and indexing.
package textclean

import (
	"regexp"
	"strings"
	"unicode"
)

const (
	// LongWordThreshold is the length above which a purely alphabetic token
	// is treated as glued-together extraction garbage.
	LongWordThreshold = 20

	// TableNoiseRatio is the fraction of noise cells above which an entire
	// table block is dropped.
	TableNoiseRatio = 0.5
)

// noiseSymbols are stray glyphs produced by bad font extraction.
const noiseSymbols = "·­€ƒ…†‡ˆ‰Š‹ŒŽ˜™š›œžŸ‚„"

var (
	glyphPattern     = regexp.MustCompile(`GLYPH(?:<|&lt;)\d+(?:>|&gt;)`)
	wordPattern      = regexp.MustCompile(`\w+`)
	tableSepPattern  = regexp.MustCompile(`^[\s|\-:+]+$`)
	letterRunPattern = regexp.MustCompile(`[a-zA-Z\x{00C0}-\x{017F}]{2,}`)
	sepLinePattern   = regexp.MustCompile(`^[\-+:]+$`)
	multiNewline     = regexp.MustCompile(`\n{3,}`)
)

// Cleaner applies a fixed, ordered pipeline of text-hygiene filters.
// The zero value is not usable; create one with NewCleaner.
type Cleaner struct {
	longWordThreshold int
	tableNoiseRatio   float64
}

// NewCleaner creates a Cleaner with the default thresholds.
func NewCleaner() *Cleaner {
	return &Cleaner{
		longWordThreshold: LongWordThreshold,
		tableNoiseRatio:   TableNoiseRatio,
	}
}

// Clean runs the full cleaning pipeline. The step order matters: later steps
// assume earlier ones already removed their class of noise. Empty input
// returns empty output. Clean is idempotent aside from the final whitespace
// normalization, which is itself idempotent.
func (c *Cleaner) Clean(text string) string {
	if text == "" {
		return ""
	}

	text = strings.ReplaceAll(text, "<!-- image -->", "")
	text = glyphPattern.ReplaceAllString(text, "")
	text = removeNoiseSymbols(text)
	text = c.removeSuspiciousLongWords(text)
	text = removeSingleCharacterLines(text)
	text = removePunctuationNoiseLines(text)
	text = c.removeEmptyTables(text)
	text = normalizeWhitespace(text)
	return text
}

func removeNoiseSymbols(text string) string {
	return strings.Map(func(r rune) rune {
		if strings.ContainsRune(noiseSymbols, r) {
			return -1
		}
		return r
	}, text)
}

// removeSuspiciousLongWords drops every occurrence of purely alphabetic
// tokens longer than the threshold, whole-word only.
func (c *Cleaner) removeSuspiciousLongWords(text string) string {
	longTokens := make(map[string]struct{})
	for _, w := range wordPattern.FindAllString(text, -1) {
		if len([]rune(w)) > c.longWordThreshold && isAlpha(w) {
			longTokens[w] = struct{}{}
		}
	}

	for token := range longTokens {
		p := regexp.MustCompile(`\b` + regexp.QuoteMeta(token) + `\b`)
		text = p.ReplaceAllString(text, "")
	}
	return text
}

func isAlpha(s string) bool {
	for _, r := range s {
		if !unicode.IsLetter(r) {
			return false
		}
	}
	return s != ""
}

// removeSingleCharacterLines drops lines that are exactly one letter, a
// common artifact of multi-column extraction.
func removeSingleCharacterLines(text string) string {
	lines := strings.Split(text, "\n")
	kept := lines[:0]
	for _, line := range lines {
		stripped := strings.TrimSpace(line)
		if len([]rune(stripped)) == 1 && isAlpha(stripped) {
			continue
		}
		kept = append(kept, line)
	}
	return strings.Join(kept, "\n")
}

// removePunctuationNoiseLines drops lines with no alphanumeric content,
// except blank lines and lines that are part of a table.
func removePunctuationNoiseLines(text string) string {
	lines := strings.Split(text, "\n")
	kept := lines[:0]
	for _, line := range lines {
		stripped := strings.TrimSpace(line)
		if stripped == "" {
			kept = append(kept, line)
			continue
		}
		if !hasAlnum(stripped) {
			isTablePart := strings.Contains(stripped, "|") || sepLinePattern.MatchString(stripped)
			if !isTablePart {
				continue
			}
		}
		kept = append(kept, line)
	}
	return strings.Join(kept, "\n")
}

func hasAlnum(s string) bool {
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return true
		}
	}
	return false
}

// removeEmptyTables drops contiguous table blocks whose noise-cell ratio
// exceeds the threshold. Separator rows are excluded from the ratio but kept
// in the output when the block survives.
func (c *Cleaner) removeEmptyTables(text string) string {
	lines := strings.Split(text, "\n")
	var kept []string

	i := 0
	for i < len(lines) {
		stripped := strings.TrimSpace(lines[i])
		if !strings.HasPrefix(stripped, "|") || !strings.HasSuffix(stripped, "|") {
			kept = append(kept, lines[i])
			i++
			continue
		}

		// Collect the whole table block.
		j := i
		var block []string
		for j < len(lines) {
			s := strings.TrimSpace(lines[j])
			if !strings.HasPrefix(s, "|") || !strings.HasSuffix(s, "|") {
				break
			}
			block = append(block, lines[j])
			j++
		}

		totalCells, noiseCells := 0, 0
		for _, row := range block {
			if tableSepPattern.MatchString(row) {
				continue
			}
			trimmed := strings.Trim(strings.TrimSpace(row), "|")
			for _, cell := range strings.Split(trimmed, "|") {
				totalCells++
				if isTableCellNoise(cell) {
					noiseCells++
				}
			}
		}

		ratio := 0.0
		if totalCells > 0 {
			ratio = float64(noiseCells) / float64(totalCells)
		}
		if ratio <= c.tableNoiseRatio {
			kept = append(kept, block...)
		}
		i = j
	}
	return strings.Join(kept, "\n")
}

// isTableCellNoise reports whether a cell carries no usable content: empty
// after trimming, or no digit and no run of two or more Latin letters.
func isTableCellNoise(cell string) bool {
	s := strings.TrimSpace(cell)
	if s == "" {
		return true
	}
	for _, r := range s {
		if unicode.IsDigit(r) {
			return false
		}
	}
	return !letterRunPattern.MatchString(s)
}

// normalizeWhitespace right-trims every line, collapses runs of three or
// more newlines to two, and strips the document's outer whitespace.
func normalizeWhitespace(text string) string {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRight(line, " \t\r\f\v")
	}
	text = strings.Join(lines, "\n")
	text = multiNewline.ReplaceAllString(text, "\n\n")
	return strings.TrimSpace(text)
}

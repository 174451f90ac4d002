package chunking

import (
	"fmt"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"
	"go.abhg.dev/goldmark/toc"
)

// markdownChunker splits at header boundaries (levels 1-3), preserving the
// header hierarchy per section. Sections that still exceed the target size
// are handed to the recursive splitter.
type markdownChunker struct {
	parser    goldmark.Markdown
	chunkSize int
	fallback  *recursiveChunker
}

func newMarkdownChunker(chunkSize, chunkOverlap int) *markdownChunker {
	md := goldmark.New(
		goldmark.WithParserOptions(
			parser.WithAutoHeadingID(),
		),
	)
	return &markdownChunker{
		parser:    md,
		chunkSize: chunkSize,
		fallback:  newRecursiveChunker(chunkSize, chunkOverlap),
	}
}

func (c *markdownChunker) Chunk(input string) ([]Chunk, error) {
	if strings.TrimSpace(input) == "" {
		return nil, nil
	}
	source := []byte(input)

	reader := text.NewReader(source)
	doc := c.parser.Parser().Parse(reader)

	tree, err := toc.Inspect(doc, source,
		toc.MinDepth(1),
		toc.MaxDepth(3),
		toc.Compact(true),
	)
	if err != nil {
		return nil, fmt.Errorf("inspect headers: %w", err)
	}

	// No headers: fall back to size-based splitting of the whole text.
	if len(tree.Items) == 0 {
		return c.fallback.Chunk(input)
	}

	var chunks []Chunk
	if err := c.extractSections(doc, source, tree.Items, nil, &chunks); err != nil {
		return nil, err
	}
	return chunks, nil
}

// extractSections walks TOC items depth-first, emitting one chunk per leaf
// section (or several sub-chunks when a section is oversized).
func (c *markdownChunker) extractSections(doc ast.Node, source []byte, items toc.Items, ancestors []string, chunks *[]Chunk) error {
	for i, item := range items {
		currentPath := append(ancestors[:len(ancestors):len(ancestors)], string(item.Title))
		headerPath := formatHeaderPath(currentPath)

		headerNode := findHeaderByID(doc, string(item.ID))
		if headerNode == nil {
			continue
		}

		// A section's own content ends where its first child section begins,
		// so parent and child chunks never duplicate text.
		startLine := headerNode.Lines().At(0)
		var endLine text.Segment
		switch {
		case len(item.Items) > 0:
			if child := findHeaderByID(doc, string(item.Items[0].ID)); child != nil {
				endLine = child.Lines().At(0)
			}
		case i+1 < len(items):
			if next := findHeaderByID(doc, string(items[i+1].ID)); next != nil {
				endLine = next.Lines().At(0)
			}
		default:
			endLine = findNextHeaderBoundary(doc, headerNode, headerNode.(*ast.Heading).Level)
		}

		content := extractContent(source, startLine, endLine)

		if tokenLen(content) > c.chunkSize {
			sub, err := c.fallback.Chunk(content)
			if err != nil {
				return err
			}
			for _, s := range sub {
				*chunks = append(*chunks, Chunk{
					Index:      len(*chunks),
					HeaderPath: headerPath,
					Content:    s.Content,
				})
			}
		} else {
			*chunks = append(*chunks, Chunk{
				Index:      len(*chunks),
				HeaderPath: headerPath,
				Content:    content,
			})
		}

		if len(item.Items) > 0 {
			if err := c.extractSections(doc, source, item.Items, currentPath, chunks); err != nil {
				return err
			}
		}
	}
	return nil
}

// formatHeaderPath builds a hierarchy string like
// "# Environment > ## Emissions > ### Scope 1".
func formatHeaderPath(path []string) string {
	if len(path) == 0 {
		return ""
	}
	parts := make([]string, 0, len(path))
	for i, segment := range path {
		parts = append(parts, fmt.Sprintf("%s %s", strings.Repeat("#", i+1), segment))
	}
	return strings.Join(parts, " > ")
}

// findHeaderByID locates a heading node by its auto-generated ID.
func findHeaderByID(node ast.Node, id string) ast.Node {
	var found ast.Node
	ast.Walk(node, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if entering && n.Kind() == ast.KindHeading {
			heading := n.(*ast.Heading)
			headingID, ok := heading.AttributeString("id")
			if ok && string(headingID.([]byte)) == id {
				found = n
				return ast.WalkStop, nil
			}
		}
		return ast.WalkContinue, nil
	})
	return found
}

// findNextHeaderBoundary finds the next heading at the same or higher level
// after the given node.
func findNextHeaderBoundary(root ast.Node, current ast.Node, currentLevel int) text.Segment {
	var nextHeader ast.Node
	foundCurrent := false

	ast.Walk(root, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		if n.Kind() == ast.KindHeading {
			heading := n.(*ast.Heading)
			if !foundCurrent {
				if n == current {
					foundCurrent = true
				}
				return ast.WalkContinue, nil
			}
			if heading.Level <= currentLevel {
				nextHeader = n
				return ast.WalkStop, nil
			}
		}
		return ast.WalkContinue, nil
	})

	if nextHeader != nil {
		return nextHeader.Lines().At(0)
	}
	// No next header: extract to end of document.
	return text.Segment{}
}

// extractContent extracts text between start and end line segments.
func extractContent(source []byte, start, end text.Segment) string {
	if end.Start == 0 && end.Stop == 0 {
		return strings.TrimSpace(string(source[start.Start:]))
	}
	return strings.TrimSpace(string(source[start.Start:end.Start]))
}

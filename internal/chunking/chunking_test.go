package chunking

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_UnknownStrategy(t *testing.T) {
	_, err := New("semantic", 0, 0)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown chunking strategy")
}

func TestNew_OverlapMustBeSmallerThanSize(t *testing.T) {
	_, err := New(StrategyRecursive, 100, 100)
	require.Error(t, err)
}

func TestRecursive_EmptyInput(t *testing.T) {
	c, err := New(StrategyRecursive, 0, 0)
	require.NoError(t, err)

	chunks, err := c.Chunk("")
	require.NoError(t, err)
	assert.Empty(t, chunks)
}

func TestRecursive_SmallTextSingleChunk(t *testing.T) {
	c, err := New(StrategyRecursive, 0, 0)
	require.NoError(t, err)

	chunks, err := c.Chunk("total emissions fell by 12% in 2023")
	require.NoError(t, err)
	require.Len(t, chunks, 1)
	assert.Equal(t, 0, chunks[0].Index)
	assert.Equal(t, "total emissions fell by 12% in 2023", chunks[0].Content)
}

func TestRecursive_CoversAllInput(t *testing.T) {
	var paragraphs []string
	for i := 0; i < 12; i++ {
		paragraphs = append(paragraphs, fmt.Sprintf("paragraph%02d about energy usage and reduction targets", i))
	}
	input := strings.Join(paragraphs, "\n\n")

	c, err := New(StrategyRecursive, 25, 5)
	require.NoError(t, err)

	chunks, err := c.Chunk(input)
	require.NoError(t, err)
	require.Greater(t, len(chunks), 1)

	// Every paragraph must land in at least one chunk - no silent drops.
	joined := ""
	for _, ch := range chunks {
		joined += ch.Content + "\n"
	}
	for _, p := range paragraphs {
		assert.Contains(t, joined, p)
	}

	// Indexes are sequential.
	for i, ch := range chunks {
		assert.Equal(t, i, ch.Index)
	}
}

func TestRecursive_AdjacentChunksOverlap(t *testing.T) {
	var words []string
	for i := 0; i < 60; i++ {
		words = append(words, fmt.Sprintf("word%02d", i))
	}
	input := strings.Join(words, " ")

	c, err := New(StrategyRecursive, 20, 6)
	require.NoError(t, err)

	chunks, err := c.Chunk(input)
	require.NoError(t, err)
	require.Greater(t, len(chunks), 1)

	for i := 1; i < len(chunks); i++ {
		prevWords := strings.Fields(chunks[i-1].Content)
		lastOfPrev := prevWords[len(prevWords)-1]
		assert.Contains(t, chunks[i].Content, lastOfPrev,
			"chunk %d should start with the tail of chunk %d", i, i-1)
	}
}

func TestRecursive_NoSeparatorsFallsBackToWindows(t *testing.T) {
	input := strings.Repeat("a", 200)

	c, err := New(StrategyRecursive, 10, 2)
	require.NoError(t, err)

	chunks, err := c.Chunk(input)
	require.NoError(t, err)
	require.Greater(t, len(chunks), 1)
	// Window size is chunkSize * 4 chars.
	assert.Equal(t, strings.Repeat("a", 40), chunks[0].Content)
}

func TestMarkdown_EmptyInput(t *testing.T) {
	c, err := New(StrategyMarkdown, 0, 0)
	require.NoError(t, err)

	chunks, err := c.Chunk("   \n")
	require.NoError(t, err)
	assert.Empty(t, chunks)
}

func TestMarkdown_SplitsAtHeaders(t *testing.T) {
	input := `# Environment

Overview of environmental goals.

## Emissions

Scope 1 emissions decreased.

## Energy

Renewable energy share grew.
`
	c, err := New(StrategyMarkdown, 0, 0)
	require.NoError(t, err)

	chunks, err := c.Chunk(input)
	require.NoError(t, err)
	require.Len(t, chunks, 3)

	assert.Equal(t, "# Environment", chunks[0].HeaderPath)
	assert.Contains(t, chunks[0].Content, "Overview of environmental goals")
	assert.NotContains(t, chunks[0].Content, "Scope 1")

	assert.Equal(t, "# Environment > ## Emissions", chunks[1].HeaderPath)
	assert.Contains(t, chunks[1].Content, "Scope 1 emissions decreased")

	assert.Equal(t, "# Environment > ## Energy", chunks[2].HeaderPath)
	assert.Contains(t, chunks[2].Content, "Renewable energy share grew")
}

func TestMarkdown_SplitsToLevelThree(t *testing.T) {
	input := `# Report

Intro.

## Climate

Climate section.

### Scope 3

Supply chain emissions.
`
	c, err := New(StrategyMarkdown, 0, 0)
	require.NoError(t, err)

	chunks, err := c.Chunk(input)
	require.NoError(t, err)
	require.Len(t, chunks, 3)
	assert.Equal(t, "# Report > ## Climate > ### Scope 3", chunks[2].HeaderPath)
	assert.Contains(t, chunks[2].Content, "Supply chain emissions")
}

func TestMarkdown_OversizedSectionFallsBackToRecursive(t *testing.T) {
	var body []string
	for i := 0; i < 40; i++ {
		body = append(body, fmt.Sprintf("sentence%02d about water consumption targets", i))
	}
	input := "# Water\n\n" + strings.Join(body, "\n\n") + "\n"

	c, err := New(StrategyMarkdown, 25, 5)
	require.NoError(t, err)

	chunks, err := c.Chunk(input)
	require.NoError(t, err)
	require.Greater(t, len(chunks), 1)
	for _, ch := range chunks {
		assert.Equal(t, "# Water", ch.HeaderPath)
	}
}

func TestMarkdown_NoHeadersReturnsSingleChunk(t *testing.T) {
	c, err := New(StrategyMarkdown, 0, 0)
	require.NoError(t, err)

	chunks, err := c.Chunk("Plain text without any headers.\n\nJust paragraphs.")
	require.NoError(t, err)
	require.Len(t, chunks, 1)
	assert.Empty(t, chunks[0].HeaderPath)
	assert.Contains(t, chunks[0].Content, "Plain text without any headers")
}

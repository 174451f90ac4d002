package prompts

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	reg, err := Load()
	require.NoError(t, err)

	for _, stage := range []string{"rewrite", "generate"} {
		system, err := reg.System(stage)
		require.NoError(t, err)
		assert.NotEmpty(t, system, "stage %s", stage)

		template, err := reg.Template(stage)
		require.NoError(t, err)
		assert.Contains(t, template, "{question}", "stage %s", stage)
	}
}

func TestRender_FillsPlaceholders(t *testing.T) {
	reg, err := Load()
	require.NoError(t, err)

	out, err := reg.Render("generate", map[string]string{
		"context":  "Emissions fell 12% in 2023.",
		"question": "How did emissions change?",
	})
	require.NoError(t, err)
	assert.Contains(t, out, "Emissions fell 12% in 2023.")
	assert.Contains(t, out, "How did emissions change?")
	assert.NotContains(t, out, "{context}")
	assert.NotContains(t, out, "{question}")
}

func TestRender_RewriteKeepsJSONExample(t *testing.T) {
	reg, err := Load()
	require.NoError(t, err)

	out, err := reg.Render("rewrite", map[string]string{
		"question": "What were emissions from 2021 to 2023?",
	})
	require.NoError(t, err)
	assert.Contains(t, out, "What were emissions from 2021 to 2023?")
	assert.Contains(t, out, `"years"`)
	assert.Contains(t, out, `"query"`)
}

func TestUnknownStage(t *testing.T) {
	reg, err := Load()
	require.NoError(t, err)

	_, err = reg.System("summarize")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = reg.Template("summarize")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = reg.Render("summarize", nil)
	assert.ErrorIs(t, err, ErrNotFound)
}

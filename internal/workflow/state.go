// Package workflow runs the rewrite, retrieve and generate stages as a
// linear graph over a shared state.
package workflow

// State carries one question through the pipeline. Each stage reads what it
// needs and writes its own fields; nothing is mutated across runs.
type State struct {
	Question          string
	RewrittenQuestion string
	Years             []int
	Documents         []string
	Answer            string
}

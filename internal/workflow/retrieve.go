package workflow

import (
	"context"
	"log/slog"
)

// Searcher is the retrieval surface the workflow depends on.
type Searcher interface {
	AdvancedSearch(ctx context.Context, query string, years []int, k int) ([]string, error)
}

type retrieveStage struct {
	searcher Searcher
	topK     int
	logger   *slog.Logger
}

// run fetches the passages most relevant to the rewritten question. Zero
// results is not an error; the generate stage handles an empty context.
func (s *retrieveStage) run(ctx context.Context, state *State) error {
	query := state.RewrittenQuestion
	if query == "" {
		query = state.Question
	}

	docs, err := s.searcher.AdvancedSearch(ctx, query, state.Years, s.topK)
	if err != nil {
		return err
	}

	state.Documents = docs
	s.logger.Debug("passages retrieved", "count", len(docs), "years", state.Years)
	return nil
}

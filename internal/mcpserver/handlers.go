package mcpserver

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// makeAskHandler creates the ask_reports tool handler.
func makeAskHandler(service Asker) func(
	context.Context, *mcp.CallToolRequest, AskReportsInput,
) (*mcp.CallToolResult, AskReportsOutput, error) {
	return func(ctx context.Context, req *mcp.CallToolRequest, input AskReportsInput) (
		*mcp.CallToolResult, AskReportsOutput, error,
	) {
		if input.Question == "" {
			return nil, AskReportsOutput{}, fmt.Errorf("question must not be empty")
		}

		resp, err := service.Ask(ctx, input.Question)
		if err != nil {
			return nil, AskReportsOutput{}, fmt.Errorf("ask failed: %w", err)
		}

		return nil, AskReportsOutput{
			Answer:            resp.Answer,
			Sources:           resp.Sources,
			RewrittenQuestion: resp.RewrittenQuestion,
			YearsExtracted:    resp.YearsExtracted,
		}, nil
	}
}

// makeSearchHandler creates the search_reports tool handler.
func makeSearchHandler(index Index) func(
	context.Context, *mcp.CallToolRequest, SearchReportsInput,
) (*mcp.CallToolResult, SearchReportsOutput, error) {
	return func(ctx context.Context, req *mcp.CallToolRequest, input SearchReportsInput) (
		*mcp.CallToolResult, SearchReportsOutput, error,
	) {
		if input.Query == "" {
			return nil, SearchReportsOutput{}, fmt.Errorf("query must not be empty")
		}
		maxResults := input.MaxResults
		if maxResults <= 0 {
			maxResults = 5
		}

		passages, err := index.AdvancedSearch(ctx, input.Query, input.Years, maxResults)
		if err != nil {
			return nil, SearchReportsOutput{}, fmt.Errorf("search failed: %w", err)
		}

		if len(passages) == 0 {
			return nil, SearchReportsOutput{
				Passages: []string{},
				Message:  "No matching passages found. Try broader search terms or drop the year filter.",
			}, nil
		}

		return nil, SearchReportsOutput{Passages: passages}, nil
	}
}

// makeStatusHandler creates the index_status tool handler.
func makeStatusHandler(index Index) func(
	context.Context, *mcp.CallToolRequest, IndexStatusInput,
) (*mcp.CallToolResult, IndexStatusOutput, error) {
	return func(ctx context.Context, req *mcp.CallToolRequest, input IndexStatusInput) (
		*mcp.CallToolResult, IndexStatusOutput, error,
	) {
		out := IndexStatusOutput{
			Collection: index.Collection(),
			Healthy:    index.Health(ctx) == nil,
		}
		if out.Healthy {
			count, err := index.Count(ctx)
			if err != nil {
				return nil, IndexStatusOutput{}, fmt.Errorf("count failed: %w", err)
			}
			out.PassageCount = count
		}
		return nil, out, nil
	}
}

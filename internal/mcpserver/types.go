// Package mcpserver exposes the report question-answering pipeline as MCP
// tools.
package mcpserver

// AskReportsInput defines the input parameters for the ask_reports tool.
type AskReportsInput struct {
	// Question is the natural-language question about the report corpus.
	Question string `json:"question" jsonschema:"required,description=Natural-language question about the indexed sustainability reports"`
}

// AskReportsOutput contains the generated answer and its retrieval trace.
type AskReportsOutput struct {
	// Answer is the generated answer text.
	Answer string `json:"answer"`
	// Sources lists the passages the answer was grounded on.
	Sources []string `json:"sources"`
	// RewrittenQuestion is the search query derived from the question.
	RewrittenQuestion string `json:"rewritten_question"`
	// YearsExtracted lists report years detected in the question.
	YearsExtracted []int `json:"years_extracted"`
}

// SearchReportsInput defines the input parameters for the search_reports tool.
type SearchReportsInput struct {
	// Query is the search query.
	Query string `json:"query" jsonschema:"required,description=Search query for report passages"`
	// Years restricts results to the given report years.
	Years []int `json:"years,omitempty" jsonschema:"description=Restrict results to these report years"`
	// MaxResults is the maximum number of passages to return.
	MaxResults int `json:"max_results,omitempty" jsonschema:"minimum=1,maximum=20,default=5,description=Maximum number of passages to return"`
}

// SearchReportsOutput contains the matching passages.
type SearchReportsOutput struct {
	// Passages is the list of matching passage contents, best first.
	Passages []string `json:"passages"`
	// Message provides informational context when there are no results.
	Message string `json:"message,omitempty"`
}

// IndexStatusInput defines the input parameters for the index_status tool.
// The tool takes no parameters.
type IndexStatusInput struct{}

// IndexStatusOutput describes the current state of the passage index.
type IndexStatusOutput struct {
	// Collection is the Qdrant collection name.
	Collection string `json:"collection"`
	// PassageCount is the number of indexed passages.
	PassageCount uint64 `json:"passage_count"`
	// Healthy indicates whether the index responded to a health check.
	Healthy bool `json:"healthy"`
}

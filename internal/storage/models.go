package storage

// DefaultCollection is the Qdrant collection used when none is configured.
const DefaultCollection = "sustainability_reports"

// Passage is one retrievable unit of report text together with its
// provenance metadata. Year is zero when no year could be determined.
type Passage struct {
	Content    string
	Source     string
	FilePath   string
	Year       int
	ChunkIndex int
}

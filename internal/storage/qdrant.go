// Package storage implements the hybrid Qdrant index: passages are stored
// with a named dense vector and a named sparse vector, and retrieved either
// by dense similarity alone or by fusing dense and sparse result lists.
package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	"github.com/qdrant/go-client/qdrant"

	"github.com/ymori/esgrag/internal/embedding"
)

const (
	denseVectorName  = "dense"
	sparseVectorName = "sparse"
)

// HybridIndex wraps the Qdrant client with connection management, schema
// setup and hybrid search. Both embedders are applied to the same text so
// the two spaces always describe the same passage.
type HybridIndex struct {
	client     *qdrant.Client
	collection string
	dense      embedding.DenseEmbedder
	sparse     embedding.SparseEmbedder
}

// NewHybridIndex creates a Qdrant-backed index with health validation.
// It performs a health check with retry on startup and fails fast if the
// server is unreachable.
func NewHybridIndex(host string, port int, collection string, dense embedding.DenseEmbedder, sparse embedding.SparseEmbedder) (*HybridIndex, error) {
	client, err := qdrant.NewClient(&qdrant.Config{
		Host: host,
		Port: port,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create qdrant client: %w", err)
	}

	if collection == "" {
		collection = DefaultCollection
	}

	idx := &HybridIndex{
		client:     client,
		collection: collection,
		dense:      dense,
		sparse:     sparse,
	}

	if err := idx.healthCheckWithRetry(context.Background()); err != nil {
		client.Close()
		return nil, fmt.Errorf("%w: %v", ErrQdrantUnreachable, err)
	}

	return idx, nil
}

// healthCheckWithRetry performs health checks with exponential backoff.
// Initial interval 500ms, max interval 10s, max elapsed 30s.
func (h *HybridIndex) healthCheckWithRetry(ctx context.Context) error {
	return backoff.Retry(func() error {
		return h.Health(ctx)
	}, backoff.WithContext(newStorageBackoff(), ctx))
}

// Health performs a single health check against Qdrant.
func (h *HybridIndex) Health(ctx context.Context) error {
	result, err := h.client.HealthCheck(ctx)
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	if result == nil || result.Title == "" {
		return fmt.Errorf("health check returned invalid response")
	}
	return nil
}

// EnsureCollection creates the collection with its dense and sparse vector
// spaces and a payload index on year. The dense size is discovered from the
// embedder rather than hardcoded, so swapping embedding models does not
// require a code change. Idempotent.
func (h *HybridIndex) EnsureCollection(ctx context.Context) error {
	exists, err := h.client.CollectionExists(ctx, h.collection)
	if err != nil {
		return fmt.Errorf("%w: failed to check collection: %v", ErrVectorStore, err)
	}
	if exists {
		return nil
	}

	dim, err := h.dense.Dimension(ctx)
	if err != nil {
		return fmt.Errorf("%w: failed to probe embedding dimension: %v", ErrVectorStore, err)
	}

	err = h.client.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: h.collection,
		VectorsConfig: qdrant.NewVectorsConfigMap(map[string]*qdrant.VectorParams{
			denseVectorName: {
				Size:     uint64(dim),
				Distance: qdrant.Distance_Cosine,
			},
		}),
		SparseVectorsConfig: qdrant.NewSparseVectorsConfig(map[string]*qdrant.SparseVectorParams{
			sparseVectorName: {},
		}),
	})
	if err != nil {
		return fmt.Errorf("%w: failed to create collection: %v", ErrVectorStore, err)
	}

	// Without this index year filters fall back to full scans.
	_, err = h.client.CreateFieldIndex(ctx, &qdrant.CreateFieldIndexCollection{
		CollectionName: h.collection,
		FieldName:      "year",
		FieldType:      qdrant.FieldType_FieldTypeInteger.Enum(),
	})
	if err != nil {
		return fmt.Errorf("%w: failed to create year index: %v", ErrVectorStore, err)
	}

	return nil
}

// AddPassages embeds and stores the passages. Each passage gets both a dense
// and a sparse vector computed from the same content, a fresh UUID point id,
// and its metadata as payload. The year key is omitted when unknown so that
// such passages never match a year filter.
func (h *HybridIndex) AddPassages(ctx context.Context, passages []Passage) error {
	if len(passages) == 0 {
		return nil
	}

	points := make([]*qdrant.PointStruct, 0, len(passages))
	for i, p := range passages {
		denseVec, err := h.dense.Embed(ctx, p.Content)
		if err != nil {
			return fmt.Errorf("%w: passage %d: %v", ErrVectorStore, i, err)
		}
		sparseVec, err := h.sparse.Embed(ctx, p.Content)
		if err != nil {
			return fmt.Errorf("%w: passage %d: %v", ErrVectorStore, i, err)
		}

		payload := map[string]any{
			"content":     p.Content,
			"source":      p.Source,
			"file_path":   p.FilePath,
			"chunk_index": p.ChunkIndex,
		}
		if p.Year != 0 {
			payload["year"] = p.Year
		}

		points = append(points, &qdrant.PointStruct{
			Id: qdrant.NewIDUUID(uuid.New().String()),
			Vectors: qdrant.NewVectorsMap(map[string]*qdrant.Vector{
				denseVectorName:  qdrant.NewVector(denseVec...),
				sparseVectorName: qdrant.NewVectorSparse(sparseVec.Indices, sparseVec.Values),
			}),
			Payload: qdrant.NewValueMap(payload),
		})
	}

	if err := h.upsertWithRetry(ctx, points); err != nil {
		return fmt.Errorf("%w: upsert failed: %v", ErrVectorStore, err)
	}
	return nil
}

// upsertWithRetry performs a waited upsert with exponential backoff, so a
// successful return means the points are searchable.
func (h *HybridIndex) upsertWithRetry(ctx context.Context, points []*qdrant.PointStruct) error {
	operation := func() error {
		_, err := h.client.Upsert(ctx, &qdrant.UpsertPoints{
			CollectionName: h.collection,
			Points:         points,
			Wait:           qdrant.PtrOf(true),
		})
		return err
	}
	return backoff.Retry(operation, backoff.WithContext(newStorageBackoff(), ctx))
}

// Search returns the contents of the top k passages by dense similarity.
func (h *HybridIndex) Search(ctx context.Context, query string, k int) ([]string, error) {
	denseVec, err := h.dense.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrVectorStore, err)
	}

	results, err := h.queryDense(ctx, denseVec, nil, k)
	if err != nil {
		return nil, err
	}
	return contents(results), nil
}

// AdvancedSearch runs dense and sparse queries over the same year filter and
// fuses the two ranked lists with reciprocal rank fusion. Each space
// contributes up to 2k candidates so a passage ranked well in only one space
// can still surface in the top k. An empty years slice means no filter; with
// years the filter matches any of them.
func (h *HybridIndex) AdvancedSearch(ctx context.Context, query string, years []int, k int) ([]string, error) {
	denseVec, err := h.dense.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrVectorStore, err)
	}
	sparseVec, err := h.sparse.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrVectorStore, err)
	}

	filter := yearFilter(years)

	denseResults, err := h.queryDense(ctx, denseVec, filter, 2*k)
	if err != nil {
		return nil, err
	}
	sparseResults, err := h.querySparse(ctx, sparseVec, filter, 2*k)
	if err != nil {
		return nil, err
	}

	fused := fuseRRF(denseResults, sparseResults)
	if len(fused) > k {
		fused = fused[:k]
	}
	return contents(fused), nil
}

func (h *HybridIndex) queryDense(ctx context.Context, vec []float32, filter *qdrant.Filter, limit int) ([]*qdrant.ScoredPoint, error) {
	using := denseVectorName
	results, err := h.client.Query(ctx, &qdrant.QueryPoints{
		CollectionName: h.collection,
		Query:          qdrant.NewQuery(vec...),
		Using:          &using,
		Filter:         filter,
		Limit:          qdrant.PtrOf(uint64(limit)),
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil {
		return nil, fmt.Errorf("%w: dense query failed: %v", ErrVectorStore, err)
	}
	return results, nil
}

func (h *HybridIndex) querySparse(ctx context.Context, vec embedding.SparseVector, filter *qdrant.Filter, limit int) ([]*qdrant.ScoredPoint, error) {
	if len(vec.Indices) == 0 {
		return nil, nil
	}
	using := sparseVectorName
	results, err := h.client.Query(ctx, &qdrant.QueryPoints{
		CollectionName: h.collection,
		Query:          qdrant.NewQuerySparse(vec.Indices, vec.Values),
		Using:          &using,
		Filter:         filter,
		Limit:          qdrant.PtrOf(uint64(limit)),
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil {
		return nil, fmt.Errorf("%w: sparse query failed: %v", ErrVectorStore, err)
	}
	return results, nil
}

// yearFilter builds a should-filter matching any of the given years.
func yearFilter(years []int) *qdrant.Filter {
	if len(years) == 0 {
		return nil
	}
	should := make([]*qdrant.Condition, 0, len(years))
	for _, y := range years {
		should = append(should, qdrant.NewMatchInt("year", int64(y)))
	}
	return &qdrant.Filter{Should: should}
}

func contents(points []*qdrant.ScoredPoint) []string {
	out := make([]string, 0, len(points))
	for _, p := range points {
		out = append(out, p.Payload["content"].GetStringValue())
	}
	return out
}

// Count returns the exact number of stored passages.
func (h *HybridIndex) Count(ctx context.Context) (uint64, error) {
	count, err := h.client.Count(ctx, &qdrant.CountPoints{
		CollectionName: h.collection,
		Exact:          qdrant.PtrOf(true),
	})
	if err != nil {
		return 0, fmt.Errorf("%w: count failed: %v", ErrVectorStore, err)
	}
	return count, nil
}

// Collection returns the collection name the index operates on.
func (h *HybridIndex) Collection() string {
	return h.collection
}

// Close closes the Qdrant client connection.
func (h *HybridIndex) Close() error {
	if h.client != nil {
		return h.client.Close()
	}
	return nil
}

func newStorageBackoff() *backoff.ExponentialBackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 500 * time.Millisecond
	b.MaxInterval = 10 * time.Second
	b.MaxElapsedTime = 30 * time.Second
	return b
}

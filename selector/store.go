package selector

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/google/uuid"
	"github.com/qdrant/go-client/qdrant"

	"github.com/quillworks/goshot/types"
	"github.com/quillworks/goshot/utils"
)

// VectorStore persists example embeddings and answers nearest-neighbor
// queries. It replaces the in-memory vectors of Semantic when the example
// set is large or shared between processes.
type VectorStore interface {
	EnsureCollection(ctx context.Context, collection string, vectorSize int) error
	UpsertExamples(ctx context.Context, collection string, examples []types.Example, vectors [][]float64) error
	QueryNearest(ctx context.Context, collection string, query []float64, k int) ([]Scored, error)
}

// QdrantStore implements VectorStore on a Qdrant instance. Example Input and
// Output travel in the point payload so queries return complete examples.
type QdrantStore struct {
	client *qdrant.Client
	logger utils.Logger
}

// NewQdrantStore connects to Qdrant. urlStr is the HTTP endpoint
// ("http://localhost:6333"); the gRPC port is derived as HTTP port + 1.
func NewQdrantStore(urlStr string, logger utils.Logger) (*QdrantStore, error) {
	parsedURL, err := url.Parse(urlStr)
	if err != nil {
		return nil, fmt.Errorf("invalid Qdrant URL: %w", err)
	}

	host := parsedURL.Hostname()
	if host == "" {
		host = "localhost"
	}

	port := 6334
	if parsedURL.Port() != "" {
		if httpPort, err := strconv.Atoi(parsedURL.Port()); err == nil {
			port = httpPort + 1
		}
	}

	client, err := qdrant.NewClient(&qdrant.Config{
		Host: host,
		Port: port,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Qdrant client: %w", err)
	}

	return &QdrantStore{client: client, logger: logger}, nil
}

// EnsureCollection creates the collection if missing and checks that an
// existing collection was built for the same vector dimensionality.
func (s *QdrantStore) EnsureCollection(ctx context.Context, collection string, vectorSize int) error {
	exists, err := s.client.CollectionExists(ctx, collection)
	if err != nil {
		return fmt.Errorf("failed to check collection existence: %w", err)
	}

	if !exists {
		err := s.client.CreateCollection(ctx, &qdrant.CreateCollection{
			CollectionName: collection,
			VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
				Size:     uint64(vectorSize),
				Distance: qdrant.Distance_Cosine,
			}),
		})
		if err != nil {
			return fmt.Errorf("failed to create collection: %w", err)
		}
		s.logger.Info("Collection created", "collection", collection, "vector_size", vectorSize)
		return nil
	}

	info, err := s.client.GetCollectionInfo(ctx, collection)
	if err != nil {
		return fmt.Errorf("failed to get collection info: %w", err)
	}
	config := info.Config
	if config == nil || config.Params == nil {
		return fmt.Errorf("collection config is invalid")
	}
	vectorsConfig := config.Params.GetVectorsConfig()
	if vectorsConfig == nil {
		return fmt.Errorf("collection vectors config is invalid")
	}
	params := vectorsConfig.GetParams()
	if params == nil {
		return fmt.Errorf("collection vector params are invalid")
	}
	if int(params.Size) != vectorSize {
		return fmt.Errorf("collection vector size mismatch: expected %d, got %d", vectorSize, params.Size)
	}
	return nil
}

// UpsertExamples writes one point per example. Points get fresh random IDs;
// re-indexing an example set should use a new collection.
func (s *QdrantStore) UpsertExamples(ctx context.Context, collection string, examples []types.Example, vectors [][]float64) error {
	if len(examples) != len(vectors) {
		return fmt.Errorf("examples and vectors length mismatch: %d vs %d", len(examples), len(vectors))
	}
	if len(examples) == 0 {
		return nil
	}

	points := make([]*qdrant.PointStruct, 0, len(examples))
	for i, example := range examples {
		points = append(points, &qdrant.PointStruct{
			Id:      qdrant.NewID(uuid.NewString()),
			Vectors: qdrant.NewVectors(toFloat32(vectors[i])...),
			Payload: qdrant.NewValueMap(map[string]any{
				"input":  example.Input,
				"output": example.Output,
			}),
		})
	}

	_, err := s.client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: collection,
		Points:         points,
	})
	if err != nil {
		s.logger.Error("Failed to upsert examples", "collection", collection, "count", len(examples), "error", err)
		return fmt.Errorf("failed to upsert examples: %w", err)
	}

	s.logger.Debug("Examples upserted", "collection", collection, "count", len(examples))
	return nil
}

// QueryNearest returns the k examples closest to the query vector, best
// first, reconstructed from point payloads.
func (s *QdrantStore) QueryNearest(ctx context.Context, collection string, query []float64, k int) ([]Scored, error) {
	if k <= 0 {
		return nil, fmt.Errorf("k must be greater than 0")
	}

	limit := uint64(k)
	scoredPoints, err := s.client.Query(ctx, &qdrant.QueryPoints{
		CollectionName: collection,
		Query:          qdrant.NewQuery(toFloat32(query)...),
		Limit:          &limit,
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil {
		s.logger.Error("Failed to query examples", "collection", collection, "k", k, "error", err)
		return nil, fmt.Errorf("failed to query examples: %w", err)
	}

	results := make([]Scored, 0, len(scoredPoints))
	for _, point := range scoredPoints {
		example := types.Example{}
		if point.Payload != nil {
			if v, ok := point.Payload["input"]; ok {
				example.Input = v.GetStringValue()
			}
			if v, ok := point.Payload["output"]; ok {
				example.Output = v.GetStringValue()
			}
		}
		results = append(results, Scored{
			Example: example,
			Score:   float64(point.Score),
		})
	}
	return results, nil
}

func toFloat32(v []float64) []float32 {
	out := make([]float32, len(v))
	for i, x := range v {
		out[i] = float32(x)
	}
	return out
}

// Stored selects examples through a VectorStore instead of in-memory
// vectors. NewStored indexes the example set once; Select embeds only the
// query and delegates ranking to the store.
type Stored struct {
	embedder   Embedder
	store      VectorStore
	collection string
	k          int
	logger     utils.Logger
}

// NewStored embeds and indexes every example into the store's collection.
func NewStored(ctx context.Context, embedder Embedder, store VectorStore, collection string, examples []types.Example, k int, logger utils.Logger) (*Stored, error) {
	if k < 1 {
		k = 1
	}

	vectors := make([][]float64, len(examples))
	for i, example := range examples {
		vector, err := embedder.Embed(ctx, example.Input)
		if err != nil {
			return nil, err
		}
		vectors[i] = vector
	}

	if len(vectors) > 0 {
		if err := store.EnsureCollection(ctx, collection, len(vectors[0])); err != nil {
			return nil, err
		}
		if err := store.UpsertExamples(ctx, collection, examples, vectors); err != nil {
			return nil, err
		}
	}

	return &Stored{
		embedder:   embedder,
		store:      store,
		collection: collection,
		k:          k,
		logger:     logger,
	}, nil
}

// Select embeds the query and asks the store for the nearest examples.
func (s *Stored) Select(ctx context.Context, query string) ([]Scored, error) {
	queryVector, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return nil, err
	}
	return s.store.QueryNearest(ctx, s.collection, queryVector, s.k)
}

// SelectOne returns the single nearest example, or nil for an empty set.
func (s *Stored) SelectOne(ctx context.Context, query string) (*types.Example, error) {
	scored, err := s.Select(ctx, query)
	if err != nil {
		return nil, err
	}
	if len(scored) == 0 {
		return nil, nil
	}
	return &scored[0].Example, nil
}

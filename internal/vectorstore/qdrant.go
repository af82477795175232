package vectorstore

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"
	"time"

	"github.com/qdrant/go-client/qdrant"

	"newsletter-rag/internal/rag"
)

const (
	// DefaultCollection is where newsletter chunks live.
	DefaultCollection = "newsletter_articles"

	// defaultGRPCPort is Qdrant's gRPC port.
	defaultGRPCPort = 6334

	// scrollPageSize bounds how many points one stats page pulls.
	scrollPageSize = 256
)

// Config holds Qdrant connection settings.
type Config struct {
	URL        string
	APIKey     string
	Collection string
}

// QdrantStore implements rag.DocumentStore against a Qdrant instance over
// gRPC.
type QdrantStore struct {
	client     *qdrant.Client
	collection string
	logger     *slog.Logger
}

// NewQdrantStore connects to Qdrant. The URL is the usual http(s) form, e.g.
// http://localhost:6334; https enables TLS.
func NewQdrantStore(config Config, logger *slog.Logger) (*QdrantStore, error) {
	host, port, useTLS, err := parseQdrantURL(config.URL)
	if err != nil {
		return nil, err
	}

	client, err := qdrant.NewClient(&qdrant.Config{
		Host:   host,
		Port:   port,
		APIKey: config.APIKey,
		UseTLS: useTLS,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Qdrant client: %w", err)
	}

	collection := config.Collection
	if collection == "" {
		collection = DefaultCollection
	}

	return &QdrantStore{client: client, collection: collection, logger: logger}, nil
}

func parseQdrantURL(rawURL string) (host string, port int, useTLS bool, err error) {
	if rawURL == "" {
		return "localhost", defaultGRPCPort, false, nil
	}

	u, err := url.Parse(rawURL)
	if err != nil {
		return "", 0, false, fmt.Errorf("invalid Qdrant URL %q: %w", rawURL, err)
	}
	if u.Host == "" {
		// Bare host:port without a scheme.
		u, err = url.Parse("http://" + rawURL)
		if err != nil || u.Host == "" {
			return "", 0, false, fmt.Errorf("invalid Qdrant URL %q", rawURL)
		}
	}

	host = u.Hostname()
	port = defaultGRPCPort
	if p := u.Port(); p != "" {
		port, err = strconv.Atoi(p)
		if err != nil {
			return "", 0, false, fmt.Errorf("invalid Qdrant port %q: %w", p, err)
		}
	}

	return host, port, u.Scheme == "https", nil
}

// EnsureCollection creates the collection with cosine distance if it does not
// already exist.
func (s *QdrantStore) EnsureCollection(ctx context.Context, dimensions int) error {
	exists, err := s.client.CollectionExists(ctx, s.collection)
	if err != nil {
		return fmt.Errorf("failed to check collection %s: %w", s.collection, err)
	}
	if exists {
		return nil
	}

	err = s.client.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: s.collection,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     uint64(dimensions),
			Distance: qdrant.Distance_Cosine,
		}),
	})
	if err != nil {
		return fmt.Errorf("failed to create collection %s: %w", s.collection, err)
	}

	s.logger.Info("Created vector collection", "collection", s.collection, "dimensions", dimensions)
	return nil
}

// HasDocument reports whether any chunk for the message is stored.
func (s *QdrantStore) HasDocument(ctx context.Context, messageID string) (bool, error) {
	points, err := s.client.Scroll(ctx, &qdrant.ScrollPoints{
		CollectionName: s.collection,
		Filter: &qdrant.Filter{
			Must: []*qdrant.Condition{qdrant.NewMatch("message_id", messageID)},
		},
		Limit: qdrant.PtrOf(uint32(1)),
	})
	if err != nil {
		return false, fmt.Errorf("failed to look up message %s: %w", messageID, err)
	}

	return len(points) > 0, nil
}

// UpsertDocuments writes document chunks with their vectors. Deterministic
// chunk IDs make repeated writes idempotent.
func (s *QdrantStore) UpsertDocuments(ctx context.Context, docs []rag.Document, vectors [][]float32) error {
	if len(docs) != len(vectors) {
		return fmt.Errorf("got %d documents and %d vectors", len(docs), len(vectors))
	}
	if len(docs) == 0 {
		return nil
	}

	points := make([]*qdrant.PointStruct, len(docs))
	for i, doc := range docs {
		payload := toPayload(doc.Metadata)
		payload["content"] = doc.Content

		points[i] = &qdrant.PointStruct{
			Id:      qdrant.NewID(doc.ID),
			Vectors: qdrant.NewVectors(vectors[i]...),
			Payload: qdrant.NewValueMap(payload),
		}
	}

	_, err := s.client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: s.collection,
		Points:         points,
		Wait:           qdrant.PtrOf(true),
	})
	if err != nil {
		return fmt.Errorf("failed to upsert %d points: %w", len(points), err)
	}

	return nil
}

// Query returns the chunks nearest to the vector, best first.
func (s *QdrantStore) Query(ctx context.Context, vector []float32, topK int, newsletterName string) ([]rag.Chunk, error) {
	query := &qdrant.QueryPoints{
		CollectionName: s.collection,
		Query:          qdrant.NewQuery(vector...),
		Limit:          qdrant.PtrOf(uint64(topK)),
		WithPayload:    qdrant.NewWithPayload(true),
	}

	if newsletterName != "" {
		query.Filter = &qdrant.Filter{
			Must: []*qdrant.Condition{qdrant.NewMatch("newsletter_name", newsletterName)},
		}
	}

	points, err := s.client.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("vector search failed: %w", err)
	}

	chunks := make([]rag.Chunk, 0, len(points))
	for _, point := range points {
		metadata := fromPayload(point.Payload)

		content, _ := metadata["content"].(string)
		delete(metadata, "content")

		chunks = append(chunks, rag.Chunk{
			Content:  content,
			Metadata: metadata,
			Score:    float64(point.Score),
		})
	}

	return chunks, nil
}

// Stats walks the collection and summarizes what it holds.
func (s *QdrantStore) Stats(ctx context.Context) (*rag.CollectionStats, error) {
	total, err := s.client.Count(ctx, &qdrant.CountPoints{
		CollectionName: s.collection,
		Exact:          qdrant.PtrOf(true),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to count points: %w", err)
	}

	stats := &rag.CollectionStats{
		TotalDocuments:         total,
		NewsletterDistribution: make(map[string]uint64),
	}

	var offset *qdrant.PointId
	for {
		points, err := s.client.Scroll(ctx, &qdrant.ScrollPoints{
			CollectionName: s.collection,
			Limit:          qdrant.PtrOf(uint32(scrollPageSize)),
			Offset:         offset,
			WithPayload:    qdrant.NewWithPayloadInclude("newsletter_name", "timestamp"),
		})
		if err != nil {
			return nil, fmt.Errorf("failed to scroll collection: %w", err)
		}

		for i, point := range points {
			// The scroll offset is inclusive, so pages after the
			// first repeat their boundary point.
			if offset != nil && i == 0 {
				continue
			}

			metadata := fromPayload(point.Payload)

			if name, ok := metadata["newsletter_name"].(string); ok && name != "" {
				stats.NewsletterDistribution[name]++
			}

			if ts, ok := metadata["timestamp"].(int64); ok && ts > 0 {
				when := time.Unix(ts, 0).UTC()
				if stats.EarliestDate.IsZero() || when.Before(stats.EarliestDate) {
					stats.EarliestDate = when
				}
				if when.After(stats.LatestDate) {
					stats.LatestDate = when
				}
			}
		}

		if len(points) < scrollPageSize {
			break
		}
		offset = points[len(points)-1].Id
	}

	return stats, nil
}

// DeleteByMessageID removes every chunk belonging to one message.
func (s *QdrantStore) DeleteByMessageID(ctx context.Context, messageID string) error {
	_, err := s.client.Delete(ctx, &qdrant.DeletePoints{
		CollectionName: s.collection,
		Points: qdrant.NewPointsSelectorFilter(&qdrant.Filter{
			Must: []*qdrant.Condition{qdrant.NewMatch("message_id", messageID)},
		}),
		Wait: qdrant.PtrOf(true),
	})
	if err != nil {
		return fmt.Errorf("failed to delete message %s: %w", messageID, err)
	}

	return nil
}

// Close releases the gRPC connection.
func (s *QdrantStore) Close() error {
	return s.client.Close()
}

package rag

import (
	"context"
	"fmt"
	"io"
	"log/slog"
)

// fakeEmbedder returns a fixed-size vector whose first component encodes the
// text length, which is enough to tell inputs apart in assertions.
type fakeEmbedder struct {
	dims     int
	err      error
	embedded []string
}

func (f *fakeEmbedder) EmbedDocuments(_ context.Context, texts []string) ([][]float32, error) {
	if f.err != nil {
		return nil, f.err
	}
	vectors := make([][]float32, len(texts))
	for i, text := range texts {
		f.embedded = append(f.embedded, text)
		vec := make([]float32, f.dims)
		vec[0] = float32(len(text))
		vectors[i] = vec
	}
	return vectors, nil
}

func (f *fakeEmbedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	vectors, err := f.EmbedDocuments(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

func (f *fakeEmbedder) Dimensions() int { return f.dims }

// fakeStore keeps documents in memory keyed by chunk ID.
type fakeStore struct {
	docs        map[string]Document
	ensured     bool
	queryResult []Chunk
	queryErr    error
	hasErr      error
	upsertErr   error
}

func newFakeStore() *fakeStore {
	return &fakeStore{docs: make(map[string]Document)}
}

func (f *fakeStore) EnsureCollection(context.Context, int) error {
	f.ensured = true
	return nil
}

func (f *fakeStore) HasDocument(_ context.Context, messageID string) (bool, error) {
	if f.hasErr != nil {
		return false, f.hasErr
	}
	for _, doc := range f.docs {
		if doc.Metadata["message_id"] == messageID {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeStore) UpsertDocuments(_ context.Context, docs []Document, vectors [][]float32) error {
	if f.upsertErr != nil {
		return f.upsertErr
	}
	if len(docs) != len(vectors) {
		return fmt.Errorf("got %d docs and %d vectors", len(docs), len(vectors))
	}
	for _, doc := range docs {
		f.docs[doc.ID] = doc
	}
	return nil
}

func (f *fakeStore) Query(context.Context, []float32, int, string) ([]Chunk, error) {
	return f.queryResult, f.queryErr
}

func (f *fakeStore) Stats(context.Context) (*CollectionStats, error) {
	return &CollectionStats{TotalDocuments: uint64(len(f.docs))}, nil
}

func (f *fakeStore) DeleteByMessageID(_ context.Context, messageID string) error {
	for id, doc := range f.docs {
		if doc.Metadata["message_id"] == messageID {
			delete(f.docs, id)
		}
	}
	return nil
}

func (f *fakeStore) Close() error { return nil }

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

package rag

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

const (
	// DefaultChunkSize is how many words go into one chunk.
	DefaultChunkSize = 512

	// DefaultChunkOverlap is how many words consecutive chunks share.
	DefaultChunkOverlap = 32
)

// CleanText normalizes whitespace for embedding: runs of spaces and tabs
// collapse to one space and blank lines are dropped.
func CleanText(text string) string {
	var lines []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.Join(strings.Fields(line), " ")
		if line != "" {
			lines = append(lines, line)
		}
	}
	return strings.Join(lines, "\n")
}

// SplitWords breaks text into word-count windows with overlap between
// consecutive chunks. Text at or under the chunk size comes back whole.
func SplitWords(text string, chunkSize, overlap int) []string {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	if overlap < 0 || overlap >= chunkSize {
		overlap = DefaultChunkOverlap
	}

	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}
	if len(words) <= chunkSize {
		return []string{strings.Join(words, " ")}
	}

	step := chunkSize - overlap
	var chunks []string
	for start := 0; start < len(words); start += step {
		end := start + chunkSize
		if end > len(words) {
			end = len(words)
		}
		chunks = append(chunks, strings.Join(words[start:end], " "))
		if end == len(words) {
			break
		}
	}

	return chunks
}

// ChunkID derives a stable UUID for one chunk of one message, so reindexing
// the same newsletter overwrites rather than duplicates.
func ChunkID(messageID string, index int) string {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(fmt.Sprintf("%s#%d", messageID, index))).String()
}

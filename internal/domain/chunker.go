package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"github.com/pkoukk/tiktoken-go"
)

const (
	// DefaultChunkSize is the target window size for oversized inputs,
	// measured in tokens (or words when the tokenizer is unavailable).
	DefaultChunkSize = 4000
	// DefaultChunkOverlap is how much adjacent windows share.
	DefaultChunkOverlap = 200
)

// Chunk represents a single window of an oversized document.
type Chunk struct {
	Ordinal int    // Sequence number (0-indexed)
	Content string // The actual text content
	Hash    string // Stable hash of the content (SHA-256)
}

// Chunker defines the interface for splitting large text into overlapping
// windows suitable for independent model calls.
type Chunker interface {
	Chunk(text string) []Chunk
	Version() string
}

// NewChunker returns a token-based chunker when the tiktoken encoding can be
// loaded, and a word-window chunker otherwise. Both honor the same size and
// overlap contract; the word fallback never splits inside a word.
func NewChunker(size, overlap int) Chunker {
	if size <= 0 {
		size = DefaultChunkSize
	}
	if overlap < 0 || overlap >= size {
		overlap = DefaultChunkOverlap
	}
	if enc, err := tiktoken.GetEncoding("cl100k_base"); err == nil {
		return &tokenChunker{enc: enc, size: size, overlap: overlap}
	}
	return &wordChunker{size: size, overlap: overlap}
}

type tokenChunker struct {
	enc     *tiktoken.Tiktoken
	size    int
	overlap int
}

func (c *tokenChunker) Version() string { return "token-cl100k" }

func (c *tokenChunker) Chunk(text string) []Chunk {
	tokens := c.enc.Encode(text, nil, nil)
	if len(tokens) == 0 {
		return nil
	}

	var chunks []Chunk
	step := c.size - c.overlap
	for start := 0; start < len(tokens); start += step {
		end := start + c.size
		if end > len(tokens) {
			end = len(tokens)
		}
		chunks = append(chunks, newChunk(len(chunks), c.enc.Decode(tokens[start:end])))
		if end == len(tokens) {
			break
		}
	}
	return chunks
}

type wordChunker struct {
	size    int
	overlap int
}

func (c *wordChunker) Version() string { return "word" }

func (c *wordChunker) Chunk(text string) []Chunk {
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}

	var chunks []Chunk
	step := c.size - c.overlap
	for start := 0; start < len(words); start += step {
		end := start + c.size
		if end > len(words) {
			end = len(words)
		}
		chunks = append(chunks, newChunk(len(chunks), strings.Join(words[start:end], " ")))
		if end == len(words) {
			break
		}
	}
	return chunks
}

func newChunk(ordinal int, content string) Chunk {
	sum := sha256.Sum256([]byte(content))
	return Chunk{
		Ordinal: ordinal,
		Content: content,
		Hash:    hex.EncodeToString(sum[:]),
	}
}

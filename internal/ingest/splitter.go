package ingest

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/adroit-club/assistant/internal/index"
)

// Chunking configuration. One content unit is one rune.
const (
	// ChunkSize is the maximum chunk length.
	ChunkSize = 1000

	// ChunkOverlap is how much consecutive chunks from the same document
	// share, for context continuity across split boundaries.
	ChunkOverlap = 200
)

// separators are tried in order: paragraph boundaries first, then lines,
// then words, then a hard rune cut as the last resort.
var separators = []string{"\n\n", "\n", " ", ""}

// Split splits a document recursively into bounded, overlapping chunks.
// Every chunk carries the parent document's metadata and a deterministic
// identifier derived from the document source and chunk position.
func Split(doc index.Document) []index.Chunk {
	pieces := splitText(doc.Content, separators)

	key := docKey(doc)
	chunks := make([]index.Chunk, 0, len(pieces))
	for i, piece := range pieces {
		metadata := make(map[string]string, len(doc.Metadata))
		for k, v := range doc.Metadata {
			metadata[k] = v
		}
		chunks = append(chunks, index.Chunk{
			ID:       fmt.Sprintf("chunk_%s_%d", key, i),
			Content:  piece,
			Metadata: metadata,
		})
	}
	return chunks
}

// SplitAll splits every document and concatenates the chunks in document
// order.
func SplitAll(docs []index.Document) []index.Chunk {
	var chunks []index.Chunk
	for _, doc := range docs {
		chunks = append(chunks, Split(doc)...)
	}
	return chunks
}

// docKey derives a stable key for a document from its source metadata,
// falling back to a content hash for documents without a source.
func docKey(doc index.Document) string {
	seed := doc.Metadata["source"]
	if seed == "" {
		seed = doc.Content
	}
	sum := sha256.Sum256([]byte(seed))
	return hex.EncodeToString(sum[:8])
}

// splitText recursively splits text using the first applicable separator,
// then greedily merges the pieces back into chunks of at most ChunkSize
// runes with ChunkOverlap runes of carry-over.
func splitText(text string, seps []string) []string {
	sep := ""
	var rest []string
	for i, s := range seps {
		if s == "" {
			sep = ""
			rest = nil
			break
		}
		if strings.Contains(text, s) {
			sep = s
			rest = seps[i+1:]
			break
		}
	}

	var splits []string
	if sep == "" {
		// No structural separator left: hard-cut by rune count.
		return hardCut(text, ChunkSize, ChunkOverlap)
	}
	splits = strings.Split(text, sep)

	var final []string
	var good []string
	for _, s := range splits {
		if runeLen(s) <= ChunkSize {
			good = append(good, s)
			continue
		}
		// Flush accumulated small pieces, then recurse into the big one
		// with the finer separators.
		final = append(final, mergeSplits(good, sep)...)
		good = nil
		final = append(final, splitText(s, rest)...)
	}
	final = append(final, mergeSplits(good, sep)...)
	return final
}

// mergeSplits greedily packs pieces into chunks of at most ChunkSize runes,
// carrying roughly ChunkOverlap runes of trailing pieces into the next
// chunk.
func mergeSplits(splits []string, sep string) []string {
	sepLen := runeLen(sep)

	var chunks []string
	var current []string
	total := 0

	joined := func(parts []string) string {
		return strings.TrimSpace(strings.Join(parts, sep))
	}

	for _, s := range splits {
		l := runeLen(s)
		extra := 0
		if len(current) > 0 {
			extra = sepLen
		}

		if total+l+extra > ChunkSize && len(current) > 0 {
			if c := joined(current); c != "" {
				chunks = append(chunks, c)
			}
			// Drop leading pieces until the carry-over fits the overlap
			// budget and the new piece fits the chunk budget.
			for len(current) > 0 &&
				(total > ChunkOverlap || total+l+sepLen > ChunkSize) {
				drop := runeLen(current[0])
				if len(current) > 1 {
					drop += sepLen
				}
				total -= drop
				current = current[1:]
			}
		}

		if len(current) > 0 {
			total += sepLen
		}
		current = append(current, s)
		total += l
	}

	if c := joined(current); c != "" {
		chunks = append(chunks, c)
	}
	return chunks
}

// hardCut slices text into windows of at most size runes, stepping by
// size-overlap so consecutive windows share overlap runes.
func hardCut(text string, size, overlap int) []string {
	runes := []rune(text)
	if len(runes) == 0 {
		return nil
	}
	if len(runes) <= size {
		if t := strings.TrimSpace(text); t != "" {
			return []string{t}
		}
		return nil
	}

	step := size - overlap
	var out []string
	for start := 0; start < len(runes); start += step {
		end := start + size
		if end > len(runes) {
			end = len(runes)
		}
		if piece := strings.TrimSpace(string(runes[start:end])); piece != "" {
			out = append(out, piece)
		}
		if end == len(runes) {
			break
		}
	}
	return out
}

func runeLen(s string) int {
	return len([]rune(s))
}

package retrieval

import (
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"
)

// minTermLen drops short words instead of keeping a stop-word list.
const minTermLen = 4

var nonWord = regexp.MustCompile(`[^\p{L}\p{N}_]+`)

// RankedChunk is a chunk with its position in the document and its score.
type RankedChunk struct {
	Index int
	Text  string
	Score int
}

// Ranker scores chunks of a document against a question.
type Ranker struct {
	ChunkSize    int
	ChunkOverlap int
	TopK         int
}

// DefaultRanker uses the stock window and top-K.
func DefaultRanker() Ranker {
	return Ranker{ChunkSize: DefaultChunkSize, ChunkOverlap: DefaultChunkOverlap, TopK: DefaultTopK}
}

// Rank returns the text of the best topK chunks of fullText, best first.
// topK <= 0 falls back to the ranker's TopK.
func (r Ranker) Rank(fullText, question string, topK int) []string {
	if topK <= 0 {
		topK = r.TopK
	}
	if topK <= 0 {
		topK = DefaultTopK
	}
	chunks, err := Chunk(fullText, r.ChunkSize, r.ChunkOverlap)
	if err != nil {
		chunks, _ = Chunk(fullText, DefaultChunkSize, DefaultChunkOverlap)
	}
	scored := Score(chunks, question)
	if len(scored) > topK {
		scored = scored[:topK]
	}
	out := make([]string, len(scored))
	for i, c := range scored {
		out[i] = c.Text
	}
	return out
}

// Rank ranks with the default window sizes.
func Rank(fullText, question string, topK int) []string {
	return DefaultRanker().Rank(fullText, question, topK)
}

// Score counts, for each chunk, how many distinct question terms it contains
// and returns the chunks sorted by descending score. Ties keep document order.
func Score(chunks []string, question string) []RankedChunk {
	terms := Terms(question)
	out := make([]RankedChunk, len(chunks))
	for i, c := range chunks {
		lc := strings.ToLower(c)
		score := 0
		for _, t := range terms {
			if strings.Contains(lc, t) {
				score++
			}
		}
		out[i] = RankedChunk{Index: i, Text: c, Score: score}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Score > out[j].Score
	})
	return out
}

// Terms lowercases the question, splits it on non-word characters and keeps
// the distinct terms of at least four characters, in first-seen order.
func Terms(question string) []string {
	parts := nonWord.Split(strings.ToLower(question), -1)
	seen := make(map[string]struct{}, len(parts))
	terms := make([]string, 0, len(parts))
	for _, p := range parts {
		if utf8.RuneCountInString(p) < minTermLen {
			continue
		}
		if _, ok := seen[p]; ok {
			continue
		}
		seen[p] = struct{}{}
		terms = append(terms, p)
	}
	return terms
}

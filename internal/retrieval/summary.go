package retrieval

import (
	"math"
	"regexp"
	"sort"
	"strings"
)

var (
	sentencePattern = regexp.MustCompile(`[^.!?]+[.!?]+`)
	tokenPattern    = regexp.MustCompile(`\p{L}+`)
)

// Summarizer picks the most representative sentences of a text by word
// frequency. Stopwords are ignored; sentence scores are normalized by the
// square root of their length.
type Summarizer struct {
	MaxSentences int
	stopwords    map[string]struct{}
}

// NewSummarizer returns a Summarizer keeping at most maxSentences sentences.
func NewSummarizer(maxSentences int) *Summarizer {
	return &Summarizer{MaxSentences: maxSentences, stopwords: defaultStopwords()}
}

// Summarize returns the selected sentences in document order, or "" when the
// summarizer is disabled or the text has no sentences.
func (s *Summarizer) Summarize(text string) string {
	if s == nil || s.MaxSentences <= 0 {
		return ""
	}
	sentences := sentencePattern.FindAllString(text, -1)
	if len(sentences) == 0 {
		return ""
	}

	freq := map[string]float64{}
	for _, sent := range sentences {
		for _, tok := range s.tokens(sent) {
			freq[tok]++
		}
	}
	maxF := 0.0
	for _, v := range freq {
		maxF = math.Max(maxF, v)
	}
	if maxF == 0 {
		return ""
	}

	type scored struct {
		idx   int
		score float64
	}
	scores := make([]scored, len(sentences))
	for i, sent := range sentences {
		toks := s.tokens(sent)
		total := 0.0
		for _, tok := range toks {
			total += freq[tok] / maxF
		}
		if len(toks) > 0 {
			total /= math.Sqrt(float64(len(toks)))
		}
		scores[i] = scored{idx: i, score: total}
	}
	sort.SliceStable(scores, func(i, j int) bool { return scores[i].score > scores[j].score })

	n := min(s.MaxSentences, len(scores))
	picked := make([]int, n)
	for i := 0; i < n; i++ {
		picked[i] = scores[i].idx
	}
	sort.Ints(picked)

	out := make([]string, 0, n)
	for _, idx := range picked {
		out = append(out, strings.TrimSpace(sentences[idx]))
	}
	return strings.Join(out, " ")
}

func (s *Summarizer) tokens(text string) []string {
	all := tokenPattern.FindAllString(strings.ToLower(text), -1)
	out := all[:0]
	for _, tok := range all {
		if _, stop := s.stopwords[tok]; stop {
			continue
		}
		out = append(out, tok)
	}
	return out
}

func defaultStopwords() map[string]struct{} {
	words := []string{
		// en
		"a", "an", "the", "and", "or", "but", "if", "then", "for", "to", "of", "in", "on", "at", "by",
		"with", "as", "is", "are", "was", "were", "be", "been", "it", "this", "that", "these", "those",
		"from", "into", "about", "than", "so", "can", "will", "not", "no",
		// pt
		"o", "os", "as", "um", "uma", "de", "do", "da", "dos", "das", "em", "no", "na", "nos", "nas",
		"e", "ou", "que", "com", "por", "para", "se", "ao", "aos", "é", "foi", "ser", "não", "mais",
	}
	m := make(map[string]struct{}, len(words))
	for _, w := range words {
		m[w] = struct{}{}
	}
	return m
}

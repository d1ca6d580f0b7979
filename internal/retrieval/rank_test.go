package retrieval

import (
	"reflect"
	"strings"
	"testing"
)

func TestTerms(t *testing.T) {
	tests := []struct {
		name     string
		question string
		want     []string
	}{
		{name: "drops short words", question: "What is the total?", want: []string{"what", "total"}},
		{name: "dedupes", question: "Total total TOTAL amount", want: []string{"total", "amount"}},
		{name: "unicode words stay whole", question: "Qual o número da nota?", want: []string{"qual", "número", "nota"}},
		{name: "empty", question: "", want: []string{}},
		{name: "only punctuation", question: "?!... --", want: []string{}},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := Terms(tt.question)
			if !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("Terms(%q) = %q, want %q", tt.question, got, tt.want)
			}
		})
	}
}

func TestScorePresenceNotFrequency(t *testing.T) {
	chunks := []string{
		"total total total total",
		"the invoice total is listed here",
	}
	got := Score(chunks, "invoice total")
	if got[0].Index != 1 || got[0].Score != 2 {
		t.Fatalf("expected chunk 1 first with score 2, got %+v", got[0])
	}
	if got[1].Score != 1 {
		t.Fatalf("repeated term must count once, got %d", got[1].Score)
	}
}

func TestRankPlacesMatchingChunkFirst(t *testing.T) {
	filler := strings.Repeat("lorem ipsum dolor sit amet. ", 100)
	text := filler + "Invoice #1042 grand total $500 due on receipt. " + filler

	got := DefaultRanker().Rank(text, "What is the total?", 5)
	if len(got) == 0 {
		t.Fatalf("expected ranked chunks")
	}
	if !strings.Contains(got[0], "total $500") {
		t.Fatalf("expected best chunk to contain the total, got %q", got[0][:80])
	}

	ctx := Assemble("", got, DefaultMaxContextChars)
	if !strings.HasPrefix(ctx, "Excerpt 1:\n") || !strings.Contains(ctx[:len("Excerpt 1:\n")+len(got[0])], "total $500") {
		t.Fatalf("expected Excerpt 1 to carry the matching chunk")
	}
}

func TestRankTopKAndEmpty(t *testing.T) {
	if got := Rank("", "anything here", 5); len(got) != 0 {
		t.Fatalf("expected empty result for empty text, got %d", len(got))
	}

	text := strings.Repeat("a", 1200*3)
	if got := Rank(text, "question", 2); len(got) != 2 {
		t.Fatalf("expected topK=2 chunks, got %d", len(got))
	}
	if got := Rank("short text", "question", 5); len(got) != 1 {
		t.Fatalf("expected all (1) chunks when fewer than topK, got %d", len(got))
	}
	if got := Rank(text, "question", 0); len(got) != 4 {
		t.Fatalf("expected default topK to return all 4 chunks, got %d", len(got))
	}
}

func TestRankZeroScoresKeepDocumentOrder(t *testing.T) {
	r := Ranker{ChunkSize: 10, ChunkOverlap: 0, TopK: 3}
	text := "aaaaaaaaaabbbbbbbbbbccccccccccdddddddddd"
	got := r.Rank(text, "nothing matches", 3)
	want := []string{"aaaaaaaaaa", "bbbbbbbbbb", "cccccccccc"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected document order %q, got %q", want, got)
	}
}

func TestRankDeterministicAndMonotonic(t *testing.T) {
	r := Ranker{ChunkSize: 20, ChunkOverlap: 5, TopK: 10}
	text := "alpha beta gamma. delta alpha omega. gamma delta alpha beta. nothing here at all. beta only."
	question := "alpha beta gamma delta"

	first := r.Rank(text, question, 10)
	for i := 0; i < 5; i++ {
		if again := r.Rank(text, question, 10); !reflect.DeepEqual(first, again) {
			t.Fatalf("ranking changed between runs")
		}
	}

	chunks, _ := Chunk(text, 20, 5)
	scored := Score(chunks, question)
	for i := 1; i < len(scored); i++ {
		if scored[i].Score > scored[i-1].Score {
			t.Fatalf("chunk with score %d ranked below score %d", scored[i].Score, scored[i-1].Score)
		}
		if scored[i].Score == scored[i-1].Score && scored[i].Index < scored[i-1].Index {
			t.Fatalf("ties must keep document order")
		}
	}
}

func TestRankerFallsBackOnInvalidWindow(t *testing.T) {
	r := Ranker{ChunkSize: 10, ChunkOverlap: 10}
	if got := r.Rank("some text about totals", "totals", 1); len(got) != 1 {
		t.Fatalf("expected default window fallback, got %d chunks", len(got))
	}
}

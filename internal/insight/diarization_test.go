package insight

import (
	"strings"
	"testing"

	"github.com/pegsys/transcript-insights/internal/transcript"
)

func TestAnalyzeDiarizationCounts(t *testing.T) {
	t.Parallel()

	corpus := transcript.NewCorpus([]transcript.Message{
		{Speaker: "Alice", Text: "How does the deploy work?"},
		{Speaker: "Bob", Text: "It runs in three stages"},
		{Speaker: "Alice", Text: "Understood, thanks"},
		{Speaker: "Bob", Text: "Any other questions?"},
		{Speaker: "Bob", Text: "We can go deeper later"},
	})

	stats := AnalyzeDiarization(corpus)
	if len(stats) != 2 {
		t.Fatalf("stats count got %d want 2", len(stats))
	}

	alice := stats[0]
	if alice.Speaker != "Alice" {
		t.Fatalf("first speaker got %q want Alice", alice.Speaker)
	}
	if alice.SpeakingPercentage != 40 {
		t.Fatalf("Alice speaking percentage got %v want 40", alice.SpeakingPercentage)
	}
	if alice.QuestionCount != 1 || alice.StatementCount != 1 {
		t.Fatalf("Alice questions/statements got %d/%d want 1/1", alice.QuestionCount, alice.StatementCount)
	}

	bob := stats[1]
	if bob.SpeakingPercentage != 60 {
		t.Fatalf("Bob speaking percentage got %v want 60", bob.SpeakingPercentage)
	}

	sum := 0.0
	for _, d := range stats {
		sum += d.SpeakingPercentage
	}
	if sum != 100 {
		t.Fatalf("speaking percentages sum got %v want 100", sum)
	}
}

func TestCountInterruptions(t *testing.T) {
	t.Parallel()

	long := strings.Repeat("word ", 12)
	msgs := []transcript.Message{
		{Speaker: "A", Text: long},
		{Speaker: "A", Text: "ok sure"},
		{Speaker: "A", Text: "a longer follow up statement here"},
		{Speaker: "A", Text: "fine"},
	}
	if got := countInterruptions(msgs); got != 1 {
		t.Fatalf("interruptions got %d want 1", got)
	}
	if got := countInterruptions(msgs[:1]); got != 0 {
		t.Fatalf("single message interruptions got %d want 0", got)
	}
}

func TestCommunicationStyleMatrix(t *testing.T) {
	t.Parallel()

	long := strings.Repeat("word ", 60)
	cases := []struct {
		name      string
		msgs      []transcript.Message
		questions int
		want      string
	}{
		{
			name: "detailed explanatory",
			msgs: []transcript.Message{{Text: long}},
			want: "detailed_explanatory",
		},
		{
			name:      "detailed inquisitive",
			msgs:      []transcript.Message{{Text: long + "?"}},
			questions: 1,
			want:      "detailed_inquisitive",
		},
		{
			name: "conversational informative",
			msgs: []transcript.Message{{Text: strings.Repeat("word ", 30)}},
			want: "conversational_informative",
		},
		{
			name:      "brief questioning",
			msgs:      []transcript.Message{{Text: "why?"}},
			questions: 1,
			want:      "brief_questioning",
		},
		{
			name: "brief direct",
			msgs: []transcript.Message{{Text: "done"}},
			want: "brief_direct",
		},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			wordCount := 0
			for _, msg := range tc.msgs {
				wordCount += transcript.WordCount(msg.Text)
			}
			if got := communicationStyle(tc.msgs, wordCount, tc.questions); got != tc.want {
				t.Fatalf("style got %q want %q", got, tc.want)
			}
		})
	}
}

func TestTechnicalVocabularyScoreExactWords(t *testing.T) {
	t.Parallel()

	if got := technicalVocabularyScore("we use docker and kubernetes daily"); got != 2.0/6.0 {
		t.Fatalf("score got %v want %v", got, 2.0/6.0)
	}
	if got := technicalVocabularyScore(""); got != 0 {
		t.Fatalf("empty score got %v want 0", got)
	}
	// Multi-word keywords never match single tokens.
	if got := technicalVocabularyScore("machine learning"); got != 0 {
		t.Fatalf("multi-word score got %v want 0", got)
	}
}

func TestDominantTopicsRanking(t *testing.T) {
	t.Parallel()

	topics := dominantTopicsFor("cloud docker kubernetes pricing")
	if len(topics) == 0 || topics[0] != "infrastructure" {
		t.Fatalf("dominant topics got %v want infrastructure first", topics)
	}
	if len(topics) > 3 {
		t.Fatalf("dominant topics got %d entries want at most 3", len(topics))
	}
}

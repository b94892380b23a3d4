package insight

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/pegsys/transcript-insights/internal/transcript"
)

type fakeGenerator struct {
	text    string
	err     error
	lastReq GenerationRequest
}

func (f *fakeGenerator) Generate(ctx context.Context, req GenerationRequest) (string, error) {
	f.lastReq = req
	return f.text, f.err
}

func insightFixture() (transcript.Corpus, TopicDiscussion) {
	corpus := transcript.NewCorpus([]transcript.Message{
		{Speaker: "Alice", Text: "The model design looks solid"},
		{Speaker: "Bob", Text: "I agree with the approach"},
		{Speaker: "Alice", Text: "We can iterate on the details"},
		{Speaker: "Bob", Text: "Let me check the numbers"},
		{Speaker: "Carol", Text: "Sounds fine"},
	})
	topic := TopicDiscussion{
		ID:           "topic_a",
		Title:        "Model Design",
		FirstMessage: 0,
		LastMessage:  4,
		MessageCount: 5,
	}
	return corpus, topic
}

func TestCollectPairsRequiresTwoMessages(t *testing.T) {
	t.Parallel()

	corpus, topic := insightFixture()
	pairs := CollectPairs(corpus, []TopicDiscussion{topic})
	if len(pairs) != 2 {
		t.Fatalf("pair count got %d want 2", len(pairs))
	}
	if pairs[0].speaker != "Alice" || pairs[1].speaker != "Bob" {
		t.Fatalf("pair order got %q, %q want Alice, Bob", pairs[0].speaker, pairs[1].speaker)
	}
	// Carol has one message and is not eligible.
	for _, pair := range pairs {
		if pair.speaker == "Carol" {
			t.Fatalf("Carol must not be eligible")
		}
	}
}

func TestGenerateUsesCapabilityText(t *testing.T) {
	t.Parallel()

	corpus, topic := insightFixture()
	pairs := CollectPairs(corpus, []TopicDiscussion{topic})
	fake := &fakeGenerator{text: "Alice drove the architecture discussion."}

	g := NewSpeakerInsightGenerator(fake, stubScorer{}, "test-model", nil)
	result := g.Generate(context.Background(), pairs[0])

	if result.Insight != "Alice drove the architecture discussion." {
		t.Fatalf("insight got %q", result.Insight)
	}
	if result.Speaker != "Alice" || result.TopicID != "topic_a" {
		t.Fatalf("identity got %q/%q", result.Speaker, result.TopicID)
	}
	if len(fake.lastReq.Messages) != 2 {
		t.Fatalf("request messages got %d want 2", len(fake.lastReq.Messages))
	}
	if fake.lastReq.MaxTokens != 100 || fake.lastReq.Model != "test-model" {
		t.Fatalf("request got max_tokens=%d model=%q", fake.lastReq.MaxTokens, fake.lastReq.Model)
	}
	if !strings.Contains(fake.lastReq.Messages[1].Content, "Speaker: Alice") {
		t.Fatalf("user prompt got %q", fake.lastReq.Messages[1].Content)
	}
}

func TestGenerateFallsBackOnError(t *testing.T) {
	t.Parallel()

	corpus, topic := insightFixture()
	pairs := CollectPairs(corpus, []TopicDiscussion{topic})
	fake := &fakeGenerator{err: errors.New("quota exceeded")}

	g := NewSpeakerInsightGenerator(fake, nil, "", nil)
	result := g.Generate(context.Background(), pairs[0])
	if !strings.Contains(result.Insight, "Alice") || !strings.Contains(result.Insight, "Model Design") {
		t.Fatalf("fallback insight got %q", result.Insight)
	}
}

func TestGenerateFallsBackOnEmptyText(t *testing.T) {
	t.Parallel()

	corpus, topic := insightFixture()
	pairs := CollectPairs(corpus, []TopicDiscussion{topic})
	fake := &fakeGenerator{text: "   "}

	g := NewSpeakerInsightGenerator(fake, nil, "", nil)
	result := g.Generate(context.Background(), pairs[0])
	if strings.TrimSpace(result.Insight) == "" {
		t.Fatalf("insight must never be empty")
	}
	if result.Insight == "   " {
		t.Fatalf("blank capability output must not be used")
	}
}

func TestHeuristicInsightBranches(t *testing.T) {
	t.Parallel()

	long := strings.Repeat("x", 150)
	detailed := heuristicInsight("Alice", "Scaling", []transcript.Message{{Text: long}})
	if !strings.Contains(detailed, "detailed explanations") {
		t.Fatalf("detailed branch got %q", detailed)
	}

	many := make([]transcript.Message, 6)
	for i := range many {
		many[i] = transcript.Message{Text: "short note"}
	}
	engaged := heuristicInsight("Bob", "Scaling", many)
	if !strings.Contains(engaged, "highly engaged") {
		t.Fatalf("engaged branch got %q", engaged)
	}

	base := heuristicInsight("Carol", "Scaling", []transcript.Message{{Text: "ok"}, {Text: "sure"}})
	if !strings.Contains(base, "contributed to the conversation") {
		t.Fatalf("base branch got %q", base)
	}
}

func TestExpertiseLevel(t *testing.T) {
	t.Parallel()

	if got := expertiseLevel("docker kubernetes cloud"); got != ExpertiseExpert {
		t.Fatalf("expert got %q", got)
	}
	if got := expertiseLevel("the team met to plan the offsite next month near docker"); got != ExpertiseIntermediate {
		t.Fatalf("intermediate got %q", got)
	}
	if got := expertiseLevel("hello there friend"); got != ExpertiseNovice {
		t.Fatalf("novice got %q", got)
	}
	if got := expertiseLevel(""); got != ExpertiseNovice {
		t.Fatalf("empty got %q", got)
	}
}

func TestEngagementLevel(t *testing.T) {
	t.Parallel()

	cases := []struct {
		speaker, topic int
		want           string
	}{
		{3, 4, EngagementDominant},
		{2, 4, EngagementHigh},
		{1, 4, EngagementMedium},
		{1, 10, EngagementLow},
		{0, 0, EngagementLow},
	}
	for _, tc := range cases {
		if got := engagementLevel(tc.speaker, tc.topic); got != tc.want {
			t.Fatalf("engagementLevel(%d, %d) got %q want %q", tc.speaker, tc.topic, got, tc.want)
		}
	}
}

func TestInsightConfidence(t *testing.T) {
	t.Parallel()

	large := make([]transcript.Message, 5)
	for i := range large {
		large[i] = transcript.Message{Text: strings.Repeat("y", 100)}
	}
	if got := insightConfidence(large); got != 1 {
		t.Fatalf("saturated confidence got %v want 1", got)
	}

	small := []transcript.Message{{Text: strings.Repeat("y", 50)}}
	if got := insightConfidence(small); got != 0.15 {
		t.Fatalf("small confidence got %v want 0.15", got)
	}
}

func TestSupportingEvidence(t *testing.T) {
	t.Parallel()

	msgs := []transcript.Message{
		{Text: "first"},
		{Text: strings.Repeat("z", 200)},
		{Text: "third"},
		{Text: "fourth"},
	}
	evidence := supportingEvidence(msgs)
	if len(evidence) != 3 {
		t.Fatalf("evidence count got %d want 3", len(evidence))
	}
	for _, item := range evidence {
		if !strings.HasSuffix(item, "...") {
			t.Fatalf("evidence %q missing ellipsis", item)
		}
	}
	if got := len([]rune(evidence[1])); got != 153 {
		t.Fatalf("truncated evidence length got %d want 153", got)
	}
}

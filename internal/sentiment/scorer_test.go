package sentiment

import "testing"

func TestScoreEmptyText(t *testing.T) {
	t.Parallel()

	s := New()
	if p, sub := s.Score(""); p != 0 || sub != 0 {
		t.Fatalf("empty text got (%v, %v) want (0, 0)", p, sub)
	}
	if p, sub := s.Score("   "); p != 0 || sub != 0 {
		t.Fatalf("blank text got (%v, %v) want (0, 0)", p, sub)
	}
}

func TestScoreNoLexiconHits(t *testing.T) {
	t.Parallel()

	if p, sub := New().Score("the meeting starts at noon"); p != 0 || sub != 0 {
		t.Fatalf("neutral text got (%v, %v) want (0, 0)", p, sub)
	}
}

func TestScorePositive(t *testing.T) {
	t.Parallel()

	p, sub := New().Score("This is great work")
	if p != 0.8 {
		t.Fatalf("polarity got %v want 0.8", p)
	}
	if sub != 0.75 {
		t.Fatalf("subjectivity got %v want 0.75", sub)
	}
}

func TestScoreNegative(t *testing.T) {
	t.Parallel()

	p, _ := New().Score("The rollout was terrible")
	if p != -1.0 {
		t.Fatalf("polarity got %v want -1.0", p)
	}
}

func TestScoreAveragesHits(t *testing.T) {
	t.Parallel()

	// good (0.7) and bad (-0.7) average to zero.
	p, _ := New().Score("good parts and bad parts")
	if p != 0 {
		t.Fatalf("polarity got %v want 0", p)
	}
}

func TestScoreNegation(t *testing.T) {
	t.Parallel()

	p, _ := New().Score("this is not good")
	want := 0.7 * negationFactor
	if p != want {
		t.Fatalf("negated polarity got %v want %v", p, want)
	}
}

func TestScoreContractionNegation(t *testing.T) {
	t.Parallel()

	p, _ := New().Score("I don't like it")
	want := 0.3 * negationFactor
	if p != want {
		t.Fatalf("contraction negation got %v want %v", p, want)
	}
}

func TestScorePureAndDeterministic(t *testing.T) {
	t.Parallel()

	s := New()
	text := "a great result despite a slow start"
	p1, s1 := s.Score(text)
	p2, s2 := s.Score(text)
	if p1 != p2 || s1 != s2 {
		t.Fatalf("scores differ across calls: (%v, %v) vs (%v, %v)", p1, s1, p2, s2)
	}
}

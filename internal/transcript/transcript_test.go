package transcript

import (
	"testing"
)

func TestNewCorpusRosterOrder(t *testing.T) {
	t.Parallel()

	corpus := NewCorpus([]Message{
		{Speaker: "Alice", Text: "hello"},
		{Speaker: "Bob", Text: "hi"},
		{Speaker: "Alice", Text: "again"},
		{Speaker: "Carol", Text: "hey"},
	})

	roster := corpus.Roster()
	if len(roster) != 3 {
		t.Fatalf("roster size got %d want 3", len(roster))
	}
	want := []string{"Alice", "Bob", "Carol"}
	for i, speaker := range want {
		if roster[i] != speaker {
			t.Fatalf("roster[%d] got %q want %q", i, roster[i], speaker)
		}
	}
}

func TestCorpusSliceInclusive(t *testing.T) {
	t.Parallel()

	corpus := NewCorpus([]Message{
		{Speaker: "A", Text: "one"},
		{Speaker: "B", Text: "two"},
		{Speaker: "A", Text: "three"},
		{Speaker: "B", Text: "four"},
	})

	slice := corpus.Slice(1, 2)
	if len(slice) != 2 {
		t.Fatalf("slice length got %d want 2", len(slice))
	}
	if slice[0].Text != "two" || slice[1].Text != "three" {
		t.Fatalf("slice contents got %q, %q", slice[0].Text, slice[1].Text)
	}
}

func TestParseTimestampLayouts(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name  string
		value string
		ok    bool
	}{
		{"rfc3339", "2024-01-15T10:00:00Z", true},
		{"space separated", "2024-01-15 10:00:00", true},
		{"twelve hour", "2024-01-15 3:04 PM", true},
		{"garbage", "yesterday at noon", false},
		{"empty", "", false},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if _, ok := ParseTimestamp(tc.value); ok != tc.ok {
				t.Fatalf("ParseTimestamp(%q) ok got %v want %v", tc.value, ok, tc.ok)
			}
		})
	}
}

func TestDurationMinutes(t *testing.T) {
	t.Parallel()

	if got := DurationMinutes("2024-01-15T10:00:00Z", "2024-01-15T10:30:00Z"); got != 30 {
		t.Fatalf("duration got %v want 30", got)
	}
	if got := DurationMinutes("not a time", "2024-01-15T10:30:00Z"); got != 0 {
		t.Fatalf("unparseable start got %v want 0", got)
	}
	if got := DurationMinutes("2024-01-15T11:00:00Z", "2024-01-15T10:00:00Z"); got != 0 {
		t.Fatalf("negative span got %v want 0", got)
	}
}

func TestWordCount(t *testing.T) {
	t.Parallel()

	if got := WordCount("  two   words "); got != 2 {
		t.Fatalf("word count got %d want 2", got)
	}
	if got := WordCount(""); got != 0 {
		t.Fatalf("empty word count got %d want 0", got)
	}
}

package insight

import (
	"strings"

	"github.com/pegsys/transcript-insights/internal/transcript"
)

const (
	excerptMaxLen  = 200
	maxKeyPoints   = 5
	maxDecisions   = 3
	maxActionItems = 5
	keyPointMinLen = 100
)

var decisionCues = []string{"decided", "agreed", "conclusion", "final", "settled"}

var actionCues = []string{"will", "should", "need to", "going to", "plan to", "next step"}

// KeyContent is the extracted substance of one topic.
type KeyContent struct {
	KeyPoints   []string
	Decisions   []string
	ActionItems []string
}

// ExtractKeyContent classifies each message non-exclusively as a
// decision, an action item, and/or a key point, preserving encounter
// order and capping each list.
func ExtractKeyContent(messages []transcript.Message) KeyContent {
	content := KeyContent{
		KeyPoints:   []string{},
		Decisions:   []string{},
		ActionItems: []string{},
	}

	for _, msg := range messages {
		lowered := strings.ToLower(msg.Text)
		excerpt := truncateRunes(msg.Text, excerptMaxLen)

		if len(content.Decisions) < maxDecisions && containsAnyCue(lowered, decisionCues) {
			content.Decisions = append(content.Decisions, excerpt)
		}
		if len(content.ActionItems) < maxActionItems && containsAnyCue(lowered, actionCues) {
			content.ActionItems = append(content.ActionItems, excerpt)
		}
		if len(content.KeyPoints) < maxKeyPoints &&
			len([]rune(msg.Text)) > keyPointMinLen &&
			(matchesKeyword(lowered, "important") || matchesKeyword(lowered, "key")) {
			content.KeyPoints = append(content.KeyPoints, excerpt)
		}
	}

	return content
}

func containsAnyCue(loweredText string, cues []string) bool {
	for _, cue := range cues {
		if matchesKeyword(loweredText, cue) {
			return true
		}
	}
	return false
}

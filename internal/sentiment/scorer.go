// Package sentiment provides the local lexicon-based scoring
// capability used when no external sentiment service is configured.
package sentiment

import (
	"strings"
	"unicode"
)

// entry holds per-word polarity in [-1,1] and subjectivity in [0,1].
type entry struct {
	polarity     float64
	subjectivity float64
}

// lexicon is a compact pattern-style word list. Scores follow the
// conventional polarity/subjectivity weighting of opinion lexicons.
var lexicon = map[string]entry{
	"good":        {0.7, 0.6},
	"great":       {0.8, 0.75},
	"excellent":   {1.0, 1.0},
	"awesome":     {1.0, 1.0},
	"amazing":     {0.6, 0.9},
	"love":        {0.5, 0.6},
	"like":        {0.3, 0.4},
	"best":        {1.0, 0.3},
	"better":      {0.5, 0.5},
	"happy":       {0.8, 1.0},
	"excited":     {0.34, 1.0},
	"glad":        {0.5, 1.0},
	"perfect":     {1.0, 1.0},
	"nice":        {0.6, 1.0},
	"helpful":     {0.4, 0.3},
	"useful":      {0.3, 0.2},
	"impressive":  {0.9, 1.0},
	"solid":       {0.3, 0.2},
	"clear":       {0.15, 0.35},
	"agree":       {0.3, 0.4},
	"easy":        {0.4333, 0.8333},
	"fast":        {0.2, 0.5},
	"strong":      {0.35, 0.55},
	"win":         {0.6, 0.7},
	"success":     {0.5, 0.5},
	"successful":  {0.55, 0.65},
	"improve":     {0.4, 0.4},
	"improved":    {0.45, 0.45},
	"promising":   {0.5, 0.8},
	"interesting": {0.5, 0.5},
	"confident":   {0.4, 0.7},

	"bad":           {-0.7, 0.6667},
	"terrible":      {-1.0, 1.0},
	"awful":         {-1.0, 1.0},
	"horrible":      {-1.0, 1.0},
	"worst":         {-1.0, 0.3},
	"worse":         {-0.5, 0.5},
	"hate":          {-0.8, 0.9},
	"angry":         {-0.5, 1.0},
	"sad":           {-0.5, 1.0},
	"worried":       {-0.3, 0.6},
	"worry":         {-0.3, 0.6},
	"concern":       {-0.2, 0.5},
	"concerned":     {-0.25, 0.6},
	"problem":       {-0.3, 0.4},
	"problems":      {-0.3, 0.4},
	"issue":         {-0.2, 0.3},
	"issues":        {-0.2, 0.3},
	"broken":        {-0.4, 0.5},
	"fail":          {-0.5, 0.5},
	"failed":        {-0.55, 0.55},
	"failure":       {-0.6, 0.6},
	"slow":          {-0.3, 0.4},
	"difficult":     {-0.5, 1.0},
	"hard":          {-0.2917, 0.5417},
	"wrong":         {-0.5, 0.5},
	"risk":          {-0.2, 0.4},
	"risky":         {-0.3, 0.6},
	"expensive":     {-0.25, 0.65},
	"disappointed":  {-0.6, 0.75},
	"disappointing": {-0.65, 0.8},
	"frustrated":    {-0.5, 0.85},
	"tired":         {-0.3, 0.6},
	"unclear":       {-0.15, 0.35},
	"confusing":     {-0.35, 0.65},
	"blocked":       {-0.3, 0.4},
}

var negations = map[string]struct{}{
	"not": {}, "no": {}, "never": {}, "cannot": {}, "isnt": {}, "dont": {},
	"doesnt": {}, "wont": {}, "didnt": {}, "couldnt": {}, "wasnt": {},
}

// negationFactor mirrors the conventional pattern-analyzer treatment:
// a negated word contributes its polarity scaled by -0.5.
const negationFactor = -0.5

// Scorer is a pure, deterministic polarity/subjectivity scorer.
// The zero value is ready to use.
type Scorer struct{}

// New returns a lexicon scorer.
func New() *Scorer { return &Scorer{} }

// Score averages lexicon hits over the text. Empty text or text with
// no lexicon words scores (0, 0); Score never fails.
func (s *Scorer) Score(text string) (polarity, subjectivity float64) {
	words := tokenize(text)
	if len(words) == 0 {
		return 0, 0
	}

	polaritySum := 0.0
	subjectivitySum := 0.0
	hits := 0
	for i, word := range words {
		e, ok := lexicon[word]
		if !ok {
			continue
		}
		hits++
		wordPolarity := e.polarity
		if i > 0 {
			if _, negated := negations[words[i-1]]; negated {
				wordPolarity *= negationFactor
			}
		}
		polaritySum += wordPolarity
		subjectivitySum += e.subjectivity
	}
	if hits == 0 {
		return 0, 0
	}
	return polaritySum / float64(hits), subjectivitySum / float64(hits)
}

// tokenize lower-cases and strips everything except letters, folding
// contractions ("don't" -> "dont") so negation lookup stays simple.
func tokenize(text string) []string {
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && r != '\''
	})
	words := make([]string, 0, len(fields))
	for _, f := range fields {
		f = strings.ReplaceAll(f, "'", "")
		if f != "" {
			words = append(words, f)
		}
	}
	return words
}

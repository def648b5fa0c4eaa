// Package answer defines the closed answer enumeration and the label decode
// boundary that maps questionnaire labels onto it.
package answer

import "strings"

// Kind discriminates the answer variants.
type Kind int

const (
	// KindUnanswered marks a question the respondent skipped. Scoring counts
	// it as 0.0 rather than dropping it.
	KindUnanswered Kind = iota
	// KindNotApplicable excludes a question from its level's denominator.
	KindNotApplicable
	// KindApplicable carries a normalized score in [0,1].
	KindApplicable
)

// Value is a decoded answer. The zero value is Unanswered.
type Value struct {
	Kind  Kind
	Score float64
}

// Unanswered is the sentinel for a skipped question.
var Unanswered = Value{Kind: KindUnanswered}

// NotApplicable is the sentinel for a question marked not applicable.
var NotApplicable = Value{Kind: KindNotApplicable}

// Applicable builds an applicable answer with the given normalized score.
func Applicable(score float64) Value {
	return Value{Kind: KindApplicable, Score: score}
}

// Set maps question ids to decoded answers. Questions absent from the set
// are unanswered.
type Set map[string]Value

// Questionnaire labels of the five-point ordinal scale. "In wenigen Fällen"
// is the historical 0.25 variant kept so old exports retain their meaning.
var labelScores = map[string]float64{
	"gar nicht":             0.0,
	"in wenigen fällen":     0.25,
	"in ein paar fällen":    0.5,
	"in den meisten fällen": 0.75,
	"vollständig":           1.0,
}

const notApplicableLabel = "nicht anwendbar"

// Decode maps a questionnaire label to an answer value. recognized is false
// for free-text drift; such input degrades conservatively to a score of 0.0
// and the caller is expected to log it.
func Decode(label string) (v Value, recognized bool) {
	norm := strings.ToLower(strings.TrimSpace(label))
	if norm == "" {
		return Unanswered, true
	}
	if norm == notApplicableLabel {
		return NotApplicable, true
	}
	if score, ok := labelScores[norm]; ok {
		return Applicable(score), true
	}
	return Applicable(0.0), false
}

// Labels returns the known applicable labels in ascending score order,
// for presentation layers that render the scale.
func Labels() []string {
	return []string{
		"Gar nicht",
		"In wenigen Fällen",
		"In ein paar Fällen",
		"In den meisten Fällen",
		"Vollständig",
	}
}

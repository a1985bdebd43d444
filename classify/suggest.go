package classify

import (
	"strings"

	"github.com/jbrukh/bayesian"
	"github.com/robinvdvleuten/compta/ledger"
)

// Suggester proposes a category for a label, learned from the labels of
// existing entries.
type Suggester struct {
	classifier *bayesian.Classifier
}

// TrainSuggester learns from entries. It reports false when entries span fewer
// than two categories, which is not enough to tell categories apart.
func TrainSuggester(entries []ledger.Entry) (*Suggester, bool) {
	var classes []bayesian.Class
	seen := make(map[ledger.Category]bool)
	for _, e := range entries {
		if !seen[e.Category] {
			seen[e.Category] = true
			classes = append(classes, bayesian.Class(e.Category))
		}
	}
	if len(classes) < 2 {
		return nil, false
	}

	classifier := bayesian.NewClassifier(classes...)
	for _, e := range entries {
		if words := tokens(e.Label); len(words) > 0 {
			classifier.Learn(words, bayesian.Class(e.Category))
		}
	}
	return &Suggester{classifier: classifier}, true
}

// Suggest returns the most likely category for label. It reports false when
// the label has no known words or no category clearly wins.
func (s *Suggester) Suggest(label string) (ledger.Category, bool) {
	words := tokens(label)
	if len(words) == 0 {
		return "", false
	}
	_, best, strict := s.classifier.LogScores(words)
	if !strict {
		return "", false
	}
	return ledger.Category(s.classifier.Classes[best]), true
}

// tokens splits a label into normalized words, dropping one-letter words.
func tokens(label string) []string {
	var out []string
	for _, w := range strings.Fields(Normalize(label)) {
		if len(w) > 1 {
			out = append(out, w)
		}
	}
	return out
}

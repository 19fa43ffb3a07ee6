// internal/lifecycle/quiz.go
package lifecycle

import (
	"fmt"
	"sort"
	"strings"

	"application-gateway/internal/common/logger"
)

// AnswerKey maps assessment-question keys to canonical choice labels, plus
// a synonym table folding free-text phrases onto those labels. Immutable
// configuration, not runtime state.
type AnswerKey struct {
	Canonical map[string]string
	Synonyms  map[string]string
}

// DefaultAnswerKey returns the answer key for the current staff quiz.
func DefaultAnswerKey() AnswerKey {
	return AnswerKey{
		Canonical: map[string]string{
			"theory1": "B",
			"theory2": "A",
			"theory3": "C",
		},
		Synonyms: map[string]string{
			"ban":      "B",
			"banned":   "B",
			"warn":     "A",
			"warning":  "A",
			"mute":     "C",
			"muted":    "C",
			"timeout":  "C",
			"time out": "C",
		},
	}
}

// Scorer grades assessment answers against an AnswerKey. Pure and
// deterministic; unknown question keys are skipped with a diagnostic.
type Scorer struct {
	key    AnswerKey
	logger logger.Logger
}

func NewScorer(key AnswerKey, log logger.Logger) *Scorer {
	return &Scorer{key: key, logger: log}
}

// Score grades every answer that has a canonical entry in the key. Keys
// are processed in sorted order so the report is stable. A non-string
// answer scores as "N/A" and incorrect rather than failing the operation.
func (s *Scorer) Score(answers map[string]interface{}) []QuestionScore {
	keys := make([]string, 0, len(answers))
	for k := range answers {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	results := make([]QuestionScore, 0, len(keys))
	for _, k := range keys {
		canonical, ok := s.key.Canonical[k]
		if !ok {
			s.logger.Debug("no canonical answer for question, skipping", map[string]interface{}{
				"questionKey": k,
			})
			continue
		}

		raw, isString := answers[k].(string)
		if !isString {
			results = append(results, QuestionScore{
				Key:              k,
				RawAnswer:        fmt.Sprintf("%v", answers[k]),
				NormalizedAnswer: "N/A",
				Correct:          false,
			})
			continue
		}

		normalized := s.normalize(raw)
		results = append(results, QuestionScore{
			Key:              k,
			RawAnswer:        raw,
			NormalizedAnswer: normalized,
			Correct:          strings.EqualFold(normalized, canonical),
		})
	}

	return results
}

// normalize trims and lowercases the raw answer, folds it through the
// synonym table when a mapping exists, and otherwise uppercases it so a
// bare choice letter compares cleanly.
func (s *Scorer) normalize(raw string) string {
	folded := strings.ToLower(strings.TrimSpace(raw))
	if label, ok := s.key.Synonyms[folded]; ok {
		return label
	}
	return strings.ToUpper(strings.TrimSpace(raw))
}

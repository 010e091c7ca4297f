// Package feedback turns the free-text output of the review tool into a
// domain.Scorecard.
//
// The review tool has no versioned output format, so everything that knows
// about its wording lives in this package. Extraction is lenient: anything
// that cannot be recognized defaults to zero or empty and never fails.
package feedback

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/kitbuilder587/skill-optimizer/internal/domain"
)

const (
	suggestionsMarker = "Suggestions:"
	averageMarker     = "Average Score:"
	maxScore          = 100
)

var (
	averageScoreRe     = regexp.MustCompile(`Average Score:\s*(\d+)%`)
	descriptionScoreRe = regexp.MustCompile(`Description:\s*(\d+)%`)
	contentScoreRe     = regexp.MustCompile(`Content:\s*(\d+)%`)

	// порядок важен: ошибки добавляются по паттернам, а не по позиции в тексте
	validationErrorRes = []*regexp.Regexp{
		regexp.MustCompile(`(?i)Error:.*`),
		regexp.MustCompile(`(?i)Validation failed:.*`),
		regexp.MustCompile(`(?i)Invalid.*`),
		regexp.MustCompile(`(?i)Missing required field.*`),
	}
)

// Score is a parsed percentage together with whether the report actually
// contained it.
type Score struct {
	Value      int
	Recognized bool
}

// Extraction is the strict view of a report: the scorecard plus which of
// the scores were really present.
type Extraction struct {
	Scorecard   domain.Scorecard
	Average     Score
	Description Score
	Content     Score
}

// Unrecognized lists the names of scores that fell back to the default.
func (e Extraction) Unrecognized() []string {
	var missing []string
	if !e.Average.Recognized {
		missing = append(missing, "average")
	}
	if !e.Description.Recognized {
		missing = append(missing, "description")
	}
	if !e.Content.Recognized {
		missing = append(missing, "content")
	}
	return missing
}

// Extract parses a raw report into a scorecard. It is pure and never fails;
// a missing score is indistinguishable from a reported 0%.
func Extract(report domain.RawReport) domain.Scorecard {
	return Inspect(report).Scorecard
}

// Inspect does the same work as Extract but keeps track of which scores were
// found in the text.
func Inspect(report domain.RawReport) Extraction {
	text := string(report)

	avg := findScore(averageScoreRe, text)
	desc := findScore(descriptionScoreRe, text)
	content := findScore(contentScoreRe, text)

	return Extraction{
		Scorecard: domain.Scorecard{
			AverageScore:     avg.Value,
			DescriptionScore: desc.Value,
			ContentScore:     content.Value,
			ValidationErrors: findValidationErrors(text),
			Suggestions:      findSuggestions(text),
			RawText:          report,
		},
		Average:     avg,
		Description: desc,
		Content:     content,
	}
}

func findScore(re *regexp.Regexp, text string) Score {
	m := re.FindStringSubmatch(text)
	if m == nil {
		return Score{}
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		// переполнение int - считаем как нераспознанное значение
		return Score{}
	}
	if n > maxScore {
		n = maxScore
	}
	return Score{Value: n, Recognized: true}
}

func findValidationErrors(text string) []string {
	var errs []string
	seen := make(map[string]struct{})

	for _, re := range validationErrorRes {
		for _, match := range re.FindAllString(text, -1) {
			e := strings.TrimSpace(match)
			if e == "" {
				continue
			}
			if _, dup := seen[e]; dup {
				continue
			}
			seen[e] = struct{}{}
			errs = append(errs, e)
		}
	}
	return errs
}

// findSuggestions reads bullet lines between "Suggestions:" and the next
// "Average Score:" (or the end of the report).
func findSuggestions(text string) []string {
	start := strings.Index(text, suggestionsMarker)
	if start == -1 {
		return nil
	}
	section := text[start+len(suggestionsMarker):]
	if end := strings.Index(section, averageMarker); end != -1 {
		section = section[:end]
	}

	var suggestions []string
	for _, line := range strings.Split(section, "\n") {
		line = strings.TrimSpace(line)
		if !strings.HasPrefix(line, "-") {
			continue
		}
		suggestions = append(suggestions, strings.TrimSpace(line[1:]))
	}
	return suggestions
}

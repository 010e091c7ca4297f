package domain

// RawReport - stdout одного запуска review-команды, как есть.
type RawReport string

type Scorecard struct {
	AverageScore     int
	DescriptionScore int
	ContentScore     int
	ValidationErrors []string
	Suggestions      []string
	RawText          RawReport
}

func (s *Scorecard) HasValidationErrors() bool {
	return len(s.ValidationErrors) > 0
}

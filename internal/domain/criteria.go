package domain

// Thresholds - критерии приемки скилла.
type Thresholds struct {
	MaxValidationErrors int
	DescriptionScore    int // требуется точное совпадение
	MinContentScore     int
}

func DefaultThresholds() Thresholds {
	return Thresholds{
		MaxValidationErrors: 0,
		DescriptionScore:    100,
		MinContentScore:     90,
	}
}

type Verdict struct {
	NoErrors           bool
	DescriptionPerfect bool
	ContentAcceptable  bool
	OverallPass        bool

	Thresholds Thresholds
}

func (t Thresholds) Evaluate(sc Scorecard) Verdict {
	v := Verdict{
		NoErrors:           len(sc.ValidationErrors) <= t.MaxValidationErrors,
		DescriptionPerfect: sc.DescriptionScore == t.DescriptionScore,
		ContentAcceptable:  sc.ContentScore >= t.MinContentScore,
		Thresholds:         t,
	}
	v.OverallPass = v.NoErrors && v.DescriptionPerfect && v.ContentAcceptable
	return v
}

func Evaluate(sc Scorecard) Verdict {
	return DefaultThresholds().Evaluate(sc)
}

// FailedCriteria возвращает имена не пройденных критериев (для логов и метрик)
func (v Verdict) FailedCriteria() []string {
	var failed []string
	if !v.NoErrors {
		failed = append(failed, CriterionNoErrors)
	}
	if !v.DescriptionPerfect {
		failed = append(failed, CriterionDescription)
	}
	if !v.ContentAcceptable {
		failed = append(failed, CriterionContent)
	}
	return failed
}

const (
	CriterionNoErrors    = "no_validation_errors"
	CriterionDescription = "description_score"
	CriterionContent     = "content_score"
)

package domain

import (
	"reflect"
	"testing"
)

func TestThresholds_Evaluate(t *testing.T) {
	tests := []struct {
		name      string
		scorecard Scorecard
		want      Verdict
	}{
		{
			name: "all criteria met",
			scorecard: Scorecard{
				AverageScore:     87,
				DescriptionScore: 100,
				ContentScore:     92,
			},
			want: Verdict{NoErrors: true, DescriptionPerfect: true, ContentAcceptable: true, OverallPass: true},
		},
		{
			name: "content exactly 90 passes",
			scorecard: Scorecard{
				DescriptionScore: 100,
				ContentScore:     90,
			},
			want: Verdict{NoErrors: true, DescriptionPerfect: true, ContentAcceptable: true, OverallPass: true},
		},
		{
			name: "content 89 fails",
			scorecard: Scorecard{
				DescriptionScore: 100,
				ContentScore:     89,
			},
			want: Verdict{NoErrors: true, DescriptionPerfect: true, ContentAcceptable: false, OverallPass: false},
		},
		{
			name: "description 99 fails",
			scorecard: Scorecard{
				DescriptionScore: 99,
				ContentScore:     100,
			},
			want: Verdict{NoErrors: true, DescriptionPerfect: false, ContentAcceptable: true, OverallPass: false},
		},
		{
			name: "validation error fails",
			scorecard: Scorecard{
				DescriptionScore: 100,
				ContentScore:     100,
				ValidationErrors: []string{"Error: missing frontmatter"},
			},
			want: Verdict{NoErrors: false, DescriptionPerfect: true, ContentAcceptable: true, OverallPass: false},
		},
		{
			name:      "zero scorecard fails everything but errors",
			scorecard: Scorecard{},
			want:      Verdict{NoErrors: true, DescriptionPerfect: false, ContentAcceptable: false, OverallPass: false},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.want.Thresholds = DefaultThresholds()
			got := DefaultThresholds().Evaluate(tt.scorecard)
			if got != tt.want {
				t.Errorf("Evaluate() = %+v, want %+v", got, tt.want)
			}
			if pkg := Evaluate(tt.scorecard); pkg != got {
				t.Errorf("Evaluate() package func = %+v, want %+v", pkg, got)
			}
		})
	}
}

func TestThresholds_Custom(t *testing.T) {
	th := Thresholds{MaxValidationErrors: 1, DescriptionScore: 80, MinContentScore: 50}
	sc := Scorecard{
		DescriptionScore: 80,
		ContentScore:     50,
		ValidationErrors: []string{"Invalid name"},
	}

	v := th.Evaluate(sc)
	if !v.OverallPass {
		t.Errorf("expected pass with relaxed thresholds, got %+v", v)
	}
	if v.Thresholds != th {
		t.Errorf("Verdict.Thresholds = %+v, want %+v", v.Thresholds, th)
	}
}

func TestVerdict_FailedCriteria(t *testing.T) {
	tests := []struct {
		name    string
		verdict Verdict
		want    []string
	}{
		{
			name:    "passing verdict has no failures",
			verdict: Verdict{NoErrors: true, DescriptionPerfect: true, ContentAcceptable: true, OverallPass: true},
			want:    nil,
		},
		{
			name:    "all failing",
			verdict: Verdict{},
			want:    []string{CriterionNoErrors, CriterionDescription, CriterionContent},
		},
		{
			name:    "content only",
			verdict: Verdict{NoErrors: true, DescriptionPerfect: true},
			want:    []string{CriterionContent},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.verdict.FailedCriteria(); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("FailedCriteria() = %v, want %v", got, tt.want)
			}
		})
	}
}

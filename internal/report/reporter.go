// Package report renders review results for a human operator.
package report

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/kitbuilder587/skill-optimizer/internal/domain"
)

const separatorWidth = 60

type styles struct {
	heading lipgloss.Style
	pass    lipgloss.Style
	fail    lipgloss.Style
	muted   lipgloss.Style
}

// стили привязаны к writer'у: в pipe/файл lipgloss пишет plain text
func newStyles(w io.Writer) styles {
	r := lipgloss.NewRenderer(w)
	return styles{
		heading: r.NewStyle().Bold(true),
		pass:    r.NewStyle().Bold(true).Foreground(lipgloss.Color("10")),
		fail:    r.NewStyle().Bold(true).Foreground(lipgloss.Color("9")),
		muted:   r.NewStyle().Faint(true),
	}
}

type Reporter struct{}

func New() *Reporter {
	return &Reporter{}
}

// Render writes scores, validation errors, criteria status and, for a
// failing verdict, the suggestions.
func (r *Reporter) Render(w io.Writer, sc domain.Scorecard, v domain.Verdict) error {
	st := newStyles(w)
	var sb strings.Builder

	sb.WriteString(st.heading.Render("Scores:") + "\n")
	fmt.Fprintf(&sb, "  Average: %d%%\n", sc.AverageScore)
	fmt.Fprintf(&sb, "  Description: %d%%\n", sc.DescriptionScore)
	fmt.Fprintf(&sb, "  Content: %d%%\n", sc.ContentScore)

	sb.WriteString("\n")
	if len(sc.ValidationErrors) == 0 {
		sb.WriteString(st.heading.Render("Validation Errors:") + " None\n")
	} else {
		sb.WriteString(st.heading.Render("Validation Errors:") + "\n")
		for i, e := range sc.ValidationErrors {
			fmt.Fprintf(&sb, "  %d. %s\n", i+1, e)
		}
	}

	th := v.Thresholds
	sb.WriteString("\n" + st.heading.Render("Target Criteria Status:") + "\n")
	fmt.Fprintf(&sb, "  No validation errors: %s (currently %d)\n",
		st.status(v.NoErrors), len(sc.ValidationErrors))
	fmt.Fprintf(&sb, "  Description score %d%%: %s (currently %d%%)\n",
		th.DescriptionScore, st.status(v.DescriptionPerfect), sc.DescriptionScore)
	fmt.Fprintf(&sb, "  Content score ≥ %d%%: %s (currently %d%%)\n",
		th.MinContentScore, st.status(v.ContentAcceptable), sc.ContentScore)

	sb.WriteString("\n")
	if v.OverallPass {
		sb.WriteString(st.pass.Render("Skill meets all target criteria!") + "\n")
	} else {
		sb.WriteString(st.heading.Render("Suggestions for improvement:") + "\n")
		if len(sc.Suggestions) == 0 {
			sb.WriteString(st.muted.Render("  (the review did not list any suggestions)") + "\n")
		}
		for i, s := range sc.Suggestions {
			fmt.Fprintf(&sb, "  %d. %s\n", i+1, s)
		}
	}

	_, err := io.WriteString(w, sb.String())
	return err
}

func (s styles) status(ok bool) string {
	if ok {
		return s.pass.Render("PASS")
	}
	return s.fail.Render("FAIL")
}

// Format renders the report without any terminal styling.
func Format(sc domain.Scorecard, v domain.Verdict) string {
	var buf bytes.Buffer
	_ = New().Render(&buf, sc, v)
	return buf.String()
}

func (r *Reporter) RenderHeader(w io.Writer, skill domain.Skill, th domain.Thresholds, maxIterations int) error {
	st := newStyles(w)
	var sb strings.Builder

	sb.WriteString(st.heading.Render("Starting skill optimization") + "\n")
	fmt.Fprintf(&sb, "Skill: %s\n", skill.Name)
	sb.WriteString("Target criteria:\n")
	if th.MaxValidationErrors == 0 {
		sb.WriteString("  - No validation errors\n")
	} else {
		fmt.Fprintf(&sb, "  - At most %d validation errors\n", th.MaxValidationErrors)
	}
	fmt.Fprintf(&sb, "  - Description score: %d%%\n", th.DescriptionScore)
	fmt.Fprintf(&sb, "  - Content score: ≥ %d%%\n", th.MinContentScore)
	fmt.Fprintf(&sb, "Max iterations: %d\n\n", maxIterations)

	_, err := io.WriteString(w, sb.String())
	return err
}

func (r *Reporter) RenderIterationBanner(w io.Writer, iteration int) error {
	label := "Review"
	if iteration == 0 {
		label = "Baseline Review"
	}
	line := strings.Repeat("=", separatorWidth)
	_, err := fmt.Fprintf(w, "%s\nITERATION %d: %s\n%s\n\n", line, iteration, label, line)
	return err
}

// RenderTrend compares the current scores with the previous stored run.
func (r *Reporter) RenderTrend(w io.Writer, prev *domain.ReviewRun, sc domain.Scorecard) error {
	if prev == nil {
		return nil
	}
	st := newStyles(w)
	var sb strings.Builder

	fmt.Fprintf(&sb, "\n%s\n", st.heading.Render(fmt.Sprintf("Change since iteration %d:", prev.Iteration)))
	fmt.Fprintf(&sb, "  Average: %s\n", delta(prev.AverageScore, sc.AverageScore))
	fmt.Fprintf(&sb, "  Description: %s\n", delta(prev.DescriptionScore, sc.DescriptionScore))
	fmt.Fprintf(&sb, "  Content: %s\n", delta(prev.ContentScore, sc.ContentScore))
	fmt.Fprintf(&sb, "  Validation errors: %d -> %d\n", len(prev.ValidationErrors), len(sc.ValidationErrors))

	_, err := io.WriteString(w, sb.String())
	return err
}

func delta(before, after int) string {
	d := after - before
	switch {
	case d > 0:
		return fmt.Sprintf("%d%% -> %d%% (+%d)", before, after, d)
	case d < 0:
		return fmt.Sprintf("%d%% -> %d%% (%d)", before, after, d)
	default:
		return fmt.Sprintf("%d%% (unchanged)", after)
	}
}

// RenderFailure reports a review that could not produce a scorecard. It is
// worded differently from a failing verdict on purpose.
func (r *Reporter) RenderFailure(w io.Writer, err error) error {
	st := newStyles(w)
	var msg string
	var invErr *domain.ReviewInvocationError
	switch {
	case errors.Is(err, domain.ErrReviewTimeout):
		msg = fmt.Sprintf("Error: review timed out: %v", err)
	case errors.Is(err, domain.ErrIterationBudgetExhausted):
		msg = fmt.Sprintf("Stopping: %v. Raise -max-iterations to keep going.", err)
	case errors.As(err, &invErr):
		msg = fmt.Sprintf("Error running review: %v", invErr)
	default:
		msg = fmt.Sprintf("Error running review: %v", err)
	}
	_, werr := io.WriteString(w, st.fail.Render(msg)+"\n")
	return werr
}

func (r *Reporter) RenderClosingNote(w io.Writer) error {
	_, err := io.WriteString(w, "\nWARNING: This tool identifies improvements but does not apply them.\n"+
		"Edit the skill using the suggestions above, then run the review again.\n")
	return err
}

package mock

import (
	"context"
	"time"

	"github.com/kitbuilder587/skill-optimizer/internal/domain"
	"github.com/kitbuilder587/skill-optimizer/internal/review"
)

type Invoker struct {
	Report domain.RawReport
	Error  error
	Delay  time.Duration

	CallCount int
	LastPath  string
}

func New() *Invoker {
	return &Invoker{
		Report: "Description: 100%\nContent: 95%\nAverage Score: 97%\n",
	}
}

func (i *Invoker) WithReport(report domain.RawReport) *Invoker {
	i.Report = report
	return i
}

func (i *Invoker) WithError(err error) *Invoker {
	i.Error = err
	return i
}

func (i *Invoker) WithDelay(delay time.Duration) *Invoker {
	i.Delay = delay
	return i
}

func (i *Invoker) Invoke(ctx context.Context, targetPath string) (domain.RawReport, error) {
	i.CallCount++
	i.LastPath = targetPath

	if i.Delay > 0 {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(i.Delay):
		}
	}

	if i.Error != nil {
		return "", i.Error
	}
	return i.Report, nil
}

func (i *Invoker) Reset() {
	i.CallCount = 0
	i.LastPath = ""
}

var _ review.Invoker = (*Invoker)(nil)

// Package effects models the outcome of best-effort side effects (cached
// totals, notification mail) separately from the primary operation they
// follow. Outcomes are logged and counted; they never reach the client.
package effects

import (
	"github.com/dalemusser/hopenest/internal/app/system/metrics"
	"go.uber.org/zap"
)

// Outcome is the result of one side effect.
type Outcome struct {
	Name    string
	Skipped bool
	Err     error
}

// Result values used in logs and metrics.
const (
	ResultOK      = "ok"
	ResultFailed  = "failed"
	ResultSkipped = "skipped"
)

// OK records a successful side effect.
func OK(name string) Outcome { return Outcome{Name: name} }

// Skipped records a side effect that did not apply (for example, no
// campaign was referenced).
func Skipped(name string) Outcome { return Outcome{Name: name, Skipped: true} }

// From records err, which may be nil.
func From(name string, err error) Outcome { return Outcome{Name: name, Err: err} }

// Result reports ok, failed or skipped.
func (o Outcome) Result() string {
	switch {
	case o.Skipped:
		return ResultSkipped
	case o.Err != nil:
		return ResultFailed
	default:
		return ResultOK
	}
}

// Outcomes is the side-effect half of an operation result.
type Outcomes []Outcome

// Failed returns the outcomes that carry an error.
func (outs Outcomes) Failed() Outcomes {
	var out Outcomes
	for _, o := range outs {
		if o.Err != nil {
			out = append(out, o)
		}
	}
	return out
}

// Report logs failed outcomes at Warn and counts every outcome.
func Report(log *zap.Logger, operation string, outcomes Outcomes, fields ...zap.Field) {
	for _, o := range outcomes {
		metrics.RecordSideEffect(o.Name, o.Result())
		if o.Err == nil {
			continue
		}
		fs := append([]zap.Field{
			zap.String("operation", operation),
			zap.String("side_effect", o.Name),
			zap.Error(o.Err),
		}, fields...)
		log.Warn("side effect failed", fs...)
	}
}

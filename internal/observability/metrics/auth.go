package metrics

import (
	"time"

	obserrors "github.com/bnastase-alt/rider-onboarding/internal/observability/errors"
	"github.com/bnastase-alt/rider-onboarding/internal/observability/statsd"
)

// Result constants for metric tagging.
const (
	ResultSuccess  = "success"
	ResultRejected = "rejected"
	ResultError    = "error"
	ResultBypassed = "bypassed"
)

// Metric names.
const (
	CaptchaVerify = "captcha.verify"
	AuthSignIn    = "auth.sign_in"
	AuthSignUp    = "auth.sign_up"
	WizardStep    = "onboarding.step"
)

// Outcome describes one measured operation.
type Outcome struct {
	Name     string
	Result   string
	Duration time.Duration
	Err      error
	Tags     map[string]string
}

// Emit counts the outcome and, when a duration is set, records its timing.
// error_class is added for error results.
func Emit(sink statsd.Sink, o Outcome) {
	if sink == nil || o.Name == "" {
		return
	}
	tags := make(map[string]string, len(o.Tags)+2)
	for k, v := range o.Tags {
		tags[k] = v
	}
	tags["result"] = o.Result
	if o.Err != nil && o.Result != ResultSuccess {
		if class := obserrors.Classify(o.Err); class != "" {
			tags["error_class"] = class
		}
	}

	sink.Count(o.Name, 1, tags)
	if o.Duration > 0 {
		sink.Timing(o.Name+".duration", o.Duration, tags)
	}
}

// Package antiautomation holds the silent-fail bot countermeasures applied
// to anonymous form submissions: honeypot fields and a form-age timing
// window, paired with an artificial response delay so automated clients
// learn nothing from the rejection.
package antiautomation

import "time"

const (
	minFormAge    = 3 * time.Second
	maxFormAge    = time.Hour
	responseDelay = 2 * time.Second
)

// FormMetadata describes the non-field signals extracted from a submitted
// form: values of hidden honeypot inputs and the render/submit instants when
// the client reports them.
type FormMetadata struct {
	HoneypotValues []string
	FormRenderedAt time.Time
	SubmittedAt    time.Time
}

// Policy decides whether a form submission looks automated and how long the
// handler should stall before answering one that does. Implementations must
// be safe for concurrent use.
type Policy interface {
	LooksAutomated(meta FormMetadata) bool
	ResponseDelay() time.Duration
}

// HoneypotPolicy is the default policy: any filled honeypot field is a bot,
// and a form submitted under three seconds or over an hour after render is
// treated the same way. A zero render time skips the age check.
type HoneypotPolicy struct{}

// NewHoneypotPolicy returns the default policy.
func NewHoneypotPolicy() *HoneypotPolicy {
	return &HoneypotPolicy{}
}

// LooksAutomated implements Policy.
func (p *HoneypotPolicy) LooksAutomated(meta FormMetadata) bool {
	for _, value := range meta.HoneypotValues {
		if value != "" {
			return true
		}
	}

	if meta.FormRenderedAt.IsZero() {
		return false
	}
	age := meta.SubmittedAt.Sub(meta.FormRenderedAt)
	return age < minFormAge || age > maxFormAge
}

// ResponseDelay implements Policy.
func (p *HoneypotPolicy) ResponseDelay() time.Duration {
	return responseDelay
}

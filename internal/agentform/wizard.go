package agentform

import (
	"errors"
	"fmt"
	"strings"

	"voicera-console/internal/capability"
)

var ErrStepIncomplete = errors.New("agentform: step incomplete")

// Telephony provider ids accepted by the form. Only vobiz is provisioned by
// the console; the others are recorded on the agent as-is.
const (
	TelephonyVobiz  = "vobiz"
	TelephonyTwilio = "twilio"
)

var TelephonyProviders = []string{TelephonyVobiz, TelephonyTwilio}

type Step int

const (
	StepIdentity Step = iota
	StepLLM
	StepAudio
	StepTelephony
	StepReview
)

var stepNames = [...]string{"identity", "llm", "audio", "telephony", "review"}

func (s Step) String() string {
	if s < StepIdentity || s > StepReview {
		return fmt.Sprintf("step(%d)", int(s))
	}
	return stepNames[s]
}

func ParseStep(name string) (Step, bool) {
	for i, n := range stepNames {
		if strings.EqualFold(n, name) {
			return Step(i), true
		}
	}
	return 0, false
}

// Identity is the first wizard step.
type Identity struct {
	Name                  string `json:"agent_type"`
	Category              string `json:"agent_category,omitempty"`
	SystemPrompt          string `json:"system_prompt"`
	GreetingMessage       string `json:"greeting_message,omitempty"`
	EnableMemory          bool   `json:"enable_memory"`
	SessionTimeoutMinutes int    `json:"session_timeout_minutes,omitempty"`
}

type Telephony struct {
	Provider    string `json:"provider"`
	PhoneNumber string `json:"phone_number,omitempty"`
}

// Draft is everything the form has collected so far.
type Draft struct {
	Identity  Identity  `json:"identity"`
	Selection Selection `json:"selection"`
	Telephony Telephony `json:"telephony"`
}

// Complete reports whether step's predicate holds for d.
func Complete(reg *capability.Registry, d Draft, step Step) bool {
	s := d.Selection
	switch step {
	case StepIdentity:
		return strings.TrimSpace(d.Identity.Name) != "" && strings.TrimSpace(d.Identity.SystemPrompt) != ""
	case StepLLM:
		p, ok := reg.Provider(capability.KindLLM, s.LLMProvider)
		if !ok {
			return false
		}
		return !p.HasModels() || s.LLMModel != ""
	case StepAudio:
		if s.Language == "" || s.STTProvider == "" || s.STTModel == "" || s.TTSProvider == "" || s.TTSModel == "" {
			return false
		}
		return strings.TrimSpace(s.TTSVoice) != ""
	case StepTelephony:
		if !inList(TelephonyProviders, d.Telephony.Provider) {
			return false
		}
		return d.Telephony.Provider != TelephonyVobiz || strings.TrimSpace(d.Telephony.PhoneNumber) != ""
	case StepReview:
		return true
	default:
		return false
	}
}

// Wizard gates forward navigation through the five steps on each step's
// completeness predicate.
type Wizard struct {
	Identity  Identity
	Telephony Telephony

	form    *Form
	current Step
}

func NewWizard(reg *capability.Registry) *Wizard {
	f := NewForm(reg, Selection{})
	f.MarkLoaded()
	return &Wizard{form: f, Telephony: Telephony{Provider: TelephonyVobiz}}
}

func (w *Wizard) Form() *Form { return w.form }

func (w *Wizard) Current() Step { return w.current }

func (w *Wizard) Draft() Draft {
	return Draft{Identity: w.Identity, Selection: w.form.Selection(), Telephony: w.Telephony}
}

func (w *Wizard) Complete(step Step) bool {
	return Complete(w.form.Registry(), w.Draft(), step)
}

// Reachable reports whether every step before step is complete.
func (w *Wizard) Reachable(step Step) bool {
	if step < StepIdentity || step > StepReview {
		return false
	}
	for s := StepIdentity; s < step; s++ {
		if !w.Complete(s) {
			return false
		}
	}
	return true
}

// Next advances one step. It fails with ErrStepIncomplete while the current
// step's predicate is false.
func (w *Wizard) Next() error {
	if w.current == StepReview {
		return nil
	}
	if !w.Complete(w.current) {
		return fmt.Errorf("%w: %s", ErrStepIncomplete, w.current)
	}
	w.current++
	return nil
}

func (w *Wizard) Back() {
	if w.current > StepIdentity {
		w.current--
	}
}

// GoTo moves to step. Earlier steps are always allowed; later ones only when
// reachable.
func (w *Wizard) GoTo(step Step) error {
	if step < StepIdentity || step > StepReview {
		return fmt.Errorf("agentform: unknown step %d", int(step))
	}
	if step > w.current && !w.Reachable(step) {
		return fmt.Errorf("%w: cannot reach %s", ErrStepIncomplete, step)
	}
	w.current = step
	return nil
}

// StepState is the navigation view of one step.
type StepState struct {
	Step     string `json:"step"`
	Index    int    `json:"index"`
	Current  bool   `json:"current"`
	Complete bool   `json:"complete"`
	Enabled  bool   `json:"enabled"`
}

func (w *Wizard) Steps() []StepState {
	out := make([]StepState, 0, len(stepNames))
	for s := StepIdentity; s <= StepReview; s++ {
		out = append(out, StepState{
			Step:     s.String(),
			Index:    int(s),
			Current:  s == w.current,
			Complete: w.Complete(s),
			Enabled:  s <= w.current || w.Reachable(s),
		})
	}
	return out
}

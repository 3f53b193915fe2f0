package agentform

import (
	"fmt"

	"voicera-console/internal/capability"
)

// EventType names a user edit on the form.
type EventType string

const (
	EventLanguage    EventType = "language"
	EventProvider    EventType = "provider"
	EventModel       EventType = "model"
	EventVoice       EventType = "voice"
	EventDescription EventType = "description"
	EventTuning      EventType = "tuning"
)

// Event is one edit as sent by a page that keeps the selection client-side.
type Event struct {
	Type        EventType       `json:"type"`
	Kind        capability.Kind `json:"kind,omitempty"`
	Value       string          `json:"value,omitempty"`
	MaxTokens   int             `json:"max_tokens,omitempty"`
	Temperature *float64        `json:"temperature,omitempty"`
}

// Apply routes ev to the matching handler.
func (f *Form) Apply(ev Event) error {
	switch ev.Type {
	case EventLanguage:
		f.OnLanguageChange(ev.Value)
	case EventProvider:
		if !validKind(ev.Kind) {
			return fmt.Errorf("agentform: unknown kind %q", ev.Kind)
		}
		f.OnProviderChange(ev.Kind, ev.Value)
	case EventModel:
		if !validKind(ev.Kind) {
			return fmt.Errorf("agentform: unknown kind %q", ev.Kind)
		}
		f.OnModelChange(ev.Kind, ev.Value)
	case EventVoice:
		f.SetVoice(ev.Value)
	case EventDescription:
		f.SetDescription(ev.Value)
	case EventTuning:
		f.SetTuning(ev.MaxTokens, ev.Temperature)
	default:
		return fmt.Errorf("agentform: unknown event %q", ev.Type)
	}
	return nil
}

func validKind(k capability.Kind) bool {
	return k == capability.KindSTT || k == capability.KindTTS || k == capability.KindLLM
}

// Replace swaps in a whole selection, as posted back by a page, and sweeps it.
func (f *Form) Replace(sel Selection) {
	f.sel = sel
	f.Sweep()
}

// Resume rebuilds a wizard from a posted draft. The step is clamped to the
// furthest reachable one.
func Resume(reg *capability.Registry, d Draft, step Step) *Wizard {
	w := NewWizard(reg)
	w.Identity = d.Identity
	w.Telephony = d.Telephony
	w.form.Replace(d.Selection)
	for step > StepIdentity && !w.Reachable(step) {
		step--
	}
	if step < StepIdentity {
		step = StepIdentity
	}
	w.current = step
	return w
}

// Apply takes a posted draft onto the editor. The agent name is the record key
// and cannot change.
func (e *Editor) Apply(d Draft) {
	name := e.Identity.Name
	e.Identity = d.Identity
	e.Identity.Name = name
	e.Telephony = d.Telephony
	e.form.Replace(d.Selection)
}

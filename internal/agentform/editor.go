package agentform

import (
	"maps"

	"voicera-console/internal/capability"
)

// Editor backs the agent edit page: a hydrated form plus the baseline it was
// loaded from.
type Editor struct {
	Identity  Identity
	Telephony Telephony

	form     *Form
	stored   map[string]any
	baseline map[string]any
}

// NewEditor hydrates a from its stored configuration. The baseline is taken
// before the first sweep, so values the registry no longer offers show up as
// a pending change.
func NewEditor(reg *capability.Registry, a StoredAgent) *Editor {
	d := Hydrate(reg, a)
	e := &Editor{
		Identity:  d.Identity,
		Telephony: d.Telephony,
		form:      NewForm(reg, d.Selection),
		stored:    a.Config,
	}
	e.baseline = e.Config()
	e.form.MarkLoaded()
	return e
}

func (e *Editor) Form() *Form { return e.form }

func (e *Editor) Draft() Draft {
	return Draft{Identity: e.Identity, Selection: e.form.Selection(), Telephony: e.Telephony}
}

// Keys the form owns inside each sub-config, at the top level and under args.
// Anything else (Sarvam pitch, pace and loudness, provider extras) is tuning
// the voice server reads and the form leaves alone.
var subConfigs = map[string]struct {
	kind  capability.Kind
	owned []string
}{
	"stt_model": {capability.KindSTT, []string{"name", "language", "model"}},
	"tts_model": {capability.KindTTS, []string{"name", "language", "model", "speaker", "voice_id", "description"}},
	"llm_model": {capability.KindLLM, []string{"name", "model", "max_tokens", "temperature"}},
}

// Config is the agent_config to save. Keys the form does not manage are
// carried over from the stored config unchanged, including the unmanaged
// keys of stt_model, tts_model and llm_model while their provider stays the
// same.
func (e *Editor) Config() map[string]any {
	reg := e.form.Registry()
	out := make(map[string]any, len(e.stored)+8)
	maps.Copy(out, e.stored)
	for k, v := range BuildAgentConfig(reg, e.Draft()) {
		sc, sub := subConfigs[k]
		built, ok := v.(map[string]any)
		if !sub || !ok {
			out[k] = v
			continue
		}
		stored := asMap(e.stored[k])
		storedID := reg.ProviderIDForName(sc.kind, asString(stored["name"]))
		if storedID == "" || storedID != reg.ProviderIDForName(sc.kind, asString(built["name"])) {
			// Stored extras belong to the previous provider.
			out[k] = built
			continue
		}
		out[k] = mergeSubConfig(stored, built, sc.owned)
	}
	return out
}

// mergeSubConfig overlays built onto stored after dropping the owned keys.
func mergeSubConfig(stored, built map[string]any, owned []string) map[string]any {
	out := maps.Clone(stored)
	args := maps.Clone(asMap(stored["args"]))
	for _, k := range owned {
		delete(out, k)
		delete(args, k)
	}
	delete(out, "args")
	for k, v := range built {
		if k != "args" {
			out[k] = v
		}
	}
	if _, ok := built["args"]; ok || len(args) > 0 {
		maps.Copy(args, asMap(built["args"]))
		out["args"] = args
	}
	return out
}

// Changed drives the Save control.
func (e *Editor) Changed() bool {
	return Changed(e.baseline, e.Config())
}

// Commit makes the current config the new baseline after a successful save.
func (e *Editor) Commit() {
	e.stored = e.Config()
	e.baseline = e.stored
}

package agentform

import (
	"voicera-console/internal/capability"
)

// Selection is the provider/model/voice state of an agent form.
type Selection struct {
	Language string `json:"language"`

	STTProvider string `json:"stt_provider"`
	STTModel    string `json:"stt_model"`

	TTSProvider    string `json:"tts_provider"`
	TTSModel       string `json:"tts_model"`
	TTSVoice       string `json:"tts_voice"`
	TTSDescription string `json:"tts_description"`

	LLMProvider string   `json:"llm_provider"`
	LLMModel    string   `json:"llm_model"`
	MaxTokens   int      `json:"max_tokens,omitempty"`
	Temperature *float64 `json:"temperature,omitempty"`
}

// Form keeps a Selection consistent with the capability registry as fields
// change. It is not safe for concurrent use; each page session owns one.
type Form struct {
	reg    *capability.Registry
	sel    Selection
	loaded bool
}

// NewForm starts a form from sel. Until MarkLoaded is called the stale-value
// sweep is suspended so hydrated server values survive.
func NewForm(reg *capability.Registry, sel Selection) *Form {
	return &Form{reg: reg, sel: sel}
}

func (f *Form) Registry() *capability.Registry { return f.reg }

func (f *Form) Selection() Selection { return f.sel }

func (f *Form) Loaded() bool { return f.loaded }

// MarkLoaded ends hydration and runs the first sweep.
func (f *Form) MarkLoaded() {
	f.loaded = true
	f.Sweep()
}

// OnLanguageChange resets every speech selection. For languages outside the
// default set the fallback provider is picked for STT and TTS when it supports
// the language, together with its first model and first voice.
func (f *Form) OnLanguageChange(lang string) {
	f.sel.Language = lang
	f.clearSTT()
	f.clearTTS()

	if lang != "" && !capability.IsDefaultLanguage(lang) {
		fb := capability.FallbackProvider
		if f.reg.Offers(capability.KindSTT, fb, lang) {
			f.sel.STTProvider = fb
			f.sel.STTModel = f.reg.FirstModel(capability.KindSTT, fb, lang)
		}
		if f.reg.Offers(capability.KindTTS, fb, lang) {
			f.sel.TTSProvider = fb
			f.sel.TTSModel = f.reg.FirstModel(capability.KindTTS, fb, lang)
			f.sel.TTSVoice = f.reg.FirstVoice(fb, f.sel.TTSModel, lang)
		}
	}
	f.Sweep()
}

// OnProviderChange clears the selections that depend on the provider.
func (f *Form) OnProviderChange(kind capability.Kind, provider string) {
	switch kind {
	case capability.KindSTT:
		f.sel.STTProvider = provider
		f.sel.STTModel = ""
	case capability.KindTTS:
		f.sel.TTSProvider = provider
		f.sel.TTSModel = ""
		f.sel.TTSVoice = ""
		f.sel.TTSDescription = ""
	case capability.KindLLM:
		f.sel.LLMProvider = provider
		f.sel.LLMModel = ""
		if p, ok := f.reg.Provider(capability.KindLLM, provider); ok && !p.HasModels() {
			f.sel.MaxTokens = 0
			f.sel.Temperature = nil
		}
	}
	f.Sweep()
}

// OnModelChange sets the model for kind. A TTS model change clears the voice.
func (f *Form) OnModelChange(kind capability.Kind, model string) {
	switch kind {
	case capability.KindSTT:
		f.sel.STTModel = model
	case capability.KindTTS:
		f.sel.TTSModel = model
		f.sel.TTSVoice = ""
	case capability.KindLLM:
		f.sel.LLMModel = model
	}
	f.Sweep()
}

func (f *Form) SetVoice(voice string) { f.sel.TTSVoice = voice }

func (f *Form) SetDescription(desc string) { f.sel.TTSDescription = desc }

// SetTuning sets LLM max tokens and temperature. It is ignored for providers
// that control their own tuning.
func (f *Form) SetTuning(maxTokens int, temperature *float64) {
	if p, ok := f.reg.Provider(capability.KindLLM, f.sel.LLMProvider); ok && !p.HasModels() {
		return
	}
	f.sel.MaxTokens = maxTokens
	f.sel.Temperature = temperature
}

// Sweep clears any selected provider, model or voice that the registry no
// longer offers for the current language. It does nothing before MarkLoaded.
func (f *Form) Sweep() {
	if !f.loaded {
		return
	}
	s := &f.sel
	lang := s.Language

	if s.STTProvider != "" && !f.reg.Offers(capability.KindSTT, s.STTProvider, lang) {
		f.clearSTT()
	}
	if s.STTModel != "" && !inList(f.reg.SupportedModels(capability.KindSTT, s.STTProvider, lang), s.STTModel) {
		s.STTModel = ""
	}

	if s.TTSProvider != "" && !f.reg.Offers(capability.KindTTS, s.TTSProvider, lang) {
		f.clearTTS()
	}
	if s.TTSModel != "" && !inList(f.reg.SupportedModels(capability.KindTTS, s.TTSProvider, lang), s.TTSModel) {
		s.TTSModel = ""
		s.TTSVoice = ""
	}
	tts, _ := f.reg.Provider(capability.KindTTS, s.TTSProvider)
	if s.TTSVoice != "" && !tts.FreeTextVoice() && !inList(f.reg.AvailableVoices(s.TTSProvider, s.TTSModel, lang), s.TTSVoice) {
		s.TTSVoice = ""
	}
	if s.TTSDescription != "" && !tts.UsesDescription() {
		s.TTSDescription = ""
	}

	if s.LLMProvider != "" {
		llm, ok := f.reg.Provider(capability.KindLLM, s.LLMProvider)
		switch {
		case !ok:
			s.LLMProvider, s.LLMModel = "", ""
		case !llm.HasModels():
			s.LLMModel = ""
			s.MaxTokens = 0
			s.Temperature = nil
		case s.LLMModel != "" && !inList(f.reg.SupportedModels(capability.KindLLM, s.LLMProvider, ""), s.LLMModel):
			s.LLMModel = ""
		}
	}
}

func (f *Form) clearSTT() {
	f.sel.STTProvider, f.sel.STTModel = "", ""
}

func (f *Form) clearTTS() {
	f.sel.TTSProvider, f.sel.TTSModel, f.sel.TTSVoice, f.sel.TTSDescription = "", "", "", ""
}

func inList(s []string, v string) bool {
	for _, x := range s {
		if x == v {
			return true
		}
	}
	return false
}

// Choice is a selectable provider with its display name.
type Choice struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Options are the values a page may offer for the current selection. Empty
// lists mean the dependent control is disabled.
type Options struct {
	Languages []string `json:"languages"`

	STTProviders []Choice `json:"stt_providers"`
	STTModels    []string `json:"stt_models"`

	TTSProviders      []Choice `json:"tts_providers"`
	TTSModels         []string `json:"tts_models"`
	TTSVoices         []string `json:"tts_voices"`
	VoiceDescriptions []string `json:"voice_descriptions"`
	FreeTextVoice     bool     `json:"free_text_voice"`
	UsesDescription   bool     `json:"uses_description"`

	LLMProviders []Choice `json:"llm_providers"`
	LLMModels    []string `json:"llm_models"`
	ShowLLMModel bool     `json:"show_llm_model"`
	ShowTuning   bool     `json:"show_tuning"`
}

func (f *Form) Options() Options {
	s := f.sel
	o := Options{
		Languages:         f.reg.Languages(),
		STTProviders:      f.choices(capability.KindSTT, f.reg.SupportedProviders(capability.KindSTT, s.Language)),
		STTModels:         f.reg.SupportedModels(capability.KindSTT, s.STTProvider, s.Language),
		TTSProviders:      f.choices(capability.KindTTS, f.reg.SupportedProviders(capability.KindTTS, s.Language)),
		TTSModels:         f.reg.SupportedModels(capability.KindTTS, s.TTSProvider, s.Language),
		TTSVoices:         f.reg.AvailableVoices(s.TTSProvider, s.TTSModel, s.Language),
		VoiceDescriptions: []string{},
		LLMProviders:      f.choices(capability.KindLLM, f.reg.SupportedProviders(capability.KindLLM, "")),
		LLMModels:         f.reg.SupportedModels(capability.KindLLM, s.LLMProvider, ""),
		ShowLLMModel:      true,
		ShowTuning:        true,
	}
	if tts, ok := f.reg.Provider(capability.KindTTS, s.TTSProvider); ok {
		o.FreeTextVoice = tts.FreeTextVoice()
		o.UsesDescription = tts.UsesDescription()
		if o.UsesDescription {
			o.VoiceDescriptions = f.reg.VoiceDescriptions()
		}
	}
	if llm, ok := f.reg.Provider(capability.KindLLM, s.LLMProvider); ok && !llm.HasModels() {
		o.ShowLLMModel = false
		o.ShowTuning = false
	}
	return o
}

func (f *Form) choices(kind capability.Kind, ids []string) []Choice {
	out := make([]Choice, 0, len(ids))
	for _, id := range ids {
		out = append(out, Choice{ID: id, Name: f.reg.OfficialName(kind, id)})
	}
	return out
}

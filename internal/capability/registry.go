package capability

import (
	"embed"
	"fmt"
	"strings"
)

// FallbackProvider is the on-premises provider auto-selected for STT and TTS
// when a non-default language is chosen.
const FallbackProvider = "ai4bharat"

// DefaultLanguages are served by every hosted provider, so choosing one of them
// leaves provider selection to the user.
var DefaultLanguages = []string{"English (US)", "English (India)"}

func IsDefaultLanguage(lang string) bool {
	for _, l := range DefaultLanguages {
		if l == lang {
			return true
		}
	}
	return false
}

//go:embed data/*.jsonc
var dataFS embed.FS

// Registry answers compatibility questions across the STT, TTS and LLM catalogs.
// It is read-only after construction and safe for concurrent use.
type Registry struct {
	stt          Catalog
	tts          Catalog
	llm          Catalog
	descriptions []string
}

func NewRegistry(stt, tts, llm Catalog, descriptions []string) *Registry {
	stt.Kind, tts.Kind, llm.Kind = KindSTT, KindTTS, KindLLM
	return &Registry{stt: stt, tts: tts, llm: llm, descriptions: descriptions}
}

// Load builds a Registry from the embedded capability files.
func Load() (*Registry, error) {
	read := func(kind Kind) (Catalog, error) {
		b, err := dataFS.ReadFile("data/" + string(kind) + ".jsonc")
		if err != nil {
			return Catalog{}, err
		}
		return ParseCatalog(kind, b)
	}
	stt, err := read(KindSTT)
	if err != nil {
		return nil, err
	}
	tts, err := read(KindTTS)
	if err != nil {
		return nil, err
	}
	llm, err := read(KindLLM)
	if err != nil {
		return nil, err
	}
	b, err := dataFS.ReadFile("data/voice_descriptions.jsonc")
	if err != nil {
		return nil, err
	}
	desc, err := ParseDescriptions(b)
	if err != nil {
		return nil, err
	}
	return NewRegistry(stt, tts, llm, desc), nil
}

// MustLoad is Load for process start-up and tests.
func MustLoad() *Registry {
	r, err := Load()
	if err != nil {
		panic(fmt.Sprintf("capability: load embedded catalogs: %v", err))
	}
	return r
}

func (r *Registry) Catalog(kind Kind) Catalog {
	if r == nil {
		return Catalog{Kind: kind}
	}
	switch kind {
	case KindSTT:
		return r.stt
	case KindTTS:
		return r.tts
	case KindLLM:
		return r.llm
	default:
		return Catalog{Kind: kind}
	}
}

func (r *Registry) Provider(kind Kind, id string) (Provider, bool) {
	return r.Catalog(kind).Provider(id)
}

// Validate checks every catalog.
func (r *Registry) Validate() error {
	for _, k := range []Kind{KindSTT, KindTTS, KindLLM} {
		if err := r.Catalog(k).Validate(); err != nil {
			return err
		}
	}
	return nil
}

// SupportedProviders returns providers offering at least one model for lang.
// LLM providers are language independent and always returned.
func (r *Registry) SupportedProviders(kind Kind, lang string) []string {
	out := make([]string, 0)
	for _, p := range r.Catalog(kind).Providers {
		if kind == KindLLM {
			out = append(out, p.ID)
			continue
		}
		if lang == "" {
			continue
		}
		for _, m := range p.Models {
			if _, ok := m.Supports(lang); ok {
				out = append(out, p.ID)
				break
			}
		}
	}
	return out
}

// SupportedModels returns models under provider listing lang. For LLM the
// language is ignored.
func (r *Registry) SupportedModels(kind Kind, provider, lang string) []string {
	out := make([]string, 0)
	p, ok := r.Provider(kind, provider)
	if !ok {
		return out
	}
	for _, m := range p.Models {
		if kind == KindLLM {
			out = append(out, m.ID)
			continue
		}
		if _, ok := m.Supports(lang); ok {
			out = append(out, m.ID)
		}
	}
	return out
}

// AvailableVoices returns the TTS voices for provider/model/lang in declared
// order. It is empty for free-text voice providers.
func (r *Registry) AvailableVoices(provider, model, lang string) []string {
	out := make([]string, 0)
	p, ok := r.Provider(KindTTS, provider)
	if !ok || p.FreeTextVoice() {
		return out
	}
	m, ok := p.Model(model)
	if !ok {
		return out
	}
	ls, ok := m.Supports(lang)
	if !ok {
		return out
	}
	return append(out, ls.Voices...)
}

func (r *Registry) VoiceDescriptions() []string {
	if r == nil {
		return []string{}
	}
	return append([]string{}, r.descriptions...)
}

// Languages returns the union of STT and TTS languages in declared order.
func (r *Registry) Languages() []string {
	seen := make(map[string]struct{})
	out := make([]string, 0)
	for _, k := range []Kind{KindSTT, KindTTS} {
		for _, l := range r.Catalog(k).Languages() {
			if _, ok := seen[l]; ok {
				continue
			}
			seen[l] = struct{}{}
			out = append(out, l)
		}
	}
	return out
}

// OfficialName maps an internal provider id to the display name stored in
// agent configs. Unknown ids are returned unchanged.
func (r *Registry) OfficialName(kind Kind, id string) string {
	if p, ok := r.Provider(kind, id); ok {
		return p.Name
	}
	return id
}

// nameAliases are stored provider names the voice server accepts besides the
// official ones, keyed by lower-case alias.
var nameAliases = map[Kind]map[string]string{
	KindLLM: {"google": "gemini"},
}

// ProviderIDForName reverse-maps a stored display name back to the provider id.
// Matching is case-insensitive and also accepts an id or a known alias.
// Unknown names yield "".
func (r *Registry) ProviderIDForName(kind Kind, name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return ""
	}
	if id, ok := nameAliases[kind][strings.ToLower(name)]; ok {
		name = id
	}
	for _, p := range r.Catalog(kind).Providers {
		if strings.EqualFold(p.Name, name) || strings.EqualFold(p.ID, name) {
			return p.ID
		}
	}
	return ""
}

// first returns the first element or "". Auto-selection takes the first entry
// in declared order; the data files carry no other ranking.
func first(s []string) string {
	if len(s) == 0 {
		return ""
	}
	return s[0]
}

// FirstModel is the deterministic default model for provider and lang.
func (r *Registry) FirstModel(kind Kind, provider, lang string) string {
	return first(r.SupportedModels(kind, provider, lang))
}

// FirstVoice is the deterministic default voice for provider, model and lang.
func (r *Registry) FirstVoice(provider, model, lang string) string {
	return first(r.AvailableVoices(provider, model, lang))
}

func contains(s []string, v string) bool {
	for _, x := range s {
		if x == v {
			return true
		}
	}
	return false
}

// Offers reports whether provider is supported for lang.
func (r *Registry) Offers(kind Kind, provider, lang string) bool {
	return contains(r.SupportedProviders(kind, lang), provider)
}

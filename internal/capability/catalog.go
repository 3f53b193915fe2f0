package capability

import (
	"errors"
	"fmt"
	"strings"
)

// Kind identifies which pipeline stage a catalog describes.
type Kind string

const (
	KindSTT Kind = "stt"
	KindTTS Kind = "tts"
	KindLLM Kind = "llm"
)

func (k Kind) Valid() bool {
	switch k {
	case KindSTT, KindTTS, KindLLM:
		return true
	default:
		return false
	}
}

// Family describes how a provider's selections are stored in an agent config.
// It is resolved once when a catalog is loaded so form logic never branches on
// provider id strings.
type Family string

const (
	// FamilyTopLevel stores model and voice as top-level fields.
	FamilyTopLevel Family = "top_level"
	// FamilyArgs nests model and voice id under "args"; the voice id is free text.
	FamilyArgs Family = "args"
	// FamilyDescription is the on-premises style: a fixed speaker list plus a
	// free-text description picked from the preset catalog.
	FamilyDescription Family = "description"
	// FamilyNoModel providers choose their own model (and tuning) server side.
	FamilyNoModel Family = "no_model"
)

func (f Family) Valid() bool {
	switch f {
	case FamilyTopLevel, FamilyArgs, FamilyDescription, FamilyNoModel:
		return true
	default:
		return false
	}
}

// LanguageSupport lists the voices a model offers for one language.
// Voices are in declared order.
type LanguageSupport struct {
	Language string   `json:"language"`
	Voices   []string `json:"voices,omitempty"`
}

type Model struct {
	ID        string            `json:"id"`
	Languages []LanguageSupport `json:"languages,omitempty"`
}

// Supports reports whether the model lists lang. A model with no language
// entries is language independent (LLM catalogs).
func (m Model) Supports(lang string) (LanguageSupport, bool) {
	if len(m.Languages) == 0 {
		return LanguageSupport{Language: lang}, lang != ""
	}
	for _, l := range m.Languages {
		if l.Language == lang {
			return l, true
		}
	}
	return LanguageSupport{}, false
}

type Provider struct {
	ID     string  `json:"id"`
	Name   string  `json:"name"`
	Family Family  `json:"family"`
	Models []Model `json:"models,omitempty"`
}

// FreeTextVoice reports whether the provider takes an arbitrary voice identifier
// instead of a fixed voice list.
func (p Provider) FreeTextVoice() bool { return p.Family == FamilyArgs }

// UsesDescription reports whether the provider takes a voice description preset.
func (p Provider) UsesDescription() bool { return p.Family == FamilyDescription }

// HasModels is false for providers whose model is controlled server side.
func (p Provider) HasModels() bool { return p.Family != FamilyNoModel }

func (p Provider) Model(id string) (Model, bool) {
	for _, m := range p.Models {
		if m.ID == id {
			return m, true
		}
	}
	return Model{}, false
}

// Catalog is the immutable capability table for one Kind.
type Catalog struct {
	Kind      Kind       `json:"kind"`
	Providers []Provider `json:"providers"`
}

func (c Catalog) Provider(id string) (Provider, bool) {
	if id == "" {
		return Provider{}, false
	}
	for _, p := range c.Providers {
		if p.ID == id {
			return p, true
		}
	}
	return Provider{}, false
}

// Languages returns every language mentioned in the catalog, first occurrence first.
func (c Catalog) Languages() []string {
	seen := make(map[string]struct{})
	out := make([]string, 0)
	for _, p := range c.Providers {
		for _, m := range p.Models {
			for _, l := range m.Languages {
				if _, ok := seen[l.Language]; ok {
					continue
				}
				seen[l.Language] = struct{}{}
				out = append(out, l.Language)
			}
		}
	}
	return out
}

// Validate reports structural problems in the catalog data.
func (c Catalog) Validate() error {
	var errs []error
	if !c.Kind.Valid() {
		errs = append(errs, fmt.Errorf("capability: unknown kind %q", c.Kind))
	}
	providers := make(map[string]struct{}, len(c.Providers))
	names := make(map[string]string, len(c.Providers))
	for _, p := range c.Providers {
		if strings.TrimSpace(p.ID) == "" {
			errs = append(errs, errors.New("capability: provider with empty id"))
			continue
		}
		if _, dup := providers[p.ID]; dup {
			errs = append(errs, fmt.Errorf("capability: duplicate provider %q", p.ID))
		}
		providers[p.ID] = struct{}{}

		key := strings.ToLower(p.Name)
		if other, dup := names[key]; dup && other != p.ID {
			errs = append(errs, fmt.Errorf("capability: providers %q and %q share name %q", other, p.ID, p.Name))
		}
		names[key] = p.ID

		if !p.Family.Valid() {
			errs = append(errs, fmt.Errorf("capability: provider %q has unknown family %q", p.ID, p.Family))
		}
		if p.HasModels() && len(p.Models) == 0 {
			errs = append(errs, fmt.Errorf("capability: provider %q lists no models", p.ID))
		}
		if !p.HasModels() && len(p.Models) > 0 {
			errs = append(errs, fmt.Errorf("capability: provider %q is no_model but lists models", p.ID))
		}
		models := make(map[string]struct{}, len(p.Models))
		for _, m := range p.Models {
			if _, dup := models[m.ID]; dup {
				errs = append(errs, fmt.Errorf("capability: provider %q has duplicate model %q", p.ID, m.ID))
			}
			models[m.ID] = struct{}{}
			if c.Kind != KindLLM && len(m.Languages) == 0 {
				errs = append(errs, fmt.Errorf("capability: %s/%s lists no languages", p.ID, m.ID))
			}
			if c.Kind == KindTTS && p.Family != FamilyArgs {
				for _, l := range m.Languages {
					if len(l.Voices) == 0 {
						errs = append(errs, fmt.Errorf("capability: %s/%s/%s lists no voices", p.ID, m.ID, l.Language))
					}
				}
			}
		}
	}
	return errors.Join(errs...)
}

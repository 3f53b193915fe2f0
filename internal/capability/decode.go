package capability

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/tidwall/jsonc"
)

// member is one key/value pair of a JSON object, kept in document order.
type member struct {
	Key   string
	Value json.RawMessage
}

// objectMembers decodes a JSON object without losing key order. An absent or
// null value yields no members.
func objectMembers(data json.RawMessage) ([]member, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil, nil
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, errors.New("capability: expected JSON object")
	}
	var out []member
	for dec.More() {
		kt, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := kt.(string)
		if !ok {
			return nil, errors.New("capability: expected object key")
		}
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return nil, fmt.Errorf("capability: key %q: %w", key, err)
		}
		out = append(out, member{Key: key, Value: raw})
	}
	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	return out, nil
}

type fileProvider struct {
	Name   string          `json:"name"`
	Family Family          `json:"family"`
	Models json.RawMessage `json:"models"`
}

type fileVoices struct {
	Voices []string `json:"voices"`
}

// ParseCatalog reads a capability file shaped
//
//	{"providers": {provider: {"name", "family", "models": {model: {language: {"voices": [...]}}}}}}
//
// Comments are allowed. Declared order is preserved at every level.
func ParseCatalog(kind Kind, data []byte) (Catalog, error) {
	var top struct {
		Providers json.RawMessage `json:"providers"`
	}
	if err := json.Unmarshal(jsonc.ToJSON(data), &top); err != nil {
		return Catalog{}, fmt.Errorf("capability: parse %s catalog: %w", kind, err)
	}
	providers, err := objectMembers(top.Providers)
	if err != nil {
		return Catalog{}, fmt.Errorf("capability: parse %s providers: %w", kind, err)
	}

	c := Catalog{Kind: kind, Providers: make([]Provider, 0, len(providers))}
	for _, pm := range providers {
		var fp fileProvider
		if err := json.Unmarshal(pm.Value, &fp); err != nil {
			return Catalog{}, fmt.Errorf("capability: provider %q: %w", pm.Key, err)
		}
		p := Provider{ID: pm.Key, Name: fp.Name, Family: fp.Family}
		if p.Name == "" {
			p.Name = pm.Key
		}
		if p.Family == "" {
			p.Family = FamilyTopLevel
		}
		models, err := objectMembers(fp.Models)
		if err != nil {
			return Catalog{}, fmt.Errorf("capability: provider %q models: %w", pm.Key, err)
		}
		for _, mm := range models {
			m, err := parseModel(mm)
			if err != nil {
				return Catalog{}, fmt.Errorf("capability: provider %q: %w", pm.Key, err)
			}
			p.Models = append(p.Models, m)
		}
		c.Providers = append(c.Providers, p)
	}
	return c, nil
}

func parseModel(mm member) (Model, error) {
	langs, err := objectMembers(mm.Value)
	if err != nil {
		return Model{}, fmt.Errorf("model %q: %w", mm.Key, err)
	}
	m := Model{ID: mm.Key}
	for _, lm := range langs {
		var v fileVoices
		if err := json.Unmarshal(lm.Value, &v); err != nil {
			return Model{}, fmt.Errorf("model %q language %q: %w", mm.Key, lm.Key, err)
		}
		m.Languages = append(m.Languages, LanguageSupport{Language: lm.Key, Voices: v.Voices})
	}
	return m, nil
}

// ParseLanguageIndex reads the create-wizard shaped table
//
//	{language: {provider: {model: {"voices": [...]}}}}
//
// and folds it into a provider-first Catalog. Providers and models keep the order
// in which they are first encountered. meta supplies display names and families;
// providers absent from meta get their id as name and FamilyTopLevel.
func ParseLanguageIndex(kind Kind, data []byte, meta map[string]Provider) (Catalog, error) {
	langs, err := objectMembers(jsonc.ToJSON(data))
	if err != nil {
		return Catalog{}, fmt.Errorf("capability: parse %s language index: %w", kind, err)
	}

	c := Catalog{Kind: kind}
	providerAt := make(map[string]int)
	for _, lm := range langs {
		providers, err := objectMembers(lm.Value)
		if err != nil {
			return Catalog{}, fmt.Errorf("capability: language %q: %w", lm.Key, err)
		}
		for _, pm := range providers {
			idx, ok := providerAt[pm.Key]
			if !ok {
				p := Provider{ID: pm.Key, Name: pm.Key, Family: FamilyTopLevel}
				if md, ok := meta[pm.Key]; ok {
					if md.Name != "" {
						p.Name = md.Name
					}
					if md.Family != "" {
						p.Family = md.Family
					}
				}
				c.Providers = append(c.Providers, p)
				idx = len(c.Providers) - 1
				providerAt[pm.Key] = idx
			}
			models, err := objectMembers(pm.Value)
			if err != nil {
				return Catalog{}, fmt.Errorf("capability: %s/%s: %w", lm.Key, pm.Key, err)
			}
			for _, mm := range models {
				var v fileVoices
				if err := json.Unmarshal(mm.Value, &v); err != nil {
					return Catalog{}, fmt.Errorf("capability: %s/%s/%s: %w", lm.Key, pm.Key, mm.Key, err)
				}
				addLanguage(&c.Providers[idx], mm.Key, LanguageSupport{Language: lm.Key, Voices: v.Voices})
			}
		}
	}
	return c, nil
}

func addLanguage(p *Provider, modelID string, ls LanguageSupport) {
	for i := range p.Models {
		if p.Models[i].ID == modelID {
			p.Models[i].Languages = append(p.Models[i].Languages, ls)
			return
		}
	}
	p.Models = append(p.Models, Model{ID: modelID, Languages: []LanguageSupport{ls}})
}

// ParseDescriptions reads the voice description preset file.
func ParseDescriptions(data []byte) ([]string, error) {
	var f struct {
		Descriptions []string `json:"descriptions"`
	}
	if err := json.Unmarshal(jsonc.ToJSON(data), &f); err != nil {
		return nil, fmt.Errorf("capability: parse voice descriptions: %w", err)
	}
	return f.Descriptions, nil
}

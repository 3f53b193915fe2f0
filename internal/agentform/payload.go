package agentform

import (
	"encoding/json"
	"strings"

	"voicera-console/internal/capability"
)

// BuildAgentConfig shapes d into the backend's agent_config object. Provider
// ids are stored as official display names and the STT and TTS entries follow
// each provider's family.
func BuildAgentConfig(reg *capability.Registry, d Draft) map[string]any {
	s := d.Selection
	cfg := map[string]any{
		"system_prompt":    d.Identity.SystemPrompt,
		"greeting_message": d.Identity.GreetingMessage,
		"language":         s.Language,
		"enable_memory":    d.Identity.EnableMemory,
		"llm_model":        llmConfig(reg, s),
		"stt_model":        sttConfig(reg, s),
		"tts_model":        ttsConfig(reg, s),
	}
	if d.Identity.SessionTimeoutMinutes > 0 {
		cfg["session_timeout_minutes"] = d.Identity.SessionTimeoutMinutes
	}
	return cfg
}

func llmConfig(reg *capability.Registry, s Selection) map[string]any {
	args := map[string]any{}
	p, ok := reg.Provider(capability.KindLLM, s.LLMProvider)
	if !ok || p.HasModels() {
		if s.LLMModel != "" {
			args["model"] = s.LLMModel
		}
		if s.MaxTokens > 0 {
			args["max_tokens"] = s.MaxTokens
		}
		if s.Temperature != nil {
			args["temperature"] = *s.Temperature
		}
	}
	return map[string]any{
		"name": reg.OfficialName(capability.KindLLM, s.LLMProvider),
		"args": args,
	}
}

func sttConfig(reg *capability.Registry, s Selection) map[string]any {
	out := map[string]any{
		"name":     reg.OfficialName(capability.KindSTT, s.STTProvider),
		"language": s.Language,
	}
	p, _ := reg.Provider(capability.KindSTT, s.STTProvider)
	if p.Family == capability.FamilyArgs {
		out["args"] = map[string]any{"model": s.STTModel}
	} else {
		out["model"] = s.STTModel
	}
	return out
}

func ttsConfig(reg *capability.Registry, s Selection) map[string]any {
	out := map[string]any{
		"name":     reg.OfficialName(capability.KindTTS, s.TTSProvider),
		"language": s.Language,
	}
	p, _ := reg.Provider(capability.KindTTS, s.TTSProvider)
	switch p.Family {
	case capability.FamilyArgs:
		out["args"] = map[string]any{"model": s.TTSModel, "voice_id": s.TTSVoice}
	case capability.FamilyDescription:
		out["speaker"] = s.TTSVoice
		out["description"] = s.TTSDescription
		out["args"] = map[string]any{"model": s.TTSModel}
	default:
		out["model"] = s.TTSModel
		out["speaker"] = s.TTSVoice
	}
	return out
}

// StoredAgent is the subset of a stored agent the form reads back.
type StoredAgent struct {
	AgentType         string
	AgentCategory     string
	PhoneNumber       string
	TelephonyProvider string
	GreetingMessage   string
	Config            map[string]any
}

// Hydrate reverse-maps a stored agent_config into a Draft. Official names are
// mapped back to provider ids; unknown names leave the provider empty.
func Hydrate(reg *capability.Registry, a StoredAgent) Draft {
	cfg := a.Config
	llm := asMap(cfg["llm_model"])
	stt := asMap(cfg["stt_model"])
	tts := asMap(cfg["tts_model"])
	llmArgs, sttArgs, ttsArgs := asMap(llm["args"]), asMap(stt["args"]), asMap(tts["args"])

	lang := firstString(cfg["language"], stt["language"], tts["language"])

	sel := Selection{
		Language:       lang,
		STTProvider:    reg.ProviderIDForName(capability.KindSTT, asString(stt["name"])),
		STTModel:       firstString(stt["model"], sttArgs["model"]),
		TTSProvider:    reg.ProviderIDForName(capability.KindTTS, asString(tts["name"])),
		TTSModel:       firstString(tts["model"], ttsArgs["model"]),
		TTSVoice:       firstString(tts["speaker"], ttsArgs["voice_id"], ttsArgs["speaker"], tts["voice_id"]),
		TTSDescription: firstString(tts["description"], ttsArgs["description"]),
		LLMProvider:    reg.ProviderIDForName(capability.KindLLM, asString(llm["name"])),
		LLMModel:       firstString(llmArgs["model"], llm["model"]),
		MaxTokens:      asInt(llmArgs["max_tokens"]),
	}
	if t, ok := asFloat(llmArgs["temperature"]); ok {
		sel.Temperature = &t
	}

	greeting := firstString(cfg["greeting_message"], a.GreetingMessage)
	memory, _ := cfg["enable_memory"].(bool)
	return Draft{
		Identity: Identity{
			Name:                  a.AgentType,
			Category:              a.AgentCategory,
			SystemPrompt:          asString(cfg["system_prompt"]),
			GreetingMessage:       greeting,
			EnableMemory:          memory,
			SessionTimeoutMinutes: asInt(cfg["session_timeout_minutes"]),
		},
		Selection: sel,
		Telephony: Telephony{Provider: a.TelephonyProvider, PhoneNumber: a.PhoneNumber},
	}
}

func asMap(v any) map[string]any {
	if m, ok := v.(map[string]any); ok {
		return m
	}
	return map[string]any{}
}

func asString(v any) string {
	s, _ := v.(string)
	return strings.TrimSpace(s)
}

func firstString(vs ...any) string {
	for _, v := range vs {
		if s := asString(v); s != "" {
			return s
		}
	}
	return ""
}

func asFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	default:
		return 0, false
	}
}

func asInt(v any) int {
	f, ok := asFloat(v)
	if !ok {
		return 0
	}
	return int(f)
}

package agentform

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"voicera-console/internal/capability"
)

func loadedForm(t *testing.T, sel Selection) *Form {
	t.Helper()
	f := NewForm(capability.MustLoad(), sel)
	f.MarkLoaded()
	return f
}

func TestLanguageChangeAutoSelectsFallback(t *testing.T) {
	reg := capability.MustLoad()
	f := loadedForm(t, Selection{})

	for _, lang := range reg.Languages() {
		f.OnLanguageChange(lang)
		s := f.Selection()
		if capability.IsDefaultLanguage(lang) {
			assert.Empty(t, s.STTProvider, lang)
			assert.Empty(t, s.TTSProvider, lang)
			assert.Empty(t, s.TTSVoice, lang)
			continue
		}
		if reg.Offers(capability.KindSTT, capability.FallbackProvider, lang) {
			assert.Equal(t, capability.FallbackProvider, s.STTProvider, lang)
			assert.Equal(t, reg.FirstModel(capability.KindSTT, capability.FallbackProvider, lang), s.STTModel, lang)
		}
		if reg.Offers(capability.KindTTS, capability.FallbackProvider, lang) {
			assert.Equal(t, capability.FallbackProvider, s.TTSProvider, lang)
			assert.NotEmpty(t, s.TTSVoice, lang)
		}
	}
}

func TestLanguageChangeHindiPicksFirstDeclared(t *testing.T) {
	f := loadedForm(t, Selection{})
	f.OnLanguageChange("Hindi")
	s := f.Selection()
	assert.Equal(t, "ai4bharat", s.STTProvider)
	assert.Equal(t, "indic-conformer-600m-multilingual", s.STTModel)
	assert.Equal(t, "ai4bharat", s.TTSProvider)
	assert.Equal(t, "indic-parler-tts", s.TTSModel)
	assert.Equal(t, "Rohit", s.TTSVoice)

	f.OnLanguageChange("English (US)")
	assert.Equal(t, Selection{Language: "English (US)"}, f.Selection())
}

func TestProviderChangeClearsDependents(t *testing.T) {
	f := loadedForm(t, Selection{})
	f.OnLanguageChange("Hindi")
	f.SetDescription("A calm voice")

	f.OnProviderChange(capability.KindTTS, "sarvam")
	s := f.Selection()
	assert.Equal(t, "sarvam", s.TTSProvider)
	assert.Empty(t, s.TTSModel)
	assert.Empty(t, s.TTSVoice)
	assert.Empty(t, s.TTSDescription)

	f.OnProviderChange(capability.KindSTT, "sarvam")
	assert.Empty(t, f.Selection().STTModel)

	f.OnModelChange(capability.KindTTS, "bulbul:v2")
	f.SetVoice("anushka")
	f.OnModelChange(capability.KindTTS, "bulbul:v2")
	assert.Empty(t, f.Selection().TTSVoice, "model change clears voice")
}

func TestSweepClearsStaleSelectionsOnlyAfterLoad(t *testing.T) {
	stale := Selection{
		Language:    "Tamil",
		STTProvider: "deepgram", STTModel: "nova-3",
		TTSProvider: "sarvam", TTSModel: "bulbul:v2", TTSVoice: "manisha",
		LLMProvider: "openai", LLMModel: "retired-model",
	}
	f := NewForm(capability.MustLoad(), stale)
	f.Sweep()
	assert.Equal(t, stale, f.Selection(), "no sweep during hydration")

	f.MarkLoaded()
	s := f.Selection()
	assert.Equal(t, "deepgram", s.STTProvider, "nova-2 still covers Tamil")
	assert.Empty(t, s.STTModel)
	assert.Equal(t, "sarvam", s.TTSProvider)
	assert.Equal(t, "bulbul:v2", s.TTSModel)
	assert.Empty(t, s.TTSVoice, "manisha is not offered for Tamil")
	assert.Equal(t, "openai", s.LLMProvider)
	assert.Empty(t, s.LLMModel)
}

func TestOptionsExcludeUnsupported(t *testing.T) {
	reg := capability.MustLoad()
	f := loadedForm(t, Selection{})
	f.OnLanguageChange("Tamil")
	o := f.Options()

	for _, c := range o.STTProviders {
		assert.True(t, reg.Offers(capability.KindSTT, c.ID, "Tamil"), c.ID)
		assert.NotEqual(t, "openai", c.ID)
	}
	assert.True(t, o.UsesDescription)
	assert.NotEmpty(t, o.VoiceDescriptions)
	assert.Equal(t, []string{"Jaya", "Prakash"}, o.TTSVoices)

	f.OnProviderChange(capability.KindTTS, "google")
	o = f.Options()
	assert.True(t, o.FreeTextVoice)
	assert.Empty(t, o.TTSVoices)
	assert.Empty(t, o.VoiceDescriptions)
}

func TestKenpathHidesModelAndTuning(t *testing.T) {
	f := loadedForm(t, Selection{})
	f.OnProviderChange(capability.KindLLM, "openai")
	temp := 0.4
	f.SetTuning(512, &temp)
	f.OnModelChange(capability.KindLLM, "gpt-4o")
	require.Equal(t, 512, f.Selection().MaxTokens)

	f.OnProviderChange(capability.KindLLM, "kenpath")
	s := f.Selection()
	assert.Empty(t, s.LLMModel)
	assert.Zero(t, s.MaxTokens)
	assert.Nil(t, s.Temperature)

	f.SetTuning(100, &temp)
	assert.Zero(t, f.Selection().MaxTokens)

	o := f.Options()
	assert.False(t, o.ShowLLMModel)
	assert.False(t, o.ShowTuning)
	assert.Empty(t, o.LLMModels)
}

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"voicera-console/internal/agentform"
	"voicera-console/internal/capability"
)

func catalogCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Inspect and validate the provider capability tables",
	}
	cmd.AddCommand(catalogCheckCommand(), catalogLanguagesCommand(), catalogResolveCommand())
	return cmd
}

func catalogCheckCommand() *cobra.Command {
	var dir string
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Validate the embedded catalogs, or stt/tts/llm.jsonc and voice_descriptions.jsonc in --dir",
		RunE: func(cmd *cobra.Command, _ []string) error {
			reg, err := loadRegistry(dir)
			if err != nil {
				return err
			}
			if err := reg.Validate(); err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, k := range []capability.Kind{capability.KindSTT, capability.KindTTS, capability.KindLLM} {
				fmt.Fprintf(out, "%s: %d providers\n", k, len(reg.Catalog(k).Providers))
			}
			fmt.Fprintf(out, "languages: %d\nvoice descriptions: %d\nok\n", len(reg.Languages()), len(reg.VoiceDescriptions()))
			return nil
		},
	}
	cmd.Flags().StringVar(&dir, "dir", "", "directory with catalog files to check instead of the embedded ones")
	return cmd
}

func catalogLanguagesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "languages",
		Short: "List every language any catalog offers",
		RunE: func(cmd *cobra.Command, _ []string) error {
			reg, err := capability.Load()
			if err != nil {
				return err
			}
			for _, l := range reg.Languages() {
				fmt.Fprintln(cmd.OutOrStdout(), l)
			}
			return nil
		},
	}
}

func catalogResolveCommand() *cobra.Command {
	var lang string
	cmd := &cobra.Command{
		Use:   "resolve",
		Short: "Show the selection and agent_config a language change produces",
		RunE: func(cmd *cobra.Command, _ []string) error {
			reg, err := capability.Load()
			if err != nil {
				return err
			}
			f := agentform.NewForm(reg, agentform.Selection{})
			f.MarkLoaded()
			f.OnLanguageChange(lang)
			d := agentform.Draft{Selection: f.Selection()}
			return writeJSON(cmd.OutOrStdout(), map[string]any{
				"selection":    f.Selection(),
				"options":      f.Options(),
				"agent_config": agentform.BuildAgentConfig(reg, d),
			})
		},
	}
	cmd.Flags().StringVar(&lang, "language", capability.DefaultLanguages[0], "language to resolve")
	return cmd
}

func loadRegistry(dir string) (*capability.Registry, error) {
	if dir == "" {
		return capability.Load()
	}
	var cats [3]capability.Catalog
	for i, k := range []capability.Kind{capability.KindSTT, capability.KindTTS, capability.KindLLM} {
		b, err := os.ReadFile(filepath.Join(dir, string(k)+".jsonc"))
		if err != nil {
			return nil, err
		}
		if cats[i], err = capability.ParseCatalog(k, b); err != nil {
			return nil, fmt.Errorf("%s: %w", k, err)
		}
	}
	var desc []string
	if b, err := os.ReadFile(filepath.Join(dir, "voice_descriptions.jsonc")); err == nil {
		if desc, err = capability.ParseDescriptions(b); err != nil {
			return nil, fmt.Errorf("voice descriptions: %w", err)
		}
	} else if !os.IsNotExist(err) {
		return nil, err
	}
	return capability.NewRegistry(cats[0], cats[1], cats[2], desc), nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

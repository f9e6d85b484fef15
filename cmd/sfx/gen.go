package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gopxl/beep"
	"github.com/spf13/cobra"

	"github.com/lixenwraith/sfx/audio"
	"github.com/lixenwraith/sfx/core"
	"github.com/lixenwraith/sfx/manifest"
)

const manifestFileName = "sounds.yaml"

var genRate int

var genCmd = &cobra.Command{
	Use:   "gen <dir>",
	Short: "Write placeholder WAVs and a manifest for the game catalogue",
	Long: `Synthesize a placeholder for every game sound into <dir>/sounds and write
<dir>/sounds.yaml listing them, ready for "sfx board <dir>/sounds.yaml".`,
	Args: cobra.ExactArgs(1),
	RunE: runGen,
}

func init() {
	genCmd.Flags().IntVar(&genRate, "rate", 22050, "sample rate of generated files")
	rootCmd.AddCommand(genCmd)
}

func runGen(cmd *cobra.Command, args []string) error {
	written, err := generateCatalogue(args[0], beep.SampleRate(genRate))
	if err != nil {
		return err
	}
	for _, path := range written {
		fmt.Fprintln(cmd.OutOrStdout(), path)
	}
	return nil
}

// generateCatalogue writes every preset and the manifest under dir
// The manifest base_url is the absolute dir so it loads from any working directory
func generateCatalogue(dir string, rate beep.SampleRate) ([]string, error) {
	if rate <= 0 {
		return nil, fmt.Errorf("invalid sample rate %d", rate)
	}
	dir, err := filepath.Abs(dir)
	if err != nil {
		return nil, err
	}

	soundsDir := filepath.Join(dir, core.SoundsDir)
	if err := os.MkdirAll(soundsDir, 0755); err != nil {
		return nil, err
	}

	var written []string
	for _, id := range core.Sounds() {
		data, err := audio.PresetWAV(id, rate)
		if err != nil {
			return written, fmt.Errorf("%s: %w", id, err)
		}
		path := filepath.Join(soundsDir, id.File())
		if err := os.WriteFile(path, data, 0644); err != nil {
			return written, err
		}
		written = append(written, path)
	}

	m := manifest.Default()
	m.BaseURL = filepath.ToSlash(dir)
	path := filepath.Join(dir, manifestFileName)
	if err := m.Save(path); err != nil {
		return written, err
	}
	return append(written, path), nil
}

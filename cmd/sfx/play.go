package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"

	"github.com/lixenwraith/sfx/audio"
)

var (
	playName    string
	playTimeout time.Duration
)

var playCmd = &cobra.Command{
	Use:   "play <locator>",
	Short: "Load one sound and play it to completion",
	Args:  cobra.ExactArgs(1),
	RunE:  runPlay,
}

func init() {
	playCmd.Flags().StringVar(&playName, "name", "sound", "name to register the sound under")
	playCmd.Flags().DurationVar(&playTimeout, "timeout", 30*time.Second, "limit for fetching and decoding")
	rootCmd.AddCommand(playCmd)
}

func runPlay(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	player, err := audio.OpenAudioPlayer(cfg)
	if err != nil {
		return fmt.Errorf("opening output: %w", err)
	}
	defer player.Close()

	if audio.IsSilent(player.Output()) {
		fmt.Fprintln(cmd.ErrOrStderr(), "no audio device available, playing silently")
	}

	loadCtx, cancel := context.WithTimeout(ctx, playTimeout)
	defer cancel()
	if err := player.AddAudio(loadCtx, playName, args[0]); err != nil {
		return err
	}

	buf, _ := player.Buffer(playName)
	fmt.Fprintf(cmd.OutOrStdout(), "%s: %s, %d ch, %v\n",
		playName, buf.Container(), buf.Format().NumChannels, buf.Duration().Round(time.Millisecond))

	src := player.Play(playName)
	if src == nil {
		return nil
	}

	// Device buffer still drains after the source finishes
	select {
	case <-src.Done():
		time.Sleep(cfg.BufferDuration)
	case <-ctx.Done():
		src.Stop()
	}
	return nil
}

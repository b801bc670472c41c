package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/eastboundjoe/aviation-study-guide/internal/config"
	"github.com/eastboundjoe/aviation-study-guide/internal/logging"
	"github.com/eastboundjoe/aviation-study-guide/internal/speech"
)

var speakCmd = &cobra.Command{
	Use:   "speak <text...>",
	Short: "Synthesize text to an MP3 file",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.FromEnv()
		if err != nil {
			return err
		}
		logger, err := logging.New(logging.Options{Level: cfg.LogLevel, File: cfg.LogFile})
		if err != nil {
			return fmt.Errorf("build logger: %w", err)
		}
		defer logger.Sync()

		speechCfg := speech.DefaultConfig()
		speechCfg.APIKey = cfg.TTSAPIKey
		speechCfg.RequestsPerSecond = cfg.TTSRate
		client := speech.NewClient(speechCfg, logger)

		audio, err := client.Synthesize(cmd.Context(), strings.Join(args, " "))
		if err != nil {
			return fmt.Errorf("synthesize: %w", err)
		}

		out, _ := cmd.Flags().GetString("output")
		if err := os.WriteFile(out, audio, 0o644); err != nil {
			return fmt.Errorf("write %s: %w", out, err)
		}
		fmt.Printf("Wrote %d bytes to %s\n", len(audio), out)
		return nil
	},
}

func init() {
	speakCmd.Flags().StringP("output", "o", "speech.mp3", "Output MP3 file")
}

package main

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/lixenwraith/sfx/audio"
)

const defaultEnvFile = ".env"

var (
	configFile string
	envFile    string
	debugLog   bool

	flagBackend    string
	flagSampleRate int
	flagVolume     int
	flagBaseURL    string
	flagBufferMs   int

	// Resolved in PersistentPreRunE
	cfg     *audio.Config
	logFile *os.File
)

var rootCmd = &cobra.Command{
	Use:   "sfx",
	Short: "Load and play named sound effects",
	Long: `sfx fetches sound effects by locator, decodes them once and plays them
on demand through a shared volume stage.

Configuration is layered: defaults, then the YAML config file, then SFX_*
environment variables (a .env file is loaded first), then flags.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		logFile = setupLogging(debugLog)

		c, err := loadConfig(cmd.Flags())
		if err != nil {
			return err
		}
		cfg = c
		log.Printf("config: backend=%s rate=%d volume=%.2f base=%q", cfg.Backend, cfg.SampleRate, cfg.InitialVolume(), cfg.BaseURL)
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logFile != nil {
			logFile.Close()
			logFile = nil
		}
	},
}

func init() {
	bindGlobalFlags(rootCmd.PersistentFlags())
}

func bindGlobalFlags(flags *pflag.FlagSet) {
	flags.StringVar(&configFile, "config", "", "config file (default: ./sfx.yaml or ~/.config/sfx/sfx.yaml)")
	flags.StringVar(&envFile, "env-file", defaultEnvFile, "dotenv file loaded before reading SFX_* variables")
	flags.BoolVar(&debugLog, "debug", false, "write a debug log under "+logDir)

	flags.StringVar(&flagBackend, "backend", audio.OutputAuto, "audio output: auto, speaker, pipe, none")
	flags.IntVar(&flagSampleRate, "sample-rate", 44100, "output sample rate in Hz")
	flags.IntVar(&flagVolume, "volume", 100, "initial volume, 0-100")
	flags.StringVar(&flagBaseURL, "base-url", "", "base URL for relative locators")
	flags.IntVar(&flagBufferMs, "buffer-ms", 100, "output buffer length in milliseconds")
}

// loadConfig resolves the effective audio config
// Precedence: flags > SFX_* env (.env included) > config file > defaults
func loadConfig(flags *pflag.FlagSet) (*audio.Config, error) {
	if err := godotenv.Load(envFile); err != nil {
		// A missing default .env is normal
		if envFile != defaultEnvFile || !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("loading %s: %w", envFile, err)
		}
	}

	c := audio.DefaultConfig()
	if err := readConfigFile(c); err != nil {
		return nil, err
	}

	audio.ApplyEnv(c)

	if flags.Changed("backend") {
		c.Backend = flagBackend
	}
	if flags.Changed("sample-rate") {
		c.SampleRate = flagSampleRate
	}
	if flags.Changed("volume") {
		c.Volume = audio.Level(float64(min(max(flagVolume, 0), 100)) / 100.0)
	}
	if flags.Changed("base-url") {
		c.BaseURL = flagBaseURL
	}
	if flags.Changed("buffer-ms") && flagBufferMs > 0 {
		c.BufferDuration = time.Duration(flagBufferMs) * time.Millisecond
	}
	return c, nil
}

// readConfigFile unmarshals the config file into c
// Without --config, a missing default file is not an error
func readConfigFile(c *audio.Config) error {
	v := viper.New()
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("sfx")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if dir, err := os.UserConfigDir(); err == nil {
			v.AddConfigPath(filepath.Join(dir, "sfx"))
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile == "" && errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("reading config: %w", err)
	}

	if err := v.Unmarshal(c); err != nil {
		return fmt.Errorf("parsing config %s: %w", v.ConfigFileUsed(), err)
	}
	log.Printf("config: loaded %s", v.ConfigFileUsed())
	return nil
}

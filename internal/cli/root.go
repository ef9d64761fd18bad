// Package cli implements the pricelens command line.
package cli

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/ppiankov/pricelens/internal/model"
	"github.com/ppiankov/pricelens/internal/version"
)

var (
	cfgFile string
	verbose bool
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "pricelens",
	Short: "pricelens - point at an item tooltip, get its price",
	Long: `pricelens reads the item tooltip under the pointer, works out which item
it names and looks up its current market price.

Recognition runs locally (Tesseract). Misreads are repaired with rules tuned
for item names and matched against the known item list, so the tooltip text
does not need to be read perfectly.`,
	SilenceErrors: true,
	SilenceUsage:  true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		ll, err := cmd.Flags().GetString("log-level")
		if err != nil {
			return err
		}
		setupLogging(ll)
		return nil
	},
}

// Root returns the root command for fang
func Root() *cobra.Command {
	return rootCmd
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("pricelens v%s (%s)\n", version.Version, version.GitCommit)
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	ll := os.Getenv("LOG_LEVEL")
	if ll == "" {
		ll = "WARN"
	}

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $HOME/.pricelens/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().String("log-level", ll, "log level (DEBUG, INFO, WARN, ERROR)")
	rootCmd.PersistentFlags().String("mode", "", "game mode for price lookups (regular, pve)")

	_ = viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
	_ = viper.BindPFlag("catalog.game_mode", rootCmd.PersistentFlags().Lookup("mode"))

	rootCmd.AddCommand(versionCmd)
}

// setupLogging installs a text handler on stderr; stdout carries results
func setupLogging(ll string) {
	level := slog.LevelWarn
	switch strings.ToUpper(ll) {
	case "DEBUG":
		level = slog.LevelDebug
	case "INFO":
		level = slog.LevelInfo
	case "ERROR":
		level = slog.LevelError
	}
	if verbose && level > slog.LevelInfo {
		level = slog.LevelInfo
	}

	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	slog.SetDefault(slog.New(handler))
}

// initConfig reads in config file and ENV variables
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(model.DefaultHome())
		viper.SetConfigType("yaml")
		viper.SetConfigName("config")
	}

	if err := bindSources(viper.GetViper()); err != nil {
		fmt.Fprintf(os.Stderr, "Error registering defaults: %v\n", err)
	}

	if err := viper.ReadInConfig(); err == nil && verbose {
		fmt.Fprintf(os.Stderr, "Using config file: %s\n", viper.ConfigFileUsed())
	}
}

// bindSources registers defaults and maps PRICELENS_CAPTURE_WIDTH style env
// variables onto nested keys
func bindSources(v *viper.Viper) error {
	v.SetEnvPrefix("PRICELENS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return registerDefaults(v)
}

// registerDefaults makes every config key known to viper so env variables
// bind even when no config file sets them
func registerDefaults(v *viper.Viper) error {
	data, err := yaml.Marshal(model.DefaultConfig())
	if err != nil {
		return fmt.Errorf("marshal defaults: %w", err)
	}
	var tree map[string]interface{}
	if err := yaml.Unmarshal(data, &tree); err != nil {
		return fmt.Errorf("unmarshal defaults: %w", err)
	}
	setDefaults(v, "", tree)

	// omitempty keys never show up in the marshalled tree
	for _, key := range []string{"ocr.tessdata_prefix", "catalog.http_proxy", "catalog.https_proxy", "catalog.no_proxy"} {
		v.SetDefault(key, "")
	}
	return nil
}

func setDefaults(v *viper.Viper, prefix string, tree map[string]interface{}) {
	for k, val := range tree {
		key := k
		if prefix != "" {
			key = prefix + "." + k
		}
		if sub, ok := val.(map[string]interface{}); ok {
			setDefaults(v, key, sub)
			continue
		}
		v.SetDefault(key, val)
	}
}

// loadConfig returns defaults overlaid with the config file, env and flags
func loadConfig() (*model.Config, error) {
	cfg := model.DefaultConfig()
	if err := viper.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if _, err := model.ParseGameMode(cfg.Catalog.GameMode); err != nil {
		return nil, err
	}
	cfg.Cache.CorpusDir = expandHome(cfg.Cache.CorpusDir)
	cfg.Debug.Dir = expandHome(cfg.Debug.Dir)
	return cfg, nil
}

func expandHome(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, strings.TrimPrefix(path, "~"))
		}
	}
	return path
}

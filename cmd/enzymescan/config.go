package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/seqlab/enzymescan/internal/score"
)

// initConfig loads ~/.enzymescan.yaml if present. Missing config is
// fine; every setting has a default.
func initConfig() {
	viper.SetConfigName(".enzymescan")
	viper.SetConfigType("yaml")
	if home, err := os.UserHomeDir(); err == nil {
		viper.AddConfigPath(home)
	}
	viper.AddConfigPath(".")

	viper.SetDefault("workers", 0)
	viper.SetDefault("weights.length", score.DefaultWeights().Length)
	viper.SetDefault("weights.signal_peptide", score.DefaultWeights().SignalPeptide)
	viper.SetDefault("weights.confidence", score.DefaultWeights().Confidence)
	viper.SetDefault("weights.complexity", score.DefaultWeights().Complexity)

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			fmt.Fprintf(os.Stderr, "Warning: could not read config: %v\n", err)
		}
	}
}

// configuredWeights returns scoring weights from config, falling back
// to defaults. Validation happens in score.NewScorer.
func configuredWeights() score.Weights {
	w := score.DefaultWeights()
	if err := viper.UnmarshalKey("weights", &w); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: bad weights config: %v\n", err)
		return score.DefaultWeights()
	}
	return w
}

// configuredRulesFile returns the configured rule-table path, if any.
func configuredRulesFile() string {
	return viper.GetString("rules")
}

func defaultWorkers() int {
	return viper.GetInt("workers")
}

// runConfig dispatches the cobra-based config subcommand.
func runConfig(args []string) int {
	cmd := newConfigCmd()
	cmd.SetArgs(args)
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return ExitError
	}
	return ExitSuccess
}

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage enzymescan configuration",
		Long:  "Show, get, or set configuration values. Config is stored in ~/.enzymescan.yaml.",
		Example: `  enzymescan config                         # show all config
  enzymescan config set weights.length 0.4  # change a scoring weight
  enzymescan config get workers             # get a value`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigShow()
		},
	}

	cmd.AddCommand(newConfigSetCmd())
	cmd.AddCommand(newConfigGetCmd())

	return cmd
}

func newConfigSetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Set a configuration value",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigSet(args[0], args[1])
		},
	}
}

func newConfigGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <key>",
		Short: "Get a configuration value",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigGet(args[0])
		},
	}
}

func runConfigShow() error {
	settings := viper.AllSettings()
	if len(settings) == 0 {
		fmt.Println("# No configuration set. Config file: ~/.enzymescan.yaml")
		return nil
	}

	out, err := yaml.Marshal(settings)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	fmt.Print(string(out))
	return nil
}

func runConfigSet(key, value string) error {
	switch value {
	case "true", "yes", "on":
		viper.Set(key, true)
	case "false", "no", "off":
		viper.Set(key, false)
	default:
		viper.Set(key, value)
	}

	cfgFile := viper.ConfigFileUsed()
	if cfgFile == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("cannot determine home directory: %w", err)
		}
		cfgFile = filepath.Join(home, ".enzymescan.yaml")
	}

	if err := viper.WriteConfigAs(cfgFile); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	fmt.Printf("Set %s = %s in %s\n", key, value, cfgFile)
	return nil
}

func runConfigGet(key string) error {
	val := viper.Get(key)
	if val == nil {
		return fmt.Errorf("key %q is not set", key)
	}
	fmt.Println(val)
	return nil
}

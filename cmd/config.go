package cmd

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/arlev/gca/internal/config"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/term"
)

var configKeys = []string{
	"api_key",
	"api_base",
	"model",
	"review_model",
	"temperature",
	"max_tokens",
	"review_max_tokens",
	"timeout_seconds",
}

func isConfigKey(key string) bool {
	for _, k := range configKeys {
		if k == key {
			return true
		}
	}
	return false
}

var (
	configCmd = &cobra.Command{
		Use:   "config",
		Short: "Manage gca configuration",
		Long:  `Manage gca configuration: models, token budgets, API endpoint and key.`,
	}

	configSetCmd = &cobra.Command{
		Use:   "set <key> [value]",
		Short: "Set a configuration value",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			key := strings.ToLower(args[0])
			if !isConfigKey(key) {
				return fmt.Errorf("unknown config key %q (valid: %s)",
					key, strings.Join(configKeys, ", "))
			}

			var value string
			if len(args) == 2 {
				value = args[1]
			} else if key == "api_key" {
				// Keep the key out of shell history when entered interactively.
				secret, err := readSecret(cmd, "Enter API key: ")
				if err != nil {
					return err
				}
				value = secret
			} else {
				return fmt.Errorf("missing value for %q", key)
			}

			viper.Set(key, value)
			if err := config.SaveConfig(); err != nil {
				return fmt.Errorf("failed to save configuration: %w", err)
			}

			if key == "api_key" {
				fmt.Fprintln(cmd.OutOrStdout(), "api_key updated")
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "%s = %s\n", key, value)
			}
			return nil
		},
	}

	configGetCmd = &cobra.Command{
		Use:   "get <key>",
		Short: "Show a configuration value",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key := strings.ToLower(args[0])
			if !isConfigKey(key) {
				return fmt.Errorf("unknown config key %q", key)
			}
			fmt.Fprintln(cmd.OutOrStdout(), displayValue(key))
			return nil
		},
	}

	configListCmd = &cobra.Command{
		Use:   "list",
		Short: "Show the resolved configuration",
		Run: func(cmd *cobra.Command, args []string) {
			keys := append([]string(nil), configKeys...)
			sort.Strings(keys)
			for _, key := range keys {
				fmt.Fprintf(cmd.OutOrStdout(), "%s = %s\n", key, displayValue(key))
			}
		},
	}
)

func displayValue(key string) string {
	value := viper.GetString(key)
	if key == "api_key" && value != "" {
		return "********"
	}
	if value == "" {
		return "<unset>"
	}
	return value
}

func readSecret(cmd *cobra.Command, promptText string) (string, error) {
	if !isatty.IsTerminal(os.Stdin.Fd()) {
		return "", fmt.Errorf("stdin is not a terminal, pass the value as an argument")
	}

	fmt.Fprint(cmd.ErrOrStderr(), promptText)
	secret, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(cmd.ErrOrStderr())
	if err != nil {
		return "", fmt.Errorf("failed to read input: %w", err)
	}
	if len(secret) == 0 {
		return "", fmt.Errorf("empty value")
	}
	return string(secret), nil
}

func init() {
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configGetCmd)
	configCmd.AddCommand(configListCmd)
	rootCmd.AddCommand(configCmd)
}

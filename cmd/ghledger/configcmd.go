package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"ghledger/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage ghledger configuration",
}

var configGetCmd = &cobra.Command{
	Use:   "get <key>",
	Short: "Print one configuration value",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		v, _, err := openConfigFile()
		if err != nil {
			return err
		}
		if !v.IsSet(args[0]) {
			return fmt.Errorf("key %q is not set", args[0])
		}
		fmt.Println(v.Get(args[0]))
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		v, path, err := openConfigFile()
		if err != nil {
			return err
		}
		v.Set(args[0], args[1])
		if err := v.WriteConfigAs(path); err != nil {
			return fmt.Errorf("writing config %s: %w", path, err)
		}
		fmt.Printf("Set %s in %s\n", args[0], path)
		return nil
	},
}

var configListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all configuration values",
	RunE: func(cmd *cobra.Command, args []string) error {
		v, _, err := openConfigFile()
		if err != nil {
			return err
		}
		keys := v.AllKeys()
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Printf("%s = %v\n", k, v.Get(k))
		}
		return nil
	},
}

func init() {
	configCmd.AddCommand(configGetCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configListCmd)
	rootCmd.AddCommand(configCmd)
}

// openConfigFile loads the config file the CLI would use, creating nothing.
func openConfigFile() (*viper.Viper, string, error) {
	path := configPath
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, "", fmt.Errorf("resolving home directory: %w", err)
		}
		path = filepath.Join(home, config.DefaultConfigName)
	}

	v := viper.New()
	v.SetConfigType("yaml")
	v.SetConfigFile(path)
	// A missing file is fine: set creates it, get/list just show nothing.
	if err := v.ReadInConfig(); err != nil && !os.IsNotExist(err) {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, "", fmt.Errorf("reading config %s: %w", path, err)
		}
	}
	return v, path, nil
}

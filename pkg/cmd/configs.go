package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hey-granth/silo/pkg/configs"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Configuration utilities",
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the config file in use",
	RunE: func(cmd *cobra.Command, args []string) error {
		if _, err := configs.Load(configPath); err != nil {
			return err
		}

		used := configs.GetViper().ConfigFileUsed()
		if used == "" {
			fmt.Println("no config file found, using defaults and environment")

			return nil
		}

		fmt.Println(used)

		return nil
	},
}

// configDebugCmd 打印合并后的全部配置键值，便于排查默认值与覆盖来源.
var configDebugCmd = &cobra.Command{
	Use:   "debug",
	Short: "Dump the merged configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		if _, err := configs.Load(configPath); err != nil {
			return err
		}

		v := configs.GetViper()
		for _, key := range v.AllKeys() {
			fmt.Printf("%s = %v\n", key, v.Get(key))
		}

		return nil
	},
}

func init() {
	configCmd.AddCommand(configPathCmd, configDebugCmd)
	rootCmd.AddCommand(configCmd)
}

// Package cmd 定义 silo 的命令行入口.
package cmd

import (
	"github.com/spf13/cobra"

	"github.com/hey-granth/silo/pkg/app"
	"github.com/hey-granth/silo/pkg/configs"
)

// configPath 配置文件或其所在目录的路径.
var configPath string

var rootCmd = &cobra.Command{
	Use:     "silo",
	Short:   "Transfer orchestration and shared-access policy service",
	Long:    "silo issues presigned transfer URLs, tracks upload lifecycle, and enforces shared-link access policy. File bytes never pass through the service.",
	Version: configs.AppVersion,
	RunE: func(cmd *cobra.Command, args []string) error {
		return app.RunServer(configPath)
	},
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	RunE: func(cmd *cobra.Command, args []string) error {
		return app.RunServer(configPath)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "./", "config file or directory containing config.*")
	rootCmd.AddCommand(serveCmd)
}

// Execute 运行根命令.
func Execute() error {
	return rootCmd.Execute()
}

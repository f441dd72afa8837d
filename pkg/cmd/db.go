package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hey-granth/silo/pkg/configs"
	"github.com/hey-granth/silo/pkg/internal/repo"
	"github.com/hey-granth/silo/pkg/internal/storage/db"
	nlog "github.com/hey-granth/silo/pkg/log"
)

var dbCmd = &cobra.Command{
	Use:   "db",
	Short: "Database utilities",
}

// dbLsCmd 列出当前构建支持的数据库类型（随构建标签变化）.
var dbLsCmd = &cobra.Command{
	Use:   "ls",
	Short: "List supported database types",
	Run: func(cmd *cobra.Command, args []string) {
		for _, dbType := range db.GetRegisteredDBTypes() {
			fmt.Println(dbType)
		}
	},
}

// dbMigrateCmd 不启动服务，仅执行模型迁移后退出.
var dbMigrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run schema migrations and exit",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := configs.Load(configPath)
		if err != nil {
			return err
		}

		nlog.Init(cfg.Log, cfg.Server.Debug)

		ctx := context.Background()

		client, err := db.New(ctx, &cfg.DB, false)
		if err != nil {
			return err
		}

		if err := repo.New(client.GetDB()).Migrate(ctx); err != nil {
			return err
		}

		fmt.Println("migrations applied")

		return nil
	},
}

func init() {
	dbCmd.AddCommand(dbLsCmd, dbMigrateCmd)
	rootCmd.AddCommand(dbCmd)
}

package main

import (
	"database/sql"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/medrhouma/Projet-d-integration-sub000/config"
	"github.com/medrhouma/Projet-d-integration-sub000/pkg/database"
	applogger "github.com/medrhouma/Projet-d-integration-sub000/pkg/logger"
)

// migrate 数据库迁移命令行工具：up / down / version
func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:           "migrate",
		Short:         "课表服务数据库迁移工具",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&configPath, "config", os.Getenv("TIMETABLE_CONFIG"), "配置文件路径（默认查找 ./config/config.yaml）")

	root.AddCommand(
		upCmd(&configPath),
		downCmd(&configPath),
		versionCmd(&configPath),
	)
	return root
}

func upCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "up",
		Short: "应用全部未执行的迁移",
		RunE: func(_ *cobra.Command, _ []string) error {
			return withDB(*configPath, func(db *sql.DB, logger *zap.Logger) error {
				return database.RunMigrations(db, logger)
			})
		},
	}
}

func downCmd(configPath *string) *cobra.Command {
	var steps int

	cmd := &cobra.Command{
		Use:     "down",
		Short:   "回退指定步数的迁移",
		Example: "  migrate down --steps=1",
		RunE: func(_ *cobra.Command, _ []string) error {
			return withDB(*configPath, func(db *sql.DB, logger *zap.Logger) error {
				return database.RollbackMigrations(db, steps, logger)
			})
		},
	}
	cmd.Flags().IntVar(&steps, "steps", 1, "回退步数")
	return cmd
}

func versionCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "显示当前迁移版本",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withDB(*configPath, func(db *sql.DB, _ *zap.Logger) error {
				version, dirty, err := database.MigrationVersion(db)
				if err != nil {
					return fmt.Errorf("读取迁移版本失败: %w", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "version=%d dirty=%t\n", version, dirty)
				return nil
			})
		},
	}
}

// withDB 加载配置、建立连接并在执行完 fn 后关闭
func withDB(configPath string, fn func(db *sql.DB, logger *zap.Logger) error) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	logger, err := applogger.NewLogger(&cfg.Log)
	if err != nil {
		return fmt.Errorf("初始化日志失败: %w", err)
	}
	defer logger.Sync()

	gdb, err := database.NewDB(&cfg.Database, cfg.Log.Level, logger)
	if err != nil {
		return fmt.Errorf("数据库连接失败: %w", err)
	}
	sqlDB, err := gdb.DB()
	if err != nil {
		return fmt.Errorf("获取底层 sql.DB 失败: %w", err)
	}
	defer sqlDB.Close()

	return fn(sqlDB, logger)
}

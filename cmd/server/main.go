package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"k8s.io/klog/v2"

	"github.com/Wenfeng-GAO/morning-walk-journal-coach/config"
	"github.com/Wenfeng-GAO/morning-walk-journal-coach/internal/app"
)

var version = "0.1.0"

func main() {
	klog.InitFlags(nil)
	defer klog.Flush()

	rootCmd := &cobra.Command{
		Use:          "morning-note",
		Short:        "Morning walk journal coach",
		Long:         "晨间散步晨记教练：通过三段式问答收集昨天的事实、复盘和今天的计划，生成 Markdown 晨记。",
		Version:      version,
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().AddGoFlagSet(flag.CommandLine)

	rootCmd.AddCommand(serveCmd(), chatCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	var port string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.GetConfig()
			if port != "" {
				cfg.Server.Port = port
			}
			klog.V(6).Info("服务启动中...")

			a, err := app.Build(cmd.Context(), cfg, app.Options{})
			if err != nil {
				return fmt.Errorf("build app: %w", err)
			}

			showBootInfo(cfg)
			if err := a.Engine.Run(":" + cfg.Server.Port); err != nil {
				klog.Errorf("服务启动失败: %v", err)
				return err
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&port, "port", "", "listen port, overrides config and PORT")
	return cmd
}

func showBootInfo(cfg *config.Config) {
	color.Green("morning-note %s  启动成功", version)
	fmt.Printf("%s  ", color.GreenString("➜"))
	fmt.Printf("%s    ", color.New(color.Bold).Sprint("Local:"))
	fmt.Printf("%s\n", color.MagentaString("http://localhost:%s/api", cfg.Server.Port))
	fmt.Printf("%s  ", color.GreenString("➜"))
	fmt.Printf("%s  ", color.New(color.Bold).Sprint("Storage:"))
	fmt.Printf("%s\n", color.MagentaString("%s", cfg.Database.Type))
	fmt.Printf("%s  ", color.GreenString("➜"))
	fmt.Printf("%s      ", color.New(color.Bold).Sprint("LLM:"))
	fmt.Printf("%s\n", color.MagentaString("%s", cfg.LLM.Mode))
}

// Dashboard CLI — инструмент командной строки для чтения и записи
// entries, управления виджетами и снимками через HTTP API.
//
// Использование:
//
//	dashboard [--api-url URL] [--json] <command> <subcommand> [flags]
//
// Команды:
//
//	entry     Чтение и запись entries
//	widget    Управление виджетами
//	snapshot  Снимки таблицы
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/shaiso/Dashboard/internal/cli"
)

// version задаётся через ldflags при сборке.
var version = "dev"

func main() {
	var apiURL string
	var jsonOutput bool

	rootCmd := &cobra.Command{
		Use:           "dashboard",
		Short:         "Dashboard CLI — SmartDashboard telemetry tool",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	defaultURL := "http://localhost:8090"
	if v := os.Getenv("DASHBOARD_API_URL"); v != "" {
		defaultURL = v
	}

	rootCmd.PersistentFlags().StringVar(&apiURL, "api-url", defaultURL, "API server URL")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output in JSON format")

	clientFn := func() *cli.Client { return cli.NewClient(apiURL) }
	outputFn := func() *cli.Output { return cli.NewOutput(jsonOutput) }

	rootCmd.AddCommand(
		cli.NewEntryCmd(clientFn, outputFn),
		cli.NewWidgetCmd(clientFn, outputFn),
		cli.NewSnapshotCmd(clientFn, outputFn),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

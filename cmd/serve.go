package cmd

import (
	"net"

	"github.com/relloyd/geniepipe/actions"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start a web service to launch and monitor ingest runs",
	Long: `Start a web service that launches ingest runs described in JSON and reports their 
status and step statistics. Only one ingest may run at a time; a second request is 
rejected with 409 Conflict. Endpoints:

  POST /ingest                 {"source":"ws","target":"wh.main.genie","pageSize":50}
  GET  /runs
  GET  /runs/{runId}/status
  GET  /runs/{runId}/stats
  GET  /runs/{runId}/stop
  GET  /health
  GET  /stop

Values missing from a request body are taken from the flags below.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true
		serveConfig.Connections = getConnectionHandler()
		serveConfig.StackDumpOnPanic = stackDumpOnPanic
		return actions.RunWebServer(&serveConfig)
	},
}

var serveConfig = actions.WebServerConfig{
	Scheme: "http",
	Addr:   net.IP{0, 0, 0, 0},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().SortFlags = false
	serveCmd.Flags().IPVarP(&serveConfig.Addr, "address", "A", net.IP{0, 0, 0, 0}, "Address to listen on")
	switches.addFlag(serveCmd, &serveConfig.Port, "port", "8080", false, "")
	switches.addFlag(serveCmd, &serveConfig.Defaults.Source, "source", "", false, "")
	switches.addFlag(serveCmd, &serveConfig.Defaults.Target, "target", "", false, "")
	switches.addFlag(serveCmd, &serveConfig.Defaults.Archive, "archive", "", false, "")
	addIngestSettingsFlags(serveCmd, &serveConfig.Defaults.IngestSettings)
	switches.addFlag(serveCmd, &serveConfig.LogLevel, "log-level", "info", false, "")
	switches.addFlag(serveCmd, &serveConfig.StatsDumpFrequencySeconds, "stats", "5", false, "")
}

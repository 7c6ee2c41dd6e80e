package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "necho",
	Short: "N-Echo TCP server and client",
	Long: `necho serves the N-Echo line protocol: each request line is a JSON object
{"n": <count>, "message": <text>} and the reply repeats the message n times.

Server settings are read from the environment (NECHO_HOST, NECHO_PORT,
NECHO_BACKLOG, NECHO_LISTENER_MODE, NECHO_MAX_LINE_BYTES, NECHO_MAX_RESPONSE_BYTES,
NECHO_IDLE_TIMEOUT, HEALTH_SERVER_ENABLED, HEALTH_SERVER_PORT, DEBUG, LOG_FORMAT).`,
	SilenceUsage: true,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// Package cmd wires the CLI commands.
package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "rd-dav-server",
	Short: "Read-only WebDAV server that organizes a debrid library",
	Long: `rd-dav-server exposes a debrid service's flat torrent listing as a
read-only WebDAV tree organized for media servers: movies under
Movies/<Title> (<Year>)/ and episodes under Series/<Title>/Season NN/.

Titles are canonicalized through OMDb, TMDB, TVDB, and TVMaze lookups,
falling back to the parsed release name when no provider matches. File
content is streamed from the debrid service on demand; nothing is
stored locally.`,
}

// Execute runs the root command. Called once from main.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

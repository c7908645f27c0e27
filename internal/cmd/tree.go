package cmd

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/ebrainte/rd-dav-server/internal/config"
	"github.com/ebrainte/rd-dav-server/internal/debrid"
	"github.com/ebrainte/rd-dav-server/internal/log"
	"github.com/ebrainte/rd-dav-server/internal/provider"
	"github.com/ebrainte/rd-dav-server/internal/refresh"
	"github.com/ebrainte/rd-dav-server/internal/tui"
	"github.com/ebrainte/rd-dav-server/internal/vfs"
)

var treePlain bool

var treeCmd = &cobra.Command{
	Use:   "tree",
	Short: "Build the virtual tree once and browse it",
	Long: `Fetch the remote listing, build the virtual tree, and open an
interactive browser. With --plain the tree is printed to stdout
instead, which is handy for scripts and for checking how titles
resolve without starting the server.`,
	RunE: runTree,
}

func runTree(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	if err := log.Init(log.Options{Level: "warn", Format: cfg.LogFormat}); err != nil {
		return err
	}

	client := debrid.NewClient(cfg.RemoteURL, cfg.Username, cfg.Password)
	resolver := provider.NewResolver(buildProviderChain(cfg)...)
	store := vfs.NewStore()
	scheduler := refresh.NewScheduler(client, vfs.NewBuilder(resolver), store, cfg.RefreshInterval())

	ctx, cancel := context.WithTimeout(cmd.Context(), 5*time.Minute)
	defer cancel()
	if err := scheduler.RunOnce(ctx); err != nil {
		return err
	}
	snapshot := store.Current()

	if treePlain {
		printTree(cmd, snapshot.Root, 0)
		return nil
	}

	model := tui.NewBrowserModel(tui.BuildTree(snapshot))
	p := tea.NewProgram(model, tea.WithAltScreen())
	_, err = p.Run()
	return err
}

func printTree(cmd *cobra.Command, node *vfs.Node, depth int) {
	for _, child := range node.Children() {
		indent := strings.Repeat("  ", depth)
		if child.IsDir {
			fmt.Fprintf(cmd.OutOrStdout(), "%s%s/\n", indent, child.Name)
			printTree(cmd, child, depth+1)
		} else {
			fmt.Fprintf(cmd.OutOrStdout(), "%s%s (%d bytes)\n", indent, child.Name, child.Size)
		}
	}
}

func init() {
	treeCmd.Flags().BoolVar(&treePlain, "plain", false, "Print the tree to stdout instead of browsing")
	rootCmd.AddCommand(treeCmd)
}

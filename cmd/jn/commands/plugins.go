package commands

import (
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/jnproject/jn/internal/diagnostics"
	"github.com/jnproject/jn/pkg/cache"
)

var pluginsFormat string

var pluginsCmd = &cobra.Command{
	Use:   "plugins",
	Short: "Inspect the plugin registry",
}

var pluginsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List discovered plugins",
	RunE:  runPluginsList,
}

var pluginsDiscoverCmd = &cobra.Command{
	Use:   "discover",
	Short: "Force a fresh discovery pass, bypassing the cache",
	RunE:  runPluginsDiscover,
}

var pluginsWatchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Watch plugin directories and invalidate the cache on change",
	RunE:  runPluginsWatch,
}

func init() {
	pluginsListCmd.Flags().StringVar(&pluginsFormat, "format", "table", "Output format: table, markdown")
	pluginsCmd.AddCommand(pluginsListCmd)
	pluginsCmd.AddCommand(pluginsDiscoverCmd)
	pluginsCmd.AddCommand(pluginsWatchCmd)
}

func runPluginsList(cmd *cobra.Command, args []string) error {
	rt, err := newRuntime(verbosity)
	if err != nil {
		return err
	}
	rows := pluginRows(rt)

	if pluginsFormat == "markdown" {
		rendered, err := diagnostics.RenderMarkdown(diagnostics.PluginMarkdownTable(rows), 100)
		if err != nil {
			return err
		}
		fmt.Println(rendered)
		return nil
	}
	fmt.Println(diagnostics.RenderPluginTable(rows))
	return nil
}

func runPluginsDiscover(cmd *cobra.Command, args []string) error {
	rt, err := newRuntime(verbosity)
	if err != nil {
		return err
	}
	rt.cache.Invalidate()
	rt, err = newRuntime(verbosity)
	if err != nil {
		return err
	}
	fmt.Println(diagnostics.RenderPluginTable(pluginRows(rt)))
	return nil
}

func runPluginsWatch(cmd *cobra.Command, args []string) error {
	rt, err := newRuntime(verbosity)
	if err != nil {
		return err
	}
	dirs := pluginTierDirs(rt.projectRoot, rt.installRoot)
	w, err := cache.NewWatcher(rt.cache, dirs, rt.log)
	if err != nil {
		return err
	}
	w.Start()
	defer w.Stop()

	fmt.Println("watching plugin directories (ctrl-c to stop):")
	for _, d := range w.WatchedDirs() {
		fmt.Println("  " + d)
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt)
	<-sigCh
	return nil
}

func pluginRows(rt *runtime) []diagnostics.PluginRow {
	var rows []diagnostics.PluginRow
	for _, info := range rt.registry.All() {
		rows = append(rows, diagnostics.PluginRow{
			Name:     info.Name,
			Role:     string(info.Role),
			Tier:     string(info.Tier),
			Language: string(info.Language),
			Version:  info.Version,
			Matches:  info.Matches,
		})
	}
	return rows
}

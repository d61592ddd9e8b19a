package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jnproject/jn/pkg/address"
	"github.com/jnproject/jn/pkg/pipeline"
	"github.com/jnproject/jn/pkg/plugin"
	"github.com/jnproject/jn/pkg/resolver"
)

var (
	verbosity   int
	readerMode  string
	readerFlags []string
	delimiter   string
	noHeader    bool
	httpHeaders []string
	injectMeta  bool
)

// SetVersion allows main to set the version shown by --version.
func SetVersion(v string) {
	rootCmd.Version = v
}

var rootCmd = &cobra.Command{
	Use:   "jn <address>",
	Short: "Read, write, and pipe NDJSON from any address",
	Long: `jn resolves an address (stdin, a file, a URL, a profile, or a glob) to
a pipeline of plugin processes and runs it, streaming newline-delimited JSON.

Examples:
  jn data.csv                     # read a CSV file as NDJSON
  cat data.json | jn -            # pass NDJSON through unchanged
  jn @acme/orders                 # read via a named profile
  jn 'logs/*.log.gz'              # expand a glob, decompress, parse each file`,
	Args: cobra.ExactArgs(1),
	RunE: runReader,
}

func init() {
	rootCmd.PersistentFlags().CountVarP(&verbosity, "verbose", "v", "Increase log verbosity (-v, -vv, -vvv)")
	rootCmd.Flags().StringVar(&readerMode, "jn-mode", "read", "Plugin mode to resolve for: read, write, raw, profiles")
	rootCmd.Flags().StringArrayVar(&readerFlags, "reader-flag", nil, "Additional --key=value flag forwarded verbatim to the resolved format plugin")
	rootCmd.Flags().StringVar(&delimiter, "delimiter", "", "Field delimiter forwarded to the resolved format plugin as --delimiter=CHAR")
	rootCmd.Flags().BoolVar(&noHeader, "no-header", false, "Forward --no-header to the resolved format plugin (treat the first record as data, not a header)")
	rootCmd.Flags().StringArrayVar(&httpHeaders, "header", nil, `HTTP header "Key: Value", repeatable; overrides a matching header on an http profile`)
	rootCmd.Flags().BoolVar(&injectMeta, "meta", false, "Inject _path/_dir/_filename/... metadata fields into each matched file's records")
	rootCmd.Flags().BoolVar(&injectMeta, "inject-meta", false, "Alias for --meta")

	rootCmd.AddCommand(pluginsCmd)
	rootCmd.AddCommand(profileCmd)
	rootCmd.AddCommand(serveMetricsCmd)
}

// Execute runs the root command.
func Execute() error {
	rootCmd.CompletionOptions.DisableDefaultCmd = true
	return rootCmd.Execute()
}

func runReader(cmd *cobra.Command, args []string) error {
	rt, err := newRuntime(verbosity)
	if err != nil {
		return err
	}

	addr := address.Parse(args[0])

	flags := append([]string{}, readerFlags...)
	if delimiter != "" {
		flags = append(flags, "--delimiter="+delimiter)
	}
	if noHeader {
		flags = append(flags, "--no-header")
	}

	headers, err := parseHeaderFlags(httpHeaders)
	if err != nil {
		return err
	}

	inject := addr.Kind == address.KindGlob
	if cmd.Flags().Changed("meta") || cmd.Flags().Changed("inject-meta") {
		inject = injectMeta
	}

	opts := resolver.Options{
		Mode:        plugin.Mode(readerMode),
		ReaderFlags: flags,
		InjectMeta:  inject,
		HTTPHeaders: headers,
	}

	// A resolution failure is a generic error: exit 1, same as any other
	// pre-pipeline failure. A glob expands to one Spec per matched file;
	// every other address kind resolves to exactly one.
	specs, err := rt.resolver.ResolveAll(addr, opts)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// SIGINT during orchestration exits 130; children inherit the signal via
	// the shared process group and the orchestrator's own Wait loop observes
	// their exit status normally.
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt)
	go func() {
		if sig, ok := <-sigCh; ok {
			cancel()
			os.Exit(pipeline.SignalExitCode(sig))
		}
	}()

	// Runs execute one matched file at a time, in sorted order; the first
	// non-zero exit stops the fan-out and becomes the process's own exit
	// code, same as a shell "set -e" loop would behave.
	for _, spec := range specs {
		if code := rt.orch.Run(ctx, spec, os.Stdin, os.Stdout); code != 0 {
			os.Exit(code)
		}
	}
	os.Exit(0)
	return nil
}

// parseHeaderFlags parses repeated "Key: Value" strings from --header into a
// header map for an HTTP fetch stage, overriding any same-named header an
// http profile already sets.
func parseHeaderFlags(raw []string) (map[string]string, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	headers := make(map[string]string, len(raw))
	for _, h := range raw {
		key, value, ok := strings.Cut(h, ":")
		if !ok {
			return nil, fmt.Errorf("invalid --header %q: expected \"Key: Value\"", h)
		}
		headers[strings.TrimSpace(key)] = strings.TrimSpace(value)
	}
	return headers, nil
}

// cmd/coursectl/main.go
//
// Operator CLI for coursehost.  Shares configuration and the Resolver with
// cmd/web, so `resolve` answers exactly what the server would for a host.
//
//	coursectl resolve courses.acme.com www.admin.acme.com
//	coursectl schema
//	coursectl domains 42 --out json
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/yanizio/coursehost/internal/app"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := newRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		out      = envOr("COURSEHOST_OUT", "text")
		logLevel = envOr("COURSEHOST_LOG_LEVEL", "warn")
		a        *app.App
	)

	root := &cobra.Command{
		Use:          "coursectl",
		Short:        "Inspect host to course resolution",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if out != "text" && out != "json" {
				return fmt.Errorf("--out must be text or json, got %q", out)
			}
			var err error
			a, err = app.New(cmd.Context(), app.Options{LogLevel: logLevel})
			return err
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if a == nil {
				return nil
			}
			return a.Close()
		},
	}
	root.PersistentFlags().StringVar(&out, "out", out, "output format: text|json (env COURSEHOST_OUT)")
	root.PersistentFlags().StringVar(&logLevel, "log-level", logLevel, "file log level (env COURSEHOST_LOG_LEVEL)")

	get := func() *app.App { return a }
	root.AddCommand(
		newResolveCmd(get, &out),
		newSchemaCmd(get, &out),
		newDomainsCmd(get, &out),
	)
	return root
}

func envOr(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func newTable() *tabwriter.Writer {
	return tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
}

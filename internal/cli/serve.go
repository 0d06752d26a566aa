package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/scatter/internal/server"
	"github.com/matzehuels/scatter/pkg/store"
)

// serveCommand creates the serve command that runs the HTTP API.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr    string
		dsn     string
		noCache bool
		maxBody int64
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the HTTP API",
		Long: `Serve the HTTP API for generating, storing, editing and exporting
compositions.

Documents live in memory unless --store names a SQLite file (scatter.db,
file:PATH) or a MongoDB URI. The listen address, store and cache default
to the [server] section of the settings file and can be overridden with
SCATTER_ADDR, SCATTER_STORE and SCATTER_CACHE.`,
		Example: `  scatter serve
  scatter serve --addr :9000 --store scatter.db
  SCATTER_CACHE=redis://localhost:6379/0 scatter serve --store mongodb://localhost:27017/scatter`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, err := loadSettings()
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("addr") {
				addr = settings.addr()
			}
			if !cmd.Flags().Changed("store") {
				dsn = settings.Server.Store
			}
			return c.runServe(cmd.Context(), addr, dsn, noCache, maxBody)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", server.DefaultAddr, "listen address")
	cmd.Flags().StringVar(&dsn, "store", "", "document store: memory (default), PATH.db, file:PATH, mongodb://...")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	cmd.Flags().Int64Var(&maxBody, "max-body", server.DefaultMaxBodyBytes, "maximum request body size in bytes")

	return cmd
}

func (c *CLI) runServe(ctx context.Context, addr, dsn string, noCache bool, maxBody int64) error {
	runner, err := c.newRunner(ctx, noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	st, err := store.Open(ctx, dsn)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer st.Close()

	srv := server.New(server.Config{
		Runner:       runner,
		Store:        st,
		Logger:       c.Logger,
		MaxBodyBytes: maxBody,
	})

	printInfo("Serving on %s", StyleLink.Render("http://"+addr))
	return srv.ListenAndServe(ctx, addr)
}

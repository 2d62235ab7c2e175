package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/vanderheijden86/pensum/pkg/debug"
	"github.com/vanderheijden86/pensum/pkg/export"
	"github.com/vanderheijden86/pensum/pkg/model"
	"github.com/vanderheijden86/pensum/pkg/server"
	"github.com/vanderheijden86/pensum/pkg/watcher"
)

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the live graph in a browser",
		Long: `serve starts a local web server. Hover events travel over a websocket
to the server, which answers with style batches; edits to the curriculum
file reload every open page.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := loadEnv(cmd)
			if err != nil {
				return err
			}
			addr := e.cfg.Server.Addr
			if cmd.Flags().Changed("addr") {
				addr, _ = cmd.Flags().GetString("addr")
			}
			openBrowser := e.cfg.Server.OpenBrowser
			if noOpen, _ := cmd.Flags().GetBool("no-open"); noOpen {
				openBrowser = false
			}
			title := e.curriculum.Career.Name

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			s := server.New(e.curriculum, server.Options{Addr: addr, Title: title, View: e.viewConfig()})

			if e.cfg.UI.Watch {
				stderr := cmd.ErrOrStderr()
				err := watcher.WatchCurriculum(ctx, e.path, e.parse, func(c *model.Curriculum, err error) {
					if err != nil {
						fmt.Fprintf(stderr, "Reload failed: %v\n", err)
						return
					}
					s.Reload(c)
					fmt.Fprintf(stderr, "Reloaded %s (%d subjects)\n", e.path, len(c.Subjects))
				})
				if err != nil {
					debug.Log("serve: watch disabled: %v", err)
				}
			}

			out := cmd.OutOrStdout()
			return s.ListenAndServe(ctx, func(url string) {
				fmt.Fprintf(out, "Serving %s at %s (Ctrl+C to stop)\n", e.path, url)
				if openBrowser {
					if err := export.OpenInBrowser(url); err != nil {
						fmt.Fprintf(cmd.ErrOrStderr(), "Warning: could not open browser: %v\n", err)
					}
				}
			})
		},
	}
	cmd.Flags().String("addr", "", "Listen address (default from config, 127.0.0.1:0)")
	cmd.Flags().Bool("no-open", false, "Do not open a browser")
	return cmd
}

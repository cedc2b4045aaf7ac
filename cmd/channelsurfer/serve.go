package main

import (
	"context"
	"fmt"
	"log/slog"
	"net"

	"github.com/spf13/cobra"

	"channelsurfer/internal/config"
	"channelsurfer/internal/playback"
)

// guideServer is a playback server running in the background of a command.
type guideServer struct {
	address string
	cancel  context.CancelFunc
	done    chan error
}

func startGuideServer(ctx context.Context, cfg *config.Config, hub *playback.Hub, logger *slog.Logger) (*guideServer, error) {
	srv, err := playback.New(cfg, playback.WithHub(hub), playback.WithLogger(logger))
	if err != nil {
		return nil, err
	}
	listener, err := net.Listen("tcp", cfg.Server.Bind)
	if err != nil {
		return nil, fmt.Errorf("listen on %s: %w", cfg.Server.Bind, err)
	}
	runCtx, cancel := context.WithCancel(ctx)
	gs := &guideServer{
		address: listener.Addr().String(),
		cancel:  cancel,
		done:    make(chan error, 1),
	}
	go func() {
		gs.done <- srv.Serve(runCtx, listener)
	}()
	return gs, nil
}

func (g *guideServer) url() string {
	return "http://" + g.address
}

// wait blocks until the server stops on its own or its context ends.
func (g *guideServer) wait() error {
	err := <-g.done
	g.cancel()
	return err
}

func (g *guideServer) stop() error {
	g.cancel()
	return <-g.done
}

func newServeCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the TV guide playback server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := ctx.configValue()
			server, err := startGuideServer(cmd.Context(), cfg, nil, ctx.loggerValue())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Server running on %s\n", server.url())
			fmt.Fprintf(out, "Serving library %s (Ctrl+C to stop)\n", cfg.Paths.LibraryDir)
			return server.wait()
		},
	}
}

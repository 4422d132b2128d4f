package main

import (
	"cmp"
	"context"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/desertthunder/listenx/internal/server"
)

// Serve runs the JSON API until the process is interrupted.
func (r *Runner) Serve(ctx context.Context, cmd *cli.Command) error {
	agg, err := r.aggregator()
	if err != nil {
		return err
	}

	addr := cmp.Or(cmd.String("addr"), r.config.Server.Addr)
	timeout := time.Duration(r.config.Server.WriteTimeout) * time.Second
	srv := server.New(addr, server.NewCatalogRouter(agg, r.logger), timeout, r.logger)

	r.writeStatus("%s\n", r.palette.OK.Render("✓ serving on http://"+addr))
	return srv.ListenAndServe(ctx)
}

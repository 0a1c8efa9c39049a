// Copyright (c) Microsoft. All rights reserved.

package main

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	af "github.com/microsoft/weather-agent/go/agentframework"
	"github.com/microsoft/weather-agent/go/server"
)

func newServeCmd(a *app) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the chat endpoint",
		Long: `Serve the conversational endpoint:

  POST /api/chat            send {"messages":[...]} and receive the answer
  GET  /api/sessions/{id}   read a session transcript
  GET  /health              liveness probe`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			asst, err := a.newAssistant()
			if err != nil {
				return err
			}
			if addr == "" {
				addr = a.cfg.Addr
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			srv := server.New(asst.Agent(), af.NewInMemoryStore(), a.log)
			return srv.ListenAndServe(ctx, addr)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address, overrides ADDR/PORT")
	return cmd
}

package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/habiliai/mcpchat"
	"github.com/habiliai/mcpchat/errors"
	"github.com/habiliai/mcpchat/internal/mylog"
	"github.com/habiliai/mcpchat/server"
	"github.com/spf13/cobra"
)

func newServeCmd(root *rootParams) *cobra.Command {
	params := &struct {
		Host string
		Port int
	}{}
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the chat over HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			conf, err := root.loadConfig(cmd)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("host") {
				conf.Server.Host = params.Host
			}
			if cmd.Flags().Changed("port") {
				conf.Server.Port = params.Port
			}
			logger := mylog.NewLoggerFromConfig(&conf.Log)

			c, err := mcpchat.NewChat(ctx, mcpchat.WithConfig(conf), mcpchat.WithLogger(logger))
			if err != nil {
				return errors.Wrapf(err, "failed to start chat")
			}
			defer c.Close()

			addr := fmt.Sprintf("%s:%d", conf.Server.Host, conf.Server.Port)
			return server.ListenAndServe(ctx, addr, c.Handler(), logger)
		},
	}

	cmd.Flags().StringVar(&params.Host, "host", "0.0.0.0", "Host to listen on")
	cmd.Flags().IntVarP(&params.Port, "port", "p", 8080, "Port to listen on")

	return cmd
}

package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/habiliai/mcpchat"
	"github.com/habiliai/mcpchat/config"
	"github.com/habiliai/mcpchat/errors"
	"github.com/habiliai/mcpchat/internal/mylog"
	"github.com/spf13/cobra"
)

const defaultConfigFile = "mcpchat.yaml"

type rootParams struct {
	ConfigFile string
	EnvFile    string
	MemoryPath string
	LogLevel   string
	LogHandler string
}

// loadConfig reads the config file, the environment and the flags, in that order.
func (p *rootParams) loadConfig(cmd *cobra.Command) (*config.Config, error) {
	var (
		conf *config.Config
		err  error
	)
	switch {
	case p.ConfigFile != "":
		if conf, err = config.LoadConfigFromFile(p.ConfigFile); err != nil {
			return nil, err
		}
	case fileExists(defaultConfigFile):
		if conf, err = config.LoadConfigFromFile(defaultConfigFile); err != nil {
			return nil, err
		}
	default:
		conf = config.NewConfig()
	}

	if err := conf.ApplyEnv(p.EnvFile); err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("memory-path") {
		conf.Memory.Path = p.MemoryPath
	}
	if flags.Changed("log-level") {
		conf.Log.LogLevel = p.LogLevel
	}
	if flags.Changed("log-handler") {
		conf.Log.LogHandler = p.LogHandler
	}

	return conf, nil
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func newRootCmd() *cobra.Command {
	params := &rootParams{}
	cmd := &cobra.Command{
		Use:           "mcpchat",
		Short:         "Chat with a language model and MCP tool servers, with long-term memory",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			conf, err := params.loadConfig(cmd)
			if err != nil {
				return err
			}
			logger := mylog.NewLoggerFromConfig(&conf.Log)

			c, err := mcpchat.NewChat(ctx, mcpchat.WithConfig(conf), mcpchat.WithLogger(logger))
			if err != nil {
				return errors.Wrapf(err, "failed to start chat")
			}
			defer c.Close()

			fmt.Fprintln(cmd.OutOrStdout(), "Type 'exit', 'quit' or 'q' to leave, 'clear' to forget the conversation.")
			return c.Run(ctx, cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVarP(&params.ConfigFile, "config", "c", "", "Config file (default mcpchat.yaml if present)")
	flags.StringVar(&params.EnvFile, "env-file", ".env", "Dotenv file with credentials")
	flags.StringVar(&params.MemoryPath, "memory-path", "", "Location of the memory snapshot")
	flags.StringVar(&params.LogLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	flags.StringVar(&params.LogHandler, "log-handler", "default", "Log handler (default, text, json)")

	cmd.AddCommand(
		newServeCmd(params),
		newCheckCmd(params),
		newConfigCmd(),
	)

	return cmd
}

func Execute() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "error: %+v\n", err)
		os.Exit(1)
	}
}

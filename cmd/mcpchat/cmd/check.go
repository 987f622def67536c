package cmd

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/habiliai/mcpchat/errors"
	"github.com/habiliai/mcpchat/internal/mylog"
	"github.com/habiliai/mcpchat/tool"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
)

func newCheckCmd(root *rootParams) *cobra.Command {
	params := &struct {
		JSON bool
	}{}
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Validate the configuration and connect to every MCP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			conf, err := root.loadConfig(cmd)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			configErr := conf.Validate()

			manager := tool.NewManager(mylog.NewLoggerFromConfig(&conf.Log))
			defer manager.Close()
			report := manager.Check(cmd.Context(), &conf.Tool)

			if params.JSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(map[string]any{
					"config":  lo.Ternary(configErr == nil, "ok", fmt.Sprint(configErr)),
					"servers": report,
				})
			}

			fmt.Fprintf(out, "config: %s\n", lo.Ternary(configErr == nil, "ok", fmt.Sprint(configErr)))
			if len(report) == 0 {
				fmt.Fprintln(out, "no MCP servers configured")
			}
			for _, status := range report {
				if status.OK {
					fmt.Fprintf(out, "[ok]   %s (%s): %s\n", status.Server, status.Transport, strings.Join(status.Tools, ", "))
				} else {
					fmt.Fprintf(out, "[fail] %s (%s): %s\n", status.Server, status.Transport, status.Error)
				}
			}

			failed := lo.CountBy(report, func(s tool.ServerStatus) bool {
				return !s.OK
			})
			if configErr != nil {
				return configErr
			}
			if failed > 0 {
				return errors.Errorf("%d of %d MCP servers failed", failed, len(report))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&params.JSON, "json", false, "Print the report as JSON")

	return cmd
}

package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/goccy/go-yaml"
	"github.com/habiliai/mcpchat/config"
	"github.com/habiliai/mcpchat/errors"
	"github.com/invopop/jsonschema"
	"github.com/spf13/cobra"
)

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration helpers",
	}
	cmd.AddCommand(newConfigSchemaCmd(), newConfigInitCmd())
	return cmd
}

func newConfigSchemaCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "schema",
		Short: "Print the JSON schema of the config file",
		RunE: func(cmd *cobra.Command, args []string) error {
			r := &jsonschema.Reflector{
				FieldNameTag: "yaml",
			}
			schema := r.Reflect(&config.Config{})

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(schema)
		},
	}
}

func newConfigInitCmd() *cobra.Command {
	params := &struct {
		Force bool
	}{}
	cmd := &cobra.Command{
		Use:   "init [file]",
		Short: "Write an example config file",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			file := defaultConfigFile
			if len(args) > 0 {
				file = args[0]
			}
			if fileExists(file) && !params.Force {
				return errors.Errorf("%s already exists, use --force to overwrite", file)
			}

			data, err := yaml.Marshal(config.ExampleConfig())
			if err != nil {
				return errors.Wrapf(err, "failed to marshal config")
			}
			if err := os.WriteFile(file, data, 0644); err != nil {
				return errors.Wrapf(err, "failed to write %s", file)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", file)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&params.Force, "force", "f", false, "Overwrite an existing file")

	return cmd
}

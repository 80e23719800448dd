package main

import (
	"encoding/json"
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/trezcool/masomo-courseware/core/learning"
)

func (cli *commandLine) catalogCommand() *cobra.Command {
	catalog := &cobra.Command{
		Use:   "catalog",
		Short: "Manage the course catalog",
		RunE:  help,
	}
	catalog.AddCommand(&cobra.Command{
		Use:   "import FILE",
		Short: "Import courses, assessments & learners from a JSON file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return cli.importCatalog(cmd, args[0])
		},
	})
	return catalog
}

func (cli *commandLine) importCatalog(cmd *cobra.Command, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrap(err, "reading catalog")
	}
	var cat learning.Catalog
	if err = json.Unmarshal(data, &cat); err != nil {
		return errors.Wrap(err, "decoding catalog")
	}
	if err = cat.Validate(cli.validate); err != nil {
		return err
	}

	report, err := cli.svc.ImportCatalog(cmd.Context(), cat)
	if err != nil {
		return err
	}
	return cli.printJSON(report)
}

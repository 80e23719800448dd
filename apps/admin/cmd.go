package main

import (
	"encoding/json"
	"errors"
	"io"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"

	"github.com/trezcool/masomo-courseware/core"
	"github.com/trezcool/masomo-courseware/core/assessment"
	"github.com/trezcool/masomo-courseware/core/course"
	"github.com/trezcool/masomo-courseware/core/learning"
)

var errHelp = errors.New("help provided")

type commandLine struct {
	db       *sqlx.DB
	svc      *learning.Service
	validate *validator.Validate
	out      io.Writer
}

func newCommandLine(db *sqlx.DB, svc *learning.Service, out io.Writer) *commandLine {
	validate := validator.New()
	translator := core.NewTranslator()
	core.InitValidators(validate, translator)
	course.RegisterValidators(validate, translator)
	assessment.RegisterValidators(validate, translator)
	return &commandLine{db: db, svc: svc, validate: validate, out: out}
}

func (cli *commandLine) rootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "admin",
		Short:         "Masomo courseware administration",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_ = cmd.Help()
			return errHelp
		},
	}
	root.SetOut(cli.out)

	root.AddCommand(cli.migrateCommand())
	root.AddCommand(cli.catalogCommand())
	root.AddCommand(cli.progressCommand())
	root.AddCommand(cli.certificatesCommand())
	return root
}

// run executes args (program name included).
func (cli *commandLine) run(args []string) error {
	root := cli.rootCommand()
	cmdArgs := []string{} // never nil: cobra would fall back to os.Args
	if len(args) > 1 {
		cmdArgs = args[1:]
	}
	root.SetArgs(cmdArgs)
	return root.Execute()
}

// help prints the usage of a command that got no sub-command.
func help(cmd *cobra.Command, _ []string) error {
	_ = cmd.Help()
	return errHelp
}

func (cli *commandLine) printJSON(v interface{}) error {
	enc := json.NewEncoder(cli.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

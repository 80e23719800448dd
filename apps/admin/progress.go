package main

import (
	"github.com/spf13/cobra"
)

func (cli *commandLine) progressCommand() *cobra.Command {
	progress := &cobra.Command{
		Use:   "progress",
		Short: "Inspect learner progress",
		RunE:  help,
	}

	show := &cobra.Command{
		Use:   "show",
		Short: "Evaluate a learner in a course (read only)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			courseID, _ := cmd.Flags().GetString("course")
			studentID, _ := cmd.Flags().GetString("student")
			ev, err := cli.svc.Progress(cmd.Context(), courseID, studentID)
			if err != nil {
				return err
			}
			return cli.printJSON(ev)
		},
	}
	show.Flags().String("course", "", "course id")
	show.Flags().String("student", "", "learner id")
	_ = show.MarkFlagRequired("course")
	_ = show.MarkFlagRequired("student")

	progress.AddCommand(show)
	return progress
}

func (cli *commandLine) certificatesCommand() *cobra.Command {
	certificates := &cobra.Command{
		Use:   "certificates",
		Short: "Manage certificates",
		RunE:  help,
	}

	reconcile := &cobra.Command{
		Use:   "reconcile",
		Short: "Re-evaluate every learner of a course and issue missing certificates",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			courseID, _ := cmd.Flags().GetString("course")
			report, err := cli.svc.Reconcile(cmd.Context(), courseID)
			if err != nil {
				return err
			}
			return cli.printJSON(report)
		},
	}
	reconcile.Flags().String("course", "", "course id")
	_ = reconcile.MarkFlagRequired("course")

	certificates.AddCommand(reconcile)
	return certificates
}

package main

import (
	"fmt"
	"io"
	"time"

	"virtualos/internal/state"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"
)

func (a *app) systemsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "systems",
		Short: "List known systems",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.listSystems(cmd.OutOrStdout())
		},
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "forget <container.vos>",
		Short: "Remove a system from the list without deleting it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.forgetSystem(cmd.OutOrStdout(), args[0])
		},
	})
	return cmd
}

func (a *app) listSystems(out io.Writer) error {
	mgr, err := a.stateManager()
	if err != nil {
		return err
	}
	reg, err := mgr.Load()
	if err != nil {
		return err
	}

	records := reg.Sorted()
	if len(records) == 0 {
		_, err := fmt.Fprintln(out, "No known systems. Create one with 'vos install'.")
		return err
	}

	r := lipgloss.NewRenderer(out)
	header := r.NewStyle().Bold(true).Padding(0, 1)
	cell := r.NewStyle().Padding(0, 1)

	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("", "NAME", "PATH", "LAST BOOTED").
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return header
			}
			return cell
		})
	for _, rec := range records {
		marker := ""
		if rec.Path == reg.LastBooted {
			marker = "*"
		}
		t.Row(marker, rec.Name, rec.Path, when(rec.LastBootedAt))
	}

	_, err = fmt.Fprintln(out, t.Render())
	return err
}

func (a *app) forgetSystem(out io.Writer, arg string) error {
	path, err := absContainer(arg)
	if err != nil {
		return err
	}
	mgr, err := a.stateManager()
	if err != nil {
		return err
	}

	var found bool
	if err := mgr.Update(func(r *state.Registry) error {
		found = r.Forget(path)
		return nil
	}); err != nil {
		return err
	}
	if !found {
		return fmt.Errorf("%s is not a known system", path)
	}
	_, err = fmt.Fprintf(out, "Forgot %s\n", path)
	return err
}

func when(t time.Time) string {
	if t.IsZero() {
		return "never"
	}
	return t.Local().Format(time.DateTime)
}

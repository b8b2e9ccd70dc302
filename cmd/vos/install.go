package main

import (
	"errors"
	"fmt"
	"io"
	"time"

	"virtualos/internal/console"
	"virtualos/internal/install"
	"virtualos/internal/state"

	"github.com/spf13/cobra"
)

type installFlags struct {
	name     string
	users    []string
	password string
}

func (a *app) installCmd() *cobra.Command {
	var f installFlags

	cmd := &cobra.Command{
		Use:   "install <container.vos>",
		Short: "Create a new system container",
		Long: `Create a new system container with the given name and users.

Each user gets a home directory. Passwords are asked for interactively
unless --password is given, in which case every user shares it.`,
		Example: `  vos install lab.vos --name lab --user alice
  vos install lab.vos --name lab --user alice --user bob --password secret`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.install(cmd.InOrStdin(), cmd.OutOrStdout(), args[0], f)
		},
	}

	cmd.Flags().StringVar(&f.name, "name", "", "system name (required)")
	cmd.Flags().StringArrayVar(&f.users, "user", nil, "user to create, repeatable (required)")
	cmd.Flags().StringVar(&f.password, "password", "", "password for every user instead of prompting")
	cmd.Flags().Int("bcrypt-cost", 0, "bcrypt cost for stored passwords")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}

func (a *app) install(in io.Reader, out io.Writer, arg string, f installFlags) error {
	path, err := absContainer(arg)
	if err != nil {
		return err
	}

	term := console.New(in, out)
	opts := install.Options{SystemName: f.name, BcryptCost: a.cfg.BcryptCost}
	for _, name := range f.users {
		password := f.password
		if password == "" {
			if password, err = term.Password(name + "'s password"); err != nil {
				if errors.Is(err, io.EOF) {
					return fmt.Errorf("no password given for %s", name)
				}
				return err
			}
		}
		opts.Users = append(opts.Users, install.UserSpec{Name: name, Password: password})
	}

	if err := install.Install(path, opts); err != nil {
		return err
	}
	term.Success(fmt.Sprintf("Installed %s at %s", f.name, path))

	mgr, err := a.stateManager()
	if err != nil {
		return err
	}
	return mgr.Update(func(r *state.Registry) error {
		r.MarkInstalled(path, f.name, time.Now())
		return nil
	})
}

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nordweb/portal/pkg/account"
	"github.com/nordweb/portal/pkg/api"
)

func newUserCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user {create|set-role}",
		Short: "manage portal accounts",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}
	cmd.AddCommand(newUserCreateCmd(opts))
	cmd.AddCommand(newUserSetRoleCmd(opts))
	return cmd
}

func newUserCreateCmd(opts *options) *cobra.Command {
	var (
		in   account.SignUpInput
		role string
	)

	cmd := &cobra.Command{
		Use:   "create",
		Short: "create an account with a given role",
		Example: `  nordweb user create --email mette@nordweb.dk --password 'long secret' \
    --name "Mette Lund" --role owner`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := api.ParseRole(role)
			if err != nil {
				return err
			}

			cfg, err := opts.load()
			if err != nil {
				return err
			}
			store, err := openStore(cmd.Context(), cfg.Storage, false)
			if err != nil {
				return err
			}
			defer store.Close()

			// No tokens are issued from the command line.
			svc, err := account.New(store, nil, account.Config{BcryptCost: cfg.Auth.BcryptCost})
			if err != nil {
				return err
			}
			p, err := svc.CreateUser(cmd.Context(), in, r)
			if err != nil {
				return err
			}

			_, err = fmt.Fprintf(cmd.OutOrStdout(), "created %s <%s> as %s (%s)\n", p.FullName, p.Email, p.Role, p.ID)
			return err
		},
	}

	f := cmd.Flags()
	f.StringVar(&in.Email, "email", "", "email address (required)")
	f.StringVar(&in.Password, "password", "", "initial password (required)")
	f.StringVar(&in.FullName, "name", "", "full name (required)")
	f.StringVar(&in.Company, "company", "", "company name")
	f.StringVar(&role, "role", string(api.RoleUser), "role: user, admin or owner")
	cmd.MarkFlagRequired("email")
	cmd.MarkFlagRequired("password")
	cmd.MarkFlagRequired("name")
	return cmd
}

func newUserSetRoleCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "set-role <email> <role>",
		Short: "change the role of an account",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			role, err := api.ParseRole(args[1])
			if err != nil {
				return err
			}

			cfg, err := opts.load()
			if err != nil {
				return err
			}
			store, err := openStore(cmd.Context(), cfg.Storage, false)
			if err != nil {
				return err
			}
			defer store.Close()

			svc, err := account.New(store, nil, account.Config{BcryptCost: cfg.Auth.BcryptCost})
			if err != nil {
				return err
			}
			p, err := svc.SetRoleByEmail(cmd.Context(), args[0], role)
			if err != nil {
				return err
			}

			_, err = fmt.Fprintf(cmd.OutOrStdout(), "%s is now %s\n", p.Email, p.Role)
			return err
		},
	}
}

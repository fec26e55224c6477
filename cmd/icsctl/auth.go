package main

import (
	"context"
	"fmt"
	"os"

	"github.com/MKhiriev/go-ics-sync/models"
	"github.com/spf13/cobra"
)

const passwordEnv = "ICSCTL_PASSWORD"

type authFunc func(ctx context.Context, user models.User) (models.Token, error)

func newRegisterCmd(c *cli) *cobra.Command {
	return newAuthCmd(c, "register", "Create an account and print its token",
		func(ctx context.Context, user models.User) (models.Token, error) { return c.rops.Register(ctx, user) })
}

func newLoginCmd(c *cli) *cobra.Command {
	return newAuthCmd(c, "login", "Log in and print a token",
		func(ctx context.Context, user models.User) (models.Token, error) { return c.rops.Login(ctx, user) })
}

func newAuthCmd(c *cli, use, short string, auth authFunc) *cobra.Command {
	var (
		user      models.User
		copyToken bool
	)
	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Long: short + `.

The token is printed on its own line; pass it to later commands with
--token or the ` + tokenEnv + ` environment variable.

Examples:
  export ` + tokenEnv + `=$(icsctl ` + use + ` --login alice --password secret)
  icsctl ` + use + ` --login alice --copy-token`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if user.Password == "" {
				user.Password = os.Getenv(passwordEnv)
			}
			token, err := auth(cmd.Context(), user)
			if err != nil {
				return fmt.Errorf("%s: %w", use, err)
			}
			if copyToken {
				if err = c.copyText(token.SignedString); err != nil {
					return fmt.Errorf("copy token: %w", err)
				}
				fmt.Fprintln(c.errOut, "token copied to clipboard")
				return nil
			}
			fmt.Fprintln(c.out, token.SignedString)
			return nil
		},
	}
	cmd.Flags().StringVarP(&user.Login, "login", "l", "", "principal login")
	cmd.Flags().StringVarP(&user.Password, "password", "p", "", "password (env "+passwordEnv+")")
	cmd.Flags().BoolVar(&copyToken, "copy-token", false, "copy the token to the clipboard instead of printing it")
	_ = cmd.MarkFlagRequired("login")
	return cmd
}

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cfmconsole/cfm/internal/model"
	"github.com/cfmconsole/cfm/internal/repository"
	"github.com/cfmconsole/cfm/internal/service"
)

func UserCmd(flags *globalFlags) *cobra.Command {
	user := &cobra.Command{
		Use:   "user",
		Short: "Manage console users",
	}

	var in service.CreateUserInput
	create := &cobra.Command{
		Use:   "create",
		Short: "Create a user, typically the first admin",
		RunE: func(cmd *cobra.Command, args []string) error {
			conn, err := flags.open(cmd.Context())
			if err != nil {
				return err
			}
			defer conn.Close()

			users := repository.NewUserRepository(conn)
			// Only password hashing is used here, so no signing secret is needed.
			auth := service.NewAuthService(users, "", 0)
			created, err := service.NewUserService(users, auth).Create(cmd.Context(), in)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created %s user %s (%s)\n", created.Role, created.Email, created.ID)
			return nil
		},
	}
	create.Flags().StringVar(&in.Email, "email", "", "login email address")
	create.Flags().StringVar(&in.Password, "password", "", "initial password (12 to 72 bytes)")
	create.Flags().StringVar(&in.DisplayName, "name", "", "display name")
	create.Flags().StringVar(&in.Role, "role", model.RoleAdmin, "role: admin, editor or viewer")
	_ = create.MarkFlagRequired("email")
	_ = create.MarkFlagRequired("password")

	user.AddCommand(create)
	return user
}

package main

import (
	"errors"
	"fmt"

	domainUser "dojo-admin/internal/domain/user"
	"dojo-admin/internal/usecase/notification"
	"dojo-admin/internal/usecase/user"

	"github.com/spf13/cobra"
)

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession()
			if err != nil {
				return err
			}
			defer s.close()

			if err := s.db.Migrate(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Schema is up to date")
			return nil
		},
	}
}

func createAdminCmd() *cobra.Command {
	var (
		name     string
		surname  string
		email    string
		password string
	)

	cmd := &cobra.Command{
		Use:   "create-admin",
		Short: "Create an administrator account",
		Long: `Create an administrator account directly in the database.

Use it once to bootstrap a fresh installation; further members can then be
created through the API.

Example:
  dojoctl create-admin --email sensei@dojo.mx --name Hiro --password 'S3cure!pass'`,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession()
			if err != nil {
				return err
			}
			defer s.close()

			application, err := s.app(cmd.Context())
			if err != nil {
				return err
			}
			defer application.Close(cmd.Context())

			// No caller exists yet, so the command acts with admin rights.
			system := domainUser.Identity{Role: domainUser.RoleAdmin}
			created, err := application.Users.CreateUser(cmd.Context(), system, &user.CreateUserRequest{
				Name:            name,
				PaternalSurname: surname,
				Email:           email,
				Password:        password,
				Role:            string(domainUser.RoleAdmin),
			})
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Created admin %s (%s)\n", created.Email, created.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "first name")
	cmd.Flags().StringVar(&surname, "surname", "", "paternal surname")
	cmd.Flags().StringVar(&email, "email", "", "login email")
	cmd.Flags().StringVar(&password, "password", "", "initial password")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")

	return cmd
}

func sendRemindersCmd() *cobra.Command {
	var once bool

	cmd := &cobra.Command{
		Use:   "send-reminders",
		Short: "Email the monthly tuition reminder to every student",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession()
			if err != nil {
				return err
			}
			defer s.close()

			application, err := s.app(cmd.Context())
			if err != nil {
				return err
			}
			defer application.Close(cmd.Context())

			if once {
				application.Reminders.RunScheduled(cmd.Context())
				fmt.Fprintln(cmd.OutOrStdout(), "Reminder run finished, see logs for the outcome")
				return nil
			}

			result, err := application.Reminders.RunOnce(cmd.Context())
			if errors.Is(err, notification.ErrNoRecipients) {
				fmt.Fprintln(cmd.OutOrStdout(), "No students to remind")
				return nil
			}
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Reminders: %d attempted, %d sent, %d failed\n",
				result.Attempted, result.Succeeded, result.Failed)
			return nil
		},
	}

	cmd.Flags().BoolVar(&once, "once-per-month", false, "skip when this month's reminder was already claimed")

	return cmd
}

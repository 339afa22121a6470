// ABOUTME: CLI commands for the local account registry.
// ABOUTME: Accounts gate nothing; they label who is using this device.
package main

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"

	"github.com/harperreed/healhub/internal/auth"
	"github.com/harperreed/healhub/internal/validate"
)

var (
	userName     string
	userEmail    string
	userPassword string
	userPhone    string

	// bcryptCost is lowered by tests.
	bcryptCost = bcrypt.DefaultCost
)

var userCmd = &cobra.Command{
	Use:   "user",
	Short: "Manage the local account",
	Long: `Manage the local account.

Accounts are stored on this device only. Passwords are kept as bcrypt hashes.

EXAMPLES:

  healhub user register --name "Ada Lovelace" --email ada@example.com
  healhub user login --email ada@example.com
  healhub user whoami
  healhub user logout`,
}

var userRegisterCmd = &cobra.Command{
	Use:   "register",
	Short: "Create an account and sign in",
	RunE: func(cmd *cobra.Command, args []string) error {
		password, err := passwordFromFlagOrPrompt(cmd)
		if err != nil {
			return err
		}

		u, err := auth.NewService(rt.store, bcryptCost).Register(validate.RegisterForm{
			Name:            userName,
			Email:           userEmail,
			Password:        password,
			ConfirmPassword: password,
			Phone:           userPhone,
		})
		if err != nil {
			return err
		}
		success(cmd, "Registered %s", u.Email)
		return nil
	},
}

var userLoginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in",
	RunE: func(cmd *cobra.Command, args []string) error {
		password, err := passwordFromFlagOrPrompt(cmd)
		if err != nil {
			return err
		}

		u, err := auth.NewService(rt.store, bcryptCost).Login(userEmail, password)
		if err != nil {
			return err
		}
		success(cmd, "Signed in as %s", u.Name)
		return nil
	},
}

var userLogoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Sign out",
	RunE: func(cmd *cobra.Command, args []string) error {
		auth.NewService(rt.store, bcryptCost).Logout()
		success(cmd, "Signed out")
		return nil
	},
}

var userWhoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the signed-in user",
	RunE: func(cmd *cobra.Command, args []string) error {
		u, err := auth.NewService(rt.store, bcryptCost).Current()
		if err != nil {
			printLine(cmd, "Not signed in.")
			return nil
		}
		printf(cmd, "%s <%s>\n", u.Name, u.Email)
		if u.Phone != "" {
			printf(cmd, "  phone %s\n", u.Phone)
		}
		return nil
	},
}

var userProfileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Update the signed-in user's profile",
	RunE: func(cmd *cobra.Command, args []string) error {
		svc := auth.NewService(rt.store, bcryptCost)
		cur, err := svc.Current()
		if err != nil {
			return err
		}

		name, email, phone := cur.Name, cur.Email, cur.Phone
		if cmd.Flags().Changed("name") {
			name = userName
		}
		if cmd.Flags().Changed("email") {
			email = userEmail
		}
		if cmd.Flags().Changed("phone") {
			phone = userPhone
		}

		u, err := svc.UpdateProfile(name, email, phone)
		if err != nil {
			return err
		}
		success(cmd, "Updated profile for %s", u.Email)
		return nil
	},
}

func passwordFromFlagOrPrompt(cmd *cobra.Command) (string, error) {
	if userPassword != "" {
		return userPassword, nil
	}
	printf(cmd, "Password: ")
	line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func init() {
	for _, c := range []*cobra.Command{userRegisterCmd, userLoginCmd} {
		c.Flags().StringVar(&userEmail, "email", "", "email address")
		c.Flags().StringVar(&userPassword, "password", "", "password (prompted when omitted)")
	}
	userRegisterCmd.Flags().StringVar(&userName, "name", "", "full name")
	userRegisterCmd.Flags().StringVar(&userPhone, "phone", "", "10 digit phone number")

	userProfileCmd.Flags().StringVar(&userName, "name", "", "full name")
	userProfileCmd.Flags().StringVar(&userEmail, "email", "", "email address")
	userProfileCmd.Flags().StringVar(&userPhone, "phone", "", "10 digit phone number")

	userCmd.AddCommand(userRegisterCmd, userLoginCmd, userLogoutCmd, userWhoamiCmd, userProfileCmd)
	rootCmd.AddCommand(userCmd)
}

package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/garyjia/approvals-console/internal/container"
)

var (
	loginEmail       string
	loginPassword    string
	loginDeviceToken string
	registerUser     string
	registerToken    string
)

func init() {
	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(registerDeviceCmd)

	loginCmd.Flags().StringVar(&loginEmail, "email", "", "approver email")
	loginCmd.Flags().StringVar(&loginPassword, "password", "", "approver password (defaults to $APPROVALS_PASSWORD)")
	loginCmd.Flags().StringVar(&loginDeviceToken, "device-token", "", "push token to register after login")

	registerDeviceCmd.Flags().StringVar(&registerUser, "user", "", "user id owning the device")
	registerDeviceCmd.Flags().StringVar(&registerToken, "token", "", "push token of the device")
	_ = registerDeviceCmd.MarkFlagRequired("user")
	_ = registerDeviceCmd.MarkFlagRequired("token")
}

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Check approver credentials",
	Long:  "Authenticate against the backend and, when a device token is given, register it for push notifications.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		password := loginPassword
		if password == "" {
			password = os.Getenv("APPROVALS_PASSWORD")
		}

		return withContainer(cmd, func(ctx context.Context, c *container.Container) error {
			auth := c.Services().Auth
			if loginDeviceToken != "" {
				// Registration waits for the login to complete
				auth.SetDeviceToken(ctx, loginDeviceToken)
			}

			user, err := auth.Login(ctx, loginEmail, password)
			if err != nil {
				return err
			}
			auth.Wait()

			if jsonOutput {
				return writeJSON(cmd.OutOrStdout(), user)
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "Logged in as %s <%s>\n", user.Name, user.Email)
			return err
		})
	},
}

var registerDeviceCmd = &cobra.Command{
	Use:   "register-device",
	Short: "Register a push token for a user",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withContainer(cmd, func(ctx context.Context, c *container.Container) error {
			if err := c.Backend().RegisterDeviceToken(ctx, registerUser, registerToken); err != nil {
				return err
			}
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "Registered device for user %s\n", registerUser)
			return err
		})
	},
}

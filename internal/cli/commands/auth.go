package commands

import (
	"fmt"

	"github.com/AlecAivazis/survey/v2"
	"github.com/urfave/cli/v2"

	"github.com/colecta/colecta-cli/internal/auth"
	"github.com/colecta/colecta-cli/internal/rest"
)

// NewLoginCommand signs the user in against the configured sync backend.
func NewLoginCommand() *cli.Command {
	return &cli.Command{
		Name:  "login",
		Usage: "Sign in to the sync backend",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "email", Aliases: []string{"e"}, Usage: "Account email"},
			&cli.BoolFlag{Name: "register", Usage: "Create the account first"},
		},
		Action: func(c *cli.Context) error {
			env, err := newEnv()
			if err != nil {
				return err
			}
			if env.Config.BackendURL == "" {
				return fmt.Errorf("no backend configured; run 'colecta config set backend_url <url>' first")
			}

			email := c.String("email")
			if email == "" {
				if err := survey.AskOne(&survey.Input{Message: "Email:"}, &email); err != nil {
					return err
				}
			}
			var password string
			if err := survey.AskOne(&survey.Password{Message: "Password:"}, &password); err != nil {
				return err
			}

			client := rest.New(env.Config.BackendURL, map[string]string{
				"apikey": env.Config.APIKey,
			})

			if c.Bool("register") {
				if _, err := client.Post(c.Context, "/auth/v1/signup", map[string]string{
					"email":    email,
					"password": password,
				}); err != nil {
					fmt.Printf("Error creating account: %v\n", err)
					return err
				}
			}

			session, err := auth.SignIn(c.Context, client, email, password)
			if err != nil {
				fmt.Printf("Error signing in: %v\n", err)
				return err
			}

			if err := env.Auth.Login(session); err != nil {
				return err
			}

			fmt.Printf("✅ Signed in as %s.\n", session.User.Email)
			fmt.Println("Your collection now syncs with the backend. Local data was not uploaded.")
			return nil
		},
	}
}

// NewLogoutCommand discards the stored session.
func NewLogoutCommand() *cli.Command {
	return &cli.Command{
		Name:  "logout",
		Usage: "Sign out and return to local-only mode",
		Action: func(c *cli.Context) error {
			env, err := newEnv()
			if err != nil {
				return err
			}
			if env.Auth.Current() == nil {
				fmt.Println("Not signed in.")
				return nil
			}
			if err := env.Auth.Logout(); err != nil {
				return err
			}
			fmt.Println("✅ Signed out. Using local storage again.")
			return nil
		},
	}
}

// NewWhoamiCommand prints the current session.
func NewWhoamiCommand() *cli.Command {
	return &cli.Command{
		Name:  "whoami",
		Usage: "Show the active session",
		Action: func(c *cli.Context) error {
			env, err := newEnv()
			if err != nil {
				return err
			}
			sess := env.Auth.Current()
			if sess == nil {
				fmt.Println("Anonymous (local storage mode).")
				return nil
			}
			fmt.Printf("Signed in as %s (%s).\n", sess.User.Email, sess.User.ID)
			return nil
		},
	}
}

package cli

import (
	"bufio"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/crlszmr/vuln-scanner-sub000/config"
	"github.com/crlszmr/vuln-scanner-sub000/pkg/api"
)

// tokenKey is where the session store keeps the backend access token.
const tokenKey = "auth_token"

func auth() {
	loginCmd := &cobra.Command{
		Use:   "login",
		Short: "Authenticate against the platform backend",
		Args:  NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			runLogin()
		},
	}

	logoutCmd := &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored session token",
		Args:  NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			runLogout()
		},
	}

	loginCmd.Flags().StringVarP(&username, "username", "u", "", "platform username")
	loginCmd.Flags().StringVarP(&password, "password", "p", "", "platform password")

	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(logoutCmd)
}

func runLogin() {
	c, err := newConsole()
	if err != nil {
		log.Printf("%v", err)
		os.Exit(1)
	}
	defer c.close()

	user := username
	pass := password
	reader := bufio.NewReader(os.Stdin)

	if user == "" {
		fmt.Print("Username: ")
		line, err := reader.ReadString('\n')
		if err != nil {
			log.Printf("failed to read username")
			os.Exit(1)
		}
		user = strings.TrimSpace(line)
	}
	if pass == "" {
		fmt.Print("Password: ")
		line, err := reader.ReadString('\n')
		if err != nil {
			log.Printf("failed to read password")
			os.Exit(1)
		}
		pass = strings.TrimSpace(line)
	}

	token, err := c.client.Login(config.Ctx, user, pass)
	if err != nil {
		log.Printf(config.Red("Login failed: %v"), err)
		os.Exit(1)
	}

	if err := c.store.Set(tokenKey, token); err != nil {
		log.Printf("failed to persist the session token, error: %v", err)
		os.Exit(1)
	}

	if exp, err := api.TokenExpiry(token); err == nil {
		log.Printf(config.Green("Logged in, session valid until %s"), exp.Format(time.RFC3339))
	} else {
		log.Printf(config.Green("Logged in"))
	}
}

func runLogout() {
	c, err := newConsole()
	if err != nil {
		log.Printf("%v", err)
		os.Exit(1)
	}
	defer c.close()

	if err := c.store.Delete(tokenKey); err != nil {
		log.Printf("failed to remove the session token, error: %v", err)
		os.Exit(1)
	}

	log.Printf("Session token removed")
}

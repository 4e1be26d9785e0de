package cmd

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

func newLoginCmd() *cobra.Command {
	var username string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Authenticate against the backend and store the session token",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLogin(cmd.Context(), username)
		},
	}

	cmd.Flags().StringVarP(&username, "username", "u", "", "username (prompted when omitted)")
	return cmd
}

func runLogin(ctx context.Context, username string) error {
	rt, err := newRuntime()
	if err != nil {
		return err
	}

	reader := bufio.NewReader(os.Stdin)
	if username == "" {
		fmt.Print("Username: ")
		line, err := reader.ReadString('\n')
		if err != nil {
			return fmt.Errorf("reading username: %w", err)
		}
		username = strings.TrimSpace(line)
	}
	if username == "" {
		return fmt.Errorf("username is required")
	}

	fmt.Print("Password: ")
	password, err := readPassword(reader)
	fmt.Println()
	if err != nil {
		return fmt.Errorf("reading password: %w", err)
	}

	tok, err := rt.client.Login(ctx, username, password)
	if err != nil {
		return cliError(err)
	}

	if err := rt.sessions.Set(tok); err != nil {
		return fmt.Errorf("storing session: %w", err)
	}

	fmt.Println("Logged in.")
	return nil
}

// readPassword reads without echo when stdin is a terminal and falls back
// to a plain line read otherwise (piped input in scripts).
func readPassword(reader *bufio.Reader) (string, error) {
	fd := int(os.Stdin.Fd())
	if term.IsTerminal(fd) {
		raw, err := term.ReadPassword(fd)
		if err != nil {
			return "", err
		}
		return string(raw), nil
	}
	line, err := reader.ReadString('\n')
	if err != nil {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

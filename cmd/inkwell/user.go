package main

import (
	"bufio"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/eringen/inkwell"
)

func newUserCmd(configPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Manage blog authors",
	}
	cmd.AddCommand(newUserAddCmd(configPath), newUserListCmd(configPath))
	return cmd
}

func newUserAddCmd(configPath *string) *cobra.Command {
	var name, bio string
	cmd := &cobra.Command{
		Use:   "add <username>",
		Short: "Create an author; the password is read from stdin",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			password, err := readPassword(cmd)
			if err != nil {
				return err
			}
			store, err := openStore(*configPath)
			if err != nil {
				return err
			}
			defer store.Close()

			u, err := store.CreateUser(cmd.Context(), inkwell.User{
				Username: args[0],
				Name:     name,
				Bio:      bio,
			}, password)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created %s (%s)\n", u.Username, u.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "display name (defaults to the username)")
	cmd.Flags().StringVar(&bio, "bio", "", "short biography shown on the author page")
	return cmd
}

func newUserListCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List authors",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openStore(*configPath)
			if err != nil {
				return err
			}
			defer store.Close()

			users, err := store.ListUsers(cmd.Context())
			if err != nil {
				return err
			}
			for _, u := range users {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\n", u.Username, u.Name, u.Created.Format("2006-01-02"))
			}
			return nil
		},
	}
}

func openStore(configPath string) (*inkwell.Store, error) {
	cfg, err := inkwell.LoadConfig(configPath)
	if err != nil {
		return nil, err
	}
	return inkwell.NewStore(cfg.DatabasePath)
}

// readPassword reads the first line of stdin so passwords stay out of
// shell history and process listings.
func readPassword(cmd *cobra.Command) (string, error) {
	fmt.Fprint(cmd.ErrOrStderr(), "Password: ")
	line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("read password: %w", err)
	}
	password := strings.TrimRight(line, "\r\n")
	if password == "" {
		return "", errors.New("password must not be empty")
	}
	return password, nil
}

package main

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jrsteele09/go-oauth-grants/internal/config"
	"github.com/jrsteele09/go-oauth-grants/sessions"
	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
)

// newAccountsCmd manages the account records the service reads. Accounts
// are owned by the account service; this exists to seed local stores.
func newAccountsCmd(envFiles *[]string) *cobra.Command {
	accountsCmd := &cobra.Command{
		Use:   "accounts",
		Short: "Manage account records in the local store",
	}

	var account sessions.Account
	putCmd := &cobra.Command{
		Use:   "put",
		Short: "Create or replace an account record",
		RunE: func(cmd *cobra.Command, args []string) error {
			if account.UID == "" {
				return errors.New("--uid is required")
			}
			if account.Email == "" {
				return errors.New("--email is required")
			}
			if account.EcosystemAnonID == "" {
				account.EcosystemAnonID = uuid.NewString()
			}
			account.CreatedAt = time.Now().UTC()

			c, err := config.New(*envFiles...)
			if err != nil {
				return err
			}
			rdb := redis.NewClient(&redis.Options{Addr: c.GetRedisAddr(), Password: c.GetRedisPassword(), DB: c.GetRedisDB()})
			defer rdb.Close()

			var writer sessions.AccountWriter = sessions.NewRedisRepo(rdb, sessions.WithKeyPrefix(c.GetRedisKeyPrefix()))
			ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Second)
			defer cancel()
			if err := writer.PutAccount(ctx, &account); err != nil {
				return err
			}
			cmd.Printf("stored account %s\n", account.UID)
			return nil
		},
	}
	putCmd.Flags().StringVar(&account.UID, "uid", "", "account uid")
	putCmd.Flags().StringVar(&account.Email, "email", "", "primary email")
	putCmd.Flags().StringVar(&account.Locale, "locale", "en-US", "preferred locale")
	putCmd.Flags().StringVar(&account.EcosystemAnonID, "ecosystem-anon-id", "", "anonymous metrics id (generated when empty)")

	accountsCmd.AddCommand(putCmd)
	return accountsCmd
}

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newAccountCmd(cc *commandContext) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "account",
		Short: "Show account information",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := cc.client(cmd)
			if err != nil {
				return err
			}
			account, err := client.GetAccount(cmd.Context())
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(cmd, account)
			}

			rows := [][]string{
				{"User ID", account.UserID.Value()},
				{"Alias", account.Alias.Value()},
				{"Last task edit", formatOptTime(account.LastEditTask)},
				{"Last task delete", formatOptTime(account.LastDeleteTask)},
				{"Last folder edit", formatOptTime(account.LastEditFolder)},
				{"Last context edit", formatOptTime(account.LastEditContext)},
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"Field", "Value"}, rows, nil))
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Output JSON")
	return cmd
}

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var profilesCmd = &cobra.Command{
	Use:   "profiles",
	Short: "List assistant profiles",
	Long:  `List built-in profiles plus any loaded from assistant.profiles_file. The active one is starred.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		e, err := loadEnv(os.Stderr)
		if err != nil {
			return err
		}
		cat, err := e.catalog()
		if err != nil {
			return err
		}
		for _, name := range cat.Names() {
			p, _ := cat.Get(name)
			mark := " "
			if name == e.cfg.Assistant.Profile {
				mark = "*"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %-14s %s\n", mark, name, p.Title)
		}
		return nil
	},
}

package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

var keyCmd = &cobra.Command{
	Use:   "key",
	Short: "Manage the stored API key",
	Long:  `Store or remove the Gemini API key kept in the per-user secrets file.`,
}

var keySetCmd = &cobra.Command{
	Use:   "set [key]",
	Short: "Store the API key (reads stdin when no argument is given)",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runKeySet,
}

var keyDeleteCmd = &cobra.Command{
	Use:   "delete",
	Short: "Remove the stored API key",
	Args:  cobra.NoArgs,
	RunE:  runKeyDelete,
}

func init() {
	keyCmd.AddCommand(keySetCmd)
	keyCmd.AddCommand(keyDeleteCmd)
}

func runKeySet(cmd *cobra.Command, args []string) error {
	e, err := loadEnv(os.Stderr)
	if err != nil {
		return err
	}
	var key string
	if len(args) == 1 {
		key = args[0]
	} else {
		key, err = readKey(cmd.InOrStdin())
		if err != nil {
			return err
		}
	}
	if err := e.secrets.Put(keyProvider, key); err != nil {
		return errors.Wrap(err, "store key")
	}
	fmt.Fprintf(cmd.OutOrStdout(), "key stored in %s\n", e.secrets.Path())
	return nil
}

func runKeyDelete(cmd *cobra.Command, _ []string) error {
	e, err := loadEnv(os.Stderr)
	if err != nil {
		return err
	}
	if err := e.secrets.Delete(keyProvider); err != nil {
		return errors.Wrap(err, "delete key")
	}
	fmt.Fprintln(cmd.OutOrStdout(), "key removed")
	return nil
}

// readKey takes the first non-blank line of r.
func readKey(r io.Reader) (string, error) {
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		if line := strings.TrimSpace(sc.Text()); line != "" {
			return line, nil
		}
	}
	if err := sc.Err(); err != nil {
		return "", errors.Wrap(err, "read key")
	}
	return "", errors.New("no key given on stdin")
}

package cmd

import (
	"errors"
	"fmt"

	"github.com/brogergvhs/featsnap/internal/config"

	"github.com/spf13/cobra"
)

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the path of the active config file",
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := config.ActiveConfigPath()
		if errors.Is(err, config.ErrNoConfig) {
			fmt.Println(config.ConfigsDir())
			return nil
		}
		if err != nil {
			return err
		}

		fmt.Println(p)
		return nil
	},
}

func init() {
	configCmd.AddCommand(configPathCmd)
}

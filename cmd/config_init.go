package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/brogergvhs/featsnap/internal/config"

	"github.com/spf13/cobra"
)

var flagInitYes bool

var configInitCmd = &cobra.Command{
	Use:   "init [label]",
	Short: "Create the Default config, or a new profile with the given label",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		label := config.DefaultLabel
		if len(args) == 1 {
			label = args[0]
		}
		path := config.ProfilePath(label)

		if _, err := os.Stat(path); err == nil {
			fmt.Println("Configuration already exists at:")
			fmt.Println("  ", path)
			fmt.Println("Use `featsnap config reset` to recreate it.")
			return nil
		}

		fmt.Println("Configuration file will be saved at:")
		fmt.Println("  ", path)
		fmt.Println()
		fmt.Println("Default configuration:")
		config.DefaultConfig().Print(os.Stdout)
		fmt.Println()

		if !flagInitYes && !confirm(fmt.Sprintf("Create config %q at %s?", label, path)) {
			fmt.Println("Aborted.")
			return nil
		}

		if label == config.DefaultLabel {
			if _, err := config.InitDefaultConfig(); err != nil && !errors.Is(err, os.ErrExist) {
				return fmt.Errorf("failed to create config: %w", err)
			}
			fmt.Println("Config created at:", path)
			fmt.Println("This config is now active (label: Default).")
			return nil
		}

		if _, err := config.CreateConfig(label); err != nil {
			return err
		}
		fmt.Println("Config created at:", path)
		fmt.Printf("Run `featsnap config switch %s` to activate it.\n", label)
		return nil
	},
}

// confirm asks a yes/no question on stdin; anything but y/yes is a no.
func confirm(question string) bool {
	fmt.Printf("%s [y/N]: ", question)

	resp, _ := bufio.NewReader(os.Stdin).ReadString('\n')
	resp = strings.TrimSpace(strings.ToLower(resp))

	return resp == "y" || resp == "yes"
}

func init() {
	configInitCmd.Flags().BoolVarP(&flagInitYes, "yes", "y", false, "do not ask for confirmation")
	configCmd.AddCommand(configInitCmd)
}

package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/brogergvhs/featsnap/internal/source"

	"github.com/spf13/cobra"
)

var (
	flagIgnoreConfig bool
	flagDebug        bool
)

var rootCmd = &cobra.Command{
	Use:   "featsnap [snapshot.html]",
	Short: "Extract the vendor feature catalog into a JSON snapshot",
	Long: `featsnap reads the vendor's buttons & functions page, pulls the feature
catalog out of its inline scripts and writes it as a grouped, sorted JSON
document for the static site.

Without arguments the page is fetched from the configured source URL. Pass
the path of a page saved from a browser to work from a local snapshot.`,
	Args:          cobra.MaximumNArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runConvert,
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&flagDebug, "debug", false, "enable debug logging")
	rootCmd.PersistentFlags().BoolVar(&flagIgnoreConfig, "ignore-config", false, "ignore config and use only CLI flags")
}

const blockedHelp = `The site answered with an anti-bot challenge instead of the page.
Open the page in a browser, save it (File > Save Page As, "Webpage, HTML only"),
and run featsnap again with the saved file:

  featsnap path/to/buttons-functions.html`

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println("Error:", err)
		if errors.Is(err, source.ErrBlockedByProtection) {
			fmt.Println()
			fmt.Println(blockedHelp)
		}
		os.Exit(1)
	}
}

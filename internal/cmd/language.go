package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wethinkt/go-pikeru/internal/config"
	"github.com/wethinkt/go-pikeru/internal/i18n"
	"github.com/wethinkt/go-pikeru/internal/tui"
)

var languageList bool

var languageCmd = &cobra.Command{
	Use:   "language [lang]",
	Short: "Get or set the display language",
	Long: `Get or set the picker's display language. Use a BCP 47 tag (e.g., en, de).

PIKERU_LANG overrides the configured language for one run.

Without an argument on a terminal an interactive picker previews each
language; --list prints the languages instead.

Examples:
  pikeru language          # pick a language interactively
  pikeru language --list   # show current and available languages
  pikeru language de       # switch the picker to German`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}

		current := i18n.ResolveLocale(cfg.Settings.Language)
		if len(args) == 0 {
			if languageList || !isTTY() {
				fmt.Printf("Current language: %s\n", current)
				fmt.Printf("Available:        %v\n", i18n.Available())
				return nil
			}
			i18n.Init(current)
			tag, err := tui.RunLanguagePicker(current)
			if err != nil || tag == "" {
				return err
			}
			args = []string{tag}
		}

		cfg.Settings.Language = args[0]
		if err := cfg.Save(); err != nil {
			return err
		}
		fmt.Printf("Language set to: %s\n", args[0])
		return nil
	},
}

func init() {
	languageCmd.Flags().BoolVarP(&languageList, "list", "l", false, "print the current and available languages")
	rootCmd.AddCommand(languageCmd)
}

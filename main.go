package main

import (
	"fmt"
	"log"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/ByLCY/folio/fonts"
)

var rootCmd = &cobra.Command{
	Use:           "folio",
	Short:         "Folio 排版引擎：把富文本故事流经页面上的文本框并输出 PDF",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		mode, err := cmd.Flags().GetString("color")
		if err != nil {
			return err
		}
		color.NoColor = !(mode == "on" || (mode == "auto" && isTerminal(os.Stdout)))
		return nil
	},
}

var fontsCmd = &cobra.Command{
	Use:   "fonts",
	Short: "列出内置字体（builtin:<name>）",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, _ []string) {
		out := cmd.OutOrStdout()
		for _, name := range fonts.Names() {
			fmt.Fprintln(out, "builtin:"+name)
		}
	},
}

func init() {
	rootCmd.AddCommand(renderCmd, wrapCmd, fontsCmd)
	rootCmd.PersistentFlags().String("color", "auto", "彩色输出 (auto|on|off)")
}

func main() {
	log.SetFlags(0)
	if err := rootCmd.Execute(); err != nil {
		log.Fatalf("folio: %v", err)
	}
}

func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

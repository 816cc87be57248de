package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mailframe/mailframe/internal/markup"
)

var fmtWrite bool

var fmtCmd = &cobra.Command{
	Use:   "fmt <template-file>",
	Short: "Normalize a template's formatting",
	Long: `Fmt parses a template and re-serializes it in canonical form: quoted
frontmatter where needed, two-space indentation, and one attribute per
line once a component carries more than two. Formatting an already
canonical file is a no-op.`,
	Args: cobra.ExactArgs(1),
	RunE: runFmt,
}

func init() {
	rootCmd.AddCommand(fmtCmd)
	fmtCmd.Flags().BoolVarP(&fmtWrite, "write", "w", false, "write result back to the file instead of stdout")
}

func runFmt(cmd *cobra.Command, args []string) error {
	path := args[0]
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading template: %w", err)
	}

	doc, err := markup.Parse(string(raw))
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	formatted := markup.Serialize(doc)

	if !fmtWrite {
		fmt.Fprint(cmd.OutOrStdout(), formatted)
		return nil
	}
	if formatted == string(raw) {
		return nil
	}
	return os.WriteFile(path, []byte(formatted), 0o644)
}

package cli

import (
	"fmt"
	"os"

	"github.com/dmaldon/resolutor/internal/rules"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// rulesCmd represents the rules command
var rulesCmd = &cobra.Command{
	Use:   "rules",
	Short: "Inspect and validate pattern libraries",
	Long: `Pattern libraries are versioned YAML files: one rule per field, each
with a primary pattern, ordered fallback patterns, a value normalizer
and optionally a document section window. Rules are data; they evolve
without touching the extraction engine.`,
}

var rulesShowCmd = &cobra.Command{
	Use:   "show [file]",
	Short: "Print the effective pattern library",
	Long:  `Print the pattern library as YAML: the given file, or the builtin rules when no file is named.`,
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := ""
		if len(args) == 1 {
			path = args[0]
		}
		lib, err := rules.Open(path)
		if err != nil {
			return err
		}

		data, err := yaml.Marshal(lib)
		if err != nil {
			return fmt.Errorf("marshal rules: %w", err)
		}
		fmt.Fprintf(os.Stderr, "# %d fields, version %s\n", len(lib.Fields()), lib.Version())
		fmt.Print(string(data))
		return nil
	},
}

var rulesCheckCmd = &cobra.Command{
	Use:   "check <file>",
	Short: "Validate a pattern library file",
	Long:  `Parse a rules YAML file and compile every pattern, reporting the first problem found.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		lib, err := rules.Load(args[0])
		if err != nil {
			return err
		}
		fmt.Printf("✓ %s: %d fields, version %s\n", args[0], len(lib.Fields()), lib.Version())
		for _, field := range lib.Fields() {
			rule, _ := lib.Rule(field)
			fmt.Printf("  - %s: %d pattern(s)", field, 1+len(rule.Fallbacks))
			if rule.Multi {
				fmt.Print(", multi")
			}
			if rule.Optional {
				fmt.Print(", optional")
			}
			fmt.Println()
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(rulesCmd)
	rulesCmd.AddCommand(rulesShowCmd)
	rulesCmd.AddCommand(rulesCheckCmd)
}

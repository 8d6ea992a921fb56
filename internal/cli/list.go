package cli

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/quantforge/ta/pkg/indicator"
)

var (
	nameColor   = color.New(color.FgCyan, color.Bold).SprintfFunc()
	paramColor  = color.New(color.FgYellow).SprintfFunc()
	outputColor = color.New(color.FgGreen).SprintfFunc()
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List the indicator catalogue",
	RunE: func(cmd *cobra.Command, args []string) error {
		for _, name := range indicator.Names() {
			entry, err := indicator.Lookup(name)
			if err != nil {
				return err
			}

			params := make([]string, 0, len(entry.Params))
			for _, p := range entry.Params {
				switch {
				case p.Required:
					params = append(params, p.Name+"*")
				case p.Default == nil:
					params = append(params, p.Name)
				default:
					params = append(params, fmt.Sprintf("%s=%v", p.Name, p.Default))
				}
			}

			fmt.Printf("%s  %s\n", nameColor("%-16s", entry.Name), entry.Description)
			if len(params) > 0 {
				fmt.Printf("    params:  %s\n", paramColor(strings.Join(params, ", ")))
			}
			fmt.Printf("    outputs: %s\n", outputColor(strings.Join(entry.Outputs, ", ")))
		}
		return nil
	},
}

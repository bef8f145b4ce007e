package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/renderlab/renderbench/pkg/config"
	"github.com/renderlab/renderbench/pkg/report"
)

// reportOpts holds the command-line flags for the report command.
type reportOpts struct {
	suite   string // suite file path, used to find the output tree
	output  string // output tree override
	jsonOut bool   // machine-readable output
}

// reportCommand creates the report command: it aggregates the timing
// journals written by run and the error reports written by figures into
// one summary table.
func (c *CLI) reportCommand() *cobra.Command {
	opts := reportOpts{suite: defaultSuite}

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Summarize timings and error metrics for a run",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			outputDir := opts.output
			if outputDir == "" {
				suite, err := config.Load(opts.suite)
				if err != nil {
					return err
				}
				outputDir = suite.OutputDir
			}

			rep, err := report.Collect(outputDir)
			if err != nil {
				return err
			}

			if opts.jsonOut {
				data, err := rep.JSON()
				if err != nil {
					return err
				}
				fmt.Println(string(data))
				return nil
			}

			if len(rep.Rows) == 0 {
				printInfo("No results under %s", outputDir)
				printNextStep("Run the suite first", fmt.Sprintf("%s run --suite %s", appName, opts.suite))
				return nil
			}

			fmt.Println(renderReportTable(rep))
			printDetail("%d results under %s", len(rep.Rows), outputDir)
			return nil
		},
	}

	cmd.Flags().StringVarP(&opts.suite, "suite", "s", opts.suite, "suite description file")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output tree to summarize (overrides the suite's)")
	cmd.Flags().BoolVar(&opts.jsonOut, "json", false, "print the report as JSON")

	return cmd
}

// Report table column widths.
const (
	colScene  = 14
	colConfig = 14
	colImage  = 26
	colTime   = 18
	colError  = 12
)

// renderReportTable formats the aggregated report as an aligned table.
// Scene names repeat only on their first row to keep the table scannable.
func renderReportTable(rep *report.Report) string {
	header := lipgloss.NewStyle().Bold(true).Foreground(colorGray)
	// Truncation and padding count runes, not bytes, so multibyte names
	// neither split mid-rune nor skew the column alignment.
	cell := func(s string, w int) string {
		r := []rune(s)
		if len(r) > w {
			return string(r[:w-1]) + "…"
		}
		return s + strings.Repeat(" ", w-len(r))
	}

	var b strings.Builder
	b.WriteString(header.Render(
		cell("SCENE", colScene)+cell("CONFIG", colConfig)+cell("IMAGE", colImage)+
			cell("TIME", colTime)+cell("ERROR", colError)+"INSETS") + "\n")

	lastScene := ""
	for _, row := range rep.Rows {
		sceneCell := row.Scene
		if sceneCell == lastScene {
			sceneCell = ""
		}
		lastScene = row.Scene

		timing := "-"
		if row.Timed {
			timing = fmt.Sprintf("%.2f s ± %.2f s", row.Mean, row.Stddev)
		}
		full := "-"
		insets := "-"
		if row.Measured {
			full = StyleNumber.Render(fmt.Sprintf("%-*g", colError-1, row.FullError))
			if len(row.InsetErrors) > 0 {
				parts := make([]string, len(row.InsetErrors))
				for i, e := range row.InsetErrors {
					parts[i] = fmt.Sprintf("%g", e)
				}
				insets = strings.Join(parts, "  ")
			}
		}

		b.WriteString(cell(sceneCell, colScene))
		b.WriteString(cell(row.Config, colConfig))
		b.WriteString(StyleValue.Render(cell(row.Outfile, colImage)))
		b.WriteString(cell(timing, colTime))
		if row.Measured {
			b.WriteString(full + " ")
		} else {
			b.WriteString(cell(full, colError))
		}
		b.WriteString(StyleDim.Render(insets))
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

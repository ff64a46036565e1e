package main

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/cikgulab/cikguplanner/internal/config"
	"github.com/cikgulab/cikguplanner/internal/ingest"
	"github.com/cikgulab/cikguplanner/internal/rph"
	"github.com/cikgulab/cikguplanner/internal/rpt"
)

// --- analyze ---

var analyzeCmd = &cobra.Command{
	Use:   "analyze <file>...",
	Short: "Extract weekly plans from RPT documents",
	Long: `Extract weekly plans from one or more RPT documents.

Text is pulled out of each file locally (txt, pdf, and docx are
supported), then the combined document is sent to the daemon for
extraction. The resulting weeks replace the daemon's current set.

Examples:
  cikgu analyze rpt-2026.pdf
  cikgu analyze sem1.docx sem2.docx`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		texts := make([]string, len(args))
		g, gctx := errgroup.WithContext(cmd.Context())
		for i, path := range args {
			g.Go(func() error {
				if err := gctx.Err(); err != nil {
					return err
				}
				f, err := os.Open(path)
				if err != nil {
					return fmt.Errorf("opening %s: %w", path, err)
				}
				defer f.Close()
				text, err := ingest.ExtractText(path, f)
				if err != nil {
					return fmt.Errorf("extracting %s: %w", path, err)
				}
				texts[i] = text
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return err
		}
		printStep("Read %d document(s)", len(args))

		client, err := newAPIClient()
		if err != nil {
			return err
		}

		printStep("Extracting weekly plans...")
		resp, err := client.post(cmd.Context(), "/extract", map[string]string{
			"text": strings.Join(texts, "\n\n"),
		})
		if err != nil {
			return err
		}

		var weeks []rpt.WeeklyPlan
		if err := decodeJSON(resp, &weeks); err != nil {
			return err
		}
		if len(weeks) == 0 {
			printWarning("No weekly plans found in the document")
			return nil
		}

		printSuccess("Extracted %d weekly plan(s)", len(weeks))
		printWeekTable(weeks)
		return nil
	},
}

// --- weeks ---

var weeksCmd = &cobra.Command{
	Use:   "weeks",
	Short: "List the weekly plans currently loaded",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newAPIClient()
		if err != nil {
			return err
		}

		resp, err := client.get(cmd.Context(), "/weeks")
		if err != nil {
			return err
		}

		var weeks []rpt.WeeklyPlan
		if err := decodeJSON(resp, &weeks); err != nil {
			return err
		}
		if len(weeks) == 0 {
			printWarning("No weekly plans loaded. Run \"cikgu analyze\" first.")
			return nil
		}
		printWeekTable(weeks)
		return nil
	},
}

func printWeekTable(weeks []rpt.WeeklyPlan) {
	w := tabwriter.NewWriter(os.Stdout, 0, 2, 2, ' ', 0)
	fmt.Fprintln(w, "MINGGU\tTEMA\tTOPIK")
	for _, wk := range weeks {
		fmt.Fprintf(w, "%d\t%s\t%s\n", wk.WeekNumber, truncate(wk.Theme, 40), truncate(wk.Topic, 50))
	}
	w.Flush()
}

func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-1]) + "…"
}

// --- rph ---

var rphCmd = &cobra.Command{
	Use:   "rph",
	Short: "Manage saved daily lesson plans",
}

var rphListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved RPHs, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newAPIClient()
		if err != nil {
			return err
		}

		resp, err := client.get(cmd.Context(), "/rph")
		if err != nil {
			return err
		}

		var plans []rph.DailyPlan
		if err := decodeJSON(resp, &plans); err != nil {
			return err
		}
		if len(plans) == 0 {
			printWarning("No saved RPHs")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 2, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tMINGGU\tHARI\tTARIKH\tKELAS")
		for _, p := range plans {
			date := p.Date
			if date == "" {
				date = "-"
			}
			fmt.Fprintf(w, "%s\t%d\t%s\t%s\t%s\n", p.ID, p.Week.WeekNumber, p.Day, date, p.ClassName)
		}
		w.Flush()
		return nil
	},
}

var rphShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Print the content of a saved RPH",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newAPIClient()
		if err != nil {
			return err
		}

		resp, err := client.get(cmd.Context(), "/rph/"+args[0])
		if err != nil {
			return err
		}

		var p rph.DailyPlan
		if err := decodeJSON(resp, &p); err != nil {
			return err
		}

		fmt.Fprintln(os.Stdout, p.Content)
		if p.JawiContent != nil {
			fmt.Fprintln(os.Stdout)
			fmt.Fprintln(os.Stdout, *p.JawiContent)
		}
		return nil
	},
}

var rphDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a saved RPH",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newAPIClient()
		if err != nil {
			return err
		}

		resp, err := client.delete(cmd.Context(), "/rph/"+args[0])
		if err != nil {
			return err
		}

		var result map[string]string
		if err := decodeJSON(resp, &result); err != nil {
			return err
		}
		printSuccess("Deleted %s", args[0])
		return nil
	},
}

var rphCalendarCmd = &cobra.Command{
	Use:   "calendar",
	Short: "Show saved RPHs grouped by date",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newAPIClient()
		if err != nil {
			return err
		}

		resp, err := client.get(cmd.Context(), "/calendar")
		if err != nil {
			return err
		}

		var cal struct {
			Dates       []string        `json:"dates"`
			Unscheduled []rph.DailyPlan `json:"unscheduled"`
		}
		if err := decodeJSON(resp, &cal); err != nil {
			return err
		}
		if len(cal.Dates) == 0 && len(cal.Unscheduled) == 0 {
			printWarning("No saved RPHs")
			return nil
		}

		for _, date := range cal.Dates {
			dresp, err := client.get(cmd.Context(), "/calendar/"+date)
			if err != nil {
				return err
			}
			var plans []rph.DailyPlan
			if err := decodeJSON(dresp, &plans); err != nil {
				return err
			}
			fmt.Fprintln(os.Stdout, colorize(colorBold, date))
			for _, p := range plans {
				fmt.Fprintf(os.Stdout, "  %s  minggu %d  %s  %s\n", p.ID, p.Week.WeekNumber, p.Day, p.ClassName)
			}
		}
		if len(cal.Unscheduled) > 0 {
			fmt.Fprintln(os.Stdout, colorize(colorBold, "tanpa tarikh"))
			for _, p := range cal.Unscheduled {
				fmt.Fprintf(os.Stdout, "  %s  minggu %d  %s  %s\n", p.ID, p.Week.WeekNumber, p.Day, p.ClassName)
			}
		}
		return nil
	},
}

func init() {
	rphCmd.AddCommand(rphListCmd, rphShowCmd, rphDeleteCmd, rphCalendarCmd)
}

// --- config ---

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show or update configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}

		for _, k := range config.ShowAll(cfg) {
			fmt.Printf("  %s = %s\n", colorize(colorBold, k.Key), k.Value)
		}
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value",
	Long: `Set a configuration value in the config file.

Valid keys: ` + strings.Join(config.ValidKeys(), ", "),
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, value := args[0], args[1]

		if err := config.SetKey(key, value); err != nil {
			return err
		}

		printSuccess("Set %s = %s", key, value)
		return nil
	},
}

func init() {
	configCmd.AddCommand(configShowCmd, configSetCmd)
}

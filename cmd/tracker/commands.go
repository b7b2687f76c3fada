package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/pkordes/citizenship-tracker/backend/internal/domain"
	"github.com/pkordes/citizenship-tracker/backend/internal/eligibility"
)

// options holds the persistent flags shared by every subcommand.
type options struct {
	file   string
	now    string
	asJSON bool
	clock  func() time.Time
}

func newRootCmd() *cobra.Command {
	opts := &options{clock: time.Now}

	root := &cobra.Command{
		Use:           "tracker",
		Short:         "Offline citizenship eligibility calculator",
		Long:          `Computes presence days and the eligibility forecast from an exported backup file.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&opts.file, "file", "f", "", "backup file produced by GET /export (required)")
	root.PersistentFlags().StringVar(&opts.now, "now", "", "evaluate as of midnight UTC on this date (YYYY-MM-DD); defaults to now")
	root.PersistentFlags().BoolVar(&opts.asJSON, "json", false, "print machine-readable JSON")
	_ = root.MarkPersistentFlagRequired("file")

	root.AddCommand(
		&cobra.Command{
			Use:   "stats",
			Short: "Print presence statistics and the calculation detail",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return runStats(cmd.OutOrStdout(), opts)
			},
		},
		&cobra.Command{
			Use:   "eligibility",
			Short: "Print the projected eligibility date and countdown",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return runEligibility(cmd.OutOrStdout(), opts)
			},
		},
		&cobra.Command{
			Use:   "validate",
			Short: "Check every trip and the residency periods against the form rules",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return runValidate(cmd.OutOrStdout(), opts)
			},
		},
	)
	return root
}

// load reads the backup file and resolves the evaluation instant.
func (o *options) load() (domain.Document, time.Time, error) {
	now := o.clock()
	if o.now != "" {
		d, err := domain.ParseDate(o.now, time.UTC)
		if err != nil {
			return domain.Document{}, time.Time{}, fmt.Errorf("--now: %q is not a YYYY-MM-DD date", o.now)
		}
		now = d
	}
	doc, err := loadDocument(o.file)
	if err != nil {
		return domain.Document{}, time.Time{}, err
	}
	return doc, now, nil
}

// loadDocument decodes an export file into a Document. Missing sections
// fall back to an empty trip list and default settings.
func loadDocument(path string) (domain.Document, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return domain.Document{}, fmt.Errorf("read backup: %w", err)
	}
	var file domain.ExportFile
	if err := json.Unmarshal(raw, &file); err != nil {
		return domain.Document{}, fmt.Errorf("parse backup %s: %w", path, err)
	}

	doc := domain.NewDocument("")
	if file.Trips != nil {
		doc = doc.WithTrips(*file.Trips)
	}
	if file.Settings != nil {
		doc = doc.WithSettings(doc.Settings.Apply(*file.Settings))
	}
	return doc, nil
}

func runStats(out io.Writer, opts *options) error {
	doc, now, err := opts.load()
	if err != nil {
		return err
	}
	stats, res := eligibility.CalculateStats(doc, now)

	if opts.asJSON {
		return writeJSON(out, stats)
	}
	fmt.Fprintf(out, "Mode:              %s\n", stats.Mode)
	fmt.Fprintf(out, "As of:             %s\n", domain.FormatDate(res.Anchor))
	fmt.Fprintf(out, "Window:            %s to %s\n", domain.FormatDate(res.WindowStart), domain.FormatDate(res.WindowEnd))
	fmt.Fprintf(out, "Days in country:   %g\n", stats.DaysInCanada)
	fmt.Fprintf(out, "Days remaining:    %g\n", stats.DaysRemaining)
	fmt.Fprintf(out, "Progress:          %.1f%%\n", stats.ProgressPercentage)
	fmt.Fprintf(out, "Trips:             %d (%d days away)\n", stats.TotalTrips, stats.TotalTripDays)
	if res.Mode == domain.ModePeriod {
		fmt.Fprintf(out, "PR days:           %d\n", res.PRDays)
		fmt.Fprintf(out, "Temporary days:    %d (credit %g)\n", res.TemporaryDays, res.TemporaryCredit)
		fmt.Fprintf(out, "Absence days:      %d\n", res.AbsenceDays)
		fmt.Fprintf(out, "Uncovered days:    %d\n", res.UncoveredDays)
	}
	return nil
}

func runEligibility(out io.Writer, opts *options) error {
	doc, now, err := opts.load()
	if err != nil {
		return err
	}
	report := eligibility.BuildReport(doc, now)

	if opts.asJSON {
		v := struct {
			AlreadyEligible bool   `json:"alreadyEligible"`
			EstimatedDate   string `json:"estimatedDate,omitempty"`
			CountdownDays   int    `json:"countdownDays"`
		}{AlreadyEligible: report.Projection.AlreadyEligible, CountdownDays: report.Countdown.Days}
		if !report.Projection.AlreadyEligible {
			v.EstimatedDate = domain.FormatDate(report.Projection.Date)
		}
		return writeJSON(out, v)
	}

	if report.Projection.AlreadyEligible {
		fmt.Fprintf(out, "Eligible now (%g days in country)\n", report.Stats.DaysInCanada)
		return nil
	}
	c := report.Countdown
	fmt.Fprintf(out, "Estimated eligibility: %s\n", domain.FormatDate(report.Projection.Date))
	fmt.Fprintf(out, "Countdown:             %dd %02dh %02dm %02ds\n", c.Days, c.Hours, c.Minutes, c.Seconds)
	return nil
}

func runValidate(out io.Writer, opts *options) error {
	doc, now, err := opts.load()
	if err != nil {
		return err
	}

	var problems []error
	for i, t := range doc.Trips {
		if err := eligibility.ValidateTrip(t); err != nil {
			problems = append(problems, fmt.Errorf("trip %d (id %d): %w", i+1, t.ID, err))
		}
	}
	if err := eligibility.ValidateSettings(doc.Settings, now); err != nil {
		problems = append(problems, fmt.Errorf("settings: %w", err))
	}

	for _, p := range problems {
		fmt.Fprintln(out, p)
	}
	if len(problems) > 0 {
		return fmt.Errorf("%d problem(s) found: %w", len(problems), errors.Join(problems...))
	}
	fmt.Fprintf(out, "OK: %d trips, %d residency periods\n", len(doc.Trips), len(doc.Settings.ResidencyPeriods))
	return nil
}

func writeJSON(out io.Writer, v any) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

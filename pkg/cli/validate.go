package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/mocks-server/main/pkg/alerts"
	"github.com/mocks-server/main/pkg/cli/internal/output"
	"github.com/mocks-server/main/pkg/logging"
)

// ErrAlertsFound is returned by validate when the definitions raised alerts.
var ErrAlertsFound = errors.New("alerts found")

// ValidateOutput represents JSON output format
type ValidateOutput struct {
	Routes        int                `json:"routes"`
	RouteVariants int                `json:"routeVariants"`
	Collections   int                `json:"collections"`
	Selected      string             `json:"selected"`
	Alerts        []alerts.FlatAlert `json:"alerts"`
}

func newValidateCommand() *cobra.Command {
	var (
		flags      configFlags
		jsonOutput bool
	)

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Load the mocks folder once and report its alerts",
		Long: `Load the mocks folder without starting any server and print the alerts
raised by route, variant and collection definitions.

The command exits with a non-zero code when there is at least one alert.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := flags.load(cmd)
			if err != nil {
				return err
			}
			// Alerts are the output; logs only go out when asked for.
			log := logging.Nop()
			if cmd.Flags().Changed("log-level") {
				log = newLogger(cfg, cmd.ErrOrStderr())
			}

			a, err := newApp(cfg, log)
			if err != nil {
				return err
			}
			if err := a.load(cmd.Context()); err != nil {
				return err
			}

			out := ValidateOutput{
				Routes:        len(a.mm.PlainRoutes()),
				RouteVariants: len(a.mm.PlainVariants()),
				Collections:   len(a.mm.PlainCollections()),
				Selected:      a.mm.SelectedCollection(),
				Alerts:        a.alerts.Flat(),
			}
			if out.Alerts == nil {
				out.Alerts = []alerts.FlatAlert{}
			}
			if jsonOutput {
				if err := output.JSON(cmd.OutOrStdout(), out); err != nil {
					return err
				}
			} else if err := printValidation(cmd.OutOrStdout(), out); err != nil {
				return err
			}

			if len(out.Alerts) > 0 {
				return fmt.Errorf("%w: %d", ErrAlertsFound, len(out.Alerts))
			}
			return nil
		},
	}
	flags.register(cmd, false)
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output the result in JSON format")
	return cmd
}

func printValidation(w io.Writer, out ValidateOutput) error {
	fmt.Fprintf(w, "%d routes, %d route variants, %d collections\n", out.Routes, out.RouteVariants, out.Collections)
	if out.Selected != "" {
		fmt.Fprintf(w, "Selected collection: %s\n", out.Selected)
	}
	if len(out.Alerts) == 0 {
		fmt.Fprintln(w, "No alerts")
		return nil
	}

	fmt.Fprintln(w)
	tw := output.Table(w)
	fmt.Fprintln(tw, "ALERT\tMESSAGE\tERROR")
	for _, alert := range out.Alerts {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", alert.ID, alert.Message, alert.Error)
	}
	return tw.Flush()
}

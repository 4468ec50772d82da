package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nao1215/zonecheck/internal/config"
	"github.com/nao1215/zonecheck/internal/database"
	"github.com/nao1215/zonecheck/internal/report"
)

// defaultHistoryLimit is the number of checks listed by default.
const defaultHistoryLimit = 20

// NewHistoryCmd creates the history command.
func NewHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List past security checks or compare the latest two",
		Long: `History lists the security checks stored by 'zonecheck check'.

With --compare, the latest two checks are compared: whether the zone improved
or worsened, and which reasons and actions appeared or were resolved.
With --show, a single stored check is rendered again.

Examples:
  zonecheck history
  zonecheck history --limit 5
  zonecheck history --compare
  zonecheck history --show 0b6c8a58-... --markdown`,
		Args: cobra.NoArgs,
		RunE: runHistoryCmd,
	}

	cmd.Flags().IntP("limit", "l", defaultHistoryLimit, "Maximum number of checks to list (0 lists all)")
	cmd.Flags().Bool("compare", false, "Compare the latest two checks")
	cmd.Flags().String("show", "", "Render the stored check with this ID")
	addReportFlags(cmd)

	return cmd
}

func runHistoryCmd(cmd *cobra.Command, _ []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	if err := applyReportFlags(cmd, a.cfg); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	limit, err := cmd.Flags().GetInt("limit")
	if err != nil {
		return err
	}
	compare, err := cmd.Flags().GetBool("compare")
	if err != nil {
		return err
	}
	showID, err := cmd.Flags().GetString("show")
	if err != nil {
		return err
	}

	db, err := a.openDB()
	if err != nil {
		return err
	}
	defer db.Close()

	ctx, cancel := signalContext(cmd)
	defer cancel()

	switch {
	case showID != "":
		result, err := db.GetCheck(ctx, showID)
		if errors.Is(err, database.ErrCheckNotFound) {
			return fmt.Errorf("no stored check with ID %s", showID)
		}
		if err != nil {
			return fmt.Errorf("failed to load check: %w", err)
		}
		return writeResult(a.cfg, cmd.OutOrStdout(), result)

	case compare:
		latest, err := db.LatestChecks(ctx, 2)
		if err != nil {
			return fmt.Errorf("failed to load history: %w", err)
		}
		if len(latest) < 2 {
			return errors.New("at least two stored checks are required for a comparison")
		}
		// LatestChecks is newest first.
		return writeComparison(a.cfg, cmd, report.Compare(*latest[1], *latest[0]))

	default:
		checks, err := db.ListChecks(ctx, limit)
		if err != nil {
			return fmt.Errorf("failed to list history: %w", err)
		}
		printHistory(cmd, checks)
		return nil
	}
}

func writeComparison(cfg *config.Config, cmd *cobra.Command, cmp *report.Comparison) (err error) {
	out, closeOut, err := openOutput(cfg, cmd.OutOrStdout())
	if err != nil {
		return err
	}
	defer func() {
		if cerr := closeOut(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	_, err = newReportWriter(cfg, out).WriteComparison(cmp)
	return err
}

func printHistory(cmd *cobra.Command, checks []database.CheckMetadata) {
	w := cmd.OutOrStdout()
	if len(checks) == 0 {
		fmt.Fprintln(w, "No security checks found in the history.")
		fmt.Fprintln(w, "\nUse 'zonecheck check' to run one.")
		return
	}

	fmt.Fprintf(w, "Security check history (%d checks):\n\n", len(checks))
	fmt.Fprintf(w, "  %-36s  %-20s  %-7s  %s\n", "ID", "Date", "Zone", "Score")
	fmt.Fprintln(w, "  "+strings.Repeat("-", 76))
	for _, c := range checks {
		fmt.Fprintf(w, "  %-36s  %-20s  %-7s  %g\n",
			c.ID,
			c.CheckedAt.Local().Format("2006-01-02 15:04:05"),
			c.Zone.String(),
			c.Score,
		)
	}

	fmt.Fprintln(w, "\nUse 'zonecheck history --compare' to compare the latest two checks.")
}

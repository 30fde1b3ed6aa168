package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cohortlab/resilient-aging/errors"
	"github.com/cohortlab/resilient-aging/store"
	"github.com/cohortlab/resilient-aging/sym"
)

// DbCmd represents the db (database) command
var DbCmd = &cobra.Command{
	Use:   "db",
	Short: sym.DB + " Manage the OMOP database",
	Long: sym.DB + ` db — Manage OMOP database operations

Examples:
  resilient-aging db stats                  # Show table row counts
  resilient-aging db stats --db ./test.db   # For a specific database file`,
}

var dbStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show database statistics",
	Long:  "Display row counts for the OMOP data tables the analysis reads",
	RunE:  runDbStats,
}

func init() {
	DbCmd.AddCommand(dbStatsCmd)
}

func runDbStats(cmd *cobra.Command, args []string) error {
	st, cfg, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer st.DB().Close()

	counts, err := st.TableCounts(context.Background())
	if err != nil {
		return errors.Wrap(err, "failed to query table counts")
	}

	fmt.Printf("%s Database Statistics\n", sym.DB)
	fmt.Printf("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━\n")
	fmt.Printf("%-22s %s\n", "Database:", describeDatabase(cfg))
	for _, table := range store.Tables() {
		fmt.Printf("%-22s %d\n", table+":", counts[table])
	}

	return nil
}

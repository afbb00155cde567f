package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/hobbyline/cardbinder/internal/database"
	"github.com/hobbyline/cardbinder/internal/migration"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Execute the local-to-remote migration",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := setup(cmd.Context(), migration.WithProgress(func(step string, percent int) {
			fmt.Printf("[%3d%%] %s\n", percent, step)
		}))
		if err != nil {
			return err
		}
		defer e.close()

		if missing, err := e.db.MissingTables(cmd.Context()); err == nil && len(missing) > 0 {
			printSchemaInstructions(missing)
			return fmt.Errorf("remote schema incomplete: missing %s", strings.Join(missing, ", "))
		}

		result, err := e.migrator.Migrate(cmd.Context())
		if result != nil {
			printResult(result)
		}
		return err
	},
}

var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Compare record counts between the two stores",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := setup(cmd.Context())
		if err != nil {
			return err
		}
		defer e.close()

		report, err := e.migrator.Verify(cmd.Context())
		if err != nil {
			return err
		}

		fmt.Printf("cards:       local %d, remote %d\n", report.LocalCards, report.RemoteCards)
		fmt.Printf("collections: local %d, remote %d\n", report.LocalCollections, report.RemoteCollections)
		if report.InSync {
			fmt.Println("stores are in sync")
		} else {
			fmt.Println("stores are OUT OF SYNC")
			os.Exit(1)
		}
		return nil
	},
}

var clearLocalCmd = &cobra.Command{
	Use:   "clear-local",
	Short: "Delete all cards and collections from the local store",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if !flagYes {
			return fmt.Errorf("refusing to clear the local store without --yes")
		}

		e, err := setup(cmd.Context())
		if err != nil {
			return err
		}
		defer e.close()

		if err := e.migrator.ClearLocal(cmd.Context(), true); err != nil {
			return err
		}
		fmt.Println("local store cleared")
		return nil
	},
}

var rollbackCmd = &cobra.Command{
	Use:   "rollback",
	Short: "Copy remote data back into the local store",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if !flagYes {
			return fmt.Errorf("refusing to overwrite local rows without --yes")
		}

		e, err := setup(cmd.Context())
		if err != nil {
			return err
		}
		defer e.close()

		result, err := e.migrator.Rollback(cmd.Context(), true)
		if err != nil {
			return err
		}

		fmt.Printf("restored %d cards and %d collections\n", result.CardsRestored, result.CollectionsRestored)
		for _, msg := range result.Errors {
			fmt.Println("  error:", msg)
		}
		return nil
	},
}

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Verify the remote schema prerequisites",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := setup(cmd.Context())
		if err != nil {
			return err
		}
		defer e.close()

		missing, err := e.db.MissingTables(cmd.Context())
		if err != nil {
			return fmt.Errorf("check remote schema: %w", err)
		}

		if len(missing) == 0 {
			fmt.Println("remote schema is ready")
			return nil
		}

		printSchemaInstructions(missing)
		os.Exit(1)
		return nil
	},
}

var importDumpCmd = &cobra.Command{
	Use:   "import-dump [dir]",
	Short: "Import a mongodump export into the remote store",
	Long: `Import a directory of mongodump-style .bson files (users.bson,
collections.bson, cards.bson) straight into the remote store. Imports are
upserts, so repeating an import is harmless. The directory defaults to
migration.dump_dir from the config file.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := setup(cmd.Context())
		if err != nil {
			return err
		}
		defer e.close()

		dir := e.cfg.Migration.DumpDir
		if len(args) > 0 {
			dir = args[0]
		}
		if dir == "" {
			return fmt.Errorf("no dump directory: pass one as an argument or set migration.dump_dir")
		}

		result, err := e.migrator.ImportDump(cmd.Context(), dir)
		if result != nil {
			fmt.Printf("imported %d users, %d collections, %d cards\n",
				result.UsersImported, result.CollectionsImported, result.CardsImported)
			for _, msg := range result.Errors {
				fmt.Println("  error:", msg)
			}
		}
		return err
	},
}

// printResult renders a migration result for the console.
func printResult(result *migration.Result) {
	fmt.Printf("users:       %d\n", result.UsersMigrated)
	fmt.Printf("collections: %d\n", result.CollectionsMigrated)
	fmt.Printf("cards:       %d\n", result.CardsMigrated)
	fmt.Printf("took:        %s\n", result.FinishedAt.Sub(result.StartedAt).Round(time.Millisecond))
	if result.Success {
		fmt.Println("migration succeeded")
		return
	}
	fmt.Printf("migration finished with %d errors:\n", len(result.Errors))
	for _, msg := range result.Errors {
		fmt.Println("  -", msg)
	}
}

// printSchemaInstructions tells the operator how to create missing tables
// by hand when the binary lacks DDL privileges.
func printSchemaInstructions(missing []string) {
	fmt.Println("the remote database is missing required tables:", strings.Join(missing, ", "))
	fmt.Println()
	fmt.Println("run the server binary once with a privileged role to create them,")
	fmt.Println("or execute the schema manually. Expected tables:")
	for _, table := range database.RequiredTables() {
		fmt.Println("  -", table)
	}
}

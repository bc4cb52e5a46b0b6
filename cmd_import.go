package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
)

var (
	importUserID int64
	importFile   string
	importSource string

	logJobID  string
	logUserID int64
)

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Import a brokerage activity export into the lot ledger",
	Long: `Parse a CSV or XLSX activity export, store its rows for the given user and
apply them to the lot ledger. Rows that fail are listed in the import log.

Examples:
  claimfolio import --user 3 --file activity.csv
  claimfolio import --user 3 --file export.bin --source xlsx`,
	RunE: runImport,
}

var importLogCmd = &cobra.Command{
	Use:   "import-log",
	Short: "Show the row log of an import job or a user's failed imports",
	RunE:  runImportLog,
}

func init() {
	rootCmd.AddCommand(importCmd, importLogCmd)

	importCmd.Flags().Int64Var(&importUserID, "user", 0, "Id of the user owning the activity")
	importCmd.Flags().StringVar(&importFile, "file", "", "Path of the activity export")
	importCmd.Flags().StringVar(&importSource, "source", "", "csv or xlsx (default: from extension, then content)")
	importCmd.MarkFlagRequired("user")
	importCmd.MarkFlagRequired("file")

	importLogCmd.Flags().StringVar(&logJobID, "job", "", "Import job id")
	importLogCmd.Flags().Int64Var(&logUserID, "user", 0, "List the failed import jobs of this user")
	importLogCmd.MarkFlagsOneRequired("job", "user")
	importLogCmd.MarkFlagsMutuallyExclusive("job", "user")
}

func runImport(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	owner, err := deps.users.GetUser(ctx, importUserID)
	if err != nil {
		return err
	}

	f, err := os.Open(importFile)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", importFile, err)
	}
	defer f.Close()

	source := importSource
	if source == "" {
		switch ext := strings.ToLower(filepath.Ext(importFile)); ext {
		case ".csv", ".xlsx":
			source = ext[1:]
		}
	}

	result, err := deps.imports.ImportFile(ctx, *owner, source, f)
	if err != nil {
		return err
	}
	return printJSON(cmd, result)
}

func runImportLog(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if logJobID != "" {
		entries, err := deps.imports.JobLog(ctx, logJobID)
		if err != nil {
			return err
		}
		return printJSON(cmd, entries)
	}
	jobs, err := deps.imports.ErrorJobs(ctx, logUserID)
	if err != nil {
		return err
	}
	return printJSON(cmd, jobs)
}

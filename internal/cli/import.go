package cli

import (
	"encoding/json"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/cartful/internal/catalog"
)

// NewImportCommand creates the import command.
func NewImportCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import <file.json>",
		Short: "Import catalog items from a JSON file",
		Long: `Import catalog items from a JSON file.

The file must hold a JSON array of records. Records with an empty store
or item name are skipped as invalid; records whose (store, item) pair
already exists - in the catalog or earlier in the file - are skipped as
duplicates. The batch never aborts on a bad record; a summary of
accepted, duplicate, and invalid counts is reported at the end.

Example:
  cartful import groceries-items-20260829-140509.json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImport(rootOpts, args[0], cmd)
		},
	}

	return cmd
}

func runImport(rootOpts *RootOptions, path string, cmd *cobra.Command) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return WrapExitError(ExitCommandError, "reading import file", err)
	}
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return WrapExitError(ExitFailure, "import file is not valid JSON", err)
	}

	app, err := openApp(rootOpts)
	if err != nil {
		return err
	}
	defer app.Close()

	ctx := cmd.Context()
	list, err := app.LoadList(ctx)
	if err != nil {
		return WrapExitError(ExitCommandError, "loading catalog", err)
	}

	merged, report, err := catalog.MergeImport(list.Items, raw)
	if err != nil {
		return WrapExitError(ExitFailure, "merging import", err)
	}

	list.Items = merged
	if err := app.SaveList(ctx, list); err != nil {
		return WrapExitError(ExitCommandError, "saving catalog", err)
	}

	out := formatter(rootOpts, cmd)
	out.Textf("Imported %d item(s), skipped %d duplicate(s) and %d invalid record(s)",
		report.Accepted, report.Duplicates, report.Invalid)
	return out.Success(report)
}

package cli

import (
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/cartful/internal/catalog"
)

// ExportOptions holds flags for the export command.
type ExportOptions struct {
	*RootOptions
	Output string
}

// NewExportCommand creates the export command.
func NewExportCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ExportOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the catalog as JSON",
		Long: `Export the catalog as a JSON array of items.

The file is named groceries-items-YYYYMMDD-HHMMSS.json (local time) and
written to the current directory, or to --output when given. A --output
ending in .json is used verbatim; otherwise it is treated as a target
directory.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExport(opts, cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "output file or directory")

	return cmd
}

func runExport(opts *ExportOptions, cmd *cobra.Command) error {
	app, err := openApp(opts.RootOptions)
	if err != nil {
		return err
	}
	defer app.Close()

	list, err := app.LoadList(cmd.Context())
	if err != nil {
		return WrapExitError(ExitCommandError, "loading catalog", err)
	}

	data, err := catalog.Export(list.Items)
	if err != nil {
		return WrapExitError(ExitFailure, "exporting catalog", err)
	}

	path := opts.Output
	switch {
	case path == "":
		path = catalog.ExportFilename(time.Now())
	case filepath.Ext(path) != ".json":
		path = filepath.Join(path, catalog.ExportFilename(time.Now()))
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return WrapExitError(ExitCommandError, "writing export file", err)
	}

	out := formatter(opts.RootOptions, cmd)
	out.Textf("Exported %d item(s) to %s", len(list.Items), path)
	return out.Success(map[string]any{"file": path, "items": len(list.Items)})
}

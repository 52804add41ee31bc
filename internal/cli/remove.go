package cli

import (
	"github.com/spf13/cobra"
)

// NewRemoveCommand creates the remove command.
func NewRemoveCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "remove <id>...",
		Short: "Remove items from the catalog",
		Long: `Remove items from the catalog.

Removal cascades: the ids also disappear from the shopping selection and
from the unchecked set, so no stale references remain.`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRemove(rootOpts, args, cmd)
		},
	}

	return cmd
}

func runRemove(rootOpts *RootOptions, ids []string, cmd *cobra.Command) error {
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

	out := formatter(rootOpts, cmd)
	removed := make([]string, 0, len(ids))
	for _, id := range ids {
		item, ok := list.Find(id)
		if !ok {
			return NewExitError(ExitFailure, "no item with id "+id)
		}
		list.RemoveItem(id)
		removed = append(removed, id)
		out.Textf("Removed %s at %s (%s)", item.Name, item.Store, id)
	}

	if err := app.SaveList(ctx, list); err != nil {
		return WrapExitError(ExitCommandError, "saving catalog", err)
	}
	return out.Success(map[string]any{"removed": removed})
}

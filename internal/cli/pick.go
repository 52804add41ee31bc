package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/cartful/internal/catalog"
)

// NewPickCommand creates the pick command.
func NewPickCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pick <id-or-name>...",
		Short: "Put items on the shopping list",
		Long: `Put catalog items on the active shopping list.

Items may be referenced by id or, when unambiguous, by name
(case-insensitive). Picking an already-picked item is a no-op.`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPick(rootOpts, args, cmd)
		},
	}

	return cmd
}

// NewDropCommand creates the drop command.
func NewDropCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "drop <id-or-name>...",
		Short: "Take items off the shopping list",
		Long: `Take items off the active shopping list.

Dropping also clears the item's unchecked mark. The item stays in the
catalog.`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDrop(rootOpts, args, cmd)
		},
	}

	return cmd
}

func runPick(rootOpts *RootOptions, refs []string, cmd *cobra.Command) error {
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
	picked := make([]string, 0, len(refs))
	for _, ref := range refs {
		item, err := resolveItemRef(list, ref)
		if err != nil {
			return WrapExitError(ExitFailure, "picking item", err)
		}
		if err := list.Select(item.ID); err != nil {
			return WrapExitError(ExitFailure, "picking item", err)
		}
		picked = append(picked, item.ID)
		out.Textf("Picked %s at %s (%s)", item.Name, item.Store, item.ID)
	}

	if err := app.SaveList(ctx, list); err != nil {
		return WrapExitError(ExitCommandError, "saving shopping list", err)
	}
	return out.Success(map[string]any{"picked": picked})
}

func runDrop(rootOpts *RootOptions, refs []string, cmd *cobra.Command) error {
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
	dropped := make([]string, 0, len(refs))
	for _, ref := range refs {
		item, err := resolveItemRef(list, ref)
		if err != nil {
			return WrapExitError(ExitFailure, "dropping item", err)
		}
		list.Deselect(item.ID)
		dropped = append(dropped, item.ID)
		out.Textf("Dropped %s at %s (%s)", item.Name, item.Store, item.ID)
	}

	if err := app.SaveList(ctx, list); err != nil {
		return WrapExitError(ExitCommandError, "saving shopping list", err)
	}
	return out.Success(map[string]any{"dropped": dropped})
}

// resolveItemRef finds an item by id first, then by case-insensitive name.
// An ambiguous name (two items at different stores) is an error; use the id.
func resolveItemRef(list *catalog.List, ref string) (catalog.Item, error) {
	if item, ok := list.Find(ref); ok {
		return item, nil
	}

	var matches []catalog.Item
	for _, it := range list.Items {
		if strings.EqualFold(it.Name, ref) {
			matches = append(matches, it)
		}
	}
	switch len(matches) {
	case 0:
		return catalog.Item{}, fmt.Errorf("no item matching %q", ref)
	case 1:
		return matches[0], nil
	default:
		return catalog.Item{}, fmt.Errorf("%q is ambiguous (%d matches); use the item id", ref, len(matches))
	}
}

package cli

import (
	"github.com/spf13/cobra"
)

// NewCheckCommand creates the check command.
func NewCheckCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "check <id-or-name>...",
		Short:         "Mark shopping-list items as checked",
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(rootOpts, args, false, cmd)
		},
	}

	return cmd
}

// NewUncheckCommand creates the uncheck command.
func NewUncheckCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "uncheck <id-or-name>...",
		Short: "Mark shopping-list items as unchecked",
		Long: `Mark shopping-list items as unchecked (struck through while shopping).

Only items currently on the shopping list can be unchecked.`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(rootOpts, args, true, cmd)
		},
	}

	return cmd
}

func runCheck(rootOpts *RootOptions, refs []string, uncheck bool, cmd *cobra.Command) error {
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
	ids := make([]string, 0, len(refs))
	for _, ref := range refs {
		item, err := resolveItemRef(list, ref)
		if err != nil {
			return WrapExitError(ExitFailure, "resolving item", err)
		}
		if uncheck {
			if err := list.Uncheck(item.ID); err != nil {
				return WrapExitError(ExitFailure, "unchecking item", err)
			}
			out.Textf("Unchecked %s (%s)", item.Name, item.ID)
		} else {
			list.Check(item.ID)
			out.Textf("Checked %s (%s)", item.Name, item.ID)
		}
		ids = append(ids, item.ID)
	}

	if err := app.SaveList(ctx, list); err != nil {
		return WrapExitError(ExitCommandError, "saving shopping list", err)
	}

	key := "checked"
	if uncheck {
		key = "unchecked"
	}
	return out.Success(map[string]any{key: ids})
}

package cli

import (
	"strconv"

	"github.com/spf13/cobra"
)

// AddOptions holds flags for the add command.
type AddOptions struct {
	*RootOptions
	Price string
}

// NewAddCommand creates the add command.
func NewAddCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &AddOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "add <store> <item>",
		Short: "Add an item to the catalog",
		Long: `Add an item to the catalog.

The (store, item) pair must be unused; comparison is case-insensitive.

Example:
  cartful add Auchan Milk --price 2.50`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAdd(opts, args[0], args[1], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Price, "price", "0", "item price")

	return cmd
}

func runAdd(opts *AddOptions, store, name string, cmd *cobra.Command) error {
	price, err := strconv.ParseFloat(opts.Price, 64)
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid --price", err)
	}

	app, err := openApp(opts.RootOptions)
	if err != nil {
		return err
	}
	defer app.Close()

	ctx := cmd.Context()
	list, err := app.LoadList(ctx)
	if err != nil {
		return WrapExitError(ExitCommandError, "loading catalog", err)
	}

	item, err := list.AddItem(store, name, price)
	if err != nil {
		return WrapExitError(ExitFailure, "adding item", err)
	}
	if err := app.SaveList(ctx, list); err != nil {
		return WrapExitError(ExitCommandError, "saving catalog", err)
	}

	out := formatter(opts.RootOptions, cmd)
	out.Textf("Added %s at %s (%s)", item.Name, item.Store, item.ID)
	return out.Success(item)
}

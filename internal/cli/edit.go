package cli

import (
	"strconv"

	"github.com/spf13/cobra"
)

// EditOptions holds flags for the edit command.
type EditOptions struct {
	*RootOptions
	Store string
	Name  string
	Price string
}

// NewEditCommand creates the edit command.
func NewEditCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &EditOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Edit a catalog item",
		Long: `Edit a catalog item in place. The id never changes.

Only the given flags are updated; omitted fields keep their value.

Example:
  cartful edit item-1700000000000 --price 2.80`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEdit(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Store, "store", "", "new store")
	cmd.Flags().StringVar(&opts.Name, "item", "", "new item name")
	cmd.Flags().StringVar(&opts.Price, "price", "", "new price")

	return cmd
}

func runEdit(opts *EditOptions, id string, cmd *cobra.Command) error {
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

	current, ok := list.Find(id)
	if !ok {
		return NewExitError(ExitFailure, "no item with id "+id)
	}

	store, name, price := current.Store, current.Name, current.Price
	if cmd.Flags().Changed("store") {
		store = opts.Store
	}
	if cmd.Flags().Changed("item") {
		name = opts.Name
	}
	if cmd.Flags().Changed("price") {
		price, err = strconv.ParseFloat(opts.Price, 64)
		if err != nil {
			return WrapExitError(ExitCommandError, "invalid --price", err)
		}
	}

	item, err := list.EditItem(id, store, name, price)
	if err != nil {
		return WrapExitError(ExitFailure, "editing item", err)
	}
	if err := app.SaveList(ctx, list); err != nil {
		return WrapExitError(ExitCommandError, "saving catalog", err)
	}

	out := formatter(opts.RootOptions, cmd)
	out.Textf("Updated %s at %s (%s)", item.Name, item.Store, item.ID)
	return out.Success(item)
}

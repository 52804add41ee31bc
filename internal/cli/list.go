package cli

import (
	"github.com/spf13/cobra"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/roach88/cartful/internal/catalog"
)

// ListOptions holds flags for the list command.
type ListOptions struct {
	*RootOptions
	Shopping bool
}

// listRow is one row of list output.
type listRow struct {
	catalog.Item
	Selected  bool `json:"selected"`
	Unchecked bool `json:"unchecked"`
}

// NewListCommand creates the list command.
func NewListCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ListOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List catalog items",
		Long: `List catalog items in insertion order.

With --shopping, only items picked onto the active shopping list are
shown; unchecked items are marked with [ ] and the rest with [x].`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(opts, cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.Shopping, "shopping", false, "show only the active shopping list")

	return cmd
}

func runList(opts *ListOptions, cmd *cobra.Command) error {
	app, err := openApp(opts.RootOptions)
	if err != nil {
		return err
	}
	defer app.Close()

	list, err := app.LoadList(cmd.Context())
	if err != nil {
		return WrapExitError(ExitCommandError, "loading catalog", err)
	}

	selected := make(map[string]bool, len(list.Selected))
	for _, id := range list.Selected {
		selected[id] = true
	}
	unchecked := make(map[string]bool, len(list.Unchecked))
	for _, id := range list.Unchecked {
		unchecked[id] = true
	}

	rows := make([]listRow, 0, len(list.Items))
	for _, it := range list.Items {
		if opts.Shopping && !selected[it.ID] {
			continue
		}
		rows = append(rows, listRow{Item: it, Selected: selected[it.ID], Unchecked: unchecked[it.ID]})
	}

	out := formatter(opts.RootOptions, cmd)
	printer := message.NewPrinter(language.English)
	for _, row := range rows {
		mark := "   "
		if opts.Shopping {
			mark = "[x] "
			if row.Unchecked {
				mark = "[ ] "
			}
		} else if row.Selected {
			mark = " * "
		}
		out.Textf("%s%-22s %-14s %s  %s",
			mark, row.Name, row.Store, printer.Sprintf("%.2f", row.Price), row.ID)
	}
	if len(rows) == 0 {
		out.VerboseLog("catalog is empty")
	}
	return out.Success(rows)
}

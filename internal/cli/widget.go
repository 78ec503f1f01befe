package cli

import (
	"strconv"

	"github.com/spf13/cobra"
)

// NewWidgetCmd создаёт группу команд для управления виджетами.
func NewWidgetCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "widget",
		Short: "Manage registered widgets",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List widgets",
			RunE: func(cmd *cobra.Command, args []string) error {
				widgets, err := clientFn().ListWidgets()
				if err != nil {
					return err
				}

				headers := []string{"KEY", "TYPE", "REFS"}
				rows := make([][]string, len(widgets))
				for i, w := range widgets {
					rows[i] = []string{w.Key, w.Type, strconv.Itoa(w.Refs)}
				}

				outputFn().Print(headers, rows, widgets)
				return nil
			},
		},
		&cobra.Command{
			Use:   "remove KEY",
			Short: "Remove a widget (its entries stay in the table)",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				if err := clientFn().RemoveWidget(args[0]); err != nil {
					return err
				}
				outputFn().Success("Widget " + args[0] + " removed")
				return nil
			},
		},
		&cobra.Command{
			Use:   "clear",
			Short: "Remove all widgets",
			RunE: func(cmd *cobra.Command, args []string) error {
				if err := clientFn().ClearWidgets(); err != nil {
					return err
				}
				outputFn().Success("Widgets cleared")
				return nil
			},
		},
	)

	return cmd
}

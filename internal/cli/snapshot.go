package cli

import (
	"strconv"

	"github.com/spf13/cobra"
)

// NewSnapshotCmd создаёт группу команд для работы со снимками.
func NewSnapshotCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Browse and take table snapshots",
	}

	cmd.AddCommand(
		newSnapshotListCmd(clientFn, outputFn),
		newSnapshotShowCmd(clientFn, outputFn),
		newSnapshotTakeCmd(clientFn, outputFn),
	)

	return cmd
}

func newSnapshotListCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	var limit, offset int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List snapshots (newest first)",
		RunE: func(cmd *cobra.Command, args []string) error {
			snapshots, total, err := clientFn().ListSnapshots(limit, offset)
			if err != nil {
				return err
			}

			headers := []string{"ID", "TAKEN", "ENTRIES"}
			rows := make([][]string, len(snapshots))
			for i, s := range snapshots {
				rows[i] = []string{s.ID, s.TakenAt, strconv.Itoa(s.EntryCount)}
			}

			out := outputFn()
			out.Print(headers, rows, snapshots)
			if len(snapshots) < total {
				out.Success("Showing " + strconv.Itoa(len(snapshots)) + " of " + strconv.Itoa(total))
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 0, "Maximum number of results")
	cmd.Flags().IntVar(&offset, "offset", 0, "Number of snapshots to skip")

	return cmd
}

func newSnapshotShowCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "show ID",
		Short: "Show a snapshot with its entries",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := clientFn().GetSnapshot(args[0])
			if err != nil {
				return err
			}

			headers := []string{"PATH", "TYPE", "VALUE"}
			rows := make([][]string, len(s.Entries))
			for i, e := range s.Entries {
				rows[i] = []string{e.Path, e.Type, e.FormatValue()}
			}

			out := outputFn()
			if !out.jsonMode {
				out.Success("Snapshot " + s.ID + " taken at " + s.TakenAt)
			}
			out.Print(headers, rows, s)
			return nil
		},
	}
}

func newSnapshotTakeCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "take",
		Short: "Take a snapshot now",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := clientFn().TakeSnapshot()
			if err != nil {
				return err
			}
			outputFn().Details([][2]string{
				{"ID", s.ID},
				{"Taken", s.TakenAt},
				{"Entries", strconv.Itoa(s.EntryCount)},
			}, s)
			return nil
		},
	}
}

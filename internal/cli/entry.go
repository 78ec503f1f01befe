package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
)

// valueTypes — типы значений, которые принимает API.
var valueTypes = []string{"boolean", "double", "string", "raw", "boolean[]", "double[]", "string[]"}

// NewEntryCmd создаёт группу команд для работы с entries.
func NewEntryCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "entry",
		Short: "Read and write dashboard entries",
	}

	cmd.AddCommand(
		newEntryListCmd(clientFn, outputFn),
		newEntryGetCmd(clientFn, outputFn),
		newEntrySetCmd(clientFn, outputFn),
		newEntryDeleteCmd(clientFn, outputFn),
		newEntryPersistCmd(clientFn, outputFn),
	)

	return cmd
}

func newEntryListCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	var prefix string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List entries",
		RunE: func(cmd *cobra.Command, args []string) error {
			entries, err := clientFn().ListEntries(prefix)
			if err != nil {
				return err
			}

			headers := []string{"PATH", "TYPE", "VALUE", "PERSISTENT"}
			rows := make([][]string, len(entries))
			for i, e := range entries {
				rows[i] = []string{e.Path, e.Type, e.FormatValue(), strconv.FormatBool(e.Persistent)}
			}

			outputFn().Print(headers, rows, entries)
			return nil
		},
	}

	cmd.Flags().StringVar(&prefix, "prefix", "", "Only entries under this path (e.g. /SmartDashboard)")

	return cmd
}

func newEntryGetCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "get PATH",
		Short: "Show an entry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := clientFn().GetEntry(args[0])
			if err != nil {
				return err
			}
			printEntry(outputFn(), e)
			return nil
		},
	}
}

func newEntrySetCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	var typ string
	var persistent bool

	cmd := &cobra.Command{
		Use:   "set PATH VALUE",
		Short: "Write an entry value as the dashboard",
		Long: "Write an entry value as the dashboard.\n\n" +
			"Arrays are comma-separated, raw values are base64.\n" +
			"Types: " + strings.Join(valueTypes, ", "),
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			value, err := ParseValue(typ, args[1])
			if err != nil {
				return err
			}

			req := SetEntryRequest{Value: TypedValue{Type: typ, Value: value}}
			if cmd.Flags().Changed("persistent") {
				req.Persistent = &persistent
			}

			e, err := clientFn().SetEntry(args[0], req)
			if err != nil {
				return err
			}

			out := outputFn()
			printEntry(out, e)
			out.Success("Entry " + e.Path + " updated")
			return nil
		},
	}

	cmd.Flags().StringVarP(&typ, "type", "t", "string", "Value type")
	cmd.Flags().BoolVar(&persistent, "persistent", false, "Set or clear the persistent flag")

	return cmd
}

func newEntryDeleteCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "delete PATH",
		Short: "Delete an entry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := clientFn().DeleteEntry(args[0]); err != nil {
				return err
			}
			outputFn().Success("Entry " + args[0] + " deleted")
			return nil
		},
	}
}

func newEntryPersistCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	var unset bool

	cmd := &cobra.Command{
		Use:   "persist PATH",
		Short: "Mark an entry persistent (or clear with --clear)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := clientFn().SetPersistent(args[0], !unset)
			if err != nil {
				return err
			}
			printEntry(outputFn(), e)
			return nil
		},
	}

	cmd.Flags().BoolVar(&unset, "clear", false, "Clear the persistent flag")

	return cmd
}

func printEntry(out *Output, e *EntryResponse) {
	out.Details([][2]string{
		{"Path", e.Path},
		{"Type", e.Type},
		{"Value", e.FormatValue()},
		{"Persistent", strconv.FormatBool(e.Persistent)},
		{"Updated", e.UpdatedAt},
	}, e)
}

// ParseValue разбирает значение из командной строки по типу.
func ParseValue(typ, s string) (any, error) {
	switch typ {
	case "boolean":
		return strconv.ParseBool(s)
	case "double":
		return strconv.ParseFloat(s, 64)
	case "string", "raw":
		return s, nil
	case "boolean[]":
		return parseList(s, strconv.ParseBool)
	case "double[]":
		return parseList(s, func(p string) (float64, error) { return strconv.ParseFloat(p, 64) })
	case "string[]":
		return parseList(s, func(p string) (string, error) { return p, nil })
	default:
		return nil, fmt.Errorf("unknown type %q (expected one of: %s)", typ, strings.Join(valueTypes, ", "))
	}
}

func parseList[T any](s string, parse func(string) (T, error)) ([]T, error) {
	out := []T{}
	if s == "" {
		return out, nil
	}
	for _, p := range strings.Split(s, ",") {
		v, err := parse(strings.TrimSpace(p))
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

package main

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/rs/xid"
	"github.com/spf13/cobra"
	"pkt.systems/pslog"

	"pkt.systems/trackd"
)

func newPutCommand(logger pslog.Logger) *cobra.Command {
	var (
		data     string
		ifAbsent bool
	)
	cmd := &cobra.Command{
		Use:   "put [id]",
		Short: "Insert a tracking entry, evicting the oldest tenth when full",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := ""
			if len(args) == 1 {
				id = args[0]
			} else {
				id = xid.New().String()
			}
			payload := []byte(data)
			if data == "-" {
				body, err := io.ReadAll(cmd.InOrStdin())
				if err != nil {
					return fmt.Errorf("read payload from stdin: %w", err)
				}
				payload = body
			}
			m, closeStore, err := openMap(logger, withEvictionReport(cmd.ErrOrStderr()))
			if err != nil {
				return err
			}
			defer closeQuietly(logger, closeStore)
			ctx := cmd.Context()
			if ifAbsent {
				inserted, err := m.PutIfAbsent(ctx, id, payload)
				if err != nil {
					return err
				}
				if !inserted {
					fmt.Fprintf(cmd.OutOrStdout(), "%s (already tracked)\n", id)
					return nil
				}
			} else if err := m.Put(ctx, id, payload); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), id)
			return nil
		},
	}
	cmd.Flags().StringVar(&data, "data", "", "payload bytes; \"-\" reads from stdin")
	cmd.Flags().BoolVar(&ifAbsent, "if-absent", false, "no-op when the id is already tracked")
	return cmd
}

// withEvictionReport surfaces evicted ids on the CLI's stderr so scripted
// callers see what the insert displaced.
func withEvictionReport(w io.Writer) func(*trackd.Config) {
	return func(cfg *trackd.Config) {
		cfg.OnOverflow = func(_ context.Context, id string) error {
			_, err := fmt.Fprintf(w, "evicted %s\n", id)
			return err
		}
	}
}

func newGetCommand(logger pslog.Logger) *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Print the payload stored under a tracking id",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, closeStore, err := openMap(logger)
			if err != nil {
				return err
			}
			defer closeQuietly(logger, closeStore)
			payload, err := m.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(append(payload, '\n'))
			return err
		},
	}
}

func newRemoveCommand(logger pslog.Logger) *cobra.Command {
	return &cobra.Command{
		Use:     "rm <id>",
		Aliases: []string{"remove"},
		Short:   "Remove a tracking entry (no error when absent)",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, closeStore, err := openMap(logger)
			if err != nil {
				return err
			}
			defer closeQuietly(logger, closeStore)
			return m.Remove(cmd.Context(), args[0])
		},
	}
}

func newListCommand(logger pslog.Logger) *cobra.Command {
	return &cobra.Command{
		Use:     "ls",
		Aliases: []string{"list"},
		Short:   "List tracked ids with stamp and age",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			m, closeStore, err := openMap(logger)
			if err != nil {
				return err
			}
			defer closeQuietly(logger, closeStore)
			entries, err := m.Entries(cmd.Context())
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 8, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tSTAMP\tSIZE\tMODIFIED")
			for _, entry := range entries {
				fmt.Fprintf(tw, "%s\t%d\t%s\t%s\n",
					entry.ID, entry.Stamp,
					humanize.Bytes(uint64(entry.Size)),
					humanize.Time(entry.ModifiedAt))
			}
			return tw.Flush()
		},
	}
}

func newSizeCommand(logger pslog.Logger) *cobra.Command {
	return &cobra.Command{
		Use:   "size",
		Short: "Count the tracked entries",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			m, closeStore, err := openMap(logger)
			if err != nil {
				return err
			}
			defer closeQuietly(logger, closeStore)
			size, err := m.Size(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), size)
			return nil
		},
	}
}

func newClearCommand(logger pslog.Logger) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Remove every tracked entry",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				return fmt.Errorf("clear removes every entry; re-run with --yes")
			}
			m, closeStore, err := openMap(logger)
			if err != nil {
				return err
			}
			defer closeQuietly(logger, closeStore)
			return m.Clear(cmd.Context())
		},
	}
	cmd.Flags().BoolVar(&yes, "yes", false, "confirm the bulk removal")
	return cmd
}

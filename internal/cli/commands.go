package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dtroode/examcert-server/internal/model"
	"github.com/dtroode/examcert-server/internal/schema"
)

func newCollectionsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "collections",
		Short: "List known collections and their fields",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			for _, name := range schema.Collections() {
				fields, err := schema.FieldsFor(name)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", name, strings.Join(fields, ","))
			}
			return nil
		},
	}
}

func newReadCmd(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "read <collection>",
		Short: "Print every record of a collection as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openStore(cmd, opts)
			if err != nil {
				return err
			}
			set, err := store.Read(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if set.Recovered != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "warning: %v\n", set.Recovered)
			}
			return writeRecords(cmd.OutOrStdout(), set.Records)
		},
	}
}

func newWriteCmd(opts *RootOptions) *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "write <collection>",
		Short: "Replace a collection with the JSON array in --file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			records, err := readRecords(cmd, file)
			if err != nil {
				return err
			}
			store, err := openStore(cmd, opts)
			if err != nil {
				return err
			}
			if err := store.Write(cmd.Context(), args[0], records); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %d records to %s\n", len(records), args[0])
			return nil
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "-", "JSON array of records, - for stdin")
	return cmd
}

func newAppendCmd(opts *RootOptions) *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "append <collection>",
		Short: "Append the records in --file to a collection",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			records, err := readRecords(cmd, file)
			if err != nil {
				return err
			}
			store, err := openStore(cmd, opts)
			if err != nil {
				return err
			}
			var total int
			err = store.Update(cmd.Context(), args[0], func(current model.RecordSet) ([]model.Record, error) {
				out := append(current.Records, records...)
				total = len(out)
				return out, nil
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "appended %d records to %s (%d total)\n", len(records), args[0], total)
			return nil
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "-", "JSON array of records, - for stdin")
	return cmd
}

func readRecords(cmd *cobra.Command, file string) ([]model.Record, error) {
	var r io.Reader
	if file == "-" {
		r = cmd.InOrStdin()
	} else {
		f, err := os.Open(file)
		if err != nil {
			return nil, fmt.Errorf("failed to open %s: %w", file, err)
		}
		defer f.Close()
		r = f
	}

	dec := json.NewDecoder(r)
	dec.UseNumber()
	var raw []map[string]any
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("failed to decode records: %w", err)
	}

	records := make([]model.Record, 0, len(raw))
	for _, m := range raw {
		rec := make(model.Record, len(m))
		for k, v := range m {
			rec[k] = model.NormalizeValue(v)
		}
		records = append(records, rec)
	}
	return records, nil
}

func writeRecords(w io.Writer, records []model.Record) error {
	if records == nil {
		records = []model.Record{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(records)
}

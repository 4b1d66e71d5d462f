package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/andreyvit/georec"
)

func newStatsCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "stats FILE",
		Short: "Print record and element counts",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := opts.openArena(args[0])
			if err != nil {
				return err
			}
			defer a.Close()

			s := a.Stats()
			w := cmd.OutOrStdout()
			if opts.Format == "json" {
				return writeJSON(w, s)
			}
			fmt.Fprintf(w, "records:     %d\n", s.Records)
			fmt.Fprintf(w, "  way_nodes:  %d\n", s.WayNodes)
			fmt.Fprintf(w, "  outer_ring: %d\n", s.OuterRings)
			fmt.Fprintf(w, "  inner_ring: %d\n", s.InnerRings)
			fmt.Fprintf(w, "elements:    %d\n", s.Elements)
			fmt.Fprintf(w, "closed:      %d\n", s.Closed)
			fmt.Fprintf(w, "empty:       %d\n", s.Empty)
			fmt.Fprintf(w, "used:        %d bytes\n", s.Used)
			return nil
		},
	}
}

type dumpedRecord struct {
	Offset   georec.Offset   `json:"offset"`
	Kind     string          `json:"kind"`
	Closed   bool            `json:"closed"`
	Len      int             `json:"len"`
	Elements []dumpedElement `json:"elements,omitempty"`
}

type dumpedElement struct {
	Ref int64    `json:"ref"`
	Lon *float64 `json:"lon,omitempty"`
	Lat *float64 `json:"lat,omitempty"`
}

func newDumpCommand(opts *rootOptions) *cobra.Command {
	var elements bool
	cmd := &cobra.Command{
		Use:   "dump FILE",
		Short: "List the records of an arena",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := opts.openArena(args[0])
			if err != nil {
				return err
			}
			defer a.Close()

			w := cmd.OutOrStdout()
			if opts.Format == "text" {
				f := georec.DumpHeaders
				if elements {
					f |= georec.DumpElements
				}
				_, err := fmt.Fprint(w, a.Dump(f))
				return err
			}

			records := []dumpedRecord{}
			for v := range a.Records() {
				r := dumpedRecord{
					Offset: v.Offset(),
					Kind:   v.Kind().String(),
					Closed: !v.Empty() && v.IsClosed(),
					Len:    v.Len(),
				}
				if elements {
					for _, e := range v.All() {
						de := dumpedElement{Ref: e.Ref}
						if e.HasLoc {
							lon, lat := e.Loc.Lon(), e.Loc.Lat()
							de.Lon, de.Lat = &lon, &lat
						}
						r.Elements = append(r.Elements, de)
					}
				}
				records = append(records, r)
			}
			return writeJSON(w, records)
		},
	}
	cmd.Flags().BoolVar(&elements, "elements", false, "include the elements of each record")
	return cmd
}

type checkResult struct {
	Valid    bool   `json:"valid"`
	Records  int    `json:"records"`
	Elements int    `json:"elements"`
	Error    string `json:"error,omitempty"`
}

func newCheckCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "check FILE",
		Short: "Verify the checksum and record chain of an arena file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			w := cmd.OutOrStdout()
			a, err := opts.openArena(args[0])
			if err != nil {
				if exitCode(err) != exitFailure {
					return err
				}
				if opts.Format == "json" {
					writeJSON(w, checkResult{Error: err.Error()})
				} else {
					fmt.Fprintf(w, "corrupted: %v\n", err)
				}
				return err
			}
			defer a.Close()

			s := a.Stats()
			opts.logger.Debug("checked arena", "file", args[0], "records", s.Records, "used", s.Used)
			if opts.Format == "json" {
				return writeJSON(w, checkResult{Valid: true, Records: s.Records, Elements: s.Elements})
			}
			fmt.Fprintf(w, "ok: %d records, %d elements\n", s.Records, s.Elements)
			return nil
		},
	}
}

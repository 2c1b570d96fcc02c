package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"hcsgrid/internal/catalog"
)

func newHistoryCmd(a *app) *cobra.Command {
	var (
		last   bool
		asJSON bool
	)
	cmd := &cobra.Command{
		Use:   "history ROOT",
		Short: "List the resolution passes recorded in the catalog for ROOT, oldest first",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.openCatalog(); err != nil {
				return err
			}
			if a.catalog == nil {
				return errors.New("history needs a catalog: set catalog.driver or HCSGRID_CATALOG_DRIVER")
			}
			label := rootLabel(args[0])
			var snaps []catalog.Snapshot
			if last {
				snap, err := a.catalog.Latest(cmd.Context(), label)
				if err != nil {
					return fmt.Errorf("latest pass for %s: %w", label, err)
				}
				snaps = []catalog.Snapshot{snap}
			} else {
				var err error
				if snaps, err = a.catalog.List(cmd.Context(), label); err != nil {
					return fmt.Errorf("list passes for %s: %w", label, err)
				}
			}
			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				for _, s := range snaps {
					if err := enc.Encode(s); err != nil {
						return err
					}
				}
				return nil
			}
			tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tKIND\tRESOLVED\tPOSITIONS\tSOURCES\tUNSTRUCTURED")
			for _, s := range snaps {
				sources := 0
				for _, c := range s.Cells {
					sources += len(c.Sources)
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%d\t%d\n", s.ID, s.Kind, s.ResolvedAt.Format(time.RFC3339), len(s.Cells), sources, len(s.Unstructured))
			}
			return tw.Flush()
		},
	}
	cmd.Flags().BoolVar(&last, "last", false, "print only the newest pass")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print one JSON snapshot per pass")
	return cmd
}

package main

import (
	"errors"
	"fmt"
	"path"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"hcsgrid/internal/scheme"
)

func newSchemesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "schemes",
		Short: "List the built-in naming schemes in match order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ORDER\tSCHEME\tPATTERN\tAXES")
			for i, s := range scheme.Default().All() {
				for _, p := range s.Patterns() {
					var axes []string
					for _, f := range p.Fields() {
						axes = append(axes, string(f.Axis))
					}
					fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", i+1, s.ID(), p.ID(), strings.Join(axes, ","))
				}
			}
			return tw.Flush()
		},
	}
}

func newClassifyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "classify NAME...",
		Short: "Show which scheme recognises each file name and the coordinates it yields",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			reg := scheme.Default()
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "NAME\tSCHEME\tPATTERN\tCOORDINATES\tALSO")
			for _, name := range args {
				m, rec, err := reg.ExtractName(name)
				switch {
				case err == nil:
					// Later candidates lost the registry-order tie-break.
					var also []string
					for _, c := range reg.Candidates(name)[1:] {
						also = append(also, c.ID())
					}
					fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", path.Base(name), m.Scheme.ID(), m.Pattern.ID(), rec, strings.Join(also, ","))
				case errors.Is(err, scheme.ErrNoSchemeMatch):
					fmt.Fprintf(tw, "%s\t-\t-\tunstructured\t\n", path.Base(name))
				default:
					_ = tw.Flush()
					return err
				}
			}
			return tw.Flush()
		},
	}
}

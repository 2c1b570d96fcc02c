package main

import (
	"bufio"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"hcsgrid/internal/export"
	"hcsgrid/internal/manifest"
)

func newManifestCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "manifest ROOT",
		Short: "Print the datasets published at ROOT (datasets.json, falling back to versions.json)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, prefix, err := a.service(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			m, err := svc.Manifest(cmd.Context(), prefix)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, d := range m.Datasets {
				marker := " "
				if d == m.Default {
					marker = "*"
				}
				fmt.Fprintf(out, "%s %s\n", marker, d)
			}
			return nil
		},
	}
}

func newExportCmd(a *app) *cobra.Command {
	var (
		f   resolveFlags
		out string
	)
	cmd := &cobra.Command{
		Use:   "export ROOT --out FILE",
		Short: "Resolve ROOT and write the grid as .csv or .xlsx",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := export.FormatFor(out)
			if err != nil {
				return err
			}
			exprs, err := f.expressions()
			if err != nil {
				return err
			}
			res, err := a.resolveOnce(cmd.Context(), args[0], exprs)
			if err != nil {
				return err
			}
			file, err := os.Create(out)
			if err != nil {
				return fmt.Errorf("create %s: %w", out, err)
			}
			bw := bufio.NewWriter(file)
			if err := export.Write(bw, format, res.Grid); err != nil {
				_ = file.Close()
				return err
			}
			if err := bw.Flush(); err != nil {
				_ = file.Close()
				return fmt.Errorf("write %s: %w", out, err)
			}
			if err := file.Close(); err != nil {
				return fmt.Errorf("close %s: %w", out, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %d positions to %s\n", res.Grid.Len(), out)
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file (.csv or .xlsx)")
	cmd.Flags().StringArrayVar(&f.exprs, "expr", nil, "named-group pattern, optionally suffixed =image|labels|table")
	cmd.Flags().StringArrayVar(&f.required, "require", nil, "like --expr, but the pattern must match at least one file")
	_ = cmd.MarkFlagRequired("out")
	return cmd
}

func newLocateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "locate URL",
		Short: "Split a repository tree URL into repository, branch and path",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			loc, err := manifest.ParseRepoURL(args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "repository: %s\n", loc.RepoURL)
			fmt.Fprintf(out, "user: %s\n", loc.User)
			fmt.Fprintf(out, "repo: %s\n", loc.Repo)
			fmt.Fprintf(out, "branch: %s\n", loc.Branch)
			fmt.Fprintf(out, "path: %s\n", loc.Path)
			return nil
		},
	}
}

// SPDX-License-Identifier: MIT

package main

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/cmunell/micro-util-sub002/labelstore"
	"github.com/cmunell/micro-util-sub002/model"
)

func newLabelsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "labels <run-id>",
		Short: "Print the merged labels of a run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			jsonOut, _ := cmd.Flags().GetBool("json")

			ctx := context.Background()
			st, err := labelstore.Open(ctx, cfg.Store.Path)
			if err != nil {
				return fmt.Errorf("failed to open store: %w", err)
			}
			defer st.Close()

			labels, err := st.RunLabels(ctx, args[0])
			if err != nil {
				return err
			}
			if jsonOut {
				return writeJSON(cmd.OutOrStdout(), labels)
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "DATASET\tDATUM\tLABEL\tSCORE")
			for _, dataset := range model.SortedIDs(labels) {
				for _, id := range model.SortedIDs(labels[dataset]) {
					l := labels[dataset][id]
					fmt.Fprintf(w, "%s\t%s\t%s\t%.4f\n", dataset, id, l.Label, l.Score)
				}
			}

			return w.Flush()
		},
	}
}

func newRunsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "runs",
		Short: "List saved runs, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			jsonOut, _ := cmd.Flags().GetBool("json")

			ctx := context.Background()
			st, err := labelstore.Open(ctx, cfg.Store.Path)
			if err != nil {
				return fmt.Errorf("failed to open store: %w", err)
			}
			defer st.Close()

			runs, err := st.Runs(ctx)
			if err != nil {
				return err
			}
			if jsonOut {
				if runs == nil {
					runs = []labelstore.Run{}
				}

				return writeJSON(cmd.OutOrStdout(), runs)
			}
			for _, r := range runs {
				fmt.Fprintf(cmd.OutOrStdout(), "%s  %-10s  %s\n", r.ID, r.Engine, r.CreatedAt.Format("2006-01-02 15:04:05"))
			}

			return nil
		},
	}
}

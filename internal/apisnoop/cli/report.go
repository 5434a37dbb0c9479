// Copyright 2026 The APISnoop Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"errors"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func newReportCmd(a *app) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:     "report",
		Short:   "Summarize recorded runs",
		Long:    "Print the operations hit by recorded events, most frequent first, followed by\nthe number of events per resolution failure.",
		Example: "  apisnoop report --db apisnoop.db --limit 20",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			st, err := a.openStore(ctx)
			if err != nil {
				return err
			}
			if st == nil {
				return errors.New("no database configured, set --db or store.path")
			}
			defer st.Close()

			hits, err := st.OperationHits(ctx, limit)
			if err != nil {
				return err
			}
			reasons, err := st.FailureReasons(ctx)
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 3, ' ', 0)
			fmt.Fprintln(w, "OPERATION\tHITS")
			for _, h := range hits {
				fmt.Fprintf(w, "%s\t%d\n", h.OperationID, h.Hits)
			}
			if len(reasons) > 0 {
				fmt.Fprintln(w, "\t")
				fmt.Fprintln(w, "FAILURE\tEVENTS")
				for _, r := range reasons {
					fmt.Fprintf(w, "%s\t%d\n", r.Reason, r.Events)
				}
			}
			return w.Flush()
		},
	}

	fs := cmd.Flags()
	fs.IntVar(&limit, Limit.Name, 0, Limit.Usage)

	return cmd
}

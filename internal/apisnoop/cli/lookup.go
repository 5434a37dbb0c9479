// Copyright 2026 The APISnoop Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/apisnoop/apisnoop/internal/specindex"
)

func newLookupCmd(a *app) *cobra.Command {
	var call specindex.Call

	cmd := &cobra.Command{
		Use:   "lookup",
		Short: "Resolve a single request",
		Example: "  apisnoop lookup --verb list --uri /api/v1/namespaces/default/pods\n" +
			"  apisnoop lookup --verb patch --uri /apis/apps/v1/namespaces/kube-system/deployments/coredns -r v1.33.0",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			// An empty verb is valid: the API server records it for OPTIONS.
			if call.URI == "" {
				return errors.New("--uri is required")
			}
			reg, err := a.registry(cmd.Context())
			if err != nil {
				return err
			}
			idx, release, err := reg.Acquire(cmd.Context(), a.cfg.Processing.Revision)
			if err != nil {
				return err
			}
			defer release()

			opID, err := idx.Resolve(call)
			if err != nil {
				if reason, ok := specindex.ReasonOf(err); ok {
					fmt.Fprintln(cmd.OutOrStdout(), reason)
				}
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), opID)
			return nil
		},
	}

	fs := cmd.Flags()
	addString(fs, Revision, "")
	fs.StringVar(&call.Verb, Verb.Name, "", Verb.Usage)
	fs.StringVar(&call.URI, URI.Name, "", URI.Usage)

	return cmd
}

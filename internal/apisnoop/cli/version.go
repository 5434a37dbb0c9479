// Copyright 2026 The APISnoop Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/apisnoop/apisnoop/internal/version"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			v := version.Get()
			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "Version:      %s\n", v.Version)
			fmt.Fprintf(w, "Git Revision: %s\n", v.GitRevision)
			fmt.Fprintf(w, "Build Time:   %s\n", v.BuildTime)
			fmt.Fprintf(w, "Go Version:   %s\n", v.GoVersion)
			fmt.Fprintf(w, "OS/Arch:      %s/%s\n", v.GoOS, v.GoArch)
			return nil
		},
	}
}

// Copyright 2026 The APISnoop Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"context"
	"fmt"
	"io"
	"maps"
	"os"
	"slices"
	"time"

	"github.com/spf13/cobra"

	"github.com/apisnoop/apisnoop/internal/logging"
	"github.com/apisnoop/apisnoop/internal/snoop"
	"github.com/apisnoop/apisnoop/internal/store"
)

func newProcessCmd(a *app) *cobra.Command {
	var input, output string

	cmd := &cobra.Command{
		Use:   "process",
		Short: "Resolve every event of an audit log",
		Long: "Read line-delimited audit events, resolve each one against the specification\n" +
			"at --revision and write the events back with operationId and resolutionError set.",
		Example: "  apisnoop process --revision v1.33.0 --input audit.log --output audit.log+opid\n" +
			"  zcat audit.log.gz | apisnoop process -r 8f2c1b4 > resolved.log",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			in, closeIn, err := openInput(cmd, input)
			if err != nil {
				return err
			}
			defer closeIn()

			out, closeOut, err := openOutput(cmd, output)
			if err != nil {
				return err
			}

			summary, err := a.runBatch(cmd.Context(), a.cfg.Processing.Revision, in, out, store.RunInfo{
				Revision: a.cfg.Processing.Revision,
			})
			if cerr := closeOut(); err == nil {
				err = cerr
			}
			if err != nil {
				return err
			}
			printSummary(cmd.ErrOrStderr(), summary)
			return nil
		},
	}

	fs := cmd.Flags()
	addString(fs, Revision, "")
	fs.StringVarP(&input, Input.Name, Input.Shorthand, "-", Input.Usage)
	fs.StringVarP(&output, Output.Name, Output.Shorthand, "-", Output.Usage)

	return cmd
}

// runBatch processes one log, recording it in the store when one is configured.
func (a *app) runBatch(ctx context.Context, revision string, in io.Reader, out io.Writer, info store.RunInfo) (snoop.Summary, error) {
	proc, err := a.processor(ctx)
	if err != nil {
		return snoop.Summary{}, err
	}

	st, err := a.openStore(ctx)
	if err != nil {
		return snoop.Summary{}, err
	}
	batch := snoop.Batch{Revision: revision, Input: in, Output: out}
	var rec *store.Recorder
	if st != nil {
		defer st.Close()
		rec, err = st.Begin(ctx, info)
		if err != nil {
			return snoop.Summary{}, err
		}
		batch.Recorder = rec
	}

	summary, err := proc.Process(ctx, batch)
	if err != nil {
		return summary, err
	}
	if rec != nil {
		if err := rec.Flush(ctx); err != nil {
			return summary, fmt.Errorf("failed to flush recorded events: %w", err)
		}
		logging.FromContext(ctx).Info("Recorded run", "run", rec.RunID(), "events", summary.Events)
	}
	return summary, nil
}

func openInput(cmd *cobra.Command, name string) (io.Reader, func(), error) {
	if name == "" || name == "-" {
		return cmd.InOrStdin(), func() {}, nil
	}
	f, err := os.Open(name)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open input: %w", err)
	}
	return f, func() { _ = f.Close() }, nil
}

func openOutput(cmd *cobra.Command, name string) (io.Writer, func() error, error) {
	if name == "" || name == "-" {
		return cmd.OutOrStdout(), func() error { return nil }, nil
	}
	f, err := os.Create(name)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create output: %w", err)
	}
	return f, f.Close, nil
}

func printSummary(w io.Writer, s snoop.Summary) {
	fmt.Fprintf(w, "revision %s: %d events, %d resolved, %d ignored, %d failed, %d malformed in %s\n",
		s.Revision, s.Events, s.Resolved, s.Ignored, s.Failed(), s.Malformed, s.Duration.Round(time.Millisecond))
	for _, reason := range slices.Sorted(maps.Keys(s.Failures)) {
		fmt.Fprintf(w, "  %s: %d\n", reason, s.Failures[reason])
	}
}

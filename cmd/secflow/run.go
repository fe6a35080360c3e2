// Copyright The OpenTelemetry Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//       http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/f5/secflow/pkg/batch"
	"github.com/f5/secflow/pkg/config"
	"github.com/f5/secflow/pkg/exec"
	"github.com/f5/secflow/pkg/expr"
	"github.com/f5/secflow/pkg/op"
	"github.com/f5/secflow/pkg/ops/aggregate"
	"github.com/f5/secflow/pkg/ops/buffer"
	"github.com/f5/secflow/pkg/ops/project"
)

func newRunCommand() *cobra.Command {
	var rows int
	var bufferCapacity int
	var dropOnFull bool
	var verbose bool

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run a demo pipeline over synthetic events and print the aggregated result",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDemo(cmd, rows, bufferCapacity, dropOnFull, verbose)
		},
	}
	cmd.Flags().IntVar(&rows, "rows", 120, "total synthetic event rows to generate")
	cmd.Flags().IntVar(&bufferCapacity, "buffer-capacity", 16, "row capacity of the buffer stage")
	cmd.Flags().BoolVar(&dropOnFull, "drop-on-full", false, "drop instead of block when the buffer is full")
	cmd.Flags().BoolVar(&verbose, "verbose", false, "log at debug level instead of info")
	return cmd
}

func runDemo(cmd *cobra.Command, rows, bufferCapacity int, dropOnFull, verbose bool) error {
	logLevel := zap.InfoLevel
	if verbose {
		logLevel = zap.DebugLevel
	}
	zapCfg := zap.NewProductionConfig()
	zapCfg.Level = zap.NewAtomicLevelAt(logLevel)
	logger, err := zapCfg.Build()
	if err != nil {
		return fmt.Errorf("secflow: building logger: %w", err)
	}
	defer logger.Sync() //nolint:errcheck

	runID := uuid.New()
	logger = logger.With(zap.String("run_id", runID.String()))

	policy := config.PolicyBlock
	if dropOnFull {
		policy = config.PolicyDrop
	}
	cfg := config.New(
		config.WithLogger(logger),
		config.WithBufferCapacity(bufferCapacity),
		config.WithBufferPolicy(policy),
	)

	sink := &demoSink{}
	pipeline := []op.Operator{
		&demoSource{total: rows, rowsPerBatch: 10},
		buffer.New(cfg.BufferCapacity, cfg.BufferPolicy),
		project.New(project.Put, []project.Assignment{
			{Selector: "category", Expr: expr.FieldPath{Segments: []string{"category"}}},
			{Selector: "amount", Expr: expr.FieldPath{Segments: []string{"amount"}}},
		}),
		aggregate.New(
			[]aggregate.GroupKey{{Name: "category", Expr: expr.FieldPath{Segments: []string{"category"}}}},
			[]aggregate.Aggregation{
				{Name: "total_amount", Func: aggregate.Sum, Arg: expr.FieldPath{Segments: []string{"amount"}}},
				{Name: "event_count", Func: aggregate.Count, Arg: expr.FieldPath{Segments: []string{"amount"}}},
			},
		),
		sink,
	}

	sched := exec.NewScheduler(context.Background(), pipeline, exec.Options{
		InboxCapacity: cfg.InboxCapacity,
		Bus:           cfg.Bus,
		Logger:        cfg.Logger,
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := sched.Run(ctx); err != nil {
		return fmt.Errorf("secflow: pipeline failed: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "run %s:\n", runID)

	table := tablewriter.NewWriter(out)
	table.SetAutoWrapText(false)
	var headerSet bool
	for _, b := range sink.collected() {
		if !headerSet && b.Schema().Fields != nil {
			headers := make([]string, len(b.Schema().Fields))
			for i, f := range b.Schema().Fields {
				headers[i] = f.Name
			}
			table.SetHeader(headers)
			headerSet = true
		}
		for r := int64(0); r < b.NumRows(); r++ {
			rec, err := batch.Row(b, r)
			if err != nil {
				return err
			}
			row := make([]string, len(rec))
			for i, f := range rec {
				row[i] = f.Value.String()
			}
			table.Append(row)
		}
	}
	table.Render()

	for _, w := range cfg.Bus.Warnings() {
		fmt.Fprintf(out, "warning: %s\n", w.Message)
	}
	return nil
}

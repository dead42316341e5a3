package main

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/pior/addb"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	fpwriteCmd = &cobra.Command{
		Use:   "fpwrite [dataKey] [partitionInfo] [columnCount] [value...]",
		Short: "Stores row/column values under a data key",
		Args:  cobra.MinimumNArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			columnCount, err := strconv.Atoi(args[2])
			if err != nil {
				return fmt.Errorf("columnCount must be a number: %w", err)
			}
			fpArgs, err := addb.FpWriteDataKey(args[0]).
				PartitionInfo(args[1]).
				ColumnCountInt(columnCount).
				DataList(args[3:]).
				Build()
			if err != nil {
				return err
			}

			ctx, cancel := commandContext(cmd)
			defer cancel()

			return run(ctx, cmd.OutOrStdout(), "",
				func(ctx context.Context) (string, error) { return client.FpWrite(ctx, fpArgs) },
				func(ctx context.Context, s *addb.NodeSelection) (*addb.Executions[string], error) {
					return s.FpWrite(ctx, fpArgs)
				},
				formatString)
		},
	}

	fpscanCmd = &cobra.Command{
		Use:   "fpscan [dataKey] [column...]",
		Short: "Reads the values of columns under a data key",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			fpArgs, err := addb.FpScanDataKey(args[0]).ColumnList(args[1:]).Build()
			if err != nil {
				return err
			}

			ctx, cancel := commandContext(cmd)
			defer cancel()

			return run(ctx, cmd.OutOrStdout(), "",
				func(ctx context.Context) ([]string, error) { return client.FpScan(ctx, fpArgs) },
				func(ctx context.Context, s *addb.NodeSelection) (*addb.Executions[[]string], error) {
					return s.FpScan(ctx, fpArgs)
				},
				formatList)
		},
	}

	metakeysCmd = &cobra.Command{
		Use:   "metakeys [pattern] [statements]",
		Short: "Lists the meta keys matching a pattern and predicate statements",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			mkArgs, err := addb.MetakeysPattern(args[0]).Statements(args[1]).Build()
			if err != nil {
				return err
			}

			ctx, cancel := commandContext(cmd)
			defer cancel()

			return run(ctx, cmd.OutOrStdout(), "",
				func(ctx context.Context) ([]string, error) { return client.Metakeys(ctx, mkArgs) },
				func(ctx context.Context, s *addb.NodeSelection) (*addb.Executions[[]string], error) {
					return s.Metakeys(ctx, mkArgs)
				},
				formatList)
		},
	}

	pingCmd = &cobra.Command{
		Use:   "ping",
		Short: "Checks that the nodes answer, on all nodes unless --select is given",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := commandContext(cmd)
			defer cancel()

			return run(ctx, cmd.OutOrStdout(), "all",
				nil,
				func(ctx context.Context, s *addb.NodeSelection) (*addb.Executions[string], error) {
					return s.Ping(ctx)
				},
				formatString)
		},
	}
)

func commandContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	return context.WithTimeout(cmd.Context(), viper.GetDuration("timeout"))
}

// run executes single on the routed node, or fanOut on the --select
// selection (defaultSelect when the flag is empty), and prints the outcome.
func run[T any](
	ctx context.Context,
	w io.Writer,
	defaultSelect string,
	single func(context.Context) (T, error),
	fanOut func(context.Context, *addb.NodeSelection) (*addb.Executions[T], error),
	format func(T) string,
) error {
	selection := viper.GetString("select")
	if selection == "" {
		selection = defaultSelect
	}

	if selection == "" {
		start := time.Now()
		value, err := single(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "%s (took %v)\n", format(value), time.Since(start))
		return nil
	}

	pred, err := parseSelection(selection)
	if err != nil {
		return err
	}
	sel := client.Select(pred)
	if sel.Len() == 0 {
		return fmt.Errorf("selection %q matches no node", selection)
	}

	x, waitErr := fanOut(ctx, sel)
	if err := printExecutions(w, x, format); err != nil {
		return err
	}
	return waitErr
}

// printExecutions writes one line per selected node, in selection order.
// It returns an error when at least one node failed.
func printExecutions[T any](w io.Writer, x *addb.Executions[T], format func(T) string) error {
	for _, node := range x.Nodes() {
		outcome, ok := x.Get(node.ID)
		switch {
		case !ok:
			fmt.Fprintf(w, "%s\tpending\n", node)
		case outcome.Err != nil:
			fmt.Fprintf(w, "%s\terror: %v (took %v)\n", node, outcome.Err, outcome.Duration)
		default:
			fmt.Fprintf(w, "%s\t%s (took %v)\n", node, format(outcome.Value), outcome.Duration)
		}
	}

	if failed := x.Failed(); len(failed) > 0 {
		return fmt.Errorf("%d of %d nodes failed", len(failed), x.Len())
	}
	return nil
}

func formatString(s string) string { return s }

func formatList(values []string) string {
	if len(values) == 0 {
		return "(empty)"
	}
	return strings.Join(values, " ")
}

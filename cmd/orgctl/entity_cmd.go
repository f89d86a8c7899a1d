package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/iota-uz/org-console/modules/department"
	"github.com/iota-uz/org-console/modules/position"
	"github.com/iota-uz/org-console/modules/tenant"
	"github.com/iota-uz/org-console/pkg/resource"
)

type entityOps struct {
	list       func(ctx context.Context) (any, error)
	deleteMany func(ctx context.Context, ids []int64) resource.BatchResult
}

func opsOf[T, C, U any](c *resource.Client[T, C, U]) entityOps {
	return entityOps{
		list: func(ctx context.Context) (any, error) {
			items, err := c.ListAll(ctx)
			return items, err
		},
		deleteMany: c.DeleteMany,
	}
}

var entityKinds = []string{tenant.Kind, department.Kind, position.Kind}

func (o *rootOptions) entity(kind string) (entityOps, error) {
	transport, err := o.transport()
	if err != nil {
		return entityOps{}, err
	}
	conf := resource.Config{Logger: o.logger(), DeleteConcurrency: o.backend.DeleteConcurrency}
	switch strings.TrimSuffix(strings.ToLower(kind), "s") {
	case tenant.Kind:
		return opsOf(tenant.NewClient(transport, conf)), nil
	case department.Kind:
		return opsOf(department.NewClient(transport, conf)), nil
	case position.Kind:
		return opsOf(position.NewClient(transport, conf)), nil
	}
	return entityOps{}, withCode(exitUsage, fmt.Errorf("unknown entity %q (expected one of %s)", kind, strings.Join(entityKinds, ", ")))
}

func newPingCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "ping",
		Short: "Check that the backend answers /health",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			transport, err := opts.transport()
			if err != nil {
				return err
			}
			if err := resource.NewHealth(transport, opts.backend.HealthTimeout).Ping(cmd.Context()); err != nil {
				return withCode(exitBackend, fmt.Errorf("backend unreachable at %s: %w", transport.BaseURL(), err))
			}
			fmt.Fprintf(cmd.OutOrStdout(), "ok %s\n", transport.BaseURL())
			return nil
		},
	}
}

func newListCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list <tenant|department|position>",
		Short: "Print every record of an entity as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ops, err := opts.entity(args[0])
			if err != nil {
				return err
			}
			items, err := ops.list(cmd.Context())
			if err != nil {
				return withCode(exitBackend, err)
			}
			return writeJSON(cmd.OutOrStdout(), items)
		},
	}
}

type deleteReport struct {
	Kind      string  `json:"kind"`
	Succeeded []int64 `json:"succeeded"`
	Failed    []int64 `json:"failed"`
	Error     string  `json:"error,omitempty"`
}

func newDeleteCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <tenant|department|position> <id>...",
		Short: "Delete records concurrently and report per-id outcomes",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := parseIDs(args[1:])
			if err != nil {
				return err
			}
			ops, err := opts.entity(args[0])
			if err != nil {
				return err
			}
			res := ops.deleteMany(cmd.Context(), ids)
			report := deleteReport{Kind: args[0], Succeeded: res.Succeeded, Failed: res.Failed, Error: res.Error}
			if err := writeJSON(cmd.OutOrStdout(), report); err != nil {
				return err
			}
			if !res.Success {
				return withCode(exitPartial, fmt.Errorf("%d of %d deletes failed", len(res.Failed), len(ids)))
			}
			return nil
		},
	}
}

func parseIDs(args []string) ([]int64, error) {
	ids := make([]int64, 0, len(args))
	for _, a := range args {
		id, err := strconv.ParseInt(a, 10, 64)
		if err != nil || id <= 0 {
			return nil, withCode(exitUsage, fmt.Errorf("invalid id %q", a))
		}
		ids = append(ids, id)
	}
	return ids, nil
}

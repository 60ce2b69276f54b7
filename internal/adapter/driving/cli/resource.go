package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/ericfisherdev/bakelink/internal/adapter/driven/bakelink"
	"github.com/ericfisherdev/bakelink/internal/domain/model"
)

// crudService is the operation set every backend collection shares.
type crudService interface {
	List(ctx context.Context, filter any) (*bakelink.Response, error)
	Create(ctx context.Context, data any) (*bakelink.Response, error)
	Update(ctx context.Context, id string, data any) (*bakelink.Response, error)
	Delete(ctx context.Context, id string) (*bakelink.Response, error)
}

// resourceService is a collection whose records are fetched by id.
type resourceService interface {
	crudService
	GetByID(ctx context.Context, id string) (*bakelink.Response, error)
}

// statusFilter turns a --status value into a list filter. A nil filter
// means the list is unfiltered.
type statusFilter func(value string) (map[string]any, error)

func orderStatusFilter(value string) (map[string]any, error) {
	status, err := model.ParseOrderStatus(value)
	if err != nil {
		return nil, err
	}
	if status == model.OrderStatusAll {
		return nil, nil
	}
	return map[string]any{"status": string(status)}, nil
}

func scheduleStatusFilter(value string) (map[string]any, error) {
	status, err := model.ParseScheduleStatus(value)
	if err != nil {
		return nil, err
	}
	return map[string]any{"status": string(status)}, nil
}

// resourceSpec describes one id-addressed resource command.
type resourceSpec struct {
	use     string
	aliases []string
	short   string
	status  statusFilter // nil when the resource has no status
	service func(*bakelink.Client) resourceService
}

func newResourceCmd(g *globalFlags, spec resourceSpec) *cobra.Command {
	cmd := &cobra.Command{
		Use:     spec.use,
		Aliases: spec.aliases,
		Short:   spec.short,
	}

	crud := func(c *bakelink.Client) crudService { return spec.service(c) }

	cmd.AddCommand(newListCmd(g, spec.status, crud))
	cmd.AddCommand(&cobra.Command{
		Use:   "get <id>",
		Short: "Fetch one record",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, g, func(ctx context.Context, a *app) error {
				resp, err := spec.service(a.client).GetByID(ctx, args[0])
				if err != nil {
					return err
				}
				return printResponse(cmd.OutOrStdout(), resp)
			})
		},
	})
	cmd.AddCommand(newCreateCmd(g, crud))
	cmd.AddCommand(newUpdateCmd(g, crud))
	cmd.AddCommand(newDeleteCmd(g, crud))

	return cmd
}

func newListCmd(g *globalFlags, status statusFilter, service func(*bakelink.Client) crudService) *cobra.Command {
	var statusValue string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List records",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var filter any
			if status != nil && statusValue != "" {
				f, err := status(statusValue)
				if err != nil {
					return err
				}
				if f != nil {
					filter = f
				}
			}
			return withSession(cmd, g, func(ctx context.Context, a *app) error {
				resp, err := service(a.client).List(ctx, filter)
				if err != nil {
					return err
				}
				return printResponse(cmd.OutOrStdout(), resp)
			})
		},
	}

	if status != nil {
		cmd.Flags().StringVar(&statusValue, "status", "", `filter by status (see "bakelink options")`)
	}

	return cmd
}

func newCreateCmd(g *globalFlags, service func(*bakelink.Client) crudService) *cobra.Command {
	p := &payloadFlags{}

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a record from --data or --file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			body, err := p.read()
			if err != nil {
				return err
			}
			return withSession(cmd, g, func(ctx context.Context, a *app) error {
				resp, err := service(a.client).Create(ctx, body)
				if err != nil {
					return err
				}
				return printResponse(cmd.OutOrStdout(), resp)
			})
		},
	}
	p.register(cmd)

	return cmd
}

func newUpdateCmd(g *globalFlags, service func(*bakelink.Client) crudService) *cobra.Command {
	p := &payloadFlags{}

	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Replace a record from --data or --file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			body, err := p.read()
			if err != nil {
				return err
			}
			return withSession(cmd, g, func(ctx context.Context, a *app) error {
				resp, err := service(a.client).Update(ctx, args[0], body)
				if err != nil {
					return err
				}
				return printResponse(cmd.OutOrStdout(), resp)
			})
		},
	}
	p.register(cmd)

	return cmd
}

func newDeleteCmd(g *globalFlags, service func(*bakelink.Client) crudService) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a record",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, g, func(ctx context.Context, a *app) error {
				resp, err := service(a.client).Delete(ctx, args[0])
				if err != nil {
					return err
				}
				return printResponse(cmd.OutOrStdout(), resp)
			})
		},
	}
}

func newSchedulesCmd(g *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "schedules",
		Short: "Manage production schedules",
	}

	crud := func(c *bakelink.Client) crudService { return c.Schedules }

	cmd.AddCommand(newListCmd(g, scheduleStatusFilter, crud))
	cmd.AddCommand(&cobra.Command{
		Use:   "date <YYYY-MM-DD>",
		Short: "Show the schedule for one day",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			day, err := bakelink.ParseDate(args[0])
			if err != nil {
				return err
			}
			return withSession(cmd, g, func(ctx context.Context, a *app) error {
				resp, err := a.client.Schedules.GetByDate(ctx, day)
				if err != nil {
					return err
				}
				return printResponse(cmd.OutOrStdout(), resp)
			})
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "month <YYYY-MM>",
		Short: "Show every schedule in a month",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			month, err := bakelink.ParseMonth(args[0])
			if err != nil {
				return err
			}
			return withSession(cmd, g, func(ctx context.Context, a *app) error {
				resp, err := a.client.Schedules.GetByMonth(ctx, month)
				if err != nil {
					return err
				}
				return printResponse(cmd.OutOrStdout(), resp)
			})
		},
	})
	cmd.AddCommand(newCreateCmd(g, crud))
	cmd.AddCommand(newUpdateCmd(g, crud))
	cmd.AddCommand(newDeleteCmd(g, crud))

	return cmd
}

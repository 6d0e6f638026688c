package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/garyjia/approvals-console/internal/application/service"
	"github.com/garyjia/approvals-console/internal/container"
)

var (
	listStatus    string
	rejectReason  string
	approveReason string
	exportOut     string
	exportStatus  string
)

func init() {
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(approveCmd)
	rootCmd.AddCommand(rejectCmd)
	rootCmd.AddCommand(exportCmd)

	listCmd.Flags().StringVar(&listStatus, "status", "", "filter by status: all, pending, approved, rejected")
	approveCmd.Flags().StringVar(&approveReason, "reason", "", "optional note sent with the approval")
	rejectCmd.Flags().StringVar(&rejectReason, "reason", "", "reason shown to the requester (required)")
	exportCmd.Flags().StringVar(&exportOut, "out", "approvals.xlsx", "output workbook path")
	exportCmd.Flags().StringVar(&exportStatus, "status", "", "filter by status: all, pending, approved, rejected")
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List approval requests",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		tab, err := service.ParseTab(listStatus)
		if err != nil {
			return err
		}

		return withContainer(cmd, func(ctx context.Context, c *container.Container) error {
			list := c.Services().List
			if err := list.Load(ctx); err != nil {
				return err
			}

			items := list.Filter(tab)
			out := cmd.OutOrStdout()
			if jsonOutput {
				return writeJSON(out, items)
			}

			if err := writeTable(out, []string{"ID", "CATEGORY", "STATUS", "ACCOUNT", "REQUESTED", "DESCRIPTION"}, approvalRows(items)); err != nil {
				return err
			}

			counts := list.Counts()
			parts := make([]string, 0, len(service.Tabs))
			for _, t := range service.Tabs {
				parts = append(parts, fmt.Sprintf("%s %d", t, counts[t]))
			}
			_, err := fmt.Fprintf(out, "\n%s\n", strings.Join(parts, " | "))
			return err
		})
	},
}

var showCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show one approval request",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withContainer(cmd, func(ctx context.Context, c *container.Container) error {
			a, err := c.Backend().GetByID(ctx, args[0])
			if err != nil {
				return err
			}
			if jsonOutput {
				return writeJSON(cmd.OutOrStdout(), a)
			}
			return writeDetail(cmd.OutOrStdout(), a)
		})
	},
}

var approveCmd = &cobra.Command{
	Use:   "approve <id>",
	Short: "Approve a request",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withContainer(cmd, func(ctx context.Context, c *container.Container) error {
			a, err := c.Backend().GetByID(ctx, args[0])
			if err != nil {
				return err
			}
			outcome, err := c.Services().Approval.ApproveWithReason(ctx, a, approveReason)
			if err != nil {
				return err
			}
			return printOutcome(cmd, outcome)
		})
	},
}

var rejectCmd = &cobra.Command{
	Use:   "reject <id>",
	Short: "Reject a request with a reason",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if strings.TrimSpace(rejectReason) == "" {
			return fmt.Errorf("--reason is required to reject a request")
		}

		return withContainer(cmd, func(ctx context.Context, c *container.Container) error {
			a, err := c.Backend().GetByID(ctx, args[0])
			if err != nil {
				return err
			}
			outcome, err := c.Services().Approval.Reject(ctx, a, rejectReason)
			if err != nil {
				return err
			}
			return printOutcome(cmd, outcome)
		})
	},
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export approval requests to an Excel workbook",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		tab, err := service.ParseTab(exportStatus)
		if err != nil {
			return err
		}

		return withContainer(cmd, func(ctx context.Context, c *container.Container) error {
			list := c.Services().List
			if err := list.Load(ctx); err != nil {
				return err
			}

			items := list.Filter(tab)
			if err := c.Exporter().WriteWorkbook(exportOut, items); err != nil {
				return err
			}
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "Exported %d approvals to %s\n", len(items), exportOut)
			return err
		})
	},
}

func printOutcome(cmd *cobra.Command, outcome *service.Outcome) error {
	out := cmd.OutOrStdout()
	if jsonOutput {
		return writeJSON(out, outcome)
	}
	if _, err := fmt.Fprintln(out, outcome.Message); err != nil {
		return err
	}
	if outcome.Echoed != nil && outcome.Echoed.Status != outcome.Status {
		_, err := fmt.Fprintf(out, "Backend reports status %s\n", outcome.Echoed.Status)
		return err
	}
	return nil
}

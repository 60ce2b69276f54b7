package cli

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/ericfisherdev/bakelink/internal/domain/model"
)

var headingStyle = lipgloss.NewStyle().Bold(true)

func newOptionsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "options",
		Short: "List the accepted schedule and order statuses",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			w := cmd.OutOrStdout()
			printOptions(w, "Schedule statuses", model.ScheduleStatusOptions())
			fmt.Fprintln(w)
			printOptions(w, "Order statuses", model.OrderStatusOptions())
			return nil
		},
	}
}

func printOptions(w io.Writer, heading string, opts []model.StatusOption) {
	fmt.Fprintln(w, headingStyle.Render(heading))
	for _, opt := range opts {
		label := opt.Label
		if opt.Color != "" {
			label = lipgloss.NewStyle().Foreground(lipgloss.Color(opt.Color)).Render(label)
		}
		fmt.Fprintf(w, "  %-10s %s\n", opt.Value, label)
	}
}

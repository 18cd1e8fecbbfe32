package cli

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	domainStatus "github.com/comparo/backend/internal/domain/status"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Check knowledge base readiness",
	Args:  cobra.NoArgs,
	RunE:  runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	report, err := apiClient.Status(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to check status: %w", err)
	}

	cmd.Printf("Readiness: %s\n\n", readinessColor(report.Readiness).Sprint(report.Readiness))
	checks := []struct {
		label string
		ok    bool
	}{
		{"Documents table", report.Status.TableExists},
		{"Search function", report.Status.FunctionExists},
		{"Completion gateway", report.Status.EdgeFunctionsReady},
		{"API key", report.Status.APIKeyConfigured},
	}
	for _, c := range checks {
		mark := color.New(color.FgRed).Sprint("✗")
		if c.ok {
			mark = color.New(color.FgGreen).Sprint("✓")
		}
		cmd.Printf("  %-20s %s\n", c.label, mark)
	}
	cmd.Printf("\n%s\n", report.Guidance)
	return nil
}

func readinessColor(r domainStatus.Readiness) *color.Color {
	switch r {
	case domainStatus.ReadinessReady:
		return color.New(color.FgGreen, color.Bold)
	case domainStatus.ReadinessPartial:
		return color.New(color.FgYellow, color.Bold)
	default:
		return color.New(color.FgRed, color.Bold)
	}
}

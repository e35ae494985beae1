package cmd

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

// statusPayload is the static readiness payload
type statusPayload struct {
	Status      string    `json:"status"`
	Service     string    `json:"service"`
	Version     string    `json:"version"`
	ReportTypes []string  `json:"report_types"`
	CheckedAt   time.Time `json:"checked_at"`
}

// statusCmd reports service readiness without touching any journal data
var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Print a readiness payload",
	Long:  `Status prints a static readiness payload describing the exporter and the report types it can generate. It performs no journal access.`,

	RunE: func(cmd *cobra.Command, args []string) error {
		payload := statusPayload{
			Status:      "OK",
			Service:     "finance-export-service",
			Version:     version,
			ReportTypes: []string{"default", "audit", "budget", "category", "tag", "double"},
			CheckedAt:   time.Now().UTC(),
		}

		out, err := json.MarshalIndent(payload, "", "  ")
		if err != nil {
			return err
		}

		fmt.Fprintln(cmd.OutOrStdout(), string(out))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

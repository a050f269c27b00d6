// Package main contains the askcli command, a small client for the
// assistant's HTTP API meant for local testing and clinic support staff.
package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

var (
	serverURL string
	clinicID  string
	patientID string
	timeout   time.Duration
)

var rootCmd = &cobra.Command{
	Use:   "askcli",
	Short: "Client for the cataract assistant API",
	Long: `askcli sends questions to a running cataract-assistant server and
prints the structured answer as plain text.

Example usage:
  askcli ask "What is a cataract?"
  askcli ask --patient-id p-123 "When is my next checkup?"
  askcli invalidate --clinic-id c-42`,
	SilenceUsage: true,
}

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Ask the assistant a question",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		question := strings.Join(args, " ")
		payload := map[string]interface{}{
			"question":   question,
			"clinic_id":  clinicID,
			"patient_id": patientID,
		}

		body, err := postJSON("/v1/chat/ask", payload)
		if err != nil {
			return err
		}

		var resp struct {
			PlainText   string   `json:"plain_text"`
			Suggestions []string `json:"suggestions"`
			IsEmergency bool     `json:"is_emergency"`
			RequestID   string   `json:"request_id"`
		}
		if err := json.Unmarshal(body, &resp); err != nil {
			return fmt.Errorf("failed to parse response: %w", err)
		}

		if resp.IsEmergency {
			fmt.Println("!! This may be an emergency. Contact your clinic or emergency services immediately.")
			fmt.Println()
		}
		fmt.Println(resp.PlainText)
		if len(resp.Suggestions) > 0 {
			fmt.Println()
			fmt.Println("You could also ask:")
			for _, s := range resp.Suggestions {
				fmt.Printf("  - %s\n", s)
			}
		}
		return nil
	},
}

var invalidateCmd = &cobra.Command{
	Use:   "invalidate",
	Short: "Drop cached clinic or patient records",
	RunE: func(cmd *cobra.Command, args []string) error {
		if clinicID == "" && patientID == "" {
			return fmt.Errorf("--clinic-id or --patient-id is required")
		}
		_, err := postJSON("/internal/cache/invalidate", map[string]string{
			"clinic_id":  clinicID,
			"patient_id": patientID,
		})
		if err != nil {
			return err
		}
		fmt.Println("ok")
		return nil
	},
}

func postJSON(path string, payload interface{}) ([]byte, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	client := &http.Client{Timeout: timeout}
	resp, err := client.Post(strings.TrimRight(serverURL, "/")+path, "application/json", bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("server returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	return body, nil
}

func init() {
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", "http://localhost:9020", "assistant server base URL")
	rootCmd.PersistentFlags().StringVar(&clinicID, "clinic-id", "", "clinic identifier")
	rootCmd.PersistentFlags().StringVar(&patientID, "patient-id", "", "patient identifier")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 2*time.Minute, "request timeout")

	rootCmd.AddCommand(askCmd)
	rootCmd.AddCommand(invalidateCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

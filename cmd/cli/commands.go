package main

import (
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/spf13/cobra"
)

var dryRun bool

func init() {
	bookCmd.Flags().BoolVar(&dryRun, "dry-run", false, "Log what would happen without persisting")
	resultCmd.Flags().BoolVar(&dryRun, "dry-run", false, "Log what would happen without persisting")
	digestCmd.Flags().BoolVar(&dryRun, "dry-run", false, "Log what would happen without persisting")

	rootCmd.AddCommand(healthCmd)
	rootCmd.AddCommand(slotsCmd)
	rootCmd.AddCommand(datesCmd)
	rootCmd.AddCommand(digestCmd)
	rootCmd.AddCommand(countsCmd)
	rootCmd.AddCommand(bookCmd)
	rootCmd.AddCommand(cancelCmd)
	rootCmd.AddCommand(resultCmd)
	rootCmd.AddCommand(metricsCmd)
}

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check the health of the server",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performGetRequest("/health")
	},
}

var slotsCmd = &cobra.Command{
	Use:   "slots",
	Short: "List the future slots no match has claimed",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performGetRequest("/slots")
	},
}

var datesCmd = &cobra.Command{
	Use:   "dates",
	Short: "List the calendar dates that still have free slots",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performGetRequest("/dates")
	},
}

var digestCmd = &cobra.Command{
	Use:   "digest",
	Short: "Push a free-slot digest to the notification channel",
	RunE: func(cmd *cobra.Command, args []string) error {
		endpoint := "/digest"
		if dryRun {
			endpoint += "?dry_run=true"
		}
		return performPostRequest(endpoint)
	},
}

var countsCmd = &cobra.Command{
	Use:   "counts [playerID]",
	Short: "Show per-player match progress, optionally for one player",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		endpoint := "/counts"
		if len(args) == 1 {
			endpoint += "?playerID=" + url.QueryEscape(args[0])
		}
		return performGetRequest(endpoint)
	},
}

var bookCmd = &cobra.Command{
	Use:   "book <matchID> <slotID>",
	Short: "Book a match into a free slot",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		endpoint := fmt.Sprintf("/matches/book?matchID=%s&slotID=%s",
			url.QueryEscape(args[0]), url.QueryEscape(args[1]))
		if dryRun {
			endpoint += "&dry_run=true"
		}
		return performPostRequest(endpoint)
	},
}

var cancelCmd = &cobra.Command{
	Use:   "cancel <matchID>",
	Short: "Cancel a match's booking, freeing its slot",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return performPostRequest("/matches/cancel?matchID=" + url.QueryEscape(args[0]))
	},
}

var resultCmd = &cobra.Command{
	Use:   "result <matchID> <score1> <score2>",
	Short: "Record a match result",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		endpoint := fmt.Sprintf("/matches/result?matchID=%s&score1=%s&score2=%s",
			url.QueryEscape(args[0]), url.QueryEscape(args[1]), url.QueryEscape(args[2]))
		if dryRun {
			endpoint += "&dry_run=true"
		}
		return performPostRequest(endpoint)
	},
}

var metricsCmd = &cobra.Command{
	Use:   "metrics",
	Short: "Get application metrics",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performGetRequest("/metrics")
	},
}

func performGetRequest(endpoint string) error {
	resp, err := http.Get(host + endpoint)
	if err != nil {
		return fmt.Errorf("failed to make request: %w", err)
	}
	return printResponse(host+endpoint, resp)
}

func performPostRequest(endpoint string) error {
	resp, err := http.Post(host+endpoint, "", nil)
	if err != nil {
		return fmt.Errorf("failed to make request: %w", err)
	}
	return printResponse(host+endpoint, resp)
}

func printResponse(url string, resp *http.Response) error {
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	fmt.Printf("Request: %s\n", url)
	fmt.Printf("Status Code: %d\n", resp.StatusCode)
	fmt.Println("Response Body:")
	fmt.Println(string(body))

	return nil
}

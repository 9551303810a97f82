package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	apiFlag  string
	userFlag string
	rootCmd  = &cobra.Command{
		Use:   "lumoractl",
		Short: "CLI client for the Lumora journal REST API",
	}
)

func main() {
	rootCmd.PersistentFlags().StringVarP(&apiFlag, "api", "a", "http://localhost:8080", "Journal service base URL")
	rootCmd.PersistentFlags().StringVarP(&userFlag, "user", "u", "", "User ID (required)")

	// health subcommand
	healthCmd := &cobra.Command{
		Use:   "health",
		Short: "Check service health",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHealth(apiFlag, os.Stdout)
		},
	}
	rootCmd.AddCommand(healthCmd)

	// journal subcommands
	journalCmd := &cobra.Command{
		Use:   "journal",
		Short: "Journal entry operations",
	}
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List journal entries",
		RunE: func(cmd *cobra.Command, args []string) error {
			if userFlag == "" {
				return fmt.Errorf("--user required")
			}
			return runJournalList(apiFlag, userFlag, os.Stdout)
		},
	}
	createCmd := &cobra.Command{
		Use:   "create",
		Short: "Create a journal entry",
		RunE: func(cmd *cobra.Command, args []string) error {
			title, _ := cmd.Flags().GetString("title")
			content, _ := cmd.Flags().GetString("content")
			if userFlag == "" {
				return fmt.Errorf("--user required")
			}
			return runJournalCreate(apiFlag, userFlag, title, content, os.Stdout)
		},
	}
	createCmd.Flags().StringP("title", "t", "", "Entry title (required)")
	createCmd.Flags().StringP("content", "c", "", "Entry content (required)")
	_ = createCmd.MarkFlagRequired("title")
	_ = createCmd.MarkFlagRequired("content")
	journalCmd.AddCommand(listCmd, createCmd)
	rootCmd.AddCommand(journalCmd)

	// chat subcommand
	chatCmd := &cobra.Command{
		Use:   "chat",
		Short: "Ask a question over your journal memory",
		RunE: func(cmd *cobra.Command, args []string) error {
			message, _ := cmd.Flags().GetString("message")
			session, _ := cmd.Flags().GetString("session")
			entry, _ := cmd.Flags().GetString("entry")
			if userFlag == "" {
				return fmt.Errorf("--user required")
			}
			return runChat(apiFlag, userFlag, session, entry, message, os.Stdout)
		},
	}
	chatCmd.Flags().StringP("message", "m", "", "Message text (required)")
	chatCmd.Flags().StringP("session", "s", "", "Existing session ID (continue conversation)")
	chatCmd.Flags().StringP("entry", "e", "", "Entry ID to pin the conversation to")
	_ = chatCmd.MarkFlagRequired("message")
	rootCmd.AddCommand(chatCmd)

	// user deletion
	deleteUserCmd := &cobra.Command{
		Use:   "delete-user",
		Short: "Delete all data owned by a user",
		RunE: func(cmd *cobra.Command, args []string) error {
			if userFlag == "" {
				return fmt.Errorf("--user required")
			}
			return runDeleteUser(apiFlag, userFlag, os.Stdout)
		},
	}
	rootCmd.AddCommand(deleteUserCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

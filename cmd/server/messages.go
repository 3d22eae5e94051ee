package main

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"shrikavin.dev/internal/config"
	"shrikavin.dev/internal/storage/sqlite"
)

var (
	listLimit      int
	purgeOlderThan time.Duration
)

var messagesCmd = &cobra.Command{
	Use:   "messages",
	Short: "Inspect stored contact messages",
}

var messagesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the most recent contact messages",
	RunE:  runMessagesList,
}

var messagesShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Print one contact message in full",
	Args:  cobra.ExactArgs(1),
	RunE:  runMessagesShow,
}

var messagesPurgeCmd = &cobra.Command{
	Use:   "purge",
	Short: "Delete contact messages older than a duration",
	RunE:  runMessagesPurge,
}

func init() {
	messagesListCmd.Flags().IntVar(&listLimit, "limit", 20, "Number of messages to show")
	messagesPurgeCmd.Flags().DurationVar(&purgeOlderThan, "older-than", 90*24*time.Hour, "Age of the messages to delete")
	messagesCmd.AddCommand(messagesListCmd, messagesShowCmd, messagesPurgeCmd)
	rootCmd.AddCommand(messagesCmd)
}

func openStore(cmd *cobra.Command) (*sqlite.Store, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	store, err := sqlite.Open(cmd.Context(), cfg.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return store, nil
}

func runMessagesList(cmd *cobra.Command, _ []string) error {
	store, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer store.Close()

	msgs, err := store.ListMessages(cmd.Context(), listLimit)
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tCREATED\tFROM\tSUBJECT\tDELIVERED")
	for _, m := range msgs {
		delivered := "no"
		if m.DeliveredAt != nil {
			delivered = m.DeliveredAt.Format(time.RFC3339)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s <%s>\t%s\t%s\n", m.ID, m.CreatedAt.Format(time.RFC3339), m.Name, m.Email, m.Subject, delivered)
	}
	return tw.Flush()
}

func runMessagesShow(cmd *cobra.Command, args []string) error {
	store, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer store.Close()
	return showMessage(cmd.Context(), store, args[0], cmd.OutOrStdout())
}

func showMessage(ctx context.Context, store *sqlite.Store, rawID string, w io.Writer) error {
	id, err := uuid.Parse(rawID)
	if err != nil {
		return fmt.Errorf("invalid message id %q: %w", rawID, err)
	}
	m, err := store.GetMessage(ctx, id)
	if err != nil {
		return err
	}

	delivered := "no"
	if m.DeliveredAt != nil {
		delivered = m.DeliveredAt.Format(time.RFC3339)
	}
	fmt.Fprintf(w, "ID:        %s\n", m.ID)
	fmt.Fprintf(w, "Created:   %s\n", m.CreatedAt.Format(time.RFC3339))
	fmt.Fprintf(w, "From:      %s <%s>\n", m.Name, m.Email)
	fmt.Fprintf(w, "Subject:   %s\n", m.Subject)
	fmt.Fprintf(w, "Delivered: %s\n\n", delivered)
	fmt.Fprintln(w, m.Message)
	return nil
}

func runMessagesPurge(cmd *cobra.Command, _ []string) error {
	if purgeOlderThan <= 0 {
		return fmt.Errorf("--older-than must be positive")
	}
	store, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer store.Close()

	n, err := store.PurgeBefore(cmd.Context(), time.Now().Add(-purgeOlderThan))
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Deleted %d messages\n", n)
	return nil
}

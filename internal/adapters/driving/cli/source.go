package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var sourceAddName string

var sourcesCmd = &cobra.Command{
	Use:   "sources",
	Short: "Manage crawl sources",
	Long: `Manage the websites the assistant ingests. Sources are crawled in
their listed order; only active sources participate in ingestion.

The directory lives in sources.toml inside the data directory and can
also be edited by hand.`,
	RunE: runSourcesList,
}

var sourcesAddCmd = &cobra.Command{
	Use:   "add [url]",
	Short: "Register a new source",
	Long: `Registers a website for ingestion. The scheme defaults to https://
when omitted. New sources start active and crawl after every existing
source.`,
	Args: cobra.ExactArgs(1),
	RunE: runSourcesAdd,
}

var sourcesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List configured sources",
	RunE:  runSourcesList,
}

var sourcesRemoveCmd = &cobra.Command{
	Use:   "remove [source-id]",
	Short: "Delete a source",
	Long: `Deletes a source from the directory. Content already ingested from
it stays in the knowledge base until the next crawl run.`,
	Args: cobra.ExactArgs(1),
	RunE: runSourcesRemove,
}

var sourcesEnableCmd = &cobra.Command{
	Use:   "enable [source-id]",
	Short: "Include a source in ingestion",
	Args:  cobra.ExactArgs(1),
	RunE:  runSourcesEnable,
}

var sourcesDisableCmd = &cobra.Command{
	Use:   "disable [source-id]",
	Short: "Exclude a source from ingestion",
	Long: `Excludes a source from future ingestion runs without deleting its
configuration. Re-enable it with 'sitechat sources enable'.`,
	Args: cobra.ExactArgs(1),
	RunE: runSourcesDisable,
}

func init() {
	sourcesAddCmd.Flags().StringVar(&sourceAddName, "name", "", "display name (defaults to the URL)")

	sourcesCmd.AddCommand(sourcesAddCmd)
	sourcesCmd.AddCommand(sourcesListCmd)
	sourcesCmd.AddCommand(sourcesRemoveCmd)
	sourcesCmd.AddCommand(sourcesEnableCmd)
	sourcesCmd.AddCommand(sourcesDisableCmd)
	rootCmd.AddCommand(sourcesCmd)
}

func runSourcesAdd(cmd *cobra.Command, args []string) error {
	if sourceService == nil {
		return errors.New("source service not configured")
	}

	source, err := sourceService.Add(context.Background(), sourceAddName, args[0])
	if err != nil {
		return fmt.Errorf("failed to add source: %w", err)
	}

	cmd.Printf("Added source: %s\n", source.DisplayName())
	cmd.Printf("  ID:  %s\n", source.ID)
	cmd.Printf("  URL: %s\n", source.URL)
	cmd.Println("Run 'sitechat ingest' to index it.")
	return nil
}

func runSourcesList(cmd *cobra.Command, _ []string) error {
	if sourceService == nil {
		return errors.New("source service not configured")
	}

	sources, err := sourceService.List(context.Background())
	if err != nil {
		return fmt.Errorf("failed to list sources: %w", err)
	}

	if len(sources) == 0 {
		cmd.Println("No configured sources.")
		cmd.Println("Add one with 'sitechat sources add <url>'.")
		return nil
	}

	cmd.Println("Configured sources:")
	cmd.Println()
	for i := range sources {
		src := &sources[i]
		state := "active"
		if !src.Active {
			state = "disabled"
		}
		cmd.Printf("  %d. %s (%s)\n", src.Order+1, src.DisplayName(), state)
		cmd.Printf("     ID:  %s\n", src.ID)
		cmd.Printf("     URL: %s\n", src.URL)
	}
	return nil
}

func runSourcesRemove(cmd *cobra.Command, args []string) error {
	if sourceService == nil {
		return errors.New("source service not configured")
	}

	if err := sourceService.Remove(context.Background(), args[0]); err != nil {
		return fmt.Errorf("failed to remove source: %w", err)
	}

	cmd.Printf("Removed source: %s\n", args[0])
	return nil
}

func runSourcesEnable(cmd *cobra.Command, args []string) error {
	return setSourceActive(cmd, args[0], true)
}

func runSourcesDisable(cmd *cobra.Command, args []string) error {
	return setSourceActive(cmd, args[0], false)
}

func setSourceActive(cmd *cobra.Command, id string, active bool) error {
	if sourceService == nil {
		return errors.New("source service not configured")
	}

	if err := sourceService.SetActive(context.Background(), id, active); err != nil {
		if active {
			return fmt.Errorf("failed to enable source: %w", err)
		}
		return fmt.Errorf("failed to disable source: %w", err)
	}

	if active {
		cmd.Printf("Enabled source: %s\n", id)
	} else {
		cmd.Printf("Disabled source: %s\n", id)
		cmd.Println("Its content leaves the knowledge base on the next ingest run.")
	}
	return nil
}

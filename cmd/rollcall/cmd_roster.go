package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"rollcall/internal/roster"
)

var (
	primaryFile   string
	secondaryFile string
)

// rosterCmd groups roster maintenance commands
var rosterCmd = &cobra.Command{
	Use:   "roster",
	Short: "Show or replace the roster",
}

var rosterShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print both roster groups",
	RunE:  rosterShow,
}

var rosterReplaceCmd = &cobra.Command{
	Use:   "replace",
	Short: "Replace the roster from one-name-per-line files",
	Long: `Replaces the roster. Each file holds one name per line; blank lines are
dropped, duplicates keep their first position, and any name in the primary
group is removed from the secondary group.

Use "-" to read one of the groups from stdin. A group whose flag is omitted
keeps its current members.

Example:
  rollcall roster replace --primary class.txt --secondary extra.txt`,
	RunE: rosterReplace,
}

func init() {
	rosterReplaceCmd.Flags().StringVarP(&primaryFile, "primary", "p", "", "File with primary group names")
	rosterReplaceCmd.Flags().StringVarP(&secondaryFile, "secondary", "s", "", "File with secondary group names")
}

func rosterShow(cmd *cobra.Command, args []string) error {
	store := roster.Open(cfg.Roster.Path)
	r := store.Current()
	primary, secondary, total := r.Counts()

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Roster: %s\n", store.Path())
	fmt.Fprintf(out, "Primary: %d  Secondary: %d  Total: %d\n", primary, secondary, total)
	printList(out, "Primary", r.Primary)
	printList(out, "Secondary", r.Secondary)
	return nil
}

func rosterReplace(cmd *cobra.Command, args []string) error {
	if primaryFile == "" && secondaryFile == "" {
		return fmt.Errorf("at least one of --primary or --secondary is required")
	}
	if primaryFile == "-" && secondaryFile == "-" {
		return fmt.Errorf("only one group can be read from stdin")
	}

	store := roster.Open(cfg.Roster.Path)
	current := store.Current()

	primary := current.Primary
	if primaryFile != "" {
		block, err := readInput(cmd, primaryFile)
		if err != nil {
			return err
		}
		primary = roster.SplitLines(block)
	}
	secondary := current.Secondary
	if secondaryFile != "" {
		block, err := readInput(cmd, secondaryFile)
		if err != nil {
			return err
		}
		secondary = roster.SplitLines(block)
	}

	r, err := store.Replace(primary, secondary)
	if err != nil {
		return fmt.Errorf("failed to save roster: %w", err)
	}
	p, s, total := r.Counts()
	if r.Equal(current) {
		fmt.Fprintf(cmd.OutOrStdout(), "Roster unchanged: %d primary, %d secondary, %d total\n", p, s, total)
		return nil
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Roster saved: %d primary, %d secondary, %d total\n", p, s, total)
	return nil
}

// readInput reads a file, or stdin for "-".
func readInput(cmd *cobra.Command, path string) (string, error) {
	if path == "-" {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return "", fmt.Errorf("failed to read stdin: %w", err)
		}
		return string(data), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", path, err)
	}
	return string(data), nil
}

// ABOUTME: List and show commands for reading notes.
// ABOUTME: Show renders markdown content with glamour.

package main

import (
	"encoding/json"
	"fmt"

	"github.com/harper/notes/internal/ui"
	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List notes",
	Long:    `Fetch and list all notes in server order.`,
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		asJSON, _ := cmd.Flags().GetBool("json")

		if err := loadNotes(cmd.Context()); err != nil {
			return err
		}
		notes := syncer.Notes()

		if asJSON {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(notes)
		}

		fmt.Fprint(cmd.OutOrStdout(), ui.FormatNoteList(notes))
		return nil
	},
}

var showCmd = &cobra.Command{
	Use:   "show <id-prefix>",
	Short: "Show a note",
	Long:  `Display a note's full content with rendered markdown.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		raw, _ := cmd.Flags().GetBool("raw")

		if err := loadNotes(cmd.Context()); err != nil {
			return err
		}
		note, err := syncer.Find(args[0])
		if err != nil {
			return fmt.Errorf("failed to get note: %w", err)
		}

		out := cmd.OutOrStdout()
		fmt.Fprint(out, ui.FormatNoteHeader(note))
		if raw {
			fmt.Fprintln(out, note.Content)
			return nil
		}
		content, _ := ui.FormatNoteContent(note.Content)
		fmt.Fprint(out, content)
		return nil
	},
}

func init() {
	listCmd.Flags().Bool("json", false, "print notes as JSON")
	showCmd.Flags().Bool("raw", false, "print content without markdown rendering")
	rootCmd.AddCommand(listCmd, showCmd)
}

// ABOUTME: Edit command for modifying existing notes.
// ABOUTME: Opens the note in $EDITOR; a failed save keeps the draft and offers a retry.

package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/harper/notes/internal/models"
	"github.com/harper/notes/internal/ui"
	"github.com/spf13/cobra"
)

var editCmd = &cobra.Command{
	Use:   "edit <id-prefix>",
	Short: "Edit a note",
	Long: `Open a note in $EDITOR for editing. Use --title and --content to change
fields without an editor.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		if err := loadNotes(ctx); err != nil {
			return err
		}

		draft, err := syncer.BeginEdit(args[0])
		if err != nil {
			return fmt.Errorf("failed to get note: %w", err)
		}

		title := draft.Title
		content := draft.Content
		if cmd.Flags().Changed("title") {
			title, _ = cmd.Flags().GetString("title")
		}
		if cmd.Flags().Changed("content") {
			content, _ = cmd.Flags().GetString("content")
		}
		if !cmd.Flags().Changed("title") && !cmd.Flags().Changed("content") {
			content, err = openEditor(draft.Content)
			if err != nil {
				syncer.CancelEdit()
				return fmt.Errorf("failed to open editor: %w", err)
			}
		}

		if title == draft.Title && content == draft.Content {
			syncer.CancelEdit()
			fmt.Fprintln(cmd.OutOrStdout(), "No changes made.")
			return nil
		}

		if err := syncer.SetDraft(title, content); err != nil {
			return err
		}

		reader := bufio.NewReader(cmd.InOrStdin())
		for {
			note, err := syncer.SaveDraft(ctx)
			if err == nil {
				fmt.Fprintln(cmd.OutOrStdout(), ui.Success(fmt.Sprintf("Updated note %s", note.ShortID())))
				return nil
			}
			if errors.Is(err, models.ErrValidation) || !sessMgr.IsAuthenticated() || !confirm(cmd.ErrOrStderr(), reader, ui.Error(failure(err).Error())+" Retry?") {
				syncer.CancelEdit()
				return failure(err)
			}
		}
	},
}

// confirm asks a yes/no question; anything but y/yes is no.
func confirm(out io.Writer, reader *bufio.Reader, question string) bool {
	fmt.Fprintf(out, "%s [y/N] ", question)
	response, _ := reader.ReadString('\n')
	response = strings.TrimSpace(strings.ToLower(response))
	return response == "y" || response == "yes"
}

func init() {
	editCmd.Flags().String("title", "", "new title")
	editCmd.Flags().String("content", "", "new content")
	rootCmd.AddCommand(editCmd)
}

// ABOUTME: MCP prompts for common note workflows.
// ABOUTME: Each prompt steers the agent toward the note tools.

package mcp

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

func (s *Server) registerPrompts() {
	s.server.AddPrompt(&mcp.Prompt{
		Name:        "summarize-note",
		Description: "Summarize an existing note",
		Arguments: []*mcp.PromptArgument{
			{
				Name:        "note_id",
				Description: "ID or ID prefix of the note to summarize",
				Required:    true,
			},
		},
	}, s.getSummarizeNotePrompt)

	s.server.AddPrompt(&mcp.Prompt{
		Name:        "capture-note",
		Description: "Turn free-form text into a titled note",
		Arguments: []*mcp.PromptArgument{
			{
				Name:        "text",
				Description: "Raw text to capture",
				Required:    true,
			},
		},
	}, s.getCaptureNotePrompt)
}

func userPrompt(text string) *mcp.GetPromptResult {
	return &mcp.GetPromptResult{
		Messages: []*mcp.PromptMessage{
			{
				Role:    "user",
				Content: &mcp.TextContent{Text: text},
			},
		},
	}
}

func (s *Server) getSummarizeNotePrompt(ctx context.Context, req *mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	noteID := req.Params.Arguments["note_id"]
	if noteID == "" {
		return nil, fmt.Errorf("note_id argument is required")
	}

	return userPrompt(fmt.Sprintf(`Summarize the note with ID %s.

1. Use the get_note tool to read it.
2. Write a short summary of its main points and any action items.
3. If asked, use update_note to put the summary at the top of the content.`, noteID)), nil
}

func (s *Server) getCaptureNotePrompt(ctx context.Context, req *mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	text := req.Params.Arguments["text"]
	if text == "" {
		return nil, fmt.Errorf("text argument is required")
	}

	return userPrompt(fmt.Sprintf(`Capture the following as a note.

Pick a concise title (under 60 characters) and keep the content faithful to the text.
Both title and content must be non-empty. Then call the create_note tool.

Text:
%s`, text)), nil
}

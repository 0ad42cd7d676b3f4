// Package mcpserver provides an MCP (Model Context Protocol) server that
// exposes keepnote note tools for LLM integration via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/keepnote/internal/noteservice"
)

// Server wraps the MCP server with keepnote tools.
type Server struct {
	mcp   *server.MCPServer
	notes *noteservice.Service
}

// New creates a new MCP server with all note tools registered.
func New(notes *noteservice.Service) *Server {
	s := &Server{notes: notes}

	s.mcp = server.NewMCPServer(
		"keepnote",
		"1.0.0",
		server.WithToolCapabilities(false),
	)

	s.mcp.AddTool(mcp.NewTool("list_notes",
		mcp.WithDescription("List every note in a user's notebook."),
		mcp.WithString("user_id", mcp.Required(), mcp.Description("Owner of the notebook")),
	), s.listNotes)

	s.mcp.AddTool(mcp.NewTool("read_note",
		mcp.WithDescription("Read a single note by its id within a user's notebook."),
		mcp.WithString("user_id", mcp.Required(), mcp.Description("Owner of the notebook")),
		mcp.WithNumber("note_id", mcp.Required(), mcp.Description("Note id within the notebook")),
	), s.readNote)

	s.mcp.AddTool(mcp.NewTool("create_note",
		mcp.WithDescription("Create a note in a user's notebook. The note id is assigned by the service."),
		mcp.WithString("user_id", mcp.Required(), mcp.Description("Owner of the notebook")),
		mcp.WithString("title", mcp.Required(), mcp.Description("Note title")),
		mcp.WithString("description", mcp.Description("Note body")),
		mcp.WithString("category", mcp.Description("Category name")),
		mcp.WithString("priority", mcp.Description("HIGH, MEDIUM or LOW")),
	), s.createNote)

	s.mcp.AddTool(mcp.NewTool("delete_note",
		mcp.WithDescription("Delete a note from a user's notebook."),
		mcp.WithString("user_id", mcp.Required(), mcp.Description("Owner of the notebook")),
		mcp.WithNumber("note_id", mcp.Required(), mcp.Description("Note id within the notebook")),
	), s.deleteNote)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

func (s *Server) listNotes(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	userID, err := req.RequireString("user_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	notes, err := s.notes.GetAllNotes(ctx, userID)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("list notes for %s: %v", userID, err)), nil
	}
	out, _ := json.MarshalIndent(notes, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) readNote(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	userID, err := req.RequireString("user_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	noteID, err := req.RequireInt("note_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	note, err := s.notes.GetNote(ctx, userID, noteID)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("note %d of %s: %v", noteID, userID, err)), nil
	}
	out, _ := json.MarshalIndent(note, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) createNote(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	userID, err := req.RequireString("user_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	title, err := req.RequireString("title")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	note, err := s.notes.CreateNote(ctx, userID, noteservice.NoteInput{
		Title:       title,
		Description: req.GetString("description", ""),
		Category:    req.GetString("category", ""),
		Priority:    req.GetString("priority", ""),
	})
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("create note for %s: %v", userID, err)), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("created note %d", note.NoteID)), nil
}

func (s *Server) deleteNote(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	userID, err := req.RequireString("user_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	noteID, err := req.RequireInt("note_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if _, err := s.notes.DeleteNote(ctx, userID, noteID); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("delete note %d of %s: %v", noteID, userID, err)), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("deleted note %d", noteID)), nil
}

package mcpapi

import (
	"context"
	"strings"

	"github.com/hylla/tavla/internal/adapters/server/common"
	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
)

// actorArg is shared by every mutating tool.
var actorArg = mcp.WithString("actor_id", mcp.Description("Optional caller identity recorded on the activity log"))

// registerBoardReadTools registers board snapshot and activity log tools.
func registerBoardReadTools(srv *mcpserver.MCPServer, board common.BoardService) {
	srv.AddTool(
		mcp.NewTool(
			"tavla.get_board",
			mcp.WithDescription("Return the board with columns, tasks, per-column progress, and drag state."),
		),
		func(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			out, err := board.GetBoard(ctx)
			if err != nil {
				return toolResultFromError(err), nil
			}
			return jsonResult("get_board", out)
		},
	)

	srv.AddTool(
		mcp.NewTool(
			"tavla.list_changes",
			mcp.WithDescription("List recent board changes, newest first."),
			mcp.WithNumber("limit", mcp.Description("Maximum rows to return (default 50, max 500)")),
		),
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			rows, err := board.ListChanges(ctx, req.GetInt("limit", 0))
			if err != nil {
				return toolResultFromError(err), nil
			}
			return jsonResult("list_changes", map[string]any{"changes": rows})
		},
	)
}

// registerTaskTools registers task create/edit/delete/move tools.
func registerTaskTools(srv *mcpserver.MCPServer, board common.BoardService) {
	srv.AddTool(
		mcp.NewTool(
			"tavla.add_task",
			mcp.WithDescription("Create one task in the task column."),
			mcp.WithString("text", mcp.Required(), mcp.Description("Task text")),
			actorArg,
		),
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			text, err := req.RequireString("text")
			if err != nil {
				return invalidRequestToolResult(err), nil
			}
			task, err := board.AddTask(withActor(ctx, req), common.AddTaskRequest{Text: text})
			if err != nil {
				return toolResultFromError(err), nil
			}
			return jsonResult("add_task", task)
		},
	)

	srv.AddTool(
		mcp.NewTool(
			"tavla.edit_task",
			mcp.WithDescription("Edit one task's text. Omitting text cancels the edit and leaves the task unchanged."),
			mcp.WithString("task_id", mcp.Required(), mcp.Description("Task identifier")),
			mcp.WithString("text", mcp.Description("Replacement text")),
			actorArg,
		),
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			var args struct {
				TaskID string  `json:"task_id"`
				Text   *string `json:"text"`
			}
			if err := req.BindArguments(&args); err != nil {
				return invalidRequestToolResult(err), nil
			}
			if strings.TrimSpace(args.TaskID) == "" {
				return mcp.NewToolResultError(`invalid_request: required argument "task_id" not found`), nil
			}
			task, err := board.EditTask(withActor(ctx, req), common.EditTaskRequest{
				TaskID: args.TaskID,
				Text:   args.Text,
			})
			if err != nil {
				return toolResultFromError(err), nil
			}
			return jsonResult("edit_task", task)
		},
	)

	srv.AddTool(
		mcp.NewTool(
			"tavla.delete_task",
			mcp.WithDescription("Delete one task."),
			mcp.WithString("task_id", mcp.Required(), mcp.Description("Task identifier")),
			actorArg,
		),
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			taskID, err := req.RequireString("task_id")
			if err != nil {
				return invalidRequestToolResult(err), nil
			}
			if err := board.DeleteTask(withActor(ctx, req), taskID); err != nil {
				return toolResultFromError(err), nil
			}
			return jsonResult("delete_task", map[string]any{"deleted": taskID})
		},
	)

	srv.AddTool(
		mcp.NewTool(
			"tavla.move_task",
			mcp.WithDescription("Move one task to the end of a column."),
			mcp.WithString("task_id", mcp.Required(), mcp.Description("Task identifier")),
			mcp.WithString("column_id", mcp.Required(), mcp.Description("Destination column identifier")),
			actorArg,
		),
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			taskID, err := req.RequireString("task_id")
			if err != nil {
				return invalidRequestToolResult(err), nil
			}
			columnID, err := req.RequireString("column_id")
			if err != nil {
				return invalidRequestToolResult(err), nil
			}
			task, err := board.MoveTask(withActor(ctx, req), common.MoveTaskRequest{
				TaskID:   taskID,
				ColumnID: columnID,
			})
			if err != nil {
				return toolResultFromError(err), nil
			}
			return jsonResult("move_task", task)
		},
	)
}

// registerColumnTools registers column create/delete tools.
func registerColumnTools(srv *mcpserver.MCPServer, board common.BoardService) {
	srv.AddTool(
		mcp.NewTool(
			"tavla.add_column",
			mcp.WithDescription("Append one column to the board."),
			mcp.WithString("name", mcp.Required(), mcp.Description("Column name")),
			actorArg,
		),
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			name, err := req.RequireString("name")
			if err != nil {
				return invalidRequestToolResult(err), nil
			}
			column, err := board.AddColumn(withActor(ctx, req), common.AddColumnRequest{Name: name})
			if err != nil {
				return toolResultFromError(err), nil
			}
			return jsonResult("add_column", column)
		},
	)

	srv.AddTool(
		mcp.NewTool(
			"tavla.delete_column",
			mcp.WithDescription("Delete one column and every task in it."),
			mcp.WithString("column_id", mcp.Required(), mcp.Description("Column identifier")),
			actorArg,
		),
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			columnID, err := req.RequireString("column_id")
			if err != nil {
				return invalidRequestToolResult(err), nil
			}
			if err := board.DeleteColumn(withActor(ctx, req), columnID); err != nil {
				return toolResultFromError(err), nil
			}
			return jsonResult("delete_column", map[string]any{"deleted": columnID})
		},
	)
}

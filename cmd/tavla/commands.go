package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/hylla/tavla/internal/adapters/server"
	"github.com/hylla/tavla/internal/adapters/server/common"
	"github.com/hylla/tavla/internal/app"
	"github.com/hylla/tavla/internal/platform"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// blobFormat names an export/import encoding.
type blobFormat string

const (
	formatJSON blobFormat = "json"
	formatYAML blobFormat = "yaml"
)

// parseBlobFormat resolves an explicit --format value, falling back to the file extension and then JSON.
func parseBlobFormat(raw, path string) (blobFormat, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "json":
		return formatJSON, nil
	case "yaml", "yml":
		return formatYAML, nil
	case "":
		switch strings.ToLower(filepath.Ext(path)) {
		case ".yaml", ".yml":
			return formatYAML, nil
		}
		return formatJSON, nil
	default:
		return "", fmt.Errorf("unsupported format %q (want json or yaml)", raw)
	}
}

func newServeCommand(opts *rootOptions) *cobra.Command {
	var bind, apiEndpoint, mcpEndpoint string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the board over HTTP (REST and MCP)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return withRuntime(ctx, opts, "serve", func(ctx context.Context, rt *appRuntime) error {
				cfg := server.Config{
					HTTPBind:      firstNonEmpty(bind, rt.cfg.Server.Bind),
					APIEndpoint:   firstNonEmpty(apiEndpoint, rt.cfg.Server.APIEndpoint),
					MCPEndpoint:   firstNonEmpty(mcpEndpoint, rt.cfg.Server.MCPEndpoint),
					ServerName:    platform.DefaultAppName,
					ServerVersion: version,
				}
				return server.Run(ctx, cfg, server.Dependencies{
					Board:  common.NewAppServiceAdapter(rt.svc),
					Ready:  rt.store.Ping,
					Logger: rt.logger,
				})
			})
		},
	}
	cmd.Flags().StringVar(&bind, "bind", "", "listen address (default from server.bind)")
	cmd.Flags().StringVar(&apiEndpoint, "api-endpoint", "", "REST base path (default from server.api_endpoint)")
	cmd.Flags().StringVar(&mcpEndpoint, "mcp-endpoint", "", "MCP path (default from server.mcp_endpoint)")
	return cmd
}

func newPathsCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "paths",
		Short: "Print resolved config, data and database paths",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			paths, err := platform.DefaultPathsWithOptions(platform.Options{AppName: opts.appName, DevMode: opts.devMode})
			if err != nil {
				return err
			}
			out := opts.stdout
			_, _ = fmt.Fprintf(out, "app: %s\n", opts.appName)
			_, _ = fmt.Fprintf(out, "dev_mode: %t\n", opts.devMode)
			_, _ = fmt.Fprintf(out, "config: %s\n", paths.ConfigPath)
			_, _ = fmt.Fprintf(out, "data_dir: %s\n", paths.DataDir)
			_, _ = fmt.Fprintf(out, "db: %s\n", paths.DBPath)
			_, _ = fmt.Fprintf(out, "log_dir: %s\n", paths.LogDir)
			return nil
		},
	}
}

func newShowCommand(opts *rootOptions) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print the board with per-column progress",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withRuntime(cmd.Context(), opts, "show", func(ctx context.Context, rt *appRuntime) error {
				if asJSON {
					payload, err := common.NewAppServiceAdapter(rt.svc).GetBoard(ctx)
					if err != nil {
						return err
					}
					enc := json.NewEncoder(opts.stdout)
					enc.SetIndent("", "  ")
					return enc.Encode(payload)
				}
				view, err := rt.svc.Board(ctx)
				if err != nil {
					return err
				}
				writeBoard(opts.stdout, view)
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the board as JSON")
	return cmd
}

// writeBoard prints one block per column: a header with counts, then the tasks in order.
func writeBoard(out io.Writer, view app.BoardView) {
	for i, column := range view.Columns {
		if i > 0 {
			_, _ = fmt.Fprintln(out)
		}
		_, _ = fmt.Fprintf(out, "%s [%s] %d/%d %.0f%%\n", column.Name, column.ID, column.Progress.Tasks, column.Progress.Total, column.Progress.Percent)
		if len(column.Tasks) == 0 {
			_, _ = fmt.Fprintln(out, "  (empty)")
			continue
		}
		for _, task := range column.Tasks {
			_, _ = fmt.Fprintf(out, "  %s  %s\n", task.ID, task.Text)
		}
	}
}

func newExportCommand(opts *rootOptions) *cobra.Command {
	var outPath, format string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the persisted board document",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			resolved, err := parseBlobFormat(format, outPath)
			if err != nil {
				return err
			}
			return withRuntime(cmd.Context(), opts, "export", func(ctx context.Context, rt *appRuntime) error {
				raw, err := rt.svc.ExportBlob(ctx)
				if err != nil {
					return fmt.Errorf("export board: %w", err)
				}
				encoded, err := encodeExport(raw, resolved)
				if err != nil {
					return err
				}
				if outPath == "" || outPath == "-" {
					_, err := opts.stdout.Write(encoded)
					return err
				}
				if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
					return fmt.Errorf("create export output dir: %w", err)
				}
				if err := os.WriteFile(outPath, encoded, 0o644); err != nil {
					return fmt.Errorf("write export file: %w", err)
				}
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&outPath, "out", "-", "output file path ('-' for stdout)")
	cmd.Flags().StringVar(&format, "format", "", "json or yaml (default from --out extension, else json)")
	return cmd
}

// encodeExport renders the stored JSON blob in the requested format.
func encodeExport(raw []byte, format blobFormat) ([]byte, error) {
	if format == formatYAML {
		blob, err := app.DecodeBlob(raw)
		if err != nil {
			return nil, err
		}
		encoded, err := yaml.Marshal(blob)
		if err != nil {
			return nil, fmt.Errorf("encode board yaml: %w", err)
		}
		return encoded, nil
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, raw, "", "  "); err != nil {
		return nil, fmt.Errorf("encode board json: %w", err)
	}
	buf.WriteByte('\n')
	return buf.Bytes(), nil
}

func newImportCommand(opts *rootOptions) *cobra.Command {
	var inPath, format string
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Replace the board with a board document",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			resolved, err := parseBlobFormat(format, inPath)
			if err != nil {
				return err
			}
			content, err := os.ReadFile(inPath)
			if err != nil {
				return fmt.Errorf("read import file: %w", err)
			}
			data, err := decodeImport(content, resolved)
			if err != nil {
				return err
			}
			return withRuntime(cmd.Context(), opts, "import", func(ctx context.Context, rt *appRuntime) error {
				if err := rt.svc.ImportBlob(ctx, data); err != nil {
					return fmt.Errorf("import board: %w", err)
				}
				view, err := rt.svc.Board(ctx)
				if err != nil {
					return err
				}
				_, _ = fmt.Fprintf(opts.stdout, "imported %d columns, %d tasks\n", len(view.Columns), view.TotalTasks)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&inPath, "in", "", "input board document")
	cmd.Flags().StringVar(&format, "format", "", "json or yaml (default from --in extension, else json)")
	_ = cmd.MarkFlagRequired("in")
	return cmd
}

// decodeImport converts an input document into the stored JSON blob.
func decodeImport(content []byte, format blobFormat) ([]byte, error) {
	if format != formatYAML {
		return content, nil
	}
	var blob app.BoardBlob
	if err := yaml.Unmarshal(content, &blob); err != nil {
		return nil, fmt.Errorf("decode board yaml: %w", err)
	}
	data, err := json.Marshal(blob)
	if err != nil {
		return nil, fmt.Errorf("encode board json: %w", err)
	}
	return data, nil
}

func newTaskCommand(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "task",
		Short: "Add, edit, remove or move tasks",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "add <text>",
			Short: "Add a task to the first column",
			Args:  cobra.MinimumNArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return withRuntime(cmd.Context(), opts, "task add", func(ctx context.Context, rt *appRuntime) error {
					task, err := rt.svc.AddTask(ctx, strings.Join(args, " "))
					if err != nil {
						return err
					}
					_, _ = fmt.Fprintf(opts.stdout, "added %s\n", task.ID)
					return nil
				})
			},
		},
		&cobra.Command{
			Use:   "edit <task-id> <text>",
			Short: "Replace a task's text",
			Args:  cobra.MinimumNArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				return withRuntime(cmd.Context(), opts, "task edit", func(ctx context.Context, rt *appRuntime) error {
					text := strings.Join(args[1:], " ")
					task, err := rt.svc.EditTask(ctx, args[0], &text)
					if err != nil {
						return err
					}
					_, _ = fmt.Fprintf(opts.stdout, "updated %s\n", task.ID)
					return nil
				})
			},
		},
		&cobra.Command{
			Use:     "rm <task-id>",
			Aliases: []string{"delete"},
			Short:   "Delete a task",
			Args:    cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return withRuntime(cmd.Context(), opts, "task rm", func(ctx context.Context, rt *appRuntime) error {
					if err := rt.svc.DeleteTask(ctx, args[0]); err != nil {
						return err
					}
					_, _ = fmt.Fprintf(opts.stdout, "deleted %s\n", args[0])
					return nil
				})
			},
		},
		&cobra.Command{
			Use:   "mv <task-id> <column-id>",
			Short: "Move a task to the end of a column",
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				return withRuntime(cmd.Context(), opts, "task mv", func(ctx context.Context, rt *appRuntime) error {
					if err := rt.svc.MoveTask(ctx, args[0], args[1]); err != nil {
						return err
					}
					_, _ = fmt.Fprintf(opts.stdout, "moved %s to %s\n", args[0], args[1])
					return nil
				})
			},
		},
	)
	return cmd
}

func newColumnCommand(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "column",
		Short: "Add or remove columns",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "add <name>",
			Short: "Append a column",
			Args:  cobra.MinimumNArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return withRuntime(cmd.Context(), opts, "column add", func(ctx context.Context, rt *appRuntime) error {
					column, err := rt.svc.AddColumn(ctx, strings.Join(args, " "))
					if err != nil {
						return err
					}
					_, _ = fmt.Fprintf(opts.stdout, "added %s\n", column.ID)
					return nil
				})
			},
		},
		&cobra.Command{
			Use:     "rm <column-id>",
			Aliases: []string{"delete"},
			Short:   "Delete a column and its tasks",
			Args:    cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return withRuntime(cmd.Context(), opts, "column rm", func(ctx context.Context, rt *appRuntime) error {
					if err := rt.svc.DeleteColumn(ctx, args[0]); err != nil {
						return err
					}
					_, _ = fmt.Fprintf(opts.stdout, "deleted %s\n", args[0])
					return nil
				})
			},
		},
	)
	return cmd
}

func newLogCommand(opts *rootOptions) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "log",
		Short: "Print recent board activity, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withRuntime(cmd.Context(), opts, "log", func(ctx context.Context, rt *appRuntime) error {
				events, err := rt.svc.ListChanges(ctx, limit)
				if err != nil {
					return err
				}
				for _, event := range events {
					line := fmt.Sprintf("%s  %-6s %-6s %s", event.OccurredAt.Local().Format(time.DateTime), event.Operation, event.TargetKind, event.TargetID)
					if surface := event.Metadata["surface"]; surface != "" {
						line += "  via " + surface
					}
					if actor := event.Metadata["actor_id"]; actor != "" {
						line += " by " + actor
					}
					_, _ = fmt.Fprintln(opts.stdout, line)
				}
				return nil
			})
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "maximum events to print")
	return cmd
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}

package cmd

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"

	"github.com/agentic-research/flowmend/internal/config"
	"github.com/agentic-research/flowmend/internal/ingest"
	"github.com/agentic-research/flowmend/internal/report"
)

const serverVersion = "0.1.0"

func newMCPCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Serve verification and the import compatibility check as MCP tools over stdio",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := a.setup(cmd, nil)
			if err != nil {
				return err
			}
			logger.Info("serving MCP over stdio", "dir", cfg.Dir)
			return server.ServeStdio(newMCPServer(cfg, logger))
		},
	}
}

func newMCPServer(cfg *config.Config, logger *log.Logger) *server.MCPServer {
	s := server.NewMCPServer("flowmend", serverVersion, server.WithToolCapabilities(false))

	s.AddTool(mcp.NewTool("verify_workflows",
		mcp.WithDescription("Verify the workflow records in a directory without modifying them. Reports counts and the reasons each invalid record failed."),
		mcp.WithString("dir", mcp.Description("Workflows directory (defaults to the configured one)")),
		mcp.WithNumber("sample", mcp.Description(fmt.Sprintf("Check a random sample of N files, at most %d (0 = all)", ingest.MaxSample))),
		mcp.WithReadOnlyHintAnnotation(true),
	), verifyTool(cfg, logger))

	s.AddTool(mcp.NewTool("check_workflow",
		mcp.WithDescription("Run the import compatibility check on one workflow record and return pass/fail with the first violation."),
		mcp.WithString("file", mcp.Required(), mcp.Description("Record file name, relative to dir")),
		mcp.WithString("dir", mcp.Description("Workflows directory (defaults to the configured one)")),
		mcp.WithReadOnlyHintAnnotation(true),
	), checkTool(cfg))

	return s
}

func verifyTool(cfg *config.Config, logger *log.Logger) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		local := *cfg
		local.Dir = dirArg(req, cfg)
		local.VerifySample = req.GetInt("sample", 0)
		if local.VerifySample < 0 {
			return mcp.NewToolResultError("sample must be >= 0"), nil
		}

		fsys, err := ingest.Open(local.Dir)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		ver, err := verifyDir(ctx, fsys, &local, logger)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		var buf bytes.Buffer
		report.NewPrinter(&buf).Verification(ver)
		return mcp.NewToolResultStructured(ver, buf.String()), nil
	}
}

func checkTool(cfg *config.Config) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		file, err := req.RequireString("file")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		if filepath.IsAbs(file) || !filepath.IsLocal(file) {
			return mcp.NewToolResultError(fmt.Sprintf("file must be relative to the workflows directory: %s", file)), nil
		}
		fsys, err := ingest.Open(dirArg(req, cfg))
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		results, err := ingest.Check(ctx, fsys, cfg.Pattern, []string{file})
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		var buf bytes.Buffer
		report.NewPrinter(&buf).Checks(report.FoldChecks(results))
		return mcp.NewToolResultText(buf.String()), nil
	}
}

func dirArg(req mcp.CallToolRequest, cfg *config.Config) string {
	if dir := req.GetString("dir", ""); dir != "" {
		return dir
	}
	return cfg.Dir
}

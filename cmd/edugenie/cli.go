package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"edugenie/internal/adapter/completion"
	"edugenie/internal/config"
	"edugenie/internal/domain"
	"edugenie/internal/dto"
	"edugenie/internal/parser"
	"edugenie/internal/segmenter"
	"edugenie/internal/service"

	"github.com/spf13/cobra"
)

// CLI runs the analysis pipeline locally, without the HTTP server.
type CLI struct {
	cfg *config.Config
	in  io.Reader
	out io.Writer
	// newCompleter builds the oracle client for the analyze command
	newCompleter func(config.LLMConfig) (domain.Completer, error)
}

// NewCLI creates a new CLI instance
func NewCLI(cfg *config.Config, in io.Reader, out io.Writer) *CLI {
	return &CLI{
		cfg: cfg,
		in:  in,
		out: out,
		newCompleter: func(c config.LLMConfig) (domain.Completer, error) {
			return completion.New(c)
		},
	}
}

// GetRootCommand returns the root cobra command
func (cli *CLI) GetRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "edugenie",
		Short: "Analyze study documents from the command line",
		Long: `edugenie turns document text into a summary, a quiz, flashcards, keywords or an explanation.

Long documents are split into segments that are analyzed one by one and merged.`,
		SilenceUsage: true,
	}

	rootCmd.AddCommand(cli.getAnalyzeCommand())
	rootCmd.AddCommand(cli.getSegmentCommand())
	rootCmd.AddCommand(cli.getParseCommand())
	return rootCmd
}

func (cli *CLI) getAnalyzeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Run an analysis task against the configured model",
		Args:  cobra.NoArgs,
		RunE:  cli.analyze,
	}
	cmd.Flags().StringP("type", "t", "summary", "Task type (summary, quiz, flashcards, keywords, explanation)")
	cmd.Flags().StringP("file", "f", "", "Input file (default: stdin)")
	cmd.Flags().Int("size-hint", 0, "Override the per-segment character limit")
	return cmd
}

func (cli *CLI) getSegmentCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "segment",
		Short: "Show how a document would be segmented",
		Args:  cobra.NoArgs,
		RunE:  cli.segment,
	}
	cmd.Flags().StringP("file", "f", "", "Input file (default: stdin)")
	cmd.Flags().Int("size-hint", 0, "Override the per-segment character limit")
	return cmd
}

func (cli *CLI) getParseCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "parse",
		Short: "Parse generated quiz or flashcard text into records",
		Args:  cobra.NoArgs,
		RunE:  cli.parse,
	}
	cmd.Flags().StringP("type", "t", "quiz", "Record type (quiz, flashcards)")
	cmd.Flags().StringP("file", "f", "", "Input file (default: stdin)")
	return cmd
}

func (cli *CLI) analyze(cmd *cobra.Command, args []string) error {
	taskType, _ := cmd.Flags().GetString("type")
	sizeHint, _ := cmd.Flags().GetInt("size-hint")
	content, err := cli.readInput(cmd)
	if err != nil {
		return err
	}

	completer, err := cli.newCompleter(cli.cfg.LLM)
	if err != nil {
		return err
	}

	orchestrator := service.NewOrchestrator(completer, cli.cfg.Analysis)
	analysis := service.NewAnalysisService(orchestrator, nil, nil, 0, cli.cfg.Analysis.MinLegacyQuizBlockLen)

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	resp, err := analysis.Analyze(ctx, &dto.AnalyzeRequest{Content: content, Type: taskType, SizeHint: sizeHint})
	if err != nil {
		return err
	}
	return cli.printJSON(resp)
}

type segmentReport struct {
	Chars          int    `json:"chars"`
	EstimatedPages int    `json:"estimated_pages"`
	SinglePass     bool   `json:"single_pass"`
	SegmentLimit   int    `json:"segment_limit,omitempty"`
	Ceiling        int    `json:"ceiling,omitempty"`
	Segments       []int  `json:"segment_sizes,omitempty"`
	Warning        string `json:"warning,omitempty"`
}

func (cli *CLI) segment(cmd *cobra.Command, args []string) error {
	sizeHint, _ := cmd.Flags().GetInt("size-hint")
	content, err := cli.readInput(cmd)
	if err != nil {
		return err
	}

	seg := segmenter.New(segmenter.OptionsFromConfig(cli.cfg.Analysis))
	chars := len([]rune(content))
	report := segmentReport{
		Chars:          chars,
		EstimatedPages: seg.EstimatePages(content),
		SinglePass:     chars <= cli.cfg.Analysis.SinglePassThreshold,
	}
	if !report.SinglePass {
		plan := seg.Segment(content, sizeHint)
		report.SegmentLimit = plan.SizeLimit
		report.Ceiling = plan.Ceiling
		report.Warning = plan.Warning()
		for _, s := range plan.Segments {
			report.Segments = append(report.Segments, len([]rune(s.Text)))
		}
	}
	return cli.printJSON(report)
}

func (cli *CLI) parse(cmd *cobra.Command, args []string) error {
	recordType, _ := cmd.Flags().GetString("type")
	text, err := cli.readInput(cmd)
	if err != nil {
		return err
	}

	switch strings.ToLower(strings.TrimSpace(recordType)) {
	case "quiz":
		return cli.printJSON(parser.NewQuizParser(cli.cfg.Analysis.MinLegacyQuizBlockLen).Parse(text))
	case "flashcards", "flashcard", "cards":
		return cli.printJSON(parser.NewFlashCardParser().Parse(text))
	default:
		return fmt.Errorf("unsupported record type %q: expected quiz or flashcards", recordType)
	}
}

func (cli *CLI) readInput(cmd *cobra.Command) (string, error) {
	path, _ := cmd.Flags().GetString("file")
	if path == "" || path == "-" {
		data, err := io.ReadAll(cli.in)
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

func (cli *CLI) printJSON(v interface{}) error {
	enc := json.NewEncoder(cli.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

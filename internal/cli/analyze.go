package cli

import (
	"fmt"

	"talentalign/internal/common"
	"talentalign/internal/engine"
	"talentalign/internal/types"

	"github.com/spf13/cobra"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze [resume-file] [job-description-file]",
	Short: "Score a resume against a job description",
	Long: `Analyze how well a resume matches a job description. The hybrid score
combines semantic similarity, skill coverage and keyword alignment, with a
transparency breakdown of the three components.

The analysis includes:
- Hybrid match score with explanation and confidence
- Overlapping and missing skills
- Keyword density gaps between resume and job description
- A similarity heatmap of resume sections against JD sections
- Concrete suggestions for closing the gap

Plain text, markdown, PDF and DOCX input files are supported.`,
	Args: cobra.ExactArgs(2),
	PreRunE: func(cmd *cobra.Command, args []string) error {
		cfg := getConfigFromContext(cmd.Context())
		if analyzeConfig.OutputFormat == "" {
			analyzeConfig.OutputFormat = cfg.App.DefaultFormat
		}
		return common.ValidateOutputFormat(analyzeConfig.OutputFormat, cfg.App.SupportedFormats)
	},
	RunE: runAnalyze,
}

var analyzeConfig common.CommandConfig
var analyzeMode string
var analyzeCandidate string
var analyzeSave bool

func init() {
	analyzeCmd.Flags().StringVarP(&analyzeConfig.OutputFile, "output", "o", "", "Output file path (default: stdout)")
	analyzeCmd.Flags().StringVar(&analyzeConfig.OutputFormat, "format", "", "Output format: json, text, or markdown")
	analyzeCmd.Flags().StringVarP(&analyzeMode, "mode", "m", "standard", "Analysis mode: standard or strict")
	analyzeCmd.Flags().StringVar(&analyzeCandidate, "candidate", "", "Candidate name for persisted records")
	analyzeCmd.Flags().BoolVar(&analyzeSave, "save", false, "Persist the analysis to the local store")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	cfg := getConfigFromContext(cmd.Context())
	logger := getLoggerFromContext(cmd.Context())

	fileProcessor := common.NewFileProcessor(logger)
	contents, err := fileProcessor.ReadDocuments(args[0], args[1])
	if err != nil {
		return err
	}
	resumeText, jdText := contents[0], contents[1]

	mode := types.AnalysisMode(analyzeMode)
	if err := common.ValidateAnalysisInput(resumeText, jdText, mode, cfg.Engine.MinTextLength); err != nil {
		return err
	}

	logger.Info("Starting match analysis",
		"resume_chars", len(resumeText),
		"jd_chars", len(jdText),
		"mode", mode,
		"output_format", analyzeConfig.OutputFormat)

	eng, _ := buildEngine(cfg, logger)
	result, err := eng.Analyze(cmd.Context(), resumeText, jdText, mode)
	if err != nil {
		return fmt.Errorf("failed to analyze resume: %w", err)
	}

	if analyzeSave {
		st, err := openStore(cfg)
		if err != nil {
			return fmt.Errorf("failed to open store: %w", err)
		}
		if st != nil {
			defer func() { _ = st.Close() }()

			candidate := analyzeCandidate
			if candidate == "" {
				candidate = "Candidate"
			}
			recordID, err := st.SaveAnalysis(cmd.Context(), candidate,
				engine.ContentDigest(resumeText), 0, "Ad-hoc", result)
			if err != nil {
				return fmt.Errorf("failed to persist analysis: %w", err)
			}
			logger.Info("Analysis persisted", "record_id", recordID)
		}
	}

	outputHandler := common.NewOutputHandler(logger)
	if err := outputHandler.HandleOutput(result, analyzeConfig); err != nil {
		return err
	}

	logger.Info("Match analysis completed successfully", "score", result.Score)
	return nil
}

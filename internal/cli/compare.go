package cli

import (
	"fmt"
	"path/filepath"
	"strings"

	"talentalign/internal/common"
	"talentalign/internal/types"

	"github.com/spf13/cobra"
)

var compareCmd = &cobra.Command{
	Use:   "compare [resume-file] [job-description-file...]",
	Short: "Rank a resume against multiple roles",
	Long: `Compare a resume against several job descriptions and rank the roles by
match score. Job descriptions come from files given as arguments, stored role
profiles referenced with --role, or both.

Each ranked entry carries the score, confidence, top strengths and the five
most important missing skills for that role.`,
	Args: cobra.MinimumNArgs(1),
	PreRunE: func(cmd *cobra.Command, args []string) error {
		cfg := getConfigFromContext(cmd.Context())
		if compareConfig.OutputFormat == "" {
			compareConfig.OutputFormat = cfg.App.DefaultFormat
		}
		return common.ValidateOutputFormat(compareConfig.OutputFormat, cfg.App.SupportedFormats)
	},
	RunE: runCompare,
}

var compareConfig common.CommandConfig
var compareMode string
var compareCandidate string
var compareRoleIDs []int64
var compareFull bool

func init() {
	compareCmd.Flags().StringVarP(&compareConfig.OutputFile, "output", "o", "", "Output file path (default: stdout)")
	compareCmd.Flags().StringVar(&compareConfig.OutputFormat, "format", "", "Output format: json, text, or markdown")
	compareCmd.Flags().StringVarP(&compareMode, "mode", "m", "", "Analysis mode applied to all targets: standard or strict")
	compareCmd.Flags().StringVar(&compareCandidate, "candidate", "", "Candidate name used in summaries")
	compareCmd.Flags().Int64SliceVar(&compareRoleIDs, "role", nil, "Stored role profile id to include (repeatable)")
	compareCmd.Flags().BoolVar(&compareFull, "full", false, "Include the full analysis for each ranked role")
}

func runCompare(cmd *cobra.Command, args []string) error {
	cfg := getConfigFromContext(cmd.Context())
	logger := getLoggerFromContext(cmd.Context())

	fileProcessor := common.NewFileProcessor(logger)
	resumeText, err := fileProcessor.ReadDocument(args[0])
	if err != nil {
		return err
	}

	mode := types.AnalysisMode(compareMode)
	targets := make([]types.Target, 0, len(args)-1+len(compareRoleIDs))

	for _, jdFile := range args[1:] {
		jdText, err := fileProcessor.ReadDocument(jdFile)
		if err != nil {
			return err
		}
		targets = append(targets, types.Target{
			Title:  roleTitleFromFile(jdFile),
			JDText: jdText,
			Mode:   mode,
		})
	}

	if len(compareRoleIDs) > 0 {
		st, err := openStore(cfg)
		if err != nil {
			return fmt.Errorf("failed to open store: %w", err)
		}
		if st == nil {
			return fmt.Errorf("--role requires storage.path to be configured")
		}
		defer func() { _ = st.Close() }()

		for _, id := range compareRoleIDs {
			role, err := st.GetRole(cmd.Context(), id)
			if err != nil {
				return err
			}
			target := role.Target()
			if mode != "" {
				target.Mode = mode
			}
			targets = append(targets, target)
		}
	}

	if err := common.ValidateTargets(targets); err != nil {
		return err
	}

	logger.Info("Starting comparison",
		"target_count", len(targets),
		"resume_chars", len(resumeText),
		"output_format", compareConfig.OutputFormat)

	eng, _ := buildEngine(cfg, logger)
	ranked, err := eng.RankTargets(cmd.Context(), compareCandidate, resumeText, targets)
	if err != nil {
		return fmt.Errorf("failed to rank targets: %w", err)
	}

	if !compareFull {
		for i := range ranked {
			ranked[i].Analysis = nil
		}
	}

	outputHandler := common.NewOutputHandler(logger)
	if err := outputHandler.HandleOutput(ranked, compareConfig); err != nil {
		return err
	}

	logger.Info("Comparison completed successfully", "ranked", len(ranked))
	return nil
}

// roleTitleFromFile derives a readable role title from a JD filename
func roleTitleFromFile(path string) string {
	base := filepath.Base(path)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	base = strings.NewReplacer("-", " ", "_", " ").Replace(base)
	return strings.TrimSpace(base)
}

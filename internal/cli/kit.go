package cli

import (
	"fmt"

	"talentalign/internal/common"
	"talentalign/internal/engine"
	"talentalign/internal/types"

	"github.com/spf13/cobra"
)

var kitCmd = &cobra.Command{
	Use:   "kit [resume-file] [job-description-file]",
	Short: "Generate an interview kit from a skill gap",
	Long: `Generate an interview preparation kit: a weighted rubric, templated
questions per skill with probing follow-ups, and red flags to watch for.

The skill gap is derived by analyzing the resume against the job description,
or supplied directly with --overlap and --missing (in which case the file
arguments are omitted).`,
	Args: cobra.MaximumNArgs(2),
	PreRunE: func(cmd *cobra.Command, args []string) error {
		cfg := getConfigFromContext(cmd.Context())
		if kitConfig.OutputFormat == "" {
			kitConfig.OutputFormat = cfg.App.DefaultFormat
		}
		return common.ValidateOutputFormat(kitConfig.OutputFormat, cfg.App.SupportedFormats)
	},
	RunE: runKit,
}

var kitConfig common.CommandConfig
var kitOverlap []string
var kitMissing []string

func init() {
	kitCmd.Flags().StringVarP(&kitConfig.OutputFile, "output", "o", "", "Output file path (default: stdout)")
	kitCmd.Flags().StringVar(&kitConfig.OutputFormat, "format", "", "Output format: json, text, or markdown")
	kitCmd.Flags().StringSliceVar(&kitOverlap, "overlap", nil, "Overlapping skill (repeatable, skips analysis)")
	kitCmd.Flags().StringSliceVar(&kitMissing, "missing", nil, "Missing skill (repeatable, skips analysis)")
}

func runKit(cmd *cobra.Command, args []string) error {
	cfg := getConfigFromContext(cmd.Context())
	logger := getLoggerFromContext(cmd.Context())

	input := types.SkillGapInput{
		OverlappingSkills: kitOverlap,
		MissingSkills:     kitMissing,
	}

	if len(input.OverlappingSkills) == 0 && len(input.MissingSkills) == 0 {
		if len(args) != 2 {
			return fmt.Errorf("expected resume and job description files, or --overlap/--missing skill lists")
		}

		fileProcessor := common.NewFileProcessor(logger)
		contents, err := fileProcessor.ReadDocuments(args[0], args[1])
		if err != nil {
			return err
		}
		resumeText, jdText := contents[0], contents[1]

		if err := common.ValidateAnalysisInput(resumeText, jdText, types.ModeStandard, cfg.Engine.MinTextLength); err != nil {
			return err
		}

		eng, _ := buildEngine(cfg, logger)
		result, err := eng.Analyze(cmd.Context(), resumeText, jdText, types.ModeStandard)
		if err != nil {
			return fmt.Errorf("failed to analyze skill gap: %w", err)
		}
		input.OverlappingSkills = result.OverlappingSkills
		input.MissingSkills = result.MissingSkills
	}

	logger.Info("Generating interview kit",
		"overlapping_skills", len(input.OverlappingSkills),
		"missing_skills", len(input.MissingSkills))

	kit := engine.GenerateInterviewKit(input)

	outputHandler := common.NewOutputHandler(logger)
	if err := outputHandler.HandleOutput(kit, kitConfig); err != nil {
		return err
	}

	logger.Info("Interview kit generated successfully")
	return nil
}

package common

import (
	"fmt"
	"slices"
	"strings"

	"talentalign/internal/errors"
	"talentalign/internal/types"
)

// ValidateOutputFormat validates format against configured supported formats
func ValidateOutputFormat(format string, supportedFormats []string) error {
	if len(supportedFormats) == 0 {
		return nil // No restrictions configured
	}

	if slices.Contains(supportedFormats, format) {
		return nil
	}

	return fmt.Errorf("unsupported output format '%s'. Supported formats: %v",
		format, supportedFormats)
}

// ValidateAnalysisInput checks resume and JD texts against the minimum
// length and the mode against the supported set. It is shared by the
// CLI and HTTP entry points so both reject input the same way.
func ValidateAnalysisInput(resumeText, jdText string, mode types.AnalysisMode, minLength int) error {
	if len(strings.TrimSpace(resumeText)) < minLength {
		return errors.NewValidationError(errors.ErrCodeInputTooShort,
			fmt.Sprintf("Resume text must be at least %d characters", minLength), nil)
	}
	if len(strings.TrimSpace(jdText)) < minLength {
		return errors.NewValidationError(errors.ErrCodeInputTooShort,
			fmt.Sprintf("Job description text must be at least %d characters", minLength), nil)
	}
	if !mode.Valid() {
		return errors.NewValidationError(errors.ErrCodeInvalidMode,
			fmt.Sprintf("Analysis mode must be 'standard' or 'strict', got '%s'", mode), nil)
	}
	return nil
}

// ValidateTargets checks a comparison target list for structural problems
func ValidateTargets(targets []types.Target) error {
	if len(targets) == 0 {
		return errors.NewValidationError(errors.ErrCodeMalformedCompare,
			"At least one comparison target is required", nil)
	}
	for i, target := range targets {
		if strings.TrimSpace(target.JDText) == "" {
			return errors.NewValidationError(errors.ErrCodeMalformedCompare,
				fmt.Sprintf("Target %d has no job description text", i), nil)
		}
		if target.RoleID == 0 && strings.TrimSpace(target.Title) == "" {
			return errors.NewValidationError(errors.ErrCodeMalformedCompare,
				fmt.Sprintf("Target %d needs a role id or a title", i), nil)
		}
		if target.Mode != "" && !target.Mode.Valid() {
			return errors.NewValidationError(errors.ErrCodeInvalidMode,
				fmt.Sprintf("Target %d has invalid mode '%s'", i, target.Mode), nil)
		}
	}
	return nil
}

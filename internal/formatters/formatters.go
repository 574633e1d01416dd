package formatters

import (
	"encoding/json"
	"fmt"
	"strings"

	"talentalign/internal/types"
)

// Formatter interface for different output formats
type Formatter interface {
	Format(data any) (string, error)
	SupportedType() string
}

// FormatterRegistry manages all available formatters
type FormatterRegistry struct {
	formatters map[string]map[string]Formatter // format -> type -> formatter
}

// NewFormatterRegistry creates a new formatter registry with default formatters
func NewFormatterRegistry() *FormatterRegistry {
	registry := &FormatterRegistry{
		formatters: make(map[string]map[string]Formatter),
	}

	registry.RegisterFormatter("json", "any", &JSONFormatter{})
	registry.RegisterFormatter("text", "AnalysisResult", &AnalysisTextFormatter{})
	registry.RegisterFormatter("markdown", "AnalysisResult", &AnalysisMarkdownFormatter{})
	registry.RegisterFormatter("text", "RankedMatches", &RankingTextFormatter{})
	registry.RegisterFormatter("markdown", "RankedMatches", &RankingMarkdownFormatter{})
	registry.RegisterFormatter("text", "InterviewKit", &InterviewKitTextFormatter{})
	registry.RegisterFormatter("markdown", "InterviewKit", &InterviewKitMarkdownFormatter{})

	return registry
}

// RegisterFormatter registers a new formatter for a specific format and data type
func (fr *FormatterRegistry) RegisterFormatter(format, dataType string, formatter Formatter) {
	if fr.formatters[format] == nil {
		fr.formatters[format] = make(map[string]Formatter)
	}
	fr.formatters[format][dataType] = formatter
}

// Format formats data using the appropriate formatter
func (fr *FormatterRegistry) Format(data any, format string) (string, error) {
	dataType := getDataType(data)

	if formatters, exists := fr.formatters[format]; exists {
		if formatter, exists := formatters[dataType]; exists {
			return formatter.Format(data)
		}
		if formatter, exists := formatters["any"]; exists {
			return formatter.Format(data)
		}
	}

	return "", fmt.Errorf("no formatter found for format '%s' and type '%s'", format, dataType)
}

// GetSupportedFormats returns all supported formats
func (fr *FormatterRegistry) GetSupportedFormats() []string {
	formats := make([]string, 0, len(fr.formatters))
	for format := range fr.formatters {
		formats = append(formats, format)
	}
	return formats
}

func getDataType(data any) string {
	switch data.(type) {
	case types.AnalysisResult, *types.AnalysisResult:
		return "AnalysisResult"
	case []types.RankedMatch:
		return "RankedMatches"
	case types.InterviewKit, *types.InterviewKit:
		return "InterviewKit"
	default:
		return "any"
	}
}

// JSONFormatter handles JSON formatting for any data type
type JSONFormatter struct{}

func (jf *JSONFormatter) Format(data any) (string, error) {
	jsonData, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return "", err
	}
	return string(jsonData), nil
}

func (jf *JSONFormatter) SupportedType() string {
	return "any"
}

func asAnalysisResult(data any) (*types.AnalysisResult, error) {
	switch v := data.(type) {
	case types.AnalysisResult:
		return &v, nil
	case *types.AnalysisResult:
		return v, nil
	default:
		return nil, fmt.Errorf("expected AnalysisResult, got %T", data)
	}
}

// AnalysisTextFormatter handles text formatting for analysis results
type AnalysisTextFormatter struct{}

func (atf *AnalysisTextFormatter) Format(data any) (string, error) {
	result, err := asAnalysisResult(data)
	if err != nil {
		return "", err
	}

	var output strings.Builder

	output.WriteString("=== MATCH ANALYSIS ===\n\n")
	output.WriteString(fmt.Sprintf("Score: %.1f/100 (%s mode)\n", result.Score, result.Mode))
	output.WriteString(fmt.Sprintf("Confidence: %.2f\n", result.Confidence))
	output.WriteString(result.ScoreExplanation)
	output.WriteString("\n\n")

	output.WriteString("=== METRICS ===\n")
	output.WriteString(fmt.Sprintf("Semantic Similarity: %.2f/100\n", result.Metrics.SemanticSimilarity))
	output.WriteString(fmt.Sprintf("Skill Coverage:      %.2f/100\n", result.Metrics.SkillCoverage))
	output.WriteString(fmt.Sprintf("Keyword Alignment:   %.2f/100\n\n", result.Metrics.KeywordAlignment))

	if len(result.OverlappingSkills) > 0 {
		output.WriteString("Matched Skills:\n")
		for _, skill := range result.OverlappingSkills {
			output.WriteString(fmt.Sprintf("- %s\n", skill))
		}
		output.WriteString("\n")
	}
	if len(result.MissingSkills) > 0 {
		output.WriteString("Missing Skills:\n")
		for _, skill := range result.MissingSkills {
			output.WriteString(fmt.Sprintf("- %s\n", skill))
		}
		output.WriteString("\n")
	}

	if len(result.Strengths) > 0 {
		output.WriteString("=== STRENGTHS ===\n")
		for _, s := range result.Strengths {
			output.WriteString(fmt.Sprintf("- %s\n", s))
		}
		output.WriteString("\n")
	}
	if len(result.Suggestions) > 0 {
		output.WriteString("=== SUGGESTIONS ===\n")
		for i, s := range result.Suggestions {
			output.WriteString(fmt.Sprintf("%d. %s\n", i+1, s))
		}
		output.WriteString("\n")
	}

	if len(result.KeywordDensity) > 0 {
		output.WriteString("=== KEYWORD DENSITY ===\n")
		for _, usage := range result.KeywordDensity {
			output.WriteString(fmt.Sprintf("%-20s resume %.3f%%  jd %.3f%%  gap %+.3f\n",
				usage.Keyword, usage.ResumeDensity, usage.JDDensity, usage.Gap))
		}
		output.WriteString("\n")
	}

	if len(result.TopMatchingSections) > 0 {
		output.WriteString("=== TOP MATCHING SECTIONS ===\n")
		for i, cell := range result.TopMatchingSections {
			output.WriteString(fmt.Sprintf("%d. [%.1f] %s <-> %s\n",
				i+1, cell.Value, cell.ResumeChunk, cell.JDChunk))
		}
		output.WriteString("\n")
	}

	if len(result.ReliabilityNotes) > 0 {
		output.WriteString("=== RELIABILITY NOTES ===\n")
		for _, note := range result.ReliabilityNotes {
			output.WriteString(fmt.Sprintf("- %s\n", note))
		}
	}

	return output.String(), nil
}

func (atf *AnalysisTextFormatter) SupportedType() string {
	return "AnalysisResult"
}

// AnalysisMarkdownFormatter handles markdown formatting for analysis results
type AnalysisMarkdownFormatter struct{}

func (amf *AnalysisMarkdownFormatter) Format(data any) (string, error) {
	result, err := asAnalysisResult(data)
	if err != nil {
		return "", err
	}

	var output strings.Builder

	output.WriteString("# Match Analysis\n\n")
	output.WriteString(fmt.Sprintf("**Score:** %.1f/100 (%s mode)\n\n", result.Score, result.Mode))
	output.WriteString(fmt.Sprintf("**Confidence:** %.2f\n\n", result.Confidence))
	output.WriteString(result.ScoreExplanation)
	output.WriteString("\n\n")

	output.WriteString("## Metrics\n\n")
	output.WriteString("| Metric | Value |\n|---|---|\n")
	output.WriteString(fmt.Sprintf("| Semantic Similarity | %.2f |\n", result.Metrics.SemanticSimilarity))
	output.WriteString(fmt.Sprintf("| Skill Coverage | %.2f |\n", result.Metrics.SkillCoverage))
	output.WriteString(fmt.Sprintf("| Keyword Alignment | %.2f |\n\n", result.Metrics.KeywordAlignment))

	if len(result.OverlappingSkills) > 0 {
		output.WriteString("## Matched Skills\n\n")
		for _, skill := range result.OverlappingSkills {
			output.WriteString(fmt.Sprintf("- %s\n", skill))
		}
		output.WriteString("\n")
	}
	if len(result.MissingSkills) > 0 {
		output.WriteString("## Missing Skills\n\n")
		for _, skill := range result.MissingSkills {
			output.WriteString(fmt.Sprintf("- %s\n", skill))
		}
		output.WriteString("\n")
	}

	if len(result.Strengths) > 0 {
		output.WriteString("## Strengths\n\n")
		for _, s := range result.Strengths {
			output.WriteString(fmt.Sprintf("- %s\n", s))
		}
		output.WriteString("\n")
	}
	if len(result.Suggestions) > 0 {
		output.WriteString("## Suggestions\n\n")
		for i, s := range result.Suggestions {
			output.WriteString(fmt.Sprintf("%d. %s\n", i+1, s))
		}
		output.WriteString("\n")
	}

	if len(result.KeywordDensity) > 0 {
		output.WriteString("## Keyword Density\n\n")
		output.WriteString("| Keyword | Resume | JD | Gap |\n|---|---|---|---|\n")
		for _, usage := range result.KeywordDensity {
			output.WriteString(fmt.Sprintf("| %s | %.3f | %.3f | %+.3f |\n",
				usage.Keyword, usage.ResumeDensity, usage.JDDensity, usage.Gap))
		}
		output.WriteString("\n")
	}

	if len(result.TopMatchingSections) > 0 {
		output.WriteString("## Top Matching Sections\n\n")
		for i, cell := range result.TopMatchingSections {
			output.WriteString(fmt.Sprintf("%d. **%.1f** %s / %s\n",
				i+1, cell.Value, cell.ResumeChunk, cell.JDChunk))
		}
		output.WriteString("\n")
	}

	if len(result.ReliabilityNotes) > 0 {
		output.WriteString("## Reliability Notes\n\n")
		for _, note := range result.ReliabilityNotes {
			output.WriteString(fmt.Sprintf("- %s\n", note))
		}
	}

	return output.String(), nil
}

func (amf *AnalysisMarkdownFormatter) SupportedType() string {
	return "AnalysisResult"
}

// RankingTextFormatter handles text formatting for ranked comparisons
type RankingTextFormatter struct{}

func (rtf *RankingTextFormatter) Format(data any) (string, error) {
	matches, ok := data.([]types.RankedMatch)
	if !ok {
		return "", fmt.Errorf("expected []RankedMatch, got %T", data)
	}

	var output strings.Builder

	output.WriteString("=== RANKED TARGETS ===\n\n")
	for i, match := range matches {
		output.WriteString(fmt.Sprintf("%d. %s\n", i+1, match.Summary))
		if len(match.MissingSkillsTop) > 0 {
			output.WriteString(fmt.Sprintf("   Missing: %s\n", strings.Join(match.MissingSkillsTop, ", ")))
		}
		output.WriteString(fmt.Sprintf("   Confidence: %.2f\n\n", match.Confidence))
	}

	return output.String(), nil
}

func (rtf *RankingTextFormatter) SupportedType() string {
	return "RankedMatches"
}

// RankingMarkdownFormatter handles markdown formatting for ranked comparisons
type RankingMarkdownFormatter struct{}

func (rmf *RankingMarkdownFormatter) Format(data any) (string, error) {
	matches, ok := data.([]types.RankedMatch)
	if !ok {
		return "", fmt.Errorf("expected []RankedMatch, got %T", data)
	}

	var output strings.Builder

	output.WriteString("# Ranked Targets\n\n")
	output.WriteString("| # | Role | Score | Confidence | Top Missing Skills |\n|---|---|---|---|---|\n")
	for i, match := range matches {
		output.WriteString(fmt.Sprintf("| %d | %s | %.1f | %.2f | %s |\n",
			i+1, match.Title, match.Score, match.Confidence,
			strings.Join(match.MissingSkillsTop, ", ")))
	}
	output.WriteString("\n")

	return output.String(), nil
}

func (rmf *RankingMarkdownFormatter) SupportedType() string {
	return "RankedMatches"
}

func asInterviewKit(data any) (*types.InterviewKit, error) {
	switch v := data.(type) {
	case types.InterviewKit:
		return &v, nil
	case *types.InterviewKit:
		return v, nil
	default:
		return nil, fmt.Errorf("expected InterviewKit, got %T", data)
	}
}

// InterviewKitTextFormatter handles text formatting for interview kits
type InterviewKitTextFormatter struct{}

func (itf *InterviewKitTextFormatter) Format(data any) (string, error) {
	kit, err := asInterviewKit(data)
	if err != nil {
		return "", err
	}

	var output strings.Builder

	output.WriteString("=== INTERVIEW KIT ===\n\n")
	output.WriteString("Rubric:\n")
	for _, item := range kit.Rubric {
		output.WriteString(fmt.Sprintf("- %s (%d%%): %s\n", item.Category, item.Weight, item.Guide))
	}
	output.WriteString("\n")

	for _, item := range kit.Rubric {
		questions := kit.Questions[item.Category]
		if len(questions) == 0 {
			continue
		}
		output.WriteString(fmt.Sprintf("=== %s ===\n", strings.ToUpper(item.Category)))
		for i, q := range questions {
			output.WriteString(fmt.Sprintf("%d. %s\n", i+1, q.Question))
			for _, probe := range q.Probes {
				output.WriteString(fmt.Sprintf("   * %s\n", probe))
			}
		}
		output.WriteString("\n")
	}

	if len(kit.RedFlags) > 0 {
		output.WriteString("=== RED FLAGS ===\n")
		for _, flag := range kit.RedFlags {
			output.WriteString(fmt.Sprintf("- %s\n", flag))
		}
	}

	return output.String(), nil
}

func (itf *InterviewKitTextFormatter) SupportedType() string {
	return "InterviewKit"
}

// InterviewKitMarkdownFormatter handles markdown formatting for interview kits
type InterviewKitMarkdownFormatter struct{}

func (imf *InterviewKitMarkdownFormatter) Format(data any) (string, error) {
	kit, err := asInterviewKit(data)
	if err != nil {
		return "", err
	}

	var output strings.Builder

	output.WriteString("# Interview Kit\n\n")
	output.WriteString("## Rubric\n\n")
	output.WriteString("| Category | Weight | Guide |\n|---|---|---|\n")
	for _, item := range kit.Rubric {
		output.WriteString(fmt.Sprintf("| %s | %d%% | %s |\n", item.Category, item.Weight, item.Guide))
	}
	output.WriteString("\n")

	for _, item := range kit.Rubric {
		questions := kit.Questions[item.Category]
		if len(questions) == 0 {
			continue
		}
		output.WriteString(fmt.Sprintf("## %s\n\n", item.Category))
		for i, q := range questions {
			output.WriteString(fmt.Sprintf("%d. %s\n", i+1, q.Question))
			for _, probe := range q.Probes {
				output.WriteString(fmt.Sprintf("   - %s\n", probe))
			}
		}
		output.WriteString("\n")
	}

	if len(kit.RedFlags) > 0 {
		output.WriteString("## Red Flags\n\n")
		for _, flag := range kit.RedFlags {
			output.WriteString(fmt.Sprintf("- %s\n", flag))
		}
	}

	return output.String(), nil
}

func (imf *InterviewKitMarkdownFormatter) SupportedType() string {
	return "InterviewKit"
}

// Global formatter registry
var GlobalRegistry = NewFormatterRegistry()

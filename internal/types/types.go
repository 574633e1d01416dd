package types

// AnalysisMode selects the scoring behavior
type AnalysisMode string

const (
	ModeStandard AnalysisMode = "standard"
	ModeStrict   AnalysisMode = "strict"
)

// Valid reports whether the mode is one of the supported values
func (m AnalysisMode) Valid() bool {
	return m == ModeStandard || m == ModeStrict
}

// HeatmapCell represents one resume-chunk x JD-chunk similarity pair
type HeatmapCell struct {
	ResumeIndex int     `json:"resumeIndex"`
	JDIndex     int     `json:"jdIndex"`
	Value       float64 `json:"value"` // similarity scaled to 0-100
	ResumeChunk string  `json:"resumeChunk"`
	JDChunk     string  `json:"jdChunk"`
}

// KeywordUsage compares keyword density between resume and job description
type KeywordUsage struct {
	Keyword       string  `json:"keyword"`
	ResumeDensity float64 `json:"resumeDensity"`
	JDDensity     float64 `json:"jdDensity"`
	Gap           float64 `json:"gap"` // jd minus resume, rounded to 3 decimals
}

// ScoreMetrics is the transparency breakdown of the hybrid score components
type ScoreMetrics struct {
	SemanticSimilarity float64 `json:"semanticSimilarity"` // 0-100
	SkillCoverage      float64 `json:"skillCoverage"`      // 0-100
	KeywordAlignment   float64 `json:"keywordAlignment"`   // 0-100
}

// AnalysisResult is the aggregate output of a resume/JD match analysis
type AnalysisResult struct {
	Score               float64        `json:"score"` // 0-100
	Mode                AnalysisMode   `json:"analysisMode"`
	ScoreExplanation    string         `json:"scoreExplanation"`
	Confidence          float64        `json:"confidence"` // 0.55-0.95
	ReliabilityNotes    []string       `json:"reliabilityNotes"`
	OverlappingSkills   []string       `json:"overlappingSkills"`
	MissingSkills       []string       `json:"missingSkills"`
	Strengths           []string       `json:"strengths"`
	Suggestions         []string       `json:"suggestions"`
	KeywordDensity      []KeywordUsage `json:"keywordDensity"`
	HeatmapData         []HeatmapCell  `json:"heatmapData"`
	TopMatchingSections []HeatmapCell  `json:"topMatchingSections"`
	Metrics             ScoreMetrics   `json:"metrics"`
}

// Target identifies one job description a resume is compared against.
// Stored role profiles carry a RoleID; ad-hoc targets are identified by title.
type Target struct {
	RoleID int64        `json:"roleId,omitempty"`
	Title  string       `json:"title"`
	JDText string       `json:"jdText"`
	Mode   AnalysisMode `json:"mode"`
	Stored bool         `json:"stored"`
}

// RankedMatch pairs a target with its analysis, ordered by descending score
type RankedMatch struct {
	RoleID           int64           `json:"roleId,omitempty"`
	Title            string          `json:"title"`
	Score            float64         `json:"score"`
	Confidence       float64         `json:"confidence"`
	Strengths        []string        `json:"strengths"`
	MissingSkillsTop []string        `json:"missingSkillsTop5"`
	Summary          string          `json:"summary"`
	Analysis         *AnalysisResult `json:"analysis,omitempty"`
}

// RubricItem is one weighted category of the interview rubric
type RubricItem struct {
	Category string `json:"category"`
	Weight   int    `json:"weight"`
	Guide    string `json:"guide"`
}

// InterviewQuestion is a templated question with fixed probing follow-ups
type InterviewQuestion struct {
	Question string   `json:"question"`
	Probes   []string `json:"probes"`
}

// InterviewKit is the derived interview-preparation content
type InterviewKit struct {
	Rubric      []RubricItem                   `json:"rubric"`
	Questions   map[string][]InterviewQuestion `json:"questions"`
	RedFlags    []string                       `json:"redFlags"`
	GeneratedAt string                         `json:"generatedAt"`
}

// SkillGapInput carries the skill sets an interview kit is derived from.
// Either list may be empty; both empty yields a placeholder topic pool.
type SkillGapInput struct {
	OverlappingSkills []string `json:"overlappingSkills"`
	MissingSkills     []string `json:"missingSkills"`
}

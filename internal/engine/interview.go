package engine

import (
	"fmt"
	"strings"
	"time"

	"talentalign/internal/types"
)

// Interview rubric categories, in output order. Weights always sum to 100.
var interviewRubric = []types.RubricItem{
	{Category: "skills", Weight: 30, Guide: "Depth of role-relevant technical capability"},
	{Category: "system_design", Weight: 30, Guide: "Architecture quality, scalability, trade-offs"},
	{Category: "projects", Weight: 25, Guide: "Impact evidence and implementation ownership"},
	{Category: "behavioral", Weight: 15, Guide: "Communication, collaboration, adaptability"},
}

// Question templates per category. {topic} is replaced with an entry from
// the topic pool; the i-th template gets pool[i mod len(pool)].
var questionTemplates = map[string][]string{
	"skills": {
		"Walk me through your hands-on experience with {topic}.",
		"Describe a project where {topic} was critical to delivery.",
	},
	"system_design": {
		"Design a scalable system for candidate-role matching with {topic} constraints.",
		"How would you optimize latency and reliability in a hiring intelligence pipeline?",
	},
	"projects": {
		"Which project best demonstrates {topic}, and what measurable outcome did it achieve?",
		"What trade-offs did you make in your most relevant project?",
	},
	"behavioral": {
		"Tell me about a time you resolved a stakeholder conflict during delivery.",
		"How do you prioritize tasks when deadlines change unexpectedly?",
	},
}

var questionProbes = []string{
	"What was your specific contribution?",
	"How did you measure success?",
}

var baseRedFlags = []string{
	"Cannot explain technical decisions in projects listed on resume",
	"No measurable outcomes for claimed achievements",
	"Weak understanding of claimed primary skills",
}

const maxTopicPool = 4

// GenerateInterviewKit derives a rubric, templated question set and red
// flags from the skill-gap payload of a completed analysis. Missing skills
// lead the topic pool so probing targets the gaps first.
func GenerateInterviewKit(input types.SkillGapInput) types.InterviewKit {
	pool := make([]string, 0, maxTopicPool)
	pool = append(pool, input.MissingSkills...)
	pool = append(pool, input.OverlappingSkills...)
	if len(pool) > maxTopicPool {
		pool = pool[:maxTopicPool]
	}
	if len(pool) == 0 {
		pool = []string{"relevant technologies"}
	}

	questions := make(map[string][]types.InterviewQuestion, len(interviewRubric))
	for _, item := range interviewRubric {
		questions[item.Category] = categoryQuestions(item.Category, pool)
	}

	redFlags := make([]string, 0, len(baseRedFlags)+1)
	redFlags = append(redFlags, baseRedFlags...)
	if len(input.MissingSkills) > 0 {
		named := input.MissingSkills
		if len(named) > 5 {
			named = named[:5]
		}
		redFlags = append(redFlags, fmt.Sprintf("No convincing examples for missing skills: %s", strings.Join(named, ", ")))
	}

	rubric := make([]types.RubricItem, len(interviewRubric))
	copy(rubric, interviewRubric)

	return types.InterviewKit{
		Rubric:      rubric,
		Questions:   questions,
		RedFlags:    redFlags,
		GeneratedAt: time.Now().UTC().Format(time.RFC3339),
	}
}

func categoryQuestions(category string, pool []string) []types.InterviewQuestion {
	templates := questionTemplates[category]
	out := make([]types.InterviewQuestion, 0, len(templates))
	for i, tpl := range templates {
		topic := pool[i%len(pool)]
		probes := make([]string, len(questionProbes))
		copy(probes, questionProbes)
		out = append(out, types.InterviewQuestion{
			Question: strings.ReplaceAll(tpl, "{topic}", topic),
			Probes:   probes,
		})
	}
	return out
}

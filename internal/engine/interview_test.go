package engine

import (
	"strings"
	"testing"

	"talentalign/internal/types"
)

func TestGenerateInterviewKitRubric(t *testing.T) {
	kit := GenerateInterviewKit(types.SkillGapInput{
		OverlappingSkills: []string{"python"},
		MissingSkills:     []string{"docker"},
	})

	if len(kit.Rubric) != 4 {
		t.Fatalf("rubric categories = %d, want 4", len(kit.Rubric))
	}

	weights := 0
	for _, item := range kit.Rubric {
		weights += item.Weight
	}
	if weights != 100 {
		t.Errorf("rubric weights sum = %d, want 100", weights)
	}

	expected := []string{"skills", "system_design", "projects", "behavioral"}
	for i, item := range kit.Rubric {
		if item.Category != expected[i] {
			t.Errorf("rubric[%d] = %s, want %s", i, item.Category, expected[i])
		}
	}
}

func TestGenerateInterviewKitTopics(t *testing.T) {
	kit := GenerateInterviewKit(types.SkillGapInput{
		OverlappingSkills: []string{"python", "aws"},
		MissingSkills:     []string{"docker", "kubernetes"},
	})

	// missing skills lead the pool, so the first skills question probes
	// the biggest gap
	first := kit.Questions["skills"][0].Question
	if !strings.Contains(first, "docker") {
		t.Errorf("first skills question = %q, want topic docker", first)
	}
	second := kit.Questions["skills"][1].Question
	if !strings.Contains(second, "kubernetes") {
		t.Errorf("second skills question = %q, want topic kubernetes", second)
	}

	for category, questions := range kit.Questions {
		if len(questions) != 2 {
			t.Errorf("category %s has %d questions, want 2", category, len(questions))
		}
		for _, q := range questions {
			if len(q.Probes) != 2 {
				t.Errorf("question %q has %d probes, want 2", q.Question, len(q.Probes))
			}
			if strings.Contains(q.Question, "{topic}") {
				t.Errorf("unfilled topic placeholder in %q", q.Question)
			}
		}
	}
}

func TestGenerateInterviewKitPlaceholderTopic(t *testing.T) {
	kit := GenerateInterviewKit(types.SkillGapInput{})

	q := kit.Questions["skills"][0].Question
	if !strings.Contains(q, "relevant technologies") {
		t.Errorf("empty skill gap should use placeholder topic, got %q", q)
	}
	if len(kit.RedFlags) != 3 {
		t.Errorf("red flags without missing skills = %d, want 3", len(kit.RedFlags))
	}
}

func TestGenerateInterviewKitRedFlags(t *testing.T) {
	kit := GenerateInterviewKit(types.SkillGapInput{
		MissingSkills: []string{"a", "b", "c", "d", "e", "f", "g"},
	})

	if len(kit.RedFlags) != 4 {
		t.Fatalf("red flags = %d, want 3 fixed + 1 missing-skills", len(kit.RedFlags))
	}
	last := kit.RedFlags[3]
	if last != "No convincing examples for missing skills: a, b, c, d, e" {
		t.Errorf("missing-skills flag should name only the first 5: %q", last)
	}
}

func TestGenerateInterviewKitPoolTruncated(t *testing.T) {
	kit := GenerateInterviewKit(types.SkillGapInput{
		MissingSkills:     []string{"m1", "m2", "m3", "m4", "m5"},
		OverlappingSkills: []string{"o1"},
	})

	// pool is [m1 m2 m3 m4]; two templates per category cycle through
	// pool[0] and pool[1]
	for _, q := range kit.Questions["projects"] {
		if strings.Contains(q.Question, "m5") || strings.Contains(q.Question, "o1") {
			t.Errorf("topic pool should be truncated to 4 entries: %q", q.Question)
		}
	}
}

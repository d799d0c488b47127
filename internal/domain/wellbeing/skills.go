package wellbeing

import (
	"github.com/trajectory-hub/student-dashboard/internal/domain/shared"
	"github.com/trajectory-hub/student-dashboard/internal/domain/student"
)

// SkillSummary condenses the skills list for the skills component card.
type SkillSummary struct {
	Count int `json:"count"`

	// AvgProficiency is the rounded mean proficiency, 0 when Count is 0.
	AvgProficiency int `json:"avg_proficiency"`
}

// SummarizeSkills counts the skills and averages their proficiency.
func SummarizeSkills(skills []student.Skill) SkillSummary {
	if len(skills) == 0 {
		return SkillSummary{}
	}
	var sum float64
	for _, s := range skills {
		sum += s.ProficiencyScore
	}
	return SkillSummary{
		Count:          len(skills),
		AvgProficiency: shared.RoundInt(sum / float64(len(skills))),
	}
}

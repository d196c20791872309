package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/trainbase/evaluation-api/internal/models"
)

func TestDeriveAtRisk(t *testing.T) {
	assert.True(t, Derive(&models.StudentEvaluation{OverallRating: 2}).AtRisk)
	assert.True(t, Derive(&models.StudentEvaluation{OverallRating: 1}).AtRisk)
	assert.False(t, Derive(&models.StudentEvaluation{OverallRating: 3}).AtRisk)
	// An unrated evaluation is not at risk.
	assert.False(t, Derive(&models.StudentEvaluation{}).AtRisk)
}

func TestDeriveNeedsAttention(t *testing.T) {
	cases := []struct {
		name string
		eval models.StudentEvaluation
		want bool
	}{
		{"struggling", models.StudentEvaluation{ComprehensionLevel: models.ComprehensionStruggling}, true},
		{"negative attitude", models.StudentEvaluation{Behavior: models.BehaviorBlock{Attitude: models.AttitudeNegative}}, true},
		{"low focus", models.StudentEvaluation{Behavior: models.BehaviorBlock{Focus: 2}}, true},
		{"absent", models.StudentEvaluation{AttendanceStatus: models.AttendanceAbsent}, true},
		{"unset focus", models.StudentEvaluation{}, false},
		{"present and proficient", models.StudentEvaluation{AttendanceStatus: models.AttendancePresent, ComprehensionLevel: models.ComprehensionProficient, Behavior: models.BehaviorBlock{Attitude: models.AttitudePositive, Focus: 4}}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Derive(&tc.eval).NeedsAttention)
		})
	}
}

func TestDeriveExcelling(t *testing.T) {
	eval := &models.StudentEvaluation{
		OverallRating: 5,
		SkillRatings:  models.SkillRatings{Communication: 5, Teamwork: 4},
	}
	assert.True(t, Derive(eval).Excelling)

	eval.SkillRatings.Teamwork = 3
	assert.False(t, Derive(eval).Excelling)

	eval.OverallRating = 4
	eval.SkillRatings.Teamwork = 5
	assert.False(t, Derive(eval).Excelling)
}

func TestApplyNeverClearsManualFlags(t *testing.T) {
	eval := &models.StudentEvaluation{
		OverallRating:  4,
		NeedsAttention: true,
		Excelling:      true,
	}
	Apply(eval)
	assert.True(t, eval.NeedsAttention)
	assert.True(t, eval.Excelling)
	assert.False(t, eval.AtRisk)
}

func TestApplyTurnsDerivedFlagsOn(t *testing.T) {
	eval := &models.StudentEvaluation{
		OverallRating:      2,
		ComprehensionLevel: models.ComprehensionStruggling,
	}
	Apply(eval)
	assert.True(t, eval.AtRisk)
	assert.True(t, eval.NeedsAttention)
	assert.False(t, eval.Excelling)
}

package scoring

import "github.com/trainbase/evaluation-api/internal/models"

// Flags carries the derived alert flags. They are coarse, monotone heuristics
// meant to surface candidates for human review, not authoritative state.
type Flags struct {
	NeedsAttention bool
	AtRisk         bool
	Excelling      bool
}

// Derive evaluates the flag rules against the evaluation. Rules are
// independent; any match turns the flag on.
func Derive(eval *models.StudentEvaluation) Flags {
	if eval == nil {
		return Flags{}
	}
	var flags Flags
	if eval.OverallRating > 0 && eval.OverallRating <= 2 {
		flags.AtRisk = true
	}
	if eval.ComprehensionLevel == models.ComprehensionStruggling ||
		eval.Behavior.Attitude == models.AttitudeNegative ||
		(eval.Behavior.Focus > 0 && eval.Behavior.Focus <= 2) ||
		eval.AttendanceStatus == models.AttendanceAbsent {
		flags.NeedsAttention = true
	}
	if eval.OverallRating >= 5 && AverageSkillRating(eval.SkillRatings) >= 4.5 {
		flags.Excelling = true
	}
	return flags
}

// Apply merges derived flags into the evaluation. The merge only ever turns a
// flag on: a true value previously set by a human is never cleared here.
func Apply(eval *models.StudentEvaluation) {
	flags := Derive(eval)
	eval.NeedsAttention = eval.NeedsAttention || flags.NeedsAttention
	eval.AtRisk = eval.AtRisk || flags.AtRisk
	eval.Excelling = eval.Excelling || flags.Excelling
}

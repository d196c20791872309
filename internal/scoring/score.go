// Package scoring holds the pure functions that turn a stored evaluation into
// its derived values: the 0-100 performance score, the alert flags and the
// smaller legacy aggregates. Everything here is total; malformed or partial
// input degrades through the fallback tiers instead of failing.
package scoring

import (
	"math"
	"strings"

	"github.com/trainbase/evaluation-api/internal/models"
)

// Fixed share each legacy signal contributes to the tier-3 blend.
const (
	legacyOverallShare       = 30.0
	legacySkillShare         = 30.0
	legacyParticipationShare = 20.0
	legacyFocusShare         = 20.0
)

var gradePoints = map[string]float64{
	"A": 100,
	"B": 80,
	"C": 60,
	"D": 40,
	"F": 0,
}

// Compute maps an evaluation to an integer performance score in [0,100].
//
// Tier 1 uses the dynamic parameter map weighted by the frozen criteria
// snapshot. Tier 2 applies when parameters exist without a snapshot (data
// migrated from older versions) and scores from the overall rating alone.
// Tier 3 blends the fixed legacy signals when no dynamic parameters exist.
func Compute(eval *models.StudentEvaluation) int {
	if eval == nil {
		return 0
	}
	if len(eval.Parameters) > 0 {
		if score, ok := weightedScore(eval.Parameters, eval.CriteriaMetadata); ok {
			return score
		}
		return clamp(round(float64(eval.OverallRating) / models.DefaultRatingScale * 100))
	}
	return legacyScore(eval)
}

// weightedScore computes the tier-1 dynamic score. It reports false when the
// snapshot carries no parameters or none of the weighted parameters had a
// recorded value, in which case the caller falls through to tier 2.
func weightedScore(values models.ParameterValues, snapshot models.CriteriaSnapshot) (int, bool) {
	if len(snapshot.Parameters) == 0 {
		return 0, false
	}
	var accumulated, weightUsed float64
	for _, spec := range snapshot.Parameters {
		value, ok := values[spec.Name]
		if !ok || value.Kind == "" {
			continue
		}
		accumulated += Normalize(spec, value) * spec.Weight / 100
		weightUsed += spec.Weight
	}
	if weightUsed == 0 {
		return 0, false
	}
	if weightUsed != 100 {
		accumulated = accumulated * 100 / weightUsed
	}
	return clamp(round(accumulated)), true
}

// Normalize maps a recorded value onto a 0-100 scale according to its frozen
// spec. A value whose dynamic type does not match the declared parameter type
// contributes 0, as does an unrecognized parameter type.
func Normalize(spec models.ParameterSpec, value models.ParameterValue) float64 {
	switch spec.Type {
	case models.ParameterTypeRating:
		if value.Kind != models.ValueKindNumber {
			return 0
		}
		min, max := spec.RatingBounds()
		if max <= min {
			return 0
		}
		return (value.Number - min) / (max - min) * 100
	case models.ParameterTypePercentage:
		if value.Kind != models.ValueKindNumber {
			return 0
		}
		return value.Number
	case models.ParameterTypeBoolean:
		if value.Kind == models.ValueKindBool && value.Flag {
			return 100
		}
		return 0
	case models.ParameterTypeGrade:
		if value.Kind != models.ValueKindString {
			return 0
		}
		return gradePoints[strings.ToUpper(strings.TrimSpace(value.Text))]
	case models.ParameterTypeText:
		return 0
	default:
		return 0
	}
}

// legacyScore is the tier-3 fixed blend over the structured legacy fields.
func legacyScore(eval *models.StudentEvaluation) int {
	score := float64(eval.OverallRating) / 5 * legacyOverallShare
	score += AverageSkillRating(eval.SkillRatings) / 5 * legacySkillShare
	score += float64(eval.ParticipationLevel.Points()) / 5 * legacyParticipationShare
	score += float64(eval.Behavior.Focus) / 5 * legacyFocusShare
	return clamp(round(score))
}

// AverageSkillRating averages the rated skills of the legacy block. Unrated
// skills (zero) are excluded; a fully unrated block averages to 0.
func AverageSkillRating(skills models.SkillRatings) float64 {
	var sum, rated int
	for _, rating := range skills.All() {
		if rating > 0 {
			sum += rating
			rated++
		}
	}
	if rated == 0 {
		return 0
	}
	return float64(sum) / float64(rated)
}

// ParticipationScore blends participation level and contribution quality into
// a 0-100 value. Quality falls back to the level when unset.
func ParticipationScore(level models.EngagementLevel, quality models.ContributionQuality) int {
	levelPoints := level.Points()
	if levelPoints == 0 {
		return 0
	}
	qualityPoints := quality.Points()
	if qualityPoints == 0 {
		qualityPoints = levelPoints
	}
	blended := float64(levelPoints)*0.6 + float64(qualityPoints)*0.4
	return clamp(round(blended / 5 * 100))
}

// NeedsReview marks evaluations a coordinator should look at.
func NeedsReview(eval *models.StudentEvaluation) bool {
	if eval == nil {
		return false
	}
	return Compute(eval) < 40 || (eval.OverallRating > 0 && eval.OverallRating <= 2)
}

func round(v float64) int {
	return int(math.Round(v))
}

func clamp(v int) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

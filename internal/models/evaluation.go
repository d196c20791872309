package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/lib/pq"
)

// ValueKind identifies the dynamic type carried by a ParameterValue.
type ValueKind string

const (
	ValueKindNumber ValueKind = "number"
	ValueKindString ValueKind = "string"
	ValueKindBool   ValueKind = "bool"
)

// ParameterValue is a tagged union over the dynamic JSON value a trainer
// records for a parameter. The wire and storage format is the raw value
// (number, string or boolean); the in-memory form keeps the kind explicit so
// the scoring engine can dispatch exhaustively.
type ParameterValue struct {
	Kind   ValueKind
	Number float64
	Text   string
	Flag   bool
}

// NumberValue wraps a numeric value.
func NumberValue(v float64) ParameterValue {
	return ParameterValue{Kind: ValueKindNumber, Number: v}
}

// StringValue wraps a string value.
func StringValue(v string) ParameterValue {
	return ParameterValue{Kind: ValueKindString, Text: v}
}

// BoolValue wraps a boolean value.
func BoolValue(v bool) ParameterValue {
	return ParameterValue{Kind: ValueKindBool, Flag: v}
}

// MarshalJSON emits the raw dynamic value.
func (v ParameterValue) MarshalJSON() ([]byte, error) {
	switch v.Kind {
	case ValueKindNumber:
		return json.Marshal(v.Number)
	case ValueKindString:
		return json.Marshal(v.Text)
	case ValueKindBool:
		return json.Marshal(v.Flag)
	default:
		return []byte("null"), nil
	}
}

// UnmarshalJSON accepts any scalar JSON value. Null is treated as absent.
func (v *ParameterValue) UnmarshalJSON(data []byte) error {
	var raw interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	switch value := raw.(type) {
	case float64:
		*v = NumberValue(value)
	case string:
		*v = StringValue(value)
	case bool:
		*v = BoolValue(value)
	case nil:
		*v = ParameterValue{}
	default:
		return fmt.Errorf("parameter value must be a scalar, got %T", raw)
	}
	return nil
}

// ParameterValues maps parameter names to recorded values, persisted as JSONB.
type ParameterValues map[string]ParameterValue

// Value implements driver.Valuer.
func (p ParameterValues) Value() (driver.Value, error) {
	if len(p) == 0 {
		return nil, nil
	}
	return json.Marshal(p)
}

// Scan implements sql.Scanner.
func (p *ParameterValues) Scan(src interface{}) error {
	if src == nil {
		*p = nil
		return nil
	}
	raw, ok := src.([]byte)
	if !ok {
		return fmt.Errorf("unsupported parameter values source %T", src)
	}
	return json.Unmarshal(raw, p)
}

// CriteriaSnapshot is the frozen copy of the criteria metadata captured when
// an evaluation is created. It is owned by the evaluation and never follows
// later edits to the live definition; a zero snapshot means none was taken.
type CriteriaSnapshot struct {
	CriteriaID           string         `json:"criteria_id,omitempty"`
	Name                 string         `json:"name,omitempty"`
	OverallRatingEnabled bool           `json:"overall_rating_enabled,omitempty"`
	OverallRatingScale   int            `json:"overall_rating_scale,omitempty"`
	CommentsRequired     bool           `json:"comments_required,omitempty"`
	Parameters           ParameterSpecs `json:"parameters,omitempty"`
}

// IsZero reports whether no snapshot was captured.
func (s CriteriaSnapshot) IsZero() bool {
	return s.CriteriaID == "" && len(s.Parameters) == 0
}

// FindParameter returns the frozen spec with the given name, or nil.
func (s CriteriaSnapshot) FindParameter(name string) *ParameterSpec {
	for i := range s.Parameters {
		if s.Parameters[i].Name == name {
			return &s.Parameters[i]
		}
	}
	return nil
}

// Value implements driver.Valuer.
func (s CriteriaSnapshot) Value() (driver.Value, error) {
	if s.IsZero() {
		return nil, nil
	}
	return json.Marshal(s)
}

// Scan implements sql.Scanner.
func (s *CriteriaSnapshot) Scan(src interface{}) error {
	if src == nil {
		*s = CriteriaSnapshot{}
		return nil
	}
	raw, ok := src.([]byte)
	if !ok {
		return fmt.Errorf("unsupported criteria snapshot source %T", src)
	}
	return json.Unmarshal(raw, s)
}

// AttendanceStatus records presence for the evaluated session.
type AttendanceStatus string

const (
	AttendancePresent AttendanceStatus = "present"
	AttendanceLate    AttendanceStatus = "late"
	AttendanceExcused AttendanceStatus = "excused"
	AttendanceAbsent  AttendanceStatus = "absent"
)

// Valid returns true when the status is a supported value.
func (s AttendanceStatus) Valid() bool {
	switch s {
	case AttendancePresent, AttendanceLate, AttendanceExcused, AttendanceAbsent:
		return true
	default:
		return false
	}
}

// EngagementLevel is the five-step categorical scale used for the legacy
// participation and engagement fields.
type EngagementLevel string

const (
	EngagementVeryLow  EngagementLevel = "very_low"
	EngagementLow      EngagementLevel = "low"
	EngagementModerate EngagementLevel = "moderate"
	EngagementHigh     EngagementLevel = "high"
	EngagementVeryHigh EngagementLevel = "very_high"
)

// Points maps the level onto a 1-5 scale; unknown levels map to 0.
func (l EngagementLevel) Points() int {
	switch l {
	case EngagementVeryLow:
		return 1
	case EngagementLow:
		return 2
	case EngagementModerate:
		return 3
	case EngagementHigh:
		return 4
	case EngagementVeryHigh:
		return 5
	default:
		return 0
	}
}

// Valid returns true when the level is a supported value.
func (l EngagementLevel) Valid() bool {
	return l.Points() != 0
}

// ContributionQuality qualifies how a student contributed during the session.
type ContributionQuality string

const (
	ContributionPoor      ContributionQuality = "poor"
	ContributionFair      ContributionQuality = "fair"
	ContributionGood      ContributionQuality = "good"
	ContributionVeryGood  ContributionQuality = "very_good"
	ContributionExcellent ContributionQuality = "excellent"
)

// Points maps the quality onto a 1-5 scale; unknown values map to 0.
func (q ContributionQuality) Points() int {
	switch q {
	case ContributionPoor:
		return 1
	case ContributionFair:
		return 2
	case ContributionGood:
		return 3
	case ContributionVeryGood:
		return 4
	case ContributionExcellent:
		return 5
	default:
		return 0
	}
}

// ComprehensionLevel records how well the student followed the material.
type ComprehensionLevel string

const (
	ComprehensionStruggling ComprehensionLevel = "struggling"
	ComprehensionDeveloping ComprehensionLevel = "developing"
	ComprehensionProficient ComprehensionLevel = "proficient"
	ComprehensionExcellent  ComprehensionLevel = "excellent"
)

// BehaviorAttitude qualifies the observed attitude.
type BehaviorAttitude string

const (
	AttitudePositive BehaviorAttitude = "positive"
	AttitudeNeutral  BehaviorAttitude = "neutral"
	AttitudeNegative BehaviorAttitude = "negative"
)

// SkillRatings is the fixed legacy five-skill block, each on a 1-5 scale with
// 0 meaning the skill was not rated.
type SkillRatings struct {
	Communication  int `json:"communication"`
	Teamwork       int `json:"teamwork"`
	ProblemSolving int `json:"problem_solving"`
	Discipline     int `json:"discipline"`
	Creativity     int `json:"creativity"`
}

// All returns the block as a slice in declaration order.
func (s SkillRatings) All() []int {
	return []int{s.Communication, s.Teamwork, s.ProblemSolving, s.Discipline, s.Creativity}
}

// Value implements driver.Valuer.
func (s SkillRatings) Value() (driver.Value, error) {
	return json.Marshal(s)
}

// Scan implements sql.Scanner.
func (s *SkillRatings) Scan(src interface{}) error {
	if src == nil {
		*s = SkillRatings{}
		return nil
	}
	raw, ok := src.([]byte)
	if !ok {
		return fmt.Errorf("unsupported skill ratings source %T", src)
	}
	return json.Unmarshal(raw, s)
}

// BehaviorBlock is the legacy behavior observation block.
type BehaviorBlock struct {
	Attitude BehaviorAttitude `json:"attitude,omitempty"`
	Focus    int              `json:"focus,omitempty"`
}

// Value implements driver.Valuer.
func (b BehaviorBlock) Value() (driver.Value, error) {
	return json.Marshal(b)
}

// Scan implements sql.Scanner.
func (b *BehaviorBlock) Scan(src interface{}) error {
	if src == nil {
		*b = BehaviorBlock{}
		return nil
	}
	raw, ok := src.([]byte)
	if !ok {
		return fmt.Errorf("unsupported behavior source %T", src)
	}
	return json.Unmarshal(raw, b)
}

// StudentEvaluation is one trainer-recorded evaluation of a student for a
// session. At most one evaluation exists per (session, student) pair; the
// constraint is enforced by the storage layer, not application code.
type StudentEvaluation struct {
	ID        string `db:"id" json:"id"`
	StudentID string `db:"student_id" json:"student_id"`
	TrainerID string `db:"trainer_id" json:"trainer_id"`
	SessionID string `db:"session_id" json:"session_id"`
	GroupID   string `db:"group_id" json:"group_id"`

	OverallRating    int              `db:"overall_rating" json:"overall_rating"`
	Parameters       ParameterValues  `db:"parameters" json:"parameters,omitempty"`
	CriteriaMetadata CriteriaSnapshot `db:"criteria_metadata" json:"criteria_metadata"`

	SkillRatings        SkillRatings        `db:"skill_ratings" json:"skill_ratings"`
	AttendanceStatus    AttendanceStatus    `db:"attendance_status" json:"attendance_status,omitempty"`
	ParticipationLevel  EngagementLevel     `db:"participation_level" json:"participation_level,omitempty"`
	ContributionQuality ContributionQuality `db:"contribution_quality" json:"contribution_quality,omitempty"`
	EngagementLevel     EngagementLevel     `db:"engagement_level" json:"engagement_level,omitempty"`
	ComprehensionLevel  ComprehensionLevel  `db:"comprehension_level" json:"comprehension_level,omitempty"`
	Behavior            BehaviorBlock       `db:"behavior" json:"behavior"`
	TrainerNotes        string              `db:"trainer_notes" json:"trainer_notes,omitempty"`
	Achievements        pq.StringArray      `db:"achievements" json:"achievements,omitempty"`
	Improvements        pq.StringArray      `db:"improvements" json:"improvements,omitempty"`

	NeedsAttention      bool `db:"needs_attention" json:"needs_attention"`
	AtRisk              bool `db:"at_risk" json:"at_risk"`
	Excelling           bool `db:"excelling" json:"excelling"`
	ParentContactNeeded bool `db:"parent_contact_needed" json:"parent_contact_needed"`

	SharedWithStudent bool       `db:"shared_with_student" json:"shared_with_student"`
	SharedWithParent  bool       `db:"shared_with_parent" json:"shared_with_parent"`
	SharedAt          *time.Time `db:"shared_at" json:"shared_at,omitempty"`

	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`

	// Derived fields, recomputed on every read and never persisted.
	AverageSkillRating float64 `db:"-" json:"average_skill_rating"`
	PerformanceScore   int     `db:"-" json:"performance_score"`
	ParticipationScore int     `db:"-" json:"participation_score"`
	NeedsReview        bool    `db:"-" json:"needs_review"`
}

// EvaluationFilter scopes evaluation list and aggregation queries. A zero
// Limit disables pagination; aggregation always streams the full set.
type EvaluationFilter struct {
	GroupID   string
	TrainerID string
	CourseID  string
	SessionID string
	StudentID string
	DateFrom  *time.Time
	DateTo    *time.Time
	Limit     int
	Offset    int
}

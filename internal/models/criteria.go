package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/lib/pq"
)

// CriteriaScope controls which groups a criteria definition applies to.
type CriteriaScope string

const (
	// CriteriaScopeCourse applies the definition to every group of the course.
	CriteriaScopeCourse CriteriaScope = "course"
	// CriteriaScopeGroups restricts the definition to an explicit group list.
	CriteriaScopeGroups CriteriaScope = "groups"
)

// Valid returns true when the scope is a supported value.
func (s CriteriaScope) Valid() bool {
	switch s {
	case CriteriaScopeCourse, CriteriaScopeGroups:
		return true
	default:
		return false
	}
}

// CriteriaStatus represents the lifecycle state of a criteria definition.
type CriteriaStatus string

const (
	CriteriaStatusActive   CriteriaStatus = "active"
	CriteriaStatusInactive CriteriaStatus = "inactive"
	CriteriaStatusArchived CriteriaStatus = "archived"
)

// Valid returns true when the status is a supported value.
func (s CriteriaStatus) Valid() bool {
	switch s {
	case CriteriaStatusActive, CriteriaStatusInactive, CriteriaStatusArchived:
		return true
	default:
		return false
	}
}

// ParameterType declares how a parameter value is interpreted and scored.
type ParameterType string

const (
	ParameterTypeRating     ParameterType = "rating"
	ParameterTypePercentage ParameterType = "percentage"
	ParameterTypeGrade      ParameterType = "grade"
	ParameterTypeBoolean    ParameterType = "boolean"
	ParameterTypeText       ParameterType = "text"
)

// Valid returns true when the type is a supported value.
func (t ParameterType) Valid() bool {
	switch t {
	case ParameterTypeRating, ParameterTypePercentage, ParameterTypeGrade, ParameterTypeBoolean, ParameterTypeText:
		return true
	default:
		return false
	}
}

// Default bounds for rating parameters and the overall rating scale.
const (
	DefaultRatingMin   = 1
	DefaultRatingMax   = 5
	DefaultRatingScale = 5
)

// ParameterSpec is one named, typed, weighted field within a criteria definition.
type ParameterSpec struct {
	Name      string        `json:"name"`
	Type      ParameterType `json:"type"`
	MinRating int           `json:"min_rating,omitempty"`
	MaxRating int           `json:"max_rating,omitempty"`
	Weight    float64       `json:"weight"`
	Required  bool          `json:"required"`
	Order     int           `json:"order"`
}

// RatingBounds returns the rating scale for the spec, defaulting to 1-5.
func (p ParameterSpec) RatingBounds() (min, max float64) {
	min, max = DefaultRatingMin, DefaultRatingMax
	if p.MinRating != 0 || p.MaxRating != 0 {
		min, max = float64(p.MinRating), float64(p.MaxRating)
	}
	return min, max
}

// ParameterSpecs is an ordered parameter list persisted as a JSONB document.
type ParameterSpecs []ParameterSpec

// Value implements driver.Valuer.
func (p ParameterSpecs) Value() (driver.Value, error) {
	if len(p) == 0 {
		return nil, nil
	}
	return json.Marshal(p)
}

// Scan implements sql.Scanner.
func (p *ParameterSpecs) Scan(src interface{}) error {
	if src == nil {
		*p = nil
		return nil
	}
	raw, ok := src.([]byte)
	if !ok {
		return fmt.Errorf("unsupported parameter specs source %T", src)
	}
	return json.Unmarshal(raw, p)
}

// EvaluationCriteria is a named, scoped configuration of evaluation parameters
// that trainers grade against. Definitions are archived, never deleted.
type EvaluationCriteria struct {
	ID                   string         `db:"id" json:"id"`
	CourseID             string         `db:"course_id" json:"course_id"`
	Scope                CriteriaScope  `db:"scope" json:"scope"`
	GroupIDs             pq.StringArray `db:"group_ids" json:"group_ids,omitempty"`
	Name                 string         `db:"name" json:"name"`
	Parameters           ParameterSpecs `db:"parameters" json:"parameters"`
	OverallRatingEnabled bool           `db:"overall_rating_enabled" json:"overall_rating_enabled"`
	OverallRatingScale   int            `db:"overall_rating_scale" json:"overall_rating_scale"`
	CommentsEnabled      bool           `db:"comments_enabled" json:"comments_enabled"`
	CommentsRequired     bool           `db:"comments_required" json:"comments_required"`
	Status               CriteriaStatus `db:"status" json:"status"`
	CreatedBy            string         `db:"created_by" json:"created_by"`
	CreatedAt            time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt            time.Time      `db:"updated_at" json:"updated_at"`
}

// FindParameter returns the spec with the given name, or nil.
func (c *EvaluationCriteria) FindParameter(name string) *ParameterSpec {
	for i := range c.Parameters {
		if c.Parameters[i].Name == name {
			return &c.Parameters[i]
		}
	}
	return nil
}

// CriteriaFilter allows listing criteria definitions.
type CriteriaFilter struct {
	CourseID string
	GroupID  string
	Status   *CriteriaStatus
}

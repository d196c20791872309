package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/trainbase/evaluation-api/internal/models"
)

const criteriaColumns = `id, course_id, scope, group_ids, name, parameters,
        overall_rating_enabled, overall_rating_scale, comments_enabled, comments_required,
        status, created_by, created_at, updated_at`

// CriteriaRepository manages persistence of evaluation criteria definitions.
type CriteriaRepository struct {
	db *sqlx.DB
}

// NewCriteriaRepository creates a new repository instance.
func NewCriteriaRepository(db *sqlx.DB) *CriteriaRepository {
	return &CriteriaRepository{db: db}
}

// List returns criteria definitions matching the provided filters, newest first.
func (r *CriteriaRepository) List(ctx context.Context, filter models.CriteriaFilter) ([]models.EvaluationCriteria, error) {
	query := `SELECT ` + criteriaColumns + ` FROM evaluation_criteria WHERE 1=1`
	args := []interface{}{}
	if filter.CourseID != "" {
		query += fmt.Sprintf(" AND course_id = $%d", len(args)+1)
		args = append(args, filter.CourseID)
	}
	if filter.GroupID != "" {
		query += fmt.Sprintf(" AND $%d = ANY(group_ids)", len(args)+1)
		args = append(args, filter.GroupID)
	}
	if filter.Status != nil {
		query += fmt.Sprintf(" AND status = $%d", len(args)+1)
		args = append(args, *filter.Status)
	}
	query += " ORDER BY created_at DESC"

	var definitions []models.EvaluationCriteria
	if err := r.db.SelectContext(ctx, &definitions, query, args...); err != nil {
		return nil, fmt.Errorf("list evaluation criteria: %w", err)
	}
	return definitions, nil
}

// FindByID returns a criteria definition by ID.
func (r *CriteriaRepository) FindByID(ctx context.Context, id string) (*models.EvaluationCriteria, error) {
	const query = `SELECT ` + criteriaColumns + ` FROM evaluation_criteria WHERE id = $1`
	var definition models.EvaluationCriteria
	if err := r.db.GetContext(ctx, &definition, query, id); err != nil {
		return nil, err
	}
	return &definition, nil
}

// FindActiveByGroup returns the active group-scoped definition targeting the
// group. When several match, the most recently updated one wins.
func (r *CriteriaRepository) FindActiveByGroup(ctx context.Context, groupID string) (*models.EvaluationCriteria, error) {
	const query = `SELECT ` + criteriaColumns + ` FROM evaluation_criteria
        WHERE status = $1 AND scope = $2 AND $3 = ANY(group_ids)
        ORDER BY updated_at DESC LIMIT 1`
	var definition models.EvaluationCriteria
	if err := r.db.GetContext(ctx, &definition, query, models.CriteriaStatusActive, models.CriteriaScopeGroups, groupID); err != nil {
		return nil, err
	}
	return &definition, nil
}

// FindActiveByCourse returns the active course-scoped definition for the course.
func (r *CriteriaRepository) FindActiveByCourse(ctx context.Context, courseID string) (*models.EvaluationCriteria, error) {
	const query = `SELECT ` + criteriaColumns + ` FROM evaluation_criteria
        WHERE status = $1 AND scope = $2 AND course_id = $3
        ORDER BY updated_at DESC LIMIT 1`
	var definition models.EvaluationCriteria
	if err := r.db.GetContext(ctx, &definition, query, models.CriteriaStatusActive, models.CriteriaScopeCourse, courseID); err != nil {
		return nil, err
	}
	return &definition, nil
}

// Create inserts a new criteria definition.
func (r *CriteriaRepository) Create(ctx context.Context, definition *models.EvaluationCriteria) error {
	if definition.ID == "" {
		definition.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if definition.CreatedAt.IsZero() {
		definition.CreatedAt = now
	}
	definition.UpdatedAt = now
	const query = `INSERT INTO evaluation_criteria
        (id, course_id, scope, group_ids, name, parameters, overall_rating_enabled, overall_rating_scale,
         comments_enabled, comments_required, status, created_by, created_at, updated_at)
        VALUES (:id, :course_id, :scope, :group_ids, :name, :parameters, :overall_rating_enabled, :overall_rating_scale,
         :comments_enabled, :comments_required, :status, :created_by, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, definition); err != nil {
		return fmt.Errorf("insert evaluation criteria: %w", err)
	}
	return nil
}

// Update rewrites a definition in place and bumps updated_at.
func (r *CriteriaRepository) Update(ctx context.Context, definition *models.EvaluationCriteria) error {
	definition.UpdatedAt = time.Now().UTC()
	const query = `UPDATE evaluation_criteria SET
        scope = :scope, group_ids = :group_ids, name = :name, parameters = :parameters,
        overall_rating_enabled = :overall_rating_enabled, overall_rating_scale = :overall_rating_scale,
        comments_enabled = :comments_enabled, comments_required = :comments_required,
        status = :status, updated_at = :updated_at
        WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, definition); err != nil {
		return fmt.Errorf("update evaluation criteria: %w", err)
	}
	return nil
}

// SetStatus transitions the lifecycle status of a definition.
func (r *CriteriaRepository) SetStatus(ctx context.Context, id string, status models.CriteriaStatus) error {
	const query = `UPDATE evaluation_criteria SET status = $2, updated_at = $3 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, status, time.Now().UTC()); err != nil {
		return fmt.Errorf("set criteria status: %w", err)
	}
	return nil
}

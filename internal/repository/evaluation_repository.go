package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/trainbase/evaluation-api/internal/models"
	appErrors "github.com/trainbase/evaluation-api/pkg/errors"
)

const evaluationColumns = `e.id, e.student_id, e.trainer_id, e.session_id, e.group_id,
        e.overall_rating, e.parameters, e.criteria_metadata, e.skill_ratings, e.attendance_status,
        e.participation_level, e.contribution_quality, e.engagement_level, e.comprehension_level,
        e.behavior, e.trainer_notes, e.achievements, e.improvements,
        e.needs_attention, e.at_risk, e.excelling, e.parent_contact_needed,
        e.shared_with_student, e.shared_with_parent, e.shared_at, e.created_at, e.updated_at`

const uniqueViolation = "23505"

// EvaluationRepository manages persistence of student evaluations. The one
// evaluation per (session, student) invariant is enforced by a unique index;
// the repository translates that violation into a typed Conflict error.
type EvaluationRepository struct {
	db *sqlx.DB
}

// NewEvaluationRepository creates a new repository instance.
func NewEvaluationRepository(db *sqlx.DB) *EvaluationRepository {
	return &EvaluationRepository{db: db}
}

// Create inserts a new evaluation together with its frozen criteria snapshot.
func (r *EvaluationRepository) Create(ctx context.Context, eval *models.StudentEvaluation) error {
	if eval.ID == "" {
		eval.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if eval.CreatedAt.IsZero() {
		eval.CreatedAt = now
	}
	eval.UpdatedAt = now
	const query = `INSERT INTO student_evaluations
        (id, student_id, trainer_id, session_id, group_id, overall_rating, parameters, criteria_metadata,
         skill_ratings, attendance_status, participation_level, contribution_quality, engagement_level,
         comprehension_level, behavior, trainer_notes, achievements, improvements,
         needs_attention, at_risk, excelling, parent_contact_needed,
         shared_with_student, shared_with_parent, shared_at, created_at, updated_at)
        VALUES (:id, :student_id, :trainer_id, :session_id, :group_id, :overall_rating, :parameters, :criteria_metadata,
         :skill_ratings, :attendance_status, :participation_level, :contribution_quality, :engagement_level,
         :comprehension_level, :behavior, :trainer_notes, :achievements, :improvements,
         :needs_attention, :at_risk, :excelling, :parent_contact_needed,
         :shared_with_student, :shared_with_parent, :shared_at, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, eval); err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return appErrors.Clone(appErrors.ErrConflict, "student already evaluated for this session")
		}
		return fmt.Errorf("insert student evaluation: %w", err)
	}
	return nil
}

// Update rewrites an evaluation in place. The criteria snapshot column is
// written as stored on the model; callers must never re-resolve it.
func (r *EvaluationRepository) Update(ctx context.Context, eval *models.StudentEvaluation) error {
	eval.UpdatedAt = time.Now().UTC()
	const query = `UPDATE student_evaluations SET
        overall_rating = :overall_rating, parameters = :parameters, criteria_metadata = :criteria_metadata,
        skill_ratings = :skill_ratings, attendance_status = :attendance_status,
        participation_level = :participation_level, contribution_quality = :contribution_quality,
        engagement_level = :engagement_level, comprehension_level = :comprehension_level,
        behavior = :behavior, trainer_notes = :trainer_notes, achievements = :achievements,
        improvements = :improvements, needs_attention = :needs_attention, at_risk = :at_risk,
        excelling = :excelling, parent_contact_needed = :parent_contact_needed,
        shared_with_student = :shared_with_student, shared_with_parent = :shared_with_parent,
        shared_at = :shared_at, updated_at = :updated_at
        WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, eval); err != nil {
		return fmt.Errorf("update student evaluation: %w", err)
	}
	return nil
}

// FindByID returns an evaluation by ID.
func (r *EvaluationRepository) FindByID(ctx context.Context, id string) (*models.StudentEvaluation, error) {
	const query = `SELECT ` + evaluationColumns + ` FROM student_evaluations e WHERE e.id = $1`
	var eval models.StudentEvaluation
	if err := r.db.GetContext(ctx, &eval, query, id); err != nil {
		return nil, err
	}
	return &eval, nil
}

// evaluationFilterSQL builds the join and WHERE clause shared by List and
// Count. The course filter joins through the group projection.
func evaluationFilterSQL(filter models.EvaluationFilter) (string, []interface{}) {
	clause := ""
	if filter.CourseID != "" {
		clause += ` JOIN groups g ON g.id = e.group_id`
	}
	clause += ` WHERE 1=1`
	args := []interface{}{}
	if filter.GroupID != "" {
		clause += fmt.Sprintf(" AND e.group_id = $%d", len(args)+1)
		args = append(args, filter.GroupID)
	}
	if filter.TrainerID != "" {
		clause += fmt.Sprintf(" AND e.trainer_id = $%d", len(args)+1)
		args = append(args, filter.TrainerID)
	}
	if filter.CourseID != "" {
		clause += fmt.Sprintf(" AND g.course_id = $%d", len(args)+1)
		args = append(args, filter.CourseID)
	}
	if filter.SessionID != "" {
		clause += fmt.Sprintf(" AND e.session_id = $%d", len(args)+1)
		args = append(args, filter.SessionID)
	}
	if filter.StudentID != "" {
		clause += fmt.Sprintf(" AND e.student_id = $%d", len(args)+1)
		args = append(args, filter.StudentID)
	}
	if filter.DateFrom != nil {
		clause += fmt.Sprintf(" AND e.created_at >= $%d", len(args)+1)
		args = append(args, *filter.DateFrom)
	}
	if filter.DateTo != nil {
		clause += fmt.Sprintf(" AND e.created_at <= $%d", len(args)+1)
		args = append(args, *filter.DateTo)
	}
	return clause, args
}

// List returns evaluations matching the provided filters, newest first.
func (r *EvaluationRepository) List(ctx context.Context, filter models.EvaluationFilter) ([]models.StudentEvaluation, error) {
	clause, args := evaluationFilterSQL(filter)
	query := `SELECT ` + evaluationColumns + ` FROM student_evaluations e` + clause + " ORDER BY e.created_at DESC"
	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", len(args)+1)
		args = append(args, filter.Limit)
	}
	if filter.Offset > 0 {
		query += fmt.Sprintf(" OFFSET $%d", len(args)+1)
		args = append(args, filter.Offset)
	}

	var evaluations []models.StudentEvaluation
	if err := r.db.SelectContext(ctx, &evaluations, query, args...); err != nil {
		return nil, fmt.Errorf("list student evaluations: %w", err)
	}
	return evaluations, nil
}

// Count returns how many evaluations match the filter, ignoring pagination.
func (r *EvaluationRepository) Count(ctx context.Context, filter models.EvaluationFilter) (int, error) {
	clause, args := evaluationFilterSQL(filter)
	query := `SELECT COUNT(*) FROM student_evaluations e` + clause
	var total int
	if err := r.db.GetContext(ctx, &total, query, args...); err != nil {
		return 0, fmt.Errorf("count student evaluations: %w", err)
	}
	return total, nil
}

// DeleteByGroup removes every evaluation of a deleted group and reports how
// many rows went away.
func (r *EvaluationRepository) DeleteByGroup(ctx context.Context, groupID string) (int64, error) {
	const query = `DELETE FROM student_evaluations WHERE group_id = $1`
	result, err := r.db.ExecContext(ctx, query, groupID)
	if err != nil {
		return 0, fmt.Errorf("delete evaluations by group: %w", err)
	}
	deleted, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("count deleted evaluations: %w", err)
	}
	return deleted, nil
}

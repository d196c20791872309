package repository

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/trainbase/evaluation-api/internal/models"
)

// GroupRepository reads the group projection maintained by the group/course
// collaborator. sql.ErrNoRows surfaces raw so callers can map it to a
// distinct "group not found" state.
type GroupRepository struct {
	db *sqlx.DB
}

// NewGroupRepository creates a new repository instance.
func NewGroupRepository(db *sqlx.DB) *GroupRepository {
	return &GroupRepository{db: db}
}

// FindByID returns the group with its owning course id.
func (r *GroupRepository) FindByID(ctx context.Context, id string) (*models.Group, error) {
	const query = `SELECT id, course_id, name, created_at FROM groups WHERE id = $1`
	var group models.Group
	if err := r.db.GetContext(ctx, &group, query, id); err != nil {
		return nil, err
	}
	return &group, nil
}

package service

import (
	"context"
	"database/sql"

	"go.uber.org/zap"

	"github.com/trainbase/evaluation-api/internal/models"
	appErrors "github.com/trainbase/evaluation-api/pkg/errors"
)

type activeCriteriaFinder interface {
	FindActiveByGroup(ctx context.Context, groupID string) (*models.EvaluationCriteria, error)
	FindActiveByCourse(ctx context.Context, courseID string) (*models.EvaluationCriteria, error)
}

type groupReader interface {
	FindByID(ctx context.Context, id string) (*models.Group, error)
}

// CriteriaResolver answers "which criteria apply to this group right now".
// Group-scoped definitions win over course-scoped ones; within a tier the
// most recently updated active definition applies.
type CriteriaResolver struct {
	criteria activeCriteriaFinder
	groups   groupReader
	logger   *zap.Logger
}

// NewCriteriaResolver constructs resolver.
func NewCriteriaResolver(criteria activeCriteriaFinder, groups groupReader, logger *zap.Logger) *CriteriaResolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CriteriaResolver{criteria: criteria, groups: groups, logger: logger}
}

// Resolve returns the criteria definition in force for the group. A missing
// group is NotFound; a group with no applicable definition is NoCriteria so
// callers can distinguish "wrong group" from "nothing configured yet".
func (s *CriteriaResolver) Resolve(ctx context.Context, groupID string) (*models.EvaluationCriteria, error) {
	group, err := s.groups.FindByID(ctx, groupID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "group not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load group")
	}

	definition, err := s.criteria.FindActiveByGroup(ctx, groupID)
	if err == nil {
		return definition, nil
	}
	if err != sql.ErrNoRows {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resolve criteria")
	}

	definition, err = s.criteria.FindActiveByCourse(ctx, group.CourseID)
	if err == nil {
		return definition, nil
	}
	if err != sql.ErrNoRows {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resolve criteria")
	}

	s.logger.Debug("no criteria configured", zap.String("group_id", groupID), zap.String("course_id", group.CourseID))
	return nil, appErrors.Clone(appErrors.ErrNoCriteria, "no evaluation criteria configured for group")
}

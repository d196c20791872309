package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/trainbase/evaluation-api/internal/models"
	"github.com/trainbase/evaluation-api/internal/scoring"
	appErrors "github.com/trainbase/evaluation-api/pkg/errors"
)

const analyticsCachePattern = "analytics:*"

type evaluationRepository interface {
	Create(ctx context.Context, eval *models.StudentEvaluation) error
	Update(ctx context.Context, eval *models.StudentEvaluation) error
	FindByID(ctx context.Context, id string) (*models.StudentEvaluation, error)
	List(ctx context.Context, filter models.EvaluationFilter) ([]models.StudentEvaluation, error)
	Count(ctx context.Context, filter models.EvaluationFilter) (int, error)
	DeleteByGroup(ctx context.Context, groupID string) (int64, error)
}

type criteriaResolver interface {
	Resolve(ctx context.Context, groupID string) (*models.EvaluationCriteria, error)
}

// CreateEvaluationRequest handles creation payload.
type CreateEvaluationRequest struct {
	StudentID string `json:"student_id" validate:"required"`
	SessionID string `json:"session_id" validate:"required"`
	GroupID   string `json:"group_id" validate:"required"`

	OverallRating int                    `json:"overall_rating"`
	Parameters    models.ParameterValues `json:"parameters"`

	SkillRatings        models.SkillRatings        `json:"skill_ratings"`
	AttendanceStatus    models.AttendanceStatus    `json:"attendance_status"`
	ParticipationLevel  models.EngagementLevel     `json:"participation_level"`
	ContributionQuality models.ContributionQuality `json:"contribution_quality"`
	EngagementLevel     models.EngagementLevel     `json:"engagement_level"`
	ComprehensionLevel  models.ComprehensionLevel  `json:"comprehension_level"`
	Behavior            models.BehaviorBlock       `json:"behavior"`
	TrainerNotes        string                     `json:"trainer_notes"`
	Achievements        []string                   `json:"achievements"`
	Improvements        []string                   `json:"improvements"`

	NeedsAttention      bool `json:"needs_attention"`
	AtRisk              bool `json:"at_risk"`
	Excelling           bool `json:"excelling"`
	ParentContactNeeded bool `json:"parent_contact_needed"`
}

// UpdateEvaluationRequest handles update payload.
type UpdateEvaluationRequest struct {
	OverallRating int                    `json:"overall_rating"`
	Parameters    models.ParameterValues `json:"parameters"`

	SkillRatings        models.SkillRatings        `json:"skill_ratings"`
	AttendanceStatus    models.AttendanceStatus    `json:"attendance_status"`
	ParticipationLevel  models.EngagementLevel     `json:"participation_level"`
	ContributionQuality models.ContributionQuality `json:"contribution_quality"`
	EngagementLevel     models.EngagementLevel     `json:"engagement_level"`
	ComprehensionLevel  models.ComprehensionLevel  `json:"comprehension_level"`
	Behavior            models.BehaviorBlock       `json:"behavior"`
	TrainerNotes        string                     `json:"trainer_notes"`
	Achievements        []string                   `json:"achievements"`
	Improvements        []string                   `json:"improvements"`

	NeedsAttention      bool `json:"needs_attention"`
	AtRisk              bool `json:"at_risk"`
	Excelling           bool `json:"excelling"`
	ParentContactNeeded bool `json:"parent_contact_needed"`
}

// ShareEvaluationRequest marks an evaluation as shared with its audiences.
type ShareEvaluationRequest struct {
	WithStudent bool `json:"with_student"`
	WithParent  bool `json:"with_parent"`
}

// EvaluationService records and maintains student evaluations. Each new
// evaluation freezes a copy of the resolved criteria so later edits to the
// live definition never change how stored evaluations are scored.
type EvaluationService struct {
	repo      evaluationRepository
	resolver  criteriaResolver
	cache     *CacheService
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewEvaluationService constructs service.
func NewEvaluationService(repo evaluationRepository, resolver criteriaResolver, cache *CacheService, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger) *EvaluationService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EvaluationService{repo: repo, resolver: resolver, cache: cache, metrics: metrics, validator: validate, logger: logger}
}

// Create records a new evaluation. The criteria in force for the group are
// resolved once, validated against, and frozen onto the evaluation. Groups
// without any configured criteria still accept legacy-only evaluations.
func (s *EvaluationService) Create(ctx context.Context, trainerID string, req CreateEvaluationRequest) (*models.StudentEvaluation, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid evaluation payload")
	}

	definition, err := s.resolver.Resolve(ctx, req.GroupID)
	if err != nil {
		var typed *appErrors.Error
		if errors.As(err, &typed) && typed.Code == appErrors.ErrNoCriteria.Code && len(req.Parameters) == 0 {
			definition = nil
		} else {
			return nil, err
		}
	}

	eval := &models.StudentEvaluation{
		StudentID:           req.StudentID,
		TrainerID:           trainerID,
		SessionID:           req.SessionID,
		GroupID:             req.GroupID,
		OverallRating:       req.OverallRating,
		Parameters:          req.Parameters,
		SkillRatings:        req.SkillRatings,
		AttendanceStatus:    req.AttendanceStatus,
		ParticipationLevel:  req.ParticipationLevel,
		ContributionQuality: req.ContributionQuality,
		EngagementLevel:     req.EngagementLevel,
		ComprehensionLevel:  req.ComprehensionLevel,
		Behavior:            req.Behavior,
		TrainerNotes:        req.TrainerNotes,
		Achievements:        req.Achievements,
		Improvements:        req.Improvements,
		NeedsAttention:      req.NeedsAttention,
		AtRisk:              req.AtRisk,
		Excelling:           req.Excelling,
		ParentContactNeeded: req.ParentContactNeeded,
	}

	if definition != nil {
		snapshot := freezeSnapshot(definition)
		if err := validateAgainstSnapshot(snapshot, eval); err != nil {
			return nil, err
		}
		eval.CriteriaMetadata = snapshot
	} else if err := validateLegacyFields(eval); err != nil {
		return nil, err
	}

	scoring.Apply(eval)

	if err := s.repo.Create(ctx, eval); err != nil {
		var typed *appErrors.Error
		if errors.As(err, &typed) {
			return nil, typed
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create evaluation")
	}

	s.invalidateAnalytics(ctx)
	s.decorate(eval)
	s.logger.Info("evaluation created",
		zap.String("evaluation_id", eval.ID),
		zap.String("session_id", eval.SessionID),
		zap.String("student_id", eval.StudentID))
	return eval, nil
}

// Update rewrites an evaluation. Only the recording trainer may edit it, and
// the update is validated against the evaluation's own frozen snapshot, never
// against the current live definition.
func (s *EvaluationService) Update(ctx context.Context, trainerID, id string, req UpdateEvaluationRequest) (*models.StudentEvaluation, error) {
	eval, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "evaluation not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load evaluation")
	}
	if eval.TrainerID != trainerID {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "evaluation belongs to another trainer")
	}

	eval.OverallRating = req.OverallRating
	eval.Parameters = req.Parameters
	eval.SkillRatings = req.SkillRatings
	eval.AttendanceStatus = req.AttendanceStatus
	eval.ParticipationLevel = req.ParticipationLevel
	eval.ContributionQuality = req.ContributionQuality
	eval.EngagementLevel = req.EngagementLevel
	eval.ComprehensionLevel = req.ComprehensionLevel
	eval.Behavior = req.Behavior
	eval.TrainerNotes = req.TrainerNotes
	eval.Achievements = req.Achievements
	eval.Improvements = req.Improvements
	eval.NeedsAttention = req.NeedsAttention
	eval.AtRisk = req.AtRisk
	eval.Excelling = req.Excelling
	eval.ParentContactNeeded = req.ParentContactNeeded

	if !eval.CriteriaMetadata.IsZero() {
		if err := validateAgainstSnapshot(eval.CriteriaMetadata, eval); err != nil {
			return nil, err
		}
	} else if err := validateLegacyFields(eval); err != nil {
		return nil, err
	}

	scoring.Apply(eval)

	if err := s.repo.Update(ctx, eval); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update evaluation")
	}

	s.invalidateAnalytics(ctx)
	s.decorate(eval)
	return eval, nil
}

// Get returns an evaluation by ID with derived fields populated.
func (s *EvaluationService) Get(ctx context.Context, id string) (*models.StudentEvaluation, error) {
	eval, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "evaluation not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load evaluation")
	}
	s.decorate(eval)
	return eval, nil
}

// List returns evaluations for filter with derived fields populated. When the
// filter carries a page size the matching total is counted for pagination
// metadata; an unpaginated filter returns nil metadata.
func (s *EvaluationService) List(ctx context.Context, filter models.EvaluationFilter) ([]models.StudentEvaluation, *models.Pagination, error) {
	evaluations, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list evaluations")
	}
	for i := range evaluations {
		s.decorate(&evaluations[i])
	}

	var pagination *models.Pagination
	if filter.Limit > 0 {
		total, err := s.repo.Count(ctx, filter)
		if err != nil {
			return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count evaluations")
		}
		pagination = &models.Pagination{
			Page:       filter.Offset/filter.Limit + 1,
			PageSize:   filter.Limit,
			TotalCount: total,
		}
	}
	return evaluations, pagination, nil
}

// Share marks an evaluation as shared with the student and/or their parent.
func (s *EvaluationService) Share(ctx context.Context, id string, req ShareEvaluationRequest) (*models.StudentEvaluation, error) {
	eval, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "evaluation not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load evaluation")
	}

	eval.SharedWithStudent = eval.SharedWithStudent || req.WithStudent
	eval.SharedWithParent = eval.SharedWithParent || req.WithParent
	if (eval.SharedWithStudent || eval.SharedWithParent) && eval.SharedAt == nil {
		now := time.Now().UTC()
		eval.SharedAt = &now
	}

	if err := s.repo.Update(ctx, eval); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to share evaluation")
	}
	s.decorate(eval)
	return eval, nil
}

// DeleteByGroup removes all evaluations of a group. Called when the group
// itself is deleted by the group/course collaborator.
func (s *EvaluationService) DeleteByGroup(ctx context.Context, groupID string) (int64, error) {
	deleted, err := s.repo.DeleteByGroup(ctx, groupID)
	if err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete evaluations")
	}
	if deleted > 0 {
		s.invalidateAnalytics(ctx)
		s.logger.Info("group evaluations deleted", zap.String("group_id", groupID), zap.Int64("count", deleted))
	}
	return deleted, nil
}

func (s *EvaluationService) decorate(eval *models.StudentEvaluation) {
	eval.AverageSkillRating = scoring.AverageSkillRating(eval.SkillRatings)
	eval.PerformanceScore = scoring.Compute(eval)
	eval.ParticipationScore = scoring.ParticipationScore(eval.ParticipationLevel, eval.ContributionQuality)
	eval.NeedsReview = scoring.NeedsReview(eval)
	s.metrics.ObserveEvaluationScored()
}

func (s *EvaluationService) invalidateAnalytics(ctx context.Context) {
	if err := s.cache.Invalidate(ctx, analyticsCachePattern); err != nil {
		s.logger.Warn("analytics cache invalidation failed", zap.Error(err))
	}
}

// freezeSnapshot copies the definition metadata the scoring engine needs. The
// parameter slice is copied so later definition edits cannot alias into it.
func freezeSnapshot(definition *models.EvaluationCriteria) models.CriteriaSnapshot {
	params := make(models.ParameterSpecs, len(definition.Parameters))
	copy(params, definition.Parameters)
	scale := definition.OverallRatingScale
	if scale <= 0 {
		scale = models.DefaultRatingScale
	}
	return models.CriteriaSnapshot{
		CriteriaID:           definition.ID,
		Name:                 definition.Name,
		OverallRatingEnabled: definition.OverallRatingEnabled,
		OverallRatingScale:   scale,
		CommentsRequired:     definition.CommentsEnabled && definition.CommentsRequired,
		Parameters:           params,
	}
}

// validateAgainstSnapshot checks the recorded values against the frozen
// parameter specs: no unknown names, all required parameters present, each
// value of the declared dynamic type and within bounds.
func validateAgainstSnapshot(snapshot models.CriteriaSnapshot, eval *models.StudentEvaluation) error {
	for name := range eval.Parameters {
		if snapshot.FindParameter(name) == nil {
			return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown parameter %s", name))
		}
	}

	var missing []string
	for _, spec := range snapshot.Parameters {
		value, ok := eval.Parameters[spec.Name]
		if !ok || value.Kind == "" {
			if spec.Required {
				missing = append(missing, spec.Name)
			}
			continue
		}
		if err := validateValue(spec, value); err != nil {
			return err
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("missing required parameters: %s", strings.Join(missing, ", ")))
	}

	if snapshot.OverallRatingEnabled {
		scale := snapshot.OverallRatingScale
		if scale <= 0 {
			scale = models.DefaultRatingScale
		}
		if eval.OverallRating < 1 || eval.OverallRating > scale {
			return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("overall rating must be between 1 and %d", scale))
		}
	}
	if snapshot.CommentsRequired && strings.TrimSpace(eval.TrainerNotes) == "" {
		return appErrors.Clone(appErrors.ErrValidation, "trainer notes are required")
	}

	return validateLegacyFields(eval)
}

func validateValue(spec models.ParameterSpec, value models.ParameterValue) error {
	switch spec.Type {
	case models.ParameterTypeRating:
		if value.Kind != models.ValueKindNumber {
			return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("parameter %s expects a number", spec.Name))
		}
		min, max := spec.RatingBounds()
		if value.Number < min || value.Number > max {
			return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("parameter %s must be between %g and %g", spec.Name, min, max))
		}
	case models.ParameterTypePercentage:
		if value.Kind != models.ValueKindNumber {
			return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("parameter %s expects a number", spec.Name))
		}
		if value.Number < 0 || value.Number > 100 {
			return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("parameter %s must be between 0 and 100", spec.Name))
		}
	case models.ParameterTypeGrade:
		if value.Kind != models.ValueKindString {
			return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("parameter %s expects a letter grade", spec.Name))
		}
		switch strings.ToUpper(strings.TrimSpace(value.Text)) {
		case "A", "B", "C", "D", "F":
		default:
			return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("parameter %s expects a grade A-F", spec.Name))
		}
	case models.ParameterTypeBoolean:
		if value.Kind != models.ValueKindBool {
			return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("parameter %s expects a boolean", spec.Name))
		}
	case models.ParameterTypeText:
		if value.Kind != models.ValueKindString {
			return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("parameter %s expects text", spec.Name))
		}
	}
	return nil
}

// validateLegacyFields checks the structured legacy enums when present.
func validateLegacyFields(eval *models.StudentEvaluation) error {
	if eval.AttendanceStatus != "" && !eval.AttendanceStatus.Valid() {
		return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported attendance status %s", eval.AttendanceStatus))
	}
	if eval.ParticipationLevel != "" && !eval.ParticipationLevel.Valid() {
		return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported participation level %s", eval.ParticipationLevel))
	}
	if eval.EngagementLevel != "" && !eval.EngagementLevel.Valid() {
		return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported engagement level %s", eval.EngagementLevel))
	}
	for _, rating := range eval.SkillRatings.All() {
		if rating < 0 || rating > 5 {
			return appErrors.Clone(appErrors.ErrValidation, "skill ratings must be between 0 and 5")
		}
	}
	if eval.Behavior.Focus < 0 || eval.Behavior.Focus > 5 {
		return appErrors.Clone(appErrors.ErrValidation, "behavior focus must be between 0 and 5")
	}
	return nil
}

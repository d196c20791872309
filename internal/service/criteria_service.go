package service

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/trainbase/evaluation-api/internal/models"
	appErrors "github.com/trainbase/evaluation-api/pkg/errors"
)

type criteriaRepository interface {
	List(ctx context.Context, filter models.CriteriaFilter) ([]models.EvaluationCriteria, error)
	FindByID(ctx context.Context, id string) (*models.EvaluationCriteria, error)
	Create(ctx context.Context, definition *models.EvaluationCriteria) error
	Update(ctx context.Context, definition *models.EvaluationCriteria) error
	SetStatus(ctx context.Context, id string, status models.CriteriaStatus) error
}

// CriteriaParameterRequest captures one parameter definition in a payload.
type CriteriaParameterRequest struct {
	Name      string               `json:"name" validate:"required"`
	Type      models.ParameterType `json:"type" validate:"required"`
	MinRating int                  `json:"min_rating"`
	MaxRating int                  `json:"max_rating"`
	Weight    float64              `json:"weight"`
	Required  bool                 `json:"required"`
	Order     int                  `json:"order"`
}

// CreateCriteriaRequest handles creation payload.
type CreateCriteriaRequest struct {
	CourseID             string                     `json:"course_id" validate:"required"`
	Scope                models.CriteriaScope       `json:"scope" validate:"required"`
	GroupIDs             []string                   `json:"group_ids"`
	Name                 string                     `json:"name" validate:"required"`
	Parameters           []CriteriaParameterRequest `json:"parameters" validate:"dive"`
	OverallRatingEnabled bool                       `json:"overall_rating_enabled"`
	OverallRatingScale   int                        `json:"overall_rating_scale"`
	CommentsEnabled      bool                       `json:"comments_enabled"`
	CommentsRequired     bool                       `json:"comments_required"`
}

// UpdateCriteriaRequest handles update payload.
type UpdateCriteriaRequest struct {
	Scope                models.CriteriaScope       `json:"scope" validate:"required"`
	GroupIDs             []string                   `json:"group_ids"`
	Name                 string                     `json:"name" validate:"required"`
	Parameters           []CriteriaParameterRequest `json:"parameters" validate:"dive"`
	OverallRatingEnabled bool                       `json:"overall_rating_enabled"`
	OverallRatingScale   int                        `json:"overall_rating_scale"`
	CommentsEnabled      bool                       `json:"comments_enabled"`
	CommentsRequired     bool                       `json:"comments_required"`
}

// ValidateWeightsRequest carries a parameter list to check without saving.
type ValidateWeightsRequest struct {
	Parameters []CriteriaParameterRequest `json:"parameters" validate:"required,dive"`
}

// WeightValidation reports the outcome of a weight check.
type WeightValidation struct {
	TotalWeight float64 `json:"total_weight"`
	Valid       bool    `json:"valid"`
}

// CriteriaService manages the lifecycle of evaluation criteria definitions.
type CriteriaService struct {
	repo      criteriaRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewCriteriaService constructs service.
func NewCriteriaService(repo criteriaRepository, validate *validator.Validate, logger *zap.Logger) *CriteriaService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CriteriaService{repo: repo, validator: validate, logger: logger}
}

// List returns criteria definitions for filter.
func (s *CriteriaService) List(ctx context.Context, filter models.CriteriaFilter) ([]models.EvaluationCriteria, error) {
	definitions, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list criteria")
	}
	return definitions, nil
}

// Get returns a criteria definition by ID.
func (s *CriteriaService) Get(ctx context.Context, id string) (*models.EvaluationCriteria, error) {
	definition, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "criteria not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load criteria")
	}
	return definition, nil
}

// Create inserts a new criteria definition. New definitions start active.
func (s *CriteriaService) Create(ctx context.Context, createdBy string, req CreateCriteriaRequest) (*models.EvaluationCriteria, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid criteria payload")
	}
	if err := validateScope(req.Scope, req.GroupIDs); err != nil {
		return nil, err
	}
	if err := validateParameters(req.Parameters); err != nil {
		return nil, err
	}
	definition := &models.EvaluationCriteria{
		CourseID:             req.CourseID,
		Scope:                req.Scope,
		GroupIDs:             req.GroupIDs,
		Name:                 req.Name,
		Parameters:           toParameterSpecs(req.Parameters),
		OverallRatingEnabled: req.OverallRatingEnabled,
		OverallRatingScale:   normalizeScale(req.OverallRatingScale),
		CommentsEnabled:      req.CommentsEnabled,
		CommentsRequired:     req.CommentsRequired,
		Status:               models.CriteriaStatusActive,
		CreatedBy:            createdBy,
	}
	if err := s.repo.Create(ctx, definition); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create criteria")
	}
	return definition, nil
}

// Update modifies an existing definition. Archived definitions are immutable.
// Evaluations already recorded keep their frozen snapshot; the edit only
// affects evaluations created afterwards.
func (s *CriteriaService) Update(ctx context.Context, id string, req UpdateCriteriaRequest) (*models.EvaluationCriteria, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid criteria payload")
	}
	definition, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "criteria not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load criteria")
	}
	if definition.Status == models.CriteriaStatusArchived {
		return nil, appErrors.Clone(appErrors.ErrConflict, "criteria archived")
	}
	if err := validateScope(req.Scope, req.GroupIDs); err != nil {
		return nil, err
	}
	if err := validateParameters(req.Parameters); err != nil {
		return nil, err
	}
	definition.Scope = req.Scope
	definition.GroupIDs = req.GroupIDs
	definition.Name = req.Name
	definition.Parameters = toParameterSpecs(req.Parameters)
	definition.OverallRatingEnabled = req.OverallRatingEnabled
	definition.OverallRatingScale = normalizeScale(req.OverallRatingScale)
	definition.CommentsEnabled = req.CommentsEnabled
	definition.CommentsRequired = req.CommentsRequired
	if err := s.repo.Update(ctx, definition); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update criteria")
	}
	return definition, nil
}

// UpdateStatus transitions a definition between lifecycle states. Archiving
// is terminal: an archived definition can never become active again.
func (s *CriteriaService) UpdateStatus(ctx context.Context, id string, status models.CriteriaStatus) (*models.EvaluationCriteria, error) {
	if !status.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported status %s", status))
	}
	definition, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "criteria not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load criteria")
	}
	if definition.Status == status {
		return definition, nil
	}
	if definition.Status == models.CriteriaStatusArchived {
		return nil, appErrors.Clone(appErrors.ErrConflict, "criteria archived")
	}
	if err := s.repo.SetStatus(ctx, id, status); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update criteria status")
	}
	definition.Status = status
	return definition, nil
}

// Archive retires a definition. Existing evaluations are untouched because
// they carry their own frozen snapshot.
func (s *CriteriaService) Archive(ctx context.Context, id string) (*models.EvaluationCriteria, error) {
	return s.UpdateStatus(ctx, id, models.CriteriaStatusArchived)
}

// ValidateWeights checks a parameter list without persisting anything.
// Trainers use it from the builder UI before saving.
func (s *CriteriaService) ValidateWeights(req ValidateWeightsRequest) (*WeightValidation, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid parameters payload")
	}
	if err := validateParameters(req.Parameters); err != nil {
		return nil, err
	}
	total := 0.0
	for _, p := range req.Parameters {
		total += p.Weight
	}
	if total != 0 && (total < 99.999 || total > 100.001) {
		return &WeightValidation{TotalWeight: total, Valid: false}, appErrors.Clone(appErrors.ErrInvalidWeights, fmt.Sprintf("weights sum to %.2f, expected 100", total))
	}
	return &WeightValidation{TotalWeight: total, Valid: true}, nil
}

func validateScope(scope models.CriteriaScope, groupIDs []string) error {
	if !scope.Valid() {
		return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported scope %s", scope))
	}
	if scope == models.CriteriaScopeGroups && len(groupIDs) == 0 {
		return appErrors.Clone(appErrors.ErrValidation, "group scope requires at least one group")
	}
	if scope == models.CriteriaScopeCourse && len(groupIDs) > 0 {
		return appErrors.Clone(appErrors.ErrValidation, "course scope must not list groups")
	}
	return nil
}

// validateParameters enforces per-parameter shape. Weight totals are left
// permissive here: partially filled evaluations rescale at scoring time, and
// the builder calls ValidateWeights for the strict check.
func validateParameters(params []CriteriaParameterRequest) error {
	seen := make(map[string]struct{}, len(params))
	for _, p := range params {
		if _, ok := seen[p.Name]; ok {
			return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("duplicate parameter %s", p.Name))
		}
		seen[p.Name] = struct{}{}
		if !p.Type.Valid() {
			return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported parameter type %s", p.Type))
		}
		if p.Weight < 0 || p.Weight > 100 {
			return appErrors.Clone(appErrors.ErrInvalidWeights, fmt.Sprintf("parameter %s weight out of range", p.Name))
		}
		if p.Type == models.ParameterTypeRating && (p.MinRating != 0 || p.MaxRating != 0) && p.MinRating >= p.MaxRating {
			return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("parameter %s has invalid rating bounds", p.Name))
		}
	}
	return nil
}

func toParameterSpecs(params []CriteriaParameterRequest) models.ParameterSpecs {
	specs := make(models.ParameterSpecs, len(params))
	for i, p := range params {
		specs[i] = models.ParameterSpec{
			Name:      p.Name,
			Type:      p.Type,
			MinRating: p.MinRating,
			MaxRating: p.MaxRating,
			Weight:    p.Weight,
			Required:  p.Required,
			Order:     p.Order,
		}
	}
	return specs
}

func normalizeScale(scale int) int {
	if scale <= 0 {
		return models.DefaultRatingScale
	}
	return scale
}

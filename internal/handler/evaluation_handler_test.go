package handler

import (
	"bytes"
	"context"
	"database/sql"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	internalmiddleware "github.com/trainbase/evaluation-api/internal/middleware"
	"github.com/trainbase/evaluation-api/internal/models"
	"github.com/trainbase/evaluation-api/internal/service"
	appErrors "github.com/trainbase/evaluation-api/pkg/errors"
)

type fakeEvaluationRepo struct {
	evaluations map[string]*models.StudentEvaluation
	conflict    bool
}

func (f *fakeEvaluationRepo) Create(ctx context.Context, eval *models.StudentEvaluation) error {
	if f.conflict {
		return appErrors.Clone(appErrors.ErrConflict, "student already evaluated for this session")
	}
	if f.evaluations == nil {
		f.evaluations = make(map[string]*models.StudentEvaluation)
	}
	eval.ID = "eval-1"
	copied := *eval
	f.evaluations[eval.ID] = &copied
	return nil
}

func (f *fakeEvaluationRepo) Update(ctx context.Context, eval *models.StudentEvaluation) error {
	copied := *eval
	f.evaluations[eval.ID] = &copied
	return nil
}

func (f *fakeEvaluationRepo) FindByID(ctx context.Context, id string) (*models.StudentEvaluation, error) {
	if e, ok := f.evaluations[id]; ok {
		copied := *e
		return &copied, nil
	}
	return nil, sql.ErrNoRows
}

func (f *fakeEvaluationRepo) List(ctx context.Context, filter models.EvaluationFilter) ([]models.StudentEvaluation, error) {
	var out []models.StudentEvaluation
	for _, e := range f.evaluations {
		out = append(out, *e)
	}
	return out, nil
}

func (f *fakeEvaluationRepo) Count(ctx context.Context, filter models.EvaluationFilter) (int, error) {
	return len(f.evaluations), nil
}

func (f *fakeEvaluationRepo) DeleteByGroup(ctx context.Context, groupID string) (int64, error) {
	var deleted int64
	for id, e := range f.evaluations {
		if e.GroupID == groupID {
			delete(f.evaluations, id)
			deleted++
		}
	}
	return deleted, nil
}

type fakeResolver struct {
	definition *models.EvaluationCriteria
}

func (f *fakeResolver) Resolve(ctx context.Context, groupID string) (*models.EvaluationCriteria, error) {
	if f.definition == nil {
		return nil, appErrors.Clone(appErrors.ErrNoCriteria, "no evaluation criteria configured for group")
	}
	return f.definition, nil
}

func buildEvaluationRouter(repo *fakeEvaluationRepo, resolver *fakeResolver) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(func(c *gin.Context) {
		if user := c.GetHeader("X-Test-User"); user != "" {
			c.Set(internalmiddleware.ContextUserKey, &models.JWTClaims{UserID: user, Role: "trainer"})
		}
		c.Next()
	})

	cache := service.NewCacheService(nil, nil, 0, zap.NewNop(), false)
	svc := service.NewEvaluationService(repo, resolver, cache, service.NewMetricsService(), validator.New(), zap.NewNop())
	h := NewEvaluationHandler(svc)

	router.POST("/evaluations", h.Create)
	router.GET("/evaluations", h.List)
	router.GET("/evaluations/:id", h.Get)
	router.PUT("/evaluations/:id", h.Update)
	router.POST("/evaluations/:id/share", h.Share)
	router.DELETE("/groups/:groupId/evaluations", h.DeleteByGroup)
	return router
}

func performRequest(router *gin.Engine, req *http.Request) *httptest.ResponseRecorder {
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	return resp
}

const createEvaluationPayload = `{
	"student_id": "student-1",
	"session_id": "session-1",
	"group_id": "group-1",
	"overall_rating": 4,
	"parameters": {"Homework": 5},
	"trainer_notes": "good"
}`

func evaluationCriteria() *models.EvaluationCriteria {
	return &models.EvaluationCriteria{
		ID:       "crit-1",
		CourseID: "course-1",
		Scope:    models.CriteriaScopeGroups,
		GroupIDs: []string{"group-1"},
		Name:     "Weekly",
		Parameters: models.ParameterSpecs{
			{Name: "Homework", Type: models.ParameterTypeRating, Weight: 100, Required: true},
		},
		OverallRatingEnabled: true,
		OverallRatingScale:   5,
		Status:               models.CriteriaStatusActive,
	}
}

func TestEvaluationHandlerCreate(t *testing.T) {
	router := buildEvaluationRouter(&fakeEvaluationRepo{}, &fakeResolver{definition: evaluationCriteria()})

	req, _ := http.NewRequest(http.MethodPost, "/evaluations", bytes.NewBufferString(createEvaluationPayload))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Test-User", "trainer-1")
	resp := performRequest(router, req)
	require.Equal(t, http.StatusCreated, resp.Code)
	require.Contains(t, resp.Body.String(), `"performance_score":100`)
	require.Contains(t, resp.Body.String(), `"criteria_id":"crit-1"`)
}

func TestEvaluationHandlerCreateUnauthenticated(t *testing.T) {
	router := buildEvaluationRouter(&fakeEvaluationRepo{}, &fakeResolver{definition: evaluationCriteria()})

	req, _ := http.NewRequest(http.MethodPost, "/evaluations", bytes.NewBufferString(createEvaluationPayload))
	req.Header.Set("Content-Type", "application/json")
	resp := performRequest(router, req)
	require.Equal(t, http.StatusUnauthorized, resp.Code)
}

func TestEvaluationHandlerCreateConflict(t *testing.T) {
	router := buildEvaluationRouter(&fakeEvaluationRepo{conflict: true}, &fakeResolver{definition: evaluationCriteria()})

	req, _ := http.NewRequest(http.MethodPost, "/evaluations", bytes.NewBufferString(createEvaluationPayload))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Test-User", "trainer-1")
	resp := performRequest(router, req)
	require.Equal(t, http.StatusConflict, resp.Code)
	require.Contains(t, resp.Body.String(), "CONFLICT")
}

func TestEvaluationHandlerGetNotFound(t *testing.T) {
	router := buildEvaluationRouter(&fakeEvaluationRepo{}, &fakeResolver{})

	req, _ := http.NewRequest(http.MethodGet, "/evaluations/missing", nil)
	resp := performRequest(router, req)
	require.Equal(t, http.StatusNotFound, resp.Code)
}

func TestEvaluationHandlerListRejectsBadDates(t *testing.T) {
	router := buildEvaluationRouter(&fakeEvaluationRepo{}, &fakeResolver{})

	req, _ := http.NewRequest(http.MethodGet, "/evaluations?dateFrom=yesterday", nil)
	resp := performRequest(router, req)
	require.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestEvaluationHandlerShare(t *testing.T) {
	repo := &fakeEvaluationRepo{evaluations: map[string]*models.StudentEvaluation{
		"eval-1": {ID: "eval-1", TrainerID: "trainer-1", GroupID: "group-1"},
	}}
	router := buildEvaluationRouter(repo, &fakeResolver{})

	req, _ := http.NewRequest(http.MethodPost, "/evaluations/eval-1/share", bytes.NewBufferString(`{"with_student":true}`))
	req.Header.Set("Content-Type", "application/json")
	resp := performRequest(router, req)
	require.Equal(t, http.StatusOK, resp.Code)
	require.Contains(t, resp.Body.String(), `"shared_with_student":true`)
}

func TestEvaluationHandlerDeleteByGroup(t *testing.T) {
	repo := &fakeEvaluationRepo{evaluations: map[string]*models.StudentEvaluation{
		"eval-1": {ID: "eval-1", GroupID: "group-1"},
		"eval-2": {ID: "eval-2", GroupID: "group-2"},
	}}
	router := buildEvaluationRouter(repo, &fakeResolver{})

	req, _ := http.NewRequest(http.MethodDelete, "/groups/group-1/evaluations", nil)
	resp := performRequest(router, req)
	require.Equal(t, http.StatusOK, resp.Code)
	require.Contains(t, resp.Body.String(), `"deleted":1`)
}

func TestEvaluationHandlerListPagination(t *testing.T) {
	repo := &fakeEvaluationRepo{evaluations: map[string]*models.StudentEvaluation{
		"eval-1": {ID: "eval-1", GroupID: "group-1"},
	}}
	router := buildEvaluationRouter(repo, &fakeResolver{})

	req, _ := http.NewRequest(http.MethodGet, "/evaluations?pageSize=1", nil)
	resp := performRequest(router, req)
	require.Equal(t, http.StatusOK, resp.Code)
	require.Contains(t, resp.Body.String(), `"page":1`)
	require.Contains(t, resp.Body.String(), `"page_size":1`)
	require.Contains(t, resp.Body.String(), `"total_count":1`)
}

func TestEvaluationHandlerListRejectsBadPageSize(t *testing.T) {
	router := buildEvaluationRouter(&fakeEvaluationRepo{}, &fakeResolver{})

	req, _ := http.NewRequest(http.MethodGet, "/evaluations?pageSize=lots", nil)
	resp := performRequest(router, req)
	require.Equal(t, http.StatusBadRequest, resp.Code)
}

package handler

import (
	"bytes"
	"context"
	"database/sql"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	internalmiddleware "github.com/trainbase/evaluation-api/internal/middleware"
	"github.com/trainbase/evaluation-api/internal/models"
	"github.com/trainbase/evaluation-api/internal/service"
)

type fakeCriteriaRepo struct {
	definitions map[string]*models.EvaluationCriteria
}

func (f *fakeCriteriaRepo) List(ctx context.Context, filter models.CriteriaFilter) ([]models.EvaluationCriteria, error) {
	var out []models.EvaluationCriteria
	for _, d := range f.definitions {
		out = append(out, *d)
	}
	return out, nil
}

func (f *fakeCriteriaRepo) FindByID(ctx context.Context, id string) (*models.EvaluationCriteria, error) {
	if d, ok := f.definitions[id]; ok {
		return d, nil
	}
	return nil, sql.ErrNoRows
}

func (f *fakeCriteriaRepo) FindActiveByGroup(ctx context.Context, groupID string) (*models.EvaluationCriteria, error) {
	for _, d := range f.definitions {
		if d.Status != models.CriteriaStatusActive || d.Scope != models.CriteriaScopeGroups {
			continue
		}
		for _, g := range d.GroupIDs {
			if g == groupID {
				return d, nil
			}
		}
	}
	return nil, sql.ErrNoRows
}

func (f *fakeCriteriaRepo) FindActiveByCourse(ctx context.Context, courseID string) (*models.EvaluationCriteria, error) {
	for _, d := range f.definitions {
		if d.Status == models.CriteriaStatusActive && d.Scope == models.CriteriaScopeCourse && d.CourseID == courseID {
			return d, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (f *fakeCriteriaRepo) Create(ctx context.Context, definition *models.EvaluationCriteria) error {
	if f.definitions == nil {
		f.definitions = make(map[string]*models.EvaluationCriteria)
	}
	definition.ID = "crit-1"
	f.definitions[definition.ID] = definition
	return nil
}

func (f *fakeCriteriaRepo) Update(ctx context.Context, definition *models.EvaluationCriteria) error {
	f.definitions[definition.ID] = definition
	return nil
}

func (f *fakeCriteriaRepo) SetStatus(ctx context.Context, id string, status models.CriteriaStatus) error {
	if d, ok := f.definitions[id]; ok {
		d.Status = status
	}
	return nil
}

type fakeGroupReader struct {
	groups map[string]*models.Group
}

func (f *fakeGroupReader) FindByID(ctx context.Context, id string) (*models.Group, error) {
	if g, ok := f.groups[id]; ok {
		return g, nil
	}
	return nil, sql.ErrNoRows
}

func buildCriteriaRouter(repo *fakeCriteriaRepo, groups *fakeGroupReader) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(func(c *gin.Context) {
		if user := c.GetHeader("X-Test-User"); user != "" {
			c.Set(internalmiddleware.ContextUserKey, &models.JWTClaims{UserID: user, Role: "coordinator"})
		}
		c.Next()
	})

	svc := service.NewCriteriaService(repo, validator.New(), zap.NewNop())
	resolver := service.NewCriteriaResolver(repo, groups, zap.NewNop())
	h := NewCriteriaHandler(svc, resolver)

	router.GET("/criteria", h.List)
	router.GET("/criteria/:id", h.Get)
	router.POST("/criteria", h.Create)
	router.PUT("/criteria/:id", h.Update)
	router.POST("/criteria/:id/archive", h.Archive)
	router.POST("/criteria/validate-weights", h.ValidateWeights)
	router.GET("/groups/:groupId/criteria", h.Resolve)
	return router
}

func TestCriteriaHandlerCreate(t *testing.T) {
	router := buildCriteriaRouter(&fakeCriteriaRepo{}, &fakeGroupReader{})

	payload := `{
		"course_id": "course-1",
		"scope": "groups",
		"group_ids": ["group-1"],
		"name": "Weekly",
		"parameters": [{"name": "Homework", "type": "rating", "weight": 100, "required": true}]
	}`
	req, _ := http.NewRequest(http.MethodPost, "/criteria", bytes.NewBufferString(payload))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Test-User", "coordinator-1")
	resp := performRequest(router, req)
	require.Equal(t, http.StatusCreated, resp.Code)
	require.Contains(t, resp.Body.String(), `"status":"active"`)
	require.Contains(t, resp.Body.String(), `"created_by":"coordinator-1"`)
}

func TestCriteriaHandlerCreateInvalidScope(t *testing.T) {
	router := buildCriteriaRouter(&fakeCriteriaRepo{}, &fakeGroupReader{})

	payload := `{"course_id": "course-1", "scope": "groups", "name": "No groups"}`
	req, _ := http.NewRequest(http.MethodPost, "/criteria", bytes.NewBufferString(payload))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Test-User", "coordinator-1")
	resp := performRequest(router, req)
	require.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestCriteriaHandlerValidateWeights(t *testing.T) {
	router := buildCriteriaRouter(&fakeCriteriaRepo{}, &fakeGroupReader{})

	payload := `{"parameters": [{"name": "Homework", "type": "rating", "weight": 60}]}`
	req, _ := http.NewRequest(http.MethodPost, "/criteria/validate-weights", bytes.NewBufferString(payload))
	req.Header.Set("Content-Type", "application/json")
	resp := performRequest(router, req)
	require.Equal(t, http.StatusBadRequest, resp.Code)
	require.Contains(t, resp.Body.String(), "INVALID_WEIGHTS")
}

func TestCriteriaHandlerResolve(t *testing.T) {
	repo := &fakeCriteriaRepo{definitions: map[string]*models.EvaluationCriteria{
		"crit-1": {
			ID: "crit-1", CourseID: "course-1", Scope: models.CriteriaScopeCourse,
			Name: "Course default", Status: models.CriteriaStatusActive,
		},
	}}
	groups := &fakeGroupReader{groups: map[string]*models.Group{
		"group-1": {ID: "group-1", CourseID: "course-1"},
	}}
	router := buildCriteriaRouter(repo, groups)

	req, _ := http.NewRequest(http.MethodGet, "/groups/group-1/criteria", nil)
	resp := performRequest(router, req)
	require.Equal(t, http.StatusOK, resp.Code)
	require.Contains(t, resp.Body.String(), `"id":"crit-1"`)
}

func TestCriteriaHandlerResolveNoCriteria(t *testing.T) {
	groups := &fakeGroupReader{groups: map[string]*models.Group{
		"group-1": {ID: "group-1", CourseID: "course-1"},
	}}
	router := buildCriteriaRouter(&fakeCriteriaRepo{}, groups)

	req, _ := http.NewRequest(http.MethodGet, "/groups/group-1/criteria", nil)
	resp := performRequest(router, req)
	require.Equal(t, http.StatusNotFound, resp.Code)
	require.Contains(t, resp.Body.String(), "NO_CRITERIA")
}

func TestCriteriaHandlerArchiveThenUpdateConflicts(t *testing.T) {
	repo := &fakeCriteriaRepo{definitions: map[string]*models.EvaluationCriteria{
		"crit-1": {ID: "crit-1", CourseID: "course-1", Scope: models.CriteriaScopeCourse, Status: models.CriteriaStatusActive},
	}}
	router := buildCriteriaRouter(repo, &fakeGroupReader{})

	req, _ := http.NewRequest(http.MethodPost, "/criteria/crit-1/archive", nil)
	resp := performRequest(router, req)
	require.Equal(t, http.StatusOK, resp.Code)

	update := `{"scope": "course", "name": "Renamed"}`
	req, _ = http.NewRequest(http.MethodPut, "/criteria/crit-1", bytes.NewBufferString(update))
	req.Header.Set("Content-Type", "application/json")
	resp = performRequest(router, req)
	require.Equal(t, http.StatusConflict, resp.Code)
}

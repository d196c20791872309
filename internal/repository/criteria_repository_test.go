package repository

import (
	"context"
	"database/sql/driver"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"github.com/trainbase/evaluation-api/internal/models"
)

func newRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

var criteriaTestColumns = []string{
	"id", "course_id", "scope", "group_ids", "name", "parameters",
	"overall_rating_enabled", "overall_rating_scale", "comments_enabled", "comments_required",
	"status", "created_by", "created_at", "updated_at",
}

func criteriaRow() []driver.Value {
	return []driver.Value{
		"crit-1", "course-1", "groups", "{group-1}", "Weekly",
		[]byte(`[{"name":"Homework","type":"rating","weight":100,"required":true,"order":1}]`),
		true, 5, true, false, "active", "trainer-1", time.Now(), time.Now(),
	}
}

func TestCriteriaRepositoryCreate(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewCriteriaRepository(db)
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO evaluation_criteria")).
		WillReturnResult(sqlmock.NewResult(1, 1))

	definition := &models.EvaluationCriteria{
		CourseID: "course-1",
		Scope:    models.CriteriaScopeGroups,
		GroupIDs: []string{"group-1"},
		Name:     "Weekly",
		Parameters: models.ParameterSpecs{
			{Name: "Homework", Type: models.ParameterTypeRating, Weight: 100, Required: true, Order: 1},
		},
		Status:    models.CriteriaStatusActive,
		CreatedBy: "trainer-1",
	}
	require.NoError(t, repo.Create(context.Background(), definition))
	require.NotEmpty(t, definition.ID)
	require.False(t, definition.UpdatedAt.IsZero())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCriteriaRepositoryFindActiveByGroup(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewCriteriaRepository(db)
	rows := sqlmock.NewRows(criteriaTestColumns).AddRow(criteriaRow()...)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, course_id, scope, group_ids")).
		WithArgs("active", "groups", "group-1").
		WillReturnRows(rows)

	definition, err := repo.FindActiveByGroup(context.Background(), "group-1")
	require.NoError(t, err)
	require.Equal(t, "crit-1", definition.ID)
	require.Equal(t, models.CriteriaScopeGroups, definition.Scope)
	require.Len(t, definition.Parameters, 1)
	require.Equal(t, "Homework", definition.Parameters[0].Name)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCriteriaRepositoryListFilters(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewCriteriaRepository(db)
	rows := sqlmock.NewRows(criteriaTestColumns).AddRow(criteriaRow()...)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, course_id, scope, group_ids")).
		WithArgs("course-1", "group-1", "active").
		WillReturnRows(rows)

	status := models.CriteriaStatusActive
	definitions, err := repo.List(context.Background(), models.CriteriaFilter{
		CourseID: "course-1",
		GroupID:  "group-1",
		Status:   &status,
	})
	require.NoError(t, err)
	require.Len(t, definitions, 1)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCriteriaRepositorySetStatus(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewCriteriaRepository(db)
	mock.ExpectExec(regexp.QuoteMeta("UPDATE evaluation_criteria SET status")).
		WithArgs("crit-1", "archived", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.SetStatus(context.Background(), "crit-1", models.CriteriaStatusArchived))
	require.NoError(t, mock.ExpectationsWereMet())
}

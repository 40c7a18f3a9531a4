package repository

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/noah-isme/gema-steps-api/internal/models"
)

func TestSubmissionRepositoryLatestAttemptWithDraft(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSubmissionRepository(db)
	ctx := context.Background()

	student := models.Student{Name: "Siti", Email: "siti@example.com"}
	require.NoError(t, db.Create(&student).Error)

	assignment := models.Assignment{Title: "Essay", DueDate: time.Now().Add(24 * time.Hour)}
	require.NoError(t, db.Create(&assignment).Error)

	first := models.Submission{AssignmentID: assignment.ID, StudentID: student.ID, Attempt: 1, Status: models.SubmissionStatusGraded}
	second := models.Submission{AssignmentID: assignment.ID, StudentID: student.ID, Attempt: 2, Status: models.SubmissionStatusUnsubmitted}
	require.NoError(t, repo.Create(ctx, &first))
	require.NoError(t, repo.Create(ctx, &second))

	require.NoError(t, repo.UpsertDraft(ctx, &models.SubmissionDraft{SubmissionID: second.ID, Body: "draft"}))
	require.NoError(t, repo.UpsertDraft(ctx, &models.SubmissionDraft{SubmissionID: second.ID, Body: "final", MeetsAssignmentCriteria: true}))

	latest, err := repo.GetLatestForStudent(ctx, assignment.ID, student.ID)
	require.NoError(t, err)
	require.Equal(t, second.ID, latest.ID)
	require.Equal(t, 2, latest.Attempt)
	require.NotNil(t, latest.Draft)
	require.Equal(t, "final", latest.Draft.Body)
	require.True(t, latest.Draft.MeetsAssignmentCriteria)

	duplicate := models.Submission{AssignmentID: assignment.ID, StudentID: student.ID, Attempt: 2, Status: models.SubmissionStatusUnsubmitted}
	require.ErrorIs(t, repo.Create(ctx, &duplicate), gorm.ErrDuplicatedKey)

	_, err = repo.GetLatestForStudent(ctx, assignment.ID, student.ID+100)
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestAssignmentRepositoryUpdateAndMissing(t *testing.T) {
	db := setupTestDB(t)
	repo := NewAssignmentRepository(db)
	ctx := context.Background()

	attempts := 2
	assignment := models.Assignment{Title: "Lab", DueDate: time.Now(), AllowedAttempts: &attempts}
	require.NoError(t, db.Create(&assignment).Error)

	assignment.Locked = true
	require.NoError(t, repo.Update(ctx, &assignment))

	stored, err := repo.GetByID(ctx, assignment.ID)
	require.NoError(t, err)
	require.True(t, stored.Locked)
	require.NotNil(t, stored.AllowedAttempts)
	require.Equal(t, 2, *stored.AllowedAttempts)

	_, err = repo.GetByID(ctx, assignment.ID+1)
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Student{}, &models.Assignment{}, &models.Submission{}, &models.SubmissionDraft{}))
	return db
}

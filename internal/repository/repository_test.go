package repository

import (
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/lamngoc217/classvault/internal/model"
	"github.com/lamngoc217/classvault/internal/policy"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) (*gorm.DB, *policy.Engine) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	if err != nil {
		t.Fatalf("opening test database: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("unwrapping test database: %v", err)
	}
	// One in-memory database per test. A second pooled connection would
	// silently get its own empty database.
	sqlDB.SetMaxOpenConns(1)
	if err := db.Exec("PRAGMA foreign_keys = ON").Error; err != nil {
		t.Fatalf("enabling foreign keys: %v", err)
	}
	err = db.AutoMigrate(
		&model.Profile{},
		&model.Session{},
		&model.Message{},
		&model.Quiz{},
		&model.QuizQuestion{},
		&model.QuizAssignment{},
	)
	if err != nil {
		t.Fatalf("migrating test schema: %v", err)
	}

	rules, err := policy.Classroom()
	if err != nil {
		t.Fatalf("building rules: %v", err)
	}
	return db, rules
}

func principal() policy.Principal {
	return policy.Principal{ID: uuid.New()}
}

func seedProfile(t *testing.T, db *gorm.DB, userID uuid.UUID, role string, standard *int) {
	t.Helper()
	profile := model.Profile{UserID: userID, Role: role, Standard: standard}
	if err := db.Create(&profile).Error; err != nil {
		t.Fatalf("seeding profile: %v", err)
	}
}

func seedDraftQuiz(t *testing.T, db *gorm.DB, teacherID uuid.UUID, standard int) *model.Quiz {
	t.Helper()
	quiz := model.Quiz{
		TeacherID:  teacherID,
		Title:      "States of matter",
		Standard:   standard,
		TotalMarks: 10,
		Status:     model.QuizStatusDraft,
	}
	if err := db.Create(&quiz).Error; err != nil {
		t.Fatalf("seeding quiz: %v", err)
	}
	return &quiz
}

func seedPendingAssignment(t *testing.T, db *gorm.DB, quizID, studentID uuid.UUID) *model.QuizAssignment {
	t.Helper()
	a := model.QuizAssignment{QuizID: quizID, StudentID: studentID, Status: model.AssignmentStatusPending}
	if err := db.Create(&a).Error; err != nil {
		t.Fatalf("seeding assignment: %v", err)
	}
	return &a
}

func intPtr(v int) *int { return &v }

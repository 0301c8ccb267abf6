package service

import (
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/lamngoc217/classvault/internal/dto"
	"github.com/lamngoc217/classvault/internal/model"
	"github.com/lamngoc217/classvault/internal/policy"
	"github.com/lamngoc217/classvault/internal/repository"
	"gorm.io/gorm"
)

// testEnv wires the full service stack over an in-memory database, the same
// way the application container does.
type testEnv struct {
	db          *gorm.DB
	rules       *policy.Engine
	profiles    ProfileService
	chat        ChatService
	quizzes     QuizService
	assignments AssignmentService
}

func newTestEnv(t *testing.T) *testEnv {
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

	profileRepo := repository.NewProfileRepository(db, rules)
	sessionRepo := repository.NewSessionRepository(db, rules)
	messageRepo := repository.NewMessageRepository(db, rules)
	quizRepo := repository.NewQuizRepository(db, rules)
	questionRepo := repository.NewQuestionRepository(db, rules)
	assignmentRepo := repository.NewAssignmentRepository(db, rules)

	return &testEnv{
		db:          db,
		rules:       rules,
		profiles:    NewProfileService(profileRepo),
		chat:        NewChatService(sessionRepo, messageRepo),
		quizzes:     NewQuizService(quizRepo, assignmentRepo, profileRepo, rules, db),
		assignments: NewAssignmentService(assignmentRepo, questionRepo),
	}
}

func (e *testEnv) signUp(t *testing.T, role string, standard *int) policy.Principal {
	t.Helper()
	p := policy.Principal{ID: uuid.New()}
	if _, err := e.profiles.Upsert(p, dto.ProfileUpdateDTO{Role: role, Standard: standard}); err != nil {
		t.Fatalf("creating %s profile: %v", role, err)
	}
	return p
}

// twoQuestionQuiz is the create request most workflow tests start from:
// question 1 is worth 4 marks (correct option 1), question 2 is worth
// 6 marks (correct option 0).
func twoQuestionQuiz(standard int) dto.QuizCreateDTO {
	return dto.QuizCreateDTO{
		Title:    "Water cycle",
		Standard: standard,
		Questions: []dto.QuizQuestionCreateDTO{
			{
				QuestionText:  "Evaporation turns water into?",
				Options:       []string{"Ice", "Vapour", "Rain"},
				CorrectAnswer: 1,
				Marks:         4,
			},
			{
				QuestionText:  "Clouds form by?",
				Options:       []string{"Condensation", "Melting"},
				CorrectAnswer: 0,
				Marks:         6,
			},
		},
	}
}

func intPtr(v int) *int { return &v }

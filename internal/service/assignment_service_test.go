package service

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/lamngoc217/classvault/internal/dto"
	"github.com/lamngoc217/classvault/internal/model"
	"gorm.io/datatypes"
)

func TestSubmitScoresAnswersServerSide(t *testing.T) {
	env := newTestEnv(t)
	teacher := env.signUp(t, model.RoleTeacher, nil)
	student := env.signUp(t, model.RoleStudent, intPtr(5))

	created, err := env.quizzes.CreateQuiz(teacher, twoQuestionQuiz(5))
	if err != nil {
		t.Fatalf("CreateQuiz() = %v", err)
	}
	if _, err := env.quizzes.SendQuiz(teacher, created.ID, dto.QuizSendDTO{DueAt: time.Now().Add(time.Hour)}); err != nil {
		t.Fatalf("SendQuiz() = %v", err)
	}

	assignments, err := env.assignments.ListAssignments(student)
	if err != nil {
		t.Fatalf("ListAssignments() = %v", err)
	}
	if len(assignments) != 1 {
		t.Fatalf("student has %d assignments, want 1", len(assignments))
	}

	// Answer through the student's own view of the quiz: question 1
	// (4 marks, correct 1) answered right, question 2 (6 marks, correct 0)
	// answered wrong.
	view, err := env.quizzes.GetQuiz(student, created.ID)
	if err != nil {
		t.Fatalf("GetQuiz() = %v", err)
	}
	answers := map[string]int{}
	for _, q := range view.Questions {
		switch q.OrderIdx {
		case 0:
			answers[q.ID.String()] = 1
		case 1:
			answers[q.ID.String()] = 1
		}
	}

	result, err := env.assignments.Submit(student, assignments[0].ID, dto.AssignmentSubmitDTO{Answers: answers})
	if err != nil {
		t.Fatalf("Submit() = %v", err)
	}
	if result.Score != 4 {
		t.Errorf("score = %d, want 4 (one of two questions right)", result.Score)
	}
	if result.TotalMarks != 10 {
		t.Errorf("total marks = %d, want 10", result.TotalMarks)
	}
	if result.Status != model.AssignmentStatusSubmitted {
		t.Errorf("status = %q, want submitted", result.Status)
	}

	reloaded, err := env.assignments.ListAssignments(student)
	if err != nil {
		t.Fatalf("ListAssignments() = %v", err)
	}
	if reloaded[0].Status != model.AssignmentStatusSubmitted {
		t.Errorf("stored status = %q, want submitted", reloaded[0].Status)
	}
	if reloaded[0].Score == nil || *reloaded[0].Score != 4 {
		t.Errorf("stored score = %v, want 4", reloaded[0].Score)
	}
}

func TestSubmitTwiceRejected(t *testing.T) {
	env := newTestEnv(t)
	teacher := env.signUp(t, model.RoleTeacher, nil)
	student := env.signUp(t, model.RoleStudent, intPtr(5))

	created, err := env.quizzes.CreateQuiz(teacher, twoQuestionQuiz(5))
	if err != nil {
		t.Fatalf("CreateQuiz() = %v", err)
	}
	if _, err := env.quizzes.SendQuiz(teacher, created.ID, dto.QuizSendDTO{DueAt: time.Now().Add(time.Hour)}); err != nil {
		t.Fatalf("SendQuiz() = %v", err)
	}
	assignments, err := env.assignments.ListAssignments(student)
	if err != nil || len(assignments) != 1 {
		t.Fatalf("ListAssignments() = %v (%d rows)", err, len(assignments))
	}

	if _, err := env.assignments.Submit(student, assignments[0].ID, dto.AssignmentSubmitDTO{Answers: map[string]int{}}); err != nil {
		t.Fatalf("first Submit() = %v", err)
	}
	_, err = env.assignments.Submit(student, assignments[0].ID, dto.AssignmentSubmitDTO{Answers: map[string]int{}})
	if !errors.Is(err, ErrAlreadySubmitted) {
		t.Fatalf("second Submit() = %v, want ErrAlreadySubmitted", err)
	}
}

func TestSubmitForeignAssignmentLooksMissing(t *testing.T) {
	env := newTestEnv(t)
	teacher := env.signUp(t, model.RoleTeacher, nil)
	student := env.signUp(t, model.RoleStudent, intPtr(5))
	other := env.signUp(t, model.RoleStudent, intPtr(6))

	created, err := env.quizzes.CreateQuiz(teacher, twoQuestionQuiz(5))
	if err != nil {
		t.Fatalf("CreateQuiz() = %v", err)
	}
	if _, err := env.quizzes.SendQuiz(teacher, created.ID, dto.QuizSendDTO{DueAt: time.Now().Add(time.Hour)}); err != nil {
		t.Fatalf("SendQuiz() = %v", err)
	}
	assignments, err := env.assignments.ListAssignments(student)
	if err != nil || len(assignments) != 1 {
		t.Fatalf("ListAssignments() = %v (%d rows)", err, len(assignments))
	}

	_, err = env.assignments.Submit(other, assignments[0].ID, dto.AssignmentSubmitDTO{Answers: map[string]int{}})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("Submit() on someone else's assignment = %v, want ErrNotFound", err)
	}
}

func TestScoreAnswers(t *testing.T) {
	q1 := model.QuizQuestion{
		ID:            uuid.New(),
		Marks:         4,
		Options:       datatypes.NewJSONSlice([]string{"a", "b", "c"}),
		CorrectAnswer: 1,
	}
	q2 := model.QuizQuestion{
		ID:            uuid.New(),
		Marks:         6,
		Options:       datatypes.NewJSONSlice([]string{"a", "b"}),
		CorrectAnswer: 0,
	}
	questions := []model.QuizQuestion{q1, q2}

	tests := []struct {
		name    string
		answers map[string]int
		want    int
	}{
		{"all correct", map[string]int{q1.ID.String(): 1, q2.ID.String(): 0}, 10},
		{"one correct", map[string]int{q1.ID.String(): 1, q2.ID.String(): 1}, 4},
		{"all wrong", map[string]int{q1.ID.String(): 0, q2.ID.String(): 1}, 0},
		{"empty answers", map[string]int{}, 0},
		{"unknown question ids ignored", map[string]int{uuid.NewString(): 1, q2.ID.String(): 0}, 6},
		{"missing answers score nothing", map[string]int{q1.ID.String(): 1}, 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := scoreAnswers(questions, tt.answers); got != tt.want {
				t.Errorf("scoreAnswers() = %d, want %d", got, tt.want)
			}
		})
	}
}

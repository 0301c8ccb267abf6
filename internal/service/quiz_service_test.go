package service

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/lamngoc217/classvault/internal/dto"
	"github.com/lamngoc217/classvault/internal/model"
	"github.com/lamngoc217/classvault/internal/policy"
)

func TestCreateQuizRequiresTeacher(t *testing.T) {
	env := newTestEnv(t)
	student := env.signUp(t, model.RoleStudent, intPtr(5))
	noProfile := policy.Principal{ID: uuid.New()}

	tests := []struct {
		name string
		as   policy.Principal
	}{
		{"student", student},
		{"no profile", noProfile},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.quizzes.CreateQuiz(tt.as, twoQuestionQuiz(5))
			if !errors.Is(err, ErrTeacherOnly) {
				t.Errorf("CreateQuiz() = %v, want ErrTeacherOnly", err)
			}
		})
	}
}

func TestCreateQuizBuildsDraftWithDerivedMarks(t *testing.T) {
	env := newTestEnv(t)
	teacher := env.signUp(t, model.RoleTeacher, nil)

	quiz, err := env.quizzes.CreateQuiz(teacher, twoQuestionQuiz(5))
	if err != nil {
		t.Fatalf("CreateQuiz() = %v", err)
	}
	if quiz.Status != model.QuizStatusDraft {
		t.Errorf("status = %q, want draft", quiz.Status)
	}
	if quiz.TotalMarks != 10 {
		t.Errorf("total marks = %d, want 10 (4+6)", quiz.TotalMarks)
	}
	if quiz.DueAt != nil || quiz.SentAt != nil {
		t.Error("draft carries due/sent times before being sent")
	}
	if len(quiz.Questions) != 2 {
		t.Fatalf("created %d questions, want 2", len(quiz.Questions))
	}
	if quiz.Questions[0].OrderIdx != 0 || quiz.Questions[1].OrderIdx != 1 {
		t.Errorf("question order not pinned: %d then %d", quiz.Questions[0].OrderIdx, quiz.Questions[1].OrderIdx)
	}
	// The owner sees correct answers.
	if quiz.Questions[0].CorrectAnswer == nil || *quiz.Questions[0].CorrectAnswer != 1 {
		t.Errorf("owner view lost the correct answer: %v", quiz.Questions[0].CorrectAnswer)
	}
}

func TestCreateQuizRejectsOutOfRangeCorrectAnswer(t *testing.T) {
	env := newTestEnv(t)
	teacher := env.signUp(t, model.RoleTeacher, nil)

	req := twoQuestionQuiz(5)
	req.Questions[1].CorrectAnswer = 2 // only two options

	_, err := env.quizzes.CreateQuiz(teacher, req)
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("CreateQuiz() = %v, want ErrValidation", err)
	}
}

func TestDraftQuizInvisibleToStudents(t *testing.T) {
	env := newTestEnv(t)
	teacher := env.signUp(t, model.RoleTeacher, nil)
	student := env.signUp(t, model.RoleStudent, intPtr(5))

	quiz, err := env.quizzes.CreateQuiz(teacher, twoQuestionQuiz(5))
	if err != nil {
		t.Fatalf("CreateQuiz() = %v", err)
	}

	if _, err := env.quizzes.GetQuiz(student, quiz.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetQuiz() as student before send = %v, want ErrNotFound", err)
	}
	assignments, err := env.assignments.ListAssignments(student)
	if err != nil {
		t.Fatalf("ListAssignments() = %v", err)
	}
	if len(assignments) != 0 {
		t.Errorf("student has %d assignments before send, want 0", len(assignments))
	}
}

func TestSendQuizAssignsMatchingStudents(t *testing.T) {
	env := newTestEnv(t)
	teacher := env.signUp(t, model.RoleTeacher, nil)
	inStandard := env.signUp(t, model.RoleStudent, intPtr(5))
	alsoIn := env.signUp(t, model.RoleStudent, intPtr(5))
	otherStandard := env.signUp(t, model.RoleStudent, intPtr(6))

	quiz, err := env.quizzes.CreateQuiz(teacher, twoQuestionQuiz(5))
	if err != nil {
		t.Fatalf("CreateQuiz() = %v", err)
	}

	dueAt := time.Now().Add(48 * time.Hour)
	result, err := env.quizzes.SendQuiz(teacher, quiz.ID, dto.QuizSendDTO{DueAt: dueAt})
	if err != nil {
		t.Fatalf("SendQuiz() = %v", err)
	}
	if result.SentTo != 2 {
		t.Errorf("sent to %d students, want 2", result.SentTo)
	}
	if result.Status != model.QuizStatusSent {
		t.Errorf("status = %q, want sent", result.Status)
	}

	for _, p := range []policy.Principal{inStandard, alsoIn} {
		assignments, err := env.assignments.ListAssignments(p)
		if err != nil {
			t.Fatalf("ListAssignments() = %v", err)
		}
		if len(assignments) != 1 {
			t.Fatalf("assigned student has %d assignments, want 1", len(assignments))
		}
		if assignments[0].Status != model.AssignmentStatusPending {
			t.Errorf("assignment status = %q, want pending", assignments[0].Status)
		}
		if assignments[0].Quiz.ID != quiz.ID {
			t.Errorf("assignment embeds quiz %s, want %s", assignments[0].Quiz.ID, quiz.ID)
		}
	}

	assignments, err := env.assignments.ListAssignments(otherStandard)
	if err != nil {
		t.Fatalf("ListAssignments() = %v", err)
	}
	if len(assignments) != 0 {
		t.Errorf("standard-6 student has %d assignments, want 0", len(assignments))
	}
}

func TestSentQuizRedactedForStudents(t *testing.T) {
	env := newTestEnv(t)
	teacher := env.signUp(t, model.RoleTeacher, nil)
	student := env.signUp(t, model.RoleStudent, intPtr(5))

	quiz, err := env.quizzes.CreateQuiz(teacher, twoQuestionQuiz(5))
	if err != nil {
		t.Fatalf("CreateQuiz() = %v", err)
	}
	if _, err := env.quizzes.SendQuiz(teacher, quiz.ID, dto.QuizSendDTO{DueAt: time.Now().Add(time.Hour)}); err != nil {
		t.Fatalf("SendQuiz() = %v", err)
	}

	got, err := env.quizzes.GetQuiz(student, quiz.ID)
	if err != nil {
		t.Fatalf("GetQuiz() as assigned student = %v", err)
	}
	if len(got.Questions) != 2 {
		t.Fatalf("student sees %d questions, want 2", len(got.Questions))
	}
	for _, q := range got.Questions {
		if q.CorrectAnswer != nil {
			t.Errorf("question %s leaked its correct answer to a student", q.ID)
		}
		if len(q.Options) == 0 {
			t.Errorf("question %s lost its options", q.ID)
		}
	}

	// The owner still sees the answers on the same quiz.
	own, err := env.quizzes.GetQuiz(teacher, quiz.ID)
	if err != nil {
		t.Fatalf("GetQuiz() as owner = %v", err)
	}
	if own.Questions[0].CorrectAnswer == nil {
		t.Error("owner view lost the correct answer after send")
	}
}

func TestSendQuizTwiceConflicts(t *testing.T) {
	env := newTestEnv(t)
	teacher := env.signUp(t, model.RoleTeacher, nil)
	env.signUp(t, model.RoleStudent, intPtr(5))

	quiz, err := env.quizzes.CreateQuiz(teacher, twoQuestionQuiz(5))
	if err != nil {
		t.Fatalf("CreateQuiz() = %v", err)
	}
	if _, err := env.quizzes.SendQuiz(teacher, quiz.ID, dto.QuizSendDTO{DueAt: time.Now().Add(time.Hour)}); err != nil {
		t.Fatalf("first SendQuiz() = %v", err)
	}
	_, err = env.quizzes.SendQuiz(teacher, quiz.ID, dto.QuizSendDTO{DueAt: time.Now().Add(2 * time.Hour)})
	if !errors.Is(err, ErrQuizAlreadySent) {
		t.Fatalf("second SendQuiz() = %v, want ErrQuizAlreadySent", err)
	}
}

func TestSendQuizToEmptyStandardStillSends(t *testing.T) {
	env := newTestEnv(t)
	teacher := env.signUp(t, model.RoleTeacher, nil)

	quiz, err := env.quizzes.CreateQuiz(teacher, twoQuestionQuiz(9))
	if err != nil {
		t.Fatalf("CreateQuiz() = %v", err)
	}
	result, err := env.quizzes.SendQuiz(teacher, quiz.ID, dto.QuizSendDTO{DueAt: time.Now().Add(time.Hour)})
	if err != nil {
		t.Fatalf("SendQuiz() = %v", err)
	}
	if result.SentTo != 0 {
		t.Errorf("sent to %d students, want 0", result.SentTo)
	}
	got, err := env.quizzes.GetQuiz(teacher, quiz.ID)
	if err != nil {
		t.Fatalf("GetQuiz() = %v", err)
	}
	if got.Status != model.QuizStatusSent {
		t.Errorf("status = %q, want sent even with no recipients", got.Status)
	}
}

// A send either lands completely or not at all: when any assignment in the
// batch fails, the status flip rolls back with it.
func TestSendQuizIsAllOrNothing(t *testing.T) {
	env := newTestEnv(t)
	teacher := env.signUp(t, model.RoleTeacher, nil)
	student := env.signUp(t, model.RoleStudent, intPtr(5))

	quiz, err := env.quizzes.CreateQuiz(teacher, twoQuestionQuiz(5))
	if err != nil {
		t.Fatalf("CreateQuiz() = %v", err)
	}

	// An assignment row for this (quiz, student) pair already exists, so the
	// batch insert inside the send must hit the uniqueness constraint.
	conflicting := model.QuizAssignment{QuizID: quiz.ID, StudentID: student.ID, Status: model.AssignmentStatusPending}
	if err := env.db.Create(&conflicting).Error; err != nil {
		t.Fatalf("seeding conflicting assignment: %v", err)
	}

	_, err = env.quizzes.SendQuiz(teacher, quiz.ID, dto.QuizSendDTO{DueAt: time.Now().Add(time.Hour)})
	if err == nil {
		t.Fatal("SendQuiz() succeeded despite a conflicting assignment")
	}

	reloaded, err := env.quizzes.GetQuiz(teacher, quiz.ID)
	if err != nil {
		t.Fatalf("GetQuiz() = %v", err)
	}
	if reloaded.Status != model.QuizStatusDraft {
		t.Errorf("status = %q after failed send, want draft", reloaded.Status)
	}
	if reloaded.SentAt != nil || reloaded.DueAt != nil {
		t.Error("failed send left due/sent times behind")
	}
	var n int64
	if err := env.db.Model(&model.QuizAssignment{}).Count(&n).Error; err != nil {
		t.Fatalf("counting assignments: %v", err)
	}
	if n != 1 {
		t.Errorf("%d assignment rows after rollback, want only the pre-existing one", n)
	}
}

func TestUpdateQuizDraftOnly(t *testing.T) {
	env := newTestEnv(t)
	teacher := env.signUp(t, model.RoleTeacher, nil)

	quiz, err := env.quizzes.CreateQuiz(teacher, twoQuestionQuiz(5))
	if err != nil {
		t.Fatalf("CreateQuiz() = %v", err)
	}

	title := "Water cycle (revised)"
	updated, err := env.quizzes.UpdateQuiz(teacher, quiz.ID, dto.QuizUpdateDTO{Title: &title})
	if err != nil {
		t.Fatalf("UpdateQuiz() on draft = %v", err)
	}
	if updated.Title != title {
		t.Errorf("title = %q, want %q", updated.Title, title)
	}

	if _, err := env.quizzes.SendQuiz(teacher, quiz.ID, dto.QuizSendDTO{DueAt: time.Now().Add(time.Hour)}); err != nil {
		t.Fatalf("SendQuiz() = %v", err)
	}

	_, err = env.quizzes.UpdateQuiz(teacher, quiz.ID, dto.QuizUpdateDTO{Title: &title})
	if !errors.Is(err, ErrQuizNotDraft) {
		t.Fatalf("UpdateQuiz() after send = %v, want ErrQuizNotDraft", err)
	}
}

func TestUpdateQuizReplacesQuestionSet(t *testing.T) {
	env := newTestEnv(t)
	teacher := env.signUp(t, model.RoleTeacher, nil)

	quiz, err := env.quizzes.CreateQuiz(teacher, twoQuestionQuiz(5))
	if err != nil {
		t.Fatalf("CreateQuiz() = %v", err)
	}

	updated, err := env.quizzes.UpdateQuiz(teacher, quiz.ID, dto.QuizUpdateDTO{
		Questions: []dto.QuizQuestionCreateDTO{
			{
				QuestionText:  "Rain falling is called?",
				Options:       []string{"Precipitation", "Evaporation"},
				CorrectAnswer: 0,
				Marks:         3,
			},
		},
	})
	if err != nil {
		t.Fatalf("UpdateQuiz() = %v", err)
	}
	if len(updated.Questions) != 1 {
		t.Fatalf("question set not replaced: %d questions, want 1", len(updated.Questions))
	}
	if updated.TotalMarks != 3 {
		t.Errorf("total marks = %d after replacement, want 3", updated.TotalMarks)
	}

	var n int64
	if err := env.db.Model(&model.QuizQuestion{}).Count(&n).Error; err != nil {
		t.Fatalf("counting questions: %v", err)
	}
	if n != 1 {
		t.Errorf("%d question rows in storage, want 1", n)
	}
}

func TestUpdateForeignQuizLooksMissing(t *testing.T) {
	env := newTestEnv(t)
	teacher := env.signUp(t, model.RoleTeacher, nil)
	rival := env.signUp(t, model.RoleTeacher, nil)

	quiz, err := env.quizzes.CreateQuiz(teacher, twoQuestionQuiz(5))
	if err != nil {
		t.Fatalf("CreateQuiz() = %v", err)
	}

	title := "mine now"
	_, err = env.quizzes.UpdateQuiz(rival, quiz.ID, dto.QuizUpdateDTO{Title: &title})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("UpdateQuiz() by another teacher = %v, want ErrNotFound", err)
	}
}

func TestListQuizzesOnlyOwn(t *testing.T) {
	env := newTestEnv(t)
	teacher := env.signUp(t, model.RoleTeacher, nil)
	rival := env.signUp(t, model.RoleTeacher, nil)

	if _, err := env.quizzes.CreateQuiz(teacher, twoQuestionQuiz(5)); err != nil {
		t.Fatalf("CreateQuiz() = %v", err)
	}
	if _, err := env.quizzes.CreateQuiz(rival, twoQuestionQuiz(6)); err != nil {
		t.Fatalf("CreateQuiz() = %v", err)
	}

	quizzes, err := env.quizzes.ListQuizzes(teacher)
	if err != nil {
		t.Fatalf("ListQuizzes() = %v", err)
	}
	if len(quizzes) != 1 {
		t.Fatalf("ListQuizzes() = %d quizzes, want 1", len(quizzes))
	}
	if quizzes[0].QuestionCount != 2 {
		t.Errorf("question count = %d, want 2", quizzes[0].QuestionCount)
	}
}

func TestQuizResultsOwnerOnly(t *testing.T) {
	env := newTestEnv(t)
	teacher := env.signUp(t, model.RoleTeacher, nil)
	rival := env.signUp(t, model.RoleTeacher, nil)
	student := env.signUp(t, model.RoleStudent, intPtr(5))

	quiz, err := env.quizzes.CreateQuiz(teacher, twoQuestionQuiz(5))
	if err != nil {
		t.Fatalf("CreateQuiz() = %v", err)
	}
	if _, err := env.quizzes.SendQuiz(teacher, quiz.ID, dto.QuizSendDTO{DueAt: time.Now().Add(time.Hour)}); err != nil {
		t.Fatalf("SendQuiz() = %v", err)
	}

	results, err := env.quizzes.QuizResults(teacher, quiz.ID)
	if err != nil {
		t.Fatalf("QuizResults() as owner = %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("QuizResults() = %d rows, want 1", len(results))
	}
	if results[0].StudentID != student.ID {
		t.Errorf("result for student %s, want %s", results[0].StudentID, student.ID)
	}

	if _, err := env.quizzes.QuizResults(rival, quiz.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("QuizResults() as another teacher = %v, want ErrNotFound", err)
	}
	// Assigned students see the quiz but not the class results.
	if _, err := env.quizzes.QuizResults(student, quiz.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("QuizResults() as student = %v, want ErrNotFound", err)
	}
}

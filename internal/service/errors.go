package service

import "errors"

var (
	// ErrNotFound covers both genuinely absent rows and rows the caller is
	// not allowed to see. The two are indistinguishable on purpose: a
	// denied read must never reveal that the row exists.
	ErrNotFound = errors.New("not found")

	// ErrValidation wraps request-level problems the binding layer cannot
	// express, such as a correct-answer index outside the options list.
	ErrValidation = errors.New("invalid request")

	ErrTeacherOnly      = errors.New("only teachers can manage quizzes")
	ErrQuizNotDraft     = errors.New("quiz has been sent and can no longer be edited")
	ErrQuizAlreadySent  = errors.New("quiz has already been sent")
	ErrAlreadySubmitted = errors.New("assignment already submitted")
)

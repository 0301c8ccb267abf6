package policy

// Classroom builds the rule set for the classroom schema: who may read and
// write chat sessions, messages, quizzes, quiz questions and quiz
// assignments. Table and column names here must match the model TableName
// declarations.
//
// The quiz/assignment pair is the delicate part. Students may read a quiz
// because an assignment row points at them, and they may read their own
// assignment rows. Expressed naively, with each side consulting the other
// through its rules, the graph cycles and can never be answered (see the
// engine tests). The cycle is broken in the standard way: the quiz side uses
// one privileged existence probe against assignment storage, and the
// assignment side compares student_id directly instead of consulting quiz
// rules at all.
func Classroom() (*Engine, error) {
	e := NewEngine()

	e.Register(Table{
		Name:       "user_profiles",
		PrimaryKey: "user_id",
		Rules: map[Operation]Predicate{
			OpSelect: Owner("user_id"),
			OpInsert: Owner("user_id"),
			OpUpdate: Owner("user_id"),
		},
	})

	e.Register(Table{
		Name:       "sessions",
		PrimaryKey: "id",
		Rules: map[Operation]Predicate{
			OpSelect: Owner("user_id"),
			OpInsert: Owner("user_id"),
			OpUpdate: Owner("user_id"),
			OpDelete: Owner("user_id"),
		},
	})

	// Messages are exactly as visible as their session. No update or delete
	// rule: the log is append-only and rows leave through the FK cascade.
	e.Register(Table{
		Name:       "messages",
		PrimaryKey: "id",
		Rules: map[Operation]Predicate{
			OpSelect: Parent("sessions", "session_id"),
			OpInsert: Parent("sessions", "session_id"),
		},
	})

	e.Register(Table{
		Name:       "quizzes",
		PrimaryKey: "id",
		Rules: map[Operation]Predicate{
			OpSelect: Any(Owner("teacher_id"), hasAssignment("id")),
			OpInsert: Owner("teacher_id"),
			OpUpdate: Owner("teacher_id"),
			OpDelete: Owner("teacher_id"),
		},
	})

	// Question visibility is quiz visibility, transitively: the quiz select
	// rule is expanded inline, assignment probe included. Writes require the
	// parent quiz to be owned, not merely visible.
	e.Register(Table{
		Name:       "quiz_questions",
		PrimaryKey: "id",
		Rules: map[Operation]Predicate{
			OpSelect: Parent("quizzes", "quiz_id"),
			OpInsert: ParentWhere("quizzes", "quiz_id", Owner("teacher_id")),
			OpUpdate: ParentWhere("quizzes", "quiz_id", Owner("teacher_id")),
			OpDelete: ParentWhere("quizzes", "quiz_id", Owner("teacher_id")),
		},
	})

	// No insert rule: assignment rows are materialized by the privileged
	// send workflow after the quiz ownership rule has admitted the send,
	// never by a principal-facing write.
	e.Register(Table{
		Name:       "quiz_assignments",
		PrimaryKey: "id",
		Rules: map[Operation]Predicate{
			OpSelect: Owner("student_id"),
			OpUpdate: Owner("student_id"),
		},
	})

	if err := e.Validate(); err != nil {
		return nil, err
	}
	return e, nil
}

// hasAssignment admits a quiz when an assignment row links it to the acting
// principal. The probe bypasses assignment rules on purpose: routing it
// through them would re-filter quizzes and cycle.
func hasAssignment(quizColumn string) Predicate {
	return Definer("quiz_assignments", "quiz_id", quizColumn, Owner("student_id"))
}

package policy

import (
	"errors"
	"fmt"
	"sort"

	"gorm.io/gorm"
)

var (
	// ErrPolicyRecursion reports a rule graph in which tables filter each
	// other in a cycle. Validate surfaces it at startup so the defect can
	// never be hit by a live query.
	ErrPolicyRecursion = errors.New("infinite recursion detected in policy")

	// ErrRowViolation reports a freshly written row that its own table's
	// rule does not admit; the surrounding transaction must roll back.
	ErrRowViolation = errors.New("new row violates row-level security policy")
)

// denyAll is the contradiction every unregistered operation resolves to.
const denyAll = "1 = 0"

// Table declares the rules guarding one table. Operations without a rule
// are denied.
type Table struct {
	Name       string
	PrimaryKey string
	Rules      map[Operation]Predicate
}

// Engine holds the registered rule set in compiled form. Build one with
// NewEngine + Register + Validate; afterwards it is immutable and safe for
// concurrent use.
type Engine struct {
	tables   map[string]*Table
	compiled map[string]compiledRule
}

type compiledRule struct {
	sql  string
	args []any
}

func NewEngine() *Engine {
	return &Engine{tables: make(map[string]*Table)}
}

func (e *Engine) Register(t Table) {
	e.tables[t.Name] = &t
}

// Validate compiles every registered rule once, surfacing misconfiguration
// (cyclic rule graphs, references to unregistered tables) before the engine
// gates any query. Tables and operations are walked in sorted order so a
// broken graph always reports the same rule.
func (e *Engine) Validate() error {
	names := make([]string, 0, len(e.tables))
	for name := range e.tables {
		names = append(names, name)
	}
	sort.Strings(names)

	compiled := make(map[string]compiledRule)
	for _, name := range names {
		t := e.tables[name]
		ops := make([]string, 0, len(t.Rules))
		for op := range t.Rules {
			ops = append(ops, string(op))
		}
		sort.Strings(ops)
		for _, op := range ops {
			rule := t.Rules[Operation(op)]
			b := &builder{engine: e, expanding: []string{t.Name}}
			if err := rule.compile(b, t.Name); err != nil {
				return fmt.Errorf("policy: %s rule on %s: %w", op, t.Name, err)
			}
			compiled[ruleKey(t.Name, Operation(op))] = compiledRule{sql: b.sql.String(), args: b.args}
		}
	}
	e.compiled = compiled
	return nil
}

// Scope narrows a statement to the rows p may touch under op. Denied reads
// come back empty or as record-not-found, indistinguishable from missing
// rows, and denied updates or deletes match nothing, which callers observe
// as zero rows affected.
func (e *Engine) Scope(p Principal, table string, op Operation) func(*gorm.DB) *gorm.DB {
	rule, err := e.rule(table, op)
	return func(db *gorm.DB) *gorm.DB {
		if err != nil {
			_ = db.AddError(err)
			return db
		}
		return db.Where(rule.sql, bindPrincipal(rule.args, p)...)
	}
}

// CheckRow verifies, inside the caller's transaction, that a freshly
// written row identified by its primary key satisfies the op rule of its
// table. This is the write-side half of enforcement: Scope cannot guard an
// INSERT, so the row is checked after it is staged and the transaction is
// rolled back when the rule rejects it.
func (e *Engine) CheckRow(tx *gorm.DB, p Principal, table string, op Operation, pkValue any) error {
	t, ok := e.tables[table]
	if !ok {
		return fmt.Errorf("policy: no rules registered for table %q", table)
	}
	rule, err := e.rule(table, op)
	if err != nil {
		return err
	}
	var n int64
	err = tx.Table(t.Name).
		Where(fmt.Sprintf("%s.%s = ?", t.Name, t.PrimaryKey), pkValue).
		Where(rule.sql, bindPrincipal(rule.args, p)...).
		Count(&n).Error
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w for table %q", ErrRowViolation, table)
	}
	return nil
}

func (e *Engine) rule(table string, op Operation) (compiledRule, error) {
	if _, ok := e.tables[table]; !ok {
		return compiledRule{}, fmt.Errorf("policy: no rules registered for table %q", table)
	}
	if r, ok := e.compiled[ruleKey(table, op)]; ok {
		return r, nil
	}
	return compiledRule{sql: denyAll}, nil
}

func ruleKey(table string, op Operation) string {
	return table + "|" + string(op)
}

func bindPrincipal(args []any, p Principal) []any {
	bound := make([]any, len(args))
	for i, a := range args {
		if _, ok := a.(principalArg); ok {
			bound[i] = p.ID
		} else {
			bound[i] = a
		}
	}
	return bound
}

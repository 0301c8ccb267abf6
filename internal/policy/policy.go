// Package policy implements declarative row-level access rules enforced by
// the data layer itself. Every gated read or write names the principal it
// acts as, and the engine compiles the (table, operation) rule into the SQL
// of that statement. A table with no rule for an operation denies it, so a
// table is exactly as open as the rules registered for it.
package policy

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Principal is the authenticated identity a request acts as. It is passed
// explicitly into every gated call; the engine keeps no ambient state.
type Principal struct {
	ID uuid.UUID
}

// Operation classifies gated statements the way row filters see them:
// updates and deletes are narrowed by their own rules, not by the select
// rule, and inserts are checked against the written row.
type Operation string

const (
	OpSelect Operation = "SELECT"
	OpInsert Operation = "INSERT"
	OpUpdate Operation = "UPDATE"
	OpDelete Operation = "DELETE"
)

// Predicate is a boolean row condition. Implementations compile themselves
// into a SQL fragment whose column references are qualified with the alias
// of the table the rule is registered on.
type Predicate interface {
	compile(b *builder, alias string) error
}

// builder accumulates the SQL text and ordered arguments of one rule being
// compiled. Slots referring to the acting principal are recorded as markers
// and bound when the rule is instantiated for a request.
type builder struct {
	engine    *Engine
	sql       strings.Builder
	args      []any
	aliases   int
	expanding []string // tables whose select rules are currently inlined
}

// principalArg marks an argument slot bound to the acting principal.
type principalArg struct{}

func (b *builder) nextAlias() string {
	b.aliases++
	return fmt.Sprintf("p%d", b.aliases)
}

// expandSelect inlines the select rule of t, the way a row-filtered engine
// re-applies filters to correlated subqueries. Re-entering a table that is
// already being expanded means the rule graph cycles, which can never be
// answered; it is reported with the same wording the database engine uses.
func (b *builder) expandSelect(t *Table, alias string) error {
	for _, name := range b.expanding {
		if name == t.Name {
			return fmt.Errorf("%w for relation %q", ErrPolicyRecursion, t.Name)
		}
	}
	rule, ok := t.Rules[OpSelect]
	if !ok {
		b.sql.WriteString("(" + denyAll + ")")
		return nil
	}
	b.expanding = append(b.expanding, t.Name)
	defer func() { b.expanding = b.expanding[:len(b.expanding)-1] }()

	b.sql.WriteString("(")
	if err := rule.compile(b, alias); err != nil {
		return err
	}
	b.sql.WriteString(")")
	return nil
}

type owner struct {
	column string
}

// Owner admits rows whose column equals the acting principal's id.
func Owner(column string) Predicate { return owner{column: column} }

func (o owner) compile(b *builder, alias string) error {
	fmt.Fprintf(&b.sql, "%s.%s = ?", alias, o.column)
	b.args = append(b.args, principalArg{})
	return nil
}

type anyOf struct {
	preds []Predicate
}

// Any admits rows matching at least one of the given predicates.
func Any(preds ...Predicate) Predicate { return anyOf{preds: preds} }

func (a anyOf) compile(b *builder, alias string) error {
	if len(a.preds) == 0 {
		b.sql.WriteString(denyAll)
		return nil
	}
	b.sql.WriteString("(")
	for i, p := range a.preds {
		if i > 0 {
			b.sql.WriteString(" OR ")
		}
		if err := p.compile(b, alias); err != nil {
			return err
		}
	}
	b.sql.WriteString(")")
	return nil
}

type exists struct {
	table   string
	foreign string
	local   string
	where   Predicate
}

// Exists admits rows for which a matching row exists in another registered
// table, joined through foreign = local. The matching row must ALSO pass
// that table's own select rule, which is expanded inline: whatever the
// other table hides stays hidden here. Two tables consulting each other
// through Exists therefore cannot validate; break such a cycle with Definer.
func Exists(table, foreignColumn, localColumn string, where Predicate) Predicate {
	return exists{table: table, foreign: foreignColumn, local: localColumn, where: where}
}

func (e exists) compile(b *builder, alias string) error {
	t, ok := b.engine.tables[e.table]
	if !ok {
		return fmt.Errorf("predicate references unregistered table %q", e.table)
	}
	sub := b.nextAlias()
	fmt.Fprintf(&b.sql, "EXISTS (SELECT 1 FROM %s AS %s WHERE %s.%s = %s.%s", t.Name, sub, sub, e.foreign, alias, e.local)
	if e.where != nil {
		b.sql.WriteString(" AND ")
		if err := e.where.compile(b, sub); err != nil {
			return err
		}
	}
	b.sql.WriteString(" AND ")
	if err := b.expandSelect(t, sub); err != nil {
		return err
	}
	b.sql.WriteString(")")
	return nil
}

// Parent admits rows whose parent row, reached through the fk column and
// the parent table's registered primary key, passes the parent's select
// rule. It is the usual shape for child tables: messages are as visible as
// their session, questions as visible as their quiz.
func Parent(table, fk string) Predicate {
	return parentOf{table: table, fk: fk}
}

// ParentWhere is Parent with an extra condition on the parent row.
func ParentWhere(table, fk string, where Predicate) Predicate {
	return parentOf{table: table, fk: fk, where: where}
}

type parentOf struct {
	table string
	fk    string
	where Predicate
}

func (p parentOf) compile(b *builder, alias string) error {
	t, ok := b.engine.tables[p.table]
	if !ok {
		return fmt.Errorf("predicate references unregistered table %q", p.table)
	}
	return exists{table: p.table, foreign: t.PrimaryKey, local: p.fk, where: p.where}.compile(b, alias)
}

type definer struct {
	table   string
	foreign string
	local   string
	where   Predicate
}

// Definer admits rows for which a matching row exists in another table,
// checked against raw storage WITHOUT expanding that table's rules. It is the
// equivalent of routing the probe through a SECURITY DEFINER function owned
// by a role the filters do not apply to. It exists for one purpose: breaking
// a rule cycle that Exists cannot express. The probe leaks nothing beyond
// row existence, so keep the where clause tight.
func Definer(table, foreignColumn, localColumn string, where Predicate) Predicate {
	return definer{table: table, foreign: foreignColumn, local: localColumn, where: where}
}

func (d definer) compile(b *builder, alias string) error {
	sub := b.nextAlias()
	fmt.Fprintf(&b.sql, "EXISTS (SELECT 1 FROM %s AS %s WHERE %s.%s = %s.%s", d.table, sub, sub, d.foreign, alias, d.local)
	if d.where != nil {
		b.sql.WriteString(" AND ")
		if err := d.where.compile(b, sub); err != nil {
			return err
		}
	}
	b.sql.WriteString(")")
	return nil
}

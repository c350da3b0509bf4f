package db

import (
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgtype"
)

// TaskFilterParams are the optional task list predicates. Invalid (NULL)
// fields are left out of the WHERE clause entirely.
type TaskFilterParams struct {
	Status       pgtype.Text
	Priority     pgtype.Text
	AssignedToID pgtype.Int8
}

type whereBuilder struct {
	clauses []string
	args    []interface{}
}

// add appends a predicate; expr holds one %d for the placeholder number.
func (b *whereBuilder) add(expr string, arg interface{}) {
	b.args = append(b.args, arg)
	b.clauses = append(b.clauses, fmt.Sprintf(expr, len(b.args)))
}

func (b *whereBuilder) placeholder(arg interface{}) string {
	b.args = append(b.args, arg)
	return fmt.Sprintf("$%d", len(b.args))
}

func (b *whereBuilder) String() string {
	if len(b.clauses) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(b.clauses, " AND ")
}

func taskWhere(f TaskFilterParams) *whereBuilder {
	b := &whereBuilder{}
	if f.Status.Valid {
		b.add("t.status = $%d", f.Status.String)
	}
	if f.Priority.Valid {
		b.add("t.priority = $%d", f.Priority.String)
	}
	if f.AssignedToID.Valid {
		b.add("t.assigned_to_id = $%d", f.AssignedToID.Int64)
	}
	return b
}

func listTasksQuery(arg ListTasksParams) (string, []interface{}) {
	b := taskWhere(arg.Filter)
	var sb strings.Builder
	sb.WriteString("SELECT " + taskColumns + " FROM tasks t" + taskJoin)
	sb.WriteString(b.String())
	sb.WriteString(" ORDER BY t.created_at DESC, t.id DESC")
	sb.WriteString(" LIMIT " + b.placeholder(arg.Limit))
	sb.WriteString(" OFFSET " + b.placeholder(arg.Offset))
	return sb.String(), b.args
}

func countTasksQuery(f TaskFilterParams) (string, []interface{}) {
	b := taskWhere(f)
	return "SELECT count(*) FROM tasks t" + b.String(), b.args
}

package postgres

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/roamio/tours-api/internal/apperr"
	"github.com/roamio/tours-api/internal/listing"
)

// classify maps storage failures onto the application error taxonomy.
func classify(err error, resource string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return apperr.NotFound(fmt.Sprintf("No %s found with that ID", resource)).WithErr(err)
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgerrcode.UniqueViolation:
			return apperr.Validation("Duplicate field value. Please use another value!").WithErr(err)
		case pgerrcode.ForeignKeyViolation:
			return apperr.Validation("Referenced record does not exist").WithErr(err)
		case pgerrcode.CheckViolation:
			return apperr.Validation("Invalid field value").WithErr(err)
		}
	}
	return err
}

// listSQL appends WHERE/ORDER BY/LIMIT/OFFSET clauses for a list query.
// cols is the allow-list mapping exposed field names to columns; filters and
// sort keys outside it are ignored. fixed is an always-on condition ("" for
// none).
func listSQL(base, fixed string, cols map[string]string, q listing.Query, defaultOrder string) (string, []any) {
	var sb strings.Builder
	sb.WriteString(base)

	var args []any
	var conds []string
	if fixed != "" {
		conds = append(conds, fixed)
	}
	for _, f := range q.Filters {
		col, ok := cols[f.Field]
		if !ok {
			continue
		}
		args = append(args, filterArg(f.Value))
		conds = append(conds, fmt.Sprintf("%s %s $%d", col, sqlOp(f.Op), len(args)))
	}
	if len(conds) > 0 {
		sb.WriteString(" WHERE " + strings.Join(conds, " AND "))
	}

	order := defaultOrder
	var parts []string
	for _, s := range q.Sort {
		col, ok := cols[s.Name]
		if !ok {
			continue
		}
		dir := " ASC"
		if s.Desc {
			dir = " DESC"
		}
		parts = append(parts, col+dir)
	}
	if len(parts) > 0 {
		order = strings.Join(parts, ", ")
	}
	sb.WriteString(" ORDER BY " + order)

	args = append(args, q.Limit)
	fmt.Fprintf(&sb, " LIMIT $%d", len(args))
	args = append(args, q.Offset())
	fmt.Fprintf(&sb, " OFFSET $%d", len(args))

	return sb.String(), args
}

func sqlOp(op listing.Op) string {
	switch op {
	case listing.OpGt:
		return ">"
	case listing.OpGte:
		return ">="
	case listing.OpLt:
		return "<"
	case listing.OpLte:
		return "<="
	default:
		return "="
	}
}

// filterArg types numeric-looking filter values so comparisons against
// numeric columns do not trip text/numeric operator resolution.
func filterArg(v string) any {
	if f, err := strconv.ParseFloat(v, 64); err == nil {
		return f
	}
	if b, err := strconv.ParseBool(v); err == nil {
		return b
	}
	return v
}

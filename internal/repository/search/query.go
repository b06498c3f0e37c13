package search

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/madplan/madsearch/internal/db"
	domrec "github.com/madplan/madsearch/internal/domain/record"
	"github.com/madplan/madsearch/internal/domain/search/request"
	"github.com/madplan/madsearch/internal/repository/record"
)

// buildQuery assembles the FT query string: owner scope, active lifecycle
// status, the request's filter predicates, and the escaped free-text clause.
// omit names one filter dimension to leave out, so facet counts for that
// dimension are not narrowed by its own selection ("" omits nothing).
func buildQuery(userID string, req *request.Request, omit string) string {
	f := req.Filters()
	clauses := []string{
		tagClause(record.FieldOwnerID, userID),
		tagClause(record.FieldStatus, string(domrec.StatusActive)),
	}

	if len(f.Types) > 0 && omit != record.FieldItemType {
		vals := make([]string, len(f.Types))
		for i, t := range f.Types {
			vals[i] = string(t)
		}
		clauses = append(clauses, tagSetClause(record.FieldItemType, vals))
	}
	if len(f.BoardIDs) > 0 && omit != record.FieldBoardID {
		clauses = append(clauses, tagSetClause(record.FieldBoardID, f.BoardIDs))
	}
	if len(f.Labels) > 0 && omit != record.FieldLabels {
		clauses = append(clauses, tagSetClause(record.FieldLabels, f.Labels))
	}
	if len(f.Priorities) > 0 && omit != record.FieldPriority {
		clauses = append(clauses, tagSetClause(record.FieldPriority, f.Priorities))
	}
	if len(f.Assignees) > 0 {
		clauses = append(clauses, tagSetClause(record.FieldAssignees, f.Assignees))
	}
	if f.Status != "" && omit != record.FieldCardStatus {
		clauses = append(clauses, tagClause(record.FieldCardStatus, f.Status))
	}
	if f.DueAfter != 0 || f.DueBefore != 0 {
		clauses = append(clauses, rangeClause(record.FieldDueDate, f.DueAfter, f.DueBefore))
	}
	if f.CreatedAfter != 0 || f.CreatedBefore != 0 {
		clauses = append(clauses, rangeClause(record.FieldCreatedAt, f.CreatedAfter, f.CreatedBefore))
	}

	if req.HasQuery() {
		if text := textClause(req.Query()); text != "" {
			clauses = append(clauses, text)
		}
	}

	return strings.Join(clauses, " ")
}

func tagClause(field, value string) string {
	return fmt.Sprintf("@%s:{%s}", field, db.EscapeTag(value))
}

// tagSetClause builds an OR over tag values: @field:{a|b|c}.
func tagSetClause(field string, values []string) string {
	escaped := make([]string, len(values))
	for i, v := range values {
		escaped[i] = db.EscapeTag(v)
	}
	return fmt.Sprintf("@%s:{%s}", field, strings.Join(escaped, "|"))
}

// rangeClause builds an inclusive numeric range, 0 meaning unbounded.
func rangeClause(field string, after, before int64) string {
	lo, hi := "-inf", "+inf"
	if after != 0 {
		lo = strconv.FormatInt(after, 10)
	}
	if before != 0 {
		hi = strconv.FormatInt(before, 10)
	}
	return fmt.Sprintf("@%s:[%s %s]", field, lo, hi)
}

// textClause escapes each query term for the full-text part of the query.
// Terms that escape to nothing are dropped.
func textClause(query string) string {
	terms := strings.Fields(query)
	escaped := make([]string, 0, len(terms))
	for _, t := range terms {
		if e := db.EscapeText(t); e != "" {
			escaped = append(escaped, e)
		}
	}
	return strings.Join(escaped, " ")
}

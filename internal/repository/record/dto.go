package record

import (
	"strconv"
	"strings"

	domrec "github.com/madplan/madsearch/internal/domain/record"
)

// Hash field names. The *_text fields duplicate the tag sets as whitespace
// joined text so the FT index can score them with their own weights; the TAG
// fields drive exact filtering and facets.
const (
	FieldItemID       = "item_id"
	FieldItemType     = "item_type"
	FieldTitle        = "title"
	FieldContent      = "content"
	FieldTags         = "tags"
	FieldLabels       = "labels"
	FieldTagsText     = "tags_text"
	FieldLabelsText   = "labels_text"
	FieldOwnerID      = "owner_id"
	FieldBoardID      = "board_id"
	FieldListID       = "list_id"
	FieldStatus       = "status"
	FieldPriority     = "priority"
	FieldPriorityRank = "priority_rank"
	FieldCardStatus   = "card_status"
	FieldAssignees    = "assignees"
	FieldDueDate      = "due_date"
	FieldBoardTitle   = "board_title"
	FieldListTitle    = "list_title"
	FieldScore        = "search_score"
	FieldCreatedAt    = "created_at"
	FieldUpdatedAt    = "updated_at"
	FieldDeletedAt    = "deleted_at"
)

// TagSeparator joins multi-value TAG fields in the stored hash.
const TagSeparator = ","

// buildHashFields converts a Record into a flat map[string]string for HSET.
func buildHashFields(rec *domrec.Record) map[string]string {
	md := rec.Metadata()
	m := map[string]string{
		FieldItemID:       rec.ItemID(),
		FieldItemType:     string(rec.ItemType()),
		FieldTitle:        rec.Title(),
		FieldContent:      rec.Content(),
		FieldTags:         strings.Join(rec.Tags(), TagSeparator),
		FieldLabels:       strings.Join(rec.Labels(), TagSeparator),
		FieldTagsText:     strings.Join(rec.Tags(), " "),
		FieldLabelsText:   strings.Join(rec.Labels(), " "),
		FieldOwnerID:      rec.OwnerID(),
		FieldBoardID:      rec.BoardID(),
		FieldListID:       rec.ListID(),
		FieldStatus:       string(rec.Status()),
		FieldPriority:     md.Priority,
		FieldPriorityRank: strconv.Itoa(domrec.PriorityRank(md.Priority)),
		FieldCardStatus:   md.Status,
		FieldAssignees:    strings.Join(md.Assignees, TagSeparator),
		FieldDueDate:      strconv.FormatInt(md.DueDate, 10),
		FieldBoardTitle:   md.BoardTitle,
		FieldListTitle:    md.ListTitle,
		FieldScore:        strconv.FormatFloat(rec.SearchScore(), 'f', -1, 64),
		FieldCreatedAt:    strconv.FormatInt(rec.CreatedAt(), 10),
		FieldUpdatedAt:    strconv.FormatInt(rec.UpdatedAt(), 10),
		FieldDeletedAt:    strconv.FormatInt(rec.DeletedAt(), 10),
	}
	return m
}

// FromHash converts a flat hash map back into a Record.
func FromHash(m map[string]string) domrec.Record {
	md := domrec.Metadata{
		Priority:   m[FieldPriority],
		DueDate:    parseInt(m[FieldDueDate]),
		Assignees:  splitTags(m[FieldAssignees]),
		Status:     m[FieldCardStatus],
		BoardTitle: m[FieldBoardTitle],
		ListTitle:  m[FieldListTitle],
	}

	return domrec.Reconstruct(
		m[FieldItemID], domrec.ItemType(m[FieldItemType]),
		m[FieldTitle], m[FieldContent],
		splitTags(m[FieldTags]), splitTags(m[FieldLabels]),
		m[FieldOwnerID], m[FieldBoardID], m[FieldListID],
		domrec.Status(m[FieldStatus]), md,
		parseFloat(m[FieldScore]),
		parseInt(m[FieldCreatedAt]), parseInt(m[FieldUpdatedAt]), parseInt(m[FieldDeletedAt]),
	)
}

func splitTags(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, TagSeparator)
}

func parseInt(s string) int64 {
	v, _ := strconv.ParseInt(s, 10, 64)
	return v
}

func parseFloat(s string) float64 {
	v, _ := strconv.ParseFloat(s, 64)
	return v
}

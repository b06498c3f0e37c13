package madsearch

import (
	"context"
	"fmt"

	"github.com/madplan/madsearch/internal/domain/record"
	"github.com/madplan/madsearch/internal/domain/search/request"
	"github.com/madplan/madsearch/internal/domain/search/result"
)

// Search runs a search scoped to the user's records.
func (c *Client) Search(ctx context.Context, userID, query string, opts *SearchOptions) (*Response, error) {
	if opts == nil {
		opts = &SearchOptions{}
	}

	types := make([]record.ItemType, len(opts.Filters.Types))
	for i, t := range opts.Filters.Types {
		types[i] = record.ItemType(t)
	}

	req, err := request.New(
		query,
		request.Filters{
			Types:         types,
			BoardIDs:      opts.Filters.BoardIDs,
			Labels:        opts.Filters.Labels,
			Priorities:    opts.Filters.Priorities,
			Assignees:     opts.Filters.Assignees,
			Status:        opts.Filters.Status,
			DueBefore:     opts.Filters.DueBefore,
			DueAfter:      opts.Filters.DueAfter,
			CreatedBefore: opts.Filters.CreatedBefore,
			CreatedAfter:  opts.Filters.CreatedAfter,
		},
		request.SortBy(opts.SortBy), request.SortOrder(opts.SortOrder),
		opts.Limit, opts.Offset,
		opts.IncludeHighlights,
	)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}

	resp, err := c.searchSvc.SearchGlobal(ctx, userID, &req)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}
	return fromResponse(resp), nil
}

func fromResponse(r *result.Response) *Response {
	out := &Response{
		TotalCount:    r.TotalCount,
		Query:         r.Query,
		ExecutionTime: r.ExecutionTime,
		HasMore:       r.HasMore,
		Results:       make([]Result, len(r.Results)),
		Aggregations: Aggregations{
			Types:      fromBuckets(r.Aggregations.Types),
			Boards:     fromBuckets(r.Aggregations.Boards),
			Labels:     fromBuckets(r.Aggregations.Labels),
			Priorities: fromBuckets(r.Aggregations.Priorities),
			Statuses:   fromBuckets(r.Aggregations.Statuses),
		},
	}
	for _, s := range r.Suggestions {
		out.Suggestions = append(out.Suggestions, Suggestion{Text: s.Text, Kind: s.Kind, Score: s.Score})
	}
	for i := range r.Results {
		out.Results[i] = fromResult(&r.Results[i])
	}
	return out
}

func fromResult(r *result.Result) Result {
	res := Result{
		ItemID:         r.ItemID,
		ItemType:       ItemType(r.ItemType),
		Title:          r.Title,
		Snippet:        r.Snippet,
		BoardID:        r.BoardID,
		ListID:         r.ListID,
		Tags:           r.Tags,
		Labels:         r.Labels,
		RelevanceScore: r.RelevanceScore,
		CreatedAt:      r.CreatedAt,
		UpdatedAt:      r.UpdatedAt,
	}
	for _, h := range r.Highlights {
		res.Highlights = append(res.Highlights, Highlight{
			Field:      h.Field,
			Snippet:    h.Snippet,
			StartIndex: h.StartIndex,
			EndIndex:   h.EndIndex,
		})
	}
	if r.Metadata != nil {
		res.Metadata = &Meta{
			Priority:   r.Metadata.Priority,
			DueDate:    r.Metadata.DueDate,
			Assignees:  r.Metadata.Assignees,
			Status:     r.Metadata.Status,
			BoardTitle: r.Metadata.BoardTitle,
			ListTitle:  r.Metadata.ListTitle,
		}
	}
	return res
}

func fromBuckets(in []result.FacetBucket) []FacetBucket {
	if len(in) == 0 {
		return nil
	}
	out := make([]FacetBucket, len(in))
	for i, b := range in {
		out[i] = FacetBucket{Value: b.Value, Count: b.Count, Selected: b.Selected}
	}
	return out
}

package query

import (
	"regexp"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"

	"creashort/internal/models"
)

// Status filter keywords accepted by the agent listing
const (
	FilterAll            = "all"
	FilterActive         = "active"
	FilterPaused         = "paused"
	FilterBehindSchedule = "behind-schedule"
	FilterProcessing     = "processing"
)

// AgentStatusFilter maps a status keyword onto a filter document.
// Unknown keywords (including "all" and empty) apply no filter.
func AgentStatusFilter(status string, now time.Time) bson.M {
	switch status {
	case FilterActive:
		return bson.M{"schedule.active": true}
	case FilterPaused:
		return bson.M{"schedule.active": false}
	case FilterBehindSchedule:
		return bson.M{
			"schedule.active":             true,
			"schedule.nextGenerationDate": bson.M{"$lt": GraceCutoff(now)},
		}
	case FilterProcessing:
		return bson.M{"schedule.generationHistory.status": models.StatusProcessing}
	default:
		return bson.M{}
	}
}

// SearchFilter builds a case-insensitive substring predicate across the given
// fields. The term is trimmed and regex-escaped so user input cannot act as a
// pattern. An empty term yields no filter, matching the no-search behavior.
func SearchFilter(term string, fields ...string) bson.M {
	term = strings.TrimSpace(term)
	if term == "" || len(fields) == 0 {
		return bson.M{}
	}
	escaped := regexp.QuoteMeta(term)
	if len(fields) == 1 {
		return bson.M{fields[0]: bson.M{"$regex": escaped, "$options": "i"}}
	}
	or := make([]bson.M, 0, len(fields))
	for _, field := range fields {
		or = append(or, bson.M{field: bson.M{"$regex": escaped, "$options": "i"}})
	}
	return bson.M{"$or": or}
}

// Merge combines filter documents into one. Later $or clauses would clobber
// earlier ones, so callers combine at most one SearchFilter per merge.
func Merge(filters ...bson.M) bson.M {
	merged := bson.M{}
	for _, f := range filters {
		for k, v := range f {
			merged[k] = v
		}
	}
	return merged
}

// NotPaused selects agents that are not currently paused: pausedUntil is
// absent, null, or already elapsed.
func NotPaused(now time.Time) bson.M {
	return bson.M{
		"$or": []bson.M{
			{"schedule.pausedUntil": nil},
			{"schedule.pausedUntil": bson.M{"$lte": now}},
		},
	}
}

// Page is a resolved pagination window
type Page struct {
	Page  int
	Limit int
}

// ParsePage clamps page/limit to sane values, falling back to page 1 and the
// given default limit when the inputs are missing or invalid.
func ParsePage(page, limit, defaultLimit int) Page {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = defaultLimit
	}
	return Page{Page: page, Limit: limit}
}

// Skip returns the number of records before this page.
func (p Page) Skip() int64 {
	return int64(p.Page-1) * int64(p.Limit)
}

// Package query builds MongoDB filter documents and aggregation pipelines
// for the dashboard's reporting endpoints. Pipelines are composed as data so
// the stages can be inspected and tested without a live database.
package query

import (
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// Pipeline accumulates aggregation stages in order
type Pipeline struct {
	stages mongo.Pipeline
}

// NewPipeline returns an empty pipeline
func NewPipeline() *Pipeline {
	return &Pipeline{}
}

func (p *Pipeline) add(op string, value interface{}) *Pipeline {
	p.stages = append(p.stages, bson.D{{Key: op, Value: value}})
	return p
}

// Match appends a $match stage. Empty filters are skipped so callers can
// pass optional predicates unconditionally.
func (p *Pipeline) Match(filter bson.M) *Pipeline {
	if len(filter) == 0 {
		return p
	}
	return p.add("$match", filter)
}

// Unwind appends a $unwind stage for the given field path.
func (p *Pipeline) Unwind(path string) *Pipeline {
	return p.add("$unwind", path)
}

// Group appends a $group stage.
func (p *Pipeline) Group(spec bson.M) *Pipeline {
	return p.add("$group", spec)
}

// Project appends a $project stage.
func (p *Pipeline) Project(spec bson.M) *Pipeline {
	return p.add("$project", spec)
}

// AddFields appends an $addFields stage.
func (p *Pipeline) AddFields(spec bson.M) *Pipeline {
	return p.add("$addFields", spec)
}

// Sort appends a $sort stage. bson.D keeps multi-key sort order stable.
func (p *Pipeline) Sort(spec bson.D) *Pipeline {
	return p.add("$sort", spec)
}

// Skip appends a $skip stage.
func (p *Pipeline) Skip(n int64) *Pipeline {
	return p.add("$skip", n)
}

// Limit appends a $limit stage.
func (p *Pipeline) Limit(n int64) *Pipeline {
	return p.add("$limit", n)
}

// Count appends a $count stage emitting the total under the given field.
func (p *Pipeline) Count(field string) *Pipeline {
	return p.add("$count", field)
}

// Build returns the assembled stages for collection.Aggregate.
func (p *Pipeline) Build() mongo.Pipeline {
	return p.stages
}

// Len returns the number of stages accumulated so far.
func (p *Pipeline) Len() int {
	return len(p.stages)
}

// Clone returns an independent copy, useful for deriving a count pipeline
// from a page pipeline before Skip/Limit are appended.
func (p *Pipeline) Clone() *Pipeline {
	clone := &Pipeline{stages: make(mongo.Pipeline, len(p.stages))}
	copy(clone.stages, p.stages)
	return clone
}

// DateToDay is the $dateToString expression grouping timestamps into UTC
// calendar days (YYYY-MM-DD).
func DateToDay(field string) bson.M {
	return bson.M{
		"$dateToString": bson.M{
			"format": "%Y-%m-%d",
			"date":   field,
		},
	}
}

// SizeOfMatching is a $size-over-$filter expression counting array entries
// whose field equals one of the given values. The array field defaults to []
// when absent so documents without a history still project a zero count.
func SizeOfMatching(arrayField, itemField string, values ...string) bson.M {
	var cond bson.M
	if len(values) == 1 {
		cond = bson.M{"$eq": bson.A{"$$this." + itemField, values[0]}}
	} else {
		cond = bson.M{"$in": bson.A{"$$this." + itemField, values}}
	}
	return bson.M{
		"$size": bson.M{
			"$filter": bson.M{
				"input": bson.M{"$ifNull": bson.A{arrayField, bson.A{}}},
				"cond":  cond,
			},
		},
	}
}

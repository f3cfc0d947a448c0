package services

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"creashort/internal/database"
	"creashort/internal/models"
	"creashort/internal/query"
)

// Schedule listing type keywords
const (
	ScheduleUpcoming = "upcoming"
	ScheduleOverdue  = "overdue"
	ScheduleAll      = "all"
)

// ScheduleService builds the generation-schedule listing
type ScheduleService struct {
	collection *mongo.Collection
}

// NewScheduleService creates a new schedule service
func NewScheduleService(mongoDB *database.MongoDB) *ScheduleService {
	return &ScheduleService{
		collection: mongoDB.Collection(database.CollectionUserAgents),
	}
}

// ScheduleResult is one page of the schedule listing plus the summary over
// the full matched set.
type ScheduleResult struct {
	Items      []models.ScheduleItem  `json:"schedule"`
	Summary    models.ScheduleSummary `json:"summary"`
	Pagination models.Pagination      `json:"pagination"`
}

// scheduleDateFilter maps the type keyword onto a nextGenerationDate
// predicate. "all" (and any unknown keyword) applies none: the full active
// schedule is listed regardless of horizon. Overdue is a plain past-due
// check; the grace period only affects the behind-schedule agent status.
func scheduleDateFilter(scheduleType string, now time.Time, days int) bson.M {
	switch scheduleType {
	case ScheduleUpcoming:
		return bson.M{"$gte": now, "$lte": now.AddDate(0, 0, days)}
	case ScheduleOverdue:
		return bson.M{"$lt": now}
	default:
		return nil
	}
}

// GetSchedule lists active, unpaused agents by next generation date. The
// type keyword selects upcoming slots within the horizon, slots already past
// due, or everything.
func (s *ScheduleService) GetSchedule(ctx context.Context, scheduleType string, days int, page query.Page) (*ScheduleResult, error) {
	now := time.Now()
	if days < 1 {
		days = 7
	}

	filter := query.Merge(
		bson.M{"schedule.active": true},
		query.NotPaused(now),
	)
	if dateFilter := scheduleDateFilter(scheduleType, now, days); dateFilter != nil {
		filter["schedule.nextGenerationDate"] = dateFilter
	}

	findOpts := options.Find().
		SetSort(bson.D{{Key: "schedule.nextGenerationDate", Value: 1}})

	cursor, err := s.collection.Find(ctx, filter, findOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to query schedule: %w", err)
	}
	defer cursor.Close(ctx)

	var agents []models.UserAgent
	if err := cursor.All(ctx, &agents); err != nil {
		return nil, fmt.Errorf("failed to decode schedule: %w", err)
	}

	items := make([]models.ScheduleItem, 0, len(agents))
	summary := models.ScheduleSummary{Total: len(agents)}
	for i := range agents {
		item := scheduleItem(&agents[i], now)
		if item.IsOverdue {
			summary.Overdue++
		} else {
			summary.Upcoming++
		}
		items = append(items, item)
	}

	total := int64(len(items))
	start := int(page.Skip())
	if start > len(items) {
		start = len(items)
	}
	end := start + page.Limit
	if end > len(items) {
		end = len(items)
	}

	return &ScheduleResult{
		Items:      items[start:end],
		Summary:    summary,
		Pagination: models.NewPagination(page.Page, page.Limit, total),
	}, nil
}

// scheduleItem projects one agent into a schedule row
func scheduleItem(agent *models.UserAgent, now time.Time) models.ScheduleItem {
	item := models.ScheduleItem{
		AgentID:            agent.AgentID,
		AgentName:          agent.AgentName,
		AgentRole:          agent.AgentRole,
		UserID:             agent.UserID,
		NextGenerationDate: agent.Schedule.NextGenerationDate,
		IsOverdue:          agent.Schedule.NextGenerationDate.Before(now),
		DaysUntilNext:      query.DaysUntil(now, agent.Schedule.NextGenerationDate),
		Frequency:          agent.Frequency,
	}
	if last := agent.LastGeneration(); last != nil {
		item.LastGeneration = &models.LastGenerationView{
			Date:     last.Date,
			Status:   last.Status,
			VideoURL: last.VideoURL,
		}
	}
	return item
}

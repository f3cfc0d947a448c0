package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"creashort/internal/database"
	"creashort/internal/models"
	"creashort/internal/query"
)

// ErrAgentNotFound is returned when no record matches the requested agent id
var ErrAgentNotFound = errors.New("agent not found")

// AgentService handles agent listing, detail views and the cleanup mutation
type AgentService struct {
	collection *mongo.Collection
}

// NewAgentService creates a new agent service
func NewAgentService(mongoDB *database.MongoDB) *AgentService {
	return &AgentService{
		collection: mongoDB.Collection(database.CollectionUserAgents),
	}
}

// ListAgentsOptions are the resolved query parameters of the agent listing
type ListAgentsOptions struct {
	Status string
	Search string
	Page   query.Page
}

// ListAgents returns one page of agents matching the status keyword and
// search term, newest first, each decorated with derived schedule stats.
func (s *AgentService) ListAgents(ctx context.Context, opts ListAgentsOptions) ([]models.AgentWithStats, models.Pagination, error) {
	now := time.Now()
	filter := query.Merge(
		query.AgentStatusFilter(opts.Status, now),
		query.SearchFilter(opts.Search, "agentName", "agentRole", "userId"),
	)

	findOpts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetSkip(opts.Page.Skip()).
		SetLimit(int64(opts.Page.Limit))

	cursor, err := s.collection.Find(ctx, filter, findOpts)
	if err != nil {
		return nil, models.Pagination{}, fmt.Errorf("failed to query agents: %w", err)
	}
	defer cursor.Close(ctx)

	var agents []models.UserAgent
	if err := cursor.All(ctx, &agents); err != nil {
		return nil, models.Pagination{}, fmt.Errorf("failed to decode agents: %w", err)
	}

	total, err := s.collection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, models.Pagination{}, fmt.Errorf("failed to count agents: %w", err)
	}

	withStats := make([]models.AgentWithStats, 0, len(agents))
	for i := range agents {
		withStats = append(withStats, decorateAgent(&agents[i], now))
	}

	return withStats, models.NewPagination(opts.Page.Page, opts.Page.Limit, total), nil
}

// decorateAgent attaches the list-view derived fields to one record
func decorateAgent(agent *models.UserAgent, now time.Time) models.AgentWithStats {
	stats := agent.Stats()
	item := models.AgentWithStats{
		UserAgent:        *agent,
		IsBehindSchedule: agent.IsBehindSchedule(now),
		TotalGenerations: stats.Total,
		ProcessingCount:  stats.Processing,
		CompletedCount:   stats.Completed,
		FailedCount:      stats.Failed,
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

// GetAgent returns the full detail view for one agent id, or
// ErrAgentNotFound when no record matches.
func (s *AgentService) GetAgent(ctx context.Context, agentID string) (*models.AgentDetails, error) {
	var agent models.UserAgent
	err := s.collection.FindOne(ctx, bson.M{"agentId": agentID}).Decode(&agent)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrAgentNotFound
		}
		return nil, fmt.Errorf("failed to get agent %s: %w", agentID, err)
	}

	now := time.Now()
	stats := agent.Stats()

	details := &models.AgentDetails{
		UserAgent:             agent,
		IsBehindSchedule:      agent.IsBehindSchedule(now),
		ProcessingCount:       stats.Processing,
		CompletedCount:        stats.Completed,
		FailedCount:           stats.Failed,
		TotalGenerations:      stats.Total,
		SuccessfulGenerations: stats.Completed,
		FailedGenerations:     stats.Failed,
		RecentGenerations:     agent.RecentGenerations(),
		UpcomingScripts:       agent.UpcomingScripts(5),
	}
	if last := agent.LastGeneration(); last != nil {
		details.LastGeneration = &models.LastGenerationView{
			Date:         last.Date,
			Status:       last.Status,
			VideoURL:     last.VideoURL,
			ScriptID:     last.ScriptID,
			VideoID:      last.VideoID,
			GenerationID: last.GenerationID.Hex(),
			Error:        last.Error,
		}
	}

	return details, nil
}

// failedHistoryPull is the cleanup update: drop exactly the failed attempts
// from every record's generation history, nothing else. Applying it twice is
// a no-op.
func failedHistoryPull() bson.M {
	return bson.M{
		"$pull": bson.M{
			"schedule.generationHistory": bson.M{"status": models.StatusFailed},
		},
	}
}

// CleanupFailed removes every failed generation attempt from every record in
// one bulk update. Destructive and unconditional; a second invocation matches
// nothing and reports zero modified records.
func (s *AgentService) CleanupFailed(ctx context.Context) (*models.CleanupResult, error) {
	opID := uuid.New().String()[:8]
	log.Printf("🧹 [%s] Cleanup of failed generation history starting", opID)

	result, err := s.collection.UpdateMany(ctx, bson.M{}, failedHistoryPull())
	if err != nil {
		if metrics := GetMetrics(); metrics != nil {
			metrics.RecordCleanupFailure()
		}
		return nil, fmt.Errorf("failed to clean up failed generations: %w", err)
	}

	totalAgents, err := s.CountAgents(ctx)
	if err != nil {
		return nil, err
	}
	activeAgents, err := s.CountActive(ctx)
	if err != nil {
		return nil, err
	}

	if metrics := GetMetrics(); metrics != nil {
		metrics.RecordCleanup(result.ModifiedCount)
	}
	log.Printf("🧹 [%s] Cleanup pruned failed history from %d of %d agents", opID, result.ModifiedCount, totalAgents)

	return &models.CleanupResult{
		Success:        true,
		Message:        "Failed generation history cleaned up successfully",
		ModifiedAgents: result.ModifiedCount,
		TotalAgents:    totalAgents,
		ActiveAgents:   activeAgents,
	}, nil
}

// CountAgents returns the total number of agent records
func (s *AgentService) CountAgents(ctx context.Context) (int64, error) {
	count, err := s.collection.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("failed to count agents: %w", err)
	}
	return count, nil
}

// CountActive returns the number of agents with an active schedule
func (s *AgentService) CountActive(ctx context.Context) (int64, error) {
	count, err := s.collection.CountDocuments(ctx, bson.M{"schedule.active": true})
	if err != nil {
		return 0, fmt.Errorf("failed to count active agents: %w", err)
	}
	return count, nil
}

// CountBehindSchedule returns the number of active agents whose next
// generation is past the grace period.
func (s *AgentService) CountBehindSchedule(ctx context.Context, now time.Time) (int64, error) {
	count, err := s.collection.CountDocuments(ctx, bson.M{
		"schedule.active":             true,
		"schedule.nextGenerationDate": bson.M{"$lt": query.GraceCutoff(now)},
	})
	if err != nil {
		return 0, fmt.Errorf("failed to count behind-schedule agents: %w", err)
	}
	return count, nil
}

// CountProcessingAttempts sums the processing generation attempts across all
// active agents.
func (s *AgentService) CountProcessingAttempts(ctx context.Context) (int64, error) {
	pipeline := query.NewPipeline().
		Match(bson.M{
			"schedule.active":                   true,
			"schedule.generationHistory.status": models.StatusProcessing,
		}).
		Project(bson.M{
			"processingCount": query.SizeOfMatching("$schedule.generationHistory", "status", models.StatusProcessing),
		}).
		Group(bson.M{
			"_id":   nil,
			"total": bson.M{"$sum": "$processingCount"},
		}).
		Build()

	cursor, err := s.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return 0, fmt.Errorf("failed to count processing attempts: %w", err)
	}
	defer cursor.Close(ctx)

	var results []bson.M
	if err := cursor.All(ctx, &results); err != nil {
		return 0, fmt.Errorf("failed to decode processing count: %w", err)
	}
	if len(results) == 0 {
		return 0, nil
	}
	return extractInt64(results[0], "total"), nil
}

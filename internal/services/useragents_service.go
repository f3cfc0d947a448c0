package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"creashort/internal/database"
	"creashort/internal/models"
	"creashort/internal/query"
)

// DuplicateWindow is the creation-time proximity within which two otherwise
// identical agents are treated as accidental duplicates.
const DuplicateWindow = time.Minute

// UserAgentsService builds the per-user agent listing with duplicate tagging
type UserAgentsService struct {
	collection *mongo.Collection
}

// NewUserAgentsService creates a new users+agents service
func NewUserAgentsService(mongoDB *database.MongoDB) *UserAgentsService {
	return &UserAgentsService{
		collection: mongoDB.Collection(database.CollectionUserAgents),
	}
}

// UsersAgentsSummary reports totals over the full matched set
type UsersAgentsSummary struct {
	TotalUsers          int `json:"totalUsers"`
	TotalAgents         int `json:"totalAgents"`
	UsersWithDuplicates int `json:"usersWithDuplicates"`
}

// UsersAgentsResult is one page of users with their agents
type UsersAgentsResult struct {
	Users      []models.UserWithAgents `json:"users"`
	Summary    UsersAgentsSummary      `json:"summary"`
	Pagination models.Pagination       `json:"pagination"`
}

// userGroup is the decoded shape of the per-user $group stage
type userGroup struct {
	UserID string             `bson:"_id"`
	Agents []models.UserAgent `bson:"agents"`
}

// usersAgentsFilter ANDs the two substring filters, and restricts to active
// schedules in duplicates-only mode so stale experiments do not drown the
// duplicate report.
func usersAgentsFilter(userID, customInstructions string, duplicatesOnly bool) bson.M {
	filter := query.Merge(
		query.SearchFilter(userID, "userId"),
		query.SearchFilter(customInstructions, "customInstructions"),
	)
	if duplicatesOnly {
		filter["schedule.active"] = true
	}
	return filter
}

// usersAgentsPipeline groups agents per owner, agents newest-first within
// each group, user rows sorted by userId descending.
func usersAgentsPipeline(filter bson.M) mongo.Pipeline {
	return query.NewPipeline().
		Match(filter).
		Sort(bson.D{{Key: "createdAt", Value: -1}}).
		Group(bson.M{
			"_id":    "$userId",
			"agents": bson.M{"$push": "$$ROOT"},
		}).
		Sort(bson.D{{Key: "_id", Value: -1}}).
		Build()
}

// GetUsersWithAgents groups agents by owner, tags near-identical agents
// created within the duplicate window, and returns one page of users. In
// duplicates-only mode unflagged agents are stripped from each row and users
// left without a flagged agent are dropped.
func (s *UserAgentsService) GetUsersWithAgents(ctx context.Context, userID, customInstructions string, duplicatesOnly bool, page query.Page) (*UsersAgentsResult, error) {
	pipeline := usersAgentsPipeline(usersAgentsFilter(userID, customInstructions, duplicatesOnly))

	cursor, err := s.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("failed to group agents by user: %w", err)
	}
	defer cursor.Close(ctx)

	var groups []userGroup
	if err := cursor.All(ctx, &groups); err != nil {
		return nil, fmt.Errorf("failed to decode user groups: %w", err)
	}

	summary := UsersAgentsSummary{}
	users := make([]models.UserWithAgents, 0, len(groups))
	for _, group := range groups {
		user := buildUserWithAgents(group, duplicatesOnly)
		summary.TotalUsers++
		summary.TotalAgents += len(group.Agents)
		if user.HasDuplicates {
			summary.UsersWithDuplicates++
		}
		if duplicatesOnly && !user.HasDuplicates {
			continue
		}
		users = append(users, user)
	}

	total := int64(len(users))
	start := int(page.Skip())
	if start > len(users) {
		start = len(users)
	}
	end := start + page.Limit
	if end > len(users) {
		end = len(users)
	}

	return &UsersAgentsResult{
		Users:      users[start:end],
		Summary:    summary,
		Pagination: models.NewPagination(page.Page, page.Limit, total),
	}, nil
}

// buildUserWithAgents projects one user group into its listing shape.
// duplicatesOnly keeps only the flagged agents in the row.
func buildUserWithAgents(group userGroup, duplicatesOnly bool) models.UserWithAgents {
	counts := duplicateCounts(group.Agents)

	user := models.UserWithAgents{
		UserID: group.UserID,
		Agents: make([]models.UserAgentView, 0, len(group.Agents)),
	}
	for i := range group.Agents {
		if counts[i] > 0 {
			user.HasDuplicates = true
		}
		if duplicatesOnly && counts[i] == 0 {
			continue
		}
		agent := &group.Agents[i]
		stats := agent.Stats()

		totalVideos := agent.Frequency.MonthlyVideos
		remaining := totalVideos - stats.Completed
		if remaining < 0 {
			remaining = 0
		}

		user.Agents = append(user.Agents, models.UserAgentView{
			AgentID:                        agent.AgentID,
			AgentName:                      agent.AgentName,
			AgentRole:                      agent.AgentRole,
			CustomInstructions:             agent.CustomInstructions,
			Language:                       agent.Language,
			Frequency:                      agent.Frequency,
			Schedule:                       agent.Schedule,
			CompletedVideos:                stats.Completed,
			RemainingVideos:                remaining,
			TotalVideos:                    totalVideos,
			VoiceID:                        agent.VoiceID,
			FontStyle:                      agent.FontStyle,
			TextColor:                      agent.TextColor,
			SelectedSocialMediaAccount:     agent.SelectedSocialMediaAccount,
			CreatedAt:                      agent.CreatedAt,
			UpdatedAt:                      agent.UpdatedAt,
			HasDuplicateCustomInstructions: counts[i] > 0,
			DuplicateCount:                 counts[i],
		})
	}
	return user
}

// duplicateCounts reports, for each agent, how many OTHER agents of the same
// owner look like accidental duplicates of it: byte-for-byte equal custom
// instructions (trimming applies only to the non-empty precondition),
// identical frequency plan, and creation times within the duplicate window
// of each other.
func duplicateCounts(agents []models.UserAgent) []int {
	counts := make([]int, len(agents))
	for i := range agents {
		if strings.TrimSpace(agents[i].CustomInstructions) == "" {
			continue
		}
		for j := i + 1; j < len(agents); j++ {
			if strings.TrimSpace(agents[j].CustomInstructions) == "" {
				continue
			}
			if agents[i].CustomInstructions != agents[j].CustomInstructions {
				continue
			}
			delta := agents[i].CreatedAt.Sub(agents[j].CreatedAt)
			if delta < 0 {
				delta = -delta
			}
			if delta > DuplicateWindow {
				continue
			}
			if !agents[i].Frequency.Equal(agents[j].Frequency) {
				continue
			}
			counts[i]++
			counts[j]++
		}
	}
	return counts
}

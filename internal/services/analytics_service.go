package services

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"creashort/internal/database"
	"creashort/internal/models"
	"creashort/internal/query"
)

// successStatuses matches the canonical published status plus the legacy
// synonyms still present in historical documents.
var successStatuses = []string{
	models.StatusPublished,
	models.StatusCompleted,
	models.StatusCompletedAndPosted,
	models.StatusSuccess,
}

// AnalyticsService computes the analytics and overview rollups
type AnalyticsService struct {
	collection *mongo.Collection
	agents     *AgentService
	cache      Cache
	cacheTTL   time.Duration
}

// NewAnalyticsService creates a new analytics service. cache may be nil to
// disable result caching.
func NewAnalyticsService(mongoDB *database.MongoDB, agents *AgentService, cache Cache, cacheTTL time.Duration) *AnalyticsService {
	return &AnalyticsService{
		collection: mongoDB.Collection(database.CollectionUserAgents),
		agents:     agents,
		cache:      cache,
		cacheTTL:   cacheTTL,
	}
}

// GetAnalytics returns the four analytics aggregations for the given period
// keyword, optionally restricted to a single agent. Trend, distribution and
// frequency series are period-scoped; agent performance is lifetime-scoped so
// success rates stay meaningful for infrequent agents.
func (s *AnalyticsService) GetAnalytics(ctx context.Context, period, agentID string) (*models.AnalyticsReport, error) {
	now := time.Now()
	periodName, start := query.PeriodWindow(period, now)

	cacheKey := fmt.Sprintf("analytics:%s:%s", periodName, agentID)
	if cached, ok := s.cacheGet(ctx, cacheKey); ok {
		var report models.AnalyticsReport
		if err := json.Unmarshal(cached, &report); err == nil {
			return &report, nil
		}
	}

	queryStart := time.Now()

	agentFilter := bson.M{}
	if agentID != "" {
		agentFilter = bson.M{"agentId": agentID}
	}

	dailyTrends, err := s.dailyTrends(ctx, agentFilter, start)
	if err != nil {
		return nil, err
	}
	statusDistribution, err := s.statusDistribution(ctx, agentFilter, start)
	if err != nil {
		return nil, err
	}
	agentPerformance, err := s.agentPerformance(ctx, agentFilter)
	if err != nil {
		return nil, err
	}
	frequencyDistribution, err := s.frequencyDistribution(ctx, agentFilter)
	if err != nil {
		return nil, err
	}

	if metrics := GetMetrics(); metrics != nil {
		metrics.ObserveQuery("analytics", time.Since(queryStart).Seconds())
	}

	report := &models.AnalyticsReport{
		DailyTrends:           dailyTrends,
		StatusDistribution:    statusDistribution,
		AgentPerformance:      agentPerformance,
		FrequencyDistribution: frequencyDistribution,
		Period:                periodName,
		StartDate:             start,
		EndDate:               now,
	}

	s.cacheSet(ctx, cacheKey, report)
	return report, nil
}

// dailyTrendsPipeline groups generation attempts by UTC calendar day and
// status within the period window.
func dailyTrendsPipeline(agentFilter bson.M, start time.Time) mongo.Pipeline {
	return query.NewPipeline().
		Match(agentFilter).
		Unwind("$schedule.generationHistory").
		Match(bson.M{"schedule.generationHistory.date": bson.M{"$gte": start}}).
		Group(bson.M{
			"_id": bson.M{
				"date":   query.DateToDay("$schedule.generationHistory.date"),
				"status": "$schedule.generationHistory.status",
			},
			"count": bson.M{"$sum": 1},
		}).
		Group(bson.M{
			"_id": "$_id.date",
			"statuses": bson.M{
				"$push": bson.M{
					"status": "$_id.status",
					"count":  "$count",
				},
			},
		}).
		Sort(bson.D{{Key: "_id", Value: 1}}).
		Build()
}

func (s *AnalyticsService) dailyTrends(ctx context.Context, agentFilter bson.M, start time.Time) ([]models.DailyTrend, error) {
	cursor, err := s.collection.Aggregate(ctx, dailyTrendsPipeline(agentFilter, start))
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate daily trends: %w", err)
	}
	defer cursor.Close(ctx)

	trends := []models.DailyTrend{}
	if err := cursor.All(ctx, &trends); err != nil {
		return nil, fmt.Errorf("failed to decode daily trends: %w", err)
	}

	for i := range trends {
		trends[i].Statuses = mergeStatusCounts(trends[i].Statuses)
	}
	return trends, nil
}

// statusDistribution counts attempts per status within the period window.
func (s *AnalyticsService) statusDistribution(ctx context.Context, agentFilter bson.M, start time.Time) ([]models.StatusCount, error) {
	pipeline := query.NewPipeline().
		Match(agentFilter).
		Unwind("$schedule.generationHistory").
		Match(bson.M{"schedule.generationHistory.date": bson.M{"$gte": start}}).
		Group(bson.M{
			"_id":   "$schedule.generationHistory.status",
			"count": bson.M{"$sum": 1},
		}).
		Project(bson.M{
			"_id":    0,
			"status": "$_id",
			"count":  1,
		}).
		Build()

	cursor, err := s.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate status distribution: %w", err)
	}
	defer cursor.Close(ctx)

	counts := []models.StatusCount{}
	if err := cursor.All(ctx, &counts); err != nil {
		return nil, fmt.Errorf("failed to decode status distribution: %w", err)
	}
	return mergeStatusCounts(counts), nil
}

// agentPerformancePipeline computes lifetime per-agent totals, sorted by
// success rate. Deliberately not window-scoped: rates over a few days are
// noise for agents generating weekly.
func agentPerformancePipeline(agentFilter bson.M) mongo.Pipeline {
	history := "$schedule.generationHistory"
	totalExpr := bson.M{"$size": bson.M{"$ifNull": bson.A{history, bson.A{}}}}

	return query.NewPipeline().
		Match(agentFilter).
		Project(bson.M{
			"_id":              0,
			"agentId":          1,
			"agentName":        1,
			"agentRole":        1,
			"totalVideos":      totalExpr,
			"publishedVideos":  query.SizeOfMatching(history, "status", successStatuses...),
			"failedVideos":     query.SizeOfMatching(history, "status", models.StatusFailed),
			"processingVideos": query.SizeOfMatching(history, "status", models.StatusProcessing),
		}).
		AddFields(bson.M{
			"successRate": bson.M{
				"$cond": bson.A{
					bson.M{"$gt": bson.A{"$totalVideos", 0}},
					bson.M{"$multiply": bson.A{
						bson.M{"$divide": bson.A{"$publishedVideos", "$totalVideos"}},
						100,
					}},
					0,
				},
			},
		}).
		Sort(bson.D{{Key: "successRate", Value: -1}}).
		Build()
}

func (s *AnalyticsService) agentPerformance(ctx context.Context, agentFilter bson.M) ([]models.AgentPerformance, error) {
	cursor, err := s.collection.Aggregate(ctx, agentPerformancePipeline(agentFilter))
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate agent performance: %w", err)
	}
	defer cursor.Close(ctx)

	performance := []models.AgentPerformance{}
	if err := cursor.All(ctx, &performance); err != nil {
		return nil, fmt.Errorf("failed to decode agent performance: %w", err)
	}
	return performance, nil
}

// frequencyDistribution counts agents per generation interval.
func (s *AnalyticsService) frequencyDistribution(ctx context.Context, agentFilter bson.M) ([]models.FrequencyBucket, error) {
	pipeline := query.NewPipeline().
		Match(agentFilter).
		Group(bson.M{
			"_id":   "$frequency.intervalDays",
			"count": bson.M{"$sum": 1},
		}).
		Sort(bson.D{{Key: "_id", Value: 1}}).
		Build()

	cursor, err := s.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate frequency distribution: %w", err)
	}
	defer cursor.Close(ctx)

	buckets := []models.FrequencyBucket{}
	if err := cursor.All(ctx, &buckets); err != nil {
		return nil, fmt.Errorf("failed to decode frequency distribution: %w", err)
	}
	return buckets, nil
}

// GetOverview returns the dashboard headline numbers. Today and this-week
// windows are fixed to UTC so the counts match the trend series regardless
// of server timezone.
func (s *AnalyticsService) GetOverview(ctx context.Context) (*models.OverviewStats, error) {
	const cacheKey = "overview"
	if cached, ok := s.cacheGet(ctx, cacheKey); ok {
		var stats models.OverviewStats
		if err := json.Unmarshal(cached, &stats); err == nil {
			return &stats, nil
		}
	}

	now := time.Now()
	queryStart := now

	totalAgents, err := s.agents.CountAgents(ctx)
	if err != nil {
		return nil, err
	}
	activeAgents, err := s.agents.CountActive(ctx)
	if err != nil {
		return nil, err
	}
	behindSchedule, err := s.agents.CountBehindSchedule(ctx, now)
	if err != nil {
		return nil, err
	}
	processing, err := s.agents.CountProcessingAttempts(ctx)
	if err != nil {
		return nil, err
	}

	todayStart, todayEnd := query.UTCDayBounds(now)
	weekStart, weekEnd := query.UTCWeekBounds(now)

	// Generated counts include every attempt in the window, whatever its
	// outcome; only failedVideos is status-scoped.
	videosToday, err := s.countAttempts(ctx, todayStart, todayEnd, nil)
	if err != nil {
		return nil, err
	}
	videosThisWeek, err := s.countAttempts(ctx, weekStart, weekEnd, nil)
	if err != nil {
		return nil, err
	}
	failedThisWeek, err := s.countAttempts(ctx, weekStart, weekEnd, []string{models.StatusFailed})
	if err != nil {
		return nil, err
	}

	userIDs, err := s.collection.Distinct(ctx, "userId", bson.M{})
	if err != nil {
		return nil, fmt.Errorf("failed to count unique users: %w", err)
	}

	if metrics := GetMetrics(); metrics != nil {
		metrics.ObserveQuery("overview", time.Since(queryStart).Seconds())
	}

	stats := &models.OverviewStats{
		TotalAgents:             totalAgents,
		ActiveAgents:            activeAgents,
		BehindSchedule:          behindSchedule,
		ProcessingVideos:        processing,
		VideosGeneratedToday:    videosToday,
		VideosGeneratedThisWeek: videosThisWeek,
		FailedVideos:            failedThisWeek,
		UniqueUsers:             len(userIDs),
		DateRanges: map[string]models.DateRange{
			"today": {
				Start: todayStart.Format(time.RFC3339),
				End:   todayEnd.Format(time.RFC3339),
				Label: "Today (UTC)",
			},
			"thisWeek": {
				Start: weekStart.Format(time.RFC3339),
				End:   weekEnd.Format(time.RFC3339),
				Label: "This Week (Mon-Sun UTC)",
			},
		},
	}

	s.cacheSet(ctx, cacheKey, stats)
	return stats, nil
}

// attemptsCountPipeline counts generation attempts inside [start, end]. An
// empty status list counts every attempt in the window regardless of outcome.
func attemptsCountPipeline(start, end time.Time, statuses []string) mongo.Pipeline {
	window := bson.M{"$gte": start, "$lte": end}
	unwound := bson.M{"schedule.generationHistory.date": window}
	if len(statuses) > 0 {
		unwound["schedule.generationHistory.status"] = bson.M{"$in": statuses}
	}
	return query.NewPipeline().
		Match(bson.M{"schedule.generationHistory.date": window}).
		Unwind("$schedule.generationHistory").
		Match(unwound).
		Count("total").
		Build()
}

func (s *AnalyticsService) countAttempts(ctx context.Context, start, end time.Time, statuses []string) (int64, error) {
	cursor, err := s.collection.Aggregate(ctx, attemptsCountPipeline(start, end, statuses))
	if err != nil {
		return 0, fmt.Errorf("failed to count generation attempts: %w", err)
	}
	defer cursor.Close(ctx)

	var results []bson.M
	if err := cursor.All(ctx, &results); err != nil {
		return 0, fmt.Errorf("failed to decode attempt count: %w", err)
	}
	if len(results) == 0 {
		return 0, nil
	}
	return extractInt64(results[0], "total"), nil
}

func (s *AnalyticsService) cacheGet(ctx context.Context, key string) ([]byte, bool) {
	if s.cache == nil {
		return nil, false
	}
	return s.cache.Get(ctx, key)
}

func (s *AnalyticsService) cacheSet(ctx context.Context, key string, value interface{}) {
	if s.cache == nil {
		return
	}
	encoded, err := json.Marshal(value)
	if err != nil {
		return
	}
	s.cache.Set(ctx, key, encoded, s.cacheTTL)
}

// mergeStatusCounts folds legacy status synonyms into the canonical
// vocabulary and returns the merged counts sorted by volume.
func mergeStatusCounts(counts []models.StatusCount) []models.StatusCount {
	merged := map[string]int64{}
	for _, sc := range counts {
		merged[models.NormalizeStatus(sc.Status)] += sc.Count
	}
	out := make([]models.StatusCount, 0, len(merged))
	for status, count := range merged {
		out = append(out, models.StatusCount{Status: status, Count: count})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Status < out[j].Status
	})
	return out
}

// extractInt64 coerces the numeric types the driver may decode into int64
func extractInt64(doc bson.M, key string) int64 {
	switch v := doc[key].(type) {
	case int32:
		return int64(v)
	case int64:
		return v
	case int:
		return int64(v)
	case float64:
		return int64(v)
	default:
		return 0
	}
}

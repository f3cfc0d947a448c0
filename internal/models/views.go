package models

import "time"

// Pagination is the standard page envelope returned by list endpoints
type Pagination struct {
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
	Total int64 `json:"total"`
	Pages int   `json:"pages"`
}

// NewPagination computes the page count for a total at the given page size.
func NewPagination(page, limit int, total int64) Pagination {
	pages := 0
	if limit > 0 {
		pages = int((total + int64(limit) - 1) / int64(limit))
	}
	return Pagination{Page: page, Limit: limit, Total: total, Pages: pages}
}

// LastGenerationView is the compact shape of the most recent attempt
type LastGenerationView struct {
	Date         time.Time `json:"date"`
	Status       string    `json:"status"`
	VideoURL     string    `json:"videoUrl,omitempty"`
	ScriptID     string    `json:"scriptId,omitempty"`
	VideoID      string    `json:"videoId,omitempty"`
	GenerationID string    `json:"generationId,omitempty"`
	Error        string    `json:"error,omitempty"`
}

// AgentWithStats is a list-view agent: the document plus derived fields
type AgentWithStats struct {
	UserAgent
	IsBehindSchedule bool                `json:"isBehindSchedule"`
	TotalGenerations int                 `json:"totalGenerations"`
	ProcessingCount  int                 `json:"processingCount"`
	CompletedCount   int                 `json:"completedCount"`
	FailedCount      int                 `json:"failedCount"`
	LastGeneration   *LastGenerationView `json:"lastGeneration"`
}

// AgentDetails is the single-agent view with the full derived set
type AgentDetails struct {
	UserAgent
	IsBehindSchedule      bool                `json:"isBehindSchedule"`
	ProcessingCount       int                 `json:"processingCount"`
	CompletedCount        int                 `json:"completedCount"`
	FailedCount           int                 `json:"failedCount"`
	TotalGenerations      int                 `json:"totalGenerations"`
	SuccessfulGenerations int                 `json:"successfulGenerations"`
	FailedGenerations     int                 `json:"failedGenerations"`
	LastGeneration        *LastGenerationView `json:"lastGeneration"`
	RecentGenerations     []GenerationAttempt `json:"recentGenerations"`
	UpcomingScripts       []ScheduledScript   `json:"upcomingScripts"`
}

// ScheduleItem is one row of the schedule listing
type ScheduleItem struct {
	AgentID            string              `json:"agentId"`
	AgentName          string              `json:"agentName"`
	AgentRole          string              `json:"agentRole"`
	UserID             string              `json:"userId"`
	NextGenerationDate time.Time           `json:"nextGenerationDate"`
	IsOverdue          bool                `json:"isOverdue"`
	DaysUntilNext      int                 `json:"daysUntilNext"`
	Frequency          Frequency           `json:"frequency"`
	LastGeneration     *LastGenerationView `json:"lastGeneration"`
}

// ScheduleSummary aggregates the schedule listing before pagination
type ScheduleSummary struct {
	Total    int `json:"total"`
	Overdue  int `json:"overdue"`
	Upcoming int `json:"upcoming"`
}

// DateRange reports the bounds of a rollup window for UI display
type DateRange struct {
	Start string `json:"start"`
	End   string `json:"end"`
	Label string `json:"label"`
}

// OverviewStats is the dashboard overview rollup
type OverviewStats struct {
	TotalAgents             int64                `json:"totalAgents"`
	ActiveAgents            int64                `json:"activeAgents"`
	BehindSchedule          int64                `json:"behindSchedule"`
	ProcessingVideos        int64                `json:"processingVideos"`
	VideosGeneratedToday    int64                `json:"videosGeneratedToday"`
	VideosGeneratedThisWeek int64                `json:"videosGeneratedThisWeek"`
	FailedVideos            int64                `json:"failedVideos"`
	UniqueUsers             int                  `json:"uniqueUsers"`
	DateRanges              map[string]DateRange `json:"dateRanges"`
}

// StatusCount pairs a generation status with its attempt count
type StatusCount struct {
	Status string `bson:"status" json:"status"`
	Count  int64  `bson:"count" json:"count"`
}

// DailyTrend is one calendar day of the analytics trend series
type DailyTrend struct {
	Date     string        `bson:"_id" json:"date"`
	Statuses []StatusCount `bson:"statuses" json:"statuses"`
}

// AgentPerformance is the per-agent analytics rollup, lifetime-scoped
type AgentPerformance struct {
	AgentID          string  `bson:"agentId" json:"agentId"`
	AgentName        string  `bson:"agentName" json:"agentName"`
	AgentRole        string  `bson:"agentRole" json:"agentRole"`
	TotalVideos      int64   `bson:"totalVideos" json:"totalVideos"`
	PublishedVideos  int64   `bson:"publishedVideos" json:"publishedVideos"`
	FailedVideos     int64   `bson:"failedVideos" json:"failedVideos"`
	ProcessingVideos int64   `bson:"processingVideos" json:"processingVideos"`
	SuccessRate      float64 `bson:"successRate" json:"successRate"`
}

// FrequencyBucket counts agents sharing one generation interval
type FrequencyBucket struct {
	IntervalDays int   `bson:"_id" json:"intervalDays"`
	Count        int64 `bson:"count" json:"count"`
}

// AnalyticsReport is the full analytics endpoint response
type AnalyticsReport struct {
	DailyTrends           []DailyTrend       `json:"dailyTrends"`
	StatusDistribution    []StatusCount      `json:"statusDistribution"`
	AgentPerformance      []AgentPerformance `json:"agentPerformance"`
	FrequencyDistribution []FrequencyBucket  `json:"frequencyDistribution"`
	Period                string             `json:"period"`
	StartDate             time.Time          `json:"startDate"`
	EndDate               time.Time          `json:"endDate"`
}

// UserAgentView is an agent row inside the users+agents listing, including
// quota progress and duplicate tagging
type UserAgentView struct {
	AgentID                        string            `json:"agentId"`
	AgentName                      string            `json:"agentName"`
	AgentRole                      string            `json:"agentRole"`
	CustomInstructions             string            `json:"customInstructions"`
	Language                       string            `json:"language"`
	Frequency                      Frequency         `json:"frequency"`
	Schedule                       Schedule          `json:"schedule"`
	CompletedVideos                int               `json:"completedVideos"`
	RemainingVideos                int               `json:"remainingVideos"`
	TotalVideos                    int               `json:"totalVideos"`
	VoiceID                        string            `json:"voiceId"`
	FontStyle                      string            `json:"fontStyle"`
	TextColor                      string            `json:"textColor"`
	SelectedSocialMediaAccount     string            `json:"selectedSocialMediaAccount,omitempty"`
	CreatedAt                      time.Time         `json:"createdAt"`
	UpdatedAt                      time.Time         `json:"updatedAt"`
	HasDuplicateCustomInstructions bool              `json:"hasDuplicateCustomInstructions"`
	DuplicateCount                 int               `json:"duplicateCount"`
}

// UserWithAgents groups one user's agents for the users+agents listing
type UserWithAgents struct {
	UserID        string          `json:"userId"`
	Agents        []UserAgentView `json:"agents"`
	HasDuplicates bool            `json:"hasDuplicates"`
}

// CleanupResult reports the outcome of the failed-history cleanup mutation
type CleanupResult struct {
	Success        bool   `json:"success"`
	Message        string `json:"message"`
	ModifiedAgents int64  `json:"modifiedAgents"`
	TotalAgents    int64  `json:"totalAgents"`
	ActiveAgents   int64  `json:"activeAgents"`
}

package models

import (
	"sort"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// GracePeriod is the tolerance applied before an active agent with an
// overdue nextGenerationDate is reported as behind schedule.
const GracePeriod = 60 * time.Minute

// Generation attempt statuses. The canonical closed set is
// {pending, processing, published, failed}; older documents may still carry
// the legacy success synonyms, which normalize to published on read.
const (
	StatusPending    = "pending"
	StatusProcessing = "processing"
	StatusPublished  = "published"
	StatusFailed     = "failed"

	// Legacy synonyms observed in historical generation records
	StatusCompleted          = "completed"
	StatusCompletedAndPosted = "completed and posted"
	StatusSuccess            = "success"
)

// NormalizeStatus maps legacy success synonyms onto the canonical vocabulary.
// Unknown values pass through unchanged.
func NormalizeStatus(status string) string {
	switch status {
	case StatusCompleted, StatusCompletedAndPosted, StatusSuccess:
		return StatusPublished
	default:
		return status
	}
}

// IsSuccessStatus reports whether a status counts as a successful generation,
// accepting the legacy synonyms alongside the canonical "published".
func IsSuccessStatus(status string) bool {
	return NormalizeStatus(status) == StatusPublished
}

// Frequency describes an agent's generation plan
type Frequency struct {
	Plan          string `bson:"plan" json:"plan"` // basic, standard, premium
	IntervalDays  int    `bson:"intervalDays" json:"intervalDays"`
	MonthlyVideos int    `bson:"monthlyVideos" json:"monthlyVideos"`
	Credits       int    `bson:"credits" json:"credits"`
}

// Equal reports whether two frequency descriptors are identical across all
// plan parameters. Used by duplicate detection.
func (f Frequency) Equal(other Frequency) bool {
	return f.Plan == other.Plan &&
		f.IntervalDays == other.IntervalDays &&
		f.MonthlyVideos == other.MonthlyVideos &&
		f.Credits == other.Credits
}

// GenerationAttempt is one execution record of an agent's content job
type GenerationAttempt struct {
	Date                time.Time          `bson:"date" json:"date"`
	GenerationID        primitive.ObjectID `bson:"generationId" json:"generationId"`
	ScriptID            string             `bson:"scriptId,omitempty" json:"scriptId,omitempty"`
	VideoID             string             `bson:"videoId,omitempty" json:"videoId,omitempty"`
	VideoURL            string             `bson:"videoUrl,omitempty" json:"videoUrl,omitempty"`
	Status              string             `bson:"status" json:"status"`
	Error               string             `bson:"error,omitempty" json:"error,omitempty"`
	ProcessingStartedAt *time.Time         `bson:"processingStartedAt,omitempty" json:"processingStartedAt,omitempty"`
	CompletedAt         *time.Time         `bson:"completedAt,omitempty" json:"completedAt,omitempty"`
}

// ScheduledScript is a pre-written script waiting for a generation slot
type ScheduledScript struct {
	Date         time.Time           `bson:"date" json:"date"`
	Script       string              `bson:"script" json:"script"`
	Used         bool                `bson:"used" json:"used"`
	GenerationID *primitive.ObjectID `bson:"generationId,omitempty" json:"generationId,omitempty"`
	VideoURL     string              `bson:"videoUrl,omitempty" json:"videoUrl,omitempty"`
	Status       string              `bson:"status,omitempty" json:"status,omitempty"`
	Error        string              `bson:"error,omitempty" json:"error,omitempty"`
}

// Schedule is the embedded scheduling block of an agent.
// GenerationHistory and ScheduledScripts are always treated as present;
// documents missing the arrays decode to empty slices via the accessors.
type Schedule struct {
	StartDate          time.Time           `bson:"startDate" json:"startDate"`
	NextGenerationDate time.Time           `bson:"nextGenerationDate" json:"nextGenerationDate"`
	Active             bool                `bson:"active" json:"active"`
	PausedUntil        *time.Time          `bson:"pausedUntil,omitempty" json:"pausedUntil,omitempty"`
	GenerationHistory  []GenerationAttempt `bson:"generationHistory,omitempty" json:"generationHistory"`
	UpcomingDates      []time.Time         `bson:"upcomingDates,omitempty" json:"upcomingDates,omitempty"`
	ScheduledScripts   []ScheduledScript   `bson:"scheduledScripts,omitempty" json:"scheduledScripts,omitempty"`
}

// UserAgent is one scheduled content-generation job owned by a user.
// (userId, agentId) pairs are unique.
type UserAgent struct {
	ID                         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID                     string             `bson:"userId" json:"userId"`
	AgentID                    string             `bson:"agentId" json:"agentId"`
	AgentName                  string             `bson:"agentName" json:"agentName"`
	AgentRole                  string             `bson:"agentRole" json:"agentRole"`
	PromptTemplate             string             `bson:"promptTemplate" json:"promptTemplate"`
	OriginalPromptTemplate     string             `bson:"originalPromptTemplate,omitempty" json:"originalPromptTemplate,omitempty"`
	CustomInstructions         string             `bson:"customInstructions,omitempty" json:"customInstructions"`
	VoiceID                    string             `bson:"voiceId" json:"voiceId"`
	FontStyle                  string             `bson:"fontStyle" json:"fontStyle"`
	TextColor                  string             `bson:"textColor" json:"textColor"`
	SelectedSocialMediaAccount string             `bson:"selectedSocialMediaAccount,omitempty" json:"selectedSocialMediaAccount,omitempty"`
	Language                   string             `bson:"language,omitempty" json:"language"`
	Frequency                  Frequency          `bson:"frequency" json:"frequency"`
	Schedule                   Schedule           `bson:"schedule" json:"schedule"`
	CreatedAt                  time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt                  time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// History returns the generation history, never nil.
func (a *UserAgent) History() []GenerationAttempt {
	if a.Schedule.GenerationHistory == nil {
		return []GenerationAttempt{}
	}
	return a.Schedule.GenerationHistory
}

// IsBehindSchedule reports whether the agent is active and its next
// generation is more than the grace period in the past.
func (a *UserAgent) IsBehindSchedule(now time.Time) bool {
	return a.Schedule.Active &&
		a.Schedule.NextGenerationDate.Before(now.Add(-GracePeriod))
}

// GenerationStats holds per-status attempt counts for one agent
type GenerationStats struct {
	Total      int `json:"totalGenerations"`
	Pending    int `json:"pendingCount"`
	Processing int `json:"processingCount"`
	Completed  int `json:"completedCount"`
	Failed     int `json:"failedCount"`
}

// Stats counts generation attempts by normalized status class.
func (a *UserAgent) Stats() GenerationStats {
	stats := GenerationStats{}
	for _, gen := range a.History() {
		stats.Total++
		switch NormalizeStatus(gen.Status) {
		case StatusPending:
			stats.Pending++
		case StatusProcessing:
			stats.Processing++
		case StatusPublished:
			stats.Completed++
		case StatusFailed:
			stats.Failed++
		}
	}
	return stats
}

// LastGeneration returns the most recent attempt, or nil when the history is
// empty. Ties on timestamp break toward the lexicographically highest
// generation id so the result is deterministic.
func (a *UserAgent) LastGeneration() *GenerationAttempt {
	history := a.History()
	if len(history) == 0 {
		return nil
	}
	last := history[0]
	for _, gen := range history[1:] {
		if gen.Date.After(last.Date) ||
			(gen.Date.Equal(last.Date) && gen.GenerationID.Hex() > last.GenerationID.Hex()) {
			last = gen
		}
	}
	return &last
}

// RecentGenerations returns the full history sorted newest-first.
func (a *UserAgent) RecentGenerations() []GenerationAttempt {
	history := append([]GenerationAttempt(nil), a.History()...)
	sort.SliceStable(history, func(i, j int) bool {
		if !history[i].Date.Equal(history[j].Date) {
			return history[i].Date.After(history[j].Date)
		}
		return history[i].GenerationID.Hex() > history[j].GenerationID.Hex()
	})
	return history
}

// UpcomingScripts returns the unused scheduled scripts sorted by ascending
// date, capped to limit entries.
func (a *UserAgent) UpcomingScripts(limit int) []ScheduledScript {
	upcoming := make([]ScheduledScript, 0, limit)
	for _, script := range a.Schedule.ScheduledScripts {
		if !script.Used {
			upcoming = append(upcoming, script)
		}
	}
	sort.SliceStable(upcoming, func(i, j int) bool {
		return upcoming[i].Date.Before(upcoming[j].Date)
	})
	if limit > 0 && len(upcoming) > limit {
		upcoming = upcoming[:limit]
	}
	return upcoming
}

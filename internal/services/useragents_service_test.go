package services

import (
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson"

	"creashort/internal/models"
)

func makeAgent(id, instructions string, createdAt time.Time, freq models.Frequency) models.UserAgent {
	return models.UserAgent{
		AgentID:            id,
		UserID:             "user-1",
		CustomInstructions: instructions,
		CreatedAt:          createdAt,
		Frequency:          freq,
	}
}

func TestDuplicateCountsFlagsNearIdenticalPair(t *testing.T) {
	base := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)
	freq := models.Frequency{Plan: "standard", IntervalDays: 3, MonthlyVideos: 10, Credits: 100}

	agents := []models.UserAgent{
		makeAgent("a1", "make videos about cooking", base, freq),
		makeAgent("a2", "make videos about cooking", base.Add(30*time.Second), freq),
	}

	counts := duplicateCounts(agents)
	if counts[0] != 1 || counts[1] != 1 {
		t.Errorf("Expected both flagged with count 1, got %v", counts)
	}
}

func TestDuplicateCountsIgnoresEmptyInstructions(t *testing.T) {
	base := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)
	freq := models.Frequency{Plan: "basic", IntervalDays: 7, MonthlyVideos: 4, Credits: 40}

	agents := []models.UserAgent{
		makeAgent("a1", "", base, freq),
		makeAgent("a2", "", base.Add(10*time.Second), freq),
		makeAgent("a3", "   ", base.Add(20*time.Second), freq),
	}

	for i, count := range duplicateCounts(agents) {
		if count != 0 {
			t.Errorf("Expected agent %d unflagged, got count %d", i, count)
		}
	}
}

func TestDuplicateCountsRespectsTimeWindow(t *testing.T) {
	base := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)
	freq := models.Frequency{Plan: "premium", IntervalDays: 1, MonthlyVideos: 30, Credits: 300}

	agents := []models.UserAgent{
		makeAgent("a1", "daily tech news recap", base, freq),
		makeAgent("a2", "daily tech news recap", base.Add(2*time.Minute), freq),
	}

	counts := duplicateCounts(agents)
	if counts[0] != 0 || counts[1] != 0 {
		t.Errorf("Expected pair outside the window to be unflagged, got %v", counts)
	}
}

func TestDuplicateCountsRequiresMatchingFrequency(t *testing.T) {
	base := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)
	freqA := models.Frequency{Plan: "standard", IntervalDays: 3, MonthlyVideos: 10, Credits: 100}
	freqB := freqA
	freqB.Credits = 120

	agents := []models.UserAgent{
		makeAgent("a1", "same brief", base, freqA),
		makeAgent("a2", "same brief", base.Add(5*time.Second), freqB),
	}

	counts := duplicateCounts(agents)
	if counts[0] != 0 || counts[1] != 0 {
		t.Errorf("Expected differing plans to be unflagged, got %v", counts)
	}
}

func TestDuplicateCountsRequireExactInstructionText(t *testing.T) {
	base := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)
	freq := models.Frequency{Plan: "standard", IntervalDays: 3, MonthlyVideos: 10, Credits: 100}

	// Trimming only gates the non-empty precondition; the comparison itself
	// is byte-for-byte, so padded text is not a duplicate of unpadded text.
	agents := []models.UserAgent{
		makeAgent("a1", "  space travel shorts  ", base, freq),
		makeAgent("a2", "space travel shorts", base.Add(10*time.Second), freq),
		makeAgent("a3", "space travel shorts", base.Add(20*time.Second), freq),
	}

	counts := duplicateCounts(agents)
	if counts[0] != 0 {
		t.Errorf("Expected padded text to be unflagged, got count %d", counts[0])
	}
	if counts[1] != 1 || counts[2] != 1 {
		t.Errorf("Expected the exact pair flagged with count 1, got %v", counts)
	}
}

func TestDuplicateCountsTriple(t *testing.T) {
	base := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)
	freq := models.Frequency{Plan: "standard", IntervalDays: 3, MonthlyVideos: 10, Credits: 100}

	agents := []models.UserAgent{
		makeAgent("a1", "fitness motivation clips", base, freq),
		makeAgent("a2", "fitness motivation clips", base.Add(20*time.Second), freq),
		makeAgent("a3", "fitness motivation clips", base.Add(40*time.Second), freq),
	}

	// Every agent counts the other two, not itself
	for i, count := range duplicateCounts(agents) {
		if count != 2 {
			t.Errorf("Expected agent %d to have 2 duplicates, got %d", i, count)
		}
	}
}

func TestBuildUserWithAgentsQuotaMath(t *testing.T) {
	base := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)
	agent := makeAgent("a1", "", base, models.Frequency{Plan: "basic", IntervalDays: 7, MonthlyVideos: 4, Credits: 40})
	agent.Schedule.GenerationHistory = []models.GenerationAttempt{
		{Status: models.StatusPublished},
		{Status: models.StatusCompleted},
		{Status: models.StatusFailed},
	}

	user := buildUserWithAgents(userGroup{UserID: "user-1", Agents: []models.UserAgent{agent}}, false)
	if len(user.Agents) != 1 {
		t.Fatalf("Expected one agent, got %d", len(user.Agents))
	}

	view := user.Agents[0]
	if view.CompletedVideos != 2 {
		t.Errorf("Expected 2 completed videos, got %d", view.CompletedVideos)
	}
	if view.RemainingVideos != 2 {
		t.Errorf("Expected 2 remaining of monthly 4, got %d", view.RemainingVideos)
	}
	if view.TotalVideos != 4 {
		t.Errorf("Expected monthly quota 4, got %d", view.TotalVideos)
	}
	if user.HasDuplicates {
		t.Error("Expected no duplicates for a single agent")
	}
}

func TestBuildUserWithAgentsClampsRemaining(t *testing.T) {
	base := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)
	agent := makeAgent("a1", "", base, models.Frequency{Plan: "basic", IntervalDays: 7, MonthlyVideos: 2, Credits: 20})
	agent.Schedule.GenerationHistory = []models.GenerationAttempt{
		{Status: models.StatusPublished},
		{Status: models.StatusPublished},
		{Status: models.StatusPublished},
	}

	user := buildUserWithAgents(userGroup{UserID: "user-1", Agents: []models.UserAgent{agent}}, false)
	if got := user.Agents[0].RemainingVideos; got != 0 {
		t.Errorf("Expected remaining clamped to 0, got %d", got)
	}
}

func TestBuildUserWithAgentsDuplicatesOnlyStripsUnflagged(t *testing.T) {
	base := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)
	freq := models.Frequency{Plan: "standard", IntervalDays: 3, MonthlyVideos: 10, Credits: 100}

	group := userGroup{
		UserID: "user-1",
		Agents: []models.UserAgent{
			makeAgent("a1", "cooking hacks", base, freq),
			makeAgent("a2", "cooking hacks", base.Add(30*time.Second), freq),
			makeAgent("a3", "gardening tips", base.Add(time.Hour), freq),
		},
	}

	user := buildUserWithAgents(group, true)
	if !user.HasDuplicates {
		t.Fatal("Expected user flagged as having duplicates")
	}
	if len(user.Agents) != 2 {
		t.Fatalf("Expected only the 2 flagged agents, got %d", len(user.Agents))
	}
	for _, agent := range user.Agents {
		if !agent.HasDuplicateCustomInstructions {
			t.Errorf("Expected agent %s to be flagged", agent.AgentID)
		}
	}

	// Without the filter all three stay, flag intact
	full := buildUserWithAgents(group, false)
	if len(full.Agents) != 3 || !full.HasDuplicates {
		t.Errorf("Expected full row of 3 with duplicate flag, got %d agents", len(full.Agents))
	}
}

func TestUsersAgentsFilter(t *testing.T) {
	t.Run("both substring filters are ANDed", func(t *testing.T) {
		filter := usersAgentsFilter("user-42", "cooking", false)
		if len(filter) != 2 {
			t.Fatalf("Expected two predicates, got %v", filter)
		}
		if _, present := filter["userId"]; !present {
			t.Errorf("Expected userId predicate, got %v", filter)
		}
		if _, present := filter["customInstructions"]; !present {
			t.Errorf("Expected customInstructions predicate, got %v", filter)
		}
	})

	t.Run("empty params apply no filter", func(t *testing.T) {
		if filter := usersAgentsFilter("", "", false); len(filter) != 0 {
			t.Errorf("Expected empty filter, got %v", filter)
		}
	})

	t.Run("duplicates-only restricts to active schedules", func(t *testing.T) {
		filter := usersAgentsFilter("", "", true)
		if filter["schedule.active"] != true {
			t.Errorf("Expected schedule.active=true, got %v", filter)
		}
		if plain := usersAgentsFilter("", "", false); plain["schedule.active"] != nil {
			t.Errorf("Expected no active clause without duplicatesOnly, got %v", plain)
		}
	})
}

func TestUsersAgentsPipelineSortsByUserIDDesc(t *testing.T) {
	pipeline := usersAgentsPipeline(bson.M{})

	last := pipeline[len(pipeline)-1]
	if last[0].Key != "$sort" {
		t.Fatalf("Expected final $sort stage, got %s", last[0].Key)
	}
	sort, ok := last[0].Value.(bson.D)
	if !ok {
		t.Fatalf("Expected bson.D sort spec, got %T", last[0].Value)
	}
	if sort[0].Key != "_id" || sort[0].Value != -1 {
		t.Errorf("Expected user rows sorted by userId descending, got %v", sort)
	}
}

package query

import (
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson"
)

func TestAgentStatusFilter(t *testing.T) {
	now := time.Now()

	t.Run("all applies no filter", func(t *testing.T) {
		if got := AgentStatusFilter(FilterAll, now); len(got) != 0 {
			t.Errorf("Expected empty filter, got %v", got)
		}
	})

	t.Run("unknown keyword applies no filter", func(t *testing.T) {
		if got := AgentStatusFilter("bogus", now); len(got) != 0 {
			t.Errorf("Expected empty filter, got %v", got)
		}
	})

	t.Run("active", func(t *testing.T) {
		got := AgentStatusFilter(FilterActive, now)
		if got["schedule.active"] != true {
			t.Errorf("Expected schedule.active=true, got %v", got)
		}
	})

	t.Run("paused", func(t *testing.T) {
		got := AgentStatusFilter(FilterPaused, now)
		if got["schedule.active"] != false {
			t.Errorf("Expected schedule.active=false, got %v", got)
		}
	})

	t.Run("behind-schedule uses grace cutoff", func(t *testing.T) {
		got := AgentStatusFilter(FilterBehindSchedule, now)
		if got["schedule.active"] != true {
			t.Errorf("Expected behind-schedule to require active, got %v", got)
		}
		dateFilter, ok := got["schedule.nextGenerationDate"].(bson.M)
		if !ok {
			t.Fatalf("Expected date predicate, got %v", got)
		}
		cutoff, ok := dateFilter["$lt"].(time.Time)
		if !ok {
			t.Fatalf("Expected $lt time, got %v", dateFilter)
		}
		if !cutoff.Equal(now.Add(-time.Hour)) {
			t.Errorf("Expected cutoff one hour back, got %v", cutoff)
		}
	})

	t.Run("processing matches history status", func(t *testing.T) {
		got := AgentStatusFilter(FilterProcessing, now)
		if got["schedule.generationHistory.status"] != "processing" {
			t.Errorf("Expected history status predicate, got %v", got)
		}
	})
}

func TestSearchFilter(t *testing.T) {
	t.Run("empty term yields no filter", func(t *testing.T) {
		if got := SearchFilter("   ", "agentName"); len(got) != 0 {
			t.Errorf("Expected empty filter, got %v", got)
		}
	})

	t.Run("regex metacharacters are escaped", func(t *testing.T) {
		got := SearchFilter("a.b*c", "agentName")
		pred, ok := got["agentName"].(bson.M)
		if !ok {
			t.Fatalf("Expected single-field predicate, got %v", got)
		}
		if pred["$regex"] != `a\.b\*c` {
			t.Errorf("Expected escaped pattern, got %v", pred["$regex"])
		}
		if pred["$options"] != "i" {
			t.Errorf("Expected case-insensitive option, got %v", pred["$options"])
		}
	})

	t.Run("multiple fields produce $or", func(t *testing.T) {
		got := SearchFilter("creator", "agentName", "agentRole", "userId")
		or, ok := got["$or"].([]bson.M)
		if !ok {
			t.Fatalf("Expected $or clause, got %v", got)
		}
		if len(or) != 3 {
			t.Errorf("Expected 3 branches, got %d", len(or))
		}
	})
}

func TestNotPaused(t *testing.T) {
	now := time.Now()
	got := NotPaused(now)
	or, ok := got["$or"].([]bson.M)
	if !ok || len(or) != 2 {
		t.Fatalf("Expected two-branch $or, got %v", got)
	}
	// Null branch must be present so never-paused agents match
	if v, present := or[0]["schedule.pausedUntil"]; !present || v != nil {
		t.Errorf("Expected nil branch first, got %v", or[0])
	}
}

func TestParsePage(t *testing.T) {
	tests := []struct {
		name          string
		page, limit   int
		defaultLimit  int
		expectedPage  int
		expectedLimit int
		expectedSkip  int64
	}{
		{"defaults", 0, 0, 10, 1, 10, 0},
		{"negative page clamps to 1", -5, 10, 10, 1, 10, 0},
		{"page three", 3, 10, 10, 3, 10, 20},
		{"custom limit", 2, 25, 10, 2, 25, 25},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := ParsePage(tt.page, tt.limit, tt.defaultLimit)
			if p.Page != tt.expectedPage || p.Limit != tt.expectedLimit {
				t.Errorf("Expected page %d limit %d, got %+v", tt.expectedPage, tt.expectedLimit, p)
			}
			if p.Skip() != tt.expectedSkip {
				t.Errorf("Expected skip %d, got %d", tt.expectedSkip, p.Skip())
			}
		})
	}
}

package feature

import (
	"reflect"
	"testing"
)

func classifyLine(t *testing.T, line string) Classified {
	t.Helper()
	stmts := Parse(line)
	if len(stmts) != 1 {
		t.Fatalf("expected 1 statement from %q, got %d", line, len(stmts))
	}
	return Classify(stmts[0])
}

func TestClassifyCategories(t *testing.T) {
	tests := []struct {
		line     string
		category string
	}{
		{"Add login page", "Authentication & Security"},
		{"Two-factor authentication for admins", "Authentication & Security"},
		{"Integrate Stripe payments", "Payment & Billing"},
		{"Monthly subscription pricing tiers", "Payment & Billing"},
		{"Add a settings icon", "User Interface & Design"},
		{"Dark mode support", "User Interface & Design"},
		{"Sales analytics dashboard", "Data & Analytics"},
		{"Send email reminders", "Communication & Notifications"},
		{"Full-text search across documents", "Search & Discovery"},
		{"Upload profile images", "Content Management"},
		{"Webhook support for order events", "Integrations & API"},
		{"Responsive tablet view", "Mobile & Responsive"},
		{"Cache expensive queries", "Performance & Infrastructure"},
		{"Comment threads on posts", "Social & Collaboration"},
		{"Make it pop", "Other"},
	}

	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			got := classifyLine(t, tt.line)
			if got.Category != tt.category {
				t.Errorf("category = %q, want %q", got.Category, tt.category)
			}
		})
	}
}

func TestClassifyFirstMatchWins(t *testing.T) {
	// "login" (auth) and "page" (UI) both match; auth is earlier in the table.
	got := classifyLine(t, "Add login page")
	if got.Category != "Authentication & Security" {
		t.Errorf("category = %q, want Authentication & Security", got.Category)
	}

	// "stripe" (payments) beats "integration" (integrations).
	got = classifyLine(t, "Stripe integration")
	if got.Category != "Payment & Billing" {
		t.Errorf("category = %q, want Payment & Billing", got.Category)
	}
}

func TestClassifyComplexity(t *testing.T) {
	tests := []struct {
		line       string
		complexity Complexity
	}{
		{"Real-time order tracking", ComplexityComplex},
		{"Neural ranking of results", ComplexityComplex},
		{"Add a settings icon", ComplexitySimple},
		{"Rename the export menu", ComplexitySimple},
		{"Integrate Stripe payments", ComplexityModerate},
		// Complex signal wins even when a simple signal is present.
		{"Real-time status toggle", ComplexityComplex},
	}

	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			got := classifyLine(t, tt.line)
			if got.Complexity != tt.complexity {
				t.Errorf("complexity = %q, want %q", got.Complexity, tt.complexity)
			}
		})
	}
}

func TestClassifyPriorityDefaultsToMedium(t *testing.T) {
	got := classifyLine(t, "Add a settings icon")
	if got.Priority != PriorityMedium {
		t.Errorf("priority = %q, want medium", got.Priority)
	}

	got = classifyLine(t, "Add login page (high priority)")
	if got.Priority != PriorityHigh {
		t.Errorf("priority = %q, want high", got.Priority)
	}
}

func TestEstimateHours(t *testing.T) {
	tests := []struct {
		line  string
		hours int
	}{
		{"Add a settings icon", 8},                 // simple base
		{"Integrate Stripe payments", 24},          // moderate base, "integration"/"api" absent
		{"Real-time chat", 60},                     // complex base
		{"Full audit trail", 36},                   // 24 * 1.5
		{"Payment api endpoints", 31},              // 24 * 1.3, rounded
		{"Custom report builder", 34},              // 24 * 1.4, rounded from 33.6
		{"Full custom api platform", 66},           // 24 * 1.5 * 1.3 * 1.4, rounded from 65.52
		{"Complete custom icon set", 17},           // 8 * 1.5 * 1.4, rounded from 16.8
		{"Full real-time streaming pipeline", 90},  // 60 * 1.5
	}

	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			got := classifyLine(t, tt.line)
			if got.EstimatedHours != tt.hours {
				t.Errorf("hours = %d, want %d (complexity %s)", got.EstimatedHours, tt.hours, got.Complexity)
			}
		})
	}
}

func TestClassifyIsDeterministic(t *testing.T) {
	stmts := Parse("Add login page (high priority)\nReal-time analytics dashboard\nwhatever this means")
	first := ClassifyAll(stmts)
	second := ClassifyAll(stmts)
	if !reflect.DeepEqual(first, second) {
		t.Errorf("classification not deterministic:\nfirst:  %+v\nsecond: %+v", first, second)
	}
}

func TestClassifyAllKeepsEveryStatement(t *testing.T) {
	stmts := Parse("one\ntwo\nthree\nfour (low priority)")
	classified := ClassifyAll(stmts)
	if len(classified) != len(stmts) {
		t.Fatalf("classified %d of %d statements", len(classified), len(stmts))
	}
	for i := range stmts {
		if classified[i].Text != stmts[i].Text {
			t.Errorf("index %d: text %q does not match statement %q", i, classified[i].Text, stmts[i].Text)
		}
		if classified[i].Category == "" {
			t.Errorf("index %d: missing category", i)
		}
		if classified[i].Complexity == "" {
			t.Errorf("index %d: missing complexity", i)
		}
	}
}

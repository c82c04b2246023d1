package feature

import (
	"math"
	"strings"
)

// Complexity tier of a feature, derived from signal keywords in the text.
type Complexity string

const (
	ComplexitySimple   Complexity = "simple"
	ComplexityModerate Complexity = "moderate"
	ComplexityComplex  Complexity = "complex"
)

// Classified is a statement with its assigned category, resolved priority,
// complexity tier, and hour estimate. The estimate is always recomputed from
// the statement text, never persisted independently.
type Classified struct {
	Statement
	Category       string
	Priority       Priority
	Complexity     Complexity
	EstimatedHours int
}

type categoryRule struct {
	name        string
	description string
	keywords    []string
}

// categoryRules is evaluated in order, first match wins. The order encodes
// domain importance, not alphabet. The final keyword-less bucket matches
// everything, so every statement lands in exactly one category.
var categoryRules = []categoryRule{
	{"Authentication & Security", "Sign-in, accounts, and access control",
		[]string{"login", "auth", "password", "sign up", "signup", "register", "2fa", "two-factor", "security", "permission", "sso"}},
	{"Payment & Billing", "Checkout, invoicing, and revenue",
		[]string{"payment", "billing", "stripe", "paypal", "checkout", "invoice", "subscription", "pricing", "refund"}},
	{"User Interface & Design", "Visual components, layout, and theming",
		[]string{"button", "icon", "theme", "layout", "design", "dark mode", "page", "screen", "toggle", "style", "animation", "font"}},
	{"Data & Analytics", "Reporting, dashboards, and metrics",
		[]string{"analytics", "dashboard", "report", "chart", "graph", "metric", "statistic", "export", "tracking"}},
	{"Communication & Notifications", "Messaging and outbound alerts",
		[]string{"notification", "email", "sms", "chat", "message", "alert", "reminder"}},
	{"Search & Discovery", "Finding and filtering content",
		[]string{"search", "filter", "sort", "browse", "recommend", "autocomplete"}},
	{"Content Management", "Media, documents, and publishing",
		[]string{"upload", "media", "blog", "cms", "content", "article", "image", "video", "file"}},
	{"Integrations & API", "Connections to external systems",
		[]string{"integration", "api", "webhook", "sync", "third-party", "import"}},
	{"Mobile & Responsive", "Phone and tablet experience",
		[]string{"mobile", "responsive", "ios", "android", "tablet", "offline"}},
	{"Performance & Infrastructure", "Speed, scaling, and operations",
		[]string{"performance", "cache", "caching", "speed", "optimiz", "scaling", "scale", "backup", "deploy", "infrastructure", "migration"}},
	{"Social & Collaboration", "Sharing, profiles, and teamwork",
		[]string{"share", "sharing", "comment", "profile", "follow", "friend", "collaborat", "social", "community"}},
	{"Other", "Everything else", nil},
}

// Complex signals beat simple signals; absence of both means moderate.
var complexSignals = []string{
	"real-time", "realtime", "real time", "blockchain", "machine learning",
	"neural", "ai-powered", "recommendation engine", "video processing",
	"streaming", "encryption", "websocket", "multiplayer", "multi-tenant",
}

var simpleSignals = []string{
	"button", "toggle", "icon", "label", "tooltip", "rename", "typo",
	"color change", "text change", "link", "logo",
}

const (
	simpleBaseHours   = 8
	moderateBaseHours = 24
	complexBaseHours  = 60
)

type scopeMultiplier struct {
	factor   float64
	keywords []string
}

// Scope-escalating words compound multiplicatively when several are present.
var scopeMultipliers = []scopeMultiplier{
	{1.5, []string{"full", "complete", "comprehensive"}},
	{1.3, []string{"integration", "api"}},
	{1.4, []string{"custom", "advanced"}},
}

// Classify assigns a statement its category, complexity, resolved priority,
// and hour estimate. Pure and deterministic: identical input always yields
// identical output.
func Classify(st Statement) Classified {
	lower := strings.ToLower(st.Text)

	priority := st.DeclaredPriority
	if priority == "" {
		priority = PriorityMedium
	}

	complexity := matchComplexity(lower)

	return Classified{
		Statement:      st,
		Category:       matchCategory(lower).name,
		Priority:       priority,
		Complexity:     complexity,
		EstimatedHours: estimateHours(lower, complexity),
	}
}

// ClassifyAll classifies every statement in order, preserving indices.
func ClassifyAll(stmts []Statement) []Classified {
	classified := make([]Classified, len(stmts))
	for i, st := range stmts {
		classified[i] = Classify(st)
	}
	return classified
}

func matchCategory(lower string) categoryRule {
	for _, rule := range categoryRules {
		if len(rule.keywords) == 0 || containsAny(lower, rule.keywords) {
			return rule
		}
	}
	// Unreachable: the catch-all rule has no keywords.
	return categoryRules[len(categoryRules)-1]
}

func matchComplexity(lower string) Complexity {
	if containsAny(lower, complexSignals) {
		return ComplexityComplex
	}
	if containsAny(lower, simpleSignals) {
		return ComplexitySimple
	}
	return ComplexityModerate
}

func estimateHours(lower string, complexity Complexity) int {
	var hours float64
	switch complexity {
	case ComplexitySimple:
		hours = simpleBaseHours
	case ComplexityComplex:
		hours = complexBaseHours
	default:
		hours = moderateBaseHours
	}

	for _, m := range scopeMultipliers {
		if containsAny(lower, m.keywords) {
			hours *= m.factor
		}
	}

	return int(math.Round(hours))
}

func containsAny(s string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(s, kw) {
			return true
		}
	}
	return false
}

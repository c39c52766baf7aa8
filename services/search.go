package services

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"agentgift-service/apperrors"
	"agentgift-service/models"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// Memory-vault sources.
const (
	SourceXP      = "xp_logs"
	SourceCredits = "credit_transactions"
	SourceBadges  = "badges"
	SourceEmotion = "emotional_signatures"
)

var allSources = []string{SourceXP, SourceCredits, SourceBadges, SourceEmotion}

// Query intents.
const (
	IntentSearch   = "search"
	IntentInsight  = "insight"
	IntentSummary  = "summary"
	IntentTimeline = "timeline"
)

const maxSearchLimit = 200

type SearchFilters struct {
	UserID   string     `json:"user_id" validate:"omitempty,uuid"`
	Emotion  string     `json:"emotion" validate:"max=32"`
	Sources  []string   `json:"sources" validate:"dive,oneof=xp_logs credit_transactions badges emotional_signatures"`
	DateFrom *time.Time `json:"date_from"`
	DateTo   *time.Time `json:"date_to"`
	Limit    int        `json:"limit" validate:"gte=0"`
}

type SearchRequest struct {
	Query   string        `json:"query" validate:"max=500"`
	Filters SearchFilters `json:"filters"`
}

type SearchHit struct {
	Source     string    `json:"source"`
	ID         string    `json:"id"`
	UserID     string    `json:"user_id"`
	Text       string    `json:"text"`
	Amount     *int64    `json:"amount,omitempty"`
	Emotion    string    `json:"emotion,omitempty"`
	Confidence *float64  `json:"confidence,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

type SearchResponse struct {
	Query   string         `json:"query"`
	Intent  string         `json:"intent"`
	Summary string         `json:"summary"`
	Total   int            `json:"total"`
	Counts  map[string]int `json:"counts"`
	Results []SearchHit    `json:"results"`
}

type SearchService struct {
	Store        SearchStore
	DefaultLimit int
	Now          func() time.Time
}

func NewSearchService(store SearchStore, defaultLimit int) *SearchService {
	return &SearchService{
		Store:        store,
		DefaultLimit: defaultLimit,
		Now:          func() time.Time { return time.Now().UTC() },
	}
}

// DetectIntent classifies a query by keyword; insight wins over summary over timeline.
func DetectIntent(query string) string {
	q := strings.ToLower(query)
	switch {
	case containsAny(q, "why", "pattern", "usually"):
		return IntentInsight
	case containsAny(q, "how much", "total", "how many"):
		return IntentSummary
	case containsAny(q, "when", "last", "recent"):
		return IntentTimeline
	default:
		return IntentSearch
	}
}

func containsAny(s string, needles ...string) bool {
	for _, n := range needles {
		if strings.Contains(s, n) {
			return true
		}
	}
	return false
}

// searchTerm drops the intent phrasing so "when did I last get a bonus" searches "bonus".
func searchTerm(query string) string {
	stop := map[string]bool{
		"why": true, "pattern": true, "usually": true, "how": true, "much": true, "many": true,
		"total": true, "when": true, "last": true, "recent": true, "did": true, "do": true, "i": true,
		"my": true, "me": true, "the": true, "a": true, "an": true, "is": true, "was": true, "what": true,
		"get": true, "got": true, "of": true, "for": true, "in": true,
	}
	var kept []string
	for _, w := range strings.Fields(strings.ToLower(query)) {
		w = strings.Trim(w, "?!.,;:\"'")
		if w != "" && !stop[w] {
			kept = append(kept, w)
		}
	}
	return strings.Join(kept, " ")
}

func (s *SearchService) limit(requested int) int {
	switch {
	case requested <= 0:
		if s.DefaultLimit > 0 {
			return s.DefaultLimit
		}
		return 50
	case requested > maxSearchLimit:
		return maxSearchLimit
	default:
		return requested
	}
}

// Search queries the selected sources concurrently and merges them newest first.
func (s *SearchService) Search(ctx context.Context, req SearchRequest) (*SearchResponse, error) {
	if err := Validate(req); err != nil {
		return nil, err
	}
	f := req.Filters
	if f.DateFrom != nil && f.DateTo != nil && f.DateFrom.After(*f.DateTo) {
		return nil, apperrors.New(apperrors.ErrCodeValidation, "date_from must be before date_to")
	}

	limit := s.limit(f.Limit)
	q := models.SearchQuery{
		Text:     searchTerm(req.Query),
		UserID:   f.UserID,
		Emotion:  strings.ToLower(strings.TrimSpace(f.Emotion)),
		DateFrom: f.DateFrom,
		DateTo:   f.DateTo,
		Limit:    limit,
	}

	sources := f.Sources
	if len(sources) == 0 {
		sources = allSources
	}
	// An emotion filter only makes sense for signatures.
	if q.Emotion != "" {
		sources = []string{SourceEmotion}
	}

	hits, err := s.collect(ctx, q, sources)
	if err != nil {
		return nil, err
	}

	sort.SliceStable(hits, func(i, j int) bool { return hits[i].CreatedAt.After(hits[j].CreatedAt) })
	if len(hits) > limit {
		hits = hits[:limit]
	}

	counts := make(map[string]int)
	for _, h := range hits {
		counts[h.Source]++
	}

	intent := DetectIntent(req.Query)
	return &SearchResponse{
		Query:   req.Query,
		Intent:  intent,
		Summary: summarize(intent, hits, counts),
		Total:   len(hits),
		Counts:  counts,
		Results: hits,
	}, nil
}

func (s *SearchService) collect(ctx context.Context, q models.SearchQuery, sources []string) ([]SearchHit, error) {
	results := make([][]SearchHit, len(sources))
	g, gctx := errgroup.WithContext(ctx)

	for i, source := range sources {
		i, source := i, source
		g.Go(func() error {
			hits, err := s.querySource(gctx, source, q)
			if err != nil {
				return err
			}
			results[i] = hits
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	merged := make([]SearchHit, 0)
	for _, r := range results {
		merged = append(merged, r...)
	}
	return merged, nil
}

func (s *SearchService) querySource(ctx context.Context, source string, q models.SearchQuery) ([]SearchHit, error) {
	var hits []SearchHit
	switch source {
	case SourceXP:
		rows, err := s.Store.SearchXPLogs(ctx, q)
		if err != nil {
			return nil, err
		}
		for _, r := range rows {
			amount := r.Amount
			hits = append(hits, SearchHit{Source: source, ID: r.ID, UserID: r.UserID, Text: r.Reason, Amount: &amount, CreatedAt: r.CreatedAt})
		}
	case SourceCredits:
		rows, err := s.Store.SearchCreditTransactions(ctx, q)
		if err != nil {
			return nil, err
		}
		for _, r := range rows {
			amount := r.Amount
			hits = append(hits, SearchHit{Source: source, ID: r.ID, UserID: r.UserID, Text: r.Reason, Amount: &amount, CreatedAt: r.CreatedAt})
		}
	case SourceBadges:
		rows, err := s.Store.SearchBadgeLogs(ctx, q)
		if err != nil {
			return nil, err
		}
		for _, r := range rows {
			text := r.BadgeID
			if b, ok := models.FindBadge(r.BadgeID); ok {
				text = b.Name
			}
			if r.Reason != "" {
				text += ": " + r.Reason
			}
			hits = append(hits, SearchHit{Source: source, ID: r.ID, UserID: r.UserID, Text: text, CreatedAt: r.CreatedAt})
		}
	case SourceEmotion:
		rows, err := s.Store.SearchSignatures(ctx, q)
		if err != nil {
			return nil, err
		}
		for _, r := range rows {
			confidence := r.Confidence
			hits = append(hits, SearchHit{Source: source, ID: r.ID, UserID: r.UserID, Text: r.Context, Emotion: r.Emotion, Confidence: &confidence, CreatedAt: r.CreatedAt})
		}
	}
	return hits, nil
}

func summarize(intent string, hits []SearchHit, counts map[string]int) string {
	if len(hits) == 0 {
		return "Nothing in the memory vault matches that yet."
	}
	switch intent {
	case IntentSummary:
		var xp, credits int64
		for _, h := range hits {
			if h.Amount == nil {
				continue
			}
			switch h.Source {
			case SourceXP:
				xp += *h.Amount
			case SourceCredits:
				credits += *h.Amount
			}
		}
		return fmt.Sprintf("Found %d matching entries: net %+d XP and %+d credits.", len(hits), xp, credits)
	case IntentTimeline:
		return fmt.Sprintf("The most recent match was on %s: %s.", hits[0].CreatedAt.Format("Jan 2, 2006"), hits[0].Text)
	case IntentInsight:
		top, n := dominantSource(counts)
		return fmt.Sprintf("Most matches (%d of %d) come from %s.", n, len(hits), strings.ReplaceAll(top, "_", " "))
	default:
		return fmt.Sprintf("Found %d matching entries.", len(hits))
	}
}

func dominantSource(counts map[string]int) (string, int) {
	best, bestN := "", -1
	for _, src := range allSources {
		if counts[src] > bestN {
			best, bestN = src, counts[src]
		}
	}
	return best, bestN
}

type Insights struct {
	UserID          string         `json:"user_id"`
	Days            int            `json:"days"`
	Counts          map[string]int `json:"counts"`
	XPNet           int64          `json:"xp_net"`
	CreditsNet      int64          `json:"credits_net"`
	DominantEmotion string         `json:"dominant_emotion,omitempty"`
	AvgConfidence   float64        `json:"avg_confidence"`
	Summary         string         `json:"summary"`
}

// Insights aggregates the last days of a user's memory vault (at most 200 rows per source).
func (s *SearchService) Insights(ctx context.Context, userID string, days int) (*Insights, error) {
	if userID == "" {
		return nil, apperrors.New(apperrors.ErrCodeValidation, "user_id is required")
	}
	if _, err := uuid.Parse(userID); err != nil {
		return nil, apperrors.New(apperrors.ErrCodeValidation, "user_id must be a valid UUID")
	}
	if days <= 0 {
		days = 30
	}
	if days > 365 {
		days = 365
	}

	from := s.Now().Add(-time.Duration(days) * 24 * time.Hour)
	q := models.SearchQuery{UserID: userID, DateFrom: &from, Limit: maxSearchLimit}
	hits, err := s.collect(ctx, q, allSources)
	if err != nil {
		return nil, err
	}

	out := &Insights{UserID: userID, Days: days, Counts: make(map[string]int)}
	emotions := make(map[string]int)
	var confSum float64
	var confN int
	for _, h := range hits {
		out.Counts[h.Source]++
		switch h.Source {
		case SourceXP:
			out.XPNet += *h.Amount
		case SourceCredits:
			out.CreditsNet += *h.Amount
		case SourceEmotion:
			emotions[h.Emotion]++
			if h.Confidence != nil {
				confSum += *h.Confidence
				confN++
			}
		}
	}
	if confN > 0 {
		out.AvgConfidence = float64(int(confSum/float64(confN)*100+0.5)) / 100
	}

	bestN := 0
	for e, n := range emotions {
		if n > bestN || (n == bestN && e < out.DominantEmotion) {
			out.DominantEmotion, bestN = e, n
		}
	}

	out.Summary = fmt.Sprintf("Over the last %d days: %+d XP, %+d credits, %d badges.", days, out.XPNet, out.CreditsNet, out.Counts[SourceBadges])
	if out.DominantEmotion != "" {
		out.Summary += fmt.Sprintf(" Mostly feeling %s.", out.DominantEmotion)
	}
	return out, nil
}

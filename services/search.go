package services

import (
	"context"
	"slices"
	"strings"
	"time"

	"github.com/princinho/knowledgebase/auth"
	"github.com/princinho/knowledgebase/database"
	"github.com/princinho/knowledgebase/dto"
	"github.com/princinho/knowledgebase/metrics"
	"github.com/princinho/knowledgebase/models"
	"github.com/princinho/knowledgebase/utils"
)

// Term weights: a hit in the subject counts three times a hit in the body.
const (
	subjectWeight = 3.0
	bodyWeight    = 1.0
)

type SearchResponse struct {
	Results []models.SearchResult `json:"results"`
	Total   int                   `json:"total"`
	Took    int64                 `json:"took"`
	Query   string                `json:"query"`
	Engine  string                `json:"engine"`
}

type SearchService struct {
	store   database.ArticleStore
	engine  string
	metrics *metrics.Metrics
	now     func() time.Time
}

func NewSearchService(store database.ArticleStore, engine string, m *metrics.Metrics) *SearchService {
	return &SearchService{store: store, engine: engine, metrics: m, now: time.Now}
}

// Search ranks articles against d.Query. The store narrows the candidate
// set; scoring and ordering happen here so every backend ranks the same way.
func (s *SearchService) Search(ctx context.Context, sess *auth.Session, d *dto.SearchDTO) (*SearchResponse, error) {
	if err := authorize(sess, database.ResourceArticle, OpRead); err != nil {
		return nil, err
	}
	if err := d.Validate(); err != nil {
		return nil, err
	}
	start := s.now()

	resp := &SearchResponse{
		Results: []models.SearchResult{},
		Query:   d.Query,
		Engine:  s.engine,
	}
	terms := utils.UniqueTerms(d.Query)
	if len(terms) > 0 {
		candidates, err := s.store.FindMatching(ctx, terms)
		if err != nil {
			return nil, err
		}
		ranked := Rank(candidates, terms)
		resp.Total = len(ranked)
		if len(ranked) > d.Size {
			ranked = ranked[:d.Size]
		}
		resp.Results = ranked
	}

	elapsed := s.now().Sub(start)
	resp.Took = elapsed.Milliseconds()
	s.metrics.ObserveSearch(elapsed, resp.Total)
	return resp, nil
}

// Score is the weighted term frequency of terms over the article's folded
// subject and body tokens.
func Score(a models.Article, terms []string) float64 {
	subject := counts(utils.Tokenize(a.Subject))
	body := counts(utils.Tokenize(a.Body))
	var score float64
	for _, t := range terms {
		score += subjectWeight*float64(subject[t]) + bodyWeight*float64(body[t])
	}
	return score
}

// Rank scores every article, drops those that do not match, and orders the
// rest by score desc, date desc, id asc.
func Rank(articles []models.Article, terms []string) []models.SearchResult {
	out := make([]models.SearchResult, 0, len(articles))
	for _, a := range articles {
		score := Score(a, terms)
		if score <= 0 {
			continue
		}
		out = append(out, models.SearchResult{
			ID:      a.ID,
			Product: a.Product,
			Subject: a.Subject,
			Body:    a.Body,
			Date:    a.Date,
			Score:   score,
		})
	}
	slices.SortFunc(out, func(a, b models.SearchResult) int {
		switch {
		case a.Score > b.Score:
			return -1
		case a.Score < b.Score:
			return 1
		}
		if c := b.Date.Compare(a.Date); c != 0 {
			return c
		}
		return strings.Compare(a.ID.Hex(), b.ID.Hex())
	})
	return out
}

func counts(tokens []string) map[string]int {
	m := make(map[string]int, len(tokens))
	for _, t := range tokens {
		m[t]++
	}
	return m
}

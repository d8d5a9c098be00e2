package services

import (
	"context"
	"testing"
	"time"

	"github.com/princinho/knowledgebase/database"
	"github.com/princinho/knowledgebase/dto"
	"github.com/princinho/knowledgebase/metrics"
	"github.com/princinho/knowledgebase/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"
)

func seedArticles(t *testing.T, store database.ArticleStore, articles ...models.Article) {
	t.Helper()
	for i := range articles {
		require.NoError(t, store.Insert(context.Background(), &articles[i]))
	}
}

func TestSearchSubjectOutranksBody(t *testing.T) {
	stores := database.NewMemoryStores()
	date := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	seedArticles(t, stores.Articles,
		models.Article{Product: "P", Subject: "Printer setup", Body: "Mentions the router once", Date: date},
		models.Article{Product: "P", Subject: "Router reset", Body: "Hold the button", Date: date.Add(-time.Hour)},
	)

	svc := NewSearchService(stores.Articles, stores.Kind, metrics.New())
	resp, err := svc.Search(context.Background(), nil, &dto.SearchDTO{Query: "router"})
	require.NoError(t, err)
	require.Len(t, resp.Results, 2)
	assert.Equal(t, "Router reset", resp.Results[0].Subject)
	assert.Greater(t, resp.Results[0].Score, resp.Results[1].Score)
	assert.Equal(t, 2, resp.Total)
	assert.Equal(t, "router", resp.Query)
	assert.Equal(t, "memory", resp.Engine)
}

func TestSearchTotalCountsBeforeTruncation(t *testing.T) {
	stores := database.NewMemoryStores()
	date := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		seedArticles(t, stores.Articles, models.Article{Subject: "VPN", Body: "tunnel", Date: date.Add(time.Duration(i) * time.Hour)})
	}
	seedArticles(t, stores.Articles, models.Article{Subject: "Other", Body: "nothing here", Date: date})

	svc := NewSearchService(stores.Articles, stores.Kind, nil)
	resp, err := svc.Search(context.Background(), nil, &dto.SearchDTO{Query: "vpn", Size: 2})
	require.NoError(t, err)
	assert.Equal(t, 5, resp.Total)
	require.Len(t, resp.Results, 2)
	// equal scores: most recent first
	assert.True(t, resp.Results[0].Date.After(resp.Results[1].Date))
}

func TestSearchRejectsBlankQuery(t *testing.T) {
	svc := NewSearchService(database.NewMemoryStores().Articles, "memory", nil)
	_, err := svc.Search(context.Background(), nil, &dto.SearchDTO{Query: "   "})
	var verr *dto.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "q")
}

func TestSearchFoldsAccents(t *testing.T) {
	stores := database.NewMemoryStores()
	seedArticles(t, stores.Articles, models.Article{Subject: "Café menu", Body: "x", Date: time.Now()})

	svc := NewSearchService(stores.Articles, stores.Kind, nil)
	resp, err := svc.Search(context.Background(), nil, &dto.SearchDTO{Query: "CAFE"})
	require.NoError(t, err)
	assert.Equal(t, 1, resp.Total)
}

func TestRankTieBreaksByID(t *testing.T) {
	date := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	a := models.Article{ID: bson.NewObjectID(), Subject: "disk", Date: date}
	b := models.Article{ID: bson.NewObjectID(), Subject: "disk", Date: date}

	first := Rank([]models.Article{b, a}, []string{"disk"})
	second := Rank([]models.Article{a, b}, []string{"disk"})
	require.Len(t, first, 2)
	assert.Equal(t, first, second)
	assert.Less(t, first[0].ID.Hex(), first[1].ID.Hex())
}

func TestScoreIgnoresNonMatches(t *testing.T) {
	a := models.Article{Subject: "Keyboard", Body: "keys keys"}
	assert.Equal(t, 0.0, Score(a, []string{"mouse"}))
	assert.Equal(t, 2.0, Score(a, []string{"keys"}))
	assert.Equal(t, 3.0, Score(a, []string{"keyboard"}))
}

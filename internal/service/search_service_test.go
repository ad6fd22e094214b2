package service

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/user/moviepulse/internal/model"
)

func TestSearchLocalInsufficientCallsUpstreamOnce(t *testing.T) {
	repos := setupRepos(t)
	source := newFakeSource()

	// 本地 2 条，低于阈值 5
	for i, title := range []string{"Fight Club", "Fight Back"} {
		_, err := repos.Movie.Upsert(upstreamMovie(100+i, title, 50), model.SourceSearch)
		require.NoError(t, err)
	}
	source.searchResults["fight:1"] = []model.UpstreamMovie{
		upstreamMovie(200, "Street Fighter", 30),
		upstreamMovie(100, "Fight Club", 50), // 本地已有，必须被去重
	}

	svc := NewSearchService(repos, source, testConfig())
	outcome, err := svc.Search("fight", 1)
	require.NoError(t, err)

	assert.Equal(t, 1, source.searchCalls)
	require.Len(t, outcome.Items, 3)

	// 本地在前，顺序保留；上游条目按 tmdb_id 去重
	assert.True(t, outcome.Items[0].Local)
	assert.True(t, outcome.Items[1].Local)
	assert.False(t, outcome.Items[2].Local)
	assert.Equal(t, 200, outcome.Items[2].TmdbID)

	// 上游结果已落库且带 source=search
	persisted, err := repos.Movie.FindByTmdbID(200)
	require.NoError(t, err)
	require.NotNil(t, persisted)
	assert.Equal(t, model.SourceSearch, persisted.Source)
	require.NotNil(t, outcome.Items[2].ID)
	assert.Equal(t, persisted.ID, *outcome.Items[2].ID)
}

func TestSearchLocalSufficientSkipsUpstream(t *testing.T) {
	repos := setupRepos(t)
	source := newFakeSource()

	for i := 0; i < 10; i++ {
		_, err := repos.Movie.Upsert(upstreamMovie(300+i, fmt.Sprintf("Fight %d", i), float64(10+i)), model.SourceSearch)
		require.NoError(t, err)
	}

	svc := NewSearchService(repos, source, testConfig())
	outcome, err := svc.Search("fight", 1)
	require.NoError(t, err)

	assert.Equal(t, 0, source.searchCalls)
	assert.Len(t, outcome.Items, 10)
	// 没打上游时 hasMore 恒为 false
	assert.False(t, outcome.HasMore)
}

func TestSearchNeverExceedsTwentyAndNoDuplicates(t *testing.T) {
	repos := setupRepos(t)
	source := newFakeSource()

	// 本地 3 条 + 上游整页 20 条
	for i := 0; i < 3; i++ {
		_, err := repos.Movie.Upsert(upstreamMovie(400+i, fmt.Sprintf("War Story %d", i), float64(50-i)), model.SourceSearch)
		require.NoError(t, err)
	}
	var upstream []model.UpstreamMovie
	for i := 0; i < 20; i++ {
		upstream = append(upstream, upstreamMovie(500+i, fmt.Sprintf("War %d", i), float64(20-i)))
	}
	source.searchResults["war:1"] = upstream

	svc := NewSearchService(repos, source, testConfig())
	outcome, err := svc.Search("war", 1)
	require.NoError(t, err)

	assert.LessOrEqual(t, len(outcome.Items), 20)
	assert.True(t, outcome.HasMore)

	seen := make(map[int]bool)
	for _, item := range outcome.Items {
		assert.False(t, seen[item.TmdbID], "tmdb_id %d 出现了两次", item.TmdbID)
		seen[item.TmdbID] = true
	}
}

func TestSearchUpstreamFailureYieldsLocalOnly(t *testing.T) {
	repos := setupRepos(t)
	source := newFakeSource() // 没有编排结果 = 上游返回空

	_, err := repos.Movie.Upsert(upstreamMovie(550, "Fight Club", 61.4), model.SourceSearch)
	require.NoError(t, err)

	svc := NewSearchService(repos, source, testConfig())
	outcome, err := svc.Search("fight", 1)
	require.NoError(t, err)

	assert.Equal(t, 1, source.searchCalls)
	assert.Len(t, outcome.Items, 1)
	assert.False(t, outcome.HasMore)
}

func TestSearchHasMoreNeedsFullUpstreamPage(t *testing.T) {
	repos := setupRepos(t)
	source := newFakeSource()
	source.searchResults["alien:1"] = []model.UpstreamMovie{
		upstreamMovie(348, "Alien", 40),
	}

	svc := NewSearchService(repos, source, testConfig())
	outcome, err := svc.Search("alien", 1)
	require.NoError(t, err)

	// 打了上游但不足一整页
	assert.Equal(t, 1, source.searchCalls)
	assert.False(t, outcome.HasMore)
}

func TestSearchAnnotatesPosterURL(t *testing.T) {
	repos := setupRepos(t)
	source := newFakeSource()

	_, err := repos.Movie.Upsert(model.UpstreamMovie{
		TmdbID: 550, Title: "Fight Club", PosterPath: "/poster.jpg",
	}, model.SourceSearch)
	require.NoError(t, err)

	svc := NewSearchService(repos, source, testConfig())
	outcome, err := svc.Search("fight", 1)
	require.NoError(t, err)

	require.NotEmpty(t, outcome.Items)
	assert.Equal(t, "https://image.tmdb.org/t/p/w500/poster.jpg", outcome.Items[0].PosterURL)
}

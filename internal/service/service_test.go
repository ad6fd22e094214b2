package service

import (
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/user/moviepulse/internal/config"
	"github.com/user/moviepulse/internal/model"
	"github.com/user/moviepulse/internal/repository"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// setupRepos 创建一个干净的临时库
func setupRepos(t *testing.T) *repository.Repositories {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, repository.Migrate(db))

	return repository.NewRepositories(db)
}

func testConfig() *config.Config {
	return &config.Config{
		TMDBImageURL: "https://image.tmdb.org/t/p",
		SyncPages:    2,
	}
}

// fakeSource 可编排的上游假实现
type fakeSource struct {
	mu sync.Mutex

	trendingPages map[int]*model.UpstreamPage
	genrePages    map[string]*model.UpstreamPage
	searchResults map[string][]model.UpstreamMovie
	genreList     []model.UpstreamGenre
	details       map[int]*model.MovieDetails

	trendingCalls int
	genreCalls    int
	searchCalls   int
	detailsCalls  int
}

func newFakeSource() *fakeSource {
	return &fakeSource{
		trendingPages: make(map[int]*model.UpstreamPage),
		genrePages:    make(map[string]*model.UpstreamPage),
		searchResults: make(map[string][]model.UpstreamMovie),
		details:       make(map[int]*model.MovieDetails),
	}
}

func (f *fakeSource) FetchTrending(page int) *model.UpstreamPage {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.trendingCalls++
	if p, ok := f.trendingPages[page]; ok {
		return p
	}
	return &model.UpstreamPage{Items: []model.UpstreamMovie{}}
}

func (f *fakeSource) FetchByGenre(genreTmdbID, page int) *model.UpstreamPage {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.genreCalls++
	if p, ok := f.genrePages[fmt.Sprintf("%d:%d", genreTmdbID, page)]; ok {
		return p
	}
	return &model.UpstreamPage{Items: []model.UpstreamMovie{}}
}

func (f *fakeSource) SearchByTitle(query string, page int) []model.UpstreamMovie {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.searchCalls++
	return f.searchResults[fmt.Sprintf("%s:%d", query, page)]
}

func (f *fakeSource) FetchGenreList() []model.UpstreamGenre {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.genreList
}

func (f *fakeSource) FetchDetails(tmdbID int) *model.MovieDetails {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.detailsCalls++
	return f.details[tmdbID]
}

// upstreamMovie 构造带热度的上游条目
func upstreamMovie(tmdbID int, title string, popularity float64) model.UpstreamMovie {
	m := model.UpstreamMovie{TmdbID: tmdbID, Title: title}
	if popularity > 0 {
		m.Popularity = &popularity
	}
	return m
}

// newTestSync 创建去掉限流延迟的同步服务
func newTestSync(repos *repository.Repositories, source MovieSource, queue *Queue) *SyncService {
	s := NewSyncService(repos, source, queue)
	s.pageDelay = 0
	s.dispatchJitter = 0
	return s
}

// newTestQueue 创建重试间隔极短的队列
func newTestQueue(workers int) *Queue {
	return newQueue(workers, 64, 4, time.Millisecond)
}

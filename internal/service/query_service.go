package service

import (
	"fmt"
	"log"
	"time"

	"github.com/user/moviepulse/internal/model"
	"github.com/user/moviepulse/internal/repository"
	"golang.org/x/sync/singleflight"
)

// 列表页默认条数
const DefaultPerPage = 20

// QueryService 读路径
// 优先返回当天快照的排名顺序；快照缺失时立刻用热度倒序兜底，
// 同时异步触发一次同步任务（读请求永远不等任务）
type QueryService struct {
	repos     *repository.Repositories
	sync      *SyncService
	queue     *Queue
	syncPages int
	perPage   int
	sf        singleflight.Group
}

// NewQueryService 创建查询服务，syncPages 是回填任务抓取的页数
func NewQueryService(repos *repository.Repositories, syncSvc *SyncService, queue *Queue, syncPages int) *QueryService {
	return &QueryService{
		repos:     repos,
		sync:      syncSvc,
		queue:     queue,
		syncPages: syncPages,
		perPage:   DefaultPerPage,
	}
}

// GetTrendingPage 某天 trending 榜单的一页
// 有快照按排名升序，无快照退化为全库热度倒序（忽略日期与榜单类型）
func (s *QueryService) GetTrendingPage(date time.Time, listType string, page int) ([]model.Movie, error) {
	if page < 1 {
		page = 1
	}

	has, err := s.repos.Snapshot.HasTrending(listType, date)
	if err != nil {
		return nil, err
	}
	if has {
		return s.repos.Snapshot.ListTrendingMovies(listType, date, page, s.perPage)
	}
	return s.repos.Movie.ListByPopularity(page, s.perPage)
}

// GetGenrePage 某天某类型榜单的一页
// 无快照时按规范化的类型关联过滤兜底
func (s *QueryService) GetGenrePage(genre *model.Genre, date time.Time, page int) ([]model.Movie, error) {
	if page < 1 {
		page = 1
	}

	has, err := s.repos.Snapshot.HasGenre(genre.ID, date)
	if err != nil {
		return nil, err
	}
	if has {
		return s.repos.Snapshot.ListGenreMovies(genre.ID, date, page, s.perPage)
	}
	return s.repos.Movie.ListByGenre(genre.ID, page, s.perPage)
}

// EnsureTrendingAvailable 当天没有 trending 快照时异步触发一次同步
// 立即返回，当前请求照常走兜底数据
func (s *QueryService) EnsureTrendingAvailable() {
	s.sf.Do("ensure:trending", func() (interface{}, error) {
		has, err := s.repos.Snapshot.HasTrending(model.ListTypeTrendingDay, time.Now())
		if err != nil {
			log.Printf("[Query] 检查 trending 快照失败: %v", err)
			return nil, nil
		}
		if !has {
			s.queue.Submit(s.sync.TrendingJob(s.syncPages))
		}
		return nil, nil
	})
}

// EnsureGenreAvailable 当天没有该类型快照时异步触发一次同步
func (s *QueryService) EnsureGenreAvailable(genre *model.Genre) {
	s.sf.Do(fmt.Sprintf("ensure:genre:%d", genre.TmdbID), func() (interface{}, error) {
		has, err := s.repos.Snapshot.HasGenre(genre.ID, time.Now())
		if err != nil {
			log.Printf("[Query] 检查类型快照失败 (genre: %d): %v", genre.TmdbID, err)
			return nil, nil
		}
		if !has {
			s.queue.Submit(s.sync.GenreJob(genre.TmdbID, s.syncPages))
		}
		return nil, nil
	})
}

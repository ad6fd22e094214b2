package service

import (
	"encoding/json"
	"fmt"
	"log"
	"math/rand"
	"time"

	"github.com/user/moviepulse/internal/model"
	"github.com/user/moviepulse/internal/repository"
)

// SyncService 快照同步任务
// 分页拉取上游榜单，upsert 电影行并写入当天的排名快照；所有写入按唯一键幂等，
// 同一天重跑只会刷新排名，不会产生重复行
type SyncService struct {
	repos  *repository.Repositories
	source MovieSource
	queue  *Queue

	pageDelay      time.Duration // 翻页间隔，限流用
	dispatchJitter time.Duration // 类型任务派发的随机错峰上限
}

// NewSyncService 创建同步服务
func NewSyncService(repos *repository.Repositories, source MovieSource, queue *Queue) *SyncService {
	return &SyncService{
		repos:          repos,
		source:         source,
		queue:          queue,
		pageDelay:      250 * time.Millisecond,
		dispatchJitter: 2 * time.Second,
	}
}

// SyncTrending 同步 trending 榜单前 pages 页
// 排名计数器跨页连续（1 起），同一次运行内重复出现的电影只记第一次
func (s *SyncService) SyncTrending(pages int) error {
	seen := make(map[int]bool)
	position := 0
	today := model.DateOnly(time.Now())

	for page := 1; page <= pages; page++ {
		if page > 1 {
			time.Sleep(s.pageDelay)
		}

		resp := s.source.FetchTrending(page)
		if len(resp.Items) == 0 {
			// 单页为空不算失败，继续翻页
			log.Printf("[SyncJob] trending 第 %d 页为空，跳过", page)
			continue
		}

		for _, item := range resp.Items {
			if seen[item.TmdbID] {
				continue
			}
			seen[item.TmdbID] = true

			movie, err := s.repos.Movie.Upsert(item, model.SourceTrending)
			if err != nil {
				return fmt.Errorf("保存电影失败 (tmdb_id: %d): %w", item.TmdbID, err)
			}
			if _, err := s.repos.Movie.ReplaceGenres(movie, item.GenreTmdbIDs); err != nil {
				return fmt.Errorf("同步类型关联失败 (tmdb_id: %d): %w", item.TmdbID, err)
			}

			position++
			snap := &model.TrendingSnapshot{
				MovieID:      movie.ID,
				ListType:     model.ListTypeTrendingDay,
				SnapshotDate: today,
				Position:     position,
				Page:         page,
			}
			if err := s.repos.Snapshot.UpsertTrending(snap); err != nil {
				return fmt.Errorf("保存快照失败 (tmdb_id: %d): %w", item.TmdbID, err)
			}
		}
	}

	log.Printf("[SyncJob] trending 同步完成: %d 页共 %d 部", pages, position)
	return nil
}

// SyncGenre 同步某个类型榜单前 pages 页
func (s *SyncService) SyncGenre(genreTmdbID, pages int) error {
	genre, err := s.repos.Genre.FindByTmdbID(genreTmdbID)
	if err != nil {
		return err
	}
	if genre == nil {
		// 本地还没有这个类型，先补一次类型表
		if err := s.repos.Genre.UpsertAll(s.source.FetchGenreList()); err != nil {
			return err
		}
		if genre, err = s.repos.Genre.FindByTmdbID(genreTmdbID); err != nil {
			return err
		}
		if genre == nil {
			return fmt.Errorf("未知类型: %d", genreTmdbID)
		}
	}

	seen := make(map[int]bool)
	position := 0
	today := model.DateOnly(time.Now())

	for page := 1; page <= pages; page++ {
		if page > 1 {
			time.Sleep(s.pageDelay)
		}

		resp := s.source.FetchByGenre(genreTmdbID, page)
		if len(resp.Items) == 0 {
			log.Printf("[SyncJob] 类型 %d 第 %d 页为空，跳过", genreTmdbID, page)
			continue
		}

		for _, item := range resp.Items {
			if seen[item.TmdbID] {
				continue
			}
			seen[item.TmdbID] = true

			movie, err := s.repos.Movie.Upsert(item, model.SourceTrending)
			if err != nil {
				return fmt.Errorf("保存电影失败 (tmdb_id: %d): %w", item.TmdbID, err)
			}
			if _, err := s.repos.Movie.ReplaceGenres(movie, item.GenreTmdbIDs); err != nil {
				return fmt.Errorf("同步类型关联失败 (tmdb_id: %d): %w", item.TmdbID, err)
			}

			position++
			snap := &model.GenreSnapshot{
				MovieID:      movie.ID,
				GenreID:      genre.ID,
				SnapshotDate: today,
				Position:     position,
				Page:         page,
			}
			if err := s.repos.Snapshot.UpsertGenre(snap); err != nil {
				return fmt.Errorf("保存快照失败 (tmdb_id: %d): %w", item.TmdbID, err)
			}
		}
	}

	log.Printf("[SyncJob] 类型 %d 同步完成: %d 页共 %d 部", genreTmdbID, pages, position)
	return nil
}

// SyncAllGenres 刷新类型表后为每个类型派发一个同步任务
// 派发之间加随机延迟错峰，避免同时打满上游
func (s *SyncService) SyncAllGenres(pages int) error {
	genres := s.source.FetchGenreList()
	if len(genres) == 0 {
		log.Printf("[SyncJob] 类型表为空，跳过全量类型同步")
		return nil
	}
	if err := s.repos.Genre.UpsertAll(genres); err != nil {
		return fmt.Errorf("保存类型表失败: %w", err)
	}

	for i, genre := range genres {
		if i > 0 && s.dispatchJitter > 0 {
			time.Sleep(time.Duration(rand.Int63n(int64(s.dispatchJitter))))
		}
		s.queue.Submit(s.GenreJob(genre.TmdbID, pages))
	}

	log.Printf("[SyncJob] 已派发 %d 个类型同步任务", len(genres))
	return nil
}

// SyncMovieDetails 同步电影详情：相似电影、扩展字段、类型关联、演职表
func (s *SyncService) SyncMovieDetails(movieID uint) error {
	movie, err := s.repos.Movie.FindByID(movieID)
	if err != nil {
		return err
	}
	if movie == nil {
		log.Printf("[SyncJob] 电影不存在，跳过详情同步 (id: %d)", movieID)
		return nil
	}

	details := s.source.FetchDetails(movie.TmdbID)
	if details == nil {
		// 上游拿不到详情不算失败
		log.Printf("[SyncJob] 上游无详情，跳过 (tmdb_id: %d)", movie.TmdbID)
		return nil
	}

	// 1. 相似电影：只存基础字段，来源按 search 处理
	for _, item := range details.Similar {
		similar, err := s.repos.Movie.Upsert(item, model.SourceSearch)
		if err != nil {
			return fmt.Errorf("保存相似电影失败 (tmdb_id: %d): %w", item.TmdbID, err)
		}
		if _, err := s.repos.Movie.ReplaceGenres(similar, item.GenreTmdbIDs); err != nil {
			return err
		}
		if err := s.repos.Movie.AddSimilar(movie.ID, similar.ID); err != nil {
			return err
		}
	}

	// 2. 扩展字段
	crewJSON, _ := json.Marshal(details.Crew)
	if err := s.repos.Movie.UpdateDetails(movie, details.Tagline, details.Runtime, string(crewJSON), details.Popularity); err != nil {
		return fmt.Errorf("更新详情失败 (tmdb_id: %d): %w", movie.TmdbID, err)
	}

	// 3. 类型关联全量替换（只认本地已有的类型）
	if _, err := s.repos.Movie.ReplaceGenres(movie, details.GenreTmdbIDs); err != nil {
		return err
	}

	// 4. 演职表整表重写
	if err := s.repos.Person.ReplaceCast(movie.ID, details.Cast); err != nil {
		return fmt.Errorf("重写演职表失败 (tmdb_id: %d): %w", movie.TmdbID, err)
	}

	log.Printf("[SyncJob] 详情同步完成 (tmdb_id: %d, 相似 %d 部, 演职 %d 人)",
		movie.TmdbID, len(details.Similar), len(details.Cast))
	return nil
}

// TrendingJob 构造 trending 同步任务
func (s *SyncService) TrendingJob(pages int) Job {
	return Job{
		Name: "sync-trending",
		Run:  func() error { return s.SyncTrending(pages) },
	}
}

// GenreJob 构造单类型同步任务
func (s *SyncService) GenreJob(genreTmdbID, pages int) Job {
	return Job{
		Name: fmt.Sprintf("sync-genre-%d", genreTmdbID),
		Run:  func() error { return s.SyncGenre(genreTmdbID, pages) },
	}
}

// AllGenresJob 构造全量类型同步任务
func (s *SyncService) AllGenresJob(pages int) Job {
	return Job{
		Name: "sync-all-genres",
		Run:  func() error { return s.SyncAllGenres(pages) },
	}
}

// DetailsJob 构造电影详情同步任务
func (s *SyncService) DetailsJob(movieID uint) Job {
	return Job{
		Name: fmt.Sprintf("sync-details-%d", movieID),
		Run:  func() error { return s.SyncMovieDetails(movieID) },
	}
}

package service

import (
	"log"
	"time"
)

// Scheduler 每日定时触发同步任务
// 核心逻辑只暴露"立即同步"，定时触发由这里独立负责
type Scheduler struct {
	queue     *Queue
	sync      *SyncService
	times     []string // 每日触发时刻，格式 HH:MM
	syncPages int
	stop      chan struct{}
}

// NewScheduler 创建调度器，times 是每日触发时刻列表（如 "03:00","15:00"）
func NewScheduler(queue *Queue, syncSvc *SyncService, times []string, syncPages int) *Scheduler {
	return &Scheduler{
		queue:     queue,
		sync:      syncSvc,
		times:     times,
		syncPages: syncPages,
		stop:      make(chan struct{}),
	}
}

// Start 启动调度循环
func (s *Scheduler) Start() {
	go s.run()
}

// Stop 停止调度
func (s *Scheduler) Stop() {
	close(s.stop)
}

func (s *Scheduler) run() {
	for {
		next, ok := s.nextTrigger(time.Now())
		if !ok {
			log.Printf("[Scheduler] 没有配置有效的触发时刻，调度器退出")
			return
		}

		timer := time.NewTimer(time.Until(next))
		select {
		case <-timer.C:
			log.Printf("[Scheduler] 触发每日同步 (%s)", next.Format("15:04"))
			s.queue.Submit(s.sync.TrendingJob(s.syncPages))
			s.queue.Submit(s.sync.AllGenresJob(s.syncPages))
			// 防止同一分钟内重复触发
			time.Sleep(time.Minute)
		case <-s.stop:
			timer.Stop()
			return
		}
	}
}

// nextTrigger 计算 now 之后最近的一个触发时刻
func (s *Scheduler) nextTrigger(now time.Time) (time.Time, bool) {
	var next time.Time
	found := false

	for _, spec := range s.times {
		t, err := time.Parse("15:04", spec)
		if err != nil {
			log.Printf("[Scheduler] 忽略非法触发时刻: %q", spec)
			continue
		}

		candidate := time.Date(now.Year(), now.Month(), now.Day(),
			t.Hour(), t.Minute(), 0, 0, now.Location())
		if !candidate.After(now) {
			candidate = candidate.Add(24 * time.Hour)
		}

		if !found || candidate.Before(next) {
			next = candidate
			found = true
		}
	}

	return next, found
}

package service

import (
	"log"
	"sync"
	"time"

	"github.com/avast/retry-go/v4"
)

// Job 后台任务，Run 返回错误时整个任务会按退避策略重试
type Job struct {
	Name string
	Run  func() error
}

// Queue 进程内任务队列
// 同一个任务被重复提交是安全的：所有任务体都是按唯一键 upsert 的幂等写入
type Queue struct {
	jobs      chan Job
	wg        sync.WaitGroup
	attempts  uint
	baseDelay time.Duration
	mu        sync.Mutex
	closed    bool
}

// NewQueue 创建任务队列并启动 workers 个消费协程
// 任务失败后最多重试 3 次，延迟 30s/60s/120s 递增
func NewQueue(workers, buffer int) *Queue {
	return newQueue(workers, buffer, 4, 30*time.Second)
}

func newQueue(workers, buffer int, attempts uint, baseDelay time.Duration) *Queue {
	q := &Queue{
		jobs:      make(chan Job, buffer),
		attempts:  attempts,
		baseDelay: baseDelay,
	}
	for i := 0; i < workers; i++ {
		q.wg.Add(1)
		go q.worker()
	}
	return q
}

func (q *Queue) worker() {
	defer q.wg.Done()
	for job := range q.jobs {
		q.execute(job)
	}
}

// execute 运行任务，失败按退避重试，重试耗尽后记录日志并放弃
func (q *Queue) execute(job Job) {
	err := retry.Do(
		job.Run,
		retry.Attempts(q.attempts),
		retry.Delay(q.baseDelay),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			log.Printf("[Queue] 任务 %s 第 %d 次执行失败，准备重试: %v", job.Name, n+1, err)
		}),
	)
	if err != nil {
		log.Printf("[Queue] 任务 %s 重试耗尽，放弃: %v", job.Name, err)
	}
}

// Submit 提交任务，不阻塞调用方；队列已满或已关闭时丢弃并记录
func (q *Queue) Submit(job Job) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		log.Printf("[Queue] 队列已关闭，丢弃任务: %s", job.Name)
		return
	}
	select {
	case q.jobs <- job:
	default:
		log.Printf("[Queue] 队列已满，丢弃任务: %s", job.Name)
	}
}

// SubmitWait 同步执行任务（CLI 手动触发用），同样走重试逻辑
func (q *Queue) SubmitWait(job Job) {
	q.execute(job)
}

// Stop 停止接收新任务，排空队列并等待在跑任务结束
func (q *Queue) Stop() {
	q.mu.Lock()
	if !q.closed {
		q.closed = true
		close(q.jobs)
	}
	q.mu.Unlock()
	q.wg.Wait()
}

// Package worker 消费通知意图队列并派发出站通知。
package worker

import (
	"context"
	"sync"
)

// Job 一次通知派发任务
type Job func(context.Context)

// Pool 固定大小的派发协程池。Submit 把任务交给池内协程执行，
// Stop 后提交的任务被丢弃
type Pool struct {
	size   int
	jobs   chan Job
	wg     sync.WaitGroup
	ctx    context.Context
	cancel context.CancelFunc
}

func NewPool(size int) *Pool {
	if size <= 0 {
		size = 1
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Pool{
		size:   size,
		jobs:   make(chan Job, size*2),
		ctx:    ctx,
		cancel: cancel,
	}
}

func (p *Pool) Start() {
	for i := 0; i < p.size; i++ {
		p.wg.Add(1)
		go func() {
			defer p.wg.Done()
			for {
				select {
				case <-p.ctx.Done():
					return
				case job := <-p.jobs:
					if job != nil {
						job(p.ctx)
					}
				}
			}
		}()
	}
}

func (p *Pool) Submit(job Job) {
	select {
	case <-p.ctx.Done():
		return
	case p.jobs <- job:
	}
}

// Stop 取消池内协程并等待在执行的任务结束
func (p *Pool) Stop() {
	p.cancel()
	p.wg.Wait()
}

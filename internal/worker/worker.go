package worker

import "sync"

// Task represents a unit of work executed by the pool.
type Task func()

// Pool defines a simple worker pool.
type Pool interface {
	Submit(Task)
	Stop()
}

// Option configures a pool.
type Option func(*pool)

// WithPanicHandler 設定 task panic 時的回呼，worker 會繼續處理下一個 task
func WithPanicHandler(fn func(v any)) Option {
	return func(p *pool) { p.onPanic = fn }
}

// NewPool creates a pool with n workers. n<=0 defaults to 1.
func NewPool(n int, opts ...Option) Pool {
	if n <= 0 {
		n = 1
	}
	p := &pool{jobs: make(chan Task)}
	for _, o := range opts {
		o(p)
	}
	p.wg.Add(n)
	for i := 0; i < n; i++ {
		go func() {
			defer p.wg.Done()
			for job := range p.jobs {
				p.exec(job)
			}
		}()
	}
	return p
}

type pool struct {
	jobs    chan Task
	wg      sync.WaitGroup
	onPanic func(v any)

	mu      sync.RWMutex
	stopped bool
}

func (p *pool) exec(job Task) {
	if job == nil {
		return
	}
	defer func() {
		if v := recover(); v != nil && p.onPanic != nil {
			p.onPanic(v)
		}
	}()
	job()
}

// Submit 在 Stop 之後呼叫會直接丟棄 task
func (p *pool) Submit(t Task) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.stopped {
		return
	}
	p.jobs <- t
}

func (p *pool) Stop() {
	p.mu.Lock()
	if p.stopped {
		p.mu.Unlock()
		return
	}
	p.stopped = true
	close(p.jobs)
	p.mu.Unlock()
	p.wg.Wait()
}

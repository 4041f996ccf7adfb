package metrics

import (
	"sort"
	"sync"
)

// Item stores the metrics for one file
type Item struct {
	Bytes  int `json:"bytes"`
	Tokens int `json:"tokens"`
	Lines  int `json:"lines"`
}

// Add adds the given metrics to this item
func (m *Item) Add(bytes, tokens, lines int) {
	m.Bytes += bytes
	m.Tokens += tokens
	m.Lines += lines
}

type job struct {
	path    string
	content string
}

// Collector counts files on a pool of workers. Add may be called until Wait.
type Collector struct {
	mu    sync.Mutex
	wg    sync.WaitGroup
	once  sync.Once
	jobs  chan job
	files map[string]Item
	ctr   Counter
}

// NewCollector starts workers goroutines counting with counter.
func NewCollector(counter Counter, workers int) *Collector {
	if workers < 1 {
		workers = 1
	}

	c := &Collector{
		jobs:  make(chan job, workers*2),
		files: make(map[string]Item),
		ctr:   counter,
	}

	c.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go c.worker(c.jobs)
	}
	return c
}

func (c *Collector) worker(jobs <-chan job) {
	defer c.wg.Done()

	for job := range jobs {
		bytes, tokens, lines := c.ctr.Count(job.content)

		c.mu.Lock()
		item := c.files[job.path]
		item.Add(bytes, tokens, lines)
		c.files[job.path] = item
		c.mu.Unlock()
	}
}

// Add queues a file for counting. Content added twice under one path is
// summed. Add must not be called after Wait.
func (c *Collector) Add(path, content string) {
	c.jobs <- job{path: path, content: content}
}

// Wait stops accepting work and blocks until every queued file is counted.
// It is safe to call more than once.
func (c *Collector) Wait() {
	c.once.Do(func() { close(c.jobs) })
	c.wg.Wait()
}

// Files returns a copy of the per-file metrics. Call after Wait.
func (c *Collector) Files() map[string]Item {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make(map[string]Item, len(c.files))
	for k, v := range c.files {
		out[k] = v
	}
	return out
}

// Total sums every file.
func (c *Collector) Total() Item {
	c.mu.Lock()
	defer c.mu.Unlock()

	var sum Item
	for _, v := range c.files {
		sum.Add(v.Bytes, v.Tokens, v.Lines)
	}
	return sum
}

// Paths returns the counted paths, sorted.
func (c *Collector) Paths() []string {
	c.mu.Lock()
	defer c.mu.Unlock()

	paths := make([]string, 0, len(c.files))
	for p := range c.files {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

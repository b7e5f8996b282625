package resolve

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/tkoester/pinset/pkg/graph"
	"github.com/tkoester/pinset/pkg/manifest"
)

// Resolver builds a dependency graph for a manifest by crawling a registry.
type Resolver struct {
	fetcher Fetcher
}

// NewResolver creates a Resolver that crawls dependencies using the given Fetcher.
func NewResolver(fetcher Fetcher) *Resolver {
	return &Resolver{fetcher: fetcher}
}

// Resolve crawls the dependencies of every top-level pin, respecting
// Options limits. The returned graph has the synthetic manifest root
// connected to each pin; an edge A -> B means A depends on B.
//
// A fetch failure for a top-level pin aborts the crawl; failures on
// transitive packages are logged and skipped.
func (r *Resolver) Resolve(ctx context.Context, m *manifest.Manifest, opts Options) (*graph.Graph, error) {
	c := &crawler{
		ctx:     ctx,
		opts:    opts.WithDefaults(),
		fetch:   r.fetcher.Fetch,
		g:       graph.New(),
		roots:   make(map[string]bool),
		visited: make(map[string]bool),
		jobs:    make(chan job, workers*2),
		quit:    make(chan struct{}),
	}
	return c.run(m)
}

type crawler struct {
	ctx   context.Context
	opts  Options
	fetch func(context.Context, string, string, bool) (*Package, error)

	g     *graph.Graph
	roots map[string]bool

	jobs    chan job
	quit    chan struct{}
	results chan result
	wg      sync.WaitGroup
	senders sync.WaitGroup

	mu        sync.Mutex
	visited   map[string]bool
	pending   int64
	nodeCount int32
}

type job struct {
	name    string
	version string // empty for transitive packages
	depth   int
}

type result struct {
	job
	pkg *Package
	err error
}

func (c *crawler) run(m *manifest.Manifest) (*graph.Graph, error) {
	c.results = make(chan result, workers*2)
	for range workers {
		c.wg.Add(1)
		go c.worker()
	}

	c.g.AddNode(graph.Node{ID: graph.RootID})
	for _, p := range m.Pins {
		key := p.Key()
		c.roots[key] = true
		c.g.AddEdge(graph.Edge{From: graph.RootID, To: key})
		c.g.AddNode(graph.Node{ID: key, Version: p.Version})
		c.enqueue(job{name: key, version: p.Version})
	}

	if err := c.collect(); err != nil {
		// Release blocked senders, then drain in-flight results so
		// workers can exit. jobs closes only after the last sender is
		// done, so the abort can never send on a closed channel.
		close(c.quit)
		go func() {
			c.senders.Wait()
			close(c.jobs)
		}()
		go func() {
			c.wg.Wait()
			close(c.results)
		}()
		for range c.results {
		}
		return nil, err
	}

	// pending hit zero, so every enqueued job has been delivered and
	// every sender has returned.
	close(c.jobs)
	c.wg.Wait()
	return c.g, nil
}

func (c *crawler) worker() {
	defer c.wg.Done()
	for j := range c.jobs {
		if c.ctx.Err() != nil {
			atomic.AddInt64(&c.pending, -1)
			continue
		}
		pkg, err := c.fetch(c.ctx, j.name, j.version, c.opts.Refresh)
		c.results <- result{job: j, pkg: pkg, err: err}
	}
}

func (c *crawler) enqueue(j job) bool {
	c.mu.Lock()
	if c.visited[j.name] {
		c.mu.Unlock()
		return false
	}
	c.visited[j.name] = true
	c.mu.Unlock()

	atomic.AddInt64(&c.pending, 1)

	c.senders.Add(1)
	go func() {
		defer c.senders.Done()
		select {
		case c.jobs <- j:
		case <-c.quit:
		}
	}()
	return true
}

func (c *crawler) collect() error {
	if atomic.LoadInt64(&c.pending) == 0 {
		return nil
	}
	for {
		select {
		case r := <-c.results:
			if err := c.handle(r); err != nil {
				return err
			}
			if atomic.AddInt64(&c.pending, -1) == 0 {
				return nil
			}
		case <-c.ctx.Done():
			return c.ctx.Err()
		}
	}
}

func (c *crawler) handle(r result) error {
	if r.err != nil {
		if c.roots[r.name] {
			return fmt.Errorf("resolve %s: %w", r.name, r.err)
		}
		c.opts.Logger("fetch failed: %s: %v", r.name, r.err)
		return nil
	}

	n := graph.Node{ID: r.name, Version: r.pkg.Version}
	if r.pkg.Summary != "" || r.pkg.License != "" {
		n.Meta = make(map[string]string)
		if r.pkg.Summary != "" {
			n.Meta["summary"] = r.pkg.Summary
		}
		if r.pkg.License != "" {
			n.Meta["license"] = r.pkg.License
		}
	}
	c.g.AddNode(n)
	atomic.AddInt32(&c.nodeCount, 1)

	c.enqueueDeps(r)
	return nil
}

func (c *crawler) enqueueDeps(r result) {
	if r.depth >= c.opts.MaxDepth || len(r.pkg.Dependencies) == 0 {
		return
	}

	next := r.depth + 1
	count := atomic.LoadInt32(&c.nodeCount)

	for _, dep := range r.pkg.Dependencies {
		c.g.AddEdge(graph.Edge{From: r.name, To: dep})

		if int(count) < c.opts.MaxNodes {
			c.enqueue(job{name: dep, depth: next})
		}
	}
}

// Package cortex implements the process-wide registry of keyword,
// operator, command, mutual, and render dispatch tables, plus the
// lifecycle root that constructs the top lobe and owns bootstrap
// configuration. Grounded on the teacher's factory-and-registry idiom
// (a single construction-time Config struct, one exported New per shape)
// generalized from a single neuron factory into five independent
// name-keyed tables.
package cortex

import (
	"sync"

	"github.com/xepl-run/xepl/gene"
	"github.com/xepl-run/xepl/lobe"
	"github.com/xepl-run/xepl/script"
	"github.com/xepl-run/xepl/trace"
)

// Cortex owns the five dispatch tables (§4.5) and the root lobe. It
// implements script.Registry (Operator/Mutual) and lobe.Dispatcher
// (adding Keyword/Command/Render), so any *Lobe can be constructed
// against it directly.
type Cortex struct {
	mu sync.RWMutex

	keywords  map[string]lobe.KeywordFunc
	operators map[string]script.OperatorFunc
	commands  map[string]lobe.CommandFunc
	mutuals   map[string]script.MutualFunc
	renders   map[string]lobe.RenderFunc

	Config   Config
	Reporter *trace.Reporter
	Metrics  *Metrics

	root *lobe.Lobe
}

// New returns a Cortex configured by cfg, with every dispatch table empty
// and no root lobe yet (call Boot to create one).
func New(cfg Config, reporter *trace.Reporter) *Cortex {
	if reporter == nil {
		reporter = trace.NewReporter(nil, nil)
	}
	return &Cortex{
		keywords:  make(map[string]lobe.KeywordFunc),
		operators: make(map[string]script.OperatorFunc),
		commands:  make(map[string]lobe.CommandFunc),
		mutuals:   make(map[string]script.MutualFunc),
		renders:   make(map[string]lobe.RenderFunc),
		Config:    cfg,
		Reporter:  reporter,
		Metrics:   NewMetrics(),
	}
}

// Boot constructs and starts the root lobe, named cfg.RootName, running
// configGenes as its lobe_born config children.
func (c *Cortex) Boot(configGenes []*gene.Gene) *lobe.Lobe {
	c.root = lobe.New(c.Config.RootName, c, nil, nil, c.Reporter)
	c.root.Start(configGenes)
	return c.root
}

// Root returns the cortex's root lobe, or nil before Boot runs.
func (c *Cortex) Root() *lobe.Lobe { return c.root }

// Shutdown stops the root lobe, per the teardown ordering in §5.
func (c *Cortex) Shutdown() {
	if c.root != nil {
		c.root.Stop()
	}
}

func registerWithWarning[T any](mu *sync.RWMutex, table map[string]T, reporter *trace.Reporter, kind, name string, fn T) {
	mu.Lock()
	defer mu.Unlock()
	if _, exists := table[name]; exists {
		reporter.Report("replacing existing "+kind+" registration", name)
	}
	table[name] = fn
}

// RegisterKeyword upserts a keyword, warning on replacement (§4.5).
func (c *Cortex) RegisterKeyword(name string, fn lobe.KeywordFunc) {
	registerWithWarning(&c.mu, c.keywords, c.Reporter, "keyword", name, fn)
}

// RegisterOperator upserts an RNA operator, warning on replacement.
func (c *Cortex) RegisterOperator(name string, fn script.OperatorFunc) {
	registerWithWarning(&c.mu, c.operators, c.Reporter, "operator", name, fn)
}

// RegisterCommand upserts a CLI/Command-keyword command, warning on
// replacement.
func (c *Cortex) RegisterCommand(name string, fn lobe.CommandFunc) {
	registerWithWarning(&c.mu, c.commands, c.Reporter, "command", name, fn)
}

// RegisterMutual upserts a pseudo-variable resolver, warning on
// replacement.
func (c *Cortex) RegisterMutual(name string, fn script.MutualFunc) {
	registerWithWarning(&c.mu, c.mutuals, c.Reporter, "mutual", name, fn)
}

// RegisterRender upserts a gene-name renderer, warning on replacement.
func (c *Cortex) RegisterRender(name string, fn lobe.RenderFunc) {
	registerWithWarning(&c.mu, c.renders, c.Reporter, "render", name, fn)
}

func (c *Cortex) Keyword(name string) (lobe.KeywordFunc, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	fn, ok := c.keywords[name]
	return fn, ok
}

func (c *Cortex) Operator(name string) (script.OperatorFunc, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	fn, ok := c.operators[name]
	return fn, ok
}

func (c *Cortex) Command(name string) (lobe.CommandFunc, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	fn, ok := c.commands[name]
	return fn, ok
}

func (c *Cortex) Mutual(name string) (script.MutualFunc, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	fn, ok := c.mutuals[name]
	return fn, ok
}

func (c *Cortex) Render(name string) (lobe.RenderFunc, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	fn, ok := c.renders[name]
	return fn, ok
}

package markup

import "sync"

var (
	defaultMu      sync.RWMutex
	defaultFactory Factory
)

// RegisterDefault installs the platform default parser factory. Packages that
// provide an implementation call it from init.
func RegisterDefault(f Factory) {
	defaultMu.Lock()
	defaultFactory = f
	defaultMu.Unlock()
}

func platformDefault() Factory {
	defaultMu.RLock()
	defer defaultMu.RUnlock()
	return defaultFactory
}

// Provider resolves a parser capability and caches a shareable instance.
type Provider struct {
	mu       sync.Mutex
	override Factory
	cached   Parser
}

// NewProvider returns a provider with no override.
func NewProvider() *Provider {
	return &Provider{}
}

// SetParser installs an override factory. Passing nil removes it. Any cached
// instance is dropped.
func (p *Provider) SetParser(f Factory) {
	p.mu.Lock()
	p.override = f
	p.cached = nil
	p.mu.Unlock()
}

// Factory returns the override if set, else the platform default, else
// ErrNoParser.
func (p *Provider) Factory() (Factory, error) {
	p.mu.Lock()
	f := p.override
	p.mu.Unlock()

	if f != nil {
		return f, nil
	}
	if f = platformDefault(); f != nil {
		return f, nil
	}
	return nil, ErrNoParser
}

// Parser returns a parser instance. Parsers that report Shareable are built
// once and reused; any other parser is built fresh on every call.
func (p *Provider) Parser() (Parser, error) {
	p.mu.Lock()
	if p.cached != nil {
		defer p.mu.Unlock()
		return p.cached, nil
	}
	p.mu.Unlock()

	f, err := p.Factory()
	if err != nil {
		return nil, err
	}
	parser, err := f()
	if err != nil {
		return nil, err
	}

	if s, ok := parser.(Shareable); ok && s.Shareable() {
		p.mu.Lock()
		if p.cached == nil {
			p.cached = parser
		}
		parser = p.cached
		p.mu.Unlock()
	}
	return parser, nil
}

var std = NewProvider()

// DefaultProvider returns the process-wide provider used by SetParser and
// GetParser.
func DefaultProvider() *Provider { return std }

// SetParser installs an override on the default provider.
func SetParser(f Factory) { std.SetParser(f) }

// GetParser returns the factory the default provider resolves to.
func GetParser() (Factory, error) { return std.Factory() }

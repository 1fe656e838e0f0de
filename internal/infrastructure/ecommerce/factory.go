package ecommerce

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"sync"

	"golang.org/x/time/rate"

	"github.com/erp/marketsync/internal/domain/channel"
	"github.com/erp/marketsync/internal/domain/integration"
)

// ClientMode selects how marketplace clients are built
type ClientMode string

const (
	// ClientModeLive calls the eBay Trading API
	ClientModeLive ClientMode = "live"
	// ClientModeReplay serves recorded responses from disk
	ClientModeReplay ClientMode = "replay"
)

// FactoryOptions configures the marketplace client factory
type FactoryOptions struct {
	Mode ClientMode
	// ReplayDir is read in replay mode. A subdirectory named after the
	// channel id takes precedence over the directory itself.
	ReplayDir          string
	CompatibilityLevel int
	ProductionURL      string
	SandboxURL         string
	TimeoutSeconds     int
	// Transport wraps outgoing requests, e.g. with tracing. Optional.
	Transport http.RoundTripper
	// CallsPerSecond caps Trading API calls per developer keyset; zero
	// leaves calls unthrottled. CallBurst defaults to one.
	CallsPerSecond float64
	CallBurst      int
}

// ClientFactory builds a marketplace client per channel
type ClientFactory struct {
	opts FactoryOptions

	mu       sync.Mutex
	limiters map[string]*rate.Limiter
}

// NewClientFactory creates a new ClientFactory
func NewClientFactory(opts FactoryOptions) *ClientFactory {
	if opts.Mode == "" {
		opts.Mode = ClientModeLive
	}
	if opts.CallBurst <= 0 {
		opts.CallBurst = 1
	}
	return &ClientFactory{opts: opts, limiters: make(map[string]*rate.Limiter)}
}

// ForChannel returns a client bound to the channel's credentials
func (f *ClientFactory) ForChannel(ch *channel.Channel) (integration.Marketplace, error) {
	if ch.Source != channel.SourceEbay {
		return nil, fmt.Errorf("%w: %s", integration.ErrUnsupportedSource, ch.Source)
	}
	if ch.Marketplace == nil {
		return nil, channel.ErrMarketplaceNotConfigured
	}

	switch f.opts.Mode {
	case ClientModeReplay:
		dir := filepath.Join(f.opts.ReplayDir, ch.ID.String())
		if info, err := os.Stat(dir); err != nil || !info.IsDir() {
			dir = f.opts.ReplayDir
		}
		return NewReplayClient(dir)
	case ClientModeLive:
		return f.live(ch.Marketplace)
	default:
		return nil, fmt.Errorf("ebay: unknown client mode %q", f.opts.Mode)
	}
}

func (f *ClientFactory) live(settings *channel.MarketplaceSettings) (*EbayAdapter, error) {
	cfg := NewEbayConfig(settings)
	if f.opts.CompatibilityLevel > 0 {
		cfg.CompatibilityLevel = f.opts.CompatibilityLevel
	}
	if f.opts.TimeoutSeconds > 0 {
		cfg.TimeoutSeconds = f.opts.TimeoutSeconds
	}
	switch {
	case settings.Sandbox && f.opts.SandboxURL != "":
		cfg.APIBaseURL = f.opts.SandboxURL
	case !settings.Sandbox && f.opts.ProductionURL != "":
		cfg.APIBaseURL = f.opts.ProductionURL
	}

	adapter, err := NewEbayAdapter(cfg)
	if err != nil {
		return nil, err
	}
	if f.opts.Transport != nil {
		adapter.httpClient.Transport = f.opts.Transport
	}
	if l := f.limiterFor(settings.AppID); l != nil {
		adapter.WithRateLimiter(l)
	}
	return adapter, nil
}

// limiterFor returns the limiter shared by every channel using appID
func (f *ClientFactory) limiterFor(appID string) *rate.Limiter {
	if f.opts.CallsPerSecond <= 0 {
		return nil
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	l, ok := f.limiters[appID]
	if !ok {
		l = rate.NewLimiter(rate.Limit(f.opts.CallsPerSecond), f.opts.CallBurst)
		f.limiters[appID] = l
	}
	return l
}

// Ensure ClientFactory implements integration.MarketplaceFactory
var _ integration.MarketplaceFactory = (*ClientFactory)(nil)

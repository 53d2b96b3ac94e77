package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/ppiankov/wildaware/internal/cache"
	"github.com/ppiankov/wildaware/internal/util"
	"github.com/ppiankov/wildaware/internal/worker"
)

// ErrDisallowed is returned when robots.txt forbids fetching a catalog document
var ErrDisallowed = errors.New("disallowed by robots.txt")

// Remote catalog documents, relative to the base URL
const (
	SpeciesDocument    = "species.json"
	GuidelinesDocument = "safety_guidelines.json"
	RescueDocument     = "rescue_orgs.json"
)

const maxDocumentBytes = 5 << 20

// RemoteOptions configures a RemoteProvider
type RemoteOptions struct {
	BaseURL   string
	UserAgent string
	Timeout   time.Duration
	CacheTTL  time.Duration

	Cache   cache.Cache         // nil disables caching
	Limiter *worker.Limiter     // nil uses 1 request/second per host
	Robots  *util.RobotsChecker // nil skips robots.txt checks
	Logger  *zap.Logger

	HTTPProxy  string
	HTTPSProxy string
	NoProxy    string
}

// RemoteProvider fetches the catalog from JSON documents served over HTTP.
// Species are required; guidelines and rescue orgs degrade to empty lists.
type RemoteProvider struct {
	baseURL    string
	userAgent  string
	ttl        time.Duration
	httpClient *http.Client
	cache      cache.Cache
	limiter    *worker.Limiter
	robots     *util.RobotsChecker
	logger     *zap.Logger

	mu        sync.Mutex
	last      *Catalog
	fetchedAt time.Time
}

// NewRemoteProvider creates a provider reading documents under opts.BaseURL
func NewRemoteProvider(opts RemoteOptions) (*RemoteProvider, error) {
	base, err := url.Parse(opts.BaseURL)
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("invalid catalog base URL %q", opts.BaseURL)
	}

	timeout := opts.Timeout
	if timeout == 0 {
		timeout = 10 * time.Second
	}
	limiter := opts.Limiter
	if limiter == nil {
		limiter = worker.NewLimiter(1, 3)
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &RemoteProvider{
		baseURL:   strings.TrimSuffix(opts.BaseURL, "/"),
		userAgent: opts.UserAgent,
		ttl:       opts.CacheTTL,
		httpClient: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				Proxy: util.NewProxyFunc(opts.HTTPProxy, opts.HTTPSProxy, opts.NoProxy),
			},
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 3 {
					return fmt.Errorf("stopped after 3 redirects")
				}
				return nil
			},
		},
		cache:   opts.Cache,
		limiter: limiter,
		robots:  opts.Robots,
		logger:  logger,
	}, nil
}

// Catalog returns the last snapshot while it is younger than the cache TTL,
// otherwise fetches the three documents concurrently.
func (p *RemoteProvider) Catalog(ctx context.Context) (*Catalog, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.last != nil && p.ttl > 0 && time.Since(p.fetchedAt) < p.ttl {
		return p.last, nil
	}

	cat, err := p.fetch(ctx)
	if err != nil {
		return nil, err
	}
	p.last = cat
	p.fetchedAt = time.Now()
	return cat, nil
}

// Close releases the document cache when it holds connections
func (p *RemoteProvider) Close() error {
	if closer, ok := p.cache.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}

func (p *RemoteProvider) fetch(ctx context.Context) (*Catalog, error) {
	var cat Catalog

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := p.fetchJSON(gctx, SpeciesDocument, &cat.Species); err != nil {
			return fmt.Errorf("fetch species: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		if err := p.fetchJSON(gctx, GuidelinesDocument, &cat.Guidelines); err != nil {
			p.logger.Warn("Fetching safety guidelines failed", zap.Error(err))
			cat.Guidelines = nil
		}
		return nil
	})
	g.Go(func() error {
		if err := p.fetchJSON(gctx, RescueDocument, &cat.RescueOrgs); err != nil {
			p.logger.Warn("Fetching rescue orgs failed", zap.Error(err))
			cat.RescueOrgs = nil
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	cat.Normalize()
	if err := cat.Validate(); err != nil {
		return nil, fmt.Errorf("validate remote catalog: %w", err)
	}
	return &cat, nil
}

// fetchJSON loads one document, from cache when possible
func (p *RemoteProvider) fetchJSON(ctx context.Context, name string, dst any) error {
	docURL := p.baseURL + "/" + name
	key := cache.CacheKey(docURL)

	if p.cache != nil {
		if data, found := p.cache.Get(key); found {
			if err := json.Unmarshal(data, dst); err == nil {
				p.logger.Debug("Catalog cache hit", zap.String("url", docURL))
				return nil
			}
			_ = p.cache.Delete(key)
		}
	}

	var delay time.Duration
	if p.robots != nil {
		allowed, crawlDelay, err := p.robots.CanFetch(ctx, docURL)
		if err != nil {
			return err
		}
		if !allowed {
			return fmt.Errorf("%s: %w", docURL, ErrDisallowed)
		}
		delay = crawlDelay
	}

	if err := p.limiter.WaitWithDelay(ctx, worker.HostKey(docURL), delay); err != nil {
		return fmt.Errorf("rate limit: %w", err)
	}

	data, err := p.get(ctx, docURL)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return fmt.Errorf("decode %s: %w", name, err)
	}

	if p.cache != nil {
		if err := p.cache.Set(key, data, p.ttl); err != nil {
			p.logger.Warn("Caching catalog document failed", zap.String("url", docURL), zap.Error(err))
		}
	}
	return nil
}

func (p *RemoteProvider) get(ctx context.Context, docURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, docURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	if p.userAgent != "" {
		req.Header.Set("User-Agent", p.userAgent)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("unexpected status: %d %s", resp.StatusCode, docURL)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxDocumentBytes))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	return body, nil
}

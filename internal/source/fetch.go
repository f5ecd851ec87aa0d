package source

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/utakatalp/league-odds/internal/league"
)

// Options locates the fixtures page and its on-disk cache.
type Options struct {
	URL       string        `yaml:"url"`
	CachePath string        `yaml:"cache_path"`
	MaxAge    time.Duration `yaml:"max_age"`
	Timeout   time.Duration `yaml:"timeout"`
}

// Fetcher downloads the fixtures page and keeps a copy on disk. A cached
// page younger than MaxAge is used as is; an older one is only used when the
// download fails.
type Fetcher struct {
	opts   Options
	client *http.Client
	log    *logrus.Entry
	now    func() time.Time
}

func NewFetcher(opts Options, log *logrus.Entry) *Fetcher {
	if log == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		log = logrus.NewEntry(l)
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Fetcher{
		opts: opts,
		client: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				TLSHandshakeTimeout: 10 * time.Second,
				IdleConnTimeout:     30 * time.Second,
				MaxIdleConns:        10,
			},
		},
		log: log.WithField("source", opts.URL),
		now: time.Now,
	}
}

// LoadMatches fetches (or reads from cache) and parses the fixtures page.
func (f *Fetcher) LoadMatches(ctx context.Context) ([]*league.Match, error) {
	page, err := f.Page(ctx)
	if err != nil {
		return nil, err
	}
	f.log.WithField("bytes", len(page)).Debug("parsing fixtures")
	return ParseFixtures(bytes.NewReader(page))
}

// Page returns the raw fixtures page.
func (f *Fetcher) Page(ctx context.Context) ([]byte, error) {
	cached, fresh, err := f.readCache()
	if err != nil {
		return nil, err
	}
	if fresh {
		f.log.Debug("using fresh cache")
		return cached, nil
	}

	page, err := f.download(ctx)
	if err != nil {
		if cached != nil {
			f.log.WithError(err).Warn("download failed, using stale cache")
			return cached, nil
		}
		return nil, fmt.Errorf("fetching fixtures without cache: %w", err)
	}

	if err := f.writeCache(page); err != nil {
		f.log.WithError(err).Warn("could not write cache")
	}
	return page, nil
}

func (f *Fetcher) readCache() (page []byte, fresh bool, err error) {
	if f.opts.CachePath == "" {
		return nil, false, nil
	}
	info, err := os.Stat(f.opts.CachePath)
	if errors.Is(err, os.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("checking cache: %w", err)
	}
	page, err = os.ReadFile(f.opts.CachePath)
	if err != nil {
		return nil, false, fmt.Errorf("reading cache: %w", err)
	}
	age := f.now().Sub(info.ModTime())
	return page, age < f.opts.MaxAge, nil
}

func (f *Fetcher) writeCache(page []byte) error {
	if f.opts.CachePath == "" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(f.opts.CachePath), 0o755); err != nil {
		return fmt.Errorf("creating cache dir: %w", err)
	}
	return os.WriteFile(f.opts.CachePath, page, 0o644)
}

func (f *Fetcher) download(ctx context.Context) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.opts.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("requesting %s: %w", f.opts.URL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("requesting %s: status %d", f.opts.URL, resp.StatusCode)
	}
	page, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading body: %w", err)
	}
	f.log.WithField("bytes", len(page)).Info("fixtures downloaded")
	return page, nil
}

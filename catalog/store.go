package catalog

import (
	"context"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"golang.org/x/sync/singleflight"

	"github.com/signalsfoundry/orbit-tracker/internal/logging"
	"github.com/signalsfoundry/orbit-tracker/timectrl"
	"github.com/signalsfoundry/orbit-tracker/tle"
)

const (
	// DefaultTTL is how long an accepted catalog counts as fresh.
	DefaultTTL = 6 * time.Hour

	// DefaultRefreshInterval is how often the background refresh runs.
	DefaultRefreshInterval = 30 * time.Minute

	// SourceFallback identifies the built-in record set.
	SourceFallback = "builtin"
)

// Cached is one accepted catalog: the parsed records, when they were
// acquired, and which source produced them.
type Cached struct {
	Records    []tle.ElementRecord
	AcquiredAt time.Time
	Source     string
}

// Fresh reports whether the entry is within ttl of now.
func (c Cached) Fresh(now time.Time, ttl time.Duration) bool {
	return !c.AcquiredAt.IsZero() && now.Sub(c.AcquiredAt) < ttl
}

// StoreOptions configures a Store. Zero values select defaults.
type StoreOptions struct {
	Ingestor        *Ingestor
	Disk            *DiskCache // nil disables persistence
	Clock           timectrl.Clock
	Log             logging.Logger
	TTL             time.Duration
	RefreshInterval time.Duration
}

// Store holds the most recently accepted catalog per source and resolves
// reads through the tiered fallback chain. Concurrent refreshes for the
// same source collapse into one in-flight fetch; later callers observe
// that fetch's outcome rather than issuing a duplicate.
type Store struct {
	mu      sync.RWMutex
	entries map[string]Cached
	subs    []func(Cached)

	ingestor *Ingestor
	disk     *DiskCache
	clock    timectrl.Clock
	log      logging.Logger
	ttl      time.Duration
	interval time.Duration

	flight singleflight.Group

	cronMu sync.Mutex
	sched  *cron.Cron
}

// NewStore constructs a Store. Persisted slots for the given sources are
// loaded immediately so a restart starts from the last accepted catalogs.
func NewStore(opts StoreOptions, sources ...string) *Store {
	if opts.Clock == nil {
		opts.Clock = timectrl.SystemClock{}
	}
	if opts.Log == nil {
		opts.Log = logging.Noop()
	}
	if opts.Ingestor == nil {
		opts.Ingestor = NewIngestor(nil, opts.Clock, opts.Log, nil)
	}
	if opts.TTL <= 0 {
		opts.TTL = DefaultTTL
	}
	if opts.RefreshInterval <= 0 {
		opts.RefreshInterval = DefaultRefreshInterval
	}

	s := &Store{
		entries:  make(map[string]Cached),
		ingestor: opts.Ingestor,
		disk:     opts.Disk,
		clock:    opts.Clock,
		log:      opts.Log,
		ttl:      opts.TTL,
		interval: opts.RefreshInterval,
	}
	for _, src := range sources {
		if c, ok := s.loadDisk(src); ok {
			s.entries[src] = c
		}
	}
	return s
}

// Get resolves a catalog for sourceURL: a fresh in-memory entry is
// returned without touching the network; otherwise a fetch is attempted;
// on failure a stale entry of any age is returned; with no entry at all
// the built-in fallback set is returned. Get never fails.
func (s *Store) Get(ctx context.Context, sourceURL string) Cached {
	if entry, ok := s.entry(sourceURL); ok && entry.Fresh(s.clock.Now(), s.ttl) {
		return entry
	}

	if fetched, err := s.Refresh(ctx, sourceURL); err == nil {
		return fetched
	}

	if entry, ok := s.entry(sourceURL); ok {
		s.log.Warn(ctx, "serving stale catalog",
			logging.String("source", sourceURL),
			logging.Any("age", s.clock.Now().Sub(entry.AcquiredAt).String()))
		return entry
	}

	s.log.Warn(ctx, "serving built-in fallback catalog", logging.String("source", sourceURL))
	return Cached{
		Records:    FallbackRecords(),
		AcquiredAt: s.clock.Now(),
		Source:     SourceFallback,
	}
}

// Refresh forces a network fetch for sourceURL, bypassing the freshness
// check but not the single-flight guard. On success the store entry is
// replaced, the disk slot rewritten, and subscribers notified.
func (s *Store) Refresh(ctx context.Context, sourceURL string) (Cached, error) {
	v, err, _ := s.flight.Do(sourceURL, func() (interface{}, error) {
		fetched, err := s.ingestor.Fetch(ctx, sourceURL)
		if err != nil {
			return nil, err
		}
		s.replace(fetched)
		return fetched, nil
	})
	if err != nil {
		return Cached{}, err
	}
	return v.(Cached), nil
}

// Subscribe registers fn to run after every accepted catalog replacement.
// Callbacks run synchronously on the refreshing goroutine.
func (s *Store) Subscribe(fn func(Cached)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subs = append(s.subs, fn)
}

// StartAutoRefresh begins refreshing the given sources on the store's
// refresh interval until StopAutoRefresh is called.
func (s *Store) StartAutoRefresh(sources ...string) {
	s.cronMu.Lock()
	defer s.cronMu.Unlock()
	if s.sched != nil {
		return
	}
	s.sched = cron.New()
	for _, src := range sources {
		src := src
		s.sched.Schedule(cron.Every(s.interval), cron.FuncJob(func() {
			if _, err := s.Refresh(context.Background(), src); err != nil {
				s.log.Warn(context.Background(), "background refresh failed",
					logging.String("source", src),
					logging.String("error", err.Error()))
			}
		}))
	}
	s.sched.Start()
}

// StopAutoRefresh stops the background refresh schedule.
func (s *Store) StopAutoRefresh() {
	s.cronMu.Lock()
	defer s.cronMu.Unlock()
	if s.sched != nil {
		s.sched.Stop()
		s.sched = nil
	}
}

func (s *Store) entry(sourceURL string) (Cached, bool) {
	s.mu.RLock()
	entry, ok := s.entries[sourceURL]
	s.mu.RUnlock()
	if ok {
		return entry, true
	}
	// Lazy disk read covers sources not named at construction.
	if c, found := s.loadDisk(sourceURL); found {
		s.mu.Lock()
		if existing, raced := s.entries[sourceURL]; raced {
			c = existing
		} else {
			s.entries[sourceURL] = c
		}
		s.mu.Unlock()
		return c, true
	}
	return Cached{}, false
}

func (s *Store) replace(c Cached) {
	s.mu.Lock()
	s.entries[c.Source] = c
	subs := make([]func(Cached), len(s.subs))
	copy(subs, s.subs)
	s.mu.Unlock()

	if s.disk != nil {
		if err := s.disk.Store(c); err != nil {
			s.log.Warn(context.Background(), "catalog persist failed",
				logging.String("source", c.Source),
				logging.String("error", err.Error()))
		}
	}
	for _, fn := range subs {
		fn(c)
	}
}

func (s *Store) loadDisk(sourceURL string) (Cached, bool) {
	if s.disk == nil {
		return Cached{}, false
	}
	c, ok, err := s.disk.Load(sourceURL)
	if err != nil {
		// Corrupt cache slots are treated as absent.
		s.log.Warn(context.Background(), "ignoring unreadable catalog cache",
			logging.String("source", sourceURL),
			logging.String("error", err.Error()))
		return Cached{}, false
	}
	return c, ok
}

// Merge unions catalogs from multiple sources, deduplicating by catalog
// number with first-seen-wins semantics. Records without a catalog number
// are kept as-is. The result carries the earliest acquisition time so
// freshness is judged by the oldest contributor.
func Merge(catalogs ...Cached) Cached {
	if len(catalogs) == 0 {
		return Cached{}
	}
	if len(catalogs) == 1 {
		return catalogs[0]
	}

	total := 0
	for _, c := range catalogs {
		total += len(c.Records)
	}
	merged := Cached{
		Records:    make([]tle.ElementRecord, 0, total),
		AcquiredAt: catalogs[0].AcquiredAt,
		Source:     catalogs[0].Source,
	}
	seen := make(map[string]bool, total)
	for _, c := range catalogs {
		if !c.AcquiredAt.IsZero() && c.AcquiredAt.Before(merged.AcquiredAt) {
			merged.AcquiredAt = c.AcquiredAt
		}
		for _, rec := range c.Records {
			key := rec.CatalogNumber()
			if key != "" {
				if seen[key] {
					continue
				}
				seen[key] = true
			}
			merged.Records = append(merged.Records, rec)
		}
	}
	merged.Source = joinSources(catalogs)
	return merged
}

func joinSources(catalogs []Cached) string {
	out := ""
	for i, c := range catalogs {
		if i > 0 {
			out += "+"
		}
		out += c.Source
	}
	return out
}

package core

import (
	"context"
	"log/slog"
	"net/url"
	"strings"
	"sync"
	"time"
)

// Options carries the scan inputs supplied at startup. The service never
// reloads them.
type Options struct {
	ThreadURLs  []string
	SocialURLs  []string
	Interval    time.Duration
	SourceDelay time.Duration
	MaxCodes    int
}

// socialAuthor tags entries synthesized from social-search sources, which
// carry no per-comment attribution.
const socialAuthor = "social"

// Service owns the result store and runs scan passes over the configured
// sources. One mutex serializes passes and reads: at most one pass (scheduled
// or manual) executes at a time, and readers observe only fully merged state.
type Service struct {
	log       *slog.Logger
	fetcher   Fetcher
	publisher Publisher
	metrics   Metrics
	opts      Options

	mu        sync.Mutex
	store     *Store
	lastFetch float64
}

func NewService(log *slog.Logger, fetcher Fetcher, publisher Publisher, metrics Metrics, opts Options) (*Service, error) {
	if opts.MaxCodes < 1 {
		return nil, ErrBadArguments
	}
	return &Service{
		log:       log,
		fetcher:   fetcher,
		publisher: publisher,
		metrics:   metrics,
		opts:      opts,
		store:     NewStore(opts.MaxCodes),
	}, nil
}

// Scan runs one full pass over all configured sources, merges the discoveries
// into the store and returns the resulting state. Per-source failures are
// logged and skipped; the returned error is ErrUpstreamUnavailable only when
// every configured source failed.
func (s *Service) Scan(ctx context.Context) (CodesReply, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.metrics.ScanStarted()
	s.log.Info("scan started")
	defer func(start time.Time) {
		s.log.Info("scan finished", "duration", time.Since(start))
	}(time.Now())

	now := unixNow()

	var newEntries []CodeEntry
	var sources, failures int

	for _, src := range s.opts.ThreadURLs {
		src = strings.TrimSpace(src)
		if src == "" {
			continue
		}
		sources++

		entries, err := s.scanThreadSource(ctx, src, now)
		if err != nil {
			s.log.Warn("failed to scan source", "url", src, "error", err)
			s.metrics.SourceFailed()
			failures++
		}
		newEntries = append(newEntries, entries...)

		if err := sleepCtx(ctx, s.opts.SourceDelay); err != nil {
			break
		}
	}

	for _, src := range s.opts.SocialURLs {
		src = strings.TrimSpace(src)
		if src == "" {
			continue
		}
		if !s.fetcher.ProxyEnabled() {
			s.log.Debug("social source skipped, proxy not configured", "url", src)
			continue
		}
		sources++

		entries, err := s.scanSocialSource(ctx, src, now)
		if err != nil {
			s.log.Warn("failed to scan social source", "url", src, "error", err)
			s.metrics.SourceFailed()
			failures++
		}
		newEntries = append(newEntries, entries...)

		if err := sleepCtx(ctx, s.opts.SourceDelay); err != nil {
			break
		}
	}

	if evicted := s.store.Commit(newEntries); evicted > 0 {
		s.log.Debug("evicted oldest entries", "count", evicted)
	}
	s.store.Prune(IsValidCandidate)
	s.lastFetch = unixNow()

	s.metrics.SetCodesCached(s.store.Len())
	s.log.Info("scan complete", "new_codes", len(newEntries), "sources", sources, "failed", failures)

	if len(newEntries) > 0 {
		if err := s.publisher.Publish(EventDiscovered); err != nil {
			s.log.Error("failed to publish", "error", err)
		}
	}

	reply := s.replyLocked()
	if sources > 0 && failures == sources {
		s.metrics.ScanFinished(len(newEntries), ErrUpstreamUnavailable)
		return reply, ErrUpstreamUnavailable
	}
	s.metrics.ScanFinished(len(newEntries), nil)
	return reply, nil
}

func (s *Service) scanThreadSource(ctx context.Context, src string, now float64) ([]CodeEntry, error) {
	payload, err := s.fetcher.FetchJSON(ctx, src)
	if err != nil {
		return nil, err
	}

	var entries []CodeEntry
	for _, comment := range FlattenComments(Listing(payload)) {
		body := comment.Body()
		if body == "" {
			continue
		}
		codes := ExtractCodes(body)
		if len(codes) == 0 {
			continue
		}

		permalink := absolutize(src, comment.Permalink())
		created := comment.CreatedUTC(now)

		for _, code := range codes {
			entry := CodeEntry{
				Code:       code,
				CommentID:  comment.ID(),
				Author:     comment.Author(),
				Permalink:  permalink,
				CreatedUTC: created,
				FirstSeen:  now,
			}
			if s.store.Add(entry) {
				entries = append(entries, entry)
			}
		}
	}

	if len(entries) > 0 {
		s.log.Info("found new codes", "count", len(entries), "url", src)
	}
	return entries, nil
}

func (s *Service) scanSocialSource(ctx context.Context, src string, now float64) ([]CodeEntry, error) {
	text, err := s.fetcher.FetchText(ctx, src)
	if err != nil {
		return nil, err
	}

	var entries []CodeEntry
	for _, code := range ExtractCodes(text) {
		entry := CodeEntry{
			Code:       code,
			Author:     socialAuthor,
			Permalink:  src,
			CreatedUTC: now,
			FirstSeen:  now,
		}
		if s.store.Add(entry) {
			entries = append(entries, entry)
		}
	}

	if len(entries) > 0 {
		s.log.Info("found new codes", "count", len(entries), "url", src)
	}
	return entries, nil
}

// Codes returns the current bounded result set. Entries cached under an older
// rule set are pruned before the snapshot is taken.
func (s *Service) Codes(ctx context.Context) CodesReply {
	s.mu.Lock()
	defer s.mu.Unlock()

	if removed := s.store.Prune(IsValidCandidate); removed > 0 {
		s.log.Debug("pruned invalid entries", "count", removed)
		s.metrics.SetCodesCached(s.store.Len())
	}
	return s.replyLocked()
}

func (s *Service) Health(ctx context.Context) HealthReply {
	s.mu.Lock()
	defer s.mu.Unlock()

	return HealthReply{
		Status:          "ok",
		CodesCached:     s.store.Len(),
		LastFetch:       s.lastFetch,
		IntervalSeconds: s.opts.Interval.Seconds(),
		ScraperEnabled:  s.fetcher.ProxyEnabled(),
		SourceCount:     len(s.opts.ThreadURLs) + len(s.opts.SocialURLs),
	}
}

func (s *Service) replyLocked() CodesReply {
	return CodesReply{
		Codes:     s.store.Snapshot(),
		FetchedAt: s.lastFetch,
	}
}

// absolutize rewrites a source-relative permalink against the source URL's
// origin. Already-absolute or unparseable values pass through unchanged.
func absolutize(src, permalink string) string {
	if permalink == "" || !strings.HasPrefix(permalink, "/") {
		return permalink
	}
	u, err := url.Parse(src)
	if err != nil || u.Host == "" {
		return permalink
	}
	return u.Scheme + "://" + u.Host + permalink
}

func unixNow() float64 {
	return float64(time.Now().UnixMilli()) / 1000
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

package core

// CodeEntry is one discovered invite-code candidate. Entries are immutable
// after creation: the store only reads, reorders or drops them whole.
type CodeEntry struct {
	Code       string  `json:"code"`
	CommentID  string  `json:"comment_id"`
	Author     string  `json:"author,omitempty"`
	Permalink  string  `json:"permalink"`
	CreatedUTC float64 `json:"created_utc"`
	FirstSeen  float64 `json:"first_seen"`
}

// CodesReply is the API shape for the current result set. Timestamps are
// unix seconds, matching the upstream comment format.
type CodesReply struct {
	Codes     []CodeEntry `json:"codes"`
	FetchedAt float64     `json:"fetched_at"`
}

type HealthReply struct {
	Status          string  `json:"status"`
	CodesCached     int     `json:"codes_cached"`
	LastFetch       float64 `json:"last_fetch"`
	IntervalSeconds float64 `json:"interval_seconds"`
	ScraperEnabled  bool    `json:"scraper_enabled"`
	SourceCount     int     `json:"source_count"`
}

type EventType string

const EventDiscovered EventType = "discovered"

// Comment is a flattened raw comment node. The upstream payload is untyped
// and frequently incomplete, so every accessor tolerates missing or
// wrongly-typed fields.
type Comment map[string]any

func (c Comment) str(key string) string {
	s, _ := c[key].(string)
	return s
}

func (c Comment) ID() string        { return c.str("id") }
func (c Comment) Body() string      { return c.str("body") }
func (c Comment) Author() string    { return c.str("author") }
func (c Comment) Permalink() string { return c.str("permalink") }

// CreatedUTC returns the comment's origin timestamp, or fallback when the
// field is absent, zero or not a number.
func (c Comment) CreatedUTC(fallback float64) float64 {
	if v, ok := c["created_utc"].(float64); ok && v != 0 {
		return v
	}
	return fallback
}

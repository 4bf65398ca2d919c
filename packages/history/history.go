package history

import (
	"iter"
	"slices"
	"time"

	"github.com/abdul-hamid-achik/spag/packages/core/request"
	"github.com/abdul-hamid-achik/spag/packages/errdef"
	"github.com/abdul-hamid-achik/spag/packages/http"
	"github.com/abdul-hamid-achik/spag/packages/store"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

const (
	// DefaultSize is the number of entries kept when no size is configured.
	DefaultSize = 1000

	document = "history.yml"
)

// Entry is one executed request.
type Entry struct {
	Index     int               `yaml:"index" json:"index"`
	ID        string            `yaml:"id" json:"id"`
	Timestamp time.Time         `yaml:"timestamp" json:"timestamp"`
	Request   *request.Template `yaml:"request" json:"request"`
	Response  *http.Summary     `yaml:"response,omitempty" json:"response,omitempty"`
}

// Summary is the listing view of an entry.
type Summary struct {
	Index     int
	Method    request.Method
	URL       string
	Resource  string
	Timestamp time.Time
	// Status is zero when no response was recorded.
	Status int
}

// Log is the persisted history. It reads the document on every call, so a
// Log value never holds stale entries.
type Log struct {
	store *store.Store
	size  int
	now   func() time.Time
}

// Option configures a Log.
type Option func(*Log)

// WithSize caps the number of retained entries. Values below one keep the
// default.
func WithSize(n int) Option {
	return func(l *Log) {
		if n > 0 {
			l.size = n
		}
	}
}

// WithClock replaces time.Now for entry timestamps.
func WithClock(now func() time.Time) Option {
	return func(l *Log) {
		l.now = now
	}
}

func New(s *store.Store, opts ...Option) *Log {
	l := &Log{store: s, size: DefaultSize, now: time.Now}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

func (l *Log) load() ([]Entry, error) {
	var entries []Entry
	if _, err := l.store.LoadOptional(document, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// Append records t and its response summary, which may be nil, and returns
// the assigned index.
func (l *Log) Append(t *request.Template, resp *http.Summary) (int, error) {
	entries, err := l.load()
	if err != nil {
		return 0, err
	}

	index := 0
	if n := len(entries); n > 0 {
		index = entries[n-1].Index + 1
	}
	entries = append(entries, Entry{
		Index:     index,
		ID:        uuid.NewString(),
		Timestamp: l.now().UTC().Truncate(time.Second),
		Request:   t.Clone(),
		Response:  resp,
	})

	if excess := len(entries) - l.size; excess > 0 {
		entries = entries[excess:]
		log.Debug().Int("pruned", excess).Msg("history pruned")
	}

	if err := l.store.Save(document, entries); err != nil {
		return 0, err
	}
	return index, nil
}

// Get returns the entry with the given index.
func (l *Log) Get(index int) (*Entry, error) {
	entries, err := l.load()
	if err != nil {
		return nil, err
	}
	pos := -1
	if index >= 0 {
		pos = slices.IndexFunc(entries, func(e Entry) bool { return e.Index == index })
	}
	if pos < 0 {
		return nil, errdef.IndexOutOfRange(index, len(entries))
	}
	e := entries[pos]
	return &e, nil
}

// Len returns the number of retained entries.
func (l *Log) Len() (int, error) {
	entries, err := l.load()
	if err != nil {
		return 0, err
	}
	return len(entries), nil
}

// List returns a summary of each entry, oldest first. The document is read
// once; the returned sequence may be ranged over any number of times.
func (l *Log) List() (iter.Seq[Summary], error) {
	var entries []summaryEntry
	if _, err := l.store.LoadOptional(document, &entries); err != nil {
		return nil, err
	}
	return func(yield func(Summary) bool) {
		for _, e := range entries {
			if !yield(e.summary()) {
				return
			}
		}
	}, nil
}

// summaryEntry decodes only the fields a listing needs; response headers and
// bodies are skipped.
type summaryEntry struct {
	Index     int       `yaml:"index"`
	Timestamp time.Time `yaml:"timestamp"`
	Request   struct {
		Method   request.Method `yaml:"method"`
		Endpoint string         `yaml:"endpoint"`
		Resource string         `yaml:"resource"`
	} `yaml:"request"`
	Response struct {
		Status int `yaml:"status"`
	} `yaml:"response"`
}

func (e summaryEntry) summary() Summary {
	return Summary{
		Index:     e.Index,
		Method:    e.Request.Method,
		URL:       request.JoinURL(e.Request.Endpoint, e.Request.Resource),
		Resource:  e.Request.Resource,
		Timestamp: e.Timestamp,
		Status:    e.Response.Status,
	}
}

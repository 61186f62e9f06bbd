package catalog

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/tidwall/gjson"
)

//go:embed sheet.json
var defaultSheet []byte

// questionsPath is where the feed document keeps its question list.
const questionsPath = "data.questions"

// maxFeedBytes bounds the size of a fetched feed document.
const maxFeedBytes = 32 << 20

// ErrMalformedFeed is returned when the feed document is not JSON.
var ErrMalformedFeed = errors.New("malformed catalog feed")

// Feed fetches the catalog once at startup.
type Feed interface {
	Fetch(ctx context.Context) ([]Question, error)
}

// FeedFunc adapts a function to Feed.
type FeedFunc func(ctx context.Context) ([]Question, error)

func (f FeedFunc) Fetch(ctx context.Context) ([]Question, error) { return f(ctx) }

// SourceFeed reads the feed from a file path, an http(s) URL, or the
// embedded default sheet when Source is empty.
type SourceFeed struct {
	Source  string
	Timeout time.Duration
	Client  *http.Client
}

// NewSourceFeed creates a SourceFeed for source.
func NewSourceFeed(source string, timeout time.Duration) *SourceFeed {
	return &SourceFeed{Source: source, Timeout: timeout}
}

func (f *SourceFeed) Fetch(ctx context.Context) ([]Question, error) {
	data, err := f.read(ctx)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

func (f *SourceFeed) read(ctx context.Context) ([]byte, error) {
	switch {
	case f.Source == "":
		return defaultSheet, nil
	case strings.HasPrefix(f.Source, "http://"), strings.HasPrefix(f.Source, "https://"):
		return f.download(ctx)
	default:
		data, err := os.ReadFile(f.Source)
		if err != nil {
			return nil, fmt.Errorf("read catalog file: %w", err)
		}
		return data, nil
	}
}

func (f *SourceFeed) download(ctx context.Context) ([]byte, error) {
	if f.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.Timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.Source, nil)
	if err != nil {
		return nil, fmt.Errorf("build catalog request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	client := f.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch catalog: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("fetch catalog: unexpected status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxFeedBytes))
	if err != nil {
		return nil, fmt.Errorf("read catalog body: %w", err)
	}
	return data, nil
}

// Parse extracts the question list from a feed document. A document with
// no data.questions yields an empty catalog. Entries are decoded
// leniently: missing fields stay zero, non-object entries are skipped and
// a non-object questionId leaves the reference unset.
func Parse(data []byte) ([]Question, error) {
	if !gjson.ValidBytes(data) {
		return nil, ErrMalformedFeed
	}

	list := gjson.GetBytes(data, questionsPath)
	if !list.Exists() || list.Type == gjson.Null {
		return []Question{}, nil
	}
	if !list.IsArray() {
		return nil, fmt.Errorf("%w: %s is not an array", ErrMalformedFeed, questionsPath)
	}

	questions := make([]Question, 0, len(list.Array()))
	list.ForEach(func(_, entry gjson.Result) bool {
		if !entry.IsObject() {
			return true
		}
		questions = append(questions, decodeQuestion(entry))
		return true
	})
	return questions, nil
}

func decodeQuestion(entry gjson.Result) Question {
	q := Question{
		ID:       entry.Get("_id").String(),
		Title:    entry.Get("title").String(),
		Topic:    entry.Get("topic").String(),
		SubTopic: entry.Get("subTopic").String(),
	}
	if q.SubTopic == "" {
		q.SubTopic = DefaultSubTopic
	}
	if ref := entry.Get("questionId"); ref.IsObject() {
		q.Reference = &Reference{
			ExternalID: ref.Get("_id").String(),
			Name:       ref.Get("name").String(),
			Difficulty: Difficulty(ref.Get("difficulty").String()),
			ProblemURL: ref.Get("problemUrl").String(),
		}
	}
	return q
}

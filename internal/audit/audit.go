package audit

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/elastic/go-elasticsearch/v9"

	"github.com/peoplehub/authservice/internal/events"
)

const defaultIndex = "auth-audit"

// Recorder indexes auth events into Elasticsearch so the security team can
// search the trail. A nil Recorder is a valid no-op.
type Recorder struct {
	ES    *elasticsearch.Client
	Index string
}

// NewClient connects to Elasticsearch and verifies the cluster is
// reachable.
func NewClient(url, user, password string) (*elasticsearch.Client, error) {
	client, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: []string{url},
		Username:  user,
		Password:  password,
	})
	if err != nil {
		return nil, fmt.Errorf("elasticsearch: new client: %w", err)
	}

	res, err := client.Info()
	if err != nil {
		return nil, fmt.Errorf("elasticsearch: info: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		body, _ := io.ReadAll(res.Body)
		return nil, fmt.Errorf("elasticsearch: %s: %s", res.Status(), body)
	}
	return client, nil
}

func NewRecorder(es *elasticsearch.Client) *Recorder {
	return &Recorder{ES: es, Index: defaultIndex}
}

type document struct {
	events.Event
	Timestamp time.Time `json:"@timestamp"`
}

// Record indexes one event. Callers treat failures as best-effort and only
// log them; an audit outage must never fail an authentication request.
func (r *Recorder) Record(ctx context.Context, event events.Event) error {
	if r == nil || r.ES == nil {
		return nil
	}
	doc := document{Event: event, Timestamp: time.Now().UTC()}
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("audit: marshal document: %w", err)
	}

	res, err := r.ES.Index(r.Index, bytes.NewReader(data), r.ES.Index.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("audit: index: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return fmt.Errorf("audit: index: %s", res.Status())
	}
	return nil
}

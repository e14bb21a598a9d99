// Package analytics reports page views to Google Analytics through the GA4
// Measurement Protocol. Delivery is asynchronous and best effort: a full
// queue drops events instead of blocking the UI.
package analytics

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/trypromptly/promptly-cli/internal/logger"
)

// DefaultEndpoint is the GA4 Measurement Protocol collection URL.
const DefaultEndpoint = "https://www.google-analytics.com/mp/collect"

// DefaultQueueSize bounds the number of undelivered events.
const DefaultQueueSize = 64

// Options configures a Reporter.
type Options struct {
	// MeasurementID is the site identifier (G-XXXX). Empty disables reporting.
	MeasurementID string
	APISecret     string
	// ClientID identifies this installation. A random one is generated when empty.
	ClientID string

	// BaseURL prefixes reported paths to form page_location.
	BaseURL string

	Endpoint   string
	QueueSize  int
	HTTPClient *http.Client
}

// PageView is a single page_view event.
type PageView struct {
	Path  string
	Query string
}

// Location returns path plus query string.
func (p PageView) Location() string {
	if p.Query == "" {
		return p.Path
	}
	return p.Path + "?" + p.Query
}

type event struct {
	Name   string         `json:"name"`
	Params map[string]any `json:"params"`
}

type payload struct {
	ClientID string  `json:"client_id"`
	Events   []event `json:"events"`
}

// Reporter sends page views in the background.
type Reporter struct {
	opts    Options
	enabled bool
	queue   chan PageView
	done    chan struct{}

	mu        sync.Mutex
	closed    bool
	sent      int
	dropped   int
	closeOnce sync.Once
}

// New creates a reporter and starts its sender. With an empty measurement
// id the reporter accepts and discards everything.
func New(opts Options) *Reporter {
	if opts.Endpoint == "" {
		opts.Endpoint = DefaultEndpoint
	}
	if opts.QueueSize <= 0 {
		opts.QueueSize = DefaultQueueSize
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{Timeout: 10 * time.Second}
	}
	if opts.ClientID == "" {
		opts.ClientID = uuid.New().String()
	}

	r := &Reporter{
		opts:    opts,
		enabled: opts.MeasurementID != "",
		done:    make(chan struct{}),
	}
	if !r.enabled {
		logger.WithComponent("analytics").Debug("analytics disabled, no measurement id")
		close(r.done)
		return r
	}
	r.queue = make(chan PageView, opts.QueueSize)
	go r.run()
	return r
}

// ClientID returns the installation id sent with every event.
func (r *Reporter) ClientID() string {
	return r.opts.ClientID
}

// Enabled reports whether events are delivered anywhere.
func (r *Reporter) Enabled() bool {
	return r.enabled
}

// PageView queues a page view. It never blocks.
func (r *Reporter) PageView(path, query string) {
	if !r.enabled {
		return
	}
	pv := PageView{Path: path, Query: query}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return
	}
	select {
	case r.queue <- pv:
	default:
		r.dropped++
		logger.WithComponent("analytics").Warn("analytics queue full, dropping page view", "location", pv.Location())
	}
}

// Stats returns the number of delivered and dropped events.
func (r *Reporter) Stats() (sent, dropped int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.sent, r.dropped
}

// Close stops accepting events and waits for queued ones to be sent, or for
// ctx to end.
func (r *Reporter) Close(ctx context.Context) error {
	r.closeOnce.Do(func() {
		if !r.enabled {
			return
		}
		r.mu.Lock()
		r.closed = true
		close(r.queue)
		r.mu.Unlock()
	})

	select {
	case <-r.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (r *Reporter) run() {
	defer close(r.done)
	log := logger.WithComponent("analytics")
	for pv := range r.queue {
		if err := r.send(pv); err != nil {
			log.Warn("failed to send page view", "location", pv.Location(), "error", err)
			continue
		}
		r.mu.Lock()
		r.sent++
		r.mu.Unlock()
	}
}

func (r *Reporter) send(pv PageView) error {
	location := r.opts.BaseURL + pv.Location()
	body, err := json.Marshal(payload{
		ClientID: r.opts.ClientID,
		Events: []event{{
			Name: "page_view",
			Params: map[string]any{
				"page_location": location,
				"page_title":    pv.Path,
			},
		}},
	})
	if err != nil {
		return err
	}

	q := url.Values{}
	q.Set("measurement_id", r.opts.MeasurementID)
	if r.opts.APISecret != "" {
		q.Set("api_secret", r.opts.APISecret)
	}
	req, err := http.NewRequest(http.MethodPost, r.opts.Endpoint+"?"+q.Encode(), bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.opts.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode >= 300 {
		return fmt.Errorf("collect returned status %d", resp.StatusCode)
	}
	return nil
}

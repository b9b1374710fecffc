package client

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"sync"
	"sync/atomic"
	"time"

	"github.com/zenstudio/backend/internal/model"
)

// DefaultRefreshInterval is how often Watch reloads the dashboard.
const DefaultRefreshInterval = 5 * time.Minute

// ErrLoadInFlight is returned by Refresh when another load is still running.
var ErrLoadInFlight = errors.New("load already in progress")

// NoticeLevel classifies a Notice.
type NoticeLevel int

const (
	NoticeSuccess NoticeLevel = iota
	NoticeError
)

// Notice is the transient banner shown above the tables.
type Notice struct {
	Level NoticeLevel
	Text  string
}

// View is everything a Renderer draws.
type View struct {
	Snapshot
	Stats     model.Stats
	Notice    *Notice
	Offline   bool
	UpdatedAt time.Time
}

// Renderer draws a View.
type Renderer interface {
	Render(v View)
}

// Dashboard mirrors server state. Every mutation is followed by a full
// reload; the local view is never patched.
type Dashboard struct {
	client   *Client
	renderer Renderer
	now      func() time.Time

	loading atomic.Bool
	// fetchMu orders snapshot fetches so a later fetch always lands last.
	fetchMu sync.Mutex

	mu      sync.Mutex
	current Snapshot
	offline bool
}

// NewDashboard creates a Dashboard that renders through r.
func NewDashboard(c *Client, r Renderer) *Dashboard {
	return &Dashboard{
		client:   c,
		renderer: r,
		now:      time.Now,
		current:  EmptySnapshot(),
	}
}

// Snapshot returns the data currently shown.
func (d *Dashboard) Snapshot() Snapshot {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.current
}

// Init pings the API and loads everything. On failure the dashboard goes
// offline: empty collections plus an error notice.
func (d *Dashboard) Init(ctx context.Context) error {
	err := d.init(ctx)
	if err != nil {
		slog.Error("dashboard init failed", "error", err)
		d.mu.Lock()
		d.current = EmptySnapshot()
		d.offline = true
		d.mu.Unlock()
		d.render(&Notice{Level: NoticeError, Text: "Erro ao carregar dados do sistema: " + err.Error()})
		return err
	}
	d.render(nil)
	return nil
}

func (d *Dashboard) init(ctx context.Context) error {
	ack, err := d.client.Ping(ctx)
	if err != nil {
		return fmt.Errorf("servidor não está respondendo: %w", err)
	}
	slog.Info("api connected", "message", ack.Message, "database", ack.Database)
	return d.fetch(ctx)
}

// Refresh reloads every collection. On failure the previous data stays on
// screen with an error notice.
func (d *Dashboard) Refresh(ctx context.Context) error {
	if err := d.load(ctx); err != nil {
		d.render(&Notice{Level: NoticeError, Text: "Erro ao atualizar dados: " + err.Error()})
		return err
	}
	d.render(&Notice{Level: NoticeSuccess, Text: "Dados atualizados com sucesso!"})
	return nil
}

// ToggleStatus PUTs the opposite of current and reloads.
func (d *Dashboard) ToggleStatus(ctx context.Context, c model.Collection, id string, current model.Status) error {
	next := model.ToggleStatus(c, current)
	err := d.client.Put(ctx, recordPath(c, id), map[string]string{"status": string(next)}, nil)
	return d.afterMutation(ctx, err, "Status atualizado com sucesso!", "Erro ao atualizar status: ")
}

// Remove deletes a record and reloads.
func (d *Dashboard) Remove(ctx context.Context, c model.Collection, id string) error {
	_, err := d.client.Delete(ctx, recordPath(c, id))
	return d.afterMutation(ctx, err, "Item removido com sucesso!", "Erro ao remover item: ")
}

// Watch refreshes every interval until ctx is done. Ticks that arrive
// while a load is running are skipped.
func (d *Dashboard) Watch(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = DefaultRefreshInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if d.loading.Load() {
				slog.Debug("refresh skipped, load in flight")
				continue
			}
			if err := d.Refresh(ctx); err != nil && !errors.Is(err, ErrLoadInFlight) {
				slog.Warn("auto refresh failed", "error", err)
			}
		}
	}
}

// afterMutation always reloads after a successful mutation. A load already
// running may have read the pre-mutation state, so the reload waits for it
// and then fetches again.
func (d *Dashboard) afterMutation(ctx context.Context, err error, success, failurePrefix string) error {
	if err == nil {
		err = d.fetch(ctx)
	}
	if err != nil {
		slog.Error("dashboard mutation failed", "error", err)
		d.render(&Notice{Level: NoticeError, Text: failurePrefix + err.Error()})
		return err
	}
	d.render(&Notice{Level: NoticeSuccess, Text: success})
	return nil
}

// load is the refresh path: it gives up when another refresh is running.
func (d *Dashboard) load(ctx context.Context) error {
	if !d.loading.CompareAndSwap(false, true) {
		return ErrLoadInFlight
	}
	defer d.loading.Store(false)
	return d.fetch(ctx)
}

// fetch runs LoadAll and installs the result. Fetches are serialized.
func (d *Dashboard) fetch(ctx context.Context) error {
	d.fetchMu.Lock()
	defer d.fetchMu.Unlock()

	snap, err := d.client.LoadAll(ctx)
	if err != nil {
		return err
	}
	d.mu.Lock()
	d.current = snap
	d.offline = false
	d.mu.Unlock()
	return nil
}

func (d *Dashboard) render(n *Notice) {
	d.mu.Lock()
	v := View{
		Snapshot:  d.current,
		Stats:     d.current.Stats(),
		Notice:    n,
		Offline:   d.offline,
		UpdatedAt: d.now(),
	}
	d.mu.Unlock()
	d.renderer.Render(v)
}

func recordPath(c model.Collection, id string) string {
	return "/api/" + string(c) + "/" + url.PathEscape(id)
}

package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"

	"github.com/samirrijal/unirenta/internal/core/domain"
	"github.com/samirrijal/unirenta/internal/core/usecases"
	"github.com/samirrijal/unirenta/internal/pkg/metrics"
)

const (
	wsPingInterval = 30 * time.Second
	wsLoadTimeout  = 15 * time.Second
)

// wsMessage is sent by the browser.
//
//	{"action":"viewport","bounds":{...},"zoom":14.2}
//	{"action":"zoom","zoom":12}
//	{"action":"click","marker":"properties-3-0","zoom":13}
//	{"action":"select","kind":"property","id":"42"}
//	{"action":"reload","filters":{"precioMax":4000}}
type wsMessage struct {
	Action  string                  `json:"action"`
	Bounds  *domain.Bounds          `json:"bounds,omitempty"`
	Zoom    *float64                `json:"zoom,omitempty"`
	Marker  string                  `json:"marker,omitempty"`
	Kind    domain.PoIKind          `json:"kind,omitempty"`
	ID      string                  `json:"id,omitempty"`
	Filters *domain.PropertyFilters `json:"filters,omitempty"`
}

// wsCommand is sent to the browser. Type selects which fields are set.
type wsCommand struct {
	Type       string                  `json:"type"`
	Session    string                  `json:"session,omitempty"`
	Marker     *domain.Marker          `json:"marker,omitempty"`
	ID         string                  `json:"id,omitempty"`
	Bounds     *domain.Bounds          `json:"bounds,omitempty"`
	Fit        *domain.FitOptions      `json:"fit,omitempty"`
	Center     *domain.GeoPoint        `json:"center,omitempty"`
	Zoom       *float64                `json:"zoom,omitempty"`
	Notice     *domain.Notice          `json:"notice,omitempty"`
	Navigation *domain.NavigationEvent `json:"navigation,omitempty"`
	Error      string                  `json:"error,omitempty"`
}

// wsView implements ports.MapView by forwarding every call as a JSON
// command. Writes are serialised because the session, the broadcast relay
// and the keep-alive all share the connection.
type wsView struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

func (v *wsView) send(cmd wsCommand) error {
	data, err := json.Marshal(cmd)
	if err != nil {
		return err
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.conn.WriteMessage(websocket.TextMessage, data)
}

func (v *wsView) ping() error {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.conn.WriteMessage(websocket.PingMessage, nil)
}

func (v *wsView) AddMarker(m domain.Marker) error {
	metrics.MarkersRendered.WithLabelValues(string(m.Layer)).Inc()
	return v.send(wsCommand{Type: "add_marker", Marker: &m})
}

func (v *wsView) RemoveMarker(id string) error {
	return v.send(wsCommand{Type: "remove_marker", ID: id})
}

func (v *wsView) FitBounds(b domain.Bounds, opts domain.FitOptions) error {
	return v.send(wsCommand{Type: "fit_bounds", Bounds: &b, Fit: &opts})
}

func (v *wsView) EaseTo(center domain.GeoPoint, zoom float64) error {
	return v.send(wsCommand{Type: "ease_to", Center: &center, Zoom: &zoom})
}

func (v *wsView) TogglePopup(id string) error {
	return v.send(wsCommand{Type: "toggle_popup", ID: id})
}

func (v *wsView) ShowNotice(n domain.Notice) error {
	metrics.NoticesClassified.WithLabelValues(n.Category, string(n.Severity)).Inc()
	return v.send(wsCommand{Type: "notice", Notice: &n})
}

func (v *wsView) Navigate(ev domain.NavigationEvent) error {
	return v.send(wsCommand{Type: "navigate", Navigation: &ev})
}

// MapSessionHandler returns a handler that runs one map session per
// WebSocket connection. The property layer is loaded on connect; the
// university layer follows the viewports the client reports.
func MapSessionHandler(deps *Dependencies) func(*websocket.Conn) {
	return func(c *websocket.Conn) {
		defer c.Close()

		id := uuid.NewString()
		log := slog.Default().With("session_id", id, "remote_addr", c.RemoteAddr().String())
		ctx, cancel := context.WithCancel(WithLogger(context.Background(), log))
		defer cancel()

		metrics.ActiveSessions.Inc()
		defer metrics.ActiveSessions.Dec()
		log.Info("map session opened")

		view := &wsView{conn: c}
		opts := append([]usecases.SessionOption{
			usecases.WithRenderObserver(observeRender),
		}, deps.SessionOptions...)

		session := usecases.NewMapSession(ctx, id, view, deps.Properties, deps.Universities, deps.Notices, deps.Publisher, opts...)
		defer session.Close()

		_ = view.send(wsCommand{Type: "session", Session: id})

		if deps.Broadcasts != nil {
			stop, err := deps.Broadcasts.SubscribeBroadcasts(func(n domain.Notice) {
				_ = view.ShowNotice(n)
			})
			if err != nil {
				log.Warn("broadcast relay unavailable", "error", err)
			} else {
				defer stop()
			}
		}

		done := make(chan struct{})
		defer close(done)
		go func() {
			ticker := time.NewTicker(wsPingInterval)
			defer ticker.Stop()
			for {
				select {
				case <-ticker.C:
					if err := view.ping(); err != nil {
						return
					}
				case <-done:
					return
				}
			}
		}()

		loadCtx, loadCancel := context.WithTimeout(ctx, wsLoadTimeout)
		if err := session.Load(loadCtx, nil); err != nil {
			log.Warn("initial load failed", "error", err)
		}
		loadCancel()

		for {
			_, raw, err := c.ReadMessage()
			if err != nil {
				break
			}

			var m wsMessage
			if err := json.Unmarshal(raw, &m); err != nil {
				_ = view.send(wsCommand{Type: "error", Error: "invalid JSON"})
				continue
			}
			if err := handleSessionMessage(ctx, session, m); err != nil {
				if errors.Is(err, usecases.ErrSessionClosed) {
					break
				}
				_ = view.send(wsCommand{Type: "error", Error: err.Error()})
			}
		}

		log.Info("map session closed")
	}
}

func handleSessionMessage(ctx context.Context, s *usecases.MapSession, m wsMessage) error {
	switch m.Action {
	case "viewport":
		if m.Bounds == nil || m.Zoom == nil {
			return errors.New("viewport needs bounds and zoom")
		}
		if !m.Bounds.SouthWest.Valid() || !m.Bounds.NorthEast.Valid() {
			return errors.New("viewport corners must be valid WGS 84 coordinates")
		}
		metrics.ViewportTriggers.Inc()
		return s.SettleViewport(domain.Viewport{Bounds: *m.Bounds, Zoom: *m.Zoom})

	case "zoom":
		if m.Zoom == nil {
			return errors.New("zoom is required")
		}
		s.TrackZoom(*m.Zoom)
		return nil

	case "click":
		if m.Marker == "" {
			return errors.New("marker is required")
		}
		if m.Zoom != nil {
			s.TrackZoom(*m.Zoom)
		}
		return s.Click(m.Marker)

	case "select":
		return s.Select(ctx, m.Kind, m.ID)

	case "reload":
		loadCtx, cancel := context.WithTimeout(ctx, wsLoadTimeout)
		defer cancel()
		var err error
		if m.Filters != nil {
			err = s.Load(loadCtx, m.Filters)
		} else {
			err = s.Reload(loadCtx)
		}
		if err != nil && !errors.Is(err, usecases.ErrSessionClosed) {
			// The session already pushed a notice.
			LoggerFromCtx(ctx).Warn("reload failed", "error", err)
			return nil
		}
		return err

	default:
		return errors.New("unknown action: " + m.Action)
	}
}

func observeRender(layer domain.LayerName, err error) {
	if layer != domain.LayerUniversities {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	metrics.Recomputations.WithLabelValues(outcome).Inc()
}

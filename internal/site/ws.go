package site

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/Faultbox/valvesite/internal/viewer"
)

const (
	writeWait  = 5 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = pongWait * 9 / 10
)

// clientEvent is one input message from the browser. T is the client clock
// in milliseconds; zero means "now".
type clientEvent struct {
	Type     string  `json:"type"`
	X        float32 `json:"x"`
	Y        float32 `json:"y"`
	Button   int     `json:"button"`
	T        int64   `json:"t"`
	Delta    float32 `json:"delta"`
	Width    float32 `json:"width"`
	Height   float32 `json:"height"`
	Category string  `json:"category"`
	Product  string  `json:"product"`
}

func (e clientEvent) pointer() viewer.PointerEvent {
	at := time.Now()
	if e.T > 0 {
		at = time.UnixMilli(e.T)
	}
	return viewer.PointerEvent{X: e.X, Y: e.Y, Button: viewer.Button(e.Button), At: at}
}

// frame is one server message.
type frame struct {
	Type    string `json:"type"`
	Session string `json:"session"`
	Seq     uint64 `json:"seq"`
	viewer.Snapshot
}

type errorMessage struct {
	Type    string `json:"type"`
	Session string `json:"session"`
	Error   string `json:"error"`
}

// handleViewerSocket drives one viewer session over a websocket: the client
// streams pointer input, the server streams state frames at the tick rate.
func (s *Server) handleViewerSocket(w http.ResponseWriter, r *http.Request) {
	c := s.current()
	slug := chi.URLParam(r, "category")
	p, ok := c.ProductByID(slug, chi.URLParam(r, "productID"))
	if !ok {
		writeError(w, http.StatusNotFound, "product not found")
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already replied.
		s.log.Debug("websocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	id := uuid.NewString()
	log := s.log.With(zap.String("session", id), zap.String("product", slug+"/"+p.ID))

	sess := viewer.NewSession(viewer.ConfigFrom(s.cfg.Viewer), s.models, s.images)
	defer sess.Close()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	if err := sess.Load(ctx, p.Model3D, p.ImageURL); err != nil {
		log.Error("starting viewer load", zap.Error(err))
		return
	}
	log.Info("viewer session opened")

	outbox := make(chan errorMessage, 8)
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		defer cancel()
		return s.readEvents(gctx, conn, sess, id, outbox)
	})
	g.Go(func() error {
		return s.writeFrames(gctx, conn, sess, id, outbox)
	})
	g.Go(func() error {
		<-gctx.Done()
		// Unblocks the reader.
		return conn.Close()
	})

	if err := g.Wait(); err != nil && !isClosedErr(err) {
		log.Warn("viewer session ended", zap.Error(err))
		return
	}
	log.Info("viewer session closed")
}

func (s *Server) readEvents(ctx context.Context, conn *websocket.Conn, sess *viewer.Session, id string, outbox chan<- errorMessage) error {
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			var closeErr *websocket.CloseError
			if errors.As(err, &closeErr) || ctx.Err() != nil {
				return nil
			}
			return err
		}
		_ = conn.SetReadDeadline(time.Now().Add(pongWait))

		var ev clientEvent
		msg := "malformed event"
		if json.Unmarshal(data, &ev) == nil {
			msg = s.apply(ctx, sess, ev)
		}
		if msg != "" {
			select {
			case outbox <- errorMessage{Type: "error", Session: id, Error: msg}:
			default:
			}
		}
	}
}

// apply feeds one client event to the session. It returns a message for the
// client when the event could not be used.
func (s *Server) apply(ctx context.Context, sess *viewer.Session, ev clientEvent) string {
	switch ev.Type {
	case "pointerdown":
		sess.Do(func(v *viewer.Viewer) { v.PointerDown(ev.pointer()) })
	case "pointermove":
		sess.Do(func(v *viewer.Viewer) { v.PointerMove(ev.pointer()) })
	case "pointerup":
		sess.Do(func(v *viewer.Viewer) { v.PointerUp(ev.pointer()) })
	case "wheel":
		sess.Do(func(v *viewer.Viewer) { v.Wheel(ev.Delta) })
	case "resize":
		if ev.Width <= 0 || ev.Height <= 0 {
			return "resize needs a positive width and height"
		}
		sess.Do(func(v *viewer.Viewer) { v.Resize(ev.Width, ev.Height) })
	case "load":
		p, ok := s.current().ProductByID(ev.Category, ev.Product)
		if !ok {
			return "product not found"
		}
		if err := sess.Load(ctx, p.Model3D, p.ImageURL); err != nil {
			return err.Error()
		}
	default:
		return "unknown event type " + ev.Type
	}
	return ""
}

func (s *Server) writeFrames(ctx context.Context, conn *websocket.Conn, sess *viewer.Session, id string, outbox <-chan errorMessage) error {
	rate := s.cfg.Viewer.TickRate
	if rate <= 0 {
		rate = 30
	}
	ticker := time.NewTicker(time.Second / time.Duration(rate))
	defer ticker.Stop()
	ping := time.NewTicker(pingPeriod)
	defer ping.Stop()

	var seq uint64
	last := time.Now()
	for {
		select {
		case <-ctx.Done():
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				time.Now().Add(writeWait))
			return nil
		case now := <-ticker.C:
			snap := sess.Update(now.Sub(last))
			last = now
			seq++
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(frame{Type: "frame", Session: id, Seq: seq, Snapshot: snap}); err != nil {
				return writeErr(ctx, err)
			}
		case msg := <-outbox:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(msg); err != nil {
				return writeErr(ctx, err)
			}
		case <-ping.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return writeErr(ctx, err)
			}
		}
	}
}

// writeErr drops errors caused by the session already shutting down.
func writeErr(ctx context.Context, err error) error {
	if ctx.Err() != nil {
		return nil
	}
	return err
}

func isClosedErr(err error) bool {
	return errors.Is(err, context.Canceled) ||
		errors.Is(err, websocket.ErrCloseSent) ||
		websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway)
}

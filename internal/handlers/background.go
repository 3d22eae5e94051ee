package handlers

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/websocket"
	"golang.org/x/sync/errgroup"

	"shrikavin.dev/internal/background"
	"shrikavin.dev/internal/services"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 1024

	defaultSnapshotSteps = 60
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 16 * 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// clientMessage is a pointer or resize event from the page
type clientMessage struct {
	Type   string  `json:"type"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// BackgroundHandler serves the particle field
type BackgroundHandler struct {
	backgroundService *services.BackgroundService
	logger            *log.Logger
}

// NewBackgroundHandler creates a new BackgroundHandler
func NewBackgroundHandler(bs *services.BackgroundService, logger *log.Logger) *BackgroundHandler {
	if logger == nil {
		logger = log.Default()
	}
	return &BackgroundHandler{backgroundService: bs, logger: logger}
}

// Snapshot handles GET /api/background?width=&height=&steps=&seed=
func (h *BackgroundHandler) Snapshot(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	width, errW := floatParam(q.Get("width"), 1280)
	height, errH := floatParam(q.Get("height"), 720)
	steps, errS := intParam(q.Get("steps"), defaultSnapshotSteps)
	seed, errSeed := strconv.ParseUint(defaultString(q.Get("seed"), "1"), 10, 64)
	if err := errors.Join(errW, errH, errS, errSeed); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid query parameters")
		return
	}

	snap, err := h.backgroundService.Snapshot(width, height, steps, seed)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, snap)
}

// Stream handles GET /ws/background. Each connection owns one field that
// is stepped at the service frame rate until the peer goes away.
func (h *BackgroundHandler) Stream(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	width, errW := floatParam(q.Get("width"), 1280)
	height, errH := floatParam(q.Get("height"), 720)
	if errW != nil || errH != nil {
		respondError(w, http.StatusBadRequest, "Invalid viewport")
		return
	}
	field, err := h.backgroundService.NewField(width, height)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Printf("WS upgrade error | error=%v", err)
		return
	}
	defer conn.Close()

	frames := make(chan background.Snapshot, 1)
	g, ctx := errgroup.WithContext(r.Context())
	g.Go(func() error { return h.backgroundService.Stream(ctx, field, frames) })
	g.Go(func() error { return writePump(ctx, conn, frames) })
	g.Go(func() error { return readPump(conn, field) })
	g.Go(func() error {
		// unblocks readPump once any other goroutine has stopped
		<-ctx.Done()
		_ = conn.SetReadDeadline(time.Now())
		return nil
	})

	if err := g.Wait(); err != nil && !expectedClose(err) {
		h.logger.Printf("WS background stream closed | error=%v", err)
	}
}

func writePump(ctx context.Context, conn *websocket.Conn, frames <-chan background.Snapshot) error {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return ctx.Err()
		case snap := <-frames:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(snap); err != nil {
				return err
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return err
			}
		}
	}
}

func readPump(conn *websocket.Conn, field *background.Field) error {
	conn.SetReadLimit(maxMessageSize)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		var msg clientMessage
		if err := conn.ReadJSON(&msg); err != nil {
			return err
		}
		switch msg.Type {
		case "pointer":
			field.SetPointer(msg.X, msg.Y)
		case "resize":
			if services.CheckViewport(msg.Width, msg.Height) == nil {
				field.Resize(msg.Width, msg.Height)
			}
		}
	}
}

func expectedClose(err error) bool {
	if errors.Is(err, context.Canceled) {
		return true
	}
	return websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway, websocket.CloseNoStatusReceived)
}

func floatParam(raw string, def float64) (float64, error) {
	if raw == "" {
		return def, nil
	}
	return strconv.ParseFloat(raw, 64)
}

func intParam(raw string, def int) (int, error) {
	if raw == "" {
		return def, nil
	}
	return strconv.Atoi(raw)
}

func defaultString(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

package main

import (
	"context"
	"encoding/binary"
	"errors"
	"log/slog"
	"net/http"
	"os"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"github.com/gogpu/mandel"
	"github.com/gogpu/mandel/palette"
)

// request is one client message. Op is "view", "undo", "resize", "save",
// or "load"; the remaining fields apply to the op that names them.
type request struct {
	Op         string  `json:"op"`
	CenterX    float64 `json:"center_x"`
	CenterY    float64 `json:"center_y"`
	Zoom       float64 `json:"zoom"`
	Iterations int32   `json:"iterations"`
	Palette    string  `json:"palette"`
	Phase      float64 `json:"phase"`
	// Record marks a discrete zoom action (wheel step, rectangle select)
	// that should land in the undo history. Smooth-zoom ticks leave it
	// unset so undo jumps gestures, not animation frames.
	Record bool `json:"record"`
	Width  int  `json:"width"`
	Height int  `json:"height"`
}

// viewReply resynchronizes the client after an undo, load, or save.
type viewReply struct {
	Type       string  `json:"type"`
	CenterX    float64 `json:"center_x"`
	CenterY    float64 `json:"center_y"`
	Zoom       float64 `json:"zoom"`
	Iterations int32   `json:"iterations"`
}

// errorReply reports a rejected request; the previous frame stays valid.
type errorReply struct {
	Type  string `json:"type"`
	Error string `json:"error"`
}

// session owns one connection's viewer, current view, and zoom history.
type session struct {
	conn      *websocket.Conn
	viewer    *mandel.Viewer
	view      mandel.ViewParameters
	history   mandel.History
	stateFile string
	logger    *slog.Logger
}

func sessionHandler(opts *serveOptions, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
			OriginPatterns: []string{"*"}, // TODO: tighten in prod
		})
		if err != nil {
			logger.Warn("websocket accept failed", "err", err)
			return
		}

		var viewerOpts []mandel.Option
		if opts.cpu {
			viewerOpts = append(viewerOpts, mandel.WithCPUOnly())
		}
		viewer, err := mandel.New(opts.width, opts.height, viewerOpts...)
		if err != nil {
			logger.Error("viewer creation failed", "err", err)
			conn.Close(websocket.StatusInternalError, "viewer creation failed")
			return
		}
		defer viewer.Close()

		s := &session{
			conn:      conn,
			viewer:    viewer,
			view:      mandel.DefaultViewParameters(),
			stateFile: opts.stateFile,
			logger:    logger.With("remote", r.RemoteAddr),
		}
		s.recordView()
		s.serve(r.Context())
	}
}

func (s *session) serve(ctx context.Context) {
	s.logger.Info("session started", "backend", s.viewer.BackendName())
	defer s.logger.Info("session ended")

	// First frame: the default whole-set view.
	if err := s.renderAndSend(ctx); err != nil {
		s.fail(err)
		return
	}

	for {
		var req request
		if err := wsjson.Read(ctx, s.conn, &req); err != nil {
			if websocket.CloseStatus(err) == -1 && !errors.Is(err, context.Canceled) {
				s.logger.Debug("read failed", "err", err)
			}
			return
		}

		var err error
		switch req.Op {
		case "view":
			err = s.handleView(ctx, req)
		case "undo":
			err = s.handleUndo(ctx)
		case "resize":
			err = s.handleResize(ctx, req)
		case "save":
			err = s.handleSave(ctx)
		case "load":
			err = s.handleLoad(ctx)
		default:
			err = s.sendError(ctx, "unknown op: "+req.Op)
		}
		if err != nil {
			s.fail(err)
			return
		}
	}
}

// handleView applies a full view request. Invalid parameters are reported
// to the client and leave the current view and frame untouched.
func (s *session) handleView(ctx context.Context, req request) error {
	pal, err := palette.Parse(req.Palette)
	if err != nil {
		return s.sendError(ctx, err.Error())
	}
	next := mandel.ViewParameters{
		CenterX:        req.CenterX,
		CenterY:        req.CenterY,
		Zoom:           req.Zoom,
		IterationBound: req.Iterations,
		Palette:        pal,
		ColorPhase:     req.Phase,
	}
	if err := next.Validate(); err != nil {
		return s.sendError(ctx, err.Error())
	}

	s.view = next
	if req.Record {
		s.recordView()
	}
	return s.renderAndSend(ctx)
}

// handleUndo restores the previous recorded view. With nothing left to
// undo it resends the current view so the client stays in sync.
func (s *session) handleUndo(ctx context.Context) error {
	entry, ok := s.history.Pop()
	if ok {
		s.view.CenterX = entry.CenterX
		s.view.CenterY = entry.CenterY
		s.view.Zoom = entry.Zoom
		s.view.IterationBound = entry.IterationBound
	}

	reply := viewReply{
		Type:       "view",
		CenterX:    s.view.CenterX,
		CenterY:    s.view.CenterY,
		Zoom:       s.view.Zoom,
		Iterations: s.view.IterationBound,
	}
	if err := wsjson.Write(ctx, s.conn, reply); err != nil {
		return err
	}
	return s.renderAndSend(ctx)
}

func (s *session) handleResize(ctx context.Context, req request) error {
	if err := s.viewer.Resize(req.Width, req.Height); err != nil {
		return s.sendError(ctx, err.Error())
	}
	return s.renderAndSend(ctx)
}

// handleSave persists the current view to the configured state file.
func (s *session) handleSave(ctx context.Context) error {
	f, err := os.Create(s.stateFile)
	if err != nil {
		return s.sendError(ctx, err.Error())
	}
	snap := mandel.Snapshot{
		CenterX:        s.view.CenterX,
		CenterY:        s.view.CenterY,
		Zoom:           s.view.Zoom,
		IterationBound: s.view.IterationBound,
		Palette:        s.view.Palette,
		ColorPhase:     s.view.ColorPhase,
	}
	if err := mandel.EncodeSnapshot(f, snap); err != nil {
		f.Close()
		return s.sendError(ctx, err.Error())
	}
	if err := f.Close(); err != nil {
		return s.sendError(ctx, err.Error())
	}
	s.logger.Info("view saved", "path", s.stateFile, "zoom", s.view.Zoom)
	return wsjson.Write(ctx, s.conn, viewReply{
		Type:       "saved",
		CenterX:    s.view.CenterX,
		CenterY:    s.view.CenterY,
		Zoom:       s.view.Zoom,
		Iterations: s.view.IterationBound,
	})
}

// handleLoad restores the view from the state file, records the jump in
// the history, and resynchronizes the client.
func (s *session) handleLoad(ctx context.Context) error {
	f, err := os.Open(s.stateFile)
	if err != nil {
		return s.sendError(ctx, err.Error())
	}
	snap, err := mandel.DecodeSnapshot(f)
	f.Close()
	if err != nil {
		return s.sendError(ctx, err.Error())
	}

	s.view = snap.ViewParameters()
	s.recordView()
	reply := viewReply{
		Type:       "view",
		CenterX:    s.view.CenterX,
		CenterY:    s.view.CenterY,
		Zoom:       s.view.Zoom,
		Iterations: s.view.IterationBound,
	}
	if err := wsjson.Write(ctx, s.conn, reply); err != nil {
		return err
	}
	return s.renderAndSend(ctx)
}

// renderAndSend computes the current view and ships the frame as one
// binary message: width and height as uint32 little-endian, then packed
// 8-bit RGB rows.
func (s *session) renderAndSend(ctx context.Context) error {
	if err := s.viewer.ComputeView(s.view); err != nil {
		return s.sendError(ctx, err.Error())
	}

	frame := s.viewer.FrameBuffer()
	msg := make([]byte, 8+len(frame))
	binary.LittleEndian.PutUint32(msg[0:4], uint32(s.viewer.Width()))
	binary.LittleEndian.PutUint32(msg[4:8], uint32(s.viewer.Height()))
	copy(msg[8:], frame)
	return s.conn.Write(ctx, websocket.MessageBinary, msg)
}

func (s *session) sendError(ctx context.Context, msg string) error {
	return wsjson.Write(ctx, s.conn, errorReply{Type: "error", Error: msg})
}

func (s *session) recordView() {
	s.history.Push(mandel.HistoryEntry{
		CenterX:        s.view.CenterX,
		CenterY:        s.view.CenterY,
		Zoom:           s.view.Zoom,
		IterationBound: s.view.IterationBound,
	})
}

func (s *session) fail(err error) {
	s.logger.Debug("session error", "err", err)
	s.conn.Close(websocket.StatusInternalError, "internal error")
}

// Package control implements the Unix-socket JSON request/response
// protocol spec §4.I describes, grounded on
// original_source/HoopiPi/IPCServer.{h,cpp}'s action catalogue and
// other_examples/olegsson-spectrumd__spectrumd.go's
// net.Listen("unix", ...)/Accept/go-handler idiom.
package control

import (
	"encoding/json"
	"fmt"
	"net"
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/hoopipi/hoopipi/internal/backing"
	"github.com/hoopipi/hoopipi/internal/engine"
	"github.com/hoopipi/hoopipi/internal/recorder"
)

// maxMessageSize bounds a single request/response, matching spec §6's
// "maximum message size 4096 bytes per direction".
const maxMessageSize = 4096

// ErrUnknownAction is wrapped into a failure response's error field when
// the action field doesn't match any entry in the dispatch table.
var ErrUnknownAction = fmt.Errorf("control: unknown action")

// handlerFunc mutates the engine/backing/recorder and returns the
// action-specific response fields. A nil return is treated as
// map[string]any{}, i.e. success with no extra fields.
type handlerFunc func(s *Server, req Request) (map[string]any, error)

// Server listens on a local AF_UNIX stream socket and dispatches one
// request per connection, per spec §4.I.
type Server struct {
	eng     *engine.Engine
	backing *backing.Track
	rec     *recorder.Recorder
	log     zerolog.Logger

	socketPath string
	listener   net.Listener
	quit       chan struct{}

	// OnStatusChanged fires synchronously after any mutating handler
	// returns successfully (spec §13.3) — never after getStatus, which
	// doesn't mutate.
	OnStatusChanged func(Status)
}

// New constructs a Server bound to eng. backingTrack and rec may be nil if
// those subsystems aren't wired up (e.g. a minimal test harness).
func New(eng *engine.Engine, backingTrack *backing.Track, rec *recorder.Recorder, log zerolog.Logger) *Server {
	return &Server{
		eng:     eng,
		backing: backingTrack,
		rec:     rec,
		log:     log.With().Str("component", "control").Logger(),
	}
}

// Start binds socketPath and begins accepting connections in a background
// goroutine. Any pre-existing file at socketPath is removed first, matching
// IPCServer::start's unlink-then-bind sequence.
func (s *Server) Start(socketPath string) error {
	_ = os.Remove(socketPath)

	l, err := net.Listen("unix", socketPath)
	if err != nil {
		return fmt.Errorf("control: listen on %q: %w", socketPath, err)
	}

	s.socketPath = socketPath
	s.listener = l
	s.quit = make(chan struct{})

	go s.acceptLoop()

	s.log.Info().Str("path", socketPath).Msg("control server started")
	return nil
}

// Stop closes the listener and removes the socket file.
func (s *Server) Stop() {
	if s.listener == nil {
		return
	}
	close(s.quit)
	s.listener.Close()
	_ = os.Remove(s.socketPath)
	s.log.Info().Msg("control server stopped")
}

func (s *Server) acceptLoop() {
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			select {
			case <-s.quit:
				return
			default:
				s.log.Error().Err(err).Msg("accept failed")
				return
			}
		}
		go s.handleConn(conn)
	}
}

func (s *Server) handleConn(conn net.Conn) {
	defer conn.Close()
	conn.SetDeadline(time.Now().Add(5 * time.Second))

	buf := make([]byte, maxMessageSize)
	n, err := conn.Read(buf)
	if err != nil {
		return
	}

	resp := s.dispatch(buf[:n])
	data, err := json.Marshal(resp)
	if err != nil {
		s.log.Error().Err(err).Msg("failed to marshal response")
		return
	}
	conn.Write(data)
}

func (s *Server) dispatch(raw []byte) map[string]any {
	var req Request
	if err := json.Unmarshal(raw, &req); err != nil {
		return map[string]any{"success": false, "error": fmt.Sprintf("parse error: %v", err)}
	}

	handler, ok := actionTable[req.Action]
	if !ok {
		return map[string]any{"success": false, "error": fmt.Sprintf("%v: %q", ErrUnknownAction, req.Action)}
	}

	fields, err := handler(s, req)
	if err != nil {
		return map[string]any{"success": false, "error": err.Error()}
	}

	resp := map[string]any{"success": true}
	for k, v := range fields {
		resp[k] = v
	}

	if req.Action != "getStatus" && req.Action != "getBackingTrackStatus" && req.Action != "getIncludeBackingTrackInRecording" {
		if s.OnStatusChanged != nil {
			s.OnStatusChanged(s.buildStatus())
		}
	}

	return resp
}

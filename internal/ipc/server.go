package ipc

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net"
	"os"
	"sync"
	"time"

	"github.com/1broseidon/screenline/internal/menu"
	"github.com/1broseidon/screenline/internal/runtimepath"
)

// Handler is the daemon side of every command. Methods are invoked through
// the server's Executor, which runs them on the UI loop. Slot and set
// numbers are 1-based on the wire and zero-based here.
type Handler interface {
	Status() (StatusData, error)
	Monitors() ([]MonitorInfo, error)
	Windows() ([]WindowInfo, error)
	Menu() []menu.Item
	InvokeMenu(id string) error
	ShowLine(kind string, slot int) error
	HideLine(kind string, slot int) error
	ToggleLine(kind string, slot int) error
	FlashLine() error
	ShowBox() error
	HideBox() error
	ResetBox() error
	CopyBoxToClipboard() (BoxData, error)
	Box() BoxData
	ShowGuides(set int) error
	HideGuides(set int) error
	SetTopmost(p SetTopmostPayload) error
	AddRival(title string) error
	RemoveRival(title string) error
	SetMenuOpen(open bool)
	Reload() error
}

// Executor runs fn on the goroutine that owns the handler and waits for it.
type Executor func(ctx context.Context, fn func() error) error

// DirectExecutor calls fn on the caller's goroutine.
func DirectExecutor(_ context.Context, fn func() error) error { return fn() }

// Server handles IPC requests from clients
type Server struct {
	socketPath   string
	listener     net.Listener
	handler      Handler
	exec         Executor
	timeout      time.Duration
	startTime    time.Time
	shuttingDown bool
	shutdownMu   sync.Mutex
	wg           sync.WaitGroup
}

// NewServer creates a new IPC server on the default socket path
func NewServer(handler Handler, exec Executor) (*Server, error) {
	socketPath, err := runtimepath.SocketPath()
	if err != nil {
		return nil, fmt.Errorf("failed to resolve IPC socket path: %w", err)
	}
	return NewServerAt(socketPath, handler, exec), nil
}

// NewServerAt creates a server listening on socketPath.
func NewServerAt(socketPath string, handler Handler, exec Executor) *Server {
	if exec == nil {
		exec = DirectExecutor
	}
	return &Server{
		socketPath: socketPath,
		handler:    handler,
		exec:       exec,
		timeout:    5 * time.Second,
		startTime:  time.Now(),
	}
}

// SocketPath returns the path the server listens on.
func (s *Server) SocketPath() string { return s.socketPath }

// Start begins listening for IPC connections
func (s *Server) Start() error {
	// Remove a socket left behind by a crashed daemon. The single-instance
	// lock is already held, so nobody else is listening on it.
	os.Remove(s.socketPath)

	listener, err := net.Listen("unix", s.socketPath)
	if err != nil {
		return fmt.Errorf("failed to create IPC socket: %w", err)
	}
	s.listener = listener

	// Set socket permissions
	if err := os.Chmod(s.socketPath, 0600); err != nil {
		listener.Close()
		return fmt.Errorf("failed to set socket permissions: %w", err)
	}

	log.Printf("IPC server listening on %s", s.socketPath)

	s.wg.Add(1)
	go s.acceptLoop()

	return nil
}

// Serve starts the server and stops it when ctx is done.
func (s *Server) Serve(ctx context.Context) error {
	if err := s.Start(); err != nil {
		return err
	}
	<-ctx.Done()
	s.Stop()
	return nil
}

// acceptLoop accepts incoming connections
func (s *Server) acceptLoop() {
	defer s.wg.Done()
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			s.shutdownMu.Lock()
			down := s.shuttingDown
			s.shutdownMu.Unlock()
			if down || errors.Is(err, net.ErrClosed) {
				return
			}
			log.Printf("IPC accept error: %v", err)
			continue
		}

		go s.handleConnection(conn)
	}
}

// handleConnection handles a single IPC connection
func (s *Server) handleConnection(conn net.Conn) {
	defer conn.Close()
	conn.SetDeadline(time.Now().Add(s.timeout))

	reader := bufio.NewReader(conn)

	// Read the request (expect JSON on a single line)
	data, err := reader.ReadBytes('\n')
	if err != nil && err != io.EOF {
		log.Printf("IPC read error: %v", err)
		return
	}

	req, err := ParseRequest(data)
	if err != nil {
		s.sendError(conn, fmt.Sprintf("Invalid request: %v", err))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()
	resp := s.handleCommand(ctx, req)

	respData, err := resp.Marshal()
	if err != nil {
		log.Printf("Failed to marshal response: %v", err)
		return
	}

	respData = append(respData, '\n')
	if _, err := conn.Write(respData); err != nil {
		log.Printf("Failed to send response: %v", err)
	}
}

// handleCommand decodes the payload, runs the handler through the executor
// and wraps the result.
func (s *Server) handleCommand(ctx context.Context, req *Request) *Response {
	var data any
	run := func(fn func() error) *Response {
		if err := s.exec(ctx, fn); err != nil {
			return NewErrorResponse(err.Error())
		}
		resp, err := NewOKResponse(data)
		if err != nil {
			return NewErrorResponse(err.Error())
		}
		return resp
	}
	h := s.handler

	switch req.Command {
	case CommandReload:
		log.Println("IPC: Received RELOAD command")
		return run(h.Reload)
	case CommandGetStatus:
		return run(func() error {
			st, err := h.Status()
			st.DaemonRunning = true
			st.UptimeSeconds = int64(time.Since(s.startTime).Seconds())
			data = st
			return err
		})
	case CommandGetMonitors:
		return run(func() error {
			mons, err := h.Monitors()
			data = MonitorsData{Monitors: mons}
			return err
		})
	case CommandGetWindows:
		return run(func() error {
			wins, err := h.Windows()
			data = WindowsData{Windows: wins}
			return err
		})
	case CommandGetMenu:
		return run(func() error {
			data = h.Menu()
			return nil
		})
	case CommandInvokeMenu:
		var p MenuPayload
		if err := decodePayload(req, &p); err != nil {
			return NewErrorResponse(err.Error())
		}
		return run(func() error { return h.InvokeMenu(p.ID) })
	case CommandShowLine, CommandHideLine, CommandToggleLine:
		var p LinePayload
		if err := decodePayload(req, &p); err != nil {
			return NewErrorResponse(err.Error())
		}
		fn := h.ShowLine
		switch req.Command {
		case CommandHideLine:
			fn = h.HideLine
		case CommandToggleLine:
			fn = h.ToggleLine
		}
		return run(func() error { return fn(p.Kind, p.Slot-1) })
	case CommandFlashLine:
		return run(h.FlashLine)
	case CommandShowBox:
		return run(h.ShowBox)
	case CommandHideBox:
		return run(h.HideBox)
	case CommandResetBox:
		return run(h.ResetBox)
	case CommandCopyBox:
		return run(func() error {
			box, err := h.CopyBoxToClipboard()
			data = box
			return err
		})
	case CommandGetBox:
		return run(func() error {
			data = h.Box()
			return nil
		})
	case CommandShowGuides, CommandHideGuides:
		var p GuidesPayload
		if err := decodePayload(req, &p); err != nil {
			return NewErrorResponse(err.Error())
		}
		if req.Command == CommandHideGuides {
			return run(func() error { return h.HideGuides(p.Set - 1) })
		}
		return run(func() error { return h.ShowGuides(p.Set - 1) })
	case CommandSetTopmost:
		var p SetTopmostPayload
		if err := decodePayload(req, &p); err != nil {
			return NewErrorResponse(err.Error())
		}
		return run(func() error { return h.SetTopmost(p) })
	case CommandAddRival, CommandRemoveRival:
		var p RivalPayload
		if err := decodePayload(req, &p); err != nil {
			return NewErrorResponse(err.Error())
		}
		if req.Command == CommandRemoveRival {
			return run(func() error { return h.RemoveRival(p.Title) })
		}
		return run(func() error { return h.AddRival(p.Title) })
	case CommandSetMenuOpen:
		var p MenuOpenPayload
		if err := decodePayload(req, &p); err != nil {
			return NewErrorResponse(err.Error())
		}
		return run(func() error {
			h.SetMenuOpen(p.Open)
			return nil
		})
	default:
		return NewErrorResponse(fmt.Sprintf("Unknown command: %s", req.Command))
	}
}

func decodePayload(req *Request, out any) error {
	if len(req.Payload) == 0 {
		return fmt.Errorf("%s: payload is required", req.Command)
	}
	if err := json.Unmarshal(req.Payload, out); err != nil {
		return fmt.Errorf("invalid %s payload: %w", req.Command, err)
	}
	return nil
}

// sendError sends an error response
func (s *Server) sendError(conn net.Conn, errMsg string) {
	resp := NewErrorResponse(errMsg)
	data, _ := resp.Marshal()
	data = append(data, '\n')
	conn.Write(data)
}

// Stop gracefully shuts down the IPC server
func (s *Server) Stop() {
	s.shutdownMu.Lock()
	if s.shuttingDown {
		s.shutdownMu.Unlock()
		return
	}
	s.shuttingDown = true
	s.shutdownMu.Unlock()

	if s.listener != nil {
		s.listener.Close()
		s.wg.Wait()
	}
	os.Remove(s.socketPath)
}

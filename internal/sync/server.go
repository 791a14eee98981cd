package sync

import (
	"bufio"
	"errors"
	"net"
	"sync"

	"go.uber.org/zap"
)

// Server accepts line-oriented TCP subscribers for the hub.
type Server struct {
	Addr string
	Hub  *Hub

	log *zap.Logger
	mu  sync.Mutex
	ln  net.Listener
}

func NewServer(addr string, hub *Hub, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	return &Server{Addr: addr, Hub: hub, log: log}
}

// Listen binds the listener so binding errors surface before Serve.
func (s *Server) Listen() error {
	ln, err := net.Listen("tcp", s.Addr)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.ln = ln
	s.mu.Unlock()
	s.log.Info("tcp sync listening", zap.String("addr", ln.Addr().String()))
	return nil
}

// ListenAddr returns the bound address, or nil before Listen.
func (s *Server) ListenAddr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ln == nil {
		return nil
	}
	return s.ln.Addr()
}

// Run listens (if needed) and serves until Close.
func (s *Server) Run() error {
	if s.ListenAddr() == nil {
		if err := s.Listen(); err != nil {
			return err
		}
	}
	s.mu.Lock()
	ln := s.ln
	s.mu.Unlock()

	for {
		conn, err := ln.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				return nil
			}
			continue
		}

		s.Hub.Add(conn)
		s.Hub.Welcome(conn)
		s.log.Info("tcp subscriber connected", zap.Stringer("addr", conn.RemoteAddr()))

		go func(c net.Conn) {
			defer func() {
				s.Hub.Remove(c)
				s.log.Info("tcp subscriber disconnected", zap.Stringer("addr", c.RemoteAddr()))
			}()

			// subscribers never send anything meaningful; drain until EOF
			sc := bufio.NewScanner(c)
			for sc.Scan() {
			}
		}(conn)
	}
}

func (s *Server) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ln == nil {
		return nil
	}
	return s.ln.Close()
}

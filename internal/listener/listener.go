// Package listener receives decoder JSON feeds over UDP and hands each
// frame to the dispatcher.
package listener

import (
	"fmt"
	"net"
	"strings"
	"sync"
	"time"

	"github.com/sdr-enthusiasts/acarshub/internal/dispatcher"
	"github.com/sdr-enthusiasts/acarshub/internal/logging"
	"github.com/sdr-enthusiasts/acarshub/pkg/core"
)

const maxDatagramSize = 65527

// Feed binds one protocol link to a UDP port.
type Feed struct {
	Link core.LinkType
	Port int
}

// Dependencies holds all dependencies for the listener manager.
type Dependencies struct {
	LogManager *logging.SlogManager
	Dispatcher *dispatcher.Dispatcher
}

// Manager runs one UDP reader goroutine per enabled feed.
type Manager struct {
	deps  Dependencies
	feeds []Feed

	mu        sync.Mutex
	conns     []*net.UDPConn
	wg        sync.WaitGroup
	isRunning bool
}

// NewManager creates a listener manager for the given feeds.
func NewManager(deps Dependencies, feeds []Feed) *Manager {
	return &Manager{
		deps:  deps,
		feeds: feeds,
	}
}

// Start opens every feed's socket and begins reading.
func (m *Manager) Start() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.isRunning {
		return nil
	}

	log := m.deps.LogManager.Logger()

	for _, feed := range m.feeds {
		addr := &net.UDPAddr{IP: net.IPv4zero, Port: feed.Port}
		conn, err := net.ListenUDP("udp", addr)
		if err != nil {
			m.closeLocked()
			return fmt.Errorf("listening for %s on port %d: %w", feed.Link, feed.Port, err)
		}
		m.conns = append(m.conns, conn)

		log.Info("Listening for decoder feed", "link", string(feed.Link), "port", feed.Port)

		m.wg.Add(1)
		go m.readLoop(conn, feed)
	}

	m.isRunning = true
	return nil
}

// Stop closes all sockets and waits for the readers to exit.
func (m *Manager) Stop() {
	m.mu.Lock()
	if !m.isRunning {
		m.mu.Unlock()
		return
	}
	m.closeLocked()
	m.isRunning = false
	m.mu.Unlock()

	m.wg.Wait()
}

func (m *Manager) closeLocked() {
	for _, conn := range m.conns {
		conn.Close()
	}
	m.conns = nil
}

func (m *Manager) readLoop(conn *net.UDPConn, feed Feed) {
	defer m.wg.Done()

	log := m.deps.LogManager.Logger()
	buf := make([]byte, maxDatagramSize)

	for {
		n, _, err := conn.ReadFromUDP(buf)
		if err != nil {
			if strings.Contains(err.Error(), "use of closed network connection") {
				return
			}
			log.Error("Feed read error", "link", string(feed.Link), "error", err)
			continue
		}
		if n == 0 {
			continue
		}

		received := time.Now()
		for _, frame := range SplitFrames(string(buf[:n])) {
			_, err := m.deps.Dispatcher.Dispatch(dispatcher.Event{
				Source:   string(feed.Link),
				Payload:  []byte(frame),
				Received: received,
			})
			if err != nil {
				log.Error("Dispatch failed", "link", string(feed.Link), "error", err)
			}
		}
	}
}

// SplitFrames breaks a datagram into individual JSON objects. Decoders
// differ: acarsdec ends every object with "}\n", dumpvdl2 omits the
// trailing newline and may pack several objects back to back ("}{").
func SplitFrames(data string) []string {
	data = strings.TrimSpace(data)
	if data == "" {
		return nil
	}

	if !strings.Contains(data, "}{") && !strings.Contains(data, "}\n{") {
		return []string{data}
	}

	// normalize the newline-separated form to the packed form
	data = strings.ReplaceAll(data, "}\n{", "}{")

	parts := strings.Split(data, "}{")
	frames := make([]string, 0, len(parts))
	for i, part := range parts {
		if i > 0 {
			part = "{" + part
		}
		if i < len(parts)-1 {
			part = part + "}"
		}
		if len(part) > 1 {
			frames = append(frames, part)
		}
	}
	return frames
}

// Package endpoint provides a non-blocking UDP datagram endpoint: a thin
// wrapper over *net.UDPConn that delivers inbound datagrams over a channel
// from a single background reader goroutine, rather than exposing a
// blocking Read call directly. This is the event-loop realization the
// design notes call for in place of signal-driven (SIGIO/SIGALRM) I/O —
// callers select over Packets() alongside their own timers and control
// channels instead of masking signals around a blocking read.
package endpoint

import (
	"fmt"
	"net"

	"github.com/aetherflow/swp/internal/swp/wire"
)

// recvBufSize is sized to the largest frame the wire package ever produces
// — a too-small buffer would silently truncate datagrams.
const recvBufSize = wire.DataFrameSize

// Packet is one inbound datagram and the address it arrived from.
type Packet struct {
	Data []byte
	Addr *net.UDPAddr
}

// Endpoint is a UDP socket plus its background reader goroutine.
type Endpoint struct {
	conn    *net.UDPConn
	packets chan Packet
	errs    chan error
	done    chan struct{}
}

// Listen opens a UDP socket bound to address and starts reading from it.
func Listen(address string) (*Endpoint, error) {
	addr, err := net.ResolveUDPAddr("udp", address)
	if err != nil {
		return nil, fmt.Errorf("endpoint: resolve %q: %w", address, err)
	}
	conn, err := net.ListenUDP("udp", addr)
	if err != nil {
		return nil, fmt.Errorf("endpoint: listen %q: %w", address, err)
	}
	return newEndpoint(conn), nil
}

// Dial opens a UDP socket connected to address and starts reading from it.
// A connected socket lets Send omit the destination on every call and
// causes the kernel to filter datagrams from other peers.
func Dial(address string) (*Endpoint, error) {
	addr, err := net.ResolveUDPAddr("udp", address)
	if err != nil {
		return nil, fmt.Errorf("endpoint: resolve %q: %w", address, err)
	}
	conn, err := net.DialUDP("udp", nil, addr)
	if err != nil {
		return nil, fmt.Errorf("endpoint: dial %q: %w", address, err)
	}
	return newEndpoint(conn), nil
}

func newEndpoint(conn *net.UDPConn) *Endpoint {
	e := &Endpoint{
		conn:    conn,
		packets: make(chan Packet, 1024),
		errs:    make(chan error, 1),
		done:    make(chan struct{}),
	}
	go e.readLoop()
	return e
}

// readLoop is the endpoint's single reader goroutine: it owns the socket's
// read side exclusively, so callers never need to synchronize reads.
func (e *Endpoint) readLoop() {
	buf := make([]byte, recvBufSize)
	for {
		n, addr, err := e.conn.ReadFromUDP(buf)
		if err != nil {
			select {
			case e.errs <- err:
			default:
			}
			close(e.packets)
			return
		}
		data := make([]byte, n)
		copy(data, buf[:n])
		select {
		case e.packets <- Packet{Data: data, Addr: addr}:
		case <-e.done:
			close(e.packets)
			return
		}
	}
}

// Packets returns the channel of inbound datagrams. It is closed once the
// socket is closed or a read error terminates the reader goroutine.
func (e *Endpoint) Packets() <-chan Packet {
	return e.packets
}

// TryReceive returns the next buffered datagram without blocking. ok is
// false when nothing is currently available; it is not an error — callers
// select over Packets() (or poll TryReceive) alongside their own timers
// instead of blocking a goroutine in a read call.
func (e *Endpoint) TryReceive() (buf []byte, addr *net.UDPAddr, ok bool, err error) {
	select {
	case p, open := <-e.packets:
		if !open {
			select {
			case err = <-e.errs:
			default:
			}
			return nil, nil, false, err
		}
		return p.Data, p.Addr, true, nil
	default:
		return nil, nil, false, nil
	}
}

// Errs returns the channel the reader goroutine reports its terminal error
// on, if any (buffered, at most one value; unlike Packets, it is never
// closed).
func (e *Endpoint) Errs() <-chan error {
	return e.errs
}

// SendTo writes buf to addr.
func (e *Endpoint) SendTo(addr *net.UDPAddr, buf []byte) error {
	_, err := e.conn.WriteToUDP(buf, addr)
	if err != nil {
		return fmt.Errorf("endpoint: write to %s: %w", addr, err)
	}
	return nil
}

// Send writes buf to the peer a Dial-ed socket is connected to.
func (e *Endpoint) Send(buf []byte) error {
	_, err := e.conn.Write(buf)
	if err != nil {
		return fmt.Errorf("endpoint: write: %w", err)
	}
	return nil
}

// LocalAddr returns the endpoint's local address.
func (e *Endpoint) LocalAddr() *net.UDPAddr {
	return e.conn.LocalAddr().(*net.UDPAddr)
}

// RemoteAddr returns the endpoint's connected peer address, or nil if the
// endpoint was opened with Listen rather than Dial.
func (e *Endpoint) RemoteAddr() *net.UDPAddr {
	addr, _ := e.conn.RemoteAddr().(*net.UDPAddr)
	return addr
}

// Close shuts down the socket, which unblocks the reader goroutine's
// pending ReadFromUDP and terminates the read loop.
func (e *Endpoint) Close() error {
	close(e.done)
	return e.conn.Close()
}

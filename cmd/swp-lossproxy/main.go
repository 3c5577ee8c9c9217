// Command swp-lossproxy is a UDP relay that injects configurable loss,
// corruption, reordering delay, and a throughput cap between a sender and
// a receiver. It reconstructs the role the original reference's
// unreliableSend.h collaborator played (referenced by SWP.c's comments,
// but not itself part of the reference sources retrieved alongside this
// spec) — an external fault-injection layer the sender/receiver engines
// are deliberately unaware of (spec.md §1 treats datagram loss as an
// environmental property of the transport beneath the engine).
package main

import (
	"flag"
	"fmt"
	"math/rand"
	"net"
	"os"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/aetherflow/swp/internal/swp/config"
	"github.com/aetherflow/swp/internal/swp/swplog"
)

var (
	configFile = flag.String("f", "configs/lossproxy.yaml", "config file path")
	lossPct    = flag.Float64("loss", 0, "probability (0-100) of silently dropping a datagram")
	corruptPct = flag.Float64("corrupt", 0, "probability (0-100) of flipping a random bit before relaying")
	reorderPct = flag.Float64("reorder", 0, "probability (0-100) of delaying a datagram instead of relaying immediately")
	reorderMax = flag.Duration("reorder-delay", 50*time.Millisecond, "maximum delay applied to a reordered datagram")
	ratePerSec = flag.Float64("rate", 0, "if > 0, cap relayed datagrams per second (token-bucket)")
	burst      = flag.Int("burst", 10, "token-bucket burst size, used only when -rate > 0")
)

func main() {
	flag.Parse()

	cfg, err := config.Load(*configFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "swp-lossproxy: failed to load config: %v\n", err)
		os.Exit(1)
	}

	log, err := newLogger(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "swp-lossproxy: failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	upstreamAddr, err := net.ResolveUDPAddr("udp", cfg.Session.RemoteAddr)
	if err != nil {
		log.Fatal("resolve upstream", zap.Error(err))
	}

	listenUDPAddr, err := net.ResolveUDPAddr("udp", cfg.Session.ListenAddr)
	if err != nil {
		log.Fatal("resolve listen address", zap.Error(err))
	}
	conn, err := net.ListenUDP("udp", listenUDPAddr)
	if err != nil {
		log.Fatal("listen", zap.Error(err))
	}
	defer conn.Close()

	var limiter *rate.Limiter
	if *ratePerSec > 0 {
		limiter = rate.NewLimiter(rate.Limit(*ratePerSec), *burst)
	}

	p := &proxy{
		conn:         conn,
		upstream:     upstreamAddr,
		lossProb:     *lossPct / 100,
		corruptProb:  *corruptPct / 100,
		reorderProb:  *reorderPct / 100,
		reorderDelay: *reorderMax,
		limiter:      limiter,
		log:          log,
		peers:        make(map[string]*net.UDPAddr),
	}

	log.Info("loss proxy listening",
		zap.String("listen", cfg.Session.ListenAddr), zap.String("upstream", cfg.Session.RemoteAddr),
		zap.Float64("loss_pct", *lossPct), zap.Float64("corrupt_pct", *corruptPct),
		zap.Float64("reorder_pct", *reorderPct))

	p.run()
}

func newLogger(cfg *config.Config) (*zap.Logger, error) {
	if cfg.Log.Dev {
		return swplog.NewDevelopment()
	}
	return swplog.New()
}

// proxy relays datagrams between exactly the last sender it saw and a
// fixed upstream address, applying independent fault-injection decisions
// per datagram in each direction.
type proxy struct {
	conn     *net.UDPConn
	upstream *net.UDPAddr

	lossProb     float64
	corruptProb  float64
	reorderProb  float64
	reorderDelay time.Duration
	limiter      *rate.Limiter

	log   *zap.Logger
	peers map[string]*net.UDPAddr // the most recently seen client address, under the key "client"
}

func (p *proxy) run() {
	buf := make([]byte, 65536)
	for {
		n, from, err := p.conn.ReadFromUDP(buf)
		if err != nil {
			p.log.Error("read failed", zap.Error(err))
			return
		}
		data := append([]byte(nil), buf[:n]...)

		dest := p.upstream
		if from.String() == p.upstream.String() {
			// This datagram came back from upstream; relay it to the
			// most recently seen client instead.
			client := p.lastClient()
			if client == nil {
				continue
			}
			dest = client
		} else {
			p.rememberClient(from)
		}

		p.relay(data, dest)
	}
}

func (p *proxy) rememberClient(addr *net.UDPAddr) {
	p.peers["client"] = addr
}

func (p *proxy) lastClient() *net.UDPAddr {
	return p.peers["client"]
}

func (p *proxy) relay(data []byte, dest *net.UDPAddr) {
	if p.limiter != nil && !p.limiter.Allow() {
		p.log.Debug("dropping datagram: rate limit exceeded")
		return
	}
	if rand.Float64() < p.lossProb {
		p.log.Debug("dropping datagram: simulated loss")
		return
	}
	if rand.Float64() < p.corruptProb && len(data) > 0 {
		data[rand.Intn(len(data))] ^= 1 << uint(rand.Intn(8))
	}
	if rand.Float64() < p.reorderProb {
		delay := time.Duration(rand.Int63n(int64(p.reorderDelay) + 1))
		time.AfterFunc(delay, func() { p.send(data, dest) })
		return
	}
	p.send(data, dest)
}

func (p *proxy) send(data []byte, dest *net.UDPAddr) {
	if _, err := p.conn.WriteToUDP(data, dest); err != nil {
		p.log.Debug("relay write failed", zap.Error(err))
	}
}

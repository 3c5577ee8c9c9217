// Command swp-sender reproduces the original reference sender demo: it
// transfers 1 MB as 1024 payloads of 1024 bytes each, filled with the
// 'A'+i%26 pattern, and times the transfer (spec.md §8 scenario S1).
package main

import (
	"flag"
	"fmt"
	"net"
	"net/http"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/aetherflow/swp/internal/swp/config"
	"github.com/aetherflow/swp/internal/swp/metrics"
	"github.com/aetherflow/swp/internal/swp/swplog"
	"github.com/aetherflow/swp/internal/swp/ticker"
	"github.com/aetherflow/swp/pkg/swp"
)

const (
	numPackets = 1024
	bufSize    = 1024
)

var configFile = flag.String("f", "configs/sender.yaml", "config file path")

func main() {
	flag.Parse()

	cfg, err := config.Load(*configFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "swp-sender: failed to load config: %v\n", err)
		os.Exit(1)
	}

	log, err := newLogger(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "swp-sender: failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	var met *metrics.Metrics
	if cfg.Metrics.Enable {
		met = metrics.New("swp", "sender")
		go serveMetrics(log, cfg.Metrics.Addr, cfg.Metrics.Path)
	}

	opts := []swp.Option{swp.WithLogger(log)}
	if met != nil {
		opts = append(opts, swp.WithMetrics(met))
	}
	if cfg.Session.TickInterval > 0 {
		opts = append(opts, swp.WithTicker(ticker.New(cfg.Session.TickInterval)))
	}

	sess, err := swp.NewSender(cfg.Session.RemoteAddr, cfg.Session.SendWindow, opts...)
	if err != nil {
		log.Fatal("failed to create sender session", zap.Error(err))
	}
	defer sess.Close()

	log.Info("sending 1MB transfer",
		zap.String("peer", cfg.Session.RemoteAddr), zap.Int("sws", cfg.Session.SendWindow))

	start := time.Now()
	buf := make([]byte, bufSize)
	for i := 0; i < numPackets; i++ {
		fill := byte('A' + i%26)
		for j := range buf {
			buf[j] = fill
		}
		if err := sess.Submit(buf); err != nil {
			log.Fatal("submit failed", zap.Error(err))
		}
	}

	if err := sess.Flush(); err != nil {
		log.Fatal("flush failed", zap.Error(err))
	}
	elapsed := time.Since(start)

	fmt.Printf("The transfer took %.3f seconds.\n", elapsed.Seconds())
}

func newLogger(cfg *config.Config) (*zap.Logger, error) {
	if cfg.Log.Dev {
		return swplog.NewDevelopment()
	}
	return swplog.New()
}

func serveMetrics(log *zap.Logger, addr, path string) {
	mux := http.NewServeMux()
	mux.Handle(path, metrics.Handler())
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		log.Error("metrics listener failed", zap.Error(err))
		return
	}
	log.Info("serving metrics", zap.String("addr", addr), zap.String("path", path))
	_ = (&http.Server{Handler: mux}).Serve(ln)
}

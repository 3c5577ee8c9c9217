// Command swp-receiver reproduces the original reference receiver demo:
// it reads 1024 payloads of 1024 bytes each and, with -verify, checks each
// against the 'A'+i%26 fill pattern the reference sender/swp-sender uses,
// dumping a mismatch diagnostic on the first failure (spec.md §8 S1).
package main

import (
	"flag"
	"fmt"
	"net"
	"net/http"
	"os"
	"unicode"

	"go.uber.org/zap"

	"github.com/aetherflow/swp/internal/swp/config"
	"github.com/aetherflow/swp/internal/swp/metrics"
	"github.com/aetherflow/swp/internal/swp/swplog"
	"github.com/aetherflow/swp/pkg/swp"
)

const (
	numPackets  = 1024
	wantBufSize = 1024
)

var (
	configFile = flag.String("f", "configs/receiver.yaml", "config file path")
	verify     = flag.Bool("verify", false, "verify each payload against the 'A'+i%26 pattern")
)

func main() {
	flag.Parse()

	cfg, err := config.Load(*configFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "swp-receiver: failed to load config: %v\n", err)
		os.Exit(1)
	}

	log, err := newLogger(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "swp-receiver: failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	var met *metrics.Metrics
	if cfg.Metrics.Enable {
		met = metrics.New("swp", "receiver")
		go serveMetrics(log, cfg.Metrics.Addr, cfg.Metrics.Path)
	}

	opts := []swp.Option{swp.WithLogger(log)}
	if met != nil {
		opts = append(opts, swp.WithMetrics(met))
	}

	sess, err := swp.NewReceiver(cfg.Session.ListenAddr, cfg.Session.RecvWindow, opts...)
	if err != nil {
		log.Fatal("failed to create receiver session", zap.Error(err))
	}
	defer sess.Close()

	log.Info("receiving transfer",
		zap.String("addr", cfg.Session.ListenAddr), zap.Int("rws", cfg.Session.RecvWindow), zap.Bool("verify", *verify))

	for i := 0; i < numPackets; i++ {
		payload, err := sess.Recv()
		if err != nil {
			log.Fatal("recv failed", zap.Error(err))
		}

		if i%100 == 0 {
			fmt.Printf("Received packet %d\n", i)
		}

		if !*verify {
			continue
		}

		if len(payload) != wantBufSize {
			fmt.Printf("length error.  Expected %d, received %d.\n", wantBufSize, len(payload))
			os.Exit(1)
		}

		want := byte('A' + i%26)
		for j, b := range payload {
			if b == want {
				continue
			}
			dumpMismatch(payload, j, want, b)
			os.Exit(1)
		}
	}

	fmt.Println("Transfer verified complete.")
}

func dumpMismatch(payload []byte, pos int, want, got byte) {
	printable := func(b byte) string {
		if unicode.IsPrint(rune(b)) {
			return fmt.Sprintf("'%c'(%02x)", b, b)
		}
		return fmt.Sprintf("' '(%02x)", b)
	}
	fmt.Printf("Data error. Expected %s, received %s. Position=%d.\n",
		printable(want), printable(got), pos)

	fmt.Println("Rest of packet:")
	for j := pos; j < len(payload); j++ {
		if j%8 == 0 {
			fmt.Printf("\n%4d:", j)
		}
		fmt.Printf("%s ", printable(payload[j]))
	}
	fmt.Println()
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

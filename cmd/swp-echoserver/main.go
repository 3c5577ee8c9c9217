// Command swp-echoserver reproduces the original reference echo server:
// it receives messages and prints each one, forever (the minimal example
// named in spec.md §1).
package main

import (
	"flag"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/aetherflow/swp/internal/swp/config"
	"github.com/aetherflow/swp/internal/swp/swplog"
	"github.com/aetherflow/swp/pkg/swp"
)

var configFile = flag.String("f", "configs/echoserver.yaml", "config file path")

func main() {
	flag.Parse()

	cfg, err := config.Load(*configFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "swp-echoserver: failed to load config: %v\n", err)
		os.Exit(1)
	}

	log, err := newLogger(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "swp-echoserver: failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	sess, err := swp.NewReceiver(cfg.Session.ListenAddr, cfg.Session.RecvWindow, swp.WithLogger(log))
	if err != nil {
		log.Fatal("failed to create receiver session", zap.Error(err))
	}
	defer sess.Close()

	log.Info("echo server listening", zap.String("addr", cfg.Session.ListenAddr))

	for {
		payload, err := sess.Recv()
		if err != nil {
			log.Fatal("recv failed", zap.Error(err))
		}
		fmt.Printf("packet received:%s\n", payload)
	}
}

func newLogger(cfg *config.Config) (*zap.Logger, error) {
	if cfg.Log.Dev {
		return swplog.NewDevelopment()
	}
	return swplog.New()
}

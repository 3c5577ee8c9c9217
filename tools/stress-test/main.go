// Command stress-test drives a pkg/swp SenderSession under load: many
// concurrent sessions each submit fixed-size payloads against a target
// receiver (typically fronted by cmd/swp-lossproxy to exercise S2's
// "bounded retransmissions under loss" property) and the tool reports
// submit-latency percentiles, throughput, and retransmission/give-up
// counts pulled straight from the shared Prometheus registry.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"go.uber.org/zap"

	"github.com/aetherflow/swp/internal/swp/metrics"
	"github.com/aetherflow/swp/pkg/swp"
)

// Config controls one stress run.
type Config struct {
	Target      string
	Concurrency int
	Duration    time.Duration
	PayloadSize int
	SWS         int
	RPS         int // submits per second per session; 0 = unlimited
}

// Result accumulates latency samples and outcome counts across all
// sessions. Every worker writes to it: latencies is guarded by mu, and the
// two submit counters are updated atomically.
type Result struct {
	mu sync.Mutex

	TotalSubmits  int64
	FailedSubmits int64
	latencies     []time.Duration
	TotalDuration time.Duration
}

type stressTest struct {
	cfg    *Config
	log    *zap.Logger
	met    *metrics.Metrics
	result *Result
	ctx    context.Context
	cancel context.CancelFunc
}

func main() {
	target := flag.String("target", "127.0.0.1:9000", "receiver address to submit against")
	concurrency := flag.Int("c", 4, "number of concurrent sender sessions")
	duration := flag.Duration("d", 10*time.Second, "test duration")
	payloadSize := flag.Int("size", 1024, "payload size per submit, in bytes (<=1024)")
	sws := flag.Int("sws", 16, "send window size per session (1-128)")
	rps := flag.Int("rps", 0, "submits per second per session (0 = unlimited)")
	dev := flag.Bool("dev", false, "use a human-readable development logger")
	flag.Parse()

	var log *zap.Logger
	var err error
	if *dev {
		log, err = zap.NewDevelopment()
	} else {
		log, err = zap.NewProduction()
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "stress-test: failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	cfg := &Config{
		Target:      *target,
		Concurrency: *concurrency,
		Duration:    *duration,
		PayloadSize: *payloadSize,
		SWS:         *sws,
		RPS:         *rps,
	}

	st := newStressTest(cfg, log)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		log.Info("received interrupt signal, stopping test")
		st.stop()
	}()

	st.run()
	st.printResult()
}

func newStressTest(cfg *Config, log *zap.Logger) *stressTest {
	ctx, cancel := context.WithCancel(context.Background())
	return &stressTest{
		cfg:    cfg,
		log:    log,
		met:    metrics.New("swp", "stress"),
		result: &Result{latencies: make([]time.Duration, 0, 10000)},
		ctx:    ctx,
		cancel: cancel,
	}
}

func (st *stressTest) run() {
	st.log.Info("starting stress test",
		zap.String("target", st.cfg.Target),
		zap.Int("concurrency", st.cfg.Concurrency),
		zap.Duration("duration", st.cfg.Duration),
		zap.Int("rps", st.cfg.RPS))

	startTime := time.Now()

	var wg sync.WaitGroup
	sessions := make([]*swp.SenderSession, st.cfg.Concurrency)
	for i := 0; i < st.cfg.Concurrency; i++ {
		sess, err := swp.NewSender(st.cfg.Target, st.cfg.SWS, swp.WithLogger(st.log), swp.WithMetrics(st.met))
		if err != nil {
			st.log.Fatal("failed to create sender session", zap.Int("worker", i), zap.Error(err))
		}
		sessions[i] = sess

		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			st.worker(id, sess)
		}(i)
	}

	select {
	case <-time.After(st.cfg.Duration):
		st.log.Info("test duration reached, stopping")
		st.stop()
	case <-st.ctx.Done():
		st.log.Info("test cancelled")
	}

	wg.Wait()
	for _, sess := range sessions {
		sess.Close()
	}

	st.result.TotalDuration = time.Since(startTime)
}

func (st *stressTest) worker(id int, sess *swp.SenderSession) {
	var limiter <-chan time.Time
	if st.cfg.RPS > 0 {
		ticker := time.NewTicker(time.Second / time.Duration(st.cfg.RPS))
		defer ticker.Stop()
		limiter = ticker.C
	}

	payload := make([]byte, st.cfg.PayloadSize)
	for j := range payload {
		payload[j] = byte('A' + (id+j)%26)
	}

	for {
		select {
		case <-st.ctx.Done():
			return
		default:
		}

		if limiter != nil {
			select {
			case <-limiter:
			case <-st.ctx.Done():
				return
			}
		}

		start := time.Now()
		atomic.AddInt64(&st.result.TotalSubmits, 1)
		if err := sess.Submit(payload); err != nil {
			atomic.AddInt64(&st.result.FailedSubmits, 1)
			return // ErrClosed: session torn down, stop this worker
		}
		st.recordLatency(time.Since(start))
	}
}

func (st *stressTest) recordLatency(d time.Duration) {
	st.result.mu.Lock()
	defer st.result.mu.Unlock()
	st.result.latencies = append(st.result.latencies, d)
}

func (st *stressTest) stop() {
	st.cancel()
}

func percentile(sorted []time.Duration, p float64) time.Duration {
	if len(sorted) == 0 {
		return 0
	}
	idx := int(float64(len(sorted)-1) * p)
	return sorted[idx]
}

func (st *stressTest) printResult() {
	st.result.mu.Lock()
	latencies := append([]time.Duration(nil), st.result.latencies...)
	st.result.mu.Unlock()
	sort.Slice(latencies, func(i, j int) bool { return latencies[i] < latencies[j] })

	var total time.Duration
	for _, l := range latencies {
		total += l
	}
	var avg time.Duration
	if len(latencies) > 0 {
		avg = total / time.Duration(len(latencies))
	}

	throughput := float64(st.result.TotalSubmits) / st.result.TotalDuration.Seconds()
	retransmissions := testutil.ToFloat64(st.met.Retransmissions)
	giveUps := testutil.ToFloat64(st.met.GiveUps)

	fmt.Println("\n" + strings.Repeat("=", 60))
	fmt.Println("Stress Test Results")
	fmt.Println(strings.Repeat("=", 60))
	fmt.Printf("Target:           %s\n", st.cfg.Target)
	fmt.Printf("Concurrency:      %d\n", st.cfg.Concurrency)
	fmt.Printf("Duration:         %v\n", st.result.TotalDuration)
	fmt.Println(strings.Repeat("-", 60))
	fmt.Printf("Total Submits:    %d\n", st.result.TotalSubmits)
	fmt.Printf("Failed Submits:   %d\n", st.result.FailedSubmits)
	fmt.Printf("Throughput:       %.2f submits/s\n", throughput)
	fmt.Println(strings.Repeat("-", 60))
	fmt.Printf("Min Latency:      %v\n", percentile(latencies, 0))
	fmt.Printf("Avg Latency:      %v\n", avg)
	fmt.Printf("P50 Latency:      %v\n", percentile(latencies, 0.50))
	fmt.Printf("P95 Latency:      %v\n", percentile(latencies, 0.95))
	fmt.Printf("P99 Latency:      %v\n", percentile(latencies, 0.99))
	fmt.Printf("Max Latency:      %v\n", percentile(latencies, 1.0))
	fmt.Println(strings.Repeat("-", 60))
	fmt.Printf("Retransmissions:  %.0f\n", retransmissions)
	fmt.Printf("Give-ups:         %.0f\n", giveUps)
	fmt.Println(strings.Repeat("=", 60))
}

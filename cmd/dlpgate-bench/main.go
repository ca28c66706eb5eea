// dlpgate-bench times the detector set against a fixed text, for sizing the
// per-file scan budget on a target machine.
package main

import (
	"flag"
	"fmt"
	"log"
	"sort"
	"strings"
	"time"

	"github.com/uniformedi/dlpgate/internal/config"
	"github.com/uniformedi/dlpgate/internal/detect"
)

func main() {
	cfgPath := flag.String("config", "", "path to config yaml (optional, defaults apply)")
	n := flag.Int("n", 1000, "number of iterations")
	text := flag.String("text", "Patient MRN: 4471234 DOB: 01/02/1984 card 4111-1111-1111-1111 password=hunter2secret", "text to scan")
	repeat := flag.Int("repeat", 100, "times the text is repeated per scan, to simulate extracted file content")
	flag.Parse()

	var cfg *config.Config
	var err error
	if *cfgPath != "" {
		cfg, err = config.Load(*cfgPath)
	} else {
		cfg, err = config.Load("dlpgate.yaml")
	}
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	detectors := detect.ActiveDetectors(cfg.Filter, cfg.Filter.CustomPatterns)
	sample := strings.Repeat(*text+"\n", *repeat)

	// Warmup
	for i := 0; i < 5; i++ {
		detect.Scan(sample, detectors)
	}

	if *n <= 0 {
		*n = 1
	}

	durations := make([]time.Duration, 0, *n)
	var findings int
	for i := 0; i < *n; i++ {
		start := time.Now()
		found := detect.Scan(sample, detectors)
		durations = append(durations, time.Since(start))
		findings = len(found)
	}

	sort.Slice(durations, func(i, j int) bool { return durations[i] < durations[j] })

	var total time.Duration
	for _, d := range durations {
		total += d
	}

	avg := float64(total.Microseconds()) / 1000.0 / float64(len(durations))
	p50 := float64(durations[len(durations)/2].Microseconds()) / 1000.0
	p95 := float64(durations[int(float64(len(durations))*0.95)].Microseconds()) / 1000.0

	fmt.Printf("bench: n=%d detectors=%d findings=%d sample_bytes=%d avg_ms=%.2f p50_ms=%.2f p95_ms=%.2f\n",
		len(durations),
		len(detectors),
		findings,
		len(sample),
		avg,
		p50,
		p95,
	)
}

package main

import (
	"fmt"
	"io"
	"math"
	"net/http"
	"sort"
	"sync"
	"text/tabwriter"
	"time"
)

// Stats collects per-request outcomes from all workers.
type Stats struct {
	mu          sync.Mutex
	total       int64
	matched     int64
	noMatch     int64
	failed      int64
	latencies   []time.Duration
	statusCodes map[int]int64
}

func NewStats() *Stats {
	return &Stats{
		latencies:   make([]time.Duration, 0, 100000),
		statusCodes: make(map[int]int64),
	}
}

// Record accounts for one request. A 404 is the service's no-match answer
// and counts as a successful request.
func (s *Stats) Record(duration time.Duration, statusCode int, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.total++
	if err != nil {
		s.failed++
		return
	}
	s.statusCodes[statusCode]++
	switch {
	case statusCode == http.StatusOK:
		s.matched++
	case statusCode == http.StatusNotFound:
		s.noMatch++
	default:
		s.failed++
		return
	}
	s.latencies = append(s.latencies, duration)
}

// Report is a summary of the collected outcomes.
type Report struct {
	Total       int64
	Matched     int64
	NoMatch     int64
	Failed      int64
	Min         time.Duration
	Avg         time.Duration
	P50         time.Duration
	P90         time.Duration
	P99         time.Duration
	Max         time.Duration
	StdDev      time.Duration
	StatusCodes map[int]int64
}

func (s *Stats) Report() Report {
	s.mu.Lock()
	defer s.mu.Unlock()
	r := Report{
		Total:       s.total,
		Matched:     s.matched,
		NoMatch:     s.noMatch,
		Failed:      s.failed,
		StatusCodes: make(map[int]int64, len(s.statusCodes)),
	}
	for code, n := range s.statusCodes {
		r.StatusCodes[code] = n
	}
	if len(s.latencies) == 0 {
		return r
	}
	sorted := make([]time.Duration, len(s.latencies))
	copy(sorted, s.latencies)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	var sum time.Duration
	for _, l := range sorted {
		sum += l
	}
	r.Avg = sum / time.Duration(len(sorted))
	r.Min = sorted[0]
	r.Max = sorted[len(sorted)-1]
	r.P50 = percentile(sorted, 50)
	r.P90 = percentile(sorted, 90)
	r.P99 = percentile(sorted, 99)

	var sumSquared float64
	for _, l := range sorted {
		diff := float64(l - r.Avg)
		sumSquared += diff * diff
	}
	r.StdDev = time.Duration(math.Sqrt(sumSquared / float64(len(sorted))))
	return r
}

// Print writes r as aligned text.
func (r Report) Print(w io.Writer, elapsed time.Duration) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "requests\t%d\n", r.Total)
	fmt.Fprintf(tw, "matched\t%d\n", r.Matched)
	fmt.Fprintf(tw, "no match\t%d\n", r.NoMatch)
	fmt.Fprintf(tw, "failed\t%d\n", r.Failed)
	if r.Total > 0 && elapsed > 0 {
		fmt.Fprintf(tw, "requests/sec\t%.2f\n", float64(r.Total)/elapsed.Seconds())
	}
	if r.Max > 0 {
		fmt.Fprintf(tw, "latency min/avg/max\t%s / %s / %s\n", r.Min, r.Avg, r.Max)
		fmt.Fprintf(tw, "latency p50/p90/p99\t%s / %s / %s\n", r.P50, r.P90, r.P99)
		fmt.Fprintf(tw, "latency stddev\t%s\n", r.StdDev)
	}
	codes := make([]int, 0, len(r.StatusCodes))
	for code := range r.StatusCodes {
		codes = append(codes, code)
	}
	sort.Ints(codes)
	for _, code := range codes {
		fmt.Fprintf(tw, "status %d\t%d\n", code, r.StatusCodes[code])
	}
	tw.Flush()
}

func percentile(sorted []time.Duration, p float64) time.Duration {
	if len(sorted) == 0 {
		return 0
	}
	idx := int(math.Ceil(p/100*float64(len(sorted)))) - 1
	idx = max(0, min(idx, len(sorted)-1))
	return sorted[idx]
}

// Copyright (c) 2025 The ldapskit Authors. All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package diag

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	x509certs "github.com/ldapskit/ldaps-cert-retriever/src/internal/x509/certs"
	x509chain "github.com/ldapskit/ldaps-cert-retriever/src/internal/x509/chain"
	"github.com/ldapskit/ldaps-cert-retriever/src/logger"
)

// Endpoint identifies one directory server to probe.
type Endpoint struct {
	Host        string
	Port        int
	UseStartTLS bool
}

// ParseEndpoint parses a "host:port" string into an Endpoint. A bare host,
// including an unbracketed IPv6 literal, defaults to the LDAPS port; an
// IPv6 literal with an explicit port uses the bracketed "[host]:port" form.
func ParseEndpoint(s string) (Endpoint, error) {
	// IPv6 literals carry colons of their own, so only a single colon in
	// an unbracketed string separates host from port.
	if !strings.HasPrefix(s, "[") && strings.Count(s, ":") != 1 {
		return Endpoint{Host: s, Port: x509chain.DefaultLDAPSPort}, nil
	}

	host, portStr, err := net.SplitHostPort(s)
	if err != nil {
		return Endpoint{}, fmt.Errorf("invalid endpoint %q: %w", s, err)
	}
	port, err := strconv.Atoi(portStr)
	if err != nil || port < 1 || port > 65535 {
		return Endpoint{}, fmt.Errorf("invalid port in endpoint %q", s)
	}
	return Endpoint{Host: host, Port: port}, nil
}

// String returns the endpoint in host:port form.
func (e Endpoint) String() string {
	return net.JoinHostPort(e.Host, strconv.Itoa(e.Port))
}

// Report holds the outcome of probing one endpoint. Err is nil when a chain
// was captured; Status is only meaningful then.
type Report struct {
	Endpoint Endpoint
	Chain    *x509chain.Chain
	Err      error

	Status      x509chain.Status
	ChainLen    int
	LeafSubject string
	RootSubject string
	Elapsed     time.Duration
}

// OK reports whether the probe captured and ordered a usable chain.
func (r Report) OK() bool {
	return r.Err == nil && r.Status != x509chain.Invalid
}

// Harness probes a list of known-good endpoints sequentially and reports
// per-endpoint outcomes. A failing endpoint never aborts the run; its error
// is recorded and the harness moves on.
type Harness struct {
	Endpoints []Endpoint
	Timeout   time.Duration
	Log       logger.Logger
}

// New creates a harness over the given endpoints.
func New(endpoints []Endpoint, timeout time.Duration, log logger.Logger) *Harness {
	return &Harness{Endpoints: endpoints, Timeout: timeout, Log: log}
}

// Run probes every endpoint in order and returns one report per endpoint.
// The context bounds the whole run; each attempt additionally honors the
// harness timeout.
func (h *Harness) Run(ctx context.Context) []Report {
	reports := make([]Report, 0, len(h.Endpoints))
	for _, ep := range h.Endpoints {
		if ctx.Err() != nil {
			reports = append(reports, Report{Endpoint: ep, Err: ctx.Err()})
			continue
		}
		reports = append(reports, h.RunOne(ctx, ep))
	}
	return reports
}

// RunOne probes a single endpoint: capture the chain, order it, and record
// the outcome.
func (h *Harness) RunOne(ctx context.Context, ep Endpoint) Report {
	report := Report{Endpoint: ep}
	start := time.Now()

	if h.Log != nil {
		h.Log.Printf("probing %s ...\n", ep)
	}

	ch, err := x509chain.FetchRemoteChain(ctx, x509chain.FetchOptions{
		Host:        ep.Host,
		Port:        ep.Port,
		Timeout:     h.Timeout,
		UseStartTLS: ep.UseStartTLS,
	})
	report.Elapsed = time.Since(start)
	if err != nil {
		report.Err = err
		if h.Log != nil {
			h.Log.Printf("  %s: %v\n", ep, err)
		}
		return report
	}

	result := ch.Order(time.Now())
	report.Chain = ch
	report.Status = result.Status
	report.ChainLen = len(ch.Certs)
	if report.ChainLen > 0 {
		report.LeafSubject = x509certs.SubjectSummary(ch.Certs[0])
		report.RootSubject = x509certs.SubjectSummary(ch.Certs[report.ChainLen-1])
	}

	if h.Log != nil {
		h.Log.Printf("  %s: %s in %s\n", ep, ch.Summary(), report.Elapsed.Round(time.Millisecond))
	}
	return report
}

// Summarize renders an aggregate summary of a finished run: per-endpoint
// outcome lines followed by a pass/fail count.
func Summarize(reports []Report) string {
	var b strings.Builder
	passed := 0

	for _, r := range reports {
		if r.Err != nil {
			fmt.Fprintf(&b, "FAIL %s: %v\n", r.Endpoint, r.Err)
			continue
		}
		if r.Status == x509chain.Invalid {
			fmt.Fprintf(&b, "FAIL %s: chain invalid at position %d\n", r.Endpoint, r.Chain.Result.BreakAt)
			continue
		}
		passed++
		fmt.Fprintf(&b, "PASS %s: %d certificate(s), leaf %s, terminal %s [%s] (%s)\n",
			r.Endpoint, r.ChainLen, r.LeafSubject, r.RootSubject, r.Status,
			r.Elapsed.Round(time.Millisecond))
	}

	fmt.Fprintf(&b, "%d/%d endpoint(s) passed\n", passed, len(reports))
	return b.String()
}

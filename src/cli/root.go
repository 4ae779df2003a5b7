// Copyright (c) 2025 The ldapskit Authors. All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/ldapskit/ldaps-cert-retriever/src/config"
	"github.com/ldapskit/ldaps-cert-retriever/src/diag"
	x509chain "github.com/ldapskit/ldaps-cert-retriever/src/internal/x509/chain"
	"github.com/ldapskit/ldaps-cert-retriever/src/logger"
)

var (
	// ErrServerRequired is returned when neither --server nor --test is given.
	ErrServerRequired = errors.New("cli: a server must be specified with --server (or use --test)")

	// ErrInvalidChain is returned when the captured chain failed signature
	// verification and --force was not given.
	ErrInvalidChain = errors.New("cli: certificate chain is invalid; use --force to emit it anyway")

	// ErrUnknownFormat is returned for a --format value other than pem or der.
	ErrUnknownFormat = errors.New("cli: unknown output format (expected pem or der)")

	// ErrAllEndpointsFailed is returned when --test could not capture a
	// usable chain from any endpoint.
	ErrAllEndpointsFailed = errors.New("cli: no test endpoint produced a usable certificate chain")
)

// OperationPerformed indicates whether a retrieval operation ran to the
// point of producing output. Used by the main package for final logging.
var OperationPerformed bool

// OperationPerformedSuccessfully indicates whether the operation finished
// without error. Used by the main package for final logging.
var OperationPerformedSuccessfully bool

var (
	serverHost  string
	serverPort  int
	useStartTLS bool
	format      string
	pkcs7Out    bool
	outputFile  string
	timeout     time.Duration
	debugMode   bool
	testMode    bool
	force       bool
)

// Execute runs the root command. The context bounds all network operations;
// cancelling it aborts an in-flight capture.
func Execute(ctx context.Context, version string, log logger.Logger) error {
	OperationPerformed = false
	OperationPerformedSuccessfully = false

	rootCmd := &cobra.Command{
		Use:           "ldaps-cert-retriever",
		Short:         "LDAPS certificate chain retriever",
		Version:       version,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return execCli(cmd.Context(), log)
		},
	}

	rootCmd.Flags().StringVarP(&serverHost, "server", "s", "", "directory server hostname or IP")
	rootCmd.Flags().IntVarP(&serverPort, "port", "p", x509chain.DefaultLDAPSPort, "directory server port")
	rootCmd.Flags().BoolVar(&useStartTLS, "starttls", false, "connect in plaintext and upgrade via LDAP STARTTLS")
	rootCmd.Flags().StringVar(&format, "format", "", "output format: pem or der (default: pem)")
	rootCmd.Flags().BoolVar(&pkcs7Out, "pkcs7", false, "output a degenerate PKCS7 SignedData certificate set")
	rootCmd.Flags().StringVarP(&outputFile, "output", "o", "", "output to OUTPUT_FILE (default: stdout)")
	rootCmd.Flags().DurationVar(&timeout, "timeout", 0, "connect and handshake timeout (default: 10s)")
	rootCmd.Flags().BoolVarP(&debugMode, "debug", "d", false, "print per-certificate details and the chain table")
	rootCmd.Flags().BoolVarP(&testMode, "test", "t", false, "probe the known-good endpoint list and report")
	rootCmd.Flags().BoolVar(&force, "force", false, "emit the bundle even when the chain is invalid")

	err := rootCmd.ExecuteContext(ctx)
	if err == nil {
		OperationPerformedSuccessfully = true
	}
	return err
}

// execCli captures the chain from the requested server (or the test
// endpoint list), orders and classifies it, and writes the encoded bundle.
func execCli(ctx context.Context, log logger.Logger) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if timeout <= 0 {
		timeout = cfg.Timeout()
	}
	if format == "" {
		format = cfg.Defaults.Format
	}
	if format != "pem" && format != "der" {
		return fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}

	debug := newDebugLogger(log)

	var ch *x509chain.Chain
	if testMode {
		ch, err = runHarness(ctx, cfg, log)
	} else {
		ch, err = fetchOne(ctx, debug)
	}
	if err != nil {
		return err
	}

	result := ch.Result
	if debugMode {
		debug.Infof("%s", ch.Summary())
		debug.Printf("%s", ch.RenderTable())
		for _, pos := range result.Ambiguous {
			debug.Warnf("position %d: multiple candidate issuers, used input order", pos)
		}
		for _, cert := range result.Ignored {
			debug.Warnf("ignored certificate not part of the chain: %s", cert.Subject.CommonName)
		}
	}

	switch result.Status {
	case x509chain.Invalid:
		if !force {
			return fmt.Errorf("%w (signature check failed at position %d)",
				ErrInvalidChain, result.BreakAt)
		}
		log.Printf("Warning: emitting invalid chain (signature check failed at position %d)\n", result.BreakAt)
	case x509chain.PartialMissingRoot:
		log.Println("Warning: chain is partial; the root CA was not presented by the server.")
	}

	return writeBundle(ch, log)
}

// fetchOne captures and orders the chain from the single server given on
// the command line.
func fetchOne(ctx context.Context, debug *logger.ColorLogger) (*x509chain.Chain, error) {
	if serverHost == "" {
		return nil, ErrServerRequired
	}

	port := serverPort
	if useStartTLS && port == x509chain.DefaultLDAPSPort {
		port = x509chain.DefaultLDAPPort
	}

	if debugMode {
		mode := "TLS"
		if useStartTLS {
			mode = "STARTTLS"
		}
		debug.Infof("connecting to %s:%d (%s, timeout %s)", serverHost, port, mode, timeout)
	}

	ch, err := x509chain.FetchRemoteChain(ctx, x509chain.FetchOptions{
		Host:        serverHost,
		Port:        port,
		Timeout:     timeout,
		UseStartTLS: useStartTLS,
	})
	if err != nil {
		return nil, err
	}

	ch.Order(time.Now())
	return ch, nil
}

// runHarness probes the configured known-good endpoints sequentially,
// prints the aggregate summary, and returns the first usable chain.
func runHarness(ctx context.Context, cfg *config.Config, log logger.Logger) (*x509chain.Chain, error) {
	endpoints := make([]diag.Endpoint, 0, len(cfg.TestServers))
	for _, s := range cfg.TestServers {
		ep, err := diag.ParseEndpoint(s)
		if err != nil {
			return nil, err
		}
		endpoints = append(endpoints, ep)
	}

	harness := diag.New(endpoints, timeout, log)
	reports := harness.Run(ctx)
	log.Printf("%s", diag.Summarize(reports))

	for _, r := range reports {
		if r.OK() {
			return r.Chain, nil
		}
	}
	return nil, ErrAllEndpointsFailed
}

// writeBundle encodes the ordered chain in the requested format and writes
// it to the output file or stdout. Diagnostics stay on stderr so stdout
// holds the bundle alone.
func writeBundle(ch *x509chain.Chain, log logger.Logger) error {
	var outputData []byte
	var err error
	switch {
	case pkcs7Out:
		outputData, err = ch.EncodePKCS7Bundle()
		if err != nil {
			return fmt.Errorf("cli: failed to encode PKCS7 bundle: %w", err)
		}
	case format == "der":
		outputData = ch.EncodeDERBundle()
	default:
		outputData = ch.EncodePEMBundle()
	}

	OperationPerformed = true

	if outputFile != "" {
		if err := os.WriteFile(outputFile, outputData, 0644); err != nil {
			return fmt.Errorf("cli: failed to write output file: %w", err)
		}
		log.Printf("Wrote %d certificate(s) to %s\n", len(ch.Certs), outputFile)
		return nil
	}

	_, err = os.Stdout.Write(outputData)
	return err
}

// newDebugLogger returns a color logger for --debug diagnostics, sharing
// the main logger's destination when it is a ColorLogger already.
func newDebugLogger(log logger.Logger) *logger.ColorLogger {
	if cl, ok := log.(*logger.ColorLogger); ok {
		return cl
	}
	return logger.NewColorLogger()
}

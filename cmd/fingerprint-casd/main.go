package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"google.golang.org/grpc"

	"xdao.co/fingerprint/digest"
	"xdao.co/fingerprint/internal/config"
	"xdao.co/fingerprint/internal/logging"
	"xdao.co/fingerprint/storage"
	"xdao.co/fingerprint/storage/casregistry"
	"xdao.co/fingerprint/storage/grpccas"

	_ "xdao.co/fingerprint/storage/ipfs"
	_ "xdao.co/fingerprint/storage/localfs"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	os.Exit(run(ctx, os.Args[1:], os.Stdout, os.Stderr))
}

func run(ctx context.Context, args []string, out, errOut io.Writer) int {
	fs := flag.NewFlagSet("fingerprint-casd", flag.ContinueOnError)
	fs.SetOutput(errOut)
	configPath := fs.String("config", "", "Configuration file")
	listen := fs.String("listen", "", "Listen address (overrides config)")
	backend := fs.String("backend", "", "CAS backend name (default from config)")
	alg := fs.String("alg", "", "Digest algorithm (overrides config)")
	listBackends := fs.Bool("list-backends", false, "List supported backends and exit")
	casregistry.RegisterFlags(fs, casregistry.UsageDaemon)

	if err := fs.Parse(args); err != nil {
		return 2
	}
	if *listBackends {
		for _, b := range casregistry.List(casregistry.UsageDaemon) {
			_, _ = fmt.Fprintf(out, "%s\t%s\n", b.Name, b.Description)
		}
		return 0
	}

	cfg, cfgPath, cfgExists, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintln(errOut, err)
		return 2
	}
	logger, err := logging.NewFromConfig(cfg, errOut)
	if err != nil {
		fmt.Fprintln(errOut, err)
		return 2
	}
	if cfgExists {
		logger.Debug("loaded config", "path", cfgPath)
	}

	name := cfg.Fingerprint.Algorithm
	if *alg != "" {
		name = strings.ToLower(*alg)
	}
	a, err := digest.Lookup(name)
	if err != nil {
		fmt.Fprintln(errOut, err)
		return 2
	}

	cas, closeFn, err := openCAS(cfg, *backend, a)
	if err != nil {
		logger.Error("open CAS", "error", err)
		return 2
	}
	if closeFn != nil {
		defer closeFn()
	}

	addr := cfg.Server.Listen
	if *listen != "" {
		addr = *listen
	}
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		logger.Error("listen", "addr", addr, "error", err)
		return 1
	}

	if err := serve(ctx, lis, cas, cfg.Server.MaxMsgBytes, logger); err != nil {
		logger.Error("serve", "error", err)
		return 1
	}
	return 0
}

func openCAS(cfg *config.Config, backend string, a digest.Algorithm) (storage.CAS, func() error, error) {
	sc := cfg.StoreConfig()
	if backend == "" {
		return sc.Open(casregistry.UsageDaemon, "", a)
	}
	opts := casregistry.Options{Algorithm: a}
	for _, b := range sc.Backends {
		if b.Name == backend || b.ID == backend {
			opts.Config = b.Config
			break
		}
	}
	return casregistry.Open(backend, casregistry.UsageDaemon, opts)
}

// serve runs the CAS service on lis until ctx is done, then drains
// in-flight calls.
func serve(ctx context.Context, lis net.Listener, cas storage.CAS, maxMsgBytes int, logger *slog.Logger) error {
	opts := []grpc.ServerOption{grpc.UnaryInterceptor(grpccas.UnaryLogger(logger))}
	if maxMsgBytes > 0 {
		opts = append(opts, grpc.MaxRecvMsgSize(maxMsgBytes), grpc.MaxSendMsgSize(maxMsgBytes))
	}
	s := grpc.NewServer(opts...)
	grpccas.RegisterCASServer(s, &grpccas.Server{CAS: cas})

	go func() {
		<-ctx.Done()
		logger.Info("shutting down")
		s.GracefulStop()
	}()

	logger.Info("listening", "addr", lis.Addr().String(), "algorithm", cas.Algorithm().Name)
	return s.Serve(lis)
}

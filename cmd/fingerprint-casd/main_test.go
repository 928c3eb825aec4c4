package main

import (
	"bytes"
	"context"
	"net"
	"strings"
	"testing"
	"time"

	"xdao.co/fingerprint/digest"
	"xdao.co/fingerprint/internal/logging"
	"xdao.co/fingerprint/storage/grpccas"
	"xdao.co/fingerprint/storage/localfs"
)

func TestServeAndDrain(t *testing.T) {
	alg, err := digest.Lookup(digest.Default)
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	cas, err := localfs.New(t.TempDir(), alg)
	if err != nil {
		t.Fatalf("localfs.New: %v", err)
	}
	lis, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("Listen: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- serve(ctx, lis, cas, 0, logging.NewNop()) }()

	client, err := grpccas.Dial(lis.Addr().String(), alg, grpccas.DialOptions{Timeout: 5 * time.Second})
	if err != nil {
		cancel()
		t.Fatalf("Dial: %v", err)
	}
	id, err := client.Put([]byte("hello"))
	if err != nil {
		t.Fatalf("Put: %v", err)
	}
	_ = client.Close()
	if !cas.Has(id) {
		t.Fatalf("block not written to backing store")
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("serve: %v", err)
		}
	case <-time.After(10 * time.Second):
		t.Fatalf("serve did not stop")
	}
}

func TestListBackends(t *testing.T) {
	var out, errOut bytes.Buffer
	if code := run(context.Background(), []string{"--list-backends"}, &out, &errOut); code != 0 {
		t.Fatalf("exit %d: %s", code, errOut.String())
	}
	if !strings.Contains(out.String(), "localfs") {
		t.Fatalf("backends = %q", out.String())
	}
	if strings.Contains(out.String(), "grpc") {
		t.Fatalf("daemon must not offer the grpc client backend: %q", out.String())
	}
}

func TestRejectsUnknownAlgorithm(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	var out, errOut bytes.Buffer
	if code := run(context.Background(), []string{"--alg", "md4"}, &out, &errOut); code != 2 {
		t.Fatalf("exit = %d", code)
	}
}

package grpccas

import (
	"context"
	"io"
	"log/slog"
	"net"
	"strings"
	"testing"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/test/bufconn"

	"xdao.co/fingerprint/cidutil"
	"xdao.co/fingerprint/digest"
	"xdao.co/fingerprint/storage"
	"xdao.co/fingerprint/storage/localfs"
	"xdao.co/fingerprint/storage/testkit"
)

func mustAlg(t *testing.T, name string) digest.Algorithm {
	t.Helper()
	a, err := digest.Lookup(name)
	if err != nil {
		t.Fatalf("Lookup(%q): %v", name, err)
	}
	return a
}

// serve starts a bufconn server over a fresh localfs store using serverAlg.
func serve(t *testing.T, serverAlg digest.Algorithm) *bufconn.Listener {
	t.Helper()
	cas, err := localfs.New(t.TempDir(), serverAlg)
	if err != nil {
		t.Fatalf("localfs.New: %v", err)
	}

	lis := bufconn.Listen(1024 * 1024)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	srv := grpc.NewServer(grpc.UnaryInterceptor(UnaryLogger(logger)))
	RegisterCASServer(srv, &Server{CAS: cas})

	go func() {
		_ = srv.Serve(lis)
	}()
	t.Cleanup(srv.Stop)
	return lis
}

func dial(t *testing.T, lis *bufconn.Listener, alg digest.Algorithm) (*Client, error) {
	t.Helper()
	dialer := func(ctx context.Context, s string) (net.Conn, error) { return lis.Dial() }
	return Dial("bufnet", alg, DialOptions{
		Timeout: 5 * time.Second,
		Extra:   []grpc.DialOption{grpc.WithContextDialer(dialer)},
	})
}

func TestGRPCCAS_LocalFS_RoundTrip(t *testing.T) {
	alg := mustAlg(t, digest.Default)
	client, err := dial(t, serve(t, alg), alg)
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	defer client.Close()
	client.Timeout = 2 * time.Second

	payload := []byte("hello grpccas")
	id, err := client.Put(payload)
	if err != nil {
		t.Fatalf("Put: %v", err)
	}
	if !id.Defined() {
		t.Fatalf("expected defined CID")
	}
	if !client.Has(id) {
		t.Fatalf("Has: expected true")
	}
	got, err := client.Get(id)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if string(got) != string(payload) {
		t.Fatalf("payload mismatch")
	}
}

func TestGRPCCAS_Conformance(t *testing.T) {
	alg := mustAlg(t, "sha2-256")
	testkit.RunCASConformance(t, func(t *testing.T) storage.CAS {
		client, err := dial(t, serve(t, alg), alg)
		if err != nil {
			t.Fatalf("Dial: %v", err)
		}
		t.Cleanup(func() { _ = client.Close() })
		return client
	})
}

func TestGRPCCAS_AlgorithmMismatch(t *testing.T) {
	lis := serve(t, mustAlg(t, "sha2-256"))
	_, err := dial(t, lis, mustAlg(t, digest.Default))
	if err == nil || !strings.Contains(err.Error(), "server uses sha2-256") {
		t.Fatalf("Dial with mismatched algorithm: got %v", err)
	}
}

func TestGRPCCAS_NotFoundMapsToSentinel(t *testing.T) {
	alg := mustAlg(t, digest.Default)
	client, err := dial(t, serve(t, alg), alg)
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	defer client.Close()

	id, err := cidutil.ForBytes(alg, []byte("absent"))
	if err != nil {
		t.Fatalf("ForBytes: %v", err)
	}
	if _, err := client.Get(id); !storage.IsNotFound(err) {
		t.Fatalf("Get missing: got %v want ErrNotFound", err)
	}
}

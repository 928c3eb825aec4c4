package fingerprint_test

import (
	"net/netip"
	"sync/atomic"
	"testing"
	"time"

	"xdao.co/fingerprint/fingerprint"
	"xdao.co/fingerprint/testkit"
)

func TestTime(t *testing.T) {
	second := uint64(time.Second)
	testkit.AssertSameEncoding(t, time.Unix(1, 0), testkit.Tuple{uint8(0), second, uint64(0)})
	testkit.AssertSameEncoding(t, time.Unix(-1, 0), testkit.Tuple{uint8(1), second, uint64(0)})
	testkit.AssertSameEncoding(t, time.Unix(-1, 500), testkit.Tuple{uint8(1), second - 500, uint64(0)})
	testkit.AssertSameEncoding(t, time.Unix(0, 0), testkit.Tuple{uint8(0), uint64(0), uint64(0)})

	instant := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	elsewhere := instant.In(time.FixedZone("X", 3*3600))
	testkit.AssertSameEncoding(t, instant, elsewhere)

	// Past 2^64 nanoseconds the high half of the u128 is used.
	far := time.Date(2700, 1, 1, 0, 0, 0, 0, time.UTC)
	got := testkit.Encoding(t, far)
	if len(got) != 17 || got[9] == 0 && got[10] == 0 && got[11] == 0 {
		t.Fatalf("far future instant: % x", got)
	}
}

func TestDuration(t *testing.T) {
	testkit.AssertSameEncoding(t, 1500*time.Millisecond, int64(1_500_000_000))

	got := testkit.EncodingWith(t, time.Second, (*fingerprint.Writer).Duration)
	testkit.AssertEncoding(t, int64(time.Second), got)
}

func TestAddr(t *testing.T) {
	v4 := netip.MustParseAddr("192.168.0.1")
	testkit.AssertSameEncoding(t, v4, testkit.Tuple{uint8(4), [4]uint8{192, 168, 0, 1}})

	v6 := netip.MustParseAddr("1:2:3:4:5:6:7:8")
	testkit.AssertSameEncoding(t, v6, testkit.Tuple{uint8(6), v6.As16(), ""})

	zoned := netip.MustParseAddr("fe80::1%eth0")
	testkit.AssertSameEncoding(t, zoned, testkit.Tuple{uint8(6), zoned.As16(), "eth0"})

	mapped := netip.MustParseAddr("::ffff:192.168.0.1")
	if string(testkit.Encoding(t, mapped)) == string(testkit.Encoding(t, v4)) {
		t.Fatalf("IPv4-mapped address encodes like IPv4")
	}
}

func TestAddrPortAndPrefix(t *testing.T) {
	ap := netip.MustParseAddrPort("192.168.0.1:8080")
	testkit.AssertSameEncoding(t, ap, testkit.Tuple{uint8(4), [4]uint8{192, 168, 0, 1}, uint16(8080)})

	p := netip.MustParsePrefix("10.0.0.0/8")
	testkit.AssertSameEncoding(t, p, testkit.Tuple{uint8(4), [4]uint8{10, 0, 0, 0}, uint8(8)})
}

func TestInvalidAddrRejected(t *testing.T) {
	err := fingerprint.Encode(testkit.NewRecorder(), netip.Addr{})
	if fingerprint.RuleID(err) != fingerprint.RuleInvalidAddr {
		t.Fatalf("zero Addr: %v", err)
	}
	err = fingerprint.Encode(testkit.NewRecorder(), netip.Prefix{})
	if fingerprint.RuleID(err) != fingerprint.RuleInvalidAddr {
		t.Fatalf("zero Prefix: %v", err)
	}
}

type counters struct {
	Hits  atomic.Int64
	Ready atomic.Bool
	Size  atomic.Uintptr
}

func TestAtomicsEncodeLoadedValue(t *testing.T) {
	c := &counters{}
	c.Hits.Store(42)
	c.Ready.Store(true)
	c.Size.Store(3)
	testkit.AssertSameEncoding(t, c, testkit.Tuple{int64(42), true, uint(3)})
}

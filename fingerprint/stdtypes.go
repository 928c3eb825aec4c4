package fingerprint

import (
	"container/list"
	"fmt"
	"math/bits"
	"net/netip"
	"reflect"
	"sync/atomic"
	"time"
)

var (
	timeType     = reflect.TypeFor[time.Time]()
	addrType     = reflect.TypeFor[netip.Addr]()
	addrPortType = reflect.TypeFor[netip.AddrPort]()
	prefixType   = reflect.TypeFor[netip.Prefix]()
	listType     = reflect.TypeFor[list.List]()

	atomicBoolType    = reflect.TypeFor[atomic.Bool]()
	atomicInt32Type   = reflect.TypeFor[atomic.Int32]()
	atomicInt64Type   = reflect.TypeFor[atomic.Int64]()
	atomicUint32Type  = reflect.TypeFor[atomic.Uint32]()
	atomicUint64Type  = reflect.TypeFor[atomic.Uint64]()
	atomicUintptrType = reflect.TypeFor[atomic.Uintptr]()
)

// wellKnown encodes standard library types whose state lives in unexported
// fields. It reports whether v was handled.
func (w *Writer) wellKnown(v reflect.Value) bool {
	switch v.Type() {
	case timeType, addrType, addrPortType, prefixType:
		if !v.CanInterface() {
			w.fail(KindUnsupported, RuleUnsupportedType, fmt.Sprintf("unexported %s value", v.Type()))
			return true
		}
		switch x := v.Interface().(type) {
		case time.Time:
			w.Time(x)
		case netip.Addr:
			w.Addr(x)
		case netip.AddrPort:
			w.AddrPort(x)
		case netip.Prefix:
			w.Prefix(x)
		}
		return true
	case listType:
		p, ok := pointerTo(v)
		if !ok {
			w.fail(KindUnsupported, RuleUnsupportedType, "unexported list.List value")
			return true
		}
		w.list(p.Interface().(*list.List))
		return true
	case atomicBoolType, atomicInt32Type, atomicInt64Type, atomicUint32Type, atomicUint64Type, atomicUintptrType:
		p, ok := pointerTo(v)
		if !ok {
			w.fail(KindUnsupported, RuleUnsupportedType, fmt.Sprintf("unexported %s value", v.Type()))
			return true
		}
		switch a := p.Interface().(type) {
		case *atomic.Bool:
			w.Bool(a.Load())
		case *atomic.Int32:
			w.Int32(a.Load())
		case *atomic.Int64:
			w.Int64(a.Load())
		case *atomic.Uint32:
			w.Uint32(a.Load())
		case *atomic.Uint64:
			w.Uint64(a.Load())
		case *atomic.Uintptr:
			w.Usize(uint64(a.Load()))
		}
		return true
	}
	return false
}

// pointerTo returns v's address, or the address of a copy when v is not
// addressable.
func pointerTo(v reflect.Value) (reflect.Value, bool) {
	if v.CanAddr() && v.CanInterface() {
		return v.Addr(), true
	}
	return addressable(v)
}

// Time appends an instant as its signed distance from the Unix epoch: tag 0
// and the nanoseconds since the epoch as a u128, or tag 1 and the nanoseconds
// before it. The location is not part of the encoding.
func (w *Writer) Time(t time.Time) {
	sec, nsec := t.Unix(), uint64(t.Nanosecond())
	if sec >= 0 {
		hi, lo := bits.Mul64(uint64(sec), uint64(time.Second))
		lo, carry := bits.Add64(lo, nsec, 0)
		w.Uint8(0)
		w.Uint128(lo, hi+carry)
		return
	}
	hi, lo := bits.Mul64(uint64(-sec), uint64(time.Second))
	lo, borrow := bits.Sub64(lo, nsec, 0)
	w.Uint8(1)
	w.Uint128(lo, hi-borrow)
}

// Duration appends d as its int64 nanosecond count.
func (w *Writer) Duration(d time.Duration) { w.Int64(int64(d)) }

// Addr appends an IP address: 4 and the four octets for IPv4, 6, the sixteen
// octets and the zone for IPv6. IPv4-mapped IPv6 addresses stay IPv6.
func (w *Writer) Addr(a netip.Addr) {
	switch {
	case a.Is4():
		b := a.As4()
		w.Uint8(4)
		w.Raw(b[:])
	case a.Is6():
		b := a.As16()
		w.Uint8(6)
		w.Raw(b[:])
		w.String(a.Zone())
	default:
		w.fail(KindUnsupported, RuleInvalidAddr, "invalid netip.Addr has no canonical form")
	}
}

func (w *Writer) AddrPort(ap netip.AddrPort) {
	w.Addr(ap.Addr())
	w.Uint16(ap.Port())
}

func (w *Writer) Prefix(p netip.Prefix) {
	if !p.IsValid() {
		w.fail(KindUnsupported, RuleInvalidAddr, "invalid netip.Prefix has no canonical form")
		return
	}
	w.Addr(p.Addr())
	w.Uint8(uint8(p.Bits()))
}

func (w *Writer) list(l *list.List) {
	w.Len(l.Len())
	i := 0
	for e := l.Front(); e != nil && w.err == nil; e = e.Next() {
		w.push(pathSeg{index: i})
		w.value(reflect.ValueOf(e.Value))
		w.pop()
		i++
	}
}

package varint

import "testing"

func TestUint64Roundtrip(t *testing.T) {
	cases := []uint64{
		0, 1, 2, 126, 127, 128, 129, 16383, 16384, 16385,
		1 << 20, 1<<35 + 7, 1<<63 - 1, 1<<64 - 1,
	}
	for _, n := range cases {
		buf := EncodeUint64(nil, n)
		got, off, err := DecodeUint64(buf, 0)
		if err != nil {
			t.Fatalf("decode(%d) error: %v", n, err)
		}
		if off != len(buf) {
			t.Fatalf("decode(%d) consumed %d of %d bytes", n, off, len(buf))
		}
		if got != n {
			t.Fatalf("roundtrip(%d) = %d", n, got)
		}
	}
}

func TestInt64Roundtrip(t *testing.T) {
	cases := []int64{0, -1, 1, -2, 2, -1000, 1000, -1 << 62, 1<<62 - 1}
	for _, n := range cases {
		buf := EncodeInt64(nil, n)
		got, _, err := DecodeInt64(buf, 0)
		if err != nil {
			t.Fatalf("decode(%d) error: %v", n, err)
		}
		if got != n {
			t.Fatalf("roundtrip(%d) = %d", n, got)
		}
	}
}

func TestZigZagMapping(t *testing.T) {
	cases := map[int64]uint64{0: 0, -1: 1, 1: 2, -2: 3, 2: 4}
	for n, want := range cases {
		if got := zigzagEncode(n); got != want {
			t.Errorf("zigzagEncode(%d) = %d, want %d", n, got, want)
		}
	}
}

func TestTerminalByteHasHighBitSet(t *testing.T) {
	// Per spec.md §6: the LAST emitted byte carries the high bit; all
	// preceding bytes do not. This is inverted from standard LEB128.
	buf := EncodeUint64(nil, 1<<20) // requires 3 groups
	if len(buf) < 2 {
		t.Fatalf("expected a multi-byte encoding, got %v", buf)
	}
	for i, b := range buf {
		isLast := i == len(buf)-1
		hasBit := b&0x80 != 0
		if hasBit != isLast {
			t.Fatalf("byte %d of %v: high bit set=%v, want %v", i, buf, hasBit, isLast)
		}
	}
}

func TestMultipleSequentialValues(t *testing.T) {
	var buf []byte
	values := []uint64{5, 300, 70000, 1}
	for _, v := range values {
		buf = EncodeUint64(buf, v)
	}
	off := 0
	for _, want := range values {
		got, next, err := DecodeUint64(buf, off)
		if err != nil {
			t.Fatalf("decode error: %v", err)
		}
		if got != want {
			t.Fatalf("got %d, want %d", got, want)
		}
		off = next
	}
	if off != len(buf) {
		t.Fatalf("did not consume entire buffer: %d of %d", off, len(buf))
	}
}

func TestTruncated(t *testing.T) {
	buf := []byte{0x05} // high bit clear, never terminates
	if _, _, err := DecodeUint64(buf, 0); err == nil {
		t.Fatalf("expected truncation error")
	}
}

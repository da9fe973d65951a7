package buffer

import "bytes"

import "testing"

func TestRoundTrip(t *testing.T) {
	cases := [][]byte{
		[]byte(""),
		[]byte("a"),
		[]byte("hello, world"),
		bytes.Repeat([]byte("x"), 5000),
	}

	for _, s := range cases {
		b := New(1)
		if _, err := b.Write(s); err != nil {
			t.Fatalf("write: %v", err)
		}

		out := make([]byte, len(s))
		n, err := b.Read(out)
		if err != nil {
			t.Fatalf("read: %v", err)
		}
		if n != len(s) {
			t.Fatalf("read %d bytes, want %d", n, len(s))
		}
		if !bytes.Equal(out, s) {
			t.Fatalf("round-trip mismatch: got %q want %q", out, s)
		}
		if b.AvailableData() != 0 {
			t.Fatalf("available data after full read = %d, want 0", b.AvailableData())
		}
	}
}

func TestCompactionPreservesContent(t *testing.T) {
	b := New(8)
	b.Write([]byte("0123456789"))

	got := make([]byte, 5)
	b.Read(got)
	if string(got) != "01234" {
		t.Fatalf("partial read = %q, want 01234", got)
	}

	b.Write([]byte("ABCDEFGHIJ"))

	want := "56789ABCDEFGHIJ"
	if got := string(b.Slice()); got != want {
		t.Fatalf("slice after compaction = %q, want %q", got, want)
	}
	if b.AvailableData() != len(want) {
		t.Fatalf("available data = %d, want %d", b.AvailableData(), len(want))
	}
}

func TestAdvanceReadRejectsOverrun(t *testing.T) {
	b := New(4)
	b.Write([]byte("ab"))

	if err := b.AdvanceRead(5); err == nil {
		t.Fatal("expected error advancing past available data")
	}
	if err := b.AdvanceRead(2); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if b.AvailableData() != 0 {
		t.Fatalf("available data = %d, want 0", b.AvailableData())
	}
}

func TestEnsureCapacityGrowsGeometrically(t *testing.T) {
	b := New(4)
	b.Write([]byte("abcd"))
	b.Read(make([]byte, 2)) // read_pos=2, write_pos=4, live=2

	b.EnsureCapacity(100)
	if b.Capacity() < 100 {
		t.Fatalf("capacity = %d, want >= 100", b.Capacity())
	}
	if got := string(b.Slice()); got != "cd" {
		t.Fatalf("slice after grow = %q, want cd", got)
	}
}

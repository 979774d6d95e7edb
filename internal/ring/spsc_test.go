package ring

import (
	"sync"
	"testing"
)

func TestWriteReadRoundTrip(t *testing.T) {
	r := New(16)
	in := []float32{1, 2, 3, 4, 5}
	r.Write(in)

	out := make([]float32, 5)
	n := r.Read(out)
	if n != 5 {
		t.Fatalf("Read returned %d, want 5", n)
	}
	for i := range in {
		if out[i] != in[i] {
			t.Fatalf("sample %d: got %v want %v", i, out[i], in[i])
		}
	}
}

func TestReadEmptyReturnsZero(t *testing.T) {
	r := New(16)
	out := make([]float32, 4)
	if n := r.Read(out); n != 0 {
		t.Fatalf("Read on empty ring returned %d, want 0", n)
	}
}

func TestOverflowDropsAndCounts(t *testing.T) {
	r := New(4)
	r.Write([]float32{1, 2, 3, 4, 5, 6, 7, 8})

	if r.Dropped() == 0 {
		t.Fatal("expected some samples to be dropped")
	}
	// New(4) rounds 4+1 up to 8 slots; one is kept empty, so 7 fit.
	if r.Len() != int(r.size())-1 {
		t.Fatalf("ring holds %d samples, want its usable capacity %d", r.Len(), int(r.size())-1)
	}
}

func TestWraparound(t *testing.T) {
	r := New(8)
	buf := make([]float32, 3)

	for round := 0; round < 20; round++ {
		r.Write([]float32{float32(round), float32(round), float32(round)})
		n := r.Read(buf)
		if n != 3 {
			t.Fatalf("round %d: Read returned %d, want 3", round, n)
		}
		for _, v := range buf {
			if v != float32(round) {
				t.Fatalf("round %d: got %v want %v", round, v, round)
			}
		}
	}
}

func TestConcurrentProducerConsumer(t *testing.T) {
	r := New(256)
	const total = 50000

	var wg sync.WaitGroup
	wg.Add(2)

	producerDone := make(chan struct{})
	go func() {
		defer wg.Done()
		defer close(producerDone)
		sample := []float32{1}
		for written := 0; written < total; written++ {
			r.Write(sample)
		}
	}()

	received := 0
	go func() {
		defer wg.Done()
		buf := make([]float32, 64)
		for {
			n := r.Read(buf)
			received += n
			if n == 0 {
				select {
				case <-producerDone:
					if r.Len() == 0 {
						return
					}
				default:
				}
			}
		}
	}()

	wg.Wait()
	if uint64(received)+r.Dropped() != total {
		t.Fatalf("received %d + dropped %d != total %d", received, r.Dropped(), total)
	}
}

package pool

import (
	"fmt"
	"sync"
	"testing"

	"go.uber.org/zap"
)

func benchPool(b *testing.B, keys int) (*Pool[*widget], []string) {
	b.Helper()
	names := make([]string, keys)
	bindings := make([]Binding[*widget], keys)
	for i := range names {
		names[i] = fmt.Sprintf("key_%d", i)
		proto, _ := widgetProto(names[i])
		bindings[i] = Binding[*widget]{Key: names[i], Prototype: proto}
	}
	p := New[*widget](WithLogger(zap.NewNop()))
	if err := p.Configure(NewManifest(bindings...)); err != nil {
		b.Fatal(err)
	}
	if err := p.Prewarm(8); err != nil {
		b.Fatal(err)
	}
	return p, names
}

// Benchmark borrow/return against sync.Pool
func BenchmarkBorrowReturn(b *testing.B) {
	b.Run("KeyedPool", func(b *testing.B) {
		p, keys := benchPool(b, 1)
		b.ReportAllocs()
		b.ResetTimer()
		for i := 0; i < b.N; i++ {
			w, err := p.Borrow(keys[0])
			if err != nil {
				b.Fatal(err)
			}
			if err := p.Return(w); err != nil {
				b.Fatal(err)
			}
		}
	})

	b.Run("SyncPool", func(b *testing.B) {
		sp := sync.Pool{New: func() interface{} { return &widget{} }}
		b.ReportAllocs()
		b.ResetTimer()
		for i := 0; i < b.N; i++ {
			w := sp.Get().(*widget)
			w.SetActive(true)
			w.SetActive(false)
			sp.Put(w)
		}
	})
}

// Benchmark borrowing across many keys
func BenchmarkBorrowManyKeys(b *testing.B) {
	for _, n := range []int{1, 16, 256} {
		b.Run(fmt.Sprintf("keys=%d", n), func(b *testing.B) {
			p, keys := benchPool(b, n)
			b.ReportAllocs()
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				w, err := p.Borrow(keys[i%n])
				if err != nil {
					b.Fatal(err)
				}
				if err := p.Return(w); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

// Benchmark contended borrow/return
func BenchmarkBorrowReturnParallel(b *testing.B) {
	p, keys := benchPool(b, 4)
	b.ReportAllocs()
	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		i := 0
		for pb.Next() {
			w, err := p.Borrow(keys[i%len(keys)])
			if err != nil {
				b.Error(err)
				return
			}
			if err := p.Return(w); err != nil {
				b.Error(err)
				return
			}
			i++
		}
	})
}

package indexer

import (
	"context"
	"fmt"
	"testing"

	"github.com/Adithya-Monish-Kumar-K/tfidf-search/internal/indexer/store"
)

var benchTerms = []string{"failed", "execute", "goal", "compile", "resolve", "dependencies", "plugin", "maven"}

func benchDoc(i int) string {
	return fmt.Sprintf("[ERROR] %s to %s %s in module-%d",
		benchTerms[i%len(benchTerms)], benchTerms[(i+2)%len(benchTerms)], benchTerms[(i+3)%len(benchTerms)], i%50)
}

func newBenchEngine(b *testing.B, preload int) *Engine {
	b.Helper()
	e, err := NewEngine(context.Background(), testConfig(), store.NewMemory())
	if err != nil {
		b.Fatal(err)
	}
	b.Cleanup(func() { _ = e.Close() })
	for i := 0; i < preload; i++ {
		if _, err := e.Insert(context.Background(), benchDoc(i)); err != nil {
			b.Fatal(err)
		}
	}
	return e
}

func BenchmarkEngineInsert(b *testing.B) {
	for _, preload := range []int{100, 1000, 5000} {
		b.Run(fmt.Sprintf("preload_%d", preload), func(b *testing.B) {
			e := newBenchEngine(b, preload)
			ctx := context.Background()
			b.ReportAllocs()
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				if _, err := e.Insert(ctx, benchDoc(i)); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

// BenchmarkEngineSearch measures queries against a clean cache.
func BenchmarkEngineSearch(b *testing.B) {
	e := newBenchEngine(b, 5000)
	ctx := context.Background()
	if _, err := e.Search(ctx, "warm", 1); err != nil {
		b.Fatal(err)
	}
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := e.Search(ctx, benchTerms[i%len(benchTerms)]+" goal", 10); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkEngineSearchParallel(b *testing.B) {
	e := newBenchEngine(b, 5000)
	ctx := context.Background()
	if _, err := e.Search(ctx, "warm", 1); err != nil {
		b.Fatal(err)
	}
	b.ReportAllocs()
	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		i := 0
		for pb.Next() {
			_, _ = e.Search(ctx, benchTerms[i%len(benchTerms)], 10)
			i++
		}
	})
}

// BenchmarkEngineRebuild measures a full vector rebuild after each insert.
func BenchmarkEngineRebuild(b *testing.B) {
	for _, preload := range []int{100, 1000} {
		b.Run(fmt.Sprintf("docs_%d", preload), func(b *testing.B) {
			e := newBenchEngine(b, preload)
			ctx := context.Background()
			b.ReportAllocs()
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				if _, err := e.Insert(ctx, benchDoc(i)); err != nil {
					b.Fatal(err)
				}
				if _, err := e.Search(ctx, "goal", 1); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

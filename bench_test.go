package svo

import (
	"testing"
)

func benchmarkStdMapInsert(factor int, b *testing.B) {
	m := map[Coord]int{}
	for n := 0; n < factor*b.N; n++ {
		m[benchCoord(n)] = n
	}
}

func BenchmarkStdMapInsert1(b *testing.B)   { benchmarkStdMapInsert(1, b) }
func BenchmarkStdMapInsert100(b *testing.B) { benchmarkStdMapInsert(100, b) }
func BenchmarkStdMapInsert10k(b *testing.B) { benchmarkStdMapInsert(10_000, b) }

func benchCoord(n int) Coord {
	return Coord{uint16(n), uint16(n >> 16), uint16(n >> 32)}
}

func benchmarkStoreInsert(factor int, b *testing.B) {
	s := NewInMemory[int]()
	for n := 0; n < factor*b.N; n++ {
		s.Insert(benchCoord(n), n)
	}
	s.ApplyMutations()
}

func BenchmarkStoreInsert1(b *testing.B)   { benchmarkStoreInsert(1, b) }
func BenchmarkStoreInsert100(b *testing.B) { benchmarkStoreInsert(100, b) }
func BenchmarkStoreInsert10k(b *testing.B) { benchmarkStoreInsert(10_000, b) }

func benchmarkStoreGet(factor int, b *testing.B) {
	s := NewInMemory[int]()
	b.StopTimer()
	for n := 0; n < factor*b.N; n++ {
		s.Insert(benchCoord(n), n)
	}
	s.ApplyMutations()
	b.StartTimer()
	for n := 0; n < factor*b.N; n++ {
		_, _ = s.Get(benchCoord(n))
	}
}

func BenchmarkStoreGet1(b *testing.B)   { benchmarkStoreGet(1, b) }
func BenchmarkStoreGet100(b *testing.B) { benchmarkStoreGet(100, b) }
func BenchmarkStoreGet10k(b *testing.B) { benchmarkStoreGet(10_000, b) }

func BenchmarkParallelInsert(b *testing.B) {
	s := NewInMemory[int]()
	b.RunParallel(func(pb *testing.PB) {
		n := 0
		for pb.Next() {
			s.Insert(benchCoord(n), n)
			n++
		}
	})
	s.ApplyMutations()
}

func BenchmarkCompress(b *testing.B) {
	for n := 0; n < b.N; n++ {
		b.StopTimer()
		s := NewInMemory[bool]()
		for x := uint16(0); x < 16; x++ {
			for y := uint16(0); y < 16; y++ {
				for z := uint16(0); z < 16; z++ {
					s.Insert(Coord{x, y, z}, true)
				}
			}
		}
		s.ApplyMutations()
		b.StartTimer()
		Compress(s, 4)
	}
}

func BenchmarkNeighboursArea(b *testing.B) {
	s := NewInMemory[int]()
	for n := 0; n < 100_000; n++ {
		s.Insert(Coord{uint16(n % 64), uint16(n / 64 % 64), uint16(n / 4096)}, n)
	}
	s.ApplyMutations()
	b.ResetTimer()
	for n := 0; n < b.N; n++ {
		s.NeighboursArea(32, 32, 12, 3)
	}
}

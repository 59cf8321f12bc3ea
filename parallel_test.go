package zcrypt

import "testing"

func TestThreadsFor(t *testing.T) {
	tests := []struct {
		name              string
		physical, logical int
		want              int
	}{
		{"four cores", 4, 8, 6},
		{"one core", 1, 1, 1},
		{"two cores", 2, 4, 3},
		{"unknown physical", 0, 8, 12},
		{"nothing known", 0, 0, 1},
		{"huge machine", 4096, 8192, MaxThreads},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := threadsFor(tt.physical, tt.logical); got != tt.want {
				t.Errorf("threadsFor(%d, %d) = %d, want %d", tt.physical, tt.logical, got, tt.want)
			}
		})
	}
}

func TestDefaultThreads(t *testing.T) {
	n := DefaultThreads()
	if n < 1 || n > MaxThreads {
		t.Errorf("DefaultThreads() = %d, want 1..%d", n, MaxThreads)
	}
}

func TestResolveThreads(t *testing.T) {
	if got := resolveThreads(0); got != DefaultThreads() {
		t.Errorf("resolveThreads(0) = %d, want DefaultThreads() = %d", got, DefaultThreads())
	}
	if got := resolveThreads(3); got != 3 {
		t.Errorf("resolveThreads(3) = %d, want 3", got)
	}
	if got := resolveThreads(MaxThreads * 2); got != MaxThreads {
		t.Errorf("resolveThreads(%d) = %d, want %d", MaxThreads*2, got, MaxThreads)
	}
}

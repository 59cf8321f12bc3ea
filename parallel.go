package zcrypt

import (
	"runtime"

	"github.com/klauspost/cpuid/v2"
)

// MaxThreads caps the encoder goroutine count
const MaxThreads = 1024

// DefaultThreads returns 1.5x the physical core count, at least 1. When the
// physical core count is unknown the logical CPU count is used instead.
func DefaultThreads() int {
	return threadsFor(cpuid.CPU.PhysicalCores, runtime.NumCPU())
}

func threadsFor(physical, logical int) int {
	cores := physical
	if cores <= 0 {
		cores = logical
	}
	threads := cores * 3 / 2
	if threads < 1 {
		threads = 1
	}
	if threads > MaxThreads {
		threads = MaxThreads
	}
	return threads
}

// resolveThreads maps a caller thread count to the one handed to the encoder
func resolveThreads(threads int) int {
	if threads <= 0 {
		return DefaultThreads()
	}
	if threads > MaxThreads {
		return MaxThreads
	}
	return threads
}

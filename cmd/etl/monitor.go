package main

import (
	"runtime"
	"sync"
	"time"

	"github.com/farxc/fleet_occupancy/internal/logger"
)

type ProfilerStats struct {
	PeakMemoryMB uint64
	Samples      int
}

// MemoryMonitor samples heap usage while the stages run.
type MemoryMonitor struct {
	mu    sync.Mutex
	stats ProfilerStats
	stop  chan struct{}
	done  chan struct{}
}

func NewMonitor() *MemoryMonitor {
	return &MemoryMonitor{
		stop: make(chan struct{}),
		done: make(chan struct{}),
	}
}

func (m *MemoryMonitor) Start(interval time.Duration, appLogger *logger.Logger) {
	go func() {
		defer close(m.done)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				m.sample(appLogger)
			case <-m.stop:
				return
			}
		}
	}()
}

func (m *MemoryMonitor) sample(appLogger *logger.Logger) {
	const component = "Monitor"

	var mStats runtime.MemStats
	runtime.ReadMemStats(&mStats)
	currentMB := mStats.Alloc / 1024 / 1024

	m.mu.Lock()
	defer m.mu.Unlock()

	m.stats.Samples++
	if currentMB > m.stats.PeakMemoryMB {
		m.stats.PeakMemoryMB = currentMB
	}
	appLogger.Debug(component, "memoryMB=%d peakMemoryMB=%d", currentMB, m.stats.PeakMemoryMB)
}

// Stop ends sampling and returns the peak figures.
func (m *MemoryMonitor) Stop() ProfilerStats {
	close(m.stop)
	<-m.done
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.stats
}

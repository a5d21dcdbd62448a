package memutils

import "math"

// Statistics summarizes the live blocks of a storage instance
type Statistics struct {
	// BlockCount is the number of blocks that are currently allocated
	BlockCount int
	// BlockBytes is the sum of the usable sizes of the currently allocated blocks
	BlockBytes int
	// CapacityBytes is the number of bytes the instance can hand out in total, or 0 if it is unbounded
	CapacityBytes int
}

func (s *Statistics) Clear() {
	s.BlockCount = 0
	s.BlockBytes = 0
	s.CapacityBytes = 0
}

func (s *Statistics) AddStatistics(other *Statistics) {
	s.BlockCount += other.BlockCount
	s.BlockBytes += other.BlockBytes
	s.CapacityBytes += other.CapacityBytes
}

// DetailedStatistics extends Statistics with per-block extremes and call counters
type DetailedStatistics struct {
	Statistics
	RequestedBytes    int
	BlockSizeMin      int
	BlockSizeMax      int
	FailedAllocations int
}

func (s *DetailedStatistics) Clear() {
	s.Statistics.Clear()
	s.RequestedBytes = 0
	s.BlockSizeMin = math.MaxInt
	s.BlockSizeMax = 0
	s.FailedAllocations = 0
}

// AddBlock records a live block whose caller asked for requested bytes and received usable bytes
func (s *DetailedStatistics) AddBlock(requested, usable int) {
	s.BlockCount++
	s.BlockBytes += usable
	s.RequestedBytes += requested

	if usable < s.BlockSizeMin {
		s.BlockSizeMin = usable
	}

	if usable > s.BlockSizeMax {
		s.BlockSizeMax = usable
	}
}

func (s *DetailedStatistics) AddDetailedStatistics(other *DetailedStatistics) {
	s.Statistics.AddStatistics(&other.Statistics)
	s.RequestedBytes += other.RequestedBytes
	s.FailedAllocations += other.FailedAllocations

	if other.BlockSizeMin < s.BlockSizeMin {
		s.BlockSizeMin = other.BlockSizeMin
	}

	if other.BlockSizeMax > s.BlockSizeMax {
		s.BlockSizeMax = other.BlockSizeMax
	}
}

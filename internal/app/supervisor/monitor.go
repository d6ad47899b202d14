package supervisor

import (
	"context"
	"math"
	"strconv"

	"github.com/shirou/gopsutil/v4/process"
)

// Stats contains resource usage of the prover process
type Stats struct {
	PID int
	CPU float64
	MEM float64 // in MB
}

// Stats samples the announced prover process, or the spawned executable before the handshake
func (s *Supervisor) Stats(ctx context.Context) (Stats, error) {
	pid := s.cmd.Process.Pid

	if announced, ok := s.state.PID(); ok {
		if n, err := strconv.Atoi(announced); err == nil {
			pid = n
		}
	}

	if pid <= 0 || pid > math.MaxInt32 {
		return Stats{}, nil
	}

	proc, err := process.NewProcessWithContext(ctx, int32(pid)) // #nosec G115 -- PID range checked above
	if err != nil {
		return Stats{}, err
	}

	stats := Stats{PID: pid}

	if cpu, err := proc.CPUPercentWithContext(ctx); err == nil {
		stats.CPU = cpu
	}

	if mem, err := proc.MemoryInfoWithContext(ctx); err == nil {
		stats.MEM = float64(mem.RSS) / 1024 / 1024
	}

	return stats, nil
}

package emulator

import (
	"context"
	"fmt"
	"io"
	"net"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	psnet "github.com/shirou/gopsutil/v3/net"
	"github.com/shirou/gopsutil/v3/process"
)

// Config holds the local Firestore emulator settings.
type Config struct {
	// HostPort is the address the emulator listens on.
	HostPort string `mapstructure:"host_port" default:"0.0.0.0:8816"`
	// Binary is the gcloud executable.
	Binary string `mapstructure:"binary" default:"gcloud"`
	// StopTimeout is how long the emulator gets to exit after an interrupt.
	StopTimeout time.Duration `mapstructure:"stop_timeout" default:"10s"`
}

// Port extracts the TCP port from HostPort.
func (c Config) Port() (int, error) {
	_, p, err := net.SplitHostPort(c.HostPort)
	if err != nil {
		return 0, fmt.Errorf("invalid emulator address %q: %w", c.HostPort, err)
	}
	port, err := strconv.Atoi(p)
	if err != nil || port <= 0 || port > 65535 {
		return 0, fmt.Errorf("invalid emulator port %q", p)
	}
	return port, nil
}

// Args returns the gcloud arguments that start the emulator.
func (c Config) Args() []string {
	return []string{"emulators", "firestore", "start", "--host-port=" + c.HostPort}
}

// StartCommand builds the emulator process. Cancelling ctx interrupts it.
func StartCommand(ctx context.Context, cfg Config, stdout, stderr io.Writer) *exec.Cmd {
	bin := cfg.Binary
	if bin == "" {
		bin = "gcloud"
	}
	cmd := exec.CommandContext(ctx, bin, cfg.Args()...)
	cmd.Stdout = stdout
	cmd.Stderr = stderr
	// gcloud forks a JVM; an interrupt lets it tear the child down.
	cmd.Cancel = func() error { return cmd.Process.Signal(os.Interrupt) }
	cmd.WaitDelay = cfg.StopTimeout
	return cmd
}

// Run starts the emulator and blocks until it exits or ctx is cancelled.
func Run(ctx context.Context, cfg Config, stdout, stderr io.Writer) error {
	if _, err := cfg.Port(); err != nil {
		return err
	}
	cmd := StartCommand(ctx, cfg, stdout, stderr)
	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return nil
		}
		return fmt.Errorf("firestore emulator exited: %w", err)
	}
	return nil
}

// ListeningPIDs returns the sorted, de-duplicated PIDs holding a TCP socket
// bound to port.
func ListeningPIDs(ctx context.Context, port int) ([]int32, error) {
	conns, err := psnet.ConnectionsWithContext(ctx, "tcp")
	if err != nil {
		return nil, fmt.Errorf("failed to list tcp connections: %w", err)
	}
	seen := make(map[int32]struct{})
	for _, conn := range conns {
		if conn.Pid <= 0 || conn.Laddr.Port != uint32(port) {
			continue
		}
		seen[conn.Pid] = struct{}{}
	}
	pids := make([]int32, 0, len(seen))
	for pid := range seen {
		pids = append(pids, pid)
	}
	sort.Slice(pids, func(i, j int) bool { return pids[i] < pids[j] })
	return pids, nil
}

// KillPort forcibly terminates every process bound to port, except the
// calling process, and returns the PIDs it killed.
func KillPort(ctx context.Context, port int) ([]int32, error) {
	pids, err := ListeningPIDs(ctx, port)
	if err != nil {
		return nil, err
	}
	self := int32(os.Getpid())
	var killed []int32
	for _, pid := range pids {
		if pid == self {
			continue
		}
		p, err := process.NewProcessWithContext(ctx, pid)
		if err != nil {
			// Exited between listing and killing.
			continue
		}
		if err := p.KillWithContext(ctx); err != nil {
			return killed, fmt.Errorf("failed to kill pid %d: %w", pid, err)
		}
		killed = append(killed, pid)
	}
	return killed, nil
}

// ProjectIDFromDir derives a project id from a directory name, the way the
// Makefile does with $(notdir $(CURDIR)).
func ProjectIDFromDir(dir string) string {
	if abs, err := filepath.Abs(dir); err == nil {
		dir = abs
	}
	return filepath.Base(filepath.Clean(dir))
}

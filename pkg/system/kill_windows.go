//go:build windows

package system

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os/exec"
	"strconv"
	"strings"
)

// killPortHolder finds the owning PIDs of port in netstat output and ends
// them with taskkill.
func killPortHolder(ctx context.Context, port int) error {
	out, err := exec.CommandContext(ctx, "netstat", "-ano").Output()
	if err != nil {
		return fmt.Errorf("netstat failed: %w", err)
	}

	pids := pidsOnPort(out, port)
	if len(pids) == 0 {
		return nil
	}
	slog.Info("Killing port holder", "port", port, "pids", pids)

	var firstErr error
	for _, pid := range pids {
		var buf bytes.Buffer
		cmd := exec.CommandContext(ctx, "taskkill", "/F", "/PID", pid)
		cmd.Stdout = &buf
		cmd.Stderr = &buf
		if err := cmd.Run(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("taskkill %s failed: %w: %s", pid, err, strings.TrimSpace(buf.String()))
		}
	}
	return firstErr
}

// pidsOnPort extracts the PID column of netstat rows whose local address
// ends in :port.
func pidsOnPort(netstat []byte, port int) []string {
	suffix := ":" + strconv.Itoa(port)
	seen := map[string]bool{}
	var pids []string

	sc := bufio.NewScanner(bytes.NewReader(netstat))
	for sc.Scan() {
		fields := strings.Fields(sc.Text())
		if len(fields) < 5 || !strings.HasSuffix(fields[1], suffix) {
			continue
		}
		pid := fields[len(fields)-1]
		if pid == "0" || seen[pid] {
			continue
		}
		seen[pid] = true
		pids = append(pids, pid)
	}
	return pids
}

//go:build !windows

package system

import (
	"context"
	"fmt"
	"log/slog"
	"os/exec"
	"strconv"
	"strings"
)

// killPortHolder sends SIGKILL to every process lsof reports on port.
func killPortHolder(ctx context.Context, port int) error {
	out, err := exec.CommandContext(ctx, "lsof", "-ti:"+strconv.Itoa(port)).Output()
	if err != nil {
		return fmt.Errorf("lsof failed: %w", err)
	}

	pids := strings.Fields(string(out))
	if len(pids) == 0 {
		return nil
	}
	slog.Info("Killing port holder", "port", port, "pids", pids)

	args := append([]string{"-9"}, pids...)
	if output, err := exec.CommandContext(ctx, "kill", args...).CombinedOutput(); err != nil {
		return fmt.Errorf("kill failed: %w: %s", err, strings.TrimSpace(string(output)))
	}
	return nil
}

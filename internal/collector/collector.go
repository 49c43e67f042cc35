package collector

import (
	"context"
	"os/exec"
)

// Runner invokes the external data collection command. The guard blocks on
// it and only gates on success; the combined output is kept for stat
// parsing and operator narration.
type Runner struct {
	command string
	dir     string
}

func NewRunner(command, dir string) *Runner {
	return &Runner{command: command, dir: dir}
}

func (r *Runner) Run(ctx context.Context) (bool, string) {
	cmd := exec.CommandContext(ctx, "sh", "-c", r.command)
	cmd.Dir = r.dir
	out, err := cmd.CombinedOutput()
	return err == nil, string(out)
}

package render

import (
	"bytes"
	"context"
	"os/exec"
	"time"

	"github.com/renderlab/renderbench/pkg/errors"
)

// outputTail caps how much renderer output is attached to a failure.
const outputTail = 2048

// invoke runs the renderer once on sceneFile with the working directory set
// to workDir, so the renderer resolves relative assets and writes outfile
// there. Returns the wall-clock duration of the process.
func (r *Runner) invoke(ctx context.Context, sceneFile, workDir, outfile string) (time.Duration, error) {
	cmd := exec.CommandContext(ctx, r.renderer, sceneFile, "--outfile", outfile)
	cmd.Dir = workDir

	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out

	start := time.Now()
	err := cmd.Run()
	elapsed := time.Since(start)

	if err != nil {
		// Cancellation kills the process; report the context error rather
		// than the resulting signal exit.
		if ctx.Err() != nil {
			return elapsed, ctx.Err()
		}
		return elapsed, errors.Wrap(errors.ErrCodeRendererFailed, err,
			"renderer failed on %s: %s", outfile, tail(out.Bytes()))
	}
	return elapsed, nil
}

// tail returns the last portion of renderer output, enough to show the
// error without journaling a full render log.
func tail(b []byte) string {
	if len(b) > outputTail {
		b = b[len(b)-outputTail:]
	}
	return string(bytes.TrimSpace(b))
}

package resource

import (
	"context"
	"io"
)

// PacedWriter wraps an io.Writer so every write first passes the
// controller's IO limiter. A nil controller writes through unchanged.
type PacedWriter struct {
	w   io.Writer
	rc  *Controller
	ctx context.Context
}

// NewPacedWriter creates a PacedWriter governed by rc.
func NewPacedWriter(ctx context.Context, w io.Writer, rc *Controller) *PacedWriter {
	return &PacedWriter{w: w, rc: rc, ctx: ctx}
}

func (w *PacedWriter) Write(p []byte) (int, error) {
	if err := w.rc.PaceIO(w.ctx, len(p)); err != nil {
		return 0, err
	}
	return w.w.Write(p)
}

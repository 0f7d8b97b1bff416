package debugctx

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/go-logr/logr"
	"github.com/go-logr/logr/funcr"
)

type enabledKey struct{}

func WithEnabled(ctx context.Context, enabled bool) context.Context {
	return context.WithValue(ctx, enabledKey{}, enabled)
}

func Enabled(ctx context.Context) bool {
	if ctx == nil {
		return false
	}

	enabled, _ := ctx.Value(enabledKey{}).(bool)
	return enabled
}

// WithWriter installs a logger that renders debug records as single
// "debug: ..." lines on writer.
func WithWriter(ctx context.Context, writer io.Writer) context.Context {
	if writer == nil {
		return ctx
	}

	omitLevel := ""
	logger := funcr.New(func(prefix, args string) {
		line := strings.TrimSpace(args)
		if prefix != "" {
			line = prefix + " " + line
		}
		_, _ = fmt.Fprintf(writer, "debug: %s\n", line)
	}, funcr.Options{LogInfoLevel: &omitLevel})

	return logr.NewContext(ctx, logger)
}

// Logger returns the context logger when debug output is enabled and a
// discarding logger otherwise.
func Logger(ctx context.Context) logr.Logger {
	if !Enabled(ctx) {
		return logr.Discard()
	}
	return logr.FromContextOrDiscard(ctx)
}

func Printf(ctx context.Context, format string, args ...any) {
	if !Enabled(ctx) {
		return
	}

	message := strings.TrimSpace(fmt.Sprintf(format, args...))
	if message == "" {
		return
	}

	Logger(ctx).Info(message)
}

package cmd

import (
	"context"
	"io"
	"os"
	"strings"
)

// session is the per-invocation state a command reads from its context: the
// streams it talks to and how a failure is reported.
type session struct {
	in          io.Reader
	out         io.Writer
	errOut      io.Writer
	errorFormat string
}

type sessionKey struct{}

func sessionFrom(ctx context.Context) session {
	if ctx == nil {
		return session{}
	}
	s, _ := ctx.Value(sessionKey{}).(session)
	return s
}

// withIO binds the command's streams. A nil stream falls back to the
// process's own.
func withIO(ctx context.Context, in io.Reader, out, errOut io.Writer) context.Context {
	s := sessionFrom(ctx)
	s.in, s.out, s.errOut = in, out, errOut
	return context.WithValue(ctx, sessionKey{}, s)
}

// withErrorFormat records the --error-format value, normalized to lower case.
func withErrorFormat(ctx context.Context, format string) context.Context {
	s := sessionFrom(ctx)
	s.errorFormat = strings.ToLower(strings.TrimSpace(format))
	return context.WithValue(ctx, sessionKey{}, s)
}

func errorFormatFromContext(ctx context.Context) string {
	return sessionFrom(ctx).errorFormat
}

func stdinFromContext(ctx context.Context) io.Reader {
	if in := sessionFrom(ctx).in; in != nil {
		return in
	}
	return os.Stdin
}

func stdoutFromContext(ctx context.Context) io.Writer {
	if out := sessionFrom(ctx).out; out != nil {
		return out
	}
	return os.Stdout
}

func stderrFromContext(ctx context.Context) io.Writer {
	if errOut := sessionFrom(ctx).errOut; errOut != nil {
		return errOut
	}
	return os.Stderr
}

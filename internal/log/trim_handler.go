package log

import (
	"context"
	"io"
	"log/slog"
	"unicode/utf8"
)

// DefaultMaxValueLen is the attribute value length at which trimming kicks
// in. Listing pages produce multi-kilobyte HTML fragments; anything longer
// than this in a log line is noise rather than signal.
const DefaultMaxValueLen = 256

// Ellipsis is appended to trimmed values so truncation is visible.
const Ellipsis = "..."

// TrimHandler wraps an slog.Handler and truncates oversized string
// attribute values before passing records to the underlying handler.
// Crawl logging routinely carries raw markup snippets (a container that
// failed extraction, an unexpected pagination control) and those must not
// flood the log output.
//
// Design decision: We use a handler wrapper rather than trimming at each
// call site because:
//  1. It integrates seamlessly with standard slog APIs
//  2. It works with any underlying handler (text, JSON, etc.)
//  3. Call sites stay readable: they log the full value, the handler
//     decides how much of it survives
type TrimHandler struct {
	// handler is the underlying slog handler that receives trimmed records.
	handler slog.Handler

	// maxValueLen is the maximum length of a string attribute value.
	maxValueLen int
}

// TrimHandlerOption configures a TrimHandler.
type TrimHandlerOption func(*TrimHandler)

// WithMaxValueLen overrides the value length limit.
func WithMaxValueLen(n int) TrimHandlerOption {
	return func(h *TrimHandler) {
		if n > 0 {
			h.maxValueLen = n
		}
	}
}

// NewTrimHandler creates a new TrimHandler wrapping the given handler.
// If handler is nil, the returned TrimHandler uses slog.Default().Handler().
func NewTrimHandler(handler slog.Handler, opts ...TrimHandlerOption) *TrimHandler {
	if handler == nil {
		handler = slog.Default().Handler()
	}
	h := &TrimHandler{
		handler:     handler,
		maxValueLen: DefaultMaxValueLen,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Enabled reports whether the handler handles records at the given level.
// It delegates to the underlying handler.
func (h *TrimHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.handler.Enabled(ctx, level)
}

// Handle trims the record's attributes and passes it to the underlying handler.
func (h *TrimHandler) Handle(ctx context.Context, r slog.Record) error {
	trimmed := slog.NewRecord(r.Time, r.Level, r.Message, r.PC)

	r.Attrs(func(a slog.Attr) bool {
		trimmed.AddAttrs(h.trimAttr(a))
		return true
	})

	return h.handler.Handle(ctx, trimmed)
}

// WithAttrs returns a new handler with the given attributes added.
// Attributes are trimmed before being added.
func (h *TrimHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	trimmedAttrs := make([]slog.Attr, len(attrs))
	for i, a := range attrs {
		trimmedAttrs[i] = h.trimAttr(a)
	}
	return &TrimHandler{handler: h.handler.WithAttrs(trimmedAttrs), maxValueLen: h.maxValueLen}
}

// WithGroup returns a new handler with the given group name.
func (h *TrimHandler) WithGroup(name string) slog.Handler {
	return &TrimHandler{handler: h.handler.WithGroup(name), maxValueLen: h.maxValueLen}
}

// trimAttr trims a single attribute, recursively handling groups.
func (h *TrimHandler) trimAttr(a slog.Attr) slog.Attr {
	if a.Value.Kind() == slog.KindGroup {
		attrs := a.Value.Group()
		trimmedAttrs := make([]slog.Attr, len(attrs))
		for i, groupAttr := range attrs {
			trimmedAttrs[i] = h.trimAttr(groupAttr)
		}
		return slog.Attr{Key: a.Key, Value: slog.GroupValue(trimmedAttrs...)}
	}

	if a.Value.Kind() == slog.KindString {
		strVal := a.Value.String()
		if len(strVal) > h.maxValueLen {
			return slog.String(a.Key, truncate(strVal, h.maxValueLen)+Ellipsis)
		}
	}

	return a
}

// truncate cuts s to at most n bytes without splitting a UTF-8 sequence.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}

// NewLogger creates a new slog.Logger whose output is safe to read during a
// long crawl: oversized attribute values (markup snippets, long URLs) are
// truncated by TrimHandler.
//
// Parameters:
//   - w: The io.Writer to write log output to (typically os.Stderr)
//   - verbose: If true, sets log level to Debug; otherwise Warn
func NewLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}

	opts := &slog.HandlerOptions{
		Level: level,
	}

	textHandler := slog.NewTextHandler(w, opts)
	return slog.New(NewTrimHandler(textHandler))
}

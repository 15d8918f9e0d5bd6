package logger

// PrefixLogger prepends a fixed tag to every message before handing it to
// the wrapped logger. Flows use their label as the tag.
type PrefixLogger struct {
	prefix string
	next   Logger
}

// WithPrefix wraps l so that every message starts with prefix and a space.
func WithPrefix(l Logger, prefix string) *PrefixLogger {
	if l == nil {
		l = NewNopLogger()
	}
	return &PrefixLogger{prefix: prefix, next: l}
}

// Prefix returns the tag prepended to every message.
func (p *PrefixLogger) Prefix() string {
	return p.prefix
}

func (p *PrefixLogger) Info(format string, args ...interface{}) {
	p.next.Info(p.prefix+" "+format, args...)
}

func (p *PrefixLogger) Warning(format string, args ...interface{}) {
	p.next.Warning(p.prefix+" "+format, args...)
}

func (p *PrefixLogger) Error(format string, args ...interface{}) {
	p.next.Error(p.prefix+" "+format, args...)
}

// Close does not close the wrapped logger: it is shared with other flows.
func (p *PrefixLogger) Close() error {
	return nil
}

var _ Logger = (*PrefixLogger)(nil)

package combinator

import "github.com/go-logr/logr"

// Trace wraps `p` with a hook that logs every invocation at
// verbosity 1: where it started, whether it succeeded and how much
// input it consumed.  Nothing is logged unless the logger is enabled
// for that level.
func (p *Parser) Trace(logger logr.Logger) *Parser {
	log := logger.V(1).WithValues("parser", p.label, "variant", p.variant.String())
	return p.Around(func(b *Buffer, next ParseFunc) Result {
		if !log.Enabled() {
			return next(b)
		}
		start := b.Position()
		r := next(b)
		if r.Ok() {
			log.Info("matched", "lineage", p.lineage, "position", start, "length", r.Length)
		} else {
			log.Info("failed", "lineage", p.lineage, "position", start, "reason", r.Err.Message)
		}
		return r
	})
}

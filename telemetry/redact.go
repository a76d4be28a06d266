package telemetry

import (
	"context"
	"net/url"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

const redacted = "REDACTED"

// Redactor masks credential values, raw or URL-escaped, in strings bound for logs and spans.
// A nil *Redactor returns its input unchanged.
type Redactor struct {
	r *strings.Replacer
}

func NewRedactor(secrets ...string) *Redactor {
	seen := make(map[string]bool)
	var pairs []string
	for _, s := range secrets {
		for _, form := range []string{s, url.QueryEscape(s), url.PathEscape(s)} {
			if form == "" || seen[form] {
				continue
			}
			seen[form] = true
			pairs = append(pairs, form, redacted)
		}
	}
	if len(pairs) == 0 {
		return nil
	}
	return &Redactor{r: strings.NewReplacer(pairs...)}
}

func (r *Redactor) Redact(s string) string {
	if r == nil {
		return s
	}
	return r.r.Replace(s)
}

// redactingExporter scrubs span names, string attributes, events and status
// before handing spans to the wrapped exporter.
type redactingExporter struct {
	sdktrace.SpanExporter
	redactor *Redactor
}

func (e redactingExporter) ExportSpans(ctx context.Context, spans []sdktrace.ReadOnlySpan) error {
	out := make([]sdktrace.ReadOnlySpan, len(spans))
	for i, s := range spans {
		out[i] = redactedSpan{ReadOnlySpan: s, redactor: e.redactor}
	}
	return e.SpanExporter.ExportSpans(ctx, out)
}

type redactedSpan struct {
	sdktrace.ReadOnlySpan
	redactor *Redactor
}

func (s redactedSpan) Name() string {
	return s.redactor.Redact(s.ReadOnlySpan.Name())
}

func (s redactedSpan) Attributes() []attribute.KeyValue {
	return s.redactAttrs(s.ReadOnlySpan.Attributes())
}

func (s redactedSpan) Events() []sdktrace.Event {
	events := s.ReadOnlySpan.Events()
	out := make([]sdktrace.Event, len(events))
	for i, ev := range events {
		ev.Name = s.redactor.Redact(ev.Name)
		ev.Attributes = s.redactAttrs(ev.Attributes)
		out[i] = ev
	}
	return out
}

func (s redactedSpan) Status() sdktrace.Status {
	st := s.ReadOnlySpan.Status()
	st.Description = s.redactor.Redact(st.Description)
	return st
}

func (s redactedSpan) redactAttrs(attrs []attribute.KeyValue) []attribute.KeyValue {
	out := make([]attribute.KeyValue, len(attrs))
	for i, kv := range attrs {
		if kv.Value.Type() == attribute.STRING {
			kv = attribute.String(string(kv.Key), s.redactor.Redact(kv.Value.AsString()))
		}
		out[i] = kv
	}
	return out
}

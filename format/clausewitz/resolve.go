package clausewitz

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/yacchi/clausewitz/document"
	"golang.org/x/sync/errgroup"
)

// ParseSpan parses a span captured by a shallow parse and returns the
// document for the block it covers. The result equals what a full parse of
// the original input holds for that block; nesting is counted from depth 1
// so the depth bound matches as well.
//
// ParseSpan is safe to call concurrently on different spans.
func ParseSpan(u document.Unparsed, opts ...Option) (*document.Document, error) {
	text := u.Text
	if len(text) < 2 || text[0] != '{' || text[len(text)-1] != '}' {
		return nil, fmt.Errorf("clausewitz: span at offset %d is not a braced block", u.Offset)
	}
	o := newOptions(opts)

	p := &parser{
		s:        scanner{src: text[1 : len(text)-1]},
		maxDepth: o.maxDepth,
		base:     u.Offset + 1,
		depth0:   1,
	}
	doc := document.New()
	if err := p.scope(doc, 1, -1); err != nil {
		return nil, err
	}
	return doc, nil
}

type spanJob struct {
	key   string
	index int // -1 when the span is the entry itself
	span  document.Unparsed
	doc   *document.Document
}

// Resolve replaces every top-level document.Unparsed value in doc, including
// spans inside sequences and anonymous blocks, with the parsed block.
//
// Spans are parsed concurrently, at most WithWorkers at a time. If any span
// fails, the first error is returned and doc is left unchanged. Cancelling
// ctx stops spans that have not started yet.
func Resolve(ctx context.Context, doc *document.Document, opts ...Option) error {
	o := newOptions(opts)

	var jobs []*spanJob
	for k, v := range doc.All() {
		switch val := v.(type) {
		case document.Unparsed:
			jobs = append(jobs, &spanJob{key: k, index: -1, span: val})
		case document.Sequence:
			for i, elem := range val {
				if u, ok := elem.(document.Unparsed); ok {
					jobs = append(jobs, &spanJob{key: k, index: i, span: u})
				}
			}
		}
	}
	if len(jobs) == 0 {
		return nil
	}

	start := time.Now()
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(o.workers)
	for _, job := range jobs {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			parsed, err := ParseSpan(job.span, opts...)
			if err != nil {
				return fmt.Errorf("resolve %q: %w", describe(job), err)
			}
			job.doc = parsed
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	// All spans parsed; only now touch the document.
	for _, job := range jobs {
		block := document.NewBlock(job.doc)
		if job.index < 0 {
			_ = doc.Set(job.key, block)
			continue
		}
		v, _ := doc.Get(job.key)
		v.(document.Sequence)[job.index] = block
	}

	o.log().Debug("resolved shallow spans",
		"spans", len(jobs), "workers", o.workers, "elapsed", time.Since(start))
	return nil
}

func describe(job *spanJob) string {
	var b strings.Builder
	b.WriteString(document.BuildPath(job.key))
	if job.index >= 0 {
		fmt.Fprintf(&b, "/%d", job.index)
	}
	return b.String()
}

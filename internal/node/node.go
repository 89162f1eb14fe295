// Package node runs the dominant-colour pipeline over a batch of input items.
//
// Each item goes read → reduce → format on its own, in order. A failed item
// either aborts the batch or becomes an error result, depending on the Policy.
package node

import (
	"context"
	"fmt"

	"github.com/hashicorp/go-hclog"

	"github.com/jmylchreest/palettenode/internal/colour"
	"github.com/jmylchreest/palettenode/internal/pixels"
)

// PixelReader resolves an image source to pixels.
type PixelReader interface {
	Read(ctx context.Context, src pixels.Source) (*pixels.Grid, error)
}

// Node is the dominant colour extractor.
type Node struct {
	reader   PixelReader
	logger   hclog.Logger
	defaults Request
}

// Option configures a Node.
type Option func(*Node)

// WithReader sets the pixel reader.
func WithReader(r PixelReader) Option {
	return func(n *Node) { n.reader = r }
}

// WithLogger sets the logger.
func WithLogger(l hclog.Logger) Option {
	return func(n *Node) {
		if l != nil {
			n.logger = l
		}
	}
}

// WithDefaults sets the request used for parameters an item omits.
func WithDefaults(r Request) Option {
	return func(n *Node) { n.defaults = r }
}

// New creates a Node.
func New(opts ...Option) *Node {
	n := &Node{
		logger:   hclog.NewNullLogger(),
		defaults: DefaultRequest(),
	}
	for _, opt := range opts {
		opt(n)
	}
	if n.reader == nil {
		n.reader = pixels.NewReader(pixels.WithLogger(n.logger.Named("pixels")))
	}
	return n
}

// Defaults returns the request used for omitted parameters.
func (n *Node) Defaults() Request {
	return n.defaults
}

// Extract reads and reduces the image behind req. The palette is ordered
// most dominant first and carries population weights.
func (n *Node) Extract(ctx context.Context, req Request) (*colour.Palette, error) {
	req, err := req.Normalize()
	if err != nil {
		return nil, err
	}
	return n.extract(ctx, req)
}

func (n *Node) extract(ctx context.Context, req Request) (*colour.Palette, error) {
	reducer, err := colour.NewReducer(req.Algorithm)
	if err != nil {
		return nil, err
	}

	grid, err := n.reader.Read(ctx, req.Source())
	if err != nil {
		return nil, err
	}

	palette, err := reducer.Reduce(grid.Samples(), req.ColorCount)
	if err != nil {
		return nil, err
	}

	n.logger.Debug("extracted palette", "source", req.Source().String(),
		"algorithm", req.Algorithm, "requested", req.ColorCount, "colours", palette.Len())
	return palette, nil
}

// Process runs the whole pipeline for one request.
func (n *Node) Process(ctx context.Context, req Request) (Result, error) {
	req, err := req.Normalize()
	if err != nil {
		return Result{}, err
	}

	palette, err := n.extract(ctx, req)
	if err != nil {
		return Result{}, err
	}

	return NewResult(colour.Format(palette, req.OutputFormat), req.ColorCount), nil
}

// Execute validates and processes each parameter map in order. Omitted
// parameters take the node's defaults.
//
// Under FailFast the first failure is returned as an *ItemError and no
// results are returned. Under CollectErrors failures become error results.
// A cancelled context aborts the batch either way.
func (n *Node) Execute(ctx context.Context, items []Parameters, policy Policy) ([]Result, error) {
	return n.run(ctx, len(items), policy, func(i int) (Result, error) {
		req, err := ParseParameters(items[i], n.defaults)
		if err != nil {
			return Result{}, err
		}
		return n.Process(ctx, req)
	})
}

// ExecuteRequests is Execute for already typed requests.
func (n *Node) ExecuteRequests(ctx context.Context, reqs []Request, policy Policy) ([]Result, error) {
	return n.run(ctx, len(reqs), policy, func(i int) (Result, error) {
		return n.Process(ctx, reqs[i])
	})
}

func (n *Node) run(ctx context.Context, count int, policy Policy, process func(int) (Result, error)) ([]Result, error) {
	results := make([]Result, 0, count)

	for i := range count {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("batch aborted before item %d: %w", i, err)
		}

		res, err := process(i)
		if err != nil {
			if policy != CollectErrors {
				n.logger.Error("item failed, aborting batch", "index", i, "error", err)
				return nil, &ItemError{Index: i, Err: err}
			}
			n.logger.Warn("item failed", "index", i, "error", err)
			res = NewErrorResult(err)
		}

		results = append(results, res)
	}

	return results, nil
}

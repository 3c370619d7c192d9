package assets

import (
	"context"
	"fmt"
	"time"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/zeusync/showroom/internal/core/catalog"
	"github.com/zeusync/showroom/internal/core/scene"
)

// Loader fetches one model. Each call is a single attempt.
type Loader interface {
	Load(ctx context.Context, url string) (*Model, error)
}

// LoaderFunc adapts a function to Loader.
type LoaderFunc func(ctx context.Context, url string) (*Model, error)

func (f LoaderFunc) Load(ctx context.Context, url string) (*Model, error) {
	return f(ctx, url)
}

const plinthHeight = 0.1

// ProxyLoader stands in for a glTF loader: it builds a box hierarchy sized
// from the catalog entry, so picking behaves as it would on the real mesh
// bounds.
type ProxyLoader struct {
	catalog *catalog.Catalog
	latency time.Duration
}

type ProxyOption func(*ProxyLoader)

// WithLatency delays every load, honouring context cancellation.
func WithLatency(d time.Duration) ProxyOption {
	return func(l *ProxyLoader) { l.latency = d }
}

func NewProxyLoader(c *catalog.Catalog, opts ...ProxyOption) *ProxyLoader {
	l := &ProxyLoader{catalog: c}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

func (l *ProxyLoader) Load(ctx context.Context, url string) (*Model, error) {
	if l.latency > 0 {
		t := time.NewTimer(l.latency)
		defer t.Stop()
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-t.C:
		}
	} else if err := ctx.Err(); err != nil {
		return nil, err
	}

	p, ok := l.catalog.Find(url)
	if !ok {
		return nil, fmt.Errorf("%s: not in catalog", url)
	}

	w, h, d := p.Size.Width, p.Size.Height, p.Size.Depth
	mesh := scene.Box(mgl64.Vec3{0, plinthHeight + h/2, 0}, mgl64.Vec3{w, h, d})
	plinth := scene.Box(mgl64.Vec3{0, plinthHeight / 2, 0}, mgl64.Vec3{w * 1.2, plinthHeight, d * 1.2})

	return &Model{
		URL: url,
		Root: &Part{
			Name: p.ID,
			Children: []*Part{
				{Name: "body", Children: []*Part{
					{Name: "mesh", Bounds: &mesh},
				}},
				{Name: "plinth", Bounds: &plinth},
			},
		},
	}, nil
}

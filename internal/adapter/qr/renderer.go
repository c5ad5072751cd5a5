package qr

import (
	"github.com/rotisserie/eris"
	qrcode "github.com/skip2/go-qrcode"

	"github.com/couchcryptid/waterpoints-service/internal/observability"
)

// Renderer encodes sticker links as PNG QR codes and keeps recent images in
// memory. The same content always yields the same image.
type Renderer struct {
	size    int
	cache   *lru[[]byte]
	metrics *observability.Metrics
}

// NewRenderer creates a Renderer producing size x size images. A cacheSize of
// zero disables caching.
func NewRenderer(size, cacheSize int, metrics *observability.Metrics) *Renderer {
	return &Renderer{
		size:    size,
		cache:   newLRU[[]byte](cacheSize),
		metrics: metrics,
	}
}

// PNG returns the QR image for content.
func (r *Renderer) PNG(content string) ([]byte, error) {
	if content == "" {
		return nil, eris.New("qr: empty content")
	}
	if img, ok := r.cache.get(content); ok {
		r.metrics.QRCache.WithLabelValues("hit").Inc()
		return img, nil
	}
	r.metrics.QRCache.WithLabelValues("miss").Inc()

	img, err := qrcode.Encode(content, qrcode.Medium, r.size)
	if err != nil {
		return nil, eris.Wrapf(err, "qr: encode %q", content)
	}
	r.metrics.QRRenders.Inc()
	r.cache.put(content, img)
	return img, nil
}

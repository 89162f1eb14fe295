package pixels

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/gif"  // Register GIF format
	_ "image/jpeg" // Register JPEG format
	_ "image/png"  // Register PNG format
	"io"
	"net/http"
	"os"
	"time"

	"github.com/disintegration/imaging"
	"github.com/hashicorp/go-hclog"
	_ "golang.org/x/image/bmp"  // Register BMP format
	_ "golang.org/x/image/tiff" // Register TIFF format
	_ "golang.org/x/image/webp" // Register WebP format

	"github.com/jmylchreest/palettenode/internal/errdefs"
	"github.com/jmylchreest/palettenode/internal/security"
	httputil "github.com/jmylchreest/palettenode/internal/util/http"
)

// DefaultMaxPayloadBytes caps raw and decompressed image data.
const DefaultMaxPayloadBytes int64 = httputil.DefaultMaxBytes

// acceptImages is sent with http(s) fetches so content-negotiating servers
// return a decodable format.
const acceptImages = "image/png,image/jpeg,image/gif,image/webp,image/bmp,image/tiff;q=0.9,*/*;q=0.5"

// DefaultMaxPixels caps the width x height an image header may declare.
const DefaultMaxPixels int64 = 40_000_000

// Reader resolves a Source and decodes it into a Grid.
type Reader struct {
	client    *http.Client
	timeout   time.Duration
	maxBytes  int64
	maxPixels int64
	logger    hclog.Logger
}

// Option configures a Reader.
type Option func(*Reader)

// WithHTTPClient sets the client used for http(s) sources.
func WithHTTPClient(c *http.Client) Option {
	return func(r *Reader) { r.client = c }
}

// WithTimeout sets the per-request timeout for http(s) sources.
func WithTimeout(d time.Duration) Option {
	return func(r *Reader) { r.timeout = d }
}

// WithMaxBytes caps the size of fetched, read or decompressed image data.
func WithMaxBytes(n int64) Option {
	return func(r *Reader) {
		if n > 0 {
			r.maxBytes = n
		}
	}
}

// WithMaxPixels caps the number of pixels an image may declare. Larger
// images are rejected before any pixel data is decoded.
func WithMaxPixels(n int64) Option {
	return func(r *Reader) {
		if n > 0 {
			r.maxPixels = n
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l hclog.Logger) Option {
	return func(r *Reader) {
		if l != nil {
			r.logger = l
		}
	}
}

// NewReader creates a Reader.
func NewReader(opts ...Option) *Reader {
	r := &Reader{
		timeout:   httputil.DefaultTimeout,
		maxBytes:  DefaultMaxPayloadBytes,
		maxPixels: DefaultMaxPixels,
		logger:    hclog.NewNullLogger(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Read loads src and decodes it. All failures are *errdefs.DecodeError.
func (r *Reader) Read(ctx context.Context, src Source) (*Grid, error) {
	label := src.String()

	data, err := r.load(ctx, src)
	if err != nil {
		return nil, errdefs.NewDecodeError(label, err)
	}

	data, err = decompress(data, r.maxBytes)
	if err != nil {
		return nil, errdefs.NewDecodeError(label, err)
	}

	grid, format, err := decode(data, r.maxPixels)
	if err != nil {
		return nil, errdefs.NewDecodeError(label, err)
	}

	r.logger.Debug("decoded image", "source", label, "kind", src.Kind(), "format", format,
		"width", grid.Width(), "height", grid.Height())
	return grid, nil
}

// load returns the raw bytes behind src.
func (r *Reader) load(ctx context.Context, src Source) ([]byte, error) {
	switch src.Kind() {
	case KindPayload:
		return r.checkSize("payload", src.Payload)

	case KindDataURI:
		data, err := decodeDataURI(src.Location)
		if err != nil {
			return nil, err
		}
		return r.checkSize("data URI body", data)

	case KindURL:
		if err := security.ValidateHTTPURL(src.Location); err != nil {
			return nil, err
		}
		data, err := httputil.Fetch(ctx, src.Location, httputil.FetchOptions{
			Timeout:  r.timeout,
			MaxBytes: r.maxBytes,
			Headers:  map[string]string{"Accept": acceptImages},
			Client:   r.client,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to fetch image from URL: %w", err)
		}
		return data, nil

	default:
		return r.loadFile(src.Location)
	}
}

func (r *Reader) checkSize(what string, data []byte) ([]byte, error) {
	if int64(len(data)) > r.maxBytes {
		return nil, fmt.Errorf("%s of %d bytes: %w", what, len(data), security.ErrLimitExceeded)
	}
	return data, nil
}

func (r *Reader) loadFile(loc string) ([]byte, error) {
	path, err := filePath(loc)
	if err != nil {
		return nil, err
	}
	if path == "" {
		return nil, fmt.Errorf("image source cannot be empty")
	}

	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("image file not found: %s", path)
		}
		return nil, fmt.Errorf("failed to stat image file: %w", err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("path is a directory, not a file: %s", path)
	}

	file, err := os.Open(path) // #nosec G304 - User-specified image path, intended to be read
	if err != nil {
		return nil, fmt.Errorf("failed to open image file: %w", err)
	}
	defer file.Close()

	data, err := io.ReadAll(security.NewLimitedReader(file, r.maxBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read image file: %w", err)
	}
	return data, nil
}

// decode checks the header before paying for a full decode. EXIF orientation
// is applied so the grid matches what a viewer shows.
func decode(data []byte, maxPixels int64) (*Grid, string, error) {
	if len(data) == 0 {
		return nil, "", fmt.Errorf("image data is empty")
	}

	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, "", fmt.Errorf("unsupported or invalid image format: %w", err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return nil, format, fmt.Errorf("image has zero size (%dx%d)", cfg.Width, cfg.Height)
	}
	if n := int64(cfg.Width) * int64(cfg.Height); n > maxPixels {
		return nil, format, fmt.Errorf("image of %dx%d exceeds the pixel limit of %d: %w",
			cfg.Width, cfg.Height, maxPixels, security.ErrLimitExceeded)
	}

	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, format, fmt.Errorf("failed to decode image (format: %s): %w", format, err)
	}

	grid, err := NewGrid(img)
	if err != nil {
		return nil, format, err
	}
	return grid, format, nil
}

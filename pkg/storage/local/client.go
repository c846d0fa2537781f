package local

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"

	"github.com/bandejao/cantina-backend/pkg/config"
)

var allowedImageTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
}

// Client persists uploaded files on local disk and hands back the public
// URL they will be served from.
type Client struct {
	dir           string
	publicBaseURL string
	maxBytes      int64
}

// New prepares the upload directory and returns a client bound to it.
func New(cfg config.UploadsConfig) (*Client, error) {
	if cfg.Dir == "" {
		return nil, fmt.Errorf("uploads dir is required")
	}
	if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating uploads dir: %w", err)
	}
	maxMB := cfg.MaxUploadMB
	if maxMB <= 0 {
		maxMB = 5
	}
	return &Client{
		dir:           cfg.Dir,
		publicBaseURL: strings.TrimSuffix(cfg.PublicBaseURL, "/"),
		maxBytes:      int64(maxMB) << 20,
	}, nil
}

// Dir returns the directory files are written to.
func (c *Client) Dir() string {
	return c.dir
}

// MaxBytes returns the configured upload size ceiling.
func (c *Client) MaxBytes() int64 {
	return c.maxBytes
}

// SaveImage validates the payload is an allowed image type, writes it under
// a generated name and returns the public URL.
func (c *Client) SaveImage(data []byte) (string, error) {
	if len(data) == 0 {
		return "", fmt.Errorf("empty upload")
	}
	if int64(len(data)) > c.maxBytes {
		return "", fmt.Errorf("upload exceeds %d bytes", c.maxBytes)
	}

	detected := mimetype.Detect(data)
	ext, ok := allowedImageTypes[detected.String()]
	if !ok {
		return "", fmt.Errorf("unsupported image type %s", detected.String())
	}

	name := uuid.NewString() + ext
	path := filepath.Join(c.dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("writing upload: %w", err)
	}
	return c.publicBaseURL + "/" + name, nil
}

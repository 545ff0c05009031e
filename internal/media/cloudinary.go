package media

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
)

// Cloudinary uploads objects to a Cloudinary folder.
type Cloudinary struct {
	cld    *cloudinary.Cloudinary
	folder string
}

var _ Store = (*Cloudinary)(nil)

// NewCloudinary creates a Cloudinary store from account credentials.
func NewCloudinary(cloudName, apiKey, apiSecret, folder string) (*Cloudinary, error) {
	if cloudName == "" || apiKey == "" || apiSecret == "" {
		return nil, fmt.Errorf("cloudinary: cloud name, api key and api secret are required")
	}
	cld, err := cloudinary.NewFromParams(cloudName, apiKey, apiSecret)
	if err != nil {
		return nil, fmt.Errorf("cloudinary: %w", err)
	}
	cld.Config.URL.Secure = true
	return &Cloudinary{cld: cld, folder: folder}, nil
}

func (c *Cloudinary) Put(ctx context.Context, name, _ string, r io.Reader) (string, error) {
	publicID := strings.TrimSuffix(filepath.Base(name), filepath.Ext(name))

	res, err := c.cld.Upload.Upload(ctx, r, uploader.UploadParams{
		Folder:   c.folder,
		PublicID: publicID,
	})
	if err != nil {
		return "", fmt.Errorf("%w: cloudinary upload: %v", ErrUpstream, err)
	}
	if res.Error.Message != "" {
		return "", fmt.Errorf("%w: cloudinary: %s", ErrUpstream, res.Error.Message)
	}
	if res.SecureURL == "" {
		return "", fmt.Errorf("%w: cloudinary returned no url", ErrUpstream)
	}
	return res.SecureURL, nil
}

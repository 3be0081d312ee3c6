// Package upload proxies media files to the third-party host before a
// story is submitted. An upload failure never reaches the story
// service; the caller surfaces it as a retryable upload error.
package upload

import (
	"bytes"
	"context"
	"fmt"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
)

type CloudinaryUploader struct {
	cld    *cloudinary.Cloudinary
	preset string
}

// NewCloudinaryUploader builds an uploader from a CLOUDINARY_URL style
// connection string and an unsigned upload preset.
func NewCloudinaryUploader(cloudinaryURL, preset string) (*CloudinaryUploader, error) {
	cld, err := cloudinary.NewFromURL(cloudinaryURL)
	if err != nil {
		return nil, fmt.Errorf("failed to init cloudinary: %w", err)
	}
	return &CloudinaryUploader{cld: cld, preset: preset}, nil
}

// Upload pushes the media to Cloudinary and returns its secure URL.
func (u *CloudinaryUploader) Upload(ctx context.Context, data []byte, filename string) (string, error) {
	resp, err := u.cld.Upload.Upload(ctx, bytes.NewReader(data), uploader.UploadParams{
		UploadPreset: u.preset,
		PublicID:     filename,
		ResourceType: "auto",
	})
	if err != nil {
		return "", fmt.Errorf("cloudinary upload failed: %w", err)
	}
	return resp.SecureURL, nil
}

package services

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/google/uuid"
)

// uploadFolder groups all marketplace images on the Cloudinary side.
const uploadFolder = "save-agri/farmers"

// Uploader stores an image and returns a durable URL. The rest of the
// backend treats that URL as an opaque string.
type Uploader interface {
	UploadImage(ctx context.Context, file multipart.File, header *multipart.FileHeader) (string, error)
}

// CloudinaryService implements Uploader against Cloudinary.
type CloudinaryService struct {
	cld *cloudinary.Cloudinary
}

var _ Uploader = (*CloudinaryService)(nil)

func NewCloudinaryService(cloudName, apiKey, apiSecret string) (*CloudinaryService, error) {
	cld, err := cloudinary.NewFromParams(cloudName, apiKey, apiSecret)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Cloudinary: %w", err)
	}
	return &CloudinaryService{cld: cld}, nil
}

// UploadImage pushes the file to Cloudinary under a random public id and
// returns its secure URL.
func (s *CloudinaryService) UploadImage(ctx context.Context, file multipart.File, header *multipart.FileHeader) (string, error) {
	if err := checkImageType(header); err != nil {
		return "", err
	}

	fileBytes, err := io.ReadAll(file)
	if err != nil {
		return "", fmt.Errorf("failed to read file: %w", err)
	}

	result, err := s.cld.Upload.Upload(ctx, fileBytes, uploader.UploadParams{
		Folder:       uploadFolder,
		PublicID:     uuid.NewString(),
		ResourceType: "image",
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload to Cloudinary: %w", err)
	}
	return result.SecureURL, nil
}

// ErrUnsupportedImageType is returned for anything but JPEG and PNG uploads.
var ErrUnsupportedImageType = fmt.Errorf("only JPEG and PNG images are accepted")

func checkImageType(header *multipart.FileHeader) error {
	switch header.Header.Get("Content-Type") {
	case "image/jpeg", "image/png":
		return nil
	default:
		return ErrUnsupportedImageType
	}
}

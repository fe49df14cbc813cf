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

// BlobStore is the blob-store collaborator: put/delete/url-for-key, backed
// by Cloudinary. Used for profile pictures and book cover images.
type BlobStore struct {
	cld *cloudinary.Cloudinary
}

func NewBlobStore(cloudName, apiKey, apiSecret string) (*BlobStore, error) {
	cld, err := cloudinary.NewFromParams(cloudName, apiKey, apiSecret)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Cloudinary: %w", err)
	}
	return &BlobStore{cld: cld}, nil
}

// Put uploads a file under a fresh key inside the given folder and returns
// the key and the public URL.
func (s *BlobStore) Put(ctx context.Context, file multipart.File, folder string) (key, url string, err error) {
	fileBytes, err := io.ReadAll(file)
	if err != nil {
		return "", "", fmt.Errorf("failed to read file: %w", err)
	}

	key = uuid.NewString()
	result, err := s.cld.Upload.Upload(ctx, fileBytes, uploader.UploadParams{
		PublicID:     key,
		Folder:       folder,
		ResourceType: "auto",
	})
	if err != nil {
		return "", "", fmt.Errorf("failed to upload to Cloudinary: %w", err)
	}

	return result.PublicID, result.SecureURL, nil
}

// PutFromHeader opens a multipart file header and uploads its contents,
// closing the file when done. Handlers that get a header from FormFile
// should use this instead of Put.
func (s *BlobStore) PutFromHeader(ctx context.Context, fileHeader *multipart.FileHeader, folder string) (key, url string, err error) {
	file, err := fileHeader.Open()
	if err != nil {
		return "", "", fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	return s.Put(ctx, file, folder)
}

// Delete removes an object by key. Deleting a missing key is not an error.
func (s *BlobStore) Delete(ctx context.Context, key string) error {
	if key == "" {
		return nil
	}
	_, err := s.cld.Upload.Destroy(ctx, uploader.DestroyParams{PublicID: key})
	return err
}

// URLFor returns the delivery URL for a stored key.
func (s *BlobStore) URLFor(key string) (string, error) {
	img, err := s.cld.Image(key)
	if err != nil {
		return "", err
	}
	return img.String()
}

package utils

import (
	"bytes"
	"image"
	"net/http"
	"path"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"
)

const MaxUploadSizeBytes int64 = 5 * 1024 * 1024

// Profile photos are bounded to this many pixels on the longer side.
const profileImageMaxSide = 512

type UploadKind string

const (
	UploadProfilePhoto UploadKind = "profile"
	UploadReceipt      UploadKind = "receipts"
)

var imageMimeTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
}

var receiptMimeTypes = map[string]bool{
	"image/jpeg":      true,
	"image/png":       true,
	"application/pdf": true,
}

// PreparedUpload is a validated file ready for a FileStore.
type PreparedUpload struct {
	ObjectKey   string
	Data        []byte
	ContentType string
}

// PrepareUpload sniffs and validates data for kind. Profile photos are
// re-encoded and bounded in size.
func PrepareUpload(prefix string, kind UploadKind, data []byte) (*PreparedUpload, error) {
	if len(data) == 0 {
		return nil, ValidationError("No file uploaded")
	}
	if int64(len(data)) > MaxUploadSizeBytes {
		return nil, ValidationError("file size exceeds 5MB limit")
	}

	mimeType := http.DetectContentType(data)
	allowed := receiptMimeTypes
	if kind == UploadProfilePhoto {
		allowed = imageMimeTypes
	}
	if !allowed[mimeType] {
		return nil, ValidationError("unsupported file type: %s", mimeType)
	}

	if kind == UploadProfilePhoto {
		normalized, err := normalizeImage(data, mimeType)
		if err != nil {
			return nil, ValidationError("invalid image")
		}
		data = normalized
	}

	return &PreparedUpload{
		ObjectKey:   path.Join(prefix, string(kind), uuid.NewString()+extensionFromMimeType(mimeType)),
		Data:        data,
		ContentType: mimeType,
	}, nil
}

func normalizeImage(data []byte, mimeType string) ([]byte, error) {
	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, err
	}
	img = boundImage(img, profileImageMaxSide)

	format := imaging.JPEG
	if mimeType == "image/png" {
		format = imaging.PNG
	}
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, format, imaging.JPEGQuality(85)); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func boundImage(img image.Image, maxSide int) image.Image {
	b := img.Bounds()
	if b.Dx() <= maxSide && b.Dy() <= maxSide {
		return img
	}
	if b.Dx() >= b.Dy() {
		return imaging.Resize(img, maxSide, 0, imaging.Lanczos)
	}
	return imaging.Resize(img, 0, maxSide, imaging.Lanczos)
}

func extensionFromMimeType(mimeType string) string {
	switch mimeType {
	case "image/jpeg":
		return ".jpg"
	case "image/png":
		return ".png"
	case "application/pdf":
		return ".pdf"
	}
	return ""
}

package vision

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/facegate/backend/models"
	"github.com/rwcarlsen/goexif/exif"
)

// DecodeFrame turns an encoded camera frame into a decoded pixel buffer.
// The input is either a base64 data URL ("data:image/jpeg;base64,...") as
// sent by browsers, or bare base64 image bytes. Uploaded photos carrying an
// EXIF orientation tag are rotated upright so detection coordinates match
// what the user saw.
func DecodeFrame(encoded string) (image.Image, error) {
	payload := strings.TrimSpace(encoded)
	if payload == "" {
		return nil, fmt.Errorf("%w: empty frame data", models.ErrInvalidFrame)
	}
	if idx := strings.Index(payload, ","); strings.HasPrefix(payload, "data:") && idx >= 0 {
		payload = payload[idx+1:]
	}

	raw, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: bad base64 encoding: %v", models.ErrInvalidFrame, err)
	}

	img, err := imaging.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("%w: undecodable image data: %v", models.ErrInvalidFrame, err)
	}

	return applyOrientation(raw, img), nil
}

// applyOrientation rotates/flips the image according to its EXIF orientation
// tag. Frames without EXIF data pass through untouched.
func applyOrientation(raw []byte, img image.Image) image.Image {
	meta, err := exif.Decode(bytes.NewReader(raw))
	if err != nil {
		return img
	}
	tag, err := meta.Get(exif.Orientation)
	if err != nil {
		return img
	}
	orientation, err := tag.Int(0)
	if err != nil {
		return img
	}

	switch orientation {
	case 2:
		return imaging.FlipH(img)
	case 3:
		return imaging.Rotate180(img)
	case 4:
		return imaging.FlipV(img)
	case 5:
		return imaging.Transpose(img)
	case 6:
		return imaging.Rotate270(img)
	case 7:
		return imaging.Transverse(img)
	case 8:
		return imaging.Rotate90(img)
	}
	return img
}

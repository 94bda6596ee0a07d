package assets

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/tidwall/gjson"
	_ "golang.org/x/image/webp"
)

var (
	ErrEmptyAsset   = errors.New("asset is empty")
	ErrInvalidModel = errors.New("invalid glTF model")
)

// glbMagic is the little-endian "glTF" header of binary glTF files.
const glbMagic = 0x46546C67

func decodeImage(data []byte) error {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("decode image: %w", err)
	}
	if cfg.Width == 0 || cfg.Height == 0 {
		return fmt.Errorf("decode image: empty dimensions %dx%d", cfg.Width, cfg.Height)
	}
	return nil
}

// decodeMedia sniffs the content type and requires it to belong to family
// ("audio" or "video"). Ogg containers are accepted for both.
func decodeMedia(data []byte, family string) error {
	if len(data) == 0 {
		return ErrEmptyAsset
	}

	detected := mimetype.Detect(data)
	for m := detected; m != nil; m = m.Parent() {
		if strings.HasPrefix(m.String(), family+"/") || m.Is("application/ogg") {
			return nil
		}
	}
	return fmt.Errorf("unsupported %s format: %s", family, detected.String())
}

// decodeModel accepts binary glTF version 2 or a glTF JSON document that
// declares asset.version.
func decodeModel(data []byte) error {
	if len(data) >= 12 && binary.LittleEndian.Uint32(data[0:4]) == glbMagic {
		if version := binary.LittleEndian.Uint32(data[4:8]); version != 2 {
			return fmt.Errorf("%w: unsupported GLB version %d", ErrInvalidModel, version)
		}
		return nil
	}

	if !gjson.ValidBytes(data) {
		return fmt.Errorf("%w: not JSON", ErrInvalidModel)
	}
	version := gjson.GetBytes(data, "asset.version")
	if !version.Exists() || version.String() == "" {
		return fmt.Errorf("%w: missing asset.version", ErrInvalidModel)
	}
	return nil
}

func decodeGeneric(data []byte) error {
	if len(data) == 0 {
		return ErrEmptyAsset
	}
	return nil
}

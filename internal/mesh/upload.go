package mesh

import (
	"bytes"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

var (
	// ErrUnsupportedExtension rejects uploads other than .fbx and .glb.
	ErrUnsupportedExtension = errors.New("please upload an FBX or GLB file")
	ErrEmptyUpload          = errors.New("empty upload")
	ErrTooLarge             = errors.New("upload exceeds size limit")
	// ErrInvalidGLB is returned when a GLB payload lacks the binary glTF header.
	ErrInvalidGLB = errors.New("not a binary glTF file")
)

type Format string

const (
	FormatGLB Format = "glb"
	FormatFBX Format = "fbx"
)

// ValidateUpload checks the filename extension, case-insensitively.
func ValidateUpload(filename string) (Format, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".glb":
		return FormatGLB, nil
	case ".fbx":
		return FormatFBX, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedExtension, filename)
}

var glbMagic = []byte("glTF")

// CheckGLB verifies the 12 byte GLB header: magic "glTF" and version 2.
func CheckGLB(data []byte) error {
	if len(data) < 12 || !bytes.Equal(data[:4], glbMagic) {
		return ErrInvalidGLB
	}
	if v := uint32(data[4]) | uint32(data[5])<<8 | uint32(data[6])<<16 | uint32(data[7])<<24; v != 2 {
		return fmt.Errorf("%w: version %d", ErrInvalidGLB, v)
	}
	return nil
}

// glbName swaps the extension of an FBX filename for .glb.
func glbName(name string) string {
	return strings.TrimSuffix(name, filepath.Ext(name)) + ".glb"
}

package handler

import (
	"bytes"
	"fmt"
	"io"

	"github.com/gofiber/fiber/v2"

	"go-stockyng/internal/service"
)

const maxImageSize = 10 << 20

// imageFrom reads the optional multipart "image" part.
func imageFrom(c *fiber.Ctx) (*service.Image, error) {
	fh, err := c.FormFile("image")
	if err != nil {
		return nil, nil
	}
	if fh.Size > maxImageSize {
		return nil, fmt.Errorf("image larger than %d bytes", maxImageSize)
	}
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		return nil, err
	}
	return &service.Image{Body: bytes.NewReader(data), ContentType: fh.Header.Get("Content-Type")}, nil
}

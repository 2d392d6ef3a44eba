package inkwell

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/labstack/echo/v4"
	"golang.org/x/image/draw"
)

const (
	avatarSize      = 256
	jpegQuality     = 85
	maxAvatarUpload = 5 << 20 // 5MB
	avatarsSubdir   = "avatars"
)

// processAvatar decodes an image from src, crops it to a centered square,
// scales it to avatarSize and encodes it as JPEG.
func processAvatar(src io.Reader) ([]byte, error) {
	img, _, err := image.Decode(src)
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}

	b := img.Bounds()
	side := min(b.Dx(), b.Dy())
	if side == 0 {
		return nil, fmt.Errorf("decode image: empty image")
	}
	x0 := b.Min.X + (b.Dx()-side)/2
	y0 := b.Min.Y + (b.Dy()-side)/2
	crop := image.Rect(x0, y0, x0+side, y0+side)

	size := min(side, avatarSize)
	dst := image.NewRGBA(image.Rect(0, 0, size, size))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, crop, draw.Over, nil)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, dst, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return nil, fmt.Errorf("encode jpeg: %w", err)
	}
	return buf.Bytes(), nil
}

func (a *App) handleAvatarUpload(c echo.Context) error {
	user := c.Get(ctxViewer).(User)

	file, err := c.FormFile("avatar")
	if err != nil {
		return c.String(http.StatusBadRequest, "No image file provided")
	}
	if file.Size > maxAvatarUpload {
		return c.String(http.StatusBadRequest, "File too large (max 5MB)")
	}
	src, err := file.Open()
	if err != nil {
		return err
	}
	defer src.Close()

	data, err := processAvatar(src)
	if err != nil {
		return c.String(http.StatusBadRequest, "Invalid image: "+err.Error())
	}

	dir := filepath.Join(a.Config.UploadDir, avatarsSubdir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create avatars dir: %w", err)
	}
	filename := user.ID + ".jpg"
	if err := os.WriteFile(filepath.Join(dir, filename), data, 0o644); err != nil {
		return fmt.Errorf("write avatar: %w", err)
	}

	// The version query busts browser caches when an avatar is replaced.
	public := fmt.Sprintf("/uploads/%s/%s?v=%d", avatarsSubdir, filename, time.Now().Unix())
	if err := a.Store.SetAvatar(c.Request().Context(), user.ID, public); err != nil {
		return err
	}
	a.invalidate()
	return c.Redirect(http.StatusSeeOther, a.paths.Admin()+"profile/")
}

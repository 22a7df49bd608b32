// Package web serves cook session media files for the reference server.
package web

import (
	"io"
	"io/fs"
	"mime"
	"net/http"
	"path"
	"strings"

	"github.com/labstack/echo/v4"
)

// RegisterMediaRoutes serves the files of fsys under prefix, laid out as
// <cookfile id>/<file> and <cookfile id>/thumbs/<file>. A missing thumbnail
// falls back to the full-size image.
func RegisterMediaRoutes(e *echo.Echo, prefix string, fsys fs.FS) {
	e.GET(prefix+"*", func(c echo.Context) error {
		name, ok := cleanName(c.Param("*"))
		if !ok {
			return echo.NewHTTPError(http.StatusNotFound, "media not found")
		}
		if !isFile(fsys, name) {
			fallback, ok := thumbFallback(name)
			if !ok || !isFile(fsys, fallback) {
				return echo.NewHTTPError(http.StatusNotFound, "media not found")
			}
			name = fallback
		}
		return serveFile(c, fsys, name)
	})
}

func cleanName(raw string) (string, bool) {
	name := path.Clean("/" + raw)
	name = strings.TrimPrefix(name, "/")
	if name == "" || !fs.ValidPath(name) {
		return "", false
	}
	return name, true
}

// thumbFallback maps <id>/thumbs/<file> to <id>/<file>.
func thumbFallback(name string) (string, bool) {
	dir, file := path.Split(name)
	dir = strings.TrimSuffix(dir, "/")
	if path.Base(dir) != "thumbs" {
		return "", false
	}
	return path.Join(path.Dir(dir), file), true
}

func isFile(fsys fs.FS, name string) bool {
	info, err := fs.Stat(fsys, name)
	return err == nil && !info.IsDir()
}

func serveFile(c echo.Context, fsys fs.FS, name string) error {
	f, err := fsys.Open(name)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "media not found")
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to stat media")
	}
	if rs, ok := f.(io.ReadSeeker); ok {
		http.ServeContent(c.Response(), c.Request(), info.Name(), info.ModTime(), rs)
		return nil
	}

	content, err := io.ReadAll(f)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to read media")
	}
	contentType := mime.TypeByExtension(path.Ext(name))
	if contentType == "" {
		contentType = http.DetectContentType(content)
	}
	return c.Blob(http.StatusOK, contentType, content)
}

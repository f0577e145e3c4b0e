package canvasrenderer

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"strings"

	"github.com/tdewolff/canvas"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/ByLCY/quire/element"
)

// imageSource 返回图片地址：优先 URL，其次 Value（内容模型中图片数据通常保存在 value）。
func imageSource(el *element.Element) string {
	if el.URL != "" {
		return el.URL
	}
	return el.Value
}

// drawImage 将图片缩放到 width×height（px）绘制在 (x, y)。
func (r *Renderer) drawImage(ctx *canvas.Context, el *element.Element, x, y, width, height float64) error {
	src := imageSource(el)
	if src == "" || width <= 0 || height <= 0 {
		return nil
	}
	img, err := r.loadImage(src)
	if err != nil {
		return err
	}
	bounds := img.Bounds()
	if bounds.Dx() == 0 || bounds.Dy() == 0 {
		return nil
	}
	// canvas 按分辨率决定绘制尺寸，宽高比不同时按宽度对齐
	dpmm := float64(bounds.Dx()) / mm(width)
	ctx.DrawImage(mm(x), mm(y), img, canvas.DPMM(dpmm))
	return nil
}

func (r *Renderer) loadImage(src string) (image.Image, error) {
	r.imageMu.Lock()
	defer r.imageMu.Unlock()
	if img, ok := r.images[src]; ok {
		return img, nil
	}
	data, err := r.imageBytes(src)
	if err != nil {
		return nil, err
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("解码图片 %s 失败: %w", shorten(src), err)
	}
	r.images[src] = img
	return img, nil
}

func (r *Renderer) imageBytes(src string) ([]byte, error) {
	switch {
	case strings.HasPrefix(src, "data:"):
		_, payload, ok := strings.Cut(src, ",")
		if !ok || !strings.Contains(src[:len(src)-len(payload)], ";base64") {
			return nil, fmt.Errorf("不支持的图片数据 %s", shorten(src))
		}
		data, err := base64.StdEncoding.DecodeString(payload)
		if err != nil {
			return nil, fmt.Errorf("解析图片数据失败: %w", err)
		}
		return data, nil
	case strings.HasPrefix(src, "built-in:") || strings.HasPrefix(src, "builtin:"):
		name := strings.TrimPrefix(strings.TrimPrefix(src, "built-in:"), "builtin:")
		blob, ok := r.imageBlobs[name]
		if !ok {
			return nil, fmt.Errorf("找不到内置图片资源 built-in:%s", name)
		}
		return blob, nil
	}
	if r.baseDir == "" && !filepath.IsAbs(src) {
		return nil, fmt.Errorf("未指定资源目录时不允许直接使用路径：%s（请改用 built-in: 或 data:）", src)
	}
	path := src
	if !filepath.IsAbs(path) {
		path = filepath.Join(r.baseDir, path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("读取图片 %s 失败: %w", src, err)
	}
	return data, nil
}

func shorten(s string) string {
	if len(s) > 48 {
		return s[:48] + "..."
	}
	return s
}

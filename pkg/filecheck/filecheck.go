package filecheck

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"net/http"
	"strings"

	_ "golang.org/x/image/webp"
)

const (
	MaxImageSize int64 = 5 << 20
	MaxVideoSize int64 = 100 << 20

	videoHeadSize = 100
)

var (
	ErrEmpty         = errors.New("文件不能为空")
	ErrFileName      = errors.New("文件名无效")
	ErrTooLarge      = errors.New("文件大小超出限制")
	ErrType          = errors.New("文件类型不支持")
	ErrTypeMismatch  = errors.New("文件内容与声明类型不一致")
	ErrSignature     = errors.New("文件头校验失败")
	ErrCorruptImage  = errors.New("图片无法解析")
	ErrVideoContents = errors.New("视频容器格式校验失败")
)

var imageTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

var videoTypes = map[string]string{
	"video/mp4":       ".mp4",
	"video/quicktime": ".mov",
	"video/avi":       ".avi",
	"video/x-msvideo": ".avi",
}

// ImageExt 返回图片类型对应的扩展名
func ImageExt(contentType string) string { return imageTypes[normalize(contentType)] }

// VideoExt 返回视频类型对应的扩展名
func VideoExt(contentType string) string { return videoTypes[normalize(contentType)] }

func normalize(contentType string) string {
	ct := strings.ToLower(strings.TrimSpace(contentType))
	if i := strings.Index(ct, ";"); i >= 0 {
		ct = strings.TrimSpace(ct[:i])
	}
	if ct == "image/jpg" {
		ct = "image/jpeg"
	}
	return ct
}

func checkName(filename string) error {
	if strings.TrimSpace(filename) == "" || strings.Contains(filename, "..") {
		return ErrFileName
	}
	return nil
}

// CheckImage 校验图片，返回规范化后的 content type，读完后 r 会回到起始位置
func CheckImage(filename, declared string, size int64, r io.ReadSeeker) (string, error) {
	if err := checkName(filename); err != nil {
		return "", err
	}
	if size <= 0 {
		return "", ErrEmpty
	}
	if size > MaxImageSize {
		return "", ErrTooLarge
	}
	ct := normalize(declared)
	if _, ok := imageTypes[ct]; !ok {
		return "", fmt.Errorf("%w: %s", ErrType, declared)
	}

	head := make([]byte, 512)
	n, err := io.ReadFull(r, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) {
		return "", ErrEmpty
	}
	head = head[:n]

	if detected := normalize(http.DetectContentType(head)); detected != ct {
		return "", fmt.Errorf("%w: declared %s detected %s", ErrTypeMismatch, ct, detected)
	}
	if !matchImageMagic(ct, head) {
		return "", ErrSignature
	}

	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return "", err
	}
	if _, _, err := image.DecodeConfig(r); err != nil {
		return "", fmt.Errorf("%w: %v", ErrCorruptImage, err)
	}
	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return "", err
	}
	return ct, nil
}

func matchImageMagic(ct string, head []byte) bool {
	switch ct {
	case "image/jpeg":
		return bytes.HasPrefix(head, []byte{0xFF, 0xD8, 0xFF})
	case "image/png":
		return bytes.HasPrefix(head, []byte{0x89, 0x50, 0x4E, 0x47})
	case "image/gif":
		return bytes.HasPrefix(head, []byte("GIF8"))
	case "image/webp":
		return len(head) >= 12 && bytes.Equal(head[:4], []byte("RIFF")) && bytes.Equal(head[8:12], []byte("WEBP"))
	}
	return false
}

// CheckVideo 校验视频大小、类型和容器头，读完后 r 会回到起始位置
func CheckVideo(filename, declared string, size int64, r io.ReadSeeker) (string, error) {
	if err := checkName(filename); err != nil {
		return "", err
	}
	if size <= 0 {
		return "", ErrEmpty
	}
	if size > MaxVideoSize {
		return "", ErrTooLarge
	}
	ct := normalize(declared)
	if _, ok := videoTypes[ct]; !ok {
		return "", fmt.Errorf("%w: %s", ErrType, declared)
	}

	head := make([]byte, videoHeadSize)
	n, err := io.ReadFull(r, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) {
		return "", ErrEmpty
	}
	head = head[:n]

	switch ct {
	case "video/mp4", "video/quicktime":
		if !bytes.Contains(head, []byte("ftyp")) && !bytes.Contains(head, []byte("moov")) && !bytes.Contains(head, []byte("mdat")) {
			return "", ErrVideoContents
		}
	case "video/avi", "video/x-msvideo":
		if !bytes.HasPrefix(head, []byte("RIFF")) {
			return "", ErrVideoContents
		}
	}

	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return "", err
	}
	return ct, nil
}

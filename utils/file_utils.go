// utils/file_utils.go
package utils

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"
	ffmpeg "github.com/u2takey/ffmpeg-go"
)

const uploadsRoot = "uploads"

// SaveBookingMedia stores a before/after photo or video uploaded by a driver
// and generates a thumbnail. Returns the media URL and the thumbnail URL
// (empty for images without a resize, never empty for videos).
func SaveBookingMedia(data []byte, bookingID, ext, mediaType string) (string, string, error) {
	if mediaType != "image" && mediaType != "video" {
		return "", "", fmt.Errorf("invalid media type %q", mediaType)
	}
	if ext == "" {
		if mediaType == "image" {
			ext = ".jpg"
		} else {
			ext = ".mp4"
		}
	}

	name := uuid.New().String()
	dir := filepath.Join(uploadsRoot, "bookings", bookingID)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", "", fmt.Errorf("failed to create media directory: %w", err)
	}

	mediaPath := filepath.Join(dir, name+ext)
	if err := os.WriteFile(mediaPath, data, 0644); err != nil {
		return "", "", fmt.Errorf("failed to write media file: %w", err)
	}

	var thumbPath string
	var err error
	switch mediaType {
	case "image":
		thumbPath, err = imageThumbnail(data, dir, name)
	case "video":
		thumbPath, err = videoThumbnail(mediaPath, dir, name)
	}
	if err != nil {
		// The media itself is saved; a missing thumbnail is not fatal.
		Logger.Warnw("failed to generate thumbnail", "path", mediaPath, "error", err)
		thumbPath = ""
	}

	return "/" + filepath.ToSlash(mediaPath), urlFor(thumbPath), nil
}

func urlFor(path string) string {
	if path == "" {
		return ""
	}
	return "/" + filepath.ToSlash(path)
}

// imageThumbnail writes a 320px-wide resize of the image
func imageThumbnail(data []byte, dir, name string) (string, error) {
	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("failed to decode image: %w", err)
	}

	resized := imaging.Resize(img, 320, 0, imaging.Lanczos)
	thumbPath := filepath.Join(dir, name+"_thumb.jpg")
	if err := imaging.Save(resized, thumbPath); err != nil {
		return "", fmt.Errorf("failed to save thumbnail: %w", err)
	}
	return thumbPath, nil
}

// videoThumbnail grabs the first second's frame via ffmpeg and resizes it
func videoThumbnail(videoPath, dir, name string) (string, error) {
	framePath := filepath.Join(dir, name+"_frame.jpg")
	err := ffmpeg.Input(videoPath).
		Output(framePath, ffmpeg.KwArgs{"vframes": 1, "ss": "00:00:01"}).
		OverWriteOutput().
		Run()
	if err != nil {
		return "", fmt.Errorf("ffmpeg frame extraction failed: %w", err)
	}

	frameData, err := os.ReadFile(framePath)
	if err != nil {
		return "", err
	}
	thumbPath, err := imageThumbnail(frameData, dir, name)
	os.Remove(framePath)
	return thumbPath, err
}

// MediaExt returns a safe extension for an uploaded filename
func MediaExt(filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".jpg", ".jpeg", ".png", ".gif", ".mp4", ".mov", ".webm":
		return ext
	}
	return ""
}

package helpers

import (
	"crypto/sha1"
	"encoding/hex"
	"net/url"
	"path"
	"strings"
	"unicode"
)

var imageExts = map[string]string{
	".jpg":  ".jpg",
	".jpeg": ".jpg",
	".png":  ".png",
	".gif":  ".gif",
	".webp": ".webp",
}

// TitleStem joins the first n words of title, keeping only letters and digits
func TitleStem(title string, n int) string {
	var b strings.Builder
	for i, word := range strings.Fields(title) {
		if i >= n {
			break
		}
		for _, r := range word {
			if unicode.IsLetter(r) || unicode.IsDigit(r) {
				b.WriteRune(r)
			}
		}
	}
	if b.Len() == 0 {
		return "image"
	}
	return b.String()
}

// ShortHash returns the first 8 hex digits of the SHA-1 of s
func ShortHash(s string) string {
	sum := sha1.Sum([]byte(s))
	return hex.EncodeToString(sum[:4])
}

// ImageExt returns the picture extension of rawURL, ".jpg" when unknown
func ImageExt(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ".jpg"
	}
	if ext, ok := imageExts[strings.ToLower(path.Ext(u.Path))]; ok {
		return ext
	}
	return ".jpg"
}

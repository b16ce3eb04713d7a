package scanner

import (
	"path/filepath"
	"strings"
)

// VideoExtensions contains the file extensions treated as media files when
// scanning a local folder.
var VideoExtensions = map[string]bool{
	".mkv":  true,
	".mp4":  true,
	".avi":  true,
	".m4v":  true,
	".ts":   true,
	".wmv":  true,
	".mov":  true,
	".webm": true,
	".mpg":  true,
	".mpeg": true,
	".m2ts": true,
	".iso":  true,
}

// SampleFileIndicators are name words marking extras that are not the
// feature itself.
var SampleFileIndicators = []string{
	"sample",
	"trailer",
	"proof",
	"featurette",
}

// IsVideoFile checks if a filename has a video extension.
func IsVideoFile(filename string) bool {
	return VideoExtensions[strings.ToLower(filepath.Ext(filename))]
}

// IsSampleFile reports whether one of the words of the name (extension
// excluded) is a sample indicator. "The.Sampler.2020.mkv" is not a sample.
func IsSampleFile(filename string) bool {
	base := strings.TrimSuffix(filename, filepath.Ext(filename))
	for _, word := range nameToken.FindAllString(strings.ToLower(base), -1) {
		for _, indicator := range SampleFileIndicators {
			if word == indicator {
				return true
			}
		}
	}
	return false
}

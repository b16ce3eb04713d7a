package scanner

import (
	"testing"
)

func TestIsVideoFile(t *testing.T) {
	tests := []struct {
		filename string
		want     bool
	}{
		{"movie.mkv", true},
		{"movie.MKV", true},
		{"movie.mp4", true},
		{"movie.avi", true},
		{"movie.m2ts", true},
		{"Movie.With.Dots.In.Name.mkv", true},

		{"movie.srt", false},
		{"movie.nfo", false},
		{"movie.jpg", false},
		{"movie.mkv.txt", false},
		{"movie", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.filename, func(t *testing.T) {
			got := IsVideoFile(tt.filename)
			if got != tt.want {
				t.Errorf("IsVideoFile(%q) = %v, want %v", tt.filename, got, tt.want)
			}
		})
	}
}

func TestIsSampleFile(t *testing.T) {
	tests := []struct {
		filename string
		want     bool
	}{
		{"sample.mkv", true},
		{"SAMPLE.mkv", true},
		{"movie-sample.mkv", true},
		{"movie.sample.mkv", true},
		{"Movie.2020.Trailer.mp4", true},
		{"movie-proof.mkv", true},
		{"Movie (2020) - Featurette.mkv", true},

		{"movie.mkv", false},
		{"The.Sampler.2020.mkv", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.filename, func(t *testing.T) {
			got := IsSampleFile(tt.filename)
			if got != tt.want {
				t.Errorf("IsSampleFile(%q) = %v, want %v", tt.filename, got, tt.want)
			}
		})
	}
}

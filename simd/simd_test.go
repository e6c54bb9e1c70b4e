package simd

import "testing"

func TestIsASCII(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		want bool
	}{
		{"empty", nil, true},
		{"short ascii", []byte("hi"), true},
		{"short non-ascii", []byte("h\xffi"), false},
		{"long ascii", []byte("the quick brown fox jumps over the lazy dog"), true},
		{"long with trailing non-ascii", []byte("the quick brown fox jumps over the lazy dog\xc3\xa9"), false},
		{"exactly eight ascii", []byte("12345678"), true},
		{"exactly eight with high bit", []byte("1234567\x80"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsASCII(tt.data); got != tt.want {
				t.Errorf("IsASCII(%q) = %v, want %v", tt.data, got, tt.want)
			}
		})
	}
}

func TestMemchr(t *testing.T) {
	tests := []struct {
		name     string
		haystack string
		needle   byte
		want     int
	}{
		{"empty", "", 'a', -1},
		{"not found short", "bcd", 'a', -1},
		{"not found long", "bcdefghijklmnop", 'a', -1},
		{"found first byte", "abc", 'a', 0},
		{"found mid long", "bcdefghijklmnopqrstuvwxyza", 'a', len("bcdefghijklmnopqrstuvwxyz")},
		{"found at chunk boundary", "12345678a", 'a', 8},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Memchr([]byte(tt.haystack), tt.needle); got != tt.want {
				t.Errorf("Memchr(%q, %q) = %d, want %d", tt.haystack, tt.needle, got, tt.want)
			}
		})
	}
}

func TestMemchr2(t *testing.T) {
	haystack := []byte("the quick brown fox")
	if got := Memchr2(haystack, 'z', 'q'); got != 4 {
		t.Errorf("Memchr2 = %d, want 4", got)
	}
	if got := Memchr2(haystack, 'z', 'y'); got != -1 {
		t.Errorf("Memchr2 = %d, want -1", got)
	}
}

func TestMemchr3(t *testing.T) {
	haystack := []byte("the quick brown fox")
	if got := Memchr3(haystack, 'z', 'y', 'b'); got != 10 {
		t.Errorf("Memchr3 = %d, want 10", got)
	}
	if got := Memchr3(haystack, 'z', 'y', 'w'); got != -1 {
		t.Errorf("Memchr3 = %d, want -1", got)
	}
}

func TestMemmem(t *testing.T) {
	tests := []struct {
		name             string
		haystack, needle string
		want             int
	}{
		{"empty needle", "hello", "", 0},
		{"empty haystack", "", "x", -1},
		{"needle longer than haystack", "ab", "abc", -1},
		{"single byte needle", "hello world", "w", 6},
		{"not found", "hello world", "xyz", -1},
		{"found", "hello world", "world", 6},
		{"repeated pattern", "aaaaaabaaaa", "aab", 4},
		{"needle at start", "abcdef", "abc", 0},
		{"needle at end", "abcdef", "def", 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Memmem([]byte(tt.haystack), []byte(tt.needle)); got != tt.want {
				t.Errorf("Memmem(%q, %q) = %d, want %d", tt.haystack, tt.needle, got, tt.want)
			}
		})
	}
}

package capture

import (
	"strings"
	"testing"
)

// --- Test: caps strings cover the size and rate variants ---
func TestBuildCaps(t *testing.T) {
	cases := []struct {
		name          string
		width, height int
		fps           float64
		want          string
	}{
		{"native", 0, 0, 0, "video/x-raw,format=RGB"},
		{"sized", 1280, 720, 0, "video/x-raw,format=RGB,width=1280,height=720"},
		{"rated", 0, 0, 5.0, "video/x-raw,format=RGB,framerate=5/1"},
		{"fractional rate", 0, 0, 0.5, "video/x-raw,format=RGB,framerate=1/2"},
		{"sized and rated", 640, 480, 2.0, "video/x-raw,format=RGB,width=640,height=480,framerate=2/1"},
	}
	for _, c := range cases {
		if got := buildCaps(c.width, c.height, c.fps); got != c.want {
			t.Errorf("%s: buildCaps() = %q, want %q", c.name, got, c.want)
		}
	}
}

// --- Test: error messages classify into the right buckets ---
//
// Auth wins over network even when the message mentions the connection,
// because an auth failure always travels over one.
func TestClassifyMessage(t *testing.T) {
	cases := []struct {
		msg, debug string
		want       errorCategory
	}{
		{"Could not connect to server", "tcp timeout", errCategoryNetwork},
		{"Unauthorized (401)", "connection refused by server", errCategoryAuth},
		{"Internal data stream error", "no decoder for h264", errCategoryCodec},
		{"Resource not found", "", errCategoryNetwork},
		{"something exploded", "", errCategoryUnknown},
	}
	for _, c := range cases {
		if got := classifyMessage(c.msg, c.debug); got != c.want {
			t.Errorf("classifyMessage(%q, %q) = %s, want %s", c.msg, c.debug, got, c.want)
		}
	}
	if classifyError(nil) != errCategoryUnknown {
		t.Errorf("classifyError(nil) != unknown")
	}
}

// --- Test: config validation rejects unusable captures ---
func TestConfigValidate(t *testing.T) {
	valid := Config{Path: "clip.mp4", Width: 640, Height: 480, FPS: 2}
	if err := valid.validate(); err != nil {
		t.Fatalf("valid config rejected: %v", err)
	}

	cases := []struct {
		name string
		cfg  Config
		want string
	}{
		{"no source", Config{}, "Path or URL"},
		{"both sources", Config{Path: "a.mp4", URL: "rtsp://cam"}, "mutually exclusive"},
		{"unbounded live", Config{URL: "rtsp://cam"}, "MaxFrames"},
		{"half a size", Config{Path: "a.mp4", Width: 640}, "together"},
		{"negative fps", Config{Path: "a.mp4", FPS: -1}, "FPS"},
		{"negative budget", Config{Path: "a.mp4", MaxFrames: -1}, "MaxFrames"},
	}
	for _, c := range cases {
		err := c.cfg.validate()
		if err == nil || !strings.Contains(err.Error(), c.want) {
			t.Errorf("%s: validate() = %v, want mention of %q", c.name, err, c.want)
		}
	}
}

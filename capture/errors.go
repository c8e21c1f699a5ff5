package capture

import (
	"strings"

	"github.com/tinyzimmer/go-gst/gst"
)

// errorCategory classifies GStreamer failures so log lines distinguish
// "the network is down" from "the stream format is wrong".
type errorCategory int

const (
	errCategoryNetwork errorCategory = iota
	errCategoryCodec
	errCategoryAuth
	errCategoryUnknown
)

func (e errorCategory) String() string {
	switch e {
	case errCategoryNetwork:
		return "network"
	case errCategoryCodec:
		return "codec"
	case errCategoryAuth:
		return "auth"
	default:
		return "unknown"
	}
}

// classifyError categorizes a GStreamer error by message heuristics.
// go-gst's GError does not expose the error domain, so string matching
// is the only handle; auth is checked first because auth failures
// often mention the connection too.
func classifyError(gerr *gst.GError) errorCategory {
	if gerr == nil {
		return errCategoryUnknown
	}
	return classifyMessage(gerr.Error(), gerr.DebugString())
}

func classifyMessage(msg, debug string) errorCategory {
	combined := strings.ToLower(msg) + " " + strings.ToLower(debug)
	switch {
	case containsAny(combined, authKeywords):
		return errCategoryAuth
	case containsAny(combined, codecKeywords):
		return errCategoryCodec
	case containsAny(combined, networkKeywords):
		return errCategoryNetwork
	default:
		return errCategoryUnknown
	}
}

var (
	authKeywords = []string{
		"unauthorized", "401", "403", "forbidden",
		"authentication", "credentials", "password", "username",
	}
	codecKeywords = []string{
		"codec", "decode", "demux", "format", "negotiation", "caps",
		"h264", "h265", "not negotiated", "no decoder", "missing plugin",
	}
	networkKeywords = []string{
		"connection", "timeout", "unreachable", "network", "dns",
		"resolve", "socket", "tcp", "udp", "rtsp", "not found",
		"could not connect", "failed to connect", "no such file",
	}
)

func containsAny(s string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(s, kw) {
			return true
		}
	}
	return false
}

package services

import "strings"

// CapabilityRecord is the snapshot of AR-related features the viewer shell
// reports after probing the browser. Recomputed per page load, never stored.
type CapabilityRecord struct {
	WebXR        bool `json:"webxr"`
	WebXRAR      bool `json:"webxrAR"`
	WebXRVR      bool `json:"webxrVR"`
	Camera       bool `json:"camera"`
	DeviceMotion bool `json:"deviceMotion"`
	Geolocation  bool `json:"geolocation"`
	IsMobile     bool `json:"isMobile"`
	IsIOS        bool `json:"isIOS"`
	IsAndroid    bool `json:"isAndroid"`
	HTTPS        bool `json:"https"`
}

type Strategy string

// Rendering strategies in strict preference order. The shell never attempts
// a higher tier than the record supports.
const (
	StrategyNativeWebXR   Strategy = "native-webxr"
	StrategyCameraOverlay Strategy = "camera-overlay"
	StrategyStatic        Strategy = "static"
)

// PickStrategy ranks native WebXR AR above the camera overlay above the
// static viewer.
func PickStrategy(rec CapabilityRecord) Strategy {
	if rec.WebXRAR {
		return StrategyNativeWebXR
	}
	if rec.Camera {
		return StrategyCameraOverlay
	}
	return StrategyStatic
}

// CanStartAR reports whether any AR tier is available at all.
func CanStartAR(rec CapabilityRecord) bool {
	return PickStrategy(rec) != StrategyStatic
}

// ApplyDeviceHints fills the server-derivable fields from the request:
// platform sniffing off the User-Agent plus the secure-context flag. The
// browser-side probes (navigator.xr, mediaDevices) arrive with the report.
func ApplyDeviceHints(rec *CapabilityRecord, userAgent, host string, https bool) {
	ua := strings.ToLower(userAgent)
	rec.IsIOS = strings.Contains(ua, "iphone") || strings.Contains(ua, "ipad") || strings.Contains(ua, "ipod")
	rec.IsAndroid = strings.Contains(ua, "android")
	rec.IsMobile = rec.IsIOS || rec.IsAndroid || strings.Contains(ua, "mobile")
	rec.HTTPS = https

	// WebXR and getUserMedia require a secure context (loopback counts).
	// An insecure report claiming them is stale or spoofed.
	if !https && !isLoopback(host) {
		rec.WebXR = false
		rec.WebXRAR = false
		rec.WebXRVR = false
		rec.Camera = false
	}
}

func isLoopback(host string) bool {
	if i := strings.LastIndex(host, ":"); i != -1 {
		host = host[:i]
	}
	return host == "localhost" || host == "127.0.0.1" || host == "::1" || host == "[::1]"
}

// internal/ua/ua.go
//
// User-Agent classification for unknown-origin logging.
//
// The resolver only needs a coarse picture of who is knocking when a
// request arrives on a host that maps to nothing: browser family, OS,
// device class, and whether it is a crawler.  This wrapper keeps
// `github.com/avct/uasurfer` enums out of the rest of the codebase.
package ua

import (
	surfer "github.com/avct/uasurfer"
)

// Info is the subset of UA attributes written to logs.
// Device is one of "Desktop", "Mobile", "Tablet", or "Other".
type Info struct {
	Browser string
	OS      string
	Device  string
	IsBot   bool
}

// Parse classifies a raw User-Agent header.  An empty header is reported as
// an unknown device that is not a bot.
func Parse(raw string) Info {
	if raw == "" {
		return Info{Device: "Other"}
	}
	u := surfer.Parse(raw)

	info := Info{
		Browser: u.Browser.Name.StringTrimPrefix(),
		OS:      u.OS.Name.StringTrimPrefix(),
		IsBot:   u.IsBot(),
	}

	switch u.DeviceType {
	case surfer.DeviceComputer:
		info.Device = "Desktop"
	case surfer.DeviceTablet:
		info.Device = "Tablet"
	case surfer.DevicePhone, surfer.DeviceWearable:
		info.Device = "Mobile"
	default:
		info.Device = "Other"
	}
	return info
}

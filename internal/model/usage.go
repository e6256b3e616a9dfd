package model

import "time"

// UsageRecord accumulates per-user client telemetry. It is lifecycled
// independently of AccessRecord: unlicensed users are tracked too.
type UsageRecord struct {
	UserID             string       `json:"user_id"`
	FirstUsed          time.Time    `json:"first_used"`
	LastUsed           time.Time    `json:"last_used"`
	UsageCount         int          `json:"usage_count"`
	DeviceFingerprints []string     `json:"device_fingerprints,omitempty"`
	IPAddresses        []string     `json:"ip_addresses,omitempty"`
	ISPInfo            []ISPInfo    `json:"isp_info,omitempty"`
	SystemInfo         []SystemInfo `json:"system_info,omitempty"`
}

// ISPInfo is one observed network origin. Comparable; appended to a
// UsageRecord only when no structurally identical entry exists.
type ISPInfo struct {
	ISP      string `json:"isp,omitempty"`
	Country  string `json:"country,omitempty"`
	City     string `json:"city,omitempty"`
	Org      string `json:"org,omitempty"`
	Timezone string `json:"timezone,omitempty"`
}

func (i ISPInfo) Empty() bool { return i == ISPInfo{} }

// SystemInfo is one observed host environment, same append rule as ISPInfo.
type SystemInfo struct {
	Hostname  string `json:"hostname,omitempty"`
	Platform  string `json:"platform,omitempty"`
	Processor string `json:"processor,omitempty"`
	System    string `json:"system,omitempty"`
}

func (s SystemInfo) Empty() bool { return s == SystemInfo{} }

// DeviceInfo is the flat payload clients send with a usage report.
type DeviceInfo struct {
	Fingerprint string `json:"fingerprint,omitempty"`
	IP          string `json:"ip,omitempty"`
	ISP         string `json:"isp,omitempty"`
	Country     string `json:"country,omitempty"`
	City        string `json:"city,omitempty"`
	Org         string `json:"org,omitempty"`
	Timezone    string `json:"timezone,omitempty"`
	Hostname    string `json:"hostname,omitempty"`
	Platform    string `json:"platform,omitempty"`
	Processor   string `json:"processor,omitempty"`
	System      string `json:"system,omitempty"`
}

package model

import (
	"encoding/json"
	"time"
)

// AccessRecord is the canonical, presence-keyed entitlement record.
// A record existing for a user identifier means that user has access;
// there is no separate boolean flag.
type AccessRecord struct {
	UserID       string    `json:"user_id"`
	AccessType   string    `json:"type"`
	GrantedAt    time.Time `json:"granted_at"`
	GrantedBy    string    `json:"granted_by,omitempty"`
	AllowedIP    string    `json:"allowed_ip,omitempty"`
	DownloadLink string    `json:"download_link,omitempty"`
}

// legacyAccessEntry is the flag-keyed shape written by the old updater:
// {access: bool, type, timestamp}. It is accepted on decode only.
type legacyAccessEntry struct {
	Access    *bool  `json:"access"`
	Type      string `json:"type"`
	Timestamp string `json:"timestamp"`
}

// DecodeAccessRecord parses a stored blob into the canonical shape. The
// legacy flag-keyed shape is converted; a legacy entry with access=false
// decodes as absent. Unparsable blobs also decode as absent so corrupt
// data never blocks the gate.
func DecodeAccessRecord(userID string, raw []byte) (*AccessRecord, bool) {
	var rec AccessRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, false
	}

	var legacy legacyAccessEntry
	if err := json.Unmarshal(raw, &legacy); err == nil && legacy.Access != nil {
		if !*legacy.Access {
			return nil, false
		}
		if rec.GrantedAt.IsZero() && legacy.Timestamp != "" {
			if ts, err := time.Parse(time.RFC3339, legacy.Timestamp); err == nil {
				rec.GrantedAt = ts
			}
		}
	} else if rec.GrantedAt.IsZero() && rec.AccessType == "" {
		// Neither shape: not a record.
		return nil, false
	}

	rec.UserID = userID
	return &rec, true
}

// VerifyResult is the outcome of an access check.
type VerifyResult struct {
	UserID    string        `json:"user_id"`
	HasAccess bool          `json:"has_access"`
	Details   AccessDetails `json:"access_details"`
}

type AccessDetails struct {
	Plan   string `json:"plan"`
	Expiry string `json:"expiry"`
}

// DeniedDetails is returned whenever the gate says no.
func DeniedDetails() AccessDetails {
	return AccessDetails{Plan: "Free", Expiry: "None"}
}

// ScanResult reports which persisted sources contained the needle.
type ScanResult struct {
	FoundCount     int      `json:"found_count"`
	Users          []string `json:"users"`
	MatchedSources []string `json:"matched_sources"`
}

func (r ScanResult) Found() bool { return r.FoundCount > 0 }

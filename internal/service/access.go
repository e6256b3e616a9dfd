package service

import (
	"encoding/json"
	"log"
	"sort"
	"strings"
	"time"

	"cloudtouch-gate/internal/model"
	"cloudtouch-gate/internal/store"
)

// Grant/revoke outcomes. Repeating an operation is never an error, it
// just reports the no-op.
const (
	StatusGranted        = "granted"
	StatusAlreadyGranted = "already_granted"
	StatusRevoked        = "revoked"
	StatusNotFound       = "not_found"
)

// AccessService implements the entitlement policy on top of the store:
// idempotent grant/revoke, verification with first-IP-wins binding, the
// forensic scan and the admin listing.
type AccessService struct {
	kv          store.KV
	notifier    Notifier
	defaultType string
}

func NewAccessService(kv store.KV, notifier Notifier, defaultType string) *AccessService {
	if notifier == nil {
		notifier = NopNotifier{}
	}
	if defaultType == "" {
		defaultType = "CloudTouch Tool"
	}
	return &AccessService{kv: kv, notifier: notifier, defaultType: defaultType}
}

func (s *AccessService) get(userID string) (*model.AccessRecord, bool) {
	raw, err := s.kv.Get(store.AccessCollection, userID)
	if err != nil {
		return nil, false
	}
	return model.DecodeAccessRecord(userID, raw)
}

func (s *AccessService) put(rec *model.AccessRecord) error {
	raw, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	return s.kv.Put(store.AccessCollection, rec.UserID, raw)
}

// Grant creates an access record if none exists. It is not an upsert: a
// second grant reports already_granted and leaves the existing record,
// including granted_at, untouched.
func (s *AccessService) Grant(userID, accessType, downloadLink, grantedBy string) (string, error) {
	if _, ok := s.get(userID); ok {
		return StatusAlreadyGranted, nil
	}

	if accessType == "" {
		accessType = s.defaultType
	}
	rec := &model.AccessRecord{
		UserID:       userID,
		AccessType:   accessType,
		GrantedAt:    time.Now(),
		GrantedBy:    grantedBy,
		DownloadLink: downloadLink,
	}
	if err := s.put(rec); err != nil {
		return "", err
	}

	s.notifier.Notify("Access Granted", map[string]string{
		"User": userID, "Type": accessType, "By": grantedBy,
	})
	return StatusGranted, nil
}

// Revoke deletes the record. Revoking an absent user reports not_found,
// never an error, so retries are safe.
func (s *AccessService) Revoke(userID string) (string, error) {
	if _, ok := s.get(userID); !ok {
		return StatusNotFound, nil
	}
	if err := s.kv.Delete(store.AccessCollection, userID); err != nil {
		return "", err
	}

	s.notifier.Notify("Access Revoked", map[string]string{"User": userID})
	return StatusRevoked, nil
}

// Verify is the gate decision. An unbound record seen with a request IP
// is bound to that IP on the spot, first writer wins; once bound, only
// the matching IP (or an absent one) passes. Two racing first-time
// verifications from different IPs resolve to whichever write lands
// last. Accepted weak consistency, not a bug.
func (s *AccessService) Verify(userID, requestIP string) model.VerifyResult {
	denied := model.VerifyResult{UserID: userID, HasAccess: false, Details: model.DeniedDetails()}

	rec, ok := s.get(userID)
	if !ok {
		return denied
	}

	allowedIP := strings.TrimSpace(rec.AllowedIP)
	requestIP = strings.TrimSpace(requestIP)

	if allowedIP != "" && requestIP != "" && allowedIP != requestIP {
		// Binding mismatch overrides presence; the record stays untouched.
		return denied
	}

	if allowedIP == "" && requestIP != "" {
		rec.AllowedIP = requestIP
		if err := s.put(rec); err != nil {
			// The caller still gets access; the bind retries on the
			// next verification.
			log.Printf("failed to persist IP binding for %s: %v", userID, err)
		} else {
			s.notifier.Notify("IP Bound", map[string]string{"User": userID, "IP": requestIP})
		}
	}

	plan := rec.AccessType
	if plan == "" {
		plan = "Premium"
	}
	return model.VerifyResult{
		UserID:    userID,
		HasAccess: true,
		Details:   model.AccessDetails{Plan: plan, Expiry: "Lifetime"},
	}
}

// Scan is the forensic lookup: every persisted blob is searched for the
// needle, first as an exact key of a JSON object, then as a raw
// substring. Blobs that fail to parse fall back to the substring check.
// Deliberately loose; it never feeds access decisions.
func (s *AccessService) Scan(needle string) model.ScanResult {
	result := model.ScanResult{Users: []string{}, MatchedSources: []string{}}

	blobs, err := s.kv.Blobs()
	if err != nil {
		log.Printf("scan: enumerating blobs failed: %v", err)
		return result
	}

	for _, blob := range blobs {
		if blobMatches(blob.Content, needle) {
			result.MatchedSources = append(result.MatchedSources, blob.Name)
		}
	}
	sort.Strings(result.MatchedSources)

	if len(result.MatchedSources) > 0 {
		result.FoundCount = 1
		result.Users = []string{needle}
	}
	return result
}

func blobMatches(content []byte, needle string) bool {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(content, &obj); err == nil {
		if _, ok := obj[needle]; ok {
			return true
		}
	}
	return strings.Contains(string(content), needle)
}

// List returns all access records, optionally filtered by type
// (case-insensitive).
func (s *AccessService) List(typeFilter string) map[string]model.AccessRecord {
	out := make(map[string]model.AccessRecord)

	all, err := s.kv.ListAll(store.AccessCollection)
	if err != nil {
		log.Printf("list: %v", err)
		return out
	}

	for userID, raw := range all {
		rec, ok := model.DecodeAccessRecord(userID, raw)
		if !ok {
			continue
		}
		if typeFilter != "" && !strings.EqualFold(rec.AccessType, typeFilter) {
			continue
		}
		out[userID] = *rec
	}
	return out
}

// Statistics summarizes the access and usage tables for the admin
// dashboard.
func (s *AccessService) Statistics() model.AccessStatistics {
	stats := model.AccessStatistics{ByType: make(map[string]int)}

	for _, rec := range s.List("") {
		stats.TotalRecords++
		stats.ByType[rec.AccessType]++
		if rec.AllowedIP != "" {
			stats.BoundRecords++
		} else {
			stats.UnboundRecords++
		}
	}

	usage, err := s.kv.ListAll(store.UsageCollection)
	if err != nil {
		return stats
	}
	for _, raw := range usage {
		var rec model.UsageRecord
		if err := json.Unmarshal(raw, &rec); err != nil {
			continue
		}
		stats.TrackedUsers++
		stats.TotalUsageCalls += rec.UsageCount
	}
	return stats
}

package service

import (
	"encoding/json"
	"errors"
	"time"

	"cloudtouch-gate/internal/model"
	"cloudtouch-gate/internal/store"
	"cloudtouch-gate/internal/util"
)

// ErrUnauthorized is returned when a usage report's signature does not
// verify. The response never reveals whether the user exists.
var ErrUnauthorized = errors.New("invalid signature")

// UsageService records client telemetry. Usage tracking is independent
// of access gating: reports from unlicensed users are recorded too.
type UsageService struct {
	kv       store.KV
	verifier *util.SignatureVerifier
	notifier Notifier
}

func NewUsageService(kv store.KV, verifier *util.SignatureVerifier, notifier Notifier) *UsageService {
	if notifier == nil {
		notifier = NopNotifier{}
	}
	return &UsageService{kv: kv, verifier: verifier, notifier: notifier}
}

// Record authenticates the report and upserts the user's usage record:
// usage_count always increments, last_used always refreshes, and the
// fingerprint/IP sets and isp/system sequences only grow when the entry
// is genuinely new.
func (s *UsageService) Record(userID, signature string, info model.DeviceInfo) error {
	if !s.verifier.Verify(userID, signature) {
		return ErrUnauthorized
	}

	rec := s.load(userID)
	now := time.Now()
	if rec.FirstUsed.IsZero() {
		rec.FirstUsed = now
	}
	rec.LastUsed = now
	rec.UsageCount++

	if info.Fingerprint != "" {
		rec.DeviceFingerprints = appendUnique(rec.DeviceFingerprints, info.Fingerprint)
	}
	if info.IP != "" {
		rec.IPAddresses = appendUnique(rec.IPAddresses, info.IP)
	}

	isp := model.ISPInfo{
		ISP:      info.ISP,
		Country:  info.Country,
		City:     info.City,
		Org:      info.Org,
		Timezone: info.Timezone,
	}
	if !isp.Empty() && !containsISP(rec.ISPInfo, isp) {
		rec.ISPInfo = append(rec.ISPInfo, isp)
	}

	sys := model.SystemInfo{
		Hostname:  info.Hostname,
		Platform:  info.Platform,
		Processor: info.Processor,
		System:    info.System,
	}
	if !sys.Empty() && !containsSystem(rec.SystemInfo, sys) {
		rec.SystemInfo = append(rec.SystemInfo, sys)
	}

	raw, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	if err := s.kv.Put(store.UsageCollection, userID, raw); err != nil {
		return err
	}

	s.notifier.Notify("Usage Report", map[string]string{
		"User": userID, "IP": info.IP, "Host": info.Hostname,
	})
	return nil
}

// Get returns the stored usage record, if any.
func (s *UsageService) Get(userID string) (*model.UsageRecord, bool) {
	raw, err := s.kv.Get(store.UsageCollection, userID)
	if err != nil {
		return nil, false
	}
	var rec model.UsageRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, false
	}
	return &rec, true
}

// load is Get with a fresh record for first-time users. Corrupt stored
// data also restarts from empty rather than failing the report.
func (s *UsageService) load(userID string) *model.UsageRecord {
	if rec, ok := s.Get(userID); ok {
		return rec
	}
	return &model.UsageRecord{UserID: userID}
}

func appendUnique(list []string, v string) []string {
	for _, existing := range list {
		if existing == v {
			return list
		}
	}
	return append(list, v)
}

func containsISP(list []model.ISPInfo, v model.ISPInfo) bool {
	for _, existing := range list {
		if existing == v {
			return true
		}
	}
	return false
}

func containsSystem(list []model.SystemInfo, v model.SystemInfo) bool {
	for _, existing := range list {
		if existing == v {
			return true
		}
	}
	return false
}

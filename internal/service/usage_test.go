package service

import (
	"testing"

	"cloudtouch-gate/internal/model"
	"cloudtouch-gate/internal/store"
	"cloudtouch-gate/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestUsageService(t *testing.T) (*UsageService, *util.SignatureVerifier, *captureNotifier) {
	kv, err := store.NewFileKV(t.TempDir())
	require.NoError(t, err)
	verifier := util.NewSignatureVerifier("test-secret")
	notifier := &captureNotifier{}
	return NewUsageService(kv, verifier, notifier), verifier, notifier
}

func TestRecordRejectsBadSignature(t *testing.T) {
	svc, _, _ := newTestUsageService(t)

	err := svc.Record("u1", "not-a-signature", model.DeviceInfo{})
	assert.ErrorIs(t, err, ErrUnauthorized)

	err = svc.Record("u1", "", model.DeviceInfo{})
	assert.ErrorIs(t, err, ErrUnauthorized)

	// Nothing was stored for the rejected reports.
	_, ok := svc.Get("u1")
	assert.False(t, ok)
}

func TestRecordCreatesAndIncrements(t *testing.T) {
	svc, verifier, notifier := newTestUsageService(t)
	sig := verifier.Sign("u1")

	info := model.DeviceInfo{
		Fingerprint: "fp-1",
		IP:          "1.2.3.4",
		ISP:         "ExampleNet",
		Country:     "DE",
		Hostname:    "box-1",
		Platform:    "Windows-10",
	}
	require.NoError(t, svc.Record("u1", sig, info))

	rec, ok := svc.Get("u1")
	require.True(t, ok)
	firstUsed := rec.FirstUsed
	assert.Equal(t, 1, rec.UsageCount)
	assert.False(t, firstUsed.IsZero())
	assert.Equal(t, []string{"fp-1"}, rec.DeviceFingerprints)
	assert.Equal(t, []string{"1.2.3.4"}, rec.IPAddresses)
	require.Len(t, rec.ISPInfo, 1)
	assert.Equal(t, "ExampleNet", rec.ISPInfo[0].ISP)
	require.Len(t, rec.SystemInfo, 1)
	assert.Equal(t, "box-1", rec.SystemInfo[0].Hostname)
	assert.True(t, notifier.seen("Usage Report"))

	// Same device again: count goes up by exactly one, nothing is
	// duplicated.
	require.NoError(t, svc.Record("u1", sig, info))

	rec, ok = svc.Get("u1")
	require.True(t, ok)
	assert.Equal(t, 2, rec.UsageCount)
	assert.Equal(t, []string{"fp-1"}, rec.DeviceFingerprints)
	assert.Equal(t, []string{"1.2.3.4"}, rec.IPAddresses)
	assert.Len(t, rec.ISPInfo, 1)
	assert.Len(t, rec.SystemInfo, 1)
	assert.True(t, firstUsed.Equal(rec.FirstUsed))
}

func TestRecordAppendsNovelEntries(t *testing.T) {
	svc, verifier, _ := newTestUsageService(t)
	sig := verifier.Sign("u1")

	require.NoError(t, svc.Record("u1", sig, model.DeviceInfo{
		Fingerprint: "fp-1",
		IP:          "1.2.3.4",
		ISP:         "ExampleNet",
		Country:     "DE",
	}))

	// Same ISP name but different country: structurally distinct, so it
	// is appended.
	require.NoError(t, svc.Record("u1", sig, model.DeviceInfo{
		Fingerprint: "fp-2",
		IP:          "5.6.7.8",
		ISP:         "ExampleNet",
		Country:     "FR",
	}))

	rec, ok := svc.Get("u1")
	require.True(t, ok)
	assert.Equal(t, []string{"fp-1", "fp-2"}, rec.DeviceFingerprints)
	assert.Equal(t, []string{"1.2.3.4", "5.6.7.8"}, rec.IPAddresses)
	require.Len(t, rec.ISPInfo, 2)
	assert.Equal(t, "DE", rec.ISPInfo[0].Country)
	assert.Equal(t, "FR", rec.ISPInfo[1].Country)
}

func TestRecordIgnoresEmptyStructuredEntries(t *testing.T) {
	svc, verifier, _ := newTestUsageService(t)
	sig := verifier.Sign("u1")

	require.NoError(t, svc.Record("u1", sig, model.DeviceInfo{}))

	rec, ok := svc.Get("u1")
	require.True(t, ok)
	assert.Equal(t, 1, rec.UsageCount)
	assert.Empty(t, rec.DeviceFingerprints)
	assert.Empty(t, rec.IPAddresses)
	assert.Empty(t, rec.ISPInfo)
	assert.Empty(t, rec.SystemInfo)
}

func TestRecordIndependentOfAccess(t *testing.T) {
	// A user with no access record is still tracked; abuse data from
	// unlicensed users matters too.
	kv, err := store.NewFileKV(t.TempDir())
	require.NoError(t, err)
	verifier := util.NewSignatureVerifier("test-secret")
	usage := NewUsageService(kv, verifier, nil)
	access := NewAccessService(kv, nil, "")

	require.False(t, access.Verify("unlicensed", "").HasAccess)
	require.NoError(t, usage.Record("unlicensed", verifier.Sign("unlicensed"), model.DeviceInfo{Fingerprint: "fp-x"}))

	rec, ok := usage.Get("unlicensed")
	require.True(t, ok)
	assert.Equal(t, 1, rec.UsageCount)

	// And recording usage never granted anything.
	assert.False(t, access.Verify("unlicensed", "").HasAccess)
}

func TestRecordSurvivesCorruptUsageBlob(t *testing.T) {
	kv, err := store.NewFileKV(t.TempDir())
	require.NoError(t, err)
	verifier := util.NewSignatureVerifier("test-secret")
	svc := NewUsageService(kv, verifier, nil)

	require.NoError(t, kv.Put(store.UsageCollection, "u1", []byte(`"garbage"`)))
	require.NoError(t, svc.Record("u1", verifier.Sign("u1"), model.DeviceInfo{}))

	rec, ok := svc.Get("u1")
	require.True(t, ok)
	assert.Equal(t, 1, rec.UsageCount)
}

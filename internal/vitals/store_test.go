package vitals_test

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"healthcmd/internal/models"
	"healthcmd/internal/vitals"
)

func TestStore_Defaults(t *testing.T) {
	store := vitals.NewStore(zap.NewNop())

	rec := store.Snapshot()
	require.Equal(t, 72.0, rec.HeartRate)
	require.Equal(t, 96.0, rec.SpO2)
	require.Equal(t, 120.0, rec.Systolic)
	require.Equal(t, 80.0, rec.Diastolic)
	require.Equal(t, 36.8, rec.Temperature)
	require.Equal(t, 5400.0, rec.Altitude)
	require.Equal(t, -15.0, rec.ExtTemp)
	require.Equal(t, 42.0, rec.Humidity)
}

func TestStore_SetAndSnapshot(t *testing.T) {
	store := vitals.NewStore(zap.NewNop())

	store.Set(models.FieldHeartRate, 85)
	require.Equal(t, 85.0, store.Snapshot().HeartRate)

	// 快照是值拷贝，改动不回流
	snap := store.Snapshot()
	snap.HeartRate = 999
	require.Equal(t, 85.0, store.Snapshot().HeartRate)
}

func TestStore_SetPair(t *testing.T) {
	store := vitals.NewStore(zap.NewNop())

	store.SetPair(135, 88)
	rec := store.Snapshot()
	require.Equal(t, 135.0, rec.Systolic)
	require.Equal(t, 88.0, rec.Diastolic)
}

func TestStore_ResetRestoresDefaults(t *testing.T) {
	store := vitals.NewStore(zap.NewNop())

	store.Set(models.FieldHeartRate, 150)
	store.Set(models.FieldSpO2, 75)
	store.SetPair(190, 110)
	store.Set(models.FieldAltitude, 12)

	store.Reset()
	require.Equal(t, models.DefaultVitals(), store.Snapshot())
}

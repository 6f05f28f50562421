package producer_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"healthcmd/internal/models"
	"healthcmd/internal/producer"
)

// fakeSimSink 收集模拟器提交
type fakeSimSink struct {
	mu      sync.Mutex
	record  models.VitalsRecord
	commits []map[models.Field]float64
}

func newFakeSimSink(rec models.VitalsRecord) *fakeSimSink {
	return &fakeSimSink{record: rec}
}

func (s *fakeSimSink) Snapshot() models.VitalsRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.record
}

func (s *fakeSimSink) CommitSimulated(values map[models.Field]float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for f, v := range values {
		s.record.Set(f, v)
	}
	s.commits = append(s.commits, values)
}

func (s *fakeSimSink) commitCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.commits)
}

func TestSimulator_TickStaysInPhysiologicBands(t *testing.T) {
	sink := newFakeSimSink(models.DefaultVitals())
	sim := producer.NewSimulator(time.Second, sink, zap.NewNop())

	// 多次滴答后仍应全部落在钳制区间内
	for i := 0; i < 200; i++ {
		sim.Tick()
	}

	rec := sink.Snapshot()
	require.GreaterOrEqual(t, rec.HeartRate, 60.0)
	require.LessOrEqual(t, rec.HeartRate, 90.0)
	require.GreaterOrEqual(t, rec.SpO2, 90.0)
	require.LessOrEqual(t, rec.SpO2, 100.0)
	require.GreaterOrEqual(t, rec.Systolic, 110.0)
	require.LessOrEqual(t, rec.Systolic, 130.0)
	require.GreaterOrEqual(t, rec.Diastolic, 70.0)
	require.LessOrEqual(t, rec.Diastolic, 85.0)
	require.GreaterOrEqual(t, rec.Temperature, 36.1)
	require.LessOrEqual(t, rec.Temperature, 37.2)
}

func TestSimulator_TickClampsFromOutOfBandStart(t *testing.T) {
	// 手动改出钳制区间的值，下一次 tick 拉回区间
	rec := models.DefaultVitals()
	rec.HeartRate = 150
	rec.SpO2 = 80
	sink := newFakeSimSink(rec)
	sim := producer.NewSimulator(time.Second, sink, zap.NewNop())

	sim.Tick()

	after := sink.Snapshot()
	require.LessOrEqual(t, after.HeartRate, 90.0)
	require.GreaterOrEqual(t, after.SpO2, 90.0)
}

func TestSimulator_NeverTouchesEnvironmentFields(t *testing.T) {
	sink := newFakeSimSink(models.DefaultVitals())
	sim := producer.NewSimulator(time.Second, sink, zap.NewNop())

	for i := 0; i < 20; i++ {
		sim.Tick()
	}

	rec := sink.Snapshot()
	require.Equal(t, 5400.0, rec.Altitude)
	require.Equal(t, -15.0, rec.ExtTemp)
	require.Equal(t, 42.0, rec.Humidity)

	for _, commit := range sink.commits {
		require.NotContains(t, commit, models.FieldAltitude)
		require.NotContains(t, commit, models.FieldExtTemp)
		require.NotContains(t, commit, models.FieldHumidity)
	}
}

func TestSimulator_StartStop(t *testing.T) {
	sink := newFakeSimSink(models.DefaultVitals())
	sim := producer.NewSimulator(20*time.Millisecond, sink, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sim.Start(ctx)
	require.True(t, sim.Running())

	require.Eventually(t, func() bool {
		return sink.commitCount() > 0
	}, time.Second, 5*time.Millisecond)

	sim.Stop()
	require.False(t, sim.Running())

	// 停止后不再提交
	time.Sleep(60 * time.Millisecond)
	count := sink.commitCount()
	time.Sleep(60 * time.Millisecond)
	require.Equal(t, count, sink.commitCount())
}

func TestSimulator_StartTwiceIsNoop(t *testing.T) {
	sink := newFakeSimSink(models.DefaultVitals())
	sim := producer.NewSimulator(time.Hour, sink, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sim.Start(ctx)
	sim.Start(ctx)
	require.True(t, sim.Running())
	sim.Stop()
	sim.Stop()
	require.False(t, sim.Running())
}

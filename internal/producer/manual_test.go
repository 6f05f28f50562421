package producer_test

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"healthcmd/internal/models"
	"healthcmd/internal/producer"
)

// fakeSink 记录提交，背后用一个裸记录模拟存储
type fakeSink struct {
	record  models.VitalsRecord
	commits int
}

func newFakeSink() *fakeSink {
	return &fakeSink{record: models.DefaultVitals()}
}

func (s *fakeSink) CommitManual(f models.Field, value float64) {
	s.record.Set(f, value)
	s.commits++
}

func (s *fakeSink) CommitManualPair(systolic, diastolic float64) {
	s.record.Systolic = systolic
	s.record.Diastolic = diastolic
	s.commits++
}

func (s *fakeSink) CommitManualBatch(values map[models.Field]float64) {
	for f, v := range values {
		s.record.Set(f, v)
	}
	s.commits++
}

// fakeNotifier 记录最后一条通知
type fakeNotifier struct {
	message string
	kind    string
	count   int
}

func (n *fakeNotifier) Notify(message, kind string) {
	n.message = message
	n.kind = kind
	n.count++
}

// fakeFlags 记录被标记的字段
type fakeFlags struct {
	flagged map[models.Field]int
}

func newFakeFlags() *fakeFlags {
	return &fakeFlags{flagged: make(map[models.Field]int)}
}

func (f *fakeFlags) FlagInvalid(field models.Field) {
	f.flagged[field]++
}

func newReconciler() (*producer.Reconciler, *fakeSink, *fakeNotifier, *fakeFlags) {
	sink := newFakeSink()
	notify := &fakeNotifier{}
	flags := newFakeFlags()
	return producer.NewReconciler(sink, notify, flags, zap.NewNop()), sink, notify, flags
}

func TestApplyVital_AcceptedCommitsExactValue(t *testing.T) {
	r, sink, notify, _ := newReconciler()

	require.True(t, r.ApplyVital(models.FieldHeartRate, "85"))
	// 手动路径不做钳制：85 原样落盘
	require.Equal(t, 85.0, sink.record.HeartRate)
	require.Equal(t, "success", notify.kind)
	require.Contains(t, notify.message, "85")
	require.Contains(t, notify.message, "bpm")
}

func TestApplyVital_RejectedLeavesStoreUntouched(t *testing.T) {
	r, sink, notify, flags := newReconciler()

	require.False(t, r.ApplyVital(models.FieldHeartRate, "300"))
	require.Equal(t, 72.0, sink.record.HeartRate)
	require.Zero(t, sink.commits)
	require.Zero(t, notify.count)
	require.Equal(t, 1, flags.flagged[models.FieldHeartRate])
}

func TestApplyVital_RejectsNonNumeric(t *testing.T) {
	r, sink, _, flags := newReconciler()

	require.False(t, r.ApplyVital(models.FieldSpO2, "abc"))
	require.Equal(t, 96.0, sink.record.SpO2)
	require.Equal(t, 1, flags.flagged[models.FieldSpO2])
}

func TestApplyBloodPressure_PairIsAtomic(t *testing.T) {
	r, sink, _, flags := newReconciler()

	// 收缩压越界（205），舒张压有效（70）：整对都不提交
	require.False(t, r.ApplyBloodPressure("205", "70"))
	require.Equal(t, 120.0, sink.record.Systolic)
	require.Equal(t, 80.0, sink.record.Diastolic)
	require.Equal(t, 1, flags.flagged[models.FieldSystolic])
	require.Zero(t, flags.flagged[models.FieldDiastolic])
}

func TestApplyBloodPressure_Accepted(t *testing.T) {
	r, sink, notify, _ := newReconciler()

	require.True(t, r.ApplyBloodPressure("135", "88"))
	require.Equal(t, 135.0, sink.record.Systolic)
	require.Equal(t, 88.0, sink.record.Diastolic)
	require.Equal(t, "success", notify.kind)
	require.Contains(t, notify.message, "135/88")
}

func TestApplyAll_AllOrNothing(t *testing.T) {
	r, sink, notify, flags := newReconciler()

	// 4 个有效 + 1 个无效：全部不提交
	ok := r.ApplyAll(map[models.Field]string{
		models.FieldHeartRate:   "88",
		models.FieldSpO2:        "95",
		models.FieldSystolic:    "125",
		models.FieldDiastolic:   "82",
		models.FieldTemperature: "50", // 越界
	})
	require.False(t, ok)
	require.Zero(t, sink.commits)
	require.Equal(t, models.DefaultVitals(), sink.record)
	require.Equal(t, 1, flags.flagged[models.FieldTemperature])
	require.Equal(t, "error", notify.kind)
	require.Contains(t, notify.message, "Body Temp")
}

func TestApplyAll_AllValidCommitsEverything(t *testing.T) {
	r, sink, notify, _ := newReconciler()

	ok := r.ApplyAll(map[models.Field]string{
		models.FieldHeartRate:   "88",
		models.FieldSpO2:        "95",
		models.FieldSystolic:    "125",
		models.FieldDiastolic:   "82",
		models.FieldTemperature: "37.0",
	})
	require.True(t, ok)
	require.Equal(t, 1, sink.commits)
	require.Equal(t, 88.0, sink.record.HeartRate)
	require.Equal(t, 95.0, sink.record.SpO2)
	require.Equal(t, 125.0, sink.record.Systolic)
	require.Equal(t, 82.0, sink.record.Diastolic)
	require.Equal(t, 37.0, sink.record.Temperature)
	require.Equal(t, "success", notify.kind)
}

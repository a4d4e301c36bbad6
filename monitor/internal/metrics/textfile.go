package metrics

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	dto "github.com/prometheus/client_model/go"
	"github.com/prometheus/common/expfmt"
	"google.golang.org/protobuf/proto"

	"github.com/drivercopilot/drivercopilot/monitor/internal/hub"
	"github.com/drivercopilot/drivercopilot/pkg/types"
)

// Metric names.
const (
	MetricActive         = "copilot_monitoring_active"
	MetricScore          = "copilot_alertness_score"
	MetricLevel          = "copilot_alert_level"
	MetricBlinkRate      = "copilot_blink_rate"
	MetricYawnCount      = "copilot_yawn_count"
	MetricHeadPose       = "copilot_head_pose_stability"
	MetricTicks          = "copilot_session_ticks"
	MetricAlertsRecorded = "copilot_alerts_recorded"
)

// AlertCounter reports how many level alerts are in recent history.
// *alerts.Engine satisfies it.
type AlertCounter interface {
	AlertCount() int
}

// Families builds the metric families for snap, sorted by name. alertCount
// is the number of level alerts currently in history. Samples carry no
// timestamps; textfile collectors reject them.
func Families(snap types.Snapshot, alertCount int) []*dto.MetricFamily {
	active := 0.0
	if snap.Active {
		active = 1
	}
	var labels []*dto.LabelPair
	if snap.SessionID != "" {
		labels = []*dto.LabelPair{{Name: proto.String("session_id"), Value: proto.String(snap.SessionID)}}
	}

	mfs := []*dto.MetricFamily{
		gauge(MetricActive, "Whether a monitoring session is running.", active, nil),
		gauge(MetricScore, "Current alertness score (20-100).", float64(snap.State.Score), labels),
		gauge(MetricLevel, "Current alert level: 0 none, 1-3 level1-level3.", float64(snap.State.Level.Severity()), labels),
		gauge(MetricBlinkRate, "Blink rate in blinks per minute.", snap.Sample.BlinkRate, labels),
		gauge(MetricYawnCount, "Yawns detected this session.", float64(snap.Sample.YawnCount), labels),
		gauge(MetricHeadPose, "Head pose stability percentage.", snap.Sample.HeadPoseStability, labels),
		gauge(MetricTicks, "Evaluator ticks applied this session.", float64(snap.Ticks), labels),
		gauge(MetricAlertsRecorded, "Level alerts in recent history.", float64(alertCount), nil),
	}
	sort.Slice(mfs, func(i, j int) bool { return mfs[i].GetName() < mfs[j].GetName() })
	return mfs
}

// Encode renders families in the Prometheus text format.
func Encode(mfs []*dto.MetricFamily) ([]byte, error) {
	var buf bytes.Buffer
	for _, mf := range mfs {
		if _, err := expfmt.MetricFamilyToText(&buf, mf); err != nil {
			return nil, fmt.Errorf("metrics: encode %s: %w", mf.GetName(), err)
		}
	}
	return buf.Bytes(), nil
}

// TextfileWriter writes one exposition file per snapshot.
type TextfileWriter struct {
	path   string
	alerts AlertCounter
}

// NewTextfileWriter returns a writer for path. alerts may be nil.
func NewTextfileWriter(path string, alerts AlertCounter) *TextfileWriter {
	return &TextfileWriter{path: path, alerts: alerts}
}

// Write renders snap and atomically replaces the target file.
func (w *TextfileWriter) Write(snap types.Snapshot) error {
	count := 0
	if w.alerts != nil {
		count = w.alerts.AlertCount()
	}
	data, err := Encode(Families(snap, count))
	if err != nil {
		return err
	}

	dir := filepath.Dir(w.path)
	tmp, err := os.CreateTemp(dir, filepath.Base(w.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("metrics: create temp file: %w", err)
	}
	defer os.Remove(tmp.Name()) //nolint:errcheck // no-op after a successful rename

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("metrics: write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("metrics: close temp file: %w", err)
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return fmt.Errorf("metrics: chmod: %w", err)
	}
	if err := os.Rename(tmp.Name(), w.path); err != nil {
		return fmt.Errorf("metrics: rename: %w", err)
	}
	return nil
}

// Run writes a file for every snapshot from sub until ctx is cancelled or
// the subscription closes. Write errors are logged and do not stop the loop.
func (w *TextfileWriter) Run(ctx context.Context, sub *hub.Subscription) {
	slog.Info("metrics: writing textfile", "path", w.path)
	for {
		select {
		case <-ctx.Done():
			return
		case snap, ok := <-sub.C:
			if !ok {
				return
			}
			if err := w.Write(snap); err != nil {
				slog.Warn("metrics: textfile write failed", "path", w.path, "err", err)
			}
		}
	}
}

func gauge(name, help string, v float64, labels []*dto.LabelPair) *dto.MetricFamily {
	return &dto.MetricFamily{
		Name: proto.String(name),
		Help: proto.String(help),
		Type: dto.MetricType_GAUGE.Enum(),
		Metric: []*dto.Metric{{
			Label: labels,
			Gauge: &dto.Gauge{Value: proto.Float64(v)},
		}},
	}
}

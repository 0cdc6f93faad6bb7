package influx

import (
	"strings"
	"time"

	influxdb2_write "github.com/influxdata/influxdb-client-go/v2/api/write"

	"github.com/sdr-enthusiasts/acarshub/pkg/core"
)

// MessagePoint builds a point for one accepted message, tagged by link
// and station.
func MessagePoint(m *core.Message, action string) *influxdb2_write.Point {
	p := influxdb2_write.NewPointWithMeasurement("message").
		AddTag("link", string(m.Link)).
		AddTag("station_id", m.StationID).
		AddTag("action", action).
		AddField("count", 1).
		AddField("duplicates", m.Duplicates).
		AddField("error", m.Error).
		SetTime(time.Now())

	if m.Label != "" {
		p.AddTag("label", m.Label)
	}
	return p
}

// AlertPoint builds a point recording alert-term matches on a message.
func AlertPoint(m *core.Message) *influxdb2_write.Point {
	return influxdb2_write.NewPointWithMeasurement("alert").
		AddTag("link", string(m.Link)).
		AddTag("station_id", m.StationID).
		AddTag("terms", strings.Join(m.MatchedTerms, ",")).
		AddField("count", len(m.MatchedTerms)).
		SetTime(time.Now())
}

// SystemPoint builds a point with pipeline health counters.
func SystemPoint(groups, queueDepth int, lastWrite time.Duration) *influxdb2_write.Point {
	return influxdb2_write.NewPointWithMeasurement("system").
		AddField("groups", groups).
		AddField("queue_depth", queueDepth).
		AddField("last_db_write_ms", lastWrite.Milliseconds()).
		SetTime(time.Now())
}

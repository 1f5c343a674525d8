package db

import (
	"io"

	"github.com/VictoriaMetrics/metrics"
)

// --------------------------------------------------------------------------
// Metrics
// --------------------------------------------------------------------------

// opMetrics counts collection operations per database, keeping each Database
// on its own metrics set so multiple open databases do not share counters.
type opMetrics struct {
	set *metrics.Set

	sets       *metrics.Counter
	gets       *metrics.Counter
	deletes    *metrics.Counter
	iterations *metrics.Counter
}

func newOpMetrics() *opMetrics {
	s := metrics.NewSet()
	return &opMetrics{
		set:        s,
		sets:       s.NewCounter(`nosqlite_ops_total{op="set"}`),
		gets:       s.NewCounter(`nosqlite_ops_total{op="get"}`),
		deletes:    s.NewCounter(`nosqlite_ops_total{op="delete"}`),
		iterations: s.NewCounter(`nosqlite_ops_total{op="iterate"}`),
	}
}

// WriteMetrics writes the database's operation counters to w in Prometheus
// text exposition format.
func (d *Database) WriteMetrics(w io.Writer) {
	d.metrics.set.WritePrometheus(w)
}

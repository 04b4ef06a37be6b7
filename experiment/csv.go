package experiment

import (
	"encoding/csv"
	"os"
	"strconv"

	"github.com/pkg/errors"
)

var csvHeader = []string{
	"W", "L", "seed", "run_id", "goodput", "goodput_mbps", "total_time", "avg_rtt",
	"retransmissions", "buffer_events", "delayed_acks", "utilization",
}

// WriteCSV writes a header and one record per row to path. The columns are
// the experiment-driver boundary columns with three additions: run_id after
// seed, avg_rtt after total_time, and utilization last.
func WriteCSV(path string, rows []Row) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "creating csv output %q", path)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(csvHeader); err != nil {
		return errors.Wrap(err, "writing csv header")
	}
	for _, r := range rows {
		record := []string{
			strconv.Itoa(r.W),
			strconv.Itoa(r.L),
			strconv.FormatInt(r.Seed, 10),
			r.RunID,
			strconv.FormatFloat(r.GoodputBps, 'f', 2, 64),
			strconv.FormatFloat(r.GoodputBps/1e6, 'f', 4, 64),
			strconv.FormatFloat(r.TotalTime, 'f', 6, 64),
			strconv.FormatFloat(r.AvgRTT, 'f', 6, 64),
			strconv.Itoa(r.Retransmissions),
			strconv.Itoa(r.BufferEvents),
			strconv.Itoa(r.DelayedACKs),
			strconv.FormatFloat(r.Utilization, 'f', 6, 64),
		}
		if err := w.Write(record); err != nil {
			return errors.Wrap(err, "writing csv row")
		}
	}
	w.Flush()
	return errors.Wrap(w.Error(), "flushing csv writer")
}

package trace

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// CSVSink writes each row kind to its own file under dir, emitting each
// file's header when the sink is created and flushing after every row. A
// kind that never receives a row is left as a header-only file.
type CSVSink struct {
	dir string

	task   *csvFile
	freq   *csvFile
	pe     *csvFile
	temp   *csvFile
	load   *csvFile
	system *csvFile
}

type csvFile struct {
	f *os.File
	w *csv.Writer
}

func openCSVFile(path string, header []string) (*csvFile, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("trace: create %s: %w", path, err)
	}
	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		f.Close()
		return nil, fmt.Errorf("trace: write header %s: %w", path, err)
	}
	w.Flush()
	return &csvFile{f: f, w: w}, nil
}

func (c *csvFile) writeRow(row []string) error {
	if err := c.w.Write(row); err != nil {
		return err
	}
	c.w.Flush()
	return c.w.Error()
}

func (c *csvFile) close() error {
	c.w.Flush()
	return c.f.Close()
}

// NewCSVSink creates dir if needed and opens all six trace files within it.
func NewCSVSink(dir string) (*CSVSink, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("trace: mkdir %s: %w", dir, err)
	}
	s := &CSVSink{dir: dir}
	var err error
	if s.task, err = openCSVFile(filepath.Join(dir, "tasks.csv"),
		[]string{"dvfs_mode", "task_id", "cluster", "exec_time_us", "energy_j"}); err != nil {
		return nil, err
	}
	if s.freq, err = openCSVFile(filepath.Join(dir, "frequency.csv"),
		[]string{"pe", "timestamp_us", "frequency_mhz"}); err != nil {
		return nil, err
	}
	if s.pe, err = openCSVFile(filepath.Join(dir, "pes.csv"),
		[]string{"timestamp_us", "pe", "info"}); err != nil {
		return nil, err
	}
	if s.temp, err = openCSVFile(filepath.Join(dir, "temperature.csv"),
		[]string{"timestamp_us", "snippet", "t_max_c", "throttle_state"}); err != nil {
		return nil, err
	}
	if s.load, err = openCSVFile(filepath.Join(dir, "load.csv"),
		[]string{"timestamp_us", "snippet", "n_per_cluster", "n_total"}); err != nil {
		return nil, err
	}
	if s.system, err = openCSVFile(filepath.Join(dir, "system.csv"),
		[]string{"jobs", "dvfs_modes", "exec_time_us", "energy_j", "edp"}); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *CSVSink) WriteTask(r TaskRow) error {
	return s.task.writeRow([]string{
		r.DVFSMode,
		strconv.Itoa(int(r.TaskID)),
		strconv.Itoa(r.Cluster),
		strconv.FormatFloat(r.ExecTimeUs, 'f', -1, 64),
		strconv.FormatFloat(r.EnergyJ, 'f', -1, 64),
	})
}

func (s *CSVSink) WriteFrequency(r FrequencyRow) error {
	return s.freq.writeRow([]string{
		strconv.Itoa(int(r.PE)),
		strconv.FormatInt(r.TimestampUs, 10),
		strconv.Itoa(r.FrequencyMHz),
	})
}

func (s *CSVSink) WritePE(r PERow) error {
	return s.pe.writeRow([]string{
		strconv.FormatInt(r.TimestampUs, 10),
		strconv.Itoa(int(r.PE)),
		formatIntervals(r.Info),
	})
}

func formatIntervals(intervals []Interval) string {
	parts := make([]string, len(intervals))
	for i, iv := range intervals {
		parts[i] = fmt.Sprintf("%d-%d", iv.StartUs, iv.FinishUs)
	}
	return strings.Join(parts, ";")
}

func (s *CSVSink) WriteTemperature(r TemperatureRow) error {
	return s.temp.writeRow([]string{
		strconv.FormatInt(r.TimestampUs, 10),
		strconv.Itoa(r.Snippet),
		strconv.FormatFloat(r.TMaxC, 'f', -1, 64),
		strconv.Itoa(r.ThrottleState),
	})
}

func (s *CSVSink) WriteLoad(r LoadRow) error {
	perCluster := make([]string, len(r.PerCluster))
	for i, n := range r.PerCluster {
		perCluster[i] = strconv.Itoa(n)
	}
	return s.load.writeRow([]string{
		strconv.FormatInt(r.TimestampUs, 10),
		strconv.Itoa(r.Snippet),
		strings.Join(perCluster, ";"),
		strconv.Itoa(r.Total),
	})
}

func (s *CSVSink) WriteSystem(r SystemRow) error {
	return s.system.writeRow([]string{
		strings.Join(r.Jobs, ";"),
		strings.Join(r.DVFSModes, ";"),
		strconv.FormatInt(r.ExecTimeUs, 10),
		strconv.FormatFloat(r.EnergyJ, 'f', -1, 64),
		strconv.FormatFloat(r.EDP, 'f', -1, 64),
	})
}

// Close flushes and closes every open trace file, returning the first error
// encountered (if any) after attempting all of them.
func (s *CSVSink) Close() error {
	var firstErr error
	for _, f := range []*csvFile{s.task, s.freq, s.pe, s.temp, s.load, s.system} {
		if err := f.close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

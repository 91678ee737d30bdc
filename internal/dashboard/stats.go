package dashboard

import (
	"math"
	"sort"
	"strconv"

	"gonum.org/v1/gonum/stat"
)

// anomalyZ is the |z-score| beyond which a value is flagged.
const anomalyZ = 3.0

// ColumnSummary describes one numeric column of a sensor file.
type ColumnSummary struct {
	Column        string  `json:"column"`
	Count         int     `json:"count"`
	Mean          float64 `json:"mean"`
	StdDev        float64 `json:"stddev"`
	Min           float64 `json:"min"`
	Max           float64 `json:"max"`
	P95           float64 `json:"p95"`
	Anomalies     []int   `json:"anomalies,omitempty"` // data row indices, oldest first
	LastAnomalous bool    `json:"last_anomalous"`
}

// summarize computes summary statistics and z-score anomaly flags for one
// numeric column.
func summarize(column string, values []float64) ColumnSummary {
	s := ColumnSummary{Column: column, Count: len(values)}
	if len(values) == 0 {
		return s
	}

	s.Mean = stat.Mean(values, nil)
	s.StdDev = stat.StdDev(values, nil)
	if math.IsNaN(s.StdDev) { // single sample
		s.StdDev = 0
	}

	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)
	s.Min = sorted[0]
	s.Max = sorted[len(sorted)-1]
	s.P95 = stat.Quantile(0.95, stat.Empirical, sorted, nil)

	if s.StdDev > 0 {
		for i, v := range values {
			if math.Abs(v-s.Mean)/s.StdDev > anomalyZ {
				s.Anomalies = append(s.Anomalies, i)
				if i == len(values)-1 {
					s.LastAnomalous = true
				}
			}
		}
	}
	return s
}

// numericColumns extracts the columns of a row set that parse as numbers in
// every row, preserving header order and skipping the timestamp and id
// columns.
func numericColumns(headers []string, rows []map[string]string) map[string][]float64 {
	out := make(map[string][]float64)
	for _, h := range headers {
		if h == "timestamp" || h == "sensor_id" {
			continue
		}
		values := make([]float64, 0, len(rows))
		numeric := true
		for _, row := range rows {
			v, err := strconv.ParseFloat(row[h], 64)
			if err != nil {
				numeric = false
				break
			}
			values = append(values, v)
		}
		if numeric && len(values) > 0 {
			out[h] = values
		}
	}
	return out
}

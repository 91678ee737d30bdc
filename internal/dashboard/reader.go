// Package dashboard serves generated sensor data over a small read-only
// HTTP API with summary statistics and z-score anomaly flags.
package dashboard

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// errAmbiguousSensor marks a name matching more than one discovered file.
var errAmbiguousSensor = errors.New("ambiguous sensor name")

// SensorFile is one discovered output file. File is the path relative to the
// data directory, so files of the same base name in different subdirectories
// stay distinguishable.
type SensorFile struct {
	Name string `json:"name"`
	Path string `json:"-"`
	File string `json:"file"`
}

// discover walks the data directory for CSV output files. The sensor name is
// the file base without the .csv extension.
func discover(dataDir string) ([]SensorFile, error) {
	var files []SensorFile
	err := filepath.WalkDir(dataDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.EqualFold(filepath.Ext(path), ".csv") {
			return nil
		}
		rel, err := filepath.Rel(dataDir, path)
		if err != nil {
			rel = filepath.Base(path)
		}
		base := filepath.Base(path)
		files = append(files, SensorFile{
			Name: strings.TrimSuffix(base, filepath.Ext(base)),
			Path: path,
			File: filepath.ToSlash(rel),
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scanning %s: %w", dataDir, err)
	}
	sort.Slice(files, func(i, j int) bool {
		if files[i].Name != files[j].Name {
			return files[i].Name < files[j].Name
		}
		return files[i].File < files[j].File
	})
	return files, nil
}

// find resolves a sensor name to its output file. A name carried by more
// than one file is an error rather than a silent pick.
func find(dataDir, name string) (SensorFile, error) {
	files, err := discover(dataDir)
	if err != nil {
		return SensorFile{}, err
	}
	var matches []SensorFile
	for _, f := range files {
		if f.Name == name {
			matches = append(matches, f)
		}
	}
	switch len(matches) {
	case 0:
		return SensorFile{}, fmt.Errorf("unknown sensor %q", name)
	case 1:
		return matches[0], nil
	}
	paths := make([]string, len(matches))
	for i, m := range matches {
		paths[i] = m.File
	}
	return SensorFile{}, fmt.Errorf("%w: %q matches %s", errAmbiguousSensor, name, strings.Join(paths, ", "))
}

// loadRows reads a sensor file and returns its header and the last n data
// rows, header-keyed. n <= 0 returns every row. The file is re-read on each
// call so pollers always see freshly appended rows.
func loadRows(path string, n int) ([]string, []map[string]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, nil, err
	}
	if len(records) == 0 {
		return nil, nil, fmt.Errorf("file %s has no header", path)
	}

	headers := records[0]
	data := records[1:]
	if n > 0 && len(data) > n {
		data = data[len(data)-n:]
	}

	rows := make([]map[string]string, 0, len(data))
	for _, record := range data {
		row := make(map[string]string, len(headers))
		for i, header := range headers {
			if i < len(record) {
				row[header] = record[i]
			} else {
				row[header] = ""
			}
		}
		rows = append(rows, row)
	}
	return headers, rows, nil
}

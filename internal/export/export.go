// Package export writes fetched component inventories to CSV files for
// offline review of org automation state.
package export

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/lromao/salesforce-automation-workbench/internal/models"
	"github.com/lromao/salesforce-automation-workbench/internal/salesforce"
)

var header = []string{"Name", "FullName", "RecordId", "Active", "OriginalActive", "Modified"}

// WriteComponents writes one CSV per component type under outputDir and
// returns the number of files written. Types with no components are
// skipped.
func WriteComponents(outputDir string, cols *salesforce.Collections, logger func(string)) (int, error) {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return 0, fmt.Errorf("creating output dir: %w", err)
	}

	fileCount := 0
	for _, t := range models.ComponentTypes {
		comps := cols.Get(t)
		if len(comps) == 0 {
			logger(fmt.Sprintf("Skipping %s: no components", t))
			continue
		}
		path := filepath.Join(outputDir, fmt.Sprintf("%s.csv", t))
		if err := writeCSV(path, comps); err != nil {
			return fileCount, fmt.Errorf("writing %s: %w", path, err)
		}
		fileCount++
		logger(fmt.Sprintf("Wrote %d %s component(s) to %s", len(comps), t, path))
	}
	return fileCount, nil
}

func writeCSV(path string, comps []*models.Component) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		return err
	}
	for _, c := range comps {
		row := []string{
			c.Name,
			c.FullName,
			c.RecordID,
			strconv.FormatBool(c.IsActive()),
			strconv.FormatBool(c.OriginalIsActive()),
			strconv.FormatBool(c.Modified()),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

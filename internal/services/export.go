package services

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/renato0307/sqldesk/internal/domain"
	"github.com/renato0307/sqldesk/internal/logging"
)

// ExportFormat is an output encoding for result sets
type ExportFormat string

const (
	ExportCSV  ExportFormat = "csv"
	ExportJSON ExportFormat = "json"
)

// ErrNothingToExport is returned when a tab has no successful result
var ErrNothingToExport = errors.New("no result to export")

// ExportService writes query results to CSV or JSON
type ExportService struct {
	dir string
	now func() time.Time
}

// NewExportService creates an ExportService that writes files into dir
func NewExportService(dir string) *ExportService {
	return &ExportService{
		dir: dir,
		now: time.Now,
	}
}

// Write encodes a result in the given format
func (s *ExportService) Write(w io.Writer, result domain.QueryResult, format ExportFormat) error {
	if result.Failed() {
		return ErrNothingToExport
	}

	switch format {
	case ExportCSV:
		return writeCSV(w, result)
	case ExportJSON:
		return writeJSON(w, result)
	default:
		return fmt.Errorf("unsupported export format %q", format)
	}
}

// ExportTab writes a tab's result to a timestamped file and returns its path
func (s *ExportService) ExportTab(tab domain.QueryTab, format ExportFormat) (string, error) {
	if tab.Result == nil || tab.Result.Failed() {
		return "", ErrNothingToExport
	}

	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create export directory: %w", err)
	}

	name := fmt.Sprintf("%s-%s.%s", fileSlug(tab.Title), s.now().Format("20060102-150405"), format)
	path := filepath.Join(s.dir, name)

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create export file: %w", err)
	}
	defer f.Close()

	if err := s.Write(f, *tab.Result, format); err != nil {
		return "", fmt.Errorf("failed to write export: %w", err)
	}

	logging.Logger.Info("Result exported", "tab_id", tab.ID, "path", path, "rows", len(tab.Result.Rows))
	return path, nil
}

func writeCSV(w io.Writer, result domain.QueryResult) error {
	cw := csv.NewWriter(w)

	header := make([]string, len(result.Columns))
	for i, c := range result.Columns {
		header[i] = c.Name
	}
	if err := cw.Write(header); err != nil {
		return err
	}

	record := make([]string, len(result.Columns))
	for _, row := range result.Rows {
		for i := range record {
			if i < len(row) {
				record[i] = csvValue(row[i])
			} else {
				record[i] = ""
			}
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

// csvValue renders NULL as an empty field
func csvValue(v any) string {
	if v == nil {
		return ""
	}
	return domain.FormatValue(v)
}

func writeJSON(w io.Writer, result domain.QueryResult) error {
	objects := make([]map[string]any, 0, len(result.Rows))
	for _, row := range result.Rows {
		obj := make(map[string]any, len(result.Columns))
		for i, c := range result.Columns {
			if i < len(row) {
				obj[c.Name] = jsonValue(row[i])
			}
		}
		objects = append(objects, obj)
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(objects)
}

func jsonValue(v any) any {
	switch val := v.(type) {
	case []byte:
		return string(val)
	case time.Time:
		return val.Format(time.RFC3339)
	default:
		return val
	}
}

func fileSlug(title string) string {
	slug := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-':
			return r
		case r >= 'A' && r <= 'Z':
			return r + ('a' - 'A')
		default:
			return '-'
		}
	}, strings.TrimSpace(title))
	slug = strings.Trim(slug, "-")
	if slug == "" {
		return "result"
	}
	return slug
}

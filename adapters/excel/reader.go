package excel

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"datadigest/adapters/datareadiness/coercer"
	"datadigest/domain/dataset"
	"datadigest/internal"
	"datadigest/internal/errors"

	"github.com/xuri/excelize/v2"
)

// DataReader reads CSV and Excel files into datasets
type DataReader struct {
	config  ReaderConfig
	coercer *coercer.TypeCoercer
	logger  *internal.Logger
}

// NewDataReader creates a reader that infers column types with c
func NewDataReader(config ReaderConfig, c *coercer.TypeCoercer, logger *internal.Logger) *DataReader {
	if c == nil {
		c = coercer.NewTypeCoercer(coercer.DefaultConfig())
	}
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &DataReader{config: config, coercer: c, logger: logger.With("DataReader")}
}

// FormatFromName picks the format from a file name's extension
func FormatFromName(name string) (Format, error) {
	switch ext := strings.ToLower(filepath.Ext(name)); ext {
	case ".csv":
		return FormatCSV, nil
	case ".xlsx":
		return FormatXLSX, nil
	default:
		return "", errors.UnsupportedFormat(ext)
	}
}

// DatasetName derives a dataset name from a file name
func DatasetName(fileName string) string {
	base := filepath.Base(fileName)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// LoadFile reads the file at path and builds a dataset from it
func (r *DataReader) LoadFile(path string) (*dataset.Dataset, *Table, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil, errors.NotFound("file " + path)
		}
		return nil, nil, errors.Wrapf(err, "failed to open %s", path)
	}
	defer f.Close()
	return r.Load(filepath.Base(path), f)
}

// Load reads an upload named fileName from src and builds a dataset from it
func (r *DataReader) Load(fileName string, src io.Reader) (*dataset.Dataset, *Table, error) {
	table, err := r.Read(fileName, src)
	if err != nil {
		return nil, nil, err
	}

	start := time.Now()
	ds, err := r.coercer.BuildDataset(table.Name, table.Headers, table.Records, nil)
	if err != nil {
		return nil, nil, err
	}
	r.logger.Debug("built dataset %s from %s in %.2fms (%d rows, %d columns)",
		ds.ID(), fileName, float64(time.Since(start).Nanoseconds())/1e6, ds.RowCount(), ds.ColumnCount())
	return ds, table, nil
}

// Read parses an upload named fileName without inferring types
func (r *DataReader) Read(fileName string, src io.Reader) (*Table, error) {
	format, err := FormatFromName(fileName)
	if err != nil {
		return nil, err
	}

	data, err := r.readAll(src)
	if err != nil {
		return nil, err
	}

	readStart := time.Now()
	var rows [][]string
	switch format {
	case FormatCSV:
		rows, err = readCSVRows(data)
	case FormatXLSX:
		rows, err = r.readExcelRows(data)
	}
	if err != nil {
		return nil, err
	}
	r.logger.Debug("%s file read in %.2fms (%d rows)",
		strings.ToUpper(string(format)), float64(time.Since(readStart).Nanoseconds())/1e6, len(rows))

	if len(rows) == 0 {
		return nil, errors.InvalidInput(fmt.Sprintf("%s has no header row", fileName))
	}
	return processRows(DatasetName(fileName), format, rows), nil
}

func (r *DataReader) readAll(src io.Reader) ([]byte, error) {
	if r.config.MaxBytes <= 0 {
		data, err := io.ReadAll(src)
		if err != nil {
			return nil, errors.Wrap(err, "failed to read upload")
		}
		return data, nil
	}

	data, err := io.ReadAll(io.LimitReader(src, r.config.MaxBytes+1))
	if err != nil {
		return nil, errors.Wrap(err, "failed to read upload")
	}
	if int64(len(data)) > r.config.MaxBytes {
		return nil, errors.TooLarge(r.config.MaxBytes)
	}
	return data, nil
}

func readCSVRows(data []byte) ([][]string, error) {
	reader := csv.NewReader(bytes.NewReader(bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))))
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, errors.WithCode(errors.CodeInvalidInput, fmt.Errorf("failed to parse CSV: %w", err))
	}
	return rows, nil
}

// readExcelRows reads the configured sheet, or the first one
func (r *DataReader) readExcelRows(data []byte) ([][]string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, errors.WithCode(errors.CodeInvalidInput, fmt.Errorf("failed to open Excel file: %w", err))
	}
	defer f.Close()

	sheet := r.config.Sheet
	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, errors.InvalidInput("Excel file has no sheets")
		}
		sheet = sheets[0]
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, errors.WithCode(errors.CodeInvalidInput, fmt.Errorf("failed to read sheet %s: %w", sheet, err))
	}
	return rows, nil
}

// processRows turns a header row and string rows into raw records. Blank
// rows are skipped; cells beyond the header are dropped.
func processRows(name string, format Format, rows [][]string) *Table {
	headers := make([]string, len(rows[0]))
	for i, header := range rows[0] {
		headers[i] = strings.TrimSpace(header)
	}

	records := make([]map[string]interface{}, 0, len(rows)-1)
	for _, row := range rows[1:] {
		if isBlankRow(row) {
			continue
		}
		record := make(map[string]interface{}, len(headers))
		for j, header := range headers {
			if j < len(row) {
				record[header] = strings.TrimSpace(row[j])
			} else {
				record[header] = nil
			}
		}
		records = append(records, record)
	}

	return &Table{Name: name, Format: format, Headers: headers, Records: records}
}

func isBlankRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

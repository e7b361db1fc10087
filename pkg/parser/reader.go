package parser

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/extrame/xls"
	"golang.org/x/text/encoding/charmap"
)

const (
	bom        = "\ufeff"
	// maxXLSRows is the BIFF8 sheet limit, so a sheet is never cut short.
	maxXLSRows = 65536
)

var oleMagic = []byte{0xd0, 0xcf, 0x11, 0xe0}

// ReadFile loads an export from disk as text. XLS workbooks are flattened to
// CSV text so every parser sees the same shape of input.
func ReadFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnreadableFile, err)
	}
	return Decode(filepath.Base(path), data)
}

// Decode converts raw file bytes to text, detecting XLS by magic bytes or
// extension.
func Decode(name string, data []byte) (string, error) {
	if IsXLS(name, data) {
		return xlsToCSV(data)
	}
	return decodeText(data), nil
}

func IsXLS(name string, data []byte) bool {
	return bytes.HasPrefix(data, oleMagic) || strings.EqualFold(filepath.Ext(name), ".xls")
}

// decodeText strips a UTF-8 BOM and falls back to Windows-1252 for exports
// that are not valid UTF-8.
func decodeText(data []byte) string {
	data = bytes.TrimPrefix(data, []byte(bom))
	if utf8.Valid(data) {
		return normalizeNewlines(string(data))
	}
	decoded, err := charmap.Windows1252.NewDecoder().Bytes(data)
	if err != nil {
		return normalizeNewlines(string(data))
	}
	return normalizeNewlines(string(decoded))
}

func normalizeNewlines(s string) string {
	return strings.ReplaceAll(s, "\r\n", "\n")
}

func xlsToCSV(data []byte) (string, error) {
	workbook, err := xls.OpenReader(bytes.NewReader(data), "utf-8")
	if err != nil {
		return "", fmt.Errorf("%w: open workbook: %v", ErrUnreadableFile, err)
	}
	if workbook == nil || workbook.NumSheets() == 0 {
		return "", fmt.Errorf("%w: no worksheet found", ErrMalformedFile)
	}
	first := workbook.GetSheet(0)
	if first == nil || first.MaxRow == 0 {
		return "", fmt.Errorf("%w: no data found in sheet", ErrMalformedFile)
	}

	// ReadAllCells appends every sheet in order; statements live on the
	// first one.
	rows := workbook.ReadAllCells(maxXLSRows)
	if n := int(first.MaxRow) + 1; len(rows) > n {
		rows = rows[:n]
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	for _, row := range rows {
		cells := make([]string, len(row))
		for i, cell := range row {
			cells[i] = strings.TrimSpace(cell)
		}
		if err := w.Write(cells); err != nil {
			return "", fmt.Errorf("%w: %v", ErrMalformedFile, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", fmt.Errorf("%w: %v", ErrMalformedFile, err)
	}
	return buf.String(), nil
}

package dataset

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

type xlsxLoader struct{}

func (xlsxLoader) CanLoad(filename string) bool {
	return strings.HasSuffix(strings.ToLower(filename), ".xlsx")
}

// Load reads the selected sheet of a workbook. If SheetName is empty and
// SheetIndex <= 0, the first sheet is used.
func (xlsxLoader) Load(path string, opt Options) (*Dataset, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read xlsx: %w", err)
	}
	return ReadXLSX(filepath.Base(path), b, opt)
}

// Parts of the SpreadsheetML package that the loader reads.
type (
	xlsxWorkbook struct {
		Sheets []struct {
			Name    string `xml:"name,attr"`
			SheetID int    `xml:"sheetId,attr"`
			RID     string `xml:"id,attr"`
		} `xml:"sheets>sheet"`
	}
	xlsxRels struct {
		Rels []struct {
			ID     string `xml:"Id,attr"`
			Target string `xml:"Target,attr"`
		} `xml:"Relationship"`
	}
	// xlsxText is a plain <t> or a run of rich-text <r><t> pieces.
	xlsxText struct {
		T    string `xml:"t"`
		Runs []struct {
			T string `xml:"t"`
		} `xml:"r"`
	}
	xlsxSST struct {
		Items []xlsxText `xml:"si"`
	}
	xlsxCell struct {
		Ref    string   `xml:"r,attr"`
		Type   string   `xml:"t,attr"`
		V      string   `xml:"v"`
		Inline xlsxText `xml:"is"`
	}
	xlsxSheet struct {
		Rows []struct {
			Cells []xlsxCell `xml:"c"`
		} `xml:"sheetData>row"`
	}
)

func (t xlsxText) String() string {
	if len(t.Runs) == 0 {
		return t.T
	}
	var b strings.Builder
	b.WriteString(t.T)
	for _, r := range t.Runs {
		b.WriteString(r.T)
	}
	return b.String()
}

// ReadXLSX parses workbook bytes. The first row of the sheet is the header.
// Cells keep their stored kind: numbers become float64, booleans bool,
// ISO date cells time.Time, error cells missing, and text goes through the
// null tokens like CSV cells do.
func ReadXLSX(name string, data []byte, opt Options) (*Dataset, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("open xlsx: %w", err)
	}
	part, err := sheetPart(zr, name, opt.SheetName, opt.SheetIndex)
	if err != nil {
		return nil, err
	}
	var sheet xlsxSheet
	if ok, err := decodePart(zr, part, &sheet); err != nil {
		return nil, err
	} else if !ok {
		return nil, fmt.Errorf("xlsx: sheet part %s missing in %s", part, name)
	}
	var sst xlsxSST
	if _, err := decodePart(zr, "xl/sharedStrings.xml", &sst); err != nil {
		return nil, err
	}

	nulls := nullSet(opt.NullValues)
	decode := func(c xlsxCell) any {
		switch c.Type {
		case "s":
			i, err := strconv.Atoi(strings.TrimSpace(c.V))
			if err != nil || i < 0 || i >= len(sst.Items) {
				return nil
			}
			return cellValue(sst.Items[i].String(), nulls)
		case "inlineStr":
			return cellValue(c.Inline.String(), nulls)
		case "str":
			return cellValue(c.V, nulls)
		case "b":
			return strings.TrimSpace(c.V) == "1"
		case "e":
			return nil
		case "d":
			if ts, err := time.Parse(time.RFC3339, strings.TrimSpace(c.V)); err == nil {
				return ts
			}
			return cellValue(c.V, nulls)
		default:
			if strings.TrimSpace(c.V) == "" {
				return nil
			}
			if f, err := strconv.ParseFloat(strings.TrimSpace(c.V), 64); err == nil {
				return f
			}
			return cellValue(c.V, nulls)
		}
	}

	if len(sheet.Rows) == 0 {
		return New(name)
	}
	var header []string
	for _, v := range placeCells(sheet.Rows[0].Cells, decode) {
		header = append(header, Text(v))
	}
	if len(header) == 0 {
		return New(name)
	}
	rows := make([][]any, 0, len(sheet.Rows)-1)
	for _, r := range sheet.Rows[1:] {
		rows = append(rows, placeCells(r.Cells, decode))
	}
	return fromValues(name, header, rows)
}

// placeCells positions decoded cells by their reference so skipped cells
// stay missing.
func placeCells(cells []xlsxCell, decode func(xlsxCell) any) []any {
	var out []any
	for _, c := range cells {
		col := colIndex(c.Ref)
		if col < 0 {
			col = len(out)
		}
		for len(out) <= col {
			out = append(out, nil)
		}
		out[col] = decode(c)
	}
	return out
}

// sheetPart maps a sheet name or 1-based index onto its part path.
func sheetPart(zr *zip.Reader, book, sheetName string, sheetIndex int) (string, error) {
	var wb xlsxWorkbook
	if _, err := decodePart(zr, "xl/workbook.xml", &wb); err != nil {
		return "", err
	}
	var rels xlsxRels
	if _, err := decodePart(zr, "xl/_rels/workbook.xml.rels", &rels); err != nil {
		return "", err
	}
	target := func(rid string) (string, bool) {
		for _, r := range rels.Rels {
			if r.ID == rid {
				return normalizeRelPath(r.Target), true
			}
		}
		return "", false
	}

	if sheetName != "" {
		names := make([]string, len(wb.Sheets))
		for i, s := range wb.Sheets {
			names[i] = s.Name
			if strings.EqualFold(s.Name, sheetName) {
				if p, ok := target(s.RID); ok {
					return p, nil
				}
			}
		}
		return "", fmt.Errorf("sheet %q not found in workbook %q (available: %s)",
			sheetName, book, strings.Join(names, ", "))
	}
	idx := sheetIndex
	if idx <= 0 {
		idx = 1
	}
	for _, s := range wb.Sheets {
		if s.SheetID == idx {
			if p, ok := target(s.RID); ok {
				return p, nil
			}
		}
	}
	return fmt.Sprintf("xl/worksheets/sheet%d.xml", idx), nil
}

// decodePart unmarshals one package part into v. A missing part is not an
// error; ok reports whether it was present.
func decodePart(zr *zip.Reader, name string, v any) (ok bool, err error) {
	for _, f := range zr.File {
		if f.Name != name {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return false, fmt.Errorf("open %s: %w", name, err)
		}
		defer rc.Close()
		b, err := io.ReadAll(rc)
		if err != nil {
			return false, fmt.Errorf("read %s: %w", name, err)
		}
		if err := xml.Unmarshal(b, v); err != nil {
			return false, fmt.Errorf("parse %s: %w", name, err)
		}
		return true, nil
	}
	return false, nil
}

// colIndex converts a cell reference like "C12" to a 0-based column; -1 when
// the reference has no column letters.
func colIndex(ref string) int {
	idx := 0
	n := 0
	for _, r := range strings.ToUpper(ref) {
		if r < 'A' || r > 'Z' {
			break
		}
		idx = idx*26 + int(r-'A'+1)
		n++
	}
	if n == 0 {
		return -1
	}
	return idx - 1
}

// normalizeRelPath turns a relationship target into a package part path.
// Targets may be absolute ("/xl/worksheets/sheet1.xml") or relative to xl/.
func normalizeRelPath(rel string) string {
	rel = strings.TrimPrefix(rel, "/")
	if strings.HasPrefix(rel, "xl/") {
		return rel
	}
	return "xl/" + rel
}

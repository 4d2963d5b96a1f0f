package loader

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// table is a raw header plus string rows, before normalization.
// A nil row marks a line the reader could not parse.
type table struct {
	header []string
	rows   [][]string
}

func cleanHeader(h string) string {
	h = strings.TrimPrefix(h, "\ufeff")
	h = strings.TrimSpace(h)
	return strings.ReplaceAll(h, `"`, "")
}

func readCSVTable(r io.Reader) (*table, error) {
	reader := csv.NewReader(r)
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("%w: empty source", errNoHeader)
	}
	if err != nil {
		return nil, fmt.Errorf("read CSV header: %w", err)
	}

	t := &table{header: make([]string, len(header))}
	for i, h := range header {
		t.header[i] = cleanHeader(h)
	}

	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		var parseErr *csv.ParseError
		if errors.As(err, &parseErr) {
			t.rows = append(t.rows, nil)
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("read CSV row: %w", err)
		}
		t.rows = append(t.rows, row)
	}

	return t, nil
}

// readHTMLTable reads the first <table>: header cells from th (or the first row), data from td
func readHTMLTable(r io.Reader) (*table, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parse HTML: %w", err)
	}

	tableSel := doc.Find("table").First()
	if tableSel.Length() == 0 {
		return nil, fmt.Errorf("%w: no <table> element", errNoHeader)
	}

	t := &table{}
	tableSel.Find("tr").Each(func(i int, row *goquery.Selection) {
		if t.header == nil {
			cells := row.Find("th")
			if cells.Length() == 0 {
				cells = row.Find("td")
			}
			if cells.Length() == 0 {
				return
			}
			cells.Each(func(_ int, cell *goquery.Selection) {
				t.header = append(t.header, cleanHeader(cell.Text()))
			})
			return
		}

		cells := row.Find("td")
		if cells.Length() == 0 {
			return
		}
		values := make([]string, 0, cells.Length())
		cells.Each(func(_ int, cell *goquery.Selection) {
			values = append(values, cell.Text())
		})
		t.rows = append(t.rows, values)
	})

	if t.header == nil {
		return nil, fmt.Errorf("%w: table has no rows", errNoHeader)
	}
	return t, nil
}

package sheets

import (
	"fmt"

	sheetsv4 "google.golang.org/api/sheets/v4"
)

// ReadRows returns every row of a worksheet as strings, header included.
func (c *Client) ReadRows(sheet string) ([][]string, error) {
	resp, err := c.srv.Spreadsheets.Values.Get(c.spreadsheetID, sheet+"!A:Z").Do()
	if err != nil {
		return nil, err
	}
	rows := make([][]string, 0, len(resp.Values))
	for _, raw := range resp.Values {
		row := make([]string, len(raw))
		for j, cell := range raw {
			if cell != nil {
				row[j] = fmt.Sprint(cell)
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// OverwriteRows replaces the full contents of a worksheet. The Sheets API
// has no partial-append primitive we can rely on for our read-modify-write
// cycle, so writes always clear and rewrite the range.
func (c *Client) OverwriteRows(sheet string, rows [][]string) error {
	_, err := c.srv.Spreadsheets.Values.Clear(c.spreadsheetID, sheet+"!A:Z", &sheetsv4.ClearValuesRequest{}).Do()
	if err != nil {
		return err
	}
	values := make([][]interface{}, len(rows))
	for i, row := range rows {
		cells := make([]interface{}, len(row))
		for j, cell := range row {
			cells[j] = cell
		}
		values[i] = cells
	}
	vr := &sheetsv4.ValueRange{Values: values}
	_, err = c.srv.Spreadsheets.Values.Update(c.spreadsheetID, sheet+"!A1", vr).
		ValueInputOption("RAW").
		Do()
	return err
}

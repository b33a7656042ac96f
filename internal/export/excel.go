package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/mzjcars/stockdesk/internal/models"
	"github.com/mzjcars/stockdesk/internal/stock"
	"github.com/xuri/excelize/v2"
)

const stockSheet = "Stock"

var stockHeader = []string{
	"VIN", "Car", "Variant", "Dealer", "Model Year",
	"Ext Color", "Int Color", "Plate", "Batch", "Location", "Notes",
}

// WriteStock renders the vehicle list as a spreadsheet, one row per record in
// the stored order.
func WriteStock(w io.Writer, vehicles []models.VehicleRecord) error {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(stockSheet)
	if err != nil {
		return err
	}
	f.SetActiveSheet(index)
	f.DeleteSheet("Sheet1")

	for col, title := range stockHeader {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(stockSheet, cell, title); err != nil {
			return err
		}
	}

	for i, v := range vehicles {
		row := []interface{}{
			v.VIN, v.Car, v.Variant, v.Dealer, v.ModelYear,
			v.ExtColor, v.IntColor, v.Plate, v.BatchName, string(v.Location), v.Notes,
		}
		for col, value := range row {
			cell, err := excelize.CoordinatesToCellName(col+1, i+2)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(stockSheet, cell, value); err != nil {
				return err
			}
		}
	}

	return f.Write(w)
}

// RowError is one rejected spreadsheet row.
type RowError struct {
	Row    int    `json:"row"`
	Reason string `json:"reason"`
}

// ImportResult reports what a bulk import produced.
type ImportResult struct {
	Vehicles []models.VehicleRecord `json:"vehicles"`
	Rejected []RowError             `json:"rejected"`
}

// ReadStock parses an uploaded spreadsheet back into vehicle records. The
// first row is the header and is skipped. Rows missing a VIN, a car name or a
// valid location are rejected individually; one bad row never sinks the batch.
func ReadStock(r io.Reader) (*ImportResult, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, &stock.ValidationError{Reason: "file is not a readable spreadsheet"}
	}
	defer f.Close()

	sheet := stockSheet
	if idx, err := f.GetSheetIndex(stockSheet); err != nil || idx < 0 {
		sheet = f.GetSheetName(0)
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, err
	}
	if len(rows) < 2 {
		return nil, &stock.ValidationError{Reason: "spreadsheet has no data rows"}
	}

	result := &ImportResult{}
	for i, row := range rows[1:] {
		rowNum := i + 2
		field := func(col int) string {
			if col < len(row) {
				return strings.TrimSpace(row[col])
			}
			return ""
		}

		v := models.VehicleRecord{
			VIN:       field(0),
			Car:       field(1),
			Variant:   field(2),
			Dealer:    field(3),
			ModelYear: field(4),
			ExtColor:  field(5),
			IntColor:  field(6),
			Plate:     field(7),
			BatchName: field(8),
			Location:  models.Location(field(9)),
			Notes:     field(10),
		}

		switch {
		case v.VIN == "":
			result.Rejected = append(result.Rejected, RowError{Row: rowNum, Reason: "vin is required"})
		case v.Car == "":
			result.Rejected = append(result.Rejected, RowError{Row: rowNum, Reason: "car is required"})
		case !v.Location.IsValid():
			result.Rejected = append(result.Rejected, RowError{
				Row:    rowNum,
				Reason: fmt.Sprintf("location %q is not in the fixed location set", string(v.Location)),
			})
		default:
			result.Vehicles = append(result.Vehicles, v)
		}
	}
	return result, nil
}

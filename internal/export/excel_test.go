package export

import (
	"bytes"
	"strings"
	"testing"

	"github.com/mzjcars/stockdesk/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func sampleVehicle(vin string) models.VehicleRecord {
	return models.VehicleRecord{
		VIN:       vin,
		Car:       "Land Cruiser",
		Variant:   "GXR",
		ModelYear: "2025",
		ExtColor:  "White",
		IntColor:  "Black",
		Location:  models.MakeLocation(models.SiteWarehouse, models.StatusAvailable),
	}
}

func TestWriteStock_RoundTrip(t *testing.T) {
	vehicles := []models.VehicleRecord{sampleVehicle("V1"), sampleVehicle("V2")}

	var buf bytes.Buffer
	require.NoError(t, WriteStock(&buf, vehicles))

	result, err := ReadStock(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	require.Len(t, result.Vehicles, 2)
	assert.Empty(t, result.Rejected)
	assert.Equal(t, "V1", result.Vehicles[0].VIN)
	assert.Equal(t, "Land Cruiser", result.Vehicles[0].Car)
	assert.Equal(t, vehicles[0].Location, result.Vehicles[0].Location)
}

func TestReadStock_RejectsBadRows(t *testing.T) {
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	rows := [][]interface{}{
		{"VIN", "Car", "Variant", "Dealer", "Model Year", "Ext Color", "Int Color", "Plate", "Batch", "Location", "Notes"},
		{"V1", "Camry", "SE", "", "2025", "Silver", "Black", "", "", "Warehouse : Available Stock", ""},
		{"", "Camry", "SE", "", "2025", "Silver", "Black", "", "", "Warehouse : Available Stock", ""},
		{"V3", "Camry", "SE", "", "2025", "Silver", "Black", "", "", "Somewhere Else", ""},
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(sheet, cell, &row))
	}

	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))

	result, err := ReadStock(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	require.Len(t, result.Vehicles, 1)
	assert.Equal(t, "V1", result.Vehicles[0].VIN)

	require.Len(t, result.Rejected, 2)
	assert.Equal(t, 3, result.Rejected[0].Row)
	assert.Contains(t, result.Rejected[0].Reason, "vin is required")
	assert.Equal(t, 4, result.Rejected[1].Row)
	assert.Contains(t, result.Rejected[1].Reason, "not in the fixed location set")
}

func TestReadStock_NotASpreadsheet(t *testing.T) {
	_, err := ReadStock(strings.NewReader("not a spreadsheet"))
	require.Error(t, err)
}

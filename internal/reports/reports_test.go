package reports

import (
	"testing"

	"github.com/mzjcars/stockdesk/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rec(vin, car, variant, year string, loc models.Location) models.VehicleRecord {
	return models.VehicleRecord{VIN: vin, Car: car, Variant: variant, ModelYear: year, Location: loc}
}

func TestGroupedInventory(t *testing.T) {
	wh := models.MakeLocation(models.SiteWarehouse, models.StatusAvailable)
	stock := []models.VehicleRecord{
		rec("V1", "Camry", "GLE", "2024", wh),
		rec("V2", "Camry", "GLE", "2024", wh),
		rec("V3", "Camry", "SE", "2024", wh),
		rec("V4", "Corolla", "XLI", "2025", wh),
	}

	groups := GroupedInventory(stock)
	require.Len(t, groups, 3)
	assert.Equal(t, InventoryGroup{Car: "Camry", Variant: "GLE", ModelYear: "2024", Count: 2}, groups[0])
	assert.Equal(t, InventoryGroup{Car: "Camry", Variant: "SE", ModelYear: "2024", Count: 1}, groups[1])
	assert.Equal(t, InventoryGroup{Car: "Corolla", Variant: "XLI", ModelYear: "2025", Count: 1}, groups[2])
}

func TestGroupedInventory_Idempotent(t *testing.T) {
	wh := models.MakeLocation(models.SiteWarehouse, models.StatusAvailable)
	stock := []models.VehicleRecord{
		rec("V1", "Camry", "GLE", "2024", wh),
		rec("V2", "Corolla", "XLI", "2025", wh),
		rec("V3", "Camry", "GLE", "2024", wh),
	}
	assert.Equal(t, GroupedInventory(stock), GroupedInventory(stock))
}

func TestBranchShortages(t *testing.T) {
	b1 := models.MakeLocation(models.SiteBranch1, models.StatusAvailable)
	b3 := models.MakeLocation(models.SiteBranch3, models.StatusWithNotes)

	combo := func(vin string, loc models.Location) models.VehicleRecord {
		v := rec(vin, "Land Cruiser", "GXR", "2025", loc)
		v.IntColor = "Beige"
		v.ExtColor = "White"
		return v
	}

	t.Run("missing branch is flagged once", func(t *testing.T) {
		stock := []models.VehicleRecord{combo("V1", b1), combo("V2", b3)}
		shortages := BranchShortages(stock)
		require.Len(t, shortages, 1)
		assert.Equal(t, models.SiteBranch2, shortages[0].Branch)
		assert.Equal(t, "Land Cruiser", shortages[0].Car)
	})

	t.Run("sold rows are out of the denominator", func(t *testing.T) {
		soldB2 := models.MakeLocation(models.SiteBranch2, models.StatusSoldPending)
		stock := []models.VehicleRecord{combo("V1", b1), combo("V2", b3), combo("V3", soldB2)}
		shortages := BranchShortages(stock)
		require.Len(t, shortages, 1)
		assert.Equal(t, models.SiteBranch2, shortages[0].Branch)
	})

	t.Run("bookkeeping rows are ignored", func(t *testing.T) {
		ghost := combo("V9", b1)
		ghost.Car = ""
		stock := []models.VehicleRecord{ghost}
		assert.Empty(t, BranchShortages(stock))
	})

	t.Run("fully stocked combination reports nothing", func(t *testing.T) {
		b2 := models.MakeLocation(models.SiteBranch2, models.StatusAvailable)
		stock := []models.VehicleRecord{combo("V1", b1), combo("V2", b2), combo("V3", b3)}
		assert.Empty(t, BranchShortages(stock))
	})
}

func TestLiveStockTotals(t *testing.T) {
	stock := []models.VehicleRecord{
		rec("V1", "Camry", "GLE", "2024", models.MakeLocation(models.SiteWarehouse, models.StatusAvailable)),
		rec("V2", "Camry", "GLE", "2024", models.MakeLocation(models.SiteAgency, models.StatusAvailable)),
		rec("V3", "Camry", "GLE", "2024", models.MakeLocation(models.SiteBranch1, models.StatusSoldPending)),
		rec("V4", "Camry", "GLE", "2024", models.MakeLocation(models.SiteBranch1, models.StatusSoldDelivered)),
	}

	totals := LiveStockTotals(stock)
	assert.Equal(t, 4, totals.Total)
	assert.Equal(t, 3, totals.Live)
	assert.Equal(t, 1, totals.Agency)
	assert.Equal(t, 2, totals.Dealership)
}

func TestStats(t *testing.T) {
	state := models.StockState{
		Stock: []models.VehicleRecord{
			rec("V1", "Camry", "GLE", "2024", models.MakeLocation(models.SiteWarehouse, models.StatusAvailable)),
			rec("V2", "Camry", "GLE", "2024", models.MakeLocation(models.SiteWarehouse, models.StatusSoldPending)),
			rec("V3", "Camry", "GLE", "2024", models.MakeLocation(models.SiteBranch2, models.StatusSoldDelivered)),
			rec("V4", "Camry", "GLE", "2024", models.MakeLocation(models.SiteAgency, models.StatusAvailable)),
		},
		Moves: []models.TransferRecord{{ID: "m1"}},
	}
	requests := []models.Request{
		{Status: models.RequestNew},
		{Status: models.RequestComplete},
	}

	stats := Stats(state, requests)
	assert.Equal(t, 4, stats.Total)
	assert.Equal(t, 1, stats.Available)
	assert.Equal(t, 1, stats.Pending)
	assert.Equal(t, 1, stats.Delivered)
	assert.Equal(t, 1, stats.Agency)
	assert.Equal(t, 1, stats.Moves)
	assert.Equal(t, 1, stats.OpenRequests)
}

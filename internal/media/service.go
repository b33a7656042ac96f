package media

import (
	"context"
	"sort"
	"strings"

	"github.com/mzjcars/stockdesk/internal/db"
	"github.com/mzjcars/stockdesk/internal/models"
	"github.com/mzjcars/stockdesk/internal/stock"
	log "github.com/sirupsen/logrus"
)

// Service keeps the media spec tracker in step with live stock. Specs are
// created lazily from the vehicles currently on the floor and are never
// deleted when the last unit of a combination sells.
type Service struct {
	specs db.MediaSpecCollection
	stock *stock.Service
}

func NewService(specs db.MediaSpecCollection, stockSvc *stock.Service) *Service {
	return &Service{specs: specs, stock: stockSvc}
}

// SpecOverview pairs a tracked spec with the number of live units that
// currently share it.
type SpecOverview struct {
	models.MediaSpec
	Units int `json:"units"`
}

// SpecPatch carries the editable tracker flags. Nil fields are left untouched.
type SpecPatch struct {
	Shot        *bool   `json:"shot,omitempty"`
	Edited      *bool   `json:"edited,omitempty"`
	SpecsReel   *bool   `json:"specsReel,omitempty"`
	ShootDate   *string `json:"shootDate,omitempty"`
	InAgenda    *bool   `json:"inAgenda,omitempty"`
	AgendaMonth *string `json:"agendaMonth,omitempty"`
	AgendaYear  *string `json:"agendaYear,omitempty"`
}

// List returns every tracked spec with its live unit count. Combinations seen
// in live stock for the first time are registered before the list is built,
// so a freshly added vehicle shows up without any manual step.
func (s *Service) List(ctx context.Context) ([]SpecOverview, error) {
	state, err := s.stock.Snapshot(ctx)
	if err != nil {
		return nil, err
	}

	units := make(map[string]int)
	sample := make(map[string]models.VehicleRecord)
	for _, v := range state.Stock {
		if !v.IsActualRow() || v.Location.IsSoldOrAgency() {
			continue
		}
		key := models.SpecKey(v)
		units[key]++
		if _, ok := sample[key]; !ok {
			sample[key] = v
		}
	}

	stored, err := s.specs.FindMediaSpecs(ctx)
	if err != nil {
		return nil, err
	}
	known := make(map[string]models.MediaSpec, len(stored))
	for _, spec := range stored {
		known[spec.Key] = spec
	}

	for key, v := range sample {
		if _, ok := known[key]; ok {
			continue
		}
		spec := models.MediaSpec{
			Key:       key,
			Car:       v.Car,
			Variant:   v.Variant,
			ExtColor:  v.ExtColor,
			IntColor:  v.IntColor,
			ModelYear: v.ModelYear,
		}
		if err := s.specs.UpsertMediaSpec(ctx, spec); err != nil {
			log.WithFields(log.Fields{"key": key, "error": err}).Warn("Failed to register media spec")
			continue
		}
		known[key] = spec
	}

	overviews := make([]SpecOverview, 0, len(known))
	for key, spec := range known {
		overviews = append(overviews, SpecOverview{MediaSpec: spec, Units: units[key]})
	}
	sort.Slice(overviews, func(i, j int) bool {
		if overviews[i].Car != overviews[j].Car {
			return overviews[i].Car < overviews[j].Car
		}
		return overviews[i].Key < overviews[j].Key
	})
	return overviews, nil
}

// Update applies tracker flag changes to one spec.
func (s *Service) Update(ctx context.Context, key string, patch SpecPatch) (*models.MediaSpec, error) {
	if strings.TrimSpace(key) == "" {
		return nil, &stock.ValidationError{Reason: "spec key is required"}
	}
	spec, err := s.specs.FindMediaSpecByKey(ctx, key)
	if err != nil {
		return nil, &stock.NotFoundError{Resource: "media spec", Key: key}
	}

	if patch.Shot != nil {
		spec.Shot = *patch.Shot
	}
	if patch.Edited != nil {
		spec.Edited = *patch.Edited
	}
	if patch.SpecsReel != nil {
		spec.SpecsReel = *patch.SpecsReel
	}
	if patch.ShootDate != nil {
		spec.ShootDate = *patch.ShootDate
	}
	if patch.InAgenda != nil {
		spec.InAgenda = *patch.InAgenda
	}
	if patch.AgendaMonth != nil {
		spec.AgendaMonth = *patch.AgendaMonth
	}
	if patch.AgendaYear != nil {
		spec.AgendaYear = *patch.AgendaYear
	}

	if err := s.specs.UpsertMediaSpec(ctx, *spec); err != nil {
		return nil, &stock.RemoteStoreError{Op: "update media spec", Err: err}
	}
	return spec, nil
}

package models

import (
	"regexp"
	"strings"
	"time"
)

// MediaSpec tracks photography and editing status for one unique visual
// specification. It is keyed by the (car, variant, colors, year) combination,
// not by VIN: a spec is shot once no matter how many physical units share it.
// Specs are created lazily the first time a combination shows up in live stock
// and never deleted.
type MediaSpec struct {
	Key         string    `bson:"_id" json:"key"`
	Car         string    `bson:"car" json:"car"`
	Variant     string    `bson:"variant" json:"variant"`
	ExtColor    string    `bson:"ext_color" json:"extColor"`
	IntColor    string    `bson:"int_color" json:"intColor"`
	ModelYear   string    `bson:"model_year" json:"modelYear"`
	Shot        bool      `bson:"shot" json:"shot"`
	Edited      bool      `bson:"edited" json:"edited"`
	SpecsReel   bool      `bson:"specs_reel" json:"specsReel"`
	ShootDate   string    `bson:"shoot_date,omitempty" json:"shootDate,omitempty"`
	InAgenda    bool      `bson:"in_agenda" json:"inAgenda"`
	AgendaMonth string    `bson:"agenda_month,omitempty" json:"agendaMonth,omitempty"`
	AgendaYear  string    `bson:"agenda_year,omitempty" json:"agendaYear,omitempty"`
	UpdatedAt   time.Time `bson:"updated_at" json:"updatedAt"`
}

var specKeyUnsafe = regexp.MustCompile(`[/\s]`)

// SpecKey derives the composite document key for a vehicle's visual spec.
// Slashes and whitespace are folded to underscores so the key is safe as a
// document id.
func SpecKey(v VehicleRecord) string {
	raw := strings.Join([]string{v.Car, v.Variant, v.ExtColor, v.IntColor, v.ModelYear}, "|")
	return specKeyUnsafe.ReplaceAllString(raw, "_")
}

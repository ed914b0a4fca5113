package data

import (
	"sort"
	"time"

	"afrr-backtest/internal/model"
)

// Area is a price area available in the activation dataset.
type Area struct {
	ID      string    `json:"id"`
	Name    string    `json:"name"`
	Samples int       `json:"samples"`
	From    time.Time `json:"from"`
	To      time.Time `json:"to"`
}

// AreaList is the catalogue of areas in a loaded dataset.
type AreaList struct {
	Source string `json:"source"`
	Areas  []Area `json:"areas"`
}

var areaNames = map[string]string{
	"DK1": "Western Denmark",
	"DK2": "Eastern Denmark",
	"SE1": "Sweden Luleå",
	"SE2": "Sweden Sundsvall",
	"SE3": "Sweden Stockholm",
	"SE4": "Sweden Malmö",
	"NO1": "Norway Oslo",
	"NO2": "Norway Kristiansand",
	"NO3": "Norway Trondheim",
	"NO4": "Norway Tromsø",
	"NO5": "Norway Bergen",
	"FI":  "Finland",
}

// AreaName returns a readable name, or the ID itself for unknown areas.
func AreaName(id string) string {
	if n, ok := areaNames[id]; ok {
		return n
	}
	return id
}

// Areas builds the catalogue of price areas present in samples, sorted by ID.
func Areas(source string, samples []model.ActivationSample) *AreaList {
	list := &AreaList{Source: source}
	for id, group := range GroupByArea(samples) {
		if id == "" {
			continue
		}
		first, last, _ := Coverage(group)
		list.Areas = append(list.Areas, Area{ID: id, Name: AreaName(id), Samples: len(group), From: first, To: last})
	}
	sort.Slice(list.Areas, func(i, j int) bool { return list.Areas[i].ID < list.Areas[j].ID })
	return list
}

// IDs returns the area identifiers in catalogue order.
func (l *AreaList) IDs() []string {
	out := make([]string, 0, len(l.Areas))
	for _, a := range l.Areas {
		out = append(out, a.ID)
	}
	return out
}

// Package model defines the core domain models used throughout the application.
package model

import (
	"errors"
	"fmt"
	"strings"
)

// Unidentified is the zone sentinel for labels whose locality could not be matched.
// It is never a valid zone for an appended record.
const Unidentified = "cordon_no_identificado"

// ErrInvalidDirectory reports a zone directory that violates its invariants.
var ErrInvalidDirectory = errors.New("invalid zone directory")

// Zone is a delivery tier with a flat per-package price.
type Zone struct {
	Name       string   `mapstructure:"name" json:"name"`
	Localities []string `mapstructure:"localities" json:"localities"`
	Price      int      `mapstructure:"price" json:"price"`
}

// Directory is the immutable zone lookup table for one deployment.
// Zones and localities keep their declared order, which is the tie-break
// order used by the classifier.
type Directory struct {
	byLocality map[string]string
	byName     map[string]int
	zones      []Zone
}

// NewDirectory validates zones and builds a directory.
// A locality may belong to at most one zone.
func NewDirectory(zones []Zone) (*Directory, error) {
	if len(zones) == 0 {
		return nil, fmt.Errorf("%w: no zones defined", ErrInvalidDirectory)
	}

	d := &Directory{
		byLocality: make(map[string]string),
		byName:     make(map[string]int, len(zones)),
		zones:      make([]Zone, 0, len(zones)),
	}

	for _, z := range zones {
		name := strings.TrimSpace(z.Name)
		if name == "" {
			return nil, fmt.Errorf("%w: zone with empty name", ErrInvalidDirectory)
		}
		if name == Unidentified {
			return nil, fmt.Errorf("%w: %q is reserved", ErrInvalidDirectory, Unidentified)
		}
		if _, dup := d.byName[name]; dup {
			return nil, fmt.Errorf("%w: zone %q defined twice", ErrInvalidDirectory, name)
		}
		if z.Price <= 0 {
			return nil, fmt.Errorf("%w: zone %q must have a positive price, got %d", ErrInvalidDirectory, name, z.Price)
		}

		localities := make([]string, 0, len(z.Localities))
		for _, loc := range z.Localities {
			loc = strings.TrimSpace(loc)
			if loc == "" {
				return nil, fmt.Errorf("%w: zone %q has an empty locality", ErrInvalidDirectory, name)
			}
			if loc != strings.ToUpper(loc) {
				return nil, fmt.Errorf("%w: locality %q in zone %q must be uppercase", ErrInvalidDirectory, loc, name)
			}
			if owner, seen := d.byLocality[loc]; seen {
				return nil, fmt.Errorf("%w: locality %q listed in both %q and %q", ErrInvalidDirectory, loc, owner, name)
			}
			d.byLocality[loc] = name
			localities = append(localities, loc)
		}

		d.byName[name] = len(d.zones)
		d.zones = append(d.zones, Zone{Name: name, Price: z.Price, Localities: localities})
	}

	return d, nil
}

// MustDirectory is NewDirectory for static tables known to be valid.
func MustDirectory(zones []Zone) *Directory {
	d, err := NewDirectory(zones)
	if err != nil {
		panic(err)
	}
	return d
}

// Zones returns a copy of the zones in declared order.
func (d *Directory) Zones() []Zone {
	out := make([]Zone, len(d.zones))
	for i, z := range d.zones {
		out[i] = Zone{
			Name:       z.Name,
			Price:      z.Price,
			Localities: append([]string(nil), z.Localities...),
		}
	}
	return out
}

// Names returns the zone names in declared order.
func (d *Directory) Names() []string {
	names := make([]string, len(d.zones))
	for i, z := range d.zones {
		names[i] = z.Name
	}
	return names
}

// Has reports whether zone is one of the directory zones.
func (d *Directory) Has(zone string) bool {
	_, ok := d.byName[zone]
	return ok
}

// Price returns the unit price of zone, or 0 for zones outside the directory.
func (d *Directory) Price(zone string) int {
	i, ok := d.byName[zone]
	if !ok {
		return 0
	}
	return d.zones[i].Price
}

// Rank returns the declared position of zone, or -1 when unknown.
func (d *Directory) Rank(zone string) int {
	i, ok := d.byName[zone]
	if !ok {
		return -1
	}
	return i
}

// ZoneOf reverse-looks-up the zone owning locality.
func (d *Directory) ZoneOf(locality string) (string, bool) {
	locality = strings.ToUpper(strings.TrimSpace(locality))
	if locality == "" {
		return "", false
	}
	zone, ok := d.byLocality[locality]
	return zone, ok
}

// DefaultZones returns the production directory of the Buenos Aires delivery
// rings with their current prices.
func DefaultZones() []Zone {
	return []Zone{
		{
			Name:  "Primer cordón",
			Price: 5538,
			Localities: []string{
				"AVELLANEDA", "HURLINGHAM", "ITUZAINGO", "LA MATANZA NORTE", "LANUS",
				"LOMAS DE ZAMORA", "MORON", "SAN FERNANDO", "SAN ISIDRO", "SAN MARTIN",
				"TRES DE FEBRERO", "VICENTE LOPEZ",
			},
		},
		{
			Name:  "Segundo cordón",
			Price: 7638,
			Localities: []string{
				"ALMIRANTE BROWN", "BERAZATEGUI", "ESTEBAN ECHEVERRIA", "EZEIZA",
				"FLORENCIO VARELA", "JOSE C PAZ", "LA MATANZA SUR", "MALVINAS ARGENTINAS",
				"MERLO", "MORENO", "QUILMES", "SAN MIGUEL", "TIGRE",
			},
		},
		{
			Name:       "Tercer cordón (CABA)",
			Price:      3457,
			Localities: []string{"CABA"},
		},
		{
			Name:  "Cuarto cordón",
			Price: 9650,
			Localities: []string{
				"BERISSO", "CAMPANA", "CAÑUELAS", "DEL VISO", "DERQUI", "ENSENADA",
				"ESCOBAR", "GARIN", "GENERAL RODRIGUEZ", "GUERNICA", "INGENIERO MASCHWITZ",
				"LA PLATA CENTRO", "LA PLATA NORTE", "LA PLATA OESTE", "LUJAN",
				"MARCOS PAZ", "NORDELTA", "PILAR", "SAN VICENTE", "VILLA ROSA", "ZARATE",
			},
		},
	}
}

// Package catalog contiene las tablas fijas del portal: especies, sexos,
// rangos de edad y el mapa región -> ciudades.
//
// Se cargan una vez al arrancar y se comparten por puntero; nadie las muta después.
package catalog

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"pet-adoption-portal/internal/platform/textnorm"
)

type Option struct {
	Key   string `yaml:"key" json:"key"`
	Label string `yaml:"label" json:"label"`
}

// AgeBand es un rango cerrado [Min, Max] en meses.
type AgeBand struct {
	Min   int    `yaml:"min" json:"min"`
	Max   int    `yaml:"max" json:"max"`
	Label string `yaml:"label" json:"label"`
}

type Region struct {
	Key    string   `yaml:"key" json:"key"`
	Name   string   `yaml:"name" json:"name"`
	Cities []string `yaml:"cities" json:"cities"`
}

type Catalog struct {
	Species  []Option  `yaml:"species" json:"species"`
	Sexes    []Option  `yaml:"sexes" json:"sexes"`
	AgeBands []AgeBand `yaml:"age_bands" json:"age_bands"`
	Regions  []Region  `yaml:"regions" json:"regions"`
}

func Default() *Catalog {
	return &Catalog{
		Species: []Option{
			{Key: "perro", Label: "Perro"},
			{Key: "gato", Label: "Gato"},
			{Key: "conejo", Label: "Conejo"},
			{Key: "ave", Label: "Ave"},
			{Key: "hamster", Label: "Hámster"},
			{Key: "pez", Label: "Pez"},
			{Key: "otro", Label: "Otro"},
		},
		Sexes: []Option{
			{Key: "macho", Label: "Macho"},
			{Key: "hembra", Label: "Hembra"},
		},
		AgeBands: []AgeBand{
			{Min: 0, Max: 6, Label: "Cachorro (0–6 meses)"},
			{Min: 7, Max: 24, Label: "Joven (7–24 meses)"},
			{Min: 25, Max: 999, Label: "Adulto (2+ años)"},
		},
		Regions: []Region{
			{Key: "cundinamarca", Name: "Cundinamarca", Cities: []string{"Bogotá", "Soacha", "Chía", "Zipaquirá", "Facatativá", "Fusagasugá", "Girardot"}},
			{Key: "antioquia", Name: "Antioquia", Cities: []string{"Medellín", "Bello", "Envigado", "Itagüí", "Rionegro", "Sabaneta"}},
			{Key: "valle-del-cauca", Name: "Valle del Cauca", Cities: []string{"Cali", "Palmira", "Buenaventura", "Tuluá", "Jamundí"}},
			{Key: "atlantico", Name: "Atlántico", Cities: []string{"Barranquilla", "Soledad", "Malambo", "Puerto Colombia"}},
			{Key: "bolivar", Name: "Bolívar", Cities: []string{"Cartagena", "Magangué", "Turbaco"}},
			{Key: "santander", Name: "Santander", Cities: []string{"Bucaramanga", "Floridablanca", "Girón", "Piedecuesta"}},
			{Key: "risaralda", Name: "Risaralda", Cities: []string{"Pereira", "Dosquebradas", "Santa Rosa de Cabal"}},
		},
	}
}

// LoadFile lee un catálogo YAML. Las secciones ausentes conservan los valores por defecto.
func LoadFile(path string) (*Catalog, error) {
	c := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}

	var raw Catalog
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}

	if len(raw.Species) > 0 {
		c.Species = raw.Species
	}
	if len(raw.Sexes) > 0 {
		c.Sexes = raw.Sexes
	}
	if len(raw.AgeBands) > 0 {
		c.AgeBands = raw.AgeBands
	}
	if len(raw.Regions) > 0 {
		c.Regions = raw.Regions
	}

	if err := c.validate(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Catalog) validate() error {
	for i, b := range c.AgeBands {
		if b.Min < 0 || b.Max < b.Min {
			return fmt.Errorf("catalog: age band %d has invalid bounds [%d,%d]", i, b.Min, b.Max)
		}
	}
	for _, r := range c.Regions {
		if strings.TrimSpace(r.Key) == "" {
			return fmt.Errorf("catalog: region %q without key", r.Name)
		}
	}
	return nil
}

func (c *Catalog) HasSpecies(key string) bool { return hasOption(c.Species, key) }
func (c *Catalog) HasSex(key string) bool     { return hasOption(c.Sexes, key) }

// AgeBand devuelve el rango de índice idx; ok=false si está fuera de la tabla.
func (c *Catalog) AgeBand(idx int) (AgeBand, bool) {
	if idx < 0 || idx >= len(c.AgeBands) {
		return AgeBand{}, false
	}
	return c.AgeBands[idx], true
}

// FindRegion busca por clave o por nombre, sin importar tildes ni mayúsculas.
func (c *Catalog) FindRegion(q string) (Region, bool) {
	fq := textnorm.Fold(q)
	if fq == "" {
		return Region{}, false
	}
	for _, r := range c.Regions {
		if textnorm.Fold(r.Key) == fq || textnorm.Fold(r.Name) == fq {
			return r, true
		}
	}
	return Region{}, false
}

func hasOption(opts []Option, key string) bool {
	key = strings.TrimSpace(key)
	if key == "" {
		return false
	}
	for _, o := range opts {
		if o.Key == key {
			return true
		}
	}
	return false
}

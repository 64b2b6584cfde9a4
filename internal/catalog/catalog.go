// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

package catalog

import (
	"errors"
	"fmt"
	"io"
	"maps"
	"os"
	"slices"

	"gopkg.in/yaml.v3"
)

const (
	// TypeWarehouseTable marks a dataset backed by a warehouse table.
	TypeWarehouseTable = "warehouse.Table"
	// TypeFileCSV marks a dataset backed by a local CSV file.
	TypeFileCSV = "file.CSV"
)

var (
	// ErrParsing reports failures that occur while decoding a catalog file.
	ErrParsing = errors.New("error parsing catalog")
	// ErrInvalidDataset reports a dataset declaration with missing or
	// inconsistent fields.
	ErrInvalidDataset = errors.New("invalid dataset")
	// ErrUnknownDataset reports a dataset name not present in the catalog.
	ErrUnknownDataset = errors.New("dataset not found in catalog")
)

// Dataset is a single named entry of the data catalog.
type Dataset struct {
	Name     string `yaml:"-"`
	Type     string `yaml:"type"`
	Database string `yaml:"database,omitempty"`
	Table    string `yaml:"table,omitempty"`
	Filepath string `yaml:"filepath,omitempty"`
	Header   bool   `yaml:"header,omitempty"`
}

// validate checks the fields required by the dataset type.
func (d Dataset) validate() error {
	switch d.Type {
	case TypeWarehouseTable:
		if d.Database == "" || d.Table == "" {
			return fmt.Errorf("%w %q: %s requires database and table", ErrInvalidDataset, d.Name, d.Type)
		}
		if d.Filepath != "" {
			return fmt.Errorf("%w %q: filepath is not valid for %s", ErrInvalidDataset, d.Name, d.Type)
		}
	case TypeFileCSV:
		if d.Filepath == "" {
			return fmt.Errorf("%w %q: %s requires filepath", ErrInvalidDataset, d.Name, d.Type)
		}
		if d.Database != "" || d.Table != "" {
			return fmt.Errorf("%w %q: database and table are not valid for %s", ErrInvalidDataset, d.Name, d.Type)
		}
	case "":
		return fmt.Errorf("%w %q: missing type", ErrInvalidDataset, d.Name)
	default:
		return fmt.Errorf("%w %q: unknown type %q", ErrInvalidDataset, d.Name, d.Type)
	}

	return nil
}

// Catalog holds the named datasets available to pipelines.
type Catalog struct {
	datasets map[string]Dataset
}

// New builds a catalog from already decoded datasets, validating every entry.
func New(datasets map[string]Dataset) (*Catalog, error) {
	validated := make(map[string]Dataset, len(datasets))
	for name, dataset := range datasets {
		dataset.Name = name
		if err := dataset.validate(); err != nil {
			return nil, err
		}
		validated[name] = dataset
	}

	return &Catalog{datasets: validated}, nil
}

// LoadFromPath parses the catalog file at path. The file can contain
// multiple YAML documents; datasets declared in later documents override
// earlier ones with the same name.
func LoadFromPath(path string) (*Catalog, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	decoder := yaml.NewDecoder(file)
	decoder.KnownFields(true)

	datasets := make(map[string]Dataset)
	for {
		document := make(map[string]Dataset)
		if err := decoder.Decode(&document); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}

			return nil, fmt.Errorf("%w %q: %w", ErrParsing, path, err)
		}

		maps.Copy(datasets, document)
	}

	return New(datasets)
}

// Dataset returns the dataset registered under name.
func (c *Catalog) Dataset(name string) (Dataset, error) {
	dataset, ok := c.datasets[name]
	if !ok {
		return Dataset{}, fmt.Errorf("%w: %s", ErrUnknownDataset, name)
	}

	return dataset, nil
}

// Names returns the sorted names of all datasets in the catalog.
func (c *Catalog) Names() []string {
	return slices.Sorted(maps.Keys(c.datasets))
}

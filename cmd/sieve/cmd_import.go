// SPDX-License-Identifier: MIT

package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/cmunell/micro-util-sub002/labelstore"
	"github.com/cmunell/micro-util-sub002/logger"
	"github.com/cmunell/micro-util-sub002/model"
	"github.com/cmunell/micro-util-sub002/structurizer"
)

var (
	errNoDatasetName = errors.New("import: dataset name is required")
	errDatumKind     = errors.New("import: datum does not fit the dataset kind")
)

// importFile is the YAML layout of one dataset with the recorded
// predictions of every method on it.
type importFile struct {
	Dataset string         `yaml:"dataset"`
	Kind    string         `yaml:"kind"`
	Data    []importDatum  `yaml:"data"`
	Methods []importMethod `yaml:"methods"`
}

type importDatum struct {
	ID        string `yaml:"id"`
	Partition string `yaml:"partition"`
	First     string `yaml:"first"`
	Second    string `yaml:"second"`
	Node      string `yaml:"node"`
	Gold      string `yaml:"gold"`
}

type importMethod struct {
	Name        string                  `yaml:"name"`
	Quality     *float64                `yaml:"quality"`
	Samples     int                     `yaml:"samples"`
	Predictions map[string]model.Scored `yaml:"predictions"`
}

// parseImport decodes data and converts it to a dataset.
func parseImport(data []byte) (*importFile, *model.Dataset, error) {
	var f importFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, nil, fmt.Errorf("failed to parse import file: %w", err)
	}
	if f.Dataset == "" {
		return nil, nil, errNoDatasetName
	}
	if f.Kind == "" {
		f.Kind = structurizer.KindPair
	}

	ds := &model.Dataset{Name: f.Dataset, Kind: f.Kind, Gold: make(map[string]string)}
	for _, d := range f.Data {
		switch f.Kind {
		case structurizer.KindPair:
			if d.First == "" || d.Second == "" {
				return nil, nil, fmt.Errorf("%w: %s needs first and second", errDatumKind, d.ID)
			}
			ds.Data = append(ds.Data, model.PairDatum{ID: d.ID, Partition: d.Partition, First: d.First, Second: d.Second})
		case structurizer.KindNode:
			if d.Node == "" {
				return nil, nil, fmt.Errorf("%w: %s needs node", errDatumKind, d.ID)
			}
			ds.Data = append(ds.Data, model.NodeDatum{ID: d.ID, Partition: d.Partition, Node: d.Node})
		default:
			return nil, nil, fmt.Errorf("%w: unknown kind %q", errDatumKind, f.Kind)
		}
		if d.Gold != "" {
			ds.Gold[d.ID] = d.Gold
		}
	}

	return &f, ds, nil
}

func newImportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import <file>...",
		Short: "Import datasets and recorded predictions",
		Long: `Import one or more YAML files into the label store.

Each file holds one dataset and the predictions of any number of methods:

  dataset: dev
  kind: pair
  data:
    - {id: d1, partition: doc1, first: e1, second: e2, gold: BEFORE}
  methods:
    - name: rules
      quality: 0.8
      samples: 120
      predictions:
        d1: {label: BEFORE, score: 0.9}`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			jsonOut, _ := cmd.Flags().GetBool("json")

			ctx := context.Background()
			st, err := labelstore.Open(ctx, cfg.Store.Path)
			if err != nil {
				return fmt.Errorf("failed to open store: %w", err)
			}
			defer st.Close()

			var out []importSummary
			for _, path := range args {
				s, err := importOne(ctx, st, path)
				if err != nil {
					return err
				}
				out = append(out, s)
			}

			if jsonOut {
				return writeJSON(cmd.OutOrStdout(), out)
			}
			for _, s := range out {
				fmt.Fprintf(cmd.OutOrStdout(), "Imported %s: %d data, %d methods, %d predictions\n",
					s.Dataset, s.Data, s.Methods, s.Predictions)
			}

			return nil
		},
	}
}

type importSummary struct {
	Dataset     string `json:"dataset"`
	Data        int    `json:"data"`
	Methods     int    `json:"methods"`
	Predictions int    `json:"predictions"`
}

func importOne(ctx context.Context, st *labelstore.Store, path string) (importSummary, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return importSummary{}, fmt.Errorf("failed to read %s: %w", path, err)
	}
	f, ds, err := parseImport(data)
	if err != nil {
		return importSummary{}, fmt.Errorf("%s: %w", path, err)
	}
	if err := st.ImportDataset(ctx, ds); err != nil {
		return importSummary{}, fmt.Errorf("failed to import dataset %s: %w", ds.Name, err)
	}

	s := importSummary{Dataset: ds.Name, Data: len(ds.Data), Methods: len(f.Methods)}
	for _, m := range f.Methods {
		if err := st.ImportPredictions(ctx, m.Name, ds.Name, m.Predictions); err != nil {
			return s, fmt.Errorf("failed to import predictions of %s: %w", m.Name, err)
		}
		if m.Quality != nil {
			if err := st.SetQuality(ctx, m.Name, *m.Quality, m.Samples); err != nil {
				return s, err
			}
		}
		s.Predictions += len(m.Predictions)
	}
	logger.Info("[Import] dataset imported", "dataset", ds.Name, "data", s.Data, "predictions", s.Predictions)

	return s, nil
}

// SPDX-License-Identifier: MIT

package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cmunell/micro-util-sub002/config"
	"github.com/cmunell/micro-util-sub002/labelstore"
	"github.com/cmunell/micro-util-sub002/logger"
	"github.com/cmunell/micro-util-sub002/model"
	"github.com/cmunell/micro-util-sub002/sieve"
)

// datasetResult summarises the merged labels of one dataset.
type datasetResult struct {
	Dataset  string                  `json:"dataset"`
	Labeled  int                     `json:"labeled"`
	Data     int                     `json:"data"`
	Gold     int                     `json:"gold"`
	Correct  int                     `json:"correct"`
	Accuracy float64                 `json:"accuracy"`
	Labels   map[string]model.Scored `json:"labels,omitempty"`
}

type runResult struct {
	RunID    string          `json:"run_id"`
	Engine   string          `json:"engine"`
	Datasets []datasetResult `json:"datasets"`
}

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run [dataset]...",
		Short: "Run the configured engine over imported predictions",
		Long: `Replay the recorded predictions of every imported method through the
engine selected by sieve.kind and store the merged labels as a new run.

Without arguments every imported dataset is labeled. Method quality comes
from the imported quality values, or from accuracy on the gold labels of
--quality-on when given.

Examples:
  sieve run --config sieve.yaml
  sieve run dev test --quality-on train --json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			jsonOut, _ := cmd.Flags().GetBool("json")
			qualityOn, _ := cmd.Flags().GetString("quality-on")
			withLabels, _ := cmd.Flags().GetBool("labels")

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			st, err := labelstore.Open(ctx, cfg.Store.Path)
			if err != nil {
				return fmt.Errorf("failed to open store: %w", err)
			}
			defer st.Close()

			res, err := runEngine(ctx, cfg, st, args, qualityOn)
			if err != nil {
				return err
			}
			if !withLabels {
				for i := range res.Datasets {
					res.Datasets[i].Labels = nil
				}
			}

			if jsonOut {
				return writeJSON(cmd.OutOrStdout(), res)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Run %s (%s)\n", res.RunID, res.Engine)
			for _, d := range res.Datasets {
				fmt.Fprintf(cmd.OutOrStdout(), "  %s: %d/%d labeled", d.Dataset, d.Labeled, d.Data)
				if d.Gold > 0 {
					fmt.Fprintf(cmd.OutOrStdout(), ", accuracy %.4f (%d/%d)", d.Accuracy, d.Correct, d.Gold)
				}
				fmt.Fprintln(cmd.OutOrStdout())
			}

			return nil
		},
	}

	cmd.Flags().String("quality-on", "", "Dataset whose gold labels estimate method quality")
	cmd.Flags().Bool("labels", false, "Include the merged labels in the output")

	return cmd
}

// runEngine loads the datasets and methods, runs the optional trainer and
// the engine, and saves the run.
func runEngine(ctx context.Context, cfg *config.Config, st *labelstore.Store, names []string, qualityOn string) (*runResult, error) {
	// 1) Datasets
	if len(names) == 0 {
		var err error
		if names, err = st.Datasets(ctx); err != nil {
			return nil, err
		}
	}
	datasets := make([]*model.Dataset, 0, len(names))
	for _, name := range names {
		ds, err := st.Dataset(ctx, name)
		if err != nil {
			return nil, err
		}
		datasets = append(datasets, ds)
	}

	// 2) Methods replaying the recorded predictions
	var gold *model.Dataset
	if qualityOn != "" {
		var err error
		if gold, err = st.Dataset(ctx, qualityOn); err != nil {
			return nil, fmt.Errorf("failed to load quality dataset: %w", err)
		}
	}
	infos, err := st.Methods(ctx)
	if err != nil {
		return nil, err
	}
	methods := make([]sieve.Method, 0, len(infos))
	classifiers := make([]model.Classifier, 0, len(infos))
	for _, info := range infos {
		preds, err := st.Predictions(ctx, info.Name)
		if err != nil {
			return nil, err
		}
		c := model.NewReplay(info.Name, nil, preds)
		var q model.QualityMeasure = model.FixedQuality{Value: info.Quality, N: info.Samples}
		if gold != nil {
			q = model.NewAccuracyQuality(c, gold)
		}
		methods = append(methods, sieve.Method{Classifier: c, Quality: q})
		classifiers = append(classifiers, c)
	}

	// 3) Engine and trainer
	structurizers, err := sieve.Structurizers(cfg.Structure)
	if err != nil {
		return nil, err
	}
	engine, err := sieve.FromConfig(cfg, methods, structurizers)
	if err != nil {
		return nil, err
	}
	trainer, err := sieve.TrainerFromConfig(cfg, engine, classifiers)
	if err != nil {
		return nil, err
	}
	if trainer != nil {
		if err := train(ctx, trainer, datasets); err != nil {
			return nil, fmt.Errorf("training failed: %w", err)
		}
	}

	// 4) Inference
	logger.Info("[Run] starting", "engine", cfg.Sieve.Kind, "methods", len(methods), "datasets", len(datasets))
	out, err := engine.ClassifyWithScore(ctx, datasets)
	if err != nil {
		return nil, err
	}

	// 5) Record
	labels := make(map[string]map[string]model.Scored, len(datasets))
	res := &runResult{Engine: cfg.Sieve.Kind}
	for i, ds := range datasets {
		labels[ds.Name] = out[i]
		res.Datasets = append(res.Datasets, score(ds, out[i]))
	}
	if res.RunID, err = st.SaveRun(ctx, cfg.Sieve.Kind, labels); err != nil {
		return nil, err
	}
	logger.Info("[Run] saved", "run", res.RunID)

	return res, nil
}

// train hands gold datasets to the trainer as training data and, for self
// training, the rest as unlabeled data.
func train(ctx context.Context, trainer sieve.Trainer, datasets []*model.Dataset) error {
	var labeled, unlabeled []*model.Dataset
	for _, ds := range datasets {
		if len(ds.Gold) > 0 {
			labeled = append(labeled, ds)
		} else {
			unlabeled = append(unlabeled, ds)
		}
	}
	switch t := trainer.(type) {
	case *sieve.SelfTrainer:
		t.SetTrainData(labeled...)
		t.SetUnlabeledData(unlabeled...)
	default:
		trainer.SetTrainData(datasets...)
	}

	return trainer.Train(ctx)
}

// score compares merged labels against gold.
func score(ds *model.Dataset, labels map[string]model.Scored) datasetResult {
	r := datasetResult{Dataset: ds.Name, Labeled: len(labels), Data: len(ds.Data), Gold: len(ds.Gold), Labels: labels}
	for id, g := range ds.Gold {
		if l, ok := labels[id]; ok && l.Label == g {
			r.Correct++
		}
	}
	if r.Gold > 0 {
		r.Accuracy = float64(r.Correct) / float64(r.Gold)
	}

	return r
}

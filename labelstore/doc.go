// SPDX-License-Identifier: MIT

// Package labelstore persists datasets, recorded classifier predictions and
// the labels of sieve runs in a SQLite file.
//
// The command-line driver imports predictions once, replays them through
// model.Replay classifiers, and saves each run's merged labels under a
// fresh run id:
//
//	st, _ := labelstore.Open(ctx, "sieve.db")
//	defer st.Close()
//	_ = st.ImportDataset(ctx, ds)
//	_ = st.ImportPredictions(ctx, "tagger", ds.Name, preds)
//	id, _ := st.SaveRun(ctx, "sieve", labels)
package labelstore

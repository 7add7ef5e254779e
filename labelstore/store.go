// SPDX-License-Identifier: MIT

package labelstore

import (
	"context"
	"database/sql"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	_ "modernc.org/sqlite" // registers the "sqlite" driver

	"github.com/cmunell/micro-util-sub002/model"
)

// Sentinel errors for store lookups.
var (
	ErrDatasetNotFound = errors.New("labelstore: dataset not found")
	ErrRunNotFound     = errors.New("labelstore: run not found")
	ErrUnknownDatum    = errors.New("labelstore: unsupported datum type")
)

// Store is a SQLite-backed label store.
type Store struct {
	db *sql.DB
}

// MethodInfo is a recorded classifier with its quality estimate.
type MethodInfo struct {
	Name    string  `json:"name"`
	Quality float64 `json:"quality"`
	Samples int     `json:"samples"`
}

// Run describes one saved sieve run.
type Run struct {
	ID        string    `json:"id"`
	Engine    string    `json:"engine"`
	CreatedAt time.Time `json:"created_at"`
}

// Open opens or creates the store at path.
func Open(ctx context.Context, path string) (*Store, error) {
	if path == "" {
		return nil, errors.New("labelstore: path cannot be empty")
	}
	db, err := sql.Open("sqlite", "file:"+path+"?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, errors.Wrap(err, "failed to open database")
	}
	// one writer keeps SQLite happy
	db.SetMaxOpenConns(1)

	s := &Store{db: db}
	if err := s.initSchema(ctx); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "failed to initialize schema")
	}

	return s, nil
}

func (s *Store) initSchema(ctx context.Context) error {
	for _, stmt := range schema {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO meta (key, value) VALUES ('schema_version', ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`, SchemaVersion)

	return err
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// withTx runs fn in a transaction, committing when it returns nil.
func (s *Store) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "failed to begin transaction")
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}

	return errors.Wrap(tx.Commit(), "failed to commit")
}

// ImportDataset stores every datum of ds with its gold label, replacing a
// previous import of the same dataset.
func (s *Store) ImportDataset(ctx context.Context, ds *model.Dataset) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM data WHERE dataset = ?`, ds.Name); err != nil {
			return errors.Wrap(err, "failed to clear dataset")
		}
		for i, d := range ds.Data {
			var first, second, node string
			switch v := d.(type) {
			case model.PairDatum:
				first, second = v.First, v.Second
			case model.NodeDatum:
				node = v.Node
			default:
				return errors.Wrapf(ErrUnknownDatum, "datum %s", d.DatumID())
			}
			_, err := tx.ExecContext(ctx,
				`INSERT INTO data (dataset, datum_id, position, kind, partition_id, first, second, node, gold)
				 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
				ds.Name, d.DatumID(), i, ds.Kind, d.PartitionID(), first, second, node, ds.Gold[d.DatumID()])
			if err != nil {
				return errors.Wrapf(err, "failed to insert datum %s", d.DatumID())
			}
		}

		return nil
	})
}

// Dataset loads a dataset in import order. Data with a pair (first, second)
// load as model.PairDatum, the rest as model.NodeDatum.
func (s *Store) Dataset(ctx context.Context, name string) (*model.Dataset, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT datum_id, kind, partition_id, first, second, node, gold
		 FROM data WHERE dataset = ? ORDER BY position`, name)
	if err != nil {
		return nil, errors.Wrap(err, "failed to query dataset")
	}
	defer rows.Close()

	ds := &model.Dataset{Name: name, Gold: make(map[string]string)}
	for rows.Next() {
		var id, kind, partition, first, second, node, gold string
		if err := rows.Scan(&id, &kind, &partition, &first, &second, &node, &gold); err != nil {
			return nil, errors.Wrap(err, "failed to scan datum")
		}
		ds.Kind = kind
		if first != "" || second != "" {
			ds.Data = append(ds.Data, model.PairDatum{ID: id, Partition: partition, First: first, Second: second})
		} else {
			ds.Data = append(ds.Data, model.NodeDatum{ID: id, Partition: partition, Node: node})
		}
		if gold != "" {
			ds.Gold[id] = gold
		}
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "failed to read dataset")
	}
	if len(ds.Data) == 0 {
		return nil, errors.Wrapf(ErrDatasetNotFound, "%q", name)
	}

	return ds, nil
}

// Datasets lists the imported dataset names in ascending order.
func (s *Store) Datasets(ctx context.Context) ([]string, error) {
	return s.strings(ctx, `SELECT DISTINCT dataset FROM data ORDER BY dataset`)
}

func (s *Store) strings(ctx context.Context, query string, args ...any) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to query")
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, errors.Wrap(err, "failed to scan")
		}
		out = append(out, v)
	}

	return out, errors.Wrap(rows.Err(), "failed to read rows")
}

// SetQuality records the quality estimate of a method.
func (s *Store) SetQuality(ctx context.Context, method string, quality float64, samples int) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO methods (name, quality, samples) VALUES (?, ?, ?)
		 ON CONFLICT(name) DO UPDATE SET quality = excluded.quality, samples = excluded.samples`,
		method, quality, samples)

	return errors.Wrap(err, "failed to set quality")
}

// Methods lists the recorded methods by name.
func (s *Store) Methods(ctx context.Context) ([]MethodInfo, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT name, quality, samples FROM methods ORDER BY name`)
	if err != nil {
		return nil, errors.Wrap(err, "failed to query methods")
	}
	defer rows.Close()

	var out []MethodInfo
	for rows.Next() {
		var m MethodInfo
		if err := rows.Scan(&m.Name, &m.Quality, &m.Samples); err != nil {
			return nil, errors.Wrap(err, "failed to scan method")
		}
		out = append(out, m)
	}

	return out, errors.Wrap(rows.Err(), "failed to read methods")
}

// ImportPredictions records the predictions of method on dataset, replacing
// earlier ones for the same data. The method is registered if new.
func (s *Store) ImportPredictions(ctx context.Context, method, dataset string, preds map[string]model.Scored) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO methods (name) VALUES (?) ON CONFLICT(name) DO NOTHING`, method); err != nil {
			return errors.Wrap(err, "failed to register method")
		}
		for _, id := range model.SortedIDs(preds) {
			p := preds[id]
			_, err := tx.ExecContext(ctx,
				`INSERT INTO predictions (method, dataset, datum_id, label, score) VALUES (?, ?, ?, ?, ?)
				 ON CONFLICT(method, dataset, datum_id) DO UPDATE SET label = excluded.label, score = excluded.score`,
				method, dataset, id, p.Label, p.Score)
			if err != nil {
				return errors.Wrapf(err, "failed to insert prediction %s", id)
			}
		}

		return nil
	})
}

// Predictions returns the recorded predictions of method keyed by dataset
// then datum id, the shape model.NewReplay takes.
func (s *Store) Predictions(ctx context.Context, method string) (map[string]map[string]model.Scored, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT dataset, datum_id, label, score FROM predictions WHERE method = ?`, method)
	if err != nil {
		return nil, errors.Wrap(err, "failed to query predictions")
	}
	defer rows.Close()

	return scanLabels(rows)
}

func scanLabels(rows *sql.Rows) (map[string]map[string]model.Scored, error) {
	out := make(map[string]map[string]model.Scored)
	for rows.Next() {
		var dataset, id string
		var p model.Scored
		if err := rows.Scan(&dataset, &id, &p.Label, &p.Score); err != nil {
			return nil, errors.Wrap(err, "failed to scan label")
		}
		if out[dataset] == nil {
			out[dataset] = make(map[string]model.Scored)
		}
		out[dataset][id] = p
	}

	return out, errors.Wrap(rows.Err(), "failed to read labels")
}

// SaveRun records the labels of one engine run, one map per dataset name,
// and returns the new run id.
func (s *Store) SaveRun(ctx context.Context, engine string, labels map[string]map[string]model.Scored) (string, error) {
	id := uuid.NewString()
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO runs (id, engine, created_at) VALUES (?, ?, ?)`,
			id, engine, time.Now().UnixNano()); err != nil {
			return errors.Wrap(err, "failed to insert run")
		}
		for _, dataset := range model.SortedIDs(labels) {
			for _, datum := range model.SortedIDs(labels[dataset]) {
				l := labels[dataset][datum]
				if _, err := tx.ExecContext(ctx,
					`INSERT INTO run_labels (run_id, dataset, datum_id, label, score) VALUES (?, ?, ?, ?, ?)`,
					id, dataset, datum, l.Label, l.Score); err != nil {
					return errors.Wrapf(err, "failed to insert label %s", datum)
				}
			}
		}

		return nil
	})
	if err != nil {
		return "", err
	}

	return id, nil
}

// RunLabels returns the labels of a run keyed by dataset then datum id.
func (s *Store) RunLabels(ctx context.Context, runID string) (map[string]map[string]model.Scored, error) {
	var exists int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM runs WHERE id = ?`, runID).Scan(&exists)
	if err != nil {
		return nil, errors.Wrap(err, "failed to query run")
	}
	if exists == 0 {
		return nil, errors.Wrapf(ErrRunNotFound, "%q", runID)
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT dataset, datum_id, label, score FROM run_labels WHERE run_id = ?`, runID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to query run labels")
	}
	defer rows.Close()

	return scanLabels(rows)
}

// Runs lists saved runs, newest first.
func (s *Store) Runs(ctx context.Context) ([]Run, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, engine, created_at FROM runs`)
	if err != nil {
		return nil, errors.Wrap(err, "failed to query runs")
	}
	defer rows.Close()

	var out []Run
	for rows.Next() {
		var r Run
		var ts int64
		if err := rows.Scan(&r.ID, &r.Engine, &ts); err != nil {
			return nil, errors.Wrap(err, "failed to scan run")
		}
		r.CreatedAt = time.Unix(0, ts)
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "failed to read runs")
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}

		return out[i].ID < out[j].ID
	})

	return out, nil
}

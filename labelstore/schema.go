// SPDX-License-Identifier: MIT

package labelstore

// SchemaVersion is recorded in the meta table.
const SchemaVersion = "1"

// DDL statements, applied in order on Open.
const (
	createMetaTable = `
CREATE TABLE IF NOT EXISTS meta (
    key TEXT PRIMARY KEY,
    value TEXT NOT NULL
);`

	// data holds every datum of every imported dataset; gold may be empty.
	createDataTable = `
CREATE TABLE IF NOT EXISTS data (
    dataset TEXT NOT NULL,
    datum_id TEXT NOT NULL,
    position INTEGER NOT NULL,
    kind TEXT NOT NULL,
    partition_id TEXT NOT NULL,
    first TEXT NOT NULL DEFAULT '',
    second TEXT NOT NULL DEFAULT '',
    node TEXT NOT NULL DEFAULT '',
    gold TEXT NOT NULL DEFAULT '',
    PRIMARY KEY (dataset, datum_id)
);`

	createMethodsTable = `
CREATE TABLE IF NOT EXISTS methods (
    name TEXT PRIMARY KEY,
    quality REAL NOT NULL DEFAULT 0,
    samples INTEGER NOT NULL DEFAULT 0
);`

	createPredictionsTable = `
CREATE TABLE IF NOT EXISTS predictions (
    method TEXT NOT NULL,
    dataset TEXT NOT NULL,
    datum_id TEXT NOT NULL,
    label TEXT NOT NULL,
    score REAL NOT NULL,
    PRIMARY KEY (method, dataset, datum_id)
);`

	createRunsTable = `
CREATE TABLE IF NOT EXISTS runs (
    id TEXT PRIMARY KEY,
    engine TEXT NOT NULL,
    created_at INTEGER NOT NULL
);`

	createRunLabelsTable = `
CREATE TABLE IF NOT EXISTS run_labels (
    run_id TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
    dataset TEXT NOT NULL,
    datum_id TEXT NOT NULL,
    label TEXT NOT NULL,
    score REAL NOT NULL,
    PRIMARY KEY (run_id, dataset, datum_id)
);`

	createRunLabelsIndex = `
CREATE INDEX IF NOT EXISTS idx_run_labels_run ON run_labels(run_id);`
)

var schema = []string{
	createMetaTable,
	createDataTable,
	createMethodsTable,
	createPredictionsTable,
	createRunsTable,
	createRunLabelsTable,
	createRunLabelsIndex,
}

package store

const schema = `
-- Monitored appliances, upserted on every ingestion
CREATE TABLE IF NOT EXISTS systems (
    id          TEXT PRIMARY KEY,
    name        TEXT NOT NULL,
    hostname    TEXT,
    version     TEXT,
    last_seen   INTEGER NOT NULL,
    client_name TEXT
);

-- Append-only metric log. seq is the insertion sequence; ts is unix nanoseconds.
-- entity_id/attribute are only set for typed facts; legacy facts are decoded
-- from raw_name at read time.
CREATE TABLE IF NOT EXISTS metrics (
    seq           INTEGER PRIMARY KEY AUTOINCREMENT,
    system_id     TEXT    NOT NULL REFERENCES systems(id),
    resource_kind TEXT    NOT NULL,
    raw_name      TEXT    NOT NULL,
    entity_id     TEXT,
    attribute     TEXT,
    value         REAL    NOT NULL,
    unit          TEXT,
    metadata_json TEXT,
    ts            INTEGER NOT NULL
);

-- Alert log
CREATE TABLE IF NOT EXISTS alerts (
    id           INTEGER PRIMARY KEY AUTOINCREMENT,
    system_id    TEXT    NOT NULL REFERENCES systems(id),
    ts           INTEGER NOT NULL,
    severity     TEXT    NOT NULL,
    message      TEXT    NOT NULL,
    acknowledged INTEGER NOT NULL DEFAULT 0,
    ticket_id    TEXT
);

-- Window queries
CREATE INDEX IF NOT EXISTS idx_metrics_system_kind_ts ON metrics(system_id, resource_kind, ts);
CREATE INDEX IF NOT EXISTS idx_metrics_kind_ts ON metrics(resource_kind, ts);
CREATE INDEX IF NOT EXISTS idx_alerts_acknowledged ON alerts(acknowledged);
CREATE INDEX IF NOT EXISTS idx_alerts_system ON alerts(system_id);
CREATE INDEX IF NOT EXISTS idx_systems_last_seen ON systems(last_seen);
`

package repo

const postgresSchema = `
CREATE TABLE IF NOT EXISTS users (
    id          BIGINT PRIMARY KEY,
    username    VARCHAR(255) NOT NULL DEFAULT '',
    first_name  VARCHAR(255) NOT NULL DEFAULT '',
    last_name   VARCHAR(255) NOT NULL DEFAULT '',
    balance     NUMERIC(18,2) NOT NULL DEFAULT 0 CHECK (balance >= 0),
    is_active   BOOLEAN NOT NULL DEFAULT TRUE,
    created_at  TIMESTAMPTZ NOT NULL,
    updated_at  TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS ledger_entries (
    id            BIGSERIAL PRIMARY KEY,
    user_id       BIGINT NOT NULL REFERENCES users(id),
    operation     VARCHAR(16) NOT NULL,
    amount        NUMERIC(18,2) NOT NULL,
    balance_after NUMERIC(18,2) NOT NULL,
    reference     VARCHAR(128) NOT NULL DEFAULT '',
    created_at    TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS events (
    id          BIGSERIAL PRIMARY KEY,
    title       VARCHAR(255) NOT NULL,
    description TEXT NOT NULL DEFAULT '',
    start_time  TIMESTAMPTZ NOT NULL,
    end_time    TIMESTAMPTZ,
    status      VARCHAR(16) NOT NULL DEFAULT 'upcoming',
    created_by  BIGINT NOT NULL,
    created_at  TIMESTAMPTZ NOT NULL,
    updated_at  TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS outcomes (
    id            BIGSERIAL PRIMARY KEY,
    event_id      BIGINT NOT NULL REFERENCES events(id) ON DELETE CASCADE,
    title         VARCHAR(255) NOT NULL,
    odds          DOUBLE PRECISION NOT NULL CHECK (odds > 1.0),
    total_wagered NUMERIC(18,2) NOT NULL DEFAULT 0,
    resolution    VARCHAR(16) NOT NULL DEFAULT 'undetermined',
    created_at    TIMESTAMPTZ NOT NULL,
    updated_at    TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS bets (
    id               BIGSERIAL PRIMARY KEY,
    user_id          BIGINT NOT NULL REFERENCES users(id),
    event_id         BIGINT NOT NULL REFERENCES events(id),
    outcome_id       BIGINT NOT NULL REFERENCES outcomes(id),
    amount           NUMERIC(18,2) NOT NULL CHECK (amount > 0),
    odds             DOUBLE PRECISION NOT NULL,
    potential_payout NUMERIC(18,2) NOT NULL,
    status           VARCHAR(16) NOT NULL DEFAULT 'pending',
    created_at       TIMESTAMPTZ NOT NULL,
    updated_at       TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_events_status   ON events(status);
CREATE INDEX IF NOT EXISTS idx_outcomes_event  ON outcomes(event_id);
CREATE INDEX IF NOT EXISTS idx_bets_event      ON bets(event_id);
CREATE INDEX IF NOT EXISTS idx_bets_user       ON bets(user_id);
CREATE INDEX IF NOT EXISTS idx_ledger_user     ON ledger_entries(user_id);
`

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS users (
    id          INTEGER PRIMARY KEY,
    username    TEXT NOT NULL DEFAULT '',
    first_name  TEXT NOT NULL DEFAULT '',
    last_name   TEXT NOT NULL DEFAULT '',
    balance     NUMERIC NOT NULL DEFAULT 0 CHECK (balance >= 0),
    is_active   INTEGER NOT NULL DEFAULT 1,
    created_at  TIMESTAMP NOT NULL,
    updated_at  TIMESTAMP NOT NULL
);

CREATE TABLE IF NOT EXISTS ledger_entries (
    id            INTEGER PRIMARY KEY AUTOINCREMENT,
    user_id       INTEGER NOT NULL REFERENCES users(id),
    operation     TEXT NOT NULL,
    amount        NUMERIC NOT NULL,
    balance_after NUMERIC NOT NULL,
    reference     TEXT NOT NULL DEFAULT '',
    created_at    TIMESTAMP NOT NULL
);

CREATE TABLE IF NOT EXISTS events (
    id          INTEGER PRIMARY KEY AUTOINCREMENT,
    title       TEXT NOT NULL,
    description TEXT NOT NULL DEFAULT '',
    start_time  TIMESTAMP NOT NULL,
    end_time    TIMESTAMP,
    status      TEXT NOT NULL DEFAULT 'upcoming',
    created_by  INTEGER NOT NULL,
    created_at  TIMESTAMP NOT NULL,
    updated_at  TIMESTAMP NOT NULL
);

CREATE TABLE IF NOT EXISTS outcomes (
    id            INTEGER PRIMARY KEY AUTOINCREMENT,
    event_id      INTEGER NOT NULL REFERENCES events(id) ON DELETE CASCADE,
    title         TEXT NOT NULL,
    odds          REAL NOT NULL CHECK (odds > 1.0),
    total_wagered NUMERIC NOT NULL DEFAULT 0,
    resolution    TEXT NOT NULL DEFAULT 'undetermined',
    created_at    TIMESTAMP NOT NULL,
    updated_at    TIMESTAMP NOT NULL
);

CREATE TABLE IF NOT EXISTS bets (
    id               INTEGER PRIMARY KEY AUTOINCREMENT,
    user_id          INTEGER NOT NULL REFERENCES users(id),
    event_id         INTEGER NOT NULL REFERENCES events(id),
    outcome_id       INTEGER NOT NULL REFERENCES outcomes(id),
    amount           NUMERIC NOT NULL CHECK (amount > 0),
    odds             REAL NOT NULL,
    potential_payout NUMERIC NOT NULL,
    status           TEXT NOT NULL DEFAULT 'pending',
    created_at       TIMESTAMP NOT NULL,
    updated_at       TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_events_status   ON events(status);
CREATE INDEX IF NOT EXISTS idx_outcomes_event  ON outcomes(event_id);
CREATE INDEX IF NOT EXISTS idx_bets_event      ON bets(event_id);
CREATE INDEX IF NOT EXISTS idx_bets_user       ON bets(user_id);
CREATE INDEX IF NOT EXISTS idx_ledger_user     ON ledger_entries(user_id);
`

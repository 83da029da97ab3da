package db

const schema = `
-- Performance and reliability settings
PRAGMA journal_mode = WAL;
PRAGMA synchronous = NORMAL;
PRAGMA foreign_keys = ON;
PRAGMA temp_store = MEMORY;

-- Scrape runs: one row per orchestrated scrape
CREATE TABLE IF NOT EXISTS scrape_runs (
    run_id INTEGER PRIMARY KEY AUTOINCREMENT,
    created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
    query TEXT NOT NULL,
    registration_query TEXT,
    success BOOLEAN NOT NULL,
    retry_recommended BOOLEAN NOT NULL DEFAULT 0,
    error_message TEXT,
    attempts INTEGER NOT NULL DEFAULT 1,
    duration_ms INTEGER NOT NULL DEFAULT 0,

    -- Selected company, NULL when no candidate was accepted
    company_name TEXT,
    company_hrb TEXT,

    document_count INTEGER NOT NULL DEFAULT 0,

    -- Failure evidence paths, NULL when nothing was captured
    screenshot_path TEXT,
    html_path TEXT
);

CREATE INDEX IF NOT EXISTS idx_runs_created ON scrape_runs(created_at DESC);
CREATE INDEX IF NOT EXISTS idx_runs_query ON scrape_runs(query);
CREATE INDEX IF NOT EXISTS idx_runs_success ON scrape_runs(success);
CREATE INDEX IF NOT EXISTS idx_runs_company_hrb ON scrape_runs(company_hrb);

-- Run documents: every fetched or attempted document of a run
CREATE TABLE IF NOT EXISTS run_documents (
    document_id INTEGER PRIMARY KEY AUTOINCREMENT,
    run_id INTEGER NOT NULL,
    doc_type TEXT NOT NULL,
    pdf_filename TEXT,
    markdown_filename TEXT,
    size_bytes INTEGER NOT NULL DEFAULT 0,
    page_count INTEGER NOT NULL DEFAULT 0,
    language TEXT,
    language_confidence REAL,

    -- Set when the document failed: which stage and why
    error_stage TEXT,
    error_message TEXT,

    FOREIGN KEY (run_id) REFERENCES scrape_runs(run_id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_run_documents_run ON run_documents(run_id);
CREATE INDEX IF NOT EXISTS idx_run_documents_type ON run_documents(doc_type);

-- Run messages: UI notices the portal showed during a run
CREATE TABLE IF NOT EXISTS run_messages (
    message_id INTEGER PRIMARY KEY AUTOINCREMENT,
    run_id INTEGER NOT NULL,
    message TEXT NOT NULL,
    FOREIGN KEY (run_id) REFERENCES scrape_runs(run_id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_run_messages_run ON run_messages(run_id);
`

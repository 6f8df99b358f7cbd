package tracing

import (
	"database/sql"
	"fmt"
	"strings"

	// Need to use SQLite connections.
	_ "github.com/mattn/go-sqlite3"

	"github.com/rs/xid"
	"github.com/tebeka/atexit"
)

// SQLiteTraceWriter is a tracer that writes the events to a SQLite database.
type SQLiteTraceWriter struct {
	*sql.DB
	statement *sql.Stmt

	dbName string

	eventsToWriteToDB []Event
	batchSize         int
}

// NewSQLiteTraceWriter creates a new SQLiteTraceWriter. When path is empty, a
// unique database name is generated.
func NewSQLiteTraceWriter(path string) *SQLiteTraceWriter {
	w := &SQLiteTraceWriter{
		dbName:    path,
		batchSize: 100000,
	}

	atexit.Register(func() { w.Flush() })

	return w
}

// Init establishes a connection to the database and prepares the table.
func (t *SQLiteTraceWriter) Init() {
	if t.dbName == "" {
		t.dbName = "vmsim_trace_" + xid.New().String()
	}

	t.createDatabase()
	t.createTable()
	t.prepareStatement()
}

// Record buffers an event for writing. A full buffer triggers a flush.
func (t *SQLiteTraceWriter) Record(e Event) {
	t.eventsToWriteToDB = append(t.eventsToWriteToDB, e)
	if len(t.eventsToWriteToDB) >= t.batchSize {
		t.Flush()
	}
}

// Flush writes all the buffered events to the database.
func (t *SQLiteTraceWriter) Flush() {
	if len(t.eventsToWriteToDB) == 0 {
		return
	}

	t.mustExecute("BEGIN TRANSACTION")
	defer t.mustExecute("COMMIT TRANSACTION")

	for _, e := range t.eventsToWriteToDB {
		_, err := t.statement.Exec(
			e.ID,
			e.Kind,
			e.What,
			e.Where,
			e.Page,
			e.Frame,
			e.Time,
		)
		if err != nil {
			panic(err)
		}
	}

	t.eventsToWriteToDB = nil
}

func (t *SQLiteTraceWriter) createDatabase() {
	filename := t.dbName
	if !strings.HasSuffix(filename, ".sqlite") {
		filename += ".sqlite"
	}

	db, err := sql.Open("sqlite3", filename)
	if err != nil {
		panic(err)
	}

	t.DB = db
}

func (t *SQLiteTraceWriter) createTable() {
	t.mustExecute(`
		CREATE TABLE IF NOT EXISTS trace (
			id TEXT,
			kind TEXT,
			what TEXT,
			location TEXT,
			page INTEGER,
			frame INTEGER,
			time REAL
		)
	`)
	t.mustExecute("CREATE INDEX IF NOT EXISTS trace_kind ON trace (kind)")
}

func (t *SQLiteTraceWriter) prepareStatement() {
	stmt, err := t.Prepare(`
		INSERT INTO trace (id, kind, what, location, page, frame, time)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		panic(err)
	}

	t.statement = stmt
}

func (t *SQLiteTraceWriter) mustExecute(query string) sql.Result {
	res, err := t.Exec(query)
	if err != nil {
		panic(fmt.Sprintf("error executing %s: %v", query, err))
	}

	return res
}

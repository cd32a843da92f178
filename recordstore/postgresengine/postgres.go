package postgresengine

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres" // dialect registration
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jmoiron/sqlx"

	"github.com/AntonStoeckl/library-desk-go/recordstore"
	"github.com/AntonStoeckl/library-desk-go/recordstore/postgresengine/internal/adapters"
)

var (
	// ErrNilDatabaseConnection is returned when a constructor receives a nil connection.
	ErrNilDatabaseConnection = errors.New("database connection must not be nil")

	// ErrEmptyTableNameSupplied is returned by WithTableName for an empty name.
	ErrEmptyTableNameSupplied = errors.New("empty table name supplied")

	// ErrBuildingQueryFailed is returned when goqu can't render a statement.
	ErrBuildingQueryFailed = errors.New("building query failed")

	// ErrScanningDBRowFailed is returned when a row can't be scanned.
	ErrScanningDBRowFailed = errors.New("scanning db row failed")

	// ErrGettingRowsAffectedFailed is returned when the driver can't report affected rows.
	ErrGettingRowsAffectedFailed = errors.New("getting rows affected failed")

	// ErrCreatingTableFailed is returned by EnsureTable.
	ErrCreatingTableFailed = errors.New("creating records table failed")
)

const (
	defaultTableName             = "desk_records"
	logMsgBuildSelectQueryFailed = "failed to build select query"
	logMsgBuildSaveQueryFailed   = "failed to build save query"
	logMsgDBQueryFailed          = "database query execution failed"
	logMsgDBExecFailed           = "database execution failed during save"
	logMsgCloseRowsFailed        = "failed to close database rows"
	logMsgScanRowFailed          = "failed to scan database row"
	logMsgRowsAffectedFailed     = "failed to get rows affected count"
	logMsgLoadCompleted          = "load completed"
	logMsgSaveCompleted          = "save completed"
	logMsgConcurrencyConflict    = "concurrency conflict detected"
	logMsgSQLExecuted            = "executed sql for: "
	logMsgOperation              = "recordstore operation: "
	logAttrError                 = "error"
	logAttrQuery                 = "query"
	logAttrKey                   = "key"
	logAttrDurationMS            = "duration_ms"
	logAttrExpectedRevision      = "expected_revision"
	logAttrPayloadBytes          = "payload_bytes"
	logActionLoad                = "load"
	logActionSave                = "save"
	colRecordKey                 = "record_key"
	colPayload                   = "payload"
	colRevision                  = "revision"
	colUpdatedAt                 = "updated_at"
	dialectPostgres              = "postgres"
	castJsonb                    = "?::jsonb"
	exprNow                      = "NOW()"
	createTableStatement         = `CREATE TABLE IF NOT EXISTS %q (
	record_key TEXT PRIMARY KEY,
	payload JSONB NOT NULL,
	revision BIGINT NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`
)

type sqlQueryString = string

// Store is a recordstore engine backed by a PostgreSQL table.
type Store struct {
	db               adapters.DBAdapter
	tableName        string
	logger           recordstore.Logger
	contextualLogger recordstore.ContextualLogger
	metricsCollector recordstore.MetricsCollector
	tracingCollector recordstore.TracingCollector
}

// NewStoreFromPGXPool creates a new Store using a pgx Pool with optional configuration.
func NewStoreFromPGXPool(db *pgxpool.Pool, options ...Option) (*Store, error) {
	if db == nil {
		return nil, ErrNilDatabaseConnection
	}

	return newStore(adapters.NewPGXAdapter(db), options...)
}

// NewStoreFromSQLDB creates a new Store using a sql.DB with optional configuration.
func NewStoreFromSQLDB(db *sql.DB, options ...Option) (*Store, error) {
	if db == nil {
		return nil, ErrNilDatabaseConnection
	}

	return newStore(adapters.NewSQLAdapter(db), options...)
}

// NewStoreFromSQLX creates a new Store using a sqlx.DB with optional configuration.
func NewStoreFromSQLX(db *sqlx.DB, options ...Option) (*Store, error) {
	if db == nil {
		return nil, ErrNilDatabaseConnection
	}

	return newStore(adapters.NewSQLXAdapter(db), options...)
}

func newStore(db adapters.DBAdapter, options ...Option) (*Store, error) {
	s := &Store{
		db:        db,
		tableName: defaultTableName,
	}

	for _, option := range options {
		if err := option(s); err != nil {
			return nil, err
		}
	}

	return s, nil
}

// EnsureTable creates the records table if it does not exist yet.
func (s *Store) EnsureTable(ctx context.Context) error {
	if _, err := s.db.Exec(ctx, fmt.Sprintf(createTableStatement, s.tableName)); err != nil {
		s.logError(ctx, logMsgDBExecFailed, err)
		return errors.Join(ErrCreatingTableFailed, err)
	}

	return nil
}

// Ping checks that the database answers.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.Ping(ctx)
}

// Load returns the document stored under key, or an absent collection when the row does not exist.
func (s *Store) Load(ctx context.Context, key string) (recordstore.StorableCollection, error) {
	if err := recordstore.ValidateKey(key); err != nil {
		return recordstore.StorableCollection{}, err
	}

	observer, ctx := s.startLoadObservation(ctx, key)

	sqlQuery, buildErr := s.buildSelectQuery(key)
	if buildErr != nil {
		s.logError(ctx, logMsgBuildSelectQueryFailed, buildErr, logAttrKey, key)
		observer.finishError(errorTypeBuildQuery)
		return recordstore.StorableCollection{}, buildErr
	}

	start := time.Now()
	rows, queryErr := s.db.Query(ctx, sqlQuery)
	s.logQueryWithDuration(ctx, sqlQuery, logActionLoad, time.Since(start))

	if queryErr != nil {
		s.logError(ctx, logMsgDBQueryFailed, queryErr, logAttrQuery, sqlQuery)
		observer.finishError(classifyError(ctx, queryErr))
		return recordstore.StorableCollection{}, errors.Join(recordstore.ErrLoadingRecordsFailed, queryErr)
	}
	defer s.closeRows(ctx, rows)

	collection, scanErr := s.scanCollection(ctx, key, rows)
	if scanErr != nil {
		observer.finishError(errorTypeScan)
		return recordstore.StorableCollection{}, scanErr
	}

	duration := time.Since(start)
	s.logOperation(ctx, logMsgLoadCompleted,
		logAttrKey, key,
		logAttrPayloadBytes, len(collection.PayloadJSON),
		logAttrDurationMS, toMilliseconds(duration))
	observer.finishSuccess(duration)

	return collection, nil
}

func (s *Store) scanCollection(
	ctx context.Context,
	key string,
	rows adapters.DBRows,
) (recordstore.StorableCollection, error) {

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			s.logError(ctx, logMsgScanRowFailed, err, logAttrKey, key)
			return recordstore.StorableCollection{}, errors.Join(ErrScanningDBRowFailed, err)
		}

		return recordstore.AbsentCollection(key), nil
	}

	var payload []byte
	var revision int64

	if err := rows.Scan(&payload, &revision); err != nil {
		s.logError(ctx, logMsgScanRowFailed, err, logAttrKey, key)
		return recordstore.StorableCollection{}, errors.Join(ErrScanningDBRowFailed, err)
	}

	return recordstore.StorableCollection{
		Key:         key,
		PayloadJSON: payload,
		Revision:    recordstore.RevisionUint(revision),
	}, nil
}

// Save writes the collection if the stored revision equals expectedRevision.
// It returns recordstore.ErrConcurrencyConflict when no row was affected.
func (s *Store) Save(
	ctx context.Context,
	collection recordstore.StorableCollection,
	expectedRevision recordstore.RevisionUint,
) error {

	if err := recordstore.ValidateKey(collection.Key); err != nil {
		return err
	}

	observer, ctx := s.startSaveObservation(ctx, collection.Key, expectedRevision)

	sqlQuery, buildErr := s.buildSaveQuery(collection, expectedRevision)
	if buildErr != nil {
		s.logError(ctx, logMsgBuildSaveQueryFailed, buildErr, logAttrKey, collection.Key)
		observer.finishError(errorTypeBuildQuery)
		return buildErr
	}

	start := time.Now()
	result, execErr := s.db.Exec(ctx, sqlQuery)
	duration := time.Since(start)
	s.logQueryWithDuration(ctx, sqlQuery, logActionSave, duration)

	if execErr != nil {
		s.logError(ctx, logMsgDBExecFailed, execErr, logAttrQuery, sqlQuery)
		observer.finishError(classifyError(ctx, execErr))
		return errors.Join(recordstore.ErrSavingRecordsFailed, execErr)
	}

	rowsAffected, rowsAffectedErr := result.RowsAffected()
	if rowsAffectedErr != nil {
		s.logError(ctx, logMsgRowsAffectedFailed, rowsAffectedErr)
		observer.finishError(errorTypeRowsAffected)
		return errors.Join(ErrGettingRowsAffectedFailed, rowsAffectedErr)
	}

	if rowsAffected == 0 {
		s.logOperation(ctx, logMsgConcurrencyConflict,
			logAttrKey, collection.Key,
			logAttrExpectedRevision, expectedRevision)
		observer.finishConflict(duration)
		return recordstore.ErrConcurrencyConflict
	}

	s.logOperation(ctx, logMsgSaveCompleted,
		logAttrKey, collection.Key,
		logAttrPayloadBytes, len(collection.PayloadJSON),
		logAttrDurationMS, toMilliseconds(duration))
	observer.finishSuccess(duration)

	return nil
}

func (s *Store) buildSelectQuery(key string) (sqlQueryString, error) {
	selectStmt := goqu.Dialect(dialectPostgres).
		From(s.tableName).
		Select(colPayload, colRevision).
		Where(goqu.C(colRecordKey).Eq(key)).
		Limit(1)

	sqlQuery, _, toSQLErr := selectStmt.ToSQL()
	if toSQLErr != nil {
		return "", errors.Join(ErrBuildingQueryFailed, toSQLErr)
	}

	return sqlQuery, nil
}

// buildSaveQuery renders the first-write INSERT or the conditional UPDATE.
func (s *Store) buildSaveQuery(
	collection recordstore.StorableCollection,
	expectedRevision recordstore.RevisionUint,
) (sqlQueryString, error) {

	builder := goqu.Dialect(dialectPostgres)
	payload := goqu.L(castJsonb, string(collection.PayloadJSON))

	var sqlQuery string
	var toSQLErr error

	if expectedRevision == recordstore.NoRevision {
		sqlQuery, _, toSQLErr = builder.
			Insert(s.tableName).
			Cols(colRecordKey, colPayload, colRevision).
			Vals(goqu.Vals{collection.Key, payload, 1}).
			OnConflict(goqu.DoNothing()).
			ToSQL()
	} else {
		sqlQuery, _, toSQLErr = builder.
			Update(s.tableName).
			Set(goqu.Record{
				colPayload:   payload,
				colRevision:  goqu.L(fmt.Sprintf("%q + 1", colRevision)),
				colUpdatedAt: goqu.L(exprNow),
			}).
			Where(
				goqu.C(colRecordKey).Eq(collection.Key),
				goqu.C(colRevision).Eq(int64(expectedRevision)), //nolint:gosec // revisions are small counters here
			).
			ToSQL()
	}

	if toSQLErr != nil {
		return "", errors.Join(ErrBuildingQueryFailed, toSQLErr)
	}

	return sqlQuery, nil
}

// closeRows safely closes database rows and logs any errors.
func (s *Store) closeRows(ctx context.Context, rows adapters.DBRows) {
	if closeErr := rows.Close(); closeErr != nil {
		s.logWarn(ctx, logMsgCloseRowsFailed, logAttrError, closeErr.Error())
	}
}

package persist

import (
	"database/sql"
	"fmt"
	"reflect"
	"sort"
	"strconv"
	"strings"

	_ "github.com/lib/pq"
	"github.com/richard-senior/predictomatic/internal/logger"
	_ "modernc.org/sqlite"
)

// Persistable is implemented by structs whose tagged fields map onto a table.
//
// Recognised field tags:
//
//	column:"name"      column name, defaults to the lower cased field name
//	dbtype:"TEXT"      column type; fields without one are not persisted
//	primary:"true"     part of the (possibly compound) primary key
//	index:"true"       create an index on the column ("unique" for a unique index)
//	persist:"false"    never persisted
type Persistable interface {
	TableName() string
	PrimaryKey() map[string]any
}

// execer is satisfied by both *sql.DB and *sql.Tx
type execer interface {
	Exec(query string, args ...any) (sql.Result, error)
	Query(query string, args ...any) (*sql.Rows, error)
	QueryRow(query string, args ...any) *sql.Row
}

// DB is an explicitly scoped connection. Callers open one per run and close it when done.
type DB struct {
	db     *sql.DB
	driver string
}

// Open connects to a "sqlite" or "postgres" database
func Open(driver, dsn string) (*DB, error) {
	switch driver {
	case "sqlite", "postgres":
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", driver)
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if driver == "sqlite" {
		// every new sqlite connection to ":memory:" is a fresh database
		db.SetMaxOpenConns(1)
	}
	if err = db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	logger.Debug("Database opened", driver, dsn)
	return &DB{db: db, driver: driver}, nil
}

// Close closes the database connection
func (d *DB) Close() error {
	if d == nil || d.db == nil {
		return nil
	}
	return d.db.Close()
}

// SQL exposes the underlying handle for hand written queries
func (d *DB) SQL() *sql.DB {
	return d.db
}

// Rebind rewrites '?' placeholders into the form the driver expects
func (d *DB) Rebind(query string) string {
	if d.driver != "postgres" {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteString("$" + strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// CreateTable creates a table for the given persistable object using struct tags
func (d *DB) CreateTable(obj Persistable) error {
	tableName := obj.TableName()
	createSQL := generateCreateTableSQL(obj, tableName)

	logger.Debug("Creating table with SQL", createSQL)
	if _, err := d.db.Exec(createSQL); err != nil {
		return fmt.Errorf("failed to create table %s: %w", tableName, err)
	}

	for _, query := range generateIndexSQL(obj, tableName) {
		logger.Debug("Creating index with SQL", query)
		if _, err := d.db.Exec(query); err != nil {
			logger.Warn("Failed to create index", err)
		}
	}
	return nil
}

// generateCreateTableSQL generates CREATE TABLE SQL from struct tags
func generateCreateTableSQL(obj any, tableName string) string {
	var columns []string
	var primaryKeys []string

	eachColumn(obj, func(field reflect.StructField, _ reflect.Value, column string) {
		dbType := field.Tag.Get("dbtype")
		if field.Tag.Get("primary") == "true" {
			primaryKeys = append(primaryKeys, column)
			dbType = strings.TrimSpace(strings.ReplaceAll(dbType, "PRIMARY KEY", ""))
		}
		columns = append(columns, fmt.Sprintf("%s %s", column, dbType))
	})

	if len(primaryKeys) > 0 {
		columns = append(columns, fmt.Sprintf("PRIMARY KEY (%s)", strings.Join(primaryKeys, ", ")))
	}

	return fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (%s)", tableName, strings.Join(columns, ", "))
}

// generateIndexSQL generates index creation SQL from struct tags
func generateIndexSQL(obj any, tableName string) []string {
	var indexSQL []string
	eachColumn(obj, func(field reflect.StructField, _ reflect.Value, column string) {
		kind := field.Tag.Get("index")
		if kind == "" {
			return
		}
		unique := ""
		if kind == "unique" {
			unique = "UNIQUE "
		}
		indexName := fmt.Sprintf("idx_%s_%s", tableName, column)
		indexSQL = append(indexSQL, fmt.Sprintf("CREATE %sINDEX IF NOT EXISTS %s ON %s(%s)", unique, indexName, tableName, column))
	})
	return indexSQL
}

// eachColumn calls fn for every persisted field of obj
func eachColumn(obj any, fn func(field reflect.StructField, value reflect.Value, column string)) {
	objValue := reflect.ValueOf(obj)
	if objValue.Kind() == reflect.Ptr {
		objValue = objValue.Elem()
	}
	objType := objValue.Type()

	for i := 0; i < objType.NumField(); i++ {
		field := objType.Field(i)
		if !field.IsExported() {
			continue
		}
		if field.Tag.Get("persist") == "false" || field.Tag.Get("dbtype") == "" {
			continue
		}
		column := field.Tag.Get("column")
		if column == "" {
			column = strings.ToLower(field.Name)
		}
		fn(field, objValue.Field(i), column)
	}
}

// Save persists the object (INSERT or UPDATE on its primary key)
func (d *DB) Save(obj Persistable) error {
	return d.save(d.db, obj)
}

func (d *DB) save(ex execer, obj Persistable) error {
	exists, err := d.exists(ex, obj)
	if err != nil {
		return fmt.Errorf("failed to check existence: %w", err)
	}
	if exists {
		return d.update(ex, obj)
	}
	return d.insert(ex, obj)
}

// BulkSave saves multiple objects in a single transaction
func (d *DB) BulkSave(objects []Persistable) error {
	tx, err := d.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, obj := range objects {
		if err := d.save(tx, obj); err != nil {
			return fmt.Errorf("failed to save object: %w", err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func (d *DB) insert(ex execer, obj Persistable) error {
	tableName := obj.TableName()

	var columns, placeholders []string
	var values []any
	eachColumn(obj, func(_ reflect.StructField, value reflect.Value, column string) {
		columns = append(columns, column)
		placeholders = append(placeholders, "?")
		values = append(values, value.Interface())
	})

	query := d.Rebind(fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		tableName, strings.Join(columns, ", "), strings.Join(placeholders, ", ")))
	logger.Debug("Insert SQL", query)

	if _, err := ex.Exec(query, values...); err != nil {
		return fmt.Errorf("failed to insert into %s: %w", tableName, err)
	}
	return nil
}

func (d *DB) update(ex execer, obj Persistable) error {
	tableName := obj.TableName()

	var setPairs []string
	var values []any
	eachColumn(obj, func(field reflect.StructField, value reflect.Value, column string) {
		if field.Tag.Get("primary") == "true" {
			return
		}
		setPairs = append(setPairs, fmt.Sprintf("%s = ?", column))
		values = append(values, value.Interface())
	})
	if len(setPairs) == 0 {
		return nil
	}

	whereClause, whereValues := buildWhereClause(obj.PrimaryKey())
	values = append(values, whereValues...)

	query := d.Rebind(fmt.Sprintf("UPDATE %s SET %s WHERE %s", tableName, strings.Join(setPairs, ", "), whereClause))
	logger.Debug("Update SQL", query)

	if _, err := ex.Exec(query, values...); err != nil {
		return fmt.Errorf("failed to update %s: %w", tableName, err)
	}
	return nil
}

// Exists checks if a row with the object's primary key exists
func (d *DB) Exists(obj Persistable) (bool, error) {
	return d.exists(d.db, obj)
}

func (d *DB) exists(ex execer, obj Persistable) (bool, error) {
	tableName := obj.TableName()
	whereClause, values := buildWhereClause(obj.PrimaryKey())

	query := d.Rebind(fmt.Sprintf("SELECT COUNT(*) FROM %s WHERE %s", tableName, whereClause))

	var count int
	if err := ex.QueryRow(query, values...).Scan(&count); err != nil {
		return false, fmt.Errorf("failed to check existence in %s: %w", tableName, err)
	}
	return count > 0, nil
}

// FindWhere selects rows of T matching a WHERE clause written with '?' placeholders.
// The clause may carry ORDER BY and LIMIT.
func FindWhere[T any, PT interface {
	*T
	Persistable
}](d *DB, whereClause string, args ...any) ([]T, error) {
	var zero T
	obj := PT(&zero)
	tableName := obj.TableName()

	var columns []string
	eachColumn(obj, func(_ reflect.StructField, _ reflect.Value, column string) {
		columns = append(columns, column)
	})

	query := fmt.Sprintf("SELECT %s FROM %s", strings.Join(columns, ", "), tableName)
	if whereClause != "" {
		query += " WHERE " + whereClause
	}
	query = d.Rebind(query)
	logger.Debug("FindWhere SQL", query)

	rows, err := d.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", tableName, err)
	}
	defer rows.Close()

	var results []T
	for rows.Next() {
		var item T
		var destinations []any
		eachColumn(PT(&item), func(_ reflect.StructField, value reflect.Value, _ string) {
			destinations = append(destinations, value.Addr().Interface())
		})
		if err := rows.Scan(destinations...); err != nil {
			return nil, fmt.Errorf("failed to scan row from %s: %w", tableName, err)
		}
		results = append(results, item)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows from %s: %w", tableName, err)
	}
	return results, nil
}

// buildWhereClause builds a WHERE clause from a primary key map.
// Columns are sorted so that the generated SQL is stable.
func buildWhereClause(primaryKey map[string]any) (string, []any) {
	columns := make([]string, 0, len(primaryKey))
	for column := range primaryKey {
		columns = append(columns, column)
	}
	sort.Strings(columns)

	conditions := make([]string, 0, len(columns))
	values := make([]any, 0, len(columns))
	for _, column := range columns {
		conditions = append(conditions, fmt.Sprintf("%s = ?", column))
		values = append(values, primaryKey[column])
	}
	return strings.Join(conditions, " AND "), values
}

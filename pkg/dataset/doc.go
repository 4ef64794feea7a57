// Package dataset provides the tabular data that expectation suites run
// against.
//
// A Table is column-oriented and untyped: CSV cells stay strings and
// database cells keep the driver's Go types. Missing values are nil.
// Conversions are left to the consumer (see package values).
//
// Tables are read from CSV files (LoadCSV), SQLite files (LoadSQLite) or
// Postgres, MySQL and SQL Server databases addressed by URL (LoadSQL).
package dataset

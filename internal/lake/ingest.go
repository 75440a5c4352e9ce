package lake

import (
	"context"
	"fmt"
	"path"
	"strings"
)

type sourceFormat struct {
	ext      string
	relation string
}

var (
	formatParquet = sourceFormat{ext: ".parquet", relation: "read_parquet(%s)"}
	formatCSV     = sourceFormat{ext: ".csv", relation: "read_csv_auto(%s)"}
)

// LoadBucketParquet globs s3://bucket/folder/*.parquet and creates or
// replaces one table per object in the target schema, with lineage columns
// appended. Returns the names of the tables loaded.
func (s *Session) LoadBucketParquet(ctx context.Context, bucket, sourceFolder, targetSchema string) ([]string, error) {
	return s.loadBucketObjects(ctx, bucket, sourceFolder, targetSchema, formatParquet)
}

// LoadBucketCSV is LoadBucketParquet for *.csv objects, read with schema
// inference.
func (s *Session) LoadBucketCSV(ctx context.Context, bucket, sourceFolder, targetSchema string) ([]string, error) {
	return s.loadBucketObjects(ctx, bucket, sourceFolder, targetSchema, formatCSV)
}

func (s *Session) loadBucketObjects(ctx context.Context, bucket, sourceFolder, targetSchema string, format sourceFormat) ([]string, error) {
	if strings.TrimSpace(bucket) == "" {
		return nil, fmt.Errorf("bucket is required")
	}
	if strings.TrimSpace(targetSchema) == "" {
		return nil, fmt.Errorf("target schema is required")
	}

	pattern := fmt.Sprintf("s3://%s/%s/*%s", bucket, strings.Trim(sourceFolder, "/"), format.ext)
	rows, err := s.db.QueryContext(ctx, "SELECT file FROM glob("+quoteLiteral(pattern)+")")
	if err != nil {
		return nil, fmt.Errorf("glob %q: %w", pattern, err)
	}
	defer func() { _ = rows.Close() }()

	var objectPaths []string
	for rows.Next() {
		var objectPath string
		if err := rows.Scan(&objectPath); err != nil {
			return nil, fmt.Errorf("scan glob result: %w", err)
		}
		objectPaths = append(objectPaths, objectPath)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate glob results: %w", err)
	}

	loaded := make([]string, 0, len(objectPaths))
	for _, objectPath := range objectPaths {
		tableName := TableNameForObject(objectPath)
		if _, err := s.db.ExecContext(ctx, buildIngestSQL(targetSchema, tableName, objectPath, format)); err != nil {
			return loaded, fmt.Errorf("load %q into %s.%s: %w", objectPath, targetSchema, tableName, err)
		}
		loaded = append(loaded, tableName)
	}
	return loaded, nil
}

// buildIngestSQL stamps every ingested row with the source object, ingestion
// time and a per-load record id.
func buildIngestSQL(targetSchema, tableName, objectPath string, format sourceFormat) string {
	relation := fmt.Sprintf(format.relation, quoteLiteral(objectPath))
	return fmt.Sprintf(
		"CREATE OR REPLACE TABLE %s.%s AS SELECT *, %s AS _source_file, CURRENT_TIMESTAMP AS _ingestion_timestamp, ROW_NUMBER() OVER () AS _record_id FROM %s",
		quoteIdent(targetSchema),
		quoteIdent(tableName),
		quoteLiteral(sourceNameForObject(objectPath)),
		relation,
	)
}

// TableNameForObject derives a lake table name from an object path: the
// base name without extension, uppercased, with hyphens and spaces replaced
// by underscores.
func TableNameForObject(objectPath string) string {
	name := sourceNameForObject(objectPath)
	name = strings.ToUpper(name)
	return strings.NewReplacer("-", "_", " ", "_").Replace(name)
}

func sourceNameForObject(objectPath string) string {
	name := path.Base(objectPath)
	return strings.TrimSuffix(name, path.Ext(name))
}

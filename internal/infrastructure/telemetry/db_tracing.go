package telemetry

import (
	"context"
	"errors"
	"time"

	"github.com/uptrace/opentelemetry-go-extra/otelgorm"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// slowQueryThreshold marks queries worth flagging on their span.
const slowQueryThreshold = 200 * time.Millisecond

type ctxKey string

const queryStartKey ctxKey = "trace_query_start"

// InstrumentDB attaches gorm spans to the active request trace. Query
// variables are never recorded; row counts, table names, and slow-query
// flags are.
func InstrumentDB(db *gorm.DB, logger *zap.Logger) error {
	if err := db.Use(otelgorm.NewPlugin(otelgorm.WithoutQueryVariables())); err != nil {
		return err
	}

	markStart := func(db *gorm.DB) {
		if db.Statement.Context != nil {
			db.Statement.Context = context.WithValue(db.Statement.Context, queryStartKey, time.Now())
		}
	}
	if err := db.Callback().Create().Before("gorm:create").Register("trace_timing:before_create", markStart); err != nil {
		return err
	}
	if err := db.Callback().Query().Before("gorm:query").Register("trace_timing:before_query", markStart); err != nil {
		return err
	}
	if err := db.Callback().Update().Before("gorm:update").Register("trace_timing:before_update", markStart); err != nil {
		return err
	}
	if err := db.Callback().Delete().Before("gorm:delete").Register("trace_timing:before_delete", markStart); err != nil {
		return err
	}
	if err := db.Callback().Row().Before("gorm:row").Register("trace_timing:before_row", markStart); err != nil {
		return err
	}
	if err := db.Callback().Raw().Before("gorm:raw").Register("trace_timing:before_raw", markStart); err != nil {
		return err
	}

	if err := db.Callback().Create().After("gorm:create").Register("trace_timing:after_create", annotateSpan); err != nil {
		return err
	}
	if err := db.Callback().Query().After("gorm:query").Register("trace_timing:after_query", annotateSpan); err != nil {
		return err
	}
	if err := db.Callback().Update().After("gorm:update").Register("trace_timing:after_update", annotateSpan); err != nil {
		return err
	}
	if err := db.Callback().Delete().After("gorm:delete").Register("trace_timing:after_delete", annotateSpan); err != nil {
		return err
	}
	if err := db.Callback().Row().After("gorm:row").Register("trace_timing:after_row", annotateSpan); err != nil {
		return err
	}
	if err := db.Callback().Raw().After("gorm:raw").Register("trace_timing:after_raw", annotateSpan); err != nil {
		return err
	}

	logger.Info("database tracing enabled",
		zap.Duration("slow_query_threshold", slowQueryThreshold))
	return nil
}

// annotateSpan runs after each gorm operation and enriches the span opened
// by otelgorm.
func annotateSpan(db *gorm.DB) {
	ctx := db.Statement.Context
	if ctx == nil {
		return
	}
	span := trace.SpanFromContext(ctx)
	if !span.IsRecording() {
		return
	}

	if db.Statement.RowsAffected >= 0 {
		span.SetAttributes(attribute.Int64("db.rows_affected", db.Statement.RowsAffected))
	}
	if db.Statement.Table != "" {
		span.SetAttributes(attribute.String("db.sql.table", db.Statement.Table))
	}
	if db.Error != nil && !errors.Is(db.Error, gorm.ErrRecordNotFound) {
		span.SetStatus(codes.Error, db.Error.Error())
		span.RecordError(db.Error)
	}

	if start, ok := ctx.Value(queryStartKey).(time.Time); ok {
		if elapsed := time.Since(start); elapsed > slowQueryThreshold {
			span.SetAttributes(
				attribute.Bool("db.slow_query", true),
				attribute.Int64("db.query_duration_ms", elapsed.Milliseconds()),
			)
		}
	}
}

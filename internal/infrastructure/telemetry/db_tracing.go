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

// DBTracingConfig holds configuration for database tracing.
type DBTracingConfig struct {
	Enabled         bool
	LogFullSQL      bool          // include query variables in spans
	SlowQueryThresh time.Duration // queries above this get a slow_query event
	DBSystem        string        // postgresql or sqlite
}

type queryStartKey struct{}

// RegisterDBTracing installs otelgorm on db plus timing callbacks that flag
// slow statements and record errors on the active span.
func RegisterDBTracing(db *gorm.DB, cfg DBTracingConfig, logger *zap.Logger) error {
	if !cfg.Enabled {
		return nil
	}
	opts := []otelgorm.Option{otelgorm.WithDBName(cfg.DBSystem)}
	if !cfg.LogFullSQL {
		opts = append(opts, otelgorm.WithoutQueryVariables())
	}
	if err := db.Use(otelgorm.NewPlugin(opts...)); err != nil {
		return err
	}
	if err := registerTimingCallbacks(db, cfg.SlowQueryThresh); err != nil {
		return err
	}
	logger.Info("Database tracing enabled",
		zap.Bool("log_full_sql", cfg.LogFullSQL),
		zap.Duration("slow_query_threshold", cfg.SlowQueryThresh),
		zap.String("db_system", cfg.DBSystem),
	)
	return nil
}

func registerTimingCallbacks(db *gorm.DB, thresh time.Duration) error {
	before := func(tx *gorm.DB) {
		if tx.Statement.Context != nil {
			tx.Statement.Context = context.WithValue(tx.Statement.Context, queryStartKey{}, time.Now())
		}
	}
	after := func(tx *gorm.DB) { annotateSpan(tx, thresh) }

	cb := db.Callback()
	regs := []func() error{
		func() error { return cb.Create().Before("gorm:create").Register("billing_timing:before_create", before) },
		func() error { return cb.Query().Before("gorm:query").Register("billing_timing:before_query", before) },
		func() error { return cb.Update().Before("gorm:update").Register("billing_timing:before_update", before) },
		func() error { return cb.Delete().Before("gorm:delete").Register("billing_timing:before_delete", before) },
		func() error { return cb.Row().Before("gorm:row").Register("billing_timing:before_row", before) },
		func() error { return cb.Raw().Before("gorm:raw").Register("billing_timing:before_raw", before) },
		func() error { return cb.Create().After("gorm:create").Register("billing_timing:after_create", after) },
		func() error { return cb.Query().After("gorm:query").Register("billing_timing:after_query", after) },
		func() error { return cb.Update().After("gorm:update").Register("billing_timing:after_update", after) },
		func() error { return cb.Delete().After("gorm:delete").Register("billing_timing:after_delete", after) },
		func() error { return cb.Row().After("gorm:row").Register("billing_timing:after_row", after) },
		func() error { return cb.Raw().After("gorm:raw").Register("billing_timing:after_raw", after) },
	}
	for _, register := range regs {
		if err := register(); err != nil {
			return err
		}
	}
	return nil
}

func annotateSpan(tx *gorm.DB, thresh time.Duration) {
	ctx := tx.Statement.Context
	if ctx == nil {
		return
	}
	span := trace.SpanFromContext(ctx)
	if !span.IsRecording() {
		return
	}
	span.SetAttributes(attribute.Int64("db.rows_affected", tx.Statement.RowsAffected))
	if tx.Statement.Table != "" {
		span.SetAttributes(attribute.String("db.sql.table", tx.Statement.Table))
	}
	if tx.Error != nil && !errors.Is(tx.Error, gorm.ErrRecordNotFound) {
		span.SetStatus(codes.Error, tx.Error.Error())
		span.RecordError(tx.Error)
	}
	if start, ok := ctx.Value(queryStartKey{}).(time.Time); ok && thresh > 0 {
		if elapsed := time.Since(start); elapsed > thresh {
			span.SetAttributes(attribute.Bool("db.slow_query", true))
			span.AddEvent("slow_query_warning", trace.WithAttributes(
				attribute.Int64("duration_ms", elapsed.Milliseconds()),
				attribute.Int64("threshold_ms", thresh.Milliseconds()),
			))
		}
	}
}

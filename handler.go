package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Handler holds shared dependencies (db pool, day store, notifier, config)
// for all route handlers.
type Handler struct {
	db            *pgxpool.Pool
	days          *dayStore
	notify        notifier
	openAIBaseURL string // Base URL for OpenAI API (overridable for tests)
}

/* ─── Database helpers ────────────────────────────────────────────────── */

// queryOne runs a query and scans the first row into T using RowToStructByName.
// Logs query and scan errors for debugging (e.g. struct/column mismatches).
// Takes a context.Context so both gin handlers and the day store can call it.
func queryOne[T any](pool *pgxpool.Pool, ctx context.Context, sql string, args pgx.NamedArgs) (T, error) {
	rows, err := pool.Query(ctx, sql, args)
	if err != nil {
		log.Printf("[queryOne] Query error: %v", err)
		var zero T
		return zero, err
	}
	result, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[T])
	if err != nil && err != pgx.ErrNoRows {
		log.Printf("[queryOne] Scan error: %v", err)
	}
	return result, err
}

// queryMany runs a query and scans all rows into []T using RowToStructByName.
func queryMany[T any](pool *pgxpool.Pool, ctx context.Context, sql string, args pgx.NamedArgs) ([]T, error) {
	rows, err := pool.Query(ctx, sql, args)
	if err != nil {
		log.Printf("[queryMany] Query error: %v", err)
		return nil, err
	}
	results, err := pgx.CollectRows(rows, pgx.RowToStructByName[T])
	if err != nil {
		log.Printf("[queryMany] Scan error: %v", err)
	}
	return results, err
}

// apiError returns a consistent JSON error response: {"error": "message"}.
func apiError(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"error": message})
}

/* ─── Date helpers ────────────────────────────────────────────────────── */

// parseDate parses a YYYY-MM-DD string into a UTC-midnight time.
func parseDate(s string) (time.Time, error) {
	return time.Parse("2006-01-02", s)
}

// requireDateParam validates the :date path param. On failure it writes a
// 400 response and returns ok=false; callers just return.
func requireDateParam(c *gin.Context) (string, bool) {
	date := c.Param("date")
	if _, err := parseDate(date); err != nil {
		apiError(c, http.StatusBadRequest, "invalid date, expected YYYY-MM-DD")
		return "", false
	}
	return date, true
}

// logSaveFailure records a persistence failure without surfacing it to the
// client: the in-memory aggregate stays authoritative for the session.
func logSaveFailure(op string, userID int, date string, err error) {
	log.Printf("[%s] save failed for user %d date %s: %v", op, userID, date, err)
}

/* ─── Server setup ────────────────────────────────────────────────────── */

// getDBPool creates a connection pool. We use a pool (not a single conn) because
// Neon closes idle connections after ~5 minutes.
func getDBPool() *pgxpool.Pool {
	config, err := pgxpool.ParseConfig(os.Getenv("DB_URL"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Unable to parse DB URL: %v\n", err)
		os.Exit(1)
	}
	// Use simple query protocol to avoid "cached plan must not change result type"
	// errors from Neon's server-side prepared statement cache after schema changes.
	config.ConnConfig.DefaultQueryExecMode = pgx.QueryExecModeSimpleProtocol
	pool, err := pgxpool.NewWithConfig(context.Background(), config)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Unable to connect to database: %v\n", err)
		os.Exit(1)
	}
	fmt.Println("DB pool ready!")
	return pool
}

// registerRoutes registers all API routes on the router.
func (h *Handler) registerRoutes(router *gin.Engine) {
	// Public routes
	router.POST("/api/login", h.login)

	// Authenticated routes
	api := router.Group("/api", h.authMiddleware())

	api.GET("/days/:date", h.getDailySummary)
	api.POST("/days/:date/intake", h.createIntakeEntry)
	api.DELETE("/days/:date/intake/:id", h.deleteIntakeEntry)
	api.POST("/days/:date/macro-adjust", h.adjustMacroConsumption)
	api.POST("/days/:date/activity/sensed", h.recordSensedActivity)
	api.POST("/days/:date/activity/manual", h.setManualActivityTotal)
	api.POST("/days/:date/supplements/toggle", h.toggleSupplementTaken)

	api.GET("/week", h.getWeekSummary)

	api.GET("/macros", h.getTrackedMacros)
	api.POST("/macros", h.createTrackedMacro)
	api.PUT("/macros/:id", h.updateTrackedMacro)
	api.DELETE("/macros/:id", h.deleteTrackedMacro)

	api.GET("/settings", h.getUserSettings)
	api.PATCH("/settings", h.patchUserSettings)

	api.GET("/fasting", h.getFastingStatus)
	api.POST("/fasting/start", h.startFast)
	api.POST("/fasting/protocol", h.changeFastingProtocol)
	api.POST("/fasting/end", h.endFast)

	api.GET("/supplements", h.listSupplements)
	api.POST("/supplements", h.createSupplement)
	api.DELETE("/supplements/:id", h.deleteSupplement)

	api.GET("/progress", h.getProgressEntries)
	api.POST("/progress", h.upsertProgressEntry)
	api.PUT("/progress/:id", h.updateProgressEntry)
	api.DELETE("/progress/:id", h.deleteProgressEntry)

	api.GET("/training/groups", h.getWeightGroups)
	api.POST("/training/groups", h.createWeightGroup)
	api.PUT("/training/groups/:id", h.updateWeightGroup)
	api.DELETE("/training/groups/:id", h.deleteWeightGroup)
	api.GET("/training/groups/:id/exercises", h.getWeightExercises)
	api.POST("/training/groups/:id/exercises", h.createWeightExercise)
	api.PUT("/training/exercises/:id", h.updateWeightExercise)
	api.DELETE("/training/exercises/:id", h.deleteWeightExercise)

	api.GET("/sport", h.getSportActivities)
	api.POST("/sport", h.createSportActivity)
	api.PUT("/sport/:id", h.updateSportActivity)
	api.DELETE("/sport/:id", h.deleteSportActivity)

	api.POST("/suggest", h.suggestIntakeEntry)
}

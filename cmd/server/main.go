package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/baditaflorin/l"
	"github.com/valyala/fasthttp"

	featureimportance "github.com/baditaflorin/go_feature_importance"
)

// Default configuration
const (
	DefaultPort           = 8080
	DefaultReadTimeout    = 30 * time.Second
	DefaultWriteTimeout   = 30 * time.Second
	DefaultMaxRequestSize = 10 * 1024 * 1024 // 10MB
	DefaultConcurrency    = 0                // 0 means use GOMAXPROCS
	DefaultComputeTimeout = 60 * time.Second
)

// Logger instance
var logger l.Logger

// ImportanceRequest represents an importance computation request. The model
// is supplied inline as a linear model: prediction = weights . row + intercept.
type ImportanceRequest struct {
	X         [][]float64 `json:"x"`
	Y         []float64   `json:"y"`
	Weights   []float64   `json:"weights"`
	Intercept float64     `json:"intercept,omitempty"`
	Kind      string      `json:"kind,omitempty"`
	Repeats   int         `json:"repeats,omitempty"`
	OnlyMeans bool        `json:"only_means,omitempty"`
	Scale     bool        `json:"scale,omitempty"`
	Seed      int64       `json:"seed,omitempty"`
	Workers   int         `json:"workers,omitempty"`
}

// ScoreRequest represents a standalone scoring request.
type ScoreRequest struct {
	YTrue []float64 `json:"y_true"`
	YPred []float64 `json:"y_pred"`
	Kind  string    `json:"kind,omitempty"`
}

// FeatureResponse is the per-feature slice of an importance response.
type FeatureResponse struct {
	Feature int       `json:"feature"`
	Raw     []float64 `json:"raw,omitempty"`
	Mean    float64   `json:"mean"`
	StdDev  float64   `json:"std_dev"`
}

// ImportanceResponse represents an importance computation response.
type ImportanceResponse struct {
	Kind           string            `json:"kind"`
	BaseScore      float64           `json:"base_score"`
	Importances    []FeatureResponse `json:"importances"`
	ProcessingTime string            `json:"processing_time,omitempty"`
}

// ScoreResponse represents a scoring response.
type ScoreResponse struct {
	Kind  string  `json:"kind"`
	Score float64 `json:"score"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error string `json:"error"`
}

// linearModel is the predict capability the server exposes over HTTP:
// a fixed-coefficient linear model. Stateless, so safe for the engine's
// concurrent feature tasks.
type linearModel struct {
	weights   []float64
	intercept float64
}

func (m linearModel) Predict(x [][]float64) ([]float64, error) {
	out := make([]float64, len(x))
	for i, row := range x {
		if len(row) != len(m.weights) {
			return nil, fmt.Errorf("row %d has %d columns, model expects %d", i, len(row), len(m.weights))
		}
		sum := m.intercept
		for j, v := range row {
			sum += m.weights[j] * v
		}
		out[i] = sum
	}
	return out, nil
}

func main() {
	// Parse command-line flags
	port := flag.Int("port", DefaultPort, "HTTP server port")
	readTimeout := flag.Duration("read-timeout", DefaultReadTimeout, "HTTP read timeout")
	writeTimeout := flag.Duration("write-timeout", DefaultWriteTimeout, "HTTP write timeout")
	maxRequestSize := flag.Int("max-request-size", DefaultMaxRequestSize, "Maximum request size in bytes")
	concurrency := flag.Int("concurrency", DefaultConcurrency, "Maximum number of concurrent requests (0 = GOMAXPROCS)")
	logFile := flag.String("log-file", "", "Log file path (empty = stdout)")
	flag.Parse()

	// Set up logger
	var err error
	logger, err = createLogger(*logFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Close()

	logger.Info("Starting feature importance HTTP server",
		"port", *port,
		"read_timeout", *readTimeout,
		"write_timeout", *writeTimeout,
		"max_request_size", *maxRequestSize,
		"concurrency", *concurrency,
	)

	// Create HTTP server with fasthttp
	server := &fasthttp.Server{
		Handler:               requestHandler,
		ReadTimeout:           *readTimeout,
		WriteTimeout:          *writeTimeout,
		MaxRequestBodySize:    *maxRequestSize,
		Concurrency:           *concurrency,
		DisableKeepalive:      false,
		TCPKeepalive:          true,
		TCPKeepalivePeriod:    3 * time.Minute,
		MaxIdleWorkerDuration: 10 * time.Second,
		Logger:                nil, // we'll handle logging ourselves
	}

	// Set up graceful shutdown
	idleConnsClosed := make(chan struct{})
	go func() {
		sigint := make(chan os.Signal, 1)
		signal.Notify(sigint, os.Interrupt, syscall.SIGTERM)
		<-sigint

		logger.Info("Shutting down server...")
		if err := server.Shutdown(); err != nil {
			logger.Error("Error during server shutdown", "error", err)
		}
		close(idleConnsClosed)
	}()

	// Start server
	logger.Info("Server listening", "address", fmt.Sprintf(":%d", *port))
	if err := server.ListenAndServe(fmt.Sprintf(":%d", *port)); err != nil {
		logger.Error("Server error", "error", err)
	}

	<-idleConnsClosed
	logger.Info("Server stopped")
}

// requestHandler is the main fasthttp request handler
func requestHandler(ctx *fasthttp.RequestCtx) {
	startTime := time.Now()

	// Set common headers
	ctx.Response.Header.Set("Content-Type", "application/json")
	ctx.Response.Header.Set("Server", "FeatureImportanceServer")

	// Route based on path
	switch string(ctx.Path()) {
	case "/health":
		handleHealthCheck(ctx)
	case "/importance":
		handleImportance(ctx)
	case "/score":
		handleScore(ctx)
	default:
		ctx.SetStatusCode(fasthttp.StatusNotFound)
		writeJSONError(ctx, "Not found")
	}

	// Log request
	duration := time.Since(startTime)
	logger.Info("Request processed",
		"method", string(ctx.Method()),
		"path", string(ctx.Path()),
		"status", ctx.Response.StatusCode(),
		"ip", ctx.RemoteIP().String(),
		"duration", duration,
	)
}

// handleHealthCheck responds to health check requests
func handleHealthCheck(ctx *fasthttp.RequestCtx) {
	ctx.SetStatusCode(fasthttp.StatusOK)
	response := map[string]interface{}{
		"status": "ok",
		"time":   time.Now().Format(time.RFC3339),
	}
	writeJSONResponse(ctx, response)
}

// handleImportance handles importance computation requests
func handleImportance(ctx *fasthttp.RequestCtx) {
	if !ctx.IsPost() {
		ctx.SetStatusCode(fasthttp.StatusMethodNotAllowed)
		writeJSONError(ctx, "Method not allowed")
		return
	}

	var req ImportanceRequest
	if err := json.Unmarshal(ctx.PostBody(), &req); err != nil {
		ctx.SetStatusCode(fasthttp.StatusBadRequest)
		writeJSONError(ctx, "Invalid request: "+err.Error())
		return
	}

	if len(req.X) == 0 || len(req.Y) == 0 || len(req.Weights) == 0 {
		ctx.SetStatusCode(fasthttp.StatusBadRequest)
		writeJSONError(ctx, "x, y and weights are required")
		return
	}

	opts := []featureimportance.Option{
		featureimportance.WithLogger(logger),
	}
	if req.Kind != "" {
		kind, err := featureimportance.ParseScoreKind(req.Kind)
		if err != nil {
			ctx.SetStatusCode(fasthttp.StatusBadRequest)
			writeJSONError(ctx, "Invalid request: "+err.Error())
			return
		}
		opts = append(opts, featureimportance.WithScoreKind(kind))
	}
	if req.Repeats != 0 {
		opts = append(opts, featureimportance.WithRepeats(req.Repeats))
	}
	if req.Seed != 0 {
		opts = append(opts, featureimportance.WithSeed(req.Seed))
	}
	if req.Workers != 0 {
		opts = append(opts, featureimportance.WithWorkers(req.Workers))
	}
	opts = append(opts,
		featureimportance.WithOnlyMeans(req.OnlyMeans),
		featureimportance.WithScale(req.Scale),
	)

	c, cancel := context.WithTimeout(context.Background(), DefaultComputeTimeout)
	defer cancel()

	startTime := time.Now()
	model := linearModel{weights: req.Weights, intercept: req.Intercept}
	result, err := featureimportance.Compute(c, model, req.X, req.Y, opts...)
	if err != nil {
		writeComputeError(ctx, err)
		return
	}

	response := ImportanceResponse{
		Kind:           result.Kind.String(),
		BaseScore:      result.BaseScore,
		Importances:    make([]FeatureResponse, len(result.Importances)),
		ProcessingTime: time.Since(startTime).String(),
	}
	for i, imp := range result.Importances {
		response.Importances[i] = FeatureResponse{
			Feature: imp.Feature,
			Raw:     imp.Raw,
			Mean:    imp.Mean,
			StdDev:  imp.StdDev,
		}
	}

	ctx.SetStatusCode(fasthttp.StatusOK)
	writeJSONResponse(ctx, response)
}

// handleScore handles standalone scoring requests
func handleScore(ctx *fasthttp.RequestCtx) {
	if !ctx.IsPost() {
		ctx.SetStatusCode(fasthttp.StatusMethodNotAllowed)
		writeJSONError(ctx, "Method not allowed")
		return
	}

	var req ScoreRequest
	if err := json.Unmarshal(ctx.PostBody(), &req); err != nil {
		ctx.SetStatusCode(fasthttp.StatusBadRequest)
		writeJSONError(ctx, "Invalid request: "+err.Error())
		return
	}

	kind := featureimportance.Mse
	if req.Kind != "" {
		var err error
		kind, err = featureimportance.ParseScoreKind(req.Kind)
		if err != nil {
			ctx.SetStatusCode(fasthttp.StatusBadRequest)
			writeJSONError(ctx, "Invalid request: "+err.Error())
			return
		}
	}

	value, err := featureimportance.Score(kind, req.YTrue, req.YPred)
	if err != nil {
		writeComputeError(ctx, err)
		return
	}

	ctx.SetStatusCode(fasthttp.StatusOK)
	writeJSONResponse(ctx, ScoreResponse{
		Kind:  kind.String(),
		Score: value,
	})
}

// writeComputeError maps engine errors to HTTP status codes
func writeComputeError(ctx *fasthttp.RequestCtx, err error) {
	switch {
	case errors.Is(err, featureimportance.ErrInvalidInput):
		ctx.SetStatusCode(fasthttp.StatusBadRequest)
	case errors.Is(err, featureimportance.ErrModel):
		ctx.SetStatusCode(fasthttp.StatusUnprocessableEntity)
	default:
		ctx.SetStatusCode(fasthttp.StatusInternalServerError)
	}
	writeJSONError(ctx, err.Error())
}

// Helper functions

// writeJSONResponse writes a JSON response to the context
func writeJSONResponse(ctx *fasthttp.RequestCtx, data interface{}) {
	response, err := json.Marshal(data)
	if err != nil {
		ctx.SetStatusCode(fasthttp.StatusInternalServerError)
		logger.Error("Error marshaling JSON response", "error", err)
		writeJSONError(ctx, "Internal server error")
		return
	}

	ctx.SetBody(response)
}

// writeJSONError writes a JSON error response to the context
func writeJSONError(ctx *fasthttp.RequestCtx, message string) {
	errResponse := ErrorResponse{
		Error: message,
	}

	response, err := json.Marshal(errResponse)
	if err != nil {
		ctx.SetStatusCode(fasthttp.StatusInternalServerError)
		logger.Error("Error marshaling JSON error response", "error", err)
		ctx.SetBodyString(`{"error":"Internal server error"}`)
		return
	}

	ctx.SetBody(response)
}

// createLogger creates and configures a logger
func createLogger(logFile string) (l.Logger, error) {
	// Create a logger factory
	factory := l.NewStandardFactory()

	// Configure the logger
	var output io.Writer = os.Stdout
	if logFile != "" {
		file, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
		if err != nil {
			return nil, fmt.Errorf("failed to open log file: %w", err)
		}
		output = file
	}

	// Create the logger
	logger, err := factory.CreateLogger(l.Config{
		Output:      output,
		JsonFormat:  true,
		AsyncWrite:  true,
		BufferSize:  1024 * 1024,       // 1MB
		MaxFileSize: 100 * 1024 * 1024, // 100MB
		MaxBackups:  5,
		AddSource:   true,
		Metrics:     true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	return logger, nil
}

package server

import (
	"bytes"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/iwvelando/commodity-forecast/internal/accuracy"
	"github.com/iwvelando/commodity-forecast/internal/dashboard"
	"github.com/iwvelando/commodity-forecast/internal/dataset"
	"github.com/iwvelando/commodity-forecast/internal/metrics"
	"github.com/iwvelando/commodity-forecast/internal/selection"
	"github.com/iwvelando/commodity-forecast/pkg/datetime"
	"github.com/iwvelando/commodity-forecast/pkg/output"
	"github.com/iwvelando/commodity-forecast/pkg/validation"
	"go.uber.org/zap"
)

//go:embed static/*
var staticFiles embed.FS

type handler struct {
	logger   *zap.Logger
	pipeline *dashboard.Pipeline
	version  string
}

// NewHandler constructs the HTTP handler that serves the web UI and dashboard API.
func NewHandler(logger *zap.Logger, pipeline *dashboard.Pipeline, version string) http.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}

	trimmedVersion := strings.TrimSpace(version)
	if trimmedVersion == "" {
		trimmedVersion = "dev"
	}

	metrics.Register()

	h := &handler{logger: logger, pipeline: pipeline, version: trimmedVersion}

	mux := http.NewServeMux()

	// Filter options for the selection widgets
	mux.HandleFunc("/api/options", h.instrument("options", h.handleOptions))

	// Summary, accuracy and comparison tables for one selection
	mux.HandleFunc("/api/dashboard", h.instrument("dashboard", h.handleDashboard))

	// Mean MAPE per commodity or per location
	mux.HandleFunc("/api/breakdown", h.instrument("breakdown", h.handleBreakdown))

	// Price lines of one series
	mux.HandleFunc("/api/series", h.instrument("series", h.handleSeries))

	// Version endpoint for UI metadata
	mux.HandleFunc("/api/version", h.handleVersion)

	mux.HandleFunc("/healthz", h.handleHealth)
	mux.Handle("/metrics", metrics.Handler())

	// Static assets (web UI)
	sub, err := fs.Sub(staticFiles, "static")
	if err != nil {
		panic(fmt.Sprintf("failed to prepare embedded static files: %v", err))
	}
	fileServer := http.FileServer(http.FS(sub))
	mux.Handle("/", fileServer)

	return mux
}

type optionsResponse struct {
	Locations   []string `json:"locations"`
	Commodities []string `json:"commodities"`
	ZeroActual  string   `json:"zeroActual"`
}

type dashboardResponse struct {
	output.Document
	CSV      string `json:"csv"`
	Duration string `json:"duration"`
}

type breakdownResponse struct {
	By       string                 `json:"by"`
	Groups   []output.GroupDocument `json:"groups"`
	Warnings []string               `json:"warnings,omitempty"`
}

type seriesResponse struct {
	Location  string                 `json:"location"`
	Commodity string                 `json:"commodity"`
	Actual    []pointResponse        `json:"actual"`
	Predicted []pointResponse        `json:"predicted"`
	Metric    *output.MetricDocument `json:"metric,omitempty"`
	Warnings  []string               `json:"warnings,omitempty"`
}

type pointResponse struct {
	Date  string  `json:"date"`
	Price float64 `json:"price"`
}

func (h *handler) handleOptions(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	data, ok := h.dataset(w, "server.handleOptions")
	if !ok {
		return
	}

	h.writeJSON(w, http.StatusOK, optionsResponse{
		Locations:   data.Locations,
		Commodities: data.Commodities,
		ZeroActual:  data.Policy.String(),
	})
}

func (h *handler) handleDashboard(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	start := time.Now()
	data, ok := h.dataset(w, "server.handleDashboard")
	if !ok {
		return
	}

	sel := parseSelection(r)
	view, err := data.Filter(sel)
	if err != nil && !errors.Is(err, selection.ErrEmptySelection) {
		h.respondErrorWithOp(w, http.StatusInternalServerError, err.Error(), "server.handleDashboard")
		return
	}
	if err != nil {
		h.logger.Warn("selection matched no data",
			zap.String("op", "server.handleDashboard"),
			zap.Stringer("selection", sel),
		)
	}

	report := output.NewReport(view, err)
	report.Warnings = append(report.Warnings, selectionWarnings(sel, data)...)

	var csvBuf bytes.Buffer
	if err := output.CsvFormat(&csvBuf, report); err != nil {
		h.respondErrorWithOp(w, http.StatusInternalServerError, fmt.Sprintf("failed to render CSV: %v", err), "server.handleDashboard")
		return
	}

	h.writeJSON(w, http.StatusOK, dashboardResponse{
		Document: output.NewDocument(report),
		CSV:      csvBuf.String(),
		Duration: time.Since(start).String(),
	})
}

func (h *handler) handleBreakdown(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	by, err := accuracy.ParseDimension(r.URL.Query().Get("by"))
	if err != nil {
		h.respondErrorWithOp(w, http.StatusBadRequest, err.Error(), "server.handleBreakdown")
		return
	}

	data, ok := h.dataset(w, "server.handleBreakdown")
	if !ok {
		return
	}

	sel := parseSelection(r)
	resp := breakdownResponse{By: by.String()}
	view, err := data.Filter(sel)
	if err != nil && !errors.Is(err, selection.ErrEmptySelection) {
		h.respondErrorWithOp(w, http.StatusInternalServerError, err.Error(), "server.handleBreakdown")
		return
	}
	if err != nil {
		resp.Warnings = append(resp.Warnings, "no data for "+sel.String())
	}
	resp.Warnings = append(resp.Warnings, selectionWarnings(sel, data)...)
	resp.Groups = output.GroupDocuments(accuracy.Breakdown(view.Metrics, by))

	h.writeJSON(w, http.StatusOK, resp)
}

func (h *handler) handleSeries(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	sel := parseSelection(r)
	key, single := sel.Single()
	if !single {
		h.respondErrorWithOp(w, http.StatusBadRequest,
			"series requires exactly one location and one commodity", "server.handleSeries")
		return
	}

	data, ok := h.dataset(w, "server.handleSeries")
	if !ok {
		return
	}

	resp := seriesResponse{
		Location:  key.Location,
		Commodity: key.Commodity,
		Actual:    []pointResponse{},
		Predicted: []pointResponse{},
	}

	view, err := data.Filter(sel)
	if errors.Is(err, selection.ErrEmptySelection) {
		resp.Warnings = append(resp.Warnings, "no data for "+key.String())
		resp.Warnings = append(resp.Warnings, selectionWarnings(sel, data)...)
		h.writeJSON(w, http.StatusOK, resp)
		return
	}

	trend, err := view.Trend(key)
	if err != nil {
		resp.Warnings = append(resp.Warnings, err.Error())
	}
	resp.Actual = points(trend.Actual)
	resp.Predicted = points(trend.Predicted)

	if len(view.Metrics) == 1 {
		m := metricDocument(view.Metrics[0])
		resp.Metric = &m
		if !view.Metrics[0].Defined() {
			resp.Warnings = append(resp.Warnings, accuracy.ErrUndefinedMetric.Error())
		}
	}

	h.writeJSON(w, http.StatusOK, resp)
}

func (h *handler) handleVersion(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]string{
		"version": h.version,
	})
}

func (h *handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	if _, err := h.pipeline.Dataset(); err != nil {
		h.writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"status": "unavailable",
			"error":  err.Error(),
		})
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// dataset returns the current dataset or writes the load error.
func (h *handler) dataset(w http.ResponseWriter, op string) (*dashboard.Dataset, bool) {
	data, err := h.pipeline.Dataset()
	if err != nil {
		msg := fmt.Sprintf("failed to load dataset: %v", err)
		switch {
		case errors.Is(err, dataset.ErrInputNotFound):
			msg = fmt.Sprintf("input file not found: %v", err)
		case errors.Is(err, dataset.ErrDataFormat):
			msg = fmt.Sprintf("invalid input data: %v", err)
		}
		h.respondErrorWithOp(w, http.StatusInternalServerError, msg, op)
		return nil, false
	}
	return data, true
}

func (h *handler) respondErrorWithOp(w http.ResponseWriter, status int, msg string, op string) {
	if h.logger != nil {
		h.logger.Error("dashboard request failed",
			zap.String("op", op),
			zap.Int("status", status),
			zap.String("error", msg),
		)
	}

	h.writeJSON(w, status, map[string]string{"error": msg})
}

func (h *handler) writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil && h.logger != nil {
		h.logger.Error("failed to write JSON response", zap.Error(err))
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (h *handler) instrument(endpoint string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next(rec, r)
		metrics.RecordRequest(endpoint, strconv.Itoa(rec.status), time.Since(start))
	}
}

func parseSelection(r *http.Request) selection.Selection {
	q := r.URL.Query()
	return selection.Parse(q.Get("location"), q.Get("commodity"))
}

func selectionWarnings(sel selection.Selection, data *dashboard.Dataset) []string {
	warnings := validation.ValidateSelectionValues("location", sel.Locations.Values(), data.Locations)
	return append(warnings, validation.ValidateSelectionValues("commodity", sel.Commodities.Values(), data.Commodities)...)
}

func points(in []dashboard.Point) []pointResponse {
	out := make([]pointResponse, 0, len(in))
	for _, p := range in {
		out = append(out, pointResponse{Date: datetime.Format(p.Date), Price: p.Price})
	}
	return out
}

func metricDocument(m accuracy.Metric) output.MetricDocument {
	doc := output.NewDocument(output.Report{Metrics: []accuracy.Metric{m}})
	return doc.Metrics[0]
}

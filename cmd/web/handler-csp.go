package main

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

const maxCSPReportBytes = 64 << 10

// cspViolationReport is the report-uri body browsers send when the Content-Security-Policy blocks something.
type cspViolationReport struct {
	CSPReport struct {
		DocumentURI        string `json:"document-uri"`
		Referrer           string `json:"referrer"`
		ViolatedDirective  string `json:"violated-directive"`
		EffectiveDirective string `json:"effective-directive"`
		BlockedURI         string `json:"blocked-uri"`
		SourceFile         string `json:"source-file"`
		LineNumber         int    `json:"line-number"`
		ColumnNumber       int    `json:"column-number"`
		Disposition        string `json:"disposition"`
		ScriptSample       string `json:"script-sample"`
	} `json:"csp-report"`
}

// cspViolation logs CSP violation reports at warning level.
func (app *application) cspViolation(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var report cspViolationReport
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxCSPReportBytes)).Decode(&report); err != nil {
		app.logger.LogAttrs(ctx, slog.LevelWarn, "invalid CSP violation report",
			slog.String("content_type", r.Header.Get("Content-Type")), slog.Any("error", err))
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	rep := report.CSPReport
	app.logger.LogAttrs(ctx, slog.LevelWarn, "CSP violation detected",
		slog.String("document_uri", rep.DocumentURI),
		slog.String("violated_directive", rep.ViolatedDirective),
		slog.String("effective_directive", rep.EffectiveDirective),
		slog.String("blocked_uri", rep.BlockedURI),
		slog.String("source_file", rep.SourceFile),
		slog.Int("line_number", rep.LineNumber),
		slog.Int("column_number", rep.ColumnNumber),
		slog.String("script_sample", rep.ScriptSample),
		slog.String("disposition", rep.Disposition),
		slog.String("referrer", rep.Referrer),
		slog.String("user_agent", r.Header.Get("User-Agent")))

	w.WriteHeader(http.StatusNoContent)
}

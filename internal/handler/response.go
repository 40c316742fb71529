package handler

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/zeromicro/go-zero/core/logx"

	"github.com/atlekbai/report_engine/internal/report"
	"github.com/atlekbai/report_engine/internal/viewer"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code"`
	Details string `json:"details,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logx.Errorw("encode response", logx.Field("error", err.Error()))
	}
}

func writeError(w http.ResponseWriter, status int, code, message, details string) {
	writeJSON(w, status, ErrorResponse{
		Error:   message,
		Code:    code,
		Details: details,
	})
}

func writeRecordTypeNotFound(w http.ResponseWriter, recordType string) {
	writeError(w, http.StatusNotFound, "RECORD_TYPE_NOT_FOUND",
		"Record type not found",
		fmt.Sprintf("No record type named %q", recordType))
}

// writeResult writes res as JSON, or as a workbook when the request asks for
// ?format=xlsx.
func writeResult(w http.ResponseWriter, r *http.Request, res report.Result, defaultCurrency string) {
	if r.URL.Query().Get("format") != "xlsx" {
		writeJSON(w, http.StatusOK, res.Response())
		return
	}

	v := viewer.New(res, viewer.NewFormatter(defaultCurrency))
	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="report.xlsx"`)
	if err := v.ExportXLSX(w); err != nil {
		logx.WithContext(r.Context()).Errorw("xlsx export failed", logx.Field("error", err.Error()))
		writeError(w, http.StatusInternalServerError, "EXPORT_FAILED", "Export failed", err.Error())
	}
}

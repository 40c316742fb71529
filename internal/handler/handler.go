package handler

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/atlekbai/report_engine/internal/report"
)

const tenantHeader = "X-Tenant-ID"

// maxBodyBytes caps the size of a report definition body.
const maxBodyBytes = 1 << 20

type Handler struct {
	executor        *report.Executor
	defaultCurrency string
}

func New(executor *report.Executor, defaultCurrency string) *Handler {
	return &Handler{executor: executor, defaultCurrency: defaultCurrency}
}

// Routes registers the report endpoints on r.
func (h *Handler) Routes(r *mux.Router) {
	api := r.PathPrefix("/api/reports").Subrouter()
	api.HandleFunc("/execute", h.Execute).Methods(http.MethodPost)
	api.HandleFunc("/{recordType}/fields", h.Fields).Methods(http.MethodGet)
	api.HandleFunc("/{recordType}", h.Query).Methods(http.MethodGet)
}

// Execute handles POST /api/reports/execute
func (h *Handler) Execute(w http.ResponseWriter, r *http.Request) {
	tenant, ok := h.tenant(w, r)
	if !ok {
		return
	}

	var def report.Definition
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(&def); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_BODY", "Invalid report definition", err.Error())
		return
	}
	if h.executor.Registry().RecordType(def.RecordType) == nil {
		writeRecordTypeNotFound(w, def.RecordType)
		return
	}

	writeResult(w, r, h.executor.Execute(r.Context(), def, tenant), h.defaultCurrency)
}

// Query handles GET /api/reports/{recordType}?columns=..&sort=..&field=op.value
func (h *Handler) Query(w http.ResponseWriter, r *http.Request) {
	tenant, ok := h.tenant(w, r)
	if !ok {
		return
	}

	recordType := mux.Vars(r)["recordType"]
	if h.executor.Registry().RecordType(recordType) == nil {
		writeRecordTypeNotFound(w, recordType)
		return
	}

	def, err := ParseDefinition(recordType, r.URL.Query())
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_PARAM", err.Error(), "")
		return
	}

	writeResult(w, r, h.executor.Execute(r.Context(), def, tenant), h.defaultCurrency)
}

// Fields handles GET /api/reports/{recordType}/fields
func (h *Handler) Fields(w http.ResponseWriter, r *http.Request) {
	tenant, ok := h.tenant(w, r)
	if !ok {
		return
	}

	recordType := mux.Vars(r)["recordType"]
	fields := h.executor.Fields(r.Context(), recordType, tenant)
	if fields == nil {
		writeRecordTypeNotFound(w, recordType)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"record_type": recordType,
		"fields":      report.DescribeFields(fields),
	})
}

func (h *Handler) tenant(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	raw := r.Header.Get(tenantHeader)
	if raw == "" {
		writeError(w, http.StatusBadRequest, "MISSING_TENANT", "Missing tenant", "Set the "+tenantHeader+" header")
		return uuid.Nil, false
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_TENANT", "Invalid tenant id", err.Error())
		return uuid.Nil, false
	}
	return id, true
}

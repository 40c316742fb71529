package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"connectrpc.com/connect"
	"github.com/google/uuid"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/atlekbai/report_engine/internal/report"
)

const (
	// ServiceName is the fully-qualified RPC service name.
	ServiceName = "report.v1.ReportService"

	ExecuteProcedure = "/" + ServiceName + "/Execute"
	FieldsProcedure  = "/" + ServiceName + "/Fields"

	// TenantHeader carries the tenant a request runs for.
	TenantHeader = "X-Tenant-ID"
)

var errMissingTenant = errors.New("missing tenant: set the " + TenantHeader + " header or tenant_id")

// ReportService exposes report execution over Connect. Requests and
// responses are google.protobuf.Struct messages shaped like the REST API's
// JSON bodies.
type ReportService struct {
	executor *report.Executor
}

func NewReportService(executor *report.Executor) *ReportService {
	return &ReportService{executor: executor}
}

func (s *ReportService) RegisterHandler(interceptors ...connect.Interceptor) (string, http.Handler) {
	opts := connect.WithInterceptors(interceptors...)
	mux := http.NewServeMux()
	mux.Handle(ExecuteProcedure, connect.NewUnaryHandler(ExecuteProcedure, s.Execute, opts))
	mux.Handle(FieldsProcedure, connect.NewUnaryHandler(FieldsProcedure, s.Fields, opts))
	return "/" + ServiceName + "/", mux
}

// Execute runs the report definition carried in the request body.
func (s *ReportService) Execute(ctx context.Context, req *connect.Request[structpb.Struct]) (*connect.Response[structpb.Struct], error) {
	tenant, err := tenantOf(req)
	if err != nil {
		return nil, connect.NewError(connect.CodeInvalidArgument, err)
	}

	var def report.Definition
	if err := decodeStruct(req.Msg, &def); err != nil {
		return nil, connect.NewError(connect.CodeInvalidArgument, fmt.Errorf("invalid definition: %w", err))
	}
	if def.RecordType == "" {
		return nil, connect.NewError(connect.CodeInvalidArgument, errors.New("record_type is required"))
	}

	res := s.executor.Execute(ctx, def, tenant)
	out, err := encodeStruct(res.Response())
	if err != nil {
		return nil, connect.NewError(connect.CodeInternal, fmt.Errorf("marshal result: %w", err))
	}
	return connect.NewResponse(out), nil
}

// Fields lists the fields a report on the requested record type may use.
func (s *ReportService) Fields(ctx context.Context, req *connect.Request[structpb.Struct]) (*connect.Response[structpb.Struct], error) {
	tenant, err := tenantOf(req)
	if err != nil {
		return nil, connect.NewError(connect.CodeInvalidArgument, err)
	}

	recordType := req.Msg.GetFields()["record_type"].GetStringValue()
	if s.executor.Registry().RecordType(recordType) == nil {
		return nil, connect.NewError(connect.CodeNotFound, fmt.Errorf("%w: %q", report.ErrUnknownRecordType, recordType))
	}

	out, err := encodeStruct(map[string]any{
		"record_type": recordType,
		"fields":      report.DescribeFields(s.executor.Fields(ctx, recordType, tenant)),
	})
	if err != nil {
		return nil, connect.NewError(connect.CodeInternal, fmt.Errorf("marshal fields: %w", err))
	}
	return connect.NewResponse(out), nil
}

func tenantOf(req *connect.Request[structpb.Struct]) (uuid.UUID, error) {
	raw := req.Header().Get(TenantHeader)
	if raw == "" {
		raw = req.Msg.GetFields()["tenant_id"].GetStringValue()
	}
	if raw == "" {
		return uuid.Nil, errMissingTenant
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid tenant id %q: %w", raw, err)
	}
	return id, nil
}

func decodeStruct(st *structpb.Struct, v any) error {
	b, err := protojson.Marshal(st)
	if err != nil {
		return err
	}
	return json.Unmarshal(b, v)
}

func encodeStruct(v any) (*structpb.Struct, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	st := &structpb.Struct{}
	if err := protojson.Unmarshal(b, st); err != nil {
		return nil, err
	}
	return st, nil
}

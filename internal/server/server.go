package server

import (
	"net/http"

	"connectrpc.com/connect"
)

// ConnectService is implemented by each service to register its connect handler.
type ConnectService interface {
	RegisterHandler(interceptors ...connect.Interceptor) (string, http.Handler)
}

// NewMux mounts the connect services and serves everything else with api.
func NewMux(api http.Handler, interceptors []connect.Interceptor, services ...ConnectService) *http.ServeMux {
	mux := http.NewServeMux()
	for _, svc := range services {
		path, handler := svc.RegisterHandler(interceptors...)
		mux.Handle(path, handler)
	}
	if api != nil {
		mux.Handle("/", api)
	}
	return mux
}

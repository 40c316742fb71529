package server

import (
	"context"
	"time"

	"connectrpc.com/connect"
	"github.com/zeromicro/go-zero/core/logx"
)

// LoggingInterceptor logs each unary call with its procedure, outcome and
// duration.
func LoggingInterceptor() connect.UnaryInterceptorFunc {
	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			start := time.Now()
			resp, err := next(ctx, req)

			fields := []logx.LogField{
				logx.Field("procedure", req.Spec().Procedure),
				logx.Field("duration", time.Since(start).String()),
			}
			if err != nil {
				fields = append(fields,
					logx.Field("code", connect.CodeOf(err).String()),
					logx.Field("error", err.Error()),
				)
				logx.WithContext(ctx).Errorw("rpc failed", fields...)
				return resp, err
			}
			logx.WithContext(ctx).Infow("rpc", fields...)
			return resp, nil
		}
	}
}

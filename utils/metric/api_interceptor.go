// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package utilmetric holds metric helpers shared by HTTP services.
package utilmetric

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/rpc/v2"
	"github.com/luxfi/metric"
)

const methodLabel = "method"

// APIInterceptor times JSON-RPC calls and counts the ones that fail.
type APIInterceptor interface {
	InterceptRequest(i *rpc.RequestInfo) *http.Request
	AfterRequest(i *rpc.RequestInfo)
}

type contextKey int

const startKey contextKey = iota

type apiInterceptor struct {
	calls    metric.CounterVec
	duration metric.GaugeVec
	failures metric.CounterVec
}

func NewAPIInterceptor(namespace string, registry metric.Registry) (APIInterceptor, error) {
	m := metric.NewWithRegistry(namespace, registry)
	return &apiInterceptor{
		calls: m.NewCounterVec(
			"rpc_calls",
			"number of JSON-RPC calls by method",
			[]string{methodLabel},
		),
		duration: m.NewGaugeVec(
			"rpc_duration_ns",
			"nanoseconds spent serving JSON-RPC calls by method",
			[]string{methodLabel},
		),
		failures: m.NewCounterVec(
			"rpc_failures",
			"number of JSON-RPC calls that returned an error, by method",
			[]string{methodLabel},
		),
	}, nil
}

func (*apiInterceptor) InterceptRequest(i *rpc.RequestInfo) *http.Request {
	ctx := context.WithValue(i.Request.Context(), startKey, time.Now())
	return i.Request.WithContext(ctx)
}

func (a *apiInterceptor) AfterRequest(i *rpc.RequestInfo) {
	start, ok := i.Request.Context().Value(startKey).(time.Time)
	if !ok {
		return
	}
	labels := metric.Labels{methodLabel: i.Method}
	a.calls.With(labels).Inc()
	a.duration.With(labels).Add(float64(time.Since(start)))
	if i.Error != nil {
		a.failures.With(labels).Inc()
	}
}

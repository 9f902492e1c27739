// Copyright 2026 Teradata
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//	http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package protocol

import "context"

type requestIDKey struct{}

// ContextWithRequestID attaches the id of the request being served.
func ContextWithRequestID(ctx context.Context, id *RequestID) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

// RequestIDFromContext returns the id set by ContextWithRequestID, or nil.
func RequestIDFromContext(ctx context.Context) *RequestID {
	id, _ := ctx.Value(requestIDKey{}).(*RequestID)
	return id
}

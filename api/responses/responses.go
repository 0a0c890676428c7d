// Package responses writes the JSON envelopes every handler returns.
package responses

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/greenbasket/greenbasket-backend/pkg/errors"
	"github.com/greenbasket/greenbasket-backend/pkg/logger"
	"github.com/greenbasket/greenbasket-backend/pkg/types"
)

func WriteJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(types.SuccessEnvelope{Success: true, Data: data})
}

func WriteMessage(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(types.SuccessEnvelope{Success: true, Message: message})
}

// WriteError maps a typed error to its HTTP status and public body.
// Untyped errors present as a plain 500 with no internals leaked.
func WriteError(ctx context.Context, w http.ResponseWriter, log *logger.Logger, err error) {
	typed := errors.As(err)
	code := errors.CodeInternal
	if typed != nil {
		code = typed.Code()
	}
	meta := errors.MetadataFor(code)

	if meta.HTTPStatus >= http.StatusInternalServerError {
		log.Error(ctx, "request failed", err)
	}

	apiErr := types.APIError{
		Code:      string(code),
		Message:   meta.PublicMessage,
		Retryable: meta.Retryable,
	}
	if typed != nil {
		if msg := typed.Message(); msg != "" && meta.HTTPStatus < http.StatusInternalServerError {
			apiErr.Message = msg
		}
		if meta.DetailsAllowed {
			apiErr.Details = typed.Details()
		}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(meta.HTTPStatus)
	json.NewEncoder(w).Encode(types.ErrorEnvelope{Success: false, Error: apiErr})
}

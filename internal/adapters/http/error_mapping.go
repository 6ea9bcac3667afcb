package httpadapter

import (
	"context"
	"errors"
	"net/http"

	"github.com/kirillkom/resume-extractor/internal/core/domain"
)

var errorStatuses = []struct {
	kind   error
	status int
}{
	{domain.ErrInvalidInput, http.StatusBadRequest},
	{domain.ErrSizeLimitExceeded, http.StatusRequestEntityTooLarge},
	{domain.ErrTemporary, http.StatusServiceUnavailable},
	{context.DeadlineExceeded, http.StatusGatewayTimeout},
}

func mapErrorToHTTPStatus(err error) int {
	for _, m := range errorStatuses {
		if errors.Is(err, m.kind) {
			return m.status
		}
	}
	return http.StatusInternalServerError
}

// writeDomainError keeps the detail of client-side errors and hides internals.
func writeDomainError(w http.ResponseWriter, err error) {
	status := mapErrorToHTTPStatus(err)
	message := err.Error()
	if status == http.StatusInternalServerError {
		message = "internal error"
	}
	writeError(w, status, message)
}

package errors

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewErrorResponse(t *testing.T) {
	err := NewError("entry is linked").
		WithHint("The delivery entry is already billed").
		WithReportableDetails(map[string]any{"entry_id": "del_123"}).
		Mark(ErrInvalidOperation)

	assert.True(t, IsInvalidOperation(err))

	resp := NewErrorResponse(err)
	assert.False(t, resp.Success)
	assert.Equal(t, "The delivery entry is already billed", resp.Error.Display)
	assert.Equal(t, "del_123", resp.Error.Details["entry_id"])
}

func TestNewErrorResponseWithoutHint(t *testing.T) {
	resp := NewErrorResponse(NewError("connection reset").Mark(ErrDatabase))
	assert.Equal(t, "An unexpected error occurred", resp.Error.Display)
	assert.Empty(t, resp.Error.Details)
}

func TestHTTPStatusFromErr(t *testing.T) {
	assert.Equal(t, http.StatusNotFound, HTTPStatusFromErr(NewError("x").Mark(ErrNotFound)))
	assert.Equal(t, http.StatusConflict, HTTPStatusFromErr(NewError("x").Mark(ErrAlreadyExists)))
	assert.Equal(t, http.StatusConflict, HTTPStatusFromErr(NewError("x").Mark(ErrInvalidOperation)))
	assert.Equal(t, http.StatusInternalServerError, HTTPStatusFromErr(fmt.Errorf("plain")))
}

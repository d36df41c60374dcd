package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWrapKeepsCode(t *testing.T) {
	base := NotFound("dataset")
	wrapped := Wrap(fmt.Errorf("lookup: %w", base), "failed to load summary")

	assert.Equal(t, CodeNotFound, GetCode(wrapped))
	assert.True(t, stderrors.Is(wrapped, base))
	assert.Equal(t, "failed to load summary: lookup: dataset not found", wrapped.Error())
}

func TestWrapPlainError(t *testing.T) {
	err := Wrapf(stderrors.New("boom"), "step %d", 3)
	assert.Equal(t, CodeInternalError, GetCode(err))
	assert.Nil(t, Wrap(nil, "ignored"))
}

func TestWithCode(t *testing.T) {
	err := WithCode(CodeInvalidInput, stderrors.New("duplicate column name \"a\""))
	assert.Equal(t, CodeInvalidInput, GetCode(err))
	assert.Equal(t, "duplicate column name \"a\"", err.Error())
}

func TestHTTPStatus(t *testing.T) {
	cases := map[error]int{
		InvalidInput("bad"):           http.StatusBadRequest,
		UnsupportedFormat(".pdf"):     http.StatusBadRequest,
		NotFound("dataset"):           http.StatusNotFound,
		TooLarge(10):                  http.StatusRequestEntityTooLarge,
		stderrors.New("unexpected"):   http.StatusInternalServerError,
		ConfigInvalid("missing port"): http.StatusInternalServerError,
	}
	for err, want := range cases {
		assert.Equal(t, want, HTTPStatus(err), err.Error())
	}
}

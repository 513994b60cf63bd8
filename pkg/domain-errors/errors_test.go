package domainerrors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCodeOf(t *testing.T) {
	t.Run("plain error defaults to internal", func(t *testing.T) {
		assert.Equal(t, CodeInternal, CodeOf(errors.New("boom")))
	})

	t.Run("wrapped error keeps its code", func(t *testing.T) {
		err := New(CodeVault, "signing failed")
		assert.Equal(t, CodeVault, CodeOf(err))
	})

	t.Run("innermost classification wins through re-wrapping", func(t *testing.T) {
		inner := New(CodeLedger, "publish rejected")
		outer := Wrap(inner, CodeInternal, "identity creation failed")
		assert.Equal(t, CodeLedger, CodeOf(outer))
	})

	t.Run("fmt wrapping preserves the code", func(t *testing.T) {
		err := fmt.Errorf("ensure identity: %w", New(CodeStorage, "fragment file is empty"))
		assert.Equal(t, CodeStorage, CodeOf(err))
	})
}

func TestWrap(t *testing.T) {
	t.Run("nil stays nil", func(t *testing.T) {
		assert.NoError(t, Wrap(nil, CodeVault, "ignored"))
	})

	t.Run("unwrap reaches the cause", func(t *testing.T) {
		cause := errors.New("connection refused")
		err := Wrap(cause, CodeLedger, "funding failed")
		assert.ErrorIs(t, err, cause)
	})
}

func TestHasCode(t *testing.T) {
	err := Newf(CodeResolution, "DID %s not found in batch", "did:example:missing")
	assert.True(t, HasCode(err, CodeResolution))
	assert.False(t, HasCode(err, CodeLedger))
	assert.False(t, HasCode(nil, CodeResolution))
}

func TestToHTTPStatus(t *testing.T) {
	cases := map[Code]int{
		CodeBadRequest:          http.StatusBadRequest,
		CodeNotFound:            http.StatusNotFound,
		CodeResolution:          http.StatusUnprocessableEntity,
		CodeSignatureInvalid:    http.StatusUnprocessableEntity,
		CodeExpiredPresentation: http.StatusUnprocessableEntity,
		CodeHolderBinding:       http.StatusUnprocessableEntity,
		CodeLedger:              http.StatusBadGateway,
		CodeConfig:              http.StatusInternalServerError,
		CodeStorage:             http.StatusInternalServerError,
		CodeVault:               http.StatusInternalServerError,
		CodeInternal:            http.StatusInternalServerError,
	}
	for code, want := range cases {
		require.Equal(t, want, ToHTTPStatus(code), "code %s", code)
	}
}

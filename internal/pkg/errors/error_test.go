package xerrors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{"validation", Validation("bad"), KindValidation},
		{"configuration", Configuration("missing key"), KindConfiguration},
		{"provider", Provider("upstream", errors.New("boom")), KindProvider},
		{"io wrapped", fmt.Errorf("outer: %w", IO("read", errors.New("eof"))), KindIO},
		{"sentinel unauthorized", ErrUnauthorized, KindUnauthorized},
		{"sentinel not found", fmt.Errorf("lookup: %w", ErrNotFound), KindNotFound},
		{"plain", errors.New("x"), KindUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, KindOf(tt.err))
		})
	}
}

func TestHTTPStatus(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, HTTPStatus(Validation("bad")))
	assert.Equal(t, http.StatusInternalServerError, HTTPStatus(Configuration("missing")))
	assert.Equal(t, http.StatusInternalServerError, HTTPStatus(IO("write", errors.New("disk full"))))
	assert.Equal(t, http.StatusUnauthorized, HTTPStatus(ErrSessionExpired))
}

func TestMessageOf(t *testing.T) {
	err := Provider("Failed to generate content.", errors.New("secret upstream detail"))
	assert.Equal(t, "Failed to generate content.", MessageOf(err, "fallback"))
	assert.Equal(t, "fallback", MessageOf(errors.New("raw"), "fallback"))
	assert.Contains(t, err.Error(), "secret upstream detail")
}

package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindOf(t *testing.T) {
	wrapped := fmt.Errorf("get calendar: %w", HTTPStatus(http.StatusNotFound))

	assert.Equal(t, KindHTTPStatus, KindOf(wrapped))
	assert.Equal(t, KindInternal, KindOf(errors.New("boom")))
	assert.True(t, Is(wrapped, KindHTTPStatus))
	assert.False(t, Is(nil, KindHTTPStatus))
}

func TestMessages(t *testing.T) {
	assert.Equal(t, "Erro na API: código 500", HTTPStatus(500).Error())
	assert.Equal(t, 500, HTTPStatus(500).Status)

	cause := errors.New("unexpected end of JSON input")
	err := Decode(cause)
	assert.Equal(t, "Erro ao processar resposta da API", err.Error())
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Detail(), "unexpected end of JSON input")
	assert.Equal(t, "Erro ao processar resposta da API: unexpected end of JSON input", Detail(fmt.Errorf("decode: %w", err)))
	assert.Equal(t, "boom", Detail(errors.New("boom")))
}

func TestHTTPCode(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, HTTPCode(InvalidDate("bad")))
	assert.Equal(t, http.StatusUnauthorized, HTTPCode(ErrUnauthorized))
	assert.Equal(t, http.StatusBadGateway, HTTPCode(Network(errors.New("refused"))))
	assert.Equal(t, http.StatusInternalServerError, HTTPCode(errors.New("x")))
}

package errors_test

import (
	"errors"
	"net/http"
	"testing"

	cperrs "github.com/confplan/confplan/internal/errors"
	"github.com/stretchr/testify/assert"
)

func TestEConstructor(t *testing.T) {
	got := cperrs.E(
		"something went wrong",
		cperrs.Detail{Field: "name", Error: "was bad"},
		http.StatusBadRequest,
	)
	want := &cperrs.Error{
		Err: errors.New("something went wrong"),
		Details: []cperrs.Detail{
			{Field: "name", Error: "was bad"},
		},
		Status: http.StatusBadRequest,
	}

	assert.Equal(t, want, got)
}

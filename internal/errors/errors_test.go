package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"epistack/domain/core"

	"github.com/stretchr/testify/assert"
)

func TestFromDomain_MapsSentinels(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code string
	}{
		{"reference", core.NewReferenceError("age", "not found"), CodeReferenceError},
		{"precondition", core.NewPreconditionError("q1", "categorical"), CodePreconditionFailed},
		{"other", fmt.Errorf("boom"), CodeInternalError},
		{"app error passes through", InvalidInput("bad flag"), CodeInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.code, GetCode(FromDomain(tt.err)))
		})
	}
	assert.Nil(t, FromDomain(nil))
}

func TestFromDomain_KeepsChain(t *testing.T) {
	err := FromDomain(core.NewReferenceError("age", "not found"))
	assert.True(t, stderrors.Is(err, core.ErrReference))
}

func TestWrap_PreservesCode(t *testing.T) {
	err := Wrap(SourceError("data.csv", fmt.Errorf("missing")), "loading dataset")
	assert.Equal(t, CodeSourceError, GetCode(err))
	assert.Contains(t, err.Error(), "loading dataset")
	assert.Nil(t, Wrap(nil, "ignored"))
}

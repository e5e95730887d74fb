package clustererrors

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_New_NilPropagation(t *testing.T) {
	assert.Nil(t, New(nil, InvalidArgument))
}

func Test_New_CarriesKind(t *testing.T) {
	ce := New(errors.New("boom"), OracleUnavailable)
	assert.Equal(t, OracleUnavailable, ce.GetKind())
	assert.EqualError(t, ce, "boom")
}

func Test_Wrapf_AddsContext(t *testing.T) {
	ce := Wrapf(errors.New("boom"), OracleInvalid, "probing %s", "config_1")
	assert.Contains(t, ce.Error(), "probing config_1")
	assert.Contains(t, ce.Error(), "boom")
	assert.Equal(t, OracleInvalid, ce.GetKind())
}

func Test_GetKind_NilSafe(t *testing.T) {
	var ce *ClusterError
	assert.Equal(t, Kind(-1), ce.GetKind())
}

func Test_IsKind(t *testing.T) {
	ce := New(errors.New("boom"), MissingPlaceholder)
	var err error = ce
	assert.True(t, IsKind(err, MissingPlaceholder))
	assert.False(t, IsKind(err, OrphanCompletion))
	assert.False(t, IsKind(errors.New("plain"), MissingPlaceholder))
}

func Test_Kind_String(t *testing.T) {
	assert.Equal(t, "OracleInvalid", OracleInvalid.String())
	assert.Equal(t, "Unknown", Kind(99).String())
}

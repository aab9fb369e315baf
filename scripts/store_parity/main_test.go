package main

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBodiesEqualIgnoresVolatileFields(t *testing.T) {
	left := []byte(`{"data":[{"id":"1","title":"Rapat","createdAt":"2024-05-01T00:00:00Z"}],"meta":{"count":1,"processing_time_ms":3}}`)
	right := []byte(`{"data":[{"id":"abc","title":"Rapat","createdAt":"2024-05-02T00:00:00Z"}],"meta":{"count":1,"processing_time_ms":9}}`)

	assert.True(t, bodiesEqual(left, right))
	assert.False(t, bodiesEqual(left, []byte(`{"data":[{"id":"1","title":"Lain"}],"meta":{"count":1}}`)))
	assert.False(t, bodiesEqual([]byte("not json"), []byte("other")))
}

func TestCompareTargetReportsStatusMismatch(t *testing.T) {
	left := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"data":[]}`))
	}))
	defer left.Close()
	right := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"data":[]}`))
	}))
	defer right.Close()

	res := compareTarget(http.DefaultClient, left.URL, right.URL, target{Path: "/api/v1/problems", Critical: true})

	assert.NoError(t, res.Error)
	assert.False(t, res.StatusMatch)
	assert.True(t, res.BodyMatch)
}

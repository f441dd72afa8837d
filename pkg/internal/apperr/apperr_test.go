package apperr_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/hey-granth/silo/pkg/internal/apperr"
)

// TestKindOf 测试错误种类的识别，包括包裹后的错误.
func TestKindOf(t *testing.T) {
	cases := []struct {
		err  error
		want apperr.Kind
	}{
		{apperr.Validation("bad input"), apperr.KindValidation},
		{apperr.NotFound("missing"), apperr.KindNotFound},
		{apperr.Forbidden("denied"), apperr.KindForbidden},
		{apperr.Conflict("busy"), apperr.KindConflict},
		{apperr.Upstream(errors.New("boom"), true, "gateway"), apperr.KindUpstream},
		{fmt.Errorf("context: %w", apperr.NotFound("missing")), apperr.KindNotFound},
	}

	for _, tc := range cases {
		if got := apperr.KindOf(tc.err); got != tc.want {
			t.Errorf("KindOf(%v) = %v, want %v", tc.err, got, tc.want)
		}
	}
}

// TestHTTPStatus 测试种类到状态码的映射，未知错误落到 500.
func TestHTTPStatus(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{apperr.Validation("bad"), http.StatusBadRequest},
		{apperr.NotFound("missing"), http.StatusNotFound},
		{apperr.Forbidden("denied"), http.StatusForbidden},
		{apperr.Conflict("busy"), http.StatusConflict},
		{apperr.Upstream(nil, false, "gateway"), http.StatusBadGateway},
		{errors.New("plain"), http.StatusInternalServerError},
	}

	for _, tc := range cases {
		if got := apperr.HTTPStatus(tc.err); got != tc.want {
			t.Errorf("HTTPStatus(%v) = %d, want %d", tc.err, got, tc.want)
		}
	}
}

// TestUnwrap 测试上游错误保留原因链.
func TestUnwrap(t *testing.T) {
	cause := errors.New("connection refused")
	err := apperr.Upstream(cause, true, "gateway down")

	if !errors.Is(err, cause) {
		t.Error("upstream error should wrap its cause")
	}
}

package server

import (
	"errors"
	"net/http"
	"testing"

	"github.com/jonathan/campaign-composer/internal/campaign"
	"github.com/jonathan/campaign-composer/internal/prospects"
	"github.com/stretchr/testify/assert"
)

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{
			name: "not ready",
			err:  &campaign.NotReadyError{Stage: campaign.StageDescribe, Reason: "no essence"},
			want: http.StatusConflict,
		},
		{
			name: "invalid artifact",
			err:  &campaign.InvalidArtifactError{Stage: campaign.StageSegment, Message: "bad shape"},
			want: http.StatusBadRequest,
		},
		{
			name: "unknown stage",
			err:  &campaign.UnknownStageError{Stage: "bogus"},
			want: http.StatusNotFound,
		},
		{
			name: "unknown segment",
			err:  &campaign.UnknownSegmentError{SegmentID: "seg_9"},
			want: http.StatusNotFound,
		},
		{
			name: "index out of range",
			err:  &campaign.IndexOutOfRangeError{Index: 5, Length: 2},
			want: http.StatusNotFound,
		},
		{
			name: "execution failed",
			err:  &campaign.ExecutionFailedError{Stage: campaign.StagePitch, Message: "timeout"},
			want: http.StatusBadGateway,
		},
		{
			name: "list not found inside execution failure",
			err: &campaign.ExecutionFailedError{
				Stage:   campaign.StageResearch,
				Message: "list lookup",
				Cause:   &prospects.ListNotFoundError{ListID: "missing"},
			},
			want: http.StatusNotFound,
		},
		{
			name: "email already exists",
			err:  &ErrEmailAlreadyExists{Email: "a@b.com"},
			want: http.StatusConflict,
		},
		{
			name: "invalid credentials",
			err:  &ErrInvalidCredentials{},
			want: http.StatusUnauthorized,
		},
		{
			name: "unknown error",
			err:  errors.New("boom"),
			want: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HTTPStatus(tt.err))
		})
	}
}

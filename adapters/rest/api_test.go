package rest_test

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"scan-service/adapters/rest"
	"scan-service/core"
)

func TestCodesHandler(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	scanner := core.NewMockScanner(ctrl)
	expectedReply := core.CodesReply{
		Codes: []core.CodeEntry{
			{Code: "AB12CD", CommentID: "c1", Permalink: "https://www.reddit.com/r/test/comments/abc/c1/", CreatedUTC: 1700000000, FirstSeen: 1700000100},
		},
		FetchedAt: 1700000100,
	}
	scanner.EXPECT().Codes(gomock.Any()).Return(expectedReply)

	handler := rest.NewCodesHandler(slog.Default(), scanner)

	req := httptest.NewRequest(http.MethodGet, "/api/codes", nil)
	w := httptest.NewRecorder()
	handler(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "application/json", w.Header().Get("Content-Type"))

	var got core.CodesReply
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	require.Equal(t, expectedReply, got)
}

func TestScanHandler(t *testing.T) {
	testCases := []struct {
		desc       string
		prepare    func(*core.MockScanner)
		wantStatus int
		wantReply  *core.CodesReply
	}{
		{
			desc: "success",
			prepare: func(s *core.MockScanner) {
				s.EXPECT().Scan(gomock.Any()).Return(core.CodesReply{
					Codes:     []core.CodeEntry{{Code: "ZZ99ZZ", FirstSeen: 1700000000}},
					FetchedAt: 1700000000,
				}, nil)
			},
			wantStatus: http.StatusOK,
			wantReply: &core.CodesReply{
				Codes:     []core.CodeEntry{{Code: "ZZ99ZZ", FirstSeen: 1700000000}},
				FetchedAt: 1700000000,
			},
		},
		{
			desc: "error - all sources unavailable",
			prepare: func(s *core.MockScanner) {
				s.EXPECT().Scan(gomock.Any()).Return(core.CodesReply{}, core.ErrUpstreamUnavailable)
			},
			wantStatus: http.StatusBadGateway,
		},
		{
			desc: "error - unexpected failure",
			prepare: func(s *core.MockScanner) {
				s.EXPECT().Scan(gomock.Any()).Return(core.CodesReply{}, errors.New("scan error"))
			},
			wantStatus: http.StatusInternalServerError,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.desc, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			scanner := core.NewMockScanner(ctrl)
			tc.prepare(scanner)

			handler := rest.NewScanHandler(slog.Default(), scanner)

			req := httptest.NewRequest(http.MethodPost, "/api/scan", nil)
			w := httptest.NewRecorder()
			handler(w, req)

			require.Equal(t, tc.wantStatus, w.Code)
			if tc.wantReply != nil {
				var got core.CodesReply
				require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
				require.Equal(t, *tc.wantReply, got)
			}
		})
	}
}

func TestHealthHandler(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	scanner := core.NewMockScanner(ctrl)
	expectedReply := core.HealthReply{
		Status:          "ok",
		CodesCached:     7,
		LastFetch:       1700000000,
		IntervalSeconds: 5,
		ScraperEnabled:  true,
		SourceCount:     3,
	}
	scanner.EXPECT().Health(gomock.Any()).Return(expectedReply)

	handler := rest.NewHealthHandler(slog.Default(), scanner)

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	w := httptest.NewRecorder()
	handler(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var got core.HealthReply
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	require.Equal(t, expectedReply, got)
}

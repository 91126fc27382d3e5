package rest

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"scan-service/core"
)

func encodeReply(w io.Writer, reply any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(reply); err != nil {
		return fmt.Errorf("could not encode reply: %v", err)
	}
	return nil
}

func NewCodesHandler(log *slog.Logger, scanner core.Scanner) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		reply := scanner.Codes(r.Context())
		w.Header().Set("Content-Type", "application/json")
		if err := encodeReply(w, reply); err != nil {
			log.Error("cannot encode reply", "error", err)
		}
	}
}

// NewScanHandler runs one scan pass synchronously. Per-source failures are
// silent; only a pass where every source failed surfaces as 502.
func NewScanHandler(log *slog.Logger, scanner core.Scanner) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		reply, err := scanner.Scan(r.Context())
		if err != nil {
			if errors.Is(err, core.ErrUpstreamUnavailable) {
				log.Debug("manual scan failed, all sources unavailable")
				http.Error(w, http.StatusText(http.StatusBadGateway), http.StatusBadGateway)
			} else {
				log.Warn("manual scan failed", "error", err)
				http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			}
			return
		}
		w.Header().Set("Content-Type", "application/json")
		if err := encodeReply(w, reply); err != nil {
			log.Error("cannot encode reply", "error", err)
		}
	}
}

func NewHealthHandler(log *slog.Logger, scanner core.Scanner) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		reply := scanner.Health(r.Context())
		w.Header().Set("Content-Type", "application/json")
		if err := encodeReply(w, reply); err != nil {
			log.Error("cannot encode reply", "error", err)
		}
	}
}

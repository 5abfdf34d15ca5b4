/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"net/http"
	"net/url"
	"time"

	"github.com/julienschmidt/httprouter"
	"github.com/skip2/go-qrcode"

	"github.com/Seednode/flames/games"
)

const qrSize = 320 // mobile-friendly size

// shareURL is the page URL that replays name1 and name2 when opened.
func shareURL(cfg *Config, r *http.Request, name1, name2 string) string {
	// Derive scheme (respecting TLS and X-Forwarded-Proto if present).
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if proto := r.Header.Get("X-Forwarded-Proto"); proto == "http" || proto == "https" {
		scheme = proto
	}

	u := url.URL{
		Scheme:   scheme,
		Host:     r.Host,
		Path:     cfg.prefix + "/",
		RawQuery: url.Values{"name1": {name1}, "name2": {name2}}.Encode(),
	}

	return u.String()
}

// serveShareQR renders a PNG QR code for the share URL of a pair of names.
func serveShareQR(cfg *Config, errs chan<- error) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		startTime := time.Now()

		name1, name2, ok := namesFrom(r)
		if !ok {
			http.Error(w, "Please enter both names.", http.StatusBadRequest)

			return
		}

		png, err := qrcode.Encode(shareURL(cfg, r, name1, name2), qrcode.Medium, qrSize)
		if err != nil {
			errs <- err
			http.Error(w, "qr generation failed", http.StatusInternalServerError)

			return
		}

		w.Header().Set("Content-Type", "image/png")
		w.Header().Set("Cache-Control", "public, max-age=3600")
		securityHeaders(cfg, w)

		written, err := w.Write(png)
		if err != nil {
			errs <- err

			return
		}

		logf(cfg, "SERVE: Share QR code (%s) to %s in %s",
			humanReadableSize(int64(written)),
			realIP(r),
			time.Since(startTime).Round(time.Microsecond),
		)
	}
}

// serveShareText returns the one-line summary the share button copies.
func serveShareText(cfg *Config, errs chan<- error) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		name1, name2, ok := namesFrom(r)
		if !ok {
			http.Error(w, "Please enter both names.", http.StatusBadRequest)

			return
		}

		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		securityHeaders(cfg, w)

		_, err := w.Write([]byte(games.Play(name1, name2).ShareText() + "\n"))
		if err != nil {
			errs <- err

			return
		}
	}
}

func registerShare(cfg *Config, mux *httprouter.Router, errs chan<- error) {
	mux.GET(cfg.prefix+"/share/qr", serveShareQR(cfg, errs))
	mux.GET(cfg.prefix+"/share/text", serveShareText(cfg, errs))
}

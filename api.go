/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/julienschmidt/httprouter"

	"github.com/Seednode/flames/games"
	"github.com/Seednode/flames/storage"
)

const maxImportSize = 1 << 20

func writeJSON(cfg *Config, w http.ResponseWriter, r *http.Request, errs chan<- error, what string, v any) {
	startTime := time.Now()

	body, err := json.Marshal(v)
	if err != nil {
		errs <- err
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)

		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	securityHeaders(cfg, w)

	written, err := w.Write(body)
	if err != nil {
		errs <- err

		return
	}

	logf(cfg, "SERVE: %s (%s) to %s in %s",
		what,
		humanReadableSize(int64(written)),
		realIP(r),
		time.Since(startTime).Round(time.Microsecond),
	)
}

// namesFrom reads and trims name1 and name2 from the query string.
func namesFrom(r *http.Request) (string, string, bool) {
	q := r.URL.Query()

	name1 := strings.TrimSpace(q.Get("name1"))
	name2 := strings.TrimSpace(q.Get("name2"))

	return name1, name2, name1 != "" && name2 != ""
}

func servePlay(cfg *Config, errs chan<- error) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		name1, name2, ok := namesFrom(r)
		if !ok {
			http.Error(w, "Please enter both names.", http.StatusBadRequest)

			return
		}

		writeJSON(cfg, w, r, errs, "Play", games.Play(name1, name2))
	}
}

func serveHistory(cfg *Config, keeper *storage.Keeper, errs chan<- error) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		id := getOrSetClientID(w, r)

		h, err := keeper.History(r.Context(), id)
		if err != nil {
			errs <- err
			serverError(w, err)

			return
		}

		writeJSON(cfg, w, r, errs, "History", h)
	}
}

func serveClearHistory(cfg *Config, keeper *storage.Keeper, errs chan<- error) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		id := getOrSetClientID(w, r)

		if err := keeper.ClearHistory(r.Context(), id); err != nil {
			errs <- err
			serverError(w, err)

			return
		}

		logf(cfg, "STORE: Cleared history for %s", id)

		securityHeaders(cfg, w)
		w.WriteHeader(http.StatusNoContent)
	}
}

func serveImportHistory(cfg *Config, keeper *storage.Keeper, errs chan<- error) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		id := getOrSetClientID(w, r)

		var records []storage.Record

		dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxImportSize))
		if err := dec.Decode(&records); err != nil {
			http.Error(w, "invalid history: "+err.Error(), http.StatusBadRequest)

			return
		}

		h, err := keeper.ImportHistory(r.Context(), id, records)
		if err != nil {
			if statusFor(err) != http.StatusBadRequest {
				errs <- err
			}
			serverError(w, err)

			return
		}

		logf(cfg, "STORE: Imported %d history entries for %s", len(records), id)

		writeJSON(cfg, w, r, errs, "History", h)
	}
}

func serveSession(cfg *Config, keeper *storage.Keeper, errs chan<- error) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		id := getOrSetClientID(w, r)

		s, err := keeper.LoadSession(r.Context(), id)
		if err != nil {
			logf(cfg, "STORE: Dropping unreadable session for %s: %v", id, err)
		}
		if s == nil {
			securityHeaders(cfg, w)
			w.WriteHeader(http.StatusNoContent)

			return
		}

		writeJSON(cfg, w, r, errs, "Session", s)
	}
}

func serveClearSession(cfg *Config, keeper *storage.Keeper, errs chan<- error) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		id := getOrSetClientID(w, r)

		if err := keeper.ClearSession(r.Context(), id); err != nil {
			errs <- err
			serverError(w, err)

			return
		}

		logf(cfg, "STORE: Cleared session for %s", id)

		securityHeaders(cfg, w)
		w.WriteHeader(http.StatusNoContent)
	}
}

func servePrefs(cfg *Config, keeper *storage.Keeper, errs chan<- error) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		id := getOrSetClientID(w, r)

		p, err := keeper.Prefs(r.Context(), id)
		if err != nil {
			errs <- err
			serverError(w, err)

			return
		}

		writeJSON(cfg, w, r, errs, "Prefs", p)
	}
}

func serveSetPrefs(cfg *Config, keeper *storage.Keeper, errs chan<- error) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		id := getOrSetClientID(w, r)

		var p storage.Prefs

		dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 4096))
		if err := dec.Decode(&p); err != nil {
			http.Error(w, "invalid prefs: "+err.Error(), http.StatusBadRequest)

			return
		}

		if err := keeper.SetPrefs(r.Context(), id, p); err != nil {
			if statusFor(err) != http.StatusBadRequest {
				errs <- err
			}
			serverError(w, err)

			return
		}

		writeJSON(cfg, w, r, errs, "Prefs", p)
	}
}

func registerAPI(cfg *Config, keeper *storage.Keeper, mux *httprouter.Router, errs chan<- error) {
	mux.GET(cfg.prefix+"/api/play", servePlay(cfg, errs))
	mux.GET(cfg.prefix+"/api/history", serveHistory(cfg, keeper, errs))
	mux.DELETE(cfg.prefix+"/api/history", serveClearHistory(cfg, keeper, errs))
	mux.POST(cfg.prefix+"/api/history/import", serveImportHistory(cfg, keeper, errs))
	mux.GET(cfg.prefix+"/api/session", serveSession(cfg, keeper, errs))
	mux.DELETE(cfg.prefix+"/api/session", serveClearSession(cfg, keeper, errs))
	mux.GET(cfg.prefix+"/api/prefs", servePrefs(cfg, keeper, errs))
	mux.PUT(cfg.prefix+"/api/prefs", serveSetPrefs(cfg, keeper, errs))
}

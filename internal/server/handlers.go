package server

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/matzehuels/svg2png/pkg/buildinfo"
	"github.com/matzehuels/svg2png/pkg/convert"
	"github.com/matzehuels/svg2png/pkg/errors"
	"github.com/matzehuels/svg2png/pkg/intake"
	"github.com/matzehuels/svg2png/pkg/raster"
	"github.com/matzehuels/svg2png/pkg/session"
)

// uploadField is the multipart field holding the selected file.
const uploadField = "svg"

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	s.render(w, http.StatusOK, s.pageFor(r))
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	limit := s.cfg.Loader.MaxBytes
	if limit <= 0 {
		limit = intake.DefaultMaxBytes
	}
	// Multipart framing adds a little on top of the file itself.
	r.Body = http.MaxBytesReader(w, r.Body, limit+64<<10)

	file, header, err := r.FormFile(uploadField)
	if err != nil {
		var tooBig *http.MaxBytesError
		if stderrors.As(err, &tooBig) {
			s.fail(w, r, errors.New(errors.ErrCodeFileTooLarge, "file is too large"))
			return
		}
		s.fail(w, r, errors.New(errors.ErrCodeInvalidInput, "no file selected"))
		return
	}
	defer file.Close()

	id, err := s.knownSessionID(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	sess, err := s.cfg.Loader.Load(r.Context(), id, header.Filename, file)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.setCookie(w, sess)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request) {
	var delivered bool
	saver := raster.SaverFunc(func(_ context.Context, filename string, png []byte) error {
		w.Header().Set("Content-Type", raster.MIMEType)
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
		w.Header().Set("Content-Length", strconv.Itoa(len(png)))
		w.WriteHeader(http.StatusOK)
		delivered = true
		_, err := w.Write(png)
		return err
	})

	_, err := s.dispatcherFor(r).Download(r.Context(), s.sessionID(r), saver)
	if err != nil && !delivered {
		s.fail(w, r, err)
	}
}

func (s *Server) handleBase64(w http.ResponseWriter, r *http.Request) {
	res, err := s.dispatcherFor(r).Base64(r.Context(), s.sessionID(r))
	if err != nil {
		s.fail(w, r, err)
		return
	}

	if wantsJSON(r) {
		writeJSON(w, http.StatusOK, res)
		return
	}
	data := s.pageFor(r)
	data.Preview = newPreviewView(res.Preview)
	s.render(w, http.StatusOK, data)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"version": buildinfo.Current(),
	})
}

// dispatcherFor applies the client's device pixel ratio from the dpr form field.
func (s *Server) dispatcherFor(r *http.Request) dispatcher {
	if v := r.FormValue("dpr"); v != "" {
		if dpr, err := strconv.ParseFloat(v, 64); err == nil && errors.ValidateScale(dpr) == nil {
			return s.cfg.Dispatcher.WithScale(dpr)
		}
	}
	return s.cfg.Dispatcher
}

func (s *Server) sessionID(r *http.Request) string {
	c, err := r.Cookie(s.cfg.CookieName)
	if err != nil {
		return ""
	}
	return c.Value
}

// knownSessionID returns the cookie's session ID only when the store holds
// that session. An unknown ID is dropped so the loader mints a fresh one
// instead of adopting a client-chosen value.
func (s *Server) knownSessionID(r *http.Request) (string, error) {
	id := s.sessionID(r)
	if id == "" || s.cfg.Loader.Store == nil {
		return "", nil
	}
	sess, err := s.cfg.Loader.Store.Get(r.Context(), id)
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeInternal, err, "load session")
	}
	if sess == nil {
		s.cfg.Logger.Debug("ignoring unknown session cookie")
		return "", nil
	}
	return id, nil
}

func (s *Server) setCookie(w http.ResponseWriter, sess *session.Session) {
	http.SetCookie(w, &http.Cookie{
		Name:     s.cfg.CookieName,
		Value:    sess.ID,
		Path:     "/",
		MaxAge:   int(s.cfg.SessionTTL.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// pageFor fills in the current selection, if any.
func (s *Server) pageFor(r *http.Request) pageData {
	data := pageData{Version: buildinfo.Current()}
	id := s.sessionID(r)
	if id == "" || s.cfg.Store == nil {
		return data
	}
	if sess, err := s.cfg.Store.Get(r.Context(), id); err == nil && sess.HasSelection() {
		data.FileName = sess.FileName
		data.Size = sess.Size
	}
	return data
}

func (s *Server) render(w http.ResponseWriter, status int, data pageData) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := pageTemplate.Execute(w, data); err != nil {
		s.cfg.Logger.Error("render page", "err", err)
	}
}

// fail reports err to the client with a status derived from its code.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := errors.HTTPStatus(err)
	if status >= 500 {
		s.cfg.Logger.Error("request failed", "path", r.URL.Path, "err", err)
	}
	if wantsJSON(r) {
		writeJSON(w, status, map[string]string{
			"code":  string(errors.GetCode(err)),
			"error": errors.UserMessage(err),
		})
		return
	}
	data := s.pageFor(r)
	data.Error = errors.UserMessage(err)
	s.render(w, status, data)
}

func wantsJSON(r *http.Request) bool {
	return r.Header.Get("Accept") == "application/json"
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// dispatcher is the subset of *dispatch.Dispatcher the handlers use.
type dispatcher interface {
	Download(ctx context.Context, sessionID string, saver raster.Saver) (*convert.Result, error)
	Base64(ctx context.Context, sessionID string) (*convert.Result, error)
}

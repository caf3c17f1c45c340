package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"accent-detector/application/analysis"
	"accent-detector/domain/accent"
	"accent-detector/domain/media"
)

// allowedExtensions are the upload types accepted by the form
var allowedExtensions = map[string]bool{
	".mp4": true,
	".mkv": true,
}

// multipartMemory is the part of an upload kept in memory before spilling to disk
const multipartMemory = 8 << 20

type pageData struct {
	URL    string
	Error  string
	Report *analysis.Report
}

type resultJSON struct {
	Accent     string  `json:"accent"`
	Confidence float64 `json:"accent_score"`
	Percent    float64 `json:"accent_percent"`
	Source     string  `json:"source"`
}

type errorJSON struct {
	Error string `json:"error"`
}

// requestError is a client mistake reported with a specific status
type requestError struct {
	status int
	msg    string
}

func (e *requestError) Error() string {
	return e.msg
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, http.StatusOK, pageData{})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	io.WriteString(w, "ok\n")
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	if s.maxUpload > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, s.maxUpload)
	}

	if err := r.ParseMultipartForm(multipartMemory); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		status, msg := http.StatusBadRequest, "invalid form: "+err.Error()
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			status, msg = http.StatusRequestEntityTooLarge, "uploaded video is too large"
		}
		s.render(w, r, status, pageData{Error: msg})
		return
	}

	data := pageData{URL: strings.TrimSpace(r.FormValue("url"))}

	reference, cleanup, err := s.resolveInput(r, data.URL)
	if err != nil {
		data.Error = err.Error()
		s.render(w, r, statusFor(err), data)
		return
	}
	defer cleanup()

	report, err := s.analyzer.Analyze(r.Context(), reference)
	if err != nil {
		s.logger.Error("analysis failed", zap.Error(err))
		data.Error = err.Error()
		s.render(w, r, statusFor(err), data)
		return
	}

	data.Report = report
	s.render(w, r, http.StatusOK, data)
}

// resolveInput returns the reference to analyze: a staged upload or a remote link.
// cleanup removes any staged upload.
func (s *Server) resolveInput(r *http.Request, link string) (string, func(), error) {
	noop := func() {}

	file, header, err := r.FormFile("video")
	switch {
	case err == nil:
		defer file.Close()
		path, err := s.stageUpload(file, header.Filename)
		if err != nil {
			return "", noop, err
		}
		return path, func() { os.Remove(path) }, nil
	case errors.Is(err, http.ErrMissingFile), errors.Is(err, http.ErrNotMultipart):
		// no upload, fall through to the link
	default:
		return "", noop, &requestError{status: http.StatusBadRequest, msg: "invalid upload: " + err.Error()}
	}

	if link == "" {
		return "", noop, &requestError{status: http.StatusBadRequest, msg: "upload a video or provide a link"}
	}
	// Local paths must never be reachable from the web form
	if media.ClassifySource(link) != media.Remote {
		return "", noop, &requestError{status: http.StatusBadRequest, msg: "link must start with http:// or https://"}
	}
	return link, noop, nil
}

func (s *Server) stageUpload(src io.Reader, filename string) (string, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	if !allowedExtensions[ext] {
		return "", &requestError{status: http.StatusBadRequest, msg: fmt.Sprintf("unsupported file type %q, upload mp4 or mkv", ext)}
	}

	dst, err := os.CreateTemp(s.uploadDir, "upload-*"+ext)
	if err != nil {
		return "", fmt.Errorf("failed to stage upload: %w", err)
	}

	_, copyErr := io.Copy(dst, src)
	closeErr := dst.Close()
	if copyErr != nil || closeErr != nil {
		os.Remove(dst.Name())
		if copyErr == nil {
			copyErr = closeErr
		}
		return "", fmt.Errorf("failed to stage upload: %w", copyErr)
	}

	s.logger.Info("upload staged", zap.String("file", filename), zap.String("path", dst.Name()))
	return dst.Name(), nil
}

// statusFor maps pipeline and classifier errors to HTTP status codes
func statusFor(err error) int {
	var (
		reqErr     *requestError
		fetchErr   *media.FetchError
		extractErr *media.ExtractionError
		formatErr  *media.FormatError
		classErr   *accent.ClassificationError
	)
	switch {
	case errors.As(err, &reqErr):
		return reqErr.status
	case errors.Is(err, media.ErrNotFound):
		return http.StatusNotFound
	case errors.As(err, &fetchErr), errors.As(err, &classErr):
		return http.StatusBadGateway
	case errors.As(err, &extractErr), errors.As(err, &formatErr):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func wantsJSON(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept"), "application/json")
}

func (s *Server) render(w http.ResponseWriter, r *http.Request, status int, data pageData) {
	if wantsJSON(r) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		if data.Error != "" {
			json.NewEncoder(w).Encode(errorJSON{Error: data.Error})
			return
		}
		if data.Report != nil {
			json.NewEncoder(w).Encode(resultJSON{
				Accent:     data.Report.Accent,
				Confidence: data.Report.Confidence,
				Percent:    data.Report.Percent(),
				Source:     data.Report.Source.String(),
			})
			return
		}
		json.NewEncoder(w).Encode(struct{}{})
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := s.tmpl.Execute(w, data); err != nil {
		s.logger.Error("failed to render page", zap.Error(err))
	}
}

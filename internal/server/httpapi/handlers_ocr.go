package httpapi

import (
	"errors"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
)

// handleImageToText bridges the uploaded image to the OCR stream and answers
// with one aggregated result. The staged temp file is removed on every exit
// path; a failed removal is logged and never changes the request's outcome.
func (s *Server) handleImageToText(w http.ResponseWriter, r *http.Request) {
	// Cap the whole body before any parsing; the form itself carries only
	// the image and a small lang field.
	r.Body = http.MaxBytesReader(w, r.Body, s.maxUpload+4096)
	if err := r.ParseMultipartForm(s.maxUpload); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Message: "Image too large or malformed upload (max 15 MB)"})
		return
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Message: "No image file provided"})
		return
	}
	defer file.Close()

	if !strings.HasPrefix(header.Header.Get("Content-Type"), "image/") {
		writeJSON(w, http.StatusBadRequest, errorBody{Message: "Only image files are accepted"})
		return
	}

	tmp, err := s.stageUpload(file, header.Filename)
	if err != nil {
		s.log.Error("staging upload failed", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, errorBody{Error: "Failed to process upload"})
		return
	}
	defer s.removeUpload(tmp)

	text, err := s.ocr.ExtractText(r.Context(), tmp, header.Filename, r.FormValue("lang"))
	if err != nil {
		s.log.Error("ocr stream failed", zap.String("file", header.Filename), zap.Error(err))
		s.writeUpstreamError(w, "OCR server streaming failed.", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success":       true,
		"extractedText": text,
		"metadata": map[string]any{
			"originalFilename": header.Filename,
			"fileSize":         header.Size,
			"textLength":       len(text),
		},
	})
}

// stageUpload writes the upload to a transient file and returns it positioned
// at the start. The file is consume-once: the caller deletes it when done.
func (s *Server) stageUpload(src io.Reader, originalName string) (*os.File, error) {
	tmp, err := os.CreateTemp(s.uploadDir, "upload-*"+filepath.Ext(originalName))
	if err != nil {
		return nil, err
	}
	if _, err := io.Copy(tmp, src); err != nil {
		tmp.Close()
		if rmErr := os.Remove(tmp.Name()); rmErr != nil {
			s.log.Warn("temp file cleanup failed", zap.String("path", tmp.Name()), zap.Error(rmErr))
		}
		return nil, err
	}
	if _, err := tmp.Seek(0, io.SeekStart); err != nil {
		tmp.Close()
		if rmErr := os.Remove(tmp.Name()); rmErr != nil {
			s.log.Warn("temp file cleanup failed", zap.String("path", tmp.Name()), zap.Error(rmErr))
		}
		return nil, err
	}
	return tmp, nil
}

// removeUpload closes and deletes a staged upload. A leaked temp file is a
// defect, a failed deletion only a log line.
func (s *Server) removeUpload(f *os.File) {
	f.Close()
	if err := os.Remove(f.Name()); err != nil && !errors.Is(err, os.ErrNotExist) {
		s.log.Warn("temp file cleanup failed", zap.String("path", f.Name()), zap.Error(err))
	}
}

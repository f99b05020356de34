package web

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/JonMunkholm/tablewrap/internal/grid"
	"github.com/JonMunkholm/tablewrap/internal/logging"
	"github.com/JonMunkholm/tablewrap/internal/report"
)

// shapeView is the JSON form of a report definition.
type shapeView struct {
	Key       string      `json:"key"`
	Group     string      `json:"group"`
	Label     string      `json:"label"`
	Table     string      `json:"table"`
	End       string      `json:"end,omitempty"`
	LabelRows int         `json:"label_rows"`
	Fields    []fieldView `json:"fields,omitempty"`
	UniqueKey []string    `json:"unique_key,omitempty"`
	Sum       []string    `json:"sum,omitempty"`
}

type fieldView struct {
	ID       string   `json:"id"`
	Header   string   `json:"header"`
	Type     string   `json:"type"`
	Required bool     `json:"required,omitempty"`
	Optional bool     `json:"optional,omitempty"`
	Enum     []string `json:"enum,omitempty"`
}

func newShapeView(def *report.Definition, withFields bool) shapeView {
	v := shapeView{
		Key:       def.Info.Key,
		Group:     def.Info.Group,
		Label:     def.Info.Label,
		Table:     def.Info.Table,
		End:       def.Info.End,
		LabelRows: def.LabelRows,
	}
	for _, id := range def.UniqueKey {
		v.UniqueKey = append(v.UniqueKey, string(id))
	}
	for _, id := range def.Sum {
		v.Sum = append(v.Sum, string(id))
	}
	if !withFields {
		return v
	}
	for _, f := range def.Fields {
		v.Fields = append(v.Fields, fieldView{
			ID:       string(f.ID),
			Header:   fmt.Sprint(f.Header),
			Type:     f.Type.String(),
			Required: f.Required,
			Optional: f.Optional,
			Enum:     f.EnumValues,
		})
	}
	return v
}

// handleListShapes returns all registered shapes without their fields.
func (s *Server) handleListShapes(w http.ResponseWriter, r *http.Request) {
	defs := report.All()
	views := make([]shapeView, 0, len(defs))
	for _, def := range defs {
		views = append(views, newShapeView(def, false))
	}
	writeJSON(w, r, http.StatusOK, views)
}

// handleGetShape returns one shape with its fields.
func (s *Server) handleGetShape(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")
	def, ok := report.Get(key)
	if !ok {
		respondError(w, r, fmt.Errorf("%w: %q", errUnknownShape, key))
		return
	}
	writeJSON(w, r, http.StatusOK, newShapeView(def, true))
}

// extractResponse is the result of POST /api/extract/{key}.
type extractResponse struct {
	ImportID    string `json:"import_id,omitempty"`
	SavedRows   int64  `json:"saved_rows,omitempty"`
	FailedCount int    `json:"failed_count"`
	*report.Result
}

// handleExtract reads the uploaded report and returns the records of the
// shape's table.
//
// The file is either the raw request body or the multipart form field
// "file". Query parameters:
//
//	format   csv, tsv or xlsx; detected from the file name when empty
//	filename name of a raw body upload
//	sheet    worksheet of a workbook; first sheet when empty
//	save     true to persist the records
func (s *Server) handleExtract(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")
	def, ok := report.Get(key)
	if !ok {
		respondError(w, r, fmt.Errorf("%w: %q", errUnknownShape, key))
		return
	}

	q := r.URL.Query()
	save := false
	if v := q.Get("save"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			writeJSON(w, r, http.StatusBadRequest, ErrorResponse{
				Error: "invalid save flag", Message: "invalid save flag", Code: "REQ001", Detail: v,
			})
			return
		}
		save = b
	}
	if save && s.saver == nil {
		respondError(w, r, errSavingUnavailable)
		return
	}

	if err := s.limiter.acquire(r.Context()); err != nil {
		respondError(w, r, err)
		return
	}
	defer s.limiter.release()

	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.Import.MaxFileSize)
	file, name, err := s.upload(r)
	if err != nil {
		respondError(w, r, err)
		return
	}
	defer file.Close()

	format, err := grid.ParseFormat(q.Get("format"), name)
	if err != nil {
		respondError(w, r, err)
		return
	}
	sheet, err := grid.Read(file, grid.ReadOptions{
		Name:     name,
		Format:   format,
		Sheet:    q.Get("sheet"),
		Comma:    s.comma,
		MaxRows:  s.cfg.Import.MaxRows,
		Coercion: s.coercion,
	})
	if err != nil {
		respondError(w, r, err)
		return
	}

	logger := logging.ForImport(r.Context(), key, name)
	res, err := report.Extract(sheet, def, name, report.Options{Logger: logger})
	if err != nil {
		respondError(w, r, err)
		return
	}

	resp := extractResponse{FailedCount: len(res.Failed), Result: res}
	if save {
		imp, err := s.saver.Save(r.Context(), def, res)
		if err != nil {
			respondError(w, r, err)
			return
		}
		resp.ImportID = imp.ID.String()
		resp.SavedRows = imp.Rows
		logger.Info("import saved", "import_id", resp.ImportID, "rows", imp.Rows)
	}
	writeJSON(w, r, http.StatusOK, resp)
}

// upload returns the uploaded file and its name.
func (s *Server) upload(r *http.Request) (io.ReadCloser, string, error) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "multipart/form-data" {
		if err := r.ParseMultipartForm(s.cfg.Import.MaxFileSize); err != nil {
			var maxErr *http.MaxBytesError
			if errors.As(err, &maxErr) {
				return nil, "", err
			}
			return nil, "", fmt.Errorf("%w: %v", errNoFile, err)
		}
		file, header, err := r.FormFile("file")
		if err != nil {
			return nil, "", fmt.Errorf("%w: %v", errNoFile, err)
		}
		return file, header.Filename, nil
	}

	body := bufio.NewReader(r.Body)
	if _, err := body.Peek(1); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, "", errNoFile
		}
		return nil, "", err
	}
	return struct {
		io.Reader
		io.Closer
	}{body, r.Body}, r.URL.Query().Get("filename"), nil
}

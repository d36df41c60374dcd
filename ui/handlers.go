package ui

import (
	"net/http"
	"strings"
	"time"

	"datadigest/domain/core"
	"datadigest/domain/dataset"
	"datadigest/internal/analysis"
	"datadigest/internal/errors"
	"datadigest/internal/metrics"
	"datadigest/internal/widgets"

	"github.com/gin-gonic/gin"
)

const noChartsMessage = "Could not generate charts from this data. Make sure the file has numeric columns."

// datasetResponse describes a loaded dataset
type datasetResponse struct {
	ID          core.ID                       `json:"id"`
	Name        string                        `json:"name"`
	Format      string                        `json:"format"`
	Columns     []string                      `json:"columns"`
	ColumnTypes map[string]dataset.ColumnType `json:"columnTypes"`
	RowCount    int                           `json:"rowCount"`
	LoadedAt    time.Time                     `json:"loadedAt"`
}

// uploadRequest is the JSON form of an upload: raw rows keyed by column,
// with optional declared types
type uploadRequest struct {
	Name        string                        `json:"name" binding:"required"`
	Columns     []string                      `json:"columns"`
	ColumnTypes map[string]dataset.ColumnType `json:"columnTypes"`
	Rows        []map[string]interface{}      `json:"rows"`
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) handleWidgets(c *gin.Context) {
	c.JSON(http.StatusOK, s.registry.Specs())
}

// handleUpload accepts a multipart csv/xlsx file or a JSON body and makes the
// result the active dataset
func (s *Server) handleUpload(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, s.maxUploadBytes+1<<20)

	var (
		ds     *dataset.Dataset
		format string
		err    error
	)
	if strings.HasPrefix(c.ContentType(), "multipart/") {
		ds, format, err = s.loadMultipart(c)
	} else {
		ds, format, err = s.loadJSON(c)
	}
	if err != nil {
		s.writeError(c, err)
		return
	}

	entry := s.store.Put(ds, format)
	metrics.ObserveIngest(format, ds.RowCount())
	s.logger.Info("loaded dataset %s (%q) from %s: %d rows, %d columns", ds.ID(), ds.Name(), format, ds.RowCount(), ds.ColumnCount())

	c.JSON(http.StatusCreated, describeDataset(entry.Dataset, entry.Format, entry.LoadedAt))
}

func (s *Server) loadMultipart(c *gin.Context) (*dataset.Dataset, string, error) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		if strings.Contains(err.Error(), "request body too large") {
			return nil, "", errors.TooLarge(s.maxUploadBytes)
		}
		return nil, "", errors.InvalidInput("multipart upload requires a file field")
	}
	if fileHeader.Size > s.maxUploadBytes {
		return nil, "", errors.TooLarge(s.maxUploadBytes)
	}

	f, err := fileHeader.Open()
	if err != nil {
		return nil, "", errors.Wrap(err, "failed to open uploaded file")
	}
	defer f.Close()

	ds, table, err := s.reader.Load(fileHeader.Filename, f)
	if err != nil {
		return nil, "", err
	}
	return ds, string(table.Format), nil
}

func (s *Server) loadJSON(c *gin.Context) (*dataset.Dataset, string, error) {
	var req uploadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		return nil, "", errors.WithCode(errors.CodeInvalidInput, err)
	}
	ds, err := s.coercer.BuildDataset(req.Name, req.Columns, req.Rows, req.ColumnTypes)
	if err != nil {
		return nil, "", err
	}
	return ds, "json", nil
}

func (s *Server) handleCurrent(c *gin.Context) {
	entry, err := s.store.Current()
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, describeDataset(entry.Dataset, entry.Format, entry.LoadedAt))
}

// handleClear drops the active dataset
func (s *Server) handleClear(c *gin.Context) {
	s.store.Clear()
	c.Status(http.StatusNoContent)
}

func (s *Server) handleSummary(c *gin.Context) {
	ds, ok := s.datasetParam(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, s.summarizer.Summary(ds))
}

func (s *Server) handleSummaryText(c *gin.Context) {
	ds, ok := s.datasetParam(c)
	if !ok {
		return
	}
	c.String(http.StatusOK, s.summarizer.SummaryText(ds))
}

// handleReport renders HTML, or markdown with ?format=markdown
func (s *Server) handleReport(c *gin.Context) {
	ds, ok := s.datasetParam(c)
	if !ok {
		return
	}
	summary := s.summarizer.Summary(ds)
	if c.Query("format") == "markdown" {
		c.Data(http.StatusOK, "text/markdown; charset=utf-8", []byte(analysis.RenderMarkdownReport(summary, s.opts)))
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", analysis.RenderHTMLReport(summary, s.opts))
}

func (s *Server) handleRelevantAggregation(c *gin.Context) {
	ds, ok := s.datasetParam(c)
	if !ok {
		return
	}
	agg, found := s.summarizer.RelevantAggregation(ds, c.Query("q"))
	if !found {
		c.Status(http.StatusNoContent)
		return
	}
	c.JSON(http.StatusOK, agg)
}

func (s *Server) handleContext(c *gin.Context) {
	ds, ok := s.datasetParam(c)
	if !ok {
		return
	}
	payload := analysis.BuildContextPayload(ds, s.summarizer.Summary(ds), c.Query("q"), s.opts)
	c.JSON(http.StatusOK, payload)
}

func (s *Server) handleDashboard(c *gin.Context) {
	ds, ok := s.datasetParam(c)
	if !ok {
		return
	}

	var req struct {
		Request string `json:"request"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		s.writeError(c, errors.WithCode(errors.CodeInvalidInput, err))
		return
	}

	summary := s.summarizer.Summary(ds)
	if summary.IsEmpty() {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": noChartsMessage})
		return
	}
	instructions := s.planner.Plan(req.Request, ds, summary)
	if len(instructions) == 0 {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": noChartsMessage})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"components":  instructions,
		"explanation": widgets.Explain(len(instructions), ds.Name()),
	})
}

// datasetParam resolves :id against the active dataset, writing a 404 when
// it is not the active one
func (s *Server) datasetParam(c *gin.Context) (*dataset.Dataset, bool) {
	id, err := core.ParseID(c.Param("id"))
	if err != nil {
		s.writeError(c, errors.NotFound("dataset "+c.Param("id")))
		return nil, false
	}
	entry, err := s.store.Get(id)
	if err != nil {
		s.writeError(c, err)
		return nil, false
	}
	return entry.Dataset, true
}

func (s *Server) writeError(c *gin.Context, err error) {
	status := errors.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("%s %s: %v", c.Request.Method, c.Request.URL.Path, err)
	}
	c.JSON(status, gin.H{"error": err.Error(), "code": errors.GetCode(err)})
}

func describeDataset(ds *dataset.Dataset, format string, loadedAt time.Time) datasetResponse {
	return datasetResponse{
		ID:          ds.ID(),
		Name:        ds.Name(),
		Format:      format,
		Columns:     ds.Columns(),
		ColumnTypes: ds.ColumnTypes(),
		RowCount:    ds.RowCount(),
		LoadedAt:    loadedAt,
	}
}

package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/julienschmidt/httprouter"

	"github.com/titorm/shop-wise-sub000/internal/api/middleware"
	"github.com/titorm/shop-wise-sub000/internal/extraction"
	"github.com/titorm/shop-wise-sub000/internal/jobs"
	"github.com/titorm/shop-wise-sub000/internal/logger"
)

// ExtractionsHandler enqueues receipt imports and reports their progress.
type ExtractionsHandler struct {
	publisher jobs.Publisher
	store     jobs.JobStore
}

// NewExtractionsHandler creates a new extractions handler.
func NewExtractionsHandler(publisher jobs.Publisher, store jobs.JobStore) *ExtractionsHandler {
	return &ExtractionsHandler{publisher: publisher, store: store}
}

type createExtractionRequest struct {
	Channel     string `json:"channel"`
	HouseholdID string `json:"householdId"`
	Document    string `json:"document"`
	URL         string `json:"url"`
	GCSURI      string `json:"gcsUri"`
}

// toJob validates the request and builds the job for it.
func (req createExtractionRequest) toJob() (*jobs.ExtractionJob, error) {
	channel, err := extraction.ParseChannel(req.Channel)
	if err != nil {
		return nil, err
	}

	sources := 0
	for _, s := range []string{req.Document, req.URL, req.GCSURI} {
		if s != "" {
			sources++
		}
	}
	if sources != 1 {
		return nil, errBadRequest("exactly one of document, url or gcsUri is required")
	}

	job := &jobs.ExtractionJob{HouseholdID: req.HouseholdID, Channel: channel}
	switch {
	case req.Document != "":
		doc, err := extraction.ParseDataURI(req.Document)
		if err != nil {
			return nil, err
		}
		if err := doc.Validate(channel); err != nil {
			return nil, err
		}
		job.Document = doc
	case req.URL != "":
		doc := extraction.Document{URL: req.URL}
		if err := doc.Validate(channel); err != nil {
			return nil, err
		}
		job.Document = doc
	default:
		if !strings.HasPrefix(req.GCSURI, "gs://") {
			return nil, errBadRequest("gcsUri must start with gs://")
		}
		if channel == extraction.ChannelURL {
			return nil, errBadRequest("url channel takes a url, not a stored file")
		}
		job.GCSURI = req.GCSURI
	}
	return job, nil
}

type errBadRequest string

func (e errBadRequest) Error() string { return string(e) }

// CreateExtraction handles POST /api/extractions
func (h *ExtractionsHandler) CreateExtraction(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx := r.Context()
	log := logger.FromContext(ctx)

	var req createExtractionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	job, err := req.toJob()
	if err != nil {
		middleware.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.publisher.Publish(ctx, job); err != nil {
		log.Error().Err(err).Msg("Failed to enqueue extraction job")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to enqueue extraction job")
		return
	}

	log.Info().
		Str("job_id", job.JobID).
		Str("channel", string(job.Channel)).
		Str("household_id", job.HouseholdID).
		Msg("Extraction job enqueued")

	middleware.WriteJSON(w, http.StatusAccepted, map[string]string{
		"jobId":  job.JobID,
		"status": string(job.Status),
	})
}

// GetExtraction handles GET /api/extractions/:id
func (h *ExtractionsHandler) GetExtraction(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx := r.Context()

	job, err := h.store.GetJob(ctx, ps.ByName("id"))
	if err != nil {
		writeServiceError(w, logger.FromContext(ctx), err, "Failed to get extraction job")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, job)
}

// ListExtractions handles GET /api/households/:household/extractions
func (h *ExtractionsHandler) ListExtractions(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx := r.Context()
	log := logger.FromContext(ctx)

	query := r.URL.Query()
	filter := jobs.JobFilter{
		HouseholdID: ps.ByName("household"),
		Status:      jobs.JobStatus(query.Get("status")),
	}

	for name, dst := range map[string]*int{"limit": &filter.Limit, "offset": &filter.Offset} {
		v := query.Get(name)
		if v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			middleware.WriteError(w, http.StatusBadRequest, "Invalid "+name)
			return
		}
		*dst = n
	}

	jobsList, err := h.store.ListJobs(ctx, filter)
	if err != nil {
		log.Error().Err(err).Msg("Failed to list extraction jobs")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to list extraction jobs")
		return
	}
	if jobsList == nil {
		jobsList = []*jobs.ExtractionJob{}
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"jobs":  jobsList,
		"count": len(jobsList),
	})
}

// Copyright 2024 Google, LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package main contains the API route handlers for the analysis endpoints.
//
// The analysis API has two families of ids. Synchronous analyses run inline
// with the request, are cached in memory, and carry the "analysis_" prefix.
// Asynchronous jobs are persisted records whose reports are assembled on
// fetch from the stored segment timeline.
//
// Endpoints:
//   - POST /analysis/uploads: multipart video upload into the GCS bucket.
//   - POST /analysis: synchronous analysis of an uploaded video.
//   - POST /analysis/jobs: submit an asynchronous analysis job.
//   - GET  /analysis/:id: fetch a finished report, either family.
//   - GET  /analysis/:id/status: poll progress, either family.
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"cloud.google.com/go/pubsub"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/h2non/filetype"

	"github.com/jaycherian/gcp-go-viral-insights/internal/cloud"
	"github.com/jaycherian/gcp-go-viral-insights/internal/core/commands"
	"github.com/jaycherian/gcp-go-viral-insights/internal/core/cor"
	"github.com/jaycherian/gcp-go-viral-insights/internal/core/model"
	"github.com/jaycherian/gcp-go-viral-insights/internal/core/services"
)

// magicByteCount is how much of the upload is sniffed for format detection.
// 261 bytes is the documented maximum any filetype matcher needs.
const magicByteCount = 261

// allowedVideoExtensions are the container formats accepted by the upload
// endpoint, keyed by normalized file extension.
var allowedVideoExtensions = map[string]bool{
	".mp4": true,
	".mov": true,
	".avi": true,
	".mkv": true,
}

// AnalyzeRequest is the body of the synchronous analysis endpoint.
type AnalyzeRequest struct {
	VideoUrl string `json:"videoUrl"` // A gs:// URI, usually from the upload endpoint.
	Title    string `json:"title"`
	CoverUrl string `json:"coverUrl"`
}

// JobRequest is the body of the asynchronous job submission endpoint. The
// segment timeline is supplied by the caller's ingestion tooling.
type JobRequest struct {
	VideoUrl     string           `json:"videoUrl"`
	Title        string           `json:"title"`
	ThumbnailUrl string           `json:"thumbnailUrl"`
	Segments     []*model.Segment `json:"segments"`
}

// AnalysisRouter sets up the API routes for analysis actions.
//
// Inputs:
//   - r: A *gin.RouterGroup to which the analysis routes will be added. This
//     allows nesting routes under a common path prefix (e.g., "/api/v1").
func AnalysisRouter(r *gin.RouterGroup) {
	analysis := r.Group("/analysis")
	{
		// Handler for POST /analysis
		// Runs the full frame-sampling analysis pipeline inline with the
		// request and caches the report for follow-up fetches.
		analysis.POST("", func(c *gin.Context) {
			var req AnalyzeRequest
			if err := c.ShouldBindJSON(&req); err != nil || req.VideoUrl == "" {
				c.JSON(http.StatusBadRequest, ErrResponse(CodeInvalidRequest, "videoUrl is required"))
				return
			}

			analysisId := fmt.Sprintf("%s%d", services.SyncAnalysisPrefix, time.Now().UnixMilli())

			chainCtx := cor.NewBaseContext()
			chainCtx.SetContext(c.Request.Context())
			defer chainCtx.Close()
			chainCtx.Add(commands.IdentityParamName, &commands.ReportIdentity{
				Id:       analysisId,
				Title:    req.Title,
				CoverUrl: req.CoverUrl,
			})
			chainCtx.Add(cor.CtxIn, req.VideoUrl)

			state.videoPipeline.Execute(chainCtx)

			report, ok := chainCtx.Get(commands.ReportParamName).(*model.Report)
			if !ok || report == nil {
				for name, err := range chainCtx.GetErrors() {
					slog.Error("analysis pipeline failed", "step", name, "error", err)
				}
				c.JSON(http.StatusInternalServerError, ErrResponse(CodeAnalysisFailed, "video analysis failed"))
				return
			}

			state.reportCache.Put(analysisId, report)
			c.JSON(http.StatusOK, OkResponse(report))
		})

		// Handler for POST /analysis/jobs
		// Persists a queued job record and publishes its id to the jobs topic
		// so the background runner can pre-warm the judgment.
		analysis.POST("/jobs", func(c *gin.Context) {
			var req JobRequest
			if err := c.ShouldBindJSON(&req); err != nil || req.Title == "" {
				c.JSON(http.StatusBadRequest, ErrResponse(CodeInvalidRequest, "title is required"))
				return
			}

			segmentsJson := ""
			if len(req.Segments) > 0 {
				data, err := json.Marshal(req.Segments)
				if err != nil {
					c.JSON(http.StatusBadRequest, ErrResponse(CodeInvalidRequest, "segments are malformed"))
					return
				}
				segmentsJson = string(data)
			}

			record := &model.JobRecord{
				Id:           uuid.NewString(),
				Title:        req.Title,
				SourceUri:    req.VideoUrl,
				ThumbnailUri: req.ThumbnailUrl,
				Status:       model.JobStatusQueued,
				CurrentStep:  "waiting for worker",
				SegmentsJson: segmentsJson,
			}
			if err := state.jobService.CreateJob(c.Request.Context(), record); err != nil {
				slog.Error("failed to create analysis job", "error", err)
				c.JSON(http.StatusInternalServerError, ErrResponse(CodeInternalError, "failed to create analysis job"))
				return
			}

			trigger, _ := json.Marshal(&cloud.JobTriggerMessage{JobId: record.Id})
			topic := state.cloud.PubsubClient.Topic(state.config.TopicSubscriptions["JobsTopic"].Topic)
			result := topic.Publish(c.Request.Context(), &pubsub.Message{Data: trigger})
			if _, err := result.Get(c.Request.Context()); err != nil {
				// The record exists and report fetches self-heal, so a lost
				// trigger only costs the pre-warm.
				slog.Warn("failed to publish job trigger", "job_id", record.Id, "error", err)
			}

			c.JSON(http.StatusOK, OkResponse(gin.H{"jobId": record.Id}))
		})

		// Handler for GET /analysis/:id
		analysis.GET("/:id", func(c *gin.Context) {
			id := c.Param("id")

			if services.IsSyncAnalysisId(id) {
				value, result := state.reportCache.Get(id)
				switch result {
				case services.CacheHit:
					c.JSON(http.StatusOK, OkResponse(value))
				case services.CacheExpired:
					c.JSON(http.StatusNotFound, ErrResponse(CodeResourceNotFound, "analysis result expired"))
				default:
					c.JSON(http.StatusNotFound, ErrResponse(CodeResourceNotFound, "analysis result not found"))
				}
				return
			}

			report, err := state.reportService.GetJobReport(c.Request.Context(), id)
			if err == services.ErrJobNotFound {
				c.JSON(http.StatusNotFound, ErrResponse(CodeResourceNotFound, "analysis job not found"))
				return
			}
			if err != nil {
				slog.Error("failed to assemble job report", "job_id", id, "error", err)
				c.JSON(http.StatusInternalServerError, ErrResponse(CodeAnalysisFailed, "failed to assemble analysis report"))
				return
			}
			c.JSON(http.StatusOK, OkResponse(report))
		})

		// Handler for GET /analysis/:id/status
		analysis.GET("/:id/status", func(c *gin.Context) {
			id := c.Param("id")

			// Synchronous analyses run inline with their submission, so the id
			// format alone means the work already finished. No cache lookup:
			// the report may have aged out, but the analysis is still complete.
			if services.IsSyncAnalysisId(id) {
				c.JSON(http.StatusOK, OkResponse(services.CompletedStatus()))
				return
			}

			record, err := state.jobService.GetJob(c.Request.Context(), id)
			if err != nil {
				slog.Error("failed to load job status", "job_id", id, "error", err)
				c.JSON(http.StatusInternalServerError, ErrResponse(CodeInternalError, "failed to load job status"))
				return
			}
			if record == nil {
				c.JSON(http.StatusNotFound, ErrResponse(CodeResourceNotFound, "analysis job not found"))
				return
			}
			c.JSON(http.StatusOK, OkResponse(services.ProjectStatus(record)))
		})
	}
}

// FileUpload sets up the route for handling video uploads.
//
// The endpoint accepts multipart/form-data with a single "file" field. The
// upload is validated twice, first by extension and then by magic bytes, so
// a renamed text file cannot reach the analysis pipeline. Accepted files are
// streamed into the upload bucket under a fresh UUID object name.
//
// Inputs:
//   - r: A *gin.RouterGroup to which the upload route will be added.
func FileUpload(r *gin.RouterGroup) {
	upload := r.Group("/analysis/uploads")
	{
		// Handler for POST /analysis/uploads
		upload.POST("", func(c *gin.Context) {
			fileHeader, err := c.FormFile("file")
			if err != nil {
				c.JSON(http.StatusBadRequest, ErrResponse(CodeInvalidRequest, "file field is required"))
				return
			}

			ext := strings.ToLower(filepath.Ext(fileHeader.Filename))
			if !allowedVideoExtensions[ext] {
				c.JSON(http.StatusBadRequest, ErrResponse(CodeUnsupportedFormat, "only mp4, mov, avi, and mkv files are accepted"))
				return
			}

			file, err := fileHeader.Open()
			if err != nil {
				c.JSON(http.StatusInternalServerError, ErrResponse(CodeInternalError, "failed to read upload"))
				return
			}
			defer func() {
				if err := file.Close(); err != nil {
					slog.Warn("failed to close upload stream", "error", err)
				}
			}()

			head := make([]byte, magicByteCount)
			n, err := file.Read(head)
			if err != nil && n == 0 {
				c.JSON(http.StatusBadRequest, ErrResponse(CodeUnsupportedFormat, "file is empty"))
				return
			}
			kind, err := filetype.Match(head[:n])
			if err != nil || !allowedVideoExtensions["."+kind.Extension] {
				c.JSON(http.StatusBadRequest, ErrResponse(CodeUnsupportedFormat, "file content is not a supported video format"))
				return
			}
			if _, err := file.Seek(0, 0); err != nil {
				c.JSON(http.StatusInternalServerError, ErrResponse(CodeInternalError, "failed to rewind upload"))
				return
			}

			objectName := uuid.NewString() + ext
			bucket := state.config.Storage.UploadBucket
			wc := state.cloud.StorageClient.Bucket(bucket).Object(objectName).NewWriter(c.Request.Context())
			wc.ContentType = fileHeader.Header.Get("Content-Type")

			written, err := io.Copy(wc, file)
			if err != nil {
				c.JSON(http.StatusInternalServerError, ErrResponse(CodeInternalError, "failed to store upload"))
				return
			}
			if err := wc.Close(); err != nil {
				slog.Error("failed to finalize upload", "object", objectName, "error", err)
				c.JSON(http.StatusInternalServerError, ErrResponse(CodeInternalError, "failed to store upload"))
				return
			}

			c.JSON(http.StatusOK, OkResponse(gin.H{
				"fileName": fileHeader.Filename,
				"videoUrl": fmt.Sprintf("gs://%s/%s", bucket, objectName),
				"size":     written,
			}))
		})
	}
}

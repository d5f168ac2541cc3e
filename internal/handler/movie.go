package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	httppkg "moviegen/internal/pkg/http"
	moviesvc "moviegen/internal/service/movie"
)

// MovieHandler 故事视频生成处理器
type MovieHandler struct {
	svc moviesvc.Service
}

// NewMovieHandler 创建故事视频生成处理器
func NewMovieHandler(svc moviesvc.Service) *MovieHandler {
	return &MovieHandler{svc: svc}
}

// eventForm 单个事件的表单描述
// events_json 既接受纯标题字符串数组，也接受对象数组
type eventForm struct {
	Title   string `json:"title"`
	Caption string `json:"caption"`
}

// Generate 提交生成任务
// multipart 表单：story_title、events_json、photos_0..photos_N（每个事件一组照片）
func (h *MovieHandler) Generate(c *gin.Context) {
	storyTitle := c.PostForm("story_title")
	eventsJSON := c.PostForm("events_json")

	events, err := parseEventsJSON(eventsJSON)
	if err != nil {
		c.JSON(http.StatusBadRequest, httppkg.NewErrorResponse(40001, "Invalid events_json", err.Error()))
		return
	}

	form, err := c.MultipartForm()
	if err != nil {
		c.JSON(http.StatusBadRequest, httppkg.NewErrorResponse(40002, "Invalid multipart form", err.Error()))
		return
	}

	input := &moviesvc.SubmitInput{StoryTitle: storyTitle}
	for i, ev := range events {
		input.Events = append(input.Events, &moviesvc.EventInput{
			Title:   ev.Title,
			Caption: ev.Caption,
			Photos:  form.File[fmt.Sprintf("photos_%d", i)],
		})
	}

	job, err := h.svc.SubmitJob(c.Request.Context(), input)
	if err != nil {
		if errors.Is(err, moviesvc.ErrInvalidSubmission) {
			c.JSON(http.StatusBadRequest, httppkg.NewErrorResponse(40003, "Invalid submission", err.Error()))
			return
		}
		log.Error().Err(err).Msg("failed to submit generation job")
		c.JSON(http.StatusInternalServerError, httppkg.NewErrorResponse(50000, "Failed to submit job", err.Error()))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"job_id": job.ID,
		"status": job.Status,
	})
}

// Status 查询任务状态
func (h *MovieHandler) Status(c *gin.Context) {
	jobID := c.Param("job_id")

	job, err := h.svc.GetJob(c.Request.Context(), jobID)
	if err != nil {
		if errors.Is(err, moviesvc.ErrJobNotFound) {
			c.JSON(http.StatusNotFound, httppkg.NewErrorResponse(40401, "Job not found"))
			return
		}
		log.Error().Err(err).Str("job_id", jobID).Msg("failed to get job")
		c.JSON(http.StatusInternalServerError, httppkg.NewErrorResponse(50000, "Failed to get job", err.Error()))
		return
	}

	c.JSON(http.StatusOK, job)
}

// Delete 删除任务记录及其工作目录，幂等，不存在的任务同样返回成功
func (h *MovieHandler) Delete(c *gin.Context) {
	jobID := c.Param("job_id")

	if err := h.svc.DeleteJob(c.Request.Context(), jobID); err != nil {
		log.Error().Err(err).Str("job_id", jobID).Msg("failed to delete job")
		c.JSON(http.StatusInternalServerError, httppkg.NewErrorResponse(50000, "Failed to delete job", err.Error()))
		return
	}

	c.JSON(http.StatusOK, gin.H{"deleted": jobID})
}

func parseEventsJSON(raw string) ([]eventForm, error) {
	if raw == "" {
		return nil, errors.New("events_json is required")
	}

	var titles []string
	if err := json.Unmarshal([]byte(raw), &titles); err == nil {
		events := make([]eventForm, 0, len(titles))
		for _, t := range titles {
			events = append(events, eventForm{Title: t})
		}
		return events, nil
	}

	var events []eventForm
	if err := json.Unmarshal([]byte(raw), &events); err != nil {
		return nil, errors.New("must be a JSON array of titles or {title, caption} objects")
	}
	return events, nil
}

package service

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/maheshrc27/postbridge/internal/models"
	"github.com/maheshrc27/postbridge/internal/transfer"
)

type ThreadsService interface {
	// Publish sends one post. It never returns an error; failures are
	// reported through the PostResult.
	Publish(ctx context.Context, userID, accessToken, caption string, file models.MediaFile, link string) models.PostResult
}

type threadsService struct {
	baseURL string
	client  *http.Client
}

func NewThreadsService(baseURL string, client *http.Client) ThreadsService {
	if client == nil {
		client = http.DefaultClient
	}
	return &threadsService{baseURL: strings.TrimRight(baseURL, "/"), client: client}
}

// MediaTypeFor classifies a post. Without a link the post is text only.
func MediaTypeFor(file models.MediaFile, link string) models.MediaType {
	if link == "" {
		return models.MediaTypeTextPost
	}
	if file.IsVideo() {
		return models.MediaTypeVideo
	}
	return models.MediaTypeImage
}

func buildThreadsForm(accessToken, caption string, mediaType models.MediaType, link string) url.Values {
	data := url.Values{}
	data.Set("access_token", accessToken)
	data.Set("text", caption)

	switch mediaType {
	case models.MediaTypeVideo:
		data.Set("video_url", link)
	case models.MediaTypeImage:
		data.Set("image_url", link)
	}
	data.Set("media_type", string(mediaType))
	return data
}

func (s *threadsService) Publish(ctx context.Context, userID, accessToken, caption string, file models.MediaFile, link string) models.PostResult {
	mediaType := MediaTypeFor(file, link)
	result := models.PostResult{MediaType: mediaType}

	postURL := fmt.Sprintf("%s/%s/threads", s.baseURL, url.PathEscape(userID))
	form := buildThreadsForm(accessToken, caption, mediaType, link)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, postURL, strings.NewReader(form.Encode()))
	if err != nil {
		result.Err = fmt.Errorf("%w: error creating request: %w", ErrPublish, err)
		result.Body = err.Error()
		return result
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := s.client.Do(req)
	if err != nil {
		slog.Info(err.Error())
		result.Err = fmt.Errorf("%w: HTTP request error: %w", ErrPublish, err)
		result.Body = err.Error()
		return result
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		slog.Info(err.Error())
	}
	result.StatusCode = resp.StatusCode
	result.Body = string(body)

	if resp.StatusCode != http.StatusOK {
		result.Err = fmt.Errorf("%w: unexpected status code from Threads: %d", ErrPublish, resp.StatusCode)
		if apiErr, ok := transfer.ParseThreadsError(body); ok {
			slog.Error("Threads post rejected",
				"user_id", userID,
				"file", file.Name,
				"status", resp.StatusCode,
				"code", apiErr.Error.Code,
				"message", apiErr.Error.Message)
		}
		return result
	}

	result.Succeeded = true
	var created transfer.ThreadsPostResponse
	if err := json.Unmarshal(body, &created); err == nil && created.ID != "" {
		slog.Info("Threads post created", "user_id", userID, "file", file.Name, "id", created.ID)
	}
	return result
}
